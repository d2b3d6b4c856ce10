package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/pratik-mahalle/linkboost/internal/config"
	"github.com/pratik-mahalle/linkboost/internal/repository/postgres"
	"github.com/pratik-mahalle/linkboost/migrations"
)

const usage = "usage: migrate [up | down [steps] | version]"

func main() {
	cmd := "up"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Connect to database
	db, err := postgres.New(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	mg, err := postgres.NewMigrator(db, cfg.Database.Driver, migrations.GetFS())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	switch cmd {
	case "up":
		err = mg.Up()
	case "down":
		steps := 1
		if len(os.Args) > 2 {
			if steps, err = strconv.Atoi(os.Args[2]); err != nil {
				fmt.Fprintln(os.Stderr, usage)
				os.Exit(2)
			}
		}
		err = mg.Down(steps)
	case "version":
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration %s failed: %v\n", cmd, err)
		os.Exit(1)
	}

	v, dirty, err := mg.Version()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read schema version: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Schema version %d (%s, dirty=%t)\n", v, cfg.Database.Driver, dirty)
	if dirty {
		os.Exit(1)
	}
}
