// Command healthcheck probes the local API for container HEALTHCHECK use.
// It exits 0 when the service is healthy or degraded and 1 otherwise.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/pratik-mahalle/linkboost/internal/config"
	"github.com/pratik-mahalle/linkboost/internal/health"
)

func main() {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	endpoint := os.Getenv("HEALTH_ENDPOINT")
	if endpoint == "" {
		endpoint = "/health"
	}
	endpoint = config.NormalizePath(endpoint)
	timeout := config.ParseMillis(os.Getenv("HEALTH_TIMEOUT"), health.DefaultTimeout)

	os.Exit(run(fmt.Sprintf("http://localhost:%s%s", port, endpoint), timeout, os.Stdout))
}

// run probes target once, writes a one-line summary to out and returns the exit code
func run(target string, timeout time.Duration, out io.Writer) int {
	r := health.NewProber(nil).Probe(context.Background(), target, timeout)
	fmt.Fprintf(out, "%s %s (%dms): %s\n", target, r.Status, r.ResponseTime/time.Millisecond, r.Message)
	return exitCode(r.Status)
}

func exitCode(s health.Status) int {
	if s == health.StatusUnhealthy {
		return 1
	}
	return 0
}
