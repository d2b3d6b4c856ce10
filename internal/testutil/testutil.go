package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/pratik-mahalle/linkboost/internal/auth"
	"github.com/pratik-mahalle/linkboost/internal/config"
	"github.com/pratik-mahalle/linkboost/internal/domain/user"
	"github.com/pratik-mahalle/linkboost/internal/repository/postgres"
	"github.com/pratik-mahalle/linkboost/migrations"
)

// TestJWTSecret signs tokens produced by Token
const TestJWTSecret = "test-jwt-secret"

// NewTestDB opens a migrated SQLite database in a temporary directory.
// It is closed when the test ends.
func NewTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := postgres.New(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := postgres.RunMigrations(db, "sqlite", migrations.GetFS()); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// Token mints a bearer token for userID at the given tier
func Token(t *testing.T, userID string, tier user.SubscriptionLevel) string {
	t.Helper()

	tok, err := auth.MintToken(userID, userID+"@example.com", tier, TestJWTSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to mint token: %v", err)
	}
	return tok
}
