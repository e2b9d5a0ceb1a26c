package repo_test

import (
	"context"
	"log"
	"os"
	"testing"

	"github.com/pressly/goose/v3"

	"github.com/mlindvall/korjournal/migrations"
	"github.com/mlindvall/korjournal/testutil"
)

// TestMain applies all pending migrations to the test database before any
// test in the repo_test package runs, so individual tests never need to
// think about schema state. It runs once for the entire test binary.
func TestMain(m *testing.M) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		// No test DB configured; every test skips itself cleanly.
		os.Exit(m.Run())
	}

	// goose needs a database/sql handle, not a pgx pool.
	db := testutil.MustOpenSQLDB(os.Getenv("TEST_DATABASE_URL"))
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		log.Fatalf("TestMain: create goose provider: %v", err)
	}

	if _, err := provider.Up(context.Background()); err != nil {
		log.Fatalf("TestMain: run migrations: %v", err)
	}

	os.Exit(m.Run())
}
