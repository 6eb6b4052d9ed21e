// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tasklist/tasklist-api/internal/repository"
)

// NewTestDB opens an in-memory SQLite database with all migrations applied.
// It is closed automatically when the test completes.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	ctx := context.Background()
	db, err := repository.NewDB(ctx, repository.DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("closing test db: %v", err)
		}
	})

	if err := repository.Migrate(ctx, db); err != nil {
		t.Fatalf("migrating test db: %v", err)
	}

	return db
}

// Clock is a settable time source for repositories and token issuers.
type Clock struct {
	T time.Time
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{T: time.Date(2024, 8, 1, 9, 0, 0, 0, time.UTC)}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
