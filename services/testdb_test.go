package services

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"routineTrackerAPI/db"
)

// setupTestDB connects to the test database and ensures the schema exists.
// Tests that need it are skipped when no database is configured, so the
// pure-logic suite still runs everywhere.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping store integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err, "failed to connect to test database")
	require.NoError(t, pool.Ping(ctx), "failed to ping test database")
	require.NoError(t, db.CreateSchema(ctx, pool), "failed to create schema")

	t.Cleanup(pool.Close)
	return pool
}

// createTestUser inserts a throwaway user and registers cleanup that
// cascades away everything the test created under it.
func createTestUser(t *testing.T, pool *pgxpool.Pool) int64 {
	t.Helper()

	ctx := context.Background()
	email := fmt.Sprintf("test+%d@example.com", time.Now().UnixNano())

	var userID int64
	err := pool.QueryRow(ctx, `
	INSERT INTO users (email, nickname, password)
	VALUES ($1, 'tester', 'not-a-real-hash')
	RETURNING id
	`, email).Scan(&userID)
	require.NoError(t, err)

	t.Cleanup(func() {
		_, err := pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		if err != nil {
			t.Logf("Warning: failed to cleanup test user: %v", err)
		}
	})

	return userID
}
