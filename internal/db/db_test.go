package db

import (
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	database, err := sqlx.Connect("sqlite3", DSN(filepath.Join(t.TempDir(), "arena.db")))
	require.NoError(t, err)
	defer database.Close()

	require.NoError(t, RunMigrations(database.DB, "file://../../migrations"))
	// A second run has nothing to apply.
	require.NoError(t, RunMigrations(database.DB, "file://../../migrations"))

	var tables []string
	err = database.Select(&tables, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'schema_%' ORDER BY name")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"badges", "entries", "matches", "participants", "queue_entries",
		"queue_matches", "rating_changes", "rewards", "tournaments",
	}, tables)

	var fk int
	require.NoError(t, database.Get(&fk, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, fk)
}
