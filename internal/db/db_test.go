package db_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/triviaflash/internal/db"
	"github.com/vytor/triviaflash/internal/testutil"
)

func TestOpen_AppliesMigrationsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quiz.db")

	first, err := db.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Ready(context.Background()))
	testutil.MustClose(t, first)

	second, err := db.Open(path)
	require.NoError(t, err)
	defer testutil.MustClose(t, second)

	var applied int
	require.NoError(t, second.QueryRow(`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)

	var tables int
	require.NoError(t, second.QueryRow(
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name IN ('quiz_results', 'quiz_answers')`,
	).Scan(&tables))
	assert.Equal(t, 2, tables)
}

func TestReady_FailsAfterClose(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "closed.db"))
	require.NoError(t, err)
	require.NoError(t, database.Close())

	assert.Error(t, database.Ready(context.Background()))
}
