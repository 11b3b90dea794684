package testutil

import (
	"context"
	"database/sql"
	"strconv"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/vytor/triviaflash/internal/db"
	"github.com/vytor/triviaflash/internal/quiz"
)

// NewTestDB creates an in-memory SQLite database with all migrations applied.
// A single connection keeps every query on the same in-memory database.
func NewTestDB(t *testing.T) *sql.DB {
	sqlDB, err := sql.Open("sqlite3", ":memory:?_foreign_keys=on")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.Migrate(context.Background(), sqlDB), "failed to apply migrations")
	return sqlDB
}

// MustClose closes a resource and fails the test on error.
func MustClose(t *testing.T, closer interface{ Close() error }) {
	require.NoError(t, closer.Close())
}

// SampleQuestions returns n multiple-choice questions whose correct answer
// is "right N" for question N (1-based).
func SampleQuestions(n int) []quiz.Question {
	out := make([]quiz.Question, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, quiz.Question{
			Category:         "General Knowledge",
			Difficulty:       "medium",
			Type:             "multiple",
			Prompt:           "Question " + strconv.Itoa(i) + "?",
			CorrectAnswer:    "right " + strconv.Itoa(i),
			IncorrectAnswers: []string{"wrong " + strconv.Itoa(i) + "a", "wrong " + strconv.Itoa(i) + "b", "wrong " + strconv.Itoa(i) + "c"},
		})
	}
	return out
}
