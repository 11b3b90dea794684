package repository

import (
	"context"
	"errors"

	"github.com/vytor/triviaflash/internal/models"
)

// ErrResultExists is returned when a session's result was already stored.
var ErrResultExists = errors.New("result already recorded for session")

// ResultRepository handles finished-session data access
type ResultRepository interface {
	// Save stores the result and its answers atomically.
	Save(ctx context.Context, result models.QuizResult) (int64, error)
	// GetBySession returns nil, nil when the session has no stored result.
	GetBySession(ctx context.Context, sessionID string) (*models.QuizResult, error)
	// Top lists results ranked by percentage, then score, then earliest finish.
	Top(ctx context.Context, limit int) ([]models.QuizResult, error)
}
