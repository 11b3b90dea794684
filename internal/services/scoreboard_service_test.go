package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	apperrors "github.com/vytor/triviaflash/internal/errors"
	"github.com/vytor/triviaflash/internal/models"
	"github.com/vytor/triviaflash/internal/quiz"
	"github.com/vytor/triviaflash/internal/repository"
	"github.com/vytor/triviaflash/internal/services"
	"github.com/vytor/triviaflash/internal/testutil/mocks"
)

func requireAppError(t *testing.T, err error, code string) *apperrors.AppError {
	t.Helper()
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func sampleResults() quiz.Results {
	return quiz.Results{
		Name:       "Alice",
		Score:      1,
		Total:      2,
		Percentage: 50,
		Review: []quiz.ReviewItem{
			{Question: "Capital of France?", Selected: "Paris", Correct: "Paris", WasCorrect: true},
			{Question: "2 + 2?", Selected: "5", Correct: "4", WasCorrect: false},
		},
	}
}

func TestScoreboardService_Record(t *testing.T) {
	repo := new(mocks.MockResultRepository)
	svc := services.NewScoreboardService(repo, 10)
	finished := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	repo.On("Save", mock.Anything, mock.MatchedBy(func(r models.QuizResult) bool {
		return r.SessionID == "s1" &&
			r.PlayerName == "Alice" &&
			r.Score == 1 && r.Total == 2 &&
			r.Source == models.SourceAPI &&
			r.FinishedAt.Equal(finished) &&
			len(r.Answers) == 2 &&
			r.Answers[0].Position == 1 && r.Answers[0].WasCorrect &&
			r.Answers[1].Position == 2 && r.Answers[1].Correct == "4"
	})).Return(int64(7), nil)

	require.NoError(t, svc.Record(context.Background(), "s1", models.SourceAPI, sampleResults(), finished))
	repo.AssertExpectations(t)
}

func TestScoreboardService_RecordIgnoresDuplicates(t *testing.T) {
	repo := new(mocks.MockResultRepository)
	svc := services.NewScoreboardService(repo, 10)

	repo.On("Save", mock.Anything, mock.Anything).Return(int64(0), repository.ErrResultExists)

	assert.NoError(t, svc.Record(context.Background(), "s1", models.SourceWeb, sampleResults(), time.Now()))
}

func TestScoreboardService_RecordFailures(t *testing.T) {
	repo := new(mocks.MockResultRepository)
	svc := services.NewScoreboardService(repo, 10)

	err := svc.Record(context.Background(), "s1", models.SourceWeb, quiz.Results{}, time.Now())
	requireAppError(t, err, apperrors.ErrCodeValidation)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)

	repo.On("Save", mock.Anything, mock.Anything).Return(int64(0), errors.New("disk full"))
	err = svc.Record(context.Background(), "s1", models.SourceWeb, sampleResults(), time.Now())
	requireAppError(t, err, apperrors.ErrCodeInternal)
}

func TestScoreboardService_Top(t *testing.T) {
	repo := new(mocks.MockResultRepository)
	svc := services.NewScoreboardService(repo, 2)

	repo.On("Top", mock.Anything, 2).Return([]models.QuizResult{
		{SessionID: "a", Score: 2, Total: 2, Percentage: 100},
		{SessionID: "b", Score: 1, Total: 2, Percentage: 50},
	}, nil)

	entries, err := svc.Top(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Rank)
	assert.Equal(t, "a", entries[0].SessionID)
	assert.Equal(t, 2, entries[1].Rank)
	repo.AssertExpectations(t)
}

func TestScoreboardService_TopDefaultSize(t *testing.T) {
	repo := new(mocks.MockResultRepository)
	svc := services.NewScoreboardService(repo, 0)

	repo.On("Top", mock.Anything, 10).Return(nil, errors.New("locked"))

	_, err := svc.Top(context.Background())
	requireAppError(t, err, apperrors.ErrCodeInternal)
	repo.AssertExpectations(t)
}

func TestScoreboardService_ForSession(t *testing.T) {
	repo := new(mocks.MockResultRepository)
	svc := services.NewScoreboardService(repo, 10)

	repo.On("GetBySession", mock.Anything, "known").Return(&models.QuizResult{SessionID: "known"}, nil)
	repo.On("GetBySession", mock.Anything, "unknown").Return(nil, nil)

	res, err := svc.ForSession(context.Background(), "known")
	require.NoError(t, err)
	assert.Equal(t, "known", res.SessionID)

	_, err = svc.ForSession(context.Background(), "unknown")
	requireAppError(t, err, apperrors.ErrCodeNotFound)
}
