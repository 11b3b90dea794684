package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/vytor/triviaflash/internal/errors"
	"github.com/vytor/triviaflash/internal/logger"
	"github.com/vytor/triviaflash/internal/models"
	"github.com/vytor/triviaflash/internal/quiz"
	"github.com/vytor/triviaflash/internal/repository"
)

// ScoreboardService records finished sessions and ranks them
type ScoreboardService interface {
	Record(ctx context.Context, sessionID, source string, results quiz.Results, finishedAt time.Time) error
	Top(ctx context.Context) ([]models.ScoreboardEntry, error)
	ForSession(ctx context.Context, sessionID string) (*models.QuizResult, error)
}

type scoreboardService struct {
	resultRepo repository.ResultRepository
	size       int
}

// NewScoreboardService creates a new ScoreboardService listing at most size entries
func NewScoreboardService(resultRepo repository.ResultRepository, size int) ScoreboardService {
	if size <= 0 {
		size = 10
	}
	return &scoreboardService{resultRepo: resultRepo, size: size}
}

// Record stores results once per session. A repeat for the same session is
// ignored.
func (s *scoreboardService) Record(ctx context.Context, sessionID, source string, results quiz.Results, finishedAt time.Time) error {
	log := logger.FromContext(ctx).WithField("session_id", sessionID)
	log.Debug("recording result: score=%d/%d", results.Score, results.Total)

	if results.Total == 0 {
		return errors.NewValidationError("results", "no answered questions")
	}

	answers := make([]models.ResultAnswer, 0, len(results.Review))
	for i, item := range results.Review {
		answers = append(answers, models.ResultAnswer{
			Position:   i + 1,
			Question:   item.Question,
			Selected:   item.Selected,
			Correct:    item.Correct,
			WasCorrect: item.WasCorrect,
		})
	}

	_, err := s.resultRepo.Save(ctx, models.QuizResult{
		SessionID:  sessionID,
		PlayerName: results.Name,
		Score:      results.Score,
		Total:      results.Total,
		Percentage: results.Percentage,
		Source:     source,
		FinishedAt: finishedAt,
		Answers:    answers,
	})
	if stderrors.Is(err, repository.ErrResultExists) {
		log.Debug("result already recorded")
		return nil
	}
	if err != nil {
		log.Error("failed to record result: %v", err)
		return errors.NewInternalError(err)
	}

	log.Info("result recorded: %s scored %d/%d", results.Name, results.Score, results.Total)
	return nil
}

func (s *scoreboardService) Top(ctx context.Context) ([]models.ScoreboardEntry, error) {
	log := logger.FromContext(ctx)
	log.Debug("loading scoreboard: size=%d", s.size)

	results, err := s.resultRepo.Top(ctx, s.size)
	if err != nil {
		log.Error("failed to load scoreboard: %v", err)
		return nil, errors.NewInternalError(err)
	}

	entries := make([]models.ScoreboardEntry, 0, len(results))
	for i, r := range results {
		entries = append(entries, models.ScoreboardEntry{Rank: i + 1, QuizResult: r})
	}
	return entries, nil
}

func (s *scoreboardService) ForSession(ctx context.Context, sessionID string) (*models.QuizResult, error) {
	result, err := s.resultRepo.GetBySession(ctx, sessionID)
	if err != nil {
		logger.FromContext(ctx).Error("failed to get result: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if result == nil {
		return nil, errors.NewNotFoundError("result", sessionID)
	}
	return result, nil
}
