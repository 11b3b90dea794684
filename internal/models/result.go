package models

import (
	"time"

	"github.com/vytor/triviaflash/internal/quiz"
)

// Sources a finished session can be recorded from.
const (
	SourceWeb      = "web"
	SourceAPI      = "api"
	SourceTelegram = "telegram"
)

// QuizResult is the stored summary of one finished session.
type QuizResult struct {
	ID         int64          `json:"id"`
	SessionID  string         `json:"session_id"`
	PlayerName string         `json:"player_name"`
	Score      int            `json:"score"`
	Total      int            `json:"total"`
	Percentage float64        `json:"percentage"`
	Source     string         `json:"source"`
	FinishedAt time.Time      `json:"finished_at"`
	CreatedAt  time.Time      `json:"created_at"`
	Answers    []ResultAnswer `json:"answers,omitempty"`
}

// Results rebuilds the review of a stored session.
func (r QuizResult) Results() quiz.Results {
	review := make([]quiz.ReviewItem, len(r.Answers))
	for i, a := range r.Answers {
		review[i] = quiz.ReviewItem{
			Question:   a.Question,
			Selected:   a.Selected,
			Correct:    a.Correct,
			WasCorrect: a.WasCorrect,
		}
	}
	return quiz.Results{
		Name:       r.PlayerName,
		Score:      r.Score,
		Total:      r.Total,
		Percentage: r.Percentage,
		Review:     review,
	}
}

// ResultAnswer is one review row of a stored result, in question order.
type ResultAnswer struct {
	Position   int    `json:"position"`
	Question   string `json:"question"`
	Selected   string `json:"selected"`
	Correct    string `json:"correct"`
	WasCorrect bool   `json:"was_correct"`
}

// ScoreboardEntry is a ranked result.
type ScoreboardEntry struct {
	Rank int `json:"rank"`
	QuizResult
}
