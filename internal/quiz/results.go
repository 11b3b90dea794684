package quiz

// ReviewItem is one line of the post-quiz review.
type ReviewItem struct {
	Question   string `json:"question"`
	Selected   string `json:"selected"`
	Correct    string `json:"correct"`
	WasCorrect bool   `json:"was_correct"`
}

// ShowCorrect reports whether the correct answer should be displayed next to
// the player's answer.
func (r ReviewItem) ShowCorrect() bool {
	return !r.WasCorrect
}

// Results is the display-ready summary of a finished session.
type Results struct {
	Name       string       `json:"name"`
	Score      int          `json:"score"`
	Total      int          `json:"total"`
	Percentage float64      `json:"percentage"`
	Review     []ReviewItem `json:"review"`
}

// Results projects a finished session. It does not modify the session.
func (s *Session) Results() (Results, error) {
	if s.Phase() != PhaseFinished {
		return Results{}, ErrNotFinished
	}

	total := len(s.questions)
	review := make([]ReviewItem, len(s.records))
	for i, rec := range s.records {
		review[i] = ReviewItem{
			Question:   rec.Question,
			Selected:   rec.Selected,
			Correct:    rec.Correct,
			WasCorrect: rec.WasCorrect(),
		}
	}

	return Results{
		Name:       s.name,
		Score:      s.score,
		Total:      total,
		Percentage: float64(s.score) / float64(total) * 100,
		Review:     review,
	}, nil
}
