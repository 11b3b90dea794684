// Package quiz implements a single trivia quiz session: name entry, one
// batch of questions answered in order, and a scored review at the end.
package quiz

import (
	"context"
	"errors"
)

var (
	// ErrEmptyQuestionSet is returned when a provider yields zero questions.
	// The session cannot proceed and enters PhaseFailed.
	ErrEmptyQuestionSet = errors.New("empty question set")

	// ErrProviderUnavailable wraps any fetch failure reported by a Provider.
	ErrProviderUnavailable = errors.New("question provider unavailable")

	// ErrInvalidSelection is returned when the selected answer is not one of
	// the current choices.
	ErrInvalidSelection = errors.New("answer is not one of the current choices")

	// ErrPrematureAdvance is returned by Advance when nothing is selected.
	ErrPrematureAdvance = errors.New("no answer selected")

	ErrNotInProgress = errors.New("quiz is not in progress")
	ErrNotFinished   = errors.New("quiz is not finished")
	ErrFetchInFlight = errors.New("question fetch already in flight")
	ErrAlreadyLoaded = errors.New("questions already loaded")
)

// Question is a trivia question as delivered by a provider. Text fields are
// raw and may contain HTML character references.
type Question struct {
	Category         string
	Difficulty       string
	Type             string
	Prompt           string
	CorrectAnswer    string
	IncorrectAnswers []string
}

// AnsweredRecord is appended once per question when the player advances.
// All fields hold decoded display text.
type AnsweredRecord struct {
	Question string
	Selected string
	Correct  string
}

// WasCorrect reports whether the selected answer matched the correct one.
func (r AnsweredRecord) WasCorrect() bool {
	return r.Selected == r.Correct
}

// Provider supplies the ordered batch of questions for one session.
type Provider interface {
	FetchQuestions(ctx context.Context) ([]Question, error)
}

// ProviderFunc adapts a plain function to the Provider interface.
type ProviderFunc func(ctx context.Context) ([]Question, error)

func (f ProviderFunc) FetchQuestions(ctx context.Context) ([]Question, error) {
	return f(ctx)
}

// LoadResult carries the outcome of a single provider fetch.
type LoadResult struct {
	Questions []Question
	Err       error
}

// Phase is the externally visible state of a Session.
type Phase int

const (
	PhaseAwaitingName Phase = iota
	PhaseLoading
	PhaseInProgress
	PhaseFinished
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingName:
		return "awaiting_name"
	case PhaseLoading:
		return "loading"
	case PhaseInProgress:
		return "in_progress"
	case PhaseFinished:
		return "finished"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}
