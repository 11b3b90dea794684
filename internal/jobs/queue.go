package jobs

import "github.com/vytor/triviaflash/internal/quiz"

// FetchQueue provides an abstraction for enqueueing question fetches
type FetchQueue interface {
	EnqueueFetch(sessionID string, deliver func(quiz.LoadResult)) error
}
