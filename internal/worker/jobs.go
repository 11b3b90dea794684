package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/vytor/triviaflash/internal/logger"
	"github.com/vytor/triviaflash/internal/quiz"
)

// FetchQuestionsJob performs one provider fetch for a session and hands the
// outcome to Deliver, which must apply it under the session's lock.
type FetchQuestionsJob struct {
	SessionID string
	Provider  quiz.Provider
	Timeout   time.Duration
	Deliver   func(quiz.LoadResult)
}

func (j *FetchQuestionsJob) Name() string { return "fetch_questions" }

// Drop reports a fetch that never ran as a provider failure, so the session
// leaves its fetching state and can be retried.
func (j *FetchQuestionsJob) Drop(err error) {
	j.Deliver(quiz.LoadResult{Err: fmt.Errorf("%w: %w", quiz.ErrProviderUnavailable, err)})
}

func (j *FetchQuestionsJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithField("session_id", j.SessionID)

	if j.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.Timeout)
		defer cancel()
	}
	ctx = logger.NewContext(ctx, log)

	questions, err := j.Provider.FetchQuestions(ctx)
	j.Deliver(quiz.LoadResult{Questions: questions, Err: err})
	if err != nil {
		return err
	}
	log.Debug("delivered %d questions", len(questions))
	return nil
}
