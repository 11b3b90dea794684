package jobs

import (
	"time"

	"github.com/vytor/triviaflash/internal/quiz"
	"github.com/vytor/triviaflash/internal/worker"
)

// WorkerQueue implements FetchQueue using a worker pool
type WorkerQueue struct {
	pool     *worker.Pool
	provider quiz.Provider
	timeout  time.Duration
}

// NewWorkerQueue creates a new WorkerQueue implementation
func NewWorkerQueue(pool *worker.Pool, provider quiz.Provider, timeout time.Duration) FetchQueue {
	return &WorkerQueue{
		pool:     pool,
		provider: provider,
		timeout:  timeout,
	}
}

func (q *WorkerQueue) EnqueueFetch(sessionID string, deliver func(quiz.LoadResult)) error {
	return q.pool.Submit(&worker.FetchQuestionsJob{
		SessionID: sessionID,
		Provider:  q.provider,
		Timeout:   q.timeout,
		Deliver:   deliver,
	})
}
