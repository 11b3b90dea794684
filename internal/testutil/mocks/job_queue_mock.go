package mocks

import (
	"github.com/stretchr/testify/mock"
	"github.com/vytor/triviaflash/internal/quiz"
)

// MockFetchQueue is a mock implementation of jobs.FetchQueue. Accepted
// fetches keep their callback so tests can complete them with Deliver.
type MockFetchQueue struct {
	mock.Mock
	delivers map[string]func(quiz.LoadResult)
}

func (m *MockFetchQueue) EnqueueFetch(sessionID string, deliver func(quiz.LoadResult)) error {
	args := m.Called(sessionID, deliver)
	if args.Error(0) == nil {
		if m.delivers == nil {
			m.delivers = map[string]func(quiz.LoadResult){}
		}
		m.delivers[sessionID] = deliver
	}
	return args.Error(0)
}

// Deliver completes the last fetch enqueued for sessionID.
func (m *MockFetchQueue) Deliver(sessionID string, res quiz.LoadResult) bool {
	deliver, ok := m.delivers[sessionID]
	if !ok {
		return false
	}
	delete(m.delivers, sessionID)
	deliver(res)
	return true
}
