package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/triviaflash/internal/quiz"
)

// MockQuestionProvider is a mock implementation of quiz.Provider
type MockQuestionProvider struct {
	mock.Mock
}

func (m *MockQuestionProvider) FetchQuestions(ctx context.Context) ([]quiz.Question, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]quiz.Question), args.Error(1)
}
