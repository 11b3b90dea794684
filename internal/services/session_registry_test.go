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
	"github.com/vytor/triviaflash/internal/repository/sqlite"
	"github.com/vytor/triviaflash/internal/services"
	"github.com/vytor/triviaflash/internal/testutil"
	"github.com/vytor/triviaflash/internal/testutil/mocks"
	"github.com/vytor/triviaflash/internal/worker"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newRegistry(t *testing.T, scoreboard services.ScoreboardService) (*services.SessionRegistry, *mocks.MockFetchQueue, *fakeClock) {
	t.Helper()
	queue := new(mocks.MockFetchQueue)
	clock := &fakeClock{t: time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)}
	registry := services.NewSessionRegistry(queue, scoreboard, services.RegistryOptions{
		TTL: time.Hour,
		Now: clock.Now,
		NewSession: func() *quiz.Session {
			return quiz.NewSession(quiz.WithShuffler(quiz.NewShuffler(42)))
		},
	})
	return registry, queue, clock
}

func TestSessionRegistry_FullQuiz(t *testing.T) {
	database := testutil.NewTestDB(t)
	defer testutil.MustClose(t, database)
	scoreboard := services.NewScoreboardService(sqlite.NewResultRepository(database), 10)

	registry, queue, _ := newRegistry(t, scoreboard)
	queue.On("EnqueueFetch", mock.Anything, mock.Anything).Return(nil).Once()
	ctx := context.Background()

	view, err := registry.Create(ctx, models.SourceAPI)
	require.NoError(t, err)
	assert.NotEmpty(t, view.ID)
	assert.Equal(t, "awaiting_name", view.Phase)
	assert.True(t, view.Fetching)
	id := view.ID

	view, err = registry.SubmitName(ctx, id, "  alice ")
	require.NoError(t, err)
	assert.Equal(t, "Alice", view.Name)
	assert.Equal(t, "loading", view.Phase)

	require.True(t, queue.Deliver(id, quiz.LoadResult{Questions: testutil.SampleQuestions(2)}))

	view, err = registry.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", view.Phase)
	assert.True(t, view.InProgress())
	assert.False(t, view.Fetching)
	assert.Equal(t, 2, view.Total)
	assert.Equal(t, 1, view.Number)
	assert.False(t, view.IsLast)
	assert.Equal(t, "Question 1?", view.Question)
	assert.Equal(t, "General Knowledge", view.Category)
	assert.ElementsMatch(t, []string{"right 1", "wrong 1a", "wrong 1b", "wrong 1c"}, view.Choices)

	_, err = registry.Advance(ctx, id)
	requireAppError(t, err, apperrors.ErrCodePrematureAdvance)

	view, err = registry.Select(ctx, id, "not a choice")
	requireAppError(t, err, apperrors.ErrCodeInvalidSelection)
	assert.False(t, view.HasSelected)

	view, err = registry.Select(ctx, id, "right 1")
	require.NoError(t, err)
	assert.Equal(t, "right 1", view.Selected)

	view, err = registry.Advance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Number)
	assert.True(t, view.IsLast)
	assert.Equal(t, 1, view.Score)
	assert.False(t, view.HasSelected)

	_, err = registry.Results(ctx, id)
	requireAppError(t, err, apperrors.ErrCodeConflict)

	_, err = registry.Select(ctx, id, "wrong 2a")
	require.NoError(t, err)
	view, err = registry.Advance(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "finished", view.Phase)
	require.NotNil(t, view.Results)
	assert.Equal(t, 1, view.Results.Score)
	assert.InDelta(t, 50.0, view.Results.Percentage, 0.0001)

	results, err := registry.Results(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", results.Name)
	require.Len(t, results.Review, 2)
	assert.False(t, results.Review[0].ShowCorrect())
	assert.True(t, results.Review[1].ShowCorrect())
	assert.Equal(t, "right 2", results.Review[1].Correct)

	_, err = registry.Advance(ctx, id)
	requireAppError(t, err, apperrors.ErrCodeConflict)

	stored, err := scoreboard.ForSession(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", stored.PlayerName)
	assert.Equal(t, models.SourceAPI, stored.Source)
	assert.Len(t, stored.Answers, 2)

	top, err := scoreboard.Top(ctx)
	require.NoError(t, err)
	assert.Len(t, top, 1)
	queue.AssertExpectations(t)
}

func TestSessionRegistry_QuestionsBeforeName(t *testing.T) {
	registry, queue, _ := newRegistry(t, nil)
	queue.On("EnqueueFetch", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	view, err := registry.Create(ctx, models.SourceWeb)
	require.NoError(t, err)
	require.True(t, queue.Deliver(view.ID, quiz.LoadResult{Questions: testutil.SampleQuestions(1)}))

	view, err = registry.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "awaiting_name", view.Phase)
	assert.Equal(t, 1, view.Total)

	_, err = registry.Select(ctx, view.ID, "right 1")
	requireAppError(t, err, apperrors.ErrCodeConflict)

	view, err = registry.SubmitName(ctx, view.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, "in_progress", view.Phase)
	assert.True(t, view.IsLast)
}

func TestSessionRegistry_NameRules(t *testing.T) {
	registry, queue, _ := newRegistry(t, nil)
	queue.On("EnqueueFetch", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	view, err := registry.Create(ctx, models.SourceWeb)
	require.NoError(t, err)

	view, err = registry.SubmitName(ctx, view.ID, "   ")
	requireAppError(t, err, apperrors.ErrCodeValidation)
	assert.Empty(t, view.Name)

	_, err = registry.SubmitName(ctx, view.ID, "carol")
	require.NoError(t, err)

	view, err = registry.SubmitName(ctx, view.ID, "dave")
	requireAppError(t, err, apperrors.ErrCodeConflict)
	assert.Equal(t, "Carol", view.Name)
}

func TestSessionRegistry_ProviderFailureAndRetry(t *testing.T) {
	registry, queue, _ := newRegistry(t, nil)
	queue.On("EnqueueFetch", mock.Anything, mock.Anything).Return(nil).Twice()
	ctx := context.Background()

	view, err := registry.Create(ctx, models.SourceWeb)
	require.NoError(t, err)
	id := view.ID
	_, err = registry.SubmitName(ctx, id, "erin")
	require.NoError(t, err)

	_, err = registry.Retry(ctx, id)
	requireAppError(t, err, apperrors.ErrCodeConflict)

	require.True(t, queue.Deliver(id, quiz.LoadResult{Err: errors.New("connection refused")}))

	view, err = registry.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "loading", view.Phase)
	assert.False(t, view.Fetching)
	assert.True(t, view.Retryable)
	assert.Contains(t, view.Error, "connection refused")

	view, err = registry.Retry(ctx, id)
	require.NoError(t, err)
	assert.True(t, view.Fetching)
	assert.Empty(t, view.Error)

	require.True(t, queue.Deliver(id, quiz.LoadResult{Questions: testutil.SampleQuestions(3)}))
	view, err = registry.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", view.Phase)

	_, err = registry.Retry(ctx, id)
	requireAppError(t, err, apperrors.ErrCodeConflict)
	queue.AssertExpectations(t)
}

func TestSessionRegistry_EnqueueFailure(t *testing.T) {
	registry, queue, _ := newRegistry(t, nil)
	queue.On("EnqueueFetch", mock.Anything, mock.Anything).Return(worker.ErrQueueFull).Once()
	queue.On("EnqueueFetch", mock.Anything, mock.Anything).Return(nil).Once()
	ctx := context.Background()

	view, err := registry.Create(ctx, models.SourceWeb)
	require.NoError(t, err)
	assert.False(t, view.Fetching)
	assert.True(t, view.Retryable)
	assert.Contains(t, view.Error, "queue is full")

	view, err = registry.Retry(ctx, view.ID)
	require.NoError(t, err)
	assert.True(t, view.Fetching)
	queue.AssertExpectations(t)
}

func TestSessionRegistry_EmptyQuestionSetIsTerminal(t *testing.T) {
	registry, queue, _ := newRegistry(t, nil)
	queue.On("EnqueueFetch", mock.Anything, mock.Anything).Return(nil).Once()
	ctx := context.Background()

	view, err := registry.Create(ctx, models.SourceWeb)
	require.NoError(t, err)
	require.True(t, queue.Deliver(view.ID, quiz.LoadResult{Questions: []quiz.Question{}}))

	view, err = registry.Get(ctx, view.ID)
	require.NoError(t, err)
	assert.Equal(t, "failed", view.Phase)
	assert.False(t, view.Retryable)
	assert.NotEmpty(t, view.Error)

	_, err = registry.Retry(ctx, view.ID)
	requireAppError(t, err, apperrors.ErrCodeConflict)

	_, err = registry.SubmitName(ctx, view.ID, "frank")
	requireAppError(t, err, apperrors.ErrCodeEmptyQuestionSet)
	queue.AssertExpectations(t)
}

func TestSessionRegistry_NotFound(t *testing.T) {
	registry, _, _ := newRegistry(t, nil)

	_, err := registry.Get(context.Background(), "missing")
	requireAppError(t, err, apperrors.ErrCodeNotFound)

	_, err = registry.Results(context.Background(), "missing")
	requireAppError(t, err, apperrors.ErrCodeNotFound)
}

func TestSessionRegistry_Prune(t *testing.T) {
	registry, queue, clock := newRegistry(t, nil)
	queue.On("EnqueueFetch", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	stale, err := registry.Create(ctx, models.SourceWeb)
	require.NoError(t, err)

	clock.t = clock.t.Add(45 * time.Minute)
	fresh, err := registry.Create(ctx, models.SourceWeb)
	require.NoError(t, err)

	clock.t = clock.t.Add(30 * time.Minute)
	assert.Equal(t, 1, registry.Prune(ctx))
	assert.Equal(t, 1, registry.Len())

	_, err = registry.Get(ctx, stale.ID)
	requireAppError(t, err, apperrors.ErrCodeNotFound)
	_, err = registry.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestSessionRegistry_RecordsOnceEvenIfScoreboardFails(t *testing.T) {
	scoreboard := &countingScoreboard{err: errors.New("db locked")}
	registry, queue, _ := newRegistry(t, scoreboard)
	queue.On("EnqueueFetch", mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	view, err := registry.Create(ctx, models.SourceWeb)
	require.NoError(t, err)
	_, err = registry.SubmitName(ctx, view.ID, "gina")
	require.NoError(t, err)
	require.True(t, queue.Deliver(view.ID, quiz.LoadResult{Questions: testutil.SampleQuestions(1)}))
	_, err = registry.Select(ctx, view.ID, "right 1")
	require.NoError(t, err)

	view, err = registry.Advance(ctx, view.ID)
	require.NoError(t, err, "scoreboard errors must not fail the player's request")
	assert.Equal(t, "finished", view.Phase)
	assert.Equal(t, 1, scoreboard.calls)
}

type countingScoreboard struct {
	calls int
	err   error
}

func (c *countingScoreboard) Record(context.Context, string, string, quiz.Results, time.Time) error {
	c.calls++
	return c.err
}

func (c *countingScoreboard) Top(context.Context) ([]models.ScoreboardEntry, error) {
	return nil, nil
}

func (c *countingScoreboard) ForSession(context.Context, string) (*models.QuizResult, error) {
	return nil, nil
}

func TestSessionRegistry_OnLoadHook(t *testing.T) {
	queue := new(mocks.MockFetchQueue)
	queue.On("EnqueueFetch", mock.Anything, mock.Anything).Return(nil)

	var loaded []services.SessionView
	registry := services.NewSessionRegistry(queue, nil, services.RegistryOptions{
		OnLoad: func(v services.SessionView) { loaded = append(loaded, v) },
	})
	ctx := context.Background()

	view, err := registry.Create(ctx, models.SourceTelegram)
	require.NoError(t, err)
	assert.Empty(t, loaded)

	require.True(t, queue.Deliver(view.ID, quiz.LoadResult{Err: errors.New("timeout")}))
	require.Len(t, loaded, 1)
	assert.True(t, loaded[0].Retryable)
	assert.Equal(t, view.ID, loaded[0].ID)

	_, err = registry.Retry(ctx, view.ID)
	require.NoError(t, err)
	require.True(t, queue.Deliver(view.ID, quiz.LoadResult{Questions: testutil.SampleQuestions(2)}))
	require.Len(t, loaded, 2)
	assert.Equal(t, 2, loaded[1].Total)
	assert.Empty(t, loaded[1].Error)
}
