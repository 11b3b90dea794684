package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vytor/triviaflash/internal/errors"
	"github.com/vytor/triviaflash/internal/jobs"
	"github.com/vytor/triviaflash/internal/logger"
	"github.com/vytor/triviaflash/internal/quiz"
)

// SessionView is a point-in-time snapshot of one session for rendering.
type SessionView struct {
	ID          string        `json:"id"`
	Phase       string        `json:"phase"`
	Name        string        `json:"name,omitempty"`
	Fetching    bool          `json:"fetching"`
	Error       string        `json:"error,omitempty"`
	Retryable   bool          `json:"retryable"`
	Total       int           `json:"total"`
	Index       int           `json:"index"`
	Number      int           `json:"number"`
	IsLast      bool          `json:"is_last"`
	Category    string        `json:"category,omitempty"`
	Question    string        `json:"question,omitempty"`
	Choices     []string      `json:"choices,omitempty"`
	Selected    string        `json:"selected,omitempty"`
	HasSelected bool          `json:"has_selected"`
	Score       int           `json:"score"`
	Results     *quiz.Results `json:"results,omitempty"`
}

// InProgress reports whether a question is on screen.
func (v SessionView) InProgress() bool { return v.Phase == quiz.PhaseInProgress.String() }

// RegistryOptions configures a SessionRegistry.
type RegistryOptions struct {
	// TTL is how long an untouched session survives Prune.
	TTL        time.Duration
	Now        func() time.Time
	NewSession func() *quiz.Session
	// OnLoad, when set, receives the session view after every completed
	// fetch. It runs on the fetch worker without any session lock held.
	OnLoad func(SessionView)
}

// SessionRegistry hosts many concurrent quiz sessions keyed by id. Each
// session is guarded by its own mutex; fetches run on the fetch queue and
// are applied under that mutex when they complete.
type SessionRegistry struct {
	queue      jobs.FetchQueue
	scoreboard ScoreboardService
	ttl        time.Duration
	now        func() time.Time
	newSession func() *quiz.Session
	onLoad     func(SessionView)

	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu       sync.Mutex
	id       string
	source   string
	session  *quiz.Session
	lastSeen time.Time
	recorded bool
}

// NewSessionRegistry creates a registry. scoreboard may be nil, in which case
// finished sessions are not recorded.
func NewSessionRegistry(queue jobs.FetchQueue, scoreboard ScoreboardService, opts RegistryOptions) *SessionRegistry {
	r := &SessionRegistry{
		queue:      queue,
		scoreboard: scoreboard,
		ttl:        opts.TTL,
		now:        opts.Now,
		newSession: opts.NewSession,
		onLoad:     opts.OnLoad,
		sessions:   make(map[string]*sessionEntry),
	}
	if r.now == nil {
		r.now = time.Now
	}
	if r.newSession == nil {
		r.newSession = func() *quiz.Session { return quiz.NewSession() }
	}
	return r
}

// Create starts a new session and immediately issues its question fetch, so
// questions load while the player types a name.
func (r *SessionRegistry) Create(ctx context.Context, source string) (SessionView, error) {
	e := &sessionEntry{
		id:       uuid.NewString(),
		source:   source,
		session:  r.newSession(),
		lastSeen: r.now(),
	}
	log := logger.FromContext(ctx).WithField("session_id", e.id)

	r.mu.Lock()
	r.sessions[e.id] = e
	r.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := r.beginFetch(ctx, e); err != nil {
		log.Warn("initial fetch not issued: %v", err)
	}
	log.Info("session created: source=%s", source)
	return r.view(e), nil
}

// beginFetch must be called with e.mu held.
func (r *SessionRegistry) beginFetch(ctx context.Context, e *sessionEntry) error {
	if err := e.session.Begin(); err != nil {
		return err
	}
	log := logger.FromContext(ctx).WithField("session_id", e.id)

	err := r.queue.EnqueueFetch(e.id, func(res quiz.LoadResult) {
		e.mu.Lock()
		if err := e.session.Apply(res); err != nil {
			log.Warn("question fetch failed: %v", err)
		} else {
			log.Info("questions loaded: total=%d", e.session.Total())
		}
		v := r.view(e)
		e.mu.Unlock()

		if r.onLoad != nil {
			r.onLoad(v)
		}
	})
	if err != nil {
		e.session.LoadFailed(err)
		return e.session.Err()
	}
	return nil
}

func (r *SessionRegistry) lookup(id string) (*sessionEntry, error) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NewNotFoundError("session", id)
	}
	return e, nil
}

// with runs fn on the session under its lock and returns the resulting view.
func (r *SessionRegistry) with(id string, fn func(e *sessionEntry) error) (SessionView, error) {
	e, err := r.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSeen = r.now()

	if err := fn(e); err != nil {
		return r.view(e), err
	}
	return r.view(e), nil
}

func (r *SessionRegistry) Get(ctx context.Context, id string) (SessionView, error) {
	return r.with(id, func(*sessionEntry) error { return nil })
}

// SubmitName stores the player's name. Blank names are a validation error and
// a second name is a conflict; neither changes the session.
func (r *SessionRegistry) SubmitName(ctx context.Context, id, raw string) (SessionView, error) {
	return r.with(id, func(e *sessionEntry) error {
		if e.session.SubmitName(raw) {
			logger.FromContext(ctx).WithField("session_id", id).Debug("name submitted: %s", e.session.Name())
			return nil
		}
		switch {
		case e.session.Name() != "":
			return errors.NewConflictError("name already set")
		case e.session.Phase() == quiz.PhaseFailed:
			return errors.FromQuizError(e.session.Err())
		default:
			return errors.NewValidationError("name", "cannot be empty")
		}
	})
}

func (r *SessionRegistry) Select(ctx context.Context, id, choice string) (SessionView, error) {
	return r.with(id, func(e *sessionEntry) error {
		if err := e.session.SelectAnswer(choice); err != nil {
			logger.FromContext(ctx).WithField("session_id", id).Warn("selection rejected: %v", err)
			return errors.FromQuizError(err)
		}
		return nil
	})
}

// Advance scores the current question. When it finishes the session, the
// results are recorded on the scoreboard once.
func (r *SessionRegistry) Advance(ctx context.Context, id string) (SessionView, error) {
	return r.with(id, func(e *sessionEntry) error {
		log := logger.FromContext(ctx).WithField("session_id", id)
		if err := e.session.Advance(); err != nil {
			log.Warn("advance rejected: %v", err)
			return errors.FromQuizError(err)
		}
		if e.session.Phase() == quiz.PhaseFinished {
			log.Info("session finished: score=%d/%d", e.session.Score(), e.session.Total())
			r.record(ctx, e)
		}
		return nil
	})
}

// record must be called with e.mu held. Scoreboard failures are logged and
// never fail the player's request.
func (r *SessionRegistry) record(ctx context.Context, e *sessionEntry) {
	if r.scoreboard == nil || e.recorded {
		return
	}
	results, err := e.session.Results()
	if err != nil {
		return
	}
	if err := r.scoreboard.Record(ctx, e.id, e.source, results, r.now()); err != nil {
		logger.FromContext(ctx).WithField("session_id", e.id).Error("failed to record result: %v", err)
		return
	}
	e.recorded = true
}

// Retry issues a new fetch after a provider failure.
func (r *SessionRegistry) Retry(ctx context.Context, id string) (SessionView, error) {
	return r.with(id, func(e *sessionEntry) error {
		if err := r.beginFetch(ctx, e); err != nil {
			return errors.FromQuizError(err)
		}
		logger.FromContext(ctx).WithField("session_id", id).Info("question fetch retried")
		return nil
	})
}

func (r *SessionRegistry) Results(ctx context.Context, id string) (quiz.Results, error) {
	var results quiz.Results
	_, err := r.with(id, func(e *sessionEntry) error {
		var err error
		results, err = e.session.Results()
		if err != nil {
			return errors.FromQuizError(err)
		}
		return nil
	})
	return results, err
}

// Prune drops sessions idle for longer than the TTL and returns how many
// were removed. A zero TTL disables pruning.
func (r *SessionRegistry) Prune(ctx context.Context) int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, e := range r.sessions {
		e.mu.Lock()
		idle := e.lastSeen.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		logger.FromContext(ctx).Info("pruned %d idle sessions", removed)
	}
	return removed
}

// RunPruner calls Prune every interval until ctx is done.
func (r *SessionRegistry) RunPruner(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Prune(ctx)
		}
	}
}

// Len returns the number of live sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// view must be called with e.mu held.
func (r *SessionRegistry) view(e *sessionEntry) SessionView {
	s := e.session
	v := SessionView{
		ID:       e.id,
		Phase:    s.Phase().String(),
		Name:     s.Name(),
		Fetching: s.Fetching(),
		Total:    s.Total(),
		Score:    s.Score(),
	}
	if err := s.Err(); err != nil {
		v.Error = err.Error()
		v.Retryable = s.Phase() != quiz.PhaseFailed && !s.Fetching()
	}

	switch s.Phase() {
	case quiz.PhaseInProgress:
		v.Index = s.CurrentIndex()
		v.Number = v.Index + 1
		v.IsLast = s.IsLast()
		v.Category = s.CurrentCategory()
		v.Question, _ = s.CurrentQuestion()
		v.Choices = s.Choices()
		v.Selected, v.HasSelected = s.Selected()
	case quiz.PhaseFinished:
		v.Index = s.Total()
		v.Number = s.Total()
		if res, err := s.Results(); err == nil {
			v.Results = &res
		}
	}
	return v
}
