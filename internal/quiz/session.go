package quiz

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// Session walks one player through one batch of questions.
//
// Name entry and question loading are independent: either may happen first,
// and the quiz is in progress once both are done. A Session is not safe for
// concurrent use; hosts serving several goroutines must serialise access.
type Session struct {
	decode   Decoder
	shuffler *Shuffler

	name string

	questions []Question
	loaded    bool
	fetching  bool
	failed    bool
	loadErr   error

	current     int
	choices     []string
	selected    string
	hasSelected bool
	score       int
	records     []AnsweredRecord
	finished    bool
}

// Option configures a Session.
type Option func(*Session)

// WithDecoder replaces the HTML entity decoder.
func WithDecoder(d Decoder) Option {
	return func(s *Session) {
		s.decode = d
	}
}

// WithShuffler sets the entropy source for answer ordering.
func WithShuffler(sh *Shuffler) Option {
	return func(s *Session) {
		s.shuffler = sh
	}
}

// NewSession returns a session awaiting a player name.
func NewSession(opts ...Option) *Session {
	s := &Session{
		decode: DecodeHTML,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.shuffler == nil {
		s.shuffler = NewRandomShuffler()
	}
	return s
}

// Phase reports where the session is in its lifecycle.
func (s *Session) Phase() Phase {
	switch {
	case s.failed:
		return PhaseFailed
	case s.finished:
		return PhaseFinished
	case s.name == "":
		return PhaseAwaitingName
	case !s.loaded:
		return PhaseLoading
	default:
		return PhaseInProgress
	}
}

// SubmitName stores the player's name with its first character upper-cased.
// Blank input, or a second call once a name is stored, leaves the session
// unchanged and returns false.
func (s *Session) SubmitName(raw string) bool {
	if s.name != "" || s.failed {
		return false
	}
	name, ok := NormalizeName(raw)
	if !ok {
		return false
	}
	s.name = name
	return true
}

// Begin marks a fetch as issued. Callers running the provider on their own
// executor call Begin first and hand the outcome to Apply.
func (s *Session) Begin() error {
	if s.loaded || s.failed {
		return ErrAlreadyLoaded
	}
	if s.fetching {
		return ErrFetchInFlight
	}
	s.fetching = true
	s.loadErr = nil
	return nil
}

// Start issues the question fetch without blocking. Exactly one LoadResult is
// delivered on the returned channel; the owner passes it to Apply.
// ctx bounds the fetch, so give it a deadline.
func (s *Session) Start(ctx context.Context, p Provider) (<-chan LoadResult, error) {
	if err := s.Begin(); err != nil {
		return nil, err
	}
	ch := make(chan LoadResult, 1)
	go func() {
		defer close(ch)
		qs, err := p.FetchQuestions(ctx)
		ch <- LoadResult{Questions: qs, Err: err}
	}()
	return ch, nil
}

// Apply feeds a fetch outcome back into the session.
func (s *Session) Apply(res LoadResult) error {
	if res.Err != nil {
		if errors.Is(res.Err, ErrEmptyQuestionSet) {
			return s.QuestionsLoaded(nil)
		}
		s.LoadFailed(res.Err)
		return s.loadErr
	}
	return s.QuestionsLoaded(res.Questions)
}

// LoadFailed records a provider failure. The session stays where it was and
// a new fetch may be issued; the core never retries on its own.
func (s *Session) LoadFailed(err error) {
	s.fetching = false
	if s.loaded || s.failed || err == nil {
		return
	}
	if !errors.Is(err, ErrProviderUnavailable) {
		err = fmt.Errorf("%w: %w", ErrProviderUnavailable, err)
	}
	s.loadErr = err
}

// QuestionsLoaded installs the batch and prepares the first question. An
// empty batch fails the session permanently with ErrEmptyQuestionSet.
func (s *Session) QuestionsLoaded(qs []Question) error {
	if s.loaded || s.failed {
		return ErrAlreadyLoaded
	}
	s.fetching = false
	if len(qs) == 0 {
		s.failed = true
		s.loadErr = ErrEmptyQuestionSet
		return ErrEmptyQuestionSet
	}

	s.questions = slices.Clone(qs)
	s.loaded = true
	s.loadErr = nil
	s.current = 0
	s.score = 0
	s.records = make([]AnsweredRecord, 0, len(qs))
	s.clearSelection()
	s.choices = s.shuffler.Choices(s.questions[0], s.decode)
	return nil
}

// SelectAnswer marks choice as the player's answer to the current question.
// Selecting again overwrites the previous choice.
func (s *Session) SelectAnswer(choice string) error {
	if s.Phase() != PhaseInProgress {
		return ErrNotInProgress
	}
	if !slices.Contains(s.choices, choice) {
		return fmt.Errorf("%w: %q", ErrInvalidSelection, choice)
	}
	s.selected = choice
	s.hasSelected = true
	return nil
}

// Advance scores the current question, records it and moves on. After the
// last question the session is finished.
func (s *Session) Advance() error {
	if s.Phase() != PhaseInProgress {
		return ErrNotInProgress
	}
	if !s.hasSelected {
		return ErrPrematureAdvance
	}

	q := s.questions[s.current]
	correct := s.decode(q.CorrectAnswer)
	if s.selected == correct {
		s.score++
	}
	s.records = append(s.records, AnsweredRecord{
		Question: s.decode(q.Prompt),
		Selected: s.selected,
		Correct:  correct,
	})
	s.clearSelection()

	if s.current+1 < len(s.questions) {
		s.current++
		s.choices = s.shuffler.Choices(s.questions[s.current], s.decode)
		return nil
	}
	s.choices = nil
	s.finished = true
	return nil
}

func (s *Session) clearSelection() {
	s.selected = ""
	s.hasSelected = false
}

// Name returns the stored display name, or "" before SubmitName succeeds.
func (s *Session) Name() string { return s.name }

// Err returns the last load error, if any.
func (s *Session) Err() error { return s.loadErr }

// Fetching reports whether a fetch has been issued and not yet applied.
func (s *Session) Fetching() bool { return s.fetching }

// Total is the number of questions in the batch.
func (s *Session) Total() int { return len(s.questions) }

// CurrentIndex is the zero-based index of the question being answered.
func (s *Session) CurrentIndex() int { return s.current }

// IsLast reports whether the current question is the final one.
func (s *Session) IsLast() bool {
	return s.loaded && s.current == len(s.questions)-1
}

// Score is the number of correct answers recorded so far.
func (s *Session) Score() int { return s.score }

// Selected returns the current selection.
func (s *Session) Selected() (string, bool) { return s.selected, s.hasSelected }

// Choices returns a copy of the current choice set.
func (s *Session) Choices() []string { return slices.Clone(s.choices) }

// Records returns a copy of the answered records.
func (s *Session) Records() []AnsweredRecord { return slices.Clone(s.records) }

// CurrentQuestion returns the decoded prompt of the current question.
func (s *Session) CurrentQuestion() (string, bool) {
	if s.Phase() != PhaseInProgress {
		return "", false
	}
	return s.decode(s.questions[s.current].Prompt), true
}

// CurrentCategory returns the decoded category of the current question.
func (s *Session) CurrentCategory() string {
	if !s.loaded || s.finished {
		return ""
	}
	return s.decode(s.questions[s.current].Category)
}
