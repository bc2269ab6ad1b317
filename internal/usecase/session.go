package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/eslsoft/quizwhiz/internal/entity"
	"github.com/eslsoft/quizwhiz/internal/repository"
)

// SessionState names the phases of one quiz attempt.
type SessionState int32

const (
	StateLoading SessionState = iota
	StateInProgress
	StateTallying
	StateComplete
	StateError
)

func (s SessionState) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateInProgress:
		return "in_progress"
	case StateTallying:
		return "tallying"
	case StateComplete:
		return "complete"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Session owns one quiz attempt: the question sequence, the current
// position, the submitted answers and the wall-clock timer. A new
// attempt always starts a fresh Session; finished sessions are never
// reused.
type Session struct {
	mu sync.Mutex

	userID    int64
	decks     repository.DeckRepository
	generator *QuestionGenerator
	clock     func() time.Time
	tick      time.Duration

	state     SessionState
	deck      *entity.Deck
	questions []entity.Question
	answers   entity.AnswerRecord
	index     int
	elapsed   int
	timerStop chan struct{}
	result    *entity.SessionResult
	err       error
}

// SessionOption customises a Session.
type SessionOption func(*Session)

// WithClock replaces the completion timestamp source.
func WithClock(clock func() time.Time) SessionOption {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithTickInterval overrides the one-second timer resolution. Tests
// shrink it to keep timing assertions fast.
func WithTickInterval(d time.Duration) SessionOption {
	return func(s *Session) {
		if d > 0 {
			s.tick = d
		}
	}
}

// WithGenerator replaces the question generator.
func WithGenerator(g *QuestionGenerator) SessionOption {
	return func(s *Session) {
		if g != nil {
			s.generator = g
		}
	}
}

// NewSession creates a session in the Loading state for one user and
// deck source.
func NewSession(userID int64, decks repository.DeckRepository, opts ...SessionOption) *Session {
	s := &Session{
		userID:    userID,
		decks:     decks,
		generator: NewQuestionGenerator(),
		clock:     time.Now,
		tick:      time.Second,
		state:     StateLoading,
		answers:   make(entity.AnswerRecord),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start fetches the deck and its flashcards, generates the question
// sequence and moves the session to InProgress, starting the timer.
// An empty deck fails with entity.ErrEmptyDeck before any timer runs.
func (s *Session) Start(ctx context.Context, deckID int64) error {
	s.mu.Lock()
	if s.state != StateLoading {
		s.mu.Unlock()
		return fmt.Errorf("start: %w", entity.ErrSessionState)
	}
	s.mu.Unlock()

	deck, err := s.decks.GetDeck(ctx, deckID)
	if err != nil {
		return s.fail(fmt.Errorf("load deck %d: %w", deckID, err))
	}
	cards, err := s.decks.ListFlashcards(ctx, deckID)
	if err != nil {
		return s.fail(fmt.Errorf("load flashcards for deck %d: %w", deckID, err))
	}
	questions, err := s.generator.Generate(cards)
	if err != nil {
		return s.fail(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading {
		// Abandoned while loading.
		return fmt.Errorf("start: %w", entity.ErrSessionState)
	}
	s.deck = deck
	s.questions = questions
	s.state = StateInProgress
	s.startTimerLocked()
	return nil
}

// Current returns the question at the cursor. ok is false outside
// InProgress.
func (s *Session) Current() (q entity.Question, index int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return entity.Question{}, 0, false
	}
	return s.questions[s.index], s.index, true
}

// Answer records or overwrites the answer for the current question.
// Submitting empty text clears the answer: the record never holds
// entries for unanswered questions.
func (s *Session) Answer(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return fmt.Errorf("answer: %w", entity.ErrSessionState)
	}
	id := s.questions[s.index].FlashcardID
	if text == "" {
		delete(s.answers, id)
		return nil
	}
	s.answers[id] = text
	return nil
}

// Next advances the cursor. Moving past the last question instead
// freezes the timer, grades the session and transitions to Tallying;
// done reports that transition.
func (s *Session) Next() (done bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return false, fmt.Errorf("next: %w", entity.ErrSessionState)
	}
	if s.index < len(s.questions)-1 {
		s.index++
		return false, nil
	}
	s.finalizeLocked()
	return true, nil
}

// Prev moves the cursor back one question, bounded at the first.
func (s *Session) Prev() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return fmt.Errorf("prev: %w", entity.ErrSessionState)
	}
	if s.index > 0 {
		s.index--
	}
	return nil
}

// Abandon exits the attempt, stopping the timer and discarding all
// mutable state without writing anything. Allowed while loading or in
// progress only.
func (s *Session) Abandon() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading && s.state != StateInProgress {
		return fmt.Errorf("abandon: %w", entity.ErrSessionState)
	}
	s.stopTimerLocked()
	s.questions = nil
	s.answers = nil
	s.state = StateError
	s.err = entity.ErrSessionAbandoned
	return nil
}

// Result returns the frozen session outcome once tallying has begun.
func (s *Session) Result() (*entity.SessionResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTallying && s.state != StateComplete {
		return nil, fmt.Errorf("result: %w", entity.ErrSessionState)
	}
	return s.result, nil
}

// MarkComplete moves a tallied session to its terminal state once the
// caller has finished persisting the outcome.
func (s *Session) MarkComplete() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateTallying {
		return fmt.Errorf("complete: %w", entity.ErrSessionState)
	}
	s.state = StateComplete
	return nil
}

// State returns the current phase.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error that moved the session to StateError.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Elapsed returns the seconds counted so far.
func (s *Session) Elapsed() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.elapsed
}

// TotalQuestions returns the length of the generated sequence.
func (s *Session) TotalQuestions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.questions)
}

// AnsweredCount returns how many questions currently have answers.
func (s *Session) AnsweredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.answers)
}

func (s *Session) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopTimerLocked()
	s.state = StateError
	s.err = err
	return err
}

// finalizeLocked stops the timer, freezes the elapsed time and grades
// the attempt. The produced SessionResult is immutable from here on.
func (s *Session) finalizeLocked() {
	s.stopTimerLocked()
	s.state = StateTallying
	s.result = NewSessionResult(s.deck, s.userID, s.questions, s.answers, s.elapsed, s.clock())
}

// startTimerLocked launches the one-second ticker that accumulates
// elapsed time while the session stays in progress.
func (s *Session) startTimerLocked() {
	stop := make(chan struct{})
	s.timerStop = stop
	ticker := time.NewTicker(s.tick)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				s.mu.Lock()
				if s.state == StateInProgress {
					s.elapsed++
				}
				s.mu.Unlock()
			}
		}
	}()
}

// stopTimerLocked cancels the ticker exactly once. Every transition
// out of InProgress goes through here so no recurring work is left
// behind.
func (s *Session) stopTimerLocked() {
	if s.timerStop != nil {
		close(s.timerStop)
		s.timerStop = nil
	}
}
