// Package quiz runs quiz sessions over the question store.
package quiz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/codewriterrussian/voc-selftest/internal/domain"
	"github.com/codewriterrussian/voc-selftest/internal/speech"
	"github.com/codewriterrussian/voc-selftest/internal/store"
	"github.com/google/uuid"
)

// Speak targets.
const (
	TargetQuestion    = "question"
	TargetOption      = "option"
	TargetExplanation = "explanation"
)

// ErrUnknownSpeakTarget is returned for speak requests naming nothing speakable.
var ErrUnknownSpeakTarget = errors.New("unknown speak target")

// Owner identifies the browser tab (or terminal) a session belongs to.
type Owner struct {
	UserID    string
	SessionID string
	// RemoteIP is only logged.
	RemoteIP string
}

// QuestionSource is the part of the question store sessions depend on.
type QuestionSource interface {
	Categories() []string
	Questions(category string) ([]domain.Question, bool)
	RemoveQuestion(ctx context.Context, category string, q domain.Question) ([]domain.Question, bool)
}

// Manager drives quiz sessions and persists them after every transition.
type Manager struct {
	questions QuestionSource
	repo      store.Repository
	speaker   speech.Speaker
	shuffle   domain.ShuffleFunc
	now       func() time.Time

	mu sync.Mutex // serializes load-modify-save of sessions
}

// Option configures a Manager.
type Option func(*Manager)

// WithSpeaker sets the speech side channel. Defaults to speech.Nop.
func WithSpeaker(s speech.Speaker) Option {
	return func(m *Manager) { m.speaker = s }
}

// WithShuffle overrides the permutation applied to new sessions.
func WithShuffle(fn domain.ShuffleFunc) Option {
	return func(m *Manager) { m.shuffle = fn }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a session manager.
func NewManager(questions QuestionSource, repo store.Repository, opts ...Option) *Manager {
	m := &Manager{
		questions: questions,
		repo:      repo,
		speaker:   speech.Nop{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Categories lists the available categories in sorted order.
func (m *Manager) Categories(_ context.Context) []string {
	return m.questions.Categories()
}

// Start begins a new session on category, replacing any session the owner had.
// No session is created for an unknown or empty category.
func (m *Manager) Start(ctx context.Context, owner Owner, category string) (*domain.QuizSession, error) {
	qs, ok := m.questions.Questions(category)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, category)
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmptyCategory, category)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	session := domain.NewQuizSession(uuid.NewString(), owner.UserID, owner.SessionID, category, qs, m.shuffle, m.now())
	if err := m.repo.UpsertQuizSession(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	slog.Info("Quiz session started",
		"user_id", owner.UserID,
		"session_id", owner.SessionID,
		"quiz_id", session.ID,
		"category", category,
		"questions", len(session.Questions),
		"ip", owner.RemoteIP)
	return session, nil
}

// Current returns the owner's session.
func (m *Manager) Current(ctx context.Context, owner Owner) (*domain.QuizSession, error) {
	return m.load(ctx, owner)
}

// SubmitAnswer scores letter against the current question. The index does not move.
func (m *Manager) SubmitAnswer(ctx context.Context, owner Owner, letter string) (domain.AnswerResult, *domain.QuizSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.load(ctx, owner)
	if err != nil {
		return domain.AnswerResult{}, nil, err
	}

	res, err := session.SubmitAnswer(letter)
	if err != nil {
		return domain.AnswerResult{}, session, err
	}
	res.Explanation = domain.Sanitize(res.Explanation)

	if err := m.save(ctx, session); err != nil {
		return domain.AnswerResult{}, nil, err
	}
	return res, session, nil
}

// Next advances the owner's session by one question.
func (m *Manager) Next(ctx context.Context, owner Owner) (*domain.QuizSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	if !session.Next() {
		return session, nil
	}
	if err := m.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// DeleteCurrent removes the current question from the session and from the
// store. The following question takes its place at the same index.
func (m *Manager) DeleteCurrent(ctx context.Context, owner Owner) (domain.Question, *domain.QuizSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, err := m.load(ctx, owner)
	if err != nil {
		return domain.Question{}, nil, err
	}

	removed, ok := session.RemoveCurrent()
	if !ok {
		return domain.Question{}, session, domain.ErrSessionFinished
	}
	if err := m.save(ctx, session); err != nil {
		return domain.Question{}, nil, err
	}

	if _, found := m.questions.RemoveQuestion(ctx, session.Category, removed); !found {
		slog.Warn("Deleted question no longer in store",
			"category", session.Category,
			"question", removed.Text,
			"quiz_id", session.ID)
	} else {
		slog.Info("Question deleted",
			"category", session.Category,
			"quiz_id", session.ID,
			"remaining", len(session.Questions))
	}
	return removed, session, nil
}

// End discards the owner's session.
func (m *Manager) End(ctx context.Context, owner Owner) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.repo.DeleteQuizSession(ctx, owner.UserID, owner.SessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Voice returns the speech voice for category.
func (m *Manager) Voice(category string) string {
	return speech.VoiceFor(category)
}

// Speak reads part of the current question aloud. key selects the option letter
// when target is TargetOption.
func (m *Manager) Speak(ctx context.Context, owner Owner, target, key string) error {
	session, err := m.load(ctx, owner)
	if err != nil {
		return err
	}
	q, ok := session.CurrentQuestion()
	if !ok {
		return domain.ErrSessionFinished
	}

	var text string
	switch target {
	case TargetQuestion:
		text = q.Text
	case TargetExplanation:
		text = q.Explanation
	case TargetOption:
		opt, ok := q.Options[key]
		if !ok {
			return fmt.Errorf("%w: option %q", ErrUnknownSpeakTarget, key)
		}
		text = opt
	default:
		return fmt.Errorf("%w: %q", ErrUnknownSpeakTarget, target)
	}

	m.speaker.Speak(speech.Utterance{
		UserID:    owner.UserID,
		SessionID: owner.SessionID,
		Text:      domain.Sanitize(text),
		Voice:     m.Voice(session.Category),
	})
	return nil
}

func (m *Manager) load(ctx context.Context, owner Owner) (*domain.QuizSession, error) {
	session, err := m.repo.GetQuizSession(ctx, owner.UserID, owner.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrNoSession
	}
	return session, nil
}

func (m *Manager) save(ctx context.Context, session *domain.QuizSession) error {
	session.UpdatedAt = m.now()
	if err := m.repo.UpsertQuizSession(ctx, session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}
