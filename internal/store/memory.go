package store

import (
	"context"
	"sync"
	"time"

	"github.com/codewriterrussian/voc-selftest/internal/domain"
)

var (
	_ Repository = (*SQLiteStore)(nil)
	_ Repository = (*MemoryStore)(nil)
)

type sessionKey struct {
	userID    string
	sessionID string
}

// MemoryStore implements Repository in process memory. State is lost on exit.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[sessionKey]*domain.QuizSession
	styles   map[string]domain.Style
}

// NewMemory returns an empty in-memory repository.
func NewMemory() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[sessionKey]*domain.QuizSession),
		styles:   make(map[string]domain.Style),
	}
}

// GetQuizSession returns a copy of the stored session.
func (m *MemoryStore) GetQuizSession(_ context.Context, userID, sessionID string) (*domain.QuizSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionKey{userID, sessionID}]
	if !ok {
		return nil, nil
	}
	return cloneSession(s), nil
}

// UpsertQuizSession stores a copy of session.
func (m *MemoryStore) UpsertQuizSession(_ context.Context, session *domain.QuizSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[sessionKey{session.UserID, session.SessionID}] = cloneSession(session)
	return nil
}

// DeleteQuizSession removes the stored session, if any.
func (m *MemoryStore) DeleteQuizSession(_ context.Context, userID, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, sessionKey{userID, sessionID})
	return nil
}

// CleanupExpiredSessions removes sessions not updated within ttl.
func (m *MemoryStore) CleanupExpiredSessions(_ context.Context, ttl time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	threshold := time.Now().Add(-ttl)
	var n int64
	for k, s := range m.sessions {
		if s.UpdatedAt.Before(threshold) {
			delete(m.sessions, k)
			n++
		}
	}
	return n, nil
}

// GetStyle returns the stored style for userID.
func (m *MemoryStore) GetStyle(_ context.Context, userID string) (*domain.Style, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.styles[userID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// UpsertStyle stores style for userID.
func (m *MemoryStore) UpsertStyle(_ context.Context, userID string, style domain.Style) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.styles[userID] = style
	return nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }

func cloneSession(s *domain.QuizSession) *domain.QuizSession {
	c := *s
	c.Questions = domain.CloneQuestions(s.Questions)
	return &c
}
