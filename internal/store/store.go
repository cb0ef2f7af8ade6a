// Package store provides persistence for quiz sessions and style preferences.
package store

import (
	"context"
	"time"

	"github.com/codewriterrussian/voc-selftest/internal/domain"
)

// Repository defines the interface for persisting per-user quiz state.
type Repository interface {
	// GetQuizSession retrieves the session of one browser tab. Returns nil, nil when none exists.
	GetQuizSession(ctx context.Context, userID, sessionID string) (*domain.QuizSession, error)

	// UpsertQuizSession creates or replaces the session of one browser tab.
	UpsertQuizSession(ctx context.Context, session *domain.QuizSession) error

	// DeleteQuizSession removes the session of one browser tab.
	DeleteQuizSession(ctx context.Context, userID, sessionID string) error

	// CleanupExpiredSessions removes sessions not updated within ttl.
	CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error)

	// GetStyle retrieves a user's style preferences. Returns nil, nil when none are stored.
	GetStyle(ctx context.Context, userID string) (*domain.Style, error)

	// UpsertStyle stores a user's style preferences.
	UpsertStyle(ctx context.Context, userID string, style domain.Style) error

	// Ping verifies the repository is reachable.
	Ping(ctx context.Context) error

	// Close releases underlying resources.
	Close() error
}
