// Package preferences manages per-user display style.
package preferences

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/codewriterrussian/voc-selftest/internal/domain"
	"github.com/codewriterrussian/voc-selftest/internal/store"
)

// Service reads and updates style preferences.
type Service struct {
	repo store.Repository
}

// NewService creates a preferences service.
func NewService(repo store.Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the user's style, or the defaults when none is stored or the read fails.
func (s *Service) Get(ctx context.Context, userID string) domain.Style {
	style, err := s.repo.GetStyle(ctx, userID)
	if err != nil {
		slog.Warn("Failed to read style, using defaults", "user_id", userID, "error", err)
		return domain.DefaultStyle()
	}
	if style == nil {
		return domain.DefaultStyle()
	}
	return *style
}

// Set merges u over the current style and stores the result.
func (s *Service) Set(ctx context.Context, userID string, u domain.StyleUpdate) (domain.Style, error) {
	style := s.Get(ctx, userID).Apply(u)
	if err := s.repo.UpsertStyle(ctx, userID, style); err != nil {
		return domain.Style{}, fmt.Errorf("save style: %w", err)
	}
	return style, nil
}
