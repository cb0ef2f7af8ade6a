// Package questions holds the category to question-list mapping and keeps it
// in step with a persistence backend.
package questions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/codewriterrussian/voc-selftest/internal/backend"
	"github.com/codewriterrussian/voc-selftest/internal/domain"
)

// Store is the in-memory question store. Every mutation saves the whole
// document before returning.
type Store struct {
	backend backend.Backend

	mu         sync.RWMutex
	categories map[string][]domain.Question
	quarantine map[string][]json.RawMessage
	lastErr    error
}

// Status summarizes the store for health reporting.
type Status struct {
	Backend     string `json:"backend"`
	Categories  int    `json:"categories"`
	Questions   int    `json:"questions"`
	Quarantined int    `json:"quarantined"`
	LastError   string `json:"last_error,omitempty"`
}

// New returns an empty store backed by b. Call Load to populate it.
func New(b backend.Backend) *Store {
	return &Store{
		backend:    b,
		categories: make(map[string][]domain.Question),
		quarantine: make(map[string][]json.RawMessage),
	}
}

// Load fetches the document and replaces the in-memory state. Any failure
// degrades to an empty mapping and is logged; Load never fails.
func (s *Store) Load(ctx context.Context) map[string][]domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = make(map[string][]domain.Question)
	s.quarantine = make(map[string][]json.RawMessage)

	raw, err := s.backend.Fetch(ctx)
	if err != nil {
		s.lastErr = err
		if errors.Is(err, backend.ErrDocumentNotFound) {
			slog.Warn("Question document not found, starting empty", "backend", s.backend.Name())
		} else {
			slog.Warn("Failed to load questions, starting empty", "backend", s.backend.Name(), "error", err)
		}
		return map[string][]domain.Question{}
	}

	doc, err := decodeDocument(raw)
	if err != nil {
		s.lastErr = err
		slog.Warn("Corrupt question document, starting empty", "backend", s.backend.Name(), "error", err)
		return map[string][]domain.Question{}
	}

	for name, recs := range doc.rejected {
		for _, r := range recs {
			slog.Warn("Quarantined malformed question",
				"category", name,
				"index", r.Index,
				"error", r.Err,
			)
		}
	}

	s.categories = doc.categories
	s.quarantine = doc.quarantine
	s.lastErr = nil

	slog.Info("Questions loaded",
		"backend", s.backend.Name(),
		"categories", len(s.categories),
		"quarantined", countRaw(s.quarantine),
	)
	return cloneCategories(s.categories)
}

// Save replaces the in-memory mapping with categories and persists the whole
// document. On failure the in-memory copy keeps the new state.
func (s *Store) Save(ctx context.Context, categories map[string][]domain.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.categories = cloneCategories(categories)
	return s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) error {
	doc, err := encodeDocument(s.categories, s.quarantine)
	if err != nil {
		s.lastErr = err
		slog.Error("Failed to encode questions", "error", err)
		return err
	}
	if err := s.backend.Put(ctx, doc); err != nil {
		s.lastErr = err
		slog.Error("Failed to save questions", "backend", s.backend.Name(), "error", err)
		return fmt.Errorf("save questions: %w", err)
	}
	s.lastErr = nil
	return nil
}

// DeleteQuestion removes the question at index from category. An absent
// category or an out-of-range index is a no-op. Returns the resulting list.
func (s *Store) DeleteQuestion(ctx context.Context, category string, index int) []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	_ = s.deleteLocked(ctx, category, index)
	return domain.CloneQuestions(s.categories[category])
}

func (s *Store) deleteLocked(ctx context.Context, category string, index int) bool {
	qs, ok := s.categories[category]
	if !ok || index < 0 || index >= len(qs) {
		return false
	}
	s.categories[category] = slices.Delete(slices.Clone(qs), index, index+1)
	_ = s.saveLocked(ctx)
	return true
}

// RemoveQuestion deletes the first stored question equal to q. It reports
// false when no equal question exists in category.
func (s *Store) RemoveQuestion(ctx context.Context, category string, q domain.Question) ([]domain.Question, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.categories[category], q.Equal)
	if idx < 0 {
		return domain.CloneQuestions(s.categories[category]), false
	}
	s.deleteLocked(ctx, category, idx)
	return domain.CloneQuestions(s.categories[category]), true
}

// AppendQuestions adds batch to an existing category. Nothing is added when
// any question in the batch is invalid.
func (s *Store) AppendQuestions(ctx context.Context, category string, batch []domain.Question) error {
	for i, q := range batch {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	qs, ok := s.categories[category]
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrCategoryNotFound, category)
	}
	s.categories[category] = append(slices.Clone(qs), domain.CloneQuestions(batch)...)
	return s.saveLocked(ctx)
}

// CreateCategory adds an empty category.
func (s *Store) CreateCategory(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.ErrInvalidCategoryName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[name]; ok {
		return fmt.Errorf("%w: %s", domain.ErrCategoryExists, name)
	}
	s.categories[name] = []domain.Question{}
	return s.saveLocked(ctx)
}

// Categories returns the category names in sorted order.
func (s *Store) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.categories))
}

// Questions returns a copy of the questions in category.
func (s *Store) Questions(category string) ([]domain.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	qs, ok := s.categories[category]
	if !ok {
		return nil, false
	}
	return domain.CloneQuestions(qs), true
}

// Counts returns the number of served questions per category.
func (s *Store) Counts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]int, len(s.categories))
	for name, qs := range s.categories {
		out[name] = len(qs)
	}
	return out
}

// Status reports the current size of the store and the last backend error.
func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Status{
		Backend:     s.backend.Name(),
		Categories:  len(s.categories),
		Quarantined: countRaw(s.quarantine),
	}
	for _, qs := range s.categories {
		st.Questions += len(qs)
	}
	if s.lastErr != nil {
		st.LastError = s.lastErr.Error()
	}
	return st
}

func cloneCategories(in map[string][]domain.Question) map[string][]domain.Question {
	out := make(map[string][]domain.Question, len(in))
	for name, qs := range in {
		c := domain.CloneQuestions(qs)
		if c == nil {
			c = []domain.Question{}
		}
		out[name] = c
	}
	return out
}

func countRaw(m map[string][]json.RawMessage) int {
	n := 0
	for _, recs := range m {
		n += len(recs)
	}
	return n
}
