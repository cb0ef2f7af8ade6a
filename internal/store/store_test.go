package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/codewriterrussian/voc-selftest/internal/domain"
)

func newSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "data", "quiz.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// repositories runs fn against every Repository implementation.
func repositories(t *testing.T, fn func(t *testing.T, repo Repository)) {
	t.Run("sqlite", func(t *testing.T) { fn(t, newSQLite(t)) })
	t.Run("memory", func(t *testing.T) { fn(t, NewMemory()) })
}

func testSession(updated time.Time) *domain.QuizSession {
	return &domain.QuizSession{
		ID:        "quiz-1",
		UserID:    "user-1",
		SessionID: "tab-1",
		Category:  "english",
		Questions: []domain.Question{
			{Text: "Q1", Options: map[string]string{"A": "a", "B": "b"}, CorrectAnswer: "A", Explanation: "e"},
			{Text: "Q2", Options: map[string]string{"A": "a", "B": "b"}, CorrectAnswer: "B"},
		},
		CurrentIndex: 1,
		Answered:     1,
		Correct:      1,
		Scored:       true,
		CreatedAt:    updated,
		UpdatedAt:    updated,
	}
}

func TestQuizSessionRoundTrip(t *testing.T) {
	repositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		now := time.Unix(time.Now().Unix(), 0)

		got, err := repo.GetQuizSession(ctx, "user-1", "tab-1")
		if err != nil || got != nil {
			t.Fatalf("expected no session, got %v, %v", got, err)
		}

		if err := repo.UpsertQuizSession(ctx, testSession(now)); err != nil {
			t.Fatalf("UpsertQuizSession: %v", err)
		}

		got, err = repo.GetQuizSession(ctx, "user-1", "tab-1")
		if err != nil {
			t.Fatalf("GetQuizSession: %v", err)
		}
		if got == nil {
			t.Fatal("expected session")
		}
		if got.ID != "quiz-1" || got.Category != "english" || got.CurrentIndex != 1 || got.Correct != 1 || !got.Scored {
			t.Errorf("unexpected session %+v", got)
		}
		if len(got.Questions) != 2 || got.Questions[1].CorrectAnswer != "B" {
			t.Errorf("questions not preserved: %+v", got.Questions)
		}
		if !got.UpdatedAt.Equal(now) {
			t.Errorf("expected updated_at %v, got %v", now, got.UpdatedAt)
		}

		if other, _ := repo.GetQuizSession(ctx, "user-1", "tab-2"); other != nil {
			t.Error("sessions of different tabs must be independent")
		}

		if err := repo.DeleteQuizSession(ctx, "user-1", "tab-1"); err != nil {
			t.Fatalf("DeleteQuizSession: %v", err)
		}
		if got, _ := repo.GetQuizSession(ctx, "user-1", "tab-1"); got != nil {
			t.Error("expected session to be deleted")
		}
	})
}

func TestUpsertQuizSession_Replaces(t *testing.T) {
	repositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()
		s := testSession(time.Now())
		if err := repo.UpsertQuizSession(ctx, s); err != nil {
			t.Fatalf("UpsertQuizSession: %v", err)
		}

		s.ID = "quiz-2"
		s.Category = "dutch"
		s.Questions = s.Questions[:1]
		s.CurrentIndex = 0
		if err := repo.UpsertQuizSession(ctx, s); err != nil {
			t.Fatalf("UpsertQuizSession: %v", err)
		}

		got, _ := repo.GetQuizSession(ctx, "user-1", "tab-1")
		if got.ID != "quiz-2" || got.Category != "dutch" || len(got.Questions) != 1 {
			t.Errorf("expected replaced session, got %+v", got)
		}
	})
}

func TestCleanupExpiredSessions(t *testing.T) {
	repositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		old := testSession(time.Now().Add(-2 * time.Hour))
		fresh := testSession(time.Now())
		fresh.SessionID = "tab-2"

		for _, s := range []*domain.QuizSession{old, fresh} {
			if err := repo.UpsertQuizSession(ctx, s); err != nil {
				t.Fatalf("UpsertQuizSession: %v", err)
			}
		}

		n, err := repo.CleanupExpiredSessions(ctx, time.Hour)
		if err != nil {
			t.Fatalf("CleanupExpiredSessions: %v", err)
		}
		if n != 1 {
			t.Errorf("expected 1 expired session, got %d", n)
		}
		if got, _ := repo.GetQuizSession(ctx, "user-1", "tab-2"); got == nil {
			t.Error("fresh session must survive cleanup")
		}
	})
}

func TestStyleRoundTrip(t *testing.T) {
	repositories(t, func(t *testing.T, repo Repository) {
		ctx := context.Background()

		got, err := repo.GetStyle(ctx, "user-1")
		if err != nil || got != nil {
			t.Fatalf("expected no style, got %v, %v", got, err)
		}

		want := domain.Style{BackgroundColor: "#000000", TextColor: "#eeeeee", FontSize: 22}
		if err := repo.UpsertStyle(ctx, "user-1", want); err != nil {
			t.Fatalf("UpsertStyle: %v", err)
		}
		got, err = repo.GetStyle(ctx, "user-1")
		if err != nil {
			t.Fatalf("GetStyle: %v", err)
		}
		if got == nil || *got != want {
			t.Errorf("expected %+v, got %+v", want, got)
		}

		want.FontSize = 14
		if err := repo.UpsertStyle(ctx, "user-1", want); err != nil {
			t.Fatalf("UpsertStyle: %v", err)
		}
		if got, _ := repo.GetStyle(ctx, "user-1"); got.FontSize != 14 {
			t.Errorf("expected updated font size, got %d", got.FontSize)
		}
	})
}

func TestPing(t *testing.T) {
	repositories(t, func(t *testing.T, repo Repository) {
		if err := repo.Ping(context.Background()); err != nil {
			t.Errorf("Ping: %v", err)
		}
	})
}
