package preferences

import (
	"context"
	"errors"
	"testing"

	"github.com/codewriterrussian/voc-selftest/internal/domain"
	"github.com/codewriterrussian/voc-selftest/internal/store"
)

type failingRepo struct {
	store.Repository
}

func (failingRepo) GetStyle(context.Context, string) (*domain.Style, error) {
	return nil, errors.New("disk I/O error")
}

func (failingRepo) UpsertStyle(context.Context, string, domain.Style) error {
	return errors.New("disk I/O error")
}

func strPtr(s string) *string { return &s }

func TestGet_Defaults(t *testing.T) {
	svc := NewService(store.NewMemory())

	if got := svc.Get(context.Background(), "anon_1"); got != domain.DefaultStyle() {
		t.Errorf("expected defaults, got %+v", got)
	}
}

func TestSet_PartialUpdate(t *testing.T) {
	svc := NewService(store.NewMemory())
	ctx := context.Background()

	got, err := svc.Set(ctx, "anon_1", domain.StyleUpdate{TextColor: strPtr("#000000")})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := domain.Style{BackgroundColor: "#555555", TextColor: "#000000", FontSize: 18}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	got, err = svc.Set(ctx, "anon_1", domain.StyleUpdate{FontSize: strPtr("abc"), BackgroundColor: strPtr("#222222")})
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	want = domain.Style{BackgroundColor: "#222222", TextColor: "#000000", FontSize: 18}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}

	if stored := svc.Get(ctx, "anon_1"); stored != want {
		t.Errorf("expected stored %+v, got %+v", want, stored)
	}
	if other := svc.Get(ctx, "anon_2"); other != domain.DefaultStyle() {
		t.Errorf("styles must be per user, got %+v", other)
	}
}

func TestGet_ReadErrorFallsBack(t *testing.T) {
	svc := NewService(failingRepo{})

	if got := svc.Get(context.Background(), "anon_1"); got != domain.DefaultStyle() {
		t.Errorf("expected defaults, got %+v", got)
	}
	if _, err := svc.Set(context.Background(), "anon_1", domain.StyleUpdate{}); err == nil {
		t.Error("expected save error")
	}
}
