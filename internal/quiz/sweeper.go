package quiz

import (
	"context"
	"log/slog"
	"time"

	"github.com/codewriterrussian/voc-selftest/internal/shared"
	"github.com/codewriterrussian/voc-selftest/internal/store"
)

// DefaultSweepInterval is how often idle sessions are looked for.
const DefaultSweepInterval = 5 * time.Minute

// StartSweeper runs a background goroutine that periodically deletes sessions
// idle for longer than ttl. It stops when ctx is cancelled.
func StartSweeper(ctx context.Context, repo store.Repository, ttl, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				sweepExpiredSessions(ctx, repo, ttl)
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func sweepExpiredSessions(ctx context.Context, repo store.Repository, ttl time.Duration) {
	deleted, err := cleanupWithRetry(ctx, repo, ttl)
	if err != nil {
		slog.Error("Session sweeper failed to clean up sessions", "error", err)
		return
	}
	if deleted > 0 {
		slog.Info("Session sweeper removed idle sessions", "count", deleted)
	}
}

// cleanupWithRetry retries with exponential backoff on SQLITE_BUSY.
func cleanupWithRetry(ctx context.Context, repo store.Repository, ttl time.Duration) (int64, error) {
	maxRetries := 3
	baseDelay := 50 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		var n int64
		n, err = repo.CleanupExpiredSessions(ctx, ttl)
		if err == nil {
			return n, nil
		}
		if !shared.IsSQLiteConflictError(err) || i == maxRetries-1 {
			break
		}

		delay := baseDelay * time.Duration(1<<i) // 50ms, 100ms, 200ms
		slog.Debug("Session sweeper: database locked, retrying",
			"attempt", i+1,
			"delay", delay)

		select {
		case <-ctx.Done():
			return 0, ctx.Err()
		case <-time.After(delay):
		}
	}
	return 0, err
}
