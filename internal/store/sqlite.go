package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/codewriterrussian/voc-selftest/internal/domain"
	"github.com/codewriterrussian/voc-selftest/internal/shared"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db        *sql.DB
	sessionMu sync.Mutex // serializes session writes to avoid SQLITE_BUSY
}

// NewSQLite creates a new SQLite-backed repository.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS quiz_sessions (
		user_id TEXT NOT NULL,
		session_id TEXT NOT NULL,
		quiz_id TEXT NOT NULL,
		category TEXT NOT NULL,
		questions_json TEXT NOT NULL,
		current_index INTEGER NOT NULL DEFAULT 0,
		answered INTEGER NOT NULL DEFAULT 0,
		correct INTEGER NOT NULL DEFAULT 0,
		scored INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL,
		PRIMARY KEY (user_id, session_id)
	);
	CREATE INDEX IF NOT EXISTS idx_quiz_sessions_updated ON quiz_sessions(updated_at);

	CREATE TABLE IF NOT EXISTS style_preferences (
		user_id TEXT PRIMARY KEY,
		background_color TEXT NOT NULL,
		text_color TEXT NOT NULL,
		font_size INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetQuizSession retrieves the session of one browser tab.
func (s *SQLiteStore) GetQuizSession(ctx context.Context, userID, sessionID string) (*domain.QuizSession, error) {
	query := `
		SELECT user_id, session_id, quiz_id, category, questions_json,
		       current_index, answered, correct, scored, created_at, updated_at
		FROM quiz_sessions WHERE user_id = ? AND session_id = ?`

	row := s.db.QueryRowContext(ctx, query, userID, sessionID)

	var session domain.QuizSession
	var questionsJSON string
	var createdAt, updatedAt int64

	err := row.Scan(
		&session.UserID, &session.SessionID, &session.ID, &session.Category, &questionsJSON,
		&session.CurrentIndex, &session.Answered, &session.Correct, &session.Scored, &createdAt, &updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan quiz session: %w", err)
	}

	if err := json.Unmarshal([]byte(questionsJSON), &session.Questions); err != nil {
		return nil, fmt.Errorf("decode session questions: %w", err)
	}
	session.CreatedAt = time.Unix(createdAt, 0)
	session.UpdatedAt = time.Unix(updatedAt, 0)

	return &session, nil
}

// UpsertQuizSession creates or replaces the session of one browser tab.
func (s *SQLiteStore) UpsertQuizSession(ctx context.Context, session *domain.QuizSession) error {
	questionsJSON, err := json.Marshal(session.Questions)
	if err != nil {
		return fmt.Errorf("encode session questions: %w", err)
	}

	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	query := `
		INSERT INTO quiz_sessions (
			user_id, session_id, quiz_id, category, questions_json,
			current_index, answered, correct, scored, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, session_id) DO UPDATE SET
			quiz_id = excluded.quiz_id,
			category = excluded.category,
			questions_json = excluded.questions_json,
			current_index = excluded.current_index,
			answered = excluded.answered,
			correct = excluded.correct,
			scored = excluded.scored,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`

	_, err = s.db.ExecContext(ctx, query,
		session.UserID, session.SessionID, session.ID, session.Category, string(questionsJSON),
		session.CurrentIndex, session.Answered, session.Correct, session.Scored,
		session.CreatedAt.Unix(), session.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert quiz session: %w", err)
	}
	return nil
}

// DeleteQuizSession removes the session of one browser tab.
// Retries with exponential backoff on SQLITE_BUSY.
func (s *SQLiteStore) DeleteQuizSession(ctx context.Context, userID, sessionID string) error {
	maxRetries := 3
	baseDelay := 100 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = s.deleteQuizSessionOnce(ctx, userID, sessionID)
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) || i == maxRetries-1 {
			break
		}

		delay := baseDelay * time.Duration(1<<i) // 100ms, 200ms, 400ms
		slog.Debug("DeleteQuizSession failed with SQLITE_BUSY, retrying",
			"user_id", userID,
			"attempt", i+1,
			"delay", delay)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}

	return fmt.Errorf("delete quiz session for %s: %w", userID, err)
}

func (s *SQLiteStore) deleteQuizSessionOnce(ctx context.Context, userID, sessionID string) error {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`DELETE FROM quiz_sessions WHERE user_id = ? AND session_id = ?`, userID, sessionID)
	return err
}

// CleanupExpiredSessions removes sessions older than TTL.
func (s *SQLiteStore) CleanupExpiredSessions(ctx context.Context, ttl time.Duration) (int64, error) {
	s.sessionMu.Lock()
	defer s.sessionMu.Unlock()

	threshold := time.Now().Add(-ttl).Unix()
	result, err := s.db.ExecContext(ctx, `DELETE FROM quiz_sessions WHERE updated_at < ?`, threshold)
	if err != nil {
		return 0, fmt.Errorf("cleanup expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// GetStyle retrieves a user's style preferences.
func (s *SQLiteStore) GetStyle(ctx context.Context, userID string) (*domain.Style, error) {
	query := `
		SELECT background_color, text_color, font_size
		FROM style_preferences WHERE user_id = ?`

	var style domain.Style
	err := s.db.QueryRowContext(ctx, query, userID).Scan(
		&style.BackgroundColor, &style.TextColor, &style.FontSize,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan style: %w", err)
	}
	return &style, nil
}

// UpsertStyle stores a user's style preferences.
func (s *SQLiteStore) UpsertStyle(ctx context.Context, userID string, style domain.Style) error {
	query := `
	INSERT INTO style_preferences (user_id, background_color, text_color, font_size, updated_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(user_id) DO UPDATE SET
		background_color = excluded.background_color,
		text_color = excluded.text_color,
		font_size = excluded.font_size,
		updated_at = excluded.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		userID, style.BackgroundColor, style.TextColor, style.FontSize, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("upsert style: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close database: %w", err)
	}
	return nil
}
