package backend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// documentName is the row key of the question document.
const documentName = "questions"

// Postgres stores the document as a JSONB row.
type Postgres struct {
	pool    *pgxpool.Pool
	name    string
	timeout time.Duration
}

var _ Backend = (*Postgres)(nil)

// NewPostgres connects to databaseURL and ensures the documents table exists.
func NewPostgres(ctx context.Context, databaseURL string, timeout time.Duration) (*Postgres, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	poolConfig.MaxConns = 4
	poolConfig.MaxConnLifetime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	pg := &Postgres{pool: pool, name: documentName, timeout: timeout}
	if err := pg.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return pg, nil
}

func (p *Postgres) initSchema(ctx context.Context) error {
	query := `
	CREATE TABLE IF NOT EXISTS question_documents (
		name TEXT PRIMARY KEY,
		body JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	_, err := p.pool.Exec(ctx, query)
	return err
}

// Name implements Backend.
func (p *Postgres) Name() string { return "postgres:" + p.name }

// Fetch selects the stored document body.
func (p *Postgres) Fetch(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var body []byte
	err := p.pool.QueryRow(ctx,
		`SELECT body FROM question_documents WHERE name = $1`, p.name,
	).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	return body, nil
}

// Put upserts the document body.
func (p *Postgres) Put(ctx context.Context, doc []byte) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	query := `
	INSERT INTO question_documents (name, body, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (name) DO UPDATE SET
		body = excluded.body,
		updated_at = excluded.updated_at`

	if _, err := p.pool.Exec(ctx, query, p.name, string(doc)); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}
