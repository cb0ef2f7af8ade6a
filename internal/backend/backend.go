// Package backend provides interchangeable persistence for the question document.
//
// A backend moves the whole JSON document {"categories": {...}} in one piece:
// Fetch reads it, Put overwrites it. There is no version check, so concurrent
// writers in different processes race and the last write wins.
package backend

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Kinds of backend accepted by Open.
const (
	KindJSONBin  = "jsonbin"
	KindFile     = "file"
	KindPostgres = "postgres"
)

// DefaultTimeout bounds a single backend call when none is configured.
const DefaultTimeout = 10 * time.Second

// ErrDocumentNotFound is returned when the backend holds no document yet.
var ErrDocumentNotFound = errors.New("document not found")

// Backend reads and writes the raw question document.
type Backend interface {
	// Fetch returns the current document bytes.
	Fetch(ctx context.Context) ([]byte, error)

	// Put replaces the stored document with doc.
	Put(ctx context.Context, doc []byte) error

	// Name identifies the backend in logs.
	Name() string
}

// Config selects and parameterizes a backend.
type Config struct {
	Kind        string
	FilePath    string
	JSONBinURL  string
	BinID       string
	APIKey      string
	DatabaseURL string
	Timeout     time.Duration
}

// Validate checks that the fields required by Kind are set.
func (c Config) Validate() error {
	switch c.Kind {
	case KindFile:
		if c.FilePath == "" {
			return fmt.Errorf("file backend requires a file path")
		}
	case KindJSONBin:
		if c.BinID == "" || c.APIKey == "" {
			return fmt.Errorf("jsonbin backend requires a bin id and an api key")
		}
	case KindPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("postgres backend requires a database url")
		}
	default:
		return fmt.Errorf("unknown backend kind %q", c.Kind)
	}
	return nil
}

// Open builds the backend described by cfg. The returned close function
// releases any held resources and is never nil.
func Open(ctx context.Context, cfg Config) (Backend, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	switch cfg.Kind {
	case KindFile:
		return NewFile(cfg.FilePath), func() {}, nil
	case KindJSONBin:
		return NewJSONBin(cfg.JSONBinURL, cfg.BinID, cfg.APIKey, timeout), func() {}, nil
	case KindPostgres:
		pg, err := NewPostgres(ctx, cfg.DatabaseURL, timeout)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown backend kind %q", cfg.Kind)
}
