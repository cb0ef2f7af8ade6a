package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultJSONBinURL is the public JSONBin API root.
const DefaultJSONBinURL = "https://api.jsonbin.io/v3"

const maxErrorBody = 512

// JSONBin stores the document in a JSONBin.io bin.
type JSONBin struct {
	Base   string
	BinID  string
	APIKey string
	HTTP   *http.Client
}

var _ Backend = (*JSONBin)(nil)

// NewJSONBin returns a JSONBin backend. Every request is a single attempt bounded by timeout.
func NewJSONBin(base, binID, apiKey string, timeout time.Duration) *JSONBin {
	if base == "" {
		base = DefaultJSONBinURL
	}
	return &JSONBin{
		Base:   strings.TrimRight(base, "/"),
		BinID:  binID,
		APIKey: apiKey,
		HTTP:   &http.Client{Timeout: timeout},
	}
}

// Name implements Backend.
func (b *JSONBin) Name() string { return "jsonbin:" + b.BinID }

type binEnvelope struct {
	Record json.RawMessage `json:"record"`
}

// Fetch reads the latest bin version and unwraps its record.
func (b *JSONBin) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.binURL()+"/latest", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Master-Key", b.APIKey)

	resp, err := b.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jsonbin get: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError("get", resp)
	}

	var env binEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("jsonbin decode: %w", err)
	}
	if len(env.Record) == 0 || string(env.Record) == "null" {
		return nil, ErrDocumentNotFound
	}
	return env.Record, nil
}

// Put overwrites the bin with doc.
func (b *JSONBin) Put(ctx context.Context, doc []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, b.binURL(), bytes.NewReader(doc))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", b.APIKey)

	resp, err := b.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("jsonbin put: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError("put", resp)
	}
	return nil
}

func (b *JSONBin) binURL() string {
	return b.Base + "/b/" + b.BinID
}

func statusError(op string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("jsonbin %s: %s: %s", op, resp.Status, strings.TrimSpace(string(body)))
}
