package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestFile_FetchMissing(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "questions.json"))

	if _, err := f.Fetch(context.Background()); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestFile_PutFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "questions.json")
	f := NewFile(path)
	doc := []byte(`{"categories":{"english":[]}}`)

	if err := f.Put(context.Background(), doc); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got) != string(doc) {
		t.Errorf("expected %s, got %s", doc, got)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file to remain, got %d entries", len(entries))
	}
}

func TestJSONBin_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/b/bin123/latest" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-Master-Key") != "secret" {
			t.Errorf("missing master key header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"record":{"categories":{"dutch":[]}},"metadata":{"id":"bin123"}}`)
	}))
	defer srv.Close()

	b := NewJSONBin(srv.URL, "bin123", "secret", time.Second)
	got, err := b.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(got) != `{"categories":{"dutch":[]}}` {
		t.Errorf("unexpected record %s", got)
	}
}

func TestJSONBin_FetchErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message":"Bin not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	b := NewJSONBin(srv.URL, "bin123", "secret", time.Second)
	_, err := b.Fetch(context.Background())
	if err == nil {
		t.Fatal("expected error for 404")
	}
	if !strings.Contains(err.Error(), "Bin not found") {
		t.Errorf("expected body in error, got %v", err)
	}
}

func TestJSONBin_Put(t *testing.T) {
	var gotBody, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/b/bin123" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := NewJSONBin(srv.URL+"/", "bin123", "secret", time.Second)
	if err := b.Put(context.Background(), []byte(`{"categories":{}}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if gotBody != `{"categories":{}}` {
		t.Errorf("unexpected body %s", gotBody)
	}
	if gotType != "application/json" {
		t.Errorf("unexpected content type %s", gotType)
	}
}

func TestJSONBin_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	b := NewJSONBin(srv.URL, "bin123", "secret", 50*time.Millisecond)
	if _, err := b.Fetch(context.Background()); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "file ok", cfg: Config{Kind: KindFile, FilePath: "q.json"}},
		{name: "file missing path", cfg: Config{Kind: KindFile}, wantErr: true},
		{name: "jsonbin ok", cfg: Config{Kind: KindJSONBin, BinID: "b", APIKey: "k"}},
		{name: "jsonbin missing key", cfg: Config{Kind: KindJSONBin, BinID: "b"}, wantErr: true},
		{name: "postgres missing url", cfg: Config{Kind: KindPostgres}, wantErr: true},
		{name: "unknown kind", cfg: Config{Kind: "s3"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestOpen_Postgres(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{name: "missing url", url: ""},
		{name: "unparsable url", url: "postgres://%zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, closeFn, err := Open(context.Background(), Config{Kind: KindPostgres, DatabaseURL: tt.url})
			if err == nil {
				closeFn()
				t.Fatalf("expected error, got backend %v", b)
			}
		})
	}
}

// newTestPostgres connects to DATABASE_URL and points the backend at a row
// owned by the test, removed again on cleanup.
func newTestPostgres(t *testing.T) *Postgres {
	t.Helper()
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	ctx := context.Background()
	pg, err := NewPostgres(ctx, url, 5*time.Second)
	if err != nil {
		t.Fatalf("NewPostgres: %v", err)
	}
	pg.name = "test-" + strings.ToLower(t.Name())

	cleanup := func() {
		if _, err := pg.pool.Exec(ctx, `DELETE FROM question_documents WHERE name = $1`, pg.name); err != nil {
			t.Errorf("cleanup: %v", err)
		}
	}
	cleanup()
	t.Cleanup(func() {
		cleanup()
		pg.Close()
	})
	return pg
}

func decodeJSON(t *testing.T, raw []byte) map[string]any {
	t.Helper()
	var v map[string]any
	if err := json.Unmarshal(raw, &v); err != nil {
		t.Fatalf("decode %s: %v", raw, err)
	}
	return v
}

func TestPostgres_FetchBeforePut(t *testing.T) {
	pg := newTestPostgres(t)

	if _, err := pg.Fetch(context.Background()); !errors.Is(err, ErrDocumentNotFound) {
		t.Errorf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestPostgres_PutFetchOverwrite(t *testing.T) {
	pg := newTestPostgres(t)
	ctx := context.Background()

	first := []byte(`{"categories": {"english": []}}`)
	if err := pg.Put(ctx, first); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := pg.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !reflect.DeepEqual(decodeJSON(t, got), decodeJSON(t, first)) {
		t.Errorf("expected %s, got %s", first, got)
	}

	second := []byte(`{"categories": {"dutch": [], "english": []}}`)
	if err := pg.Put(ctx, second); err != nil {
		t.Fatalf("second Put: %v", err)
	}
	got, err = pg.Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !reflect.DeepEqual(decodeJSON(t, got), decodeJSON(t, second)) {
		t.Errorf("expected overwrite with %s, got %s", second, got)
	}

	var rows int
	if err := pg.pool.QueryRow(ctx, `SELECT count(*) FROM question_documents WHERE name = $1`, pg.name).Scan(&rows); err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if rows != 1 {
		t.Errorf("expected a single document row, got %d", rows)
	}
}
