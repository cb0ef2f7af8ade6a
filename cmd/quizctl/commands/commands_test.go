package commands

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/codewriterrussian/voc-selftest/internal/backend"
	"github.com/codewriterrussian/voc-selftest/internal/questions"
	"github.com/codewriterrussian/voc-selftest/internal/quiz"
	"github.com/codewriterrussian/voc-selftest/internal/store"
)

const seedDoc = `{"categories": {
	"english": [
		{"question": "Q1", "options": {"A": "one", "B": "two"}, "correct_answer": "A", "explanation": "first"},
		{"question": "Q2", "options": {"A": "one", "B": "two"}, "correct_answer": "B", "explanation": ""}
	]
}}`

const batch = `[
	{"question": "Hond", "options": {"A": "dog", "B": "cat"}, "correct_answer": "A", "explanation": ""},
	{"question": "Kat", "options": {"A": "dog", "B": "cat"}, "correct_answer": "B", "explanation": ""}
]`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return p
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func loadFile(t *testing.T, path string) *questions.Store {
	t.Helper()
	s := questions.New(backend.NewFile(path))
	s.Load(context.Background())
	return s
}

func TestCategories(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "questions.json", seedDoc)

	out, err := run(t, "categories", "--file", file)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if !strings.Contains(out, "english") || !strings.Contains(out, "2") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestCreateCategoryAndAppend(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "questions.json", seedDoc)
	batchFile := writeFile(t, dir, "add.txt", batch)

	if _, err := run(t, "create-category", "dutch", "--file", file); err != nil {
		t.Fatalf("create-category: %v", err)
	}
	if _, err := run(t, "create-category", "dutch", "--file", file); err == nil {
		t.Error("expected error for duplicate category")
	}

	out, err := run(t, "append", "dutch", "--file", file, "--questions", batchFile)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if !strings.Contains(out, "appended 2 questions to dutch") {
		t.Errorf("unexpected output %q", out)
	}

	if qs, _ := loadFile(t, file).Questions("dutch"); len(qs) != 2 {
		t.Errorf("expected 2 dutch questions, got %d", len(qs))
	}
}

func TestAppend_RejectsMalformedBatch(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "questions.json", seedDoc)
	bad := writeFile(t, dir, "bad.txt", `[{"question": "x", "options": {"A": "a"}}]`)

	if _, err := run(t, "append", "english", "--file", file, "--questions", bad); err == nil {
		t.Fatal("expected error")
	}
	if qs, _ := loadFile(t, file).Questions("english"); len(qs) != 2 {
		t.Errorf("expected store unchanged, got %d", len(qs))
	}
}

func TestDeleteQuestion(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "questions.json", seedDoc)

	if _, err := run(t, "delete-question", "english", "5", "--file", file); err == nil {
		t.Error("expected out of range error")
	}
	if _, err := run(t, "delete-question", "english", "0", "--file", file); err != nil {
		t.Fatalf("delete-question: %v", err)
	}

	qs, _ := loadFile(t, file).Questions("english")
	if len(qs) != 1 || qs[0].Text != "Q2" {
		t.Errorf("expected only Q2 left, got %+v", qs)
	}
}

func TestUploadDownload(t *testing.T) {
	var mu sync.Mutex
	var stored []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			stored, _ = io.ReadAll(r.Body)
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"record":`))
			_, _ = w.Write(stored)
			_, _ = w.Write([]byte(`}`))
		}
	}))
	defer srv.Close()

	dir := t.TempDir()
	file := writeFile(t, dir, "questions.json", seedDoc)
	remote := []string{"--jsonbin-url", srv.URL, "--bin-id", "bin", "--api-key", "key"}

	if _, err := run(t, append([]string{"upload", "--file", file}, remote...)...); err != nil {
		t.Fatalf("upload: %v", err)
	}

	copyFile := filepath.Join(dir, "copy.json")
	out, err := run(t, append([]string{"download", "--file", copyFile}, remote...)...)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if !strings.Contains(out, "1 categories (2 questions)") {
		t.Errorf("unexpected output %q", out)
	}
	if qs, _ := loadFile(t, copyFile).Questions("english"); len(qs) != 2 {
		t.Errorf("expected downloaded copy to hold 2 questions, got %d", len(qs))
	}
}

func TestEnvConfig(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "questions.json", seedDoc)
	t.Setenv("QUIZ_FILE", file)

	out, err := run(t, "categories")
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	if !strings.Contains(out, "english") {
		t.Errorf("expected QUIZ_FILE to be honoured, got %q", out)
	}
}

func TestRunPlay(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "questions.json", seedDoc)
	s := loadFile(t, file)
	mgr := quiz.NewManager(s, store.NewMemory(), quiz.WithShuffle(func(int, func(i, j int)) {}))
	ctx := context.Background()

	if _, err := mgr.Start(ctx, terminalOwner, "english"); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// Answer Q1 correctly, move on, delete Q2 after confirming.
	in := strings.NewReader("a\nn\nd\ny\n")
	var out bytes.Buffer
	if err := runPlay(ctx, in, &out, mgr); err != nil {
		t.Fatalf("runPlay: %v", err)
	}

	text := out.String()
	for _, want := range []string{"[english 1/2] Q1", "Correct!", "first", "[english 2/2] Q2", "Deleted.", "Finished: 1 of 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in output:\n%s", want, text)
		}
	}

	if qs, _ := loadFile(t, file).Questions("english"); len(qs) != 1 || qs[0].Text != "Q1" {
		t.Errorf("expected Q2 removed from file, got %+v", qs)
	}
	if _, err := mgr.Current(ctx, terminalOwner); err == nil {
		t.Error("expected session to be ended")
	}
}
