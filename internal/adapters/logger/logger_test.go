package logger

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func readEntries(t *testing.T, path string) []map[string]any {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()

	var entries []map[string]any
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("log line is not JSON: %v", err)
		}
		entries = append(entries, e)
	}
	return entries
}

func TestNew_DebugWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statusline.log")
	l := New(Options{File: path, Debug: true})

	l.Debug("parse stage", "stage", "reading")
	l.Error("failed to read transcript", "path", "/x")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	entries := readEntries(t, path)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0]["msg"] != "parse stage" || entries[0]["stage"] != "reading" {
		t.Errorf("unexpected first entry %v", entries[0])
	}
	if entries[1]["level"] != "ERROR" {
		t.Errorf("expected ERROR level, got %v", entries[1]["level"])
	}
}

func TestWith_AddsAttrsAndSharesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statusline.log")
	base := New(Options{File: path})
	scoped := base.With("session_id", "abc")

	scoped.Error("boom")
	if err := scoped.Close(); err != nil {
		t.Fatal(err)
	}

	entries := readEntries(t, path)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0]["session_id"] != "abc" {
		t.Errorf("expected session_id attr, got %v", entries[0])
	}
}

func TestNew_ErrorsOnlyWithoutDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statusline.log")
	l := New(Options{File: path})

	l.Debug("dropped")
	l.Warn("dropped too")
	l.Error("kept")
	if err := l.Close(); err != nil {
		t.Fatal(err)
	}

	entries := readEntries(t, path)
	if len(entries) != 1 || entries[0]["msg"] != "kept" {
		t.Errorf("expected only the error entry, got %v", entries)
	}
}

func TestNew_NoFileIsNop(t *testing.T) {
	l := New(Options{Debug: true})
	l.Error("nowhere")
	if err := l.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestRecoverPanic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statusline.log")
	l := New(Options{File: path})
	called := false

	func() {
		defer l.RecoverPanic("render", func() { called = true })
		panic("boom")
	}()
	_ = l.Close()

	if !called {
		t.Error("fallback was not called")
	}
	entries := readEntries(t, path)
	if len(entries) != 1 || entries[0]["panic"] != "boom" {
		t.Errorf("unexpected entries %v", entries)
	}
}
