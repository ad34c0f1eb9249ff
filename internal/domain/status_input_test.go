package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseStatusInput(t *testing.T) {
	input := []byte(`{
		"hook_event_name": "Status",
		"session_id": "abc123",
		"transcript_path": "/tmp/transcript.jsonl",
		"cwd": "/home/user/project",
		"model": {"id": "claude-opus-4-1", "display_name": "Opus"},
		"workspace": {"current_dir": "/home/user/project/sub", "project_dir": "/home/user/project"},
		"version": "1.0.80"
	}`)

	in, err := ParseStatusInput(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertEqual(t, "SessionID", "abc123", in.SessionID)
	assertEqual(t, "TranscriptPath", "/tmp/transcript.jsonl", in.TranscriptPath)
	assertEqual(t, "Model.ID", "claude-opus-4-1", in.Model.ID)
	assertEqual(t, "Model.DisplayName", "Opus", in.Model.DisplayName)
	assertEqual(t, "Dir", "/home/user/project/sub", in.Dir())
	assertEqual(t, "Version", "1.0.80", in.Version)
}

func TestParseStatusInput_PayloadTotals(t *testing.T) {
	input := []byte(`{
		"session_id": "abc123",
		"context_window": {"context_window_size": 1000000, "total_input_tokens": 1200, "total_output_tokens": 300},
		"cost": {"total_cost_usd": 0.0125, "total_duration_ms": 4000, "total_lines_added": 156, "total_lines_removed": 23}
	}`)

	in, err := ParseStatusInput(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertEqual(t, "ContextLimit", int64(1000000), in.ContextLimit())

	cost, ok := in.TotalCost()
	assertEqual(t, "cost ok", true, ok)
	if !cost.Equal(decimal.RequireFromString("0.0125")) {
		t.Errorf("TotalCost: expected 0.0125, got %s", cost)
	}

	added, removed, ok := in.TotalLines()
	assertEqual(t, "lines ok", true, ok)
	assertEqual(t, "added", int64(156), added)
	assertEqual(t, "removed", int64(23), removed)
}

func TestParseStatusInput_PayloadTotalsAbsent(t *testing.T) {
	in, err := ParseStatusInput([]byte(`{"session_id": "abc123", "context_window": {"context_window_size": 0}, "cost": {}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assertEqual(t, "ContextLimit", int64(0), in.ContextLimit())
	if _, ok := in.TotalCost(); ok {
		t.Error("expected no payload cost")
	}
	if _, _, ok := in.TotalLines(); ok {
		t.Error("expected no payload lines")
	}
}

func TestParseStatusInput_DirFallsBackToCwd(t *testing.T) {
	in, err := ParseStatusInput([]byte(`{"cwd": "/srv/app"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertEqual(t, "Dir", "/srv/app", in.Dir())
}

func TestParseStatusInput_Invalid(t *testing.T) {
	if _, err := ParseStatusInput(nil); err == nil {
		t.Error("expected error for empty input")
	}
	if _, err := ParseStatusInput([]byte(`{not json`)); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func assertEqual[T comparable](t *testing.T, name string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}
