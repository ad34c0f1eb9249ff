package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestNewSnapshotRecord(t *testing.T) {
	at := time.Date(2025, 1, 17, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	snap := Snapshot{
		State:          StateOK,
		TranscriptPath: "/tmp/t.jsonl",
		Tokens: TokenMetrics{
			SessionID:      "s1",
			Model:          "claude-opus-4-1",
			ActiveTokens:   78600,
			SystemOverhead: 21400,
			ContextLimit:   200000,
			Boundaries:     2,
		},
		Session: SessionMetrics{CostUSD: decimal.RequireFromString("0.42"), LinesAdded: 5},
	}

	rec := NewSnapshotRecord(snap, at)

	if _, err := uuid.Parse(rec.ID); err != nil {
		t.Errorf("ID is not a uuid: %q", rec.ID)
	}
	assertEqual(t, "CapturedAt location", time.UTC, rec.CapturedAt.Location())
	assertEqual(t, "SessionID", "s1", rec.SessionID)
	assertEqual(t, "Boundaries", 2, rec.Boundaries)
	if rec.UsagePercent == nil {
		t.Fatal("expected a known usage percent")
	}
	assertEqual(t, "UsagePercent", 50, *rec.UsagePercent)

	snap.Tokens.ContextLimit = 0
	if NewSnapshotRecord(snap, at).UsagePercent != nil {
		t.Error("unknown limit should store no percent")
	}
}

func TestSnapshotRecord_SameUsage(t *testing.T) {
	a := &SnapshotRecord{SessionID: "s1", ActiveTokens: 10, CostUSD: decimal.RequireFromString("1.50")}
	b := &SnapshotRecord{ID: "other", SessionID: "s1", ActiveTokens: 10, CostUSD: decimal.RequireFromString("1.5")}

	assertEqual(t, "same", true, a.SameUsage(b))

	b.ActiveTokens = 11
	assertEqual(t, "different tokens", false, a.SameUsage(b))
	assertEqual(t, "nil", false, a.SameUsage(nil))
}

func TestParseSnapshotState(t *testing.T) {
	for _, s := range []SnapshotState{StateOK, StateNoTranscript, StateIOError} {
		assertEqual(t, s.String(), s, ParseSnapshotState(s.String()))
	}
}
