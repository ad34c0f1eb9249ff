package turso_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emiliopalmerini/mclaude-statusline/internal/adapters/turso"
	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

var baseTime = time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

func newRecord(id, sessionID string, at time.Time, tokens int64) *domain.SnapshotRecord {
	pct := int(tokens * 100 / 200000)
	return &domain.SnapshotRecord{
		ID:             id,
		CapturedAt:     at,
		SessionID:      sessionID,
		Model:          "claude-sonnet-4-5-20250929",
		TranscriptPath: "/tmp/" + sessionID + ".jsonl",
		State:          domain.StateOK,
		ActiveTokens:   tokens,
		SystemOverhead: 21400,
		ContextLimit:   200000,
		UsagePercent:   &pct,
		CostUSD:        decimal.RequireFromString("1.2345"),
		LinesAdded:     12,
		LinesRemoved:   3,
		Boundaries:     1,
	}
}

func TestSnapshotRepository_SaveAndLatest(t *testing.T) {
	db := testDB(t)
	repo := turso.NewSnapshotRepository(db)
	ctx := context.Background()

	want := newRecord("snap-1", "session-1", baseTime, 40000)
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.LatestBySession(ctx, "session-1")
	if err != nil {
		t.Fatalf("LatestBySession failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a snapshot, got nil")
	}

	assertEqual(t, "ID", want.ID, got.ID)
	assertEqual(t, "SessionID", want.SessionID, got.SessionID)
	assertEqual(t, "Model", want.Model, got.Model)
	assertEqual(t, "TranscriptPath", want.TranscriptPath, got.TranscriptPath)
	assertEqual(t, "State", want.State, got.State)
	assertEqual(t, "ActiveTokens", want.ActiveTokens, got.ActiveTokens)
	assertEqual(t, "SystemOverhead", want.SystemOverhead, got.SystemOverhead)
	assertEqual(t, "ContextLimit", want.ContextLimit, got.ContextLimit)
	assertEqual(t, "Estimated", want.Estimated, got.Estimated)
	assertEqual(t, "LinesAdded", want.LinesAdded, got.LinesAdded)
	assertEqual(t, "LinesRemoved", want.LinesRemoved, got.LinesRemoved)
	assertEqual(t, "Boundaries", want.Boundaries, got.Boundaries)
	if !got.CapturedAt.Equal(want.CapturedAt) {
		t.Errorf("CapturedAt: expected %v, got %v", want.CapturedAt, got.CapturedAt)
	}
	if !got.CostUSD.Equal(want.CostUSD) {
		t.Errorf("CostUSD: expected %s, got %s", want.CostUSD, got.CostUSD)
	}
	if got.UsagePercent == nil || *got.UsagePercent != 20 {
		t.Errorf("UsagePercent: expected 20, got %v", got.UsagePercent)
	}
	if !got.SameUsage(want) {
		t.Error("expected stored record to describe the same usage")
	}
}

func TestSnapshotRepository_NullableColumns(t *testing.T) {
	db := testDB(t)
	repo := turso.NewSnapshotRepository(db)
	ctx := context.Background()

	rec := &domain.SnapshotRecord{
		ID:         "snap-unknown",
		CapturedAt: baseTime,
		SessionID:  "session-2",
		State:      domain.StateNoTranscript,
		Estimated:  true,
		CostUSD:    decimal.Zero,
	}
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.LatestBySession(ctx, "session-2")
	if err != nil {
		t.Fatalf("LatestBySession failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected a snapshot, got nil")
	}
	assertEqual(t, "Model", "", got.Model)
	assertEqual(t, "TranscriptPath", "", got.TranscriptPath)
	assertEqual(t, "State", domain.StateNoTranscript, got.State)
	assertEqual(t, "Estimated", true, got.Estimated)
	if got.UsagePercent != nil {
		t.Errorf("UsagePercent: expected nil, got %d", *got.UsagePercent)
	}
	if !got.CostUSD.IsZero() {
		t.Errorf("CostUSD: expected 0, got %s", got.CostUSD)
	}
}

func TestSnapshotRepository_LatestBySession_None(t *testing.T) {
	db := testDB(t)
	repo := turso.NewSnapshotRepository(db)

	got, err := repo.LatestBySession(context.Background(), "missing")
	if err != nil {
		t.Fatalf("LatestBySession failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestSnapshotRepository_Ordering(t *testing.T) {
	db := testDB(t)
	repo := turso.NewSnapshotRepository(db)
	ctx := context.Background()

	records := []*domain.SnapshotRecord{
		newRecord("a", "session-1", baseTime, 1000),
		newRecord("c", "session-1", baseTime.Add(2*time.Minute), 3000),
		newRecord("b", "session-2", baseTime.Add(time.Minute), 2000),
		// sub-second precision must still order correctly
		newRecord("d", "session-1", baseTime.Add(2*time.Minute+500*time.Millisecond), 3500),
	}
	for _, rec := range records {
		if err := repo.Save(ctx, rec); err != nil {
			t.Fatalf("Save %s failed: %v", rec.ID, err)
		}
	}

	recent, err := repo.ListRecent(ctx, 3)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	assertEqual(t, "recent count", 3, len(recent))
	for i, id := range []string{"d", "c", "b"} {
		assertEqual(t, "recent order", id, recent[i].ID)
	}

	bySession, err := repo.ListBySession(ctx, "session-1", 10)
	if err != nil {
		t.Fatalf("ListBySession failed: %v", err)
	}
	assertEqual(t, "session count", 3, len(bySession))
	assertEqual(t, "session newest", "d", bySession[0].ID)

	latest, err := repo.LatestBySession(ctx, "session-2")
	if err != nil {
		t.Fatalf("LatestBySession failed: %v", err)
	}
	assertEqual(t, "latest session-2", "b", latest.ID)
}

func TestSnapshotRepository_DeleteBefore(t *testing.T) {
	db := testDB(t)
	repo := turso.NewSnapshotRepository(db)
	ctx := context.Background()

	for i, id := range []string{"old-1", "old-2", "new-1"} {
		at := baseTime.Add(time.Duration(i) * 24 * time.Hour)
		if err := repo.Save(ctx, newRecord(id, "session-1", at, 100)); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	deleted, err := repo.DeleteBefore(ctx, baseTime.Add(36*time.Hour))
	if err != nil {
		t.Fatalf("DeleteBefore failed: %v", err)
	}
	assertEqual(t, "deleted", int64(2), deleted)

	remaining, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent failed: %v", err)
	}
	assertEqual(t, "remaining", 1, len(remaining))
	assertEqual(t, "remaining id", "new-1", remaining[0].ID)
}

func TestSnapshotRepository_SaveNil(t *testing.T) {
	repo := turso.NewSnapshotRepository(testDB(t))
	if err := repo.Save(context.Background(), nil); err == nil {
		t.Error("expected error for nil record")
	}
}

func TestSnapshotRepository_DuplicateID(t *testing.T) {
	repo := turso.NewSnapshotRepository(testDB(t))
	ctx := context.Background()

	rec := newRecord("dup", "session-1", baseTime, 100)
	if err := repo.Save(ctx, rec); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := repo.Save(ctx, rec); err == nil {
		t.Error("expected primary key violation on second save")
	}
}
