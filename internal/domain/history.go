package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SnapshotRecord is one persisted status line snapshot.
type SnapshotRecord struct {
	ID             string
	CapturedAt     time.Time
	SessionID      string
	Model          string
	TranscriptPath string
	State          SnapshotState
	ActiveTokens   int64
	SystemOverhead int64
	ContextLimit   int64
	UsagePercent   *int
	Estimated      bool
	CostUSD        decimal.Decimal
	LinesAdded     int64
	LinesRemoved   int64
	Boundaries     int
}

// NewSnapshotRecord flattens a snapshot for storage.
func NewSnapshotRecord(s Snapshot, capturedAt time.Time) *SnapshotRecord {
	rec := &SnapshotRecord{
		ID:             uuid.NewString(),
		CapturedAt:     capturedAt.UTC(),
		SessionID:      s.Tokens.SessionID,
		Model:          s.Tokens.Model,
		TranscriptPath: s.TranscriptPath,
		State:          s.State,
		ActiveTokens:   s.Tokens.ActiveTokens,
		SystemOverhead: s.Tokens.SystemOverhead,
		ContextLimit:   s.Tokens.ContextLimit,
		Estimated:      s.Tokens.Estimated,
		CostUSD:        s.Session.CostUSD,
		LinesAdded:     s.Session.LinesAdded,
		LinesRemoved:   s.Session.LinesRemoved,
		Boundaries:     s.Tokens.Boundaries,
	}
	if pct := s.Tokens.UsagePercent(); pct.Known {
		v := pct.Value
		rec.UsagePercent = &v
	}
	return rec
}

// SameUsage reports whether two records describe the same session state, so
// that an unchanged status line need not be stored again.
func (r *SnapshotRecord) SameUsage(other *SnapshotRecord) bool {
	if r == nil || other == nil {
		return false
	}
	return r.SessionID == other.SessionID &&
		r.State == other.State &&
		r.ActiveTokens == other.ActiveTokens &&
		r.ContextLimit == other.ContextLimit &&
		r.CostUSD.Equal(other.CostUSD) &&
		r.LinesAdded == other.LinesAdded &&
		r.LinesRemoved == other.LinesRemoved &&
		r.Boundaries == other.Boundaries
}

// ParseSnapshotState is the inverse of SnapshotState.String.
func ParseSnapshotState(s string) SnapshotState {
	switch s {
	case "no_transcript":
		return StateNoTranscript
	case "io_error":
		return StateIOError
	default:
		return StateOK
	}
}
