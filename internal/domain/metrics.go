package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenMetrics describes the active context window of a session.
type TokenMetrics struct {
	SessionID       string `json:"session_id"`
	Model           string `json:"model"`
	ActiveTokens    int64  `json:"active_tokens"`
	InputTokens     int64  `json:"input_tokens"`
	OutputTokens    int64  `json:"output_tokens"`
	EstimatedTokens int64  `json:"estimated_tokens"`
	Estimated       bool   `json:"estimated"`
	ContextLimit    int64  `json:"context_limit"`
	SystemOverhead  int64  `json:"system_overhead"`
	Boundaries      int    `json:"boundaries"`
}

// HadCompactBoundary reports whether the transcript was compacted at least once.
func (m TokenMetrics) HadCompactBoundary() bool {
	return m.Boundaries > 0
}

// ContextTokens is the active window plus the fixed system overhead.
func (m TokenMetrics) ContextTokens() int64 {
	return m.ActiveTokens + m.SystemOverhead
}

// UsagePercent returns the share of the context window in use.
func (m TokenMetrics) UsagePercent() Percent {
	return UsagePercent(m.ContextTokens(), m.ContextLimit)
}

// Percent is a whole percentage that may be unknown.
type Percent struct {
	Value int
	Known bool
}

// UsagePercent computes used/limit as a whole percent, rounding half up and
// clamping at 100. A non-positive limit yields an unknown percent.
func UsagePercent(used, limit int64) Percent {
	if limit <= 0 {
		return Percent{}
	}
	if used < 0 {
		used = 0
	}
	if used >= limit {
		return Percent{Value: 100, Known: true}
	}
	v := (used*200 + limit) / (2 * limit)
	return Percent{Value: int(v), Known: true}
}

// SessionMetrics holds whole-session totals. Compaction never resets them.
type SessionMetrics struct {
	CostUSD      decimal.Decimal `json:"cost_usd"`
	LinesAdded   int64           `json:"lines_added"`
	LinesRemoved int64           `json:"lines_removed"`
	Elapsed      time.Duration   `json:"elapsed"`
	StartedAt    *time.Time      `json:"started_at,omitempty"`
	LastActivity *time.Time      `json:"last_activity,omitempty"`
	Messages     int             `json:"messages"`
	Malformed    int             `json:"malformed"`
}

// SnapshotState is the terminal state of one parse.
type SnapshotState int

const (
	StateOK SnapshotState = iota
	StateNoTranscript
	StateIOError
)

func (s SnapshotState) String() string {
	switch s {
	case StateOK:
		return "ok"
	case StateNoTranscript:
		return "no_transcript"
	case StateIOError:
		return "io_error"
	default:
		return "unknown"
	}
}

func (s SnapshotState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Snapshot is the immutable result of one read-and-reduce pass.
type Snapshot struct {
	State          SnapshotState  `json:"state"`
	TranscriptPath string         `json:"transcript_path"`
	Tokens         TokenMetrics   `json:"tokens"`
	Session        SessionMetrics `json:"session"`
	Warnings       []string       `json:"warnings,omitempty"`
}

// HasTranscript reports whether the snapshot was built from a readable transcript.
func (s Snapshot) HasTranscript() bool {
	return s.State == StateOK
}
