package domain

import (
	"math"
	"time"
)

// RecordKind classifies a transcript line.
type RecordKind int

const (
	KindMalformed RecordKind = iota
	KindUser
	KindAssistant
	KindSystem
	KindCompactBoundary
)

func (k RecordKind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindAssistant:
		return "assistant"
	case KindSystem:
		return "system"
	case KindCompactBoundary:
		return "compact_boundary"
	default:
		return "malformed"
	}
}

// IsMessage reports whether records of this kind can contribute context tokens.
func (k RecordKind) IsMessage() bool {
	return k == KindUser || k == KindAssistant
}

// BlockKind tags a message content block.
type BlockKind int

const (
	BlockOther BlockKind = iota
	BlockText
	BlockImage
	BlockToolUse
	BlockToolResult
)

// ContentBlock is one entry of message.content.
// Raw keeps the serialized block for tool blocks with image parts removed.
type ContentBlock struct {
	Kind BlockKind
	Text string
	Name string
	Raw  []byte
}

// Usage is the token usage reported by the API for one message.
type Usage struct {
	InputTokens      int64
	OutputTokens     int64
	CacheReadTokens  int64
	CacheWriteTokens int64
}

// ConversationTokens returns the tokens that count toward the active context.
func (u Usage) ConversationTokens() int64 {
	return AddTokens(u.InputTokens, u.OutputTokens)
}

// AddTokens adds two non-negative counts, saturating at math.MaxInt64.
func AddTokens(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// Max returns the field-wise maximum of u and o.
func (u Usage) Max(o Usage) Usage {
	return Usage{
		InputTokens:      max(u.InputTokens, o.InputTokens),
		OutputTokens:     max(u.OutputTokens, o.OutputTokens),
		CacheReadTokens:  max(u.CacheReadTokens, o.CacheReadTokens),
		CacheWriteTokens: max(u.CacheWriteTokens, o.CacheWriteTokens),
	}
}

// BoundaryInfo describes a recognized compact boundary.
type BoundaryInfo struct {
	Format    string
	Trigger   string
	PreTokens int64
}

// Record is one classified transcript line.
type Record struct {
	Kind      RecordKind
	Line      int
	SessionID string
	Subtype   string
	Model     string
	MessageID string
	Usage     *Usage
	Content   []ContentBlock
	Timestamp *time.Time

	Sidechain      bool
	APIError       bool
	CompactSummary bool
	Boundary       *BoundaryInfo
}
