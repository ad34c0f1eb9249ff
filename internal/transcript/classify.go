package transcript

import (
	"bytes"
	"encoding/json"
	"strconv"
	"time"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

// Entry types written by Claude Code.
const (
	TypeUser      = "user"
	TypeHuman     = "human"
	TypeAssistant = "assistant"
	TypeSystem    = "system"
	TypeSummary   = "summary"
)

// Content block types inside message.content.
const (
	BlockTypeText       = "text"
	BlockTypeImage      = "image"
	BlockTypeToolUse    = "tool_use"
	BlockTypeToolResult = "tool_result"
)

// fields is a JSON object decoded one level deep. Each value is decoded on
// demand so that a single field of the wrong shape only loses that field.
type fields map[string]json.RawMessage

func (f fields) str(key string) string {
	var s string
	if raw, ok := f[key]; ok {
		_ = json.Unmarshal(raw, &s)
	}
	return s
}

func (f fields) boolean(key string) bool {
	var b bool
	if raw, ok := f[key]; ok {
		_ = json.Unmarshal(raw, &b)
	}
	return b
}

func (f fields) object(key string) fields {
	raw, ok := f[key]
	if !ok {
		return nil
	}
	return decodeObject(raw)
}

func (f fields) has(key string) bool {
	_, ok := f[key]
	return ok
}

func decodeObject(raw []byte) fields {
	var obj fields
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil
	}
	return obj
}

// Classify decodes one transcript line. It never fails: lines that are not
// JSON objects become domain.KindMalformed records.
func Classify(line []byte) domain.Record {
	entry := decodeObject(line)
	if entry == nil {
		return domain.Record{Kind: domain.KindMalformed}
	}

	rec := domain.Record{
		SessionID:      entry.str("sessionId"),
		Subtype:        entry.str("subtype"),
		Timestamp:      parseTimestamp(entry.str("timestamp")),
		Sidechain:      entry.boolean("isSidechain"),
		APIError:       entry.boolean("isApiErrorMessage"),
		CompactSummary: entry.boolean("isCompactSummary"),
	}

	if info := matchBoundary(entry); info != nil {
		rec.Kind = domain.KindCompactBoundary
		rec.Boundary = info
		return rec
	}

	msg := entry.object("message")
	rec.Kind = kindOf(entry.str("type"), msg.str("role"))
	if msg == nil {
		return rec
	}

	rec.Model = msg.str("model")
	rec.MessageID = msg.str("id")
	rec.Usage = decodeUsage(msg.object("usage"))
	rec.Content = decodeContent(msg["content"])
	return rec
}

func kindOf(entryType, role string) domain.RecordKind {
	if entryType == "" {
		entryType = role
	}
	switch entryType {
	case TypeUser, TypeHuman:
		return domain.KindUser
	case TypeAssistant:
		return domain.KindAssistant
	default:
		return domain.KindSystem
	}
}

func parseTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}

// decodeUsage returns nil unless the object reports input or output tokens.
func decodeUsage(u fields) *domain.Usage {
	if u == nil || (!u.has("input_tokens") && !u.has("output_tokens")) {
		return nil
	}
	return &domain.Usage{
		InputTokens:      u.count("input_tokens"),
		OutputTokens:     u.count("output_tokens"),
		CacheReadTokens:  u.count("cache_read_input_tokens"),
		CacheWriteTokens: u.count("cache_creation_input_tokens"),
	}
}

// count returns a non-negative integer field. Strings, fractions and values
// outside int64 read as 0.
func (f fields) count(key string) int64 {
	raw := bytes.TrimSpace(f[key])
	if len(raw) == 0 || raw[0] == '"' {
		return 0
	}
	var num json.Number
	if err := json.Unmarshal(raw, &num); err != nil {
		return 0
	}
	n, err := strconv.ParseInt(num.String(), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func decodeContent(raw json.RawMessage) []domain.ContentBlock {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}

	// User prompts are often a bare string
	if raw[0] == '"' {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil || text == "" {
			return nil
		}
		return []domain.ContentBlock{{Kind: domain.BlockText, Text: text}}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	blocks := make([]domain.ContentBlock, 0, len(items))
	for _, item := range items {
		obj := decodeObject(item)
		if obj == nil {
			continue
		}
		blocks = append(blocks, decodeBlock(obj, item))
	}
	return blocks
}

func decodeBlock(obj fields, raw json.RawMessage) domain.ContentBlock {
	switch obj.str("type") {
	case BlockTypeText:
		return domain.ContentBlock{Kind: domain.BlockText, Text: obj.str("text")}
	case BlockTypeImage:
		return domain.ContentBlock{Kind: domain.BlockImage}
	case BlockTypeToolUse:
		return domain.ContentBlock{Kind: domain.BlockToolUse, Name: obj.str("name"), Raw: compact(raw)}
	case BlockTypeToolResult:
		return domain.ContentBlock{Kind: domain.BlockToolResult, Raw: withoutImages(obj, raw)}
	default:
		return domain.ContentBlock{Kind: domain.BlockOther}
	}
}

// withoutImages drops image parts nested in a tool result so screenshots
// never count as text.
func withoutImages(obj fields, raw json.RawMessage) []byte {
	var parts []json.RawMessage
	if err := json.Unmarshal(obj["content"], &parts); err != nil {
		return compact(raw)
	}

	kept := make([]json.RawMessage, 0, len(parts))
	for _, part := range parts {
		if p := decodeObject(part); p != nil && p.str("type") == BlockTypeImage {
			continue
		}
		kept = append(kept, part)
	}
	if len(kept) == len(parts) {
		return compact(raw)
	}

	filtered, err := json.Marshal(kept)
	if err != nil {
		return compact(raw)
	}
	obj["content"] = filtered
	out, err := json.Marshal(obj)
	if err != nil {
		return compact(raw)
	}
	return out
}

func compact(raw []byte) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return append([]byte(nil), raw...)
	}
	return buf.Bytes()
}
