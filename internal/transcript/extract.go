package transcript

import (
	"math"
	"unicode/utf8"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

// DefaultCharsPerToken is the fallback estimation ratio for records without usage.
const DefaultCharsPerToken = 3.31

// Extraction is the token contribution of one record.
type Extraction struct {
	Tokens    int64
	Estimated bool
	Usage     *domain.Usage
}

// Extractor turns an active record into a token count.
type Extractor struct {
	CharsPerToken float64
}

// NewExtractor returns an Extractor, falling back to DefaultCharsPerToken for
// non-positive ratios.
func NewExtractor(charsPerToken float64) Extractor {
	if charsPerToken <= 0 || math.IsNaN(charsPerToken) || math.IsInf(charsPerToken, 0) {
		charsPerToken = DefaultCharsPerToken
	}
	return Extractor{CharsPerToken: charsPerToken}
}

// Contributes reports whether rec can count toward the main context window.
// Sidechain (subagent) traffic and synthetic API error messages never do.
func Contributes(rec domain.Record) bool {
	return rec.Kind.IsMessage() && !rec.Sidechain && !rec.APIError
}

// Extract returns the record's token count. Usage reported by the API is
// used verbatim; otherwise the content is estimated from its length.
func (e Extractor) Extract(rec domain.Record) Extraction {
	if !Contributes(rec) {
		return Extraction{}
	}
	if rec.Usage != nil {
		return Extraction{Tokens: rec.Usage.ConversationTokens(), Usage: rec.Usage}
	}
	return Extraction{Tokens: e.Estimate(rec.Content), Estimated: true}
}

// Estimate converts content length to tokens, rounding half up once per record.
func (e Extractor) Estimate(blocks []domain.ContentBlock) int64 {
	chars := contentChars(blocks)
	if chars == 0 {
		return 0
	}
	ratio := e.CharsPerToken
	if ratio <= 0 {
		ratio = DefaultCharsPerToken
	}
	return int64(math.Floor(float64(chars)/ratio + 0.5))
}

// contentChars counts text runes and the serialized length of tool blocks.
// Images contribute nothing.
func contentChars(blocks []domain.ContentBlock) int {
	n := 0
	for _, b := range blocks {
		switch b.Kind {
		case domain.BlockText:
			n += utf8.RuneCountInString(b.Text)
		case domain.BlockToolUse, domain.BlockToolResult:
			n += utf8.RuneCount(b.Raw)
		}
	}
	return n
}
