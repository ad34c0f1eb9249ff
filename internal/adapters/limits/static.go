package limits

import (
	"context"
	"sort"
	"strings"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

// OneMillion is the context window of models running with the 1M beta.
const OneMillion = 1_000_000

// longContextMarker is appended to a model id when the 1M window is enabled.
const longContextMarker = "[1m]"

var modelLimits = map[string]int64{
	"claude":                         200_000,
	"claude-sonnet-4":                200_000,
	"claude-sonnet-4-20250514":       200_000,
	"claude-sonnet-4-20250514[1m]":   OneMillion,
	"claude-sonnet-4-5":              200_000,
	"claude-sonnet-4-5-20250929":     200_000,
	"claude-sonnet-4-5-20250929[1m]": OneMillion,
	"claude-opus-4":                  200_000,
	"claude-opus-4.1":                200_000,
	"claude-opus-4-1":                200_000,
	"claude-opus-4-1-20250805":       200_000,
	"claude-opus-4.5":                200_000,
	"claude-opus-4-5":                200_000,
	"claude-opus-4-5-20251101":       200_000,
	"claude-opus-4-6":                200_000,
	"claude-haiku-4-5":               200_000,
	"gemini":                         OneMillion,
	"gpt-4":                          8_192,
	"gpt-4-32k":                      32_768,
	"gpt-4-turbo":                    128_000,
	"gpt-4o":                         128_000,
	"gpt-4o-mini":                    128_000,
	"gpt-5":                          400_000,
}

// Static resolves limits from a built-in table.
type Static struct {
	limits map[string]int64
	keys   []string
}

// NewStatic creates a resolver over the built-in model table.
func NewStatic() *Static {
	return NewStaticFrom(modelLimits)
}

// NewStaticFrom creates a resolver over a custom table. Keys are matched
// case-insensitively.
func NewStaticFrom(table map[string]int64) *Static {
	s := &Static{limits: make(map[string]int64, len(table))}
	for k, v := range table {
		k = strings.ToLower(k)
		s.limits[k] = v
		s.keys = append(s.keys, k)
	}
	sort.Slice(s.keys, func(i, j int) bool {
		if len(s.keys[i]) != len(s.keys[j]) {
			return len(s.keys[i]) > len(s.keys[j])
		}
		return s.keys[i] < s.keys[j]
	})
	return s
}

// Resolve matches the 1M marker first, then the exact id, then the longest
// table key contained in the id.
func (s *Static) Resolve(_ context.Context, modelID string) (int64, error) {
	id := strings.ToLower(strings.TrimSpace(modelID))
	if id == "" {
		return 0, domain.ErrUnresolvedModelLimit
	}
	if strings.Contains(id, longContextMarker) {
		return OneMillion, nil
	}
	if limit, ok := s.limits[id]; ok {
		return limit, nil
	}
	for _, k := range s.keys {
		if strings.Contains(id, k) {
			return s.limits[k], nil
		}
	}
	return 0, domain.ErrUnresolvedModelLimit
}
