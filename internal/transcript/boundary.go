package transcript

import (
	"fmt"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

// SubtypeCompactBoundary is the system event subtype Claude Code writes on /compact.
const SubtypeCompactBoundary = "compact_boundary"

// BoundaryFormat recognizes one version of the compact boundary sentinel.
type BoundaryFormat struct {
	Version string
	match   func(entry fields) (domain.BoundaryInfo, bool)
}

// BoundaryFormats lists every recognized sentinel, newest first. Claude Code
// changes this event between releases; add a format rather than loosening one.
var BoundaryFormats = []BoundaryFormat{
	{Version: "v1", match: matchCompactMetadata},
}

// matchCompactMetadata recognizes
//
//	{"type":"system","subtype":"compact_boundary","compactMetadata":{"trigger":"manual","preTokens":123}}
func matchCompactMetadata(entry fields) (domain.BoundaryInfo, bool) {
	if entry.str("type") != TypeSystem || entry.str("subtype") != SubtypeCompactBoundary {
		return domain.BoundaryInfo{}, false
	}
	meta := entry.object("compactMetadata")
	if meta == nil || !meta.has("trigger") {
		return domain.BoundaryInfo{}, false
	}
	return domain.BoundaryInfo{
		Trigger:   meta.str("trigger"),
		PreTokens: meta.count("preTokens"),
	}, true
}

func matchBoundary(entry fields) *domain.BoundaryInfo {
	for _, f := range BoundaryFormats {
		if info, ok := f.match(entry); ok {
			info.Format = f.Version
			return &info
		}
	}
	return nil
}

// LastBoundary returns the index of the last compact boundary, or -1.
// File order decides, timestamps are ignored.
func LastBoundary(records []domain.Record) int {
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Kind == domain.KindCompactBoundary {
			return i
		}
	}
	return -1
}

// CountBoundaries returns how many recognized boundaries the records contain.
func CountBoundaries(records []domain.Record) int {
	n := 0
	for _, r := range records {
		if r.Kind == domain.KindCompactBoundary {
			n++
		}
	}
	return n
}

// SuspectedResets reports records that look like a context reset without
// matching any BoundaryFormats entry. They never become boundaries.
func SuspectedResets(records []domain.Record) []string {
	var warnings []string
	seenBoundary := false
	for _, r := range records {
		switch {
		case r.Kind == domain.KindCompactBoundary:
			seenBoundary = true
		case r.Kind == domain.KindSystem && r.Subtype == SubtypeCompactBoundary:
			warnings = append(warnings, fmt.Sprintf("line %d: compact_boundary event in unrecognized format", r.Line))
		case r.Kind == domain.KindUser && r.CompactSummary && !seenBoundary:
			warnings = append(warnings, fmt.Sprintf("line %d: compact summary without a recognized boundary", r.Line))
		}
	}
	return warnings
}
