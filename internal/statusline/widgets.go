package statusline

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
	"github.com/emiliopalmerini/mclaude-statusline/internal/util"
)

// NoTranscriptText replaces transcript-derived widgets when nothing could be read.
const NoTranscriptText = "No active transcript"

const (
	barSegments = 10
	barFilled   = "●"
	barEmpty    = "○"
)

// View is everything a widget may look at.
type View struct {
	Input    domain.StatusInput
	Snapshot domain.Snapshot
	// Git is nil outside a repository or when no selected widget needs it.
	Git *domain.GitStatus
}

// Widget renders one segment of the status line.
type Widget struct {
	Name string
	// Fallback is shown when Render has nothing to say. Empty hides the widget.
	Fallback string
	Render   func(View) (string, bool)
	NeedsGit bool
}

// All lists every widget in display order.
var All = []Widget{
	{Name: "model", Fallback: "Unknown model", Render: renderModel},
	{Name: "directory", Render: renderDirectory},
	{Name: "git-branch", Fallback: "No repo", Render: renderGitBranch, NeedsGit: true},
	{Name: "git-changes", Render: renderGitChanges, NeedsGit: true},
	{Name: "context-percentage", Fallback: NoTranscriptText, Render: renderContextPercentage},
	{Name: "context-tokens", Fallback: NoTranscriptText, Render: renderContextTokens},
	{Name: "cost", Render: renderCost},
	{Name: "lines-changed", Render: renderLinesChanged},
	{Name: "session-id", Fallback: "No session", Render: renderSessionID},
	{Name: "session-clock", Render: renderSessionClock},
}

// DefaultNames is the layout used when none is configured.
var DefaultNames = []string{
	"model",
	"directory",
	"context-percentage",
	"cost",
	"lines-changed",
	"session-id",
	"session-clock",
}

func renderModel(v View) (string, bool) {
	switch {
	case v.Input.Model.DisplayName != "":
		return v.Input.Model.DisplayName, true
	case v.Input.Model.ID != "":
		return v.Input.Model.ID, true
	case v.Snapshot.Tokens.Model != "":
		return v.Snapshot.Tokens.Model, true
	}
	return "", false
}

func renderDirectory(v View) (string, bool) {
	dir := v.Input.Dir()
	if dir == "" {
		return "", false
	}
	return filepath.Base(dir), true
}

func renderGitBranch(v View) (string, bool) {
	if v.Git == nil || v.Git.Branch == "" {
		return "", false
	}
	return v.Git.Branch, true
}

func renderGitChanges(v View) (string, bool) {
	if v.Git == nil {
		return "", false
	}
	return changes(v.Git.Insertions, v.Git.Deletions, "+%d", "-%d", "/")
}

func renderContextPercentage(v View) (string, bool) {
	if !v.Snapshot.HasTranscript() {
		return "", false
	}
	tokens := v.Snapshot.Tokens
	used := approx(tokens) + util.FormatCompact(tokens.ContextTokens())

	pct := tokens.UsagePercent()
	if !pct.Known {
		return fmt.Sprintf("Context: %s tokens (limit unknown)", used), true
	}
	return fmt.Sprintf("Context: %s %d%% (%s/%s)",
		ProgressBar(pct.Value), pct.Value, used, util.FormatCompact(tokens.ContextLimit)), true
}

func renderContextTokens(v View) (string, bool) {
	if !v.Snapshot.HasTranscript() {
		return "", false
	}
	tokens := v.Snapshot.Tokens
	limit := "?"
	if tokens.ContextLimit > 0 {
		limit = util.FormatCompact(tokens.ContextLimit)
	}
	return fmt.Sprintf("%s%s/%s tokens", approx(tokens), util.FormatCompact(tokens.ContextTokens()), limit), true
}

// renderCost prefers the total Claude Code reports over the transcript's.
func renderCost(v View) (string, bool) {
	if cost, ok := v.Input.TotalCost(); ok {
		return "Cost: " + util.FormatUSD(cost), true
	}
	if !v.Snapshot.HasTranscript() {
		return "", false
	}
	return "Cost: " + util.FormatUSD(v.Snapshot.Session.CostUSD), true
}

func renderLinesChanged(v View) (string, bool) {
	added, removed, ok := v.Input.TotalLines()
	if !ok {
		added, removed = v.Snapshot.Session.LinesAdded, v.Snapshot.Session.LinesRemoved
	}
	return changes(added, removed, "+%d (added)", "-%d (removed)", " / ")
}

func changes(added, removed int64, addedFmt, removedFmt, sep string) (string, bool) {
	var parts []string
	if added > 0 {
		parts = append(parts, fmt.Sprintf(addedFmt, added))
	}
	if removed > 0 {
		parts = append(parts, fmt.Sprintf(removedFmt, removed))
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, sep), true
}

func renderSessionID(v View) (string, bool) {
	id := v.Snapshot.Tokens.SessionID
	if id == "" {
		id = v.Input.SessionID
	}
	if id == "" {
		return "", false
	}
	return "Session: " + id, true
}

func renderSessionClock(v View) (string, bool) {
	if !v.Snapshot.HasTranscript() || v.Snapshot.Session.StartedAt == nil {
		return "", false
	}
	return "Elapsed: " + util.FormatDuration(v.Snapshot.Session.Elapsed), true
}

// ProgressBar draws percent as ten segments, rounding down.
func ProgressBar(percent int) string {
	percent = max(0, min(percent, 100))
	filled := percent * barSegments / 100
	return strings.Repeat(barFilled, filled) + strings.Repeat(barEmpty, barSegments-filled)
}

func approx(t domain.TokenMetrics) string {
	if t.Estimated {
		return "~"
	}
	return ""
}
