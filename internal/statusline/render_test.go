package statusline

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

func assertEqual[T comparable](t *testing.T, name string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}

func sampleView() View {
	started := time.Date(2025, 1, 17, 9, 0, 0, 0, time.UTC)
	return View{
		Input: domain.StatusInput{
			SessionID: "abc",
			Model:     domain.ModelInfo{ID: "claude-opus-4-1-20250805", DisplayName: "Opus 4.1"},
			Workspace: domain.WorkspaceInfo{CurrentDir: "/home/user/project"},
		},
		Snapshot: domain.Snapshot{
			State: domain.StateOK,
			Tokens: domain.TokenMetrics{
				SessionID:      "abc",
				ActiveTokens:   18600,
				SystemOverhead: 21400,
				ContextLimit:   200000,
			},
			Session: domain.SessionMetrics{
				CostUSD:      decimal.RequireFromString("1.234"),
				LinesAdded:   12,
				LinesRemoved: 3,
				Elapsed:      135 * time.Minute,
				StartedAt:    &started,
			},
		},
	}
}

func TestRender_Default(t *testing.T) {
	got := Render(Default(), sampleView())

	want := strings.Join([]string{
		"Opus 4.1",
		"project",
		"Context: ●●○○○○○○○○ 20% (40K/200K)",
		"Cost: $1.23",
		"+12 (added) / -3 (removed)",
		"Session: abc",
		"Elapsed: 2hr 15m",
	}, Separator)
	assertEqual(t, "line", want, got)
}

func TestRender_NoTranscript(t *testing.T) {
	v := View{
		Input:    domain.StatusInput{SessionID: "abc", Model: domain.ModelInfo{DisplayName: "Sonnet 4.5"}},
		Snapshot: domain.Snapshot{State: domain.StateNoTranscript},
	}

	got := Render(Default(), v)

	want := "Sonnet 4.5" + Separator + NoTranscriptText + Separator + "Session: abc"
	assertEqual(t, "line", want, got)
}

func TestRender_IOErrorLooksLikeNoTranscript(t *testing.T) {
	v := View{Snapshot: domain.Snapshot{State: domain.StateIOError}}

	got := Render(Default(), v)
	assertEqual(t, "line", "Unknown model"+Separator+NoTranscriptText+Separator+"No session", got)
}

func TestRenderContext_UnknownLimit(t *testing.T) {
	v := sampleView()
	v.Snapshot.Tokens.ContextLimit = 0
	v.Snapshot.Tokens.Estimated = true

	got, ok := renderContextPercentage(v)
	assertEqual(t, "ok", true, ok)
	assertEqual(t, "text", "Context: ~40K tokens (limit unknown)", got)

	got, _ = renderContextTokens(v)
	assertEqual(t, "tokens", "~40K/? tokens", got)
}

func TestRenderContext_Full(t *testing.T) {
	v := sampleView()
	v.Snapshot.Tokens.ActiveTokens = 500000

	got, _ := renderContextPercentage(v)
	assertEqual(t, "text", "Context: ●●●●●●●●●● 100% (521K/200K)", got)
}

func TestProgressBar(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "○○○○○○○○○○"},
		{9, "○○○○○○○○○○"},
		{10, "●○○○○○○○○○"},
		{55, "●●●●●○○○○○"},
		{100, "●●●●●●●●●●"},
		{150, "●●●●●●●●●●"},
		{-5, "○○○○○○○○○○"},
	}
	for _, tt := range tests {
		assertEqual(t, "ProgressBar", tt.want, ProgressBar(tt.in))
	}
}

func TestSelect(t *testing.T) {
	widgets, err := Select([]string{"session-clock", " model "})
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "count", 2, len(widgets))
	assertEqual(t, "first", "session-clock", widgets[0].Name)
	assertEqual(t, "second", "model", widgets[1].Name)

	if _, err := Select([]string{"subscription"}); err == nil {
		t.Error("expected error for unknown widget")
	}
}

func TestRenderLines_HiddenWhenUnchanged(t *testing.T) {
	v := sampleView()
	v.Snapshot.Session.LinesAdded = 0
	v.Snapshot.Session.LinesRemoved = 0

	if _, ok := renderLinesChanged(v); ok {
		t.Error("lines widget should hide when nothing changed")
	}

	v.Snapshot.Session.LinesRemoved = 4
	got, _ := renderLinesChanged(v)
	assertEqual(t, "removed only", "-4 (removed)", got)
}

func TestRender_PayloadTotalsWin(t *testing.T) {
	v := sampleView()
	cost := decimal.RequireFromString("0.5")
	added, removed := int64(156), int64(23)
	v.Input.Cost = &domain.CostInfo{TotalCostUSD: &cost, TotalLinesAdded: &added, TotalLinesRemoved: &removed}

	got, _ := renderCost(v)
	assertEqual(t, "cost", "Cost: $0.50", got)
	got, _ = renderLinesChanged(v)
	assertEqual(t, "lines", "+156 (added) / -23 (removed)", got)

	// payload cost still shows without a readable transcript
	v.Snapshot = domain.Snapshot{State: domain.StateNoTranscript}
	got, ok := renderCost(v)
	assertEqual(t, "cost without transcript", true, ok)
	assertEqual(t, "cost text", "Cost: $0.50", got)
}

func TestRender_GitWidgets(t *testing.T) {
	widgets, err := Select([]string{"git-branch", "git-changes"})
	if err != nil {
		t.Fatal(err)
	}
	assertEqual(t, "NeedsGit", true, NeedsGit(widgets))
	assertEqual(t, "default NeedsGit", false, NeedsGit(Default()))

	v := sampleView()
	assertEqual(t, "outside repo", "No repo", Render(widgets, v))

	v.Git = &domain.GitStatus{Branch: "main", Insertions: 10, Deletions: 2}
	assertEqual(t, "in repo", "main"+Separator+"+10/-2", Render(widgets, v))

	v.Git = &domain.GitStatus{Branch: "main"}
	assertEqual(t, "clean repo", "main", Render(widgets, v))
}
