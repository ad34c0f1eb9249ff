package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// StatusInput represents the JSON payload Claude Code writes to a statusLine command
type StatusInput struct {
	SessionID      string        `json:"session_id"`
	TranscriptPath string        `json:"transcript_path"`
	Cwd            string        `json:"cwd"`
	Version        string        `json:"version"`
	Model          ModelInfo     `json:"model"`
	Workspace      WorkspaceInfo `json:"workspace"`

	ContextWindow *ContextWindowInfo `json:"context_window,omitempty"`
	Cost          *CostInfo          `json:"cost,omitempty"`
}

type ModelInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type WorkspaceInfo struct {
	CurrentDir string `json:"current_dir"`
	ProjectDir string `json:"project_dir"`
}

// ContextWindowInfo is the context window Claude Code reports for the session.
type ContextWindowInfo struct {
	ContextWindowSize int64 `json:"context_window_size"`
	TotalInputTokens  int64 `json:"total_input_tokens"`
	TotalOutputTokens int64 `json:"total_output_tokens"`
}

// CostInfo carries Claude Code's own session totals. Nil fields were not sent.
type CostInfo struct {
	TotalCostUSD      *decimal.Decimal `json:"total_cost_usd"`
	TotalLinesAdded   *int64           `json:"total_lines_added"`
	TotalLinesRemoved *int64           `json:"total_lines_removed"`
}

// ContextLimit returns the payload's context window size, or 0 when absent.
func (in StatusInput) ContextLimit() int64 {
	if in.ContextWindow == nil || in.ContextWindow.ContextWindowSize <= 0 {
		return 0
	}
	return in.ContextWindow.ContextWindowSize
}

// TotalCost returns the session cost Claude Code reported, if any.
func (in StatusInput) TotalCost() (decimal.Decimal, bool) {
	if in.Cost == nil || in.Cost.TotalCostUSD == nil || in.Cost.TotalCostUSD.IsNegative() {
		return decimal.Zero, false
	}
	return *in.Cost.TotalCostUSD, true
}

// TotalLines returns the line counters Claude Code reported. ok is false
// unless at least one counter was sent.
func (in StatusInput) TotalLines() (added, removed int64, ok bool) {
	if in.Cost == nil {
		return 0, 0, false
	}
	if in.Cost.TotalLinesAdded != nil {
		added, ok = max(0, *in.Cost.TotalLinesAdded), true
	}
	if in.Cost.TotalLinesRemoved != nil {
		removed, ok = max(0, *in.Cost.TotalLinesRemoved), true
	}
	return added, removed, ok
}

// Dir returns the best known working directory.
func (in StatusInput) Dir() string {
	if in.Workspace.CurrentDir != "" {
		return in.Workspace.CurrentDir
	}
	return in.Cwd
}

// ParseStatusInput parses the statusLine payload. Unknown fields are ignored.
func ParseStatusInput(data []byte) (StatusInput, error) {
	var in StatusInput
	if len(data) == 0 {
		return in, fmt.Errorf("empty status input")
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return in, fmt.Errorf("failed to parse status input: %w", err)
	}
	return in, nil
}
