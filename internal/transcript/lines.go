package transcript

import (
	"encoding/json"
	"strings"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

type toolUse struct {
	Name  string    `json:"name"`
	Input toolInput `json:"input"`
}

type toolInput struct {
	OldString string     `json:"old_string"`
	NewString string     `json:"new_string"`
	Content   string     `json:"content"`
	NewSource string     `json:"new_source"`
	Edits     []editPair `json:"edits"`
}

type editPair struct {
	OldString string `json:"old_string"`
	NewString string `json:"new_string"`
}

// countLineChanges returns the lines a file-editing tool call adds and removes.
func countLineChanges(block domain.ContentBlock) (added, removed int64) {
	if block.Kind != domain.BlockToolUse || !isEditTool(block.Name) {
		return 0, 0
	}

	var call toolUse
	if err := json.Unmarshal(block.Raw, &call); err != nil {
		return 0, 0
	}

	in := call.Input
	switch call.Name {
	case "Edit":
		return countLines(in.NewString), countLines(in.OldString)
	case "MultiEdit":
		for _, e := range in.Edits {
			added += countLines(e.NewString)
			removed += countLines(e.OldString)
		}
		return added, removed
	case "Write":
		return countLines(in.Content), 0
	case "NotebookEdit":
		return countLines(in.NewSource), 0
	}
	return 0, 0
}

func isEditTool(name string) bool {
	switch name {
	case "Edit", "MultiEdit", "Write", "NotebookEdit":
		return true
	default:
		return false
	}
}

// countLines counts lines the way an editor gutter does: "a\nb" and "a\nb\n"
// are both two lines.
func countLines(s string) int64 {
	if s == "" {
		return 0
	}
	n := int64(strings.Count(s, "\n"))
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
