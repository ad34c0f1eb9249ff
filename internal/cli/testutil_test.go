package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/emiliopalmerini/mclaude-statusline/internal/adapters/logger"
	"github.com/emiliopalmerini/mclaude-statusline/internal/config"
	"github.com/emiliopalmerini/mclaude-statusline/internal/transcript"
)

const (
	testSessionID = "0f8fad5b-d9cb-469f-a165-70867728950e"
	testWorkDir   = "/work/repo"
)

func assertEqual[T comparable](t *testing.T, name string, expected, actual T) {
	t.Helper()
	if expected != actual {
		t.Errorf("%s: expected %v, got %v", name, expected, actual)
	}
}

// testApp wires an AppContext against temp directories with no OTEL export.
func testApp(t *testing.T, history bool) *AppContext {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		SystemOverhead: config.DefaultSystemOverhead,
		CharsPerToken:  config.DefaultCharsPerToken,
		Timeout:        config.DefaultTimeout,
		History:        history,
		DBPath:         filepath.Join(dir, "data", "history.db"),
		ModelCatalog:   filepath.Join(dir, "cache", "catalog.json"),
	}
	app := newAppContext(cfg, logger.Nop(), filepath.Join(dir, "home"), nil)
	t.Cleanup(func() { _ = app.Close(context.Background()) })
	return app
}

func assistantLine(id string, input, output int64) string {
	return fmt.Sprintf(`{"type":"assistant","sessionId":%q,"timestamp":"2025-01-17T10:00:05Z","message":{"id":%q,"role":"assistant","model":"claude-sonnet-4-5-20250929","content":[{"type":"text","text":"ok"}],"usage":{"input_tokens":%d,"output_tokens":%d}}}`, testSessionID, id, input, output)
}

// writeProjectTranscript writes lines where Claude Code would keep the
// transcript of testSessionID in testWorkDir.
func writeProjectTranscript(t *testing.T, home string, lines ...string) string {
	t.Helper()

	dir := filepath.Join(transcript.ProjectsDir(home), transcript.ProjectSlug(testWorkDir))
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create project dir: %v", err)
	}
	path := filepath.Join(dir, testSessionID+".jsonl")
	appendLines(t, path, lines...)
	return path
}

func appendLines(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatalf("Failed to open transcript: %v", err)
	}
	defer func() { _ = f.Close() }()
	if _, err := f.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		t.Fatalf("Failed to write transcript: %v", err)
	}
}

func statusPayload(transcriptPath string) []byte {
	return []byte(fmt.Sprintf(`{
		"session_id": %q,
		"transcript_path": %q,
		"cwd": %q,
		"model": {"id": "claude-sonnet-4-5-20250929", "display_name": "Sonnet 4.5"},
		"workspace": {"current_dir": %q, "project_dir": %q}
	}`, testSessionID, transcriptPath, testWorkDir, testWorkDir, testWorkDir))
}
