package transcript

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

const transcriptExt = ".jsonl"

// ProjectsDir returns the directory Claude Code keeps transcripts in.
func ProjectsDir(home string) string {
	return filepath.Join(home, ".claude", "projects")
}

// ProjectSlug encodes a workspace directory the way Claude Code names its
// project folders: every "/" becomes "-", with exactly one leading dash.
func ProjectSlug(dir string) string {
	encoded := strings.ReplaceAll(dir, "/", "-")
	return "-" + strings.TrimPrefix(encoded, "-")
}

// Locate returns the transcript to read for in. The supplied path wins when
// it is a regular file; otherwise the path is rebuilt from the session id and
// workspace. When neither exists the supplied path is returned unchanged and
// reading it reports domain.ErrNoTranscript.
func Locate(in domain.StatusInput, home string) string {
	if isFile(in.TranscriptPath) {
		return in.TranscriptPath
	}

	dir := in.Dir()
	if in.SessionID == "" || dir == "" || home == "" {
		return in.TranscriptPath
	}

	candidate := filepath.Join(ProjectsDir(home), ProjectSlug(dir), in.SessionID+transcriptExt)
	if isFile(candidate) {
		return candidate
	}
	return in.TranscriptPath
}

// SessionIDFromPath extracts the session id from a transcript named
// <uuid>.jsonl. Any other file name yields "".
func SessionIDFromPath(path string) string {
	name := filepath.Base(path)
	if !strings.HasSuffix(name, transcriptExt) {
		return ""
	}
	id := strings.TrimSuffix(name, transcriptExt)
	// uuid.Parse also accepts urn and braced forms; only the bare form is a file name
	if len(id) != 36 {
		return ""
	}
	if _, err := uuid.Parse(id); err != nil {
		return ""
	}
	return id
}

func isFile(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
