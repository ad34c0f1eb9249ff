package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

// Inspector runs the git binary to read repository state.
type Inspector struct {
	// Binary is the git executable. Empty means "git" on PATH.
	Binary string
}

// NewInspector returns an Inspector using git from PATH.
func NewInspector() *Inspector {
	return &Inspector{Binary: "git"}
}

func (i *Inspector) Status(ctx context.Context, dir string) (*domain.GitStatus, error) {
	if dir == "" {
		return nil, domain.ErrNotGitRepo
	}
	if _, err := i.run(ctx, dir, "rev-parse", "--git-dir"); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, domain.ErrNotGitRepo
	}

	status := &domain.GitStatus{}
	branch, err := i.run(ctx, dir, "branch", "--show-current")
	if err != nil {
		return nil, err
	}
	status.Branch = branch

	for _, args := range [][]string{
		{"diff", "--shortstat"},
		{"diff", "--cached", "--shortstat"},
	} {
		out, err := i.run(ctx, dir, args...)
		if err != nil {
			return nil, err
		}
		ins, del := ParseShortstat(out)
		status.Insertions += ins
		status.Deletions += del
	}
	return status, nil
}

func (i *Inspector) run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := i.Binary
	if bin == "" {
		bin = "git"
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

var (
	insertionsRe = regexp.MustCompile(`(\d+) insertion`)
	deletionsRe  = regexp.MustCompile(`(\d+) deletion`)
)

// ParseShortstat reads the counts from `git diff --shortstat` output.
func ParseShortstat(out string) (insertions, deletions int64) {
	return firstCount(insertionsRe, out), firstCount(deletionsRe, out)
}

func firstCount(re *regexp.Regexp, s string) int64 {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0
	}
	return n
}
