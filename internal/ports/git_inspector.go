package ports

import (
	"context"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

// GitInspector reads the git state of a working directory.
type GitInspector interface {
	// Status returns domain.ErrNotGitRepo when dir is not inside a repository.
	Status(ctx context.Context, dir string) (*domain.GitStatus, error)
}
