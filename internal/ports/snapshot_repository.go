package ports

import (
	"context"
	"time"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

// SnapshotRepository persists status line snapshots.
type SnapshotRepository interface {
	Save(ctx context.Context, rec *domain.SnapshotRecord) error
	ListRecent(ctx context.Context, limit int) ([]*domain.SnapshotRecord, error)
	ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.SnapshotRecord, error)
	// LatestBySession returns nil, nil when the session has no snapshots.
	LatestBySession(ctx context.Context, sessionID string) (*domain.SnapshotRecord, error)
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
