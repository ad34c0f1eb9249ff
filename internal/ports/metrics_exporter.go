package ports

import (
	"context"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

// MetricsExporter exports status line snapshots to an external observability system.
type MetricsExporter interface {
	// ExportSnapshot records the snapshot behind one status line render.
	ExportSnapshot(ctx context.Context, s domain.Snapshot) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}
