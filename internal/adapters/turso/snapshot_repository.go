package turso

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
	"github.com/emiliopalmerini/mclaude-statusline/internal/util"
)

// capturedAtLayout is fixed width so captured_at sorts lexicographically.
const capturedAtLayout = "2006-01-02T15:04:05.000000000Z07:00"

const snapshotColumns = `id, captured_at, session_id, model, transcript_path, state,
	active_tokens, system_overhead, context_limit, usage_percent, estimated,
	cost_usd, lines_added, lines_removed, boundaries`

// maxBusyRetries bounds retries when another status line holds the write lock.
const maxBusyRetries = 3

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Save(ctx context.Context, rec *domain.SnapshotRecord) error {
	if rec == nil {
		return errors.New("snapshot record is nil")
	}
	_, err := WithRetry(ctx, maxBusyRetries, func() (sql.Result, error) {
		return r.db.ExecContext(ctx, `INSERT INTO snapshots (`+snapshotColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID,
			rec.CapturedAt.UTC().Format(capturedAtLayout),
			rec.SessionID,
			util.NullString(rec.Model),
			util.NullString(rec.TranscriptPath),
			rec.State.String(),
			rec.ActiveTokens,
			rec.SystemOverhead,
			rec.ContextLimit,
			util.NullInt(rec.UsagePercent),
			util.BoolToInt64(rec.Estimated),
			rec.CostUSD.String(),
			rec.LinesAdded,
			rec.LinesRemoved,
			rec.Boundaries,
		)
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// ListRecent returns up to limit snapshots, newest first.
func (r *SnapshotRepository) ListRecent(ctx context.Context, limit int) ([]*domain.SnapshotRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+snapshotColumns+` FROM snapshots
		ORDER BY captured_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return scanSnapshots(rows)
}

// ListBySession returns up to limit snapshots of one session, newest first.
func (r *SnapshotRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]*domain.SnapshotRecord, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+snapshotColumns+` FROM snapshots
		WHERE session_id = ? ORDER BY captured_at DESC LIMIT ?`, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list session snapshots: %w", err)
	}
	return scanSnapshots(rows)
}

// LatestBySession returns the newest snapshot of a session, or nil when the
// session has none.
func (r *SnapshotRepository) LatestBySession(ctx context.Context, sessionID string) (*domain.SnapshotRecord, error) {
	recs, err := r.ListBySession(ctx, sessionID, 1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// DeleteBefore removes snapshots captured before cutoff and returns how many went.
func (r *SnapshotRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM snapshots WHERE captured_at < ?`,
		cutoff.UTC().Format(capturedAtLayout))
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	return res.RowsAffected()
}

func scanSnapshots(rows *sql.Rows) ([]*domain.SnapshotRecord, error) {
	defer func() { _ = rows.Close() }()

	var result []*domain.SnapshotRecord
	for rows.Next() {
		var (
			rec            domain.SnapshotRecord
			capturedAt     string
			model          sql.NullString
			transcriptPath sql.NullString
			state          string
			usagePercent   sql.NullInt64
			estimated      int64
			cost           string
		)
		if err := rows.Scan(
			&rec.ID,
			&capturedAt,
			&rec.SessionID,
			&model,
			&transcriptPath,
			&state,
			&rec.ActiveTokens,
			&rec.SystemOverhead,
			&rec.ContextLimit,
			&usagePercent,
			&estimated,
			&cost,
			&rec.LinesAdded,
			&rec.LinesRemoved,
			&rec.Boundaries,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}

		rec.CapturedAt = util.ParseTimeSQLite(capturedAt)
		rec.Model = model.String
		rec.TranscriptPath = transcriptPath.String
		rec.State = domain.ParseSnapshotState(state)
		rec.UsagePercent = util.NullInt64ToIntPtr(usagePercent)
		rec.Estimated = estimated != 0

		costUSD, err := decimal.NewFromString(cost)
		if err != nil {
			return nil, fmt.Errorf("invalid cost %q for snapshot %s: %w", cost, rec.ID, err)
		}
		rec.CostUSD = costUSD

		result = append(result, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return result, nil
}
