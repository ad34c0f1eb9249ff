package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
	"github.com/emiliopalmerini/mclaude-statusline/internal/statusline"
	"github.com/emiliopalmerini/mclaude-statusline/internal/transcript"
)

// closeTimeout bounds flushing history and metrics after the line is printed.
const closeTimeout = time.Second

// recordTimeout bounds exporting and storing one snapshot on the render path.
const recordTimeout = time.Second

// runStatusLine never fails: Claude Code shows whatever reaches stdout, so
// every problem degrades to a line and a log record instead of an exit code.
func runStatusLine(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	line := statusline.NoTranscriptText
	defer func() { fmt.Fprintln(out, line) }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := NewAppContext(ctx)
	if err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return nil
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), closeTimeout)
		defer cancel()
		if err := app.Close(closeCtx); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}()
	defer app.Logger.RecoverPanic("statusline", func() { line = statusline.NoTranscriptText })

	payload, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		app.Logger.Error("failed to read stdin", "error", err)
	}

	line = app.StatusLine(ctx, payload, app.widgets(splitList(widgetList)))
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func (a *AppContext) widgets(names []string) []statusline.Widget {
	if len(names) == 0 {
		return statusline.Default()
	}
	widgets, err := statusline.Select(names)
	if err != nil {
		a.Logger.Warn("invalid widget layout, using default", "error", err)
		return statusline.Default()
	}
	return widgets
}

// StatusLine turns one statusLine payload into the text Claude Code shows.
func (a *AppContext) StatusLine(ctx context.Context, payload []byte, widgets []statusline.Widget) string {
	in, err := domain.ParseStatusInput(payload)
	if err != nil {
		a.Logger.Error("invalid status input", "error", err)
	}

	view := statusline.View{Input: in}
	var g errgroup.Group
	g.Go(func() error {
		view.Snapshot = a.Snapshot(ctx, in)
		return nil
	})
	if statusline.NeedsGit(widgets) {
		g.Go(func() error {
			view.Git = a.gitStatus(ctx, in.Dir())
			return nil
		})
	}
	_ = g.Wait()

	a.record(ctx, view.Snapshot)
	return statusline.Render(widgets, view)
}

// gitStatus returns nil outside a repository or when git fails.
func (a *AppContext) gitStatus(ctx context.Context, dir string) *domain.GitStatus {
	if a.Git == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancel()

	status, err := a.Git.Status(ctx, dir)
	if err != nil {
		if !errors.Is(err, domain.ErrNotGitRepo) {
			a.Logger.Debug("git status unavailable", "dir", dir, "error", err)
		}
		return nil
	}
	return status
}

// Snapshot parses the transcript for in within the configured timeout. The
// model catalog is warmed up while the transcript is read.
func (a *AppContext) Snapshot(ctx context.Context, in domain.StatusInput) domain.Snapshot {
	path := transcript.Locate(in, a.Home)

	ctx, cancel := context.WithTimeout(ctx, a.Config.Timeout)
	defer cancel()

	var snap domain.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Catalog.Load(gctx); err != nil && gctx.Err() != nil {
			return gctx.Err()
		}
		return nil
	})
	g.Go(func() error {
		var err error
		snap, err = a.Parser.Parse(gctx, transcript.Request{
			Path:      path,
			SessionID:    in.SessionID,
			Model:        in.Model.ID,
			ContextLimit: in.ContextLimit(),
		})
		return err
	})

	if err := g.Wait(); err != nil {
		a.Logger.Error("status line parse aborted", "path", path, "error", err)
		return domain.Snapshot{State: domain.StateIOError, TranscriptPath: path}
	}
	return snap
}

// record stores and exports a snapshot. Failures are logged, never shown.
func (a *AppContext) record(ctx context.Context, snap domain.Snapshot) {
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	if err := a.Exporter.ExportSnapshot(ctx, snap); err != nil {
		a.Logger.Error("failed to export snapshot", "error", err)
	}

	if !a.Config.History || !snap.HasTranscript() {
		return
	}
	if err := a.saveHistory(ctx, snap); err != nil {
		a.Logger.Error("failed to save snapshot history", "error", err)
	}
}

func (a *AppContext) saveHistory(ctx context.Context, snap domain.Snapshot) error {
	repo, err := a.History(ctx)
	if err != nil {
		return err
	}

	rec := domain.NewSnapshotRecord(snap, time.Now())
	latest, err := repo.LatestBySession(ctx, rec.SessionID)
	if err != nil {
		return err
	}
	if rec.SameUsage(latest) {
		a.Logger.Debug("snapshot unchanged, not stored", "session_id", rec.SessionID)
		return nil
	}
	return repo.Save(ctx, rec)
}
