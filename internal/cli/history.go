package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
	"github.com/emiliopalmerini/mclaude-statusline/internal/util"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded status line snapshots",
	Long: `List snapshots stored by the status line when STATUSLINE_HISTORY is enabled.

Examples:
  mclaude-statusline history                  # Last 10 snapshots
  mclaude-statusline history --last 50        # Last 50 snapshots
  mclaude-statusline history --session <id>   # Snapshots of one session`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete old snapshots",
	Long: `Delete snapshots captured before the given age.

Examples:
  mclaude-statusline history prune --older-than 720h`,
	Args: cobra.NoArgs,
	RunE: runHistoryPrune,
}

// Flags
var (
	historyLast      int
	historySession   string
	historyOlderThan time.Duration
)

func init() {
	historyCmd.AddCommand(historyPruneCmd)

	historyCmd.Flags().IntVarP(&historyLast, "last", "n", 10, "Number of snapshots to show")
	historyCmd.Flags().StringVarP(&historySession, "session", "s", "", "Filter by session ID")
	historyPruneCmd.Flags().DurationVar(&historyOlderThan, "older-than", 30*24*time.Hour, "Delete snapshots older than this")
}

func runHistory(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()

	repo, err := app.History(ctx)
	if err != nil {
		return err
	}

	var records []*domain.SnapshotRecord
	if historySession != "" {
		records, err = repo.ListBySession(ctx, historySession, historyLast)
	} else {
		records, err = repo.ListRecent(ctx, historyLast)
	}
	if err != nil {
		return err
	}

	return writeHistory(cmd.OutOrStdout(), records)
}

func writeHistory(out io.Writer, records []*domain.SnapshotRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(out, "No snapshots found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CAPTURED\tSESSION\tMODEL\tCONTEXT\tTOKENS\tCOST\tLINES")
	fmt.Fprintln(w, "--------\t-------\t-----\t-------\t------\t----\t-----")

	for _, r := range records {
		usage := "?"
		if r.UsagePercent != nil {
			usage = fmt.Sprintf("%d%%", *r.UsagePercent)
		}
		tokens := util.FormatTokensInt(r.ActiveTokens + r.SystemOverhead)
		if r.Estimated {
			tokens = "~" + tokens
		}

		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t+%d/-%d\n",
			util.FormatDateTime(r.CapturedAt),
			shortID(r.SessionID),
			orDash(r.Model),
			usage,
			tokens,
			util.FormatUSD(r.CostUSD),
			r.LinesAdded,
			r.LinesRemoved,
		)
	}

	return w.Flush()
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()

	repo, err := app.History(ctx)
	if err != nil {
		return err
	}

	deleted, err := repo.DeleteBefore(ctx, time.Now().Add(-historyOlderThan))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d snapshots\n", deleted)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return orDash(id)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
