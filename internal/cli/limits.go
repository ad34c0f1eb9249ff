package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
	"github.com/emiliopalmerini/mclaude-statusline/internal/util"
)

var limitsCmd = &cobra.Command{
	Use:   "limits <model>...",
	Short: "Resolve context window limits",
	Long: `Resolve the context window size for one or more model ids, using the
built-in table first and the local model catalog second.

Examples:
  mclaude-statusline limits claude-sonnet-4-5-20250929
  mclaude-statusline limits 'claude-sonnet-4-5[1m]' claude-3-5-haiku-20241022`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLimits,
}

func runLimits(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()

	if err := app.Catalog.Load(ctx); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: model catalog not used: %v\n", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tCONTEXT\tTOKENS")
	fmt.Fprintln(w, "-----\t-------\t------")

	for _, model := range args {
		limit, err := app.Resolver.Resolve(ctx, model)
		switch {
		case errors.Is(err, domain.ErrUnresolvedModelLimit):
			fmt.Fprintf(w, "%s\tunknown\t-\n", model)
		case err != nil:
			return fmt.Errorf("failed to resolve %s: %w", model, err)
		default:
			fmt.Fprintf(w, "%s\t%s\t%d\n", model, util.FormatCompact(limit), limit)
		}
	}

	return w.Flush()
}
