package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

var parseCmd = &cobra.Command{
	Use:   "parse [transcript]",
	Short: "Print the parsed snapshot as JSON",
	Long: `Parse a transcript and print the full snapshot as JSON.

Without arguments the statusLine payload is read from stdin, exactly as the
status line does. With a path the transcript is parsed directly.

Examples:
  mclaude-statusline parse ~/.claude/projects/-home-me-repo/<session>.jsonl
  echo '{"session_id":"...","transcript_path":"..."}' | mclaude-statusline parse`,
	Args: cobra.MaximumNArgs(1),
	RunE: runParse,
}

// Flags
var (
	parseSessionID    string
	parseModel        string
	parseContextLimit int64
)

func init() {
	parseCmd.Flags().StringVar(&parseSessionID, "session-id", "", "Session id to report when parsing a path")
	parseCmd.Flags().StringVar(&parseModel, "model", "", "Model id used to resolve the context limit when parsing a path")
	parseCmd.Flags().Int64Var(&parseContextLimit, "context-limit", 0, "Context window size to use instead of the model lookup")
}

func runParse(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close(ctx) }()

	in := domain.StatusInput{SessionID: parseSessionID, Model: domain.ModelInfo{ID: parseModel}}
	if len(args) == 1 {
		in.TranscriptPath = args[0]
		if parseContextLimit > 0 {
			in.ContextWindow = &domain.ContextWindowInfo{ContextWindowSize: parseContextLimit}
		}
	} else {
		payload, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		if in, err = domain.ParseStatusInput(payload); err != nil {
			return err
		}
	}

	return writeSnapshot(cmd.OutOrStdout(), app.Snapshot(ctx, in))
}

func writeSnapshot(w io.Writer, snap domain.Snapshot) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(snap); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}
