package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/mclaude-statusline/internal/statusline"
)

var rootCmd = &cobra.Command{
	Use:   "mclaude-statusline",
	Short: "Context window status line for Claude Code",
	Long: `mclaude-statusline reads the statusLine payload Claude Code writes to stdin,
parses the session transcript and prints a single status line: model,
context window usage since the last compaction, cost and lines changed.

Configure it in ~/.claude/settings.json:

  {
    "statusLine": {
      "type": "command",
      "command": "mclaude-statusline"
    }
  }`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runStatusLine,
}

// Flags
var widgetList string

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&widgetList, "widgets", "w", strings.Join(statusline.DefaultNames, ","), "Comma separated widgets to show, in order")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(limitsCmd)
	rootCmd.AddCommand(migrateCmd)
}
