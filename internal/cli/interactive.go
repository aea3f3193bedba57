package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/buemura/scamscan/internal/tui"
	"github.com/spf13/cobra"
)

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Launch interactive TUI mode",
	Long:  "Start an interactive terminal UI for analyzing messages and checking links.",
	Args:  cobra.NoArgs,
	RunE:  runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)
}

func runInteractive(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withApp(ctx, func(a *app) error {
		if a.learner != nil {
			a.learner.Start(ctx)
		}
		return tui.Run(ctx, a.engine, timeoutFlag*10)
	})
}
