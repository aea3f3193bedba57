package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/buemura/scamscan/internal/store"
	"github.com/buemura/scamscan/pkg/types"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent analyses",
	Long:  "Lists the most recent analyses, newest first. History survives between runs only with --store.",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every saved analysis",
	Args:  cobra.NoArgs,
	RunE:  runHistoryClear,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <history-id>",
	Short: "Re-query providers for the pending URL checks of a saved analysis",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(resolveCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		outcomes, err := a.engine.History(cmd.Context())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		if outputFlag != "table" {
			return writeOutcomes(w, outcomes)
		}
		if len(outcomes) == 0 {
			fmt.Fprintln(w, "No analyses in history.")
			return nil
		}

		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"ID", "Time", "Verdict", "Confidence", "Findings", "Message"})
		table.SetAutoWrapText(false)
		table.SetBorder(false)
		for _, o := range outcomes {
			table.Append([]string{
				o.ID,
				o.CreatedAt.Local().Format("2006-01-02 15:04"),
				verdictLabel(o),
				fmt.Sprintf("%d%%", o.Confidence),
				fmt.Sprintf("%d", len(o.Findings)),
				preview(o.Message, 40),
			})
		}
		table.Render()
		return nil
	})
}

func runHistoryClear(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		if err := a.engine.ClearHistory(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "History cleared.")
		return nil
	})
}

func runResolve(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		ctx, cancel := commandContext(cmd.Context())
		defer cancel()

		o, err := a.engine.ResolveByID(ctx, args[0])
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("no analysis with id %q in history", args[0])
		}
		if err != nil {
			return err
		}
		return writeOutcomes(cmd.OutOrStdout(), []types.ScanOutcome{o})
	})
}

func verdictLabel(o types.ScanOutcome) string {
	label := strings.ToUpper(string(o.Verdict))
	if o.HasPending() {
		label += " (pending)"
	}
	return label
}

func preview(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
