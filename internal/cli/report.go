package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/buemura/scamscan/internal/store"
	"github.com/buemura/scamscan/pkg/types"
	"github.com/spf13/cobra"
)

var (
	reportMessageFlag string
	reportURLFlags    []string
)

var reportCmd = &cobra.Command{
	Use:   "report [history-id]",
	Short: "Report a message as a confirmed threat",
	Long: `Adds a message and its links to the reported-threat corpus. Later
analyses that contain the same message or link are flagged as
previously reported. Report a saved analysis by id, or give the
content with --message and --url.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportMessageFlag, "message", "m", "", "message text to report")
	reportCmd.Flags().StringSliceVarP(&reportURLFlags, "url", "u", nil, "link to report (repeatable)")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	byID := len(args) == 1
	if byID && (reportMessageFlag != "" || len(reportURLFlags) > 0) {
		return fmt.Errorf("give either a history id or --message/--url, not both")
	}
	if !byID && strings.TrimSpace(reportMessageFlag) == "" && len(reportURLFlags) == 0 {
		return fmt.Errorf("a history id or --message/--url is required")
	}
	for _, u := range reportURLFlags {
		if _, err := types.NormalizeURL(u); err != nil {
			return fmt.Errorf("invalid url %q: %w", u, err)
		}
	}

	return withApp(cmd.Context(), func(a *app) error {
		var item types.ReportedItem
		if byID {
			var err error
			item, err = a.engine.ReportOutcome(cmd.Context(), args[0])
			if errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("no analysis with id %q in history", args[0])
			}
			if err != nil {
				return err
			}
		} else {
			item = types.ReportedItem{Message: strings.TrimSpace(reportMessageFlag), URLs: reportURLFlags}
			if err := a.engine.Report(cmd.Context(), item); err != nil {
				return err
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Reported message with %d URL(s).\n", len(item.URLs))
		if a.learner != nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Run `scamscan rules learn` to derive rules from reports.")
		}
		return nil
	})
}
