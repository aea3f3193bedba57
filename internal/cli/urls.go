package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/buemura/scamscan/internal/extract"
	"github.com/buemura/scamscan/internal/scanner/local"
	"github.com/buemura/scamscan/pkg/types"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var urlsCmd = &cobra.Command{
	Use:   "urls <text>",
	Short: "Extract the links found in a piece of text",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runURLs,
}

var checkURLCmd = &cobra.Command{
	Use:   "check-url <url>",
	Short: "Check a link with the offline heuristics",
	Long:  "Runs the local URL heuristics only. No request leaves the machine.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheckURL,
}

var scanURLCmd = &cobra.Command{
	Use:   "scan-url <url>",
	Short: "Check a link against every enabled reputation provider",
	Args:  cobra.ExactArgs(1),
	RunE:  runScanURL,
}

func init() {
	rootCmd.AddCommand(urlsCmd)
	rootCmd.AddCommand(checkURLCmd)
	rootCmd.AddCommand(scanURLCmd)
}

func runURLs(cmd *cobra.Command, args []string) error {
	urls := extract.URLs(strings.Join(args, " "))
	w := cmd.OutOrStdout()
	if outputFlag == "json" {
		return writeJSON(w, map[string][]string{"urls": urls})
	}
	if len(urls) == 0 {
		fmt.Fprintln(w, "No URLs found.")
		return nil
	}
	for _, u := range urls {
		fmt.Fprintln(w, u)
	}
	return nil
}

func runCheckURL(cmd *cobra.Command, args []string) error {
	res := local.Check(args[0])
	w := cmd.OutOrStdout()
	if outputFlag == "json" {
		return writeJSON(w, struct {
			URL string `json:"url"`
			local.Result
		}{URL: args[0], Result: res})
	}

	fmt.Fprintf(w, "%s  %s\n", args[0], colorStatus(res.Status))
	for _, r := range res.Reasons {
		fmt.Fprintf(w, "  - %s\n", r)
	}
	return nil
}

func runScanURL(cmd *cobra.Command, args []string) error {
	if _, err := types.NormalizeURL(args[0]); err != nil {
		return fmt.Errorf("invalid url %q: %w", args[0], err)
	}

	return withApp(cmd.Context(), func(a *app) error {
		ctx, cancel := commandContext(cmd.Context())
		defer cancel()

		v := a.engine.URLScanner().ScanURL(ctx, args[0])
		w := cmd.OutOrStdout()
		if outputFlag == "json" {
			return writeJSON(w, v)
		}
		writeURLVerdict(w, v)
		return nil
	})
}

func writeURLVerdict(w io.Writer, v types.URLVerdict) {
	overall := color.GreenString("clean")
	switch {
	case v.IsMalicious:
		overall = color.RedString("malicious")
	case v.HasPending:
		overall = color.YellowString("pending")
	}
	fmt.Fprintf(w, "%s  %s\n\n", v.URL, overall)

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Provider", "Status", "Detail"})
	table.SetAutoWrapText(false)
	table.SetBorder(false)
	for _, s := range v.Sources {
		table.Append([]string{s.Provider, colorStatus(s.Status), s.Detail})
	}
	table.Render()
}

func colorStatus(s types.SourceStatus) string {
	switch s {
	case types.StatusMalicious:
		return color.RedString(string(s))
	case types.StatusSuspicious, types.StatusPending:
		return color.YellowString(string(s))
	case types.StatusSafe:
		return color.GreenString(string(s))
	default:
		return color.HiBlackString(string(s))
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
