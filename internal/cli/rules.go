package cli

import (
	"fmt"
	"strings"

	"github.com/buemura/scamscan/internal/reports"
	"github.com/buemura/scamscan/internal/rules"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect and manage detection rules",
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the active detection rules",
	Long:  "Lists the built-in rules, then rules from configured packs, then learned rules.",
	Args:  cobra.NoArgs,
	RunE:  runRulesList,
}

var rulesLearnCmd = &cobra.Command{
	Use:   "learn",
	Short: "Derive pattern rules from reported messages with the AI narrative",
	Args:  cobra.NoArgs,
	RunE:  runRulesLearn,
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate <pack.yaml>...",
	Short: "Validate YAML rule packs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRulesValidate,
}

func init() {
	rulesCmd.AddCommand(rulesListCmd)
	rulesCmd.AddCommand(rulesLearnCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
	rootCmd.AddCommand(rulesCmd)
}

func runRulesList(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		active := a.engine.ActiveRules(cmd.Context())
		w := cmd.OutOrStdout()
		if outputFlag == "json" {
			return writeJSON(w, active)
		}

		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Type", "Severity", "Patterns", "Description"})
		table.SetAutoWrapText(false)
		table.SetBorder(false)
		for _, r := range active {
			table.Append([]string{string(r.Kind), string(r.Severity), strings.Join(r.Patterns, ", "), r.Description})
		}
		table.Render()
		fmt.Fprintf(w, "\n%d rules\n", len(active))
		return nil
	})
}

func runRulesLearn(cmd *cobra.Command, args []string) error {
	return withApp(cmd.Context(), func(a *app) error {
		if a.narrator == nil {
			return fmt.Errorf("rule learning needs an AI api key (ai.api_key or SCAMSCAN_AI_API_KEY)")
		}
		learner := a.learner
		if learner == nil {
			learner = reports.NewLearner(a.store, a.store, a.narrator, 0)
		}

		added, err := learner.RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Learned %d new rule(s).\n", added)
		return nil
	})
}

func runRulesValidate(cmd *cobra.Command, args []string) error {
	var failed int
	for _, path := range args {
		loaded, err := rules.LoadPack(path)
		if err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL  %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK    %s (%d rules)\n", path, len(loaded))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d rule packs are invalid", failed, len(args))
	}
	return nil
}
