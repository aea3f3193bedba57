package cli

import (
	"fmt"
	"time"

	"github.com/buemura/scamscan/internal/config"
	"github.com/buemura/scamscan/internal/logging"
	"github.com/spf13/cobra"
)

var version = "dev"

var (
	outputFlag      string
	verboseFlag     bool
	concurrencyFlag int
	timeoutFlag     time.Duration
	configFlag      string
	storeFlag       string
)

// appConfig holds the loaded configuration, available after PersistentPreRunE.
var appConfig *config.Config

var rootCmd = &cobra.Command{
	Use:   "scamscan",
	Short: "scamscan — scam and phishing detector for messages and links",
	Long: `scamscan analyzes a message for scam indicators: keyword and pattern
rules, previously reported threats, URL reputation providers and an
optional AI narrative. It classifies the message as safe, suspicious
or scam with a confidence score.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var (
			cfg *config.Config
			err error
		)
		if configFlag != "" {
			cfg, err = config.LoadFromFile(configFlag)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		config.ApplyFlags(cfg, cmd)

		outputFlag = cfg.OutputFormat
		concurrencyFlag = cfg.Concurrency
		timeoutFlag = cfg.Timeout
		storeFlag = cfg.StorePath

		if err := logging.Init(verboseFlag); err != nil {
			return err
		}

		appConfig = cfg
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "table", "output format: table, json, markdown, html, pdf")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().IntVarP(&concurrencyFlag, "concurrency", "c", 4, "max URLs checked concurrently")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 15*time.Second, "per-provider request timeout")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default ~/.scamscan.yaml)")
	rootCmd.PersistentFlags().StringVar(&storeFlag, "store", "", "sqlite database for reports, learned rules and history (default ~/.scamscan/scamscan.db, \"memory\" for none)")

	rootCmd.AddCommand(versionCmd)
}
