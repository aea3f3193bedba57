package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/buemura/scamscan/pkg/types"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var fileFlag string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [message]",
	Short: "Analyze a message for scam indicators",
	Long: `Analyzes a message and prints its verdict, confidence and findings.
The message is taken from the arguments, from standard input, or with
--file from a file holding one message per line.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "file with one message per line")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	messages, err := collectMessages(cmd, args)
	if err != nil {
		return err
	}

	return withApp(cmd.Context(), func(a *app) error {
		var outcomes []types.ScanOutcome
		if fileFlag != "" {
			outcomes, err = analyzeBatch(cmd.Context(), a, messages, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
		} else {
			ctx, cancel := commandContext(cmd.Context())
			defer cancel()
			outcomes = []types.ScanOutcome{a.engine.Analyze(ctx, messages[0])}
		}
		return writeOutcomes(cmd.OutOrStdout(), outcomes)
	})
}

func collectMessages(cmd *cobra.Command, args []string) ([]string, error) {
	if fileFlag != "" {
		if len(args) > 0 {
			return nil, fmt.Errorf("--file cannot be combined with a message argument")
		}
		f, err := os.Open(fileFlag)
		if err != nil {
			return nil, fmt.Errorf("opening message file: %w", err)
		}
		defer f.Close()
		messages, err := readLines(f)
		if err != nil {
			return nil, fmt.Errorf("reading message file: %w", err)
		}
		if len(messages) == 0 {
			return nil, fmt.Errorf("%s contains no messages", fileFlag)
		}
		return messages, nil
	}

	if len(args) > 0 {
		return []string{strings.Join(args, " ")}, nil
	}

	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return nil, fmt.Errorf("a message is required (argument, stdin or --file)")
	}
	return []string{msg}, nil
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines, sc.Err()
}

// analyzeBatch analyzes messages with at most --concurrency in flight and
// returns the outcomes in input order.
func analyzeBatch(ctx context.Context, a *app, messages []string, progress io.Writer) ([]types.ScanOutcome, error) {
	bar := progressbar.NewOptions(len(messages),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("analyzing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	outcomes := make([]types.ScanOutcome, len(messages))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, concurrencyFlag))
	for i, msg := range messages {
		g.Go(func() error {
			mctx, cancel := commandContext(ctx)
			defer cancel()
			outcomes[i] = a.engine.Analyze(mctx, msg)
			return bar.Add(1)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	_ = bar.Finish()
	return outcomes, nil
}
