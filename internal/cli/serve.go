package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/buemura/scamscan/internal/logging"
	"github.com/buemura/scamscan/internal/web"
	"github.com/spf13/cobra"
)

var addrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the scamscan REST API server",
	Long:  "Serves message analysis, reporting and URL checks over a JSON API under /api/v1.",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", ":3000", "listen address (host:port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withApp(ctx, func(a *app) error {
		if a.learner != nil {
			a.learner.Start(ctx)
		}

		s := web.NewServer(addrFlag, a.engine, timeoutFlag*10)
		errCh := make(chan error, 1)
		go func() {
			errCh <- s.Start()
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "scamscan API listening on %s\n", addrFlag)

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		logging.Logger.Infow("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutting down: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
}
