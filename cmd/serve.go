package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/llehouerou/deck/internal/logger"
	"github.com/llehouerou/deck/internal/remote"
)

const shutdownTimeout = 5 * time.Second

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from config, 127.0.0.1:8765)")
	serveCmd.Flags().Bool("debug", false, "Run the HTTP router in debug mode")
	serveCmd.Flags().Bool("pretty", true, "Human-readable console logs")
	addPlayFlags(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [paths...]",
	Short: "Play headless and accept commands over HTTP and MPRIS",
	Example: "  deck serve --resume\n" +
		"  deck serve --addr :9000 ~/Music\n" +
		"  curl -X POST localhost:8765/toggle",
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger.Init(effectiveLogLevel(cfg), lo.Must(cmd.Flags().GetBool("pretty")), os.Stderr)

	s, err := openSession(cfg, args, playFlagsFrom(cmd))
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Log.Warn().Err(err).Msg("session close")
		}
	}()

	addr := lo.Must(cmd.Flags().GetString("addr"))
	if addr == "" {
		addr = cfg.RemoteAddr()
	}
	srv := remote.New(s.engine, remote.Options{
		Addr:  addr,
		Debug: lo.Must(cmd.Flags().GetBool("debug")),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
