package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tallysheet/tally/internal/backend"
	"github.com/tallysheet/tally/internal/cache"
	"github.com/tallysheet/tally/internal/config"
	"github.com/tallysheet/tally/internal/handler"
	"github.com/tallysheet/tally/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the timesheet HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return serve(ctx)
}

// serve is the testable server entrypoint: it runs until ctx is cancelled,
// then shuts down gracefully.
func serve(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Env)
	defer func() { _ = log.Sync() }()

	client := backend.New(cfg.BackendURL, cfg.BackendKey)
	store := cache.New(client, cfg.CacheTTL, log)
	h := handler.New(log, store, client, handler.NewValidator())

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      h.Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting timesheet API server",
			zap.String("addr", cfg.Addr),
			zap.String("backend", cfg.BackendURL))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctxShutdown)
}
