package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"signet/internal/config"
	"signet/internal/infra/db"
	httpinfra "signet/internal/infra/http"
	"signet/internal/infra/logging"
)

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "optional config file (yaml, json or toml)")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) (err error) {
	logger, logCloser := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	}, os.Stderr)
	defer func() { err = multierr.Append(err, logCloser.Close()) }()

	store, err := db.NewStore(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to init store: %w", err)
	}
	defer func() { err = multierr.Append(err, store.Close()) }()
	if store.Enabled() && cfg.AutoMigrate {
		if err := store.Migrate(); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	srv := httpinfra.NewServer(cfg, store, logger)
	defer func() { err = multierr.Append(err, srv.Close()) }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", cfg.HTTPAddr).Str("mode", cfg.Mode()).Msg("listening")
		return srv.Run()
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
		defer cancel()
		logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("server exited: %w", err)
	}
	if dropped := srv.AuditDropped(); dropped > 0 {
		logger.Warn().Int64("dropped", dropped).Msg("audit entries were dropped during this run")
	}
	return nil
}
