// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 TaskHive Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskhive/taskhive/internal/config"
	"github.com/taskhive/taskhive/internal/logging"
	"github.com/taskhive/taskhive/internal/observability"
	"github.com/taskhive/taskhive/internal/reaper"
	"github.com/taskhive/taskhive/internal/store"
	"github.com/taskhive/taskhive/internal/workspace"
	"github.com/taskhive/taskhive/internal/workspace/postgres"
)

// shutdownTimeout bounds graceful shutdown of the observability server.
const shutdownTimeout = 10 * time.Second

// NewReaperCmd creates the reaper subcommand.
func NewReaperCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reaper",
		Short: "Run the retention reaper daemon",
		Long: `Run the retention reaper, which periodically removes soft-deleted
records whose per-kind retention window has lapsed and notifications whose
TTL has expired.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return runReaper(cmd.Context(), cfg)
		},
	}
}

func runReaper(ctx context.Context, cfg config.Config) error {
	logging.SetDefault("taskhive-reaper", version, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	slog.Info("connected to database")

	obs := observability.NewServer(cfg.MetricsAddr, func() bool { return true })
	obsErrCh, err := obs.Start()
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if stopErr := obs.Stop(shutdownCtx); stopErr != nil {
			slog.Error("observability server shutdown failed", "error", stopErr)
		}
	}()

	svc := workspace.NewService(workspace.ServiceConfig{
		Stores:     postgres.NewStores(pool),
		Transactor: postgres.NewTransactor(pool),
		Logger:     slog.Default(),
	})

	r := reaper.New(postgres.NewReapStore(pool), svc, cfg, obs.Metrics(), slog.Default())
	r.Start(ctx)
	defer r.Stop()

	slog.Info("reaper started",
		"interval", cfg.Reaper.Interval.String(),
		"batch_size", cfg.Reaper.BatchSize,
	)

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
		return nil
	case serveErr := <-obsErrCh:
		return serveErr
	}
}
