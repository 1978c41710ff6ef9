package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/numberhop/numberhop"
	httpadapter "github.com/numberhop/numberhop/internal/adapters/http"
	"github.com/numberhop/numberhop/internal/adapters/memory"
	redisadapter "github.com/numberhop/numberhop/internal/adapters/redis"
	"github.com/numberhop/numberhop/internal/adapters/sqlstore"
	"github.com/numberhop/numberhop/internal/observability"
	"github.com/numberhop/numberhop/internal/runs"
	"github.com/numberhop/numberhop/internal/scheduler"
	"github.com/numberhop/numberhop/pkg/ports"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the quiz backend and walk API",
	Long:  `Starts the NumberHop service: player logins, the question bank, scores with a live leaderboard, and server-side walks streamed over SSE.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(cmd)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}

		store, err := sqlstore.Open(cfg.Database.Driver, cfg.Database.DSN)
		if err != nil {
			fmt.Printf("Error opening database: %v\n", err)
			os.Exit(1)
		}
		defer store.Close()

		var (
			ranker ports.Ranker
			locker ports.Locker
		)
		if cfg.Redis.Enabled {
			r := redisadapter.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
				redisadapter.WithKey(cfg.Redis.Key))
			defer r.Close()
			ranker = r
			locker = r.Locker()
		} else {
			ranker = memory.NewRanker()
		}

		registry := prometheus.NewRegistry()
		metrics := observability.New(registry)

		manager := runs.NewManager(
			runs.WithLimit(cfg.Walk.MaxRuns),
			runs.WithTTL(cfg.Walk.RunTTL),
			runs.WithTimings(cfg.Walk.Timings()),
			runs.WithLogger(slog.Default()),
			runs.WithHooks(metrics.Hooks()),
		)
		defer manager.Close()

		// Warm the board from stored totals before taking traffic,
		// then keep it reconciled in the background.
		schedOpts := []scheduler.Option{scheduler.WithLogger(slog.Default())}
		if locker != nil {
			schedOpts = append(schedOpts, scheduler.WithLocker(locker))
		}
		jobs := scheduler.New(store, ranker, cfg.Leaderboard.ReconcileInterval, schedOpts...)
		if err := jobs.Reconcile(cmd.Context()); err != nil {
			slog.Warn("initial leaderboard reconcile failed", "err", err)
		}
		if err := jobs.Start(); err != nil {
			fmt.Printf("Error starting scheduler: %v\n", err)
			os.Exit(1)
		}
		defer jobs.Stop()

		handler := httpadapter.NewHandler(&httpadapter.Server{
			Players:   store,
			Questions: store,
			Scores:    store,
			Ranker:    ranker,
			Runs:      manager,
			BoardSize: cfg.Leaderboard.Size,
			Version:   strings.TrimSpace(numberhop.Version),
			Metrics:   metrics,
			Registry:  registry,
		})

		srv := &http.Server{
			Addr:    cfg.Server.Addr(),
			Handler: handler,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			slog.Info("starting NumberHop server", "addr", srv.Addr, "driver", cfg.Database.Driver, "redis", cfg.Redis.Enabled)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			fmt.Printf("Server error: %v\n", err)
			os.Exit(1)

		case sig := <-shutdown:
			slog.Info("starting shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				slog.Error("graceful shutdown did not complete", "err", err)
				if err := srv.Close(); err != nil {
					slog.Error("error killing server", "err", err)
				}
			}
			slog.Info("NumberHop server stopped gracefully")
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
