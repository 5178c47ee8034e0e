// File path: cmd/censusd/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/wildtrack/censusd/internal/api"
	"github.com/wildtrack/censusd/internal/common"
	"github.com/wildtrack/censusd/internal/reconcile"
	"github.com/wildtrack/censusd/internal/store"
)

func main() {
	logger := common.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(); err != nil {
		logger.Warn("censusd: .env file not loaded", "error", err)
	} else {
		logger.Info("censusd: environment loaded from .env")
	}

	addr := flag.String("addr", ":5000", "listen address")
	driver := flag.String("driver", "", "database driver (sqlite or postgres)")
	dsn := flag.String("dsn", "", "database connection string (postgres) or file path (sqlite)")
	reconcileInterval := flag.String("reconcile-interval", "", "interval between aggregate reconciliation sweeps (e.g. 15m, 1h)")
	flag.Parse()

	cfg, err := store.LoadConfig()
	if err != nil {
		logger.Error("censusd: store config load failed", "error", err)
		fmt.Println("store config error:", err)
		os.Exit(1)
	}
	override := store.Config{Driver: store.Driver(strings.TrimSpace(*driver))}
	if trimmed := strings.TrimSpace(*dsn); trimmed != "" {
		if override.Driver == store.DriverSQLite || (override.Driver == "" && cfg.Driver != store.DriverPostgres) {
			override.Path = trimmed
		} else {
			override.DSN = trimmed
		}
	}
	cfg = cfg.Merge(override)

	st, err := store.OpenWithConfig(cfg)
	if err != nil {
		logger.Error("censusd: store open failed", "error", err)
		fmt.Println("store error:", err)
		os.Exit(1)
	}
	defer st.Close()
	logger.Info("censusd: store ready", "driver", st.Driver())

	server, err := api.NewServer(st)
	if err != nil {
		logger.Error("censusd: server initialization failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	schedule := ""
	if trimmed := strings.TrimSpace(*reconcileInterval); trimmed != "" {
		if _, err := time.ParseDuration(trimmed); err != nil {
			logger.Error("censusd: invalid reconcile interval", "value", trimmed, "error", err)
			fmt.Println("reconcile interval error:", err)
			os.Exit(1)
		}
		schedule = "@every " + trimmed
	}
	reconciler := reconcile.New(st, schedule)
	if err := reconciler.Start(ctx); err != nil {
		logger.Error("censusd: reconciler start failed", "error", err)
		fmt.Println("reconciler error:", err)
		os.Exit(1)
	}
	defer reconciler.Stop()

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("censusd: server listening", "addr", *addr, "health", "/healthz")
		fmt.Printf("Serving on %s\n", *addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("censusd: server stopped", "error", err)
		fmt.Println("server stopped:", err)
		os.Exit(1)
	}
	logger.Info("censusd: shutdown complete")
}
