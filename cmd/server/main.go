package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gyaneshwarpardhi/promoengine/internal/api"
	"github.com/gyaneshwarpardhi/promoengine/internal/config"
	"github.com/gyaneshwarpardhi/promoengine/internal/engine"
)

func main() {
	addr := flag.String("addr", ":8080", "HTTP listen address")
	catalogPath := flag.String("catalog", "configs/catalog.yaml", "Path to the promotion catalog YAML")
	watch := flag.Bool("watch", true, "Hot-reload the catalog when the file changes")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// ── Load catalog ─────────────────────────────────────────────────────────
	loader, err := config.NewLoader(*catalogPath)
	if err != nil {
		slog.Error("failed to load catalog", "err", err)
		os.Exit(1)
	}
	cfg := loader.Config()
	reg := config.DefaultRegistries()

	cat, err := config.Build(cfg, reg)
	if err != nil {
		slog.Error("failed to build catalog", "err", err)
		os.Exit(1)
	}
	slog.Info("catalog built",
		"version", cat.Version,
		"promotions", len(cat.Promotions),
		"disabled", cat.Disabled(),
		"org_nodes", cat.Org.Len(),
		"product_nodes", cat.Products.Len(),
		"policy", cat.Policy,
	)

	// ── Engine ────────────────────────────────────────────────────────────────
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := engine.New(ctx, cat, cfg.Engine)

	// ── Hot-reload watcher ────────────────────────────────────────────────────
	// Engine settings (workers, queue depth) are fixed at startup; a reload only
	// replaces master data, promotions and the selection policy.
	svc.Follow(loader, reg)
	if *watch {
		stopWatch, err := loader.Watch()
		if err != nil {
			slog.Warn("catalog watcher unavailable (hot-reload disabled)", "err", err)
		} else {
			defer stopWatch()
		}
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	srv := &http.Server{
		Addr:         *addr,
		Handler:      api.New(svc, loader),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", *addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("shutting down…")

	shutCtx, shutCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutCancel()
	_ = srv.Shutdown(shutCtx)
	cancel() // stop request workers
	svc.Shutdown()
	slog.Info("goodbye")
}
