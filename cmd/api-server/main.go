package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"orgatlas.app/api-server/core/config"
	"orgatlas.app/api-server/core/db"
	"orgatlas.app/api-server/core/observability"
	"orgatlas.app/api-server/internal/cache"
	"orgatlas.app/api-server/internal/http/handler"
	"orgatlas.app/api-server/internal/http/router"
	"orgatlas.app/api-server/internal/service"
	"orgatlas.app/api-server/internal/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	shutdownTelemetry, err := observability.Setup(ctx, cfg.Telemetry, cfg.Env)
	if err != nil {
		return err
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(flushCtx); err != nil {
			slog.Error("telemetry shutdown failed", "error", err)
		}
	}()

	if cfg.Database.RunMigrations {
		if err := db.Migrate(ctx, cfg.Database.URL); err != nil {
			return err
		}
		slog.InfoContext(ctx, "migrations applied")
	}

	pool, err := db.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	var cacheStore cache.Store
	if cfg.Redis.Enabled() {
		client := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err := client.Ping(ctx).Err(); err != nil {
			slog.WarnContext(ctx, "redis unreachable, response cache disabled", "error", err)
		} else {
			cacheStore = cache.NewRedisStore(client)
			slog.InfoContext(ctx, "response cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.CacheTTL)
		}
	}

	orgService := service.NewOrganizationService(store.NewTxRunner(pool))
	orgHandler := handler.NewOrganizationHandler(orgService)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := router.New(orgHandler, router.Options{
		APIKey:    cfg.Auth.APIKey,
		Cache:     cacheStore,
		CacheTTL:  cfg.Redis.CacheTTL,
		Telemetry: cfg.Telemetry.Enabled(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.InfoContext(ctx, "server listening", "port", cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
