package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jatolabs/projecthub/internal/cache"
	"github.com/jatolabs/projecthub/internal/config"
	"github.com/jatolabs/projecthub/internal/db"
	httpx "github.com/jatolabs/projecthub/internal/http"
	"github.com/jatolabs/projecthub/internal/observability"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	jwtSecret, err := cfg.ResolveJWTSecret(log)

	if err != nil {
		log.Error("refusing to start", "err", err)
		os.Exit(1)
	}

	// tracing is opt-in; without an endpoint we skip the exporter entirely
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(context.Background(), "projecthub-api", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
			os.Exit(1)
		}

		defer func() {
			ctx, cancel := config.WithTimeout(5 * time.Second)
			defer cancel()
			_ = shutdownTracer(ctx)
		}()
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	seedCtx, cancelSeed := config.WithTimeout(5 * time.Second)

	if err := db.EnsureAdminUser(seedCtx, pool, cfg); err != nil {
		log.Error("admin seed failed", "err", err)
	}
	cancelSeed()

	// dashboard cache: redis when configured, otherwise in-process
	var store cache.Store

	if cfg.RedisAddr != "" {
		redisStore := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.DashboardCacheTTL())

		defer redisStore.Close()

		pingCtx, cancelPing := config.WithTimeout(2 * time.Second)

		if err := redisStore.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, dashboard cache degrades to misses", "err", err)
		}
		cancelPing()

		store = redisStore
		log.Info("dashboard cache backend", "backend", "redis", "addr", cfg.RedisAddr)
	} else {
		store = cache.NewMemory(cfg.DashboardCacheTTL())
		log.Info("dashboard cache backend", "backend", "memory")
	}

	// set up routers with the log
	router := httpx.NewRouter(log, pool, store, jwtSecret, cfg)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.
	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
