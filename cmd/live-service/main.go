package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/live-service/ws"
	"github.com/radieske/match-bid-platform/internal/shared/cache"
	"github.com/radieske/match-bid-platform/internal/shared/config"
	"github.com/radieske/match-bid-platform/internal/shared/logger"
	"github.com/radieske/match-bid-platform/internal/shared/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	hub := ws.NewHub(ws.AllowOrigins(cfg.CORSOrigins), metrics.NewLiveMetrics(prometheus.DefaultRegisterer), log)
	ws.StartRedisSubscriber(ctx, redisClient, cfg.RedisPubSubChannel, hub, log)

	r := chi.NewRouter()
	r.Use(middleware.RealIP, middleware.Recoverer)
	r.Get("/ws", hub.HandleWS)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("live-service listening", zap.String("addr", srv.Addr), zap.String("channel", cfg.RedisPubSubChannel))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("live server failed", zap.Error(err))
		}
	}()

	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, prometheus.DefaultGatherer, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	// Shutdown não fecha conexões hijacked; o processo encerra em seguida
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("live-service stopped")
}
