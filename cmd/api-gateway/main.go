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

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/api-gateway/proxy"
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

	handler, err := proxy.New(proxy.Options{
		BidServiceURL:  cfg.BidServiceURL,
		LiveServiceURL: cfg.LiveServiceURL,
		CORSOrigins:    cfg.CORSOrigins,
	}, metrics.NewGatewayMetrics(prometheus.DefaultRegisterer), log)
	if err != nil {
		log.Fatal("gateway routes", zap.Error(err))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("api-gateway listening",
			zap.String("addr", srv.Addr),
			zap.String("bid", cfg.BidServiceURL),
			zap.String("live", cfg.LiveServiceURL),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("gateway failed", zap.Error(err))
		}
	}()

	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, prometheus.DefaultGatherer, nil)

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("api-gateway stopped")
}
