package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/settlement-notifier/consumer"
	"github.com/radieske/match-bid-platform/internal/settlement-notifier/pubsub"
	"github.com/radieske/match-bid-platform/internal/shared/cache"
	"github.com/radieske/match-bid-platform/internal/shared/config"
	"github.com/radieske/match-bid-platform/internal/shared/kafka"
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

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(kafka.Brokers(cfg.KafkaBrokers)) == 0 {
		log.Fatal("KAFKA_BROKERS is required")
	}

	redisClient, err := cache.ConnectRedis(ctx, cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consumer group único para os dois tópicos; commit manual após o repasse
	reader := kafka.NewGroupReader(cfg.KafkaBrokers, cfg.NotifierConsumerGroup, cfg.TopicBidPlaced, cfg.TopicMatchSettled)
	defer reader.Close()

	var dlq kafka.MessageWriter
	if cfg.TopicMatchSettledDLQ != "" {
		w := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchSettledDLQ)
		defer w.Close()
		dlq = w
	}

	proc := &consumer.Processor{
		Log:               log,
		Reader:            reader,
		Broadcaster:       pubsub.NewRedisBroadcaster(redisClient, cfg.RedisPubSubChannel),
		DLQ:               dlq,
		Metrics:           metrics.NewNotifierMetrics(prometheus.DefaultRegisterer),
		TopicBidPlaced:    cfg.TopicBidPlaced,
		TopicMatchSettled: cfg.TopicMatchSettled,
	}

	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, prometheus.DefaultGatherer, func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})

	log.Info("settlement-notifier started",
		zap.Strings("consume", []string{cfg.TopicBidPlaced, cfg.TopicMatchSettled}),
		zap.String("publish", cfg.RedisPubSubChannel),
		zap.String("dlq", cfg.TopicMatchSettledDLQ),
	)
	if err := proc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("processor stopped with error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsSrv.Shutdown(shutdownCtx)
	log.Info("settlement-notifier stopped")
}
