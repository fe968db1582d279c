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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/bid-service/auth"
	"github.com/radieske/match-bid-platform/internal/bid-service/bidding"
	bidcache "github.com/radieske/match-bid-platform/internal/bid-service/cache"
	"github.com/radieske/match-bid-platform/internal/bid-service/fixtures"
	httpapi "github.com/radieske/match-bid-platform/internal/bid-service/http"
	"github.com/radieske/match-bid-platform/internal/bid-service/leaderboard"
	"github.com/radieske/match-bid-platform/internal/bid-service/producer"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo"
	"github.com/radieske/match-bid-platform/internal/bid-service/settlement"
	"github.com/radieske/match-bid-platform/internal/bid-service/stake"
	"github.com/radieske/match-bid-platform/internal/bid-service/stats"
	"github.com/radieske/match-bid-platform/internal/shared/cache"
	"github.com/radieske/match-bid-platform/internal/shared/config"
	"github.com/radieske/match-bid-platform/internal/shared/db"
	"github.com/radieske/match-bid-platform/internal/shared/kafka"
	"github.com/radieske/match-bid-platform/internal/shared/logger"
	"github.com/radieske/match-bid-platform/internal/shared/metrics"
)

// TTL das listagens de partidas; a invalidação explícita cobre criação e liquidação
const matchCacheTTL = 30 * time.Second

type publisher interface {
	bidding.Publisher
	settlement.Publisher
}

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

	loc, err := time.LoadLocation(cfg.MatchTimezone)
	if err != nil {
		log.Fatal("match timezone", zap.String("tz", cfg.MatchTimezone), zap.Error(err))
	}
	if cfg.Env != "local" && cfg.JWTSecret == "change-me-in-production" {
		log.Warn("JWT_SECRET is using the default value")
	}

	// Banco (Postgres ou SQLite) + migrações
	sqlDB, err := db.Open(cfg.DBDriver, cfg.PostgresDSN, cfg.SQLitePath, db.Pool{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
	})
	if err != nil {
		log.Fatal("db connect", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer sqlDB.Close()
	if err := db.Migrate(ctx, sqlDB); err != nil {
		log.Fatal("db migrate", zap.Error(err))
	}
	store := repo.New(sqlDB, loc)

	policy, err := stake.NewPolicy(cfg.Stakes)
	if err != nil {
		log.Fatal("stake policy", zap.Error(err))
	}

	// Redis é opcional: sem ele o cache de partidas fica em memória
	var (
		rdb        *redis.Client
		matchCache fixtures.Cache
	)
	if cfg.RedisAddr != "" {
		if rdb, err = cache.ConnectRedis(ctx, cfg.RedisAddr); err != nil {
			log.Warn("redis unavailable, using in-process match cache", zap.Error(err))
			rdb = nil
		}
	}
	if rdb != nil {
		defer rdb.Close()
		matchCache = bidcache.NewRedisMatches(rdb, matchCacheTTL)
	} else {
		matchCache = bidcache.NewLocalMatches(256, matchCacheTTL)
	}

	// Kafka writers (bid_placed, match_settled)
	var pub publisher = producer.Nop{}
	if len(kafka.Brokers(cfg.KafkaBrokers)) > 0 {
		bidWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBidPlaced)
		defer bidWriter.Close()
		settledWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchSettled)
		defer settledWriter.Close()
		pub = producer.NewKafkaPublisher(bidWriter, settledWriter)
	} else {
		log.Warn("KAFKA_BROKERS empty, events are not published")
	}

	bm := metrics.NewBidMetrics(prometheus.DefaultRegisterer)

	authSvc := auth.NewService(store, cfg.JWTSecret, cfg.TokenTTL, cfg.AdminUsernames, log)
	if err := authSvc.SyncAdmins(ctx); err != nil {
		log.Fatal("admin sync", zap.Error(err))
	}

	if cfg.SeedFixtures {
		rep, err := fixtures.Seed(ctx, store, fixtures.Teams, fixtures.WorldCup)
		if err != nil {
			log.Fatal("seed fixtures", zap.Error(err))
		}
		log.Info("fixtures seeded", zap.Int("teams", rep.Teams), zap.Int("created", rep.Created), zap.Int("existing", rep.Existing))
	}

	fx := fixtures.NewService(store, policy, authSvc, matchCache, log)
	api := httpapi.NewServer(log, httpapi.Deps{
		Auth:        authSvc,
		Bids:        bidding.NewService(store, policy, pub, bm, log),
		Settlement:  settlement.NewEngine(store, policy, authSvc, pub, bm, log, settlement.WithInvalidator(fx)),
		Stats:       stats.NewService(store, bm, log),
		Leaderboard: leaderboard.NewService(store),
		Fixtures:    fx,
	})

	apiSrv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           api.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	metricsSrv := metrics.StartMetricsServer(log, cfg.MetricsPort, prometheus.DefaultGatherer, func(ctx context.Context) error {
		if err := store.Ping(ctx); err != nil {
			return fmt.Errorf("db: %w", err)
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("redis: %w", err)
			}
		}
		return nil
	})

	go func() {
		log.Info("bid-service listening", zap.String("addr", apiSrv.Addr), zap.String("db", cfg.DBDriver))
		if err := apiSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("api", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)
}
