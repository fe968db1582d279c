package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/bid-service/fixtures"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo"
	"github.com/radieske/match-bid-platform/internal/shared/config"
	"github.com/radieske/match-bid-platform/internal/shared/db"
	"github.com/radieske/match-bid-platform/internal/shared/logger"
)

// seed aplica as migrações e carrega times e agenda da Copa; pode ser reexecutado
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logger.New("seed", cfg.Env, cfg.LogLevel)
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

	rep, err := fixtures.Seed(ctx, repo.New(sqlDB, loc), fixtures.Teams, fixtures.WorldCup)
	if err != nil {
		log.Fatal("seed", zap.Error(err))
	}
	log.Info("seed done",
		zap.String("db", cfg.DBDriver),
		zap.Int("teams", rep.Teams),
		zap.Int("created", rep.Created),
		zap.Int("existing", rep.Existing),
	)
}
