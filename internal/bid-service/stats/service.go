package stats

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo"
	"github.com/radieske/match-bid-platform/internal/shared/metrics"
)

// Service expõe o cache de estatísticas por usuário.
// O incremento acontece na liquidação; aqui ficam leitura e reconstrução.
type Service struct {
	store   *repo.Store
	metrics *metrics.BidMetrics
	log     *zap.Logger
}

func NewService(store *repo.Store, m *metrics.BidMetrics, log *zap.Logger) *Service {
	return &Service{store: store, metrics: m, log: log}
}

func (s *Service) GetUserStats(ctx context.Context, userID string) (ledger.Stats, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return ledger.Stats{}, err
	}
	return u.Stats, nil
}

// RebuildReport resume a reconstrução
type RebuildReport struct {
	Users    int           `json:"users"`  // usuários com ao menos um palpite liquidado
	Wagers   int           `json:"wagers"` // palpites terminais lidos
	Duration time.Duration `json:"-"`
}

// RebuildAll recalcula as estatísticas de todos os usuários a partir do ledger
// numa única Tx. Idempotente: rodar de novo produz o mesmo estado.
func (s *Service) RebuildAll(ctx context.Context) (RebuildReport, error) {
	start := time.Now()

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return RebuildReport{}, err
	}
	defer tx.Rollback()

	// com os usuários travados, nenhuma liquidação aplica incremento entre a leitura e o replace
	if err := tx.LockAllUsers(ctx); err != nil {
		return RebuildReport{}, err
	}
	wagers, err := tx.ListTerminalWagers(ctx)
	if err != nil {
		return RebuildReport{}, err
	}
	folded := ledger.Fold(wagers)
	if err := tx.ReplaceAllStats(ctx, folded); err != nil {
		return RebuildReport{}, err
	}
	if err := tx.Commit(); err != nil {
		return RebuildReport{}, err
	}

	rep := RebuildReport{Users: len(folded), Wagers: len(wagers), Duration: time.Since(start)}
	if s.metrics != nil {
		s.metrics.StatsRebuilds.Inc()
	}
	s.log.Info("user stats rebuilt",
		zap.Int("users", rep.Users),
		zap.Int("wagers", rep.Wagers),
		zap.Duration("took", rep.Duration),
	)
	return rep, nil
}
