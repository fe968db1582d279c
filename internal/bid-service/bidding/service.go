package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo"
	"github.com/radieske/match-bid-platform/internal/bid-service/stake"
	"github.com/radieske/match-bid-platform/internal/shared/metrics"
	"github.com/radieske/match-bid-platform/pkg/contracts/events"
)

// Publisher recebe o evento depois do commit; falha de publish não desfaz o palpite
type Publisher interface {
	PublishBidPlaced(ctx context.Context, ev events.BidPlaced) error
}

type Service struct {
	store   *repo.Store
	policy  *stake.Policy
	pub     Publisher
	metrics *metrics.BidMetrics
	log     *zap.Logger
	now     func() time.Time
}

type Option func(*Service)

// WithClock troca o relógio (testes)
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store *repo.Store, policy *stake.Policy, pub Publisher, m *metrics.BidMetrics, log *zap.Logger, opts ...Option) *Service {
	s := &Service{store: store, policy: policy, pub: pub, metrics: m, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Placement é o resultado de PlaceWager
type Placement struct {
	Wager   ledger.Wager
	Match   ledger.Match
	Updated bool // palpite existente teve o time trocado
}

// PlaceWager cria ou altera o palpite do usuário na partida.
// Tudo roda numa Tx que trava o usuário, então checagem de limite e escrita
// não intercalam com outro palpite do mesmo usuário.
func (s *Service) PlaceWager(ctx context.Context, userID string, matchID, teamID int64) (Placement, error) {
	p, err := s.placeWager(ctx, userID, matchID, teamID)
	if err != nil {
		s.reject(err, userID, matchID)
		return Placement{}, err
	}

	kind := "create"
	if p.Updated {
		kind = "update"
	}
	if s.metrics != nil {
		s.metrics.BidsPlaced.WithLabelValues(string(p.Match.Category), kind).Inc()
	}

	ev := events.BidPlaced{
		BidID:          p.Wager.ID,
		UserID:         userID,
		MatchID:        matchID,
		SelectedTeamID: teamID,
		Category:       string(p.Match.Category),
		Updated:        p.Updated,
		TsUnixMs:       p.Wager.UpdatedAt.UnixMilli(),
	}
	if err := s.pub.PublishBidPlaced(ctx, ev); err != nil {
		s.log.Warn("publish bid_placed failed", zap.String("bidId", p.Wager.ID), zap.Error(err))
		if s.metrics != nil {
			s.metrics.PublishErrors.WithLabelValues("bid_placed").Inc()
		}
	}

	s.log.Info("bid placed",
		zap.String("bidId", p.Wager.ID),
		zap.String("userId", userID),
		zap.Int64("matchId", matchID),
		zap.Int64("teamId", teamID),
		zap.Bool("updated", p.Updated),
	)
	return p, nil
}

func (s *Service) placeWager(ctx context.Context, userID string, matchID, teamID int64) (Placement, error) {
	tx, err := s.store.Begin(ctx)
	if err != nil {
		return Placement{}, err
	}
	defer tx.Rollback()

	// partida antes do usuário: mesma ordem da liquidação
	if err := tx.LockMatch(ctx, matchID); err != nil {
		return Placement{}, err
	}
	if err := tx.LockUser(ctx, userID); err != nil {
		return Placement{}, err
	}

	m, err := tx.GetMatch(ctx, matchID)
	if err != nil {
		return Placement{}, err
	}

	// relógio lido dentro da Tx: o lock vale para o instante da escrita
	now := s.now()
	if m.Confirmed || m.LockedAt(now) {
		return Placement{}, ledger.ErrMatchLocked
	}
	if !m.Has(teamID) {
		return Placement{}, ledger.ErrInvalidSelection
	}

	p := Placement{Match: m}

	existing, err := tx.GetWagerForUpdate(ctx, userID, matchID)
	switch {
	case err == nil:
		// trocar o palpite não consome vaga nova
		if err := tx.UpdateWagerSelection(ctx, existing.ID, teamID, now); err != nil {
			return Placement{}, err
		}
		existing.SelectedTeamID = &teamID
		existing.Status = ledger.StatusPlaced
		existing.Amount = nil
		existing.UpdatedAt = now
		p.Wager, p.Updated = existing, true

	case errors.Is(err, ledger.ErrWagerNotFound):
		limit, err := s.policy.LimitFor(m.Category)
		if err != nil {
			return Placement{}, err
		}
		used, err := tx.CountCategoryWagers(ctx, userID, m.Category)
		if err != nil {
			return Placement{}, err
		}
		if used >= limit {
			return Placement{}, fmt.Errorf("%w: %d of %d %s bids used", ledger.ErrBidLimitExceeded, used, limit, m.Category)
		}

		w := ledger.Wager{
			ID:             uuid.NewString(),
			UserID:         userID,
			MatchID:        matchID,
			SelectedTeamID: &teamID,
			Status:         ledger.StatusPlaced,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.InsertWager(ctx, w); err != nil {
			return Placement{}, err
		}
		p.Wager = w

	default:
		return Placement{}, err
	}

	if err := tx.Commit(); err != nil {
		return Placement{}, err
	}
	return p, nil
}

func (s *Service) reject(err error, userID string, matchID int64) {
	reason := rejectReason(err)
	if s.metrics != nil {
		s.metrics.BidsRejected.WithLabelValues(reason).Inc()
	}
	fields := []zap.Field{zap.String("userId", userID), zap.Int64("matchId", matchID), zap.String("reason", reason), zap.Error(err)}
	if reason == "internal" {
		s.log.Error("place bid failed", fields...)
		return
	}
	s.log.Debug("bid rejected", fields...)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrMatchNotFound):
		return "match_not_found"
	case errors.Is(err, ledger.ErrMatchLocked):
		return "match_locked"
	case errors.Is(err, ledger.ErrInvalidSelection):
		return "invalid_selection"
	case errors.Is(err, ledger.ErrBidLimitExceeded):
		return "limit_exceeded"
	case errors.Is(err, ledger.ErrUserNotFound):
		return "user_not_found"
	default:
		return "internal"
	}
}
