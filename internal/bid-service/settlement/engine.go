package settlement

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo"
	"github.com/radieske/match-bid-platform/internal/bid-service/stake"
	"github.com/radieske/match-bid-platform/internal/shared/metrics"
	"github.com/radieske/match-bid-platform/pkg/contracts/events"
)

// Authorizer decide se o usuário pode confirmar resultados
type Authorizer interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

type Publisher interface {
	PublishMatchSettled(ctx context.Context, ev events.MatchSettled) error
}

// Invalidator descarta listagens de partidas em cache
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type Engine struct {
	store   *repo.Store
	policy  *stake.Policy
	auth    Authorizer
	pub     Publisher
	cache   Invalidator // opcional
	metrics *metrics.BidMetrics
	log     *zap.Logger
	now     func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithInvalidator(c Invalidator) Option {
	return func(e *Engine) { e.cache = c }
}

func NewEngine(store *repo.Store, policy *stake.Policy, auth Authorizer, pub Publisher, m *metrics.BidMetrics, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{store: store, policy: policy, auth: auth, pub: pub, metrics: m, log: log, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// ConfirmResult liquida a partida. winner nil = sem resultado.
// Marcador, palpites, estatísticas e status da partida vão numa única Tx;
// o insert do marcador é a primeira escrita e falha se outra confirmação passou antes.
func (e *Engine) ConfirmResult(ctx context.Context, actorID string, matchID int64, winner *int64) (Result, error) {
	ok, err := e.auth.IsAdmin(ctx, actorID)
	if err != nil {
		return Result{}, err
	}
	if !ok {
		return Result{}, ledger.ErrForbidden
	}

	m, err := e.store.GetMatch(ctx, matchID)
	if err != nil {
		return Result{}, err
	}
	if m.Confirmed {
		return Result{}, ledger.ErrResultAlreadyConfirmed
	}
	if winner != nil && !m.Has(*winner) {
		return Result{}, ledger.ErrInvalidWinner
	}
	stakeAmt, err := e.policy.StakeFor(m.Category)
	if err != nil {
		e.log.Error("settlement integrity failure", zap.Int64("matchId", matchID), zap.Error(err))
		return Result{}, err
	}

	res, err := e.settle(ctx, m, winner, stakeAmt)
	if err != nil {
		return Result{}, err
	}

	e.afterCommit(ctx, res)
	return res, nil
}

func (e *Engine) settle(ctx context.Context, m ledger.Match, winner *int64, stakeAmt int64) (Result, error) {
	tx, err := e.store.Begin(ctx)
	if err != nil {
		return Result{}, err
	}
	defer tx.Rollback()

	// placements da partida esperam a liquidação terminar e então veem o marcador
	if err := tx.LockMatch(ctx, m.ID); err != nil {
		return Result{}, err
	}

	now := e.now()
	marker := ledger.MatchResult{MatchID: m.ID, WinnerTeamID: winner, Stake: stakeAmt, ConfirmedAt: now}
	if err := tx.InsertResult(ctx, marker); err != nil {
		return Result{}, err
	}

	wagers, err := tx.ListMatchWagersForUpdate(ctx, m.ID)
	if err != nil {
		return Result{}, err
	}

	res, err := Resolve(m, wagers, winner, stakeAmt, now)
	if err != nil {
		return Result{}, err
	}

	for _, w := range res.Resolved {
		if err := tx.ResolveWager(ctx, w); err != nil {
			return Result{}, err
		}
	}

	delta := res.StatsDelta()
	users := make([]string, 0, len(delta))
	for u := range delta {
		users = append(users, u)
	}
	// ordem fixa de locks entre liquidações concorrentes
	sort.Strings(users)
	for _, u := range users {
		if err := tx.ApplyStats(ctx, u, delta[u]); err != nil {
			return Result{}, err
		}
	}

	marker.Pool, marker.Share, marker.HouseTake = res.Pool, res.Share, res.HouseTake
	if err := tx.UpdateResultTotals(ctx, marker); err != nil {
		return Result{}, err
	}
	if err := tx.CompleteMatch(ctx, m.ID, winner); err != nil {
		return Result{}, err
	}

	if err := tx.Commit(); err != nil {
		return Result{}, fmt.Errorf("settle match %d: %w", m.ID, err)
	}
	return res, nil
}

func (e *Engine) afterCommit(ctx context.Context, res Result) {
	outcome := "decisive"
	if res.WinnerTeamID == nil {
		outcome = "no_result"
	}
	if e.metrics != nil {
		e.metrics.Settlements.WithLabelValues(outcome).Inc()
		e.metrics.HouseTake.Add(float64(res.HouseTake))
	}

	if e.cache != nil {
		if err := e.cache.Invalidate(ctx); err != nil {
			e.log.Warn("fixtures cache invalidate failed", zap.Error(err))
		}
	}

	ev := events.MatchSettled{
		MatchID:      res.MatchID,
		WinnerTeamID: res.WinnerTeamID,
		Stake:        res.Stake,
		Pool:         res.Pool,
		Share:        res.Share,
		HouseTake:    res.HouseTake,
		Winners:      res.Winners,
		Losers:       res.Losers,
		Outcomes:     make([]events.WagerOutcome, 0, len(res.Resolved)),
		Ts:           e.now(),
	}
	for _, w := range res.Resolved {
		ev.Outcomes = append(ev.Outcomes, events.WagerOutcome{
			BidID: w.ID, UserID: w.UserID, Status: string(w.Status), Amount: *w.Amount,
		})
	}
	if err := e.pub.PublishMatchSettled(ctx, ev); err != nil {
		e.log.Warn("publish match_settled failed", zap.Int64("matchId", res.MatchID), zap.Error(err))
		if e.metrics != nil {
			e.metrics.PublishErrors.WithLabelValues("match_settled").Inc()
		}
	}

	e.log.Info("match settled",
		zap.Int64("matchId", res.MatchID),
		zap.String("outcome", outcome),
		zap.Int("winners", res.Winners),
		zap.Int("losers", res.Losers),
		zap.Int64("pool", res.Pool),
		zap.Int64("houseTake", res.HouseTake),
	)
}
