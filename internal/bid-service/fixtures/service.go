package fixtures

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo"
	"github.com/radieske/match-bid-platform/internal/bid-service/stake"
)

// ErrInvalidFixture: dados de agendamento enviados pelo admin não fecham
var ErrInvalidFixture = errors.New("invalid fixture")

// Cache de listagens de partidas (Redis ou LRU local)
type Cache interface {
	GetMatches(ctx context.Context, key string) ([]ledger.Match, bool, error)
	SetMatches(ctx context.Context, key string, ms []ledger.Match) error
	Invalidate(ctx context.Context) error
}

type Authorizer interface {
	IsAdmin(ctx context.Context, userID string) (bool, error)
}

type Service struct {
	store  *repo.Store
	policy *stake.Policy
	auth   Authorizer
	cache  Cache
	log    *zap.Logger
	now    func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store *repo.Store, policy *stake.Policy, auth Authorizer, cache Cache, log *zap.Logger, opts ...Option) *Service {
	s := &Service{store: store, policy: policy, auth: auth, cache: cache, log: log, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// List devolve as partidas em ordem de data e hora, passando pelo cache
func (s *Service) List(ctx context.Context, series string, cat ledger.Category) ([]ledger.Match, error) {
	return s.cached(ctx, repo.MatchFilter{Series: series, Category: cat})
}

// Today usa a data corrente no fuso das partidas
func (s *Service) Today(ctx context.Context) ([]ledger.Match, error) {
	today := s.now().In(s.store.Location()).Format(ledger.DateLayout)
	return s.cached(ctx, repo.MatchFilter{Date: today})
}

func (s *Service) Get(ctx context.Context, id int64) (ledger.Match, error) {
	return s.store.GetMatch(ctx, id)
}

func (s *Service) Teams(ctx context.Context) ([]ledger.Team, error) {
	return s.store.ListTeams(ctx)
}

// Invalidate descarta todas as listagens (criação de partida e liquidação)
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Invalidate(ctx)
}

func cacheKey(f repo.MatchFilter) string {
	return fmt.Sprintf("series=%s&category=%s&date=%s", f.Series, f.Category, f.Date)
}

// cached: falha do cache só gera log, a leitura cai no banco
func (s *Service) cached(ctx context.Context, f repo.MatchFilter) ([]ledger.Match, error) {
	key := cacheKey(f)
	if ms, ok, err := s.cache.GetMatches(ctx, key); err != nil {
		s.log.Warn("fixtures cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		return ms, nil
	}

	ms, err := s.store.ListMatches(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetMatches(ctx, key, ms); err != nil {
		s.log.Warn("fixtures cache write failed", zap.String("key", key), zap.Error(err))
	}
	return ms, nil
}

// CreateMatch agenda uma partida nova (somente admin)
func (s *Service) CreateMatch(ctx context.Context, actorID string, nm repo.NewMatch) (ledger.Match, error) {
	ok, err := s.auth.IsAdmin(ctx, actorID)
	if err != nil {
		return ledger.Match{}, err
	}
	if !ok {
		return ledger.Match{}, ledger.ErrForbidden
	}

	if nm.Team1ID == nm.Team2ID {
		return ledger.Match{}, fmt.Errorf("%w: a team cannot play itself", ErrInvalidFixture)
	}
	if !s.policy.Known(nm.Category) {
		return ledger.Match{}, fmt.Errorf("%w: unknown category %q", ErrInvalidFixture, nm.Category)
	}
	// erro de parse aqui é entrada inválida, não integridade
	if _, err := ledger.ParseStart(nm.Date, nm.Time, s.store.Location()); err != nil {
		return ledger.Match{}, fmt.Errorf("%w: date %q time %q", ErrInvalidFixture, nm.Date, nm.Time)
	}
	for _, id := range []int64{nm.Team1ID, nm.Team2ID} {
		if _, err := s.store.GetTeam(ctx, id); err != nil {
			return ledger.Match{}, err
		}
	}

	id, err := s.store.CreateMatch(ctx, nm)
	if err != nil {
		return ledger.Match{}, err
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn("fixtures cache invalidate failed", zap.Error(err))
	}

	m, err := s.store.GetMatch(ctx, id)
	if err != nil {
		return ledger.Match{}, err
	}
	s.log.Info("match scheduled",
		zap.Int64("matchId", m.ID),
		zap.String("category", string(m.Category)),
		zap.String("date", m.Date),
		zap.String("time", m.Time),
		zap.String("actor", actorID),
	)
	return m, nil
}
