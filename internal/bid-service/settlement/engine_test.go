package settlement

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo/repotest"
	"github.com/radieske/match-bid-platform/internal/bid-service/stake"
	"github.com/radieske/match-bid-platform/internal/shared/config"
	"github.com/radieske/match-bid-platform/internal/shared/metrics"
	"github.com/radieske/match-bid-platform/pkg/contracts/events"
)

var kickoff = time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)

type mockAuthorizer struct{ mock.Mock }

func (m *mockAuthorizer) IsAdmin(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishMatchSettled(ctx context.Context, ev events.MatchSettled) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type mockInvalidator struct{ mock.Mock }

func (m *mockInvalidator) Invalidate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

type fixture struct {
	store  *repo.Store
	engine *Engine
	auth   *mockAuthorizer
	pub    *mockPublisher
	cache  *mockInvalidator
	x, y   ledger.Team
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{store: repotest.NewStore(t), auth: &mockAuthorizer{}, pub: &mockPublisher{}, cache: &mockInvalidator{}}
	policy, err := stake.NewPolicy(config.StakeConfig{
		AmountLeague: 50, AmountSemi: 100, AmountFinal: 200,
		LimitLeague: 30, LimitSemi: 2, LimitFinal: 1,
	})
	require.NoError(t, err)

	f.engine = NewEngine(f.store, policy, f.auth, f.pub, metrics.NewBidMetrics(prometheus.NewRegistry()), zap.NewNop(),
		WithClock(func() time.Time { return kickoff.Add(3 * time.Hour) }),
		WithInvalidator(f.cache))
	f.x = repotest.AddTeam(t, f.store, "Team X", "TX")
	f.y = repotest.AddTeam(t, f.store, "Team Y", "TY")
	f.auth.On("IsAdmin", mock.Anything, "admin").Return(true, nil)
	f.auth.On("IsAdmin", mock.Anything, mock.Anything).Return(false, nil)
	return f
}

// bid grava um palpite direto no ledger (antes do início da partida)
func (f *fixture) bid(t *testing.T, user ledger.User, m ledger.Match, team *ledger.Team) ledger.Wager {
	t.Helper()
	ctx := context.Background()
	w := ledger.Wager{
		ID: uuid.NewString(), UserID: user.ID, MatchID: m.ID, Status: ledger.StatusPlaced,
		CreatedAt: kickoff.Add(-time.Hour), UpdatedAt: kickoff.Add(-time.Hour),
	}
	if team != nil {
		id := team.ID
		w.SelectedTeamID = &id
	}
	tx, err := f.store.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, tx.InsertWager(ctx, w))
	require.NoError(t, tx.Commit())
	return w
}

func (f *fixture) expectSideEffects() {
	f.pub.On("PublishMatchSettled", mock.Anything, mock.Anything).Return(nil)
	f.cache.On("Invalidate", mock.Anything).Return(nil)
}

func TestConfirmResult_SettlesAndUpdatesStats(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := repotest.AddUser(t, f.store, "a")
	b := repotest.AddUser(t, f.store, "b")
	c := repotest.AddUser(t, f.store, "c")
	missed := repotest.AddUser(t, f.store, "missed")
	m := repotest.AddMatch(t, f.store, f.x, f.y, ledger.CategoryLeague, kickoff)

	f.bid(t, a, m, &f.x)
	f.bid(t, b, m, &f.y)
	f.bid(t, c, m, &f.x)
	f.bid(t, missed, m, nil)

	f.cache.On("Invalidate", mock.Anything).Return(nil).Once()
	f.pub.On("PublishMatchSettled", mock.Anything, mock.MatchedBy(func(ev events.MatchSettled) bool {
		return ev.MatchID == m.ID && ev.Pool == 50 && ev.Share == 25 && ev.Winners == 2 && len(ev.Outcomes) == 3
	})).Return(nil).Once()

	winner := f.x.ID
	res, err := f.engine.ConfirmResult(ctx, "admin", m.ID, &winner)
	require.NoError(t, err)
	assert.Equal(t, int64(50), res.Stake)
	assert.Equal(t, int64(0), res.HouseTake)

	wa, _ := f.store.GetWager(ctx, a.ID, m.ID)
	wb, _ := f.store.GetWager(ctx, b.ID, m.ID)
	wm, _ := f.store.GetWager(ctx, missed.ID, m.ID)
	assert.Equal(t, ledger.StatusWon, wa.Status)
	assert.Equal(t, int64(-25), *wa.Amount)
	assert.Equal(t, ledger.StatusLost, wb.Status)
	assert.Equal(t, int64(-50), *wb.Amount)
	assert.Equal(t, ledger.StatusPlaced, wm.Status)
	assert.Nil(t, wm.Amount)

	ua, _ := f.store.GetUser(ctx, a.ID)
	assert.Equal(t, ledger.Stats{Total: 1, Wins: 1, NetAmount: -25}, ua.Stats)
	ub, _ := f.store.GetUser(ctx, b.ID)
	assert.Equal(t, ledger.Stats{Total: 1, Losses: 1, NetAmount: -50}, ub.Stats)
	um, _ := f.store.GetUser(ctx, missed.ID)
	assert.Equal(t, ledger.Stats{}, um.Stats)

	got, _ := f.store.GetMatch(ctx, m.ID)
	assert.True(t, got.Confirmed)
	assert.Equal(t, ledger.MatchStatusCompleted, got.Status)

	stored, err := f.store.GetResult(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), stored.Pool)
	assert.Equal(t, int64(25), stored.Share)

	f.pub.AssertExpectations(t)
	f.cache.AssertExpectations(t)
}

func TestConfirmResult_SecondConfirmationChangesNothing(t *testing.T) {
	f := newFixture(t)
	f.expectSideEffects()
	ctx := context.Background()
	a := repotest.AddUser(t, f.store, "a")
	b := repotest.AddUser(t, f.store, "b")
	m := repotest.AddMatch(t, f.store, f.x, f.y, ledger.CategorySemi, kickoff)
	f.bid(t, a, m, &f.x)
	f.bid(t, b, m, &f.y)

	winner := f.x.ID
	_, err := f.engine.ConfirmResult(ctx, "admin", m.ID, &winner)
	require.NoError(t, err)

	before, _ := f.store.ListTerminalWagers(ctx)
	statsBefore, _ := f.store.ListUserStats(ctx)

	other := f.y.ID
	_, err = f.engine.ConfirmResult(ctx, "admin", m.ID, &other)
	assert.ErrorIs(t, err, ledger.ErrResultAlreadyConfirmed)
	_, err = f.engine.ConfirmResult(ctx, "admin", m.ID, nil)
	assert.ErrorIs(t, err, ledger.ErrResultAlreadyConfirmed)

	after, _ := f.store.ListTerminalWagers(ctx)
	statsAfter, _ := f.store.ListUserStats(ctx)
	assert.Equal(t, before, after)
	assert.Equal(t, statsBefore, statsAfter)
	f.pub.AssertNumberOfCalls(t, "PublishMatchSettled", 1)
}

func TestConfirmResult_ConcurrentConfirmationsSettleOnce(t *testing.T) {
	f := newFixture(t)
	f.expectSideEffects()
	ctx := context.Background()
	a := repotest.AddUser(t, f.store, "a")
	b := repotest.AddUser(t, f.store, "b")
	m := repotest.AddMatch(t, f.store, f.x, f.y, ledger.CategoryFinal, kickoff)
	f.bid(t, a, m, &f.x)
	f.bid(t, b, m, &f.y)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		rejected  int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			winner := f.x.ID
			_, err := f.engine.ConfirmResult(ctx, "admin", m.ID, &winner)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, ledger.ErrResultAlreadyConfirmed):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 4, rejected)

	ua, _ := f.store.GetUser(ctx, a.ID)
	assert.Equal(t, ledger.Stats{Total: 1, Wins: 1, NetAmount: 0}, ua.Stats)
}

func TestConfirmResult_NoResult(t *testing.T) {
	f := newFixture(t)
	f.expectSideEffects()
	ctx := context.Background()
	a := repotest.AddUser(t, f.store, "a")
	m := repotest.AddMatch(t, f.store, f.x, f.y, ledger.CategoryLeague, kickoff)
	f.bid(t, a, m, &f.y)

	res, err := f.engine.ConfirmResult(ctx, "admin", m.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, res.WinnerTeamID)

	w, _ := f.store.GetWager(ctx, a.ID, m.ID)
	assert.Equal(t, ledger.StatusNoResult, w.Status)
	assert.Equal(t, int64(0), *w.Amount)

	u, _ := f.store.GetUser(ctx, a.ID)
	assert.Equal(t, ledger.Stats{Total: 1}, u.Stats)
}

func TestConfirmResult_RejectionsLeaveLedgerUntouched(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := repotest.AddUser(t, f.store, "a")
	m := repotest.AddMatch(t, f.store, f.x, f.y, ledger.CategoryLeague, kickoff)
	f.bid(t, a, m, &f.x)
	winner := f.x.ID

	_, err := f.engine.ConfirmResult(ctx, "someone", m.ID, &winner)
	assert.ErrorIs(t, err, ledger.ErrForbidden)

	_, err = f.engine.ConfirmResult(ctx, "admin", 404, &winner)
	assert.ErrorIs(t, err, ledger.ErrMatchNotFound)

	bogus := int64(12345)
	_, err = f.engine.ConfirmResult(ctx, "admin", m.ID, &bogus)
	assert.ErrorIs(t, err, ledger.ErrInvalidWinner)

	w, _ := f.store.GetWager(ctx, a.ID, m.ID)
	assert.Equal(t, ledger.StatusPlaced, w.Status)
	got, _ := f.store.GetMatch(ctx, m.ID)
	assert.False(t, got.Confirmed)
	f.pub.AssertNotCalled(t, "PublishMatchSettled", mock.Anything, mock.Anything)
}

func TestConfirmResult_IncrementalStatsMatchFold(t *testing.T) {
	f := newFixture(t)
	f.expectSideEffects()
	ctx := context.Background()
	z := repotest.AddTeam(t, f.store, "Team Z", "TZ")

	users := []ledger.User{
		repotest.AddUser(t, f.store, "u1"), repotest.AddUser(t, f.store, "u2"),
		repotest.AddUser(t, f.store, "u3"), repotest.AddUser(t, f.store, "u4"),
	}
	type plan struct {
		home, away ledger.Team
		cat        ledger.Category
		picks      []*ledger.Team
		winner     *ledger.Team
	}
	plans := []plan{
		{f.x, f.y, ledger.CategoryLeague, []*ledger.Team{&f.x, &f.y, &f.x, nil}, &f.x},
		{f.y, z, ledger.CategorySemi, []*ledger.Team{&z, &z, &f.y, &z}, &f.y},
		{f.x, z, ledger.CategoryFinal, []*ledger.Team{&f.x, &z, nil, &z}, nil},
		{f.y, f.x, ledger.CategoryLeague, []*ledger.Team{&f.y, &f.y, &f.y, &f.x}, &f.x},
	}
	for i, p := range plans {
		m := repotest.AddMatch(t, f.store, p.home, p.away, p.cat, kickoff.Add(time.Duration(i)*time.Hour))
		for j, pick := range p.picks {
			f.bid(t, users[j], m, pick)
		}
		var winner *int64
		if p.winner != nil {
			id := p.winner.ID
			winner = &id
		}
		_, err := f.engine.ConfirmResult(ctx, "admin", m.ID, winner)
		require.NoError(t, err)
	}

	terminal, err := f.store.ListTerminalWagers(ctx)
	require.NoError(t, err)
	folded := ledger.Fold(terminal)

	rows, err := f.store.ListUserStats(ctx)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, folded[r.UserID], r.Stats, "user %s", r.Username)
	}
}
