package fixtures

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/bid-service/cache"
	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo/repotest"
	"github.com/radieske/match-bid-platform/internal/bid-service/stake"
	"github.com/radieske/match-bid-platform/internal/shared/config"
)

type mockAuthorizer struct{ mock.Mock }

func (m *mockAuthorizer) IsAdmin(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func newService(t *testing.T, now time.Time) (*Service, *repo.Store, *mockAuthorizer) {
	t.Helper()
	store := repotest.NewStore(t)
	policy, err := stake.NewPolicy(config.StakeConfig{
		AmountLeague: 50, AmountSemi: 100, AmountFinal: 200,
		LimitLeague: 30, LimitSemi: 2, LimitFinal: 1,
	})
	require.NoError(t, err)
	auth := &mockAuthorizer{}
	auth.On("IsAdmin", mock.Anything, "admin").Return(true, nil).Maybe()
	auth.On("IsAdmin", mock.Anything, "guest").Return(false, nil).Maybe()
	svc := NewService(store, policy, auth, cache.NewLocalMatches(16, time.Minute), zap.NewNop(),
		WithClock(func() time.Time { return now }))
	return svc, store, auth
}

func TestSeed_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t, time.Now())

	first, err := Seed(ctx, store, Teams, WorldCup)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Teams: 20, Created: len(WorldCup)}, first)

	second, err := Seed(ctx, store, Teams, WorldCup)
	require.NoError(t, err)
	assert.Equal(t, SeedReport{Teams: 20, Existing: len(WorldCup)}, second)

	teams, err := svc.Teams(ctx)
	require.NoError(t, err)
	assert.Len(t, teams, 20)

	ms, err := svc.List(ctx, ledger.DefaultSeries, "")
	require.NoError(t, err)
	require.Len(t, ms, len(WorldCup))
	for i := 1; i < len(ms); i++ {
		assert.False(t, ms[i].StartsAt.Before(ms[i-1].StartsAt), "listing ordered by date then time")
	}
	assert.Equal(t, "PAK", ms[0].Team1.ShortName)
	assert.Equal(t, "NED", ms[0].Team2.ShortName)
}

func TestSeed_UnknownTeam(t *testing.T) {
	_, store, _ := newService(t, time.Now())
	_, err := Seed(context.Background(), store, Teams[:2], WorldCup)
	assert.ErrorIs(t, err, ledger.ErrTeamNotFound)
}

func TestToday(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t, time.Date(2026, 2, 15, 10, 0, 0, 0, time.UTC))
	_, err := Seed(ctx, store, Teams, WorldCup)
	require.NoError(t, err)

	ms, err := svc.Today(ctx)
	require.NoError(t, err)
	require.Len(t, ms, 3)
	assert.Equal(t, []string{"11:00", "15:00", "19:00"}, []string{ms[0].Time, ms[1].Time, ms[2].Time})
}

func TestList_CachedUntilInvalidated(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t, time.Now())
	ind := repotest.AddTeam(t, store, "India", "IND")
	aus := repotest.AddTeam(t, store, "Australia", "AUS")
	repotest.AddMatch(t, store, ind, aus, ledger.CategoryLeague, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	ms, err := svc.List(ctx, "", "")
	require.NoError(t, err)
	require.Len(t, ms, 1)

	// escrita direta no banco não passa pelo serviço
	repotest.AddMatch(t, store, aus, ind, ledger.CategorySemi, time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC))
	ms, err = svc.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, ms, 1)

	require.NoError(t, svc.Invalidate(ctx))
	ms, err = svc.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, ms, 2)

	semis, err := svc.List(ctx, "", ledger.CategorySemi)
	require.NoError(t, err)
	require.Len(t, semis, 1)
	assert.Equal(t, ledger.CategorySemi, semis[0].Category)
}

func TestCreateMatch(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newService(t, time.Now())
	ind := repotest.AddTeam(t, store, "India", "IND")
	aus := repotest.AddTeam(t, store, "Australia", "AUS")

	valid := repo.NewMatch{Team1ID: ind.ID, Team2ID: aus.ID, Date: "2026-03-08", Time: "19:00", Venue: "Ahmedabad", Category: ledger.CategoryFinal}

	// listagem em cache antes da criação
	before, err := svc.List(ctx, "", "")
	require.NoError(t, err)
	assert.Empty(t, before)

	m, err := svc.CreateMatch(ctx, "admin", valid)
	require.NoError(t, err)
	assert.Equal(t, ledger.CategoryFinal, m.Category)
	assert.Equal(t, ledger.DefaultSeries, m.Series)
	assert.Equal(t, ledger.MatchStatusUpcoming, m.Status)
	assert.Equal(t, time.Date(2026, 3, 8, 19, 0, 0, 0, time.UTC), m.StartsAt.UTC())

	after, err := svc.List(ctx, "", "")
	require.NoError(t, err)
	assert.Len(t, after, 1, "creation invalidates cached listings")

	_, err = svc.CreateMatch(ctx, "admin", valid)
	assert.ErrorIs(t, err, ledger.ErrMatchExists)

	cases := map[string]struct {
		actor string
		edit  func(*repo.NewMatch)
		want  error
	}{
		"not admin":    {"guest", func(*repo.NewMatch) {}, ledger.ErrForbidden},
		"same team":    {"admin", func(n *repo.NewMatch) { n.Team2ID = n.Team1ID }, ErrInvalidFixture},
		"bad category": {"admin", func(n *repo.NewMatch) { n.Category = "quarter" }, ErrInvalidFixture},
		"bad date":     {"admin", func(n *repo.NewMatch) { n.Date = "2026-13-01" }, ErrInvalidFixture},
		"bad time":     {"admin", func(n *repo.NewMatch) { n.Time = "25:00" }, ErrInvalidFixture},
		"unknown team": {"admin", func(n *repo.NewMatch) { n.Team2ID = 999 }, ledger.ErrTeamNotFound},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			nm := valid
			nm.Date = "2026-03-09"
			tc.edit(&nm)
			_, err := svc.CreateMatch(ctx, tc.actor, nm)
			assert.ErrorIs(t, err, tc.want)
			assert.False(t, ledger.IsIntegrity(err))
		})
	}
}
