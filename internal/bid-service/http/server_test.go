package httpapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/match-bid-platform/internal/bid-service/auth"
	"github.com/radieske/match-bid-platform/internal/bid-service/bidding"
	"github.com/radieske/match-bid-platform/internal/bid-service/cache"
	"github.com/radieske/match-bid-platform/internal/bid-service/dto"
	"github.com/radieske/match-bid-platform/internal/bid-service/fixtures"
	"github.com/radieske/match-bid-platform/internal/bid-service/leaderboard"
	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
	"github.com/radieske/match-bid-platform/internal/bid-service/producer"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo/repotest"
	"github.com/radieske/match-bid-platform/internal/bid-service/settlement"
	"github.com/radieske/match-bid-platform/internal/bid-service/stake"
	"github.com/radieske/match-bid-platform/internal/bid-service/stats"
	"github.com/radieske/match-bid-platform/internal/shared/config"
	"github.com/radieske/match-bid-platform/internal/shared/metrics"
)

var kickoff = time.Date(2026, 2, 10, 14, 0, 0, 0, time.UTC)

type testEnv struct {
	t       *testing.T
	handler http.Handler
	store   *repo.Store
	now     time.Time
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	e := &testEnv{t: t, store: repotest.NewStore(t), now: kickoff.Add(-2 * time.Hour)}
	clock := func() time.Time { return e.now }
	log := zap.NewNop()

	policy, err := stake.NewPolicy(config.StakeConfig{
		AmountLeague: 50, AmountSemi: 100, AmountFinal: 200,
		LimitLeague: 30, LimitSemi: 2, LimitFinal: 1,
	})
	require.NoError(t, err)
	bm := metrics.NewBidMetrics(prometheus.NewRegistry())

	authSvc := auth.NewService(e.store, "test-secret", 24*time.Hour, []string{"admin"}, log, auth.WithClock(clock))
	fx := fixtures.NewService(e.store, policy, authSvc, cache.NewLocalMatches(16, time.Minute), log, fixtures.WithClock(clock))

	e.handler = NewServer(log, Deps{
		Auth:        authSvc,
		Bids:        bidding.NewService(e.store, policy, producer.Nop{}, bm, log, bidding.WithClock(clock)),
		Settlement:  settlement.NewEngine(e.store, policy, authSvc, producer.Nop{}, bm, log, settlement.WithClock(clock), settlement.WithInvalidator(fx)),
		Stats:       stats.NewService(e.store, bm, log),
		Leaderboard: leaderboard.NewService(e.store),
		Fixtures:    fx,
	}, WithClock(clock)).Router()
	return e
}

func (e *testEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(username string) dto.TokenResponse {
	e.t.Helper()
	rec := e.do(http.MethodPost, "/auth/register", "", dto.RegisterRequest{Username: username, Password: "secret1"})
	require.Equal(e.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.TokenResponse](e.t, rec)
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAuthEndpoints(t *testing.T) {
	e := newEnv(t)

	tok := e.register("alice")
	assert.Equal(t, "bearer", tok.TokenType)
	assert.Equal(t, "alice", tok.User.Username)
	assert.False(t, tok.User.IsAdmin)

	rec := e.do(http.MethodPost, "/auth/register", "", dto.RegisterRequest{Username: "ALICE", Password: "secret1"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(http.MethodPost, "/auth/register", "", dto.RegisterRequest{Username: "al", Password: "123"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	verr := decode[dto.ErrorResponse](t, rec)
	assert.Contains(t, verr.Fields, "username")
	assert.Contains(t, verr.Fields, "password")

	rec = e.do(http.MethodPost, "/auth/login", "", dto.LoginRequest{Username: "alice", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(http.MethodPost, "/auth/login", "", dto.LoginRequest{Username: "Alice", Password: "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[dto.TokenResponse](t, rec)

	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/users/me", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, e.do(http.MethodGet, "/users/me", "garbage", nil).Code)

	rec = e.do(http.MethodGet, "/users/me", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tok.User.ID, decode[dto.UserResponse](t, rec).ID)

	rec = e.do(http.MethodGet, "/users/me/bid-usage", login.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	usage := decode[[]bidding.Usage](t, rec)
	require.Len(t, usage, 3)
	assert.Equal(t, bidding.Usage{Category: ledger.CategoryLeague, Used: 0, Remaining: 30, Limit: 30}, usage[0])
}

func TestAdminRoutesRequireRole(t *testing.T) {
	e := newEnv(t)
	user := e.register("bob")

	for _, path := range []string{"/matches", "/admin/matches/1/result", "/admin/stats/rebuild"} {
		rec := e.do(http.MethodPost, path, user.AccessToken, map[string]any{})
		assert.Equal(t, http.StatusForbidden, rec.Code, path)
	}
}

func TestMatchAndBidLifecycle(t *testing.T) {
	e := newEnv(t)
	ind := repotest.AddTeam(t, e.store, "India", "IND")
	aus := repotest.AddTeam(t, e.store, "Australia", "AUS")

	admin := e.register("admin")
	require.True(t, admin.User.IsAdmin)
	alice, bob, carol := e.register("alice"), e.register("bob"), e.register("carol")

	// agenda a partida
	rec := e.do(http.MethodPost, "/matches", admin.AccessToken, dto.CreateMatchRequest{
		Team1ID: ind.ID, Team2ID: aus.ID, MatchDate: "2026-02-10", MatchTime: "14:00", MatchType: "league", Venue: "Mumbai",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	m := decode[dto.MatchResponse](t, rec)
	assert.False(t, m.IsLocked)
	require.NotNil(t, m.SecondsUntilStart)
	assert.Equal(t, int64(7200), *m.SecondsUntilStart)

	rec = e.do(http.MethodPost, "/matches", admin.AccessToken, dto.CreateMatchRequest{
		Team1ID: ind.ID, Team2ID: ind.ID, MatchDate: "2026-02-10", MatchTime: "14:00", MatchType: "quarter",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	verr := decode[dto.ErrorResponse](t, rec)
	assert.Contains(t, verr.Fields, "team2_id")
	assert.Contains(t, verr.Fields, "match_type")

	rec = e.do(http.MethodGet, "/matches?category=league", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]dto.MatchResponse](t, rec), 1)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/matches?category=quarter", alice.AccessToken, nil).Code)

	rec = e.do(http.MethodGet, "/matches/today", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]dto.MatchResponse](t, rec), 1)

	// palpites
	place := func(tok string, team int64) *httptest.ResponseRecorder {
		return e.do(http.MethodPost, "/bids", tok, dto.PlaceBidRequest{MatchID: m.ID, SelectedTeamID: team})
	}
	require.Equal(t, http.StatusCreated, place(alice.AccessToken, aus.ID).Code)
	rec = place(alice.AccessToken, ind.ID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[dto.PlaceBidResponse](t, rec).Updated)
	require.Equal(t, http.StatusCreated, place(carol.AccessToken, ind.ID).Code)
	require.Equal(t, http.StatusCreated, place(bob.AccessToken, aus.ID).Code)
	assert.Equal(t, http.StatusBadRequest, place(bob.AccessToken, 999).Code)

	rec = e.do(http.MethodGet, fmt.Sprintf("/bids/for-match/%d", m.ID), alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bid := decode[dto.BidResponse](t, rec)
	require.NotNil(t, bid.SelectedTeamID)
	assert.Equal(t, ind.ID, *bid.SelectedTeamID)
	assert.Equal(t, ledger.StatusPlaced, bid.BidStatus)

	rec = e.do(http.MethodGet, fmt.Sprintf("/bids/for-match/%d", m.ID), admin.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// escolhas ficam ocultas até o início
	breakdownPath := fmt.Sprintf("/matches/%d/bids", m.ID)
	assert.Equal(t, http.StatusForbidden, e.do(http.MethodGet, breakdownPath, alice.AccessToken, nil).Code)

	e.now = kickoff
	assert.Equal(t, http.StatusBadRequest, place(bob.AccessToken, ind.ID).Code, "bidding closes at kickoff")

	rec = e.do(http.MethodGet, breakdownPath, alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bd := decode[dto.BreakdownResponse](t, rec)
	assert.Len(t, bd.Team1.Bidders, 2)
	assert.Len(t, bd.Team2.Bidders, 1)
	assert.True(t, bd.Match.IsLocked)

	// liquidação: 2 vencedores, 1 perdedor, stake 50
	resultPath := fmt.Sprintf("/admin/matches/%d/result", m.ID)
	rec = e.do(http.MethodPost, resultPath, admin.AccessToken, dto.ConfirmResultRequest{WinnerTeamID: &ind.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, dto.SettlementResponse{
		MatchID: m.ID, WinnerTeamID: &ind.ID, Stake: 50, Pool: 50, Share: 25, HouseTake: 0, Winners: 2, Losers: 1,
	}, decode[dto.SettlementResponse](t, rec))

	rec = e.do(http.MethodPost, resultPath, admin.AccessToken, dto.ConfirmResultRequest{WinnerTeamID: &ind.ID})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = e.do(http.MethodGet, fmt.Sprintf("/matches/%d", m.ID), alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[dto.MatchResponse](t, rec)
	assert.Equal(t, ledger.MatchStatusCompleted, got.Status)
	require.NotNil(t, got.WinnerTeamID)
	assert.Equal(t, ind.ID, *got.WinnerTeamID)

	// listagem em cache foi invalidada pela liquidação
	rec = e.do(http.MethodGet, "/matches?category=league", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ledger.MatchStatusCompleted, decode[[]dto.MatchResponse](t, rec)[0].Status)

	rec = e.do(http.MethodGet, "/users/me/stats", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ledger.Stats{Total: 1, Wins: 1, NetAmount: -25}, decode[ledger.Stats](t, rec))

	rec = e.do(http.MethodGet, "/users/me/dashboard", bob.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, bidding.Dashboard{TotalBids: 1, Losses: 1}, decode[bidding.Dashboard](t, rec))

	rec = e.do(http.MethodGet, "/bids/my", carol.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]dto.MyBidResponse](t, rec)
	require.Len(t, mine, 1)
	assert.Equal(t, ledger.StatusWon, mine[0].BidStatus)
	require.NotNil(t, mine[0].Amount)
	assert.Equal(t, int64(-25), *mine[0].Amount)
	assert.Equal(t, m.ID, mine[0].Match.ID)

	rec = e.do(http.MethodGet, "/leaderboard", bob.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	board := decode[[]leaderboard.Entry](t, rec)
	require.Len(t, board, 4)
	assert.Equal(t, "admin", board[0].Username)
	assert.Equal(t, 1, board[0].Rank)
	assert.Equal(t, 2, board[1].Rank)
	assert.Equal(t, 2, board[2].Rank)
	assert.Equal(t, "bob", board[3].Username)
	assert.Equal(t, 3, board[3].Rank)

	rec = e.do(http.MethodPost, "/admin/stats/rebuild", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rb := decode[dto.RebuildResponse](t, rec)
	assert.Equal(t, 3, rb.Users)
	assert.Equal(t, 3, rb.Wagers)
}

func TestBadParams(t *testing.T) {
	e := newEnv(t)
	tok := e.register("alice")

	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/matches/abc", tok.AccessToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, e.do(http.MethodGet, "/matches/0", tok.AccessToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/matches/42", tok.AccessToken, nil).Code)
	assert.Equal(t, http.StatusNotFound, e.do(http.MethodGet, "/bids/for-match/42", tok.AccessToken, nil).Code)

	req := httptest.NewRequest(http.MethodPost, "/bids", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+tok.AccessToken)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ledger.ErrMatchNotFound, http.StatusNotFound},
		{fmt.Errorf("get: %w", ledger.ErrTeamNotFound), http.StatusNotFound},
		{ledger.ErrMatchLocked, http.StatusBadRequest},
		{fmt.Errorf("%w: 30 of 30", ledger.ErrBidLimitExceeded), http.StatusBadRequest},
		{ledger.ErrInvalidWinner, http.StatusBadRequest},
		{ledger.ErrResultAlreadyConfirmed, http.StatusConflict},
		{ledger.ErrUsernameTaken, http.StatusConflict},
		{ledger.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrInvalidToken, http.StatusUnauthorized},
		{ledger.ErrForbidden, http.StatusForbidden},
		{ledger.ErrUnknownCategory, http.StatusInternalServerError},
		{ledger.ErrInvalidSchedule, http.StatusInternalServerError},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestIntegrityErrorIsNotLeaked(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	NewServer(zap.NewNop(), Deps{}).writeError(rec, req, fmt.Errorf("match 3: %w", ledger.ErrUnknownCategory))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "data integrity error", decode[dto.ErrorResponse](t, rec).Error)
}
