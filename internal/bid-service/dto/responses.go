package dto

import (
	"time"

	"github.com/radieske/match-bid-platform/internal/bid-service/auth"
	"github.com/radieske/match-bid-platform/internal/bid-service/bidding"
	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
	"github.com/radieske/match-bid-platform/internal/bid-service/settlement"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"` // erros de validação por campo
}

type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

func User(u ledger.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin, CreatedAt: u.CreatedAt}
}

type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

func Token(s auth.Session) TokenResponse {
	return TokenResponse{AccessToken: s.Token, TokenType: "bearer", ExpiresAt: s.ExpiresAt, User: User(s.User)}
}

// MatchResponse: is_locked e seconds_until_start são calculados em now
type MatchResponse struct {
	ID                int64       `json:"id"`
	Team1             ledger.Team `json:"team1"`
	Team2             ledger.Team `json:"team2"`
	MatchDate         string      `json:"match_date"`
	MatchTime         string      `json:"match_time"`
	Venue             string      `json:"venue"`
	MatchType         string      `json:"match_type"`
	Series            string      `json:"series"`
	Status            string      `json:"status"`
	WinnerTeamID      *int64      `json:"winner_team_id"`
	IsLocked          bool        `json:"is_locked"`
	SecondsUntilStart *int64      `json:"seconds_until_start"`
}

func Match(m ledger.Match, now time.Time) MatchResponse {
	return MatchResponse{
		ID:                m.ID,
		Team1:             m.Team1,
		Team2:             m.Team2,
		MatchDate:         m.Date,
		MatchTime:         m.Time,
		Venue:             m.Venue,
		MatchType:         string(m.Category),
		Series:            m.Series,
		Status:            m.Status,
		WinnerTeamID:      m.WinnerTeamID,
		IsLocked:          m.Confirmed || m.LockedAt(now),
		SecondsUntilStart: m.SecondsUntilStart(now),
	}
}

func Matches(ms []ledger.Match, now time.Time) []MatchResponse {
	out := make([]MatchResponse, 0, len(ms))
	for _, m := range ms {
		out = append(out, Match(m, now))
	}
	return out
}

type BidResponse struct {
	ID             string        `json:"id"`
	MatchID        int64         `json:"match_id"`
	SelectedTeamID *int64        `json:"selected_team_id"`
	BidStatus      ledger.Status `json:"bid_status"`
	Amount         *int64        `json:"amount"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

func Bid(w ledger.Wager) BidResponse {
	return BidResponse{
		ID:             w.ID,
		MatchID:        w.MatchID,
		SelectedTeamID: w.SelectedTeamID,
		BidStatus:      w.Status,
		Amount:         w.Amount,
		CreatedAt:      w.CreatedAt,
		UpdatedAt:      w.UpdatedAt,
	}
}

type PlaceBidResponse struct {
	BidResponse
	Updated bool `json:"updated"`
}

type MyBidResponse struct {
	BidResponse
	Match MatchResponse `json:"match"`
}

func MyBids(ws []bidding.MyWager, now time.Time) []MyBidResponse {
	out := make([]MyBidResponse, 0, len(ws))
	for _, w := range ws {
		out = append(out, MyBidResponse{BidResponse: Bid(w.Wager), Match: Match(w.Match, now)})
	}
	return out
}

type BreakdownResponse struct {
	Match  MatchResponse    `json:"match"`
	Team1  bidding.SideBids `json:"team1"`
	Team2  bidding.SideBids `json:"team2"`
	Missed []bidding.Bidder `json:"missed"`
}

func Breakdown(b bidding.Breakdown, now time.Time) BreakdownResponse {
	return BreakdownResponse{Match: Match(b.Match, now), Team1: b.Sides[0], Team2: b.Sides[1], Missed: b.Missed}
}

type SettlementResponse struct {
	MatchID      int64  `json:"match_id"`
	WinnerTeamID *int64 `json:"winner_team_id"`
	Stake        int64  `json:"stake"`
	Pool         int64  `json:"pool"`
	Share        int64  `json:"share"`
	HouseTake    int64  `json:"house_take"`
	Winners      int    `json:"winners"`
	Losers       int    `json:"losers"`
}

func Settlement(r settlement.Result) SettlementResponse {
	return SettlementResponse{
		MatchID:      r.MatchID,
		WinnerTeamID: r.WinnerTeamID,
		Stake:        r.Stake,
		Pool:         r.Pool,
		Share:        r.Share,
		HouseTake:    r.HouseTake,
		Winners:      r.Winners,
		Losers:       r.Losers,
	}
}

type RebuildResponse struct {
	Users      int   `json:"users"`
	Wagers     int   `json:"wagers"`
	DurationMs int64 `json:"duration_ms"`
}
