package events

import "time"

// Evento emitido pelo bid-service após a confirmação do resultado de uma partida.
type MatchSettled struct {
	MatchID      int64          `json:"match_id"`
	WinnerTeamID *int64         `json:"winner_team_id"` // nil = sem resultado
	Stake        int64          `json:"stake"`
	Pool         int64          `json:"pool"`
	Share        int64          `json:"share"`
	HouseTake    int64          `json:"house_take"`
	Winners      int            `json:"winners"`
	Losers       int            `json:"losers"`
	Outcomes     []WagerOutcome `json:"outcomes"`
	Ts           time.Time      `json:"ts"`
}

type WagerOutcome struct {
	BidID  string `json:"bid_id"`
	UserID string `json:"user_id"`
	Status string `json:"status"` // won | lost | no_result
	Amount int64  `json:"amount"`
}
