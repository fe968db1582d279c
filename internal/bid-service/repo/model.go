package repo

import (
	"database/sql"
	"time"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
)

// linhas do banco; a conversão para o domínio fica aqui

type userRow struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	PasswordHash string    `db:"password_hash"`
	IsAdmin      bool      `db:"is_admin"`
	IsActive     bool      `db:"is_active"`
	TotalBids    int       `db:"total_bids"`
	Wins         int       `db:"wins"`
	Losses       int       `db:"losses"`
	NetAmount    int64     `db:"net_amount"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) toUser() ledger.User {
	return ledger.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		IsAdmin:      r.IsAdmin,
		IsActive:     r.IsActive,
		CreatedAt:    r.CreatedAt,
		Stats:        ledger.Stats{Total: r.TotalBids, Wins: r.Wins, Losses: r.Losses, NetAmount: r.NetAmount},
	}
}

type matchRow struct {
	ID           int64         `db:"id"`
	Team1ID      int64         `db:"team1_id"`
	Team1Name    string        `db:"team1_name"`
	Team1Short   string        `db:"team1_short"`
	Team2ID      int64         `db:"team2_id"`
	Team2Name    string        `db:"team2_name"`
	Team2Short   string        `db:"team2_short"`
	Date         string        `db:"match_date"`
	Time         string        `db:"match_time"`
	Venue        string        `db:"venue"`
	Category     string        `db:"category"`
	Series       string        `db:"series"`
	Status       string        `db:"status"`
	WinnerTeamID sql.NullInt64 `db:"winner_team_id"`
	Confirmed    bool          `db:"confirmed"`
}

func (r matchRow) toMatch(loc *time.Location) (ledger.Match, error) {
	start, err := ledger.ParseStart(r.Date, r.Time, loc)
	if err != nil {
		return ledger.Match{}, err
	}
	return ledger.Match{
		ID:           r.ID,
		Team1:        ledger.Team{ID: r.Team1ID, Name: r.Team1Name, ShortName: r.Team1Short},
		Team2:        ledger.Team{ID: r.Team2ID, Name: r.Team2Name, ShortName: r.Team2Short},
		Date:         r.Date,
		Time:         r.Time,
		Venue:        r.Venue,
		Category:     ledger.Category(r.Category),
		Series:       r.Series,
		Status:       r.Status,
		WinnerTeamID: nullToPtr(r.WinnerTeamID),
		Confirmed:    r.Confirmed,
		StartsAt:     start,
	}, nil
}

type wagerRow struct {
	ID             string        `db:"id"`
	UserID         string        `db:"user_id"`
	MatchID        int64         `db:"match_id"`
	SelectedTeamID sql.NullInt64 `db:"selected_team_id"`
	Status         string        `db:"status"`
	Amount         sql.NullInt64 `db:"amount"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

func (r wagerRow) toWager() ledger.Wager {
	return ledger.Wager{
		ID:             r.ID,
		UserID:         r.UserID,
		MatchID:        r.MatchID,
		SelectedTeamID: nullToPtr(r.SelectedTeamID),
		Status:         ledger.Status(r.Status),
		Amount:         nullToPtr(r.Amount),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type matchBidRow struct {
	wagerRow
	Username string `db:"username"`
}

type resultRow struct {
	MatchID      int64         `db:"match_id"`
	WinnerTeamID sql.NullInt64 `db:"winner_team_id"`
	Stake        int64         `db:"stake"`
	Pool         int64         `db:"pool"`
	Share        int64         `db:"share"`
	HouseTake    int64         `db:"house_take"`
	ConfirmedAt  time.Time     `db:"confirmed_at"`
}

func nullToPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

func ptrToNull(p *int64) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *p, Valid: true}
}

func wagersFromRows(rows []wagerRow) []ledger.Wager {
	out := make([]ledger.Wager, len(rows))
	for i, r := range rows {
		out[i] = r.toWager()
	}
	return out
}
