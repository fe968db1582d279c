package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
)

// UpsertTeam cria ou renomeia o time identificado pela sigla
func (s *Store) UpsertTeam(ctx context.Context, name, shortName string) (int64, error) {
	var id int64
	err := get(ctx, s.db, &id, `
		INSERT INTO teams (name, short_name) VALUES (?, ?)
		ON CONFLICT (short_name) DO UPDATE SET name = excluded.name
		RETURNING id`, name, shortName)
	if err != nil {
		return 0, fmt.Errorf("upsert team %s: %w", shortName, err)
	}
	return id, nil
}

func (s *Store) ListTeams(ctx context.Context) ([]ledger.Team, error) {
	var teams []ledger.Team
	err := sel(ctx, s.db, &teams, `SELECT id, name, short_name FROM teams ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	return teams, nil
}

func (s *Store) GetTeam(ctx context.Context, id int64) (ledger.Team, error) {
	var t ledger.Team
	err := get(ctx, s.db, &t, `SELECT id, name, short_name FROM teams WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Team{}, ledger.ErrTeamNotFound
	}
	if err != nil {
		return ledger.Team{}, fmt.Errorf("get team: %w", err)
	}
	return t, nil
}

// ListMatches ordena por data e hora; uma linha com agenda inválida falha a listagem inteira
func (s *Store) ListMatches(ctx context.Context, f MatchFilter) ([]ledger.Match, error) {
	where, args := f.where()
	var rows []matchRow
	if err := sel(ctx, s.db, &rows, matchSelect+where+` ORDER BY m.match_date, m.match_time, m.id`, args...); err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	out := make([]ledger.Match, 0, len(rows))
	for _, r := range rows {
		m, err := r.toMatch(s.loc)
		if err != nil {
			return nil, fmt.Errorf("match %d: %w", r.ID, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// ListMatchesByIDs busca só as partidas pedidas, indexadas por id
func (s *Store) ListMatchesByIDs(ctx context.Context, ids []int64) (map[int64]ledger.Match, error) {
	out := make(map[int64]ledger.Match, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	query, args, err := sqlx.In(matchSelect+` WHERE m.id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("list matches by id: %w", err)
	}
	var rows []matchRow
	if err := sel(ctx, s.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list matches by id: %w", err)
	}
	for _, r := range rows {
		m, err := r.toMatch(s.loc)
		if err != nil {
			return nil, fmt.Errorf("match %d: %w", r.ID, err)
		}
		out[m.ID] = m
	}
	return out, nil
}

func (s *Store) GetMatch(ctx context.Context, id int64) (ledger.Match, error) {
	return getMatch(ctx, s.db, s.loc, id)
}

// NewMatch são os dados de agendamento de uma partida
type NewMatch struct {
	Team1ID  int64
	Team2ID  int64
	Date     string
	Time     string
	Venue    string
	Category ledger.Category
	Series   string
}

// CreateMatch devolve ErrMatchExists se a mesma partida já estiver agendada
func (s *Store) CreateMatch(ctx context.Context, m NewMatch) (int64, error) {
	series := m.Series
	if series == "" {
		series = ledger.DefaultSeries
	}
	var id int64
	err := get(ctx, s.db, &id, `
		INSERT INTO matches (team1_id, team2_id, match_date, match_time, venue, category, series, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`,
		m.Team1ID, m.Team2ID, m.Date, m.Time, m.Venue, string(m.Category), series, ledger.MatchStatusUpcoming,
	)
	if isUniqueViolation(err) {
		return 0, ledger.ErrMatchExists
	}
	if err != nil {
		return 0, fmt.Errorf("insert match: %w", err)
	}
	return id, nil
}

func (s *Store) GetResult(ctx context.Context, matchID int64) (ledger.MatchResult, error) {
	var r resultRow
	err := get(ctx, s.db, &r, `
		SELECT match_id, winner_team_id, stake, pool, share, house_take, confirmed_at
		FROM match_results WHERE match_id = ?`, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.MatchResult{}, ledger.ErrResultNotFound
	}
	if err != nil {
		return ledger.MatchResult{}, fmt.Errorf("get result: %w", err)
	}
	return ledger.MatchResult{
		MatchID:      r.MatchID,
		WinnerTeamID: nullToPtr(r.WinnerTeamID),
		Stake:        r.Stake,
		Pool:         r.Pool,
		Share:        r.Share,
		HouseTake:    r.HouseTake,
		ConfirmedAt:  r.ConfirmedAt,
	}, nil
}
