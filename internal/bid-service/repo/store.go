package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
	shareddb "github.com/radieske/match-bid-platform/internal/shared/db"
)

// Store é o ledger de palpites sobre Postgres ou SQLite.
// Queries usam "?" e passam por Rebind; o dialeto só muda o lock de linha.
type Store struct {
	db  *sqlx.DB
	loc *time.Location // fuso das datas/horas das partidas
}

func New(db *sqlx.DB, loc *time.Location) *Store {
	return &Store{db: db, loc: loc}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Location: fuso em que date+time das partidas são interpretados
func (s *Store) Location() *time.Location { return s.loc }

// forUpdate: SQLite serializa writers com uma conexão só, não tem lock de linha
func forUpdate(q sqlx.ExtContext) string {
	if q.DriverName() == shareddb.DriverPostgres {
		return " FOR UPDATE"
	}
	return ""
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
		return strings.Contains(sqErr.Error(), "UNIQUE constraint failed")
	}
	return false
}

func get(ctx context.Context, q sqlx.ExtContext, dest any, query string, args ...any) error {
	return sqlx.GetContext(ctx, q, dest, q.Rebind(query), args...)
}

func sel(ctx context.Context, q sqlx.ExtContext, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, q, dest, q.Rebind(query), args...)
}

func exec(ctx context.Context, q sqlx.ExtContext, query string, args ...any) (sql.Result, error) {
	return q.ExecContext(ctx, q.Rebind(query), args...)
}

const matchSelect = `
SELECT m.id, m.team1_id, t1.name AS team1_name, t1.short_name AS team1_short,
       m.team2_id, t2.name AS team2_name, t2.short_name AS team2_short,
       m.match_date, m.match_time, m.venue, m.category, m.series, m.status, m.winner_team_id,
       (r.match_id IS NOT NULL) AS confirmed
FROM matches m
JOIN teams t1 ON t1.id = m.team1_id
JOIN teams t2 ON t2.id = m.team2_id
LEFT JOIN match_results r ON r.match_id = m.id`

const wagerColumns = `w.id, w.user_id, w.match_id, w.selected_team_id, w.status, w.amount, w.created_at, w.updated_at`

func getMatch(ctx context.Context, q sqlx.ExtContext, loc *time.Location, id int64) (ledger.Match, error) {
	var row matchRow
	err := get(ctx, q, &row, matchSelect+` WHERE m.id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Match{}, ledger.ErrMatchNotFound
	}
	if err != nil {
		return ledger.Match{}, fmt.Errorf("get match %d: %w", id, err)
	}
	return row.toMatch(loc)
}

func getWager(ctx context.Context, q sqlx.ExtContext, userID string, matchID int64, lock bool) (ledger.Wager, error) {
	query := `SELECT ` + wagerColumns + ` FROM wagers w WHERE w.user_id = ? AND w.match_id = ?`
	if lock {
		query += forUpdate(q)
	}
	var row wagerRow
	err := get(ctx, q, &row, query, userID, matchID)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Wager{}, ledger.ErrWagerNotFound
	}
	if err != nil {
		return ledger.Wager{}, fmt.Errorf("get wager: %w", err)
	}
	return row.toWager(), nil
}

// MatchFilter: campos vazios não filtram
type MatchFilter struct {
	Series   string
	Category ledger.Category
	Date     string
}

func (f MatchFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)
	if f.Series != "" {
		conds = append(conds, "m.series = ?")
		args = append(args, f.Series)
	}
	if f.Category != "" {
		conds = append(conds, "m.category = ?")
		args = append(args, string(f.Category))
	}
	if f.Date != "" {
		conds = append(conds, "m.match_date = ?")
		args = append(args, f.Date)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
