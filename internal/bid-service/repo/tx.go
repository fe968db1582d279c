package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
)

// Tx é uma unidade de trabalho do ledger. Tudo que roda dentro dela usa a
// mesma conexão; chamar o Store no meio de uma Tx trava no SQLite.
type Tx struct {
	tx  *sqlx.Tx
	loc *time.Location
}

func (s *Store) Begin(ctx context.Context) (*Tx, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	return &Tx{tx: tx, loc: s.loc}, nil
}

func (t *Tx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Rollback é seguro após Commit (usado em defer)
func (t *Tx) Rollback() {
	_ = t.tx.Rollback()
}

// LockUser serializa as operações do usuário até o fim da Tx
func (t *Tx) LockUser(ctx context.Context, userID string) error {
	var id string
	err := get(ctx, t.tx, &id, `SELECT id FROM users WHERE id = ?`+forUpdate(t.tx), userID)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	return nil
}

// LockMatch trava a linha da partida. Placement e liquidação travam a partida
// antes de qualquer outra linha: a ordem é partida, usuário, palpite.
func (t *Tx) LockMatch(ctx context.Context, id int64) error {
	var got int64
	err := get(ctx, t.tx, &got, `SELECT id FROM matches WHERE id = ?`+forUpdate(t.tx), id)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.ErrMatchNotFound
	}
	if err != nil {
		return fmt.Errorf("lock match %d: %w", id, err)
	}
	return nil
}

// LockAllUsers trava todos os usuários em ordem de id. O recálculo completo
// chama antes de ler o ledger; liquidações em curso terminam antes ou esperam.
func (t *Tx) LockAllUsers(ctx context.Context) error {
	var ids []string
	if err := sel(ctx, t.tx, &ids, `SELECT id FROM users ORDER BY id`+forUpdate(t.tx)); err != nil {
		return fmt.Errorf("lock users: %w", err)
	}
	return nil
}

func (t *Tx) GetMatch(ctx context.Context, id int64) (ledger.Match, error) {
	return getMatch(ctx, t.tx, t.loc, id)
}

// GetWagerForUpdate devolve ErrWagerNotFound quando ainda não existe palpite
func (t *Tx) GetWagerForUpdate(ctx context.Context, userID string, matchID int64) (ledger.Wager, error) {
	return getWager(ctx, t.tx, userID, matchID, true)
}

// CountCategoryWagers conta os palpites do usuário em partidas da categoria
func (t *Tx) CountCategoryWagers(ctx context.Context, userID string, cat ledger.Category) (int, error) {
	var n int
	err := get(ctx, t.tx, &n, `
		SELECT COUNT(*) FROM wagers w JOIN matches m ON m.id = w.match_id
		WHERE w.user_id = ? AND m.category = ?`, userID, string(cat))
	if err != nil {
		return 0, fmt.Errorf("count category wagers: %w", err)
	}
	return n, nil
}

func (t *Tx) InsertWager(ctx context.Context, w ledger.Wager) error {
	_, err := exec(ctx, t.tx, `
		INSERT INTO wagers (id, user_id, match_id, selected_team_id, status, amount, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		w.ID, w.UserID, w.MatchID, ptrToNull(w.SelectedTeamID), string(w.Status), ptrToNull(w.Amount), w.CreatedAt.UTC(), w.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert wager: %w", err)
	}
	return nil
}

// UpdateWagerSelection troca o time escolhido e volta o palpite para placed
func (t *Tx) UpdateWagerSelection(ctx context.Context, wagerID string, teamID int64, now time.Time) error {
	_, err := exec(ctx, t.tx, `
		UPDATE wagers SET selected_team_id = ?, status = ?, amount = NULL, updated_at = ?
		WHERE id = ?`, teamID, string(ledger.StatusPlaced), now.UTC(), wagerID)
	if err != nil {
		return fmt.Errorf("update wager selection: %w", err)
	}
	return nil
}

// InsertResult grava o marcador de liquidação. É a primeira escrita da
// confirmação: a PK garante que só uma confirmação passa.
func (t *Tx) InsertResult(ctx context.Context, r ledger.MatchResult) error {
	_, err := exec(ctx, t.tx, `
		INSERT INTO match_results (match_id, winner_team_id, stake, confirmed_at)
		VALUES (?, ?, ?, ?)`, r.MatchID, ptrToNull(r.WinnerTeamID), r.Stake, r.ConfirmedAt.UTC())
	if isUniqueViolation(err) {
		return ledger.ErrResultAlreadyConfirmed
	}
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (t *Tx) UpdateResultTotals(ctx context.Context, r ledger.MatchResult) error {
	_, err := exec(ctx, t.tx, `
		UPDATE match_results SET pool = ?, share = ?, house_take = ? WHERE match_id = ?`,
		r.Pool, r.Share, r.HouseTake, r.MatchID)
	if err != nil {
		return fmt.Errorf("update result totals: %w", err)
	}
	return nil
}

// ListMatchWagersForUpdate trava todos os palpites da partida
func (t *Tx) ListMatchWagersForUpdate(ctx context.Context, matchID int64) ([]ledger.Wager, error) {
	var rows []wagerRow
	err := sel(ctx, t.tx, &rows, `
		SELECT `+wagerColumns+` FROM wagers w
		WHERE w.match_id = ?
		ORDER BY w.id`+forUpdate(t.tx), matchID)
	if err != nil {
		return nil, fmt.Errorf("list match wagers: %w", err)
	}
	return wagersFromRows(rows), nil
}

// ResolveWager grava o status terminal e o valor líquido
func (t *Tx) ResolveWager(ctx context.Context, w ledger.Wager) error {
	_, err := exec(ctx, t.tx, `
		UPDATE wagers SET status = ?, amount = ?, updated_at = ? WHERE id = ?`,
		string(w.Status), ptrToNull(w.Amount), w.UpdatedAt.UTC(), w.ID)
	if err != nil {
		return fmt.Errorf("resolve wager %s: %w", w.ID, err)
	}
	return nil
}

// ApplyStats soma o delta às estatísticas denormalizadas do usuário
func (t *Tx) ApplyStats(ctx context.Context, userID string, d ledger.Stats) error {
	_, err := exec(ctx, t.tx, `
		UPDATE users SET total_bids = total_bids + ?, wins = wins + ?, losses = losses + ?, net_amount = net_amount + ?
		WHERE id = ?`, d.Total, d.Wins, d.Losses, d.NetAmount, userID)
	if err != nil {
		return fmt.Errorf("apply stats %s: %w", userID, err)
	}
	return nil
}

func (t *Tx) CompleteMatch(ctx context.Context, matchID int64, winner *int64) error {
	_, err := exec(ctx, t.tx, `
		UPDATE matches SET status = ?, winner_team_id = ? WHERE id = ?`,
		ledger.MatchStatusCompleted, ptrToNull(winner), matchID)
	if err != nil {
		return fmt.Errorf("complete match: %w", err)
	}
	return nil
}

func (t *Tx) ListTerminalWagers(ctx context.Context) ([]ledger.Wager, error) {
	return listTerminalWagers(ctx, t.tx)
}

// ReplaceAllStats zera todos os usuários e grava os agregados informados
func (t *Tx) ReplaceAllStats(ctx context.Context, stats map[string]ledger.Stats) error {
	if _, err := exec(ctx, t.tx, `UPDATE users SET total_bids = 0, wins = 0, losses = 0, net_amount = 0`); err != nil {
		return fmt.Errorf("reset stats: %w", err)
	}
	for userID, s := range stats {
		if err := t.ApplyStats(ctx, userID, s); err != nil {
			return err
		}
	}
	return nil
}

func listTerminalWagers(ctx context.Context, q sqlx.ExtContext) ([]ledger.Wager, error) {
	var rows []wagerRow
	err := sel(ctx, q, &rows, `
		SELECT `+wagerColumns+` FROM wagers w
		WHERE w.status IN (?, ?, ?)
		ORDER BY w.user_id, w.id`,
		string(ledger.StatusWon), string(ledger.StatusLost), string(ledger.StatusNoResult))
	if err != nil {
		return nil, fmt.Errorf("list terminal wagers: %w", err)
	}
	return wagersFromRows(rows), nil
}
