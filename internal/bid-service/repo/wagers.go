package repo

import (
	"context"
	"fmt"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
)

func (s *Store) GetWager(ctx context.Context, userID string, matchID int64) (ledger.Wager, error) {
	return getWager(ctx, s.db, userID, matchID, false)
}

// ListUserWagers: mais recentes primeiro
func (s *Store) ListUserWagers(ctx context.Context, userID string) ([]ledger.Wager, error) {
	var rows []wagerRow
	err := sel(ctx, s.db, &rows, `
		SELECT `+wagerColumns+` FROM wagers w
		WHERE w.user_id = ?
		ORDER BY w.created_at DESC, w.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user wagers: %w", err)
	}
	return wagersFromRows(rows), nil
}

// ListMatchBids retorna os palpites da partida com o username de cada dono
func (s *Store) ListMatchBids(ctx context.Context, matchID int64) ([]ledger.MatchBid, error) {
	var rows []matchBidRow
	err := sel(ctx, s.db, &rows, `
		SELECT `+wagerColumns+`, u.username
		FROM wagers w JOIN users u ON u.id = w.user_id
		WHERE w.match_id = ?
		ORDER BY u.username`, matchID)
	if err != nil {
		return nil, fmt.Errorf("list match bids: %w", err)
	}
	out := make([]ledger.MatchBid, len(rows))
	for i, r := range rows {
		out[i] = ledger.MatchBid{Wager: r.toWager(), Username: r.Username}
	}
	return out, nil
}

// CountUserWagersByCategory conta os palpites do usuário por categoria de partida
func (s *Store) CountUserWagersByCategory(ctx context.Context, userID string) (map[ledger.Category]int, error) {
	var rows []struct {
		Category string `db:"category"`
		N        int    `db:"n"`
	}
	err := sel(ctx, s.db, &rows, `
		SELECT m.category, COUNT(*) AS n
		FROM wagers w JOIN matches m ON m.id = w.match_id
		WHERE w.user_id = ?
		GROUP BY m.category`, userID)
	if err != nil {
		return nil, fmt.Errorf("count wagers by category: %w", err)
	}
	out := make(map[ledger.Category]int, len(rows))
	for _, r := range rows {
		out[ledger.Category(r.Category)] = r.N
	}
	return out, nil
}

// ListTerminalWagers é a entrada do recálculo completo de estatísticas
func (s *Store) ListTerminalWagers(ctx context.Context) ([]ledger.Wager, error) {
	return listTerminalWagers(ctx, s.db)
}
