package leaderboard

import (
	"context"
	"sort"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
)

type Entry struct {
	Rank      int    `json:"rank"`
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Total     int    `json:"total"`
	Wins      int    `json:"wins"`
	Losses    int    `json:"losses"`
	NetAmount int64  `json:"net_amount"`
}

// Rank ordena por saldo desc, vitórias desc e id do usuário; rank denso a partir de 1.
// Mesmo saldo e mesmas vitórias dividem o rank.
func Rank(rows []ledger.UserStats) []Entry {
	sorted := make([]ledger.UserStats, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Stats, sorted[j].Stats
		if a.NetAmount != b.NetAmount {
			return a.NetAmount > b.NetAmount
		}
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		return sorted[i].UserID < sorted[j].UserID
	})

	out := make([]Entry, len(sorted))
	rank := 0
	for i, r := range sorted {
		if i == 0 || r.Stats.NetAmount != sorted[i-1].Stats.NetAmount || r.Stats.Wins != sorted[i-1].Stats.Wins {
			rank++
		}
		out[i] = Entry{
			Rank:      rank,
			UserID:    r.UserID,
			Username:  r.Username,
			Total:     r.Stats.Total,
			Wins:      r.Stats.Wins,
			Losses:    r.Stats.Losses,
			NetAmount: r.Stats.NetAmount,
		}
	}
	return out
}

type Source interface {
	ListUserStats(ctx context.Context) ([]ledger.UserStats, error)
}

// Service recalcula o ranking a cada leitura; não guarda estado
type Service struct {
	src Source
}

func NewService(src Source) *Service { return &Service{src: src} }

func (s *Service) Get(ctx context.Context) ([]Entry, error) {
	rows, err := s.src.ListUserStats(ctx)
	if err != nil {
		return nil, err
	}
	return Rank(rows), nil
}
