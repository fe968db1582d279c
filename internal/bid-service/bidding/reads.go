package bidding

import (
	"context"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
)

func (s *Service) GetWager(ctx context.Context, userID string, matchID int64) (ledger.Wager, error) {
	if _, err := s.store.GetMatch(ctx, matchID); err != nil {
		return ledger.Wager{}, err
	}
	return s.store.GetWager(ctx, userID, matchID)
}

// MyWager junta o palpite com a partida para a listagem do usuário
type MyWager struct {
	Wager ledger.Wager
	Match ledger.Match
}

// ListMyWagers: mais recentes primeiro
func (s *Service) ListMyWagers(ctx context.Context, userID string) ([]MyWager, error) {
	wagers, err := s.store.ListUserWagers(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]int64, 0, len(wagers))
	for _, w := range wagers {
		ids = append(ids, w.MatchID)
	}
	byID, err := s.store.ListMatchesByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]MyWager, 0, len(wagers))
	for _, w := range wagers {
		out = append(out, MyWager{Wager: w, Match: byID[w.MatchID]})
	}
	return out, nil
}

type Usage struct {
	Category  ledger.Category `json:"category"`
	Used      int             `json:"used"`
	Remaining int             `json:"remaining"`
	Limit     int             `json:"limit"`
}

// BidUsage mostra quantas vagas o usuário já usou em cada categoria
func (s *Service) BidUsage(ctx context.Context, userID string) ([]Usage, error) {
	counts, err := s.store.CountUserWagersByCategory(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Usage, 0, len(ledger.Categories))
	for _, cat := range ledger.Categories {
		limit, err := s.policy.LimitFor(cat)
		if err != nil {
			return nil, err
		}
		used := counts[cat]
		out = append(out, Usage{Category: cat, Used: used, Remaining: max(limit-used, 0), Limit: limit})
	}
	return out, nil
}

type Dashboard struct {
	TotalBids int `json:"total_bids"`
	Wins      int `json:"wins"`
	Losses    int `json:"losses"`
	Pending   int `json:"pending"`
}

func (s *Service) Dashboard(ctx context.Context, userID string) (Dashboard, error) {
	wagers, err := s.store.ListUserWagers(ctx, userID)
	if err != nil {
		return Dashboard{}, err
	}
	d := Dashboard{TotalBids: len(wagers)}
	for _, w := range wagers {
		switch w.Status {
		case ledger.StatusWon:
			d.Wins++
		case ledger.StatusLost:
			d.Losses++
		case ledger.StatusPlaced, ledger.StatusPending:
			d.Pending++
		}
	}
	return d, nil
}

type Bidder struct {
	UserID   string        `json:"user_id"`
	Username string        `json:"username"`
	Status   ledger.Status `json:"status"`
	Amount   *int64        `json:"amount"`
}

type SideBids struct {
	Team    ledger.Team `json:"team"`
	Bidders []Bidder    `json:"bidders"`
}

// Breakdown mostra quem escolheu cada lado da partida
type Breakdown struct {
	Match  ledger.Match
	Sides  [2]SideBids
	Missed []Bidder // palpites sem time escolhido
}

// MatchBreakdown só responde depois do início, para não vazar escolhas antes do jogo
func (s *Service) MatchBreakdown(ctx context.Context, matchID int64) (Breakdown, error) {
	m, err := s.store.GetMatch(ctx, matchID)
	if err != nil {
		return Breakdown{}, err
	}
	if !m.Confirmed && !m.LockedAt(s.now()) {
		return Breakdown{}, ledger.ErrMatchNotStarted
	}

	bids, err := s.store.ListMatchBids(ctx, matchID)
	if err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{
		Match: m,
		Sides: [2]SideBids{
			{Team: m.Team1, Bidders: []Bidder{}},
			{Team: m.Team2, Bidders: []Bidder{}},
		},
		Missed: []Bidder{},
	}
	for _, bid := range bids {
		bidder := Bidder{UserID: bid.UserID, Username: bid.Username, Status: bid.Status, Amount: bid.Amount}
		switch {
		case bid.SelectedTeamID == nil:
			b.Missed = append(b.Missed, bidder)
		case *bid.SelectedTeamID == m.Team1.ID:
			b.Sides[0].Bidders = append(b.Sides[0].Bidders, bidder)
		case *bid.SelectedTeamID == m.Team2.ID:
			b.Sides[1].Bidders = append(b.Sides[1].Bidders, bidder)
		}
	}
	return b, nil
}
