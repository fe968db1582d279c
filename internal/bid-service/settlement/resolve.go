package settlement

import (
	"time"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
)

// Result descreve uma liquidação. Resolved traz só os palpites alterados.
type Result struct {
	MatchID      int64
	WinnerTeamID *int64
	Stake        int64
	Pool         int64
	Share        int64
	HouseTake    int64 // pool sem vencedores ou resto da divisão
	Winners      int
	Losers       int
	Resolved     []ledger.Wager
}

// Resolve aplica o resultado aos palpites da partida (pari-mutuel de valor fixo).
//
// winner nil: todo palpite com time escolhido vira no_result com valor 0.
// Com vencedor: perdedores pagam -stake; o pool (perdedores × stake) é
// dividido por igual entre os vencedores, que ficam com share - stake.
// Sem vencedores o pool fica com a casa; com vencedores a casa fica com o
// resto da divisão inteira.
//
// Palpites sem time ("missed") e palpites já terminais não são tocados.
func Resolve(m ledger.Match, wagers []ledger.Wager, winner *int64, stake int64, now time.Time) (Result, error) {
	if winner != nil && !m.Has(*winner) {
		return Result{}, ledger.ErrInvalidWinner
	}

	res := Result{MatchID: m.ID, WinnerTeamID: winner, Stake: stake}

	var gathered []ledger.Wager
	for _, w := range wagers {
		if w.SelectedTeamID == nil || w.Status.Terminal() {
			continue
		}
		gathered = append(gathered, w)
	}

	if winner == nil {
		for _, w := range gathered {
			res.Resolved = append(res.Resolved, resolved(w, ledger.StatusNoResult, 0, now))
		}
		return res, nil
	}

	var winners []ledger.Wager
	for _, w := range gathered {
		if *w.SelectedTeamID == *winner {
			winners = append(winners, w)
			continue
		}
		res.Losers++
		res.Resolved = append(res.Resolved, resolved(w, ledger.StatusLost, -stake, now))
	}

	res.Winners = len(winners)
	res.Pool = int64(res.Losers) * stake

	if res.Winners == 0 {
		res.HouseTake = res.Pool
		return res, nil
	}

	res.Share = res.Pool / int64(res.Winners)
	res.HouseTake = res.Pool - res.Share*int64(res.Winners)
	for _, w := range winners {
		res.Resolved = append(res.Resolved, resolved(w, ledger.StatusWon, res.Share-stake, now))
	}
	return res, nil
}

func resolved(w ledger.Wager, status ledger.Status, amount int64, now time.Time) ledger.Wager {
	w.Status = status
	w.Amount = &amount
	w.UpdatedAt = now
	return w
}

// StatsDelta agrupa por usuário o incremento de estatísticas da liquidação
func (r Result) StatsDelta() map[string]ledger.Stats {
	return ledger.Fold(r.Resolved)
}
