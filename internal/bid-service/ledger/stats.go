package ledger

// Stats é o agregado denormalizado por usuário. Sempre deve ser igual a
// Fold dos palpites terminais do usuário.
type Stats struct {
	Total     int   `json:"total"`
	Wins      int   `json:"wins"`
	Losses    int   `json:"losses"`
	NetAmount int64 `json:"net_amount"`
}

// Apply acumula um palpite terminal; palpites não terminais são ignorados
func (s *Stats) Apply(w Wager) {
	if !w.Status.Terminal() {
		return
	}
	s.Total++
	switch w.Status {
	case StatusWon:
		s.Wins++
	case StatusLost:
		s.Losses++
	}
	if w.Amount != nil {
		s.NetAmount += *w.Amount
	}
}

// Add soma dois agregados (usado para aplicar deltas incrementais)
func (s Stats) Add(o Stats) Stats {
	return Stats{
		Total:     s.Total + o.Total,
		Wins:      s.Wins + o.Wins,
		Losses:    s.Losses + o.Losses,
		NetAmount: s.NetAmount + o.NetAmount,
	}
}

// Fold recalcula as estatísticas de todos os usuários a partir do ledger.
// É a única fonte de verdade; o caminho incremental precisa coincidir com ele.
func Fold(wagers []Wager) map[string]Stats {
	out := make(map[string]Stats)
	for _, w := range wagers {
		if !w.Status.Terminal() {
			continue
		}
		s := out[w.UserID]
		s.Apply(w)
		out[w.UserID] = s
	}
	return out
}
