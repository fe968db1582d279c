package stake

import (
	"fmt"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
	"github.com/radieske/match-bid-platform/internal/shared/config"
)

type rule struct {
	amount int64
	limit  int
}

// Policy resolve valor fixo e limite de palpites por categoria
type Policy struct {
	rules map[ledger.Category]rule
}

// NewPolicy valida a configuração: valor positivo e limite não negativo para cada categoria
func NewPolicy(c config.StakeConfig) (*Policy, error) {
	rules := map[ledger.Category]rule{
		ledger.CategoryLeague: {amount: c.AmountLeague, limit: c.LimitLeague},
		ledger.CategorySemi:   {amount: c.AmountSemi, limit: c.LimitSemi},
		ledger.CategoryFinal:  {amount: c.AmountFinal, limit: c.LimitFinal},
	}
	for cat, r := range rules {
		if r.amount <= 0 {
			return nil, fmt.Errorf("stake for %s must be positive, got %d", cat, r.amount)
		}
		if r.limit < 0 {
			return nil, fmt.Errorf("bid limit for %s must not be negative, got %d", cat, r.limit)
		}
	}
	return &Policy{rules: rules}, nil
}

func (p *Policy) StakeFor(cat ledger.Category) (int64, error) {
	r, ok := p.rules[cat]
	if !ok {
		return 0, fmt.Errorf("stake for %q: %w", cat, ledger.ErrUnknownCategory)
	}
	return r.amount, nil
}

func (p *Policy) LimitFor(cat ledger.Category) (int, error) {
	r, ok := p.rules[cat]
	if !ok {
		return 0, fmt.Errorf("limit for %q: %w", cat, ledger.ErrUnknownCategory)
	}
	return r.limit, nil
}

// Known indica se a categoria é aceita (usado na criação de partidas)
func (p *Policy) Known(cat ledger.Category) bool {
	_, ok := p.rules[cat]
	return ok
}
