package fixtures

import (
	"context"
	"errors"
	"fmt"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo"
)

// SeedReport conta o que foi inserido; partidas já agendadas são puladas
type SeedReport struct {
	Teams    int
	Created  int
	Existing int
}

// Seed carrega times e agenda no banco. Pode rodar quantas vezes quiser.
func Seed(ctx context.Context, store *repo.Store, teams []CatalogueTeam, matches []CatalogueMatch) (SeedReport, error) {
	var rep SeedReport
	ids := make(map[string]int64, len(teams))
	for _, t := range teams {
		id, err := store.UpsertTeam(ctx, t.Name, t.ShortName)
		if err != nil {
			return rep, err
		}
		ids[t.ShortName] = id
		rep.Teams++
	}

	for _, m := range matches {
		t1, ok1 := ids[m.Team1]
		t2, ok2 := ids[m.Team2]
		if !ok1 || !ok2 {
			return rep, fmt.Errorf("seed %s v %s: %w", m.Team1, m.Team2, ledger.ErrTeamNotFound)
		}
		// catálogo com data inválida é bug, não dado de usuário
		if _, err := ledger.ParseStart(m.Date, m.Time, store.Location()); err != nil {
			return rep, err
		}
		_, err := store.CreateMatch(ctx, repo.NewMatch{
			Team1ID:  t1,
			Team2ID:  t2,
			Date:     m.Date,
			Time:     m.Time,
			Venue:    m.Venue,
			Category: m.Category,
			Series:   m.Series,
		})
		switch {
		case errors.Is(err, ledger.ErrMatchExists):
			rep.Existing++
		case err != nil:
			return rep, err
		default:
			rep.Created++
		}
	}
	return rep, nil
}
