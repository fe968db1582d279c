// Package repotest monta um Store SQLite em memória com dados mínimos para testes.
package repotest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
	"github.com/radieske/match-bid-platform/internal/bid-service/repo"
	shareddb "github.com/radieske/match-bid-platform/internal/shared/db"
)

// NewStore abre um banco em memória já migrado; datas das partidas em UTC
func NewStore(t testing.TB) *repo.Store {
	t.Helper()
	db, err := shareddb.ConnectSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, shareddb.Migrate(context.Background(), db))
	return repo.New(db, time.UTC)
}

func AddUser(t testing.TB, s *repo.Store, username string) ledger.User {
	t.Helper()
	u := ledger.User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: "x",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func AddTeam(t testing.TB, s *repo.Store, name, short string) ledger.Team {
	t.Helper()
	id, err := s.UpsertTeam(context.Background(), name, short)
	require.NoError(t, err)
	return ledger.Team{ID: id, Name: name, ShortName: short}
}

// AddMatch agenda team1 x team2 começando em start (arredondado ao minuto, UTC)
func AddMatch(t testing.TB, s *repo.Store, team1, team2 ledger.Team, cat ledger.Category, start time.Time) ledger.Match {
	t.Helper()
	start = start.UTC()
	id, err := s.CreateMatch(context.Background(), repo.NewMatch{
		Team1ID:  team1.ID,
		Team2ID:  team2.ID,
		Date:     start.Format(ledger.DateLayout),
		Time:     start.Format(ledger.TimeLayout),
		Venue:    "Test Oval",
		Category: cat,
	})
	require.NoError(t, err)
	m, err := s.GetMatch(context.Background(), id)
	require.NoError(t, err)
	return m
}
