package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/radieske/match-bid-platform/internal/bid-service/ledger"
)

const userColumns = `id, username, password_hash, is_admin, is_active, total_bids, wins, losses, net_amount, created_at`

// CreateUser insere o usuário com estatísticas zeradas
func (s *Store) CreateUser(ctx context.Context, u ledger.User) error {
	_, err := exec(ctx, s.db, `
		INSERT INTO users (id, username, password_hash, is_admin, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.IsAdmin, u.IsActive, u.CreatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return ledger.ErrUsernameTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (ledger.User, error) {
	var row userRow
	err := get(ctx, s.db, &row, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.User{}, ledger.ErrUserNotFound
	}
	if err != nil {
		return ledger.User{}, fmt.Errorf("get user: %w", err)
	}
	return row.toUser(), nil
}

// GetUserByUsername compara sem diferenciar maiúsculas
func (s *Store) GetUserByUsername(ctx context.Context, username string) (ledger.User, error) {
	var row userRow
	err := get(ctx, s.db, &row, `SELECT `+userColumns+` FROM users WHERE LOWER(username) = ?`, strings.ToLower(username))
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.User{}, ledger.ErrUserNotFound
	}
	if err != nil {
		return ledger.User{}, fmt.Errorf("get user by username: %w", err)
	}
	return row.toUser(), nil
}

// SyncAdmins deixa is_admin verdadeiro exatamente para os usernames informados
func (s *Store) SyncAdmins(ctx context.Context, usernames []string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := exec(ctx, tx, `UPDATE users SET is_admin = ? WHERE is_admin = ?`, false, true); err != nil {
		return fmt.Errorf("reset admins: %w", err)
	}
	for _, u := range usernames {
		if _, err := exec(ctx, tx, `UPDATE users SET is_admin = ? WHERE LOWER(username) = ?`, true, strings.ToLower(u)); err != nil {
			return fmt.Errorf("grant admin %s: %w", u, err)
		}
	}
	return tx.Commit()
}

// ListUserStats retorna as estatísticas de todos os usuários ativos (entrada do ranking)
func (s *Store) ListUserStats(ctx context.Context) ([]ledger.UserStats, error) {
	var rows []userRow
	if err := sel(ctx, s.db, &rows, `SELECT `+userColumns+` FROM users WHERE is_active = ? ORDER BY id`, true); err != nil {
		return nil, fmt.Errorf("list user stats: %w", err)
	}
	out := make([]ledger.UserStats, len(rows))
	for i, r := range rows {
		u := r.toUser()
		out[i] = ledger.UserStats{UserID: u.ID, Username: u.Username, Stats: u.Stats}
	}
	return out, nil
}
