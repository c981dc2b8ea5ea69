package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/recipeapp/recipe-server/internal/domain"
	"github.com/recipeapp/recipe-server/internal/store"
)

// CreateToken records an issued token.
func (s *Store) CreateToken(ctx context.Context, t *domain.Token) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO auth_tokens (id, user_id, created_at, expires_at)
		VALUES (?, ?, ?, ?)`,
		t.ID,
		t.UserID,
		formatTime(t.CreatedAt),
		formatTime(t.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("insert token: %w", err)
	}
	return nil
}

// GetToken retrieves a token record by ID.
func (s *Store) GetToken(ctx context.Context, id string) (*domain.Token, error) {
	var (
		t         domain.Token
		createdAt string
		expiresAt string
	)
	err := s.q.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, expires_at FROM auth_tokens WHERE id = ?`, id,
	).Scan(&t.ID, &t.UserID, &createdAt, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	if t.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if t.ExpiresAt, err = parseTime(expiresAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// DeleteToken revokes a single token.
func (s *Store) DeleteToken(ctx context.Context, id string) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM auth_tokens WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete token: %w", err)
	}
	return expectAffected(res)
}

// DeleteExpiredTokens removes tokens past their expiry and returns how many went.
func (s *Store) DeleteExpiredTokens(ctx context.Context) (int, error) {
	res, err := s.q.ExecContext(ctx,
		`DELETE FROM auth_tokens WHERE expires_at <= ?`, formatTime(time.Now()))
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Debug("expired tokens removed", "count", n)
	}
	return int(n), nil
}
