package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/recipeapp/recipe-server/internal/domain"
	"github.com/recipeapp/recipe-server/internal/store"
)

// boolToInt converts a bool to an int for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, email, password_hash, name, is_active, is_staff, is_superuser,
	last_login, created_at, updated_at`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		isActive    int
		isStaff     int
		isSuperuser int
		lastLogin   sql.NullString
		createdAt   string
		updatedAt   string
	)

	err := scanner.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&isActive,
		&isStaff,
		&isSuperuser,
		&lastLogin,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	u.IsActive = isActive != 0
	u.IsStaff = isStaff != 0
	u.IsSuperuser = isSuperuser != 0

	u.LastLogin, err = parseNullableTime(lastLogin)
	if err != nil {
		return nil, err
	}
	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

// CreateUser inserts a new user and assigns its ID.
// Returns store.ErrEmailExists if the email is taken.
func (s *Store) CreateUser(ctx context.Context, u *domain.User) error {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO users (email, password_hash, name, is_active, is_staff, is_superuser,
			last_login, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.Email,
		u.PasswordHash,
		u.Name,
		boolToInt(u.IsActive),
		boolToInt(u.IsStaff),
		boolToInt(u.IsSuperuser),
		nullTimeString(u.LastLogin),
		formatTime(u.CreatedAt),
		formatTime(u.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrEmailExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}

	u.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail retrieves a user by exact email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// UpdateUser writes every mutable column of u.
func (s *Store) UpdateUser(ctx context.Context, u *domain.User) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE users SET
			email = ?, password_hash = ?, name = ?, is_active = ?, is_staff = ?,
			is_superuser = ?, last_login = ?, updated_at = ?
		WHERE id = ?`,
		u.Email,
		u.PasswordHash,
		u.Name,
		boolToInt(u.IsActive),
		boolToInt(u.IsStaff),
		boolToInt(u.IsSuperuser),
		nullTimeString(u.LastLogin),
		formatTime(u.UpdatedAt),
		u.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrEmailExists
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return expectAffected(res)
}

// DeleteUser removes a user. Foreign keys cascade to everything they own.
func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return expectAffected(res)
}
