package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/recipeapp/recipe-server/internal/domain"
	"github.com/recipeapp/recipe-server/internal/store"
)

// attrTables names the tables backing one attribute kind.
type attrTables struct {
	table string // tags | ingredients
	link  string // recipe_tags | recipe_ingredients
	fk    string // column in link referencing table
}

var kindTables = map[domain.AttributeKind]attrTables{
	domain.KindTag:        {table: "tags", link: "recipe_tags", fk: "tag_id"},
	domain.KindIngredient: {table: "ingredients", link: "recipe_ingredients", fk: "ingredient_id"},
}

func tablesFor(kind domain.AttributeKind) (attrTables, error) {
	t, ok := kindTables[kind]
	if !ok {
		return attrTables{}, store.ErrInvalidKind
	}
	return t, nil
}

// attributeColumns must match the scan order in scanAttribute.
const attributeColumns = `id, user_id, name, created_at`

func scanAttribute(kind domain.AttributeKind, scanner interface{ Scan(dest ...any) error }) (*domain.Attribute, error) {
	a := domain.Attribute{Kind: kind}
	var createdAt string

	if err := scanner.Scan(&a.ID, &a.UserID, &a.Name, &createdAt); err != nil {
		return nil, err
	}

	var err error
	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func collectAttributes(kind domain.AttributeKind, rows *sql.Rows) ([]*domain.Attribute, error) {
	defer rows.Close()

	attrs := []*domain.Attribute{}
	for rows.Next() {
		a, err := scanAttribute(kind, rows)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attrs, nil
}

// ListAttributes returns userID's attributes of kind, name descending.
// Ties on name fall back to newest id first so the order is total.
func (s *Store) ListAttributes(ctx context.Context, kind domain.AttributeKind, userID int64, assignedOnly bool) ([]*domain.Attribute, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + attributeColumns + ` FROM ` + t.table + ` a WHERE a.user_id = ?`
	if assignedOnly {
		query += ` AND EXISTS (SELECT 1 FROM ` + t.link + ` l WHERE l.` + t.fk + ` = a.id)`
	}
	query += ` ORDER BY a.name DESC, a.id DESC`

	rows, err := s.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", t.table, err)
	}
	return collectAttributes(kind, rows)
}

// GetAttribute retrieves one attribute of kind by ID regardless of owner.
func (s *Store) GetAttribute(ctx context.Context, kind domain.AttributeKind, id int64) (*domain.Attribute, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}

	row := s.q.QueryRowContext(ctx, `SELECT `+attributeColumns+` FROM `+t.table+` WHERE id = ?`, id)
	a, err := scanAttribute(kind, row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", kind, err)
	}
	return a, nil
}

// UpdateAttribute renames a.
func (s *Store) UpdateAttribute(ctx context.Context, a *domain.Attribute) error {
	t, err := tablesFor(a.Kind)
	if err != nil {
		return err
	}

	res, err := s.q.ExecContext(ctx, `UPDATE `+t.table+` SET name = ? WHERE id = ?`, a.Name, a.ID)
	if err != nil {
		return fmt.Errorf("update %s: %w", a.Kind, err)
	}
	return expectAffected(res)
}

// DeleteAttribute removes an attribute and, through the cascade, its recipe links.
func (s *Store) DeleteAttribute(ctx context.Context, kind domain.AttributeKind, id int64) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}

	res, err := s.q.ExecContext(ctx, `DELETE FROM `+t.table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return expectAffected(res)
}

// FindOrCreateAttribute returns the oldest attribute of kind named name owned
// by userID, inserting one if none exists.
func (s *Store) FindOrCreateAttribute(ctx context.Context, kind domain.AttributeKind, userID int64, name string) (*domain.Attribute, bool, error) {
	t, err := tablesFor(kind)
	if err != nil {
		return nil, false, err
	}

	row := s.q.QueryRowContext(ctx,
		`SELECT `+attributeColumns+` FROM `+t.table+` WHERE user_id = ? AND name = ? ORDER BY id LIMIT 1`,
		userID, name)
	existing, err := scanAttribute(kind, row)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, fmt.Errorf("find %s: %w", kind, err)
	}

	a := &domain.Attribute{Kind: kind, UserID: userID, Name: name}
	a.CreatedAt = nowUTC()

	res, err := s.q.ExecContext(ctx,
		`INSERT INTO `+t.table+` (user_id, name, created_at) VALUES (?, ?, ?)`,
		a.UserID, a.Name, formatTime(a.CreatedAt))
	if err != nil {
		return nil, false, fmt.Errorf("insert %s: %w", kind, err)
	}
	if a.ID, err = res.LastInsertId(); err != nil {
		return nil, false, fmt.Errorf("%s id: %w", kind, err)
	}

	return a, true, nil
}
