package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/recipeapp/recipe-server/internal/domain"
	"github.com/recipeapp/recipe-server/internal/store"
)

// recipeColumns must match the scan order in scanRecipe.
const recipeColumns = `r.id, r.user_id, r.title, r.description, r.time_minutes, r.price_cents,
	r.link, r.image, r.image_blurhash, r.created_at, r.updated_at`

func scanRecipe(scanner interface{ Scan(dest ...any) error }) (*domain.Recipe, error) {
	var r domain.Recipe

	var (
		priceCents int64
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&r.ID,
		&r.UserID,
		&r.Title,
		&r.Description,
		&r.TimeMinutes,
		&priceCents,
		&r.Link,
		&r.Image,
		&r.ImageBlurHash,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Price = domain.Price(priceCents)
	r.Tags = []*domain.Tag{}
	r.Ingredients = []*domain.Ingredient{}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

// CreateRecipe inserts r and assigns its ID.
func (s *Store) CreateRecipe(ctx context.Context, r *domain.Recipe) error {
	res, err := s.q.ExecContext(ctx, `
		INSERT INTO recipes (user_id, title, description, time_minutes, price_cents,
			link, image, image_blurhash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.UserID,
		r.Title,
		r.Description,
		r.TimeMinutes,
		int64(r.Price),
		r.Link,
		r.Image,
		r.ImageBlurHash,
		formatTime(r.CreatedAt),
		formatTime(r.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert recipe: %w", err)
	}

	r.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("recipe id: %w", err)
	}
	return nil
}

// GetRecipe loads a recipe and both of its attribute sets.
func (s *Store) GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error) {
	row := s.q.QueryRowContext(ctx, `SELECT `+recipeColumns+` FROM recipes r WHERE r.id = ?`, id)
	r, err := scanRecipe(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}

	if err := s.loadAttributes(ctx, []*domain.Recipe{r}); err != nil {
		return nil, err
	}
	return r, nil
}

// ListRecipes returns userID's recipes matching filter, id descending.
// Each filter kind is an EXISTS clause, so a recipe matching several of the
// requested IDs still appears once.
func (s *Store) ListRecipes(ctx context.Context, userID int64, filter domain.RecipeFilter) ([]*domain.Recipe, error) {
	query := `SELECT ` + recipeColumns + ` FROM recipes r WHERE r.user_id = ?`
	args := []any{userID}

	for _, kind := range []domain.AttributeKind{domain.KindTag, domain.KindIngredient} {
		ids := filter.IDs(kind)
		if len(ids) == 0 {
			continue
		}
		t := kindTables[kind]
		query += ` AND EXISTS (SELECT 1 FROM ` + t.link + ` l WHERE l.recipe_id = r.id AND l.` +
			t.fk + ` IN (` + placeholders(len(ids)) + `))`
		for _, id := range ids {
			args = append(args, id)
		}
	}
	query += ` ORDER BY r.id DESC`

	rows, err := s.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	defer rows.Close()

	recipes := []*domain.Recipe{}
	for rows.Next() {
		r, err := scanRecipe(rows)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	if err := s.loadAttributes(ctx, recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// loadAttributes fills Tags and Ingredients for recipes with one query per kind.
func (s *Store) loadAttributes(ctx context.Context, recipes []*domain.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Recipe, len(recipes))
	ids := make([]any, 0, len(recipes))
	for _, r := range recipes {
		byID[r.ID] = r
		ids = append(ids, r.ID)
	}

	for kind, t := range kindTables {
		rows, err := s.q.QueryContext(ctx, `
			SELECT l.recipe_id, a.id, a.user_id, a.name, a.created_at
			FROM `+t.link+` l
			JOIN `+t.table+` a ON a.id = l.`+t.fk+`
			WHERE l.recipe_id IN (`+placeholders(len(ids))+`)
			ORDER BY l.recipe_id, l.position`, ids...)
		if err != nil {
			return fmt.Errorf("load %s links: %w", kind, err)
		}

		for rows.Next() {
			var (
				recipeID  int64
				createdAt string
			)
			a := &domain.Attribute{Kind: kind}
			if err := rows.Scan(&recipeID, &a.ID, &a.UserID, &a.Name, &createdAt); err != nil {
				rows.Close()
				return err
			}
			if a.CreatedAt, err = parseTime(createdAt); err != nil {
				rows.Close()
				return err
			}
			r := byID[recipeID]
			r.SetAttributes(kind, append(r.Attributes(kind), a))
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// UpdateRecipe writes the scalar columns of r. Links are untouched.
func (s *Store) UpdateRecipe(ctx context.Context, r *domain.Recipe) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE recipes SET
			title = ?, description = ?, time_minutes = ?, price_cents = ?, link = ?,
			image = ?, image_blurhash = ?, updated_at = ?
		WHERE id = ?`,
		r.Title,
		r.Description,
		r.TimeMinutes,
		int64(r.Price),
		r.Link,
		r.Image,
		r.ImageBlurHash,
		formatTime(r.UpdatedAt),
		r.ID,
	)
	if err != nil {
		return fmt.Errorf("update recipe: %w", err)
	}
	return expectAffected(res)
}

// DeleteRecipe removes a recipe and its links. Tags and ingredients survive.
func (s *Store) DeleteRecipe(ctx context.Context, id int64) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM recipes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete recipe: %w", err)
	}
	return expectAffected(res)
}

// SetRecipeAttributes replaces all links of kind for a recipe in one transaction.
func (s *Store) SetRecipeAttributes(ctx context.Context, kind domain.AttributeKind, recipeID int64, attrIDs []int64) error {
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}

	return s.InTx(ctx, func(tx store.Store) error {
		q := tx.(*Store).q

		if _, err := q.ExecContext(ctx, `DELETE FROM `+t.link+` WHERE recipe_id = ?`, recipeID); err != nil {
			return fmt.Errorf("delete %s: %w", t.link, err)
		}

		seen := make(map[int64]bool, len(attrIDs))
		position := 0
		for _, attrID := range attrIDs {
			if seen[attrID] {
				continue
			}
			seen[attrID] = true

			_, err := q.ExecContext(ctx,
				`INSERT INTO `+t.link+` (recipe_id, `+t.fk+`, position) VALUES (?, ?, ?)`,
				recipeID, attrID, position)
			if err != nil {
				return fmt.Errorf("insert %s: %w", t.link, err)
			}
			position++
		}
		return nil
	})
}
