package service

import (
	"context"
	"fmt"

	"github.com/recipeapp/recipe-server/internal/domain"
	"github.com/recipeapp/recipe-server/internal/store"
)

// AttributeInput is a nested tag or ingredient descriptor in a recipe write.
type AttributeInput struct {
	Name string `json:"name" validate:"notblank,max=255"`
}

// reconcileResult counts what a reconcile pass did, for logging.
type reconcileResult struct {
	linked  int
	created int
}

// reconcileAttributes replaces recipe's links of kind with the named
// attributes, finding or creating each one under the recipe's owner.
//
// Names are trimmed and NFC-normalized; the first occurrence of a repeated
// name fixes its position. tx must be the store bound to the caller's
// transaction so created attributes roll back with the recipe write.
func reconcileAttributes(ctx context.Context, tx store.Store, recipe *domain.Recipe, kind domain.AttributeKind, inputs []AttributeInput) (reconcileResult, error) {
	var res reconcileResult

	names := uniqueNames(inputs)
	attrs := make([]*domain.Attribute, 0, len(names))
	ids := make([]int64, 0, len(names))

	for _, name := range names {
		attr, created, err := tx.FindOrCreateAttribute(ctx, kind, recipe.UserID, name)
		if err != nil {
			return res, fmt.Errorf("find or create %s %q: %w", kind, name, err)
		}
		if created {
			res.created++
		}
		attrs = append(attrs, attr)
		ids = append(ids, attr.ID)
	}

	if err := tx.SetRecipeAttributes(ctx, kind, recipe.ID, ids); err != nil {
		return res, fmt.Errorf("link %s: %w", kind, err)
	}

	recipe.SetAttributes(kind, attrs)
	res.linked = len(attrs)
	return res, nil
}

// uniqueNames normalizes names and drops repeats, keeping first-seen order.
func uniqueNames(inputs []AttributeInput) []string {
	seen := make(map[string]struct{}, len(inputs))
	names := make([]string, 0, len(inputs))
	for _, in := range inputs {
		name := domain.NormalizeAttributeName(in.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}
