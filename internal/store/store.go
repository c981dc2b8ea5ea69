// Package store defines the persistence interface for the recipe server.
package store

import (
	"context"

	"github.com/recipeapp/recipe-server/internal/domain"
)

// UserStore persists accounts.
type UserStore interface {
	// CreateUser assigns u.ID. Returns ErrEmailExists for a taken email.
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	// GetUserByEmail matches the stored (normalized) email exactly.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, u *domain.User) error
	// DeleteUser cascades to tokens, recipes, tags and ingredients.
	DeleteUser(ctx context.Context, id int64) error
}

// TokenStore persists issued bearer tokens.
type TokenStore interface {
	CreateToken(ctx context.Context, t *domain.Token) error
	GetToken(ctx context.Context, id string) (*domain.Token, error)
	DeleteToken(ctx context.Context, id string) error
	DeleteExpiredTokens(ctx context.Context) (int, error)
}

// AttributeStore is the shared repository for tags and ingredients.
// Every method takes the kind; rows of one kind never match the other.
type AttributeStore interface {
	// ListAttributes returns userID's attributes ordered by name descending.
	// assignedOnly keeps only attributes linked to at least one recipe.
	ListAttributes(ctx context.Context, kind domain.AttributeKind, userID int64, assignedOnly bool) ([]*domain.Attribute, error)
	GetAttribute(ctx context.Context, kind domain.AttributeKind, id int64) (*domain.Attribute, error)
	UpdateAttribute(ctx context.Context, a *domain.Attribute) error
	DeleteAttribute(ctx context.Context, kind domain.AttributeKind, id int64) error
	// FindOrCreateAttribute returns the attribute named name owned by userID,
	// creating it if absent. created reports which happened.
	FindOrCreateAttribute(ctx context.Context, kind domain.AttributeKind, userID int64, name string) (attr *domain.Attribute, created bool, err error)
}

// RecipeStore persists recipes and their attribute links.
type RecipeStore interface {
	// CreateRecipe assigns r.ID. Links are written separately with SetRecipeAttributes.
	CreateRecipe(ctx context.Context, r *domain.Recipe) error
	// GetRecipe loads the recipe with its tags and ingredients in link order.
	GetRecipe(ctx context.Context, id int64) (*domain.Recipe, error)
	// ListRecipes returns userID's recipes, newest id first, each at most once.
	ListRecipes(ctx context.Context, userID int64, filter domain.RecipeFilter) ([]*domain.Recipe, error)
	UpdateRecipe(ctx context.Context, r *domain.Recipe) error
	DeleteRecipe(ctx context.Context, id int64) error
	// SetRecipeAttributes replaces the links of kind with attrIDs in order.
	// Repeated IDs are linked once, at their first position.
	SetRecipeAttributes(ctx context.Context, kind domain.AttributeKind, recipeID int64, attrIDs []int64) error
}

// Store is the full persistence surface.
type Store interface {
	UserStore
	TokenStore
	AttributeStore
	RecipeStore

	// InTx runs fn against a Store bound to one transaction. The transaction
	// commits when fn returns nil and rolls back otherwise. Nested calls reuse
	// the outer transaction.
	InTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
	Close() error
}
