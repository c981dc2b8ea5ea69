package domain

import (
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// AttributeKind distinguishes the two user-owned catalog entities attached to recipes.
type AttributeKind string

const (
	// KindTag labels recipes ("Vegan", "Dessert").
	KindTag AttributeKind = "tag"
	// KindIngredient lists what goes into a recipe.
	KindIngredient AttributeKind = "ingredient"
)

// Valid reports whether k is a known kind.
func (k AttributeKind) Valid() bool {
	return k == KindTag || k == KindIngredient
}

// Label returns a human-readable singular name for messages.
func (k AttributeKind) Label() string {
	return string(k)
}

// MaxAttributeNameLength bounds tag and ingredient names.
const MaxAttributeNameLength = 255

// Attribute is a named record owned by one user: a Tag or an Ingredient.
// Names are unique per (owner, kind) by convention, enforced by find-or-create.
type Attribute struct {
	ID        int64         `json:"id"`
	Kind      AttributeKind `json:"-"`
	UserID    int64         `json:"-"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"-"`
}

// Tag and Ingredient share one shape and one repository.
type (
	Tag        = Attribute
	Ingredient = Attribute
)

// NormalizeAttributeName trims surrounding whitespace and applies Unicode NFC,
// so visually identical names typed on different keyboards match.
func NormalizeAttributeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
