package domain

import "time"

// Recipe field limits.
const (
	MaxRecipeTitleLength = 255
	MaxRecipeLinkLength  = 255
)

// Recipe is a user-owned recipe with ordered tag and ingredient sets.
// Every linked tag and ingredient has the same owner as the recipe.
type Recipe struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"-"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	TimeMinutes   int           `json:"time_minutes"`
	Price         Price         `json:"price"`
	Link          string        `json:"link"`
	Image         string        `json:"image,omitempty"` // path relative to the media root
	ImageBlurHash string        `json:"image_blurhash,omitempty"`
	Tags          []*Tag        `json:"tags"`
	Ingredients   []*Ingredient `json:"ingredients"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// InitTimestamps sets CreatedAt and UpdatedAt to now.
func (r *Recipe) InitTimestamps() {
	now := time.Now().UTC()
	r.CreatedAt = now
	r.UpdatedAt = now
}

// Touch bumps UpdatedAt.
func (r *Recipe) Touch() {
	r.UpdatedAt = time.Now().UTC()
}

// Attributes returns the linked set for kind.
func (r *Recipe) Attributes(kind AttributeKind) []*Attribute {
	if kind == KindIngredient {
		return r.Ingredients
	}
	return r.Tags
}

// SetAttributes replaces the linked set for kind.
func (r *Recipe) SetAttributes(kind AttributeKind, attrs []*Attribute) {
	if attrs == nil {
		attrs = []*Attribute{}
	}
	if kind == KindIngredient {
		r.Ingredients = attrs
		return
	}
	r.Tags = attrs
}

// RecipeFilter narrows a recipe list. Within one list any match is enough;
// when both are set a recipe must match both.
type RecipeFilter struct {
	TagIDs        []int64
	IngredientIDs []int64
}

// IDs returns the filter list for kind.
func (f RecipeFilter) IDs(kind AttributeKind) []int64 {
	if kind == KindIngredient {
		return f.IngredientIDs
	}
	return f.TagIDs
}
