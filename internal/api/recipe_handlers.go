package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/recipeapp/recipe-server/internal/domain"
	"github.com/recipeapp/recipe-server/internal/service"
)

func (s *Server) registerRecipeRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listRecipes",
		Method:      http.MethodGet,
		Path:        "/recipe/recipes/",
		Summary:     "List recipes",
		Description: "Returns the caller's recipes, newest first. Filter with comma-separated tag or ingredient ids.",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListRecipes)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createRecipe",
		Method:        http.MethodPost,
		Path:          "/recipe/recipes/",
		Summary:       "Create recipe",
		Description:   "Creates a recipe. Tags and ingredients are matched by name or created.",
		Tags:          []string{"Recipes"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "getRecipe",
		Method:      http.MethodGet,
		Path:        "/recipe/recipes/{id}/",
		Summary:     "Get recipe",
		Description: "Returns a recipe with its description and image",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "replaceRecipe",
		Method:      http.MethodPut,
		Path:        "/recipe/recipes/{id}/",
		Summary:     "Replace recipe",
		Description: "Full update. Title, time_minutes and price are required.",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleReplaceRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateRecipe",
		Method:      http.MethodPatch,
		Path:        "/recipe/recipes/{id}/",
		Summary:     "Update recipe",
		Description: "Partial update. A tags or ingredients list, even an empty one, replaces that set.",
		Tags:        []string{"Recipes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateRecipe)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteRecipe",
		Method:        http.MethodDelete,
		Path:          "/recipe/recipes/{id}/",
		Summary:       "Delete recipe",
		Description:   "Deletes a recipe and its image. Tags and ingredients are kept.",
		Tags:          []string{"Recipes"},
		Security:      []map[string][]string{{"bearer": {}}},
		DefaultStatus: http.StatusNoContent,
	}, s.handleDeleteRecipe)
}

// === DTOs ===

// AttributeResponse is a tag or ingredient in API responses.
type AttributeResponse struct {
	ID   int64  `json:"id" doc:"Attribute ID"`
	Name string `json:"name" doc:"Attribute name"`
}

// AttributeRef names a tag or ingredient inside a recipe write.
type AttributeRef struct {
	_    struct{} `json:"-" additionalProperties:"true"`
	Name string   `json:"name" doc:"Name; matched against the caller's existing entries"`
}

// RecipeSummary is the list representation of a recipe.
type RecipeSummary struct {
	ID          int64               `json:"id" doc:"Recipe ID"`
	Title       string              `json:"title" doc:"Title"`
	TimeMinutes int                 `json:"time_minutes" doc:"Preparation time in minutes"`
	Price       string              `json:"price" doc:"Price with two decimal places"`
	Link        string              `json:"link" doc:"External link"`
	Tags        []AttributeResponse `json:"tags" doc:"Linked tags"`
	Ingredients []AttributeResponse `json:"ingredients" doc:"Linked ingredients"`
}

// RecipeDetail adds the description and image to the summary.
type RecipeDetail struct {
	RecipeSummary
	Description   string  `json:"description" doc:"Description"`
	Image         *string `json:"image" doc:"Image URL, null when no image was uploaded"`
	ImageBlurHash string  `json:"image_blurhash,omitempty" doc:"BlurHash placeholder for the image"`
}

// RecipeBody is the request body for every recipe write. Unknown fields,
// including any owner field, are ignored.
type RecipeBody struct {
	_           struct{}       `json:"-" additionalProperties:"true"`
	Title       *string        `json:"title,omitempty" doc:"Title"`
	Description *string        `json:"description,omitempty" doc:"Description"`
	TimeMinutes *int           `json:"time_minutes,omitempty" doc:"Preparation time in minutes"`
	Price       *string        `json:"price,omitempty" doc:"Price as a decimal string, e.g. \"5.25\""`
	Link        *string        `json:"link,omitempty" doc:"External link"`
	Tags        []AttributeRef `json:"tags,omitempty" doc:"Tags by name"`
	Ingredients []AttributeRef `json:"ingredients,omitempty" doc:"Ingredients by name"`
}

// ListRecipesInput contains the list filters.
type ListRecipesInput struct {
	Tags        string `query:"tags" doc:"Comma-separated tag ids; any match"`
	Ingredients string `query:"ingredients" doc:"Comma-separated ingredient ids; any match"`
}

// ListRecipesOutput wraps the recipe list for Huma.
type ListRecipesOutput struct {
	Body []RecipeSummary
}

// CreateRecipeInput wraps the create request for Huma.
type CreateRecipeInput struct {
	Body RecipeBody
}

// RecipeIDInput identifies a recipe.
type RecipeIDInput struct {
	ID string `path:"id" doc:"Recipe ID"`
}

// WriteRecipeInput wraps PUT and PATCH requests for Huma.
type WriteRecipeInput struct {
	ID   string `path:"id" doc:"Recipe ID"`
	Body RecipeBody
}

// RecipeOutput wraps the recipe detail for Huma.
type RecipeOutput struct {
	Body RecipeDetail
}

// === Handlers ===

func (s *Server) handleListRecipes(ctx context.Context, input *ListRecipesInput) (*ListRecipesOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	tagIDs, err := parseIDList("tags", input.Tags)
	if err != nil {
		return nil, err
	}
	ingredientIDs, err := parseIDList("ingredients", input.Ingredients)
	if err != nil {
		return nil, err
	}

	recipes, err := s.services.Recipes.List(ctx, userID, domain.RecipeFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]RecipeSummary, len(recipes))
	for i, r := range recipes {
		resp[i] = mapRecipeSummary(r)
	}
	return &ListRecipesOutput{Body: resp}, nil
}

func (s *Server) handleCreateRecipe(ctx context.Context, input *CreateRecipeInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	body := input.Body
	recipe, err := s.services.Recipes.Create(ctx, userID, service.RecipeCreateRequest{
		Title:       deref(body.Title),
		Description: deref(body.Description),
		TimeMinutes: body.TimeMinutes,
		Price:       deref(body.Price),
		Link:        deref(body.Link),
		Tags:        toInputs(body.Tags),
		Ingredients: toInputs(body.Ingredients),
	})
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: mapRecipeDetail(recipe)}, nil
}

func (s *Server) handleGetRecipe(ctx context.Context, input *RecipeIDInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parsePathID(input.ID, "recipe")
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipes.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: mapRecipeDetail(recipe)}, nil
}

func (s *Server) handleReplaceRecipe(ctx context.Context, input *WriteRecipeInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parsePathID(input.ID, "recipe")
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipes.Replace(ctx, userID, id, toRecipeUpdate(input.Body))
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: mapRecipeDetail(recipe)}, nil
}

func (s *Server) handleUpdateRecipe(ctx context.Context, input *WriteRecipeInput) (*RecipeOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parsePathID(input.ID, "recipe")
	if err != nil {
		return nil, err
	}

	recipe, err := s.services.Recipes.Update(ctx, userID, id, toRecipeUpdate(input.Body))
	if err != nil {
		return nil, err
	}

	return &RecipeOutput{Body: mapRecipeDetail(recipe)}, nil
}

func (s *Server) handleDeleteRecipe(ctx context.Context, input *RecipeIDInput) (*struct{}, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}
	id, err := parsePathID(input.ID, "recipe")
	if err != nil {
		return nil, err
	}

	if err := s.services.Recipes.Delete(ctx, userID, id); err != nil {
		return nil, err
	}
	return nil, nil
}

// === Helpers ===

func toRecipeUpdate(body RecipeBody) service.RecipeUpdate {
	return service.RecipeUpdate{
		Title:       body.Title,
		Description: body.Description,
		TimeMinutes: body.TimeMinutes,
		Price:       body.Price,
		Link:        body.Link,
		Tags:        toInputs(body.Tags),
		Ingredients: toInputs(body.Ingredients),
	}
}

// toInputs keeps the nil/empty distinction: nil means the field was absent.
func toInputs(refs []AttributeRef) []service.AttributeInput {
	if refs == nil {
		return nil
	}
	out := make([]service.AttributeInput, len(refs))
	for i, r := range refs {
		out[i] = service.AttributeInput{Name: r.Name}
	}
	return out
}

func mapAttributes(attrs []*domain.Attribute) []AttributeResponse {
	out := make([]AttributeResponse, len(attrs))
	for i, a := range attrs {
		out[i] = AttributeResponse{ID: a.ID, Name: a.Name}
	}
	return out
}

func mapRecipeSummary(r *domain.Recipe) RecipeSummary {
	return RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.String(),
		Link:        r.Link,
		Tags:        mapAttributes(r.Tags),
		Ingredients: mapAttributes(r.Ingredients),
	}
}

func mapRecipeDetail(r *domain.Recipe) RecipeDetail {
	return RecipeDetail{
		RecipeSummary: mapRecipeSummary(r),
		Description:   r.Description,
		Image:         imageURL(r.Image),
		ImageBlurHash: r.ImageBlurHash,
	}
}

// imageURL returns the public URL for a media-relative path, or nil.
func imageURL(rel string) *string {
	if rel == "" {
		return nil
	}
	u := mediaPrefix + rel
	return &u
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
