package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(attrs []AttributeResponse) []string {
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = a.Name
	}
	return out
}

func listRecipes(t *testing.T, ts *testServer, authHeader, query string) []RecipeSummary {
	t.Helper()

	resp := ts.api.Get("/recipe/recipes/"+query, authHeader)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var list []RecipeSummary
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &list))
	return list
}

func recipeIDs(list []RecipeSummary) []int64 {
	out := make([]int64, len(list))
	for i, r := range list {
		out[i] = r.ID
	}
	return out
}

func TestRecipes_RequireAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/recipe/recipes/")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Post("/recipe/recipes/", map[string]any{"title": "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateRecipe(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.register(t, "test@example.com")

	recipe := ts.createRecipe(t, authHeader, map[string]any{
		"title":        "Thai Curry",
		"description":  "Spicy.",
		"time_minutes": 30,
		"price":        "5.50",
		"link":         "https://example.com/curry",
		"tags":         []map[string]string{{"name": "Thai"}, {"name": "Dinner"}, {"name": "Thai"}},
		"ingredients":  []map[string]string{{"name": "Coconut Milk"}},
		"user":         999,
	})

	assert.NotZero(t, recipe.ID)
	assert.Equal(t, "Thai Curry", recipe.Title)
	assert.Equal(t, "Spicy.", recipe.Description)
	assert.Equal(t, 30, recipe.TimeMinutes)
	assert.Equal(t, "5.50", recipe.Price)
	assert.Equal(t, "https://example.com/curry", recipe.Link)
	assert.Equal(t, []string{"Thai", "Dinner"}, names(recipe.Tags))
	assert.Equal(t, []string{"Coconut Milk"}, names(recipe.Ingredients))
	assert.Nil(t, recipe.Image)

	// The owner is the caller, whatever the body says.
	stored, err := ts.store.GetRecipe(t.Context(), recipe.ID)
	require.NoError(t, err)
	user, err := ts.store.GetUserByEmail(t.Context(), "test@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, stored.UserID)
}

func TestCreateRecipe_ReusesExistingTags(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.register(t, "test@example.com")

	first := ts.createRecipe(t, authHeader, map[string]any{
		"title": "Pancakes",
		"tags":  []map[string]string{{"name": "Breakfast"}},
	})
	second := ts.createRecipe(t, authHeader, map[string]any{
		"title": "Omelette",
		"tags":  []map[string]string{{"name": "Breakfast"}, {"name": "Eggs"}},
	})

	assert.Equal(t, first.Tags[0].ID, second.Tags[0].ID)

	resp := ts.api.Get("/recipe/tags/", authHeader)
	require.Equal(t, http.StatusOK, resp.Code)
	var tags []AttributeResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tags))
	assert.Len(t, tags, 2)
}

func TestCreateRecipe_Validation(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.register(t, "test@example.com")

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing title", map[string]any{"time_minutes": 5, "price": "1.00"}, "title"},
		{"missing time", map[string]any{"title": "x", "price": "1.00"}, "time_minutes"},
		{"missing price", map[string]any{"title": "x", "time_minutes": 5}, "price"},
		{"bad price", map[string]any{"title": "x", "time_minutes": 5, "price": "1.234"}, "price"},
		{"numeric price", map[string]any{"title": "x", "time_minutes": 5, "price": 1.5}, "price"},
		{"negative time", map[string]any{"title": "x", "time_minutes": -1, "price": "1.00"}, "time_minutes"},
		{"blank tag", map[string]any{"title": "x", "time_minutes": 5, "price": "1.00", "tags": []map[string]string{{"name": " "}}}, "tags[0].name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Post("/recipe/recipes/", authHeader, tt.body)

			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			assert.Equal(t, "VALIDATION", decodeError(t, resp.Body.Bytes()).Code)
			assert.Contains(t, errorDetails(t, resp.Body.Bytes()), tt.field)
		})
	}

	assert.Empty(t, listRecipes(t, ts, authHeader, ""))
}

func TestListRecipes_OwnerScopedNewestFirst(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "alice@example.com")
	bob := ts.register(t, "bob@example.com")

	r1 := ts.createRecipe(t, alice, map[string]any{"title": "One", "description": "hidden in lists"})
	r2 := ts.createRecipe(t, alice, map[string]any{"title": "Two"})
	ts.createRecipe(t, bob, map[string]any{"title": "Bob's"})

	list := listRecipes(t, ts, alice, "")
	assert.Equal(t, []int64{r2.ID, r1.ID}, recipeIDs(list))

	resp := ts.api.Get("/recipe/recipes/", alice)
	var raw []map[string]any
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &raw))
	require.Len(t, raw, 2)
	assert.NotContains(t, raw[0], "description")
	assert.NotContains(t, raw[0], "image")
	assert.Equal(t, "5.25", raw[0]["price"])
}

func TestListRecipes_Filters(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.register(t, "test@example.com")

	vegan := ts.createRecipe(t, authHeader, map[string]any{
		"title":       "Salad",
		"tags":        []map[string]string{{"name": "Vegan"}},
		"ingredients": []map[string]string{{"name": "Lettuce"}},
	})
	dessert := ts.createRecipe(t, authHeader, map[string]any{
		"title":       "Cake",
		"tags":        []map[string]string{{"name": "Dessert"}, {"name": "Vegan"}},
		"ingredients": []map[string]string{{"name": "Flour"}},
	})
	plain := ts.createRecipe(t, authHeader, map[string]any{"title": "Toast"})

	veganID := vegan.Tags[0].ID
	dessertID := dessert.Tags[0].ID
	flourID := dessert.Ingredients[0].ID
	lettuceID := vegan.Ingredients[0].ID

	tests := []struct {
		name  string
		query string
		want  []int64
	}{
		{"none", "", []int64{plain.ID, dessert.ID, vegan.ID}},
		{"one tag", fmt.Sprintf("?tags=%d", dessertID), []int64{dessert.ID}},
		{"any tag without duplicates", fmt.Sprintf("?tags=%d,%d", veganID, dessertID), []int64{dessert.ID, vegan.ID}},
		{"ingredient", fmt.Sprintf("?ingredients=%d", lettuceID), []int64{vegan.ID}},
		{"tags and ingredients", fmt.Sprintf("?tags=%d&ingredients=%d", veganID, flourID), []int64{dessert.ID}},
		{"unknown id", "?tags=99999", []int64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recipeIDs(listRecipes(t, ts, authHeader, tt.query)))
		})
	}
}

func TestListRecipes_BadFilter(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.register(t, "test@example.com")

	resp := ts.api.Get("/recipe/recipes/?tags=1,abc", authHeader)

	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Contains(t, errorDetails(t, resp.Body.Bytes()), "tags")
}

func TestGetRecipe(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "alice@example.com")
	bob := ts.register(t, "bob@example.com")

	recipe := ts.createRecipe(t, alice, map[string]any{"title": "Soup", "description": "Warm."})

	resp := ts.api.Get(recipePath(recipe.ID), alice)
	require.Equal(t, http.StatusOK, resp.Code)
	var detail RecipeDetail
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &detail))
	assert.Equal(t, "Warm.", detail.Description)

	// Another user's recipe looks missing.
	resp = ts.api.Get(recipePath(recipe.ID), bob)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body.Bytes()).Code)

	resp = ts.api.Get(recipePath(99999), alice)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestNonIntegerIDs_NotFound(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.register(t, "test@example.com")

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/recipe/recipes/abc/"},
		{http.MethodPatch, "/recipe/recipes/abc/"},
		{http.MethodDelete, "/recipe/recipes/abc/"},
		{http.MethodGet, "/recipe/tags/abc/"},
		{http.MethodDelete, "/recipe/ingredients/1.5/"},
		{http.MethodPost, "/recipe/recipes/abc/upload-image/"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var resp *httptest.ResponseRecorder
			if tt.method == http.MethodPatch {
				resp = ts.api.Do(tt.method, tt.path, authHeader, map[string]any{"title": "x"})
			} else {
				resp = ts.api.Do(tt.method, tt.path, authHeader)
			}

			assert.Equal(t, http.StatusNotFound, resp.Code, resp.Body.String())
			assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body.Bytes()).Code)
		})
	}
}

func TestUpdateRecipe_Partial(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.register(t, "test@example.com")

	recipe := ts.createRecipe(t, authHeader, map[string]any{
		"title":       "Chili",
		"tags":        []map[string]string{{"name": "Spicy"}},
		"ingredients": []map[string]string{{"name": "Beans"}},
	})

	resp := ts.api.Patch(recipePath(recipe.ID), authHeader, map[string]any{
		"title": "Chili con Carne",
		"tags":  []map[string]string{{"name": "Dinner"}},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var detail RecipeDetail
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &detail))
	assert.Equal(t, "Chili con Carne", detail.Title)
	assert.Equal(t, "5.25", detail.Price)
	assert.Equal(t, []string{"Dinner"}, names(detail.Tags))
	assert.Equal(t, []string{"Beans"}, names(detail.Ingredients))

	// An empty list clears the set.
	resp = ts.api.Patch(recipePath(recipe.ID), authHeader, map[string]any{"ingredients": []any{}})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &detail))
	assert.Empty(t, detail.Ingredients)
	assert.Equal(t, []string{"Dinner"}, names(detail.Tags))

	// The replaced tag still exists.
	resp = ts.api.Get("/recipe/tags/", authHeader)
	var tags []AttributeResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tags))
	assert.Equal(t, []string{"Spicy", "Dinner"}, names(tags))
}

func TestReplaceRecipe(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.register(t, "test@example.com")

	recipe := ts.createRecipe(t, authHeader, map[string]any{
		"title": "Stew",
		"link":  "https://example.com/stew",
		"tags":  []map[string]string{{"name": "Winter"}},
	})

	resp := ts.api.Put(recipePath(recipe.ID), authHeader, map[string]any{"title": "Stew"})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	details := errorDetails(t, resp.Body.Bytes())
	assert.Contains(t, details, "time_minutes")
	assert.Contains(t, details, "price")

	resp = ts.api.Put(recipePath(recipe.ID), authHeader, map[string]any{
		"title":        "Beef Stew",
		"time_minutes": 90,
		"price":        "12.00",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var detail RecipeDetail
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &detail))
	assert.Equal(t, "Beef Stew", detail.Title)
	assert.Equal(t, 90, detail.TimeMinutes)
	assert.Equal(t, "12.00", detail.Price)
	assert.Equal(t, []string{"Winter"}, names(detail.Tags))
}

func TestUpdateRecipe_OtherUser(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.register(t, "alice@example.com")
	bob := ts.register(t, "bob@example.com")

	recipe := ts.createRecipe(t, alice, map[string]any{"title": "Mine"})

	resp := ts.api.Patch(recipePath(recipe.ID), bob, map[string]any{"title": "Stolen"})
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete(recipePath(recipe.ID), bob)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get(recipePath(recipe.ID), alice)
	var detail RecipeDetail
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &detail))
	assert.Equal(t, "Mine", detail.Title)
}

func TestDeleteRecipe(t *testing.T) {
	ts := setupTestServer(t)
	authHeader := ts.register(t, "test@example.com")

	recipe := ts.createRecipe(t, authHeader, map[string]any{
		"title": "Bread",
		"tags":  []map[string]string{{"name": "Baking"}},
	})

	resp := ts.api.Delete(recipePath(recipe.ID), authHeader)
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Empty(t, resp.Body.Bytes())

	resp = ts.api.Get(recipePath(recipe.ID), authHeader)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// Tags survive their recipes.
	resp = ts.api.Get("/recipe/tags/", authHeader)
	var tags []AttributeResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tags))
	assert.Equal(t, []string{"Baking"}, names(tags))
}
