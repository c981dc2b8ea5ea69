package api

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipeapp/recipe-server/internal/auth"
	"github.com/recipeapp/recipe-server/internal/http/response"
	"github.com/recipeapp/recipe-server/internal/media/images"
	"github.com/recipeapp/recipe-server/internal/ratelimit"
	"github.com/recipeapp/recipe-server/internal/service"
	"github.com/recipeapp/recipe-server/internal/store/sqlite"
)

const testPassword = "testpass123"

// testServer wraps the API server with handles tests need.
type testServer struct {
	*Server
	api   humatest.TestAPI
	store *sqlite.Store
	media *images.Storage
}

// setupTestServer creates a server backed by a temporary SQLite database
// and media directory, without rate limiting.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	return setupTestServerWithLimiter(t, nil)
}

func setupTestServerWithLimiter(t *testing.T, limiter *ratelimit.KeyedRateLimiter) *testServer {
	t.Helper()
	tmpDir := t.TempDir()

	st, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	media, err := images.NewStorageWithSubdir(filepath.Join(tmpDir, "media"), "uploads/recipe")
	require.NoError(t, err)

	authKey, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService(authKey, time.Hour)
	require.NoError(t, err)

	services := &Services{
		Users:       service.NewUserService(st, nil),
		Auth:        service.NewAuthService(st, tokens, nil),
		Recipes:     service.NewRecipeService(st, media, nil),
		Tags:        service.NewTagService(st, nil),
		Ingredients: service.NewIngredientService(st, nil),
	}

	s := NewServer(services, media, st, limiter, Options{MaxUploadBytes: 1 << 20}, nil)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.API()),
		store:  st,
		media:  media,
	}
}

// register creates a user with testPassword and returns an Authorization header arg.
func (ts *testServer) register(t *testing.T, email string) string {
	t.Helper()

	resp := ts.api.Post("/user/create", map[string]any{
		"email":    email,
		"password": testPassword,
		"name":     "Test User",
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	resp = ts.api.Post("/user/token", map[string]any{
		"email":    email,
		"password": testPassword,
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var tok TokenResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tok))
	require.NotEmpty(t, tok.Token)

	return "Authorization: Bearer " + tok.Token
}

// createRecipe posts body as a new recipe and returns the detail.
func (ts *testServer) createRecipe(t *testing.T, authHeader string, body map[string]any) RecipeDetail {
	t.Helper()

	if _, ok := body["time_minutes"]; !ok {
		body["time_minutes"] = 10
	}
	if _, ok := body["price"]; !ok {
		body["price"] = "5.25"
	}

	resp := ts.api.Post("/recipe/recipes/", authHeader, body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var detail RecipeDetail
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &detail))
	return detail
}

func recipePath(id int64) string {
	return "/recipe/recipes/" + strconv.FormatInt(id, 10) + "/"
}

// decodeError parses an error body.
func decodeError(t *testing.T, body []byte) response.ErrorBody {
	t.Helper()

	var e response.ErrorBody
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e
}

// errorDetails returns the details object of an error body as a string map.
func errorDetails(t *testing.T, body []byte) map[string]string {
	t.Helper()

	var e struct {
		Details map[string]string `json:"details"`
	}
	require.NoError(t, json.Unmarshal(body, &e), string(body))
	return e.Details
}

func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := range 16 {
		for x := range 16 {
			img.Set(x, y, color.RGBA{R: uint8(x * 16), G: uint8(y * 16), B: 128, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestServer_NotFoundIsJSON(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/nope")

	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, resp.Body.Bytes()).Code)
}

func TestServer_SecurityHeaders(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")

	assert.Equal(t, "nosniff", resp.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", resp.Header().Get("X-Frame-Options"))
	assert.Equal(t, "same-origin", resp.Header().Get("Referrer-Policy"))
}

func TestServer_CORSPreflight(t *testing.T) {
	ts := setupTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/recipe/recipes/", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()

	ts.ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEqual(t, http.StatusUnauthorized, w.Code)
}

func TestServer_MetricsEndpoint(t *testing.T) {
	ts := setupTestServer(t)
	ts.api.Get("/health")

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	ts.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "recipe_http_requests_total"))
}

func TestServer_OpenAPIListsOperations(t *testing.T) {
	ts := setupTestServer(t)

	oapi := ts.API().OpenAPI()
	for _, path := range []string{
		"/user/create", "/user/token", "/user/me",
		"/recipe/recipes/", "/recipe/recipes/{id}/",
		"/recipe/tags/", "/recipe/tags/{id}/",
		"/recipe/ingredients/", "/recipe/ingredients/{id}/",
	} {
		assert.Contains(t, oapi.Paths, path)
	}
}
