package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/recipeapp/recipe-server/internal/auth"
	"github.com/recipeapp/recipe-server/internal/domain"
	domainerrors "github.com/recipeapp/recipe-server/internal/errors"
	"github.com/recipeapp/recipe-server/internal/media/images"
	"github.com/recipeapp/recipe-server/internal/store"
	"github.com/recipeapp/recipe-server/internal/store/sqlite"
)

// testEnv wires every service against a temporary store.
type testEnv struct {
	store       *sqlite.Store
	images      *images.Storage
	tokens      *auth.TokenService
	users       *UserService
	auth        *AuthService
	recipes     *RecipeService
	tags        *AttributeService
	ingredients *AttributeService
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	return setupTestWithStore(t, nil)
}

// setupTestWithStore lets a test wrap the store handed to the services.
func setupTestWithStore(t *testing.T, wrap func(store.Store) store.Store) *testEnv {
	t.Helper()
	tmpDir := t.TempDir()

	s, err := sqlite.Open(filepath.Join(tmpDir, "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	storage, err := images.NewStorageWithSubdir(filepath.Join(tmpDir, "media"), "uploads/recipe")
	require.NoError(t, err)

	tokens, err := auth.NewTokenService([]byte("0123456789abcdef0123456789abcdef"), time.Hour)
	require.NoError(t, err)

	var st store.Store = s
	if wrap != nil {
		st = wrap(s)
	}

	return &testEnv{
		store:       s,
		images:      storage,
		tokens:      tokens,
		users:       NewUserService(st, nil),
		auth:        NewAuthService(st, tokens, nil),
		recipes:     NewRecipeService(st, storage, nil),
		tags:        NewTagService(st, nil),
		ingredients: NewIngredientService(st, nil),
	}
}

// createUser inserts a user directly, skipping password hashing.
func (e *testEnv) createUser(t *testing.T, email string) *domain.User {
	t.Helper()
	u := &domain.User{Email: email, PasswordHash: "unused", IsActive: true}
	u.InitTimestamps()
	require.NoError(t, e.store.CreateUser(context.Background(), u))
	return u
}

func (e *testEnv) createRecipe(t *testing.T, userID int64, title string, tags, ingredients []string) *domain.Recipe {
	t.Helper()
	r, err := e.recipes.Create(context.Background(), userID, RecipeCreateRequest{
		Title:       title,
		TimeMinutes: ptr(10),
		Price:       "5.00",
		Tags:        inputs(tags...),
		Ingredients: inputs(ingredients...),
	})
	require.NoError(t, err)
	return r
}

func ptr[T any](v T) *T { return &v }

func inputs(names ...string) []AttributeInput {
	if names == nil {
		return nil
	}
	out := make([]AttributeInput, len(names))
	for i, n := range names {
		out[i] = AttributeInput{Name: n}
	}
	return out
}

func attrNames(attrs []*domain.Attribute) []string {
	out := make([]string, len(attrs))
	for i, a := range attrs {
		out[i] = a.Name
	}
	return out
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// fieldErrors returns the per-field details of a validation error.
func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var de *domainerrors.Error
	require.True(t, errors.As(err, &de), "expected domain error, got %v", err)
	require.Equal(t, domainerrors.CodeValidation, de.Code)
	details, ok := de.Details.(map[string]string)
	require.True(t, ok, "details: %#v", de.Details)
	return details
}

var emptyFilter = domain.RecipeFilter{}
