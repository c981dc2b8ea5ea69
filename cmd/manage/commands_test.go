package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/recipeapp/recipe-server/internal/domain"
	"github.com/recipeapp/recipe-server/internal/store/sqlite"
)

// runManage runs the app against dataDir and returns stdout.
func runManage(t *testing.T, ctx context.Context, dataDir string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut

	full := append([]string{name,
		"--" + dataPathFlag, dataDir,
		"--" + mediaPathFlag, filepath.Join(dataDir, "media"),
	}, args...)
	err := app.Run(ctx, full)
	return out.String(), err
}

func openStore(t *testing.T, dataDir string) *sqlite.Store {
	t.Helper()

	st, err := sqlite.Open(filepath.Join(dataDir, "recipes.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestWaitForDB_Available(t *testing.T) {
	dataDir := t.TempDir()

	out, err := runManage(t, context.Background(), dataDir, "wait-for-db")

	require.NoError(t, err)
	assert.Equal(t, "Waiting for database...\nDatabase available!\n", out)
}

func TestWaitForDB_Unavailable(t *testing.T) {
	// The parent directory does not exist, so every ping fails.
	dataDir := filepath.Join(t.TempDir(), "missing", "nested")

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	out, err := runManage(t, ctx, dataDir, "wait-for-db", "--interval", "10ms")

	require.Error(t, err)
	assert.Contains(t, out, "Database unavailable")
	assert.NotContains(t, out, "Database available!")
}

func TestCreateSuperuser(t *testing.T) {
	dataDir := t.TempDir()

	out, err := runManage(t, context.Background(), dataDir,
		"create-superuser", "--email", "Admin@Example.COM", "--password", "secret123", "--name", "Admin")

	require.NoError(t, err)
	assert.Contains(t, out, "Superuser Admin@example.com created.")

	user, err := openStore(t, dataDir).GetUserByEmail(context.Background(), domain.NormalizeEmail("Admin@Example.COM"))
	require.NoError(t, err)
	assert.True(t, user.IsStaff)
	assert.True(t, user.IsSuperuser)
	assert.Equal(t, "Admin", user.Name)
}

func TestCreateSuperuser_RequiresFlags(t *testing.T) {
	_, err := runManage(t, context.Background(), t.TempDir(), "create-superuser", "--email", "admin@example.com")

	assert.Error(t, err)
}

func TestCreateSuperuser_ShortPassword(t *testing.T) {
	_, err := runManage(t, context.Background(), t.TempDir(),
		"create-superuser", "--email", "admin@example.com", "--password", "pw")

	assert.Error(t, err)
}

func TestSeed(t *testing.T) {
	dataDir := t.TempDir()

	out, err := runManage(t, context.Background(), dataDir, "seed")

	require.NoError(t, err)
	assert.Contains(t, out, "Created user demo@example.com")
	assert.Contains(t, out, "Thai Green Curry")

	st := openStore(t, dataDir)
	user, err := st.GetUserByEmail(context.Background(), "demo@example.com")
	require.NoError(t, err)

	recipes, err := st.ListRecipes(context.Background(), user.ID, domain.RecipeFilter{})
	require.NoError(t, err)
	assert.Len(t, recipes, len(seedRecipes))

	// A second run refuses to duplicate the demo user.
	_, err = runManage(t, context.Background(), dataDir, "seed")
	assert.Error(t, err)
}

func TestDeleteUser(t *testing.T) {
	dataDir := t.TempDir()

	_, err := runManage(t, context.Background(), dataDir, "seed", "--email", "cook@example.com")
	require.NoError(t, err)

	out, err := runManage(t, context.Background(), dataDir, "delete-user", "--email", "cook@example.com")
	require.NoError(t, err)
	assert.Contains(t, out, "User cook@example.com deleted.")

	_, err = openStore(t, dataDir).GetUserByEmail(context.Background(), "cook@example.com")
	assert.Error(t, err)

	_, err = runManage(t, context.Background(), dataDir, "delete-user", "--email", "cook@example.com")
	assert.Error(t, err)
}

func TestPruneTokens(t *testing.T) {
	out, err := runManage(t, context.Background(), t.TempDir(), "prune-tokens")

	require.NoError(t, err)
	assert.Equal(t, "Removed 0 expired tokens.\n", out)
}
