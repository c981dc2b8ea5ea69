package providers

import (
	"fmt"

	"github.com/samber/do/v2"

	"github.com/recipeapp/recipe-server/internal/config"
	"github.com/recipeapp/recipe-server/internal/logger"
	"github.com/recipeapp/recipe-server/internal/media/images"
)

// recipeImageSubdir is where recipe uploads live under the media root.
const recipeImageSubdir = "uploads/recipe"

// ProvideImageStorage provides storage for uploaded recipe images.
func ProvideImageStorage(i do.Injector) (*images.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := images.NewStorageWithSubdir(cfg.Storage.MediaPath, recipeImageSubdir)
	if err != nil {
		return nil, fmt.Errorf("recipe image storage: %w", err)
	}

	log.Info("Image storage initialized", "root", storage.Root(), "subdir", recipeImageSubdir)

	return storage, nil
}
