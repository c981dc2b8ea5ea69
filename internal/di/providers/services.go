package providers

import (
	"github.com/samber/do/v2"

	"github.com/recipeapp/recipe-server/internal/auth"
	"github.com/recipeapp/recipe-server/internal/logger"
	"github.com/recipeapp/recipe-server/internal/media/images"
	"github.com/recipeapp/recipe-server/internal/service"
)

// TagService and IngredientService share a type, so each kind gets its own
// named wrapper for the injector.
type (
	// TagService is the AttributeService for tags.
	TagService struct{ *service.AttributeService }
	// IngredientService is the AttributeService for ingredients.
	IngredientService struct{ *service.AttributeService }
)

// ProvideUserService provides the user account service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideRecipeService provides the recipe service.
func ProvideRecipeService(i do.Injector) (*service.RecipeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	storage := do.MustInvoke[*images.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRecipeService(storeHandle.Store, storage, log.Logger), nil
}

// ProvideTagService provides the tag service.
func ProvideTagService(i do.Injector) (*TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return &TagService{service.NewTagService(storeHandle.Store, log.Logger)}, nil
}

// ProvideIngredientService provides the ingredient service.
func ProvideIngredientService(i do.Injector) (*IngredientService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return &IngredientService{service.NewIngredientService(storeHandle.Store, log.Logger)}, nil
}
