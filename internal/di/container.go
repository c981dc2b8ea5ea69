// Package di provides dependency injection configuration for the recipe server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/recipeapp/recipe-server/internal/api"
	"github.com/recipeapp/recipe-server/internal/auth"
	"github.com/recipeapp/recipe-server/internal/config"
	"github.com/recipeapp/recipe-server/internal/di/providers"
	"github.com/recipeapp/recipe-server/internal/logger"
	"github.com/recipeapp/recipe-server/internal/media/images"
	"github.com/recipeapp/recipe-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database and storage
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideImageStorage)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)
	do.Provide(injector, providers.ProvideAuthRateLimiter)

	// Business services
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideRecipeService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvideIngredientService)

	// Workers
	do.Provide(injector, providers.ProvideTokenCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideAPIServer)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and starts the HTTP server.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)
	if _, err := do.Invoke[providers.AuthKey](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*images.Storage](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*providers.RateLimiterHandle](injector)

	// Business services
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.RecipeService](injector)
	_ = do.MustInvoke[*providers.TagService](injector)
	_ = do.MustInvoke[*providers.IngredientService](injector)

	// Workers
	_ = do.MustInvoke[*providers.TokenCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*api.Server](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
