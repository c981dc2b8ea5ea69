package api

import (
	"github.com/recipeapp/recipe-server/internal/service"
)

// Services groups all business logic services used by the API server.
type Services struct {
	Users       *service.UserService
	Auth        *service.AuthService
	Recipes     *service.RecipeService
	Tags        *service.AttributeService
	Ingredients *service.AttributeService
}
