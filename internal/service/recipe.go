package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/recipeapp/recipe-server/internal/domain"
	domainerrors "github.com/recipeapp/recipe-server/internal/errors"
	"github.com/recipeapp/recipe-server/internal/media/images"
	"github.com/recipeapp/recipe-server/internal/store"
	"github.com/recipeapp/recipe-server/internal/validation"
)

// RecipeService manages the caller's recipes and their nested tags and ingredients.
type RecipeService struct {
	store     store.Store
	images    *images.Storage
	validator *validation.Validator
	logger    *slog.Logger
}

// NewRecipeService creates a new recipe service.
func NewRecipeService(store store.Store, imageStorage *images.Storage, logger *slog.Logger) *RecipeService {
	return &RecipeService{
		store:     store,
		images:    imageStorage,
		validator: validation.New(),
		logger:    orDiscard(logger),
	}
}

// RecipeCreateRequest contains the fields of a new recipe.
type RecipeCreateRequest struct {
	Title       string           `json:"title" validate:"notblank,max=255"`
	Description string           `json:"description"`
	TimeMinutes *int             `json:"time_minutes" validate:"required,gte=0"`
	Price       string           `json:"price" validate:"required,price"`
	Link        string           `json:"link" validate:"max=255"`
	Tags        []AttributeInput `json:"tags" validate:"dive"`
	Ingredients []AttributeInput `json:"ingredients" validate:"dive"`
}

// RecipeUpdate changes an existing recipe. Nil fields are left alone; a
// non-nil Tags or Ingredients, including an empty one, replaces that set.
type RecipeUpdate struct {
	Title       *string          `json:"title" validate:"omitnil,notblank,max=255"`
	Description *string          `json:"description"`
	TimeMinutes *int             `json:"time_minutes" validate:"omitnil,gte=0"`
	Price       *string          `json:"price" validate:"omitnil,price"`
	Link        *string          `json:"link" validate:"omitnil,max=255"`
	Tags        []AttributeInput `json:"tags" validate:"omitempty,dive"`
	Ingredients []AttributeInput `json:"ingredients" validate:"omitempty,dive"`
}

type recipeReplace struct {
	Title       *string `json:"title" validate:"required"`
	TimeMinutes *int    `json:"time_minutes" validate:"required"`
	Price       *string `json:"price" validate:"required"`
}

// List returns the caller's recipes, newest first, narrowed by filter.
func (s *RecipeService) List(ctx context.Context, callerID int64, filter domain.RecipeFilter) ([]*domain.Recipe, error) {
	recipes, err := s.store.ListRecipes(ctx, callerID, filter)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// Get returns one of the caller's recipes.
func (s *RecipeService) Get(ctx context.Context, callerID, id int64) (*domain.Recipe, error) {
	return s.lookup(ctx, s.store, callerID, id)
}

// Create stores a recipe owned by the caller along with its nested tags and
// ingredients. The whole write is one transaction.
func (s *RecipeService) Create(ctx context.Context, callerID int64, req RecipeCreateRequest) (*domain.Recipe, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	price, err := domain.ParsePrice(req.Price)
	if err != nil {
		return nil, domainerrors.FieldError("price", err.Error())
	}

	recipe := &domain.Recipe{
		UserID:      callerID,
		Title:       req.Title,
		Description: req.Description,
		TimeMinutes: *req.TimeMinutes,
		Price:       price,
		Link:        req.Link,
	}
	recipe.InitTimestamps()

	var tagRes, ingRes reconcileResult
	err = s.store.InTx(ctx, func(tx store.Store) error {
		if err := tx.CreateRecipe(ctx, recipe); err != nil {
			return err
		}
		var err error
		if tagRes, err = reconcileAttributes(ctx, tx, recipe, domain.KindTag, req.Tags); err != nil {
			return err
		}
		ingRes, err = reconcileAttributes(ctx, tx, recipe, domain.KindIngredient, req.Ingredients)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("recipe created",
		"recipe_id", recipe.ID,
		"user_id", callerID,
		"tags", tagRes.linked,
		"ingredients", ingRes.linked,
		"created_attributes", tagRes.created+ingRes.created,
	)
	return recipe, nil
}

// Replace is a full update: title, time_minutes and price are required.
// Omitted tags or ingredients still keep their current links.
func (s *RecipeService) Replace(ctx context.Context, callerID, id int64, req RecipeUpdate) (*domain.Recipe, error) {
	check := recipeReplace{Title: req.Title, TimeMinutes: req.TimeMinutes, Price: req.Price}
	if err := s.validator.Validate(check); err != nil {
		return nil, err
	}
	return s.Update(ctx, callerID, id, req)
}

// Update is a partial update. Ownership never changes.
func (s *RecipeService) Update(ctx context.Context, callerID, id int64, req RecipeUpdate) (*domain.Recipe, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var price domain.Price
	if req.Price != nil {
		var err error
		if price, err = domain.ParsePrice(*req.Price); err != nil {
			return nil, domainerrors.FieldError("price", err.Error())
		}
	}

	var recipe *domain.Recipe
	err := s.store.InTx(ctx, func(tx store.Store) error {
		var err error
		recipe, err = s.lookup(ctx, tx, callerID, id)
		if err != nil {
			return err
		}

		if req.Title != nil {
			recipe.Title = *req.Title
		}
		if req.Description != nil {
			recipe.Description = *req.Description
		}
		if req.TimeMinutes != nil {
			recipe.TimeMinutes = *req.TimeMinutes
		}
		if req.Price != nil {
			recipe.Price = price
		}
		if req.Link != nil {
			recipe.Link = *req.Link
		}
		recipe.Touch()

		if err := tx.UpdateRecipe(ctx, recipe); err != nil {
			return translateStoreError(err, "recipe")
		}

		if req.Tags != nil {
			if _, err := reconcileAttributes(ctx, tx, recipe, domain.KindTag, req.Tags); err != nil {
				return err
			}
		}
		if req.Ingredients != nil {
			if _, err := reconcileAttributes(ctx, tx, recipe, domain.KindIngredient, req.Ingredients); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("recipe updated",
		"recipe_id", recipe.ID,
		"user_id", callerID,
		"tags_replaced", req.Tags != nil,
		"ingredients_replaced", req.Ingredients != nil,
	)
	return recipe, nil
}

// Delete removes the recipe, its links and its image file. Tags and
// ingredients are kept.
func (s *RecipeService) Delete(ctx context.Context, callerID, id int64) error {
	var image string
	err := s.store.InTx(ctx, func(tx store.Store) error {
		recipe, err := s.lookup(ctx, tx, callerID, id)
		if err != nil {
			return err
		}
		image = recipe.Image
		return translateStoreError(tx.DeleteRecipe(ctx, id), "recipe")
	})
	if err != nil {
		return err
	}

	s.removeImage(image, id)
	s.logger.Info("recipe deleted", "recipe_id", id, "user_id", callerID)
	return nil
}

// UploadImage stores data as the recipe's image, replacing and deleting any
// previous file. data must decode as JPEG, PNG, GIF or WebP.
func (s *RecipeService) UploadImage(ctx context.Context, callerID, id int64, data []byte) (*domain.Recipe, error) {
	recipe, err := s.lookup(ctx, s.store, callerID, id)
	if err != nil {
		return nil, err
	}

	if len(data) == 0 {
		return nil, domainerrors.FieldError("image", "no file was submitted")
	}

	rel, img, err := s.images.Save(data)
	if err != nil {
		switch {
		case errors.Is(err, images.ErrUnsupportedFormat):
			return nil, domainerrors.FieldError("image",
				"upload a valid image; the file was either not an image or a corrupted image")
		case errors.Is(err, images.ErrImageTooLarge):
			return nil, domainerrors.FieldError("image",
				fmt.Sprintf("image too large, at most %d pixels per side and %d pixels in total",
					images.MaxDimension, images.MaxPixels))
		}
		return nil, fmt.Errorf("save image: %w", err)
	}

	hash, err := images.ComputeBlurHash(img)
	if err != nil {
		// The placeholder is optional.
		s.logger.Warn("failed to compute blurhash", "recipe_id", id, "error", err)
		hash = ""
	}

	previous := recipe.Image
	recipe.Image = rel
	recipe.ImageBlurHash = hash
	recipe.Touch()

	if err := s.store.UpdateRecipe(ctx, recipe); err != nil {
		s.removeImage(rel, id)
		return nil, translateStoreError(err, "recipe")
	}

	s.removeImage(previous, id)
	s.logger.Info("recipe image uploaded",
		"recipe_id", id,
		"user_id", callerID,
		"image", rel,
		"size", len(data),
	)
	return recipe, nil
}

func (s *RecipeService) removeImage(rel string, recipeID int64) {
	if rel == "" {
		return
	}
	if err := s.images.Delete(rel); err != nil {
		s.logger.Warn("failed to delete image file", "recipe_id", recipeID, "image", rel, "error", err)
	}
}

// lookup fetches by id and then applies the access policy.
func (s *RecipeService) lookup(ctx context.Context, st store.Store, callerID, id int64) (*domain.Recipe, error) {
	recipe, err := st.GetRecipe(ctx, id)
	if err != nil {
		return nil, translateStoreError(err, "recipe")
	}
	if authorize(callerID, recipe.UserID) == hidden {
		return nil, notFound("recipe")
	}
	return recipe, nil
}
