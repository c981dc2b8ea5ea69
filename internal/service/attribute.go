package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/recipeapp/recipe-server/internal/domain"
	"github.com/recipeapp/recipe-server/internal/store"
	"github.com/recipeapp/recipe-server/internal/validation"
)

// AttributeService manages one kind of user-owned catalog entry: tags or
// ingredients. Entries are created through recipe writes; this service lists,
// renames and deletes them.
type AttributeService struct {
	kind      domain.AttributeKind
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAttributeService creates a service for kind.
func NewAttributeService(kind domain.AttributeKind, store store.Store, logger *slog.Logger) *AttributeService {
	return &AttributeService{
		kind:      kind,
		store:     store,
		validator: validation.New(),
		logger:    orDiscard(logger),
	}
}

// NewTagService creates the tag service.
func NewTagService(store store.Store, logger *slog.Logger) *AttributeService {
	return NewAttributeService(domain.KindTag, store, logger)
}

// NewIngredientService creates the ingredient service.
func NewIngredientService(store store.Store, logger *slog.Logger) *AttributeService {
	return NewAttributeService(domain.KindIngredient, store, logger)
}

// Kind returns the attribute kind this service manages.
func (s *AttributeService) Kind() domain.AttributeKind {
	return s.kind
}

// AttributeUpdate renames an attribute. Nil leaves the name alone.
type AttributeUpdate struct {
	Name *string `json:"name" validate:"omitnil,notblank,max=255"`
}

type attributeReplace struct {
	Name *string `json:"name" validate:"required"`
}

// List returns the caller's attributes, name descending.
func (s *AttributeService) List(ctx context.Context, callerID int64, assignedOnly bool) ([]*domain.Attribute, error) {
	attrs, err := s.store.ListAttributes(ctx, s.kind, callerID, assignedOnly)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.kind, err)
	}
	return attrs, nil
}

// Get returns one of the caller's attributes.
func (s *AttributeService) Get(ctx context.Context, callerID, id int64) (*domain.Attribute, error) {
	return s.lookup(ctx, s.store, callerID, id)
}

// Replace is a full update: name is required.
func (s *AttributeService) Replace(ctx context.Context, callerID, id int64, req AttributeUpdate) (*domain.Attribute, error) {
	if err := s.validator.Validate(attributeReplace{Name: req.Name}); err != nil {
		return nil, err
	}
	return s.Update(ctx, callerID, id, req)
}

// Update is a partial update.
func (s *AttributeService) Update(ctx context.Context, callerID, id int64, req AttributeUpdate) (*domain.Attribute, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	var attr *domain.Attribute
	err := s.store.InTx(ctx, func(tx store.Store) error {
		var err error
		attr, err = s.lookup(ctx, tx, callerID, id)
		if err != nil {
			return err
		}
		if req.Name == nil {
			return nil
		}
		attr.Name = domain.NormalizeAttributeName(*req.Name)
		return translateStoreError(tx.UpdateAttribute(ctx, attr), s.kind.Label())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(s.kind.Label()+" updated", "id", attr.ID, "user_id", callerID)
	return attr, nil
}

// Delete removes the attribute and unlinks it from every recipe.
func (s *AttributeService) Delete(ctx context.Context, callerID, id int64) error {
	err := s.store.InTx(ctx, func(tx store.Store) error {
		if _, err := s.lookup(ctx, tx, callerID, id); err != nil {
			return err
		}
		return translateStoreError(tx.DeleteAttribute(ctx, s.kind, id), s.kind.Label())
	})
	if err != nil {
		return err
	}

	s.logger.Info(s.kind.Label()+" deleted", "id", id, "user_id", callerID)
	return nil
}

// lookup fetches by id and then applies the access policy.
func (s *AttributeService) lookup(ctx context.Context, st store.Store, callerID, id int64) (*domain.Attribute, error) {
	attr, err := st.GetAttribute(ctx, s.kind, id)
	if err != nil {
		return nil, translateStoreError(err, s.kind.Label())
	}
	if authorize(callerID, attr.UserID) == hidden {
		return nil, notFound(s.kind.Label())
	}
	return attr, nil
}
