package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/recipeapp/recipe-server/internal/auth"
	"github.com/recipeapp/recipe-server/internal/domain"
	domainerrors "github.com/recipeapp/recipe-server/internal/errors"
	"github.com/recipeapp/recipe-server/internal/store"
	"github.com/recipeapp/recipe-server/internal/validation"
)

// UserService manages accounts: registration, the caller's own profile and
// superuser creation from the CLI.
type UserService struct {
	store     store.Store
	validator *validation.Validator
	logger    *slog.Logger
}

// NewUserService creates a new user service.
func NewUserService(store store.Store, logger *slog.Logger) *UserService {
	return &UserService{
		store:     store,
		validator: validation.New(),
		logger:    orDiscard(logger),
	}
}

// RegisterRequest contains new account data.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=5,max=1024"`
	Name     string `json:"name" validate:"max=255"`
}

// ProfileUpdate changes the caller's own account. Nil fields are left alone.
type ProfileUpdate struct {
	Name     *string `json:"name" validate:"omitnil,max=255"`
	Password *string `json:"password" validate:"omitnil,min=5,max=1024"`
}

// Register creates an active, unprivileged account.
func (s *UserService) Register(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	u, err := s.create(ctx, req, false)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user registered", "user_id", u.ID)
	return u, nil
}

// CreateSuperuser creates an account with staff and superuser flags set.
func (s *UserService) CreateSuperuser(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	u, err := s.create(ctx, req, true)
	if err != nil {
		return nil, err
	}
	s.logger.Info("superuser created", "user_id", u.ID)
	return u, nil
}

func (s *UserService) create(ctx context.Context, req RegisterRequest, superuser bool) (*domain.User, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		Email:        req.Email,
		PasswordHash: hash,
		Name:         req.Name,
		IsActive:     true,
		IsStaff:      superuser,
		IsSuperuser:  superuser,
	}
	u.InitTimestamps()

	if err := s.store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.FieldError("email", "user with this email already exists")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetProfile returns the caller's account.
func (s *UserService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err, "user")
	}
	return u, nil
}

// UpdateProfile applies req to the caller's account. The email cannot change.
func (s *UserService) UpdateProfile(ctx context.Context, userID int64, req ProfileUpdate) (*domain.User, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, translateStoreError(err, "user")
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = hash
	}
	u.Touch()

	if err := s.store.UpdateUser(ctx, u); err != nil {
		return nil, translateStoreError(err, "user")
	}

	s.logger.Info("profile updated",
		"user_id", userID,
		"password_changed", req.Password != nil,
	)
	return u, nil
}

// DeleteUser removes the account with email. Tokens, recipes, tags and
// ingredients go with it.
func (s *UserService) DeleteUser(ctx context.Context, email string) error {
	u, err := s.store.GetUserByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		return translateStoreError(err, "user")
	}
	if err := s.store.DeleteUser(ctx, u.ID); err != nil {
		return translateStoreError(err, "user")
	}

	s.logger.Info("user deleted", "user_id", u.ID)
	return nil
}
