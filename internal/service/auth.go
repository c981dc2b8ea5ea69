package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/recipeapp/recipe-server/internal/auth"
	"github.com/recipeapp/recipe-server/internal/domain"
	domainerrors "github.com/recipeapp/recipe-server/internal/errors"
	"github.com/recipeapp/recipe-server/internal/id"
	"github.com/recipeapp/recipe-server/internal/store"
)

// AuthService issues bearer tokens for credentials and resolves tokens back
// to active users.
type AuthService struct {
	store        store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
	now          func() time.Time
}

// NewAuthService creates a new authentication service.
func NewAuthService(store store.Store, tokenService *auth.TokenService, logger *slog.Logger) *AuthService {
	return &AuthService{
		store:        store,
		tokenService: tokenService,
		logger:       orDiscard(logger),
		now:          time.Now,
	}
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"-"`
}

// Login exchanges credentials for a new token. Every failure, whether the
// email is unknown, the password wrong or empty, or the account inactive,
// returns the same ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email := domain.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		auth.BurnVerify(req.Password)
		return nil, domainerrors.ErrInvalidCredentials
	}

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			// Spend the same time as a real check.
			auth.BurnVerify(req.Password)
			return nil, domainerrors.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) || !user.CanLogin() {
		return nil, domainerrors.ErrInvalidCredentials
	}

	tokenID, err := id.TokenID()
	if err != nil {
		return nil, err
	}
	tokenString, expiresAt, err := s.tokenService.Seal(user.ID, tokenID)
	if err != nil {
		return nil, fmt.Errorf("seal token: %w", err)
	}

	now := s.now().UTC()
	record := &domain.Token{
		ID:        tokenID,
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: expiresAt,
	}
	if err := s.store.CreateToken(ctx, record); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	// Log but don't fail login.
	user.LastLogin = &now
	user.Touch()
	if err := s.store.UpdateUser(ctx, user); err != nil {
		s.logger.Warn("failed to update last login time",
			"user_id", user.ID,
			"error", err,
		)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return &LoginResponse{Token: tokenString, ExpiresAt: expiresAt}, nil
}

// VerifyToken resolves a bearer token to its active user. The token must
// decrypt, its record must still exist for the same user, and it must not
// have expired.
func (s *AuthService) VerifyToken(ctx context.Context, tokenString string) (*domain.User, error) {
	claims, err := s.tokenService.Open(tokenString)
	if err != nil {
		return nil, domainerrors.Unauthorized("invalid token")
	}

	record, err := s.store.GetToken(ctx, claims.TokenID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("invalid token")
		}
		return nil, fmt.Errorf("lookup token: %w", err)
	}
	if record.UserID != claims.UserID {
		return nil, domainerrors.Unauthorized("invalid token")
	}
	if record.IsExpired(s.now()) {
		if err := s.store.DeleteToken(ctx, record.ID); err != nil && !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to delete expired token", "token_id", record.ID, "error", err)
		}
		return nil, domainerrors.Unauthorized("token expired")
	}

	user, err := s.store.GetUser(ctx, record.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("user inactive or deleted")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.CanLogin() {
		return nil, domainerrors.Unauthorized("user inactive or deleted")
	}

	return user, nil
}

// PruneExpiredTokens deletes expired token records.
func (s *AuthService) PruneExpiredTokens(ctx context.Context) (int, error) {
	n, err := s.store.DeleteExpiredTokens(ctx)
	if err != nil {
		return 0, fmt.Errorf("prune tokens: %w", err)
	}
	if n > 0 {
		s.logger.Info("pruned expired tokens", "count", n)
	}
	return n, nil
}
