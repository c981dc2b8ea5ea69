package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/recipeapp/recipe-server/internal/domain"
	"github.com/recipeapp/recipe-server/internal/service"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createUser",
		Method:        http.MethodPost,
		Path:          "/user/create",
		Summary:       "Register user",
		Description:   "Creates a new user account",
		Tags:          []string{"Users"},
		DefaultStatus: http.StatusCreated,
	}, s.handleCreateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "createToken",
		Method:      http.MethodPost,
		Path:        "/user/token",
		Summary:     "Obtain token",
		Description: "Exchanges email and password for a bearer token",
		Tags:        []string{"Users"},
	}, s.handleCreateToken)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMe",
		Method:      http.MethodGet,
		Path:        "/user/me",
		Summary:     "Get profile",
		Description: "Returns the authenticated user",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMe)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateMe",
		Method:      http.MethodPatch,
		Path:        "/user/me",
		Summary:     "Update profile",
		Description: "Updates the authenticated user's name or password. Email cannot be changed.",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateMe)
}

// === DTOs ===

// CreateUserRequest is the request body for registration.
type CreateUserRequest struct {
	_        struct{} `json:"-" additionalProperties:"true"`
	Email    string   `json:"email,omitempty" doc:"Email address"`
	Password string   `json:"password,omitempty" doc:"Password, at least 5 characters"`
	Name     string   `json:"name,omitempty" doc:"Display name"`
}

// CreateUserInput wraps the registration request for Huma.
type CreateUserInput struct {
	Body CreateUserRequest
}

// UserResponse contains user data in API responses. The password is never returned.
type UserResponse struct {
	Email string `json:"email" doc:"Email address"`
	Name  string `json:"name" doc:"Display name"`
}

// UserOutput wraps the user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// CreateTokenRequest is the request body for login.
type CreateTokenRequest struct {
	_        struct{} `json:"-" additionalProperties:"true"`
	Email    string   `json:"email,omitempty" doc:"Email address"`
	Password string   `json:"password,omitempty" doc:"Password"`
}

// CreateTokenInput wraps the login request for Huma.
type CreateTokenInput struct {
	Body CreateTokenRequest
}

// TokenResponse contains an issued bearer token.
type TokenResponse struct {
	Token string `json:"token" doc:"Bearer token for the Authorization header"`
}

// TokenOutput wraps the token response for Huma.
type TokenOutput struct {
	Body TokenResponse
}

// UpdateMeRequest is the request body for a profile update. Unknown fields,
// including email, are ignored.
type UpdateMeRequest struct {
	_        struct{} `json:"-" additionalProperties:"true"`
	Name     *string  `json:"name,omitempty" doc:"Display name"`
	Password *string  `json:"password,omitempty" doc:"New password, at least 5 characters"`
}

// UpdateMeInput wraps the profile update for Huma.
type UpdateMeInput struct {
	Body UpdateMeRequest
}

// === Handlers ===

func (s *Server) handleCreateUser(ctx context.Context, input *CreateUserInput) (*UserOutput, error) {
	user, err := s.services.Users.Register(ctx, service.RegisterRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
		Name:     input.Body.Name,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleCreateToken(ctx context.Context, input *CreateTokenInput) (*TokenOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &TokenOutput{Body: TokenResponse{Token: resp.Token}}, nil
}

func (s *Server) handleGetMe(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleUpdateMe(ctx context.Context, input *UpdateMeInput) (*UserOutput, error) {
	userID, err := GetUserID(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Users.UpdateProfile(ctx, userID, service.ProfileUpdate{
		Name:     input.Body.Name,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

// === Helpers ===

func mapUserResponse(u *domain.User) UserResponse {
	return UserResponse{Email: u.Email, Name: u.Name}
}
