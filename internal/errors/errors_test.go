package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeForbidden, http.StatusForbidden},
		{CodeValidation, http.StatusBadRequest},
		{CodeInvalidCredentials, http.StatusBadRequest},
		{CodeMethodNotAllowed, http.StatusMethodNotAllowed},
		{CodeConflict, http.StatusConflict},
		{CodeRateLimited, http.StatusTooManyRequests},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesCode(t *testing.T) {
	err := NotFound("recipe not found")

	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrValidation))

	wrapped := fmt.Errorf("get recipe: %w", err)
	assert.True(t, Is(wrapped, ErrNotFound))
}

func TestError_WrapKeepsCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, CodeInternal, "save image")

	assert.Equal(t, "save image: disk full", err.Error())
	assert.Equal(t, cause, Unwrap(err))
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus())
}

func TestFieldError(t *testing.T) {
	err := FieldError("email", "user with this email already exists")

	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, map[string]string{"email": "user with this email already exists"}, err.Details)
}

func TestWithDetails_DoesNotMutateSentinel(t *testing.T) {
	err := ErrValidation.WithDetails(map[string]string{"price": "is invalid"})

	assert.NotNil(t, err.Details)
	assert.Nil(t, ErrValidation.Details)
}
