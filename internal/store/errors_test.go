package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wishcraft/wishcraft-server/internal/store"
)

func TestError_Error(t *testing.T) {
	err := &store.Error{
		Code:    http.StatusNotFound,
		Message: "not found",
	}

	assert.Equal(t, "not found", err.Error())
}

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := store.ErrAlreadyExists.WithCause(cause)

	assert.Contains(t, err.Error(), "resource already exists")
	assert.Contains(t, err.Error(), "underlying error")
	assert.Equal(t, cause, err.Unwrap())
	assert.Equal(t, http.StatusConflict, err.HTTPCode())
}

func TestError_Is(t *testing.T) {
	wrapped := fmt.Errorf("insert wish: %w", store.ErrAlreadyExists.WithCause(errors.New("UNIQUE")))

	assert.ErrorIs(t, wrapped, store.ErrAlreadyExists)
	assert.NotErrorIs(t, wrapped, store.ErrNotFound)
	assert.NotErrorIs(t, errors.New("resource not found"), store.ErrNotFound)
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, store.IsUniqueViolation(errors.New("constraint failed: UNIQUE constraint failed: wishes.generated_slug (2067)")))
	assert.False(t, store.IsUniqueViolation(errors.New("database is locked")))
	assert.False(t, store.IsUniqueViolation(nil))
}
