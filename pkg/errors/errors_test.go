package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	err := fmt.Errorf("handler: %w", Clone(ErrNotFound, "Class not found"))

	appErr := FromError(err)

	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "Class not found", appErr.Message)
}

func TestFromErrorWrapsUnknownErrors(t *testing.T) {
	appErr := FromError(errors.New("connection reset"))

	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.EqualError(t, appErr.Unwrap(), "connection reset")
}

func TestIsMatchesByCode(t *testing.T) {
	err := Validation("Missing required fields")

	assert.True(t, errors.Is(err, ErrValidation))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, ErrValidation.Message, "validation failed")
}
