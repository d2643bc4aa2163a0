package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Kind(t *testing.T) {
	err := NewError(ErrStateConflict, "proposal already processed")
	wrapped := fmt.Errorf("process: %w", err)

	assert.True(t, errors.Is(wrapped, ErrStateConflict))
	assert.True(t, errors.Is(wrapped, err))
	assert.False(t, errors.Is(wrapped, ErrNotFound))
	assert.Equal(t, "proposal already processed", err.Error())

	var de *Error
	assert.True(t, errors.As(wrapped, &de))
	assert.Equal(t, ErrStateConflict, de.Kind())
}

func TestNewFieldError(t *testing.T) {
	err := NewFieldError("amount", "amount must not be zero")
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "amount", err.Field())
	assert.ErrorIs(t, Validation("bad"), ErrValidation)
}
