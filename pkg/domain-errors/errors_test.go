package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCodeWalksCauses(t *testing.T) {
	inner := New(CodeInvalidState, "not a draft")
	outer := Wrap(inner, CodeNotFound, "RTI application not found or cannot be updated")

	assert.True(t, HasCode(outer, CodeNotFound))
	assert.True(t, HasCode(outer, CodeInvalidState))
	assert.False(t, HasCode(outer, CodeInternal))
	assert.True(t, Is(fmt.Errorf("context: %w", outer), CodeInvalidState))
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, CodeParse, CodeOf(Wrap(New(CodeGeneration, "x"), CodeParse, "y")))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestErrorFormatting(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Wrap(cause, CodeGeneration, "Failed to generate RTI content")

	assert.Equal(t, "generation_error: Failed to generate RTI content: dial tcp: refused", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "validation_error: Invalid updates: status", Validation("Invalid updates: status", "status").Error())
}

func TestValidationCarriesFields(t *testing.T) {
	err := Validation("Missing required fields", "subject", "pio.name")
	de, ok := As(fmt.Errorf("create: %w", err))
	require.True(t, ok)
	assert.Equal(t, CodeValidation, de.Code)
	assert.Equal(t, []string{"subject", "pio.name"}, de.Fields)
}

func TestIsMatchesCodeAndMessage(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", New(CodeNotFound, "RTI application not found"))
	assert.ErrorIs(t, err, New(CodeNotFound, "RTI application not found"))
	assert.NotErrorIs(t, err, New(CodeNotFound, "something else"))
}
