package util

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleItem struct {
	Name string `json:"name" validate:"required"`
}

type sampleRequest struct {
	Title string       `json:"title" validate:"required,max=5"`
	Email string       `json:"email" validate:"omitempty,email"`
	Tags  []string     `json:"tags" validate:"min=2,unique"`
	Items []sampleItem `json:"items" validate:"dive"`
	Level string       `json:"level" validate:"omitempty,oneof=Easy Hard"`
}

func TestValidateStructCollectsFieldPaths(t *testing.T) {
	err := ValidateStruct(&sampleRequest{
		Title: "too long title",
		Email: "nope",
		Tags:  []string{"a"},
		Items: []sampleItem{{Name: "ok"}, {}},
		Level: "Medium",
	})

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Equal(t, "must be at most 5", vErr.Fields["title"])
	assert.Equal(t, "must be a valid email", vErr.Fields["email"])
	assert.Equal(t, "must have at least 2 items", vErr.Fields["tags"])
	assert.Equal(t, "is required", vErr.Fields["items[1].name"])
	assert.Equal(t, "must be one of: Easy Hard", vErr.Fields["level"])
}

func TestValidateStructPasses(t *testing.T) {
	assert.NoError(t, ValidateStruct(&sampleRequest{Title: "ok", Tags: []string{"a", "b"}}))
}

func TestValidationErrorMessageIsSorted(t *testing.T) {
	vErr := NewValidationError("b", "second")
	vErr.Add("a", "first")
	assert.Equal(t, "validation failed: a: first; b: second", vErr.Error())
}
