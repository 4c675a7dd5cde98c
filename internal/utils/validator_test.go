package utils_test

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/campus-api/internal/utils"
)

type sample struct {
	StudentID uint   `form:"student_id" validate:"required"`
	Notes     string `json:"notes,omitempty" validate:"max=3"`
	Plain     string `validate:"required"`
}

func TestNewValidatorUsesWireNames(t *testing.T) {
	err := utils.NewValidator().Struct(sample{Notes: "too long"})

	var validationErrors validator.ValidationErrors
	require.True(t, errors.As(err, &validationErrors))

	fields := map[string]string{}
	for _, fieldErr := range validationErrors {
		fields[fieldErr.Field()] = fieldErr.Tag()
	}
	require.Equal(t, map[string]string{"student_id": "required", "notes": "max", "Plain": "required"}, fields)
}
