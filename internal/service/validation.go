// Package service contains the post, comment, like and search use cases.
package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"musefeed/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func inputValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// notblank rejects strings that are empty after trimming whitespace.
		_ = validate.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
	})
	return validate
}

// validateInput runs struct tag validation and reports the first failure as a
// VALIDATION_ERROR.
func validateInput(in any) error {
	err := inputValidator().Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return models.NewValidationError(err.Error())
	}

	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required", "notblank":
		return models.NewValidationError(fmt.Sprintf("%s is required", fe.Field()))
	case "max":
		return models.NewValidationError(fmt.Sprintf("%s too long (max %s characters)", fe.Field(), fe.Param()))
	case "gt":
		return models.NewValidationError(fmt.Sprintf("%s must be a valid ID", fe.Field()))
	default:
		return models.NewValidationError(fmt.Sprintf("%s is invalid", fe.Field()))
	}
}
