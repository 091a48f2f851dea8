// VenuePulse - Local Event Aggregation and Deduplication
// Copyright 2026 VenuePulse contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/venuepulse/venuepulse

// Package validation wraps go-playground/validator v10 behind a
// thread-safe singleton with human-readable error messages. Malformed
// filters and options are rejected early, before any pipeline work runs.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/venuepulse/venuepulse/internal/models"
)

var (
	instance *validator.Validate
	once     sync.Once
)

// get returns the singleton validator. Struct metadata is cached after
// the first validation of each type.
func get() *validator.Validate {
	once.Do(func() {
		instance = validator.New(validator.WithRequiredStructEnabled())
	})
	return instance
}

// ValidateStruct validates a struct against its `validate` tags and
// converts failures into the pipeline's ValidationError type.
func ValidateStruct(s interface{}) error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: the caller passed a non-struct.
		return &models.ValidationError{Message: err.Error()}
	}

	first := verrs[0]
	return &models.ValidationError{
		Field:   strings.ToLower(first.Field()),
		Message: describe(first),
	}
}

// describe renders one field error as a human-readable message.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be no less than %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be no greater than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
