package services

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"warga/internal/core"
)

// NewValidator returns a validator with the domain tags registered.
// The kk tag accepts exactly 16 digits, the format of KK and NIK numbers.
// The receipt tag accepts a base64 image data URL.
// Field errors are reported under their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("kk", func(fl validator.FieldLevel) bool {
		return core.ValidHouseholdID(fl.Field().String())
	})
	_ = v.RegisterValidation("receipt", func(fl validator.FieldLevel) bool {
		return core.ValidReceipt(fl.Field().String())
	})
	return v
}

// FieldErrors maps each failing field to its failed tag. It returns nil
// when err carries no field errors.
func FieldErrors(err error) map[string]string {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil
	}
	out := make(map[string]string, len(ve))
	for _, fe := range ve {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// IsValidation reports whether err is an input validation failure.
func IsValidation(err error) bool {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return true
	}
	for _, target := range []error{
		core.ErrInvalidHouseholdID, core.ErrInvalidAmount, core.ErrEmptyDescription,
		core.ErrEmptyName, core.ErrInvalidDate, core.ErrInvalidDay, core.ErrInvalidMonth,
		core.ErrInvalidCategory, core.ErrInvalidDuesType, core.ErrInvalidReceipt, core.ErrDuplicateHead,
		core.ErrUnknownListCategory, core.ErrEmptyListItem, core.ErrDuplicateListItem,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
