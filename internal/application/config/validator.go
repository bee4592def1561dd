package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-playground/validator/v10"

	"github.com/doeshing/cmdverify/internal/domain"
)

// configValidate carries the custom glob and duration checks.
var configValidate *validator.Validate

func init() {
	configValidate = validator.New()
	_ = configValidate.RegisterValidation("glob", validateGlob)
	_ = configValidate.RegisterValidation("duration", validateDuration)
}

func validateGlob(fl validator.FieldLevel) bool {
	return doublestar.ValidatePattern(fl.Field().String())
}

func validateDuration(fl validator.FieldLevel) bool {
	d, err := time.ParseDuration(fl.Field().String())
	return err == nil && d > 0
}

// Validate ensures config structure is consistent. Every failure is a
// *domain.ConfigurationError carrying one hint per offending field.
func Validate(cfg domain.Config) error {
	err := configValidate.Struct(cfg)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return domain.NewConfigurationError("validate config", err)
	}

	hints := make([]string, 0, len(fieldErrs))
	names := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		names = append(names, fieldName(fe))
		hints = append(hints, hintFor(fe))
	}
	return domain.NewConfigurationError("validate config",
		fmt.Errorf("invalid value for %s", strings.Join(names, ", ")), hints...)
}

// fieldName renders the namespace with the yaml spelling, e.g. cache.backend.
func fieldName(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		ns = ns[i+1:]
	}
	parts := strings.Split(ns, ".")
	for i, p := range parts {
		parts[i] = lowerFirst(p)
	}
	return strings.Join(parts, ".")
}

func hintFor(fe validator.FieldError) string {
	name := fieldName(fe)
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s must be set", name)
	case "min":
		return fmt.Sprintf("%s needs at least %s entry, e.g. \"**/*.md\"", name, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "glob":
		return fmt.Sprintf("%s has an invalid glob %q", name, fe.Value())
	case "duration":
		return fmt.Sprintf("%s must be a positive duration such as \"2s\", got %q", name, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", name, fe.Tag())
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
