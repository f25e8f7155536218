package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the loaded configuration against its struct tags. The
// service refuses to start on any violation, so all violations are reported
// at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	lines := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		lines = append(lines, describeViolation(fe))
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(lines, "\n  "))
}

// describeViolation renders one field error as "<path> <explanation>", using
// the lowercase dotted path matching the YAML layout.
func describeViolation(fe validator.FieldError) string {
	path := yamlPath(fe.Namespace())

	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "required_if":
		return fmt.Sprintf("%s is required when %s", path, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", path, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", path, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", path, fe.Param())
	case "url":
		return path + " must be a valid URL"
	default:
		return fmt.Sprintf("%s failed validation: %s", path, fe.Tag())
	}
}

// yamlPath turns a validator namespace like "Config.Server.Port" into
// "server.port".
func yamlPath(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:] // drop the root struct name
	}

	for i, p := range parts {
		parts[i] = strings.ToLower(p)
	}

	return strings.Join(parts, ".")
}
