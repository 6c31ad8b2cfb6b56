package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotConfigured indicates an optional setting was left empty
var ErrNotConfigured = errors.New("not configured")

// ConfigError represents a configuration error with actionable guidance.
// All error messages are lowercase following Go conventions.
//
//nolint:revive // ConfigError is intentionally named for clarity in external API usage
type ConfigError struct {
	Category string   // error category: "missing", "invalid", "not_configured"
	Field    string   // config field path (e.g., "http.timeout", "github.token")
	Message  string   // user-friendly error message (lowercase)
	Action   string   // actionable instruction (lowercase)
	Details  []string // additional details or examples
}

// Error implements the error interface with lowercase formatting.
func (e *ConfigError) Error() string {
	var parts []string

	if e.Category != "" {
		parts = append(parts, fmt.Sprintf("config_%s:", e.Category))
	}
	if e.Field != "" {
		parts = append(parts, e.Field)
	}
	if e.Message != "" {
		parts = append(parts, e.Message)
	}
	if e.Action != "" {
		parts = append(parts, e.Action)
	}
	if len(e.Details) > 0 {
		parts = append(parts, strings.Join(e.Details, "; "))
	}

	return strings.Join(parts, " ")
}

// Is makes errors.Is(err, ErrNotConfigured) match not_configured errors
func (e *ConfigError) Is(target error) bool {
	return target == ErrNotConfigured && e.Category == "not_configured"
}

// NewMissingFieldError creates an error for a required missing configuration field.
func NewMissingFieldError(field, envVar, yamlPath string) *ConfigError {
	return &ConfigError{
		Category: "missing",
		Field:    field,
		Message:  "required",
		Action:   fmt.Sprintf("set %s env var or add %s to config.yaml", envVar, yamlPath),
	}
}

// NewInvalidFieldError creates an error for an invalid configuration value.
func NewInvalidFieldError(field, message string, validOptions []string) *ConfigError {
	err := &ConfigError{
		Category: "invalid",
		Field:    field,
		Message:  message,
	}
	if len(validOptions) > 0 {
		err.Action = fmt.Sprintf("must be one of: %s", strings.Join(validOptions, ", "))
	}
	return err
}

// NewNotConfiguredError creates an informational error for optional features.
func NewNotConfiguredError(feature, envVar, yamlPath string) *ConfigError {
	return &ConfigError{
		Category: "not_configured",
		Field:    feature,
		Message:  "(optional)",
		Action:   fmt.Sprintf("to enable: set %s env var or add %s to config.yaml", envVar, yamlPath),
	}
}

// IsNotConfigured checks if an error indicates a feature is not configured.
func IsNotConfigured(err error) bool {
	return err != nil && errors.Is(err, ErrNotConfigured)
}

// ValidationErrors collects every invalid field found in one pass
type ValidationErrors []*ConfigError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Fields returns the config paths of all invalid fields
func (ve ValidationErrors) Fields() []string {
	fields := make([]string, 0, len(ve))
	for _, e := range ve {
		fields = append(fields, e.Field)
	}
	return fields
}
