package config

import "strings"

const maskPrefix = "********"

// Secret describes one credential for display
type Secret struct {
	Name   string
	EnvVar string
	Field  string
	Value  string
}

// Configured reports whether the secret has a value
func (s Secret) Configured() bool {
	return s.Value != ""
}

// Masked renders the secret for display, see MaskSecret
func (s Secret) Masked() string {
	return MaskSecret(s.Value)
}

// MaskSecret hides all but the last four characters behind a fixed-width mask,
// so the length of the secret is not revealed. Values of four characters or
// less are fully masked.
func MaskSecret(value string) string {
	value = strings.TrimSpace(value)
	switch {
	case value == "":
		return ""
	case len(value) <= 4:
		return maskPrefix
	default:
		return maskPrefix + value[len(value)-4:]
	}
}

// Secrets lists the credentials the tools know about
func (c *Config) Secrets() []Secret {
	return []Secret{
		{Name: "Weather API key", EnvVar: "WEATHER_API_KEY", Field: "weather.api.key", Value: c.Weather.API.Key},
		{Name: "GitHub token", EnvVar: "GITHUB_TOKEN", Field: "github.token", Value: c.GitHub.Token},
	}
}

// RequireSecret returns the value of the secret at field, or a not_configured error
func (c *Config) RequireSecret(field string) (string, error) {
	for _, s := range c.Secrets() {
		if s.Field != field {
			continue
		}
		if !s.Configured() {
			return "", NewNotConfiguredError(s.Field, s.EnvVar, s.Field)
		}
		return s.Value, nil
	}
	return "", NewInvalidFieldError(field, "unknown secret", nil)
}
