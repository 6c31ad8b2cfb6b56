package config

import (
	"reflect"
	"strings"

	"github.com/gaborage/go-scriptkit/validation"
)

// Setting is one configuration key with its effective value
type Setting struct {
	validation.Field
	// Value is the effective value, masked for secrets
	Value string
}

// Settings lists every configuration key in declaration order
func (c *Config) Settings() []Setting {
	fields := validation.Fields(reflect.TypeOf(Config{}))
	out := make([]Setting, 0, len(fields))
	for _, f := range fields {
		value := c.String(f.Path)
		if f.Secret {
			value = MaskSecret(value)
		}
		out = append(out, Setting{Field: f, Value: value})
	}
	return out
}

// Section returns the top-level section of the setting's path
func (s Setting) Section() string {
	section, _, _ := strings.Cut(s.Path, ".")
	return section
}
