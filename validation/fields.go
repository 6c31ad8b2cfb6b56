// Package validation reads koanf and validate struct tags so configuration
// settings can be listed with their environment variable and constraints.
package validation

import (
	"reflect"
	"sort"
	"strings"
	"time"
)

const trueValue = "true"

var durationType = reflect.TypeOf(time.Duration(0))

// Field describes one configurable leaf of a struct tree
type Field struct {
	Path        string            // koanf path, e.g. "http.timeout"
	EnvVar      string            // environment variable, e.g. "HTTP_TIMEOUT"
	Type        string            // "string", "int", "bool", "float64" or "duration"
	Required    bool              // validate:"required"
	Secret      bool              // excluded from JSON output (json:"-")
	Constraints map[string]string // validate tag, flags map to "true"
}

// Fields walks t and returns every exported leaf carrying a koanf tag, in
// declaration order. Nested structs are flattened into dotted paths; pointer
// fields are skipped.
func Fields(t reflect.Type) []Field {
	var out []Field
	collect(t, "", &out)
	return out
}

func collect(t reflect.Type, prefix string, out *[]Field) {
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(field.Tag.Get("koanf"), ",")
		if name == "" || name == "-" {
			continue
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		ft := field.Type
		if ft.Kind() == reflect.Pointer {
			continue
		}
		if ft.Kind() == reflect.Struct && ft != durationType {
			collect(ft, path, out)
			continue
		}

		f := Field{
			Path:        path,
			EnvVar:      EnvVar(path),
			Type:        typeName(ft),
			Constraints: make(map[string]string),
		}
		if jsonName, _, _ := strings.Cut(field.Tag.Get("json"), ","); jsonName == "-" {
			f.Secret = true
		}
		if validate := field.Tag.Get("validate"); validate != "" {
			parseValidateTag(validate, f.Constraints)
		}
		_, f.Required = f.Constraints["required"]

		*out = append(*out, f)
	}
}

// EnvVar is the environment variable that sets the koanf path
func EnvVar(path string) string {
	return strings.ToUpper(strings.ReplaceAll(path, ".", "_"))
}

func typeName(t reflect.Type) string {
	if t == durationType {
		return "duration"
	}
	return t.Kind().String()
}

// parseValidateTag parses a validate tag into constraint map
func parseValidateTag(validate string, constraints map[string]string) {
	for _, part := range strings.Split(validate, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			constraints[part] = trueValue
			continue
		}
		constraints[strings.TrimSpace(key)] = strings.Trim(strings.TrimSpace(value), `"`)
	}
}

// Enum returns the allowed values of a oneof constraint
func (f Field) Enum() ([]string, bool) {
	values, ok := f.Constraints["oneof"]
	if !ok {
		return nil, false
	}
	return strings.Fields(values), true
}

// Describe renders the constraints as short human readable rules
func (f Field) Describe() []string {
	var rules []string
	seen := make(map[string]bool, len(f.Constraints))
	add := func(tag, rule string) {
		if v, ok := f.Constraints[tag]; ok && !seen[tag] {
			seen[tag] = true
			rules = append(rules, strings.ReplaceAll(rule, "%v", v))
		}
	}

	add("required", "required")
	add("required_if", "required if %v")
	add("oneof", "one of %v")
	add("url", "URL")
	add("gt", "> %v")
	add("gte", ">= %v")
	add("min", ">= %v")
	add("lte", "<= %v")
	add("max", "<= %v")

	var rest []string
	for tag := range f.Constraints {
		if !seen[tag] {
			rest = append(rest, tag)
		}
	}
	sort.Strings(rest)
	return append(rules, rest...)
}
