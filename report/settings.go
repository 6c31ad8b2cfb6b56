package report

import (
	"strings"

	"github.com/gaborage/go-scriptkit/config"
)

// Settings lists every configuration key grouped by section, with the
// environment variable that overrides it and its validation rules.
func (p *Printer) Settings(settings []config.Setting) error {
	d := p.doc("CONFIGURATION")
	section := ""
	for _, s := range settings {
		if sec := s.Section(); sec != section {
			section = sec
			d.section(strings.ToUpper(sec))
		}

		value := s.Value
		if value == "" {
			value = "(not set)"
		}
		d.line("  %-22s %s", s.Path, value)

		rules := append([]string{s.EnvVar, s.Type}, s.Describe()...)
		d.dim("  %-22s %s", "", strings.Join(rules, ", "))
	}
	return d.flush()
}
