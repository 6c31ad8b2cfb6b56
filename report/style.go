// Package report renders analysis and API results as styled terminal text.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const labelWidth = 22

// Printer writes reports to one output. Colors are enabled only when the
// output is a terminal that supports them.
type Printer struct {
	w       io.Writer
	header  lipgloss.Style
	section lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	number  lipgloss.Style
	dim     lipgloss.Style
	warn    lipgloss.Style
}

// NewPrinter creates a Printer for w
func NewPrinter(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w: w,
		header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 3).
			MarginBottom(1).
			Align(lipgloss.Center).
			Border(lipgloss.RoundedBorder()),
		section: r.NewStyle().Bold(true).Foreground(lipgloss.Color("36")),
		label:   r.NewStyle().Foreground(lipgloss.Color("245")).Width(labelWidth),
		value:   r.NewStyle().Foreground(lipgloss.Color("255")),
		number:  r.NewStyle().Foreground(lipgloss.Color("36")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("240")),
		warn:    r.NewStyle().Foreground(lipgloss.Color("220")),
	}
}

// doc accumulates one report so it reaches the writer in a single call
type doc struct {
	p *Printer
	b strings.Builder
}

func (p *Printer) doc(title string) *doc {
	d := &doc{p: p}
	d.b.WriteString(p.header.Render(title))
	d.b.WriteString("\n")
	return d
}

func (d *doc) section(title string) {
	d.b.WriteString("\n")
	d.b.WriteString(d.p.section.Render(title))
	d.b.WriteString("\n")
}

func (d *doc) field(label string, value any) {
	d.b.WriteString(d.p.label.Render(label + ":"))
	d.b.WriteString(d.p.value.Render(fmt.Sprint(value)))
	d.b.WriteString("\n")
}

func (d *doc) number(label string, format string, args ...any) {
	d.b.WriteString(d.p.label.Render(label + ":"))
	d.b.WriteString(d.p.number.Render(fmt.Sprintf(format, args...)))
	d.b.WriteString("\n")
}

func (d *doc) line(format string, args ...any) {
	d.b.WriteString(fmt.Sprintf(format, args...))
	d.b.WriteString("\n")
}

func (d *doc) dim(format string, args ...any) {
	d.b.WriteString(d.p.dim.Render(fmt.Sprintf(format, args...)))
	d.b.WriteString("\n")
}

func (d *doc) warn(format string, args ...any) {
	d.b.WriteString(d.p.warn.Render(fmt.Sprintf(format, args...)))
	d.b.WriteString("\n")
}

func (d *doc) flush() error {
	_, err := io.WriteString(d.p.w, d.b.String())
	return err
}

// orNA substitutes "N/A" for empty strings
func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
