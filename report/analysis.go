package report

import (
	"github.com/gaborage/go-scriptkit/analysis"
)

// Expenses renders an expense summary with the load warnings of file
func (p *Printer) Expenses(file *analysis.ExpenseFile, s analysis.ExpenseSummary) error {
	d := p.doc("EXPENSE ANALYSIS REPORT")
	d.dim("source: %s", file.Path)
	if file.InvalidAmounts > 0 {
		d.warn("skipped %d rows with invalid amounts", file.InvalidAmounts)
	}
	if file.InvalidDates > 0 {
		d.warn("skipped %d rows with invalid dates", file.InvalidDates)
	}

	d.section("Totals")
	d.number("Total Expenses", "€%.2f", s.Total)
	d.number("Transactions", "%d", s.Count)
	d.number("Average Transaction", "€%.2f", s.Average)

	d.section("Spending by Category")
	for _, c := range s.Categories {
		d.line("  %-15s €%8.2f (%5.1f%%)", c.Category, c.Amount, c.Percent)
	}
	return d.flush()
}

// Directory renders a directory scan
func (p *Printer) Directory(s *analysis.DirectoryStats) error {
	d := p.doc("DIRECTORY ANALYSIS REPORT")
	d.dim("directory: %s", s.Path)

	d.section("Summary")
	d.number("Total Files", "%d", s.TotalFiles)
	d.field("Total Size", analysis.FormatBytes(s.TotalSize))

	d.section("File Types")
	for _, e := range s.Extensions {
		d.line("  %-15s %5d files", e.Extension, e.Count)
	}

	if s.Largest.Size > 0 {
		d.section("Largest File")
		d.field("Name", s.Largest.Name)
		d.field("Size", analysis.FormatBytes(s.Largest.Size))
	}
	return d.flush()
}

// Portfolio renders a client's ROI report
func (p *Printer) Portfolio(s analysis.PortfolioSummary) error {
	d := p.doc("CLIENT REPORT: " + s.Client.Name)

	d.number("Total Investment", "€%.0f", s.TotalBudget)
	d.number("Weekly Hours Saved", "%.1f hours", s.WeeklyHoursSaved)
	d.number("Annual Value", "€%.0f", s.AnnualValue)
	d.number("ROI", "%.1f%%", s.ROIPercent)

	d.section("Projects")
	for _, proj := range s.Client.Projects {
		d.line("  %s", proj.Name)
		d.dim("    status: %s, budget: €%.0f, hours saved: %.1f/week", orNA(proj.Status), proj.Budget, proj.HoursSavedWeekly)
	}

	d.section("Contact")
	d.field("Name", orNA(s.Client.Contact.Name))
	d.field("Email", orNA(s.Client.Contact.Email))
	return d.flush()
}
