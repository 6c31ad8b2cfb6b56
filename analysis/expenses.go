package analysis

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"
)

// Required expense columns, in file order
const (
	ColumnDate        = "Date"
	ColumnCategory    = "Category"
	ColumnDescription = "Description"
	ColumnAmount      = "Amount"
)

var requiredColumns = []string{ColumnDate, ColumnCategory, ColumnDescription, ColumnAmount}

var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"02.01.2006",
	"01/02/2006",
	time.RFC3339,
	time.DateTime,
}

// Expense is one valid row of an expense file
type Expense struct {
	Date        time.Time
	Category    string
	Description string
	Amount      float64
}

// ExpenseFile is the parsed content of an expense CSV
type ExpenseFile struct {
	Path     string
	Expenses []Expense
	// Rows dropped because Amount was not a number
	InvalidAmounts int
	// Rows dropped because Date could not be parsed
	InvalidDates int
}

// CategoryTotal is the spend of one category
type CategoryTotal struct {
	Category string
	Amount   float64
	Percent  float64
}

// ExpenseSummary aggregates an expense file
type ExpenseSummary struct {
	Total      float64
	Count      int
	Average    float64
	Categories []CategoryTotal
}

// LoadExpenses reads and validates the CSV at path. Rows with an invalid
// amount or date are skipped and counted, and fields missing from a short row
// read as empty. A file without valid rows is an error.
func LoadExpenses(fs afero.Fs, path string) (*ExpenseFile, error) {
	if err := checkFile(fs, path); err != nil {
		return nil, err
	}

	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	parsed, err := parseExpenses(f)
	if err != nil {
		return nil, fmt.Errorf("read expenses from %s: %w", path, err)
	}
	parsed.Path = path
	return parsed, nil
}

func parseExpenses(r io.Reader) (*ExpenseFile, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	// Ragged rows are read as-is; missing trailing fields count as empty
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("parse header: %w", err)
	}

	index, err := columnIndex(header)
	if err != nil {
		return nil, err
	}

	out := &ExpenseFile{}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse row: %w", err)
		}

		amount, ok := parseAmount(field(record, index[ColumnAmount]))
		if !ok {
			out.InvalidAmounts++
			continue
		}
		date, ok := parseDate(field(record, index[ColumnDate]))
		if !ok {
			out.InvalidDates++
			continue
		}
		out.Expenses = append(out.Expenses, Expense{
			Date:        date,
			Category:    strings.TrimSpace(field(record, index[ColumnCategory])),
			Description: strings.TrimSpace(field(record, index[ColumnDescription])),
			Amount:      amount,
		})
	}

	if len(out.Expenses) == 0 {
		return nil, ErrNoValidRows
	}
	return out, nil
}

// field returns record[i], or "" when the row is too short
func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}

func columnIndex(header []string) (map[string]int, error) {
	found := make([]string, len(header))
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		found[i] = name
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	var missing []string
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Missing: missing, Found: found}
	}
	return index, nil
}

func parseAmount(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// SummarizeExpenses totals expenses overall and per category. Categories are
// ordered by amount, largest first.
func SummarizeExpenses(expenses []Expense) ExpenseSummary {
	var summary ExpenseSummary
	byCategory := make(map[string]float64)
	for _, e := range expenses {
		summary.Total += e.Amount
		byCategory[e.Category] += e.Amount
	}
	summary.Count = len(expenses)
	if summary.Count > 0 {
		summary.Average = summary.Total / float64(summary.Count)
	}

	summary.Categories = make([]CategoryTotal, 0, len(byCategory))
	for category, amount := range byCategory {
		ct := CategoryTotal{Category: category, Amount: amount}
		if summary.Total != 0 {
			ct.Percent = amount / summary.Total * 100
		}
		summary.Categories = append(summary.Categories, ct)
	}
	sort.Slice(summary.Categories, func(i, j int) bool {
		a, b := summary.Categories[i], summary.Categories[j]
		if a.Amount != b.Amount {
			return a.Amount > b.Amount
		}
		return a.Category < b.Category
	})
	return summary
}

// checkFile verifies path exists, is a regular file and is not empty
func checkFile(fs afero.Fs, path string) error {
	info, err := fs.Stat(path)
	if err != nil {
		if errors.Is(err, afero.ErrFileNotFound) {
			return fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("%s: %w", path, ErrNotAFile)
	}
	if info.Size() == 0 {
		return fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	return nil
}
