package analysis

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
)

const (
	// HourlyRate values one saved hour
	HourlyRate = 30
	// WeeksPerYear converts weekly savings to annual ones
	WeeksPerYear = 52
)

var portfolioValidator = validator.New(validator.WithRequiredStructEnabled())

// Client is an automation customer and its projects
type Client struct {
	ClientID string    `json:"client_id" validate:"required"`
	Name     string    `json:"name" validate:"required"`
	Projects []Project `json:"projects" validate:"dive"`
	Contact  Contact   `json:"contact"`
}

// Project is one automation engagement
type Project struct {
	Name             string  `json:"name" validate:"required"`
	Status           string  `json:"status" validate:"omitempty,oneof=active completed paused"`
	Budget           float64 `json:"budget" validate:"gte=0"`
	HoursSavedWeekly float64 `json:"hours_saved_weekly" validate:"gte=0"`
}

// Contact is the customer's point of contact
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone"`
}

// PortfolioSummary is the return on a client's automation spend
type PortfolioSummary struct {
	Client           Client
	TotalBudget      float64
	WeeklyHoursSaved float64
	AnnualValue      float64
	// ROIPercent is zero when the budget is zero
	ROIPercent float64
}

// SamplePortfolio returns the demo client written by `portfolio --init`
func SamplePortfolio() Client {
	return Client{
		ClientID: "ACME001",
		Name:     "Acme Corporation",
		Projects: []Project{
			{Name: "Invoice Automation", Status: "active", Budget: 15000, HoursSavedWeekly: 25},
			{Name: "Email Classification", Status: "completed", Budget: 8000, HoursSavedWeekly: 15},
		},
		Contact: Contact{Name: "John Smith", Email: "john@acme.com", Phone: "+43 123 456789"},
	}
}

// LoadPortfolio reads and validates a client file
func LoadPortfolio(fs afero.Fs, path string) (*Client, error) {
	if err := checkFile(fs, path); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var c Client
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if err := portfolioValidator.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid client data in %s: %w", path, err)
	}
	return &c, nil
}

// SavePortfolio writes c to path as indented JSON
func SavePortfolio(fs afero.Fs, path string, c Client) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encode client data: %w", err)
	}
	if err := afero.WriteFile(fs, path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// AnalyzePortfolio totals budgets and savings and derives the annual value and ROI
func AnalyzePortfolio(c Client) PortfolioSummary {
	s := PortfolioSummary{Client: c}
	for _, p := range c.Projects {
		s.TotalBudget += p.Budget
		s.WeeklyHoursSaved += p.HoursSavedWeekly
	}
	s.AnnualValue = s.WeeklyHoursSaved * WeeksPerYear * HourlyRate
	if s.TotalBudget > 0 {
		s.ROIPercent = s.AnnualValue / s.TotalBudget * 100
	}
	return s
}
