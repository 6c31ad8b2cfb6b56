package report

import (
	"strings"
	"time"

	"github.com/gaborage/go-scriptkit/config"
	"github.com/gaborage/go-scriptkit/integrations/github"
	"github.com/gaborage/go-scriptkit/integrations/placeholder"
	"github.com/gaborage/go-scriptkit/integrations/weather"
)

const descriptionWidth = 120

// User renders a JSONPlaceholder user and, when posts is not nil, their posts
func (p *Printer) User(u *placeholder.User, posts []placeholder.Post) error {
	d := p.doc("USER: " + u.Name)
	d.field("Username", orNA(u.Username))
	d.field("Email", orNA(u.Email))
	d.field("Company", orNA(u.Company.Name))

	if posts != nil {
		d.section("Posts")
		d.number("Found", "%d posts", len(posts))
		for _, post := range posts {
			d.line("  #%-4d %s", post.ID, post.Title)
		}
	}
	return d.flush()
}

// CreatedPost renders the result of creating a post
func (p *Printer) CreatedPost(post *placeholder.Post) error {
	d := p.doc("POST CREATED")
	d.number("ID", "%d", post.ID)
	d.field("Title", post.Title)
	d.field("User", post.UserID)
	return d.flush()
}

// Weather renders current conditions and an optional forecast. now stamps the report.
func (p *Printer) Weather(c *weather.Conditions, forecast []weather.DayForecast, now time.Time) error {
	d := p.doc("WEATHER REPORT: " + c.City)
	d.dim("time: %s", now.Format("2006-01-02 15:04"))
	d.number("Temperature", "%d°C (feels like %d°C)", c.TempC, c.FeelsLikeC)
	d.field("Condition", orNA(c.Description))
	d.number("Humidity", "%d%%", c.Humidity)
	d.number("Wind", "%d km/h %s", c.WindKmph, c.WindDir)

	if len(forecast) > 0 {
		d.section("Forecast")
		for _, day := range forecast {
			d.line("  %s: %d°C - %d°C | %s", day.Date, day.MinTempC, day.MaxTempC, orNA(day.Description))
		}
	}
	return d.flush()
}

// GitHub renders profile statistics
func (p *Printer) GitHub(s *github.Stats) error {
	d := p.doc("GITHUB PROFILE: " + s.User.Login)
	d.field("Name", orNA(s.User.Name))
	d.field("Bio", orNA(s.User.Bio))
	d.field("Location", orNA(s.User.Location))
	d.number("Public Repos", "%d", s.User.PublicRepos)
	d.number("Followers", "%d", s.User.Followers)
	d.number("Following", "%d", s.User.Following)
	if !s.User.CreatedAt.IsZero() {
		d.field("Created", s.User.CreatedAt.Format(time.DateOnly))
	}

	d.section("Top Repositories (by stars)")
	for _, r := range s.TopRepos {
		d.line("  %s", r.Name)
		d.dim("    %d stars, %d forks", r.Stars, r.Forks)
		if r.Description != "" {
			d.dim("    %s", truncate(r.Description, descriptionWidth))
		}
		if r.Language != "" {
			d.dim("    %s", r.Language)
		}
	}

	d.section("Overall Statistics")
	d.number("Total Stars", "%d", s.TotalStars)
	d.number("Total Forks", "%d", s.TotalForks)
	d.field("Languages Used", orNA(strings.Join(s.Languages, ", ")))
	return d.flush()
}

// Secrets renders the configured credentials, masked
func (p *Printer) Secrets(secrets []config.Secret) error {
	d := p.doc("CONFIGURED SECRETS")
	for _, s := range secrets {
		if s.Configured() {
			d.field(s.Name, s.Masked())
			continue
		}
		d.b.WriteString(p.label.Render(s.Name + ":"))
		d.warn("not set (%s)", s.EnvVar)
	}
	return d.flush()
}
