// Package weather reads current conditions and short forecasts from wttr.in.
package weather

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gaborage/go-scriptkit/cache"
	"github.com/gaborage/go-scriptkit/http"
)

// DefaultBaseURL is the public wttr.in service
const DefaultBaseURL = "https://wttr.in"

// MaxForecastDays is how far ahead wttr.in forecasts
const MaxForecastDays = 3

// ErrNoData is returned when the service answers without the requested section
var ErrNoData = errors.New("weather: no data in response")

// Conditions describes the weather right now
type Conditions struct {
	City        string
	TempC       int
	FeelsLikeC  int
	Description string
	Humidity    int
	WindKmph    int
	WindDir     string
}

// DayForecast is the outlook for a single day
type DayForecast struct {
	Date        string
	MinTempC    int
	MaxTempC    int
	Description string
}

// wttr.in j1 format: every number is a JSON string
type report struct {
	CurrentCondition []struct {
		TempC         string      `json:"temp_C"`
		FeelsLikeC    string      `json:"FeelsLikeC"`
		Humidity      string      `json:"humidity"`
		WindspeedKmph string      `json:"windspeedKmph"`
		Winddir16     string      `json:"winddir16Point"`
		WeatherDesc   []valueText `json:"weatherDesc"`
	} `json:"current_condition"`
	Weather []struct {
		Date     string `json:"date"`
		MaxTempC string `json:"maxtempC"`
		MinTempC string `json:"mintempC"`
		Hourly   []struct {
			WeatherDesc []valueText `json:"weatherDesc"`
		} `json:"hourly"`
	} `json:"weather"`
}

type valueText struct {
	Value string `json:"value"`
}

// Client queries wttr.in
type Client struct {
	exec  http.Executor
	cache cache.Cache
	ttl   time.Duration
}

// NewClient wraps an executor whose base URL points at wttr.in
func NewClient(exec http.Executor) *Client {
	return &Client{exec: exec}
}

// WithCache keeps each city's report in store for ttl, so Current and Forecast
// for the same city share one request.
func (c *Client) WithCache(store cache.Cache, ttl time.Duration) *Client {
	c.cache = store
	c.ttl = ttl
	return c
}

// Current returns the current conditions for city
func (c *Client) Current(ctx context.Context, city string) (*Conditions, error) {
	r, err := c.fetch(ctx, city)
	if err != nil {
		return nil, err
	}
	if len(r.CurrentCondition) == 0 {
		return nil, fmt.Errorf("current conditions for %s: %w", city, ErrNoData)
	}

	cur := r.CurrentCondition[0]
	p := &numParser{}
	cond := &Conditions{
		City:        city,
		TempC:       p.parse("temp_C", cur.TempC),
		FeelsLikeC:  p.parse("FeelsLikeC", cur.FeelsLikeC),
		Humidity:    p.parse("humidity", cur.Humidity),
		WindKmph:    p.parse("windspeedKmph", cur.WindspeedKmph),
		WindDir:     cur.Winddir16,
		Description: firstValue(cur.WeatherDesc),
	}
	if p.err != nil {
		return nil, fmt.Errorf("current conditions for %s: %w", city, p.err)
	}
	return cond, nil
}

// Forecast returns up to days daily forecasts for city, days between 1 and MaxForecastDays
func (c *Client) Forecast(ctx context.Context, city string, days int) ([]DayForecast, error) {
	if days < 1 || days > MaxForecastDays {
		return nil, fmt.Errorf("forecast days must be between 1 and %d, got %d", MaxForecastDays, days)
	}

	r, err := c.fetch(ctx, city)
	if err != nil {
		return nil, err
	}
	if len(r.Weather) == 0 {
		return nil, fmt.Errorf("forecast for %s: %w", city, ErrNoData)
	}

	n := min(days, len(r.Weather))
	out := make([]DayForecast, 0, n)
	p := &numParser{}
	for _, day := range r.Weather[:n] {
		f := DayForecast{
			Date:     day.Date,
			MinTempC: p.parse("mintempC", day.MinTempC),
			MaxTempC: p.parse("maxtempC", day.MaxTempC),
		}
		if len(day.Hourly) > 0 {
			f.Description = firstValue(day.Hourly[0].WeatherDesc)
		}
		out = append(out, f)
	}
	if p.err != nil {
		return nil, fmt.Errorf("forecast for %s: %w", city, p.err)
	}
	return out, nil
}

func (c *Client) fetch(ctx context.Context, city string) (*report, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, errors.New("weather: city is required")
	}

	key := "weather:" + strings.ToLower(city)
	return cache.GetOrLoad(ctx, c.cache, key, c.ttl, func(ctx context.Context) (*report, error) {
		var r report
		req := c.exec.NewRequest(nethttp.MethodGet, "/"+url.PathEscape(city))
		req.Params = http.Params{"format": "j1"}
		req.Into = &r
		if _, err := c.exec.Execute(ctx, req); err != nil {
			return nil, fmt.Errorf("fetch weather for %s: %w", city, err)
		}
		return &r, nil
	})
}

// numParser keeps the first conversion error so a whole record can be parsed in one go
type numParser struct {
	err error
}

func (p *numParser) parse(field, s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s %q: %w", field, s, err)
	}
	return n
}

func firstValue(values []valueText) string {
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0].Value)
}
