package commands

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/gaborage/go-scriptkit/http"
	"github.com/gaborage/go-scriptkit/integrations/weather"
)

// WeatherOptions holds options for the weather command
type WeatherOptions struct {
	City string
	Days int
}

// NewWeatherCommand creates the weather command
func NewWeatherCommand() *cobra.Command {
	opts := &WeatherOptions{}

	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Show current weather and forecast from wttr.in",
		Long: `Shows the current conditions and a forecast of up to three days.

The city and number of days default to weather.city and weather.days.
Use --days 0 to skip the forecast.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWeather(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.City, "city", "", "City name (default weather.city)")
	cmd.Flags().IntVar(&opts.Days, "days", -1, "Forecast days, 0 to skip (default weather.days)")

	return cmd
}

func runWeather(cmd *cobra.Command, opts *WeatherOptions) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	city := opts.City
	if city == "" {
		city = a.cfg.Weather.City
	}
	days := opts.Days
	if days < 0 {
		days = a.cfg.Weather.Days
	}

	client := weather.NewClient(a.executor(a.cfg.Weather.BaseURL, func(b *http.Builder) *http.Builder {
		if key := a.cfg.Weather.API.Key; key != "" {
			b = b.WithBearerToken(key)
		}
		return b
	})).WithCache(a.cache, a.cfg.Cache.TTL)

	current, err := client.Current(ctx, city)
	if err != nil {
		return err
	}

	var forecast []weather.DayForecast
	if days > 0 {
		if forecast, err = client.Forecast(ctx, city, days); err != nil {
			return err
		}
	}
	return a.printer.Weather(current, forecast, time.Now())
}
