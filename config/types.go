package config

import (
	"time"

	"github.com/knadh/koanf/v2"
)

// Config represents the overall configuration of the scriptkit tools.
// The koanf instance is kept for ad-hoc lookups of keys not modelled here.
type Config struct {
	App         AppConfig         `koanf:"app" json:"app" yaml:"app"`
	Log         LogConfig         `koanf:"log" json:"log" yaml:"log"`
	HTTP        HTTPConfig        `koanf:"http" json:"http" yaml:"http"`
	Placeholder PlaceholderConfig `koanf:"placeholder" json:"placeholder" yaml:"placeholder"`
	Weather     WeatherConfig     `koanf:"weather" json:"weather" yaml:"weather"`
	GitHub      GitHubConfig      `koanf:"github" json:"github" yaml:"github"`
	Expenses    ExpensesConfig    `koanf:"expenses" json:"expenses" yaml:"expenses"`
	Files       FilesConfig       `koanf:"files" json:"files" yaml:"files"`
	Portfolio   PortfolioConfig   `koanf:"portfolio" json:"portfolio" yaml:"portfolio"`
	Trace       TraceConfig       `koanf:"trace" json:"trace" yaml:"trace"`
	Cache       CacheConfig       `koanf:"cache" json:"cache" yaml:"cache"`

	k *koanf.Koanf `json:"-" yaml:"-"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name    string `koanf:"name" json:"name" yaml:"name" validate:"required"`
	Version string `koanf:"version" json:"version" yaml:"version" validate:"required"`
	Env     string `koanf:"env" json:"env" yaml:"env" validate:"oneof=development staging production"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" json:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Pretty bool   `koanf:"pretty" json:"pretty" yaml:"pretty"`
	// Payloads enables debug logging of request and response bodies
	Payloads        bool `koanf:"payloads" json:"payloads" yaml:"payloads"`
	MaxPayloadBytes int  `koanf:"maxpayloadbytes" json:"maxpayloadbytes" yaml:"maxpayloadbytes" validate:"gte=0"`
}

// HTTPConfig holds the retry policy shared by every API client.
type HTTPConfig struct {
	Timeout    time.Duration `koanf:"timeout" json:"timeout" yaml:"timeout" validate:"gt=0"`
	MaxRetries int           `koanf:"maxretries" json:"maxretries" yaml:"maxretries" validate:"min=1"`
	RetryDelay time.Duration `koanf:"retrydelay" json:"retrydelay" yaml:"retrydelay" validate:"gte=0"`
	UserAgent  string        `koanf:"useragent" json:"useragent" yaml:"useragent"`
	// RateLimit caps attempts per second per API client, 0 for unlimited
	RateLimit float64 `koanf:"ratelimit" json:"ratelimit" yaml:"ratelimit" validate:"gte=0"`
	RateBurst int     `koanf:"rateburst" json:"rateburst" yaml:"rateburst" validate:"gte=0"`
}

// PlaceholderConfig points at a JSONPlaceholder compatible API.
type PlaceholderConfig struct {
	BaseURL string `koanf:"baseurl" json:"baseurl" yaml:"baseurl" validate:"required,url"`
}

// WeatherConfig holds the wttr.in client settings.
type WeatherConfig struct {
	BaseURL string        `koanf:"baseurl" json:"baseurl" yaml:"baseurl" validate:"required,url"`
	API     WeatherAPIKey `koanf:"api" json:"api" yaml:"api"`
	City    string        `koanf:"city" json:"city" yaml:"city" validate:"required"`
	Days    int           `koanf:"days" json:"days" yaml:"days" validate:"min=1,max=3"`
}

// WeatherAPIKey maps WEATHER_API_KEY onto weather.api.key.
type WeatherAPIKey struct {
	Key string `koanf:"key" json:"-" yaml:"key"`
}

// GitHubConfig holds the GitHub REST client settings.
type GitHubConfig struct {
	BaseURL string `koanf:"baseurl" json:"baseurl" yaml:"baseurl" validate:"required,url"`
	Token   string `koanf:"token" json:"-" yaml:"token"`
	User    string `koanf:"user" json:"user" yaml:"user"`
}

// ExpensesConfig holds the default expense CSV location.
type ExpensesConfig struct {
	File string `koanf:"file" json:"file" yaml:"file"`
}

// FilesConfig holds the default directory to analyze.
type FilesConfig struct {
	Dir string `koanf:"dir" json:"dir" yaml:"dir"`
}

// PortfolioConfig holds the default client portfolio file.
type PortfolioConfig struct {
	File string `koanf:"file" json:"file" yaml:"file"`
}

// TraceConfig controls span export for outgoing requests.
type TraceConfig struct {
	Enabled bool `koanf:"enabled" json:"enabled" yaml:"enabled"`
	// Endpoint is an OTLP collector address, or "stdout" to print spans
	Endpoint   string  `koanf:"endpoint" json:"endpoint" yaml:"endpoint" validate:"required_if=Enabled true"`
	Protocol   string  `koanf:"protocol" json:"protocol" yaml:"protocol" validate:"oneof=http grpc"`
	Insecure   bool    `koanf:"insecure" json:"insecure" yaml:"insecure"`
	SampleRate float64 `koanf:"samplerate" json:"samplerate" yaml:"samplerate" validate:"gte=0,lte=1"`
}

// CacheConfig selects where API responses are cached between requests.
type CacheConfig struct {
	// Backend is "memory" (one run), "redis" (shared between runs) or "none"
	Backend  string        `koanf:"backend" json:"backend" yaml:"backend" validate:"oneof=memory redis none"`
	TTL      time.Duration `koanf:"ttl" json:"ttl" yaml:"ttl" validate:"gte=0"`
	Addr     string        `koanf:"addr" json:"addr" yaml:"addr" validate:"required_if=Backend redis"`
	Password string        `koanf:"password" json:"-" yaml:"password"`
	DB       int           `koanf:"db" json:"db" yaml:"db" validate:"gte=0,lte=15"`
}
