package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	envprovider "github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	// DefaultConfigFile is read from the working directory when present
	DefaultConfigFile = "config.yaml"
	// DefaultEnvFile holds local secrets such as WEATHER_API_KEY and GITHUB_TOKEN
	DefaultEnvFile = ".env"
)

// Environment constants
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Options selects the configuration sources. Missing files are skipped.
type Options struct {
	ConfigFile string
	EnvFile    string
	// YAML is loaded after ConfigFile, mostly for embedding and tests
	YAML []byte
	// SkipEnv ignores process environment variables
	SkipEnv bool
}

// DefaultOptions reads config.yaml and .env from the working directory
func DefaultOptions() Options {
	return Options{
		ConfigFile: DefaultConfigFile,
		EnvFile:    DefaultEnvFile,
	}
}

// Load loads configuration using DefaultOptions
func Load() (*Config, error) {
	return LoadWithOptions(DefaultOptions())
}

// LoadWithOptions loads configuration from multiple sources with priority:
// 1. Environment variables (highest priority)
// 2. .env file
// 3. YAML configuration (file, then inline bytes)
// 4. Default values (lowest priority)
func LoadWithOptions(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := loadDefaults(k); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if opts.ConfigFile != "" {
		if err := loadOptionalFile(k, opts.ConfigFile, yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if len(opts.YAML) > 0 {
		if err := k.Load(rawbytes.Provider(opts.YAML), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse inline config: %w", err)
		}
	}

	if opts.EnvFile != "" {
		if err := loadOptionalFile(k, opts.EnvFile, dotenv.ParserEnv("", ".", envKey)); err != nil {
			return nil, err
		}
	}

	if !opts.SkipEnv {
		if err := k.Load(envprovider.Provider("", ".", envKey), nil); err != nil {
			return nil, fmt.Errorf("failed to load environment variables: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.k = k

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// envKey converts UPPER_CASE to lower.case for koanf
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(s), "_", ".")
}

func loadOptionalFile(k *koanf.Koanf, path string, parser koanf.Parser) error {
	err := k.Load(file.Provider(path), parser)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("failed to load %s: %w", path, err)
}

func loadDefaults(k *koanf.Koanf) error {
	defaults := map[string]any{
		"app.name":    "scriptkit",
		"app.version": "v1.0.0",
		"app.env":     EnvDevelopment,

		"log.level":           "info",
		"log.pretty":          false,
		"log.payloads":        false,
		"log.maxpayloadbytes": 1024,

		"http.timeout":    "10s",
		"http.maxretries": 3,
		"http.retrydelay": "1s",
		"http.useragent":  "go-scriptkit/1.0",
		"http.ratelimit":  0,
		"http.rateburst":  1,

		"placeholder.baseurl": "https://jsonplaceholder.typicode.com",

		"weather.baseurl": "https://wttr.in",
		"weather.city":    "London",
		"weather.days":    3,

		"github.baseurl": "https://api.github.com",
		"github.user":    "octocat",

		"expenses.file":  "expenses.csv",
		"files.dir":      ".",
		"portfolio.file": "client_data.json",

		"trace.enabled":    false,
		"trace.endpoint":   "stdout",
		"trace.protocol":   "http",
		"trace.insecure":   false,
		"trace.samplerate": 1.0,

		"cache.backend": CacheMemory,
		"cache.ttl":     "10m",
		"cache.addr":    "",
		"cache.db":      0,
	}

	return k.Load(confmap.Provider(defaults, "."), nil)
}

// String returns the raw value at key, for settings that are not modelled in Config
func (c *Config) String(key string) string {
	if c.k == nil {
		return ""
	}
	return c.k.String(key)
}

// Exists reports whether key was set by any source
func (c *Config) Exists(key string) bool {
	return c.k != nil && c.k.Exists(key)
}
