// Package config loads bizlens settings with koanf.
//
// Sources are layered, later ones winning:
//
//  1. struct defaults (defaultConfig)
//  2. a YAML file (BIZLENS_CONFIG, or the first of DefaultConfigPaths found)
//  3. BIZLENS_* environment variables (see envMappings)
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "BIZLENS_CONFIG"

// DefaultConfigPaths are probed in order when no explicit path is given.
var DefaultConfigPaths = []string{
	"bizlens.yaml",
	"bizlens.yml",
	"/etc/bizlens/config.yaml",
}

// Config is the root configuration.
type Config struct {
	Data    DataConfig    `koanf:"data"`
	Limits  LimitsConfig  `koanf:"limits"`
	Server  ServerConfig  `koanf:"server"`
	Logging LoggingConfig `koanf:"logging"`
}

// DataConfig selects where the entity snapshot comes from.
type DataConfig struct {
	// Source is jsonl, postgres or sqlite.
	Source string `koanf:"source" validate:"oneof=jsonl postgres sqlite"`
	// Dir holds the JSON-lines files when Source is jsonl.
	Dir string `koanf:"dir" validate:"required_if=Source jsonl"`
	// DSN is the database connection string for postgres and sqlite.
	DSN string `koanf:"dsn" validate:"required_unless=Source jsonl"`
	// Preload materializes the database into an in-memory snapshot at startup.
	Preload bool `koanf:"preload"`
}

// LimitsConfig holds the row caps of the analytical views.
type LimitsConfig struct {
	TopCategories      int    `koanf:"top_categories" validate:"min=1"`
	ActiveUsers        int    `koanf:"active_users" validate:"min=1"`
	BusinessesPerUser  int    `koanf:"businesses_per_user" validate:"min=1"`
	GrowthMinTraffic   int    `koanf:"growth_min_traffic" validate:"min=1"`
	RestaurantCategory string `koanf:"restaurant_category" validate:"required"`
	TopCities          int    `koanf:"top_cities" validate:"min=1"`
	CategoryBusinesses int    `koanf:"category_businesses" validate:"min=1"`
	Recommend          int    `koanf:"recommend" validate:"min=1"`
}

// ServerConfig configures the HTTP adapter.
type ServerConfig struct {
	Addr            string        `koanf:"addr" validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn warning error disabled"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}

func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Source:  "jsonl",
			Dir:     "data",
			Preload: true,
		},
		Limits: LimitsConfig{
			TopCategories:      15,
			ActiveUsers:        250,
			BusinessesPerUser:  30,
			GrowthMinTraffic:   100,
			RestaurantCategory: "Restaurants",
			TopCities:          25,
			CategoryBusinesses: 100,
			Recommend:          10,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads configuration. An empty path falls back to BIZLENS_CONFIG
// and then DefaultConfigPaths; a missing default file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("BIZLENS_", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks field constraints declared in validate tags.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return err
	}
	return nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var envMappings = map[string]string{
	"BIZLENS_DATA_SOURCE":                "data.source",
	"BIZLENS_DATA_DIR":                   "data.dir",
	"BIZLENS_DATA_DSN":                   "data.dsn",
	"BIZLENS_DATA_PRELOAD":               "data.preload",
	"BIZLENS_LIMITS_TOP_CATEGORIES":      "limits.top_categories",
	"BIZLENS_LIMITS_ACTIVE_USERS":        "limits.active_users",
	"BIZLENS_LIMITS_BUSINESSES_PER_USER": "limits.businesses_per_user",
	"BIZLENS_LIMITS_GROWTH_MIN_TRAFFIC":  "limits.growth_min_traffic",
	"BIZLENS_LIMITS_RESTAURANT_CATEGORY": "limits.restaurant_category",
	"BIZLENS_LIMITS_TOP_CITIES":          "limits.top_cities",
	"BIZLENS_LIMITS_CATEGORY_BUSINESSES": "limits.category_businesses",
	"BIZLENS_LIMITS_RECOMMEND":           "limits.recommend",
	"BIZLENS_SERVER_ADDR":                "server.addr",
	"BIZLENS_SERVER_READ_TIMEOUT":        "server.read_timeout",
	"BIZLENS_SERVER_WRITE_TIMEOUT":       "server.write_timeout",
	"BIZLENS_SERVER_SHUTDOWN_TIMEOUT":    "server.shutdown_timeout",
	"BIZLENS_LOG_LEVEL":                  "logging.level",
	"BIZLENS_LOG_FORMAT":                 "logging.format",
	"BIZLENS_LOG_CALLER":                 "logging.caller",
}

// envTransformFunc maps known variables to config keys; unknown ones
// return "" and are skipped by the provider.
func envTransformFunc(key string) string {
	return envMappings[strings.ToUpper(key)]
}
