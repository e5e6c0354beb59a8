// Package config loads the service configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// DefaultSchemaURL is the schedule schema validated against when the
// configured URL is unset or empty.
const DefaultSchemaURL = "https://raw.githubusercontent.com/voc/schedule/master/validator/xsd/schedule.xml.xsd"

// Config represents the application configuration structure.
// It contains settings for the environment, HTTP server, schema and document
// retrieval, and graceful shutdown behavior.
type Config struct {
	// Environment specifies the current running environment (development, production, etc.)
	Environment string `env:"ENVIRONMENT" env-default:"development" yaml:"environment"`
	// LogLevel overrides the environment's default log level when set.
	LogLevel string `env:"LOG_LEVEL" yaml:"logLevel"`

	// HTTP contains all HTTP server related configurations
	HTTP struct {
		// Addr is the address and port the HTTP server will listen on
		Addr string `env:"HTTP_ADDR" env-default:":8080" yaml:"addr"`
		// ReadTimeout is the maximum duration for reading the entire request, including the body
		ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"1m" yaml:"readTimeout"`
		// ReadHeaderTimeout is the amount of time allowed to read request headers
		ReadHeaderTimeout time.Duration `env:"HTTP_READ_HEADER_TIMEOUT" env-default:"10s" yaml:"readHeaderTimeout"`
		// WriteTimeout is the maximum duration before timing out writes of the response
		WriteTimeout time.Duration `env:"HTTP_WRITE_TIMEOUT" env-default:"2m" yaml:"writeTimeout"`
		// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled
		IdleTimeout time.Duration `env:"HTTP_IDLE_TIMEOUT" env-default:"2m" yaml:"idleTimeout"`
		// RequestTimeout is the maximum time allowed for processing a single request
		RequestTimeout time.Duration `env:"HTTP_REQUEST_TIMEOUT" env-default:"1m" yaml:"requestTimeout"`
		// MaxHeaderBytes controls the maximum number of bytes the server will read parsing the request header
		MaxHeaderBytes int `env:"HTTP_MAX_HEADER_BYTES" env-default:"0" yaml:"maxHeaderBytes"`
		// MaxFormBytes limits the size of a submitted form or JSON body
		MaxFormBytes int64 `env:"HTTP_MAX_FORM_BYTES" env-default:"10485760" yaml:"maxFormBytes"`
		// MetricsPath defines the URL path where metrics are exposed
		MetricsPath string `env:"HTTP_METRICS_PATH" env-default:"/metrics" yaml:"metricsPath"`
		// CORSOrigins lists the browser origins allowed to call the JSON API; "*" allows any
		CORSOrigins []string `env:"HTTP_CORS_ORIGINS" env-default:"*" env-separator:"," yaml:"corsOrigins"`
		// Pprof exposes /debug/pprof/ when enabled
		Pprof bool `env:"HTTP_PPROF" env-default:"false" yaml:"pprof"`
	} `yaml:"http"`

	// Schema controls where the schema comes from and how it is fetched
	Schema struct {
		// URL is the location of the XSD, DefaultSchemaURL when empty
		URL string `env:"SCHEMA_URL" yaml:"url"`
		// Timeout bounds a single schema fetch
		Timeout time.Duration `env:"SCHEMA_TIMEOUT" env-default:"30s" yaml:"timeout"`
		// MaxBytes is the largest schema body accepted
		MaxBytes int64 `env:"SCHEMA_MAX_BYTES" env-default:"10485760" yaml:"maxBytes"`
		// RefreshInterval reloads the schema periodically; zero loads it once at startup
		RefreshInterval time.Duration `env:"SCHEMA_REFRESH_INTERVAL" env-default:"0s" yaml:"refreshInterval"`
		// StartupAttempts is how many times the initial fetch is tried before giving up
		StartupAttempts uint64 `env:"SCHEMA_STARTUP_ATTEMPTS" env-default:"3" yaml:"startupAttempts"`
	} `yaml:"schema"`

	// Document controls how remote documents are fetched
	Document struct {
		// Timeout bounds a single document fetch
		Timeout time.Duration `env:"DOCUMENT_TIMEOUT" env-default:"15s" yaml:"timeout"`
		// MaxBytes is the largest document body accepted
		MaxBytes int64 `env:"DOCUMENT_MAX_BYTES" env-default:"10485760" yaml:"maxBytes"`
	} `yaml:"document"`

	// GracefulShutdownTimeout is the maximum duration to wait for ongoing requests to complete during shutdown
	GracefulShutdownTimeout time.Duration `env:"GRACEFUL_SHUTDOWN_TIMEOUT" env-default:"10s" yaml:"gracefulShutdownTimeout"` //nolint: lll
}

// Load receives the path for yaml config file and returns a filled Config struct.
// When the file does not exist, only the environment and defaults are used.
func Load(configPath string) (*Config, error) {
	var cfg Config

	if err := read(configPath, &cfg); err != nil {
		return nil, err
	}
	if cfg.Schema.URL == "" {
		cfg.Schema.URL = DefaultSchemaURL
	}

	return &cfg, nil
}

func read(configPath string, cfg *Config) error {
	if configPath != "" {
		if _, err := os.Stat(configPath); !errors.Is(err, fs.ErrNotExist) {
			if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
				return fmt.Errorf("could not read config: %w", err)
			}

			return nil
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return fmt.Errorf("could not read config from environment: %w", err)
	}

	return nil
}
