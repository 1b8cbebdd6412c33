// Package config loads the backoffice server configuration from the
// environment and the optional seed fixture file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment variable read by Parse.
const EnvPrefix = "BACKOFFICE_"

// Config is the server configuration.
type Config struct {
	Addr      string `env:"ADDR" envDefault:":8080"`
	Verbose   bool   `env:"VERBOSE"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	SeedFile  string `env:"SEED_FILE"`

	RealtimeBuffer int `env:"REALTIME_BUFFER" envDefault:"100"`

	EmailProvider string `env:"EMAIL_PROVIDER" envDefault:"memory"`
	EmailFrom     string `env:"EMAIL_FROM" envDefault:"noreply@backoffice.local"`

	BankingDemoSeed bool `env:"BANKING_DEMO_SEED" envDefault:"true"`

	WebhookSecret string `env:"WEBHOOK_SECRET"`

	ErrorReportRate  float64 `env:"ERROR_REPORT_RATE" envDefault:"5"`
	ErrorReportBurst int     `env:"ERROR_REPORT_BURST" envDefault:"20"`

	MaxBodyBytes int64         `env:"MAX_BODY_BYTES" envDefault:"1048576"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout  time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
}

// Parse loads the configuration from BACKOFFICE_* environment variables.
func Parse() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		errs = append(errs, fmt.Errorf("log format must be json or console, got %q", c.LogFormat))
	}
	if c.RealtimeBuffer < 1 {
		errs = append(errs, fmt.Errorf("realtime buffer must be positive, got %d", c.RealtimeBuffer))
	}
	if c.EmailProvider == "" {
		errs = append(errs, errors.New("email provider must not be empty"))
	}
	if c.ErrorReportRate <= 0 {
		errs = append(errs, fmt.Errorf("error report rate must be positive, got %v", c.ErrorReportRate))
	}
	if c.ErrorReportBurst < 1 {
		errs = append(errs, fmt.Errorf("error report burst must be positive, got %d", c.ErrorReportBurst))
	}
	if c.MaxBodyBytes < 1 {
		errs = append(errs, fmt.Errorf("max body bytes must be positive, got %d", c.MaxBodyBytes))
	}
	for name, d := range map[string]time.Duration{
		"read timeout":  c.ReadTimeout,
		"write timeout": c.WriteTimeout,
		"idle timeout":  c.IdleTimeout,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %s", name, d))
		}
	}
	return errors.Join(errs...)
}

// Seed is the fixture file format: entities to create per CRUD resource.
type Seed struct {
	Resources map[string][]map[string]any `yaml:"resources"`
}

// LoadSeed reads a YAML (or JSON) seed file.
func LoadSeed(path string) (*Seed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed %s: %w", path, err)
	}

	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed %s: %w", path, err)
	}
	for name, rows := range seed.Resources {
		for i, row := range rows {
			if row == nil {
				return nil, fmt.Errorf("parsing seed %s: %s[%d] is not a mapping", path, name, i)
			}
		}
	}
	return &seed, nil
}
