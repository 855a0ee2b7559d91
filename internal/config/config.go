// Package config loads process configuration for the quire binaries from
// defaults, an optional config file and QUIRE_* environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/elbader17/quire/pkg/quire"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "QUIRE"

// LegacyEndpointEnv is the endpoint variable used by the web frontend.
const LegacyEndpointEnv = "GOOGLE_SHEETS_API_URL"

// Config is the process configuration.
type Config struct {
	Backend         string        `mapstructure:"backend"`
	Endpoint        string        `mapstructure:"endpoint"`
	EndpointPattern string        `mapstructure:"endpoint_pattern"`
	SpreadsheetID   string        `mapstructure:"spreadsheet_id"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RateLimit       float64       `mapstructure:"rate_limit"`
	Log             LogConfig     `mapstructure:"log"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func setDefaults(v *viper.Viper) {
	def := quire.DefaultConfig()
	v.SetDefault("backend", def.Backend)
	v.SetDefault("endpoint", "")
	v.SetDefault("endpoint_pattern", def.EndpointPattern)
	v.SetDefault("spreadsheet_id", "")
	v.SetDefault("credentials_file", "")
	v.SetDefault("timeout", def.Timeout)
	v.SetDefault("rate_limit", 0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Load reads configuration. path names an optional YAML, JSON or TOML file;
// environment variables override it. A missing endpoint is not an error:
// the data layer simply starts unconfigured.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("endpoint", EnvPrefix+"_ENDPOINT", LegacyEndpointEnv); err != nil {
		return nil, fmt.Errorf("failed to bind endpoint env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail later in confusing ways.
func (c *Config) Validate() error {
	switch c.Backend {
	case quire.BackendAppsScript, quire.BackendSheets:
	default:
		return fmt.Errorf("invalid backend %q: must be %s or %s",
			c.Backend, quire.BackendAppsScript, quire.BackendSheets)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout cannot be negative")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit cannot be negative")
	}
	return nil
}

// Quire converts the process configuration into a quire.Config, reading
// the service account file for the sheets backend.
func (c *Config) Quire() (quire.Config, error) {
	qc := quire.Config{
		Backend:         c.Backend,
		Endpoint:        c.Endpoint,
		EndpointPattern: c.EndpointPattern,
		SpreadsheetID:   c.SpreadsheetID,
		Timeout:         c.Timeout,
		RateLimit:       c.RateLimit,
	}

	if c.Backend == quire.BackendSheets && c.CredentialsFile != "" {
		creds, err := os.ReadFile(c.CredentialsFile)
		if err != nil {
			return quire.Config{}, fmt.Errorf("failed to read credentials: %w", err)
		}
		qc.Credentials = creds
	}
	return qc, nil
}
