// Package config loads dietdesk settings: defaults, then an optional YAML
// file, then DIETDESK_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "DIETDESK_"

type Config struct {
	Port      string `yaml:"port"`
	DBPath    string `yaml:"db_path"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	// Seed installs the sample records when a collection has never been stored.
	Seed   bool         `yaml:"seed"`
	Export ExportConfig `yaml:"export"`
	Backup BackupConfig `yaml:"backup"`
}

// ExportConfig limits CSV and print requests per client.
type ExportConfig struct {
	RateLimit  int           `yaml:"rate_limit"`
	RateWindow time.Duration `yaml:"rate_window"`
}

type BackupConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Interval      time.Duration `yaml:"interval"`
	Passphrase    string        `yaml:"passphrase"`
	RetentionDays int           `yaml:"retention_days"`
	S3            S3Config      `yaml:"s3"`
}

type S3Config struct {
	Endpoint  string `yaml:"endpoint"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

func DefaultConfig() *Config {
	return &Config{
		Port:      "8080",
		DBPath:    "dietdesk.db",
		LogLevel:  "info",
		LogFormat: "text",
		Seed:      true,
		Export: ExportConfig{
			RateLimit:  30,
			RateWindow: time.Minute,
		},
		Backup: BackupConfig{
			Interval:      24 * time.Hour,
			RetentionDays: 30,
			S3: S3Config{
				Region: "us-east-1",
			},
		},
	}
}

// Load builds the configuration. path may be empty; a named file that does
// not exist is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type lookupFunc func(string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(envPrefix + name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = b
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(envPrefix + name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = n
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := lookup(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", envPrefix, name, err))
				return
			}
			*dst = d
		}
	}

	str("PORT", &c.Port)
	str("DB_PATH", &c.DBPath)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	boolean("SEED", &c.Seed)
	integer("EXPORT_RATE_LIMIT", &c.Export.RateLimit)
	duration("EXPORT_RATE_WINDOW", &c.Export.RateWindow)
	boolean("BACKUP_ENABLED", &c.Backup.Enabled)
	duration("BACKUP_INTERVAL", &c.Backup.Interval)
	str("BACKUP_PASSPHRASE", &c.Backup.Passphrase)
	integer("BACKUP_RETENTION_DAYS", &c.Backup.RetentionDays)
	str("S3_ENDPOINT", &c.Backup.S3.Endpoint)
	str("S3_BUCKET", &c.Backup.S3.Bucket)
	str("S3_REGION", &c.Backup.S3.Region)
	str("S3_ACCESS_KEY", &c.Backup.S3.AccessKey)
	str("S3_SECRET_KEY", &c.Backup.S3.SecretKey)
	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("port is required")
	}
	if n, err := strconv.Atoi(c.Port); err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("port %q is not a valid TCP port", c.Port)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	if c.Export.RateLimit < 1 {
		return fmt.Errorf("export.rate_limit must be positive")
	}
	if c.Export.RateWindow <= 0 {
		return fmt.Errorf("export.rate_window must be positive")
	}
	if c.Backup.Enabled {
		if err := c.Backup.validate(); err != nil {
			return fmt.Errorf("backup: %w", err)
		}
	}
	return nil
}

func (b BackupConfig) validate() error {
	if b.Passphrase == "" {
		return fmt.Errorf("passphrase is required")
	}
	if b.S3.Bucket == "" {
		return fmt.Errorf("s3.bucket is required")
	}
	if b.S3.AccessKey == "" || b.S3.SecretKey == "" {
		return fmt.Errorf("s3 credentials are required")
	}
	if b.Interval < 0 {
		return fmt.Errorf("interval must not be negative")
	}
	if b.RetentionDays < 0 {
		return fmt.Errorf("retention_days must not be negative")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}
