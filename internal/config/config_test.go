package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.DBPath != "dietdesk.db" {
		t.Errorf("expected dietdesk.db, got %s", cfg.DBPath)
	}
	if !cfg.Seed {
		t.Error("expected seed on by default")
	}
	if cfg.Backup.Enabled {
		t.Error("expected backups off by default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	enabledBackup := func(c *Config) {
		c.Backup.Enabled = true
		c.Backup.Passphrase = "pass"
		c.Backup.S3 = S3Config{Bucket: "b", AccessKey: "a", SecretKey: "s", Region: "us-east-1"}
	}
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"valid default config", func(c *Config) {}, false},
		{"missing port", func(c *Config) { c.Port = "" }, true},
		{"non-numeric port", func(c *Config) { c.Port = "http" }, true},
		{"port out of range", func(c *Config) { c.Port = "70000" }, true},
		{"missing db path", func(c *Config) { c.DBPath = "" }, true},
		{"bad log format", func(c *Config) { c.LogFormat = "xml" }, true},
		{"zero export limit", func(c *Config) { c.Export.RateLimit = 0 }, true},
		{"backup configured", enabledBackup, false},
		{"backup without passphrase", func(c *Config) { enabledBackup(c); c.Backup.Passphrase = "" }, true},
		{"backup without bucket", func(c *Config) { enabledBackup(c); c.Backup.S3.Bucket = "" }, true},
		{"backup without credentials", func(c *Config) { enabledBackup(c); c.Backup.S3.SecretKey = "" }, true},
		{"disabled backup is not checked", func(c *Config) { c.Backup.Passphrase = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dietdesk.yaml")
	content := `port: "9090"
db_path: /var/lib/dietdesk/data.db
log_format: json
seed: false
export:
  rate_limit: 5
backup:
  enabled: true
  interval: 6h
  passphrase: kitchen
  s3:
    bucket: dietdesk-backups
    access_key: AK
    secret_key: SK
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "9090" || cfg.DBPath != "/var/lib/dietdesk/data.db" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.Seed {
		t.Error("expected seed off")
	}
	if cfg.Export.RateLimit != 5 || cfg.Export.RateWindow != time.Minute {
		t.Errorf("unexpected export config %+v", cfg.Export)
	}
	if cfg.Backup.Interval != 6*time.Hour {
		t.Errorf("expected 6h interval, got %v", cfg.Backup.Interval)
	}
	if cfg.Backup.S3.Region != "us-east-1" {
		t.Errorf("expected default region kept, got %q", cfg.Backup.S3.Region)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("DIETDESK_PORT", "7070")
	t.Setenv("DIETDESK_SEED", "false")
	t.Setenv("DIETDESK_EXPORT_RATE_WINDOW", "30s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "7070" {
		t.Errorf("expected port 7070, got %s", cfg.Port)
	}
	if cfg.Seed {
		t.Error("expected seed off from env")
	}
	if cfg.Export.RateWindow != 30*time.Second {
		t.Errorf("expected 30s window, got %v", cfg.Export.RateWindow)
	}
}

func TestApplyEnvReportsBadValues(t *testing.T) {
	env := map[string]string{
		"DIETDESK_SEED":              "maybe",
		"DIETDESK_EXPORT_RATE_LIMIT": "lots",
	}
	cfg := DefaultConfig()
	err := cfg.applyEnv(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	if err == nil {
		t.Fatal("expected error")
	}
	for _, name := range []string{"DIETDESK_SEED", "DIETDESK_EXPORT_RATE_LIMIT"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q does not mention %s", err, name)
		}
	}
}
