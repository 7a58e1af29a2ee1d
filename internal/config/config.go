package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Gateway drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

const (
	// DefaultHTTPAddr is where `culto serve` listens unless configured.
	DefaultHTTPAddr = ":8080"
	// DefaultPinnedSite is always sorted first.
	DefaultPinnedSite = "INA Centro"
)

// Config represents the flat culto configuration.
type Config struct {
	Version     string       `json:"version"`
	Driver      string       `json:"driver"`                 // "sqlite" or "postgres"
	SQLitePath  string       `json:"sqlite_path,omitempty"`  // defaults to ~/.culto/culto.db
	PostgresDSN string       `json:"postgres_dsn,omitempty"` // required for the postgres driver
	PinnedSite  string       `json:"pinned_site,omitempty"`
	UserID      string       `json:"user_id,omitempty"` // acting user for capability checks
	HTTPAddr    string       `json:"http_addr,omitempty"`
	Export      ExportConfig `json:"export"`
}

// ExportConfig configures report uploads. Uploads are disabled without a bucket.
type ExportConfig struct {
	S3Bucket    string `json:"s3_bucket,omitempty"`
	S3Region    string `json:"s3_region,omitempty"`
	S3Endpoint  string `json:"s3_endpoint,omitempty"`
	S3PathStyle bool   `json:"s3_path_style,omitempty"`
	S3Prefix    string `json:"s3_prefix,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Version:    "1.0",
		Driver:     DriverSQLite,
		PinnedSite: DefaultPinnedSite,
		HTTPAddr:   DefaultHTTPAddr,
	}
}

// LoadConfig reads .culto/config.json from the specified directory.
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".culto", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes config.json to directory
func SaveConfig(dir string, cfg *Config) error {
	cultoDir := filepath.Join(dir, ".culto")
	if err := os.MkdirAll(cultoDir, 0755); err != nil {
		return fmt.Errorf("failed to create .culto dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(cultoDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Load resolves the effective configuration for dir: defaults, then
// .culto/config.json if present, then dir/.env, then process environment.
func Load(dir string) (*Config, error) {
	cfg, err := LoadConfig(dir)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = Default()
	} else if err != nil {
		return nil, err
	}

	// A missing .env is normal; variables already in the environment win.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Driver = strings.ToLower(GetEnv("CULTO_DRIVER", c.Driver))
	c.SQLitePath = GetEnv("CULTO_SQLITE_PATH", c.SQLitePath)
	c.PostgresDSN = GetEnv("CULTO_POSTGRES_DSN", c.PostgresDSN)
	c.PinnedSite = GetEnv("CULTO_PINNED_SITE", c.PinnedSite)
	c.UserID = GetEnv("CULTO_USER_ID", c.UserID)
	c.HTTPAddr = GetEnv("CULTO_HTTP_ADDR", c.HTTPAddr)
	c.Export.S3Bucket = GetEnv("CULTO_EXPORT_S3_BUCKET", c.Export.S3Bucket)
	c.Export.S3Region = GetEnv("CULTO_EXPORT_S3_REGION", c.Export.S3Region)
	c.Export.S3Endpoint = GetEnv("CULTO_EXPORT_S3_ENDPOINT", c.Export.S3Endpoint)
	c.Export.S3Prefix = GetEnv("CULTO_EXPORT_S3_PREFIX", c.Export.S3Prefix)
	if v, ok := os.LookupEnv("CULTO_EXPORT_S3_PATH_STYLE"); ok {
		c.Export.S3PathStyle = strings.EqualFold(v, "true")
	}
}

// Validate checks that the selected driver has what it needs.
func (c *Config) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		return nil
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("CULTO_POSTGRES_DSN is required for the postgres driver")
		}
		return nil
	default:
		return fmt.Errorf("unknown driver %q (want %s or %s)", c.Driver, DriverSQLite, DriverPostgres)
	}
}

// UploadsEnabled reports whether exports can be sent to a bucket.
func (c *Config) UploadsEnabled() bool {
	return c.Export.S3Bucket != ""
}

// GetEnv returns the value of key, or the first default when key is unset.
func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}
