package config

import (
	"os"
	"path/filepath"
	"testing"
)

// clearEnv unsets every CULTO_ variable for the duration of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"CULTO_DRIVER", "CULTO_SQLITE_PATH", "CULTO_POSTGRES_DSN", "CULTO_PINNED_SITE",
		"CULTO_USER_ID", "CULTO_HTTP_ADDR", "CULTO_EXPORT_S3_BUCKET", "CULTO_EXPORT_S3_REGION",
		"CULTO_EXPORT_S3_ENDPOINT", "CULTO_EXPORT_S3_PREFIX", "CULTO_EXPORT_S3_PATH_STYLE",
	} {
		if old, ok := os.LookupEnv(key); ok {
			t.Cleanup(func() { os.Setenv(key, old) })
		} else {
			t.Cleanup(func() { os.Unsetenv(key) })
		}
		os.Unsetenv(key)
	}
}

func TestSaveAndLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()

	cfg := Default()
	cfg.UserID = "user-1"
	cfg.Export.S3Bucket = "exports"
	if err := SaveConfig(tmpDir, cfg); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	loaded, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if loaded.UserID != "user-1" || loaded.Export.S3Bucket != "exports" {
		t.Errorf("round trip lost fields: %+v", loaded)
	}
	if loaded.Driver != DriverSQLite {
		t.Errorf("Driver = %q, want sqlite", loaded.Driver)
	}
}

func TestLoadConfig_PartialFileKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	cultoDir := filepath.Join(tmpDir, ".culto")
	if err := os.MkdirAll(cultoDir, 0755); err != nil {
		t.Fatalf("failed to create .culto dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cultoDir, "config.json"), []byte(`{"version":"1.0","user_id":"u"}`), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := LoadConfig(tmpDir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.PinnedSite != DefaultPinnedSite || cfg.HTTPAddr != DefaultHTTPAddr {
		t.Errorf("defaults not kept: %+v", cfg)
	}
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Driver != DriverSQLite || cfg.UploadsEnabled() {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	cfg := Default()
	cfg.PinnedSite = "INA Arapongas"
	if err := SaveConfig(tmpDir, cfg); err != nil {
		t.Fatal(err)
	}

	t.Setenv("CULTO_PINNED_SITE", "INA Londrina")
	t.Setenv("CULTO_EXPORT_S3_PATH_STYLE", "TRUE")

	loaded, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if loaded.PinnedSite != "INA Londrina" {
		t.Errorf("PinnedSite = %q, want env value", loaded.PinnedSite)
	}
	if !loaded.Export.S3PathStyle {
		t.Error("expected path style from env")
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, ".env"), []byte("CULTO_EXPORT_S3_BUCKET=relatorios\nCULTO_USER_ID=dev-admin\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.UploadsEnabled() || cfg.Export.S3Bucket != "relatorios" {
		t.Errorf("bucket not loaded from .env: %+v", cfg.Export)
	}
	if cfg.UserID != "dev-admin" {
		t.Errorf("UserID = %q, want dev-admin", cfg.UserID)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"sqlite", Config{Driver: DriverSQLite}, false},
		{"postgres with dsn", Config{Driver: DriverPostgres, PostgresDSN: "postgres://localhost/culto"}, false},
		{"postgres without dsn", Config{Driver: DriverPostgres}, true},
		{"unknown driver", Config{Driver: "mongo"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetEnv(t *testing.T) {
	clearEnv(t)
	if got := GetEnv("CULTO_HTTP_ADDR", ":9000"); got != ":9000" {
		t.Errorf("expected default, got %q", got)
	}
	t.Setenv("CULTO_HTTP_ADDR", "")
	if got := GetEnv("CULTO_HTTP_ADDR", ":9000"); got != "" {
		t.Errorf("set-but-empty should win over default, got %q", got)
	}
}
