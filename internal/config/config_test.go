package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const minimalYAML = `
instance:
  id: test-engine
market:
  catalog:
    - id: 1
      name: Chocolate
      stock: 4
    - id: 2
      name: Coffee
      stock: 8
`

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeTempFile(t, minimalYAML)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "test-engine" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "test-engine")
	}
	if len(cfg.Market.Catalog) != 2 {
		t.Fatalf("len(Catalog) = %d, want 2", len(cfg.Market.Catalog))
	}
	if cfg.Market.Catalog[0].Name != "Chocolate" || cfg.Market.Catalog[0].Stock != 4 {
		t.Errorf("Catalog[0] = %+v, want Chocolate/4", cfg.Market.Catalog[0])
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := minimalYAML + `
database:
  enabled: true
  host: localhost
  name: market
  user: engine
  password: ${TEST_DB_PASSWORD}
`
	path := writeTempFile(t, yaml)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Database.Password != "secret123" {
		t.Errorf("Database.Password = %q, want %q", cfg.Database.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	path := writeTempFile(t, minimalYAML)

	cfg, err := LoadWithDefaults(path)
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	if cfg.Server.Port != DefaultServerPort {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, DefaultServerPort)
	}
	if cfg.Market.Retention != DefaultRetention {
		t.Errorf("Market.Retention = %d, want %d", cfg.Market.Retention, DefaultRetention)
	}
	if cfg.Market.TickInterval != time.Second {
		t.Errorf("Market.TickInterval = %v, want 1s", cfg.Market.TickInterval)
	}
	if cfg.Client.MaxRetries != DefaultMaxRetries {
		t.Errorf("Client.MaxRetries = %d, want %d", cfg.Client.MaxRetries, DefaultMaxRetries)
	}
}

func TestLoadAndValidate(t *testing.T) {
	path := writeTempFile(t, minimalYAML)

	if _, err := LoadAndValidate(path); err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
}

func TestValidate_MissingInstanceID(t *testing.T) {
	path := writeTempFile(t, strings.Replace(minimalYAML, "id: test-engine", `id: ""`, 1))

	_, err := LoadAndValidate(path)
	if err == nil || !strings.Contains(err.Error(), "instance.id") {
		t.Errorf("err = %v, want instance.id error", err)
	}
}

func TestValidate_EmptyCatalog(t *testing.T) {
	path := writeTempFile(t, "instance:\n  id: x\n")

	_, err := LoadAndValidate(path)
	if err == nil || !strings.Contains(err.Error(), "catalog") {
		t.Errorf("err = %v, want catalog error", err)
	}
}

func TestValidate_DuplicateCatalogID(t *testing.T) {
	yaml := `
instance:
  id: x
market:
  catalog:
    - id: 1
      name: A
      stock: 1
    - id: 1
      name: B
      stock: 1
`
	path := writeTempFile(t, yaml)

	_, err := LoadAndValidate(path)
	if err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("err = %v, want duplicate id error", err)
	}
}

func TestValidate_EnabledDatabaseNeedsHost(t *testing.T) {
	yaml := minimalYAML + `
database:
  enabled: true
  name: market
  user: engine
`
	path := writeTempFile(t, yaml)

	_, err := LoadAndValidate(path)
	if err == nil || !strings.Contains(err.Error(), "database.host") {
		t.Errorf("err = %v, want database.host error", err)
	}
}

func TestValidate_DisabledDatabaseSkipsChecks(t *testing.T) {
	path := writeTempFile(t, minimalYAML)

	cfg, err := LoadAndValidate(path)
	if err != nil {
		t.Fatalf("LoadAndValidate failed: %v", err)
	}
	if cfg.Database.Enabled {
		t.Error("database should be disabled by default")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}
