package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "")
	t.Setenv("ADMIN_PIN", "")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.Equal(t, 15000, cfg.Transfer.TimeoutMs)
}

func TestLoadConfig_YAML(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "")
	t.Setenv("ADMIN_PIN", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":8080"
storage:
  backend: sqlite
  sqlite_path: /tmp/x.db
kafka:
  brokers: ["localhost:9092"]
zones:
  default_radius_km: 40
  definitions:
    - id: pulkovo
      name: Pulkovo
      type: city
      level: city
      icao: ULLI
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.HTTP.Address)
	assert.Equal(t, StorageSQLite, cfg.Storage.Backend)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "skydispatch.audit", cfg.Kafka.AuditTopic, "unset keys keep defaults")
	require.Len(t, cfg.Zones.Definitions, 1)
	assert.Equal(t, "ULLI", cfg.Zones.Definitions[0].ICAO)
	assert.Equal(t, 40.0, cfg.Zones.DefaultRadiusKm)
}

func TestLoadConfig_TOML(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "")
	t.Setenv("ADMIN_PIN", "")

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[transfer]
timeout_ms = 30000

[redis]
addr = "localhost:6379"
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 30000, cfg.Transfer.TimeoutMs)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoadConfig_EnvOverridesAdmin(t *testing.T) {
	t.Setenv("ADMIN_USERNAME", "root")
	t.Setenv("ADMIN_PIN", "9999")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "root", cfg.Admin.Username)
	assert.Equal(t, "9999", cfg.Admin.PIN)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "mongo" }},
		{"zero timeout", func(c *Config) { c.Transfer.TimeoutMs = 0 }},
		{"zero radius", func(c *Config) { c.Zones.DefaultRadiusKm = 0 }},
		{"empty admin", func(c *Config) { c.Admin.Username = "" }},
		{"zero sweep", func(c *Config) { c.Worker.ExpirationSweepSeconds = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
	assert.NoError(t, Default().Validate())
}
