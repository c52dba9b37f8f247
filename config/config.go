package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Domenick1991/skydispatch/internal/zones"
	"gopkg.in/yaml.v3"
)

const (
	StorageFile     = "file"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http" toml:"http"`
	Storage  StorageConfig  `yaml:"storage" toml:"storage"`
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Redis    RedisConfig    `yaml:"redis" toml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka" toml:"kafka"`
	Airports AirportsConfig `yaml:"airports" toml:"airports"`
	Zones    ZonesConfig    `yaml:"zones" toml:"zones"`
	Transfer TransferConfig `yaml:"transfer" toml:"transfer"`
	Admin    AdminConfig    `yaml:"admin" toml:"admin"`
	Seed     SeedConfig     `yaml:"seed" toml:"seed"`
	Worker   WorkerConfig   `yaml:"worker" toml:"worker"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
}

type HTTPConfig struct {
	Address string `yaml:"address" toml:"address"`
	Swagger bool   `yaml:"swagger" toml:"swagger"`
}

type StorageConfig struct {
	Backend    string `yaml:"backend" toml:"backend"`
	DataDir    string `yaml:"data_dir" toml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path" toml:"sqlite_path"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" toml:"host"`
	Port     int    `yaml:"port" toml:"port"`
	User     string `yaml:"user" toml:"user"`
	Password string `yaml:"password" toml:"password"`
	Name     string `yaml:"name" toml:"name"`
	SSLMode  string `yaml:"ssl_mode" toml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig enables the flight list cache when Addr is set.
type RedisConfig struct {
	Addr              string `yaml:"addr" toml:"addr"`
	Password          string `yaml:"password" toml:"password"`
	DB                int    `yaml:"db" toml:"db"`
	FlightsTTLSeconds int    `yaml:"flights_ttl_seconds" toml:"flights_ttl_seconds"`
}

// KafkaConfig enables event publishing when Brokers is not empty.
type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" toml:"brokers"`
	AuditTopic         string   `yaml:"audit_topic" toml:"audit_topic"`
	NotificationsTopic string   `yaml:"notifications_topic" toml:"notifications_topic"`
	GroupID            string   `yaml:"group_id" toml:"group_id"`
}

type AirportsConfig struct {
	DatasetPath     string `yaml:"dataset_path" toml:"dataset_path"`
	SearchCacheSize int    `yaml:"search_cache_size" toml:"search_cache_size"`
}

// ZonesConfig replaces the built-in zone layout when Definitions is set.
type ZonesConfig struct {
	DefaultRadiusKm float64            `yaml:"default_radius_km" toml:"default_radius_km"`
	Definitions     []zones.Definition `yaml:"definitions" toml:"definitions"`
}

type TransferConfig struct {
	TimeoutMs int `yaml:"timeout_ms" toml:"timeout_ms"`
}

type AdminConfig struct {
	Username string `yaml:"username" toml:"username"`
	PIN      string `yaml:"pin" toml:"pin"`
}

type SeedConfig struct {
	Enabled bool `yaml:"enabled" toml:"enabled"`
}

type WorkerConfig struct {
	ExpirationSweepSeconds int `yaml:"expiration_sweep_seconds" toml:"expiration_sweep_seconds"`
}

type LoggingConfig struct {
	Level      string `yaml:"level" toml:"level"`
	Format     string `yaml:"format" toml:"format"`
	File       string `yaml:"file" toml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days" toml:"max_age_days"`
}

func Default() *Config {
	return &Config{
		HTTP:     HTTPConfig{Address: ":3001", Swagger: true},
		Storage:  StorageConfig{Backend: StorageFile, DataDir: "data", SQLitePath: "data/skydispatch.db"},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, User: "postgres", Name: "skydispatch", SSLMode: "disable"},
		Redis:    RedisConfig{FlightsTTLSeconds: 30},
		Kafka: KafkaConfig{
			AuditTopic:         "skydispatch.audit",
			NotificationsTopic: "skydispatch.notifications",
			GroupID:            "skydispatch-worker",
		},
		Airports: AirportsConfig{DatasetPath: "data/airports.json", SearchCacheSize: 256},
		Zones:    ZonesConfig{DefaultRadiusKm: zones.DefaultRadiusKm},
		Transfer: TransferConfig{TimeoutMs: 15000},
		Admin:    AdminConfig{Username: "admin", PIN: "0000"},
		Seed:     SeedConfig{Enabled: true},
		Worker:   WorkerConfig{ExpirationSweepSeconds: 5},
		Logging:  LoggingConfig{Level: "info", Format: "console", MaxSizeMB: 50, MaxBackups: 3, MaxAgeDays: 28},
	}
}

// LoadConfig reads path over Default. Files ending in .toml are decoded as
// TOML, everything else as YAML. A missing file leaves the defaults in place.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	case strings.EqualFold(filepath.Ext(path), ".toml"):
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ADMIN_USERNAME"); v != "" {
		c.Admin.Username = v
	}
	if v := os.Getenv("ADMIN_PIN"); v != "" {
		c.Admin.PIN = v
	}
}

func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case StorageFile, StorageSQLite, StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Transfer.TimeoutMs <= 0 {
		return fmt.Errorf("transfer.timeout_ms must be positive, got %d", c.Transfer.TimeoutMs)
	}
	if c.Worker.ExpirationSweepSeconds <= 0 {
		return fmt.Errorf("worker.expiration_sweep_seconds must be positive, got %d", c.Worker.ExpirationSweepSeconds)
	}
	if c.Zones.DefaultRadiusKm <= 0 {
		return fmt.Errorf("zones.default_radius_km must be positive, got %v", c.Zones.DefaultRadiusKm)
	}
	for _, def := range c.Zones.Definitions {
		if def.ID == "" {
			return errors.New("zone definition without id")
		}
		if def.RadiusKm < 0 {
			return fmt.Errorf("zone %s: negative radius", def.ID)
		}
	}
	if c.Admin.Username == "" {
		return errors.New("admin.username is required")
	}
	return nil
}
