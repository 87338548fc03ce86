package config

import (
	"bytes"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/cptspacemanspiff/batstat/internal/powersupply"
)

const (
	minCollectionIntervalSeconds = 1
	maxCollectionIntervalSeconds = 3600
)

const (
	BusSession = "session"
	BusSystem  = "system"
)

type Config struct {
	Sysfs      SysfsConfig      `toml:"sysfs" json:"sysfs"`
	Collection CollectionConfig `toml:"collection" json:"collection"`
	DBus       DBusConfig       `toml:"dbus" json:"dbus"`
	Metrics    MetricsConfig    `toml:"metrics" json:"metrics"`
}

type SysfsConfig struct {
	Root string `toml:"root" json:"root"`
}

type CollectionConfig struct {
	IntervalSeconds int `toml:"interval_seconds" json:"interval_seconds"`
}

type DBusConfig struct {
	Enabled bool   `toml:"enabled" json:"enabled"`
	Bus     string `toml:"bus" json:"bus"`
}

type MetricsConfig struct {
	Enabled    bool   `toml:"enabled" json:"enabled"`
	ListenAddr string `toml:"listen_addr" json:"listen_addr"`
}

func DefaultConfig() *Config {
	return &Config{
		Sysfs: SysfsConfig{
			Root: powersupply.DefaultRoot,
		},
		Collection: CollectionConfig{
			IntervalSeconds: 5,
		},
		DBus: DBusConfig{
			Enabled: true,
			Bus:     BusSession,
		},
		Metrics: MetricsConfig{
			Enabled:    false,
			ListenAddr: "localhost:9101",
		},
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return NormalizeAndValidate(cfg)
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return cfg, err
}

func NormalizeAndValidate(cfg *Config) (*Config, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}

	sanitized := *cfg

	var err error
	sanitized.Sysfs.Root, err = sanitizePath("sysfs.root", sanitized.Sysfs.Root)
	if err != nil {
		return nil, err
	}

	if err := validateRange("collection.interval_seconds", sanitized.Collection.IntervalSeconds, minCollectionIntervalSeconds, maxCollectionIntervalSeconds); err != nil {
		return nil, err
	}

	sanitized.DBus.Bus = strings.ToLower(strings.TrimSpace(sanitized.DBus.Bus))
	if sanitized.DBus.Bus != BusSession && sanitized.DBus.Bus != BusSystem {
		return nil, fmt.Errorf("dbus.bus must be %q or %q, got %q", BusSession, BusSystem, cfg.DBus.Bus)
	}

	sanitized.Metrics.ListenAddr = strings.TrimSpace(sanitized.Metrics.ListenAddr)
	if sanitized.Metrics.Enabled {
		if _, _, err := net.SplitHostPort(sanitized.Metrics.ListenAddr); err != nil {
			return nil, fmt.Errorf("metrics.listen_addr must be host:port, got %q", cfg.Metrics.ListenAddr)
		}
	}

	return &sanitized, nil
}

func Save(path string, cfg *Config) error {
	trimmedPath := strings.TrimSpace(path)
	if trimmedPath == "" {
		return fmt.Errorf("config path must not be empty")
	}

	sanitized, err := NormalizeAndValidate(cfg)
	if err != nil {
		return err
	}

	var data bytes.Buffer
	if err := toml.NewEncoder(&data).Encode(sanitized); err != nil {
		return fmt.Errorf("encode config TOML: %w", err)
	}

	dir := filepath.Dir(trimmedPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, ".config-*.toml")
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if tmpPath != "" {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data.Bytes()); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}
	if err := os.Rename(tmpPath, trimmedPath); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}
	tmpPath = ""

	return nil
}

func sanitizePath(name, value string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", fmt.Errorf("%s must not be empty", name)
	}
	cleaned := filepath.Clean(trimmed)
	if !filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%s must be an absolute path, got %q", name, value)
	}
	return cleaned, nil
}

func validateRange(name string, value, min, max int) error {
	if value < min || value > max {
		return fmt.Errorf("%s must be between %d and %d, got %d", name, min, max, value)
	}

	return nil
}
