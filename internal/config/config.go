package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config is the read-only snapshot of the agent configuration for one run.
type Config struct {
	Tunnels            []string `mapstructure:"tunnels"`
	Ping               Ping     `mapstructure:"ping"`
	CooldownMinutes    int      `mapstructure:"cooldown_minutes"`
	WireGuardConfigDir string   `mapstructure:"wireguard_config_dir"`
	ManagedServices    []string `mapstructure:"managed_services"`
	StateDir           string   `mapstructure:"state_dir"`
	LogFile            string   `mapstructure:"log_file"`
}

// Ping holds the connectivity probe settings.
type Ping struct {
	Primary        string `mapstructure:"primary"`
	Secondary      string `mapstructure:"secondary"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	RetrySeconds   int    `mapstructure:"retry_seconds"`
}

// SetDefaults registers the built-in default for every known key.
// Values present in the config file override these per top-level key;
// unknown keys in the file are ignored.
func SetDefaults() {
	viper.SetDefault("tunnels", []string{"wg0"})
	viper.SetDefault("ping.primary", "1.1.1.1")
	viper.SetDefault("ping.secondary", "8.8.8.8")
	viper.SetDefault("ping.timeout_seconds", 5)
	viper.SetDefault("ping.retry_seconds", 10)
	viper.SetDefault("cooldown_minutes", 30)
	viper.SetDefault("wireguard_config_dir", "/etc/wireguard")
	viper.SetDefault("managed_services", []string{})
	viper.SetDefault("state_dir", "/var/lib/wireguard-monitor")
	viper.SetDefault("log_file", "/var/log/wireguard-monitor.log")
}

// Load builds the configuration snapshot from viper's merged state.
func Load() (*Config, error) {
	SetDefaults()

	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects snapshots the recovery cycle cannot run with.
func (c *Config) Validate() error {
	if len(c.Tunnels) == 0 {
		return errors.New("tunnels must list at least one allowed tunnel")
	}
	if c.Ping.Primary == "" || c.Ping.Secondary == "" {
		return errors.New("ping.primary and ping.secondary are required")
	}
	if c.Ping.TimeoutSeconds <= 0 {
		return errors.New("ping.timeout_seconds must be positive")
	}
	if c.Ping.RetrySeconds < 0 {
		return errors.New("ping.retry_seconds must not be negative")
	}
	if c.CooldownMinutes < 0 {
		return errors.New("cooldown_minutes must not be negative")
	}
	return nil
}

// PingTimeout returns the per-probe timeout.
func (c *Config) PingTimeout() time.Duration {
	return time.Duration(c.Ping.TimeoutSeconds) * time.Second
}

// RetryDelay returns the wait between the primary and secondary probe.
func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.Ping.RetrySeconds) * time.Second
}

// Cooldown returns the minimum interval between failed recovery attempts.
func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.CooldownMinutes) * time.Minute
}

// TunnelDefinition returns the path of a tunnel's WireGuard config file.
func (c *Config) TunnelDefinition(name string) string {
	return filepath.Join(c.WireGuardConfigDir, name+".conf")
}

// Regenerate writes the merged configuration back to path. Values read
// from an existing file survive; keys the file never set are written
// with their defaults, so upgrades add newly-introduced keys in place.
func Regenerate(path string) error {
	SetDefaults()
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}
