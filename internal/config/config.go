// Package config loads the server configuration: hard-coded defaults, then
// an optional YAML file, then environment overrides, then validation.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v2"
)

// DefaultFile is read when no path is given and the file exists.
const DefaultFile = "girsd.yaml"

// Config represents the server configuration.
type Config struct {
	Server     ServerConfig      `yaml:"server"`
	Network    NetworkConfig     `yaml:"network"`
	Hardware   HardwareConfig    `yaml:"hardware"`
	Remotes    []RemoteSource    `yaml:"remotes"`
	Parameters map[string]string `yaml:"parameters"`
	Logging    LoggingConfig     `yaml:"logging"`
	Audit      AuditConfig       `yaml:"audit"`
	Auth       AuthConfig        `yaml:"auth"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

type NetworkConfig struct {
	TCP  TCPConfig  `yaml:"tcp"`
	HTTP HTTPConfig `yaml:"http"`
}

// TCPConfig configures the line-protocol listener.
type TCPConfig struct {
	Enabled        bool     `yaml:"enabled"`
	Port           int      `yaml:"port"`
	AllowedCIDRs   []string `yaml:"allowedCidrs"`
	IdleTimeoutSec int      `yaml:"idleTimeoutSec"`
	MaxSessions    int      `yaml:"maxSessions"`
}

type HTTPConfig struct {
	Enabled      bool `yaml:"enabled"`
	Port         int  `yaml:"port"`
	EventBuffer  int  `yaml:"eventBuffer"`
	HeartbeatSec int  `yaml:"heartbeatSec"`
}

// HardwareConfig lists the devices to build and the one selected at start.
type HardwareConfig struct {
	Default string         `yaml:"default"`
	Devices []DeviceConfig `yaml:"devices"`
}

// DeviceConfig names a device, its factory type tag and factory arguments.
type DeviceConfig struct {
	Name string   `yaml:"name"`
	Type string   `yaml:"type"`
	Args []string `yaml:"args"`
}

// RemoteSource is a remote-definition file; an empty type is inferred from
// the extension.
type RemoteSource struct {
	Path string `yaml:"path"`
	Type string `yaml:"type"`
}

type LoggingConfig struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"maxSizeMB"`
	MaxBackups int    `yaml:"maxBackups"`
	MaxAgeDays int    `yaml:"maxAgeDays"`
	Compress   bool   `yaml:"compress"`
}

type AuditConfig struct {
	File string `yaml:"file"`
}

type AuthConfig struct {
	Secret string `yaml:"secret"`
}

// Load builds the configuration. A missing explicit path is an error; a
// missing DefaultFile is not.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
	} else if err := loadFromFile(cfg, DefaultFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load config from %s: %w", DefaultFile, err)
	}

	applyEnvOverrides(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// Default returns the built-in configuration: a TCP listener on 33333
// restricted to loopback and a single loopback device.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:    "girsd",
			Version: "girsd 0.1.0",
		},
		Network: NetworkConfig{
			TCP: TCPConfig{
				Enabled:        true,
				Port:           33333,
				AllowedCIDRs:   []string{"127.0.0.0/8", "::1/128"},
				IdleTimeoutSec: 300,
				MaxSessions:    8,
			},
			HTTP: HTTPConfig{
				Enabled:      false,
				Port:         8080,
				EventBuffer:  256,
				HeartbeatSec: 15,
			},
		},
		Hardware: HardwareConfig{
			Default: "loopback",
			Devices: []DeviceConfig{
				{Name: "loopback", Type: "loopback"},
			},
		},
		Parameters: map[string]string{},
		Logging: LoggingConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 28,
		},
	}
}

func loadFromFile(cfg *Config, filename string) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return err
	}

	// A file listing its own devices without naming a default starts on
	// its first device rather than the built-in one.
	var hw struct {
		Hardware struct {
			Default *string        `yaml:"default"`
			Devices []DeviceConfig `yaml:"devices"`
		} `yaml:"hardware"`
	}
	if err := yaml.Unmarshal(data, &hw); err != nil {
		return err
	}
	if hw.Hardware.Devices != nil && hw.Hardware.Default == nil {
		cfg.Hardware.Default = ""
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if port := os.Getenv("GIRSD_TCP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Network.TCP.Port = p
		}
	}
	if port := os.Getenv("GIRSD_HTTP_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Network.HTTP.Port = p
			cfg.Network.HTTP.Enabled = true
		}
	}
	if file := os.Getenv("GIRSD_LOG_FILE"); file != "" {
		cfg.Logging.File = file
	}
	if secret := os.Getenv("GIRSD_AUTH_SECRET"); secret != "" {
		cfg.Auth.Secret = secret
	}
}

var remoteTypes = []string{"", "girr", "yaml", "toml"}

func validateConfig(cfg *Config) error {
	if cfg.Network.TCP.Enabled {
		if err := validatePort("tcp", cfg.Network.TCP.Port); err != nil {
			return err
		}
		if cfg.Network.TCP.MaxSessions < 1 {
			return fmt.Errorf("tcp maxSessions %d must be at least 1", cfg.Network.TCP.MaxSessions)
		}
		if cfg.Network.TCP.IdleTimeoutSec < 0 {
			return fmt.Errorf("tcp idleTimeoutSec %d must not be negative", cfg.Network.TCP.IdleTimeoutSec)
		}
		for _, cidr := range cfg.Network.TCP.AllowedCIDRs {
			if _, _, err := net.ParseCIDR(cidr); err != nil {
				return fmt.Errorf("invalid allowed CIDR %s: %v", cidr, err)
			}
		}
	}
	if cfg.Network.HTTP.Enabled {
		if err := validatePort("http", cfg.Network.HTTP.Port); err != nil {
			return err
		}
		if cfg.Network.HTTP.EventBuffer < 0 || cfg.Network.HTTP.HeartbeatSec < 0 {
			return fmt.Errorf("http eventBuffer and heartbeatSec must not be negative")
		}
	}

	seen := make(map[string]bool)
	for _, d := range cfg.Hardware.Devices {
		if d.Name == "" || d.Type == "" {
			return fmt.Errorf("hardware device needs name and type: %+v", d)
		}
		if seen[d.Name] {
			return fmt.Errorf("duplicate hardware device %s", d.Name)
		}
		seen[d.Name] = true
	}
	if cfg.Hardware.Default != "" && len(cfg.Hardware.Devices) > 0 && !seen[cfg.Hardware.Default] {
		return fmt.Errorf("default hardware %s is not configured", cfg.Hardware.Default)
	}

	for _, r := range cfg.Remotes {
		if r.Path == "" {
			return fmt.Errorf("remote source without path")
		}
		if !contains(remoteTypes, r.Type) {
			return fmt.Errorf("invalid remote type %s for %s, must be one of: %v", r.Type, r.Path, remoteTypes[1:])
		}
	}

	if cfg.Logging.File != "" && cfg.Logging.MaxSizeMB <= 0 {
		return fmt.Errorf("logging maxSizeMB %d must be positive", cfg.Logging.MaxSizeMB)
	}
	return nil
}

func validatePort(name string, port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("%s port %d is outside range [1, 65535]", name, port)
	}
	return nil
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
