// Package config loads permhelper.yaml, which describes the simulated device
// the CLI runs the permission service against.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/permissions-helper/pkg/permissions"
)

// DefaultFile is the config file name looked up when --config is not given.
const DefaultFile = "permhelper.yaml"

// LocationKey addresses the single location authorization state shared by
// both location capabilities.
const LocationKey = "location"

// Config represents permhelper.yaml.
type Config struct {
	Device Device    `yaml:"device"`
	Log    LogConfig `yaml:"log"`
}

// Device describes the simulated OS.
//
//	device:
//	  platform: iOS
//	  os_version: "17.2"
//	  settings: true
//	  states:
//	    camera: authorized
//	    location: not_determined
//	  prompts:
//	    location: authorized_when_in_use
type Device struct {
	// Platform selects the built-in catalog. Default iOS.
	Platform  string `yaml:"platform,omitempty"`
	OSVersion string `yaml:"os_version,omitempty"`
	// Settings reports whether the settings deep-link opens. Default true.
	Settings *bool `yaml:"settings,omitempty"`
	// States maps a capability (or "location") to its native state.
	States map[string]string `yaml:"states,omitempty"`
	// Prompts maps a capability (or "location") to the answer the simulated
	// user gives when prompted. A missing location answer means the user
	// never responds.
	Prompts map[string]string `yaml:"prompts,omitempty"`
}

// LogConfig controls CLI logging.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	// Diagnostics enables advisory output. Default true.
	Diagnostics *bool `yaml:"diagnostics,omitempty"`
}

// SettingsOpen reports whether the simulated settings deep-link opens.
func (d Device) SettingsOpen() bool {
	return d.Settings == nil || *d.Settings
}

// DiagnosticsEnabled reports whether advisories should be logged.
func (l LogConfig) DiagnosticsEnabled() bool {
	return l.Diagnostics == nil || *l.Diagnostics
}

// LogLevel returns the configured logrus level, info by default.
func (l LogConfig) LogLevel() (logrus.Level, error) {
	if strings.TrimSpace(l.Level) == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(l.Level)
}

// LoadOptional reads path if present. A missing file yields an empty config.
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Config{}, nil
	}
	return cfg, err
}

// Load reads and validates path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return &cfg, nil
}

// Validate checks state values against the native state vocabulary. Keys
// are checked against the catalog in use by CheckCapabilities.
func (c *Config) Validate() error {
	for _, section := range c.Device.sections() {
		for key, value := range section.values {
			if permissions.Capability(key).IsLocation() {
				return fmt.Errorf("%s.%s: both location capabilities share the %q key", section.name, key, LocationKey)
			}
			if _, err := permissions.ParseNativeState(value); err != nil {
				return fmt.Errorf("%s.%s: %w", section.name, key, err)
			}
		}
	}
	if _, err := c.Log.LogLevel(); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// CheckCapabilities reports device keys that name no capability of catalog.
// The location key needs a catalog with location capabilities.
func (c *Config) CheckCapabilities(catalog *permissions.Catalog) error {
	known := make(map[string]bool)
	for _, id := range catalog.Capabilities() {
		known[StateKey(id)] = true
	}
	for _, section := range c.Device.sections() {
		for key := range section.values {
			if !known[key] {
				return fmt.Errorf("%s: unknown %s capability %q", section.name, catalog.Platform(), key)
			}
		}
	}
	return nil
}

type deviceSection struct {
	name   string
	values map[string]string
}

func (d Device) sections() []deviceSection {
	return []deviceSection{
		{"device.states", d.States},
		{"device.prompts", d.Prompts},
	}
}

// StateKey returns the device key holding c's state.
func StateKey(c permissions.Capability) string {
	if c.IsLocation() {
		return LocationKey
	}
	return string(c)
}
