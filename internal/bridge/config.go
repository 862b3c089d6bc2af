// Package bridge relays display commands from the glucose API to an
// AWTRIX3 device on the local network.
package bridge

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults applied when neither flags, config file nor environment set a value.
const (
	DefaultPollIntervalSeconds = 60
	DefaultTimeoutSeconds      = 10
	DefaultAppName             = "glucose"
)

// Config holds the bridge settings. Values are resolved with flag > config
// file > environment precedence.
type Config struct {
	CloudURL            string `yaml:"cloud_url"`
	DeviceIP            string `yaml:"device_ip"`
	AppName             string `yaml:"app_name"`
	PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	TimeoutSeconds      int    `yaml:"timeout_seconds"`
	LogLevel            string `yaml:"log_level"`
	LogPretty           bool   `yaml:"log_pretty"`
}

// LoadFile reads a YAML config file into cfg, leaving unset fields alone.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

// ApplyEnv fills still-empty fields from BRIDGE_* environment variables.
func (c *Config) ApplyEnv() {
	if c.CloudURL == "" {
		c.CloudURL = os.Getenv("BRIDGE_CLOUD_URL")
	}
	if c.DeviceIP == "" {
		c.DeviceIP = os.Getenv("BRIDGE_DEVICE_IP")
	}
	if c.AppName == "" {
		c.AppName = os.Getenv("BRIDGE_APP_NAME")
	}
	if c.PollIntervalSeconds == 0 {
		if v, err := strconv.Atoi(os.Getenv("BRIDGE_POLL_INTERVAL_SECONDS")); err == nil {
			c.PollIntervalSeconds = v
		}
	}
	if c.TimeoutSeconds == 0 {
		if v, err := strconv.Atoi(os.Getenv("BRIDGE_TIMEOUT_SECONDS")); err == nil {
			c.TimeoutSeconds = v
		}
	}
	if c.LogLevel == "" {
		c.LogLevel = os.Getenv("BRIDGE_LOG_LEVEL")
	}
}

// ApplyDefaults fills whatever is still unset after flags, file and env.
func (c *Config) ApplyDefaults() {
	if c.AppName == "" {
		c.AppName = DefaultAppName
	}
	if c.PollIntervalSeconds == 0 {
		c.PollIntervalSeconds = DefaultPollIntervalSeconds
	}
	if c.TimeoutSeconds == 0 {
		c.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks that the resolved configuration is usable.
func (c *Config) Validate() error {
	if c.CloudURL == "" {
		return fmt.Errorf("cloud URL is required (flag -cloud-url, config cloud_url, or BRIDGE_CLOUD_URL)")
	}
	if c.DeviceIP == "" {
		return fmt.Errorf("device IP is required (flag -device-ip, config device_ip, or BRIDGE_DEVICE_IP)")
	}
	if c.PollIntervalSeconds < 1 {
		return fmt.Errorf("poll interval must be at least 1 second, got %d", c.PollIntervalSeconds)
	}
	if c.TimeoutSeconds < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", c.TimeoutSeconds)
	}
	return nil
}

// PollInterval returns the poll interval as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Timeout returns the HTTP timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
