// Package config loads the service configuration from YAML, with sane
// defaults for everything a local run needs.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Port        int    `yaml:"port"`
	MetricsPort int    `yaml:"metrics_port"`
	JWTSecret   string `yaml:"jwt_secret"`
	LogLevel    string `yaml:"log_level"`

	Database struct {
		Driver string `yaml:"driver"` // sqlite3 or postgres
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`

	LLM struct {
		APIKey  string `yaml:"api_key"`
		BaseURL string `yaml:"base_url"`
		Model   string `yaml:"model"`
	} `yaml:"llm"`

	Speech struct {
		Endpoint string `yaml:"endpoint"`
		Voice    string `yaml:"voice"`
	} `yaml:"speech"`

	Geocoder struct {
		Endpoint string `yaml:"endpoint"`
	} `yaml:"geocoder"`

	DemoDelayMS     int `yaml:"demo_delay_ms"`
	MockOrderDelayS int `yaml:"mock_order_delay_s"`
}

// Load reads the configuration file at path. A missing file yields the
// defaults; a malformed one is an error.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = os.Getenv("TASTETRAIL_JWT_SECRET")
	}

	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{
		Port:            8080,
		MetricsPort:     9090,
		LogLevel:        "info",
		DemoDelayMS:     1500,
		MockOrderDelayS: 15,
	}
	cfg.Database.Driver = "sqlite3"
	cfg.Database.DSN = "tastetrail.db"
	cfg.LLM.Model = "gpt-4o-mini"
	return cfg
}

// DemoDelay returns the simulated demo-mode latency.
func (c *Config) DemoDelay() time.Duration {
	return time.Duration(c.DemoDelayMS) * time.Millisecond
}

// MockOrderDelay returns the delay before the mock order notification fires.
func (c *Config) MockOrderDelay() time.Duration {
	return time.Duration(c.MockOrderDelayS) * time.Second
}
