package vmaxtui

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries the watch-service settings. Everything has a default so a
// config file is optional.
type Config struct {
	PollInterval time.Duration
	RenderWidth  int
	RenderHeight int
	EngineBinary string
	Debug        bool
}

func DefaultConfig() Config {
	return Config{
		PollInterval: DefaultPollInterval,
		RenderWidth:  200,
		RenderHeight: 200,
		EngineBinary: "bella_cli",
	}
}

type rawConfig struct {
	PollInterval string `yaml:"poll_interval"`
	RenderWidth  int    `yaml:"render_width"`
	RenderHeight int    `yaml:"render_height"`
	EngineBinary string `yaml:"engine_binary"`
	Debug        bool   `yaml:"debug"`
}

// LoadConfig reads a YAML config file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if raw.PollInterval != "" {
		d, err := time.ParseDuration(raw.PollInterval)
		if err != nil {
			return cfg, fmt.Errorf("config %s: poll_interval: %w", path, err)
		}
		if d <= 0 {
			return cfg, fmt.Errorf("config %s: poll_interval must be positive", path)
		}
		cfg.PollInterval = d
	}
	if raw.RenderWidth > 0 {
		cfg.RenderWidth = raw.RenderWidth
	}
	if raw.RenderHeight > 0 {
		cfg.RenderHeight = raw.RenderHeight
	}
	if raw.EngineBinary != "" {
		cfg.EngineBinary = raw.EngineBinary
	}
	cfg.Debug = raw.Debug
	return cfg, nil
}
