package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application's configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Session struct {
		Secret   string `yaml:"secret"`
		TokenTTL int64  `yaml:"token_ttl_hours"`
	} `yaml:"session"`
	Cloudant struct {
		Database string `yaml:"database"`
	} `yaml:"cloudant"`
	Versions struct {
		FeedURL string `yaml:"feed_url"`
		Local   string `yaml:"local"`
	} `yaml:"versions"`
}

// LoadConfig reads configuration from the specified YAML file.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}

	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	if config.Session.TokenTTL <= 0 {
		config.Session.TokenTTL = 24
	}

	return config, nil
}
