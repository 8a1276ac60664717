package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Sources Sources `yaml:"sources"`
	Server  Server  `yaml:"server"`
	Output  Output  `yaml:"output"`
	Logging Logging `yaml:"logging"`
}

type Sources struct {
	Headline HeadlineConfig `yaml:"headline"`
	Video    VideoConfig    `yaml:"video"`
	Forum    ForumConfig    `yaml:"forum"`
	Feeds    []Feed         `yaml:"feeds"`
}

type HeadlineConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type VideoConfig struct {
	Enabled   bool   `yaml:"enabled"`
	APIKeyEnv string `yaml:"api_key_env"`
}

type ForumConfig struct {
	Enabled   bool   `yaml:"enabled"`
	UserAgent string `yaml:"user_agent"`
}

type Feed struct {
	URL      string `yaml:"url"`
	Name     string `yaml:"name"`
	Category string `yaml:"category"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for newsdesk.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "newsdesk")
}

// DataDir returns the XDG data directory for newsdesk.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "newsdesk")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/newsdesk/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'newsdesk init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Sources: Sources{
			Headline: HeadlineConfig{Enabled: true, APIKeyEnv: "NEWSAPI_KEY"},
			Video:    VideoConfig{Enabled: true, APIKeyEnv: "YOUTUBE_API_KEY"},
			Forum:    ForumConfig{Enabled: true},
		},
		Server:  Server{Port: 8000},
		Logging: Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
