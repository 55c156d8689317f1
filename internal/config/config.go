package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fenilsonani/dupescan/pkg/utils"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Recursive       bool     `yaml:"recursive"`
	SkipFingerprint bool     `yaml:"skip_fingerprint"`
	MinFileSize     string   `yaml:"min_file_size"` // e.g. "1KB"; empty considers everything
	Workers         int      `yaml:"workers"`       // 0 picks a value from CPU count
	ExcludePatterns []string `yaml:"exclude_patterns"`
	OutputFormat    string   `yaml:"output_format"` // table, json, yaml, summary
	DryRun          bool     `yaml:"dry_run"`
	Verbose         bool     `yaml:"verbose"`
}

// Load loads configuration from a file, falling back to defaults when the
// file does not exist
func Load(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return GetDefault(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Save saves configuration to a file
func Save(config *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0")
	}

	if c.MinFileSize != "" {
		if _, err := utils.ParseSize(c.MinFileSize); err != nil {
			return fmt.Errorf("invalid min_file_size: %w", err)
		}
	}

	for _, pattern := range c.ExcludePatterns {
		if err := validateGlobPattern(pattern); err != nil {
			return fmt.Errorf("invalid exclude pattern '%s': %w", pattern, err)
		}
	}

	switch c.OutputFormat {
	case "", "table", "json", "yaml", "summary":
	default:
		return fmt.Errorf("unknown output format: %s", c.OutputFormat)
	}

	return nil
}

// MinSizeBytes returns the parsed minimum file size
func (c *Config) MinSizeBytes() int64 {
	if c.MinFileSize == "" {
		return 0
	}
	size, err := utils.ParseSize(c.MinFileSize)
	if err != nil {
		return 0
	}
	return size
}

// validateGlobPattern checks a glob pattern for syntax errors
func validateGlobPattern(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("pattern is empty")
	}
	if _, err := filepath.Match(pattern, "probe"); err != nil {
		return err
	}
	return nil
}

// GetConfigPath returns the default config path
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	configDir := filepath.Join(homeDir, ".config", "dupescan")
	return filepath.Join(configDir, "config.yaml"), nil
}
