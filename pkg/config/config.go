package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the image harvester
type Config struct {
	// Page harvesting settings
	Harvest HarvestConfig `yaml:"harvest" json:"harvest"`

	// Image download settings
	Download DownloadConfig `yaml:"download" json:"download"`

	// Output tree settings
	Output OutputConfig `yaml:"output" json:"output"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// HarvestConfig holds settings for fetching and parsing webpages
type HarvestConfig struct {
	InputPath      string        `yaml:"input_path" json:"input_path"`
	UserAgent      string        `yaml:"user_agent" json:"user_agent"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout"`
	MaxConcurrent  int           `yaml:"max_concurrent" json:"max_concurrent"`
}

// DownloadConfig holds settings for the batched image download loop
type DownloadConfig struct {
	TargetImageCount int `yaml:"target_image_count" json:"target_image_count"`
	MaxConcurrent    int `yaml:"max_concurrent" json:"max_concurrent"`
}

// OutputConfig holds the two parallel storage tree roots
type OutputConfig struct {
	OriginalsRoot string `yaml:"originals_root" json:"originals_root"`
	OutputRoot    string `yaml:"output_root" json:"output_root"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	// Dir, when set, receives one timestamped log file per run
	Dir string `yaml:"dir" json:"dir"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Harvest: HarvestConfig{
			InputPath:      "webpage-urls.txt",
			UserAgent:      "imgharvest/1.0 (+https://github.com/imgharvest)",
			RequestTimeout: 10 * time.Second,
			MaxConcurrent:  8,
		},
		Download: DownloadConfig{
			TargetImageCount: 20,
			MaxConcurrent:    8,
		},
		Output: OutputConfig{
			OriginalsRoot: "./originals",
			OutputRoot:    "./output",
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if inputPath := os.Getenv("IMGHARVEST_INPUT_PATH"); inputPath != "" {
		c.Harvest.InputPath = inputPath
	}
	if userAgent := os.Getenv("IMGHARVEST_USER_AGENT"); userAgent != "" {
		c.Harvest.UserAgent = userAgent
	}
	if timeout := os.Getenv("IMGHARVEST_REQUEST_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid IMGHARVEST_REQUEST_TIMEOUT: %w", err)
		}
		c.Harvest.RequestTimeout = d
	}
	if target := os.Getenv("IMGHARVEST_TARGET_IMAGE_COUNT"); target != "" {
		var val int
		fmt.Sscanf(target, "%d", &val)
		if val > 0 {
			c.Download.TargetImageCount = val
		}
	}
	if concurrent := os.Getenv("IMGHARVEST_MAX_CONCURRENT"); concurrent != "" {
		var val int
		fmt.Sscanf(concurrent, "%d", &val)
		if val > 0 {
			c.Harvest.MaxConcurrent = val
			c.Download.MaxConcurrent = val
		}
	}
	if originals := os.Getenv("IMGHARVEST_ORIGINALS_ROOT"); originals != "" {
		c.Output.OriginalsRoot = originals
	}
	if output := os.Getenv("IMGHARVEST_OUTPUT_ROOT"); output != "" {
		c.Output.OutputRoot = output
	}
	if logLevel := os.Getenv("IMGHARVEST_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logDir := os.Getenv("IMGHARVEST_LOG_DIR"); logDir != "" {
		c.Logging.Dir = logDir
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".imgharvest.yaml",
		".imgharvest.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "imgharvest", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "imgharvest", "config.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Harvest.InputPath == "" {
		errs = append(errs, errors.New("input path is required"))
	}
	if c.Harvest.UserAgent == "" {
		errs = append(errs, errors.New("user agent is required"))
	}
	if c.Harvest.RequestTimeout <= 0 {
		errs = append(errs, errors.New("request timeout must be positive"))
	}
	if c.Harvest.MaxConcurrent <= 0 {
		errs = append(errs, errors.New("harvest max concurrent must be positive"))
	}

	if c.Download.TargetImageCount <= 0 {
		errs = append(errs, errors.New("target image count must be positive"))
	}
	if c.Download.MaxConcurrent <= 0 {
		errs = append(errs, errors.New("download max concurrent must be positive"))
	}

	if c.Output.OriginalsRoot == "" {
		errs = append(errs, errors.New("originals root is required"))
	}
	if c.Output.OutputRoot == "" {
		errs = append(errs, errors.New("output root is required"))
	}
	if c.Output.OriginalsRoot == c.Output.OutputRoot {
		errs = append(errs, errors.New("originals root and output root must differ"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if inputPath, ok := flags["input"].(string); ok && inputPath != "" {
		c.Harvest.InputPath = inputPath
	}
	if target, ok := flags["target"].(int); ok && target > 0 {
		c.Download.TargetImageCount = target
	}
	if concurrent, ok := flags["concurrent"].(int); ok && concurrent > 0 {
		c.Harvest.MaxConcurrent = concurrent
		c.Download.MaxConcurrent = concurrent
	}
	if originals, ok := flags["originals"].(string); ok && originals != "" {
		c.Output.OriginalsRoot = originals
	}
	if output, ok := flags["output"].(string); ok && output != "" {
		c.Output.OutputRoot = output
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".imgharvest.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
