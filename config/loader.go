// Package config provides configuration loading and parsing functionality
package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFormat represents the configuration file format
type ConfigFormat string

const (
	FormatYAML ConfigFormat = "yaml"
	FormatJSON ConfigFormat = "json"
)

// Loader handles configuration loading from files, readers and the
// environment
type Loader struct {
	// Configuration search paths
	searchPaths []string

	// Environment variable prefix
	envPrefix string

	// Default configuration
	defaultConfig *Config
}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{
		searchPaths: []string{
			".",
			"./config",
			"/etc/somns",
		},
		envPrefix:     "SOMNS",
		defaultConfig: DefaultConfig(),
	}
}

// SetSearchPaths sets the configuration file search paths
func (l *Loader) SetSearchPaths(paths []string) *Loader {
	l.searchPaths = paths
	return l
}

// SetEnvPrefix sets the environment variable prefix
func (l *Loader) SetEnvPrefix(prefix string) *Loader {
	l.envPrefix = prefix
	return l
}

// SetDefaultConfig sets the default configuration
func (l *Loader) SetDefaultConfig(config *Config) *Loader {
	l.defaultConfig = config
	return l
}

// Load loads the configuration file when a name is given, otherwise
// the defaults, and applies environment overrides and validation.
func (l *Loader) Load(filename string) (*Config, error) {
	if filename != "" {
		return l.LoadFromFile(filename)
	}

	config := l.defaults()
	if err := l.loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return config, nil
}

// LoadFromFile loads configuration from a specific file
func (l *Loader) LoadFromFile(filename string) (*Config, error) {
	format, err := formatOf(filename)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	config, err := l.parseConfig(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if err := l.loadFromEnv(config); err != nil {
		return nil, fmt.Errorf("failed to load environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// LoadFromReader loads configuration from an io.Reader
func (l *Loader) LoadFromReader(reader io.Reader, format ConfigFormat) (*Config, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration data: %w", err)
	}
	return l.parseConfig(data, format)
}

// AutoLoad discovers a configuration file in the search paths and
// loads it, falling back to defaults when none exists.
func (l *Loader) AutoLoad() (*Config, error) {
	configFile, err := l.findConfigFile()
	if err == ErrConfigFileNotFound {
		return l.Load("")
	}
	if err != nil {
		return nil, err
	}
	return l.LoadFromFile(configFile)
}

// findConfigFile searches for configuration files in search paths
func (l *Loader) findConfigFile() (string, error) {
	filenames := []string{
		"somns.yaml", "somns.yml",
		"config.yaml", "config.yml",
		"somns.json", "config.json",
	}

	for _, searchPath := range l.searchPaths {
		for _, filename := range filenames {
			fullPath := filepath.Join(searchPath, filename)
			if _, err := os.Stat(fullPath); err == nil {
				return fullPath, nil
			}
		}
	}

	return "", ErrConfigFileNotFound
}

// parseConfig unmarshals data over a copy of the defaults, so missing
// fields keep their default values.
func (l *Loader) parseConfig(data []byte, format ConfigFormat) (*Config, error) {
	config := l.defaults()

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParseError, err)
		}
	case FormatJSON:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrConfigParseError, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %s", ErrConfigParseError, format)
	}

	return config, nil
}

// loadFromEnv applies environment variable overrides
func (l *Loader) loadFromEnv(config *Config) error {
	if v := l.getenv("LOG_LEVEL"); v != "" {
		config.Log.Level = LogLevel(v)
	}
	if v := l.getenv("ENVIRONMENT"); v != "" {
		config.App.Environment = Environment(v)
	}
	if v := l.getenv("POOL_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s_POOL_WORKERS: %w", l.envPrefix, err)
		}
		config.Actor.PoolWorkers = n
	}
	if v := l.getenv("DEBUGGER_ENABLED"); v != "" {
		config.Debugger.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := l.getenv("DEBUGGER_ADDRESS"); v != "" {
		config.Debugger.Address = v
	}
	if v := l.getenv("DEBUGGER_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s_DEBUGGER_PORT: %w", l.envPrefix, err)
		}
		config.Debugger.Port = n
	}
	return nil
}

func (l *Loader) getenv(key string) string {
	return os.Getenv(l.envPrefix + "_" + key)
}

// defaults returns a copy of the default configuration
func (l *Loader) defaults() *Config {
	var base Config
	if l.defaultConfig != nil {
		base = *l.defaultConfig
	} else {
		base = *DefaultConfig()
	}
	base.Debugger.Breakpoints = append([]BreakpointSpec(nil), base.Debugger.Breakpoints...)
	return &base
}

// formatOf determines the configuration format from a file extension
func formatOf(filename string) (ConfigFormat, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported config file format: %s", ext)
	}
}
