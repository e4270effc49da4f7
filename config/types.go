// Package config provides configuration management for the runtime
package config

import (
	"fmt"
	"time"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// String returns the string representation of Environment
func (e Environment) String() string {
	return string(e)
}

// IsValid checks if the environment is valid
func (e Environment) IsValid() bool {
	switch e {
	case EnvDevelopment, EnvTesting, EnvProduction:
		return true
	default:
		return false
	}
}

// LogLevel represents the logging level
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// String returns the string representation of LogLevel
func (l LogLevel) String() string {
	return string(l)
}

// IsValid checks if the log level is valid
func (l LogLevel) IsValid() bool {
	switch l {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
		return true
	default:
		return false
	}
}

// Config represents the complete runtime configuration
type Config struct {
	// Application configuration
	App AppConfig `yaml:"app" json:"app"`

	// Logging configuration
	Log LogConfig `yaml:"log" json:"log"`

	// Actor system configuration
	Actor ActorConfig `yaml:"actor" json:"actor"`

	// Debugger configuration
	Debugger DebuggerConfig `yaml:"debugger" json:"debugger"`
}

// AppConfig contains application-level configuration
type AppConfig struct {
	// Application name
	Name string `yaml:"name" json:"name"`

	// Application version
	Version string `yaml:"version" json:"version"`

	// Deployment environment
	Environment Environment `yaml:"environment" json:"environment"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	// Log level
	Level LogLevel `yaml:"level" json:"level"`

	// Prefix prepended to every log line
	Prefix string `yaml:"prefix" json:"prefix"`
}

// ActorConfig contains actor system configuration
type ActorConfig struct {
	// Number of workers in the shared execution pool; zero means one
	// worker per CPU
	PoolWorkers int `yaml:"pool_workers" json:"pool_workers"`

	// Initial capacity of each actor's mailbox
	MailboxCapacity int `yaml:"mailbox_capacity" json:"mailbox_capacity"`

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

// DebuggerConfig contains message-debugger configuration
type DebuggerConfig struct {
	// Enable the debugging layer
	Enabled bool `yaml:"enabled" json:"enabled"`

	// Front-end listening address
	Address string `yaml:"address" json:"address"`

	// Front-end listening port
	Port int `yaml:"port" json:"port"`

	// Breakpoints installed at startup and re-applied on hot reload
	Breakpoints []BreakpointSpec `yaml:"breakpoints,omitempty" json:"breakpoints,omitempty"`
}

// BreakpointSpec describes one configured breakpoint
type BreakpointSpec struct {
	// Source origin, typically a file URI
	Origin string `yaml:"origin" json:"origin"`

	// 1-based start line of the call site
	Line int `yaml:"line" json:"line"`

	// 1-based start column of the call site
	Column int `yaml:"column" json:"column"`

	// Absolute character offset within the origin
	CharIndex int `yaml:"char_index" json:"char_index"`

	// Breakpoint side: "receiver" (default) or "sender"
	Side string `yaml:"side,omitempty" json:"side,omitempty"`

	// Disabled keeps the registration without matching
	Disabled bool `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "somns",
			Version:     "0.1.0",
			Environment: EnvDevelopment,
		},
		Log: LogConfig{
			Level:  LogLevelInfo,
			Prefix: "somns ",
		},
		Actor: ActorConfig{
			PoolWorkers:     0,
			MailboxCapacity: 16,
			ShutdownTimeout: 10 * time.Second,
		},
		Debugger: DebuggerConfig{
			Enabled: false,
			Address: "127.0.0.1",
			Port:    7977,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.App.Name == "" {
		return ErrInvalidAppName
	}
	if !c.App.Environment.IsValid() {
		return ErrInvalidEnvironment
	}
	if !c.Log.Level.IsValid() {
		return ErrInvalidLogLevel
	}
	if c.Actor.PoolWorkers < 0 {
		return ErrInvalidPoolWorkers
	}
	if c.Actor.MailboxCapacity <= 0 {
		return ErrInvalidMailboxCapacity
	}
	if c.Debugger.Enabled && (c.Debugger.Port <= 0 || c.Debugger.Port > 65535) {
		return ErrInvalidPort
	}
	for _, bp := range c.Debugger.Breakpoints {
		if bp.Origin == "" || bp.Line <= 0 {
			return ErrInvalidBreakpoint
		}
	}
	return nil
}

// DebuggerAddr returns the front-end listen address in host:port form
func (c *Config) DebuggerAddr() string {
	return fmt.Sprintf("%s:%d", c.Debugger.Address, c.Debugger.Port)
}

// IsDevelopment returns true if the environment is development
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if the environment is production
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}
