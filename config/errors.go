// Package config provides error definitions for configuration management
package config

import "errors"

// Configuration validation errors
var (
	ErrInvalidAppName         = errors.New("invalid application name")
	ErrInvalidEnvironment     = errors.New("invalid environment")
	ErrInvalidLogLevel        = errors.New("invalid log level")
	ErrInvalidPort            = errors.New("invalid port number")
	ErrInvalidPoolWorkers     = errors.New("invalid pool worker count")
	ErrInvalidMailboxCapacity = errors.New("invalid mailbox capacity")
	ErrInvalidBreakpoint      = errors.New("invalid breakpoint specification")
)

// Configuration loading errors
var (
	ErrConfigFileNotFound = errors.New("configuration file not found")
	ErrConfigParseError   = errors.New("configuration parse error")
	ErrConfigWatchError   = errors.New("configuration watch error")
)
