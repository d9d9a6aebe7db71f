package config

import "time"

// Config holds the process settings of the casa server
type Config struct {
	// DataDir is the directory scanned for INAD case and passenger volume files
	DataDir string

	// ConfigPath is the analysis settings file; empty means built-in defaults
	ConfigPath string

	// APIPort is the port the API server listens on
	APIPort int

	// LogLevel is the logging level (debug, info, warn, error)
	LogLevel string

	// CacheSize is the maximum number of cached period results
	CacheSize int

	// CacheTTL is how long a cached period result stays valid
	CacheTTL time.Duration

	// MaxParallelPeriods bounds concurrent period analyses in multi-period requests
	MaxParallelPeriods int

	// WatchConfig reloads ConfigPath when it changes on disk
	WatchConfig bool

	// TracingEnabled indicates whether OpenTelemetry tracing is enabled
	TracingEnabled bool

	// TracingEndpoint is the OTLP gRPC endpoint for trace export
	TracingEndpoint string

	// TracingTLSCAPath is the path to the CA certificate for TLS verification
	TracingTLSCAPath string
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return NewConfigError("DataDir must not be empty")
	}

	if c.APIPort < 1 || c.APIPort > 65535 {
		return NewConfigError("APIPort must be between 1 and 65535")
	}

	if c.CacheSize < 1 {
		return NewConfigError("CacheSize must be at least 1")
	}

	if c.CacheTTL <= 0 {
		return NewConfigError("CacheTTL must be positive")
	}

	if c.MaxParallelPeriods < 1 {
		return NewConfigError("MaxParallelPeriods must be at least 1")
	}

	if c.WatchConfig && c.ConfigPath == "" {
		return NewConfigError("ConfigPath must be set when config watching is enabled")
	}

	if c.TracingEnabled && c.TracingEndpoint == "" {
		return NewConfigError("TracingEndpoint must be set when tracing is enabled")
	}

	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	message string
}

// NewConfigError creates a new configuration error
func NewConfigError(message string) *ConfigError {
	return &ConfigError{message: message}
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return e.message
}
