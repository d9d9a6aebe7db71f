package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validServerConfig() Config {
	return Config{
		DataDir:            "/data",
		APIPort:            8080,
		LogLevel:           "info",
		CacheSize:          64,
		CacheTTL:           time.Hour,
		MaxParallelPeriods: 4,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty data dir", func(c *Config) { c.DataDir = "" }, "DataDir must not be empty"},
		{"port out of range", func(c *Config) { c.APIPort = 70000 }, "APIPort must be between 1 and 65535"},
		{"zero cache", func(c *Config) { c.CacheSize = 0 }, "CacheSize must be at least 1"},
		{"zero ttl", func(c *Config) { c.CacheTTL = 0 }, "CacheTTL must be positive"},
		{"zero parallelism", func(c *Config) { c.MaxParallelPeriods = 0 }, "MaxParallelPeriods must be at least 1"},
		{"watch without path", func(c *Config) { c.WatchConfig = true }, "ConfigPath must be set when config watching is enabled"},
		{"tracing without endpoint", func(c *Config) { c.TracingEnabled = true }, "TracingEndpoint must be set when tracing is enabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validServerConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
			var ce *ConfigError
			assert.ErrorAs(t, err, &ce)
		})
	}
}
