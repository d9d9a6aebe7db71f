package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// LoadSettingsFile loads and validates an analysis settings file using Koanf.
//
// Error cases:
//   - File not found or cannot be read
//   - Invalid YAML syntax
//   - Unsupported schema version or invalid analysis values
func LoadSettingsFile(filepath string) (*Settings, error) {
	// Create new Koanf instance with dot delimiter
	k := koanf.New(".")

	// Load file using file provider with YAML parser
	if err := k.Load(file.Provider(filepath), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load settings from %q: %w", filepath, err)
	}

	// Use UnmarshalWithConf to specify the yaml tag
	var settings Settings
	if err := k.UnmarshalWithConf("", &settings, koanf.UnmarshalConf{Tag: "yaml"}); err != nil {
		return nil, fmt.Errorf("failed to parse settings from %q: %w", filepath, err)
	}

	// An explicit empty list disables exclusions, which is not the same as a missing key
	if k.Exists("exclude_codes") && settings.ExcludeCodes == nil {
		settings.ExcludeCodes = &[]string{}
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("settings validation failed for %q: %w", filepath, err)
	}

	return &settings, nil
}
