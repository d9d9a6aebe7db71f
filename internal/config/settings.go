package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/moolen/casa/internal/analysis"
)

// CurrentSchemaVersion is written by WriteSettingsFile
const CurrentSchemaVersion = "1.0"

// supportedSchemas is the range of settings schema versions this build understands
const supportedSchemas = ">= 1.0, < 2.0"

// Settings is the analysis settings file.
//
// Example YAML structure:
//
//	schema_version: "1.0"
//	analysis:
//	  min_inad: 6
//	  threshold_method: median
//	exclude_codes: [B1n, B2n, C4n]
//	partners:
//	  LX: [WK]
type Settings struct {
	// SchemaVersion is the settings schema version (e.g., "1.0")
	SchemaVersion string `yaml:"schema_version" json:"schema_version"`

	// Analysis overrides the built-in analysis defaults; absent keys keep the default
	Analysis analysis.Overrides `yaml:"analysis" json:"analysis"`

	// ExcludeCodes replaces the default refusal-code exclusion list when present.
	// nil keeps the default; a pointer to an empty list excludes nothing.
	ExcludeCodes *[]string `yaml:"exclude_codes,omitempty" json:"exclude_codes,omitempty"`

	// Partners maps an airline to the partner airlines whose volume it shares
	Partners map[string][]string `yaml:"partners,omitempty" json:"partners,omitempty"`
}

// DefaultSettings returns settings that select every built-in default
func DefaultSettings() *Settings {
	return &Settings{SchemaVersion: CurrentSchemaVersion}
}

// Validate checks the schema version, analysis overrides and partner mapping.
func (s *Settings) Validate() error {
	if err := checkSchemaVersion(s.SchemaVersion); err != nil {
		return err
	}

	if _, err := s.AnalysisConfig(); err != nil {
		return NewConfigError(fmt.Sprintf("analysis: %v", err))
	}

	for airline, partners := range s.Partners {
		if strings.TrimSpace(airline) == "" {
			return NewConfigError("partners: airline code must not be empty")
		}
		for i, p := range partners {
			if strings.TrimSpace(p) == "" {
				return NewConfigError(fmt.Sprintf("partners[%s][%d]: airline code must not be empty", airline, i))
			}
		}
	}

	return nil
}

// AnalysisConfig applies the overrides to analysis.DefaultConfig.
func (s *Settings) AnalysisConfig() (analysis.Config, error) {
	return s.Analysis.Apply(analysis.DefaultConfig())
}

// Exclusions returns the configured exclusion codes, or nil for the defaults.
func (s *Settings) Exclusions() []string {
	if s.ExcludeCodes == nil {
		return nil
	}
	return append([]string{}, (*s.ExcludeCodes)...)
}

// PartnerMap returns a sorted copy of the partner mapping
func (s *Settings) PartnerMap() map[string][]string {
	if len(s.Partners) == 0 {
		return nil
	}
	out := make(map[string][]string, len(s.Partners))
	for airline, partners := range s.Partners {
		list := append([]string{}, partners...)
		sort.Strings(list)
		out[airline] = list
	}
	return out
}

func checkSchemaVersion(raw string) error {
	if raw == "" {
		return NewConfigError("schema_version is required")
	}
	v, err := version.NewVersion(strings.TrimPrefix(raw, "v"))
	if err != nil {
		return NewConfigError(fmt.Sprintf("invalid schema_version %q: %v", raw, err))
	}
	constraint, err := version.NewConstraint(supportedSchemas)
	if err != nil {
		return fmt.Errorf("invalid schema constraint: %w", err)
	}
	if !constraint.Check(v) {
		return NewConfigError(fmt.Sprintf("unsupported schema_version: %q (expected %s)", raw, supportedSchemas))
	}
	return nil
}
