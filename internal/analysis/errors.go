package analysis

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownThresholdMethod is returned for a threshold_method outside the supported set.
	ErrUnknownThresholdMethod = errors.New("unknown threshold method")
)

// ConfigError reports an out-of-range analysis setting
type ConfigError struct {
	Field   string
	Message string
}

// Error returns the error message
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// StructuralError reports a required field missing from an input record.
// It is fatal to the run: no partial result is produced.
type StructuralError struct {
	Record string // "case" or "volume"
	Index  int    // zero-based position in the input
	Field  string
	Reason string
}

// Error returns the error message
func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s[%d]: %s %s", e.Record, e.Index, e.Field, e.Reason)
}

// IsStructuralError checks if an error is a StructuralError
func IsStructuralError(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}

// ValidateCases checks required-field presence on every case.
func ValidateCases(cases []Case) error {
	for i, c := range cases {
		if c.Airline == "" {
			return &StructuralError{Record: "case", Index: i, Field: "airline", Reason: "is required"}
		}
		if c.Origin == "" {
			return &StructuralError{Record: "case", Index: i, Field: "origin", Reason: "is required"}
		}
	}
	return nil
}

// ValidateVolumes checks required-field presence and non-negative pax on every record.
func ValidateVolumes(volumes []VolumeRecord) error {
	for i, v := range volumes {
		if v.Airline == "" {
			return &StructuralError{Record: "volume", Index: i, Field: "airline", Reason: "is required"}
		}
		if v.Airport == "" {
			return &StructuralError{Record: "volume", Index: i, Field: "airport", Reason: "is required"}
		}
		if v.Pax < 0 {
			return &StructuralError{Record: "volume", Index: i, Field: "pax", Reason: fmt.Sprintf("must be >= 0, got %d", v.Pax)}
		}
	}
	return nil
}
