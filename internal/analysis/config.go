package analysis

import (
	"fmt"
	"strconv"
	"strings"
)

// ThresholdMethod selects how the density threshold is derived
type ThresholdMethod string

const (
	ThresholdMedian      ThresholdMethod = "median"
	ThresholdTrimmedMean ThresholdMethod = "trimmed_mean"
	ThresholdMean        ThresholdMethod = "mean"
)

// ParseThresholdMethod converts a string to a ThresholdMethod.
// Unknown values return ErrUnknownThresholdMethod; there is no silent fallback.
func ParseThresholdMethod(s string) (ThresholdMethod, error) {
	switch ThresholdMethod(strings.ToLower(strings.TrimSpace(s))) {
	case ThresholdMedian:
		return ThresholdMedian, nil
	case ThresholdTrimmedMean:
		return ThresholdTrimmedMean, nil
	case ThresholdMean:
		return ThresholdMean, nil
	default:
		return "", fmt.Errorf("%w: %q (must be median, trimmed_mean or mean)", ErrUnknownThresholdMethod, s)
	}
}

// Config holds the tunable parameters of a single analysis run.
// It is passed by value into every stage; nothing is cached between runs.
type Config struct {
	MinInad                int             `json:"min_inad" yaml:"min_inad"`
	MinPax                 int64           `json:"min_pax" yaml:"min_pax"`
	MinDensity             float64         `json:"min_density" yaml:"min_density"`
	HighPriorityMultiplier float64         `json:"high_priority_multiplier" yaml:"high_priority_multiplier"`
	HighPriorityMinInad    int             `json:"high_priority_min_inad" yaml:"high_priority_min_inad"`
	ThresholdMethod        ThresholdMethod `json:"threshold_method" yaml:"threshold_method"`
	SystemicPeriods        int             `json:"systemic_periods" yaml:"systemic_periods"`
}

// DefaultConfig returns the documented defaults.
func DefaultConfig() Config {
	return Config{
		MinInad:                DefaultMinInad,
		MinPax:                 DefaultMinPax,
		MinDensity:             DefaultMinDensity,
		HighPriorityMultiplier: DefaultHighPriorityMultiplier,
		HighPriorityMinInad:    DefaultHighPriorityMinInad,
		ThresholdMethod:        ThresholdMedian,
		SystemicPeriods:        DefaultSystemicPeriods,
	}
}

// Validate checks value ranges and the threshold method.
func (c Config) Validate() error {
	if _, err := ParseThresholdMethod(string(c.ThresholdMethod)); err != nil {
		return err
	}
	if c.MinInad < 0 {
		return &ConfigError{Field: "min_inad", Message: fmt.Sprintf("must be >= 0, got %d", c.MinInad)}
	}
	if c.MinPax < 0 {
		return &ConfigError{Field: "min_pax", Message: fmt.Sprintf("must be >= 0, got %d", c.MinPax)}
	}
	if c.MinDensity < 0 {
		return &ConfigError{Field: "min_density", Message: fmt.Sprintf("must be >= 0, got %g", c.MinDensity)}
	}
	if c.HighPriorityMultiplier <= 0 {
		return &ConfigError{Field: "high_priority_multiplier", Message: fmt.Sprintf("must be > 0, got %g", c.HighPriorityMultiplier)}
	}
	if c.HighPriorityMinInad < 0 {
		return &ConfigError{Field: "high_priority_min_inad", Message: fmt.Sprintf("must be >= 0, got %d", c.HighPriorityMinInad)}
	}
	if c.SystemicPeriods < 1 {
		return &ConfigError{Field: "systemic_periods", Message: fmt.Sprintf("must be >= 1, got %d", c.SystemicPeriods)}
	}
	return nil
}

// Signature returns a canonical string covering every field.
// Two configs with the same signature produce identical results on the same data.
func (c Config) Signature() string {
	var b strings.Builder
	b.WriteString("min_inad=")
	b.WriteString(strconv.Itoa(c.MinInad))
	b.WriteString("|min_pax=")
	b.WriteString(strconv.FormatInt(c.MinPax, 10))
	b.WriteString("|min_density=")
	b.WriteString(strconv.FormatFloat(c.MinDensity, 'g', -1, 64))
	b.WriteString("|hp_multiplier=")
	b.WriteString(strconv.FormatFloat(c.HighPriorityMultiplier, 'g', -1, 64))
	b.WriteString("|hp_min_inad=")
	b.WriteString(strconv.Itoa(c.HighPriorityMinInad))
	b.WriteString("|method=")
	b.WriteString(string(c.ThresholdMethod))
	b.WriteString("|systemic_periods=")
	b.WriteString(strconv.Itoa(c.SystemicPeriods))
	return b.String()
}

// Overrides carries optional replacements for Config fields.
// A nil field leaves the base value untouched.
type Overrides struct {
	MinInad                *int     `json:"min_inad,omitempty" yaml:"min_inad,omitempty"`
	MinPax                 *int64   `json:"min_pax,omitempty" yaml:"min_pax,omitempty"`
	MinDensity             *float64 `json:"min_density,omitempty" yaml:"min_density,omitempty"`
	HighPriorityMultiplier *float64 `json:"high_priority_multiplier,omitempty" yaml:"high_priority_multiplier,omitempty"`
	HighPriorityMinInad    *int     `json:"high_priority_min_inad,omitempty" yaml:"high_priority_min_inad,omitempty"`
	ThresholdMethod        *string  `json:"threshold_method,omitempty" yaml:"threshold_method,omitempty"`
	SystemicPeriods        *int     `json:"systemic_periods,omitempty" yaml:"systemic_periods,omitempty"`
}

// Apply returns base with every non-nil override applied, validated.
func (o Overrides) Apply(base Config) (Config, error) {
	cfg := base
	if o.MinInad != nil {
		cfg.MinInad = *o.MinInad
	}
	if o.MinPax != nil {
		cfg.MinPax = *o.MinPax
	}
	if o.MinDensity != nil {
		cfg.MinDensity = *o.MinDensity
	}
	if o.HighPriorityMultiplier != nil {
		cfg.HighPriorityMultiplier = *o.HighPriorityMultiplier
	}
	if o.HighPriorityMinInad != nil {
		cfg.HighPriorityMinInad = *o.HighPriorityMinInad
	}
	if o.ThresholdMethod != nil {
		method, err := ParseThresholdMethod(*o.ThresholdMethod)
		if err != nil {
			return base, err
		}
		cfg.ThresholdMethod = method
	}
	if o.SystemicPeriods != nil {
		cfg.SystemicPeriods = *o.SystemicPeriods
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// Merge returns o with every non-nil field of next layered on top.
func (o Overrides) Merge(next Overrides) Overrides {
	out := o
	if next.MinInad != nil {
		out.MinInad = next.MinInad
	}
	if next.MinPax != nil {
		out.MinPax = next.MinPax
	}
	if next.MinDensity != nil {
		out.MinDensity = next.MinDensity
	}
	if next.HighPriorityMultiplier != nil {
		out.HighPriorityMultiplier = next.HighPriorityMultiplier
	}
	if next.HighPriorityMinInad != nil {
		out.HighPriorityMinInad = next.HighPriorityMinInad
	}
	if next.ThresholdMethod != nil {
		out.ThresholdMethod = next.ThresholdMethod
	}
	if next.SystemicPeriods != nil {
		out.SystemicPeriods = next.SystemicPeriods
	}
	return out
}

// Clone returns o with every set field pointing at its own value.
func (o Overrides) Clone() Overrides {
	return Overrides{
		MinInad:                clonePtr(o.MinInad),
		MinPax:                 clonePtr(o.MinPax),
		MinDensity:             clonePtr(o.MinDensity),
		HighPriorityMultiplier: clonePtr(o.HighPriorityMultiplier),
		HighPriorityMinInad:    clonePtr(o.HighPriorityMinInad),
		ThresholdMethod:        clonePtr(o.ThresholdMethod),
		SystemicPeriods:        clonePtr(o.SystemicPeriods),
	}
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
