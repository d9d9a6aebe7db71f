package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 6, cfg.MinInad)
	assert.Equal(t, int64(5000), cfg.MinPax)
	assert.Equal(t, 0.10, cfg.MinDensity)
	assert.Equal(t, 1.5, cfg.HighPriorityMultiplier)
	assert.Equal(t, 10, cfg.HighPriorityMinInad)
	assert.Equal(t, ThresholdMedian, cfg.ThresholdMethod)
	assert.Equal(t, 2, cfg.SystemicPeriods)
	assert.NoError(t, cfg.Validate())
}

func TestParseThresholdMethod(t *testing.T) {
	for _, s := range []string{"median", "trimmed_mean", "mean", " MEDIAN "} {
		_, err := ParseThresholdMethod(s)
		assert.NoError(t, err, s)
	}

	_, err := ParseThresholdMethod("average")
	assert.ErrorIs(t, err, ErrUnknownThresholdMethod)
	assert.Contains(t, err.Error(), `"average"`)
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"negative min_inad", func(c *Config) { c.MinInad = -1 }, "min_inad"},
		{"negative min_pax", func(c *Config) { c.MinPax = -1 }, "min_pax"},
		{"negative min_density", func(c *Config) { c.MinDensity = -0.1 }, "min_density"},
		{"zero multiplier", func(c *Config) { c.HighPriorityMultiplier = 0 }, "high_priority_multiplier"},
		{"negative hp min inad", func(c *Config) { c.HighPriorityMinInad = -3 }, "high_priority_min_inad"},
		{"zero systemic periods", func(c *Config) { c.SystemicPeriods = 0 }, "systemic_periods"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			var ce *ConfigError
			require.ErrorAs(t, cfg.Validate(), &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestOverridesApply(t *testing.T) {
	minInad := 3
	method := "trimmed_mean"
	base := DefaultConfig()

	cfg, err := Overrides{MinInad: &minInad, ThresholdMethod: &method}.Apply(base)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MinInad)
	assert.Equal(t, ThresholdTrimmedMean, cfg.ThresholdMethod)
	assert.Equal(t, base.MinPax, cfg.MinPax)
	assert.Equal(t, 6, base.MinInad, "base is untouched")

	empty, err := Overrides{}.Apply(base)
	require.NoError(t, err)
	assert.Equal(t, base, empty)

	bad := "geometric"
	_, err = Overrides{ThresholdMethod: &bad}.Apply(base)
	assert.ErrorIs(t, err, ErrUnknownThresholdMethod)

	negative := -5
	_, err = Overrides{SystemicPeriods: &negative}.Apply(base)
	assert.Error(t, err)
}

func TestConfigSignature(t *testing.T) {
	a := DefaultConfig()
	b := DefaultConfig()
	assert.Equal(t, a.Signature(), b.Signature())

	b.MinDensity = 0.11
	assert.NotEqual(t, a.Signature(), b.Signature())

	c := DefaultConfig()
	c.ThresholdMethod = ThresholdMean
	assert.NotEqual(t, a.Signature(), c.Signature())

	assert.Equal(t,
		"min_inad=6|min_pax=5000|min_density=0.1|hp_multiplier=1.5|hp_min_inad=10|method=median|systemic_periods=2",
		a.Signature())
}

func TestValidateVolumes(t *testing.T) {
	assert.NoError(t, ValidateVolumes([]VolumeRecord{{Airline: "LX", Airport: "DXB", Pax: 0}}))

	err := ValidateVolumes([]VolumeRecord{{Airline: "LX", Airport: "DXB", Pax: -1}})
	assert.True(t, IsStructuralError(err))
	assert.Contains(t, err.Error(), "volume[0]: pax")

	err = ValidateVolumes([]VolumeRecord{{Airline: "LX"}})
	assert.EqualError(t, err, "volume[0]: airport is required")
}

func TestOverridesMerge(t *testing.T) {
	three, four := 3, 4
	method := "mean"

	merged := Overrides{MinInad: &three}.Merge(Overrides{ThresholdMethod: &method})
	require.NotNil(t, merged.MinInad)
	assert.Equal(t, 3, *merged.MinInad)
	require.NotNil(t, merged.ThresholdMethod)
	assert.Equal(t, "mean", *merged.ThresholdMethod)

	merged = merged.Merge(Overrides{MinInad: &four})
	assert.Equal(t, 4, *merged.MinInad)
	assert.Nil(t, merged.MinPax)
}

func TestOverridesClone(t *testing.T) {
	minInad, method := 8, "mean"
	o := Overrides{MinInad: &minInad, ThresholdMethod: &method}

	c := o.Clone()
	*c.MinInad = 99
	*c.ThresholdMethod = "median"

	assert.Equal(t, 8, *o.MinInad)
	assert.Equal(t, "mean", *o.ThresholdMethod)
	assert.Nil(t, c.MinPax)
}
