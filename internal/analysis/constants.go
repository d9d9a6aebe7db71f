package analysis

// ============================================================================
// DEFAULT THRESHOLDS
// ============================================================================

const (
	// DefaultMinInad is the minimum included case count for airlines and routes.
	DefaultMinInad = 6

	// DefaultMinPax is the passenger volume below which a route density is unreliable.
	DefaultMinPax = 5000

	// DefaultMinDensity is the absolute density floor (per mille) for HIGH_PRIORITY.
	// It is also the threshold returned when no reliable route exists.
	DefaultMinDensity = 0.10

	// DefaultHighPriorityMultiplier scales the threshold for HIGH_PRIORITY.
	DefaultHighPriorityMultiplier = 1.5

	// DefaultHighPriorityMinInad is the minimum case count for HIGH_PRIORITY.
	DefaultHighPriorityMinInad = 10

	// DefaultSystemicPeriods is the number of flagged periods that makes a route systemic.
	DefaultSystemicPeriods = 2
)

// ============================================================================
// DENSITY AND CONFIDENCE
// ============================================================================

const (
	// DensityScale expresses density per thousand passengers.
	DensityScale = 1000.0

	// ConfidenceWeightInad is the weight of the incident-volume factor.
	ConfidenceWeightInad = 0.6

	// ConfidenceWeightPax is the weight of the passenger-volume factor.
	ConfidenceWeightPax = 0.4

	// ConfidenceInadSaturation is the case count at which the incident factor reaches 100.
	ConfidenceInadSaturation = 20.0

	// ConfidencePaxSaturation is the passenger volume at which the volume factor reaches 100.
	ConfidencePaxSaturation = 100000.0

	// MaxConfidence caps every confidence factor and the blended score.
	MaxConfidence = 100.0
)

// ============================================================================
// THRESHOLD AND TREND
// ============================================================================

const (
	// TrimLowerQuantile and TrimUpperQuantile bound the trimmed mean.
	TrimLowerQuantile = 0.10
	TrimUpperQuantile = 0.90

	// TrendChangePercent is the density change (in percent) separating STABLE from
	// WORSENING or IMPROVING.
	TrendChangePercent = 10.0
)
