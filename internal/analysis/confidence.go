package analysis

import "math"

// Confidence computes the 0-100 confidence of a route's density.
//
// Two factors, each capped at 100 before blending:
//   - incident volume: inad / ConfidenceInadSaturation * 100
//   - passenger volume: pax / ConfidencePaxSaturation * 100
//
// Unreliable routes always score 0.
func Confidence(inad int, pax int64, reliable bool) int {
	if !reliable {
		return 0
	}

	score := inadFactor(inad)*ConfidenceWeightInad + paxFactor(pax)*ConfidenceWeightPax
	return int(math.Round(clamp(score, 0, MaxConfidence)))
}

func inadFactor(inad int) float64 {
	return clamp(float64(inad)/ConfidenceInadSaturation*100, 0, MaxConfidence)
}

func paxFactor(pax int64) float64 {
	return clamp(float64(pax)/ConfidencePaxSaturation*100, 0, MaxConfidence)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
