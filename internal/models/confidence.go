package models

// Threat level thresholds, on the percentage scale.
const (
	threatHighAbove   = 80
	threatMediumAbove = 50
)

// NormalizeConfidence maps a backend confidence value onto the 0-100
// percentage scale. Backends report confidence on two scales (0-1 fractional
// from the logs endpoint, 0-100 from the upload endpoint); values at or below
// 1 are treated as fractional. This is the single home for that heuristic.
func NormalizeConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v <= 1 {
		return v * 100
	}
	return v
}

// ThreatLevelFor classifies a percentage-scale confidence into the threat
// levels the product exposes: >80 high, >50 medium, otherwise low.
func ThreatLevelFor(confidencePct float64) string {
	switch {
	case confidencePct > threatHighAbove:
		return "high"
	case confidencePct > threatMediumAbove:
		return "medium"
	default:
		return "low"
	}
}
