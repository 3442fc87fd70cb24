package model

// Tier is a purine classification bucket.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Thresholds in mg/100g. The model assigns tiers itself; these are only used
// for display and diagnostics.
const (
	HighPurineThreshold = 150
	LowPurineThreshold  = 50
)

// TierForValue buckets a purine value: >150 high, 50-150 medium, <50 low.
func TierForValue(v float64) Tier {
	switch {
	case v > HighPurineThreshold:
		return TierHigh
	case v >= LowPurineThreshold:
		return TierMedium
	default:
		return TierLow
	}
}
