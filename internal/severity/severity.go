// Package severity maps similarity scores onto display tiers.
package severity

// Tier is a categorical severity for a similarity score.
type Tier string

// Severity tiers, lowest to highest.
const (
	TierLow    Tier = "LOW"
	TierMedium Tier = "MEDIUM"
	TierHigh   Tier = "HIGH"
)

// Tier thresholds. Both comparisons are strict, so a score sitting exactly
// on a threshold belongs to the lower tier.
const (
	MediumThreshold = 30.0
	HighThreshold   = 70.0

	// AdvisoryThreshold is the score above which a rewrite is recommended.
	AdvisoryThreshold = 50.0
)

// Classify returns the tier for score.
func Classify(score float64) Tier {
	switch {
	case score > HighThreshold:
		return TierHigh
	case score > MediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// AdviseReformulation reports whether score is high enough that the user
// should be offered a rewrite of the analyzed text.
func AdviseReformulation(score float64) bool {
	return score > AdvisoryThreshold
}

// String implements fmt.Stringer.
func (t Tier) String() string {
	return string(t)
}
