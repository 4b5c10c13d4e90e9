package prediction

// Tier is the qualitative classification of a final score.
type Tier string

// Tiers, from best to worst.
const (
	TierExcellent Tier = "Excellent"
	TierGood      Tier = "Good"
	TierAtRisk    Tier = "AtRisk"
)

// Tier thresholds on the final score.
const (
	ExcellentThreshold = 80.0
	GoodThreshold      = 60.0
)

// Classify maps a final score to its tier.
func Classify(finalScore float64) Tier {
	switch {
	case finalScore >= ExcellentThreshold:
		return TierExcellent
	case finalScore >= GoodThreshold:
		return TierGood
	default:
		return TierAtRisk
	}
}

// Message returns the text shown next to the score for this tier.
func (t Tier) Message() string {
	switch t {
	case TierExcellent:
		return "Excellent! This student is on track for a high distinction."
	case TierGood:
		return "Good job! The student is performing well."
	default:
		return "Attention Needed: This student is at risk of underperforming."
	}
}

// Severity is the display style for the tier message: success, info or warning.
func (t Tier) Severity() string {
	switch t {
	case TierExcellent:
		return "success"
	case TierGood:
		return "info"
	default:
		return "warning"
	}
}
