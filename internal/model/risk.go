package model

// RiskTier buckets a fraud probability for display.
type RiskTier int

const (
	// RiskLow covers probabilities at or below 0.4.
	RiskLow RiskTier = iota
	// RiskMedium covers probabilities above 0.4 up to 0.7.
	RiskMedium
	// RiskHigh covers probabilities above 0.7.
	RiskHigh
)

// Tier cut points. Every surface that colors or labels a probability goes
// through RiskTierFor so the cut points cannot drift between views.
const (
	riskMediumFloor = 0.4
	riskHighFloor   = 0.7
)

// RiskTierFor maps a fraud probability to its display tier.
func RiskTierFor(probability float64) RiskTier {
	switch {
	case probability > riskHighFloor:
		return RiskHigh
	case probability > riskMediumFloor:
		return RiskMedium
	default:
		return RiskLow
	}
}

// String returns the human-readable tier label.
func (t RiskTier) String() string {
	switch t {
	case RiskHigh:
		return "High Risk"
	case RiskMedium:
		return "Medium Risk"
	default:
		return "Low Risk"
	}
}
