package model

// Impact tags the direction of a feature's contribution to a prediction.
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNegative Impact = "negative"
)

// ImpactFor derives the impact tag from a signed contribution weight.
// Zero counts as positive, matching the explainer's convention.
func ImpactFor(weight float64) Impact {
	if weight >= 0 {
		return ImpactPositive
	}
	return ImpactNegative
}

// FeatureContribution is one feature's attribution within an explanation.
// Weight holds the signed contribution (a SHAP value or LIME weight
// depending on the method).
type FeatureContribution struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
	Weight  float64 `json:"weight"`
	Impact  Impact  `json:"impact"`
}

// Explanation is the feature-level attribution for a single prediction,
// one-to-one with the prediction it explains.
type Explanation struct {
	Method          string                `json:"method"`
	Prediction      int                   `json:"prediction"`
	PredictionProba float64               `json:"prediction_proba"`
	BaseValue       float64               `json:"base_value"`
	Contributions   []FeatureContribution `json:"feature_contributions"`
}
