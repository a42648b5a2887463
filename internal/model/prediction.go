// Package model defines the core domain types shared across the application.
package model

import "fmt"

// DecisionThreshold is the classifier's fixed decision boundary. The backend
// applies it when producing predictions; the client only verifies consistency.
const DecisionThreshold = 0.5

// Prediction represents one provider's fraud verdict from a batch run.
// Field names follow the backend wire format, which keeps the Spanish
// column names of the underlying model output.
type Prediction struct {
	Provider           string  `json:"Provider"`
	Prediccion         int     `json:"Prediccion"`
	ProbabilidadFraude float64 `json:"Probabilidad_Fraude"`
}

// IsFraud reports whether the provider was flagged as fraudulent.
func (p Prediction) IsFraud() bool {
	return p.Prediccion == 1
}

// Consistent reports whether the binary prediction agrees with the
// probability under the fixed decision threshold.
func (p Prediction) Consistent() bool {
	return (p.Prediccion == 1) == (p.ProbabilidadFraude > DecisionThreshold)
}

// PredictionRequest carries the feature vector for a single-provider
// prediction or explanation call. Wire names match the model's training
// columns.
type PredictionRequest struct {
	Provider            string  `json:"Provider"`
	TotalReimbursed     float64 `json:"Total_Reimbursed"`
	ClaimCount          int     `json:"Claim_Count"`
	UniqueBeneficiaries int     `json:"Unique_Beneficiaries"`
	PctMale             float64 `json:"Pct_Male"`
}

// Validate checks the client-side preconditions before any network call.
func (r PredictionRequest) Validate() error {
	if r.Provider == "" {
		return &ValidationError{Field: "Provider", Reason: "provider name is required"}
	}
	if r.TotalReimbursed < 0 {
		return &ValidationError{Field: "Total_Reimbursed", Reason: "must be zero or positive"}
	}
	if r.ClaimCount <= 0 {
		return &ValidationError{Field: "Claim_Count", Reason: "must be positive"}
	}
	if r.UniqueBeneficiaries <= 0 {
		return &ValidationError{Field: "Unique_Beneficiaries", Reason: "must be positive"}
	}
	if r.PctMale < 0 || r.PctMale > 1 {
		return &ValidationError{Field: "Pct_Male", Reason: fmt.Sprintf("must be between 0 and 1, got %.2f", r.PctMale)}
	}
	return nil
}

// MeanReimbursed returns the per-claim mean the backend is expected to echo
// back as calculated_mean_reimbursed.
func (r PredictionRequest) MeanReimbursed() float64 {
	return r.TotalReimbursed / float64(r.ClaimCount)
}

// ValidationError reports a client-side precondition violation. It is raised
// synchronously and never reaches the network.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
