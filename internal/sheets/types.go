package sheets

// PredictionRow represents a single row in the Predictions tab.
type PredictionRow struct {
	Provider    string
	Verdict     string
	Probability float64
	RiskTier    string
}

// TierSummaryRow represents a single row in the risk tier breakdown.
type TierSummaryRow struct {
	Tier  string
	Count int
}

// ProviderSummaryRow represents a single row in the Provider Summary tab.
type ProviderSummaryRow struct {
	Provider            string
	TotalReimbursed     float64
	MeanReimbursed      float64
	ClaimCount          int
	UniqueBeneficiaries int
}
