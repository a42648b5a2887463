package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPredictionRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     PredictionRequest
		wantErr bool
		field   string
	}{
		{
			name: "valid request",
			req: PredictionRequest{
				Provider:            "PRV51001",
				TotalReimbursed:     50000,
				ClaimCount:          10,
				UniqueBeneficiaries: 5,
				PctMale:             0.4,
			},
			wantErr: false,
		},
		{
			name: "empty provider",
			req: PredictionRequest{
				TotalReimbursed:     1000,
				ClaimCount:          1,
				UniqueBeneficiaries: 1,
				PctMale:             0.5,
			},
			wantErr: true,
			field:   "Provider",
		},
		{
			name: "negative reimbursement",
			req: PredictionRequest{
				Provider:            "PRV51001",
				TotalReimbursed:     -1,
				ClaimCount:          1,
				UniqueBeneficiaries: 1,
				PctMale:             0.5,
			},
			wantErr: true,
			field:   "Total_Reimbursed",
		},
		{
			name: "zero claim count",
			req: PredictionRequest{
				Provider:            "PRV51001",
				TotalReimbursed:     100,
				ClaimCount:          0,
				UniqueBeneficiaries: 1,
				PctMale:             0.5,
			},
			wantErr: true,
			field:   "Claim_Count",
		},
		{
			name: "zero beneficiaries",
			req: PredictionRequest{
				Provider:            "PRV51001",
				TotalReimbursed:     100,
				ClaimCount:          1,
				UniqueBeneficiaries: 0,
				PctMale:             0.5,
			},
			wantErr: true,
			field:   "Unique_Beneficiaries",
		},
		{
			name: "pct male above one",
			req: PredictionRequest{
				Provider:            "PRV51001",
				TotalReimbursed:     100,
				ClaimCount:          1,
				UniqueBeneficiaries: 1,
				PctMale:             1.2,
			},
			wantErr: true,
			field:   "Pct_Male",
		},
		{
			name: "pct male negative",
			req: PredictionRequest{
				Provider:            "PRV51001",
				TotalReimbursed:     100,
				ClaimCount:          1,
				UniqueBeneficiaries: 1,
				PctMale:             -0.1,
			},
			wantErr: true,
			field:   "Pct_Male",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			var vErr *ValidationError
			assert.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestPredictionRequest_MeanReimbursed(t *testing.T) {
	req := PredictionRequest{TotalReimbursed: 50000, ClaimCount: 10}
	assert.InDelta(t, 5000.0, req.MeanReimbursed(), 1e-9)
}

func TestPrediction_Consistent(t *testing.T) {
	tests := []struct {
		name string
		p    Prediction
		want bool
	}{
		{"fraud above threshold", Prediction{Prediccion: 1, ProbabilidadFraude: 0.82}, true},
		{"clean below threshold", Prediction{Prediccion: 0, ProbabilidadFraude: 0.12}, true},
		{"clean at threshold", Prediction{Prediccion: 0, ProbabilidadFraude: 0.5}, true},
		{"fraud below threshold", Prediction{Prediccion: 1, ProbabilidadFraude: 0.3}, false},
		{"clean above threshold", Prediction{Prediccion: 0, ProbabilidadFraude: 0.9}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Consistent())
		})
	}
}

func TestRiskTierFor(t *testing.T) {
	tests := []struct {
		probability float64
		want        RiskTier
	}{
		{0.0, RiskLow},
		{0.4, RiskLow},
		{0.41, RiskMedium},
		{0.7, RiskMedium},
		{0.71, RiskHigh},
		{1.0, RiskHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, RiskTierFor(tt.probability), "probability %.2f", tt.probability)
	}
}
