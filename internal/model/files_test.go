package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyFilename(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		want     FileCategory
	}{
		{"beneficiary file", "Test_Beneficiarydata.csv", CategoryBeneficiary},
		{"inpatient file", "test_inpatientdata.csv", CategoryInpatient},
		{"outpatient file", "OUTPATIENT_claims.csv", CategoryOutpatient},
		{"provider file", "provider_data.csv", CategoryProvider},
		{"unmatched defaults to provider", "claims_2024.csv", CategoryProvider},
		{"path stripped before matching", "/tmp/uploads/beneficiary.csv", CategoryBeneficiary},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyFilename(tt.filename))
		})
	}
}

func TestIsCSV(t *testing.T) {
	assert.True(t, IsCSV("data.csv"))
	assert.True(t, IsCSV("DATA.CSV"))
	assert.False(t, IsCSV("data.xlsx"))
	assert.False(t, IsCSV("data"))
	assert.False(t, IsCSV("data.csv.gz"))
}

func TestImpactFor(t *testing.T) {
	assert.Equal(t, ImpactPositive, ImpactFor(0.31))
	assert.Equal(t, ImpactPositive, ImpactFor(0))
	assert.Equal(t, ImpactNegative, ImpactFor(-0.002))
}

func TestProviderDetails_ChronicConditions(t *testing.T) {
	d := ProviderDetails{Cancer: 0.2, Stroke: 0.1, Diabetes: 0.55}
	conditions := d.ChronicConditions()
	assert.Len(t, conditions, 11)
	assert.Equal(t, "Cancer", conditions[0].Name)
	assert.InDelta(t, 0.2, conditions[0].Value, 1e-9)
	assert.Equal(t, "Kidney Disease", conditions[10].Name)
}
