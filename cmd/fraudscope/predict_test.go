package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudscope/internal/model"
)

func TestWriteResultsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.csv")
	predictions := []model.Prediction{
		{Provider: "PRV001", Prediccion: 1, ProbabilidadFraude: 0.9132},
		{Provider: "PRV002", Prediccion: 0, ProbabilidadFraude: 0.08},
	}

	require.NoError(t, writeResultsCSV(path, predictions))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			t.Logf("Failed to close file: %v", closeErr)
		}
	}()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"Provider", "Fraud_Prediction", "Fraud_Probability"}, records[0])
	assert.Equal(t, []string{"PRV001", "Fraud", "91.32%"}, records[1])
	assert.Equal(t, []string{"PRV002", "No_Fraud", "8.00%"}, records[2])
}

func TestWriteResultsCSVEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, writeResultsCSV(path, nil))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header only")
}

func TestWriteSingleRowCSV(t *testing.T) {
	path, err := writeSingleRowCSV(model.PredictionRequest{
		Provider:            "PRV900",
		TotalReimbursed:     12500.50,
		ClaimCount:          42,
		UniqueBeneficiaries: 30,
		PctMale:             0.55,
	})
	require.NoError(t, err)
	defer func() { _ = os.Remove(path) }()

	assert.Equal(t, ".csv", filepath.Ext(path))
	assert.Equal(t, model.CategoryProvider, model.ClassifyFilename(path))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"Provider", "Total_Reimbursed", "Claim_Count", "Unique_Beneficiaries", "Pct_Male"}, records[0])
	assert.Equal(t, []string{"PRV900", "12500.50", "42", "30", "0.5500"}, records[1])
}
