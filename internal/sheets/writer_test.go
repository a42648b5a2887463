package sheets

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudscope/internal/model"
	"fraudscope/internal/service"
)

func testReport() *service.FraudReport {
	return &service.FraudReport{
		GeneratedAt:    time.Date(2026, 8, 30, 14, 30, 0, 0, time.UTC),
		BackendURL:     "http://localhost:8000",
		TotalProviders: 3,
		FraudCount:     2,
		FraudRatePct:   66.7,
		TotalSavings:   95000,
		Predictions: []model.Prediction{
			{Provider: "PRV002", Prediccion: 1, ProbabilidadFraude: 0.73},
			{Provider: "PRV001", Prediccion: 1, ProbabilidadFraude: 0.91},
			{Provider: "PRV003", Prediccion: 0, ProbabilidadFraude: 0.08},
		},
	}
}

func TestPrepareReportDataLayout(t *testing.T) {
	w := &Writer{config: DefaultConfig(), logger: slog.Default()}
	values := w.prepareReportData(testReport())

	require.NotEmpty(t, values)
	assert.Equal(t, "Fraud Detection Report", values[0][0])

	// Summary block carries the aggregates.
	flat := flatten(values)
	assert.Contains(t, flat, "Total Providers")
	assert.Contains(t, flat, "Flagged Fraudulent")
	assert.Contains(t, flat, "66.7%")
	assert.Contains(t, flat, "Risk Tier Breakdown")

	// Prediction rows come last, probability descending.
	last := values[len(values)-1]
	assert.Equal(t, "PRV003", last[0])
	assert.Equal(t, "No Fraud", last[1])
	first := values[len(values)-3]
	assert.Equal(t, "PRV001", first[0])
	assert.Equal(t, "Fraud", first[1])
	assert.Equal(t, "91.00%", first[2])
	assert.Equal(t, "High Risk", first[3])
}

func TestPrepareReportDataEmptyPredictions(t *testing.T) {
	w := &Writer{config: DefaultConfig(), logger: slog.Default()}
	report := testReport()
	report.Predictions = nil

	values := w.prepareReportData(report)
	require.NotEmpty(t, values)
	// Table header still present, no data rows after it.
	last := values[len(values)-1]
	assert.Equal(t, "Provider", last[0])
}

func TestPrepareProviderSummaryDataLayout(t *testing.T) {
	w := &Writer{config: DefaultConfig(), logger: slog.Default()}
	report := testReport()
	report.Providers = []model.DashboardRow{
		{ProviderDetails: model.ProviderDetails{
			Provider: "PRV003", TotalReimbursed: 12000, MeanReimbursed: 400,
			ClaimCount: 30, UniqueBeneficiaries: 22,
		}},
		{ProviderDetails: model.ProviderDetails{
			Provider: "PRV001", TotalReimbursed: 85000, MeanReimbursed: 1700,
			ClaimCount: 50, UniqueBeneficiaries: 34,
		}},
	}

	values := w.prepareProviderSummaryData(report)
	require.Len(t, values, 5)

	assert.Equal(t, "Provider Summary", values[0][0])
	assert.Equal(t,
		[]any{"Provider", "Total Reimbursed", "Mean Reimbursed", "Claims", "Unique Beneficiaries"},
		values[2])

	// Rows are sorted by total reimbursed descending.
	assert.Equal(t, []any{"PRV001", 85000.0, 1700.0, 50, 34}, values[3])
	assert.Equal(t, []any{"PRV003", 12000.0, 400.0, 30, 22}, values[4])
}

func TestPrepareProviderSummaryDataNoProviders(t *testing.T) {
	w := &Writer{config: DefaultConfig(), logger: slog.Default()}

	values := w.prepareProviderSummaryData(testReport())
	require.Len(t, values, 3)
	assert.Equal(t, "Provider", values[2][0])
}

func TestProviderSummaryRowsTieBreak(t *testing.T) {
	rows := providerSummaryRows([]model.DashboardRow{
		{ProviderDetails: model.ProviderDetails{Provider: "PRV202", TotalReimbursed: 5000}},
		{ProviderDetails: model.ProviderDetails{Provider: "PRV101", TotalReimbursed: 5000}},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "PRV101", rows[0].Provider)
	assert.Equal(t, "PRV202", rows[1].Provider)
}

func TestPredictionRowsOrderingAndVerdicts(t *testing.T) {
	rows := predictionRows(testReport().Predictions)

	require.Len(t, rows, 3)
	assert.Equal(t,
		PredictionRow{Provider: "PRV001", Verdict: "Fraud", Probability: 0.91, RiskTier: "High Risk"},
		rows[0])
	assert.Equal(t, "PRV002", rows[1].Provider)
	assert.Equal(t,
		PredictionRow{Provider: "PRV003", Verdict: "No Fraud", Probability: 0.08, RiskTier: "Low Risk"},
		rows[2])
}

func TestTierBreakdown(t *testing.T) {
	rows := tierBreakdown([]model.Prediction{
		{Provider: "A", ProbabilidadFraude: 0.91},
		{Provider: "B", ProbabilidadFraude: 0.73},
		{Provider: "C", ProbabilidadFraude: 0.55},
		{Provider: "D", ProbabilidadFraude: 0.08},
	})

	require.Len(t, rows, 3)
	assert.Equal(t, TierSummaryRow{Tier: "High Risk", Count: 2}, rows[0])
	assert.Equal(t, TierSummaryRow{Tier: "Medium Risk", Count: 1}, rows[1])
	assert.Equal(t, TierSummaryRow{Tier: "Low Risk", Count: 1}, rows[2])
}

func flatten(values [][]any) []any {
	var flat []any
	for _, row := range values {
		flat = append(flat, row...)
	}
	return flat
}
