package viewmodel

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fraudscope/internal/model"
)

func makePredictions(n int) []model.Prediction {
	out := make([]model.Prediction, 0, n)
	for i := 0; i < n; i++ {
		p := model.Prediction{Provider: fmt.Sprintf("PRV%03d", i), ProbabilidadFraude: float64(i%100) / 100}
		if p.ProbabilidadFraude > 0.5 {
			p.Prediccion = 1
		}
		out = append(out, p)
	}
	return out
}

func TestFilterPredictions(t *testing.T) {
	predictions := []model.Prediction{
		{Provider: "PRV51001"},
		{Provider: "prv51002"},
		{Provider: "HOSP9"},
	}

	tests := []struct {
		name string
		term string
		want int
	}{
		{"empty term matches all", "", 3},
		{"case-insensitive substring", "prv51", 2},
		{"upper-case term", "PRV51002", 1},
		{"no match", "clinic", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterPredictions(predictions, tt.term)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestFilterPredictions_CountMatchesDefinition(t *testing.T) {
	predictions := makePredictions(57)
	term := "prv00"
	filtered := FilterPredictions(predictions, term)

	expected := 0
	for _, p := range predictions {
		if len(p.Provider) >= 5 && p.Provider[:5] == "PRV00" {
			expected++
		}
	}
	assert.Len(t, filtered, expected)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0))
	assert.Equal(t, 1, TotalPages(1))
	assert.Equal(t, 1, TotalPages(10))
	assert.Equal(t, 2, TotalPages(11))
	assert.Equal(t, 6, TotalPages(57))
}

func TestClampPage(t *testing.T) {
	tests := []struct {
		page       int
		totalPages int
		want       int
	}{
		{0, 5, 1},
		{-3, 5, 1},
		{3, 5, 3},
		{9, 5, 5},
		{1, 0, 1},
		{7, 0, 1},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampPage(tt.page, tt.totalPages), "page=%d total=%d", tt.page, tt.totalPages)
	}
}

func TestPage_IdempotentAndClamped(t *testing.T) {
	predictions := makePredictions(25)

	first := Page(predictions, 2)
	second := Page(predictions, 2)
	assert.Equal(t, first, second, "same page twice returns the same slice")
	require.Len(t, first, 10)
	assert.Equal(t, "PRV010", first[0].Provider)

	last := Page(predictions, 3)
	assert.Len(t, last, 5)

	beyond := Page(predictions, 99)
	assert.Equal(t, last, beyond, "out-of-range page clamps to the last page")

	assert.Empty(t, Page(nil, 1))
}

func TestRankProviders(t *testing.T) {
	rows := []model.DashboardRow{
		{ProviderDetails: model.ProviderDetails{Provider: "A", TotalReimbursed: 100, ClaimCount: 50, UniqueBeneficiaries: 9}},
		{ProviderDetails: model.ProviderDetails{Provider: "B", TotalReimbursed: 300, ClaimCount: 10, UniqueBeneficiaries: 7}},
		{ProviderDetails: model.ProviderDetails{Provider: "C", TotalReimbursed: 200, ClaimCount: 30, UniqueBeneficiaries: 8}},
	}
	predictions := []model.Prediction{{Provider: "B", Prediccion: 1, ProbabilidadFraude: 0.9}}

	byReimbursed := RankProviders(rows, predictions, SortByReimbursed, 2)
	require.Len(t, byReimbursed, 2)
	assert.Equal(t, "B", byReimbursed[0].Row.Provider)
	assert.Equal(t, "C", byReimbursed[1].Row.Provider)
	require.NotNil(t, byReimbursed[0].Prediction)
	assert.True(t, byReimbursed[0].Prediction.IsFraud())
	assert.Nil(t, byReimbursed[1].Prediction)

	byClaims := RankProviders(rows, predictions, SortByClaims, 5)
	assert.Equal(t, "A", byClaims[0].Row.Provider)

	byBeneficiaries := RankProviders(rows, predictions, SortByBeneficiaries, 1)
	require.Len(t, byBeneficiaries, 1)
	assert.Equal(t, "A", byBeneficiaries[0].Row.Provider)
}

func TestRankProviders_DeterministicTieBreak(t *testing.T) {
	rows := []model.DashboardRow{
		{ProviderDetails: model.ProviderDetails{Provider: "Z", TotalReimbursed: 100}},
		{ProviderDetails: model.ProviderDetails{Provider: "A", TotalReimbursed: 100}},
		{ProviderDetails: model.ProviderDetails{Provider: "M", TotalReimbursed: 100}},
	}

	first := RankProviders(rows, nil, SortByReimbursed, 3)
	second := RankProviders(rows, nil, SortByReimbursed, 3)
	assert.Equal(t, first, second)
	assert.Equal(t, "A", first[0].Row.Provider)
	assert.Equal(t, "M", first[1].Row.Provider)
	assert.Equal(t, "Z", first[2].Row.Provider)
}

func TestTopFraudProviders(t *testing.T) {
	predictions := []model.Prediction{
		{Provider: "A", Prediccion: 0, ProbabilidadFraude: 0.2},
		{Provider: "B", Prediccion: 1, ProbabilidadFraude: 0.95},
		{Provider: "C", Prediccion: 1, ProbabilidadFraude: 0.6},
		{Provider: "D", Prediccion: 1, ProbabilidadFraude: 0.8},
		{Provider: "E", Prediccion: 1, ProbabilidadFraude: 0.55},
	}

	top := TopFraudProviders(predictions)
	require.Len(t, top, 3)
	assert.Equal(t, "B", top[0].Provider)
	assert.Equal(t, "D", top[1].Provider)
	assert.Equal(t, "C", top[2].Provider)
}

func TestAggregate(t *testing.T) {
	predictions := []model.Prediction{
		{Provider: "A", Prediccion: 1, ProbabilidadFraude: 0.9},
		{Provider: "B", Prediccion: 0, ProbabilidadFraude: 0.1},
		{Provider: "C", Prediccion: 1, ProbabilidadFraude: 0.7},
		{Provider: "D", Prediccion: 0, ProbabilidadFraude: 0.3},
	}
	rows := []model.DashboardRow{
		{ProviderDetails: model.ProviderDetails{Provider: "A", TotalReimbursed: 120000}},
		{ProviderDetails: model.ProviderDetails{Provider: "B", TotalReimbursed: 99999}},
		// C has no dashboard row: contributes zero savings.
	}

	agg := Aggregate(predictions, rows)
	assert.InDelta(t, 120000, agg.TotalSavings, 1e-9)
	assert.Equal(t, 4, agg.TotalProviders)
	assert.Equal(t, 2, agg.FraudCount)
	assert.InDelta(t, 50.0, agg.FraudRatePct, 1e-9)
}

func TestAggregate_Empty(t *testing.T) {
	agg := Aggregate(nil, nil)
	assert.Zero(t, agg.TotalSavings)
	assert.Zero(t, agg.FraudRatePct)
}

func TestSynthesizeDashboard(t *testing.T) {
	predictions := makePredictions(4)

	first := SynthesizeDashboard(predictions)
	second := SynthesizeDashboard(predictions)
	require.Len(t, first, 4)
	assert.Equal(t, first, second, "placeholder rows are deterministic")

	for _, row := range first {
		assert.True(t, row.Synthesized, "placeholder rows must be labeled")
		assert.Positive(t, row.TotalReimbursed)
		assert.GreaterOrEqual(t, row.PctMale, 0.2)
		assert.LessOrEqual(t, row.PctMale, 0.8)
	}
}
