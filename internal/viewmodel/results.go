// Package viewmodel provides pure derived views over prediction results:
// filtering, pagination, ranking and aggregates. Nothing here performs IO or
// holds state; every function recomputes from its inputs.
package viewmodel

import (
	"math"
	"sort"
	"strings"

	"fraudscope/internal/model"
)

// PageSize is the fixed number of result rows per page.
const PageSize = 10

// FilterPredictions returns the predictions whose provider identifier
// contains the search term, case-insensitively. An empty term matches all.
func FilterPredictions(predictions []model.Prediction, searchTerm string) []model.Prediction {
	if searchTerm == "" {
		return predictions
	}
	term := strings.ToLower(searchTerm)
	filtered := make([]model.Prediction, 0, len(predictions))
	for _, p := range predictions {
		if strings.Contains(strings.ToLower(p.Provider), term) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// TotalPages returns the page count for n rows: ceil(n/PageSize), 0 when
// there are no rows.
func TotalPages(n int) int {
	return int(math.Ceil(float64(n) / float64(PageSize)))
}

// ClampPage clamps a requested page into [1, totalPages], or 1 when there
// are no pages at all.
func ClampPage(page, totalPages int) int {
	if totalPages < 1 {
		return 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Page returns the slice of predictions for the requested page after
// clamping. Requesting the same page twice over the same input yields the
// same slice.
func Page(predictions []model.Prediction, page int) []model.Prediction {
	totalPages := TotalPages(len(predictions))
	page = ClampPage(page, totalPages)

	start := (page - 1) * PageSize
	if start >= len(predictions) {
		return nil
	}
	end := start + PageSize
	if end > len(predictions) {
		end = len(predictions)
	}
	return predictions[start:end]
}

// SortKey selects the ranking column for the top-providers view.
type SortKey string

const (
	SortByReimbursed    SortKey = "reimbursed"
	SortByClaims        SortKey = "claims"
	SortByBeneficiaries SortKey = "beneficiaries"
)

// Label returns the display name for the sort key.
func (k SortKey) Label() string {
	switch k {
	case SortByClaims:
		return "Most Claims"
	case SortByBeneficiaries:
		return "Most Beneficiaries"
	default:
		return "Most Reimbursed"
	}
}

// TopNChoices are the selectable sizes for the top-providers ranking.
var TopNChoices = []int{3, 5, 10, 15}

// DefaultTopN is the initial ranking size.
const DefaultTopN = 5

// RankedProvider is one row of the top-providers view: the dashboard
// aggregates joined with the provider's prediction when one exists.
type RankedProvider struct {
	Row        model.DashboardRow
	Prediction *model.Prediction
}

// RankProviders joins dashboard rows with predictions by provider name,
// sorts by the chosen key descending and takes the first n. Ties break on
// provider name ascending so identical inputs always rank identically.
func RankProviders(rows []model.DashboardRow, predictions []model.Prediction, key SortKey, n int) []RankedProvider {
	byProvider := make(map[string]model.Prediction, len(predictions))
	for _, p := range predictions {
		byProvider[p.Provider] = p
	}

	ranked := make([]RankedProvider, 0, len(rows))
	for _, row := range rows {
		rp := RankedProvider{Row: row}
		if p, ok := byProvider[row.Provider]; ok {
			pCopy := p
			rp.Prediction = &pCopy
		}
		ranked = append(ranked, rp)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		vi, vj := sortValue(ranked[i].Row, key), sortValue(ranked[j].Row, key)
		if vi != vj {
			return vi > vj
		}
		return ranked[i].Row.Provider < ranked[j].Row.Provider
	})

	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

func sortValue(row model.DashboardRow, key SortKey) float64 {
	switch key {
	case SortByClaims:
		return float64(row.ClaimCount)
	case SortByBeneficiaries:
		return float64(row.UniqueBeneficiaries)
	default:
		return row.TotalReimbursed
	}
}

// TopFraudProviders returns the up-to-three flagged providers with the
// highest fraud probability, ties broken by provider name ascending.
func TopFraudProviders(predictions []model.Prediction) []model.Prediction {
	fraud := make([]model.Prediction, 0, len(predictions))
	for _, p := range predictions {
		if p.IsFraud() {
			fraud = append(fraud, p)
		}
	}
	sort.SliceStable(fraud, func(i, j int) bool {
		if fraud[i].ProbabilidadFraude != fraud[j].ProbabilidadFraude {
			return fraud[i].ProbabilidadFraude > fraud[j].ProbabilidadFraude
		}
		return fraud[i].Provider < fraud[j].Provider
	})
	if len(fraud) > 3 {
		fraud = fraud[:3]
	}
	return fraud
}

// Aggregates are the headline dashboard numbers for one batch.
type Aggregates struct {
	TotalSavings   float64
	TotalProviders int
	FraudCount     int
	FraudRatePct   float64
}

// Aggregate computes the batch headline metrics. TotalSavings sums
// Total_Reimbursed over flagged providers matched by name against the
// dashboard rows; a flagged provider with no matching row contributes zero.
func Aggregate(predictions []model.Prediction, rows []model.DashboardRow) Aggregates {
	byProvider := make(map[string]model.DashboardRow, len(rows))
	for _, row := range rows {
		byProvider[row.Provider] = row
	}

	agg := Aggregates{TotalProviders: len(predictions)}
	for _, p := range predictions {
		if !p.IsFraud() {
			continue
		}
		agg.FraudCount++
		if row, ok := byProvider[p.Provider]; ok {
			agg.TotalSavings += row.TotalReimbursed
		}
	}
	if agg.TotalProviders > 0 {
		agg.FraudRatePct = float64(agg.FraudCount) / float64(agg.TotalProviders) * 100
	}
	return agg
}

// SynthesizeDashboard builds labeled placeholder rows from predictions when
// the backend has no dashboard data. Values are deterministic functions of
// the provider name rather than random so the degraded view is stable, and
// every row is marked Synthesized.
func SynthesizeDashboard(predictions []model.Prediction) []model.DashboardRow {
	rows := make([]model.DashboardRow, 0, len(predictions))
	for _, p := range predictions {
		seed := nameSeed(p.Provider)
		rows = append(rows, model.DashboardRow{
			ProviderDetails: model.ProviderDetails{
				Provider:            p.Provider,
				TotalReimbursed:     50000 + float64(seed%1000)*1000,
				MeanReimbursed:      10000 + float64(seed%50)*1000,
				ClaimCount:          100 + int(seed%1000),
				UniqueBeneficiaries: 50 + int(seed%500),
				AvgAge:              50 + float64(seed%30),
				PctMale:             0.2 + float64(seed%60)/100,
			},
			Synthesized: true,
		})
	}
	return rows
}

func nameSeed(name string) uint32 {
	// FNV-1a, small and stable.
	var h uint32 = 2166136261
	for i := 0; i < len(name); i++ {
		h ^= uint32(name[i])
		h *= 16777619
	}
	return h
}
