// Package tui implements the interactive results browser.
package tui

import (
	"context"

	"fraudscope/internal/api"
	"fraudscope/internal/model"
)

// DataSource is the slice of the API client the browser reads from.
type DataSource interface {
	GetDashboardData(ctx context.Context) (api.DashboardDataResponse, error)
	GetProviderDetails(ctx context.Context, provider string) (api.ProviderDetailsResponse, error)
	CompareExplanations(ctx context.Context, provider string) (api.ComparedExplanations, error)
}

// Config holds the browser's launch parameters.
type Config struct {
	Source      DataSource
	Predictions []model.Prediction
	Width       int
	Height      int
}
