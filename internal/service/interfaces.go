// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"fraudscope/internal/model"
)

// RunFilter defines filtering options for run history queries.
type RunFilter struct {
	Limit  int
	Offset int
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Run history
	SaveRun(ctx context.Context, run *model.Run, predictions []model.Prediction) (int64, error)
	GetRun(ctx context.Context, id int64) (*model.Run, error)
	GetLatestRun(ctx context.Context) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)
	GetRunPredictions(ctx context.Context, runID int64) ([]model.Prediction, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// FraudReport is the exportable summary of one batch run.
type FraudReport struct {
	GeneratedAt    time.Time
	BackendURL     string
	TotalProviders int
	FraudCount     int
	FraudRatePct   float64
	TotalSavings   float64
	Predictions    []model.Prediction
	Providers      []model.DashboardRow
}

// ReportWriter defines the contract for report generation.
type ReportWriter interface {
	Write(ctx context.Context, report *FraudReport) error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
