package model

import "time"

// Run records one completed batch pipeline execution for local history.
type Run struct {
	ID             int64
	CreatedAt      time.Time
	BackendURL     string
	InputRows      int
	OutputRows     int
	TotalProviders int
	FraudCount     int
	FraudRatePct   float64
	TotalSavings   float64
}
