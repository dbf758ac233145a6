package dto

import "time"

type MovementFilters struct {
	ProductID    string
	MovementType string
	ReferenceID  string
	StartDate    *time.Time
	EndDate      *time.Time
	Page         int
	PageSize     int
}

// LowStockFilters selects active products whose stock is at or below Threshold.
type LowStockFilters struct {
	Threshold int
	Page      int
	PageSize  int
}
