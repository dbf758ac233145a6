package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateDiscountInput struct {
	Code       string
	Percentage decimal.Decimal
	ExpiresAt  *time.Time
}

// UpdateDiscountInput is a partial update; ClearExpiry removes the expiry.
type UpdateDiscountInput struct {
	ID          string
	Code        *string
	Percentage  *decimal.Decimal
	ExpiresAt   *time.Time
	ClearExpiry bool
	IsActive    *bool
}
