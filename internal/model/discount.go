package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type DiscountCode struct {
	BaseModel
	Code       string          `db:"code" json:"code"`
	Percentage decimal.Decimal `db:"percentage" json:"percentage"`
	ExpiresAt  *time.Time      `db:"expires_at" json:"expiresAt"`
	IsActive   bool            `db:"is_active" json:"isActive"`
}

func (d *DiscountCode) IsExpired(now time.Time) bool {
	return d.ExpiresAt != nil && now.After(*d.ExpiresAt)
}

// AmountFor returns the discount on subtotal, rounded to cents.
func (d *DiscountCode) AmountFor(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(d.Percentage).Div(hundred).Round(2)
}

// DiscountUsage records that a user consumed a code. Code is the code as it
// read when used; DiscountID is what identifies the usage.
type DiscountUsage struct {
	UserID     string    `db:"user_id"`
	DiscountID string    `db:"discount_id"`
	Code       string    `db:"code"`
	OrderID    string    `db:"order_id"`
	UsedAt     time.Time `db:"used_at"`
}
