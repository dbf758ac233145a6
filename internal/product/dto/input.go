package dto

import "github.com/shopspring/decimal"

type CreateProductInput struct {
	CategoryID         string
	Name               string
	Description        string
	Price              decimal.Decimal
	Images             []string
	Stock              int
	IsFeatured         bool
	IsBestSeller       bool
	IsSpecialOffer     bool
	DiscountPercentage decimal.Decimal
}

// UpdateProductInput is a partial update; nil fields are left untouched.
// Stock is not editable here: it moves only through orders and audited
// inventory adjustments.
type UpdateProductInput struct {
	ID                 string
	CategoryID         *string
	Name               *string
	Description        *string
	Price              *decimal.Decimal
	Images             []string
	IsActive           *bool
	IsFeatured         *bool
	IsBestSeller       *bool
	IsSpecialOffer     *bool
	DiscountPercentage *decimal.Decimal
}
