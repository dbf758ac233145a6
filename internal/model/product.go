package model

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

type Product struct {
	BaseModel
	CategoryID         *string         `db:"category_id" json:"categoryId"` // Nullable
	Name               string          `db:"name" json:"name"`
	Description        string          `db:"description" json:"description"`
	Price              decimal.Decimal `db:"price" json:"price"`
	Images             StringList      `db:"images" json:"images"`
	Stock              int             `db:"stock" json:"stock"`
	IsActive           bool            `db:"is_active" json:"isActive"`
	IsFeatured         bool            `db:"is_featured" json:"isFeatured"`
	IsBestSeller       bool            `db:"is_best_seller" json:"isBestSeller"`
	IsSpecialOffer     bool            `db:"is_special_offer" json:"isSpecialOffer"`
	DiscountPercentage decimal.Decimal `db:"discount_percentage" json:"discountPercentage"`
	DiscountedPrice    decimal.Decimal `db:"discounted_price" json:"discountedPrice"`
}

// RecalculateDiscountedPrice derives DiscountedPrice from Price and
// DiscountPercentage. Called on every save.
func (p *Product) RecalculateDiscountedPrice() {
	if p.DiscountPercentage.LessThanOrEqual(decimal.Zero) {
		p.DiscountedPrice = p.Price
		return
	}
	factor := hundred.Sub(p.DiscountPercentage).Div(hundred)
	p.DiscountedPrice = p.Price.Mul(factor).Round(2)
}
