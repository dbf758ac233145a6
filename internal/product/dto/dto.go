package dto

import "github.com/shopspring/decimal"

type ProductFilters struct {
	CategoryID     string
	IsActive       *bool
	SearchQuery    string // name/description search
	MinPrice       *decimal.Decimal
	MaxPrice       *decimal.Decimal
	IsFeatured     *bool
	IsBestSeller   *bool
	IsSpecialOffer *bool
	SortBy         string // name, price, stock, created_at
	SortOrder      string // asc, desc
	Page           int
	PageSize       int
}
