package dto

type DiscountFilters struct {
	IsActive *bool
	Search   string
	Page     int
	PageSize int
}
