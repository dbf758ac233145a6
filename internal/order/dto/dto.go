package dto

import (
	"time"

	"github.com/fekuna/storefront-service/internal/model"
	"github.com/shopspring/decimal"
)

type OrderFilters struct {
	Status    model.OrderStatus
	Search    string // order number, customer name or email
	UserID    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	PageSize  int
}

type PlaceOrderResult struct {
	OrderNumber string
	OrderID     string
	TotalAmount decimal.Decimal
	Status      model.OrderStatus
}

type CheckDiscountResult struct {
	Code           string
	Percentage     decimal.Decimal
	DiscountAmount decimal.Decimal
	FinalAmount    decimal.Decimal
}

// TrackedOrder is the public view of an order: contact details are reduced
// to the customer's name.
type TrackedOrder struct {
	OrderNumber    string
	CustomerName   string
	Status         model.OrderStatus
	Items          []model.OrderItem
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	DeliveryFee    decimal.Decimal
	TotalAmount    decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
