package dto

import (
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/shopspring/decimal"
)

type CustomerInfo struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

type OrderLineInput struct {
	ProductID string
	Quantity  int
}

// PlaceOrderInput carries the checkout request. UserID and UserRole are empty
// for guest checkouts.
type PlaceOrderInput struct {
	Customer     CustomerInfo
	Items        []OrderLineInput
	Notes        string
	DiscountCode string
	DeliveryFee  decimal.Decimal
	UserID       string
	UserRole     string
}

type UpdateStatusInput struct {
	ID      string
	Status  model.OrderStatus
	ActorID string
}

// UpdateOrderInput is a partial update; a non-nil Status goes through the
// same stock rules as UpdateStatus.
type UpdateOrderInput struct {
	ID              string
	CustomerName    *string
	CustomerEmail   *string
	CustomerPhone   *string
	CustomerAddress *string
	Notes           *string
	Status          *model.OrderStatus
	ActorID         string
}

type CheckDiscountInput struct {
	Code     string
	Subtotal decimal.Decimal
	UserID   string
	UserRole string
}
