package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusConfirmed,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type Order struct {
	BaseModel
	OrderNumber     string          `db:"order_number" json:"orderNumber"`
	CustomerName    string          `db:"customer_name" json:"customerName"`
	CustomerEmail   string          `db:"customer_email" json:"customerEmail"`
	CustomerPhone   string          `db:"customer_phone" json:"customerPhone"`
	CustomerAddress *string         `db:"customer_address" json:"customerAddress"`
	Subtotal        decimal.Decimal `db:"subtotal" json:"subtotal"`
	DiscountCode    *string         `db:"discount_code" json:"discountCode"`
	DiscountAmount  decimal.Decimal `db:"discount_amount" json:"discountAmount"`
	DeliveryFee     decimal.Decimal `db:"delivery_fee" json:"deliveryFee"`
	TotalAmount     decimal.Decimal `db:"total_amount" json:"totalAmount"`
	Notes           string          `db:"notes" json:"notes"`
	Status          OrderStatus     `db:"status" json:"status"`
	UserID          *string         `db:"user_id" json:"userId"`
	Items           []OrderItem     `db:"-" json:"items"`
}

type OrderItem struct {
	ID          string          `db:"id" json:"id"`
	OrderID     string          `db:"order_id" json:"orderId"`
	ProductID   string          `db:"product_id" json:"productId"`
	ProductName string          `db:"product_name" json:"productName"`
	Quantity    int             `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unitPrice"`
	Product     *Product        `db:"-" json:"product,omitempty"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ComputeTotal returns max(0, subtotal - discount + deliveryFee).
func ComputeTotal(subtotal, discount, deliveryFee decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(discount).Add(deliveryFee)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

type StatusSummary struct {
	Status  OrderStatus     `db:"status" json:"status"`
	Count   int             `db:"count" json:"count"`
	Revenue decimal.Decimal `db:"revenue" json:"revenue"`
}

type WindowSummary struct {
	Since   time.Time       `json:"since"`
	Orders  int             `db:"orders" json:"orders"`
	Revenue decimal.Decimal `db:"revenue" json:"revenue"`
}

type OrderStats struct {
	TotalOrders  int             `json:"totalOrders"`
	TotalRevenue decimal.Decimal `json:"totalRevenue"`
	ByStatus     []StatusSummary `json:"byStatus"`
	Last7Days    WindowSummary   `json:"last7Days"`
	Last30Days   WindowSummary   `json:"last30Days"`
}
