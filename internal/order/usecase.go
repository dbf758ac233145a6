package order

import (
	"context"
	"time"

	"github.com/fekuna/storefront-service/internal/auth"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/order/dto"
)

type UseCase interface {
	PlaceOrder(ctx context.Context, input *dto.PlaceOrderInput) (*dto.PlaceOrderResult, error)
	UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Order, error)
	UpdateOrder(ctx context.Context, input *dto.UpdateOrderInput) (*model.Order, error)
	DeleteOrder(ctx context.Context, id, actorID string) error
	CheckDiscount(ctx context.Context, input *dto.CheckDiscountInput) (*dto.CheckDiscountResult, error)

	GetOrder(ctx context.Context, id string, viewer *auth.UserContext) (*model.Order, error)
	TrackOrder(ctx context.Context, orderNumber string) (*dto.TrackedOrder, error)
	ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
	Stats(ctx context.Context) (*model.OrderStats, error)
}

// ProductReader is the catalog lookup the ledger prices orders against.
type ProductReader interface {
	FindByID(ctx context.Context, id string) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.Product, error)
}

// DiscountResolver validates a code, and its use by userID when non-empty.
type DiscountResolver interface {
	Resolve(ctx context.Context, code, userID string) (*model.DiscountCode, error)
}

type ListingInvalidator interface {
	InvalidateListings(ctx context.Context)
}

// EventPublisher emits order lifecycle events after commit.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event Event) error
}

// Archive keeps a copy of deleted orders.
type Archive interface {
	ArchiveOrder(ctx context.Context, order *model.Order, deletedBy string, deletedAt time.Time) error
}

const (
	EventCreated       = "order.created"
	EventStatusChanged = "order.status_changed"
	EventDeleted       = "order.deleted"
)

type Event struct {
	Type           string    `json:"type"`
	OrderID        string    `json:"orderId"`
	OrderNumber    string    `json:"orderNumber"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	Status         string    `json:"status"`
	TotalAmount    string    `json:"totalAmount"`
	ActorID        string    `json:"actorId,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}
