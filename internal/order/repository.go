package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/order/dto"
)

var (
	ErrDuplicateNumber     = errors.New("order: order number already exists")
	ErrDiscountAlreadyUsed = errors.New("order: discount code already used by this user")
)

// StockShortage is returned by the repository when a conditional stock
// decrement matched no row.
type StockShortage struct {
	ProductID string
	Available int
	Requested int
}

func (e *StockShortage) Error() string {
	return fmt.Sprintf("order: product %s has %d in stock, %d requested", e.ProductID, e.Available, e.Requested)
}

// Patch is an edit applied to a locked order. Nil fields keep their stored
// value; an empty CustomerAddress clears it.
type Patch struct {
	Status          *model.OrderStatus
	CustomerName    *string
	CustomerEmail   *string
	CustomerPhone   *string
	CustomerAddress *string
	Notes           *string
}

func (p *Patch) IsEmpty() bool {
	return p.Status == nil && p.CustomerName == nil && p.CustomerEmail == nil &&
		p.CustomerPhone == nil && p.CustomerAddress == nil && p.Notes == nil
}

// ApplyDetails copies the set contact fields and notes onto o and reports
// whether any were set.
func (p *Patch) ApplyDetails(o *model.Order) bool {
	changed := false
	set := func(dst, v *string) {
		if v != nil {
			*dst = *v
			changed = true
		}
	}
	set(&o.CustomerName, p.CustomerName)
	set(&o.CustomerEmail, p.CustomerEmail)
	set(&o.CustomerPhone, p.CustomerPhone)
	set(&o.Notes, p.Notes)
	if p.CustomerAddress != nil {
		o.CustomerAddress = nil
		if *p.CustomerAddress != "" {
			address := *p.CustomerAddress
			o.CustomerAddress = &address
		}
		changed = true
	}
	return changed
}

type Repository interface {
	// Create persists the order, its items, the stock decrements, the sale
	// movements and the optional discount usage in a single transaction.
	Create(ctx context.Context, order *model.Order, usage *model.DiscountUsage) error
	FindByID(ctx context.Context, id string) (*model.Order, error)
	FindByNumber(ctx context.Context, number string) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)

	// Update locks the order, applies the stock side effects of a status
	// transition and stores the patched row in one transaction. It returns the
	// updated order and the status it had before, or a nil order when id does
	// not exist.
	Update(ctx context.Context, id string, patch *Patch, actorID string, now time.Time) (*model.Order, model.OrderStatus, error)

	// Delete locks the order, restores stock unless it was cancelled and
	// removes it. It returns the deleted order, or nil when id does not exist.
	Delete(ctx context.Context, id, actorID string, now time.Time) (*model.Order, error)

	StatusSummary(ctx context.Context) ([]model.StatusSummary, error)
	WindowSummary(ctx context.Context, since time.Time) (*model.WindowSummary, error)
}
