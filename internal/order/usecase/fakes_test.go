package usecase

import (
	"context"
	"sort"
	"time"

	"github.com/fekuna/storefront-service/internal/apperror"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/order"
	"github.com/fekuna/storefront-service/internal/order/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// memStore backs every fake below so stock, orders and discount usage stay
// consistent with each other the way one Postgres database would.
type memStore struct {
	products   map[string]*model.Product
	orders     map[string]*model.Order
	discounts  map[string]model.DiscountCode
	usages     map[[2]string]string
	movements  []model.InventoryMovement
	collisions int
}

func newMemStore() *memStore {
	return &memStore{
		products:  map[string]*model.Product{},
		orders:    map[string]*model.Order{},
		discounts: map[string]model.DiscountCode{},
		usages:    map[[2]string]string{},
	}
}

func (s *memStore) addProduct(name string, price string, stock int) *model.Product {
	p := &model.Product{
		BaseModel: model.BaseModel{ID: uuid.New().String()},
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Stock:     stock,
		IsActive:  true,
	}
	s.products[p.ID] = p
	return p
}

func (s *memStore) addDiscount(code string, pct int64, expiresAt *time.Time, active bool) model.DiscountCode {
	d := model.DiscountCode{
		BaseModel:  model.BaseModel{ID: uuid.New().String()},
		Code:       code,
		Percentage: decimal.NewFromInt(pct),
		ExpiresAt:  expiresAt,
		IsActive:   active,
	}
	s.discounts[code] = d
	return d
}

func cloneOrder(o *model.Order) *model.Order {
	c := *o
	c.Items = append([]model.OrderItem(nil), o.Items...)
	return &c
}

// memOrders implements order.Repository. Every mutation validates first and
// then applies, so a failure leaves no partial state.
type memOrders struct{ s *memStore }

func (r *memOrders) Create(_ context.Context, o *model.Order, usage *model.DiscountUsage) error {
	if r.s.collisions > 0 {
		r.s.collisions--
		return order.ErrDuplicateNumber
	}
	for _, existing := range r.s.orders {
		if existing.OrderNumber == o.OrderNumber {
			return order.ErrDuplicateNumber
		}
	}
	if err := r.s.checkDebit(o); err != nil {
		return err
	}
	if usage != nil {
		key := [2]string{usage.UserID, usage.DiscountID}
		if _, used := r.s.usages[key]; used {
			return order.ErrDiscountAlreadyUsed
		}
		r.s.usages[key] = usage.OrderID
	}
	r.s.applyStock(o, -1, model.MovementSale)
	r.s.orders[o.ID] = cloneOrder(o)
	return nil
}

func (s *memStore) checkDebit(o *model.Order) error {
	want := map[string]int{}
	for _, item := range o.Items {
		want[item.ProductID] += item.Quantity
		p, ok := s.products[item.ProductID]
		if !ok {
			return &order.StockShortage{ProductID: item.ProductID, Requested: item.Quantity}
		}
		if p.Stock < want[item.ProductID] {
			return &order.StockShortage{ProductID: p.ID, Available: p.Stock - (want[item.ProductID] - item.Quantity), Requested: item.Quantity}
		}
	}
	return nil
}

func (s *memStore) applyStock(o *model.Order, sign int, movementType string) {
	for _, item := range o.Items {
		p, ok := s.products[item.ProductID]
		if !ok {
			continue
		}
		before := p.Stock
		p.Stock += sign * item.Quantity
		s.movements = append(s.movements, model.InventoryMovement{
			ProductID:      p.ID,
			MovementType:   movementType,
			QuantityChange: sign * item.Quantity,
			QuantityBefore: before,
			QuantityAfter:  p.Stock,
		})
	}
}

func (r *memOrders) FindByID(_ context.Context, id string) (*model.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	return cloneOrder(o), nil
}

func (r *memOrders) FindByNumber(_ context.Context, number string) (*model.Order, error) {
	for _, o := range r.s.orders {
		if o.OrderNumber == number {
			return cloneOrder(o), nil
		}
	}
	return nil, nil
}

func (r *memOrders) FindAll(_ context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	out := []model.Order{}
	for _, o := range r.s.orders {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		if f.UserID != "" && (o.UserID == nil || *o.UserID != f.UserID) {
			continue
		}
		out = append(out, *cloneOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, len(out), nil
}

func (r *memOrders) Update(_ context.Context, id string, patch *order.Patch, _ string, now time.Time) (*model.Order, model.OrderStatus, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, "", nil
	}
	previous := o.Status
	if patch.Status != nil {
		status := *patch.Status
		switch {
		case previous != model.OrderStatusCancelled && status == model.OrderStatusCancelled:
			r.s.applyStock(o, 1, model.MovementCancellation)
		case previous == model.OrderStatusCancelled && status != model.OrderStatusCancelled:
			if err := r.s.checkDebit(o); err != nil {
				return nil, "", err
			}
			r.s.applyStock(o, -1, model.MovementReinstate)
		}
		o.Status = status
	}
	patch.ApplyDetails(o)
	o.UpdatedAt = now
	return cloneOrder(o), previous, nil
}

func (r *memOrders) Delete(_ context.Context, id, _ string, _ time.Time) (*model.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, nil
	}
	if o.Status != model.OrderStatusCancelled {
		r.s.applyStock(o, 1, model.MovementDeletion)
	}
	delete(r.s.orders, id)
	return o, nil
}

func (r *memOrders) StatusSummary(_ context.Context) ([]model.StatusSummary, error) {
	byStatus := map[model.OrderStatus]*model.StatusSummary{}
	for _, o := range r.s.orders {
		sum, ok := byStatus[o.Status]
		if !ok {
			sum = &model.StatusSummary{Status: o.Status, Revenue: decimal.Zero}
			byStatus[o.Status] = sum
		}
		sum.Count++
		sum.Revenue = sum.Revenue.Add(o.TotalAmount)
	}
	out := []model.StatusSummary{}
	for _, sum := range byStatus {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Status < out[j].Status })
	return out, nil
}

func (r *memOrders) WindowSummary(_ context.Context, since time.Time) (*model.WindowSummary, error) {
	w := &model.WindowSummary{Since: since, Revenue: decimal.Zero}
	for _, o := range r.s.orders {
		if o.CreatedAt.Before(since) {
			continue
		}
		w.Orders++
		if o.Status != model.OrderStatusCancelled {
			w.Revenue = w.Revenue.Add(o.TotalAmount)
		}
	}
	return w, nil
}

type memProducts struct{ s *memStore }

func (r *memProducts) FindByID(_ context.Context, id string) (*model.Product, error) {
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

func (r *memProducts) FindByIDs(_ context.Context, ids []string) ([]model.Product, error) {
	out := []model.Product{}
	seen := map[string]bool{}
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok && !seen[id] {
			seen[id] = true
			out = append(out, *p)
		}
	}
	return out, nil
}

type memDiscounts struct {
	s   *memStore
	now func() time.Time
}

func (r *memDiscounts) Resolve(_ context.Context, code, userID string) (*model.DiscountCode, error) {
	d, ok := r.s.discounts[code]
	if !ok {
		return nil, apperror.NotFound("discount code %s not found", code)
	}
	if !d.IsActive || d.IsExpired(r.now()) {
		return nil, apperror.InvalidState("discount code %s is no longer valid", code)
	}
	if userID != "" {
		if _, used := r.s.usages[[2]string{userID, d.ID}]; used {
			return nil, apperror.AlreadyUsed("discount code %s has already been used", code)
		}
	}
	return &d, nil
}

type recordingListings struct{ calls int }

func (l *recordingListings) InvalidateListings(context.Context) { l.calls++ }

type recordingEvents struct{ events []order.Event }

func (e *recordingEvents) PublishOrderEvent(_ context.Context, ev order.Event) error {
	e.events = append(e.events, ev)
	return nil
}

func (e *recordingEvents) types() []string {
	out := make([]string, len(e.events))
	for i, ev := range e.events {
		out[i] = ev.Type
	}
	return out
}

type recordingArchive struct {
	archived  []*model.Order
	deletedBy []string
}

func (a *recordingArchive) ArchiveOrder(_ context.Context, o *model.Order, deletedBy string, _ time.Time) error {
	a.archived = append(a.archived, o)
	a.deletedBy = append(a.deletedBy, deletedBy)
	return nil
}
