package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fekuna/storefront-service/internal/apperror"
	"github.com/fekuna/storefront-service/internal/auth"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/order"
	"github.com/fekuna/storefront-service/internal/order/dto"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	maxNumberAttempts = 3
	defaultPageSize   = 12
	sideEffectTimeout = 5 * time.Second
)

// Deps lists what the ledger needs. Listings, Events and Archive are optional.
type Deps struct {
	Orders       order.Repository
	Products     order.ProductReader
	Discounts    order.DiscountResolver
	Listings     order.ListingInvalidator
	Events       order.EventPublisher
	Archive      order.Archive
	Clock        func() time.Time
	NumberPrefix string
	Logger       logger.ZapLogger
}

type orderUseCase struct {
	orders    order.Repository
	products  order.ProductReader
	discounts order.DiscountResolver
	listings  order.ListingInvalidator
	events    order.EventPublisher
	archive   order.Archive
	now       func() time.Time
	prefix    string
	logger    logger.ZapLogger
}

func NewOrderUseCase(d Deps) order.UseCase {
	if d.Clock == nil {
		d.Clock = time.Now
	}
	if d.NumberPrefix == "" {
		d.NumberPrefix = "ORD"
	}
	return &orderUseCase{
		orders:    d.Orders,
		products:  d.Products,
		discounts: d.Discounts,
		listings:  d.Listings,
		events:    d.Events,
		archive:   d.Archive,
		now:       d.Clock,
		prefix:    d.NumberPrefix,
		logger:    d.Logger,
	}
}

func (uc *orderUseCase) PlaceOrder(ctx context.Context, input *dto.PlaceOrderInput) (*dto.PlaceOrderResult, error) {
	customer, err := validateCustomer(input.Customer)
	if err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, apperror.Validation("order must contain at least one item")
	}
	ids := make([]string, 0, len(input.Items))
	for _, line := range input.Items {
		if strings.TrimSpace(line.ProductID) == "" {
			return nil, apperror.Validation("product id is required for every item")
		}
		if line.Quantity <= 0 {
			return nil, apperror.Validation("quantity must be greater than zero")
		}
		ids = append(ids, line.ProductID)
	}
	if input.DeliveryFee.IsNegative() {
		return nil, apperror.Validation("delivery fee must not be negative")
	}
	for _, id := range ids {
		if uuid.Validate(id) != nil {
			return nil, apperror.NotFound("product %s not found", id)
		}
	}

	found, err := uc.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to load products")
	}
	catalog := make(map[string]model.Product, len(found))
	for _, p := range found {
		catalog[p.ID] = p
	}

	now := uc.now()
	o := &model.Order{
		BaseModel:       model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerPhone:   customer.Phone,
		CustomerAddress: optional(customer.Address),
		DeliveryFee:     input.DeliveryFee,
		Notes:           strings.TrimSpace(input.Notes),
		Status:          model.OrderStatusPending,
		UserID:          optional(input.UserID),
	}

	subtotal := decimal.Zero
	for _, line := range input.Items {
		p, ok := catalog[line.ProductID]
		if !ok || !p.IsActive {
			return nil, apperror.NotFound("product %s not found", line.ProductID)
		}
		if p.Stock < line.Quantity {
			return nil, apperror.InsufficientStock(p.ID, p.Name, p.Stock, line.Quantity)
		}
		item := model.OrderItem{
			ID:          uuid.New().String(),
			OrderID:     o.ID,
			ProductID:   p.ID,
			ProductName: p.Name,
			Quantity:    line.Quantity,
			UnitPrice:   p.Price,
		}
		subtotal = subtotal.Add(item.LineTotal())
		o.Items = append(o.Items, item)
	}
	o.Subtotal = subtotal

	var usage *model.DiscountUsage
	if code := strings.TrimSpace(input.DiscountCode); code != "" {
		consumer := consumerID(input.UserID, input.UserRole)
		d, err := uc.discounts.Resolve(ctx, code, consumer)
		if err != nil {
			return nil, err
		}
		o.DiscountCode = &d.Code
		o.DiscountAmount = d.AmountFor(subtotal)
		if consumer != "" {
			usage = &model.DiscountUsage{UserID: consumer, DiscountID: d.ID, Code: d.Code, OrderID: o.ID, UsedAt: now}
		}
	}
	o.TotalAmount = model.ComputeTotal(o.Subtotal, o.DiscountAmount, o.DeliveryFee)

	if err := uc.create(ctx, o, usage); err != nil {
		var shortage *order.StockShortage
		switch {
		case errors.As(err, &shortage):
			return nil, apperror.InsufficientStock(shortage.ProductID, catalog[shortage.ProductID].Name, shortage.Available, shortage.Requested)
		case errors.Is(err, order.ErrDiscountAlreadyUsed):
			return nil, apperror.AlreadyUsed("discount code %s has already been used", *o.DiscountCode)
		default:
			return nil, apperror.Persistence(err, "failed to place order")
		}
	}

	uc.logger.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("order_number", o.OrderNumber),
		zap.String("total", o.TotalAmount.StringFixed(2)),
		zap.Int("items", len(o.Items)),
	)

	uc.invalidateListings(ctx)
	uc.publish(ctx, order.Event{
		Type:        order.EventCreated,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount.StringFixed(2),
		ActorID:     input.UserID,
		OccurredAt:  now,
	})

	return &dto.PlaceOrderResult{
		OrderNumber: o.OrderNumber,
		OrderID:     o.ID,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
	}, nil
}

// create retries with a fresh order number when the generated one collides.
func (uc *orderUseCase) create(ctx context.Context, o *model.Order, usage *model.DiscountUsage) error {
	var err error
	for attempt := 1; attempt <= maxNumberAttempts; attempt++ {
		o.OrderNumber, err = newOrderNumber(uc.prefix, o.CreatedAt)
		if err != nil {
			return err
		}
		err = uc.orders.Create(ctx, o, usage)
		if !errors.Is(err, order.ErrDuplicateNumber) {
			return err
		}
		uc.logger.Warn("order number collision", zap.String("order_number", o.OrderNumber), zap.Int("attempt", attempt))
	}
	return err
}

func (uc *orderUseCase) UpdateStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Order, error) {
	if !input.Status.Valid() {
		return nil, apperror.InvalidState("invalid order status %q", input.Status)
	}
	status := input.Status
	return uc.update(ctx, input.ID, &order.Patch{Status: &status}, input.ActorID)
}

func (uc *orderUseCase) UpdateOrder(ctx context.Context, input *dto.UpdateOrderInput) (*model.Order, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, apperror.InvalidState("invalid order status %q", *input.Status)
	}

	patch := &order.Patch{Status: input.Status}
	required := func(v *string, field string) (*string, error) {
		if v == nil {
			return nil, nil
		}
		s := strings.TrimSpace(*v)
		if s == "" {
			return nil, apperror.Validation("%s must not be empty", field)
		}
		return &s, nil
	}
	var err error
	if patch.CustomerName, err = required(input.CustomerName, "customer name"); err != nil {
		return nil, err
	}
	if patch.CustomerEmail, err = required(input.CustomerEmail, "customer email"); err != nil {
		return nil, err
	}
	if patch.CustomerPhone, err = required(input.CustomerPhone, "customer phone"); err != nil {
		return nil, err
	}
	if input.CustomerAddress != nil {
		address := strings.TrimSpace(*input.CustomerAddress)
		patch.CustomerAddress = &address
	}
	if input.Notes != nil {
		notes := strings.TrimSpace(*input.Notes)
		patch.Notes = &notes
	}

	if patch.IsEmpty() {
		return uc.find(ctx, input.ID)
	}
	return uc.update(ctx, input.ID, patch, input.ActorID)
}

// update applies patch under the order's row lock, then runs the side
// effects of a status change.
func (uc *orderUseCase) update(ctx context.Context, id string, patch *order.Patch, actorID string) (*model.Order, error) {
	if uuid.Validate(id) != nil {
		return nil, apperror.NotFound("order not found")
	}

	now := uc.now()
	o, previous, err := uc.orders.Update(ctx, id, patch, actorID, now)
	if err != nil {
		var shortage *order.StockShortage
		if errors.As(err, &shortage) {
			return nil, uc.stockError(ctx, shortage)
		}
		return nil, apperror.Persistence(err, "failed to update order")
	}
	if o == nil {
		return nil, apperror.NotFound("order not found")
	}

	if previous != o.Status {
		uc.logger.Info("order status changed",
			zap.String("order_id", o.ID),
			zap.String("from", string(previous)),
			zap.String("to", string(o.Status)),
		)
		if previous == model.OrderStatusCancelled || o.Status == model.OrderStatusCancelled {
			uc.invalidateListings(ctx)
		}
		uc.publish(ctx, order.Event{
			Type:           order.EventStatusChanged,
			OrderID:        o.ID,
			OrderNumber:    o.OrderNumber,
			PreviousStatus: string(previous),
			Status:         string(o.Status),
			TotalAmount:    o.TotalAmount.StringFixed(2),
			ActorID:        actorID,
			OccurredAt:     now,
		})
	}
	return o, nil
}

func (uc *orderUseCase) DeleteOrder(ctx context.Context, id, actorID string) error {
	if uuid.Validate(id) != nil {
		return apperror.NotFound("order not found")
	}

	now := uc.now()
	o, err := uc.orders.Delete(ctx, id, actorID, now)
	if err != nil {
		return apperror.Persistence(err, "failed to delete order")
	}
	if o == nil {
		return apperror.NotFound("order not found")
	}

	uc.logger.Info("order deleted", zap.String("order_id", o.ID), zap.String("order_number", o.OrderNumber))

	if o.Status != model.OrderStatusCancelled {
		uc.invalidateListings(ctx)
	}
	if uc.archive != nil {
		actx, cancel := detached(ctx)
		if err := uc.archive.ArchiveOrder(actx, o, actorID, now); err != nil {
			uc.logger.Error("failed to archive deleted order", zap.String("order_id", o.ID), zap.Error(err))
		}
		cancel()
	}
	uc.publish(ctx, order.Event{
		Type:        order.EventDeleted,
		OrderID:     o.ID,
		OrderNumber: o.OrderNumber,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount.StringFixed(2),
		ActorID:     actorID,
		OccurredAt:  now,
	})
	return nil
}

func (uc *orderUseCase) CheckDiscount(ctx context.Context, input *dto.CheckDiscountInput) (*dto.CheckDiscountResult, error) {
	if strings.TrimSpace(input.Code) == "" {
		return nil, apperror.Validation("discount code is required")
	}
	if input.Subtotal.IsNegative() {
		return nil, apperror.Validation("subtotal must not be negative")
	}

	d, err := uc.discounts.Resolve(ctx, input.Code, consumerID(input.UserID, input.UserRole))
	if err != nil {
		return nil, err
	}

	amount := d.AmountFor(input.Subtotal)
	final := input.Subtotal.Sub(amount)
	if final.IsNegative() {
		final = decimal.Zero
	}
	return &dto.CheckDiscountResult{
		Code:           d.Code,
		Percentage:     d.Percentage,
		DiscountAmount: amount,
		FinalAmount:    final,
	}, nil
}

func (uc *orderUseCase) GetOrder(ctx context.Context, id string, viewer *auth.UserContext) (*model.Order, error) {
	if viewer == nil {
		return nil, apperror.Unauthorized("authentication required")
	}
	o, err := uc.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin() && (o.UserID == nil || *o.UserID != viewer.UserID) {
		return nil, apperror.Forbidden("you do not have access to this order")
	}

	ids := make([]string, len(o.Items))
	for i, item := range o.Items {
		ids[i] = item.ProductID
	}
	products, err := uc.products.FindByIDs(ctx, ids)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to load products")
	}
	byID := make(map[string]*model.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	for i := range o.Items {
		o.Items[i].Product = byID[o.Items[i].ProductID]
	}
	return o, nil
}

func (uc *orderUseCase) TrackOrder(ctx context.Context, orderNumber string) (*dto.TrackedOrder, error) {
	number := strings.TrimSpace(orderNumber)
	if number == "" {
		return nil, apperror.Validation("order number is required")
	}
	o, err := uc.orders.FindByNumber(ctx, number)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to load order")
	}
	if o == nil {
		return nil, apperror.NotFound("order %s not found", number)
	}
	return &dto.TrackedOrder{
		OrderNumber:    o.OrderNumber,
		CustomerName:   o.CustomerName,
		Status:         o.Status,
		Items:          o.Items,
		Subtotal:       o.Subtotal,
		DiscountAmount: o.DiscountAmount,
		DeliveryFee:    o.DeliveryFee,
		TotalAmount:    o.TotalAmount,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}, nil
}

func (uc *orderUseCase) ListOrders(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error) {
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, 0, apperror.Validation("invalid order status %q", filters.Status)
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = defaultPageSize
	}

	orders, count, err := uc.orders.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Persistence(err, "failed to list orders")
	}
	return orders, count, nil
}

func (uc *orderUseCase) Stats(ctx context.Context) (*model.OrderStats, error) {
	byStatus, err := uc.orders.StatusSummary(ctx)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to load order stats")
	}

	stats := &model.OrderStats{ByStatus: byStatus, TotalRevenue: decimal.Zero}
	for _, s := range byStatus {
		stats.TotalOrders += s.Count
		if s.Status != model.OrderStatusCancelled {
			stats.TotalRevenue = stats.TotalRevenue.Add(s.Revenue)
		}
	}

	now := uc.now()
	for _, w := range []struct {
		days int
		dst  *model.WindowSummary
	}{
		{7, &stats.Last7Days},
		{30, &stats.Last30Days},
	} {
		summary, err := uc.orders.WindowSummary(ctx, now.AddDate(0, 0, -w.days))
		if err != nil {
			return nil, apperror.Persistence(err, "failed to load order stats")
		}
		*w.dst = *summary
	}
	return stats, nil
}

// find maps malformed ids to NotFound; Postgres would reject them as uuids.
func (uc *orderUseCase) find(ctx context.Context, id string) (*model.Order, error) {
	if uuid.Validate(id) != nil {
		return nil, apperror.NotFound("order not found")
	}
	o, err := uc.orders.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to load order")
	}
	if o == nil {
		return nil, apperror.NotFound("order not found")
	}
	return o, nil
}

func (uc *orderUseCase) stockError(ctx context.Context, s *order.StockShortage) error {
	name := s.ProductID
	if p, err := uc.products.FindByID(ctx, s.ProductID); err == nil && p != nil {
		name = p.Name
	}
	return apperror.InsufficientStock(s.ProductID, name, s.Available, s.Requested)
}

func (uc *orderUseCase) invalidateListings(ctx context.Context) {
	if uc.listings != nil {
		uc.listings.InvalidateListings(ctx)
	}
}

// publish is best effort: the order is already committed.
func (uc *orderUseCase) publish(ctx context.Context, event order.Event) {
	if uc.events == nil {
		return
	}
	pctx, cancel := detached(ctx)
	defer cancel()
	if err := uc.events.PublishOrderEvent(pctx, event); err != nil {
		uc.logger.Warn("failed to publish order event",
			zap.String("type", event.Type),
			zap.String("order_id", event.OrderID),
			zap.Error(err),
		)
	}
}

// detached keeps request values but survives a client disconnect.
func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
}

func validateCustomer(c dto.CustomerInfo) (dto.CustomerInfo, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	if c.Name == "" || c.Email == "" || c.Phone == "" {
		return c, apperror.Validation("customer name, email and phone are required")
	}
	return c, nil
}

// consumerID is the user a discount is charged against. Only shoppers have a
// consumed set; guests and staff may reuse codes.
func consumerID(userID, role string) string {
	if role != model.RoleUser {
		return ""
	}
	return userID
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
