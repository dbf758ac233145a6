package handler

import (
	"net/http"
	"time"

	"github.com/fekuna/storefront-service/internal/auth"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/order"
	"github.com/fekuna/storefront-service/internal/order/dto"
	"github.com/fekuna/storefront-service/internal/response"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OrderHandler struct {
	uc     order.UseCase
	logger logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:     uc,
		logger: log,
	}
}

type customerInfoRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type orderLineRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type placeOrderRequest struct {
	CustomerInfo customerInfoRequest `json:"customerInfo"`
	Items        []orderLineRequest  `json:"items"`
	Notes        string              `json:"notes"`
	DiscountCode string              `json:"discountCode"`
	DeliveryFee  decimal.Decimal     `json:"deliveryFee"`
}

type checkDiscountRequest struct {
	Code     string          `json:"code" binding:"required"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type updateOrderRequest struct {
	CustomerName    *string `json:"customerName"`
	CustomerEmail   *string `json:"customerEmail"`
	CustomerPhone   *string `json:"customerPhone"`
	CustomerAddress *string `json:"customerAddress"`
	Notes           *string `json:"notes"`
	Status          *string `json:"status"`
}

type placeOrderResponse struct {
	OrderNumber string `json:"orderNumber"`
	OrderID     string `json:"orderId"`
	TotalAmount string `json:"totalAmount"`
	Status      string `json:"status"`
}

type checkDiscountResponse struct {
	Code           string `json:"code"`
	Percentage     string `json:"percentage"`
	DiscountAmount string `json:"discountAmount"`
	FinalAmount    string `json:"finalAmount"`
}

type productSummary struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Images   []string `json:"images"`
	IsActive bool     `json:"isActive"`
}

type orderItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	UnitPrice   string          `json:"unitPrice"`
	LineTotal   string          `json:"lineTotal"`
	Product     *productSummary `json:"product,omitempty"`
}

type orderResponse struct {
	ID              string              `json:"id"`
	OrderNumber     string              `json:"orderNumber"`
	CustomerName    string              `json:"customerName"`
	CustomerEmail   string              `json:"customerEmail"`
	CustomerPhone   string              `json:"customerPhone"`
	CustomerAddress *string             `json:"customerAddress"`
	Items           []orderItemResponse `json:"items"`
	Subtotal        string              `json:"subtotal"`
	DiscountCode    *string             `json:"discountCode"`
	DiscountAmount  string              `json:"discountAmount"`
	DeliveryFee     string              `json:"deliveryFee"`
	TotalAmount     string              `json:"totalAmount"`
	Notes           string              `json:"notes"`
	Status          string              `json:"status"`
	UserID          *string             `json:"userId"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

type trackedOrderResponse struct {
	OrderNumber    string              `json:"orderNumber"`
	CustomerName   string              `json:"customerName"`
	Status         string              `json:"status"`
	Items          []orderItemResponse `json:"items"`
	Subtotal       string              `json:"subtotal"`
	DiscountAmount string              `json:"discountAmount"`
	DeliveryFee    string              `json:"deliveryFee"`
	TotalAmount    string              `json:"totalAmount"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

type windowResponse struct {
	Since   time.Time `json:"since"`
	Orders  int       `json:"orders"`
	Revenue string    `json:"revenue"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Count   int    `json:"count"`
	Revenue string `json:"revenue"`
}

type statsResponse struct {
	TotalOrders  int              `json:"totalOrders"`
	TotalRevenue string           `json:"totalRevenue"`
	ByStatus     []statusResponse `json:"byStatus"`
	Last7Days    windowResponse   `json:"last7Days"`
	Last30Days   windowResponse   `json:"last30Days"`
}

func toItemResponses(items []model.OrderItem) []orderItemResponse {
	out := make([]orderItemResponse, len(items))
	for i, item := range items {
		out[i] = orderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice.StringFixed(2),
			LineTotal:   item.LineTotal().StringFixed(2),
		}
		if p := item.Product; p != nil {
			out[i].Product = &productSummary{ID: p.ID, Name: p.Name, Images: p.Images, IsActive: p.IsActive}
		}
	}
	return out
}

func toOrderResponse(o *model.Order) orderResponse {
	return orderResponse{
		ID:              o.ID,
		OrderNumber:     o.OrderNumber,
		CustomerName:    o.CustomerName,
		CustomerEmail:   o.CustomerEmail,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		Items:           toItemResponses(o.Items),
		Subtotal:        o.Subtotal.StringFixed(2),
		DiscountCode:    o.DiscountCode,
		DiscountAmount:  o.DiscountAmount.StringFixed(2),
		DeliveryFee:     o.DeliveryFee.StringFixed(2),
		TotalAmount:     o.TotalAmount.StringFixed(2),
		Notes:           o.Notes,
		Status:          string(o.Status),
		UserID:          o.UserID,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

func toOrderResponses(orders []model.Order) []orderResponse {
	out := make([]orderResponse, len(orders))
	for i := range orders {
		out[i] = toOrderResponse(&orders[i])
	}
	return out
}

func toWindowResponse(w model.WindowSummary) windowResponse {
	return windowResponse{Since: w.Since, Orders: w.Orders, Revenue: w.Revenue.StringFixed(2)}
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &dto.PlaceOrderInput{
		Customer: dto.CustomerInfo{
			Name:    req.CustomerInfo.Name,
			Email:   req.CustomerInfo.Email,
			Phone:   req.CustomerInfo.Phone,
			Address: req.CustomerInfo.Address,
		},
		Notes:        req.Notes,
		DiscountCode: req.DiscountCode,
		DeliveryFee:  req.DeliveryFee,
	}
	for _, line := range req.Items {
		input.Items = append(input.Items, dto.OrderLineInput{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	if u := auth.FromContext(c.Request.Context()); u != nil {
		input.UserID = u.UserID
		input.UserRole = u.Role
	}

	res, err := h.uc.PlaceOrder(c.Request.Context(), input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Created(c, "Order placed successfully", placeOrderResponse{
		OrderNumber: res.OrderNumber,
		OrderID:     res.OrderID,
		TotalAmount: res.TotalAmount.StringFixed(2),
		Status:      string(res.Status),
	})
}

func (h *OrderHandler) CheckDiscount(c *gin.Context) {
	var req checkDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &dto.CheckDiscountInput{Code: req.Code, Subtotal: req.Subtotal}
	if u := auth.FromContext(c.Request.Context()); u != nil {
		input.UserID = u.UserID
		input.UserRole = u.Role
	}

	res, err := h.uc.CheckDiscount(c.Request.Context(), input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, checkDiscountResponse{
		Code:           res.Code,
		Percentage:     res.Percentage.String(),
		DiscountAmount: res.DiscountAmount.StringFixed(2),
		FinalAmount:    res.FinalAmount.StringFixed(2),
	})
}

func (h *OrderHandler) TrackOrder(c *gin.Context) {
	o, err := h.uc.TrackOrder(c.Request.Context(), c.Param("orderNumber"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, trackedOrderResponse{
		OrderNumber:    o.OrderNumber,
		CustomerName:   o.CustomerName,
		Status:         string(o.Status),
		Items:          toItemResponses(o.Items),
		Subtotal:       o.Subtotal.StringFixed(2),
		DiscountAmount: o.DiscountAmount.StringFixed(2),
		DeliveryFee:    o.DeliveryFee.StringFixed(2),
		TotalAmount:    o.TotalAmount.StringFixed(2),
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	})
}

func (h *OrderHandler) MyOrders(c *gin.Context) {
	page, limit := response.PageParams(c)

	orders, count, err := h.uc.ListOrders(c.Request.Context(), &dto.OrderFilters{
		UserID:   auth.GetUserID(c.Request.Context()),
		Status:   model.OrderStatus(c.Query("status")),
		Page:     page,
		PageSize: limit,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Paginated(c, toOrderResponses(orders), response.NewPagination(page, limit, count))
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	page, limit := response.PageParams(c)

	filters := &dto.OrderFilters{
		Status:    model.OrderStatus(c.Query("status")),
		Search:    c.Query("search"),
		StartDate: queryTime(c, "startDate", false),
		EndDate:   queryTime(c, "endDate", true),
		Page:      page,
		PageSize:  limit,
	}

	orders, count, err := h.uc.ListOrders(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Paginated(c, toOrderResponses(orders), response.NewPagination(page, limit, count))
}

func (h *OrderHandler) Stats(c *gin.Context) {
	stats, err := h.uc.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	res := statsResponse{
		TotalOrders:  stats.TotalOrders,
		TotalRevenue: stats.TotalRevenue.StringFixed(2),
		ByStatus:     make([]statusResponse, len(stats.ByStatus)),
		Last7Days:    toWindowResponse(stats.Last7Days),
		Last30Days:   toWindowResponse(stats.Last30Days),
	}
	for i, s := range stats.ByStatus {
		res.ByStatus[i] = statusResponse{Status: string(s.Status), Count: s.Count, Revenue: s.Revenue.StringFixed(2)}
	}
	response.OK(c, res)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	o, err := h.uc.GetOrder(c.Request.Context(), c.Param("id"), auth.FromContext(c.Request.Context()))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, toOrderResponse(o))
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	o, err := h.uc.UpdateStatus(c.Request.Context(), &dto.UpdateStatusInput{
		ID:      c.Param("id"),
		Status:  model.OrderStatus(req.Status),
		ActorID: auth.GetUserID(c.Request.Context()),
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, toOrderResponse(o))
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req updateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &dto.UpdateOrderInput{
		ID:              c.Param("id"),
		CustomerName:    req.CustomerName,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		CustomerAddress: req.CustomerAddress,
		Notes:           req.Notes,
		ActorID:         auth.GetUserID(c.Request.Context()),
	}
	if req.Status != nil {
		status := model.OrderStatus(*req.Status)
		input.Status = &status
	}

	o, err := h.uc.UpdateOrder(c.Request.Context(), input)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, toOrderResponse(o))
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	if err := h.uc.DeleteOrder(c.Request.Context(), c.Param("id"), auth.GetUserID(c.Request.Context())); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Order deleted successfully")
}

// queryTime accepts RFC 3339 timestamps or plain dates. A plain end date
// covers the whole day.
func queryTime(c *gin.Context, key string, endOfDay bool) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t
}
