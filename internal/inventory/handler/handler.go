package handler

import (
	"strconv"
	"time"

	"github.com/fekuna/storefront-service/internal/auth"
	"github.com/fekuna/storefront-service/internal/inventory"
	"github.com/fekuna/storefront-service/internal/inventory/dto"
	"github.com/fekuna/storefront-service/internal/response"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

type adjustStockRequest struct {
	ProductID      string `json:"productId" binding:"required"`
	QuantityChange int    `json:"quantityChange" binding:"required"`
	Reason         string `json:"reason" binding:"required"`
}

type lowStockItem struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Stock    int    `json:"stock"`
	IsActive bool   `json:"isActive"`
}

func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	movement, err := h.uc.AdjustStock(c.Request.Context(), &dto.AdjustStockInput{
		ProductID:      req.ProductID,
		QuantityChange: req.QuantityChange,
		Reason:         req.Reason,
		UserID:         auth.GetUserID(c.Request.Context()),
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Created(c, "Stock adjusted", movement)
}

func (h *InventoryHandler) ListMovements(c *gin.Context) {
	page, limit := response.PageParams(c)

	filters := &dto.MovementFilters{
		ProductID:    c.Query("productId"),
		MovementType: c.Query("type"),
		ReferenceID:  c.Query("referenceId"),
		StartDate:    queryTime(c, "startDate"),
		EndDate:      queryTime(c, "endDate"),
		Page:         page,
		PageSize:     limit,
	}

	movements, count, err := h.uc.ListMovements(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Paginated(c, movements, response.NewPagination(page, limit, count))
}

func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	page, limit := response.PageParams(c)

	threshold, err := strconv.Atoi(c.Query("threshold"))
	if err != nil {
		threshold = -1
	}

	products, count, err := h.uc.ListLowStock(c.Request.Context(), &dto.LowStockFilters{
		Threshold: threshold,
		Page:      page,
		PageSize:  limit,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	items := make([]lowStockItem, len(products))
	for i, p := range products {
		items[i] = lowStockItem{ID: p.ID, Name: p.Name, Stock: p.Stock, IsActive: p.IsActive}
	}
	response.Paginated(c, items, response.NewPagination(page, limit, count))
}

// queryTime accepts RFC 3339 timestamps or plain dates.
func queryTime(c *gin.Context, key string) *time.Time {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
