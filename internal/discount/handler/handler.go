package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fekuna/storefront-service/internal/discount"
	"github.com/fekuna/storefront-service/internal/discount/dto"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/response"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type DiscountHandler struct {
	uc     discount.UseCase
	logger logger.ZapLogger
}

func NewDiscountHandler(uc discount.UseCase, log logger.ZapLogger) *DiscountHandler {
	return &DiscountHandler{
		uc:     uc,
		logger: log,
	}
}

type createDiscountRequest struct {
	Code       string          `json:"code" binding:"required"`
	Percentage decimal.Decimal `json:"percentage"`
	ExpiresAt  *time.Time      `json:"expiresAt"`
}

type updateDiscountRequest struct {
	Code        *string          `json:"code"`
	Percentage  *decimal.Decimal `json:"percentage"`
	ExpiresAt   *time.Time       `json:"expiresAt"`
	ClearExpiry bool             `json:"clearExpiry"`
	IsActive    *bool            `json:"isActive"`
}

type discountResponse struct {
	ID         string     `json:"id"`
	Code       string     `json:"code"`
	Percentage string     `json:"percentage"`
	ExpiresAt  *time.Time `json:"expiresAt"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (h *DiscountHandler) CreateDiscount(c *gin.Context) {
	var req createDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	d, err := h.uc.CreateDiscount(c.Request.Context(), &dto.CreateDiscountInput{
		Code:       req.Code,
		Percentage: req.Percentage,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Created(c, "Discount code created", mapDiscount(d))
}

func (h *DiscountHandler) GetDiscount(c *gin.Context) {
	d, err := h.uc.GetDiscount(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, mapDiscount(d))
}

func (h *DiscountHandler) ListDiscounts(c *gin.Context) {
	page, limit := response.PageParams(c)

	filters := &dto.DiscountFilters{
		Search:   c.Query("search"),
		Page:     page,
		PageSize: limit,
	}
	if active, err := strconv.ParseBool(c.Query("active")); err == nil {
		filters.IsActive = &active
	}

	codes, count, err := h.uc.ListDiscounts(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	out := make([]discountResponse, len(codes))
	for i := range codes {
		out[i] = mapDiscount(&codes[i])
	}
	response.Paginated(c, out, response.NewPagination(page, limit, count))
}

func (h *DiscountHandler) UpdateDiscount(c *gin.Context) {
	var req updateDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	d, err := h.uc.UpdateDiscount(c.Request.Context(), &dto.UpdateDiscountInput{
		ID:          c.Param("id"),
		Code:        req.Code,
		Percentage:  req.Percentage,
		ExpiresAt:   req.ExpiresAt,
		ClearExpiry: req.ClearExpiry,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, mapDiscount(d))
}

func (h *DiscountHandler) DeleteDiscount(c *gin.Context) {
	if err := h.uc.DeleteDiscount(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Discount code deleted")
}

func mapDiscount(d *model.DiscountCode) discountResponse {
	return discountResponse{
		ID:         d.ID,
		Code:       d.Code,
		Percentage: d.Percentage.StringFixed(2),
		ExpiresAt:  d.ExpiresAt,
		IsActive:   d.IsActive,
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}
