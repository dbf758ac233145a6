package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/product"
	"github.com/fekuna/storefront-service/internal/product/dto"
	"github.com/fekuna/storefront-service/internal/response"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

type createProductRequest struct {
	CategoryID         string          `json:"categoryId"`
	Name               string          `json:"name" binding:"required"`
	Description        string          `json:"description"`
	Price              decimal.Decimal `json:"price"`
	Images             []string        `json:"images"`
	Stock              int             `json:"stock"`
	IsFeatured         bool            `json:"isFeatured"`
	IsBestSeller       bool            `json:"isBestSeller"`
	IsSpecialOffer     bool            `json:"isSpecialOffer"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage"`
}

type updateProductRequest struct {
	CategoryID         *string          `json:"categoryId"`
	Name               *string          `json:"name"`
	Description        *string          `json:"description"`
	Price              *decimal.Decimal `json:"price"`
	Images             []string         `json:"images"`
	IsActive           *bool            `json:"isActive"`
	IsFeatured         *bool            `json:"isFeatured"`
	IsBestSeller       *bool            `json:"isBestSeller"`
	IsSpecialOffer     *bool            `json:"isSpecialOffer"`
	DiscountPercentage *decimal.Decimal `json:"discountPercentage"`
}

// productResponse renders money as fixed two-decimal strings.
type productResponse struct {
	ID                 string    `json:"id"`
	CategoryID         *string   `json:"categoryId"`
	Name               string    `json:"name"`
	Description        string    `json:"description"`
	Price              string    `json:"price"`
	Images             []string  `json:"images"`
	Stock              int       `json:"stock"`
	IsActive           bool      `json:"isActive"`
	IsFeatured         bool      `json:"isFeatured"`
	IsBestSeller       bool      `json:"isBestSeller"`
	IsSpecialOffer     bool      `json:"isSpecialOffer"`
	DiscountPercentage string    `json:"discountPercentage"`
	DiscountedPrice    string    `json:"discountedPrice"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	p, err := h.uc.CreateProduct(c.Request.Context(), &dto.CreateProductInput{
		CategoryID:         req.CategoryID,
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		Images:             req.Images,
		Stock:              req.Stock,
		IsFeatured:         req.IsFeatured,
		IsBestSeller:       req.IsBestSeller,
		IsSpecialOffer:     req.IsSpecialOffer,
		DiscountPercentage: req.DiscountPercentage,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Created(c, "Product created", mapProduct(p))
}

// GetProduct serves the storefront; inactive products are hidden.
func (h *ProductHandler) GetProduct(c *gin.Context) {
	p, err := h.uc.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if !p.IsActive {
		response.Message(c, http.StatusNotFound, "product not found")
		return
	}
	response.OK(c, mapProduct(p))
}

func (h *ProductHandler) ListProducts(c *gin.Context) {
	active := true
	h.list(c, &active)
}

func (h *ProductHandler) ListAllProducts(c *gin.Context) {
	h.list(c, nil)
}

func (h *ProductHandler) list(c *gin.Context, isActive *bool) {
	page, limit := response.PageParams(c)

	filters := &dto.ProductFilters{
		CategoryID:     c.Query("category"),
		IsActive:       isActive,
		SearchQuery:    c.Query("search"),
		MinPrice:       queryDecimal(c, "minPrice"),
		MaxPrice:       queryDecimal(c, "maxPrice"),
		IsFeatured:     queryBool(c, "featured"),
		IsBestSeller:   queryBool(c, "bestSeller"),
		IsSpecialOffer: queryBool(c, "specialOffer"),
		SortBy:         c.Query("sortBy"),
		SortOrder:      c.Query("sortOrder"),
		Page:           page,
		PageSize:       limit,
	}

	products, count, err := h.uc.ListProducts(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	out := make([]productResponse, len(products))
	for i := range products {
		out[i] = mapProduct(&products[i])
	}
	response.Paginated(c, out, response.NewPagination(page, limit, count))
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	p, err := h.uc.UpdateProduct(c.Request.Context(), &dto.UpdateProductInput{
		ID:                 c.Param("id"),
		CategoryID:         req.CategoryID,
		Name:               req.Name,
		Description:        req.Description,
		Price:              req.Price,
		Images:             req.Images,
		IsActive:           req.IsActive,
		IsFeatured:         req.IsFeatured,
		IsBestSeller:       req.IsBestSeller,
		IsSpecialOffer:     req.IsSpecialOffer,
		DiscountPercentage: req.DiscountPercentage,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, mapProduct(p))
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	if err := h.uc.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Product deleted")
}

func mapProduct(m *model.Product) productResponse {
	images := []string(m.Images)
	if images == nil {
		images = []string{}
	}
	return productResponse{
		ID:                 m.ID,
		CategoryID:         m.CategoryID,
		Name:               m.Name,
		Description:        m.Description,
		Price:              m.Price.StringFixed(2),
		Images:             images,
		Stock:              m.Stock,
		IsActive:           m.IsActive,
		IsFeatured:         m.IsFeatured,
		IsBestSeller:       m.IsBestSeller,
		IsSpecialOffer:     m.IsSpecialOffer,
		DiscountPercentage: m.DiscountPercentage.StringFixed(2),
		DiscountedPrice:    m.DiscountedPrice.StringFixed(2),
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

func queryBool(c *gin.Context, key string) *bool {
	v, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return nil
	}
	return &v
}

func queryDecimal(c *gin.Context, key string) *decimal.Decimal {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return nil
	}
	return &v
}
