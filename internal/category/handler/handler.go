package handler

import (
	"net/http"

	"github.com/fekuna/storefront-service/internal/category"
	"github.com/fekuna/storefront-service/internal/category/dto"
	"github.com/fekuna/storefront-service/internal/response"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

type createCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	ParentID    *string `json:"parentId"`
	Description string  `json:"description"`
	ImageURL    string  `json:"imageUrl"`
	SortOrder   int     `json:"sortOrder"`
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	ParentID    *string `json:"parentId"`
	ClearParent bool    `json:"clearParent"`
	Description *string `json:"description"`
	ImageURL    *string `json:"imageUrl"`
	SortOrder   *int    `json:"sortOrder"`
	IsActive    *bool   `json:"isActive"`
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req createCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cat, err := h.uc.CreateCategory(c.Request.Context(), &dto.CreateCategoryInput{
		ParentID:    req.ParentID,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Created(c, "Category created", cat)
}

func (h *CategoryHandler) GetCategory(c *gin.Context) {
	cat, err := h.uc.GetCategory(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	if !cat.IsActive {
		response.Message(c, http.StatusNotFound, "category not found")
		return
	}
	response.OK(c, cat)
}

// ListCategories serves the storefront: only active categories.
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	active := true
	h.list(c, &active)
}

// ListAllCategories is the admin variant without the active filter.
func (h *CategoryHandler) ListAllCategories(c *gin.Context) {
	h.list(c, nil)
}

func (h *CategoryHandler) list(c *gin.Context, isActive *bool) {
	page, limit := response.PageParams(c)

	filters := &dto.CategoryFilters{
		IsActive: isActive,
		Search:   c.Query("search"),
		Page:     page,
		PageSize: limit,
	}
	if parent, ok := c.GetQuery("parent"); ok {
		filters.ParentID = &parent
	}

	categories, count, err := h.uc.ListCategories(c.Request.Context(), filters)
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Paginated(c, categories, response.NewPagination(page, limit, count))
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	var req updateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	cat, err := h.uc.UpdateCategory(c.Request.Context(), &dto.UpdateCategoryInput{
		ID:          c.Param("id"),
		ParentID:    req.ParentID,
		ClearParent: req.ClearParent,
		Name:        req.Name,
		Description: req.Description,
		ImageURL:    req.ImageURL,
		SortOrder:   req.SortOrder,
		IsActive:    req.IsActive,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, cat)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	if err := h.uc.DeleteCategory(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.Message(c, http.StatusOK, "Category deleted")
}
