package handler

import (
	"time"

	"github.com/fekuna/storefront-service/internal/auth"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/response"
	"github.com/fekuna/storefront-service/internal/user"
	"github.com/fekuna/storefront-service/internal/user/dto"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	uc     user.UseCase
	logger logger.ZapLogger
}

func NewUserHandler(uc user.UseCase, log logger.ZapLogger) *UserHandler {
	return &UserHandler{
		uc:     uc,
		logger: log,
	}
}

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name            *string `json:"name"`
	Phone           *string `json:"phone"`
	Address         *string `json:"address"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     *string `json:"newPassword"`
}

type authResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expiresAt"`
	User      *model.User `json:"user"`
}

func (h *UserHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	res, err := h.uc.Register(c.Request.Context(), &dto.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.Created(c, "Registration successful", authResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User})
}

func (h *UserHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	res, err := h.uc.Login(c.Request.Context(), &dto.LoginInput{Email: req.Email, Password: req.Password})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}

	response.OK(c, authResponse{Token: res.Token, ExpiresAt: res.ExpiresAt, User: res.User})
}

func (h *UserHandler) GetProfile(c *gin.Context) {
	u, err := h.uc.GetProfile(c.Request.Context(), auth.GetUserID(c.Request.Context()))
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, u)
}

func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	u, err := h.uc.UpdateProfile(c.Request.Context(), &dto.UpdateProfileInput{
		UserID:          auth.GetUserID(c.Request.Context()),
		Name:            req.Name,
		Phone:           req.Phone,
		Address:         req.Address,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		response.Error(c, h.logger, err)
		return
	}
	response.OK(c, u)
}
