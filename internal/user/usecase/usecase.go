package usecase

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/fekuna/storefront-service/internal/apperror"
	"github.com/fekuna/storefront-service/internal/auth"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/internal/user"
	"github.com/fekuna/storefront-service/internal/user/dto"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 8

type userUseCase struct {
	repo     user.Repository
	tokens   user.TokenIssuer
	hashCost int
	logger   logger.ZapLogger
}

func NewUserUseCase(repo user.Repository, tokens user.TokenIssuer, log logger.ZapLogger) user.UseCase {
	return &userUseCase{
		repo:     repo,
		tokens:   tokens,
		hashCost: bcrypt.DefaultCost,
		logger:   log,
	}
}

func (uc *userUseCase) CreateUser(ctx context.Context, input *dto.RegisterInput, role string) (*model.User, error) {
	if !auth.ValidRole(role) {
		return nil, apperror.Validation("unknown role %q", role)
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("name is required")
	}
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperror.Validation("a valid email is required")
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperror.Validation("password must be at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), uc.hashCost)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to hash password")
	}

	now := time.Now()
	u := &model.User{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Phone:        optional(input.Phone),
		Address:      optional(input.Address),
		Role:         role,
		IsActive:     true,
	}

	if err := uc.repo.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return nil, apperror.Conflict("email %s is already registered", email)
		}
		return nil, apperror.Persistence(err, "failed to create user")
	}

	uc.logger.Info("user created", zap.String("user_id", u.ID), zap.String("role", role))
	return u, nil
}

func (uc *userUseCase) Register(ctx context.Context, input *dto.RegisterInput) (*dto.AuthResult, error) {
	u, err := uc.CreateUser(ctx, input, model.RoleUser)
	if err != nil {
		return nil, err
	}
	return uc.issue(u)
}

func (uc *userUseCase) Login(ctx context.Context, input *dto.LoginInput) (*dto.AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" {
		return nil, apperror.Validation("email and password are required")
	}

	u, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to load user")
	}
	if u == nil || !u.IsActive {
		return nil, apperror.Unauthorized("invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperror.Unauthorized("invalid email or password")
	}

	return uc.issue(u)
}

func (uc *userUseCase) GetProfile(ctx context.Context, userID string) (*model.User, error) {
	u, err := uc.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to load user")
	}
	if u == nil {
		return nil, apperror.NotFound("user not found")
	}
	return u, nil
}

func (uc *userUseCase) UpdateProfile(ctx context.Context, input *dto.UpdateProfileInput) (*model.User, error) {
	u, err := uc.GetProfile(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.Validation("name is required")
		}
		u.Name = name
	}
	if input.Phone != nil {
		u.Phone = optional(*input.Phone)
	}
	if input.Address != nil {
		u.Address = optional(*input.Address)
	}
	if input.NewPassword != nil {
		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.CurrentPassword)); err != nil {
			return nil, apperror.Unauthorized("current password is incorrect")
		}
		if len(*input.NewPassword) < minPasswordLength {
			return nil, apperror.Validation("password must be at least %d characters", minPasswordLength)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.NewPassword), uc.hashCost)
		if err != nil {
			return nil, apperror.Persistence(err, "failed to hash password")
		}
		u.PasswordHash = string(hash)
	}

	u.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, u); err != nil {
		return nil, apperror.Persistence(err, "failed to update user")
	}
	return u, nil
}

func (uc *userUseCase) issue(u *model.User) (*dto.AuthResult, error) {
	token, expiresAt, err := uc.tokens.Issue(u)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to issue token")
	}
	return &dto.AuthResult{User: u, Token: token, ExpiresAt: expiresAt}, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
