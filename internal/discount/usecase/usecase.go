package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fekuna/storefront-service/internal/apperror"
	"github.com/fekuna/storefront-service/internal/discount"
	"github.com/fekuna/storefront-service/internal/discount/dto"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var maxPercentage = decimal.NewFromInt(100)

type discountUseCase struct {
	repo   discount.Repository
	now    func() time.Time
	logger logger.ZapLogger
}

func NewDiscountUseCase(repo discount.Repository, now func() time.Time, log logger.ZapLogger) discount.UseCase {
	if now == nil {
		now = time.Now
	}
	return &discountUseCase{
		repo:   repo,
		now:    now,
		logger: log,
	}
}

// NormalizeCode is the canonical stored form of a code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (uc *discountUseCase) CreateDiscount(ctx context.Context, input *dto.CreateDiscountInput) (*model.DiscountCode, error) {
	code := NormalizeCode(input.Code)
	if code == "" {
		return nil, apperror.Validation("discount code is required")
	}
	if err := validatePercentage(input.Percentage); err != nil {
		return nil, err
	}

	now := uc.now()
	d := &model.DiscountCode{
		BaseModel:  model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Code:       code,
		Percentage: input.Percentage,
		ExpiresAt:  input.ExpiresAt,
		IsActive:   true,
	}

	if err := uc.repo.Create(ctx, d); err != nil {
		if errors.Is(err, discount.ErrDuplicateCode) {
			return nil, apperror.Conflict("discount code %s already exists", code)
		}
		return nil, apperror.Persistence(err, "failed to create discount code")
	}
	return d, nil
}

func (uc *discountUseCase) GetDiscount(ctx context.Context, id string) (*model.DiscountCode, error) {
	if uuid.Validate(id) != nil {
		return nil, apperror.NotFound("discount code not found")
	}
	d, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to load discount code")
	}
	if d == nil {
		return nil, apperror.NotFound("discount code not found")
	}
	return d, nil
}

func (uc *discountUseCase) ListDiscounts(ctx context.Context, filters *dto.DiscountFilters) ([]model.DiscountCode, int, error) {
	codes, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Persistence(err, "failed to list discount codes")
	}
	return codes, count, nil
}

func (uc *discountUseCase) UpdateDiscount(ctx context.Context, input *dto.UpdateDiscountInput) (*model.DiscountCode, error) {
	d, err := uc.GetDiscount(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Code != nil {
		code := NormalizeCode(*input.Code)
		if code == "" {
			return nil, apperror.Validation("discount code is required")
		}
		d.Code = code
	}
	if input.Percentage != nil {
		if err := validatePercentage(*input.Percentage); err != nil {
			return nil, err
		}
		d.Percentage = *input.Percentage
	}
	switch {
	case input.ClearExpiry:
		d.ExpiresAt = nil
	case input.ExpiresAt != nil:
		d.ExpiresAt = input.ExpiresAt
	}
	if input.IsActive != nil {
		d.IsActive = *input.IsActive
	}

	d.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, d); err != nil {
		if errors.Is(err, discount.ErrDuplicateCode) {
			return nil, apperror.Conflict("discount code %s already exists", d.Code)
		}
		return nil, apperror.Persistence(err, "failed to update discount code")
	}
	return d, nil
}

func (uc *discountUseCase) DeleteDiscount(ctx context.Context, id string) error {
	if _, err := uc.GetDiscount(ctx, id); err != nil {
		return err
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperror.Persistence(err, "failed to delete discount code")
	}
	return nil
}

func (uc *discountUseCase) Resolve(ctx context.Context, code, userID string) (*model.DiscountCode, error) {
	code = NormalizeCode(code)

	d, err := uc.repo.FindByCode(ctx, code)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to load discount code")
	}
	if d == nil {
		return nil, apperror.NotFound("discount code %s not found", code)
	}
	if !d.IsActive {
		return nil, apperror.InvalidState("discount code %s is not active", code)
	}
	if d.IsExpired(uc.now()) {
		return nil, apperror.InvalidState("discount code %s has expired", code)
	}

	if userID != "" {
		used, err := uc.repo.HasUsed(ctx, userID, d.ID)
		if err != nil {
			return nil, apperror.Persistence(err, "failed to check discount usage")
		}
		if used {
			return nil, apperror.AlreadyUsed("discount code %s has already been used", code)
		}
	}

	return d, nil
}

func validatePercentage(p decimal.Decimal) error {
	if !p.IsPositive() || p.GreaterThan(maxPercentage) {
		return apperror.Validation("percentage must be greater than 0 and at most 100")
	}
	return nil
}
