package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/storefront-service/internal/apperror"
	"github.com/fekuna/storefront-service/internal/discount"
	"github.com/fekuna/storefront-service/internal/discount/dto"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	codes map[string]model.DiscountCode
	used  map[[2]string]bool
}

func newMemRepo() *memRepo {
	return &memRepo{codes: map[string]model.DiscountCode{}, used: map[[2]string]bool{}}
}

func (r *memRepo) Create(_ context.Context, d *model.DiscountCode) error {
	for _, existing := range r.codes {
		if existing.Code == d.Code {
			return discount.ErrDuplicateCode
		}
	}
	r.codes[d.ID] = *d
	return nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*model.DiscountCode, error) {
	d, ok := r.codes[id]
	if !ok {
		return nil, nil
	}
	return &d, nil
}

func (r *memRepo) FindByCode(_ context.Context, code string) (*model.DiscountCode, error) {
	for _, d := range r.codes {
		if d.Code == code {
			d := d
			return &d, nil
		}
	}
	return nil, nil
}

func (r *memRepo) FindAll(_ context.Context, _ *dto.DiscountFilters) ([]model.DiscountCode, int, error) {
	out := []model.DiscountCode{}
	for _, d := range r.codes {
		out = append(out, d)
	}
	return out, len(out), nil
}

func (r *memRepo) Update(_ context.Context, d *model.DiscountCode) error {
	r.codes[d.ID] = *d
	return nil
}

func (r *memRepo) Delete(_ context.Context, id string) error {
	delete(r.codes, id)
	return nil
}

func (r *memRepo) HasUsed(_ context.Context, userID, discountID string) (bool, error) {
	return r.used[[2]string{userID, discountID}], nil
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newUseCase() (discount.UseCase, *memRepo) {
	repo := newMemRepo()
	return NewDiscountUseCase(repo, func() time.Time { return fixedNow }, logger.NewNop()), repo
}

func TestCreateDiscount_NormalizesCode(t *testing.T) {
	uc, _ := newUseCase()

	d, err := uc.CreateDiscount(context.Background(), &dto.CreateDiscountInput{Code: " save20 ", Percentage: decimal.NewFromInt(20)})
	require.NoError(t, err)
	assert.Equal(t, "SAVE20", d.Code)
	assert.True(t, d.IsActive)

	_, err = uc.CreateDiscount(context.Background(), &dto.CreateDiscountInput{Code: "Save20", Percentage: decimal.NewFromInt(10)})
	assert.True(t, apperror.Is(err, apperror.KindConflict))
}

func TestCreateDiscount_PercentageBounds(t *testing.T) {
	uc, _ := newUseCase()

	for _, pct := range []int64{0, -5, 101} {
		_, err := uc.CreateDiscount(context.Background(), &dto.CreateDiscountInput{Code: "X", Percentage: decimal.NewFromInt(pct)})
		assert.True(t, apperror.Is(err, apperror.KindValidation), "percentage %d", pct)
	}

	_, err := uc.CreateDiscount(context.Background(), &dto.CreateDiscountInput{Code: "FULL", Percentage: decimal.NewFromInt(100)})
	assert.NoError(t, err)
}

func TestResolve(t *testing.T) {
	uc, repo := newUseCase()
	ctx := context.Background()

	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(time.Hour)

	save, err := uc.CreateDiscount(ctx, &dto.CreateDiscountInput{Code: "SAVE20", Percentage: decimal.NewFromInt(20), ExpiresAt: &future})
	require.NoError(t, err)
	_, err = uc.CreateDiscount(ctx, &dto.CreateDiscountInput{Code: "OLD", Percentage: decimal.NewFromInt(20), ExpiresAt: &past})
	require.NoError(t, err)
	off, err := uc.CreateDiscount(ctx, &dto.CreateDiscountInput{Code: "OFF", Percentage: decimal.NewFromInt(20)})
	require.NoError(t, err)
	inactive := false
	_, err = uc.UpdateDiscount(ctx, &dto.UpdateDiscountInput{ID: off.ID, IsActive: &inactive})
	require.NoError(t, err)

	repo.used[[2]string{"u-1", save.ID}] = true

	tests := []struct {
		name   string
		code   string
		userID string
		kind   apperror.Kind
	}{
		{"unknown", "NOPE", "", apperror.KindNotFound},
		{"expired", "OLD", "", apperror.KindInvalidState},
		{"inactive", "off", "", apperror.KindInvalidState},
		{"used by caller", "save20", "u-1", apperror.KindAlreadyUsed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Resolve(ctx, tt.code, tt.userID)
			assert.True(t, apperror.Is(err, tt.kind), "got %v", err)
		})
	}

	d, err := uc.Resolve(ctx, "save20", "u-2")
	require.NoError(t, err)
	assert.Equal(t, "20.00", d.AmountFor(decimal.NewFromInt(100)).StringFixed(2))

	_, err = uc.Resolve(ctx, "save20", "")
	assert.NoError(t, err)
}

func TestUpdateDiscount_ClearsExpiry(t *testing.T) {
	uc, _ := newUseCase()
	past := fixedNow.Add(-time.Hour)

	d, err := uc.CreateDiscount(context.Background(), &dto.CreateDiscountInput{Code: "OLD", Percentage: decimal.NewFromInt(5), ExpiresAt: &past})
	require.NoError(t, err)

	d, err = uc.UpdateDiscount(context.Background(), &dto.UpdateDiscountInput{ID: d.ID, ClearExpiry: true})
	require.NoError(t, err)
	assert.Nil(t, d.ExpiresAt)

	_, err = uc.Resolve(context.Background(), "OLD", "")
	assert.NoError(t, err)
}

func TestResolve_UsageSurvivesRename(t *testing.T) {
	uc, repo := newUseCase()
	ctx := context.Background()

	d, err := uc.CreateDiscount(ctx, &dto.CreateDiscountInput{Code: "SAVE20", Percentage: decimal.NewFromInt(20)})
	require.NoError(t, err)
	repo.used[[2]string{"u-1", d.ID}] = true

	renamed := "spring20"
	_, err = uc.UpdateDiscount(ctx, &dto.UpdateDiscountInput{ID: d.ID, Code: &renamed})
	require.NoError(t, err)

	_, err = uc.Resolve(ctx, "SPRING20", "u-1")
	assert.True(t, apperror.Is(err, apperror.KindAlreadyUsed), "got %v", err)

	_, err = uc.Resolve(ctx, "SPRING20", "u-2")
	assert.NoError(t, err)
}
