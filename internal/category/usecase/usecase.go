package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/storefront-service/internal/apperror"
	"github.com/fekuna/storefront-service/internal/category"
	"github.com/fekuna/storefront-service/internal/category/dto"
	"github.com/fekuna/storefront-service/internal/model"
	"github.com/fekuna/storefront-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type categoryUseCase struct {
	repo   category.Repository
	logger logger.ZapLogger
}

func NewCategoryUseCase(repo category.Repository, log logger.ZapLogger) category.UseCase {
	return &categoryUseCase{
		repo:   repo,
		logger: log,
	}
}

func (uc *categoryUseCase) CreateCategory(ctx context.Context, input *dto.CreateCategoryInput) (*model.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.Validation("category name is required")
	}
	if err := uc.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}

	now := time.Now()
	cat := &model.Category{
		BaseModel: model.BaseModel{
			ID:        uuid.New().String(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:      name,
		Ancestors: model.StringList{},
		SortOrder: input.SortOrder,
		IsActive:  true,
	}
	if input.Description != "" {
		cat.Description = &input.Description
	}
	if input.ImageURL != "" {
		cat.ImageURL = &input.ImageURL
	}

	if input.ParentID != nil && *input.ParentID != "" {
		parent, err := uc.findParent(ctx, *input.ParentID)
		if err != nil {
			return nil, err
		}
		cat.ParentID = &parent.ID
		cat.Ancestors = chainFrom(parent)
	}

	if err := uc.repo.Create(ctx, cat); err != nil {
		return nil, apperror.Persistence(err, "failed to create category")
	}
	return cat, nil
}

func (uc *categoryUseCase) GetCategory(ctx context.Context, id string) (*model.Category, error) {
	if uuid.Validate(id) != nil {
		return nil, apperror.NotFound("category not found")
	}
	cat, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to load category")
	}
	if cat == nil {
		return nil, apperror.NotFound("category not found")
	}
	return cat, nil
}

func (uc *categoryUseCase) ListCategories(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error) {
	categories, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperror.Persistence(err, "failed to list categories")
	}
	return categories, count, nil
}

func (uc *categoryUseCase) UpdateCategory(ctx context.Context, input *dto.UpdateCategoryInput) (*model.Category, error) {
	cat, err := uc.GetCategory(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.Validation("category name is required")
		}
		if name != cat.Name {
			if err := uc.ensureNameFree(ctx, name, cat.ID); err != nil {
				return nil, err
			}
		}
		cat.Name = name
	}
	if input.Description != nil {
		cat.Description = input.Description
	}
	if input.ImageURL != nil {
		cat.ImageURL = input.ImageURL
	}
	if input.SortOrder != nil {
		cat.SortOrder = *input.SortOrder
	}
	if input.IsActive != nil {
		cat.IsActive = *input.IsActive
	}

	parentChanged := false
	switch {
	case input.ClearParent:
		if cat.ParentID != nil {
			cat.ParentID = nil
			cat.Ancestors = model.StringList{}
			parentChanged = true
		}
	case input.ParentID != nil && *input.ParentID != "":
		if cat.ParentID == nil || *cat.ParentID != *input.ParentID {
			if *input.ParentID == cat.ID {
				return nil, apperror.InvalidState("a category cannot be its own parent")
			}
			parent, err := uc.findParent(ctx, *input.ParentID)
			if err != nil {
				return nil, err
			}
			if parent.IsDescendantOf(cat.ID) {
				return nil, apperror.InvalidState("a category cannot be moved under its own descendant")
			}
			cat.ParentID = &parent.ID
			cat.Ancestors = chainFrom(parent)
			parentChanged = true
		}
	}

	cat.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, cat); err != nil {
		return nil, apperror.Persistence(err, "failed to update category")
	}

	if parentChanged {
		if err := uc.rebuildDescendants(ctx, cat); err != nil {
			return nil, err
		}
	}

	return cat, nil
}

func (uc *categoryUseCase) DeleteCategory(ctx context.Context, id string) error {
	if _, err := uc.GetCategory(ctx, id); err != nil {
		return err
	}
	// Children are re-rooted by the parent_id foreign key (ON DELETE SET NULL);
	// their chains must drop the deleted id as well.
	descendants, err := uc.repo.FindDescendants(ctx, id)
	if err != nil {
		return apperror.Persistence(err, "failed to load subcategories")
	}
	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperror.Persistence(err, "failed to delete category")
	}
	for _, d := range descendants {
		chain := trimChain(d.Ancestors, id)
		if err := uc.repo.UpdateAncestors(ctx, d.ID, chain); err != nil {
			uc.logger.Error("failed to rebuild ancestors after delete",
				zap.String("category_id", d.ID), zap.Error(err))
		}
	}
	return nil
}

func (uc *categoryUseCase) findParent(ctx context.Context, id string) (*model.Category, error) {
	if uuid.Validate(id) != nil {
		return nil, apperror.NotFound("parent category not found")
	}
	parent, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperror.Persistence(err, "failed to load parent category")
	}
	if parent == nil {
		return nil, apperror.NotFound("parent category not found")
	}
	return parent, nil
}

func (uc *categoryUseCase) ensureNameFree(ctx context.Context, name, excludeID string) error {
	existing, err := uc.repo.FindByName(ctx, name)
	if err != nil {
		return apperror.Persistence(err, "failed to check category name")
	}
	if existing != nil && existing.ID != excludeID {
		return apperror.Conflict("category %q already exists", name)
	}
	return nil
}

// rebuildDescendants rewrites every descendant chain below root so that it
// starts with root's new ancestors.
func (uc *categoryUseCase) rebuildDescendants(ctx context.Context, root *model.Category) error {
	descendants, err := uc.repo.FindDescendants(ctx, root.ID)
	if err != nil {
		return apperror.Persistence(err, "failed to load subcategories")
	}
	prefix := chainFrom(root)
	for _, d := range descendants {
		chain := append(model.StringList{}, prefix...)
		chain = append(chain, suffixAfter(d.Ancestors, root.ID)...)
		if err := uc.repo.UpdateAncestors(ctx, d.ID, chain); err != nil {
			return apperror.Persistence(err, "failed to update subcategory ancestors")
		}
	}
	return nil
}

// chainFrom returns parent.ancestors + parent.id.
func chainFrom(parent *model.Category) model.StringList {
	chain := make(model.StringList, 0, len(parent.Ancestors)+1)
	chain = append(chain, parent.Ancestors...)
	return append(chain, parent.ID)
}

func suffixAfter(chain model.StringList, id string) model.StringList {
	for i, v := range chain {
		if v == id {
			return chain[i+1:]
		}
	}
	return nil
}

func trimChain(chain model.StringList, id string) model.StringList {
	return append(model.StringList{}, suffixAfter(chain, id)...)
}
