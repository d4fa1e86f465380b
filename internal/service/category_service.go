package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// categoryService implements CategoryService.
type categoryService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	logger       zerolog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	logger zerolog.Logger,
) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		logger:       logger.With().Str("service", "category").Logger(),
	}
}

func (s *categoryService) Create(ctx context.Context, req *model.CategoryRequest) (*model.Category, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.NewValidation(map[string]string{"name": "Name is required"})
	}

	exists, err := s.categoryRepo.ExistsByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	if exists {
		return nil, model.NewDuplicate(fmt.Sprintf("Category %q already exists", name))
	}

	if req.ParentID != nil {
		parent, err := s.categoryRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to create category: %w", err)
		}
		if parent == nil {
			return nil, model.NewNotFound(fmt.Sprintf("Parent category %d not found", *req.ParentID))
		}
	}

	category := &model.Category{
		Name:         name,
		Description:  req.Description,
		Slug:         slugify(name),
		ImageURL:     req.ImageURL,
		ParentID:     req.ParentID,
		Active:       req.Active,
		DisplayOrder: req.DisplayOrder,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}

	s.logger.Info().
		Int64("category_id", category.ID).
		Str("slug", category.Slug).
		Msg("category created")

	return category, nil
}

func (s *categoryService) GetByID(ctx context.Context, id int64) (*model.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, model.NewNotFound(fmt.Sprintf("Category %d not found", id))
	}
	return category, nil
}

func (s *categoryService) GetBySlug(ctx context.Context, slug string) (*model.Category, error) {
	category, err := s.categoryRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, model.NewNotFound(fmt.Sprintf("Category %q not found", slug))
	}
	return category, nil
}

func (s *categoryService) List(ctx context.Context, limit, offset int) ([]model.Category, error) {
	categories, err := s.categoryRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) ListTopLevel(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categoryRepo.ListTopLevel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list top-level categories: %w", err)
	}
	return categories, nil
}

func (s *categoryService) ListChildren(ctx context.Context, parentID int64) ([]model.Category, error) {
	if _, err := s.GetByID(ctx, parentID); err != nil {
		return nil, err
	}

	children, err := s.categoryRepo.ListChildren(ctx, parentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list child categories: %w", err)
	}
	return children, nil
}

func (s *categoryService) Update(ctx context.Context, id int64, req *model.CategoryRequest) (*model.Category, error) {
	category, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, model.NewValidation(map[string]string{"name": "Name is required"})
	}

	if name != category.Name {
		exists, err := s.categoryRepo.ExistsByName(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("failed to update category: %w", err)
		}
		if exists {
			return nil, model.NewDuplicate(fmt.Sprintf("Category %q already exists", name))
		}
		category.Slug = slugify(name)
	}

	if req.ParentID != nil {
		if *req.ParentID == id {
			return nil, model.NewValidation(map[string]string{"parentCategoryId": "A category cannot be its own parent"})
		}
		parent, err := s.categoryRepo.GetByID(ctx, *req.ParentID)
		if err != nil {
			return nil, fmt.Errorf("failed to update category: %w", err)
		}
		if parent == nil {
			return nil, model.NewNotFound(fmt.Sprintf("Parent category %d not found", *req.ParentID))
		}
	}

	category.Name = name
	category.Description = req.Description
	category.ImageURL = req.ImageURL
	category.ParentID = req.ParentID
	category.Active = req.Active
	category.DisplayOrder = req.DisplayOrder

	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}

	s.logger.Info().Int64("category_id", id).Msg("category updated")

	return category, nil
}

// Delete removes the category. It refuses while products still
// reference it so catalogue links never dangle.
func (s *categoryService) Delete(ctx context.Context, id int64) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	count, err := s.productRepo.CountByCategory(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if count > 0 {
		return model.NewIllegalState(fmt.Sprintf("Category %d still has %d products", id, count))
	}

	children, err := s.categoryRepo.ListChildren(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	if len(children) > 0 {
		return model.NewIllegalState(fmt.Sprintf("Category %d still has %d child categories", id, len(children)))
	}

	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	s.logger.Info().Int64("category_id", id).Msg("category deleted")

	return nil
}
