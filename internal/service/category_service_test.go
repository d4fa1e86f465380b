package service

import (
	"context"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCategoryService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockCategoryRepo := new(MockCategoryRepository)
		mockProductRepo := new(MockProductRepository)
		service := NewCategoryService(mockCategoryRepo, mockProductRepo, zerolog.Nop())

		mockCategoryRepo.On("ExistsByName", ctx, "Home Office").Return(false, nil)
		mockCategoryRepo.On("Create", ctx, mock.AnythingOfType("*model.Category")).
			Run(func(args mock.Arguments) {
				args.Get(1).(*model.Category).ID = 2
			}).Return(nil)

		category, err := service.Create(ctx, &model.CategoryRequest{Name: "  Home Office  ", Active: true})

		require.NoError(t, err)
		require.NotNil(t, category)
		assert.Equal(t, int64(2), category.ID)
		assert.Equal(t, "Home Office", category.Name)
		assert.Equal(t, "home-office", category.Slug)
	})

	t.Run("duplicate name", func(t *testing.T) {
		mockCategoryRepo := new(MockCategoryRepository)
		mockProductRepo := new(MockProductRepository)
		service := NewCategoryService(mockCategoryRepo, mockProductRepo, zerolog.Nop())

		mockCategoryRepo.On("ExistsByName", ctx, "Home Office").Return(true, nil)

		category, err := service.Create(ctx, &model.CategoryRequest{Name: "Home Office"})

		require.Error(t, err)
		assert.Nil(t, category)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindDuplicate, domainErr.Kind)
		mockCategoryRepo.AssertNotCalled(t, "Create")
	})

	t.Run("missing parent", func(t *testing.T) {
		mockCategoryRepo := new(MockCategoryRepository)
		mockProductRepo := new(MockProductRepository)
		service := NewCategoryService(mockCategoryRepo, mockProductRepo, zerolog.Nop())

		parentID := int64(99)
		mockCategoryRepo.On("ExistsByName", ctx, "Desks").Return(false, nil)
		mockCategoryRepo.On("GetByID", ctx, parentID).Return(nil, nil)

		category, err := service.Create(ctx, &model.CategoryRequest{Name: "Desks", ParentID: &parentID})

		require.Error(t, err)
		assert.Nil(t, category)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindNotFound, domainErr.Kind)
	})

	t.Run("blank name", func(t *testing.T) {
		mockCategoryRepo := new(MockCategoryRepository)
		mockProductRepo := new(MockProductRepository)
		service := NewCategoryService(mockCategoryRepo, mockProductRepo, zerolog.Nop())

		category, err := service.Create(ctx, &model.CategoryRequest{Name: "   "})

		require.Error(t, err)
		assert.Nil(t, category)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindValidation, domainErr.Kind)
		assert.Contains(t, domainErr.Fields, "name")
	})
}

func TestCategoryService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("rename regenerates the slug", func(t *testing.T) {
		mockCategoryRepo := new(MockCategoryRepository)
		mockProductRepo := new(MockProductRepository)
		service := NewCategoryService(mockCategoryRepo, mockProductRepo, zerolog.Nop())

		category := &model.Category{ID: 2, Name: "Home Office", Slug: "home-office"}
		mockCategoryRepo.On("GetByID", ctx, int64(2)).Return(category, nil)
		mockCategoryRepo.On("ExistsByName", ctx, "Workspace").Return(false, nil)
		mockCategoryRepo.On("Update", ctx, mock.AnythingOfType("*model.Category")).Return(nil)

		updated, err := service.Update(ctx, 2, &model.CategoryRequest{Name: "Workspace", Active: true})

		require.NoError(t, err)
		assert.Equal(t, "Workspace", updated.Name)
		assert.Equal(t, "workspace", updated.Slug)
		assert.True(t, updated.Active)
	})

	t.Run("cannot be its own parent", func(t *testing.T) {
		mockCategoryRepo := new(MockCategoryRepository)
		mockProductRepo := new(MockProductRepository)
		service := NewCategoryService(mockCategoryRepo, mockProductRepo, zerolog.Nop())

		category := &model.Category{ID: 2, Name: "Home Office"}
		mockCategoryRepo.On("GetByID", ctx, int64(2)).Return(category, nil)

		selfID := int64(2)
		updated, err := service.Update(ctx, 2, &model.CategoryRequest{Name: "Home Office", ParentID: &selfID})

		require.Error(t, err)
		assert.Nil(t, updated)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindValidation, domainErr.Kind)
		assert.Contains(t, domainErr.Fields, "parentCategoryId")
	})

	t.Run("rename collides with an existing category", func(t *testing.T) {
		mockCategoryRepo := new(MockCategoryRepository)
		mockProductRepo := new(MockProductRepository)
		service := NewCategoryService(mockCategoryRepo, mockProductRepo, zerolog.Nop())

		category := &model.Category{ID: 2, Name: "Home Office"}
		mockCategoryRepo.On("GetByID", ctx, int64(2)).Return(category, nil)
		mockCategoryRepo.On("ExistsByName", ctx, "Furniture").Return(true, nil)

		updated, err := service.Update(ctx, 2, &model.CategoryRequest{Name: "Furniture"})

		require.Error(t, err)
		assert.Nil(t, updated)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindDuplicate, domainErr.Kind)
	})
}

func TestCategoryService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mockCategoryRepo := new(MockCategoryRepository)
		mockProductRepo := new(MockProductRepository)
		service := NewCategoryService(mockCategoryRepo, mockProductRepo, zerolog.Nop())

		category := &model.Category{ID: 2, Name: "Home Office"}
		mockCategoryRepo.On("GetByID", ctx, int64(2)).Return(category, nil)
		mockProductRepo.On("CountByCategory", ctx, int64(2)).Return(int64(0), nil)
		mockCategoryRepo.On("ListChildren", ctx, int64(2)).Return([]model.Category{}, nil)
		mockCategoryRepo.On("Delete", ctx, int64(2)).Return(nil)

		err := service.Delete(ctx, 2)

		require.NoError(t, err)
		mockCategoryRepo.AssertExpectations(t)
	})

	t.Run("blocked by products", func(t *testing.T) {
		mockCategoryRepo := new(MockCategoryRepository)
		mockProductRepo := new(MockProductRepository)
		service := NewCategoryService(mockCategoryRepo, mockProductRepo, zerolog.Nop())

		category := &model.Category{ID: 2, Name: "Home Office"}
		mockCategoryRepo.On("GetByID", ctx, int64(2)).Return(category, nil)
		mockProductRepo.On("CountByCategory", ctx, int64(2)).Return(int64(4), nil)

		err := service.Delete(ctx, 2)

		require.Error(t, err)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindIllegalState, domainErr.Kind)
		mockCategoryRepo.AssertNotCalled(t, "Delete")
	})

	t.Run("blocked by children", func(t *testing.T) {
		mockCategoryRepo := new(MockCategoryRepository)
		mockProductRepo := new(MockProductRepository)
		service := NewCategoryService(mockCategoryRepo, mockProductRepo, zerolog.Nop())

		category := &model.Category{ID: 2, Name: "Home Office"}
		children := []model.Category{{ID: 3, Name: "Desks"}}
		mockCategoryRepo.On("GetByID", ctx, int64(2)).Return(category, nil)
		mockProductRepo.On("CountByCategory", ctx, int64(2)).Return(int64(0), nil)
		mockCategoryRepo.On("ListChildren", ctx, int64(2)).Return(children, nil)

		err := service.Delete(ctx, 2)

		require.Error(t, err)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindIllegalState, domainErr.Kind)
		mockCategoryRepo.AssertNotCalled(t, "Delete")
	})
}

func TestCategoryService_ListChildren_UnknownParent(t *testing.T) {
	ctx := context.Background()

	mockCategoryRepo := new(MockCategoryRepository)
	mockProductRepo := new(MockProductRepository)
	service := NewCategoryService(mockCategoryRepo, mockProductRepo, zerolog.Nop())

	mockCategoryRepo.On("GetByID", ctx, int64(999)).Return(nil, nil)

	children, err := service.ListChildren(ctx, 999)

	require.Error(t, err)
	assert.Nil(t, children)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.KindNotFound, domainErr.Kind)
}
