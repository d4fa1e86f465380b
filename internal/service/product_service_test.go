package service

import (
	"context"
	"strings"
	"testing"

	"storefront/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func productCreateRequest() *model.ProductCreateRequest {
	return &model.ProductCreateRequest{
		Name:          "Mechanical Keyboard",
		SKU:           "KB-001",
		Price:         89.99,
		StockQuantity: 10,
		CategoryID:    2,
		SellerID:      5,
	}
}

func TestProductService_Create_Success(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	service := NewProductService(mockProductRepo, mockCategoryRepo, zerolog.Nop())

	mockProductRepo.On("ExistsBySKU", ctx, "KB-001").Return(false, nil)
	mockCategoryRepo.On("GetByID", ctx, int64(2)).Return(&model.Category{ID: 2, Name: "Peripherals"}, nil)
	mockProductRepo.On("Create", ctx, mock.AnythingOfType("*model.Product")).
		Run(func(args mock.Arguments) {
			args.Get(1).(*model.Product).ID = 1
		}).Return(nil)

	product, err := service.Create(ctx, productCreateRequest())

	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, int64(1), product.ID)
	// The slug carries a timestamp suffix so renames of same-named
	// products never collide.
	assert.True(t, strings.HasPrefix(product.Slug, "mechanical-keyboard-"))
	assert.Equal(t, model.ProductActive, product.Status)
	assert.True(t, product.Active)

	mockProductRepo.AssertExpectations(t)
}

func TestProductService_Create_ZeroStockStartsOutOfStock(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	service := NewProductService(mockProductRepo, mockCategoryRepo, zerolog.Nop())

	mockProductRepo.On("ExistsBySKU", ctx, "KB-001").Return(false, nil)
	mockCategoryRepo.On("GetByID", ctx, int64(2)).Return(&model.Category{ID: 2}, nil)
	mockProductRepo.On("Create", ctx, mock.AnythingOfType("*model.Product")).Return(nil)

	req := productCreateRequest()
	req.StockQuantity = 0

	product, err := service.Create(ctx, req)

	require.NoError(t, err)
	assert.Equal(t, model.ProductOutOfStock, product.Status)
	assert.True(t, product.Active)
}

func TestProductService_Create_DuplicateSKU(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	service := NewProductService(mockProductRepo, mockCategoryRepo, zerolog.Nop())

	mockProductRepo.On("ExistsBySKU", ctx, "KB-001").Return(true, nil)

	product, err := service.Create(ctx, productCreateRequest())

	require.Error(t, err)
	assert.Nil(t, product)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.KindDuplicate, domainErr.Kind)

	mockProductRepo.AssertNotCalled(t, "Create")
}

func TestProductService_Create_UnknownCategory(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	service := NewProductService(mockProductRepo, mockCategoryRepo, zerolog.Nop())

	mockProductRepo.On("ExistsBySKU", ctx, "KB-001").Return(false, nil)
	mockCategoryRepo.On("GetByID", ctx, int64(2)).Return(nil, nil)

	product, err := service.Create(ctx, productCreateRequest())

	require.Error(t, err)
	assert.Nil(t, product)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.KindNotFound, domainErr.Kind)
}

func TestProductService_Create_ValidationErrors(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	service := NewProductService(mockProductRepo, mockCategoryRepo, zerolog.Nop())

	tests := []struct {
		name   string
		mutate func(req *model.ProductCreateRequest)
		field  string
	}{
		{
			name:   "blank name",
			mutate: func(req *model.ProductCreateRequest) { req.Name = "   " },
			field:  "name",
		},
		{
			name:   "missing sku",
			mutate: func(req *model.ProductCreateRequest) { req.SKU = "" },
			field:  "sku",
		},
		{
			name:   "non-positive price",
			mutate: func(req *model.ProductCreateRequest) { req.Price = 0 },
			field:  "price",
		},
		{
			name: "discount above list price",
			mutate: func(req *model.ProductCreateRequest) {
				discount := 120.0
				req.DiscountPrice = &discount
			},
			field: "discountPrice",
		},
		{
			name:   "negative stock",
			mutate: func(req *model.ProductCreateRequest) { req.StockQuantity = -1 },
			field:  "stockQuantity",
		},
		{
			name:   "missing seller",
			mutate: func(req *model.ProductCreateRequest) { req.SellerID = 0 },
			field:  "sellerId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := productCreateRequest()
			tt.mutate(req)

			product, err := service.Create(ctx, req)

			require.Error(t, err)
			assert.Nil(t, product)

			var domainErr *model.DomainError
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, model.KindValidation, domainErr.Kind)
			assert.Contains(t, domainErr.Fields, tt.field)
		})
	}
}

func TestProductService_GetByID_InactiveHidden(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	service := NewProductService(mockProductRepo, mockCategoryRepo, zerolog.Nop())

	archived := &model.Product{ID: 1, Name: "Old", Active: false}
	mockProductRepo.On("GetByID", ctx, int64(1)).Return(archived, nil)

	product, err := service.GetByID(ctx, 1)

	require.Error(t, err)
	assert.Nil(t, product)

	var domainErr *model.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, model.KindNotFound, domainErr.Kind)
}

func TestProductService_Search_BlankKeywordLists(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	service := NewProductService(mockProductRepo, mockCategoryRepo, zerolog.Nop())

	products := []model.Product{{ID: 1, Name: "Widget"}}
	mockProductRepo.On("List", ctx, 20, 0).Return(products, nil)

	found, err := service.Search(ctx, "   ", 20, 0)

	require.NoError(t, err)
	assert.Len(t, found, 1)
	mockProductRepo.AssertNotCalled(t, "Search")
}

func TestProductService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("rename regenerates the slug", func(t *testing.T) {
		mockProductRepo := new(MockProductRepository)
		mockCategoryRepo := new(MockCategoryRepository)
		service := NewProductService(mockProductRepo, mockCategoryRepo, zerolog.Nop())

		product := &model.Product{ID: 1, Name: "Mechanical Keyboard", Slug: "mechanical-keyboard", Price: 89.99, SellerID: 5, Active: true}
		mockProductRepo.On("GetByID", ctx, int64(1)).Return(product, nil)
		mockProductRepo.On("Update", ctx, mock.AnythingOfType("*model.Product")).Return(nil)

		name := "Wireless Keyboard"
		updated, err := service.Update(ctx, 5, model.RoleSeller, 1, &model.ProductUpdateRequest{Name: &name})

		require.NoError(t, err)
		assert.Equal(t, "Wireless Keyboard", updated.Name)
		assert.True(t, strings.HasPrefix(updated.Slug, "wireless-keyboard-"))
	})

	t.Run("foreign seller denied", func(t *testing.T) {
		mockProductRepo := new(MockProductRepository)
		mockCategoryRepo := new(MockCategoryRepository)
		service := NewProductService(mockProductRepo, mockCategoryRepo, zerolog.Nop())

		product := &model.Product{ID: 1, Name: "Mechanical Keyboard", Price: 89.99, SellerID: 99, Active: true}
		mockProductRepo.On("GetByID", ctx, int64(1)).Return(product, nil)

		updated, err := service.Update(ctx, 5, model.RoleSeller, 1, &model.ProductUpdateRequest{})

		require.Error(t, err)
		assert.Nil(t, updated)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindAccessDenied, domainErr.Kind)
		mockProductRepo.AssertNotCalled(t, "Update")
	})

	t.Run("admin bypasses ownership", func(t *testing.T) {
		mockProductRepo := new(MockProductRepository)
		mockCategoryRepo := new(MockCategoryRepository)
		service := NewProductService(mockProductRepo, mockCategoryRepo, zerolog.Nop())

		product := &model.Product{ID: 1, Name: "Mechanical Keyboard", Price: 89.99, SellerID: 99, Active: true}
		mockProductRepo.On("GetByID", ctx, int64(1)).Return(product, nil)
		mockProductRepo.On("Update", ctx, mock.AnythingOfType("*model.Product")).Return(nil)

		featured := true
		updated, err := service.Update(ctx, 1, model.RoleAdmin, 1, &model.ProductUpdateRequest{Featured: &featured})

		require.NoError(t, err)
		assert.True(t, updated.Featured)
	})

	t.Run("discount must stay below the list price", func(t *testing.T) {
		mockProductRepo := new(MockProductRepository)
		mockCategoryRepo := new(MockCategoryRepository)
		service := NewProductService(mockProductRepo, mockCategoryRepo, zerolog.Nop())

		product := &model.Product{ID: 1, Name: "Mechanical Keyboard", Price: 89.99, SellerID: 5, Active: true}
		mockProductRepo.On("GetByID", ctx, int64(1)).Return(product, nil)

		discount := 89.99
		updated, err := service.Update(ctx, 5, model.RoleSeller, 1, &model.ProductUpdateRequest{DiscountPrice: &discount})

		require.Error(t, err)
		assert.Nil(t, updated)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindValidation, domainErr.Kind)
		assert.Contains(t, domainErr.Fields, "discountPrice")
	})
}

func TestProductService_AdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("increments stock", func(t *testing.T) {
		mockProductRepo := new(MockProductRepository)
		mockCategoryRepo := new(MockCategoryRepository)
		service := NewProductService(mockProductRepo, mockCategoryRepo, zerolog.Nop())

		product := &model.Product{ID: 1, StockQuantity: 3, SellerID: 5, Active: true}
		adjusted := &model.Product{ID: 1, StockQuantity: 8, SellerID: 5, Active: true}
		mockProductRepo.On("GetByID", ctx, int64(1)).Return(product, nil)
		mockProductRepo.On("AdjustStock", ctx, int64(1), 5).Return(adjusted, nil)

		updated, err := service.AdjustStock(ctx, 5, model.RoleSeller, 1, 5)

		require.NoError(t, err)
		assert.Equal(t, 8, updated.StockQuantity)
	})

	t.Run("refuses going below zero", func(t *testing.T) {
		mockProductRepo := new(MockProductRepository)
		mockCategoryRepo := new(MockCategoryRepository)
		service := NewProductService(mockProductRepo, mockCategoryRepo, zerolog.Nop())

		product := &model.Product{ID: 1, StockQuantity: 3, SellerID: 5, Active: true}
		mockProductRepo.On("GetByID", ctx, int64(1)).Return(product, nil)
		// The conditional update refuses the write, signalled by a nil
		// product.
		mockProductRepo.On("AdjustStock", ctx, int64(1), -4).Return(nil, nil)

		updated, err := service.AdjustStock(ctx, 5, model.RoleSeller, 1, -4)

		require.Error(t, err)
		assert.Nil(t, updated)

		var domainErr *model.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, model.KindInsufficientStock, domainErr.Kind)
	})
}

func TestProductService_Archive(t *testing.T) {
	ctx := context.Background()

	mockProductRepo := new(MockProductRepository)
	mockCategoryRepo := new(MockCategoryRepository)
	service := NewProductService(mockProductRepo, mockCategoryRepo, zerolog.Nop())

	product := &model.Product{ID: 1, Name: "Widget", Status: model.ProductActive, SellerID: 5, Active: true}
	mockProductRepo.On("GetByID", ctx, int64(1)).Return(product, nil)
	mockProductRepo.On("Update", ctx, mock.AnythingOfType("*model.Product")).Return(nil)

	err := service.Archive(ctx, 5, model.RoleSeller, 1)

	require.NoError(t, err)
	assert.False(t, product.Active)
	assert.Equal(t, model.ProductArchived, product.Status)
}
