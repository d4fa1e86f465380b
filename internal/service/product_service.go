package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	productRepo  repository.ProductRepository
	categoryRepo repository.CategoryRepository
	logger       zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	productRepo repository.ProductRepository,
	categoryRepo repository.CategoryRepository,
	logger zerolog.Logger,
) ProductService {
	return &productService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		logger:       logger.With().Str("service", "product").Logger(),
	}
}

func (s *productService) Create(ctx context.Context, req *model.ProductCreateRequest) (*model.Product, error) {
	if err := s.validateCreateRequest(req); err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsBySKU(ctx, req.SKU)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	if exists {
		return nil, model.NewDuplicate(fmt.Sprintf("SKU %s is already in use", req.SKU))
	}

	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	if category == nil {
		return nil, model.NewNotFound(fmt.Sprintf("Category %d not found", req.CategoryID))
	}

	status := model.ProductActive
	if req.StockQuantity <= 0 {
		status = model.ProductOutOfStock
	}

	product := &model.Product{
		Name:             strings.TrimSpace(req.Name),
		SKU:              req.SKU,
		Slug:             uniqueSlug(req.Name),
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Price:            req.Price,
		DiscountPrice:    req.DiscountPrice,
		StockQuantity:    req.StockQuantity,
		Status:           status,
		Active:           true,
		Featured:         req.Featured,
		Images:           req.Images,
		Brand:            req.Brand,
		Weight:           req.Weight,
		Tags:             req.Tags,
		CategoryID:       req.CategoryID,
		SellerID:         req.SellerID,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info().
		Int64("product_id", product.ID).
		Str("sku", product.SKU).
		Int64("seller_id", product.SellerID).
		Msg("product created")

	return product, nil
}

func (s *productService) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || !product.Active {
		return nil, model.NewNotFound(fmt.Sprintf("Product %d not found", id))
	}
	return product, nil
}

func (s *productService) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	product, err := s.productRepo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || !product.Active {
		return nil, model.NewNotFound(fmt.Sprintf("Product %q not found", slug))
	}
	return product, nil
}

func (s *productService) List(ctx context.Context, limit, offset int) ([]model.Product, error) {
	products, err := s.productRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (s *productService) Search(ctx context.Context, keyword string, limit, offset int) ([]model.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.List(ctx, limit, offset)
	}

	products, err := s.productRepo.Search(ctx, keyword, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

func (s *productService) ListByCategory(ctx context.Context, categoryID int64, limit, offset int) ([]model.Product, error) {
	products, err := s.productRepo.ListByCategory(ctx, categoryID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}
	return products, nil
}

func (s *productService) ListBySeller(ctx context.Context, sellerID int64, limit, offset int) ([]model.Product, error) {
	products, err := s.productRepo.ListBySeller(ctx, sellerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by seller: %w", err)
	}
	return products, nil
}

func (s *productService) ListFeatured(ctx context.Context, limit int) ([]model.Product, error) {
	products, err := s.productRepo.ListFeatured(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list featured products: %w", err)
	}
	return products, nil
}

// Update applies a partial update. Sellers may only touch their own
// products.
func (s *productService) Update(ctx context.Context, actorID int64, actorRole model.UserRole, id int64, req *model.ProductUpdateRequest) (*model.Product, error) {
	product, err := s.ownedProduct(ctx, actorID, actorRole, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && strings.TrimSpace(*req.Name) != product.Name {
		product.Name = strings.TrimSpace(*req.Name)
		product.Slug = uniqueSlug(product.Name)
	}
	if req.Description != nil {
		product.Description = req.Description
	}
	if req.ShortDescription != nil {
		product.ShortDescription = req.ShortDescription
	}
	if req.Price != nil {
		if *req.Price <= 0 {
			return nil, model.NewValidation(map[string]string{"price": "Price must be positive"})
		}
		product.Price = *req.Price
	}
	if req.DiscountPrice != nil {
		if *req.DiscountPrice <= 0 || *req.DiscountPrice >= product.Price {
			return nil, model.NewValidation(map[string]string{"discountPrice": "Discount price must be positive and below the list price"})
		}
		product.DiscountPrice = req.DiscountPrice
	}
	if req.Brand != nil {
		product.Brand = req.Brand
	}
	if req.Weight != nil {
		product.Weight = req.Weight
	}
	if req.Featured != nil {
		product.Featured = *req.Featured
	}
	if req.Images != nil {
		product.Images = req.Images
	}
	if req.Tags != nil {
		product.Tags = req.Tags
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}

	s.logger.Info().Int64("product_id", id).Msg("product updated")

	return product, nil
}

// AdjustStock adds delta to the stock count. The floor sits in the
// conditional update, so a concurrent adjustment cannot slip stock
// below zero between the ownership check and the write.
func (s *productService) AdjustStock(ctx context.Context, actorID int64, actorRole model.UserRole, id int64, delta int) (*model.Product, error) {
	product, err := s.ownedProduct(ctx, actorID, actorRole, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.productRepo.AdjustStock(ctx, id, delta)
	if err != nil {
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}
	if updated == nil {
		return nil, model.NewInsufficientStock(fmt.Sprintf(
			"Cannot remove %d units from product %d with stock %d", -delta, id, product.StockQuantity))
	}

	s.logger.Info().
		Int64("product_id", id).
		Int("delta", delta).
		Int("stock_quantity", updated.StockQuantity).
		Msg("stock adjusted")

	return updated, nil
}

// Archive soft-deletes the product. Order snapshots keep their copy
// of the product data.
func (s *productService) Archive(ctx context.Context, actorID int64, actorRole model.UserRole, id int64) error {
	product, err := s.ownedProduct(ctx, actorID, actorRole, id)
	if err != nil {
		return err
	}

	product.Active = false
	product.Status = model.ProductArchived

	if err := s.productRepo.Update(ctx, product); err != nil {
		return fmt.Errorf("failed to archive product: %w", err)
	}

	s.logger.Info().Int64("product_id", id).Msg("product archived")

	return nil
}

func (s *productService) ownedProduct(ctx context.Context, actorID int64, actorRole model.UserRole, id int64) (*model.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorRole != model.RoleAdmin && product.SellerID != actorID {
		return nil, model.NewAccessDenied(fmt.Sprintf("Product %d belongs to another seller", id))
	}
	return product, nil
}

func (s *productService) validateCreateRequest(req *model.ProductCreateRequest) error {
	fields := map[string]string{}

	if strings.TrimSpace(req.Name) == "" {
		fields["name"] = "Name is required"
	}
	if strings.TrimSpace(req.SKU) == "" {
		fields["sku"] = "SKU is required"
	}
	if req.Price <= 0 {
		fields["price"] = "Price must be positive"
	}
	if req.DiscountPrice != nil && (*req.DiscountPrice <= 0 || *req.DiscountPrice >= req.Price) {
		fields["discountPrice"] = "Discount price must be positive and below the list price"
	}
	if req.StockQuantity < 0 {
		fields["stockQuantity"] = "Stock quantity cannot be negative"
	}
	if req.CategoryID == 0 {
		fields["categoryId"] = "Category is required"
	}
	if req.SellerID == 0 {
		fields["sellerId"] = "Seller is required"
	}

	if len(fields) > 0 {
		return model.NewValidation(fields)
	}
	return nil
}
