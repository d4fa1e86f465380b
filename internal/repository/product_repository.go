package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `
	id, name, sku, slug, description, short_description, price,
	discount_price, stock_quantity, status, active, featured, images,
	brand, weight, tags, category_id, seller_id, average_rating,
	total_reviews, total_sold, created_at, updated_at
`

// productRepository implements ProductRepository using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (
			name, sku, slug, description, short_description, price,
			discount_price, stock_quantity, status, active, featured,
			images, brand, weight, tags, category_id, seller_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		product.Name, product.SKU, product.Slug, product.Description,
		product.ShortDescription, product.Price, product.DiscountPrice,
		product.StockQuantity, product.Status, product.Active,
		product.Featured, product.Images, product.Brand, product.Weight,
		product.Tags, product.CategoryID, product.SellerID,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Str("sku", product.SKU).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Int64("product_id", product.ID).Msg("product created successfully")
	return nil
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product, err := r.scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Int64("product_id", id).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return product, nil
}

func (r *productRepository) GetBySlug(ctx context.Context, slug string) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE slug = $1`

	product, err := r.scanProduct(r.pool.QueryRow(ctx, query, slug))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Str("slug", slug).Msg("failed to query product by slug")
		return nil, fmt.Errorf("failed to query product by slug: %w", err)
	}

	return product, nil
}

func (r *productRepository) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM products WHERE sku = $1)`, sku,
	).Scan(&exists)
	if err != nil {
		r.logger.Error().Err(err).Str("sku", sku).Msg("failed to check SKU existence")
		return false, fmt.Errorf("failed to check SKU existence: %w", err)
	}
	return exists, nil
}

func (r *productRepository) List(ctx context.Context, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE active
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	return r.queryProducts(ctx, query, limit, offset)
}

func (r *productRepository) Search(ctx context.Context, keyword string, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE active AND (name ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%')
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	return r.queryProducts(ctx, query, keyword, limit, offset)
}

func (r *productRepository) ListByCategory(ctx context.Context, categoryID int64, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE active AND category_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	return r.queryProducts(ctx, query, categoryID, limit, offset)
}

func (r *productRepository) ListBySeller(ctx context.Context, sellerID int64, limit, offset int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE seller_id = $1
		ORDER BY id
		LIMIT $2 OFFSET $3
	`
	return r.queryProducts(ctx, query, sellerID, limit, offset)
}

func (r *productRepository) ListFeatured(ctx context.Context, limit int) ([]model.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE active
		ORDER BY total_sold DESC
		LIMIT $1
	`
	return r.queryProducts(ctx, query, limit)
}

func (r *productRepository) CountByCategory(ctx context.Context, categoryID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM products WHERE category_id = $1`, categoryID,
	).Scan(&count)
	if err != nil {
		r.logger.Error().Err(err).Int64("category_id", categoryID).Msg("failed to count products by category")
		return 0, fmt.Errorf("failed to count products by category: %w", err)
	}
	return count, nil
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	query := `
		UPDATE products SET
			name = $2, slug = $3, description = $4, short_description = $5,
			price = $6, discount_price = $7, status = $8, active = $9,
			featured = $10, images = $11, brand = $12, weight = $13,
			tags = $14, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		product.ID, product.Name, product.Slug, product.Description,
		product.ShortDescription, product.Price, product.DiscountPrice,
		product.Status, product.Active, product.Featured, product.Images,
		product.Brand, product.Weight, product.Tags,
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", product.ID).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update product: no row with id %d", product.ID)
	}

	return nil
}

func (r *productRepository) AdjustStock(ctx context.Context, id int64, delta int) (*model.Product, error) {
	// The floor lives in the WHERE clause so concurrent negative
	// adjustments cannot race stock below zero; a nil result means the
	// row is missing or the adjustment was blocked. The status flip
	// mirrors the stock level: an adjustment landing at zero marks the
	// product OUT_OF_STOCK, and a restock from OUT_OF_STOCK
	// reactivates it.
	query := `
		UPDATE products SET
			stock_quantity = stock_quantity + $2,
			status = CASE
				WHEN stock_quantity + $2 <= 0 THEN 'OUT_OF_STOCK'
				WHEN status = 'OUT_OF_STOCK' AND stock_quantity + $2 > 0 THEN 'ACTIVE'
				ELSE status
			END,
			updated_at = NOW()
		WHERE id = $1 AND stock_quantity + $2 >= 0
		RETURNING ` + productColumns

	product, err := r.scanProduct(r.pool.QueryRow(ctx, query, id, delta))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Warn().Int64("product_id", id).Int("delta", delta).Msg("stock adjustment blocked")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("product_id", id).Int("delta", delta).Msg("failed to adjust stock")
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}

	r.logger.Debug().
		Int64("product_id", id).
		Int("delta", delta).
		Int("stock", product.StockQuantity).
		Msg("stock adjusted")

	return product, nil
}

func (r *productRepository) ReserveStock(ctx context.Context, tx pgx.Tx, id int64, qty int) (bool, error) {
	// Conditional decrement: the WHERE clause guarantees stock is
	// never observable below zero, and the affected-rows check turns a
	// lost race into an insufficient-stock outcome instead of an
	// oversell.
	query := `
		UPDATE products SET
			stock_quantity = stock_quantity - $2,
			total_sold = total_sold + $2,
			status = CASE WHEN stock_quantity - $2 <= 0 THEN 'OUT_OF_STOCK' ELSE status END,
			updated_at = NOW()
		WHERE id = $1 AND stock_quantity >= $2
	`

	tag, err := tx.Exec(ctx, query, id, qty)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Int("qty", qty).Msg("failed to reserve stock")
		return false, fmt.Errorf("failed to reserve stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Warn().Int64("product_id", id).Int("qty", qty).Msg("insufficient stock")
		return false, nil
	}

	return true, nil
}

func (r *productRepository) ReleaseStock(ctx context.Context, tx pgx.Tx, id int64, qty int) error {
	query := `
		UPDATE products SET
			stock_quantity = stock_quantity + $2,
			total_sold = total_sold - $2,
			status = CASE
				WHEN status = 'OUT_OF_STOCK' AND stock_quantity + $2 > 0 THEN 'ACTIVE'
				ELSE status
			END,
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, id, qty)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", id).Int("qty", qty).Msg("failed to release stock")
		return fmt.Errorf("failed to release stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to release stock: no product with id %d", id)
	}

	return nil
}

func (r *productRepository) queryProducts(ctx context.Context, query string, args ...any) ([]model.Product, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		product, err := r.scanProduct(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan product row")
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *product)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating product rows")
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

func (r *productRepository) scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.SKU, &p.Slug, &p.Description,
		&p.ShortDescription, &p.Price, &p.DiscountPrice, &p.StockQuantity,
		&p.Status, &p.Active, &p.Featured, &p.Images, &p.Brand, &p.Weight,
		&p.Tags, &p.CategoryID, &p.SellerID, &p.AverageRating,
		&p.TotalReviews, &p.TotalSold, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
