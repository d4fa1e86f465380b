package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const reviewColumns = `
	id, product_id, user_id, rating, title, comment, verified, approved,
	helpful_count, created_at, updated_at
`

// reviewRepository implements ReviewRepository using PostgreSQL.
type reviewRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool *pgxpool.Pool, logger zerolog.Logger) ReviewRepository {
	return &reviewRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "review").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *reviewRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func (r *reviewRepository) Create(ctx context.Context, tx pgx.Tx, review *model.Review) error {
	query := `
		INSERT INTO reviews (product_id, user_id, rating, title, comment, verified, approved)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, helpful_count, created_at, updated_at
	`

	err := tx.QueryRow(ctx, query,
		review.ProductID, review.UserID, review.Rating, review.Title,
		review.Comment, review.Verified, review.Approved,
	).Scan(&review.ID, &review.HelpfulCount, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).
			Int64("product_id", review.ProductID).
			Int64("user_id", review.UserID).
			Msg("failed to create review")
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

func (r *reviewRepository) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	query := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	review, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("review_id", id).Msg("failed to query review")
		return nil, fmt.Errorf("failed to query review: %w", err)
	}

	return review, nil
}

// Exists reports whether the user has already reviewed the product.
func (r *reviewRepository) Exists(ctx context.Context, userID, productID int64) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM reviews WHERE user_id = $1 AND product_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, productID).Scan(&exists); err != nil {
		r.logger.Error().Err(err).Msg("failed to check review existence")
		return false, fmt.Errorf("failed to check review existence: %w", err)
	}
	return exists, nil
}

func (r *reviewRepository) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]model.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE product_id = $1 AND approved
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryReviews(ctx, query, productID, limit, offset)
}

func (r *reviewRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Review, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM reviews
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	return r.queryReviews(ctx, query, userID, limit, offset)
}

func (r *reviewRepository) Update(ctx context.Context, tx pgx.Tx, review *model.Review) error {
	query := `
		UPDATE reviews SET
			rating = $2, title = $3, comment = $4, approved = $5, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		review.ID, review.Rating, review.Title, review.Comment, review.Approved,
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("review_id", review.ID).Msg("failed to update review")
		return fmt.Errorf("failed to update review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update review: no row with id %d", review.ID)
	}

	return nil
}

func (r *reviewRepository) Delete(ctx context.Context, tx pgx.Tx, id int64) error {
	tag, err := tx.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("review_id", id).Msg("failed to delete review")
		return fmt.Errorf("failed to delete review: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete review: no row with id %d", id)
	}
	return nil
}

func (r *reviewRepository) IncrementHelpful(ctx context.Context, id int64) (*model.Review, error) {
	query := `
		UPDATE reviews SET helpful_count = helpful_count + 1, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + reviewColumns

	review, err := scanReview(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("review_id", id).Msg("failed to increment helpful count")
		return nil, fmt.Errorf("failed to increment helpful count: %w", err)
	}

	return review, nil
}

// RefreshProductRating recomputes the product's average rating and review
// count from its approved reviews in a single statement.
func (r *reviewRepository) RefreshProductRating(ctx context.Context, tx pgx.Tx, productID int64) error {
	query := `
		UPDATE products SET
			average_rating = COALESCE(
				(SELECT AVG(rating) FROM reviews WHERE product_id = $1 AND approved), 0
			),
			total_reviews = (SELECT COUNT(*) FROM reviews WHERE product_id = $1 AND approved),
			updated_at = NOW()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query, productID)
	if err != nil {
		r.logger.Error().Err(err).Int64("product_id", productID).Msg("failed to refresh product rating")
		return fmt.Errorf("failed to refresh product rating: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to refresh product rating: no product with id %d", productID)
	}

	return nil
}

func (r *reviewRepository) queryReviews(ctx context.Context, query string, args ...any) ([]model.Review, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query reviews")
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []model.Review
	for rows.Next() {
		var rv model.Review
		err := rows.Scan(
			&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Title,
			&rv.Comment, &rv.Verified, &rv.Approved, &rv.HelpfulCount,
			&rv.CreatedAt, &rv.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reviews: %w", err)
	}

	return reviews, nil
}

func scanReview(row pgx.Row) (*model.Review, error) {
	var rv model.Review
	err := row.Scan(
		&rv.ID, &rv.ProductID, &rv.UserID, &rv.Rating, &rv.Title,
		&rv.Comment, &rv.Verified, &rv.Approved, &rv.HelpfulCount,
		&rv.CreatedAt, &rv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rv, nil
}
