package service

import (
	"context"
	"fmt"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// reviewService implements ReviewService.
type reviewService struct {
	reviewRepo  repository.ReviewRepository
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	logger      zerolog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	reviewRepo repository.ReviewRepository,
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	logger zerolog.Logger,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
		orderRepo:   orderRepo,
		logger:      logger.With().Str("service", "review").Logger(),
	}
}

// Create adds a review, at most one per user and product. The review
// awaits approval before it becomes visible or affects the rating.
func (s *reviewService) Create(ctx context.Context, userID int64, req *model.ReviewRequest) (*model.Review, error) {
	if err := validateReviewRequest(req); err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	if product == nil || !product.Active {
		return nil, model.NewNotFound(fmt.Sprintf("Product %d not found", req.ProductID))
	}

	exists, err := s.reviewRepo.Exists(ctx, userID, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}
	if exists {
		return nil, model.NewDuplicate(fmt.Sprintf("You have already reviewed product %d", req.ProductID))
	}

	purchases, err := s.orderRepo.CountPurchases(ctx, userID, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	review := &model.Review{
		ProductID: req.ProductID,
		UserID:    userID,
		Rating:    req.Rating,
		Title:     req.Title,
		Comment:   req.Comment,
		Verified:  purchases > 0,
		Approved:  false,
	}

	tx, err := s.reviewRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	if err = s.reviewRepo.Create(ctx, tx, review); err != nil {
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.logger.Info().
		Int64("review_id", review.ID).
		Int64("product_id", review.ProductID).
		Int64("user_id", userID).
		Bool("verified", review.Verified).
		Msg("review created")

	return review, nil
}

func (s *reviewService) GetByID(ctx context.Context, id int64) (*model.Review, error) {
	review, err := s.reviewRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	if review == nil {
		return nil, model.NewNotFound(fmt.Sprintf("Review %d not found", id))
	}
	return review, nil
}

func (s *reviewService) ListByProduct(ctx context.Context, productID int64, limit, offset int) ([]model.Review, error) {
	reviews, err := s.reviewRepo.ListByProduct(ctx, productID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

func (s *reviewService) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]model.Review, error) {
	reviews, err := s.reviewRepo.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// Update edits the actor's own review. An edited review loses its
// approval and re-enters moderation.
func (s *reviewService) Update(ctx context.Context, actorID int64, id int64, req *model.ReviewRequest) (*model.Review, error) {
	if err := validateReviewRequest(req); err != nil {
		return nil, err
	}

	review, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.UserID != actorID {
		return nil, model.NewAccessDenied(fmt.Sprintf("Review %d belongs to another user", id))
	}

	wasApproved := review.Approved
	review.Rating = req.Rating
	review.Title = req.Title
	review.Comment = req.Comment
	review.Approved = false

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.reviewRepo.Update(ctx, tx, review); err != nil {
			return err
		}
		if wasApproved {
			return s.reviewRepo.RefreshProductRating(ctx, tx, review.ProductID)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.logger.Info().Int64("review_id", id).Msg("review updated")

	return review, nil
}

// Approve makes the review visible and folds it into the product
// rating aggregates.
func (s *reviewService) Approve(ctx context.Context, id int64) (*model.Review, error) {
	review, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if review.Approved {
		return review, nil
	}

	review.Approved = true

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.reviewRepo.Update(ctx, tx, review); err != nil {
			return err
		}
		return s.reviewRepo.RefreshProductRating(ctx, tx, review.ProductID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to approve review: %w", err)
	}

	s.logger.Info().
		Int64("review_id", id).
		Int64("product_id", review.ProductID).
		Msg("review approved")

	return review, nil
}

func (s *reviewService) Delete(ctx context.Context, actorID int64, actorRole model.UserRole, id int64) error {
	review, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if actorRole != model.RoleAdmin && review.UserID != actorID {
		return model.NewAccessDenied(fmt.Sprintf("Review %d belongs to another user", id))
	}

	err = s.inTx(ctx, func(tx pgx.Tx) error {
		if err := s.reviewRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		if review.Approved {
			return s.reviewRepo.RefreshProductRating(ctx, tx, review.ProductID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	s.logger.Info().Int64("review_id", id).Msg("review deleted")

	return nil
}

func (s *reviewService) MarkHelpful(ctx context.Context, id int64) (*model.Review, error) {
	review, err := s.reviewRepo.IncrementHelpful(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to mark review helpful: %w", err)
	}
	if review == nil {
		return nil, model.NewNotFound(fmt.Sprintf("Review %d not found", id))
	}
	return review, nil
}

// inTx runs fn inside a transaction, rolling back on error.
func (s *reviewService) inTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.reviewRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return err
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
		}
		return err
	}

	return tx.Commit(ctx)
}

func validateReviewRequest(req *model.ReviewRequest) error {
	fields := map[string]string{}

	if req.ProductID == 0 {
		fields["productId"] = "Product is required"
	}
	if req.Rating < 1 || req.Rating > 5 {
		fields["rating"] = "Rating must be between 1 and 5"
	}

	if len(fields) > 0 {
		return model.NewValidation(fields)
	}
	return nil
}
