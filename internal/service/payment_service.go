package service

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/model"
	"storefront/internal/notify"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// Gateway charges a payment with an external provider and returns the
// provider's transaction id.
type Gateway interface {
	Charge(ctx context.Context, payment *model.Payment) (string, error)
}

// simulatedGateway implements Gateway without an external provider.
// Every charge succeeds.
type simulatedGateway struct{}

// NewSimulatedGateway creates a gateway stub for environments without
// a real payment provider.
func NewSimulatedGateway() Gateway {
	return simulatedGateway{}
}

func (simulatedGateway) Charge(_ context.Context, payment *model.Payment) (string, error) {
	return fmt.Sprintf("SIM-%s", payment.TransactionID), nil
}

// paymentService implements PaymentService.
type paymentService struct {
	paymentRepo repository.PaymentRepository
	orderRepo   repository.OrderRepository
	userRepo    repository.UserRepository
	gateway     Gateway
	dispatcher  *notify.Dispatcher
	logger      zerolog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	gateway Gateway,
	dispatcher *notify.Dispatcher,
	logger zerolog.Logger,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		orderRepo:   orderRepo,
		userRepo:    userRepo,
		gateway:     gateway,
		dispatcher:  dispatcher,
		logger:      logger.With().Str("service", "payment").Logger(),
	}
}

// Create records the single payment of an order. The amount always
// comes from the order.
func (s *paymentService) Create(ctx context.Context, actorID int64, req *model.PaymentCreateRequest) (*model.Payment, error) {
	if !model.ValidPaymentMethod(req.Method) {
		return nil, model.NewValidation(map[string]string{"paymentMethod": fmt.Sprintf("Unknown payment method %q", req.Method)})
	}

	order, _, err := s.orderRepo.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	if order == nil || order.UserID != actorID {
		return nil, model.NewNotFound(fmt.Sprintf("Order %d not found", req.OrderID))
	}
	if order.Status != model.OrderPending {
		return nil, model.NewIllegalState(fmt.Sprintf("Order %d is %s and cannot be paid", order.ID, order.Status))
	}

	existing, err := s.paymentRepo.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}
	if existing != nil {
		return nil, model.NewIllegalState(fmt.Sprintf("Order %d already has payment %s", order.ID, existing.TransactionID))
	}

	payment := &model.Payment{
		OrderID:       order.ID,
		TransactionID: model.NewTransactionID(),
		Method:        req.Method,
		Status:        model.PaymentPending,
		Amount:        order.TotalAmount,
		Currency:      "USD",
		Gateway:       req.Gateway,
		Notes:         req.Notes,
	}

	if err := s.paymentRepo.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	s.logger.Info().
		Int64("payment_id", payment.ID).
		Int64("order_id", order.ID).
		Str("transaction_id", payment.TransactionID).
		Float64("amount", payment.Amount).
		Msg("payment created")

	return payment, nil
}

// Process charges the payment. On success the payment completes and
// the order moves to CONFIRMED in the same transaction; on gateway
// failure the payment is marked FAILED and the order stays payable.
func (s *paymentService) Process(ctx context.Context, id int64) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to process payment: %w", err)
	}
	if payment == nil {
		return nil, model.NewNotFound(fmt.Sprintf("Payment %d not found", id))
	}
	if payment.Status != model.PaymentPending {
		return nil, model.NewIllegalState(fmt.Sprintf("Payment %d is %s and cannot be processed", id, payment.Status))
	}

	payment.Status = model.PaymentProcessing
	if err := s.paymentRepo.Update(ctx, nil, payment); err != nil {
		return nil, fmt.Errorf("failed to process payment: %w", err)
	}

	gatewayTxnID, chargeErr := s.gateway.Charge(ctx, payment)
	if chargeErr != nil {
		s.logger.Warn().
			Err(chargeErr).
			Int64("payment_id", id).
			Msg("gateway charge failed")

		reason := chargeErr.Error()
		payment.Status = model.PaymentFailed
		payment.FailureReason = &reason
		if err := s.paymentRepo.Update(ctx, nil, payment); err != nil {
			return nil, fmt.Errorf("failed to process payment: %w", err)
		}
		return payment, nil
	}

	order, _, err := s.orderRepo.GetByID(ctx, payment.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to process payment: %w", err)
	}
	if order == nil {
		return nil, model.NewNotFound(fmt.Sprintf("Order %d not found", payment.OrderID))
	}

	tx, err := s.paymentRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to process payment: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	now := time.Now()
	payment.Status = model.PaymentCompleted
	payment.GatewayTransactionID = &gatewayTxnID
	payment.PaidAt = &now

	if err = s.paymentRepo.Update(ctx, tx, payment); err != nil {
		return nil, fmt.Errorf("failed to process payment: %w", err)
	}

	order.Status = model.OrderConfirmed
	if err = s.orderRepo.Update(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to process payment: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("payment_id", id).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to process payment: %w", err)
	}

	s.logger.Info().
		Int64("payment_id", id).
		Int64("order_id", order.ID).
		Str("gateway_transaction_id", gatewayTxnID).
		Msg("payment completed")

	s.notifyUser(ctx, order.UserID, "Payment received",
		fmt.Sprintf("We received your payment of %.2f for order %s.\n", payment.Amount, order.OrderNumber))

	return payment, nil
}

func (s *paymentService) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return nil, model.NewNotFound(fmt.Sprintf("Payment %d not found", id))
	}
	return payment, nil
}

func (s *paymentService) GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	if payment == nil {
		return nil, model.NewNotFound(fmt.Sprintf("Order %d has no payment", orderID))
	}
	return payment, nil
}

// Refund reverses a COMPLETED payment and moves the order to
// REFUNDED in the same transaction.
func (s *paymentService) Refund(ctx context.Context, id int64, reason *string) (*model.Payment, error) {
	payment, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to refund payment: %w", err)
	}
	if payment == nil {
		return nil, model.NewNotFound(fmt.Sprintf("Payment %d not found", id))
	}
	if payment.Status != model.PaymentCompleted {
		return nil, model.NewIllegalState(fmt.Sprintf("Payment %d is %s and cannot be refunded", id, payment.Status))
	}

	order, _, err := s.orderRepo.GetByID(ctx, payment.OrderID)
	if err != nil {
		return nil, fmt.Errorf("failed to refund payment: %w", err)
	}
	if order == nil {
		return nil, model.NewNotFound(fmt.Sprintf("Order %d not found", payment.OrderID))
	}

	tx, err := s.paymentRepo.BeginTx(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to refund payment: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				s.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	payment.Status = model.PaymentRefunded
	if reason != nil {
		note := "Refund reason: " + *reason
		if payment.Notes != nil && *payment.Notes != "" {
			note = *payment.Notes + " | " + note
		}
		payment.Notes = &note
	}

	if err = s.paymentRepo.Update(ctx, tx, payment); err != nil {
		return nil, fmt.Errorf("failed to refund payment: %w", err)
	}

	order.Status = model.OrderRefunded
	if err = s.orderRepo.Update(ctx, tx, order); err != nil {
		return nil, fmt.Errorf("failed to refund payment: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		s.logger.Error().Err(err).Int64("payment_id", id).Msg("failed to commit transaction")
		return nil, fmt.Errorf("failed to refund payment: %w", err)
	}

	s.logger.Info().
		Int64("payment_id", id).
		Int64("order_id", order.ID).
		Msg("payment refunded")

	s.notifyUser(ctx, order.UserID, "Refund issued",
		fmt.Sprintf("Your payment of %.2f for order %s has been refunded.\n", payment.Amount, order.OrderNumber))

	return payment, nil
}

func (s *paymentService) notifyUser(ctx context.Context, userID int64, subject, body string) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("failed to load user for notification")
		return
	}
	s.dispatcher.Send(user.Email, subject, fmt.Sprintf("Hi %s,\n\n%s", user.FullName(), body))
}
