package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const paymentColumns = `
	id, order_id, transaction_id, method, status, amount, currency,
	gateway, gateway_transaction_id, failure_reason, notes, paid_at,
	created_at, updated_at
`

// paymentRepository implements PaymentRepository using PostgreSQL.
type paymentRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewPaymentRepository creates a new PostgreSQL-backed payment repository.
func NewPaymentRepository(pool *pgxpool.Pool, logger zerolog.Logger) PaymentRepository {
	return &paymentRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "payment").Logger(),
	}
}

// BeginTx starts a new database transaction.
func (r *paymentRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return tx, nil
}

func (r *paymentRepository) Create(ctx context.Context, payment *model.Payment) error {
	query := `
		INSERT INTO payments (
			order_id, transaction_id, method, status, amount, currency,
			gateway, notes
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		payment.OrderID, payment.TransactionID, payment.Method,
		payment.Status, payment.Amount, payment.Currency, payment.Gateway,
		payment.Notes,
	).Scan(&payment.ID, &payment.CreatedAt, &payment.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Int64("order_id", payment.OrderID).Msg("failed to create payment")
		return fmt.Errorf("failed to create payment: %w", err)
	}

	r.logger.Debug().
		Int64("payment_id", payment.ID).
		Str("transaction_id", payment.TransactionID).
		Msg("payment created successfully")

	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id int64) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`

	payment, err := r.scanPayment(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Int64("payment_id", id).Msg("payment not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("payment_id", id).Msg("failed to query payment")
		return nil, fmt.Errorf("failed to query payment: %w", err)
	}

	return payment, nil
}

func (r *paymentRepository) GetByOrderID(ctx context.Context, orderID int64) (*model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1`

	payment, err := r.scanPayment(r.pool.QueryRow(ctx, query, orderID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("order_id", orderID).Msg("failed to query payment by order")
		return nil, fmt.Errorf("failed to query payment by order: %w", err)
	}

	return payment, nil
}

func (r *paymentRepository) Update(ctx context.Context, tx pgx.Tx, payment *model.Payment) error {
	query := `
		UPDATE payments SET
			status = $2, gateway_transaction_id = $3, failure_reason = $4,
			notes = $5, paid_at = $6, updated_at = NOW()
		WHERE id = $1
	`

	var tag interface{ RowsAffected() int64 }
	var err error
	if tx != nil {
		tag, err = tx.Exec(ctx, query,
			payment.ID, payment.Status, payment.GatewayTransactionID,
			payment.FailureReason, payment.Notes, payment.PaidAt,
		)
	} else {
		tag, err = r.pool.Exec(ctx, query,
			payment.ID, payment.Status, payment.GatewayTransactionID,
			payment.FailureReason, payment.Notes, payment.PaidAt,
		)
	}
	if err != nil {
		r.logger.Error().Err(err).Int64("payment_id", payment.ID).Msg("failed to update payment")
		return fmt.Errorf("failed to update payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update payment: no row with id %d", payment.ID)
	}

	return nil
}

func (r *paymentRepository) scanPayment(row pgx.Row) (*model.Payment, error) {
	var p model.Payment
	err := row.Scan(
		&p.ID, &p.OrderID, &p.TransactionID, &p.Method, &p.Status,
		&p.Amount, &p.Currency, &p.Gateway, &p.GatewayTransactionID,
		&p.FailureReason, &p.Notes, &p.PaidAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
