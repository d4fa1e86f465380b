package repository

import (
	"context"
	"fmt"

	"storefront/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const addressColumns = `
	id, user_id, type, full_name, phone_number, line1, line2, city,
	state, country, postal_code, landmark, is_default, created_at,
	updated_at
`

// handoverDefault makes exactly one address the default for its owner
// in a single statement, so there is no window with zero defaults.
const handoverDefault = `
	UPDATE addresses
	SET is_default = (id = $2), updated_at = NOW()
	WHERE user_id = $1 AND (is_default OR id = $2)
`

// addressRepository implements AddressRepository using PostgreSQL.
type addressRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAddressRepository creates a new PostgreSQL-backed address repository.
func NewAddressRepository(pool *pgxpool.Pool, logger zerolog.Logger) AddressRepository {
	return &addressRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "address").Logger(),
	}
}

func (r *addressRepository) Create(ctx context.Context, address *model.Address) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO addresses (
			user_id, type, full_name, phone_number, line1, line2, city,
			state, country, postal_code, landmark, is_default
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, FALSE)
		RETURNING id, created_at, updated_at
	`

	err = tx.QueryRow(ctx, query,
		address.UserID, address.Type, address.FullName, address.PhoneNumber,
		address.Line1, address.Line2, address.City, address.State,
		address.Country, address.PostalCode, address.Landmark,
	).Scan(&address.ID, &address.CreatedAt, &address.UpdatedAt)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", address.UserID).Msg("failed to create address")
		return fmt.Errorf("failed to create address: %w", err)
	}

	if address.IsDefault {
		if _, err := tx.Exec(ctx, handoverDefault, address.UserID, address.ID); err != nil {
			r.logger.Error().Err(err).Int64("address_id", address.ID).Msg("failed to set default address")
			return fmt.Errorf("failed to set default address: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit address creation: %w", err)
	}

	r.logger.Debug().Int64("address_id", address.ID).Msg("address created successfully")
	return nil
}

func (r *addressRepository) GetByID(ctx context.Context, id int64) (*model.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1`

	address, err := r.scanAddress(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			r.logger.Debug().Int64("address_id", id).Msg("address not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Int64("address_id", id).Msg("failed to query address")
		return nil, fmt.Errorf("failed to query address: %w", err)
	}

	return address, nil
}

func (r *addressRepository) ListByUser(ctx context.Context, userID int64) ([]model.Address, error) {
	query := `
		SELECT ` + addressColumns + `
		FROM addresses
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("failed to query addresses")
		return nil, fmt.Errorf("failed to query addresses: %w", err)
	}
	defer rows.Close()

	var addresses []model.Address
	for rows.Next() {
		address, err := r.scanAddress(rows)
		if err != nil {
			r.logger.Error().Err(err).Msg("failed to scan address row")
			return nil, fmt.Errorf("failed to scan address: %w", err)
		}
		addresses = append(addresses, *address)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error().Err(err).Msg("error iterating address rows")
		return nil, fmt.Errorf("error iterating addresses: %w", err)
	}

	return addresses, nil
}

func (r *addressRepository) Update(ctx context.Context, address *model.Address) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to begin transaction")
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE addresses SET
			type = $2, full_name = $3, phone_number = $4, line1 = $5,
			line2 = $6, city = $7, state = $8, country = $9,
			postal_code = $10, landmark = $11, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := tx.Exec(ctx, query,
		address.ID, address.Type, address.FullName, address.PhoneNumber,
		address.Line1, address.Line2, address.City, address.State,
		address.Country, address.PostalCode, address.Landmark,
	)
	if err != nil {
		r.logger.Error().Err(err).Int64("address_id", address.ID).Msg("failed to update address")
		return fmt.Errorf("failed to update address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update address: no row with id %d", address.ID)
	}

	if address.IsDefault {
		if _, err := tx.Exec(ctx, handoverDefault, address.UserID, address.ID); err != nil {
			r.logger.Error().Err(err).Int64("address_id", address.ID).Msg("failed to set default address")
			return fmt.Errorf("failed to set default address: %w", err)
		}
	} else {
		if _, err := tx.Exec(ctx,
			`UPDATE addresses SET is_default = FALSE, updated_at = NOW() WHERE id = $1`,
			address.ID,
		); err != nil {
			return fmt.Errorf("failed to unset default address: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit address update: %w", err)
	}

	return nil
}

func (r *addressRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM addresses WHERE id = $1`, id)
	if err != nil {
		r.logger.Error().Err(err).Int64("address_id", id).Msg("failed to delete address")
		return fmt.Errorf("failed to delete address: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete address: no row with id %d", id)
	}

	r.logger.Debug().Int64("address_id", id).Msg("address deleted successfully")
	return nil
}

func (r *addressRepository) scanAddress(row pgx.Row) (*model.Address, error) {
	var a model.Address
	err := row.Scan(
		&a.ID, &a.UserID, &a.Type, &a.FullName, &a.PhoneNumber, &a.Line1,
		&a.Line2, &a.City, &a.State, &a.Country, &a.PostalCode,
		&a.Landmark, &a.IsDefault, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
