package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_ReserveStock_Concurrent(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()

	sellerID := db.SeedUser(t, "seller@example.com", model.RoleSeller)
	categoryID := db.SeedCategory(t, "Electronics", "electronics")
	productID := db.SeedProduct(t, "SKU-RACE", 49.99, 5, categoryID, sellerID)

	repo := repository.NewProductRepository(db.Pool, zerolog.Nop())

	// Ten buyers race for five units. The conditional decrement must
	// admit exactly five of them and never drive stock negative.
	const buyers = 10
	var wg sync.WaitGroup
	results := make(chan bool, buyers)

	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			tx, err := db.Pool.Begin(ctx)
			if err != nil {
				results <- false
				return
			}

			ok, err := repo.ReserveStock(ctx, tx, productID, 1)
			if err != nil || !ok {
				_ = tx.Rollback(ctx)
				results <- false
				return
			}
			if err := tx.Commit(ctx); err != nil {
				results <- false
				return
			}
			results <- true
		}()
	}

	wg.Wait()
	close(results)

	reserved := 0
	for ok := range results {
		if ok {
			reserved++
		}
	}
	assert.Equal(t, 5, reserved)

	var stock int
	var status string
	err := db.Pool.QueryRow(ctx,
		"SELECT stock_quantity, status FROM products WHERE id = $1", productID).
		Scan(&stock, &status)
	require.NoError(t, err)
	assert.Equal(t, 0, stock)
	assert.Equal(t, string(model.ProductOutOfStock), status)
}

func TestProductRepository_ReserveStock_Insufficient(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()

	sellerID := db.SeedUser(t, "seller@example.com", model.RoleSeller)
	categoryID := db.SeedCategory(t, "Electronics", "electronics")
	productID := db.SeedProduct(t, "SKU-LOW", 19.99, 2, categoryID, sellerID)

	repo := repository.NewProductRepository(db.Pool, zerolog.Nop())

	tx, err := db.Pool.Begin(ctx)
	require.NoError(t, err)
	defer tx.Rollback(ctx)

	ok, err := repo.ReserveStock(ctx, tx, productID, 3)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, tx.Commit(ctx))

	var stock int
	err = db.Pool.QueryRow(ctx,
		"SELECT stock_quantity FROM products WHERE id = $1", productID).Scan(&stock)
	require.NoError(t, err)
	assert.Equal(t, 2, stock)
}

func TestProductRepository_ReleaseStock_Reactivates(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()

	sellerID := db.SeedUser(t, "seller@example.com", model.RoleSeller)
	categoryID := db.SeedCategory(t, "Electronics", "electronics")
	productID := db.SeedProduct(t, "SKU-REL", 29.99, 2, categoryID, sellerID)

	repo := repository.NewProductRepository(db.Pool, zerolog.Nop())

	tx, err := db.Pool.Begin(ctx)
	require.NoError(t, err)
	ok, err := repo.ReserveStock(ctx, tx, productID, 2)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, tx.Commit(ctx))

	tx, err = db.Pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.ReleaseStock(ctx, tx, productID, 2))
	require.NoError(t, tx.Commit(ctx))

	var stock int
	var status string
	err = db.Pool.QueryRow(ctx,
		"SELECT stock_quantity, status FROM products WHERE id = $1", productID).
		Scan(&stock, &status)
	require.NoError(t, err)
	assert.Equal(t, 2, stock)
	assert.Equal(t, string(model.ProductActive), status)
}

func TestAddressRepository_DefaultHandover(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()

	userID := db.SeedUser(t, "customer@example.com", model.RoleCustomer)
	repo := repository.NewAddressRepository(db.Pool, zerolog.Nop())

	first := &model.Address{
		UserID:      userID,
		Type:        model.AddressHome,
		FullName:    "Jordan Smith",
		PhoneNumber: "+15550001111",
		Line1:       "1 Main St",
		City:        "Springfield",
		State:       "IL",
		Country:     "US",
		PostalCode:  "62701",
		IsDefault:   true,
	}
	require.NoError(t, repo.Create(ctx, first))

	second := &model.Address{
		UserID:      userID,
		Type:        model.AddressWork,
		FullName:    "Jordan Smith",
		PhoneNumber: "+15550001111",
		Line1:       "200 Office Park",
		City:        "Springfield",
		State:       "IL",
		Country:     "US",
		PostalCode:  "62702",
	}
	require.NoError(t, repo.Create(ctx, second))

	// Promoting the second address must demote the first in the same
	// statement, leaving exactly one default row for the user.
	second.IsDefault = true
	require.NoError(t, repo.Update(ctx, second))

	var defaults int
	err := db.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM addresses WHERE user_id = $1 AND is_default", userID).
		Scan(&defaults)
	require.NoError(t, err)
	assert.Equal(t, 1, defaults)

	reloaded, err := repo.GetByID(ctx, second.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.True(t, reloaded.IsDefault)

	reloaded, err = repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	assert.False(t, reloaded.IsDefault)
}

func TestPaymentRepository_OnePaymentPerOrder(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()

	userID := db.SeedUser(t, "customer@example.com", model.RoleCustomer)
	addressID := db.SeedAddress(t, userID, true)
	orderID := db.SeedOrder(t, "ORD-INT-1", userID, addressID, 92.50)

	repo := repository.NewPaymentRepository(db.Pool, zerolog.Nop())

	first := &model.Payment{
		OrderID:       orderID,
		TransactionID: "TXN-INT-1",
		Method:        model.MethodCreditCard,
		Status:        model.PaymentPending,
		Amount:        92.50,
		Currency:      "USD",
	}
	require.NoError(t, repo.Create(ctx, first))

	second := &model.Payment{
		OrderID:       orderID,
		TransactionID: "TXN-INT-2",
		Method:        model.MethodUPI,
		Status:        model.PaymentPending,
		Amount:        92.50,
		Currency:      "USD",
	}
	assert.Error(t, repo.Create(ctx, second))

	found, err := repo.GetByOrderID(ctx, orderID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "TXN-INT-1", found.TransactionID)
}

func TestReviewRepository_RatingAggregates(t *testing.T) {
	db := SetupTestDB(t)
	ctx := context.Background()

	sellerID := db.SeedUser(t, "seller@example.com", model.RoleSeller)
	categoryID := db.SeedCategory(t, "Books", "books")
	productID := db.SeedProduct(t, "SKU-REV", 15.00, 10, categoryID, sellerID)

	repo := repository.NewReviewRepository(db.Pool, zerolog.Nop())

	ratings := []int{4, 5}
	for i, rating := range ratings {
		reviewerID := db.SeedUser(t, fmt.Sprintf("reviewer%d@example.com", i), model.RoleCustomer)

		tx, err := repo.BeginTx(ctx)
		require.NoError(t, err)

		review := &model.Review{
			ProductID: productID,
			UserID:    reviewerID,
			Rating:    rating,
			Approved:  true,
		}
		require.NoError(t, repo.Create(ctx, tx, review))
		require.NoError(t, repo.RefreshProductRating(ctx, tx, productID))
		require.NoError(t, tx.Commit(ctx))

		exists, err := repo.Exists(ctx, reviewerID, productID)
		require.NoError(t, err)
		assert.True(t, exists)
	}

	var average float64
	var total int
	err := db.Pool.QueryRow(ctx,
		"SELECT average_rating, total_reviews FROM products WHERE id = $1", productID).
		Scan(&average, &total)
	require.NoError(t, err)
	assert.InDelta(t, 4.5, average, 0.001)
	assert.Equal(t, 2, total)
}
