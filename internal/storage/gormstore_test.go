package storage

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pawsomemeals/storefront/internal/models"
)

func newGormStore(t *testing.T) *GormStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Cart{}, &models.CartItem{}, &models.Order{}, &models.OrderItem{},
	))
	return NewGormStore(db)
}

func TestGormStoreCreateOrderRollsBackOnItemFailure(t *testing.T) {
	store := newGormStore(t)
	ctx := context.Background()

	cart := &models.Cart{UserID: 1}
	require.NoError(t, store.CreateCart(ctx, cart))
	_, err := store.UpsertCartItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: 3, Quantity: 2})
	require.NoError(t, err)

	order := &models.Order{
		UserID:          1,
		Subtotal:        49.98,
		Shipping:        10,
		Total:           59.98,
		Status:          models.OrderStatusPending,
		ShippingAddress: "12 Barker Lane",
		ShippingCity:    "Portland",
		ShippingState:   "OR",
		ShippingZip:     "97201",
		ShippingCountry: "US",
	}
	// Two items forced onto the same primary key make the item insert
	// fail after the order row has already been written.
	items := []models.OrderItem{
		{ID: 1, ProductID: 3, Quantity: 1, Price: 24.99},
		{ID: 1, ProductID: 4, Quantity: 1, Price: 24.99},
	}
	require.Error(t, store.CreateOrder(ctx, order, items, cart.ID))

	var orders int64
	require.NoError(t, store.DB.Model(&models.Order{}).Count(&orders).Error)
	require.Zero(t, orders)

	var orderItems int64
	require.NoError(t, store.DB.Model(&models.OrderItem{}).Count(&orderItems).Error)
	require.Zero(t, orderItems)

	left, err := store.CartItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Len(t, left, 1)
}

func TestGormStoreCreateOrderCommitsAndClearsCart(t *testing.T) {
	store := newGormStore(t)
	ctx := context.Background()

	cart := &models.Cart{UserID: 1}
	require.NoError(t, store.CreateCart(ctx, cart))
	_, err := store.UpsertCartItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: 3, Quantity: 2})
	require.NoError(t, err)

	order := &models.Order{
		UserID:          1,
		Subtotal:        49.98,
		Shipping:        10,
		Total:           59.98,
		Status:          models.OrderStatusPending,
		ShippingAddress: "12 Barker Lane",
		ShippingCity:    "Portland",
		ShippingState:   "OR",
		ShippingZip:     "97201",
		ShippingCountry: "US",
	}
	items := []models.OrderItem{{ProductID: 3, Quantity: 2, Price: 24.99}}
	require.NoError(t, store.CreateOrder(ctx, order, items, cart.ID))
	require.NotZero(t, order.ID)

	stored, err := store.OrderItems(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	require.Equal(t, order.ID, stored[0].OrderID)

	left, err := store.CartItems(ctx, cart.ID)
	require.NoError(t, err)
	require.Empty(t, left)
}
