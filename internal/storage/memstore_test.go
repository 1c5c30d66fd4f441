package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pawsomemeals/storefront/internal/models"
)

func TestMemStoreUpsertCartItem(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	item := &models.CartItem{CartID: 1, ProductID: 7, Quantity: 1}
	created, err := store.UpsertCartItem(ctx, item)
	require.NoError(t, err)
	require.True(t, created)
	require.NotZero(t, item.ID)

	again := &models.CartItem{CartID: 1, ProductID: 7, Quantity: 2}
	created, err = store.UpsertCartItem(ctx, again)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, item.ID, again.ID)
	require.Equal(t, uint(3), again.Quantity)

	items, err := store.CartItems(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestMemStoreReturnsCopies(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	product := &models.Product{Name: "Turkey Mix", Price: 19.99}
	require.NoError(t, store.CreateProduct(ctx, product))

	loaded, err := store.Product(ctx, product.ID)
	require.NoError(t, err)
	loaded.Price = 1.00

	fresh, err := store.Product(ctx, product.ID)
	require.NoError(t, err)
	require.Equal(t, 19.99, fresh.Price)
}

func TestMemStoreCreateOrderClearsCart(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	cart := &models.Cart{UserID: 4}
	require.NoError(t, store.CreateCart(ctx, cart))
	_, err := store.UpsertCartItem(ctx, &models.CartItem{CartID: cart.ID, ProductID: 1, Quantity: 2})
	require.NoError(t, err)

	order := &models.Order{UserID: 4, Subtotal: 49.98, Shipping: 10, Total: 59.98, Status: models.OrderStatusPending}
	items := []models.OrderItem{{ProductID: 1, Quantity: 2, Price: 24.99}}
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

func TestMemStoreNotFound(t *testing.T) {
	store := NewMemStore()
	ctx := context.Background()

	_, err := store.Product(ctx, 42)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.UserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, store.DeleteCartItem(ctx, 42), ErrNotFound)
	require.ErrorIs(t, store.UpdateOrderStatus(ctx, 42, models.OrderStatusShipped), ErrNotFound)
}
