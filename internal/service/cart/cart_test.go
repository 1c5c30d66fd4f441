package cart

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pawsomemeals/storefront/internal/models"
	"github.com/pawsomemeals/storefront/internal/pricing"
	"github.com/pawsomemeals/storefront/internal/storage"
)

func newTestService(t *testing.T) (*Service, storage.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Product{}, &models.Cart{}, &models.CartItem{},
	))
	store := storage.NewGormStore(db)
	return NewService(store, pricing.NewEngine(), nil), store
}

func seedProduct(t *testing.T, store storage.Store, price float64) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:        "Chicken Feast",
		Description: "slow cooked chicken and rice",
		Protein:     "chicken",
		Price:       price,
	}
	require.NoError(t, store.CreateProduct(context.Background(), product))
	return product
}

func TestAddItemCreatesCartAndLine(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, store, 24.99)

	item, created, err := svc.AddItem(ctx, 1, product.ID, 1, nil)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, uint(1), item.Quantity)

	cart, err := store.CartByUser(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, cart.ID, item.CartID)
}

func TestAddSameProductMergesIntoOneLine(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, store, 24.99)

	first := &models.Customization{Size: models.SizeLarge, PurchaseType: models.PurchaseOneTime}
	_, created, err := svc.AddItem(ctx, 1, product.ID, 1, first)
	require.NoError(t, err)
	require.True(t, created)

	second := &models.Customization{Size: models.SizeSmall, PurchaseType: models.PurchaseOneTime}
	item, created, err := svc.AddItem(ctx, 1, product.ID, 1, second)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, uint(2), item.Quantity)

	// The merged line keeps the customization it was created with.
	require.NotNil(t, item.Customization)
	require.Equal(t, models.SizeLarge, item.Customization.Size)

	items, err := store.CartItems(ctx, item.CartID)
	require.NoError(t, err)
	require.Len(t, items, 1)
}

func TestAddItemRejectsBadQuantity(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, store, 24.99)

	_, _, err := svc.AddItem(ctx, 1, product.ID, 0, nil)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	_, _, err = svc.AddItem(ctx, 1, product.ID, -3, nil)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	view, err := svc.View(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, view.Items)
}

func TestAddItemUnknownProduct(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.AddItem(context.Background(), 1, 999, 1, nil)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestAddItemRejectsForgedCustomPrice(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, store, 24.99)

	forged := 0.01
	c := &models.Customization{
		Size:         models.SizeLarge,
		PurchaseType: models.PurchaseOneTime,
		CustomPrice:  &forged,
	}
	_, _, err := svc.AddItem(ctx, 1, product.ID, 1, c)
	require.ErrorIs(t, err, pricing.ErrInvalidCustomization)
}

func TestViewRepricesAtCurrentBasePrice(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, store, 20.00)

	_, _, err := svc.AddItem(ctx, 1, product.ID, 2, nil)
	require.NoError(t, err)

	view, err := svc.View(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 40.00, view.Subtotal)
	require.Equal(t, 10.00, view.Shipping)
	require.Equal(t, 50.00, view.Total)

	product.Price = 30.00
	require.NoError(t, store.SaveProduct(ctx, product))

	view, err = svc.View(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 60.00, view.Subtotal)
	require.Equal(t, 0.00, view.Shipping)
}

func TestUpdateQuantityOwnershipEnforced(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, store, 24.99)

	item, _, err := svc.AddItem(ctx, 1, product.ID, 1, nil)
	require.NoError(t, err)

	// Removal is an explicit operation, not quantity zero.
	_, err = svc.UpdateQuantity(ctx, 1, item.ID, 0)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	// Another user cannot see or touch the line.
	_, err = svc.UpdateQuantity(ctx, 2, item.ID, 5)
	require.ErrorIs(t, err, ErrItemNotFound)

	updated, err := svc.UpdateQuantity(ctx, 1, item.ID, 5)
	require.NoError(t, err)
	require.Equal(t, uint(5), updated.Quantity)
}

func TestRemoveMissingItem(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, store, 24.99)

	item, _, err := svc.AddItem(ctx, 1, product.ID, 1, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Remove(ctx, 1, item.ID))
	require.ErrorIs(t, svc.Remove(ctx, 1, item.ID), ErrItemNotFound)
}

func TestClearIsIdempotent(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	product := seedProduct(t, store, 24.99)

	// Clearing before any cart exists is fine.
	require.NoError(t, svc.Clear(ctx, 1))

	_, _, err := svc.AddItem(ctx, 1, product.ID, 2, nil)
	require.NoError(t, err)
	require.NoError(t, svc.Clear(ctx, 1))
	require.NoError(t, svc.Clear(ctx, 1))

	view, err := svc.View(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, view.Items)
}

func TestCurrentTotalsSubscriptionCart(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()
	plain := seedProduct(t, store, 24.99)
	premium := seedProduct(t, store, 26.99)

	_, _, err := svc.AddItem(ctx, 1, plain.ID, 2, nil)
	require.NoError(t, err)
	_, _, err = svc.AddItem(ctx, 1, premium.ID, 1, &models.Customization{
		Size:         models.SizeMedium,
		PurchaseType: models.PurchaseSubscription,
		Frequency:    models.FrequencyWeekly,
	})
	require.NoError(t, err)

	totals, err := svc.CurrentTotals(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 72.92, pricing.Currency(totals.Subtotal))
	require.Equal(t, 0.00, pricing.Currency(totals.Shipping))
	require.Equal(t, 72.92, pricing.Currency(totals.Total()))
}

func TestCurrentTotalsEmptyAndMissingCart(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.CurrentTotals(ctx, 1)
	require.ErrorIs(t, err, ErrCartNotFound)

	require.NoError(t, store.CreateCart(ctx, &models.Cart{UserID: 1}))
	_, err = svc.CurrentTotals(ctx, 1)
	require.ErrorIs(t, err, ErrEmptyCart)
}
