package payment

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pawsomemeals/storefront/internal/models"
	"github.com/pawsomemeals/storefront/internal/pricing"
	"github.com/pawsomemeals/storefront/internal/service/cart"
	"github.com/pawsomemeals/storefront/internal/storage"
)

type fakeProvider struct {
	lastAmount   int64
	lastCurrency string
	lastMetadata map[string]string
	err          error
}

func (f *fakeProvider) CreateIntent(_ context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.lastAmount = amountMinor
	f.lastCurrency = currency
	f.lastMetadata = metadata
	return &Intent{ID: "pi_test", ClientSecret: "pi_test_secret", Amount: amountMinor, Currency: currency}, nil
}

func newTestService(t *testing.T, provider Provider) (*Service, storage.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Cart{}, &models.CartItem{}))
	store := storage.NewGormStore(db)
	cartSvc := cart.NewService(store, pricing.NewEngine(), nil)
	return NewService(cartSvc, provider), store
}

func TestCreateIntentUsesServerSideTotal(t *testing.T) {
	provider := &fakeProvider{}
	svc, store := newTestService(t, provider)
	ctx := context.Background()

	product := &models.Product{Name: "Lamb Bowl", Description: "lamb", Protein: "lamb", Price: 10.00}
	require.NoError(t, store.CreateProduct(ctx, product))
	_, _, err := svc.Cart.AddItem(ctx, 1, product.ID, 1, &models.Customization{
		Size:         models.SizeSmall,
		PurchaseType: models.PurchaseOneTime,
	})
	require.NoError(t, err)

	// 10.00 x 0.6 = 6.00 plus 10.00 shipping, in cents.
	intent, err := svc.CreateIntentFromCart(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int64(1600), provider.lastAmount)
	require.Equal(t, "usd", provider.lastCurrency)
	require.Equal(t, 16.00, intent.Total)
	require.Equal(t, "1", provider.lastMetadata["user_id"])
	require.NotEmpty(t, provider.lastMetadata["cart_id"])
}

func TestCreateIntentEmptyCart(t *testing.T) {
	svc, store := newTestService(t, &fakeProvider{})
	ctx := context.Background()

	_, err := svc.CreateIntentFromCart(ctx, 1)
	require.ErrorIs(t, err, cart.ErrCartNotFound)

	require.NoError(t, store.CreateCart(ctx, &models.Cart{UserID: 1}))
	_, err = svc.CreateIntentFromCart(ctx, 1)
	require.ErrorIs(t, err, cart.ErrEmptyCart)
}

func TestCreateIntentProviderErrorPassthrough(t *testing.T) {
	provErr := &ProviderError{Code: "card_declined", Message: "card was declined"}
	svc, store := newTestService(t, &fakeProvider{err: provErr})
	ctx := context.Background()

	product := &models.Product{Name: "Lamb Bowl", Description: "lamb", Protein: "lamb", Price: 10.00}
	require.NoError(t, store.CreateProduct(ctx, product))
	_, _, err := svc.Cart.AddItem(ctx, 1, product.ID, 1, nil)
	require.NoError(t, err)

	_, err = svc.CreateIntentFromCart(ctx, 1)
	var got *ProviderError
	require.ErrorAs(t, err, &got)
	require.Equal(t, "card_declined", got.Code)
}
