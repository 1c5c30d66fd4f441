package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pawsomemeals/storefront/internal/service/cart"
)

// ProviderError is a payment provider failure with its upstream error
// code preserved for the client.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("payment provider: %s (%s)", e.Message, e.Code)
}

// Intent is the minimal intent surface the client needs to confirm a
// payment.
type Intent struct {
	ID           string  `json:"id"`
	ClientSecret string  `json:"client_secret"`
	Amount       int64   `json:"amount"`
	Currency     string  `json:"currency"`
	Total        float64 `json:"total"`
}

// Provider creates payment intents. Amounts are in minor units.
type Provider interface {
	CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*Intent, error)
}

type Service struct {
	Cart     *cart.Service
	Provider Provider
	Currency string
}

func NewService(cartSvc *cart.Service, provider Provider) *Service {
	return &Service{Cart: cartSvc, Provider: provider, Currency: "usd"}
}

// CreateIntentFromCart reprices the user's cart server-side and opens an
// intent for the resulting total. Client-supplied amounts are never
// accepted. Cart errors pass through unwrapped so callers can map
// ErrCartNotFound and ErrEmptyCart.
func (s *Service) CreateIntentFromCart(ctx context.Context, userID uint) (*Intent, error) {
	totals, err := s.Cart.CurrentTotals(ctx, userID)
	if err != nil {
		return nil, err
	}

	total := totals.Total().Round(2)
	amountMinor := total.Mul(decimal.NewFromInt(100)).IntPart()

	intent, err := s.Provider.CreateIntent(ctx, amountMinor, s.Currency, map[string]string{
		"user_id": fmt.Sprint(userID),
		"cart_id": fmt.Sprint(totals.CartID),
	})
	if err != nil {
		return nil, err
	}
	intent.Total = total.InexactFloat64()
	return intent, nil
}
