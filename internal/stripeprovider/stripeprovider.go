package stripeprovider

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"

	"github.com/pawsomemeals/storefront/internal/service/payment"
)

// Provider implements payment.Provider on the Stripe API.
type Provider struct {
	api *client.API
}

// New builds a Provider. The key is checked up front so a misconfigured
// deployment fails at startup, not on the first checkout.
func New(secretKey string) (*Provider, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is empty")
	}
	if !strings.HasPrefix(secretKey, "sk_") {
		return nil, errors.New("stripe secret key must start with sk_")
	}
	return &Provider{api: client.New(secretKey, nil)}, nil
}

func (p *Provider) CreateIntent(ctx context.Context, amountMinor int64, currency string, metadata map[string]string) (*payment.Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountMinor),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	params.SetIdempotencyKey(uuid.NewString())

	intent, err := p.api.PaymentIntents.New(params)
	if err != nil {
		var sErr *stripe.Error
		if errors.As(err, &sErr) {
			return nil, &payment.ProviderError{Code: string(sErr.Code), Message: sErr.Msg}
		}
		return nil, &payment.ProviderError{Code: "provider_unreachable", Message: fmt.Sprintf("stripe request failed: %v", err)}
	}

	return &payment.Intent{
		ID:           intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       intent.Amount,
		Currency:     string(intent.Currency),
	}, nil
}
