package pricing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/pawsomemeals/storefront/internal/models"
)

var ErrInvalidCustomization = errors.New("invalid customization")

const (
	minCustomWeight = 5
	maxCustomWeight = 200
)

// Engine computes line prices and shipping. All arithmetic stays in
// decimal until a caller persists or renders a value; Currency is the
// single rounding point.
type Engine struct {
	SizeMultipliers      map[string]decimal.Decimal
	MinWeightMultiplier  decimal.Decimal
	MaxWeightMultiplier  decimal.Decimal
	FrequencyMultipliers map[string]decimal.Decimal
	SubscriptionFactor   decimal.Decimal
	FlatShippingRate     decimal.Decimal
	FreeShippingAt       decimal.Decimal
}

func NewEngine() *Engine {
	return &Engine{
		SizeMultipliers: map[string]decimal.Decimal{
			models.SizeSmall:  decimal.NewFromFloat(0.6),
			models.SizeMedium: decimal.NewFromInt(1),
			models.SizeLarge:  decimal.NewFromFloat(1.3),
			models.SizeXL:     decimal.NewFromFloat(1.8),
		},
		MinWeightMultiplier: decimal.NewFromFloat(0.5),
		MaxWeightMultiplier: decimal.NewFromInt(3),
		FrequencyMultipliers: map[string]decimal.Decimal{
			models.FrequencyWeekly:   decimal.NewFromInt(1),
			models.FrequencyBiweekly: decimal.NewFromFloat(0.95),
			models.FrequencyMonthly:  decimal.NewFromFloat(0.9),
		},
		SubscriptionFactor: decimal.NewFromFloat(0.85),
		FlatShippingRate:   decimal.NewFromInt(10),
		FreeShippingAt:     decimal.NewFromInt(50),
	}
}

// Validate rejects customizations that do not form a closed variant:
// unknown tags, a custom weight outside [5,200] or missing for size
// "custom", or a delivery frequency on a one-time purchase.
func (e *Engine) Validate(c *models.Customization) error {
	if c == nil {
		return nil
	}

	switch c.Size {
	case "", models.SizeSmall, models.SizeMedium, models.SizeLarge, models.SizeXL:
		if c.CustomWeight != nil {
			return fmt.Errorf("%w: customWeight requires size %q", ErrInvalidCustomization, models.SizeCustom)
		}
	case models.SizeCustom:
		if c.CustomWeight == nil {
			return fmt.Errorf("%w: size %q requires customWeight", ErrInvalidCustomization, models.SizeCustom)
		}
		if *c.CustomWeight < minCustomWeight || *c.CustomWeight > maxCustomWeight {
			return fmt.Errorf("%w: customWeight %.1f outside [%d,%d]", ErrInvalidCustomization, *c.CustomWeight, minCustomWeight, maxCustomWeight)
		}
	default:
		return fmt.Errorf("%w: unknown size %q", ErrInvalidCustomization, c.Size)
	}

	switch c.PurchaseType {
	case "", models.PurchaseOneTime:
		if c.Frequency != "" {
			return fmt.Errorf("%w: frequency set on one-time purchase", ErrInvalidCustomization)
		}
	case models.PurchaseSubscription:
		if _, ok := e.FrequencyMultipliers[c.Frequency]; !ok {
			return fmt.Errorf("%w: unknown frequency %q", ErrInvalidCustomization, c.Frequency)
		}
	default:
		return fmt.Errorf("%w: unknown purchase type %q", ErrInvalidCustomization, c.PurchaseType)
	}

	return nil
}

// LinePrice prices one unit of a line. A set CustomPrice wins
// unconditionally, before any validation: the override is authoritative
// for downstream totals whatever the other fields say.
func (e *Engine) LinePrice(basePrice float64, c *models.Customization) (decimal.Decimal, error) {
	if c == nil {
		return decimal.NewFromFloat(basePrice), nil
	}
	if c.CustomPrice != nil {
		return decimal.NewFromFloat(*c.CustomPrice), nil
	}
	if err := e.Validate(c); err != nil {
		return decimal.Zero, err
	}

	price := decimal.NewFromFloat(basePrice)

	switch {
	case c.Size == models.SizeCustom:
		price = price.Mul(e.weightMultiplier(*c.CustomWeight))
	case c.Size != "":
		price = price.Mul(e.SizeMultipliers[c.Size])
	}

	if c.PurchaseType == models.PurchaseSubscription {
		price = price.Mul(e.FrequencyMultipliers[c.Frequency])
		price = price.Mul(e.SubscriptionFactor)
	}

	return price, nil
}

// weightMultiplier interpolates linearly between the multiplier at 5 lbs
// and the multiplier at 200 lbs. The weight is validated before this is
// called; out-of-range weights never get clamped here.
func (e *Engine) weightMultiplier(weight float64) decimal.Decimal {
	w := decimal.NewFromFloat(weight)
	span := decimal.NewFromInt(maxCustomWeight - minCustomWeight)
	frac := w.Sub(decimal.NewFromInt(minCustomWeight)).Div(span)
	return e.MinWeightMultiplier.Add(frac.Mul(e.MaxWeightMultiplier.Sub(e.MinWeightMultiplier)))
}

// Shipping is the flat rate below the free-shipping threshold and zero
// at or above it. The boundary is inclusive: exactly 50.00 ships free.
func (e *Engine) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThanOrEqual(e.FreeShippingAt) {
		return decimal.Zero
	}
	return e.FlatShippingRate
}

// VerifyCustomPrice recomputes the line from the product base price and
// rejects a client-supplied CustomPrice that drifts more than a cent
// from the engine's own result. Returns nil when no override is set.
func (e *Engine) VerifyCustomPrice(basePrice float64, c *models.Customization) error {
	if c == nil || c.CustomPrice == nil {
		return nil
	}

	ref := *c
	ref.CustomPrice = nil
	want, err := e.LinePrice(basePrice, &ref)
	if err != nil {
		return err
	}

	got := decimal.NewFromFloat(*c.CustomPrice)
	tolerance := decimal.NewFromFloat(0.01)
	if got.Sub(want).Abs().GreaterThan(tolerance) {
		return fmt.Errorf("%w: customPrice %s does not match computed price %s",
			ErrInvalidCustomization, got.StringFixed(2), want.StringFixed(2))
	}
	return nil
}

// Currency rounds a decimal amount to cents for persistence or display.
func Currency(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
