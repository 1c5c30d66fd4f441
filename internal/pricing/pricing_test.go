package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/pawsomemeals/storefront/internal/models"
)

func fp(v float64) *float64 { return &v }

func TestLinePriceDeterministicAndNonNegative(t *testing.T) {
	e := NewEngine()

	sizes := []string{models.SizeSmall, models.SizeMedium, models.SizeLarge, models.SizeXL}
	freqs := []string{models.FrequencyWeekly, models.FrequencyBiweekly, models.FrequencyMonthly}

	for _, size := range sizes {
		c := &models.Customization{Size: size, PurchaseType: models.PurchaseOneTime}
		first, err := e.LinePrice(24.99, c)
		require.NoError(t, err)
		again, err := e.LinePrice(24.99, c)
		require.NoError(t, err)
		require.True(t, first.Equal(again))
		require.False(t, first.IsNegative())

		for _, freq := range freqs {
			c := &models.Customization{Size: size, PurchaseType: models.PurchaseSubscription, Frequency: freq}
			first, err := e.LinePrice(24.99, c)
			require.NoError(t, err)
			again, err := e.LinePrice(24.99, c)
			require.NoError(t, err)
			require.True(t, first.Equal(again))
			require.False(t, first.IsNegative())
		}
	}
}

func TestSubscriptionAlwaysCheaperThanOneTime(t *testing.T) {
	e := NewEngine()

	for _, size := range []string{models.SizeSmall, models.SizeMedium, models.SizeLarge, models.SizeXL} {
		onetime, err := e.LinePrice(26.99, &models.Customization{Size: size, PurchaseType: models.PurchaseOneTime})
		require.NoError(t, err)

		for _, freq := range []string{models.FrequencyWeekly, models.FrequencyBiweekly, models.FrequencyMonthly} {
			sub, err := e.LinePrice(26.99, &models.Customization{
				Size:         size,
				PurchaseType: models.PurchaseSubscription,
				Frequency:    freq,
			})
			require.NoError(t, err)
			require.True(t, sub.LessThan(onetime), "size=%s freq=%s: %s >= %s", size, freq, sub, onetime)
		}
	}
}

func TestCustomWeightMonotonic(t *testing.T) {
	e := NewEngine()

	prev := decimal.Zero
	for w := 5.0; w <= 200; w++ {
		c := &models.Customization{
			Size:         models.SizeCustom,
			CustomWeight: fp(w),
			PurchaseType: models.PurchaseOneTime,
		}
		price, err := e.LinePrice(24.99, c)
		require.NoError(t, err)
		require.True(t, price.GreaterThanOrEqual(prev), "weight %.0f decreased the price", w)
		prev = price
	}
}

func TestCustomWeightBounds(t *testing.T) {
	e := NewEngine()

	for _, w := range []float64{4.9, 0, -1, 200.1, 1000} {
		c := &models.Customization{Size: models.SizeCustom, CustomWeight: fp(w)}
		_, err := e.LinePrice(24.99, c)
		require.ErrorIs(t, err, ErrInvalidCustomization)
	}

	_, err := e.LinePrice(24.99, &models.Customization{Size: models.SizeCustom})
	require.ErrorIs(t, err, ErrInvalidCustomization)
}

func TestCustomPriceOverrideWins(t *testing.T) {
	e := NewEngine()

	// Nonsense tags must not matter once the override is present.
	c := &models.Customization{
		Size:         "gigantic",
		Frequency:    "hourly",
		PurchaseType: "rental",
		CustomPrice:  fp(12.345),
	}
	price, err := e.LinePrice(99.99, c)
	require.NoError(t, err)
	require.True(t, price.Equal(decimal.NewFromFloat(12.345)))
}

func TestInvalidTagsRejected(t *testing.T) {
	e := NewEngine()

	cases := []*models.Customization{
		{Size: "gigantic"},
		{PurchaseType: models.PurchaseSubscription, Frequency: "hourly"},
		{PurchaseType: models.PurchaseSubscription},
		{PurchaseType: "rental"},
		{PurchaseType: models.PurchaseOneTime, Frequency: models.FrequencyWeekly},
		{Size: models.SizeMedium, CustomWeight: fp(20)},
	}
	for _, c := range cases {
		_, err := e.LinePrice(10, c)
		require.ErrorIs(t, err, ErrInvalidCustomization, "%+v", c)
	}
}

func TestShippingThresholdInclusive(t *testing.T) {
	e := NewEngine()

	require.Equal(t, 10.00, Currency(e.Shipping(decimal.NewFromFloat(49.99))))
	require.Equal(t, 0.00, Currency(e.Shipping(decimal.NewFromFloat(50.00))))
	require.Equal(t, 0.00, Currency(e.Shipping(decimal.NewFromFloat(72.92))))
	require.Equal(t, 10.00, Currency(e.Shipping(decimal.Zero)))
}

func TestScenarioMixedCart(t *testing.T) {
	e := NewEngine()

	// 1x base 26.99, subscription/weekly/medium.
	line, err := e.LinePrice(26.99, &models.Customization{
		Size:         models.SizeMedium,
		PurchaseType: models.PurchaseSubscription,
		Frequency:    models.FrequencyWeekly,
	})
	require.NoError(t, err)
	require.Equal(t, 22.94, Currency(line))

	// Plus 2x base 24.99 with no customization.
	plain, err := e.LinePrice(24.99, nil)
	require.NoError(t, err)
	subtotal := plain.Mul(decimal.NewFromInt(2)).Add(line)
	require.Equal(t, 72.92, Currency(subtotal))
	require.Equal(t, 0.00, Currency(e.Shipping(subtotal)))
}

func TestScenarioSmallOneTime(t *testing.T) {
	e := NewEngine()

	line, err := e.LinePrice(10.00, &models.Customization{
		Size:         models.SizeSmall,
		PurchaseType: models.PurchaseOneTime,
	})
	require.NoError(t, err)
	require.Equal(t, 6.00, Currency(line))

	shipping := e.Shipping(line)
	require.Equal(t, 10.00, Currency(shipping))
	require.Equal(t, 16.00, Currency(line.Add(shipping)))
}

func TestVerifyCustomPrice(t *testing.T) {
	e := NewEngine()

	c := &models.Customization{
		Size:         models.SizeLarge,
		PurchaseType: models.PurchaseSubscription,
		Frequency:    models.FrequencyMonthly,
	}
	want, err := e.LinePrice(24.99, c)
	require.NoError(t, err)

	honest := c.Clone()
	honest.CustomPrice = fp(Currency(want))
	require.NoError(t, e.VerifyCustomPrice(24.99, honest))

	forged := c.Clone()
	forged.CustomPrice = fp(1.00)
	require.ErrorIs(t, e.VerifyCustomPrice(24.99, forged), ErrInvalidCustomization)

	require.NoError(t, e.VerifyCustomPrice(24.99, c))
	require.NoError(t, e.VerifyCustomPrice(24.99, nil))
}
