package fees

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompute(t *testing.T) {
	cases := []struct {
		name string
		args BreakdownArgs
		want Breakdown
	}{
		{
			// orderSubtotal = 10000+500+0 = 10500, orderTotal = 11340
			// platform = round(10500*0.05) = 525
			// US не переопределен: processing = round(11340*0.02)+20 = 227+20 = 247
			name: "US shop without ads",
			args: BreakdownArgs{
				ItemsSubtotalCents: 10000,
				ShippingCents:      500,
				GiftWrapCents:      0,
				TaxCents:           840,
				CountryCode:        "US",
				AdsEnabled:         false,
			},
			want: Breakdown{
				OrderSubtotalCents: 10500,
				OrderTotalCents:    11340,
				PlatformFeeCents:   525,
				ProcessingFeeCents: 247,
				AdFeeCents:         0,
				FeesTotalCents:     772,
				SellerPayoutCents:  10568,
				RuleLabel:          "DEFAULT",
				KnownCountry:       false,
			},
		},
		{
			// adFee = round(10500*0.15) = 1575
			name: "US shop with ads",
			args: BreakdownArgs{
				ItemsSubtotalCents: 10000,
				ShippingCents:      500,
				TaxCents:           840,
				CountryCode:        "US",
				AdsEnabled:         true,
			},
			want: Breakdown{
				OrderSubtotalCents: 10500,
				OrderTotalCents:    11340,
				PlatformFeeCents:   525,
				ProcessingFeeCents: 247,
				AdFeeCents:         1575,
				FeesTotalCents:     2347,
				SellerPayoutCents:  8993,
				RuleLabel:          "DEFAULT",
				KnownCountry:       false,
			},
		},
		{
			// неизвестная страна: rate 0.02, fixed 20
			// processing = round(11340*0.02)+20 = 227+20 = 247
			name: "unknown country falls back to default rule",
			args: BreakdownArgs{
				ItemsSubtotalCents: 10000,
				ShippingCents:      500,
				TaxCents:           840,
				CountryCode:        "BR",
			},
			want: Breakdown{
				OrderSubtotalCents: 10500,
				OrderTotalCents:    11340,
				PlatformFeeCents:   525,
				ProcessingFeeCents: 247,
				FeesTotalCents:     772,
				SellerPayoutCents:  10568,
				RuleLabel:          "DEFAULT",
				KnownCountry:       false,
			},
		},
		{
			// round-half-up: 1050*0.029 = 30.45 -> 30; 1000*0.05 = 50
			name: "GB shop small order",
			args: BreakdownArgs{
				ItemsSubtotalCents: 1000,
				ShippingCents:      0,
				TaxCents:           50,
				CountryCode:        "GB",
			},
			want: Breakdown{
				OrderSubtotalCents: 1000,
				OrderTotalCents:    1050,
				PlatformFeeCents:   50,
				ProcessingFeeCents: 51, // round(1050*0.025)+25 = 26+25
				FeesTotalCents:     101,
				SellerPayoutCents:  949,
				RuleLabel:          "GB",
				KnownCountry:       true,
			},
		},
		{
			// комиссии превышают сумму заказа: выплата не уходит в минус
			name: "payout is floored at zero",
			args: BreakdownArgs{
				ItemsSubtotalCents: 10,
				CountryCode:        "US",
				AdsEnabled:         true,
			},
			want: Breakdown{
				OrderSubtotalCents: 10,
				OrderTotalCents:    10,
				PlatformFeeCents:   1,  // round(10*0.05) = round(0.5)
				ProcessingFeeCents: 20, // round(10*0.02)+20 = 0+20
				AdFeeCents:         2,  // round(10*0.15) = round(1.5)
				FeesTotalCents:     23,
				SellerPayoutCents:  0,
				RuleLabel:          "DEFAULT",
				KnownCountry:       false,
			},
		},
		{
			name: "zero order",
			args: BreakdownArgs{
				CountryCode: "US",
			},
			want: Breakdown{
				ProcessingFeeCents: 20,
				FeesTotalCents:     20,
				SellerPayoutCents:  0,
				RuleLabel:          "DEFAULT",
				KnownCountry:       false,
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Compute(tc.args)
			assert.Equal(t, tc.want, got)

			// сумма комиссий всегда воспроизводима из компонентов
			assert.Equal(t, got.PlatformFeeCents+got.ProcessingFeeCents+got.AdFeeCents, got.FeesTotalCents)
		})
	}
}

func TestComputeAdFeeOnlyWhenEnabled(t *testing.T) {
	args := BreakdownArgs{
		ItemsSubtotalCents: 10000,
		CountryCode:        "DE",
	}

	withoutAds := Compute(args)
	args.AdsEnabled = true
	withAds := Compute(args)

	assert.Zero(t, withoutAds.AdFeeCents)
	assert.Equal(t, int64(1500), withAds.AdFeeCents)
	// остальные компоненты от рекламы не зависят
	assert.Equal(t, withoutAds.PlatformFeeCents, withAds.PlatformFeeCents)
	assert.Equal(t, withoutAds.ProcessingFeeCents, withAds.ProcessingFeeCents)
}

func TestRuleFor(t *testing.T) {
	rule, known := RuleFor("AU")
	require.True(t, known)
	assert.Equal(t, "AU", rule.Label)
	assert.InDelta(t, 0.0275, rule.Rate, 1e-9)
	assert.Equal(t, int64(30), rule.FixedCents)

	fallback, known := RuleFor("ZZ")
	require.False(t, known)
	assert.Equal(t, DefaultRuleLabel, fallback.Label)

	// внутренние платежи без надбавки
	domestic, known := RuleFor("US")
	require.False(t, known)
	assert.Equal(t, DefaultRuleLabel, domestic.Label)
	assert.InDelta(t, 0.02, domestic.Rate, 1e-9)
	assert.Equal(t, int64(20), domestic.FixedCents)
}

func TestRoundRateHalfUp(t *testing.T) {
	// 550*0.05 = 27.5 — округляется вверх
	assert.Equal(t, int64(28), roundRate(550, 0.05))
	// 549*0.05 = 27.45 — вниз
	assert.Equal(t, int64(27), roundRate(549, 0.05))
}
