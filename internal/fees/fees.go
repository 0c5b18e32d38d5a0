// Package fees чистый расчет разбивки комиссий заказа. Без I/O.
package fees

import "github.com/shopspring/decimal"

const (
	// PlatformFeeRate комиссия площадки от промежуточной суммы заказа.
	PlatformFeeRate = 0.05
	// AdFeeRate рекламная комиссия, применяется только при включенной рекламе.
	AdFeeRate = 0.15
)

// DefaultRuleLabel метка правила обработки платежей для неизвестных стран.
const DefaultRuleLabel = "DEFAULT"

// CountryRule правило расчета комиссии платежного провайдера для страны:
// процент от полной суммы заказа плюс фиксированная часть в центах.
type CountryRule struct {
	Label      string
	Rate       float64
	FixedCents int64
}

var defaultRule = CountryRule{Label: DefaultRuleLabel, Rate: 0.02, FixedCents: 20}

// Надбавки только для трансграничных стран; внутренние платежи (US, CA) и
// неизвестные коды идут по defaultRule.
var countryRules = map[string]CountryRule{
	"GB": {Label: "GB", Rate: 0.025, FixedCents: 25},
	"AU": {Label: "AU", Rate: 0.0275, FixedCents: 30},
	"DE": {Label: "DE", Rate: 0.025, FixedCents: 25},
	"FR": {Label: "FR", Rate: 0.025, FixedCents: 25},
}

// RuleFor возвращает правило для кода страны. Второе значение false означает,
// что код неизвестен и вернулось правило по умолчанию — вызывающая сторона
// решает, логировать ли фолбэк.
func RuleFor(countryCode string) (CountryRule, bool) {
	if rule, ok := countryRules[countryCode]; ok {
		return rule, true
	}
	return defaultRule, false
}

type BreakdownArgs struct {
	ItemsSubtotalCents int64
	ShippingCents      int64
	GiftWrapCents      int64
	TaxCents           int64
	CountryCode        string
	AdsEnabled         bool
}

type Breakdown struct {
	OrderSubtotalCents int64
	OrderTotalCents    int64
	PlatformFeeCents   int64
	ProcessingFeeCents int64
	AdFeeCents         int64
	FeesTotalCents     int64
	SellerPayoutCents  int64
	RuleLabel          string
	// KnownCountry false если CountryCode не нашелся и применилось правило DEFAULT.
	KnownCountry bool
}

// Compute считает разбивку комиссий по спецификации биллинга:
//   - platformFee = round(orderSubtotal * 5%)
//   - adFee = round(orderSubtotal * 15%) при включенной рекламе, иначе 0
//   - processingFee = round(orderTotal * rate) + fixed по правилу страны
//
// Каждая процентная комиссия округляется до целого цента независимо, единым
// правилом round-half-up, поэтому FeesTotalCents всегда воспроизводим из частей.
func Compute(args BreakdownArgs) Breakdown {
	orderSubtotal := args.ItemsSubtotalCents + args.ShippingCents + args.GiftWrapCents
	orderTotal := orderSubtotal + args.TaxCents

	rule, known := RuleFor(args.CountryCode)

	platformFee := roundRate(orderSubtotal, PlatformFeeRate)

	var adFee int64
	if args.AdsEnabled {
		adFee = roundRate(orderSubtotal, AdFeeRate)
	}

	processingFee := roundRate(orderTotal, rule.Rate) + rule.FixedCents

	feesTotal := platformFee + adFee + processingFee

	payout := orderTotal - feesTotal
	if payout < 0 {
		payout = 0
	}

	return Breakdown{
		OrderSubtotalCents: orderSubtotal,
		OrderTotalCents:    orderTotal,
		PlatformFeeCents:   platformFee,
		ProcessingFeeCents: processingFee,
		AdFeeCents:         adFee,
		FeesTotalCents:     feesTotal,
		SellerPayoutCents:  payout,
		RuleLabel:          rule.Label,
		KnownCountry:       known,
	}
}

// roundRate округляет amount*rate до целого цента (round-half-up для
// неотрицательных сумм).
func roundRate(amountCents int64, rate float64) int64 {
	return decimal.NewFromInt(amountCents).
		Mul(decimal.NewFromFloat(rate)).
		Round(0).
		IntPart()
}
