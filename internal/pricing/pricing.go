// Package pricing holds the storefront money rules: the flat-rate
// shipping table, the free shipping threshold, VAT and the online
// payment split. Everything is pure decimal arithmetic; nothing here
// touches storage or the network.
package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/dehaan/tannery/internal/domain"
)

// Defaults match the published storefront rates.
var (
	DefaultFreeShippingThreshold = decimal.NewFromFloat(50.00)
	DefaultVATRate               = decimal.NewFromFloat(0.20)
)

type rate struct {
	cost     decimal.Decimal
	delivery string
}

// Flat-rate shipping table. Standard is the fallback for any method
// the engine does not recognize.
var shippingRates = map[domain.ShippingMethod]rate{
	domain.ShippingStandard:      {decimal.NewFromFloat(5.99), "5-7 business days"},
	domain.ShippingExpress:       {decimal.NewFromFloat(9.99), "2-3 business days"},
	domain.ShippingNextDay:       {decimal.NewFromFloat(14.99), "Next business day"},
	domain.ShippingInternational: {decimal.NewFromFloat(24.99), "10-15 business days"},
}

var two = decimal.NewFromInt(2)

// Engine evaluates the pricing rules with a configured free shipping
// threshold and VAT rate.
type Engine struct {
	freeShippingThreshold decimal.Decimal
	vatRate               decimal.Decimal
}

// NewEngine builds an engine with the given threshold and VAT rate.
// The values are taken as-is; defaulting for unset configuration lives
// in the config layer, so a configured rate of zero means zero.
func NewEngine(freeShippingThreshold, vatRate decimal.Decimal) *Engine {
	return &Engine{
		freeShippingThreshold: freeShippingThreshold,
		vatRate:               vatRate,
	}
}

// NewDefaultEngine builds an engine with the published storefront
// rates.
func NewDefaultEngine() *Engine {
	return NewEngine(DefaultFreeShippingThreshold, DefaultVATRate)
}

// ShippingCost returns the flat rate for the method. Standard shipping
// is free once the subtotal reaches the threshold; every other method,
// including unrecognized ones, always charges its rate. Only the
// literal standard method qualifies for the waiver.
func (e *Engine) ShippingCost(method domain.ShippingMethod, subtotal decimal.Decimal) decimal.Decimal {
	if method == domain.ShippingStandard && subtotal.GreaterThanOrEqual(e.freeShippingThreshold) {
		return decimal.Zero
	}
	r, ok := shippingRates[method]
	if !ok {
		r = shippingRates[domain.ShippingStandard]
	}
	return r.cost
}

// EstimatedDelivery returns the display window for the method.
// Unknown methods fall back to standard.
func (e *Engine) EstimatedDelivery(method domain.ShippingMethod) string {
	if r, ok := shippingRates[method]; ok {
		return r.delivery
	}
	return shippingRates[domain.ShippingStandard].delivery
}

// VAT returns the tax on goods plus shipping, unrounded. Callers round
// to two places when a component is persisted or displayed.
func (e *Engine) VAT(subtotal, shipping decimal.Decimal) decimal.Decimal {
	return subtotal.Add(shipping).Mul(e.vatRate)
}

// Total sums the three stored components. No rounding happens here;
// the inputs are already the two-place values being persisted, so the
// stored total is exactly their sum.
func Total(subtotal, shipping, vat decimal.Decimal) decimal.Decimal {
	return subtotal.Add(shipping).Add(vat)
}

// SplitPayment divides the total between the online charge and the
// balance due on delivery. Full payment puts everything online. The
// 50% deposit rounds half to even at two places and the remainder is
// computed by subtraction, so the two parts always rebuild the total
// exactly.
func SplitPayment(total decimal.Decimal, method domain.PaymentMethod) (online, remaining decimal.Decimal) {
	if method == domain.PaymentPartial {
		online = total.Div(two).RoundBank(2)
		return online, total.Sub(online)
	}
	return total, decimal.Zero
}

// Pence converts a decimal pound amount to integer pence for the
// payment provider.
func Pence(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// Quote is the priced preview of one shipping method for a given cart
// subtotal.
type Quote struct {
	Method            domain.ShippingMethod `json:"method"`
	ShippingCost      decimal.Decimal       `json:"shipping_cost"`
	VAT               decimal.Decimal       `json:"vat"`
	Total             decimal.Decimal       `json:"total"`
	EstimatedDelivery string                `json:"estimated_delivery"`
}

// Quote prices a single shipping method for the subtotal, with the
// VAT and total rounded the way an order would store them.
func (e *Engine) Quote(method domain.ShippingMethod, subtotal decimal.Decimal) Quote {
	shipping := e.ShippingCost(method, subtotal)
	vat := e.VAT(subtotal, shipping).Round(2)
	return Quote{
		Method:            method,
		ShippingCost:      shipping,
		VAT:               vat,
		Total:             Total(subtotal, shipping, vat),
		EstimatedDelivery: e.EstimatedDelivery(method),
	}
}

// QuoteAll prices every shipping method for the subtotal, cheapest
// first.
func (e *Engine) QuoteAll(subtotal decimal.Decimal) []Quote {
	methods := []domain.ShippingMethod{
		domain.ShippingStandard,
		domain.ShippingExpress,
		domain.ShippingNextDay,
		domain.ShippingInternational,
	}
	quotes := make([]Quote, 0, len(methods))
	for _, m := range methods {
		quotes = append(quotes, e.Quote(m, subtotal))
	}
	return quotes
}
