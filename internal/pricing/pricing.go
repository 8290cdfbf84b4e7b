// Package pricing computes checkout quotes from cart lines: shipping,
// product-scoped coupon discounts, tax and the payable total.
package pricing

import (
	"errors"
	"strings"

	"github.com/angelmondragon/attire-backend/pkg/config"
	"github.com/angelmondragon/attire-backend/pkg/types"
	"github.com/shopspring/decimal"
)

// ErrCouponNotApplicable is returned when no cart line carries the entered code.
var ErrCouponNotApplicable = errors.New("coupon code is not valid for items in your cart")

var hundred = decimal.NewFromInt(100)

// Rules are the storefront pricing constants.
type Rules struct {
	// Shipping is free only when the subtotal is strictly greater than this.
	ShippingThreshold decimal.Decimal
	ShippingFee       decimal.Decimal
	TaxPercent        decimal.Decimal
}

func DefaultRules() Rules {
	return Rules{
		ShippingThreshold: decimal.NewFromInt(2000),
		ShippingFee:       decimal.NewFromInt(150),
		TaxPercent:        decimal.Zero,
	}
}

func RulesFromConfig(cfg config.CheckoutConfig) Rules {
	return Rules{
		ShippingThreshold: cfg.ShippingThreshold,
		ShippingFee:       cfg.ShippingFee,
		TaxPercent:        cfg.TaxPercent,
	}
}

// Quote is a fully priced cart.
type Quote struct {
	ItemCount int             `json:"itemCount"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Shipping  decimal.Decimal `json:"shipping"`
	Tax       decimal.Decimal `json:"tax"`
	Discount  decimal.Decimal `json:"discount"`
	Total     decimal.Decimal `json:"total"`
	Coupon    string          `json:"coupon,omitempty"`
}

// Count sums line quantities.
func Count(lines []types.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

// Subtotal sums price × quantity over all lines.
func Subtotal(lines []types.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

func (r Rules) Shipping(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(r.ShippingThreshold) {
		return decimal.Zero
	}
	return r.ShippingFee
}

func (r Rules) Tax(subtotal decimal.Decimal) decimal.Decimal {
	if r.TaxPercent.IsZero() {
		return decimal.Zero
	}
	return subtotal.Mul(r.TaxPercent).Div(hundred)
}

// NormalizeCoupon trims and lowercases a user entered code.
func NormalizeCoupon(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// MatchCoupon returns the normalized code when at least one line carries it.
func MatchCoupon(lines []types.CartLine, code string) (string, error) {
	normalized := NormalizeCoupon(code)
	if normalized == "" {
		return "", ErrCouponNotApplicable
	}
	for _, l := range lines {
		if NormalizeCoupon(l.CouponCode) == normalized {
			return normalized, nil
		}
	}
	return "", ErrCouponNotApplicable
}

// LineDiscount is the coupon discount one line earns. A special price below the
// line price wins; otherwise the extra discount percent applies, falling back
// to the product discount percent.
func LineDiscount(l types.CartLine) decimal.Decimal {
	qty := decimal.NewFromInt(int64(l.Quantity))
	if l.SpecialPrice != nil && l.SpecialPrice.LessThan(l.Price) {
		return l.Price.Sub(*l.SpecialPrice).Mul(qty)
	}
	percent := l.ExtraDiscount
	if percent <= 0 {
		percent = l.Discount
	}
	if percent <= 0 {
		return decimal.Zero
	}
	return l.Price.Mul(qty).Mul(decimal.NewFromInt(int64(percent))).Div(hundred)
}

// CouponDiscount sums LineDiscount over lines whose coupon code matches applied.
// Lines with another or no code contribute nothing.
func CouponDiscount(lines []types.CartLine, applied string) decimal.Decimal {
	applied = NormalizeCoupon(applied)
	if applied == "" {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, l := range lines {
		if NormalizeCoupon(l.CouponCode) == applied {
			sum = sum.Add(LineDiscount(l))
		}
	}
	return sum
}

// Quote prices the lines with an already applied coupon ("" for none).
// The total is clamped at zero.
func (r Rules) Quote(lines []types.CartLine, applied string) Quote {
	subtotal := Subtotal(lines)
	shipping := r.Shipping(subtotal)
	tax := r.Tax(subtotal)
	discount := CouponDiscount(lines, applied)

	total := subtotal.Add(shipping).Add(tax).Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Quote{
		ItemCount: Count(lines),
		Subtotal:  subtotal.Round(2),
		Shipping:  shipping.Round(2),
		Tax:       tax.Round(2),
		Discount:  discount.Round(2),
		Total:     total.Round(2),
		Coupon:    NormalizeCoupon(applied),
	}
}
