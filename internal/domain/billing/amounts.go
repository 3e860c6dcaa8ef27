package billing

import (
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// discountKind tags which side of the percent/amount duality is authoritative
type discountKind int

const (
	discountByPercent discountKind = iota
	discountByAmount
)

// Discount is an explicit two-variant representation of a discount
// specification: either percent driven or amount driven. The historical
// encoding relied on null-vs-zero conventions, which this type replaces.
type Discount struct {
	kind  discountKind
	value decimal.Decimal
}

// PercentDiscount returns a percent driven discount
func PercentDiscount(percent decimal.Decimal) Discount {
	return Discount{kind: discountByPercent, value: percent}
}

// AmountDiscount returns an amount driven discount
func AmountDiscount(amount decimal.Decimal) Discount {
	return Discount{kind: discountByAmount, value: amount}
}

// NoDiscount returns a zero percent discount
func NoDiscount() Discount {
	return Discount{kind: discountByPercent, value: decimal.Zero}
}

// ResolveDiscount reconciles the optional percent/amount pair from a request
// into one variant. An amount greater than zero with no percent supplied is
// amount driven; in every other case the percent is authoritative.
func ResolveDiscount(percent, amount *decimal.Decimal) Discount {
	p := decimal.Zero
	if percent != nil {
		p = *percent
	}
	if amount != nil && amount.IsPositive() && p.IsZero() {
		return AmountDiscount(*amount)
	}
	return PercentDiscount(p)
}

// IsAmountDriven reports whether the absolute amount is the authoritative side
func (d Discount) IsAmountDriven() bool {
	return d.kind == discountByAmount
}

// Value returns the raw percent or amount depending on the variant
func (d Discount) Value() decimal.Decimal {
	return d.value
}

// Amounts is a fully reconciled invoice amount breakdown. All fields are
// rounded to 2 decimal places.
type Amounts struct {
	Subtotal        decimal.Decimal
	DiscountPercent decimal.Decimal
	DiscountAmount  decimal.Decimal
	TaxPercent      decimal.Decimal
	TaxAmount       decimal.Decimal
	GrandTotal      decimal.Decimal
}

// Calculate turns a subtotal, a discount specification and a tax percent into
// a reconciled amount breakdown. Tax always applies to the post-discount
// amount. The function is total over its domain: it assumes the caller has
// already rejected negative inputs and discounts exceeding the subtotal, and
// it never fails.
//
// Reconciliation derives the missing side of the discount duality:
// amount driven derives percent = amount / subtotal * 100 (0 for a zero
// subtotal), percent driven derives amount = subtotal * percent / 100.
func Calculate(subtotal decimal.Decimal, discount Discount, taxPercent decimal.Decimal) Amounts {
	var discountPercent, discountAmount decimal.Decimal

	if discount.IsAmountDriven() {
		discountAmount = discount.Value()
		if subtotal.IsPositive() {
			discountPercent = discountAmount.Div(subtotal).Mul(hundred)
		}
	} else {
		discountPercent = discount.Value()
		discountAmount = subtotal.Mul(discountPercent).Div(hundred)
	}

	taxAmount := subtotal.Sub(discountAmount).Mul(taxPercent).Div(hundred)
	grandTotal := subtotal.Sub(discountAmount).Add(taxAmount)

	// Round half-up to 2 decimal places. decimal.Round rounds half away from
	// zero, which is half-up for the non-negative domain handled here.
	return Amounts{
		Subtotal:        subtotal.Round(2),
		DiscountPercent: discountPercent.Round(2),
		DiscountAmount:  discountAmount.Round(2),
		TaxPercent:      taxPercent.Round(2),
		TaxAmount:       taxAmount.Round(2),
		GrandTotal:      grandTotal.Round(2),
	}
}
