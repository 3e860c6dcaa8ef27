package billing

import (
	"testing"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculatePercentDriven(t *testing.T) {
	tests := []struct {
		name            string
		subtotal        string
		discountPercent string
		taxPercent      string
		wantDiscountAmt string
		wantTaxAmt      string
		wantGrandTotal  string
	}{
		{
			name:            "ten percent discount with thirteen percent tax",
			subtotal:        "1500",
			discountPercent: "10",
			taxPercent:      "13",
			wantDiscountAmt: "150",
			wantTaxAmt:      "175.5",
			wantGrandTotal:  "1525.5",
		},
		{
			name:            "no discount no tax",
			subtotal:        "250.50",
			discountPercent: "0",
			taxPercent:      "0",
			wantDiscountAmt: "0",
			wantTaxAmt:      "0",
			wantGrandTotal:  "250.50",
		},
		{
			name:            "full discount",
			subtotal:        "800",
			discountPercent: "100",
			taxPercent:      "18",
			wantDiscountAmt: "800",
			wantTaxAmt:      "0",
			wantGrandTotal:  "0",
		},
		{
			name:            "zero subtotal",
			subtotal:        "0",
			discountPercent: "25",
			taxPercent:      "13",
			wantDiscountAmt: "0",
			wantTaxAmt:      "0",
			wantGrandTotal:  "0",
		},
		{
			name:            "fractional amounts round half up",
			subtotal:        "99.99",
			discountPercent: "7.5",
			taxPercent:      "5",
			wantDiscountAmt: "7.5",   // 7.49925 rounds up
			wantTaxAmt:      "4.62",  // 4.6245...
			wantGrandTotal:  "97.12", // 97.116...
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(dec(tt.subtotal), PercentDiscount(dec(tt.discountPercent)), dec(tt.taxPercent))

			assert.True(t, got.DiscountAmount.Equal(dec(tt.wantDiscountAmt)),
				"discount amount: got %s want %s", got.DiscountAmount, tt.wantDiscountAmt)
			assert.True(t, got.TaxAmount.Equal(dec(tt.wantTaxAmt)),
				"tax amount: got %s want %s", got.TaxAmount, tt.wantTaxAmt)
			assert.True(t, got.GrandTotal.Equal(dec(tt.wantGrandTotal)),
				"grand total: got %s want %s", got.GrandTotal, tt.wantGrandTotal)
		})
	}
}

func TestCalculateAmountDriven(t *testing.T) {
	got := Calculate(dec("1000"), AmountDiscount(dec("250")), dec("13"))

	assert.True(t, got.DiscountPercent.Equal(dec("25")))
	assert.True(t, got.DiscountAmount.Equal(dec("250")))
	assert.True(t, got.TaxAmount.Equal(dec("97.5")))
	assert.True(t, got.GrandTotal.Equal(dec("847.5")))
}

func TestCalculateAmountDrivenZeroSubtotal(t *testing.T) {
	got := Calculate(decimal.Zero, AmountDiscount(decimal.Zero), dec("13"))

	assert.True(t, got.DiscountPercent.IsZero())
	assert.True(t, got.DiscountAmount.IsZero())
	assert.True(t, got.GrandTotal.IsZero())
}

// Percent driven and the equivalent amount driven discount must price to the
// same grand total for any subtotal and percent.
func TestCalculatePercentAmountEquivalence(t *testing.T) {
	subtotals := []string{"0", "1", "99.99", "1000", "1500", "123456.78"}
	percents := []string{"0", "5", "10", "12.5", "50", "100"}
	tax := dec("13")

	for _, s := range subtotals {
		for _, p := range percents {
			subtotal := dec(s)
			percent := dec(p)
			amount := subtotal.Mul(percent).Div(decimal.NewFromInt(100))

			byPercent := Calculate(subtotal, PercentDiscount(percent), tax)
			byAmount := Calculate(subtotal, ResolveDiscount(nil, lo.ToPtr(amount)), tax)

			assert.True(t, byPercent.GrandTotal.Equal(byAmount.GrandTotal),
				"subtotal=%s percent=%s: %s != %s", s, p, byPercent.GrandTotal, byAmount.GrandTotal)
			assert.False(t, byPercent.GrandTotal.IsNegative())
			assert.True(t, byPercent.DiscountAmount.LessThanOrEqual(byPercent.Subtotal))
		}
	}
}

func TestResolveDiscount(t *testing.T) {
	t.Run("amount wins when percent absent", func(t *testing.T) {
		d := ResolveDiscount(nil, lo.ToPtr(dec("50")))
		assert.True(t, d.IsAmountDriven())
		assert.True(t, d.Value().Equal(dec("50")))
	})

	t.Run("percent wins when both supplied", func(t *testing.T) {
		d := ResolveDiscount(lo.ToPtr(dec("10")), lo.ToPtr(dec("50")))
		assert.False(t, d.IsAmountDriven())
		assert.True(t, d.Value().Equal(dec("10")))
	})

	t.Run("zero amount is percent driven", func(t *testing.T) {
		d := ResolveDiscount(nil, lo.ToPtr(decimal.Zero))
		assert.False(t, d.IsAmountDriven())
		assert.True(t, d.Value().IsZero())
	})

	t.Run("nothing supplied means no discount", func(t *testing.T) {
		d := ResolveDiscount(nil, nil)
		assert.False(t, d.IsAmountDriven())
		assert.True(t, d.Value().IsZero())
	})
}
