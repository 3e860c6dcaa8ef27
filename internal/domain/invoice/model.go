package invoice

import (
	"github.com/medicore/medicore/internal/domain/billing"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/types"
	"github.com/shopspring/decimal"
)

// Invoice is a single priced bill for one episode of care. It is created once,
// may have its payment fields or line items updated, and is read-only input to
// consolidation. Invoices are never deleted.
type Invoice struct {
	ID              string              `json:"id"`
	PatientID       string              `json:"patient_id"`
	InvoiceType     types.InvoiceType   `json:"invoice_type"`
	InvoiceNumber   string              `json:"invoice_number"`
	LineItems       []LineItem          `json:"line_items"`
	Subtotal        decimal.Decimal     `json:"subtotal"`
	DiscountPercent decimal.Decimal     `json:"discount_percent"`
	DiscountAmount  decimal.Decimal     `json:"discount_amount"`
	TaxPercent      decimal.Decimal     `json:"tax_percent"`
	TaxAmount       decimal.Decimal     `json:"tax_amount"`
	GrandTotal      decimal.Decimal     `json:"grand_total"`
	PaymentStatus   types.PaymentStatus `json:"payment_status"`
	PaymentMode     types.PaymentMode   `json:"payment_mode,omitempty"`
	PaidAmount      decimal.Decimal     `json:"paid_amount"`

	// Enriched on reads, never persisted on the invoice row
	PatientName string `json:"patient_name,omitempty"`
	PatientCode string `json:"patient_code,omitempty"`

	types.BaseModel
}

// ApplyAmounts copies a reconciled amount breakdown onto the invoice
func (i *Invoice) ApplyAmounts(a billing.Amounts) {
	i.Subtotal = a.Subtotal
	i.DiscountPercent = a.DiscountPercent
	i.DiscountAmount = a.DiscountAmount
	i.TaxPercent = a.TaxPercent
	i.TaxAmount = a.TaxAmount
	i.GrandTotal = a.GrandTotal
}

func (i *Invoice) Validate() error {
	if err := i.InvoiceType.Validate(); err != nil {
		return err
	}

	if err := i.PaymentStatus.Validate(); err != nil {
		return err
	}

	if i.Subtotal.IsNegative() {
		return ierr.NewError("invoice validation failed").
			WithHint("Subtotal must be non-negative").
			Mark(ierr.ErrValidation)
	}

	if i.DiscountAmount.IsNegative() || i.TaxAmount.IsNegative() || i.GrandTotal.IsNegative() {
		return ierr.NewError("invoice validation failed").
			WithHint("Monetary amounts must be non-negative").
			Mark(ierr.ErrValidation)
	}

	if i.DiscountAmount.GreaterThan(i.Subtotal) {
		return ierr.NewError("invoice validation failed").
			WithHint("Discount cannot exceed subtotal").
			Mark(ierr.ErrValidation)
	}

	if i.PaidAmount.IsNegative() {
		return ierr.NewError("invoice validation failed").
			WithHint("Paid amount must be non-negative").
			Mark(ierr.ErrValidation)
	}

	for idx := range i.LineItems {
		if err := i.LineItems[idx].Validate(); err != nil {
			return err
		}
	}

	return nil
}
