package invoice

import (
	"github.com/medicore/medicore/internal/domain/billing"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/types"
	"github.com/shopspring/decimal"
)

// FinalInvoice is a consolidated, re-priced bill merging multiple source
// invoices for one patient. It references the ordered, immutable set of
// source invoice ids it was built from and snapshots the patient name at
// consolidation time. Final invoices are terminal: they are never themselves
// re-consolidated, though payment fields may still be updated.
type FinalInvoice struct {
	ID               string              `json:"id"`
	PatientID        string              `json:"patient_id"`
	InvoiceNumber    string              `json:"invoice_number"`
	SourceInvoiceIDs []string            `json:"source_invoice_ids"`
	LineItems        []LineItem          `json:"line_items"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	DiscountPercent  decimal.Decimal     `json:"discount_percent"`
	DiscountAmount   decimal.Decimal     `json:"discount_amount"`
	TaxPercent       decimal.Decimal     `json:"tax_percent"`
	TaxAmount        decimal.Decimal     `json:"tax_amount"`
	GrandTotal       decimal.Decimal     `json:"grand_total"`
	PaymentStatus    types.PaymentStatus `json:"payment_status"`
	PaymentMode      types.PaymentMode   `json:"payment_mode,omitempty"`
	PaidAmount       decimal.Decimal     `json:"paid_amount"`
	PatientName      string              `json:"patient_name"`

	types.BaseModel
}

// ApplyAmounts copies a reconciled amount breakdown onto the final invoice
func (f *FinalInvoice) ApplyAmounts(a billing.Amounts) {
	f.Subtotal = a.Subtotal
	f.DiscountPercent = a.DiscountPercent
	f.DiscountAmount = a.DiscountAmount
	f.TaxPercent = a.TaxPercent
	f.TaxAmount = a.TaxAmount
	f.GrandTotal = a.GrandTotal
}

func (f *FinalInvoice) Validate() error {
	if len(f.SourceInvoiceIDs) == 0 {
		return ierr.NewError("final invoice validation failed").
			WithHint("A final invoice must reference at least one source invoice").
			Mark(ierr.ErrValidation)
	}

	if err := f.PaymentStatus.Validate(); err != nil {
		return err
	}

	if f.Subtotal.IsNegative() {
		return ierr.NewError("final invoice validation failed").
			WithHint("Subtotal must be non-negative").
			Mark(ierr.ErrValidation)
	}

	if f.DiscountAmount.IsNegative() || f.TaxAmount.IsNegative() || f.GrandTotal.IsNegative() {
		return ierr.NewError("final invoice validation failed").
			WithHint("Monetary amounts must be non-negative").
			Mark(ierr.ErrValidation)
	}

	if f.DiscountAmount.GreaterThan(f.Subtotal) {
		return ierr.NewError("final invoice validation failed").
			WithHint("Discount cannot exceed subtotal").
			Mark(ierr.ErrValidation)
	}

	if f.PaidAmount.IsNegative() {
		return ierr.NewError("final invoice validation failed").
			WithHint("Paid amount must be non-negative").
			Mark(ierr.ErrValidation)
	}

	return nil
}
