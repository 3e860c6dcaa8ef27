package dto

import (
	"github.com/medicore/medicore/internal/domain/billing"
	"github.com/medicore/medicore/internal/domain/invoice"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/types"
	"github.com/medicore/medicore/internal/validator"
	"github.com/shopspring/decimal"
)

// ConsolidateInvoicesRequest merges all of a patient's invoices into one final
// invoice with a fresh discount and tax specification.
type ConsolidateInvoicesRequest struct {
	// patient_id identifies whose invoices to consolidate
	PatientID string `json:"patient_id" validate:"required"`

	// discount_percent is the percent side of the fresh discount specification.
	// Source invoice discounts do not carry over.
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`

	// discount_amount is the absolute side of the fresh discount specification
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`

	// tax_percent applies to the post-discount consolidated amount
	TaxPercent *decimal.Decimal `json:"tax_percent,omitempty"`

	// payment_status defaults to Unpaid when omitted
	PaymentStatus *types.PaymentStatus `json:"payment_status,omitempty"`

	// payment_mode records how payment was collected, when already known
	PaymentMode types.PaymentMode `json:"payment_mode,omitempty"`
}

func (r *ConsolidateInvoicesRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if r.PaymentStatus != nil {
		if err := r.PaymentStatus.Validate(); err != nil {
			return err
		}
	}

	if r.DiscountPercent != nil && r.DiscountPercent.IsNegative() {
		return ierr.NewError("invalid discount").
			WithHint("Discount percent must be non-negative").
			Mark(ierr.ErrValidation)
	}

	if r.DiscountAmount != nil && r.DiscountAmount.IsNegative() {
		return ierr.NewError("invalid discount").
			WithHint("Discount amount must be non-negative").
			Mark(ierr.ErrValidation)
	}

	if r.TaxPercent != nil && r.TaxPercent.IsNegative() {
		return ierr.NewError("invalid tax").
			WithHint("Tax percent must be non-negative").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// Discount resolves the request's percent/amount pair into one variant
func (r *ConsolidateInvoicesRequest) Discount() billing.Discount {
	return billing.ResolveDiscount(r.DiscountPercent, r.DiscountAmount)
}

// GetTaxPercent returns the tax percent, zero when omitted
func (r *ConsolidateInvoicesRequest) GetTaxPercent() decimal.Decimal {
	if r.TaxPercent == nil {
		return decimal.Zero
	}
	return *r.TaxPercent
}

// FinalInvoiceResponse represents a consolidated final invoice in API responses
type FinalInvoiceResponse struct {
	*invoice.FinalInvoice
}

func NewFinalInvoiceResponse(fi *invoice.FinalInvoice) *FinalInvoiceResponse {
	return &FinalInvoiceResponse{FinalInvoice: fi}
}

// ListFinalInvoicesResponse represents a paginated list of final invoices
type ListFinalInvoicesResponse struct {
	Items      []*FinalInvoiceResponse  `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}

// BillingSummaryResponse is the dashboard rollup of a tenant's billing state
type BillingSummaryResponse struct {
	TotalInvoices   int             `json:"total_invoices"`
	UnpaidInvoices  int             `json:"unpaid_invoices"`
	PartialInvoices int             `json:"partial_invoices"`
	PaidInvoices    int             `json:"paid_invoices"`
	PaidRevenue     decimal.Decimal `json:"paid_revenue"`
	PendingAmount   decimal.Decimal `json:"pending_amount"`
}
