package dto

import (
	"github.com/medicore/medicore/internal/domain/billing"
	"github.com/medicore/medicore/internal/domain/invoice"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/types"
	"github.com/medicore/medicore/internal/validator"
	"github.com/shopspring/decimal"
)

// CreateInvoiceLineItemRequest represents a single charge on a new invoice
type CreateInvoiceLineItemRequest struct {
	// name is the human-readable charge description, e.g. "Consultation"
	Name string `json:"name" validate:"required"`

	// category groups charges, e.g. "OPD", "Lab", "Pharmacy"
	Category string `json:"category,omitempty"`

	// quantity of units charged
	Quantity decimal.Decimal `json:"quantity" validate:"required"`

	// unit_price is the price per unit
	UnitPrice decimal.Decimal `json:"unit_price" validate:"required"`

	// total overrides quantity * unit_price when set; derived otherwise
	Total *decimal.Decimal `json:"total,omitempty"`
}

func (r *CreateInvoiceLineItemRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if r.Quantity.IsNegative() || r.UnitPrice.IsNegative() {
		return ierr.NewError("invalid line item").
			WithHint("Line item quantity and unit price must be non-negative").
			WithReportableDetails(map[string]any{
				"name": r.Name,
			}).
			Mark(ierr.ErrValidation)
	}

	if r.Total != nil && r.Total.IsNegative() {
		return ierr.NewError("invalid line item").
			WithHint("Line item total must be non-negative").
			WithReportableDetails(map[string]any{
				"name": r.Name,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

// ToLineItem converts the request item to its domain form, deriving the total
// from quantity and unit price when not supplied.
func (r *CreateInvoiceLineItemRequest) ToLineItem() invoice.LineItem {
	total := r.Quantity.Mul(r.UnitPrice)
	if r.Total != nil {
		total = *r.Total
	}
	return invoice.LineItem{
		Name:      r.Name,
		Category:  r.Category,
		Quantity:  r.Quantity,
		UnitPrice: r.UnitPrice,
		Total:     total.Round(2),
	}
}

// CreateInvoiceRequest represents the request payload for creating a new invoice
type CreateInvoiceRequest struct {
	// patient_id is the unique identifier of the patient this invoice bills
	PatientID string `json:"patient_id" validate:"required"`

	// invoice_type indicates the episode of care (outpatient, inpatient, comprehensive)
	InvoiceType types.InvoiceType `json:"invoice_type" validate:"required"`

	// line_items are the individual charges on this invoice
	LineItems []CreateInvoiceLineItemRequest `json:"line_items" validate:"required,min=1"`

	// discount_percent is the percent side of the discount specification
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`

	// discount_amount is the absolute side of the discount specification. It is
	// authoritative only when positive and no percent is supplied.
	DiscountAmount *decimal.Decimal `json:"discount_amount,omitempty"`

	// tax_percent applies to the post-discount amount
	TaxPercent *decimal.Decimal `json:"tax_percent,omitempty"`

	// payment_status defaults to Unpaid when omitted
	PaymentStatus *types.PaymentStatus `json:"payment_status,omitempty"`

	// payment_mode records how payment was collected, when already known
	PaymentMode types.PaymentMode `json:"payment_mode,omitempty"`

	// paid_amount records any amount already collected
	PaidAmount *decimal.Decimal `json:"paid_amount,omitempty"`
}

func (r *CreateInvoiceRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if err := r.InvoiceType.Validate(); err != nil {
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

	if r.PaidAmount != nil && r.PaidAmount.IsNegative() {
		return ierr.NewError("invalid paid amount").
			WithHint("Paid amount must be non-negative").
			Mark(ierr.ErrValidation)
	}

	for i := range r.LineItems {
		if err := r.LineItems[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Discount resolves the request's percent/amount pair into one variant
func (r *CreateInvoiceRequest) Discount() billing.Discount {
	return billing.ResolveDiscount(r.DiscountPercent, r.DiscountAmount)
}

// GetTaxPercent returns the tax percent, zero when omitted
func (r *CreateInvoiceRequest) GetTaxPercent() decimal.Decimal {
	if r.TaxPercent == nil {
		return decimal.Zero
	}
	return *r.TaxPercent
}

// UpdateInvoiceRequest carries the mutable invoice fields. The invoice number
// is never reissued on update; amounts are recomputed from the updated inputs.
type UpdateInvoiceRequest struct {
	// line_items replaces the full ordered charge collection when set
	LineItems []CreateInvoiceLineItemRequest `json:"line_items,omitempty"`

	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	DiscountAmount  *decimal.Decimal `json:"discount_amount,omitempty"`
	TaxPercent      *decimal.Decimal `json:"tax_percent,omitempty"`

	// payment fields may ride along with a pricing update
	PaymentStatus *types.PaymentStatus `json:"payment_status,omitempty"`
	PaymentMode   types.PaymentMode    `json:"payment_mode,omitempty"`
	PaidAmount    *decimal.Decimal     `json:"paid_amount,omitempty"`
}

func (r *UpdateInvoiceRequest) Validate() error {
	if len(r.LineItems) == 0 && r.DiscountPercent == nil && r.DiscountAmount == nil && r.TaxPercent == nil &&
		r.PaymentStatus == nil && r.PaymentMode == "" && r.PaidAmount == nil {
		return ierr.NewError("empty update").
			WithHint("At least one field must be provided").
			Mark(ierr.ErrValidation)
	}

	if r.PaymentStatus != nil {
		if err := r.PaymentStatus.Validate(); err != nil {
			return err
		}
	}

	if r.PaidAmount != nil && r.PaidAmount.IsNegative() {
		return ierr.NewError("invalid paid amount").
			WithHint("Paid amount must be non-negative").
			Mark(ierr.ErrValidation)
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

	for i := range r.LineItems {
		if err := r.LineItems[i].Validate(); err != nil {
			return err
		}
	}

	return nil
}

// UpdatePaymentRequest records a payment against an invoice or final invoice
type UpdatePaymentRequest struct {
	// payment_status is the new settlement state
	PaymentStatus types.PaymentStatus `json:"payment_status" validate:"required"`

	// payment_mode records how the payment was collected
	PaymentMode types.PaymentMode `json:"payment_mode,omitempty"`

	// paid_amount is the cumulative amount collected so far
	PaidAmount *decimal.Decimal `json:"paid_amount,omitempty"`
}

func (r *UpdatePaymentRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if err := r.PaymentStatus.Validate(); err != nil {
		return err
	}

	if r.PaidAmount != nil && r.PaidAmount.IsNegative() {
		return ierr.NewError("invalid paid amount").
			WithHint("Paid amount must be non-negative").
			Mark(ierr.ErrValidation)
	}

	return nil
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	*invoice.Invoice
}

func NewInvoiceResponse(inv *invoice.Invoice) *InvoiceResponse {
	return &InvoiceResponse{Invoice: inv}
}

// ListInvoicesResponse represents a paginated list of invoices
type ListInvoicesResponse struct {
	Items      []*InvoiceResponse       `json:"items"`
	Pagination types.PaginationResponse `json:"pagination"`
}
