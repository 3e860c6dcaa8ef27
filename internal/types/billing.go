package types

import (
	"time"

	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/samber/lo"
)

// InvoiceType tags an invoice with the episode of care it bills for
type InvoiceType string

const (
	// InvoiceTypeOutpatient bills an OPD visit
	InvoiceTypeOutpatient InvoiceType = "outpatient"
	// InvoiceTypeInpatient bills an IPD admission
	InvoiceTypeInpatient InvoiceType = "inpatient"
	// InvoiceTypeComprehensive bills a mixed episode spanning both
	InvoiceTypeComprehensive InvoiceType = "comprehensive"
)

func (t InvoiceType) String() string {
	return string(t)
}

func (t InvoiceType) Validate() error {
	allowed := []InvoiceType{
		InvoiceTypeOutpatient,
		InvoiceTypeInpatient,
		InvoiceTypeComprehensive,
	}
	if !lo.Contains(allowed, t) {
		return ierr.NewError("invalid invoice type").
			WithHint("Invoice type must be outpatient, inpatient or comprehensive").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentStatus represents how much of an invoice has been settled
type PaymentStatus string

const (
	PaymentStatusUnpaid  PaymentStatus = "Unpaid"
	PaymentStatusPartial PaymentStatus = "Partial"
	PaymentStatusPaid    PaymentStatus = "Paid"
)

func (s PaymentStatus) String() string {
	return string(s)
}

func (s PaymentStatus) Validate() error {
	allowed := []PaymentStatus{
		PaymentStatusUnpaid,
		PaymentStatusPartial,
		PaymentStatusPaid,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid payment status").
			WithHint("Payment status must be Unpaid, Partial or Paid").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// PaymentMode is how a payment was collected. Free-form values from the
// original data exist, so validation only rejects the empty update case.
type PaymentMode string

const (
	PaymentModeCash      PaymentMode = "Cash"
	PaymentModeUPI       PaymentMode = "UPI"
	PaymentModeCard      PaymentMode = "Card"
	PaymentModeInsurance PaymentMode = "Insurance"
)

func (m PaymentMode) String() string {
	return string(m)
}

// LegacyInvoicePrefix is the fixed prefix of the pre-multi-tenant fiscal year
// numbering scheme. Retained for backward compatibility only.
const LegacyInvoicePrefix = "BL"

// DefaultTenantCode is used when a tenant has no billing settings row yet
const DefaultTenantCode = "HSP"

// FiscalYear returns the fiscal year a timestamp falls into, e.g. 2023 for
// the 2023/24 fiscal year starting April 1st.
func FiscalYear(t time.Time) int {
	if t.Month() < time.April {
		return t.Year() - 1
	}
	return t.Year()
}

// InvoiceFilter defines query filters for listing invoices
type InvoiceFilter struct {
	*QueryFilter
	PatientID     string        `json:"patient_id,omitempty" form:"patient_id"`
	InvoiceType   InvoiceType   `json:"invoice_type,omitempty" form:"invoice_type"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty" form:"payment_status"`
}

func NewInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitInvoiceFilter() *InvoiceFilter {
	return &InvoiceFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *InvoiceFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.InvoiceType != "" {
		if err := f.InvoiceType.Validate(); err != nil {
			return err
		}
	}
	if f.PaymentStatus != "" {
		if err := f.PaymentStatus.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *InvoiceFilter) GetLimit() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *InvoiceFilter) GetOffset() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *InvoiceFilter) IsUnlimited() bool {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}

// FinalInvoiceFilter defines query filters for listing final invoices
type FinalInvoiceFilter struct {
	*QueryFilter
	PatientID     string        `json:"patient_id,omitempty" form:"patient_id"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty" form:"payment_status"`
}

func NewFinalInvoiceFilter() *FinalInvoiceFilter {
	return &FinalInvoiceFilter{QueryFilter: NewDefaultQueryFilter()}
}

func NewNoLimitFinalInvoiceFilter() *FinalInvoiceFilter {
	return &FinalInvoiceFilter{QueryFilter: NewNoLimitQueryFilter()}
}

func (f *FinalInvoiceFilter) Validate() error {
	if f.QueryFilter != nil {
		if err := f.QueryFilter.Validate(); err != nil {
			return err
		}
	}
	if f.PaymentStatus != "" {
		if err := f.PaymentStatus.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (f *FinalInvoiceFilter) GetLimit() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetLimit()
	}
	return f.QueryFilter.GetLimit()
}

func (f *FinalInvoiceFilter) GetOffset() int {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().GetOffset()
	}
	return f.QueryFilter.GetOffset()
}

func (f *FinalInvoiceFilter) IsUnlimited() bool {
	if f.QueryFilter == nil {
		return NewDefaultQueryFilter().IsUnlimited()
	}
	return f.QueryFilter.IsUnlimited()
}
