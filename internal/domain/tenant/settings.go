package tenant

import (
	"time"

	ierr "github.com/medicore/medicore/internal/errors"
)

// BillingSettings holds a tenant's invoice numbering state: a short
// alphabetic code embedded in formatted invoice numbers and the monotonically
// increasing last issued number. This row is the only shared mutable state
// the sequence allocator serializes against.
type BillingSettings struct {
	ID                string    `json:"id"`
	TenantID          string    `json:"tenant_id"`
	TenantCode        string    `json:"tenant_code"`
	LastInvoiceNumber int64     `json:"last_invoice_number"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

func (s *BillingSettings) Validate() error {
	if s.TenantID == "" {
		return ierr.NewError("billing settings validation failed").
			WithHint("Tenant id is required").
			Mark(ierr.ErrValidation)
	}

	if s.TenantCode == "" {
		return ierr.NewError("billing settings validation failed").
			WithHint("Tenant code is required").
			Mark(ierr.ErrValidation)
	}

	if s.LastInvoiceNumber < 0 {
		return ierr.NewError("billing settings validation failed").
			WithHint("Invoice counter cannot be negative").
			Mark(ierr.ErrValidation)
	}

	return nil
}
