package invoice

import (
	"context"

	"github.com/medicore/medicore/internal/types"
)

// Repository defines the interface for invoice persistence operations
type Repository interface {
	// Create persists a new invoice with its line item blob in one write
	Create(ctx context.Context, inv *Invoice) error

	// Get retrieves an invoice by ID within the caller's tenant
	Get(ctx context.Context, id string) (*Invoice, error)

	// Update updates an existing invoice
	Update(ctx context.Context, inv *Invoice) error

	// List retrieves invoices based on filter criteria
	List(ctx context.Context, filter *types.InvoiceFilter) ([]*Invoice, error)

	// Count returns the total count of invoices based on filter criteria
	Count(ctx context.Context, filter *types.InvoiceFilter) (int, error)

	// ListByPatient returns all of a patient's invoices in consolidation
	// fetch order: created_at ascending, id ascending as tiebreak
	ListByPatient(ctx context.Context, patientID string) ([]*Invoice, error)

	// NextInvoiceNumber issues the next tenant-scoped formatted invoice
	// number. The read-increment-write against the tenant counter must be
	// atomic: concurrent callers never observe the same number. A missing
	// billing settings row is created with defaults, never an error.
	NextInvoiceNumber(ctx context.Context) (string, error)

	// NextLegacyInvoiceNumber issues the next number of the pre-multi-tenant
	// fiscal year scheme (max previously issued + 1). Known to be racy under
	// concurrent writers in the same fiscal year; retained for backward
	// compatibility only and not used for new tenants.
	NextLegacyInvoiceNumber(ctx context.Context, fiscalYear int) (string, error)
}

// FinalInvoiceRepository defines persistence for consolidated final invoices
type FinalInvoiceRepository interface {
	// Create persists a new final invoice
	Create(ctx context.Context, fi *FinalInvoice) error

	// Get retrieves a final invoice by ID within the caller's tenant
	Get(ctx context.Context, id string) (*FinalInvoice, error)

	// Update updates payment fields on an existing final invoice
	Update(ctx context.Context, fi *FinalInvoice) error

	// List retrieves final invoices based on filter criteria
	List(ctx context.Context, filter *types.FinalInvoiceFilter) ([]*FinalInvoice, error)

	// Count returns the total count of final invoices matching the filter
	Count(ctx context.Context, filter *types.FinalInvoiceFilter) (int, error)
}
