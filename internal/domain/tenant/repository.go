package tenant

import "context"

// Repository defines persistence for tenant billing settings. The counter
// itself is advanced atomically by the invoice repository's number allocator,
// not through this interface.
type Repository interface {
	// Get retrieves the billing settings row for the caller's tenant
	Get(ctx context.Context) (*BillingSettings, error)

	// Create persists a new billing settings row
	Create(ctx context.Context, s *BillingSettings) error

	// Update updates mutable settings fields such as the tenant code
	Update(ctx context.Context, s *BillingSettings) error
}
