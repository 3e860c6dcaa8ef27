package patient

import "context"

// Repository defines the patient lookups consumed from the record store
type Repository interface {
	// Get retrieves a patient by ID within the caller's tenant. A patient
	// belonging to another tenant is indistinguishable from a missing one.
	Get(ctx context.Context, id string) (*Patient, error)

	// Create persists a new patient row
	Create(ctx context.Context, p *Patient) error
}
