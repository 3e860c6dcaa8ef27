package testutil

import (
	"context"

	"github.com/medicore/medicore/internal/domain/patient"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/types"
)

// InMemoryPatientStore implements patient.Repository
type InMemoryPatientStore struct {
	*InMemoryStore[*patient.Patient]
}

func NewInMemoryPatientStore() *InMemoryPatientStore {
	return &InMemoryPatientStore{
		InMemoryStore: NewInMemoryStore[*patient.Patient](),
	}
}

func (s *InMemoryPatientStore) Get(ctx context.Context, id string) (*patient.Patient, error) {
	p, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || p.TenantID != types.GetTenantID(ctx) || p.Status == types.StatusDeleted {
		return nil, ierr.NewError("patient not found").
			WithHintf("Patient with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}

	copied := *p
	return &copied, nil
}

func (s *InMemoryPatientStore) Create(ctx context.Context, p *patient.Patient) error {
	if p == nil {
		return ierr.NewError("patient cannot be nil").Mark(ierr.ErrValidation)
	}

	copied := *p
	if err := s.InMemoryStore.Create(ctx, p.ID, &copied); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create patient").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}
