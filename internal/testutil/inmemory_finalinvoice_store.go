package testutil

import (
	"context"

	"github.com/medicore/medicore/internal/domain/invoice"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/types"
)

// InMemoryFinalInvoiceStore implements invoice.FinalInvoiceRepository
type InMemoryFinalInvoiceStore struct {
	*InMemoryStore[*invoice.FinalInvoice]
}

func NewInMemoryFinalInvoiceStore() *InMemoryFinalInvoiceStore {
	return &InMemoryFinalInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.FinalInvoice](),
	}
}

func copyFinalInvoice(fi *invoice.FinalInvoice) *invoice.FinalInvoice {
	copied := *fi
	copied.SourceInvoiceIDs = append([]string(nil), fi.SourceInvoiceIDs...)
	copied.LineItems = append([]invoice.LineItem(nil), fi.LineItems...)
	return &copied
}

func (s *InMemoryFinalInvoiceStore) Create(ctx context.Context, fi *invoice.FinalInvoice) error {
	if fi == nil {
		return ierr.NewError("final invoice cannot be nil").Mark(ierr.ErrValidation)
	}

	if err := s.InMemoryStore.Create(ctx, fi.ID, copyFinalInvoice(fi)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create final invoice").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryFinalInvoiceStore) Get(ctx context.Context, id string) (*invoice.FinalInvoice, error) {
	fi, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || fi.TenantID != types.GetTenantID(ctx) || fi.Status == types.StatusDeleted {
		return nil, ierr.NewError("final invoice not found").
			WithHintf("Final invoice with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyFinalInvoice(fi), nil
}

func (s *InMemoryFinalInvoiceStore) Update(ctx context.Context, fi *invoice.FinalInvoice) error {
	existing, err := s.InMemoryStore.Get(ctx, fi.ID)
	if err != nil || existing.TenantID != types.GetTenantID(ctx) {
		return ierr.NewError("final invoice not found").
			WithHintf("Final invoice with ID %s was not found", fi.ID).
			Mark(ierr.ErrNotFound)
	}

	// Only payment fields are mutable after consolidation
	updated := copyFinalInvoice(existing)
	updated.PaymentStatus = fi.PaymentStatus
	updated.PaymentMode = fi.PaymentMode
	updated.PaidAmount = fi.PaidAmount
	updated.Status = fi.Status
	updated.UpdatedAt = fi.UpdatedAt
	updated.UpdatedBy = fi.UpdatedBy

	return s.InMemoryStore.Update(ctx, fi.ID, updated)
}

func finalInvoiceFilterFn(ctx context.Context, fi *invoice.FinalInvoice, filter interface{}) bool {
	if fi.TenantID != types.GetTenantID(ctx) {
		return false
	}

	f, ok := filter.(*types.FinalInvoiceFilter)
	if !ok || f == nil {
		return fi.Status == types.StatusPublished
	}

	if string(fi.Status) != f.GetStatus() {
		return false
	}
	if f.PatientID != "" && fi.PatientID != f.PatientID {
		return false
	}
	if f.PaymentStatus != "" && fi.PaymentStatus != f.PaymentStatus {
		return false
	}
	return true
}

func finalInvoiceSortFn(filter *types.FinalInvoiceFilter) SortFunc[*invoice.FinalInvoice] {
	asc := filter != nil && filter.GetOrder() == types.OrderAsc
	return func(a, b *invoice.FinalInvoice) bool {
		if a.CreatedAt.Equal(b.CreatedAt) {
			if asc {
				return a.ID < b.ID
			}
			return a.ID > b.ID
		}
		if asc {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.CreatedAt.After(b.CreatedAt)
	}
}

func (s *InMemoryFinalInvoiceStore) List(ctx context.Context, filter *types.FinalInvoiceFilter) ([]*invoice.FinalInvoice, error) {
	finals, err := s.InMemoryStore.List(ctx, filter, finalInvoiceFilterFn, finalInvoiceSortFn(filter))
	if err != nil {
		return nil, err
	}

	result := make([]*invoice.FinalInvoice, 0, len(finals))
	for _, fi := range finals {
		result = append(result, copyFinalInvoice(fi))
	}
	return result, nil
}

func (s *InMemoryFinalInvoiceStore) Count(ctx context.Context, filter *types.FinalInvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, finalInvoiceFilterFn)
}
