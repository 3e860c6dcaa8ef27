package testutil

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/medicore/medicore/internal/domain/invoice"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/types"
)

// InMemoryInvoiceStore implements invoice.Repository. Number allocation is
// delegated to the settings store so tests observe the same auto-create and
// atomicity semantics as the real allocator.
type InMemoryInvoiceStore struct {
	*InMemoryStore[*invoice.Invoice]
	settings *InMemorySettingsStore
}

func NewInMemoryInvoiceStore(settings *InMemorySettingsStore) *InMemoryInvoiceStore {
	return &InMemoryInvoiceStore{
		InMemoryStore: NewInMemoryStore[*invoice.Invoice](),
		settings:      settings,
	}
}

func copyInvoice(inv *invoice.Invoice) *invoice.Invoice {
	copied := *inv
	copied.LineItems = append([]invoice.LineItem(nil), inv.LineItems...)
	return &copied
}

func (s *InMemoryInvoiceStore) Create(ctx context.Context, inv *invoice.Invoice) error {
	if inv == nil {
		return ierr.NewError("invoice cannot be nil").Mark(ierr.ErrValidation)
	}

	if err := s.InMemoryStore.Create(ctx, inv.ID, copyInvoice(inv)); err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			Mark(ierr.ErrAlreadyExists)
	}
	return nil
}

func (s *InMemoryInvoiceStore) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	inv, err := s.InMemoryStore.Get(ctx, id)
	if err != nil || inv.TenantID != types.GetTenantID(ctx) || inv.Status == types.StatusDeleted {
		return nil, ierr.NewError("invoice not found").
			WithHintf("Invoice with ID %s was not found", id).
			Mark(ierr.ErrNotFound)
	}
	return copyInvoice(inv), nil
}

func (s *InMemoryInvoiceStore) Update(ctx context.Context, inv *invoice.Invoice) error {
	existing, err := s.InMemoryStore.Get(ctx, inv.ID)
	if err != nil || existing.TenantID != types.GetTenantID(ctx) {
		return ierr.NewError("invoice not found").
			WithHintf("Invoice with ID %s was not found", inv.ID).
			Mark(ierr.ErrNotFound)
	}
	return s.InMemoryStore.Update(ctx, inv.ID, copyInvoice(inv))
}

func invoiceFilterFn(ctx context.Context, inv *invoice.Invoice, filter interface{}) bool {
	if inv.TenantID != types.GetTenantID(ctx) {
		return false
	}

	f, ok := filter.(*types.InvoiceFilter)
	if !ok || f == nil {
		return inv.Status == types.StatusPublished
	}

	if string(inv.Status) != f.GetStatus() {
		return false
	}
	if f.PatientID != "" && inv.PatientID != f.PatientID {
		return false
	}
	if f.InvoiceType != "" && inv.InvoiceType != f.InvoiceType {
		return false
	}
	if f.PaymentStatus != "" && inv.PaymentStatus != f.PaymentStatus {
		return false
	}
	return true
}

func invoiceSortFn(filter *types.InvoiceFilter) SortFunc[*invoice.Invoice] {
	asc := filter != nil && filter.GetOrder() == types.OrderAsc
	return func(a, b *invoice.Invoice) bool {
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

func (s *InMemoryInvoiceStore) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	invoices, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, invoiceSortFn(filter))
	if err != nil {
		return nil, err
	}

	result := make([]*invoice.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, copyInvoice(inv))
	}
	return result, nil
}

func (s *InMemoryInvoiceStore) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	return s.InMemoryStore.Count(ctx, filter, invoiceFilterFn)
}

func (s *InMemoryInvoiceStore) ListByPatient(ctx context.Context, patientID string) ([]*invoice.Invoice, error) {
	filter := types.NewNoLimitInvoiceFilter()
	filter.PatientID = patientID

	invoices, err := s.InMemoryStore.List(ctx, filter, invoiceFilterFn, nil)
	if err != nil {
		return nil, err
	}

	// Consolidation fetch order: created_at ascending, id as tiebreak
	sort.Slice(invoices, func(i, j int) bool {
		if invoices[i].CreatedAt.Equal(invoices[j].CreatedAt) {
			return invoices[i].ID < invoices[j].ID
		}
		return invoices[i].CreatedAt.Before(invoices[j].CreatedAt)
	})

	result := make([]*invoice.Invoice, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, copyInvoice(inv))
	}
	return result, nil
}

func (s *InMemoryInvoiceStore) NextInvoiceNumber(ctx context.Context) (string, error) {
	code, n := s.settings.nextInvoiceNumber(types.GetTenantID(ctx))
	return fmt.Sprintf("INVOICE-%s-%05d", code, n), nil
}

func (s *InMemoryInvoiceStore) NextLegacyInvoiceNumber(ctx context.Context, fiscalYear int) (string, error) {
	prefix := fmt.Sprintf("%s-%d-", types.LegacyInvoicePrefix, fiscalYear)

	invoices, err := s.InMemoryStore.List(ctx, nil, func(ctx context.Context, inv *invoice.Invoice, _ interface{}) bool {
		return inv.TenantID == types.GetTenantID(ctx) && strings.HasPrefix(inv.InvoiceNumber, prefix)
	}, nil)
	if err != nil {
		return "", err
	}

	var last int64
	for _, inv := range invoices {
		if n, err := strconv.ParseInt(strings.TrimPrefix(inv.InvoiceNumber, prefix), 10, 64); err == nil && n > last {
			last = n
		}
	}

	return fmt.Sprintf("%s-%d-%05d", types.LegacyInvoicePrefix, fiscalYear, last+1), nil
}
