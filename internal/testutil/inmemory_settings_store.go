package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/medicore/medicore/internal/domain/tenant"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/types"
)

// InMemorySettingsStore implements tenant.Repository keyed by tenant id. It
// also backs the invoice number allocator: nextInvoiceNumber advances the
// counter under the store lock and auto-creates a settings row with defaults,
// mirroring the upsert semantics of the real store.
type InMemorySettingsStore struct {
	mu    sync.Mutex
	items map[string]*tenant.BillingSettings
}

func NewInMemorySettingsStore() *InMemorySettingsStore {
	return &InMemorySettingsStore{
		items: make(map[string]*tenant.BillingSettings),
	}
}

func (s *InMemorySettingsStore) Get(ctx context.Context) (*tenant.BillingSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, exists := s.items[types.GetTenantID(ctx)]
	if !exists {
		return nil, ierr.NewError("billing settings not found").
			WithHint("Billing settings not found for tenant").
			Mark(ierr.ErrNotFound)
	}

	copied := *settings
	return &copied, nil
}

func (s *InMemorySettingsStore) Create(ctx context.Context, settings *tenant.BillingSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[settings.TenantID]; exists {
		return ierr.NewError("billing settings already exist").
			WithHint("Billing settings already exist for tenant").
			Mark(ierr.ErrAlreadyExists)
	}

	copied := *settings
	s.items[settings.TenantID] = &copied
	return nil
}

func (s *InMemorySettingsStore) Update(ctx context.Context, settings *tenant.BillingSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.items[types.GetTenantID(ctx)]
	if !exists {
		return ierr.NewError("billing settings not found").
			WithHint("Billing settings not found for tenant").
			Mark(ierr.ErrNotFound)
	}

	existing.TenantCode = settings.TenantCode
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

// nextInvoiceNumber atomically advances the tenant counter, creating the
// settings row with defaults on first use.
func (s *InMemorySettingsStore) nextInvoiceNumber(tenantID string) (string, int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings, exists := s.items[tenantID]
	if !exists {
		now := time.Now().UTC()
		settings = &tenant.BillingSettings{
			ID:         types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_SETTINGS),
			TenantID:   tenantID,
			TenantCode: types.DefaultTenantCode,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		s.items[tenantID] = settings
	}

	settings.LastInvoiceNumber++
	settings.UpdatedAt = time.Now().UTC()
	return settings.TenantCode, settings.LastInvoiceNumber
}

// Clear removes all settings rows
func (s *InMemorySettingsStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]*tenant.BillingSettings)
}
