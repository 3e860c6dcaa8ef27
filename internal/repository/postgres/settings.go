package postgres

import (
	"context"
	"errors"
	"time"

	domainTenant "github.com/medicore/medicore/internal/domain/tenant"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/logger"
	"github.com/medicore/medicore/internal/postgres"
	"github.com/medicore/medicore/internal/types"
	"gorm.io/gorm"
)

type settingsRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewSettingsRepository(client postgres.IClient, logger *logger.Logger) domainTenant.Repository {
	return &settingsRepository{
		client: client,
		logger: logger,
	}
}

// billingSettingsRow is the billing_settings table shape. The invoice number
// allocator advances last_invoice_number through raw SQL against this same
// table; this repository never writes the counter.
type billingSettingsRow struct {
	ID                string    `gorm:"column:id;primaryKey"`
	TenantID          string    `gorm:"column:tenant_id;uniqueIndex"`
	TenantCode        string    `gorm:"column:tenant_code"`
	LastInvoiceNumber int64     `gorm:"column:last_invoice_number"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (billingSettingsRow) TableName() string {
	return "billing_settings"
}

func (r *billingSettingsRow) toDomain() *domainTenant.BillingSettings {
	return &domainTenant.BillingSettings{
		ID:                r.ID,
		TenantID:          r.TenantID,
		TenantCode:        r.TenantCode,
		LastInvoiceNumber: r.LastInvoiceNumber,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func (r *settingsRepository) Get(ctx context.Context) (*domainTenant.BillingSettings, error) {
	var row billingSettingsRow
	err := r.client.Querier(ctx).
		Where("tenant_id = ?", types.GetTenantID(ctx)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.WithError(err).
				WithHint("Billing settings not found for tenant").
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get billing settings").
			Mark(ierr.ErrDatabase)
	}

	return row.toDomain(), nil
}

func (r *settingsRepository) Create(ctx context.Context, s *domainTenant.BillingSettings) error {
	r.logger.Debugw("creating billing settings",
		"tenant_id", s.TenantID,
		"tenant_code", s.TenantCode,
	)

	row := &billingSettingsRow{
		ID:                s.ID,
		TenantID:          s.TenantID,
		TenantCode:        s.TenantCode,
		LastInvoiceNumber: s.LastInvoiceNumber,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}

	if err := r.client.Querier(ctx).Create(row).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create billing settings").
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *settingsRepository) Update(ctx context.Context, s *domainTenant.BillingSettings) error {
	result := r.client.Querier(ctx).
		Model(&billingSettingsRow{}).
		Where("tenant_id = ?", types.GetTenantID(ctx)).
		Updates(map[string]any{
			"tenant_code": s.TenantCode,
			"updated_at":  time.Now().UTC(),
		})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to update billing settings").
			Mark(ierr.ErrDatabase)
	}

	if result.RowsAffected == 0 {
		return ierr.NewError("billing settings not found").
			WithHint("Billing settings not found for tenant").
			Mark(ierr.ErrNotFound)
	}

	return nil
}
