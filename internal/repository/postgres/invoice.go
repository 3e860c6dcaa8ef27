package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	domainInvoice "github.com/medicore/medicore/internal/domain/invoice"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/logger"
	"github.com/medicore/medicore/internal/postgres"
	"github.com/medicore/medicore/internal/types"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type invoiceRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewInvoiceRepository(client postgres.IClient, logger *logger.Logger) domainInvoice.Repository {
	return &invoiceRepository{
		client: client,
		logger: logger,
	}
}

// invoiceRow is the invoices table shape. Line items are stored as an ordered
// JSON blob and only parsed at the boundaries.
type invoiceRow struct {
	ID              string          `gorm:"column:id;primaryKey"`
	TenantID        string          `gorm:"column:tenant_id;index:idx_invoices_tenant_patient"`
	PatientID       string          `gorm:"column:patient_id;index:idx_invoices_tenant_patient"`
	InvoiceType     string          `gorm:"column:invoice_type"`
	InvoiceNumber   string          `gorm:"column:invoice_number"`
	LineItems       string          `gorm:"column:line_items;type:text"`
	Subtotal        decimal.Decimal `gorm:"column:subtotal;type:numeric(20,2)"`
	DiscountPercent decimal.Decimal `gorm:"column:discount_percent;type:numeric(10,4)"`
	DiscountAmount  decimal.Decimal `gorm:"column:discount_amount;type:numeric(20,2)"`
	TaxPercent      decimal.Decimal `gorm:"column:tax_percent;type:numeric(10,4)"`
	TaxAmount       decimal.Decimal `gorm:"column:tax_amount;type:numeric(20,2)"`
	GrandTotal      decimal.Decimal `gorm:"column:grand_total;type:numeric(20,2)"`
	PaymentStatus   string          `gorm:"column:payment_status"`
	PaymentMode     string          `gorm:"column:payment_mode"`
	PaidAmount      decimal.Decimal `gorm:"column:paid_amount;type:numeric(20,2)"`
	Status          string          `gorm:"column:status"`
	CreatedAt       time.Time       `gorm:"column:created_at"`
	UpdatedAt       time.Time       `gorm:"column:updated_at"`
	CreatedBy       string          `gorm:"column:created_by"`
	UpdatedBy       string          `gorm:"column:updated_by"`
}

func (invoiceRow) TableName() string {
	return "invoices"
}

func toInvoiceRow(inv *domainInvoice.Invoice) (*invoiceRow, error) {
	blob, err := domainInvoice.MarshalLineItems(inv.LineItems)
	if err != nil {
		return nil, err
	}

	return &invoiceRow{
		ID:              inv.ID,
		TenantID:        inv.TenantID,
		PatientID:       inv.PatientID,
		InvoiceType:     inv.InvoiceType.String(),
		InvoiceNumber:   inv.InvoiceNumber,
		LineItems:       blob,
		Subtotal:        inv.Subtotal,
		DiscountPercent: inv.DiscountPercent,
		DiscountAmount:  inv.DiscountAmount,
		TaxPercent:      inv.TaxPercent,
		TaxAmount:       inv.TaxAmount,
		GrandTotal:      inv.GrandTotal,
		PaymentStatus:   inv.PaymentStatus.String(),
		PaymentMode:     inv.PaymentMode.String(),
		PaidAmount:      inv.PaidAmount,
		Status:          string(inv.Status),
		CreatedAt:       inv.CreatedAt,
		UpdatedAt:       inv.UpdatedAt,
		CreatedBy:       inv.CreatedBy,
		UpdatedBy:       inv.UpdatedBy,
	}, nil
}

func (r *invoiceRow) toDomain() (*domainInvoice.Invoice, error) {
	items, err := domainInvoice.UnmarshalLineItems(r.LineItems)
	if err != nil {
		return nil, err
	}

	return &domainInvoice.Invoice{
		ID:              r.ID,
		PatientID:       r.PatientID,
		InvoiceType:     types.InvoiceType(r.InvoiceType),
		InvoiceNumber:   r.InvoiceNumber,
		LineItems:       items,
		Subtotal:        r.Subtotal,
		DiscountPercent: r.DiscountPercent,
		DiscountAmount:  r.DiscountAmount,
		TaxPercent:      r.TaxPercent,
		TaxAmount:       r.TaxAmount,
		GrandTotal:      r.GrandTotal,
		PaymentStatus:   types.PaymentStatus(r.PaymentStatus),
		PaymentMode:     types.PaymentMode(r.PaymentMode),
		PaidAmount:      r.PaidAmount,
		BaseModel: types.BaseModel{
			TenantID:  r.TenantID,
			Status:    types.Status(r.Status),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			CreatedBy: r.CreatedBy,
			UpdatedBy: r.UpdatedBy,
		},
	}, nil
}

func (r *invoiceRepository) Create(ctx context.Context, inv *domainInvoice.Invoice) error {
	r.logger.Debugw("creating invoice",
		"invoice_id", inv.ID,
		"patient_id", inv.PatientID,
		"tenant_id", inv.TenantID,
	)

	row, err := toInvoiceRow(inv)
	if err != nil {
		return err
	}

	if err := r.client.Querier(ctx).Create(row).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create invoice").
			WithReportableDetails(map[string]any{
				"invoice_id": inv.ID,
				"patient_id": inv.PatientID,
			}).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*domainInvoice.Invoice, error) {
	var row invoiceRow
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ? AND status != ?", id, types.GetTenantID(ctx), string(types.StatusDeleted)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.WithError(err).
				WithHintf("Invoice with ID %s was not found", id).
				WithReportableDetails(map[string]any{
					"invoice_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get invoice").
			Mark(ierr.ErrDatabase)
	}

	return row.toDomain()
}

func (r *invoiceRepository) Update(ctx context.Context, inv *domainInvoice.Invoice) error {
	r.logger.Debugw("updating invoice",
		"invoice_id", inv.ID,
		"tenant_id", inv.TenantID,
	)

	row, err := toInvoiceRow(inv)
	if err != nil {
		return err
	}

	result := r.client.Querier(ctx).
		Model(&invoiceRow{}).
		Where("id = ? AND tenant_id = ?", inv.ID, types.GetTenantID(ctx)).
		Updates(map[string]any{
			"invoice_type":     row.InvoiceType,
			"line_items":       row.LineItems,
			"subtotal":         row.Subtotal,
			"discount_percent": row.DiscountPercent,
			"discount_amount":  row.DiscountAmount,
			"tax_percent":      row.TaxPercent,
			"tax_amount":       row.TaxAmount,
			"grand_total":      row.GrandTotal,
			"payment_status":   row.PaymentStatus,
			"payment_mode":     row.PaymentMode,
			"paid_amount":      row.PaidAmount,
			"status":           row.Status,
			"updated_at":       time.Now().UTC(),
			"updated_by":       types.GetUserID(ctx),
		})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to update invoice").
			Mark(ierr.ErrDatabase)
	}

	if result.RowsAffected == 0 {
		return ierr.NewError("invoice not found").
			WithHintf("Invoice with ID %s was not found", inv.ID).
			Mark(ierr.ErrNotFound)
	}

	return nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*domainInvoice.Invoice, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}

	query := r.applyFilter(ctx, filter)
	query = query.Order(fmt.Sprintf("%s %s", filter.GetSort(), filter.GetOrder()))

	if !filter.IsUnlimited() {
		query = query.Limit(filter.GetLimit()).Offset(filter.GetOffset())
	}

	var rows []invoiceRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices").
			Mark(ierr.ErrDatabase)
	}

	invoices := make([]*domainInvoice.Invoice, 0, len(rows))
	for i := range rows {
		inv, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}

	return invoices, nil
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}

	var count int64
	if err := r.applyFilter(ctx, filter).Count(&count).Error; err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count invoices").
			Mark(ierr.ErrDatabase)
	}

	return int(count), nil
}

func (r *invoiceRepository) applyFilter(ctx context.Context, filter *types.InvoiceFilter) *gorm.DB {
	query := r.client.Querier(ctx).
		Model(&invoiceRow{}).
		Where("tenant_id = ?", types.GetTenantID(ctx)).
		Where("status = ?", filter.GetStatus())

	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.InvoiceType != "" {
		query = query.Where("invoice_type = ?", filter.InvoiceType.String())
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus.String())
	}

	return query
}

// ListByPatient returns the patient's invoices in creation order with id as a
// deterministic tiebreak. Consolidation depends on this ordering.
func (r *invoiceRepository) ListByPatient(ctx context.Context, patientID string) ([]*domainInvoice.Invoice, error) {
	var rows []invoiceRow
	err := r.client.Querier(ctx).
		Where("tenant_id = ? AND patient_id = ? AND status = ?",
			types.GetTenantID(ctx), patientID, string(types.StatusPublished)).
		Order("created_at asc, id asc").
		Find(&rows).Error
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list invoices for patient").
			WithReportableDetails(map[string]any{
				"patient_id": patientID,
			}).
			Mark(ierr.ErrDatabase)
	}

	invoices := make([]*domainInvoice.Invoice, 0, len(rows))
	for i := range rows {
		inv, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}

	return invoices, nil
}

// NextInvoiceNumber issues the next tenant-scoped invoice number. The upsert
// both advances the counter atomically and lazily creates the billing
// settings row with defaults on first use, so concurrent callers never
// observe the same value and a fresh tenant starts at 1.
func (r *invoiceRepository) NextInvoiceNumber(ctx context.Context) (string, error) {
	tenantID := types.GetTenantID(ctx)

	query := `
		INSERT INTO billing_settings (id, tenant_id, tenant_code, last_invoice_number, created_at, updated_at)
		VALUES (?, ?, ?, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT (tenant_id) DO UPDATE
		SET last_invoice_number = billing_settings.last_invoice_number + 1,
			updated_at = CURRENT_TIMESTAMP
		RETURNING tenant_code, last_invoice_number`

	var result struct {
		TenantCode        string
		LastInvoiceNumber int64
	}
	err := r.client.Querier(ctx).
		Raw(query, types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_SETTINGS), tenantID, types.DefaultTenantCode).
		Scan(&result).Error
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Invoice number generation failed").
			Mark(ierr.ErrDatabase)
	}

	r.logger.Infow("generated invoice number",
		"tenant_id", tenantID,
		"tenant_code", result.TenantCode,
		"sequence", result.LastInvoiceNumber)

	return fmt.Sprintf("INVOICE-%s-%05d", result.TenantCode, result.LastInvoiceNumber), nil
}

// NextLegacyInvoiceNumber issues a number under the old fiscal year scheme by
// scanning previously issued legacy numbers. The read and the later insert are
// not serialized against concurrent writers; this path exists only for
// tenants still on legacy numbering.
func (r *invoiceRepository) NextLegacyInvoiceNumber(ctx context.Context, fiscalYear int) (string, error) {
	tenantID := types.GetTenantID(ctx)
	pattern := fmt.Sprintf("%s-%d-%%", types.LegacyInvoicePrefix, fiscalYear)

	query := `
		SELECT COALESCE(MAX(CAST(SPLIT_PART(invoice_number, '-', 3) AS BIGINT)), 0)
		FROM invoices
		WHERE tenant_id = ? AND invoice_number LIKE ? AND status != ?`

	var lastValue int64
	err := r.client.Querier(ctx).
		Raw(query, tenantID, pattern, string(types.StatusDeleted)).
		Scan(&lastValue).Error
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Legacy invoice number generation failed").
			Mark(ierr.ErrDatabase)
	}

	next := lastValue + 1
	r.logger.Infow("generated legacy invoice number",
		"tenant_id", tenantID,
		"fiscal_year", fiscalYear,
		"sequence", next)

	return fmt.Sprintf("%s-%d-%05d", types.LegacyInvoicePrefix, fiscalYear, next), nil
}
