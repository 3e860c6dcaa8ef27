package postgres

import (
	"context"
	"encoding/json"
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

type finalInvoiceRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewFinalInvoiceRepository(client postgres.IClient, logger *logger.Logger) domainInvoice.FinalInvoiceRepository {
	return &finalInvoiceRepository{
		client: client,
		logger: logger,
	}
}

// finalInvoiceRow is the final_invoices table shape. Source invoice ids are
// stored as an ordered JSON array and are immutable after creation. The
// patient name is a snapshot taken at consolidation time.
type finalInvoiceRow struct {
	ID               string          `gorm:"column:id;primaryKey"`
	TenantID         string          `gorm:"column:tenant_id;index:idx_final_invoices_tenant_patient"`
	PatientID        string          `gorm:"column:patient_id;index:idx_final_invoices_tenant_patient"`
	InvoiceNumber    string          `gorm:"column:invoice_number"`
	SourceInvoiceIDs string          `gorm:"column:source_invoice_ids;type:text"`
	LineItems        string          `gorm:"column:line_items;type:text"`
	Subtotal         decimal.Decimal `gorm:"column:subtotal;type:numeric(20,2)"`
	DiscountPercent  decimal.Decimal `gorm:"column:discount_percent;type:numeric(10,4)"`
	DiscountAmount   decimal.Decimal `gorm:"column:discount_amount;type:numeric(20,2)"`
	TaxPercent       decimal.Decimal `gorm:"column:tax_percent;type:numeric(10,4)"`
	TaxAmount        decimal.Decimal `gorm:"column:tax_amount;type:numeric(20,2)"`
	GrandTotal       decimal.Decimal `gorm:"column:grand_total;type:numeric(20,2)"`
	PaymentStatus    string          `gorm:"column:payment_status"`
	PaymentMode      string          `gorm:"column:payment_mode"`
	PaidAmount       decimal.Decimal `gorm:"column:paid_amount;type:numeric(20,2)"`
	PatientName      string          `gorm:"column:patient_name"`
	Status           string          `gorm:"column:status"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
	CreatedBy        string          `gorm:"column:created_by"`
	UpdatedBy        string          `gorm:"column:updated_by"`
}

func (finalInvoiceRow) TableName() string {
	return "final_invoices"
}

func toFinalInvoiceRow(fi *domainInvoice.FinalInvoice) (*finalInvoiceRow, error) {
	blob, err := domainInvoice.MarshalLineItems(fi.LineItems)
	if err != nil {
		return nil, err
	}

	sourceIDs, err := json.Marshal(fi.SourceInvoiceIDs)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to serialize source invoice ids").
			Mark(ierr.ErrSystem)
	}

	return &finalInvoiceRow{
		ID:               fi.ID,
		TenantID:         fi.TenantID,
		PatientID:        fi.PatientID,
		InvoiceNumber:    fi.InvoiceNumber,
		SourceInvoiceIDs: string(sourceIDs),
		LineItems:        blob,
		Subtotal:         fi.Subtotal,
		DiscountPercent:  fi.DiscountPercent,
		DiscountAmount:   fi.DiscountAmount,
		TaxPercent:       fi.TaxPercent,
		TaxAmount:        fi.TaxAmount,
		GrandTotal:       fi.GrandTotal,
		PaymentStatus:    fi.PaymentStatus.String(),
		PaymentMode:      fi.PaymentMode.String(),
		PaidAmount:       fi.PaidAmount,
		PatientName:      fi.PatientName,
		Status:           string(fi.Status),
		CreatedAt:        fi.CreatedAt,
		UpdatedAt:        fi.UpdatedAt,
		CreatedBy:        fi.CreatedBy,
		UpdatedBy:        fi.UpdatedBy,
	}, nil
}

func (r *finalInvoiceRow) toDomain() (*domainInvoice.FinalInvoice, error) {
	items, err := domainInvoice.UnmarshalLineItems(r.LineItems)
	if err != nil {
		return nil, err
	}

	var sourceIDs []string
	if r.SourceInvoiceIDs != "" {
		if err := json.Unmarshal([]byte(r.SourceInvoiceIDs), &sourceIDs); err != nil {
			return nil, ierr.WithError(err).
				WithHint("Failed to parse stored source invoice ids").
				Mark(ierr.ErrSystem)
		}
	}

	return &domainInvoice.FinalInvoice{
		ID:               r.ID,
		PatientID:        r.PatientID,
		InvoiceNumber:    r.InvoiceNumber,
		SourceInvoiceIDs: sourceIDs,
		LineItems:        items,
		Subtotal:         r.Subtotal,
		DiscountPercent:  r.DiscountPercent,
		DiscountAmount:   r.DiscountAmount,
		TaxPercent:       r.TaxPercent,
		TaxAmount:        r.TaxAmount,
		GrandTotal:       r.GrandTotal,
		PaymentStatus:    types.PaymentStatus(r.PaymentStatus),
		PaymentMode:      types.PaymentMode(r.PaymentMode),
		PaidAmount:       r.PaidAmount,
		PatientName:      r.PatientName,
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

func (r *finalInvoiceRepository) Create(ctx context.Context, fi *domainInvoice.FinalInvoice) error {
	r.logger.Debugw("creating final invoice",
		"final_invoice_id", fi.ID,
		"patient_id", fi.PatientID,
		"source_invoices", len(fi.SourceInvoiceIDs),
		"tenant_id", fi.TenantID,
	)

	row, err := toFinalInvoiceRow(fi)
	if err != nil {
		return err
	}

	if err := r.client.Querier(ctx).Create(row).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create final invoice").
			WithReportableDetails(map[string]any{
				"final_invoice_id": fi.ID,
				"patient_id":       fi.PatientID,
			}).
			Mark(ierr.ErrDatabase)
	}

	return nil
}

func (r *finalInvoiceRepository) Get(ctx context.Context, id string) (*domainInvoice.FinalInvoice, error) {
	var row finalInvoiceRow
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ? AND status != ?", id, types.GetTenantID(ctx), string(types.StatusDeleted)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.WithError(err).
				WithHintf("Final invoice with ID %s was not found", id).
				WithReportableDetails(map[string]any{
					"final_invoice_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get final invoice").
			Mark(ierr.ErrDatabase)
	}

	return row.toDomain()
}

// Update writes payment fields only. Amounts, line items and source invoice
// ids are immutable once the final invoice exists.
func (r *finalInvoiceRepository) Update(ctx context.Context, fi *domainInvoice.FinalInvoice) error {
	r.logger.Debugw("updating final invoice",
		"final_invoice_id", fi.ID,
		"tenant_id", fi.TenantID,
	)

	result := r.client.Querier(ctx).
		Model(&finalInvoiceRow{}).
		Where("id = ? AND tenant_id = ?", fi.ID, types.GetTenantID(ctx)).
		Updates(map[string]any{
			"payment_status": fi.PaymentStatus.String(),
			"payment_mode":   fi.PaymentMode.String(),
			"paid_amount":    fi.PaidAmount,
			"status":         string(fi.Status),
			"updated_at":     time.Now().UTC(),
			"updated_by":     types.GetUserID(ctx),
		})
	if result.Error != nil {
		return ierr.WithError(result.Error).
			WithHint("Failed to update final invoice").
			Mark(ierr.ErrDatabase)
	}

	if result.RowsAffected == 0 {
		return ierr.NewError("final invoice not found").
			WithHintf("Final invoice with ID %s was not found", fi.ID).
			Mark(ierr.ErrNotFound)
	}

	return nil
}

func (r *finalInvoiceRepository) List(ctx context.Context, filter *types.FinalInvoiceFilter) ([]*domainInvoice.FinalInvoice, error) {
	if filter == nil {
		filter = types.NewFinalInvoiceFilter()
	}

	query := r.applyFilter(ctx, filter)
	query = query.Order(fmt.Sprintf("%s %s", filter.GetSort(), filter.GetOrder()))

	if !filter.IsUnlimited() {
		query = query.Limit(filter.GetLimit()).Offset(filter.GetOffset())
	}

	var rows []finalInvoiceRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list final invoices").
			Mark(ierr.ErrDatabase)
	}

	invoices := make([]*domainInvoice.FinalInvoice, 0, len(rows))
	for i := range rows {
		fi, err := rows[i].toDomain()
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, fi)
	}

	return invoices, nil
}

func (r *finalInvoiceRepository) Count(ctx context.Context, filter *types.FinalInvoiceFilter) (int, error) {
	if filter == nil {
		filter = types.NewFinalInvoiceFilter()
	}

	var count int64
	if err := r.applyFilter(ctx, filter).Count(&count).Error; err != nil {
		return 0, ierr.WithError(err).
			WithHint("Failed to count final invoices").
			Mark(ierr.ErrDatabase)
	}

	return int(count), nil
}

func (r *finalInvoiceRepository) applyFilter(ctx context.Context, filter *types.FinalInvoiceFilter) *gorm.DB {
	query := r.client.Querier(ctx).
		Model(&finalInvoiceRow{}).
		Where("tenant_id = ?", types.GetTenantID(ctx)).
		Where("status = ?", filter.GetStatus())

	if filter.PatientID != "" {
		query = query.Where("patient_id = ?", filter.PatientID)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus.String())
	}

	return query
}
