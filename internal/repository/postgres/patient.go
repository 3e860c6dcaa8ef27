package postgres

import (
	"context"
	"errors"
	"time"

	domainPatient "github.com/medicore/medicore/internal/domain/patient"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/logger"
	"github.com/medicore/medicore/internal/postgres"
	"github.com/medicore/medicore/internal/types"
	"gorm.io/gorm"
)

type patientRepository struct {
	client postgres.IClient
	logger *logger.Logger
}

func NewPatientRepository(client postgres.IClient, logger *logger.Logger) domainPatient.Repository {
	return &patientRepository{
		client: client,
		logger: logger,
	}
}

type patientRow struct {
	ID          string    `gorm:"column:id;primaryKey"`
	TenantID    string    `gorm:"column:tenant_id;index"`
	FirstName   string    `gorm:"column:first_name"`
	LastName    string    `gorm:"column:last_name"`
	PatientCode string    `gorm:"column:patient_code"`
	Status      string    `gorm:"column:status"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
	CreatedBy   string    `gorm:"column:created_by"`
	UpdatedBy   string    `gorm:"column:updated_by"`
}

func (patientRow) TableName() string {
	return "patients"
}

func toPatientRow(p *domainPatient.Patient) *patientRow {
	return &patientRow{
		ID:          p.ID,
		TenantID:    p.TenantID,
		FirstName:   p.FirstName,
		LastName:    p.LastName,
		PatientCode: p.PatientCode,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		CreatedBy:   p.CreatedBy,
		UpdatedBy:   p.UpdatedBy,
	}
}

func (r *patientRow) toDomain() *domainPatient.Patient {
	return &domainPatient.Patient{
		ID:          r.ID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		PatientCode: r.PatientCode,
		BaseModel: types.BaseModel{
			TenantID:  r.TenantID,
			Status:    types.Status(r.Status),
			CreatedAt: r.CreatedAt,
			UpdatedAt: r.UpdatedAt,
			CreatedBy: r.CreatedBy,
			UpdatedBy: r.UpdatedBy,
		},
	}
}

func (r *patientRepository) Get(ctx context.Context, id string) (*domainPatient.Patient, error) {
	var row patientRow
	err := r.client.Querier(ctx).
		Where("id = ? AND tenant_id = ? AND status != ?", id, types.GetTenantID(ctx), string(types.StatusDeleted)).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ierr.WithError(err).
				WithHintf("Patient with ID %s was not found", id).
				WithReportableDetails(map[string]any{
					"patient_id": id,
				}).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to get patient").
			Mark(ierr.ErrDatabase)
	}

	return row.toDomain(), nil
}

func (r *patientRepository) Create(ctx context.Context, p *domainPatient.Patient) error {
	r.logger.Debugw("creating patient",
		"patient_id", p.ID,
		"tenant_id", p.TenantID,
	)

	if err := r.client.Querier(ctx).Create(toPatientRow(p)).Error; err != nil {
		return ierr.WithError(err).
			WithHint("Failed to create patient").
			WithReportableDetails(map[string]any{
				"patient_id": p.ID,
			}).
			Mark(ierr.ErrDatabase)
	}

	return nil
}
