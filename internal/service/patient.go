package service

import (
	"context"

	"github.com/medicore/medicore/internal/api/dto"
	"github.com/medicore/medicore/internal/domain/patient"
	"github.com/medicore/medicore/internal/types"
)

type PatientService interface {
	CreatePatient(ctx context.Context, req dto.CreatePatientRequest) (*dto.PatientResponse, error)
	GetPatient(ctx context.Context, id string) (*dto.PatientResponse, error)
}

type patientService struct {
	ServiceParams
}

func NewPatientService(params ServiceParams) PatientService {
	return &patientService{ServiceParams: params}
}

func (s *patientService) CreatePatient(ctx context.Context, req dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p := &patient.Patient{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PATIENT),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PatientCode: types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_PATIENT_CODE),
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}

	if err := s.PatientRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.Logger.Infow("created patient",
		"patient_id", p.ID,
		"patient_code", p.PatientCode,
	)

	return dto.NewPatientResponse(p), nil
}

func (s *patientService) GetPatient(ctx context.Context, id string) (*dto.PatientResponse, error) {
	p, err := s.PatientRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewPatientResponse(p), nil
}
