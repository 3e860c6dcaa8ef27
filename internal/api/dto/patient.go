package dto

import (
	"github.com/medicore/medicore/internal/domain/patient"
	"github.com/medicore/medicore/internal/validator"
)

// CreatePatientRequest registers the minimal patient record the billing
// engine keeps. The full clinical record lives outside this service.
type CreatePatientRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
}

func (r *CreatePatientRequest) Validate() error {
	return validator.ValidateRequest(r)
}

// PatientResponse represents a patient in API responses
type PatientResponse struct {
	*patient.Patient
	FullName string `json:"full_name"`
}

func NewPatientResponse(p *patient.Patient) *PatientResponse {
	return &PatientResponse{
		Patient:  p,
		FullName: p.FullName(),
	}
}
