package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore/internal/api/dto"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/logger"
	"github.com/medicore/medicore/internal/service"
)

type PatientHandler struct {
	patientService service.PatientService
	logger         *logger.Logger
}

func NewPatientHandler(patientService service.PatientService, logger *logger.Logger) *PatientHandler {
	return &PatientHandler{
		patientService: patientService,
		logger:         logger,
	}
}

// CreatePatient godoc
// @Summary Register a patient
// @Description Register the minimal patient record used for billing
// @Tags Patients
// @Accept json
// @Produce json
// @Param patient body dto.CreatePatientRequest true "Patient details"
// @Success 201 {object} dto.PatientResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /patients [post]
func (h *PatientHandler) CreatePatient(c *gin.Context) {
	var req dto.CreatePatientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.patientService.CreatePatient(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetPatient godoc
// @Summary Get a patient by ID
// @Description Get the billing-facing patient record
// @Tags Patients
// @Accept json
// @Produce json
// @Param id path string true "Patient ID"
// @Success 200 {object} dto.PatientResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /patients/{id} [get]
func (h *PatientHandler) GetPatient(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid patient id").
			WithHint("Patient ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.patientService.GetPatient(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
