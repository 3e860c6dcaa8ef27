package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore/internal/api/dto"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/logger"
	"github.com/medicore/medicore/internal/service"
	"github.com/medicore/medicore/internal/types"
)

type BillingHandler struct {
	billingService service.BillingService
	logger         *logger.Logger
}

func NewBillingHandler(billingService service.BillingService, logger *logger.Logger) *BillingHandler {
	return &BillingHandler{
		billingService: billingService,
		logger:         logger,
	}
}

// ConsolidateInvoices godoc
// @Summary Consolidate a patient's invoices
// @Description Merge all of a patient's invoices into one final invoice with a fresh discount and tax
// @Tags Billing
// @Accept json
// @Produce json
// @Param request body dto.ConsolidateInvoicesRequest true "Consolidation request"
// @Success 201 {object} dto.FinalInvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /billing/final [post]
func (h *BillingHandler) ConsolidateInvoices(c *gin.Context) {
	var req dto.ConsolidateInvoicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.billingService.ConsolidateForPatient(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorw("failed to consolidate invoices", "error", err)
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// GetFinalInvoice godoc
// @Summary Get a final invoice by ID
// @Description Get detailed information about a consolidated final invoice
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path string true "Final invoice ID"
// @Success 200 {object} dto.FinalInvoiceResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /billing/final/{id} [get]
func (h *BillingHandler) GetFinalInvoice(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid final invoice id").
			WithHint("Final invoice ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.billingService.GetFinalInvoice(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListFinalInvoices godoc
// @Summary List final invoices
// @Description List consolidated final invoices with optional filtering
// @Tags Billing
// @Accept json
// @Produce json
// @Param filter query types.FinalInvoiceFilter false "Filter"
// @Success 200 {object} dto.ListFinalInvoicesResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Router /billing/final [get]
func (h *BillingHandler) ListFinalInvoices(c *gin.Context) {
	filter := types.NewFinalInvoiceFilter()
	if err := c.ShouldBindQuery(filter); err != nil {
		h.logger.Errorw("failed to bind query", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid filter parameters").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.billingService.ListFinalInvoices(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateFinalInvoicePayment godoc
// @Summary Update final invoice payment
// @Description Record a payment status, mode and amount against a final invoice
// @Tags Billing
// @Accept json
// @Produce json
// @Param id path string true "Final invoice ID"
// @Param payment body dto.UpdatePaymentRequest true "Payment update"
// @Success 200 {object} dto.FinalInvoiceResponse
// @Failure 400 {object} ierr.ErrorResponse
// @Failure 404 {object} ierr.ErrorResponse
// @Router /billing/final/{id}/payment [put]
func (h *BillingHandler) UpdateFinalInvoicePayment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		c.Error(ierr.NewError("invalid final invoice id").
			WithHint("Final invoice ID is required").
			Mark(ierr.ErrValidation))
		return
	}

	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorw("failed to bind request", "error", err)
		c.Error(ierr.WithError(err).WithHint("invalid request").Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.billingService.UpdateFinalInvoicePayment(c.Request.Context(), id, req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetBillingSummary godoc
// @Summary Get the billing summary
// @Description Dashboard rollup of invoice counts, paid revenue and pending amounts
// @Tags Billing
// @Accept json
// @Produce json
// @Success 200 {object} dto.BillingSummaryResponse
// @Router /billing/summary [get]
func (h *BillingHandler) GetBillingSummary(c *gin.Context) {
	resp, err := h.billingService.GetBillingSummary(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
