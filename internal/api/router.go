package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/medicore/medicore/internal/api/v1"
	"github.com/medicore/medicore/internal/config"
	"github.com/medicore/medicore/internal/logger"
	"github.com/medicore/medicore/internal/rest/middleware"
	"github.com/medicore/medicore/internal/types"
)

type Handlers struct {
	Health  *v1.HealthHandler
	Patient *v1.PatientHandler
	Invoice *v1.InvoiceHandler
	Billing *v1.BillingHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode == types.ModeProd {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	// v1 routes are tenant scoped
	v1Group := router.Group("/v1", middleware.TenantMiddleware(logger))
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Patient routes
	patients := router.Group("/patients")
	{
		patients.POST("", handlers.Patient.CreatePatient)
		patients.GET("/:id", handlers.Patient.GetPatient)
	}

	// Invoice routes
	invoices := router.Group("/invoices")
	{
		invoices.POST("", handlers.Invoice.CreateInvoice)
		invoices.GET("", handlers.Invoice.ListInvoices)
		invoices.GET("/:id", handlers.Invoice.GetInvoice)
		invoices.PUT("/:id", handlers.Invoice.UpdateInvoice)
		invoices.PUT("/:id/payment", handlers.Invoice.UpdatePayment)
	}

	// Billing routes
	billing := router.Group("/billing")
	{
		billing.POST("/final", handlers.Billing.ConsolidateInvoices)
		billing.GET("/final", handlers.Billing.ListFinalInvoices)
		billing.GET("/final/:id", handlers.Billing.GetFinalInvoice)
		billing.PUT("/final/:id/payment", handlers.Billing.UpdateFinalInvoicePayment)
		billing.GET("/summary", handlers.Billing.GetBillingSummary)
	}
}
