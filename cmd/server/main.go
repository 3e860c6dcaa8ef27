package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medicore/medicore/internal/api"
	v1 "github.com/medicore/medicore/internal/api/v1"
	"github.com/medicore/medicore/internal/cache"
	"github.com/medicore/medicore/internal/config"
	"github.com/medicore/medicore/internal/logger"
	"github.com/medicore/medicore/internal/postgres"
	"github.com/medicore/medicore/internal/repository"
	postgresRepo "github.com/medicore/medicore/internal/repository/postgres"
	"github.com/medicore/medicore/internal/service"
	"github.com/medicore/medicore/internal/validator"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title MediCore Billing API
// @version 1.0
// @description Multi-tenant hospital billing and invoice consolidation service
// @BasePath /v1
// @schemes http https

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Cache
			cache.NewInMemoryCache,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,

			// Repositories
			repository.NewInvoiceRepository,
			repository.NewFinalInvoiceRepository,
			repository.NewPatientRepository,
			repository.NewSettingsRepository,

			// Services
			service.NewServiceParams,
			service.NewPatientService,
			service.NewInvoiceService,
			service.NewBillingService,

			// API
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(runMigrations, startServer),
	)

	app.Run()
}

func provideHandlers(
	logger *logger.Logger,
	patientService service.PatientService,
	invoiceService service.InvoiceService,
	billingService service.BillingService,
) api.Handlers {
	return api.Handlers{
		Health:  v1.NewHealthHandler(),
		Patient: v1.NewPatientHandler(patientService, logger),
		Invoice: v1.NewInvoiceHandler(invoiceService, logger),
		Billing: v1.NewBillingHandler(billingService, logger),
	}
}

func runMigrations(db *gorm.DB, cfg *config.Configuration, log *logger.Logger) error {
	if !cfg.Postgres.AutoMigrate {
		return nil
	}
	log.Info("Running schema auto-migration")
	return postgresRepo.Migrate(db)
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
