package service

import (
	"github.com/medicore/medicore/internal/cache"
	"github.com/medicore/medicore/internal/config"
	"github.com/medicore/medicore/internal/domain/invoice"
	"github.com/medicore/medicore/internal/domain/patient"
	"github.com/medicore/medicore/internal/domain/tenant"
	"github.com/medicore/medicore/internal/logger"
	"github.com/medicore/medicore/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient
	Cache  cache.Cache

	// Repositories
	InvoiceRepo      invoice.Repository
	FinalInvoiceRepo invoice.FinalInvoiceRepository
	PatientRepo      patient.Repository
	SettingsRepo     tenant.Repository
}

// NewServiceParams creates a common service params bundle
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	cache cache.Cache,
	invoiceRepo invoice.Repository,
	finalInvoiceRepo invoice.FinalInvoiceRepository,
	patientRepo patient.Repository,
	settingsRepo tenant.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:           logger,
		Config:           config,
		DB:               db,
		Cache:            cache,
		InvoiceRepo:      invoiceRepo,
		FinalInvoiceRepo: finalInvoiceRepo,
		PatientRepo:      patientRepo,
		SettingsRepo:     settingsRepo,
	}
}
