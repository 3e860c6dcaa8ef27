package repository

import (
	"github.com/medicore/medicore/internal/domain/invoice"
	"github.com/medicore/medicore/internal/domain/patient"
	"github.com/medicore/medicore/internal/domain/tenant"
	"github.com/medicore/medicore/internal/logger"
	"github.com/medicore/medicore/internal/postgres"
	postgresRepo "github.com/medicore/medicore/internal/repository/postgres"
)

func NewInvoiceRepository(client postgres.IClient, logger *logger.Logger) invoice.Repository {
	return postgresRepo.NewInvoiceRepository(client, logger)
}

func NewFinalInvoiceRepository(client postgres.IClient, logger *logger.Logger) invoice.FinalInvoiceRepository {
	return postgresRepo.NewFinalInvoiceRepository(client, logger)
}

func NewPatientRepository(client postgres.IClient, logger *logger.Logger) patient.Repository {
	return postgresRepo.NewPatientRepository(client, logger)
}

func NewSettingsRepository(client postgres.IClient, logger *logger.Logger) tenant.Repository {
	return postgresRepo.NewSettingsRepository(client, logger)
}
