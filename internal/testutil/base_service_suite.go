package testutil

import (
	"context"
	"time"

	"github.com/medicore/medicore/internal/cache"
	"github.com/medicore/medicore/internal/config"
	"github.com/medicore/medicore/internal/domain/invoice"
	"github.com/medicore/medicore/internal/domain/patient"
	"github.com/medicore/medicore/internal/domain/tenant"
	"github.com/medicore/medicore/internal/logger"
	"github.com/medicore/medicore/internal/postgres"
	"github.com/medicore/medicore/internal/types"
	"github.com/medicore/medicore/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	InvoiceRepo      invoice.Repository
	FinalInvoiceRepo invoice.FinalInvoiceRepository
	PatientRepo      patient.Repository
	SettingsRepo     tenant.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	db     postgres.IClient
	cache  cache.Cache
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := &config.Configuration{
		Deployment: config.DeploymentConfig{Mode: types.ModeLocal},
		Logging: config.LoggingConfig{
			Level: types.LogLevelInfo,
		},
	}
	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.ClearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	settings := NewInMemorySettingsStore()
	s.stores = Stores{
		InvoiceRepo:      NewInMemoryInvoiceStore(settings),
		FinalInvoiceRepo: NewInMemoryFinalInvoiceStore(),
		PatientRepo:      NewInMemoryPatientStore(),
		SettingsRepo:     settings,
	}
	s.db = NewMockPostgresClient(s.logger)
	s.cache = cache.NewInMemoryCache()
}

// ClearStores resets all stores to their initial state
func (s *BaseServiceTestSuite) ClearStores() {
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.FinalInvoiceRepo.(*InMemoryFinalInvoiceStore).Clear()
	s.stores.PatientRepo.(*InMemoryPatientStore).Clear()
	s.stores.SettingsRepo.(*InMemorySettingsStore).Clear()
	s.cache.Flush(s.ctx)
}

// GetContext returns the test context with tenant and user set
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetStores returns the test stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the mock postgres client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetCache returns the test cache
func (s *BaseServiceTestSuite) GetCache() cache.Cache {
	return s.cache
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetNow returns the timestamp captured at test setup
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
