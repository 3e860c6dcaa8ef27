package service

import (
	"testing"
	"time"

	"github.com/medicore/medicore/internal/api/dto"
	"github.com/medicore/medicore/internal/domain/invoice"
	"github.com/medicore/medicore/internal/domain/patient"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/testutil"
	"github.com/medicore/medicore/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type BillingServiceSuite struct {
	testutil.BaseServiceTestSuite
	service          BillingService
	invoiceRepo      *testutil.InMemoryInvoiceStore
	finalInvoiceRepo *testutil.InMemoryFinalInvoiceStore
	patientRepo      *testutil.InMemoryPatientStore
	testData         struct {
		patient *patient.Patient
	}
}

func TestBillingService(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func (s *BillingServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *BillingServiceSuite) setupService() {
	s.invoiceRepo = s.GetStores().InvoiceRepo.(*testutil.InMemoryInvoiceStore)
	s.finalInvoiceRepo = s.GetStores().FinalInvoiceRepo.(*testutil.InMemoryFinalInvoiceStore)
	s.patientRepo = s.GetStores().PatientRepo.(*testutil.InMemoryPatientStore)

	s.service = NewBillingService(ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		Cache:            s.GetCache(),
		InvoiceRepo:      s.invoiceRepo,
		FinalInvoiceRepo: s.finalInvoiceRepo,
		PatientRepo:      s.patientRepo,
		SettingsRepo:     s.GetStores().SettingsRepo,
	})
}

func (s *BillingServiceSuite) setupTestData() {
	s.testData.patient = &patient.Patient{
		ID:          "pat_test_1",
		FirstName:   "Ravi",
		LastName:    "Thapa",
		PatientCode: "PAT-000002",
		BaseModel:   types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.patientRepo.Create(s.GetContext(), s.testData.patient))
}

// seedInvoice writes a source invoice directly with an explicit creation time
// so consolidation fetch order is deterministic in tests.
func (s *BillingServiceSuite) seedInvoice(id string, subtotal decimal.Decimal, items []invoice.LineItem, createdAt time.Time) *invoice.Invoice {
	base := types.GetDefaultBaseModel(s.GetContext())
	base.CreatedAt = createdAt
	base.UpdatedAt = createdAt

	inv := &invoice.Invoice{
		ID:            id,
		PatientID:     s.testData.patient.ID,
		InvoiceType:   types.InvoiceTypeOutpatient,
		InvoiceNumber: "INVOICE-HSP-" + id,
		LineItems:     items,
		Subtotal:      subtotal,
		GrandTotal:    subtotal,
		PaymentStatus: types.PaymentStatusUnpaid,
		PaidAmount:    decimal.Zero,
		BaseModel:     base,
	}
	s.NoError(s.invoiceRepo.Create(s.GetContext(), inv))
	return inv
}

func (s *BillingServiceSuite) seedTwoInvoices() {
	s.seedInvoice("inv_a", dec("1000"), []invoice.LineItem{
		{Name: "Bed Charges", Category: "IPD", Quantity: dec("2"), UnitPrice: dec("500"), Total: dec("1000")},
	}, s.GetNow().Add(-2*time.Hour))

	s.seedInvoice("inv_b", dec("500"), []invoice.LineItem{
		{Name: "Lab Panel", Category: "Lab", Quantity: dec("1"), UnitPrice: dec("500"), Total: dec("500")},
	}, s.GetNow().Add(-1*time.Hour))
}

func (s *BillingServiceSuite) TestConsolidateForPatient() {
	s.seedTwoInvoices()

	resp, err := s.service.ConsolidateForPatient(s.GetContext(), dto.ConsolidateInvoicesRequest{
		PatientID:       s.testData.patient.ID,
		DiscountPercent: lo.ToPtr(dec("10")),
		TaxPercent:      lo.ToPtr(dec("13")),
	})
	s.NoError(err)
	s.NotNil(resp)

	// Combined subtotal 1500, discount 150, tax 13% of 1350 = 175.5
	s.True(resp.Subtotal.Equal(dec("1500")))
	s.True(resp.DiscountAmount.Equal(dec("150")))
	s.True(resp.TaxAmount.Equal(dec("175.5")))
	s.True(resp.GrandTotal.Equal(dec("1525.5")))

	// Source ids in fetch order, merged line items in the same order
	s.Equal([]string{"inv_a", "inv_b"}, resp.SourceInvoiceIDs)
	s.Len(resp.LineItems, 2)
	s.Equal("Bed Charges", resp.LineItems[0].Name)
	s.Equal("Lab Panel", resp.LineItems[1].Name)

	// Fresh payment state, own number, patient name snapshot
	s.Equal(types.PaymentStatusUnpaid, resp.PaymentStatus)
	s.True(resp.PaidAmount.IsZero())
	s.Equal("INVOICE-HSP-00001", resp.InvoiceNumber)
	s.Equal("Ravi Thapa", resp.PatientName)
}

func (s *BillingServiceSuite) TestConsolidateNoInvoices() {
	resp, err := s.service.ConsolidateForPatient(s.GetContext(), dto.ConsolidateInvoicesRequest{
		PatientID: s.testData.patient.ID,
	})
	s.Error(err)
	s.Nil(resp)
	s.True(ierr.IsNotFound(err))

	count, err := s.finalInvoiceRepo.Count(s.GetContext(), types.NewFinalInvoiceFilter())
	s.NoError(err)
	s.Equal(0, count)
}

func (s *BillingServiceSuite) TestConsolidateUnknownPatient() {
	resp, err := s.service.ConsolidateForPatient(s.GetContext(), dto.ConsolidateInvoicesRequest{
		PatientID: "pat_missing",
	})
	s.Error(err)
	s.Nil(resp)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingServiceSuite) TestConsolidateTwiceCreatesTwoFinalInvoices() {
	s.seedTwoInvoices()

	req := dto.ConsolidateInvoicesRequest{
		PatientID:  s.testData.patient.ID,
		TaxPercent: lo.ToPtr(dec("13")),
	}

	first, err := s.service.ConsolidateForPatient(s.GetContext(), req)
	s.NoError(err)
	second, err := s.service.ConsolidateForPatient(s.GetContext(), req)
	s.NoError(err)

	s.NotEqual(first.ID, second.ID)
	s.NotEqual(first.InvoiceNumber, second.InvoiceNumber)
	s.Equal(first.SourceInvoiceIDs, second.SourceInvoiceIDs)

	count, err := s.finalInvoiceRepo.Count(s.GetContext(), types.NewFinalInvoiceFilter())
	s.NoError(err)
	s.Equal(2, count)
}

func (s *BillingServiceSuite) TestConsolidateWithAmountDiscount() {
	s.seedTwoInvoices()

	resp, err := s.service.ConsolidateForPatient(s.GetContext(), dto.ConsolidateInvoicesRequest{
		PatientID:      s.testData.patient.ID,
		DiscountAmount: lo.ToPtr(dec("300")),
	})
	s.NoError(err)

	// 1500 - 300, no tax
	s.True(resp.DiscountAmount.Equal(dec("300")))
	s.True(resp.DiscountPercent.Equal(dec("20")))
	s.True(resp.GrandTotal.Equal(dec("1200")))
}

func (s *BillingServiceSuite) TestConsolidateWithPaymentState() {
	s.seedTwoInvoices()

	resp, err := s.service.ConsolidateForPatient(s.GetContext(), dto.ConsolidateInvoicesRequest{
		PatientID:     s.testData.patient.ID,
		TaxPercent:    lo.ToPtr(dec("13")),
		PaymentStatus: lo.ToPtr(types.PaymentStatusPaid),
		PaymentMode:   types.PaymentModeCash,
	})
	s.NoError(err)

	s.Equal(types.PaymentStatusPaid, resp.PaymentStatus)
	s.Equal(types.PaymentModeCash, resp.PaymentMode)
}

func (s *BillingServiceSuite) TestConsolidateInvalidPaymentStatus() {
	s.seedTwoInvoices()

	resp, err := s.service.ConsolidateForPatient(s.GetContext(), dto.ConsolidateInvoicesRequest{
		PatientID:     s.testData.patient.ID,
		PaymentStatus: lo.ToPtr(types.PaymentStatus("Settled")),
	})
	s.Error(err)
	s.Nil(resp)
	s.True(ierr.IsValidation(err))
}

func (s *BillingServiceSuite) TestGetFinalInvoice() {
	s.seedTwoInvoices()

	created, err := s.service.ConsolidateForPatient(s.GetContext(), dto.ConsolidateInvoicesRequest{
		PatientID: s.testData.patient.ID,
	})
	s.NoError(err)

	got, err := s.service.GetFinalInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(created.ID, got.ID)
	s.Equal([]string{"inv_a", "inv_b"}, got.SourceInvoiceIDs)

	_, err = s.service.GetFinalInvoice(s.GetContext(), "finv_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *BillingServiceSuite) TestListFinalInvoicesByPatient() {
	s.seedTwoInvoices()

	_, err := s.service.ConsolidateForPatient(s.GetContext(), dto.ConsolidateInvoicesRequest{
		PatientID: s.testData.patient.ID,
	})
	s.NoError(err)

	filter := types.NewFinalInvoiceFilter()
	filter.PatientID = s.testData.patient.ID

	resp, err := s.service.ListFinalInvoices(s.GetContext(), filter)
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
	s.Len(resp.Items, 1)

	filter = types.NewFinalInvoiceFilter()
	filter.PatientID = "pat_other"
	resp, err = s.service.ListFinalInvoices(s.GetContext(), filter)
	s.NoError(err)
	s.Equal(0, resp.Pagination.Total)
}

func (s *BillingServiceSuite) TestUpdateFinalInvoicePayment() {
	s.seedTwoInvoices()

	created, err := s.service.ConsolidateForPatient(s.GetContext(), dto.ConsolidateInvoicesRequest{
		PatientID: s.testData.patient.ID,
	})
	s.NoError(err)

	updated, err := s.service.UpdateFinalInvoicePayment(s.GetContext(), created.ID, dto.UpdatePaymentRequest{
		PaymentStatus: types.PaymentStatusPaid,
		PaymentMode:   types.PaymentModeInsurance,
		PaidAmount:    lo.ToPtr(dec("1500")),
	})
	s.NoError(err)
	s.Equal(types.PaymentStatusPaid, updated.PaymentStatus)
	s.Equal(types.PaymentModeInsurance, updated.PaymentMode)
	s.True(updated.PaidAmount.Equal(dec("1500")))
}

func (s *BillingServiceSuite) TestGetBillingSummary() {
	paid := s.seedInvoice("inv_paid", dec("1000"), nil, s.GetNow().Add(-3*time.Hour))
	paid.PaymentStatus = types.PaymentStatusPaid
	paid.PaidAmount = dec("1000")
	s.NoError(s.invoiceRepo.Update(s.GetContext(), paid))

	partial := s.seedInvoice("inv_partial", dec("500"), nil, s.GetNow().Add(-2*time.Hour))
	partial.PaymentStatus = types.PaymentStatusPartial
	partial.PaidAmount = dec("200")
	s.NoError(s.invoiceRepo.Update(s.GetContext(), partial))

	s.seedInvoice("inv_unpaid", dec("250"), nil, s.GetNow().Add(-1*time.Hour))

	summary, err := s.service.GetBillingSummary(s.GetContext())
	s.NoError(err)
	s.Equal(3, summary.TotalInvoices)
	s.Equal(1, summary.PaidInvoices)
	s.Equal(1, summary.PartialInvoices)
	s.Equal(1, summary.UnpaidInvoices)
	s.True(summary.PaidRevenue.Equal(dec("1000")))
	// Pending: (500 - 200) + 250
	s.True(summary.PendingAmount.Equal(dec("550")))
}
