package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/medicore/medicore/internal/api/dto"
	"github.com/medicore/medicore/internal/domain/patient"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/testutil"
	"github.com/medicore/medicore/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     InvoiceService
	invoiceRepo *testutil.InMemoryInvoiceStore
	patientRepo *testutil.InMemoryPatientStore
	testData    struct {
		patient *patient.Patient
	}
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.setupService()
	s.setupTestData()
}

func (s *InvoiceServiceSuite) setupService() {
	s.invoiceRepo = s.GetStores().InvoiceRepo.(*testutil.InMemoryInvoiceStore)
	s.patientRepo = s.GetStores().PatientRepo.(*testutil.InMemoryPatientStore)

	s.service = NewInvoiceService(ServiceParams{
		Logger:           s.GetLogger(),
		Config:           s.GetConfig(),
		DB:               s.GetDB(),
		Cache:            s.GetCache(),
		InvoiceRepo:      s.invoiceRepo,
		FinalInvoiceRepo: s.GetStores().FinalInvoiceRepo,
		PatientRepo:      s.patientRepo,
		SettingsRepo:     s.GetStores().SettingsRepo,
	})
}

func (s *InvoiceServiceSuite) setupTestData() {
	s.testData.patient = &patient.Patient{
		ID:          "pat_test_1",
		FirstName:   "Asha",
		LastName:    "Sharma",
		PatientCode: "PAT-000001",
		BaseModel:   types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.patientRepo.Create(s.GetContext(), s.testData.patient))
}

func (s *InvoiceServiceSuite) consultationRequest() dto.CreateInvoiceRequest {
	return dto.CreateInvoiceRequest{
		PatientID:   s.testData.patient.ID,
		InvoiceType: types.InvoiceTypeOutpatient,
		LineItems: []dto.CreateInvoiceLineItemRequest{
			{Name: "Consultation", Category: "OPD", Quantity: dec("1"), UnitPrice: dec("1000")},
			{Name: "X-Ray", Category: "Radiology", Quantity: dec("1"), UnitPrice: dec("500")},
		},
		DiscountPercent: lo.ToPtr(dec("10")),
		TaxPercent:      lo.ToPtr(dec("13")),
	}
}

func (s *InvoiceServiceSuite) TestCreateInvoiceWithPercentDiscount() {
	resp, err := s.service.CreateInvoice(s.GetContext(), s.consultationRequest())
	s.NoError(err)
	s.NotNil(resp)

	s.True(resp.Subtotal.Equal(dec("1500")), "subtotal %s", resp.Subtotal)
	s.True(resp.DiscountPercent.Equal(dec("10")))
	s.True(resp.DiscountAmount.Equal(dec("150")))
	s.True(resp.TaxAmount.Equal(dec("175.5")), "tax %s", resp.TaxAmount)
	s.True(resp.GrandTotal.Equal(dec("1525.5")), "grand total %s", resp.GrandTotal)

	s.Equal(types.PaymentStatusUnpaid, resp.PaymentStatus)
	s.True(resp.PaidAmount.IsZero())
	s.Equal("Asha Sharma", resp.PatientName)
	s.Equal("PAT-000001", resp.PatientCode)
	s.Equal("INVOICE-HSP-00001", resp.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceWithAmountDiscount() {
	req := s.consultationRequest()
	req.DiscountPercent = nil
	req.DiscountAmount = lo.ToPtr(dec("250"))

	resp, err := s.service.CreateInvoice(s.GetContext(), req)
	s.NoError(err)

	// 1500 - 250 = 1250, tax 13% = 162.5
	s.True(resp.DiscountAmount.Equal(dec("250")))
	s.True(resp.DiscountPercent.Equal(dec("16.67")), "derived percent %s", resp.DiscountPercent)
	s.True(resp.TaxAmount.Equal(dec("162.5")))
	s.True(resp.GrandTotal.Equal(dec("1412.5")))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceInvalidType() {
	req := s.consultationRequest()
	req.InvoiceType = "daycare"

	resp, err := s.service.CreateInvoice(s.GetContext(), req)
	s.Error(err)
	s.Nil(resp)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestCreateInvoiceUnknownPatient() {
	req := s.consultationRequest()
	req.PatientID = "pat_missing"

	resp, err := s.service.CreateInvoice(s.GetContext(), req)
	s.Error(err)
	s.Nil(resp)
	s.True(ierr.IsNotFound(err))

	count, err := s.invoiceRepo.Count(s.GetContext(), types.NewInvoiceFilter())
	s.NoError(err)
	s.Equal(0, count)
}

func (s *InvoiceServiceSuite) TestCreateInvoiceDiscountExceedsSubtotal() {
	req := s.consultationRequest()
	req.DiscountPercent = nil
	req.DiscountAmount = lo.ToPtr(dec("2000"))

	resp, err := s.service.CreateInvoice(s.GetContext(), req)
	s.Error(err)
	s.Nil(resp)
	s.True(ierr.IsValidation(err))

	// Nothing persisted and no invoice number burned
	count, err := s.invoiceRepo.Count(s.GetContext(), types.NewInvoiceFilter())
	s.NoError(err)
	s.Equal(0, count)

	next, err := s.invoiceRepo.NextInvoiceNumber(s.GetContext())
	s.NoError(err)
	s.Equal("INVOICE-HSP-00001", next)
}

func (s *InvoiceServiceSuite) TestInvoiceNumbersAreContiguous() {
	for i := 1; i <= 3; i++ {
		resp, err := s.service.CreateInvoice(s.GetContext(), s.consultationRequest())
		s.NoError(err)
		s.Equal(fmt.Sprintf("INVOICE-HSP-%05d", i), resp.InvoiceNumber)
	}
}

func (s *InvoiceServiceSuite) TestConcurrentInvoiceNumbersAreDistinct() {
	const n = 50

	var wg sync.WaitGroup
	numbers := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			number, err := s.invoiceRepo.NextInvoiceNumber(s.GetContext())
			s.NoError(err)
			numbers <- number
		}()
	}
	wg.Wait()
	close(numbers)

	seen := make(map[string]bool)
	for number := range numbers {
		s.False(seen[number], "duplicate invoice number %s", number)
		seen[number] = true
	}
	s.Len(seen, n)
	s.True(seen[fmt.Sprintf("INVOICE-HSP-%05d", n)], "sequence did not reach %d", n)
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceRecomputesAmountsAndKeepsNumber() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.consultationRequest())
	s.NoError(err)

	updated, err := s.service.UpdateInvoice(s.GetContext(), created.ID, dto.UpdateInvoiceRequest{
		LineItems: []dto.CreateInvoiceLineItemRequest{
			{Name: "Consultation", Category: "OPD", Quantity: dec("1"), UnitPrice: dec("2000")},
		},
	})
	s.NoError(err)

	// Discount and tax specification carries over: 2000 - 10% = 1800, +13% tax
	s.True(updated.Subtotal.Equal(dec("2000")))
	s.True(updated.DiscountAmount.Equal(dec("200")))
	s.True(updated.TaxAmount.Equal(dec("234")))
	s.True(updated.GrandTotal.Equal(dec("2034")))
	s.Equal(created.InvoiceNumber, updated.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceAmountDiscountReplacesStoredPercent() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.consultationRequest())
	s.NoError(err)
	s.True(created.DiscountPercent.Equal(dec("10")))

	// An amount with no percent switches the invoice to an amount-driven
	// discount; the stored percent does not shadow it.
	updated, err := s.service.UpdateInvoice(s.GetContext(), created.ID, dto.UpdateInvoiceRequest{
		DiscountAmount: lo.ToPtr(dec("300")),
	})
	s.NoError(err)

	s.True(updated.DiscountAmount.Equal(dec("300")), "discount amount %s", updated.DiscountAmount)
	s.True(updated.DiscountPercent.Equal(dec("20")), "derived percent %s", updated.DiscountPercent)
	s.True(updated.TaxAmount.Equal(dec("156")))
	s.True(updated.GrandTotal.Equal(dec("1356")))
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceCarriesPaymentFields() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.consultationRequest())
	s.NoError(err)

	updated, err := s.service.UpdateInvoice(s.GetContext(), created.ID, dto.UpdateInvoiceRequest{
		PaymentStatus: lo.ToPtr(types.PaymentStatusPartial),
		PaymentMode:   types.PaymentModeUPI,
		PaidAmount:    lo.ToPtr(dec("500")),
	})
	s.NoError(err)

	s.Equal(types.PaymentStatusPartial, updated.PaymentStatus)
	s.Equal(types.PaymentModeUPI, updated.PaymentMode)
	s.True(updated.PaidAmount.Equal(dec("500")))

	// A payment-only update leaves the amount breakdown untouched
	s.True(updated.DiscountAmount.Equal(dec("150")))
	s.True(updated.GrandTotal.Equal(dec("1525.5")))
	s.Equal(created.InvoiceNumber, updated.InvoiceNumber)
}

func (s *InvoiceServiceSuite) TestUpdateInvoiceNotFound() {
	_, err := s.service.UpdateInvoice(s.GetContext(), "inv_missing", dto.UpdateInvoiceRequest{
		TaxPercent: lo.ToPtr(dec("5")),
	})
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *InvoiceServiceSuite) TestUpdatePayment() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.consultationRequest())
	s.NoError(err)

	partial, err := s.service.UpdatePayment(s.GetContext(), created.ID, dto.UpdatePaymentRequest{
		PaymentStatus: types.PaymentStatusPartial,
		PaymentMode:   types.PaymentModeCash,
		PaidAmount:    lo.ToPtr(dec("500")),
	})
	s.NoError(err)
	s.Equal(types.PaymentStatusPartial, partial.PaymentStatus)
	s.True(partial.PaidAmount.Equal(dec("500")))

	// Paid amount is not reconciled against the grand total
	over, err := s.service.UpdatePayment(s.GetContext(), created.ID, dto.UpdatePaymentRequest{
		PaymentStatus: types.PaymentStatusPaid,
		PaymentMode:   types.PaymentModeUPI,
		PaidAmount:    lo.ToPtr(dec("2000")),
	})
	s.NoError(err)
	s.Equal(types.PaymentStatusPaid, over.PaymentStatus)
	s.True(over.PaidAmount.Equal(dec("2000")))
}

func (s *InvoiceServiceSuite) TestUpdatePaymentInvalidStatus() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.consultationRequest())
	s.NoError(err)

	_, err = s.service.UpdatePayment(s.GetContext(), created.ID, dto.UpdatePaymentRequest{
		PaymentStatus: "Settled",
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *InvoiceServiceSuite) TestListInvoicesFiltersByPaymentStatus() {
	first, err := s.service.CreateInvoice(s.GetContext(), s.consultationRequest())
	s.NoError(err)
	_, err = s.service.CreateInvoice(s.GetContext(), s.consultationRequest())
	s.NoError(err)

	_, err = s.service.UpdatePayment(s.GetContext(), first.ID, dto.UpdatePaymentRequest{
		PaymentStatus: types.PaymentStatusPaid,
		PaidAmount:    lo.ToPtr(dec("1525.5")),
	})
	s.NoError(err)

	filter := types.NewInvoiceFilter()
	filter.PaymentStatus = types.PaymentStatusPaid

	resp, err := s.service.ListInvoices(s.GetContext(), filter)
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
	s.Len(resp.Items, 1)
	s.Equal(first.ID, resp.Items[0].ID)
}

func (s *InvoiceServiceSuite) TestGetInvoiceEnrichesPatient() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.consultationRequest())
	s.NoError(err)

	got, err := s.service.GetInvoice(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal("Asha Sharma", got.PatientName)
	s.Equal("PAT-000001", got.PatientCode)
	s.Len(got.LineItems, 2)
	s.Equal("Consultation", got.LineItems[0].Name)
}

func (s *InvoiceServiceSuite) TestGetInvoiceCrossTenant() {
	created, err := s.service.CreateInvoice(s.GetContext(), s.consultationRequest())
	s.NoError(err)

	otherTenant := testutil.SetupContext()
	otherTenant = types.SetTenantID(otherTenant, "tenant_other")

	_, err = s.service.GetInvoice(otherTenant, created.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
