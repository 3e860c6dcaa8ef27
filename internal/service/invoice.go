package service

import (
	"context"

	"github.com/medicore/medicore/internal/api/dto"
	"github.com/medicore/medicore/internal/cache"
	"github.com/medicore/medicore/internal/domain/billing"
	"github.com/medicore/medicore/internal/domain/invoice"
	"github.com/medicore/medicore/internal/domain/patient"
	"github.com/medicore/medicore/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type InvoiceService interface {
	CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error)
	UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error)
	UpdatePayment(ctx context.Context, id string, req dto.UpdatePaymentRequest) (*dto.InvoiceResponse, error)
}

type invoiceService struct {
	ServiceParams
}

func NewInvoiceService(params ServiceParams) InvoiceService {
	return &invoiceService{ServiceParams: params}
}

func (s *invoiceService) CreateInvoice(ctx context.Context, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.getPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	lineItems := make([]invoice.LineItem, 0, len(req.LineItems))
	subtotal := decimal.Zero
	for i := range req.LineItems {
		item := req.LineItems[i].ToLineItem()
		subtotal = subtotal.Add(item.Total)
		lineItems = append(lineItems, item)
	}

	amounts := billing.Calculate(subtotal, req.Discount(), req.GetTaxPercent())

	inv := &invoice.Invoice{
		ID:            types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		PatientID:     req.PatientID,
		InvoiceType:   req.InvoiceType,
		LineItems:     lineItems,
		PaymentStatus: lo.FromPtrOr(req.PaymentStatus, types.PaymentStatusUnpaid),
		PaymentMode:   req.PaymentMode,
		PaidAmount:    lo.FromPtrOr(req.PaidAmount, decimal.Zero),
		BaseModel:     types.GetDefaultBaseModel(ctx),
	}
	inv.ApplyAmounts(amounts)

	// Reject before touching the number sequence so a failed create does not
	// burn a number.
	if err := inv.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		number, err := s.InvoiceRepo.NextInvoiceNumber(ctx)
		if err != nil {
			return err
		}
		inv.InvoiceNumber = number

		return s.InvoiceRepo.Create(ctx, inv)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"patient_id", inv.PatientID,
		"grand_total", inv.GrandTotal,
	)

	s.enrichInvoice(inv, p)
	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, id string) (*dto.InvoiceResponse, error) {
	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if p, err := s.getPatient(ctx, inv.PatientID); err == nil {
		s.enrichInvoice(inv, p)
	}

	return dto.NewInvoiceResponse(inv), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, filter *types.InvoiceFilter) (*dto.ListInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.InvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		if p, err := s.getPatient(ctx, inv.PatientID); err == nil {
			s.enrichInvoice(inv, p)
		}
		items = append(items, dto.NewInvoiceResponse(inv))
	}

	return &dto.ListInvoicesResponse{
		Items: items,
		Pagination: types.PaginationResponse{
			Total:  count,
			Limit:  filter.GetLimit(),
			Offset: filter.GetOffset(),
		},
	}, nil
}

// UpdateInvoice replaces the mutable pricing inputs and recomputes the amount
// breakdown. The invoice number assigned at creation is never reissued.
func (s *invoiceService) UpdateInvoice(ctx context.Context, id string, req dto.UpdateInvoiceRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if len(req.LineItems) > 0 {
		lineItems := make([]invoice.LineItem, 0, len(req.LineItems))
		for i := range req.LineItems {
			lineItems = append(lineItems, req.LineItems[i].ToLineItem())
		}
		inv.LineItems = lineItems
	}

	subtotal := decimal.Zero
	for i := range inv.LineItems {
		subtotal = subtotal.Add(inv.LineItems[i].Total)
	}

	// The request's discount fields replace the stored ones wholesale, so an
	// amount with no percent is amount-driven even when the stored percent is
	// nonzero. Only an update with neither field keeps the existing discount.
	percent := req.DiscountPercent
	amount := req.DiscountAmount
	if percent == nil && amount == nil {
		percent = lo.ToPtr(inv.DiscountPercent)
	}
	taxPercent := inv.TaxPercent
	if req.TaxPercent != nil {
		taxPercent = *req.TaxPercent
	}

	amounts := billing.Calculate(subtotal, billing.ResolveDiscount(percent, amount), taxPercent)
	inv.ApplyAmounts(amounts)

	if req.PaymentStatus != nil {
		inv.PaymentStatus = *req.PaymentStatus
	}
	if req.PaymentMode != "" {
		inv.PaymentMode = req.PaymentMode
	}
	if req.PaidAmount != nil {
		inv.PaidAmount = *req.PaidAmount
	}
	inv.UpdatedBy = types.GetUserID(ctx)

	if err := inv.Validate(); err != nil {
		return nil, err
	}

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("updated invoice",
		"invoice_id", inv.ID,
		"invoice_number", inv.InvoiceNumber,
		"grand_total", inv.GrandTotal,
	)

	if p, err := s.getPatient(ctx, inv.PatientID); err == nil {
		s.enrichInvoice(inv, p)
	}

	return dto.NewInvoiceResponse(inv), nil
}

// UpdatePayment records a payment against an invoice. The paid amount is not
// checked against the grand total; overpayment and refund flows settle
// outside this service.
func (s *invoiceService) UpdatePayment(ctx context.Context, id string, req dto.UpdatePaymentRequest) (*dto.InvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.InvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	inv.PaymentStatus = req.PaymentStatus
	if req.PaymentMode != "" {
		inv.PaymentMode = req.PaymentMode
	}
	if req.PaidAmount != nil {
		inv.PaidAmount = *req.PaidAmount
	}
	inv.UpdatedBy = types.GetUserID(ctx)

	if err := s.InvoiceRepo.Update(ctx, inv); err != nil {
		return nil, err
	}

	s.Logger.Infow("updated invoice payment",
		"invoice_id", inv.ID,
		"payment_status", inv.PaymentStatus,
		"paid_amount", inv.PaidAmount,
	)

	return dto.NewInvoiceResponse(inv), nil
}

// getPatient resolves a patient through the read cache. A cross-tenant id is
// indistinguishable from a missing one.
func (s *invoiceService) getPatient(ctx context.Context, id string) (*patient.Patient, error) {
	key := cache.GenerateKey(cache.PrefixPatient, types.GetTenantID(ctx), id)
	if cached, found := s.Cache.Get(ctx, key); found {
		if p, ok := cached.(*patient.Patient); ok {
			return p, nil
		}
	}

	p, err := s.PatientRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Cache.Set(ctx, key, p, cache.DefaultExpiration)
	return p, nil
}

func (s *invoiceService) enrichInvoice(inv *invoice.Invoice, p *patient.Patient) {
	inv.PatientName = p.FullName()
	inv.PatientCode = p.PatientCode
}
