package service

import (
	"context"

	"github.com/medicore/medicore/internal/api/dto"
	"github.com/medicore/medicore/internal/domain/billing"
	"github.com/medicore/medicore/internal/domain/invoice"
	ierr "github.com/medicore/medicore/internal/errors"
	"github.com/medicore/medicore/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

type BillingService interface {
	// ConsolidateForPatient merges all of a patient's invoices into one final
	// invoice. Each call produces a new final invoice; callers decide whether
	// a patient should be consolidated more than once.
	ConsolidateForPatient(ctx context.Context, req dto.ConsolidateInvoicesRequest) (*dto.FinalInvoiceResponse, error)
	GetFinalInvoice(ctx context.Context, id string) (*dto.FinalInvoiceResponse, error)
	ListFinalInvoices(ctx context.Context, filter *types.FinalInvoiceFilter) (*dto.ListFinalInvoicesResponse, error)
	UpdateFinalInvoicePayment(ctx context.Context, id string, req dto.UpdatePaymentRequest) (*dto.FinalInvoiceResponse, error)
	GetBillingSummary(ctx context.Context) (*dto.BillingSummaryResponse, error)
}

type billingService struct {
	ServiceParams
}

func NewBillingService(params ServiceParams) BillingService {
	return &billingService{ServiceParams: params}
}

func (s *billingService) ConsolidateForPatient(ctx context.Context, req dto.ConsolidateInvoicesRequest) (*dto.FinalInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PatientRepo.Get(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	invoices, err := s.InvoiceRepo.ListByPatient(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	if len(invoices) == 0 {
		return nil, ierr.NewError("no invoices to consolidate").
			WithHintf("Patient %s has no invoices to consolidate", req.PatientID).
			WithReportableDetails(map[string]any{
				"patient_id": req.PatientID,
			}).
			Mark(ierr.ErrNotFound)
	}

	// Merge line items and source ids in fetch order. The combined subtotal is
	// the sum of source subtotals; source discounts and taxes do not carry
	// over, the request supplies a fresh specification.
	var lineItems []invoice.LineItem
	sourceIDs := make([]string, 0, len(invoices))
	subtotal := decimal.Zero
	for _, inv := range invoices {
		lineItems = append(lineItems, inv.LineItems...)
		sourceIDs = append(sourceIDs, inv.ID)
		subtotal = subtotal.Add(inv.Subtotal)
	}

	amounts := billing.Calculate(subtotal, req.Discount(), req.GetTaxPercent())

	fi := &invoice.FinalInvoice{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_FINAL_INVOICE),
		PatientID:        req.PatientID,
		SourceInvoiceIDs: sourceIDs,
		LineItems:        lineItems,
		PaymentStatus:    lo.FromPtrOr(req.PaymentStatus, types.PaymentStatusUnpaid),
		PaymentMode:      req.PaymentMode,
		PaidAmount:       decimal.Zero,
		PatientName:      p.FullName(),
		BaseModel:        types.GetDefaultBaseModel(ctx),
	}
	fi.ApplyAmounts(amounts)

	if err := fi.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		number, err := s.InvoiceRepo.NextInvoiceNumber(ctx)
		if err != nil {
			return err
		}
		fi.InvoiceNumber = number

		return s.FinalInvoiceRepo.Create(ctx, fi)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("consolidated invoices",
		"final_invoice_id", fi.ID,
		"invoice_number", fi.InvoiceNumber,
		"patient_id", fi.PatientID,
		"source_invoices", len(sourceIDs),
		"grand_total", fi.GrandTotal,
	)

	return dto.NewFinalInvoiceResponse(fi), nil
}

func (s *billingService) GetFinalInvoice(ctx context.Context, id string) (*dto.FinalInvoiceResponse, error) {
	fi, err := s.FinalInvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.NewFinalInvoiceResponse(fi), nil
}

func (s *billingService) ListFinalInvoices(ctx context.Context, filter *types.FinalInvoiceFilter) (*dto.ListFinalInvoicesResponse, error) {
	if filter == nil {
		filter = types.NewFinalInvoiceFilter()
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	finals, err := s.FinalInvoiceRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	count, err := s.FinalInvoiceRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]*dto.FinalInvoiceResponse, 0, len(finals))
	for _, fi := range finals {
		items = append(items, dto.NewFinalInvoiceResponse(fi))
	}

	return &dto.ListFinalInvoicesResponse{
		Items: items,
		Pagination: types.PaginationResponse{
			Total:  count,
			Limit:  filter.GetLimit(),
			Offset: filter.GetOffset(),
		},
	}, nil
}

func (s *billingService) UpdateFinalInvoicePayment(ctx context.Context, id string, req dto.UpdatePaymentRequest) (*dto.FinalInvoiceResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	fi, err := s.FinalInvoiceRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fi.PaymentStatus = req.PaymentStatus
	if req.PaymentMode != "" {
		fi.PaymentMode = req.PaymentMode
	}
	if req.PaidAmount != nil {
		fi.PaidAmount = *req.PaidAmount
	}
	fi.UpdatedBy = types.GetUserID(ctx)

	if err := s.FinalInvoiceRepo.Update(ctx, fi); err != nil {
		return nil, err
	}

	s.Logger.Infow("updated final invoice payment",
		"final_invoice_id", fi.ID,
		"payment_status", fi.PaymentStatus,
		"paid_amount", fi.PaidAmount,
	)

	return dto.NewFinalInvoiceResponse(fi), nil
}

// GetBillingSummary aggregates the tenant's published invoices into the
// dashboard rollup. Pending amount counts the unpaid remainder of invoices
// that are not fully settled.
func (s *billingService) GetBillingSummary(ctx context.Context) (*dto.BillingSummaryResponse, error) {
	invoices, err := s.InvoiceRepo.List(ctx, types.NewNoLimitInvoiceFilter())
	if err != nil {
		return nil, err
	}

	summary := &dto.BillingSummaryResponse{
		PaidRevenue:   decimal.Zero,
		PendingAmount: decimal.Zero,
	}

	for _, inv := range invoices {
		summary.TotalInvoices++
		switch inv.PaymentStatus {
		case types.PaymentStatusUnpaid:
			summary.UnpaidInvoices++
			summary.PendingAmount = summary.PendingAmount.Add(inv.GrandTotal.Sub(inv.PaidAmount))
		case types.PaymentStatusPartial:
			summary.PartialInvoices++
			summary.PendingAmount = summary.PendingAmount.Add(inv.GrandTotal.Sub(inv.PaidAmount))
		case types.PaymentStatusPaid:
			summary.PaidInvoices++
			summary.PaidRevenue = summary.PaidRevenue.Add(inv.GrandTotal)
		}
	}

	return summary, nil
}
