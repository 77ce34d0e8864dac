package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/billing"
	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type RecordPaymentRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Date      string `json:"date" binding:"required"` // YYYY-MM-DD
	Method    string `json:"method" binding:"required,oneof=TRANSFER CHECK CARD CASH"`
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
}

type PaymentResponse struct {
	ID        string `json:"id"`
	InvoiceID string `json:"invoice_id"`
	Amount    string `json:"amount"`
	Date      string `json:"date"`
	Method    string `json:"method"`
	Reference string `json:"reference"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at"`
}

// --- Interface ---

type PaymentService interface {
	RecordPayment(ctx context.Context, companyID, userID, invoiceID string, req RecordPaymentRequest) (DocumentResponse, error)
	ListPayments(ctx context.Context, companyID, invoiceID string) ([]PaymentResponse, error)
}

type paymentService struct {
	paymentRepo repository.PaymentRepository
	docRepo     repository.DocumentRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *websocket.Hub
}

func NewPaymentService(
	paymentRepo repository.PaymentRepository,
	docRepo repository.DocumentRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) PaymentService {
	return &paymentService{
		paymentRepo: paymentRepo,
		docRepo:     docRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// --- Implementation ---

// RecordPayment registers money received against an invoice and derives the
// invoice's paid state: PARTIAL while amount_paid < total_incl_tax, PAID once
// fully covered. amount_due is always total_incl_tax - amount_paid.
func (s *paymentService) RecordPayment(ctx context.Context, companyID, userID, invoiceID string, req RecordPaymentRequest) (DocumentResponse, error) {
	tenantID, docID, err := parseScope(companyID, invoiceID)
	if err != nil {
		return DocumentResponse{}, err
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("invalid amount: %w", err)
	}
	if !amount.IsPositive() {
		return DocumentResponse{}, fmt.Errorf("payment amount must be positive")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}

	var invoice *model.Document
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		invoice, findErr = s.docRepo.FindByID(txCtx, tenantID, docID)
		if findErr != nil {
			return fmt.Errorf("invoice not found: %w", findErr)
		}
		if invoice.Kind != model.KindInvoice {
			return fmt.Errorf("%w: payments can only be recorded on invoices", billing.ErrPreconditionFailed)
		}
		switch invoice.Status {
		case model.InvoiceSent, model.InvoicePartial, model.InvoiceOverdue:
			// payable
		default:
			return fmt.Errorf("%w: invoice status %s does not accept payments",
				billing.ErrPreconditionFailed, invoice.Status)
		}

		newPaid := invoice.AmountPaid.Add(amount)
		if newPaid.GreaterThan(invoice.TotalInclTax) {
			return fmt.Errorf("payment of %s would exceed the amount due (%s remaining)",
				amount.StringFixed(2), invoice.AmountDue.StringFixed(2))
		}

		payment := model.Payment{
			CompanyID: tenantID,
			InvoiceID: invoice.ID,
			Amount:    amount,
			Date:      date,
			Method:    req.Method,
			Reference: req.Reference,
			Notes:     req.Notes,
		}
		if createErr := s.paymentRepo.Create(txCtx, &payment); createErr != nil {
			return fmt.Errorf("failed to record payment: %w", createErr)
		}

		invoice.AmountPaid = newPaid
		invoice.AmountDue = invoice.TotalInclTax.Sub(newPaid)
		if invoice.AmountDue.IsZero() {
			invoice.Status = model.InvoicePaid
		} else {
			invoice.Status = model.InvoicePartial
		}

		if updateErr := s.docRepo.Update(txCtx, invoice); updateErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	s.writeAuditLog(ctx, tenantID, userID, invoice, req)
	s.broadcastPayment(invoice)

	reloaded, err := s.docRepo.FindByID(ctx, tenantID, docID)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("failed to reload invoice: %w", err)
	}
	return toDocumentResponse(*reloaded), nil
}

func (s *paymentService) ListPayments(ctx context.Context, companyID, invoiceID string) ([]PaymentResponse, error) {
	tenantID, docID, err := parseScope(companyID, invoiceID)
	if err != nil {
		return nil, err
	}

	payments, err := s.paymentRepo.ListByInvoice(ctx, tenantID, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch payments: %w", err)
	}

	result := make([]PaymentResponse, 0, len(payments))
	for _, p := range payments {
		result = append(result, PaymentResponse{
			ID:        p.ID.String(),
			InvoiceID: p.InvoiceID.String(),
			Amount:    p.Amount.StringFixed(2),
			Date:      p.Date.Format("2006-01-02"),
			Method:    p.Method,
			Reference: p.Reference,
			Notes:     p.Notes,
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, nil
}

// --- Helpers ---

func (s *paymentService) writeAuditLog(ctx context.Context, tenantID uuid.UUID, userID string, invoice *model.Document, details interface{}) {
	detailsJSON, _ := json.Marshal(details)

	entry := model.AuditLog{
		CompanyID:  tenantID,
		Action:     model.ActionRecordPayment,
		EntityID:   invoice.ID.String(),
		EntityName: invoice.Number,
		Details:    string(detailsJSON),
	}
	if userID != "" {
		if parsed, err := uuid.Parse(userID); err == nil {
			entry.UserID = &parsed
		}
	}

	// Best-effort audit log, failures do not abort the operation
	_ = s.auditRepo.Log(ctx, &entry)
}

func (s *paymentService) broadcastPayment(invoice *model.Document) {
	if s.hub == nil {
		return
	}
	msg, err := json.Marshal(map[string]string{
		"type":       "invoice.payment_recorded",
		"id":         invoice.ID.String(),
		"number":     invoice.Number,
		"status":     invoice.Status,
		"amount_due": invoice.AmountDue.StringFixed(2),
	})
	if err != nil {
		return
	}
	s.hub.Broadcast <- msg
}
