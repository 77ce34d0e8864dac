package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/billing"
	"backend/internal/model"
	"backend/internal/render"
	"backend/internal/repository"
	"backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type LineInput struct {
	Designation     string `json:"designation" binding:"required"`
	Description     string `json:"description"`
	Quantity        string `json:"quantity" binding:"required"`
	Unit            string `json:"unit" binding:"required,oneof=M2 ML U FORFAIT H"`
	UnitPrice       string `json:"unit_price" binding:"required"`
	VATRate         string `json:"vat_rate" binding:"required"`
	DiscountPercent string `json:"discount_percent"` // optional, defaults to 0
}

type CreateDocumentRequest struct {
	Title                 string      `json:"title"`
	Date                  string      `json:"date" binding:"required"` // YYYY-MM-DD
	DueDate               string      `json:"due_date"`                // invoices only
	ClientID              string      `json:"client_id" binding:"required"`
	ProjectID             string      `json:"project_id"`
	GlobalDiscountPercent string      `json:"global_discount_percent"`
	PaymentTerms          string      `json:"payment_terms"`
	Notes                 string      `json:"notes"`
	Lines                 []LineInput `json:"lines"`
}

type UpdateDocumentRequest struct {
	Title                 *string     `json:"title"`
	Date                  *string     `json:"date"`
	DueDate               *string     `json:"due_date"`
	ProjectID             *string     `json:"project_id"`
	GlobalDiscountPercent *string     `json:"global_discount_percent"`
	PaymentTerms          *string     `json:"payment_terms"`
	Notes                 *string     `json:"notes"`
	Lines                 []LineInput `json:"lines"` // full replacement when present
}

type DocumentFilter struct {
	Kind     string // QUOTE, INVOICE or empty for all
	Status   string
	ClientID string
	Search   string
	Page     int
	Limit    int
}

type LineResponse struct {
	ID               string `json:"id"`
	Position         int    `json:"position"`
	Designation      string `json:"designation"`
	Description      string `json:"description"`
	Quantity         string `json:"quantity"`
	Unit             string `json:"unit"`
	UnitPrice        string `json:"unit_price"`
	VATRate          string `json:"vat_rate"`
	DiscountPercent  string `json:"discount_percent"`
	LineTotalExclTax string `json:"line_total_excl_tax"`
}

type TaxBucketResponse struct {
	Rate string `json:"rate"`
	Base string `json:"base"`
	Tax  string `json:"tax"`
}

type DocumentResponse struct {
	ID                    string              `json:"id"`
	Kind                  string              `json:"kind"`
	Number                string              `json:"number"`
	Title                 string              `json:"title"`
	Status                string              `json:"status"`
	Date                  string              `json:"date"`
	DueDate               *string             `json:"due_date"`
	ClientID              string              `json:"client_id"`
	ClientName            string              `json:"client_name,omitempty"`
	ProjectID             *string             `json:"project_id"`
	GlobalDiscountPercent string              `json:"global_discount_percent"`
	Subtotal              string              `json:"subtotal"`
	GlobalDiscountAmount  string              `json:"global_discount_amount"`
	TotalExclTax          string              `json:"total_excl_tax"`
	TaxBuckets            []TaxBucketResponse `json:"tax_buckets"`
	TotalTax              string              `json:"total_tax"`
	TotalInclTax          string              `json:"total_incl_tax"`
	AmountPaid            string              `json:"amount_paid"`
	AmountDue             string              `json:"amount_due"`
	QuoteID               *string             `json:"quote_id"`
	PaymentTerms          string              `json:"payment_terms"`
	Notes                 string              `json:"notes"`
	Lines                 []LineResponse      `json:"lines"`
	CreatedAt             string              `json:"created_at"`
}

// --- Interface ---

type DocumentService interface {
	CreateQuote(ctx context.Context, companyID, userID string, req CreateDocumentRequest) (DocumentResponse, error)
	CreateInvoice(ctx context.Context, companyID, userID string, req CreateDocumentRequest) (DocumentResponse, error)
	GetDocument(ctx context.Context, companyID, id string) (DocumentResponse, error)
	ListDocuments(ctx context.Context, companyID string, filter DocumentFilter) ([]DocumentResponse, int64, error)
	UpdateDocument(ctx context.Context, companyID, userID, id string, req UpdateDocumentRequest) (DocumentResponse, error)
	UpdateStatus(ctx context.Context, companyID, userID, id, status string) (DocumentResponse, error)
	ConvertQuoteToInvoice(ctx context.Context, companyID, userID, quoteID string) (DocumentResponse, error)
	DuplicateQuote(ctx context.Context, companyID, userID, quoteID string) (DocumentResponse, error)
	DeleteDocument(ctx context.Context, companyID, userID, id string) error
	BuildRenderPayload(ctx context.Context, companyID, id string) (render.Payload, error)
}

type documentService struct {
	docRepo     repository.DocumentRepository
	seqRepo     repository.SequenceRepository
	clientRepo  repository.ClientRepository
	projectRepo repository.ProjectRepository
	companyRepo repository.CompanyRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *websocket.Hub
}

func NewDocumentService(
	docRepo repository.DocumentRepository,
	seqRepo repository.SequenceRepository,
	clientRepo repository.ClientRepository,
	projectRepo repository.ProjectRepository,
	companyRepo repository.CompanyRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) DocumentService {
	return &documentService{
		docRepo:     docRepo,
		seqRepo:     seqRepo,
		clientRepo:  clientRepo,
		projectRepo: projectRepo,
		companyRepo: companyRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// --- Implementation ---

func (s *documentService) CreateQuote(ctx context.Context, companyID, userID string, req CreateDocumentRequest) (DocumentResponse, error) {
	return s.createDocument(ctx, companyID, userID, model.KindQuote, req)
}

func (s *documentService) CreateInvoice(ctx context.Context, companyID, userID string, req CreateDocumentRequest) (DocumentResponse, error) {
	return s.createDocument(ctx, companyID, userID, model.KindInvoice, req)
}

func (s *documentService) createDocument(ctx context.Context, companyID, userID, kind string, req CreateDocumentRequest) (DocumentResponse, error) {
	tenantID, err := uuid.Parse(companyID)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("invalid company id: %w", err)
	}

	clientID, err := uuid.Parse(req.ClientID)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("invalid client id: %w", err)
	}
	if _, err := s.clientRepo.FindByID(ctx, tenantID, clientID); err != nil {
		return DocumentResponse{}, fmt.Errorf("client not found: %w", err)
	}

	var projectID *uuid.UUID
	if req.ProjectID != "" {
		parsed, parseErr := uuid.Parse(req.ProjectID)
		if parseErr != nil {
			return DocumentResponse{}, fmt.Errorf("invalid project id: %w", parseErr)
		}
		if _, err := s.projectRepo.FindByID(ctx, tenantID, parsed); err != nil {
			return DocumentResponse{}, fmt.Errorf("project not found: %w", err)
		}
		projectID = &parsed
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", err)
	}

	var dueDate *time.Time
	if req.DueDate != "" {
		t, parseErr := time.Parse("2006-01-02", req.DueDate)
		if parseErr != nil {
			return DocumentResponse{}, fmt.Errorf("invalid due_date format (expected YYYY-MM-DD): %w", parseErr)
		}
		dueDate = &t
	}

	globalDiscount, lines, err := parseBillingInput(req.GlobalDiscountPercent, req.Lines)
	if err != nil {
		return DocumentResponse{}, err
	}

	doc := model.Document{
		CompanyID:    tenantID,
		Kind:         kind,
		Title:        req.Title,
		Status:       model.QuoteDraft,
		Date:         date,
		DueDate:      dueDate,
		ClientID:     clientID,
		ProjectID:    projectID,
		PaymentTerms: req.PaymentTerms,
		Notes:        req.Notes,
	}
	if err := applyTotals(&doc, lines, globalDiscount); err != nil {
		return DocumentResponse{}, err
	}

	// Number allocation and insert share a transaction so a failed insert
	// never burns a number for another writer to collide with.
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		year := time.Now().Year()
		n, seqErr := s.seqRepo.Next(txCtx, tenantID, prefixForKind(kind), year)
		if seqErr != nil {
			return fmt.Errorf("failed to allocate document number: %w", seqErr)
		}
		doc.Number = billing.FormatNumber(prefixForKind(kind), year, n)
		if createErr := s.docRepo.Create(txCtx, &doc); createErr != nil {
			return fmt.Errorf("failed to create document: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	action := model.ActionCreateQuote
	if kind == model.KindInvoice {
		action = model.ActionCreateInvoice
	}
	s.writeAuditLog(ctx, tenantID, userID, action, doc.ID.String(), doc.Number, req)
	s.broadcast("document.created", &doc)

	return s.reload(ctx, tenantID, doc.ID)
}

func (s *documentService) GetDocument(ctx context.Context, companyID, id string) (DocumentResponse, error) {
	tenantID, docID, err := parseScope(companyID, id)
	if err != nil {
		return DocumentResponse{}, err
	}
	doc, err := s.docRepo.FindByID(ctx, tenantID, docID)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("document not found: %w", err)
	}
	return toDocumentResponse(*doc), nil
}

func (s *documentService) ListDocuments(ctx context.Context, companyID string, filter DocumentFilter) ([]DocumentResponse, int64, error) {
	tenantID, err := uuid.Parse(companyID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid company id: %w", err)
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.DocumentListFilter{
		Kind:   filter.Kind,
		Status: filter.Status,
		Search: filter.Search,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.ClientID != "" {
		parsed, parseErr := uuid.Parse(filter.ClientID)
		if parseErr != nil {
			return nil, 0, fmt.Errorf("invalid client id: %w", parseErr)
		}
		repoFilter.ClientID = &parsed
	}

	docs, total, err := s.docRepo.List(ctx, tenantID, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch documents: %w", err)
	}

	result := make([]DocumentResponse, 0, len(docs))
	for _, d := range docs {
		result = append(result, toDocumentResponse(d))
	}
	return result, total, nil
}

func (s *documentService) UpdateDocument(ctx context.Context, companyID, userID, id string, req UpdateDocumentRequest) (DocumentResponse, error) {
	tenantID, docID, err := parseScope(companyID, id)
	if err != nil {
		return DocumentResponse{}, err
	}

	doc, err := s.docRepo.FindByID(ctx, tenantID, docID)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("document not found: %w", err)
	}
	if doc.Status != model.QuoteDraft {
		return DocumentResponse{}, fmt.Errorf("%w: only draft documents can be edited (status is %s)",
			billing.ErrPreconditionFailed, doc.Status)
	}

	if req.Title != nil {
		doc.Title = *req.Title
	}
	if req.Date != nil {
		date, parseErr := time.Parse("2006-01-02", *req.Date)
		if parseErr != nil {
			return DocumentResponse{}, fmt.Errorf("invalid date format (expected YYYY-MM-DD): %w", parseErr)
		}
		doc.Date = date
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			doc.DueDate = nil
		} else {
			t, parseErr := time.Parse("2006-01-02", *req.DueDate)
			if parseErr != nil {
				return DocumentResponse{}, fmt.Errorf("invalid due_date format (expected YYYY-MM-DD): %w", parseErr)
			}
			doc.DueDate = &t
		}
	}
	if req.ProjectID != nil {
		if *req.ProjectID == "" {
			doc.ProjectID = nil
		} else {
			parsed, parseErr := uuid.Parse(*req.ProjectID)
			if parseErr != nil {
				return DocumentResponse{}, fmt.Errorf("invalid project id: %w", parseErr)
			}
			if _, err := s.projectRepo.FindByID(ctx, tenantID, parsed); err != nil {
				return DocumentResponse{}, fmt.Errorf("project not found: %w", err)
			}
			doc.ProjectID = &parsed
		}
	}
	if req.PaymentTerms != nil {
		doc.PaymentTerms = *req.PaymentTerms
	}
	if req.Notes != nil {
		doc.Notes = *req.Notes
	}

	// Lines are always a full replacement: the editing session owns the whole
	// array. Totals are recomputed server-side regardless of what the client
	// stored on each line.
	globalDiscountStr := doc.GlobalDiscountPercent.String()
	if req.GlobalDiscountPercent != nil {
		globalDiscountStr = *req.GlobalDiscountPercent
	}
	lineInputs := req.Lines
	if lineInputs == nil {
		lineInputs = linesToInput(doc.Lines)
	}
	globalDiscount, lines, err := parseBillingInput(globalDiscountStr, lineInputs)
	if err != nil {
		return DocumentResponse{}, err
	}
	if err := applyTotals(doc, lines, globalDiscount); err != nil {
		return DocumentResponse{}, err
	}

	newLines := doc.Lines
	doc.Lines = nil
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.docRepo.Update(txCtx, doc); updateErr != nil {
			return fmt.Errorf("failed to update document: %w", updateErr)
		}
		if replaceErr := s.docRepo.ReplaceLines(txCtx, doc.ID, newLines); replaceErr != nil {
			return fmt.Errorf("failed to replace lines: %w", replaceErr)
		}
		return nil
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	action := model.ActionUpdateQuote
	if doc.Kind == model.KindInvoice {
		action = model.ActionUpdateInvoice
	}
	s.writeAuditLog(ctx, tenantID, userID, action, doc.ID.String(), doc.Number, req)
	s.broadcast("document.updated", doc)

	return s.reload(ctx, tenantID, doc.ID)
}

func (s *documentService) UpdateStatus(ctx context.Context, companyID, userID, id, status string) (DocumentResponse, error) {
	tenantID, docID, err := parseScope(companyID, id)
	if err != nil {
		return DocumentResponse{}, err
	}

	doc, err := s.docRepo.FindByID(ctx, tenantID, docID)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("document not found: %w", err)
	}

	if !isAllowedStatus(doc.Kind, status) {
		return DocumentResponse{}, fmt.Errorf("invalid status '%s' for %s", status, doc.Kind)
	}
	// PARTIAL and PAID are derived from recorded payments, never set by hand.
	if status == model.InvoicePartial || status == model.InvoicePaid {
		return DocumentResponse{}, fmt.Errorf("%w: status '%s' is derived from payments", billing.ErrPreconditionFailed, status)
	}

	if err := s.docRepo.UpdateStatus(ctx, tenantID, docID, status); err != nil {
		return DocumentResponse{}, fmt.Errorf("failed to update status: %w", err)
	}

	s.writeAuditLog(ctx, tenantID, userID, model.ActionChangeStatus, doc.ID.String(), doc.Number,
		map[string]string{"from": doc.Status, "to": status})
	doc.Status = status
	s.broadcast("document.status_changed", doc)

	return s.reload(ctx, tenantID, docID)
}

// ConvertQuoteToInvoice creates a draft invoice from an accepted quote: header
// and lines copied verbatim, fresh invoice number, independent identity. The
// whole copy runs in one transaction, so a failed line insert rolls the header
// back instead of leaving an orphan. The source quote is never mutated.
func (s *documentService) ConvertQuoteToInvoice(ctx context.Context, companyID, userID, quoteID string) (DocumentResponse, error) {
	tenantID, srcID, err := parseScope(companyID, quoteID)
	if err != nil {
		return DocumentResponse{}, err
	}

	quote, err := s.docRepo.FindByID(ctx, tenantID, srcID)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("quote not found: %w", err)
	}
	if quote.Kind != model.KindQuote {
		return DocumentResponse{}, fmt.Errorf("%w: document %s is not a quote", billing.ErrPreconditionFailed, quote.Number)
	}
	if quote.Status != model.QuoteAccepted {
		return DocumentResponse{}, fmt.Errorf("%w: quote must be accepted to convert (status is %s)",
			billing.ErrPreconditionFailed, quote.Status)
	}

	invoice := copyDocument(quote, model.KindInvoice)
	invoice.QuoteID = &quote.ID
	invoice.AmountPaid = decimal.Zero
	invoice.AmountDue = quote.TotalInclTax

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		year := time.Now().Year()
		n, seqErr := s.seqRepo.Next(txCtx, tenantID, model.PrefixInvoice, year)
		if seqErr != nil {
			return fmt.Errorf("failed to allocate invoice number: %w", seqErr)
		}
		invoice.Number = billing.FormatNumber(model.PrefixInvoice, year, n)
		if createErr := s.docRepo.Create(txCtx, &invoice); createErr != nil {
			return fmt.Errorf("failed to create invoice: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	s.writeAuditLog(ctx, tenantID, userID, model.ActionConvertQuote, invoice.ID.String(), invoice.Number,
		map[string]string{"quote_id": quote.ID.String(), "quote_number": quote.Number})
	s.broadcast("document.created", &invoice)

	return s.reload(ctx, tenantID, invoice.ID)
}

// DuplicateQuote copies a quote of any status into a fresh draft with its own
// number and " (Copy)" appended to the title.
func (s *documentService) DuplicateQuote(ctx context.Context, companyID, userID, quoteID string) (DocumentResponse, error) {
	tenantID, srcID, err := parseScope(companyID, quoteID)
	if err != nil {
		return DocumentResponse{}, err
	}

	quote, err := s.docRepo.FindByID(ctx, tenantID, srcID)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("quote not found: %w", err)
	}
	if quote.Kind != model.KindQuote {
		return DocumentResponse{}, fmt.Errorf("%w: document %s is not a quote", billing.ErrPreconditionFailed, quote.Number)
	}

	dup := copyDocument(quote, model.KindQuote)
	dup.Title = quote.Title + " (Copy)"

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		year := time.Now().Year()
		n, seqErr := s.seqRepo.Next(txCtx, tenantID, model.PrefixQuote, year)
		if seqErr != nil {
			return fmt.Errorf("failed to allocate quote number: %w", seqErr)
		}
		dup.Number = billing.FormatNumber(model.PrefixQuote, year, n)
		if createErr := s.docRepo.Create(txCtx, &dup); createErr != nil {
			return fmt.Errorf("failed to duplicate quote: %w", createErr)
		}
		return nil
	})
	if err != nil {
		return DocumentResponse{}, err
	}

	s.writeAuditLog(ctx, tenantID, userID, model.ActionDuplicateQuote, dup.ID.String(), dup.Number,
		map[string]string{"source_id": quote.ID.String()})

	return s.reload(ctx, tenantID, dup.ID)
}

func (s *documentService) DeleteDocument(ctx context.Context, companyID, userID, id string) error {
	tenantID, docID, err := parseScope(companyID, id)
	if err != nil {
		return err
	}

	doc, err := s.docRepo.FindByID(ctx, tenantID, docID)
	if err != nil {
		return fmt.Errorf("document not found: %w", err)
	}
	if doc.Kind == model.KindInvoice && doc.AmountPaid.IsPositive() {
		return fmt.Errorf("%w: invoices with recorded payments cannot be deleted", billing.ErrPreconditionFailed)
	}

	if err := s.docRepo.Delete(ctx, tenantID, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	s.writeAuditLog(ctx, tenantID, userID, model.ActionDeleteDocument, doc.ID.String(), doc.Number, nil)
	return nil
}

func (s *documentService) BuildRenderPayload(ctx context.Context, companyID, id string) (render.Payload, error) {
	tenantID, docID, err := parseScope(companyID, id)
	if err != nil {
		return render.Payload{}, err
	}

	doc, err := s.docRepo.FindByID(ctx, tenantID, docID)
	if err != nil {
		return render.Payload{}, fmt.Errorf("document not found: %w", err)
	}
	company, err := s.companyRepo.FindByID(ctx, tenantID)
	if err != nil {
		return render.Payload{}, fmt.Errorf("company profile not found: %w", err)
	}

	return render.BuildDocumentPayload(*company, *doc), nil
}

// --- Helpers ---

func prefixForKind(kind string) string {
	if kind == model.KindInvoice {
		return model.PrefixInvoice
	}
	return model.PrefixQuote
}

func isAllowedStatus(kind, status string) bool {
	switch kind {
	case model.KindQuote:
		switch status {
		case model.QuoteDraft, model.QuoteSent, model.QuoteAccepted, model.QuoteRejected, model.QuoteExpired:
			return true
		}
	case model.KindInvoice:
		switch status {
		case model.InvoiceDraft, model.InvoiceSent, model.InvoicePartial, model.InvoicePaid,
			model.InvoiceOverdue, model.InvoiceCancelled:
			return true
		}
	}
	return false
}

func parseScope(companyID, id string) (uuid.UUID, uuid.UUID, error) {
	tenantID, err := uuid.Parse(companyID)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid company id: %w", err)
	}
	entityID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, uuid.Nil, fmt.Errorf("invalid document id: %w", err)
	}
	return tenantID, entityID, nil
}

// parseBillingInput turns DTO strings into validated engine input.
func parseBillingInput(globalDiscountStr string, inputs []LineInput) (decimal.Decimal, []billing.Line, error) {
	globalDiscount := decimal.Zero
	if globalDiscountStr != "" {
		var err error
		globalDiscount, err = decimal.NewFromString(globalDiscountStr)
		if err != nil {
			return decimal.Zero, nil, fmt.Errorf("invalid global_discount_percent: %w", err)
		}
	}

	lines := make([]billing.Line, 0, len(inputs))
	for i, in := range inputs {
		qty, err := decimal.NewFromString(in.Quantity)
		if err != nil {
			return decimal.Zero, nil, fmt.Errorf("line %d: invalid quantity: %w", i+1, err)
		}
		price, err := decimal.NewFromString(in.UnitPrice)
		if err != nil {
			return decimal.Zero, nil, fmt.Errorf("line %d: invalid unit_price: %w", i+1, err)
		}
		vat, err := decimal.NewFromString(in.VATRate)
		if err != nil {
			return decimal.Zero, nil, fmt.Errorf("line %d: invalid vat_rate: %w", i+1, err)
		}
		discount := decimal.Zero
		if in.DiscountPercent != "" {
			discount, err = decimal.NewFromString(in.DiscountPercent)
			if err != nil {
				return decimal.Zero, nil, fmt.Errorf("line %d: invalid discount_percent: %w", i+1, err)
			}
		}
		lines = append(lines, billing.Line{
			Designation:     in.Designation,
			Description:     in.Description,
			Quantity:        qty,
			Unit:            in.Unit,
			UnitPrice:       price,
			VATRate:         vat,
			DiscountPercent: discount,
		})
	}
	return globalDiscount, lines, nil
}

// applyTotals runs the totals engine and writes the results plus the rebuilt
// line set (positions 0..n-1) onto the document.
func applyTotals(doc *model.Document, lines []billing.Line, globalDiscount decimal.Decimal) error {
	totals, err := billing.ComputeTotals(lines, globalDiscount)
	if err != nil {
		return err
	}

	doc.GlobalDiscountPercent = globalDiscount
	doc.Subtotal = totals.Subtotal
	doc.GlobalDiscountAmount = totals.GlobalDiscountAmount
	doc.TotalExclTax = totals.TotalExclTax
	doc.TotalTax = totals.TotalTax
	doc.TotalInclTax = totals.TotalInclTax

	buckets, err := json.Marshal(totals.TaxBuckets)
	if err != nil {
		return fmt.Errorf("failed to serialize tax buckets: %w", err)
	}
	doc.TaxDetails = string(buckets)

	if doc.Kind == model.KindInvoice {
		doc.AmountDue = doc.TotalInclTax.Sub(doc.AmountPaid)
	}

	doc.Lines = make([]model.DocumentLine, len(lines))
	for i, l := range lines {
		doc.Lines[i] = model.DocumentLine{
			Position:         i,
			Designation:      l.Designation,
			Description:      l.Description,
			Quantity:         l.Quantity,
			Unit:             l.Unit,
			UnitPrice:        l.UnitPrice,
			VATRate:          l.VATRate,
			DiscountPercent:  l.DiscountPercent,
			LineTotalExclTax: totals.LineTotals[i],
		}
	}
	return nil
}

// copyDocument builds a detached copy of a document's header and lines:
// fresh identity, positions re-sequenced 0..n-1, draft status, number left
// for the caller to allocate.
func copyDocument(src *model.Document, kind string) model.Document {
	dst := model.Document{
		CompanyID:             src.CompanyID,
		Kind:                  kind,
		Title:                 src.Title,
		Status:                model.QuoteDraft,
		Date:                  time.Now(),
		ClientID:              src.ClientID,
		ProjectID:             src.ProjectID,
		GlobalDiscountPercent: src.GlobalDiscountPercent,
		Subtotal:              src.Subtotal,
		GlobalDiscountAmount:  src.GlobalDiscountAmount,
		TotalExclTax:          src.TotalExclTax,
		TotalTax:              src.TotalTax,
		TotalInclTax:          src.TotalInclTax,
		TaxDetails:            src.TaxDetails,
		PaymentTerms:          src.PaymentTerms,
		Notes:                 src.Notes,
	}

	dst.Lines = make([]model.DocumentLine, len(src.Lines))
	for i, l := range src.Lines {
		dst.Lines[i] = model.DocumentLine{
			Position:         i,
			Designation:      l.Designation,
			Description:      l.Description,
			Quantity:         l.Quantity,
			Unit:             l.Unit,
			UnitPrice:        l.UnitPrice,
			VATRate:          l.VATRate,
			DiscountPercent:  l.DiscountPercent,
			LineTotalExclTax: l.LineTotalExclTax,
		}
	}
	return dst
}

func linesToInput(lines []model.DocumentLine) []LineInput {
	inputs := make([]LineInput, len(lines))
	for i, l := range lines {
		inputs[i] = LineInput{
			Designation:     l.Designation,
			Description:     l.Description,
			Quantity:        l.Quantity.String(),
			Unit:            l.Unit,
			UnitPrice:       l.UnitPrice.String(),
			VATRate:         l.VATRate.String(),
			DiscountPercent: l.DiscountPercent.String(),
		}
	}
	return inputs
}

func (s *documentService) reload(ctx context.Context, tenantID, docID uuid.UUID) (DocumentResponse, error) {
	reloaded, err := s.docRepo.FindByID(ctx, tenantID, docID)
	if err != nil {
		return DocumentResponse{}, fmt.Errorf("failed to reload document: %w", err)
	}
	return toDocumentResponse(*reloaded), nil
}

func (s *documentService) writeAuditLog(ctx context.Context, tenantID uuid.UUID, userID, action, entityID, entityName string, details interface{}) {
	detailsJSON, _ := json.Marshal(details)

	entry := model.AuditLog{
		CompanyID:  tenantID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
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

func (s *documentService) broadcast(event string, doc *model.Document) {
	if s.hub == nil {
		return
	}
	msg, err := json.Marshal(map[string]string{
		"type":   event,
		"id":     doc.ID.String(),
		"kind":   doc.Kind,
		"number": doc.Number,
		"status": doc.Status,
	})
	if err != nil {
		return
	}
	s.hub.Broadcast <- msg
}

// --- Mapping ---

func toDocumentResponse(doc model.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:                    doc.ID.String(),
		Kind:                  doc.Kind,
		Number:                doc.Number,
		Title:                 doc.Title,
		Status:                doc.Status,
		Date:                  doc.Date.Format("2006-01-02"),
		ClientID:              doc.ClientID.String(),
		GlobalDiscountPercent: doc.GlobalDiscountPercent.StringFixed(2),
		Subtotal:              doc.Subtotal.StringFixed(2),
		GlobalDiscountAmount:  doc.GlobalDiscountAmount.StringFixed(2),
		TotalExclTax:          doc.TotalExclTax.StringFixed(2),
		TotalTax:              doc.TotalTax.StringFixed(2),
		TotalInclTax:          doc.TotalInclTax.StringFixed(2),
		AmountPaid:            doc.AmountPaid.StringFixed(2),
		AmountDue:             doc.AmountDue.StringFixed(2),
		PaymentTerms:          doc.PaymentTerms,
		Notes:                 doc.Notes,
		CreatedAt:             doc.CreatedAt.Format(time.RFC3339),
	}

	if doc.DueDate != nil {
		d := doc.DueDate.Format("2006-01-02")
		resp.DueDate = &d
	}
	if doc.ProjectID != nil {
		p := doc.ProjectID.String()
		resp.ProjectID = &p
	}
	if doc.QuoteID != nil {
		q := doc.QuoteID.String()
		resp.QuoteID = &q
	}
	if doc.Client != nil {
		resp.ClientName = doc.Client.Name
	}

	if doc.TaxDetails != "" {
		var buckets []billing.TaxBucket
		if err := json.Unmarshal([]byte(doc.TaxDetails), &buckets); err == nil {
			resp.TaxBuckets = make([]TaxBucketResponse, 0, len(buckets))
			for _, b := range buckets {
				resp.TaxBuckets = append(resp.TaxBuckets, TaxBucketResponse{
					Rate: b.Rate.StringFixed(2),
					Base: b.Base.StringFixed(2),
					Tax:  b.Tax.StringFixed(2),
				})
			}
		}
	}

	resp.Lines = make([]LineResponse, 0, len(doc.Lines))
	for _, l := range doc.Lines {
		resp.Lines = append(resp.Lines, LineResponse{
			ID:               l.ID.String(),
			Position:         l.Position,
			Designation:      l.Designation,
			Description:      l.Description,
			Quantity:         l.Quantity.String(),
			Unit:             l.Unit,
			UnitPrice:        l.UnitPrice.StringFixed(2),
			VATRate:          l.VATRate.StringFixed(2),
			DiscountPercent:  l.DiscountPercent.StringFixed(2),
			LineTotalExclTax: l.LineTotalExclTax.StringFixed(2),
		})
	}

	return resp
}
