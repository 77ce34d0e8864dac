package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backend/internal/billing"
	"backend/internal/model"
	"backend/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv wires real repositories onto an in-memory database so service
// behavior is exercised end to end, transactions included.
type testEnv struct {
	db        *gorm.DB
	documents DocumentService
	payments  PaymentService
	companyID string
	clientID  string
	userID    string
}

func setupEnv(t *testing.T) *testEnv {
	t.Helper()

	// unique in-memory DB per test name to avoid leakage via shared cache
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&model.Company{},
		&model.User{},
		&model.RefreshToken{},
		&model.Client{},
		&model.Project{},
		&model.Document{},
		&model.DocumentLine{},
		&model.Payment{},
		&model.NumberSequence{},
		&model.AuditLog{},
	))

	company := model.Company{Name: "Atelier Lumen", Email: "contact@atelier-lumen.fr"}
	require.NoError(t, db.Create(&company).Error)

	user := model.User{
		CompanyID: company.ID,
		Username:  "celine",
		Email:     "celine@atelier-lumen.fr",
		Password:  "hash",
		Role:      "admin",
	}
	require.NoError(t, db.Create(&user).Error)

	client := model.Client{
		CompanyID: company.ID,
		Name:      "M. Dupont",
		Type:      model.ClientTypeIndividual,
	}
	require.NoError(t, db.Create(&client).Error)

	txManager := repository.NewTransactionManager(db)
	docRepo := repository.NewDocumentRepository(db)
	seqRepo := repository.NewSequenceRepository(db)
	clientRepo := repository.NewClientRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	companyRepo := repository.NewCompanyRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	return &testEnv{
		db:        db,
		documents: NewDocumentService(docRepo, seqRepo, clientRepo, projectRepo, companyRepo, auditRepo, txManager, nil),
		payments:  NewPaymentService(paymentRepo, docRepo, auditRepo, txManager, nil),
		companyID: company.ID.String(),
		clientID:  client.ID.String(),
		userID:    user.ID.String(),
	}
}

// twoLineRequest builds the standard fixture: 10 M2 x 20.00 at 20% VAT plus
// 1 FORFAIT x 45.00 at 10% VAT. Subtotal 245.00, tax 44.50, total 289.50.
func (e *testEnv) twoLineRequest() CreateDocumentRequest {
	return CreateDocumentRequest{
		Title:    "Rénovation salon",
		Date:     time.Now().Format("2006-01-02"),
		ClientID: e.clientID,
		Lines: []LineInput{
			{Designation: "Pose parquet", Quantity: "10", Unit: "M2", UnitPrice: "20", VATRate: "20"},
			{Designation: "Déplacement", Quantity: "1", Unit: "FORFAIT", UnitPrice: "45", VATRate: "10"},
		},
	}
}

func TestCreateQuoteComputesTotalsAndNumber(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	quote, err := env.documents.CreateQuote(ctx, env.companyID, env.userID, env.twoLineRequest())
	require.NoError(t, err)

	year := time.Now().Year()
	assert.Equal(t, model.KindQuote, quote.Kind)
	assert.Equal(t, fmt.Sprintf("DEV-%d-001", year), quote.Number)
	assert.Equal(t, model.QuoteDraft, quote.Status)
	assert.Equal(t, "245.00", quote.Subtotal)
	assert.Equal(t, "0.00", quote.GlobalDiscountAmount)
	assert.Equal(t, "245.00", quote.TotalExclTax)
	assert.Equal(t, "44.50", quote.TotalTax)
	assert.Equal(t, "289.50", quote.TotalInclTax)

	require.Len(t, quote.Lines, 2)
	assert.Equal(t, 0, quote.Lines[0].Position)
	assert.Equal(t, "Pose parquet", quote.Lines[0].Designation)
	assert.Equal(t, "200.00", quote.Lines[0].LineTotalExclTax)
	assert.Equal(t, 1, quote.Lines[1].Position)
	assert.Equal(t, "45.00", quote.Lines[1].LineTotalExclTax)

	require.Len(t, quote.TaxBuckets, 2)
	assert.Equal(t, "10.00", quote.TaxBuckets[0].Rate)
	assert.Equal(t, "45.00", quote.TaxBuckets[0].Base)
	assert.Equal(t, "4.50", quote.TaxBuckets[0].Tax)
	assert.Equal(t, "20.00", quote.TaxBuckets[1].Rate)
	assert.Equal(t, "200.00", quote.TaxBuckets[1].Base)
	assert.Equal(t, "40.00", quote.TaxBuckets[1].Tax)
}

func TestCreateQuoteNumbersAreSequential(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	year := time.Now().Year()

	for i := 1; i <= 3; i++ {
		quote, err := env.documents.CreateQuote(ctx, env.companyID, env.userID, env.twoLineRequest())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("DEV-%d-%03d", year, i), quote.Number)
	}

	// Invoices count independently of quotes
	invoice, err := env.documents.CreateInvoice(ctx, env.companyID, env.userID, env.twoLineRequest())
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("FACT-%d-001", year), invoice.Number)
}

func TestCreateQuoteRejectsInvalidLines(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*CreateDocumentRequest)
	}{
		{"negative quantity", func(r *CreateDocumentRequest) { r.Lines[0].Quantity = "-1" }},
		{"negative price", func(r *CreateDocumentRequest) { r.Lines[0].UnitPrice = "-5" }},
		{"discount above 100", func(r *CreateDocumentRequest) { r.Lines[0].DiscountPercent = "101" }},
		{"unknown unit", func(r *CreateDocumentRequest) { r.Lines[0].Unit = "KG" }},
		{"unknown vat rate", func(r *CreateDocumentRequest) { r.Lines[0].VATRate = "19.6" }},
		{"empty designation", func(r *CreateDocumentRequest) { r.Lines[0].Designation = "   " }},
		{"global discount above 100", func(r *CreateDocumentRequest) { r.GlobalDiscountPercent = "120" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := env.twoLineRequest()
			tc.mutate(&req)
			_, err := env.documents.CreateQuote(ctx, env.companyID, env.userID, req)
			require.Error(t, err)
			assert.True(t, billing.IsValidation(err), "expected a validation error, got: %v", err)
		})
	}

	// Nothing should have been persisted
	_, total, err := env.documents.ListDocuments(ctx, env.companyID, DocumentFilter{Kind: model.KindQuote})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestUpdateDocumentRecomputesTotals(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	quote, err := env.documents.CreateQuote(ctx, env.companyID, env.userID, env.twoLineRequest())
	require.NoError(t, err)

	discount := "10"
	updated, err := env.documents.UpdateDocument(ctx, env.companyID, env.userID, quote.ID, UpdateDocumentRequest{
		GlobalDiscountPercent: &discount,
	})
	require.NoError(t, err)

	// 10% off 245.00, tax buckets scaled proportionally
	assert.Equal(t, "245.00", updated.Subtotal)
	assert.Equal(t, "24.50", updated.GlobalDiscountAmount)
	assert.Equal(t, "220.50", updated.TotalExclTax)
	assert.Equal(t, "40.05", updated.TotalTax)
	assert.Equal(t, "260.55", updated.TotalInclTax)

	require.Len(t, updated.TaxBuckets, 2)
	assert.Equal(t, "40.50", updated.TaxBuckets[0].Base)
	assert.Equal(t, "4.05", updated.TaxBuckets[0].Tax)
	assert.Equal(t, "180.00", updated.TaxBuckets[1].Base)
	assert.Equal(t, "36.00", updated.TaxBuckets[1].Tax)
}

func TestUpdateDocumentReplacesLines(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	quote, err := env.documents.CreateQuote(ctx, env.companyID, env.userID, env.twoLineRequest())
	require.NoError(t, err)

	updated, err := env.documents.UpdateDocument(ctx, env.companyID, env.userID, quote.ID, UpdateDocumentRequest{
		Lines: []LineInput{
			{Designation: "Peinture murs", Quantity: "30", Unit: "M2", UnitPrice: "12", VATRate: "10"},
		},
	})
	require.NoError(t, err)

	require.Len(t, updated.Lines, 1)
	assert.Equal(t, "Peinture murs", updated.Lines[0].Designation)
	assert.Equal(t, 0, updated.Lines[0].Position)
	assert.Equal(t, "360.00", updated.TotalExclTax)
	assert.Equal(t, "36.00", updated.TotalTax)
	assert.Equal(t, "396.00", updated.TotalInclTax)

	// The old lines are gone, not orphaned
	var count int64
	require.NoError(t, env.db.Model(&model.DocumentLine{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpdateDocumentRequiresDraft(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	quote, err := env.documents.CreateQuote(ctx, env.companyID, env.userID, env.twoLineRequest())
	require.NoError(t, err)
	_, err = env.documents.UpdateStatus(ctx, env.companyID, env.userID, quote.ID, model.QuoteSent)
	require.NoError(t, err)

	title := "Changed"
	_, err = env.documents.UpdateDocument(ctx, env.companyID, env.userID, quote.ID, UpdateDocumentRequest{Title: &title})
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrPreconditionFailed)
}

func TestConvertQuoteToInvoice(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	year := time.Now().Year()

	quote, err := env.documents.CreateQuote(ctx, env.companyID, env.userID, env.twoLineRequest())
	require.NoError(t, err)
	_, err = env.documents.UpdateStatus(ctx, env.companyID, env.userID, quote.ID, model.QuoteAccepted)
	require.NoError(t, err)

	invoice, err := env.documents.ConvertQuoteToInvoice(ctx, env.companyID, env.userID, quote.ID)
	require.NoError(t, err)

	assert.Equal(t, model.KindInvoice, invoice.Kind)
	assert.Equal(t, fmt.Sprintf("FACT-%d-001", year), invoice.Number)
	assert.Equal(t, model.InvoiceDraft, invoice.Status)
	require.NotNil(t, invoice.QuoteID)
	assert.Equal(t, quote.ID, *invoice.QuoteID)
	assert.NotEqual(t, quote.ID, invoice.ID)

	// Totals and lines carried over verbatim
	assert.Equal(t, quote.Subtotal, invoice.Subtotal)
	assert.Equal(t, quote.TotalExclTax, invoice.TotalExclTax)
	assert.Equal(t, quote.TotalTax, invoice.TotalTax)
	assert.Equal(t, quote.TotalInclTax, invoice.TotalInclTax)
	require.Len(t, invoice.Lines, len(quote.Lines))
	for i := range quote.Lines {
		assert.Equal(t, quote.Lines[i].Designation, invoice.Lines[i].Designation)
		assert.Equal(t, quote.Lines[i].Position, invoice.Lines[i].Position)
		assert.Equal(t, quote.Lines[i].LineTotalExclTax, invoice.Lines[i].LineTotalExclTax)
	}

	// Payment state starts clean
	assert.Equal(t, "0.00", invoice.AmountPaid)
	assert.Equal(t, invoice.TotalInclTax, invoice.AmountDue)

	// The source quote is untouched
	src, err := env.documents.GetDocument(ctx, env.companyID, quote.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QuoteAccepted, src.Status)
	assert.Equal(t, quote.Number, src.Number)
}

func TestConvertRequiresAcceptedQuote(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	quote, err := env.documents.CreateQuote(ctx, env.companyID, env.userID, env.twoLineRequest())
	require.NoError(t, err)

	_, err = env.documents.ConvertQuoteToInvoice(ctx, env.companyID, env.userID, quote.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrPreconditionFailed)

	// The failed conversion must not leave a partial invoice behind
	_, total, err := env.documents.ListDocuments(ctx, env.companyID, DocumentFilter{Kind: model.KindInvoice})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestConvertRejectsInvoices(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	invoice, err := env.documents.CreateInvoice(ctx, env.companyID, env.userID, env.twoLineRequest())
	require.NoError(t, err)

	_, err = env.documents.ConvertQuoteToInvoice(ctx, env.companyID, env.userID, invoice.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrPreconditionFailed)
}

func TestDuplicateQuote(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	year := time.Now().Year()

	quote, err := env.documents.CreateQuote(ctx, env.companyID, env.userID, env.twoLineRequest())
	require.NoError(t, err)
	_, err = env.documents.UpdateStatus(ctx, env.companyID, env.userID, quote.ID, model.QuoteRejected)
	require.NoError(t, err)

	// Duplication works for any status, the copy always starts as a draft
	dup, err := env.documents.DuplicateQuote(ctx, env.companyID, env.userID, quote.ID)
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("DEV-%d-002", year), dup.Number)
	assert.Equal(t, model.QuoteDraft, dup.Status)
	assert.Equal(t, quote.Title+" (Copy)", dup.Title)
	assert.Nil(t, dup.QuoteID)
	assert.Equal(t, quote.TotalInclTax, dup.TotalInclTax)
	require.Len(t, dup.Lines, len(quote.Lines))
}

func TestUpdateStatusRejectsDerivedStatuses(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	invoice, err := env.documents.CreateInvoice(ctx, env.companyID, env.userID, env.twoLineRequest())
	require.NoError(t, err)

	for _, status := range []string{model.InvoicePartial, model.InvoicePaid} {
		_, err := env.documents.UpdateStatus(ctx, env.companyID, env.userID, invoice.ID, status)
		require.Error(t, err)
		assert.ErrorIs(t, err, billing.ErrPreconditionFailed)
	}
}

func TestUpdateStatusRejectsForeignStatuses(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	quote, err := env.documents.CreateQuote(ctx, env.companyID, env.userID, env.twoLineRequest())
	require.NoError(t, err)

	// PAID belongs to invoices, not quotes
	_, err = env.documents.UpdateStatus(ctx, env.companyID, env.userID, quote.ID, model.InvoicePaid)
	require.Error(t, err)
}

func TestTenantIsolation(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	quote, err := env.documents.CreateQuote(ctx, env.companyID, env.userID, env.twoLineRequest())
	require.NoError(t, err)

	other := model.Company{Name: "Autre Studio"}
	require.NoError(t, env.db.Create(&other).Error)

	// Another company can neither read nor convert the document
	_, err = env.documents.GetDocument(ctx, other.ID.String(), quote.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = env.documents.ConvertQuoteToInvoice(ctx, other.ID.String(), env.userID, quote.ID)
	require.Error(t, err)

	_, total, err := env.documents.ListDocuments(ctx, other.ID.String(), DocumentFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestDeleteDocument(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	quote, err := env.documents.CreateQuote(ctx, env.companyID, env.userID, env.twoLineRequest())
	require.NoError(t, err)

	require.NoError(t, env.documents.DeleteDocument(ctx, env.companyID, env.userID, quote.ID))

	_, err = env.documents.GetDocument(ctx, env.companyID, quote.ID)
	require.Error(t, err)
}
