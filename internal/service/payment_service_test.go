package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/billing"
	"backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) sentInvoice(t *testing.T) DocumentResponse {
	t.Helper()
	ctx := context.Background()

	invoice, err := e.documents.CreateInvoice(ctx, e.companyID, e.userID, e.twoLineRequest())
	require.NoError(t, err)
	invoice, err = e.documents.UpdateStatus(ctx, e.companyID, e.userID, invoice.ID, model.InvoiceSent)
	require.NoError(t, err)
	return invoice
}

func payment(amount string) RecordPaymentRequest {
	return RecordPaymentRequest{
		Amount: amount,
		Date:   time.Now().Format("2006-01-02"),
		Method: model.PaymentTransfer,
	}
}

func TestRecordPaymentDerivesPartialThenPaid(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	invoice := env.sentInvoice(t) // total 289.50

	after, err := env.payments.RecordPayment(ctx, env.companyID, env.userID, invoice.ID, payment("100"))
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePartial, after.Status)
	assert.Equal(t, "100.00", after.AmountPaid)
	assert.Equal(t, "189.50", after.AmountDue)

	after, err = env.payments.RecordPayment(ctx, env.companyID, env.userID, invoice.ID, payment("189.50"))
	require.NoError(t, err)
	assert.Equal(t, model.InvoicePaid, after.Status)
	assert.Equal(t, "289.50", after.AmountPaid)
	assert.Equal(t, "0.00", after.AmountDue)

	payments, err := env.payments.ListPayments(ctx, env.companyID, invoice.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
}

func TestRecordPaymentRejectsOverpayment(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	invoice := env.sentInvoice(t)

	_, err := env.payments.RecordPayment(ctx, env.companyID, env.userID, invoice.ID, payment("300"))
	require.Error(t, err)

	// The rejected payment must not have moved the invoice
	reloaded, err := env.documents.GetDocument(ctx, env.companyID, invoice.ID)
	require.NoError(t, err)
	assert.Equal(t, model.InvoiceSent, reloaded.Status)
	assert.Equal(t, "0.00", reloaded.AmountPaid)

	payments, err := env.payments.ListPayments(ctx, env.companyID, invoice.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestRecordPaymentRejectsNonPositiveAmounts(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	invoice := env.sentInvoice(t)

	for _, amount := range []string{"0", "-50"} {
		_, err := env.payments.RecordPayment(ctx, env.companyID, env.userID, invoice.ID, payment(amount))
		require.Error(t, err, "amount %s should be rejected", amount)
	}
}

func TestRecordPaymentRequiresPayableStatus(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	// Draft invoices don't accept payments yet
	invoice, err := env.documents.CreateInvoice(ctx, env.companyID, env.userID, env.twoLineRequest())
	require.NoError(t, err)

	_, err = env.payments.RecordPayment(ctx, env.companyID, env.userID, invoice.ID, payment("50"))
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrPreconditionFailed)
}

func TestRecordPaymentRejectsQuotes(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()

	quote, err := env.documents.CreateQuote(ctx, env.companyID, env.userID, env.twoLineRequest())
	require.NoError(t, err)

	_, err = env.payments.RecordPayment(ctx, env.companyID, env.userID, quote.ID, payment("50"))
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrPreconditionFailed)
}

func TestDeleteInvoiceWithPaymentsForbidden(t *testing.T) {
	env := setupEnv(t)
	ctx := context.Background()
	invoice := env.sentInvoice(t)

	_, err := env.payments.RecordPayment(ctx, env.companyID, env.userID, invoice.ID, payment("100"))
	require.NoError(t, err)

	err = env.documents.DeleteDocument(ctx, env.companyID, env.userID, invoice.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, billing.ErrPreconditionFailed)
}
