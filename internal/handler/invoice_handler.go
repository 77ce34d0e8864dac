package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/internal/service"
	"backend/pkg/pagination"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	documentService service.DocumentService
	paymentService  service.PaymentService
}

func NewInvoiceHandler(documentService service.DocumentService, paymentService service.PaymentService) *InvoiceHandler {
	return &InvoiceHandler{
		documentService: documentService,
		paymentService:  paymentService,
	}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices")
	{
		invoices.POST("", middleware.RequireRole("admin", "manager"), h.CreateInvoice)
		invoices.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListInvoices)
		invoices.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetInvoice)
		invoices.PUT("/:id", middleware.RequireRole("admin", "manager"), h.UpdateInvoice)
		invoices.PUT("/:id/status", middleware.RequireRole("admin", "manager"), h.UpdateInvoiceStatus)
		invoices.POST("/:id/payments", middleware.RequireRole("admin", "manager"), h.RecordPayment)
		invoices.GET("/:id/payments", middleware.RequireRole("admin", "manager", "staff"), h.ListPayments)
		invoices.GET("/:id/render", middleware.RequireRole("admin", "manager", "staff"), h.RenderInvoice)
		invoices.DELETE("/:id", middleware.RequireRole("admin"), h.DeleteInvoice)
	}
}

// CreateInvoice creates a new standalone invoice
// @Summary      Create invoice
// @Description  Creates a new invoice, validates its lines, computes totals and assigns the next FACT number
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateDocumentRequest  true  "Create Invoice Payload"
// @Success      201      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	companyID, userID := requestScope(c)
	doc, err := h.documentService.CreateInvoice(c.Request.Context(), companyID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}

// ListInvoices returns a paginated list of invoices
// @Summary      List invoices
// @Description  Retrieves a paginated list of invoices, optionally filtered by status, client or free text
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        status     query     string  false  "Filter by status (DRAFT, SENT, PARTIAL, PAID, OVERDUE, CANCELLED)"
// @Param        client_id  query     string  false  "Filter by client ID"
// @Param        search     query     string  false  "Search in number and title"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Success      200        {object}  response.Response{data=object}
// @Failure      500        {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.DocumentFilter{
		Kind:     model.KindInvoice,
		Status:   c.Query("status"),
		ClientID: c.Query("client_id"),
		Search:   c.Query("search"),
		Page:     params.Page,
		Limit:    params.Limit,
	}

	companyID, _ := requestScope(c)
	invoices, total, err := h.documentService.ListDocuments(c.Request.Context(), companyID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"invoices": invoices,
		"total":    total,
		"page":     params.Page,
		"limit":    params.Limit,
	}))
}

// GetInvoice returns a single invoice with its lines
// @Summary      Get invoice
// @Description  Fetch a single invoice with lines, tax details and payment state by ID
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.DocumentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	companyID, _ := requestScope(c)
	doc, err := h.documentService.GetDocument(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// UpdateInvoice updates an invoice's fields and replaces its lines
// @Summary      Update invoice
// @Description  Updates invoice fields, replaces lines if provided and recomputes all totals
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Invoice ID"
// @Param        payload  body      service.UpdateDocumentRequest  true  "Update Invoice Payload"
// @Success      200      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req service.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	companyID, userID := requestScope(c)
	doc, err := h.documentService.UpdateDocument(c.Request.Context(), companyID, userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// UpdateInvoiceStatus transitions an invoice to a new status
// @Summary      Update invoice status
// @Description  Transitions an invoice to DRAFT, SENT, OVERDUE or CANCELLED. PARTIAL and PAID are derived from payments.
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Invoice ID"
// @Param        payload  body      updateStatusRequest  true  "New Status"
// @Success      200      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/{id}/status [put]
func (h *InvoiceHandler) UpdateInvoiceStatus(c *gin.Context) {
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	companyID, userID := requestScope(c)
	doc, err := h.documentService.UpdateStatus(c.Request.Context(), companyID, userID, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// RecordPayment records a payment against an invoice
// @Summary      Record payment
// @Description  Records a payment, updates the invoice's paid and due amounts and derives PARTIAL or PAID status
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Record Payment Payload"
// @Success      201      {object}  response.Response{data=service.DocumentResponse}
// @Failure      409      {object}  response.Response
// @Router       /api/invoices/{id}/payments [post]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	companyID, userID := requestScope(c)
	invoice, err := h.paymentService.RecordPayment(c.Request.Context(), companyID, userID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// ListPayments returns the payments recorded against an invoice
// @Summary      List payments
// @Description  Lists all payments recorded against an invoice, newest first
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=[]service.PaymentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id}/payments [get]
func (h *InvoiceHandler) ListPayments(c *gin.Context) {
	companyID, _ := requestScope(c)
	payments, err := h.paymentService.ListPayments(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payments))
}

// RenderInvoice returns the print payload for an invoice
// @Summary      Render invoice
// @Description  Builds the structured payload used to render the invoice as a printable document
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=render.Payload}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id}/render [get]
func (h *InvoiceHandler) RenderInvoice(c *gin.Context) {
	companyID, _ := requestScope(c)
	payload, err := h.documentService.BuildRenderPayload(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payload))
}

// DeleteInvoice soft deletes an invoice
// @Summary      Delete invoice
// @Description  Soft deletes an invoice by ID. Invoices with recorded payments cannot be deleted.
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	companyID, userID := requestScope(c)
	if err := h.documentService.DeleteDocument(c.Request.Context(), companyID, userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Invoice deleted successfully"))
}
