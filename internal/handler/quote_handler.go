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

type QuoteHandler struct {
	documentService service.DocumentService
}

func NewQuoteHandler(documentService service.DocumentService) *QuoteHandler {
	return &QuoteHandler{documentService: documentService}
}

func (h *QuoteHandler) RegisterRoutes(router *gin.RouterGroup) {
	quotes := router.Group("/api/quotes")
	{
		quotes.POST("", middleware.RequireRole("admin", "manager"), h.CreateQuote)
		quotes.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListQuotes)
		quotes.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetQuote)
		quotes.PUT("/:id", middleware.RequireRole("admin", "manager"), h.UpdateQuote)
		quotes.PUT("/:id/status", middleware.RequireRole("admin", "manager"), h.UpdateQuoteStatus)
		quotes.POST("/:id/convert", middleware.RequireRole("admin", "manager"), h.ConvertQuote)
		quotes.POST("/:id/duplicate", middleware.RequireRole("admin", "manager"), h.DuplicateQuote)
		quotes.GET("/:id/render", middleware.RequireRole("admin", "manager", "staff"), h.RenderQuote)
		quotes.DELETE("/:id", middleware.RequireRole("admin"), h.DeleteQuote)
	}
}

// CreateQuote creates a new quote with its lines and computed totals
// @Summary      Create quote
// @Description  Creates a new quote, validates its lines, computes totals and assigns the next DEV number
// @Tags         quotes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateDocumentRequest  true  "Create Quote Payload"
// @Success      201      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/quotes [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req service.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	companyID, userID := requestScope(c)
	doc, err := h.documentService.CreateQuote(c.Request.Context(), companyID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, doc))
}

// ListQuotes returns a paginated list of quotes
// @Summary      List quotes
// @Description  Retrieves a paginated list of quotes, optionally filtered by status, client or free text
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        status     query     string  false  "Filter by status (DRAFT, SENT, ACCEPTED, REJECTED, EXPIRED)"
// @Param        client_id  query     string  false  "Filter by client ID"
// @Param        search     query     string  false  "Search in number and title"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Number of items per page (default 20)"
// @Success      200        {object}  response.Response{data=object}
// @Failure      500        {object}  response.Response
// @Router       /api/quotes [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.DocumentFilter{
		Kind:     model.KindQuote,
		Status:   c.Query("status"),
		ClientID: c.Query("client_id"),
		Search:   c.Query("search"),
		Page:     params.Page,
		Limit:    params.Limit,
	}

	companyID, _ := requestScope(c)
	quotes, total, err := h.documentService.ListDocuments(c.Request.Context(), companyID, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]interface{}{
		"quotes": quotes,
		"total":  total,
		"page":   params.Page,
		"limit":  params.Limit,
	}))
}

// GetQuote returns a single quote with its lines
// @Summary      Get quote
// @Description  Fetch a single quote with lines and tax details by ID
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=service.DocumentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/quotes/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	companyID, _ := requestScope(c)
	doc, err := h.documentService.GetDocument(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, doc))
}

// UpdateQuote updates a quote's fields and replaces its lines
// @Summary      Update quote
// @Description  Updates quote fields, replaces lines if provided and recomputes all totals
// @Tags         quotes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Quote ID"
// @Param        payload  body      service.UpdateDocumentRequest  true  "Update Quote Payload"
// @Success      200      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/quotes/{id} [put]
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
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

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateQuoteStatus transitions a quote to a new status
// @Summary      Update quote status
// @Description  Transitions a quote to DRAFT, SENT, ACCEPTED, REJECTED or EXPIRED
// @Tags         quotes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string               true  "Quote ID"
// @Param        payload  body      updateStatusRequest  true  "New Status"
// @Success      200      {object}  response.Response{data=service.DocumentResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/quotes/{id}/status [put]
func (h *QuoteHandler) UpdateQuoteStatus(c *gin.Context) {
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

// ConvertQuote converts an accepted quote into a draft invoice
// @Summary      Convert quote to invoice
// @Description  Creates a draft invoice carrying over all the quote's lines and totals. Requires ACCEPTED status.
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      201  {object}  response.Response{data=service.DocumentResponse}
// @Failure      409  {object}  response.Response
// @Router       /api/quotes/{id}/convert [post]
func (h *QuoteHandler) ConvertQuote(c *gin.Context) {
	companyID, userID := requestScope(c)
	invoice, err := h.documentService.ConvertQuoteToInvoice(c.Request.Context(), companyID, userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// DuplicateQuote creates a fresh draft copy of an existing quote
// @Summary      Duplicate quote
// @Description  Creates a new DRAFT quote with a new number, copying all lines and totals
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      201  {object}  response.Response{data=service.DocumentResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/quotes/{id}/duplicate [post]
func (h *QuoteHandler) DuplicateQuote(c *gin.Context) {
	companyID, userID := requestScope(c)
	dup, err := h.documentService.DuplicateQuote(c.Request.Context(), companyID, userID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, dup))
}

// RenderQuote returns the print payload for a quote
// @Summary      Render quote
// @Description  Builds the structured payload used to render the quote as a printable document
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=render.Payload}
// @Failure      404  {object}  response.Response
// @Router       /api/quotes/{id}/render [get]
func (h *QuoteHandler) RenderQuote(c *gin.Context) {
	companyID, _ := requestScope(c)
	payload, err := h.documentService.BuildRenderPayload(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, payload))
}

// DeleteQuote soft deletes a quote
// @Summary      Delete quote
// @Description  Soft deletes a quote by ID
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/quotes/{id} [delete]
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	companyID, userID := requestScope(c)
	if err := h.documentService.DeleteDocument(c.Request.Context(), companyID, userID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Quote deleted successfully"))
}
