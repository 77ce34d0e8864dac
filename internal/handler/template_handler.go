package handler

import (
	"net/http"

	"backend/internal/middleware"
	"backend/internal/service"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

func (h *TemplateHandler) RegisterRoutes(router *gin.RouterGroup) {
	templates := router.Group("/api/templates")
	{
		templates.POST("", middleware.RequireRole("admin", "manager"), h.CreateTemplate)
		templates.GET("", middleware.RequireRole("admin", "manager", "staff"), h.ListTemplates)
		templates.GET("/:id", middleware.RequireRole("admin", "manager", "staff"), h.GetTemplate)
		templates.PUT("/:id", middleware.RequireRole("admin", "manager"), h.UpdateTemplate)
		templates.DELETE("/:id", middleware.RequireRole("admin"), h.DeleteTemplate)
	}
}

// CreateTemplate creates a new document template
// @Summary      Create template
// @Description  Creates a new document template (contract, site report, technical visit, meeting minutes or handover)
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTemplateRequest  true  "Create Template Payload"
// @Success      201      {object}  response.Response{data=service.TemplateResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req service.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	companyID, _ := requestScope(c)
	tpl, err := h.templateService.CreateTemplate(c.Request.Context(), companyID, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, tpl))
}

// ListTemplates returns the company's templates
// @Summary      List templates
// @Description  Lists the company's document templates, optionally filtered by type
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        type  query     string  false  "Filter by template type"
// @Success      200   {object}  response.Response{data=[]service.TemplateResponse}
// @Failure      500   {object}  response.Response
// @Router       /api/templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	companyID, _ := requestScope(c)
	templates, err := h.templateService.ListTemplates(c.Request.Context(), companyID, c.Query("type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, templates))
}

// GetTemplate returns a single template
// @Summary      Get template
// @Description  Fetch a single template with its body by ID
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  response.Response{data=service.TemplateResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/templates/{id} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	companyID, _ := requestScope(c)
	tpl, err := h.templateService.GetTemplate(c.Request.Context(), companyID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tpl))
}

// UpdateTemplate updates a template
// @Summary      Update template
// @Description  Updates a template's name, body or default flag. Promoting a default demotes the previous one.
// @Tags         templates
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                         true  "Template ID"
// @Param        payload  body      service.UpdateTemplateRequest  true  "Update Template Payload"
// @Success      200      {object}  response.Response{data=service.TemplateResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/templates/{id} [put]
func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	var req service.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	companyID, _ := requestScope(c)
	tpl, err := h.templateService.UpdateTemplate(c.Request.Context(), companyID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, tpl))
}

// DeleteTemplate deletes a template
// @Summary      Delete template
// @Description  Deletes a template by ID
// @Tags         templates
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Template ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/templates/{id} [delete]
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	companyID, _ := requestScope(c)
	if err := h.templateService.DeleteTemplate(c.Request.Context(), companyID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Template deleted successfully"))
}
