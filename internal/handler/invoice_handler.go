package handler

import (
	"net/http"

	"facturation/internal/model"
	"facturation/internal/service"
	"facturation/pkg/pagination"
	"facturation/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	logService     service.CreationLogService
}

func NewInvoiceHandler(invoiceService service.InvoiceService, logService service.CreationLogService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		logService:     logService,
	}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/api/invoices")
	{
		invoices.POST("", h.CreateInvoice)
		invoices.GET("", h.ListInvoices)
		invoices.GET("/:id", h.GetInvoice)
		invoices.PUT("/:id", h.UpdateInvoice)
		invoices.DELETE("/:id", h.DeleteInvoice)
		invoices.GET("/:id/creation-logs", h.ListInvoiceCreationLogs)
	}
}

// CreateInvoice creates an invoice with derived tax fields
// @Summary      Create invoice
// @Description  Creates an invoice; tax and total amounts are derived from net amount and tax rate, and a missing category is replaced by the fallback category
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        source   query     string                         false  "Creation method tag (web-form, api, import; default api)"
// @Param        payload  body      service.CreateInvoiceRequest   true   "Create Invoice Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	method := c.DefaultQuery("source", model.CreationMethodAPI)
	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), req, requestMetadata(c, method))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, invoice))
}

// ListInvoices returns invoices matching the composed filters
// @Summary      List invoices
// @Description  Retrieves a paginated list of invoices; all filters combine by AND
// @Tags         invoices
// @Produce      json
// @Param        paid         query     bool    false  "Filter by payment status"
// @Param        client_id    query     string  false  "Filter by client"
// @Param        category_id  query     string  false  "Filter by category"
// @Param        start_date   query     string  false  "Period start (YYYY-MM-DD, inclusive)"
// @Param        end_date     query     string  false  "Period end (YYYY-MM-DD, inclusive)"
// @Param        q            query     string  false  "Case-insensitive search over number, client name and client email"
// @Param        page         query     int     false  "Page number (default 1)"
// @Param        limit        query     int     false  "Items per page (default 20)"
// @Success      200          {object}  response.Response{data=object}
// @Failure      400          {object}  response.Response
// @Router       /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	params := pagination.Parse(c)

	filter := service.InvoiceFilter{
		ClientID:   c.Query("client_id"),
		CategoryID: c.Query("category_id"),
		StartDate:  c.Query("start_date"),
		EndDate:    c.Query("end_date"),
		Search:     c.Query("q"),
		Page:       params.Page,
		Limit:      params.Limit,
	}
	if raw, ok := c.GetQuery("paid"); ok {
		paid := raw == "true" || raw == "1"
		filter.Paid = &paid
	}

	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.List(invoices, total, params.Page, params.Limit)))
}

// GetInvoice returns a single invoice
// @Summary      Get invoice
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// UpdateInvoice replaces all invoice fields and re-derives tax amounts
// @Summary      Update invoice
// @Description  Full-field update; tax and total amounts are recomputed and a cleared category is replaced by the fallback category
// @Tags         invoices
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.CreateInvoiceRequest  true  "Update Invoice Payload"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Router       /api/invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req service.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, invoice))
}

// DeleteInvoice removes an invoice and its creation logs
// @Summary      Delete invoice
// @Description  Deletes an invoice; its creation logs cascade, the client and category stay
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/invoices/{id} [delete]
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.invoiceService.DeleteInvoice(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": c.Param("id")}))
}

// ListInvoiceCreationLogs returns the audit trail of one invoice
// @Summary      List invoice creation logs
// @Tags         invoices
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=[]service.CreationLogResponse}
// @Failure      400  {object}  response.Response
// @Router       /api/invoices/{id}/creation-logs [get]
func (h *InvoiceHandler) ListInvoiceCreationLogs(c *gin.Context) {
	logs, err := h.logService.ListLogsByInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, logs))
}
