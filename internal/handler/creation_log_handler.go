package handler

import (
	"net/http"

	"facturation/internal/service"
	"facturation/pkg/pagination"
	"facturation/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreationLogHandler struct {
	logService service.CreationLogService
}

func NewCreationLogHandler(logService service.CreationLogService) *CreationLogHandler {
	return &CreationLogHandler{logService: logService}
}

func (h *CreationLogHandler) RegisterRoutes(router *gin.RouterGroup) {
	logs := router.Group("/api/creation-logs")
	{
		logs.GET("", h.ListLogs)
		logs.DELETE("/:id", h.DeleteLog)
	}
}

// ListLogs returns the invoice creation audit trail, newest first
// @Summary      List creation logs
// @Tags         creation-logs
// @Produce      json
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      500    {object}  response.Response
// @Router       /api/creation-logs [get]
func (h *CreationLogHandler) ListLogs(c *gin.Context) {
	params := pagination.Parse(c)

	logs, total, err := h.logService.ListLogs(c.Request.Context(), params.Page, params.Limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, response.List(logs, total, params.Page, params.Limit)))
}

// DeleteLog removes a single audit entry (maintenance only)
// @Summary      Delete creation log
// @Tags         creation-logs
// @Produce      json
// @Param        id   path      string  true  "Creation Log ID"
// @Success      200  {object}  response.Response
// @Failure      400  {object}  response.Response
// @Router       /api/creation-logs/{id} [delete]
func (h *CreationLogHandler) DeleteLog(c *gin.Context) {
	if err := h.logService.DeleteLog(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": c.Param("id")}))
}
