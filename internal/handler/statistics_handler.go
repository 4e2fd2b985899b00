package handler

import (
	"net/http"
	"strconv"

	"facturation/internal/service"
	"facturation/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
}

func NewStatisticsHandler(statisticsService service.StatisticsService) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	stats := router.Group("/api/statistics")
	{
		stats.GET("", h.GetStatistics)
	}
}

// GetStatistics returns invoice sums, counts and rankings
// @Summary      Get invoice statistics
// @Description  Aggregates net/tax/total sums, paid/unpaid counts, per-category and per-client breakdowns and top rankings over the requested period
// @Tags         statistics
// @Produce      json
// @Param        period      query     string  false  "Shortcut period: current_month"
// @Param        year        query     int     false  "Calendar-year shortcut"
// @Param        start_date  query     string  false  "Period start (YYYY-MM-DD, inclusive)"
// @Param        end_date    query     string  false  "Period end (YYYY-MM-DD, inclusive)"
// @Param        top         query     int     false  "Ranking size (default 5)"
// @Success      200         {object}  response.Response{data=model.StatisticsResponse}
// @Failure      400         {object}  response.Response
// @Router       /api/statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	year, _ := strconv.Atoi(c.Query("year"))
	topLimit, _ := strconv.Atoi(c.Query("top"))

	filter := service.StatisticsFilter{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
		Period:    c.Query("period"),
		Year:      year,
		TopLimit:  topLimit,
	}

	stats, err := h.statisticsService.GetStatistics(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
