package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/commute-backend-go/internal/aggregation"
	"github.com/jengzang/commute-backend-go/internal/service"
	"github.com/jengzang/commute-backend-go/pkg/response"
)

// AggregationHandler handles HTTP triggers for aggregation runs. The
// scheduling cadence itself lives outside this service.
type AggregationHandler struct {
	aggregationService *service.AggregationService
}

// NewAggregationHandler creates a new aggregation handler
func NewAggregationHandler(aggregationService *service.AggregationService) *AggregationHandler {
	return &AggregationHandler{
		aggregationService: aggregationService,
	}
}

// RunCongestion handles POST /api/v1/aggregation/congestion/runs
func (h *AggregationHandler) RunCongestion(c *gin.Context) {
	result, err := h.aggregationService.RunCongestionFull(c.Request.Context(), time.Now())
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// UpdateCongestionSession handles POST /api/v1/aggregation/congestion/sessions/:id
func (h *AggregationHandler) UpdateCongestionSession(c *gin.Context) {
	sessionID := c.Param("id")
	if sessionID == "" {
		response.BadRequest(c, "Session id is required")
		return
	}

	result, err := h.aggregationService.UpdateCongestionSession(c.Request.Context(), sessionID, time.Now())
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// RunInsights handles POST /api/v1/aggregation/insights/runs
func (h *AggregationHandler) RunInsights(c *gin.Context) {
	result, err := h.aggregationService.RunInsightsFull(c.Request.Context(), time.Now())
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, result)
}

// GetCongestionStatus handles GET /api/v1/aggregation/congestion/runs/latest
func (h *AggregationHandler) GetCongestionStatus(c *gin.Context) {
	h.latest(c, aggregation.RunKindCongestion)
}

// GetInsightsStatus handles GET /api/v1/aggregation/insights/runs/latest
func (h *AggregationHandler) GetInsightsStatus(c *gin.Context) {
	h.latest(c, aggregation.RunKindInsights)
}

func (h *AggregationHandler) latest(c *gin.Context, kind string) {
	run, err := h.aggregationService.LatestRun(kind)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	if run == nil {
		response.NotFound(c, "No runs recorded")
		return
	}
	response.Success(c, run)
}
