package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/commute-backend-go/internal/middleware"
	"github.com/jengzang/commute-backend-go/internal/models"
	"github.com/jengzang/commute-backend-go/internal/service"
	"github.com/jengzang/commute-backend-go/internal/timeslot"
	"github.com/jengzang/commute-backend-go/pkg/response"
)

// CongestionHandler handles HTTP requests for segment congestion
type CongestionHandler struct {
	congestionService *service.CongestionService
}

// NewCongestionHandler creates a new congestion handler
func NewCongestionHandler(congestionService *service.CongestionService) *CongestionHandler {
	return &CongestionHandler{
		congestionService: congestionService,
	}
}

// ListSegments handles GET /api/v1/congestion/segments
func (h *CongestionHandler) ListSegments(c *gin.Context) {
	var filter models.CongestionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	segments, err := h.congestionService.ListSegments(c.Request.Context(), filter)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"time_slot": filter.TimeSlot,
		"segments":  segments,
	})
}

// ListCurrentSegments handles GET /api/v1/congestion/segments/current
func (h *CongestionHandler) ListCurrentSegments(c *gin.Context) {
	var filter models.CongestionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	filter.TimeSlot = string(timeslot.Current())

	segments, err := h.congestionService.ListSegments(c.Request.Context(), filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"time_slot": filter.TimeSlot,
		"segments":  segments,
	})
}

// RouteOverlay handles GET /api/v1/routes/:id/overlay
func (h *CongestionHandler) RouteOverlay(c *gin.Context) {
	routeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, "Invalid route id")
		return
	}

	overlay, err := h.congestionService.Overlay(c.Request.Context(), routeID, middleware.UserID(c), time.Now())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRouteNotFound):
			response.NotFound(c, "Route not found")
		case errors.Is(err, service.ErrRouteForbidden):
			response.Forbidden(c, "Route belongs to another user")
		default:
			response.InternalError(c, err.Error())
		}
		return
	}

	response.Success(c, overlay)
}
