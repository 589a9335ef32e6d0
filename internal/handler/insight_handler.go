package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/jengzang/commute-backend-go/internal/middleware"
	"github.com/jengzang/commute-backend-go/internal/models"
	"github.com/jengzang/commute-backend-go/internal/service"
	"github.com/jengzang/commute-backend-go/pkg/response"
)

// InsightHandler handles HTTP requests for regional insights
type InsightHandler struct {
	insightService *service.InsightService
}

// NewInsightHandler creates a new insight handler
func NewInsightHandler(insightService *service.InsightService) *InsightHandler {
	return &InsightHandler{
		insightService: insightService,
	}
}

// ListRegions handles GET /api/v1/regions
func (h *InsightHandler) ListRegions(c *gin.Context) {
	var filter models.RegionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	regions, err := h.insightService.ListRegions(c.Request.Context(), filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"regions": regions, "count": len(regions)})
}

// NearbyRegions handles GET /api/v1/regions/nearby
func (h *InsightHandler) NearbyRegions(c *gin.Context) {
	var filter models.NearbyFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}
	if filter.Lat == 0 && filter.Lng == 0 {
		response.BadRequest(c, "lat and lng are required")
		return
	}

	regions, err := h.insightService.Nearby(c.Request.Context(), filter)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, gin.H{"regions": regions, "count": len(regions)})
}

// GetRegion handles GET /api/v1/regions/:id
func (h *InsightHandler) GetRegion(c *gin.Context) {
	region, err := h.insightService.GetRegion(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if region == nil {
		response.NotFound(c, "No data for this region")
		return
	}

	response.Success(c, region)
}

// GetRegionTrend handles GET /api/v1/regions/:id/trend
func (h *InsightHandler) GetRegionTrend(c *gin.Context) {
	view, err := h.insightService.RegionTrend(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if view == nil {
		response.NotFound(c, "No data for this region")
		return
	}

	response.Success(c, view)
}

// GetRegionPeakHours handles GET /api/v1/regions/:id/peak-hours
func (h *InsightHandler) GetRegionPeakHours(c *gin.Context) {
	view, err := h.insightService.PeakHours(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	if view == nil {
		response.NotFound(c, "No data for this region")
		return
	}

	response.Success(c, view)
}

// CompareUser handles GET /api/v1/me/comparison
func (h *InsightHandler) CompareUser(c *gin.Context) {
	comparison, err := h.insightService.CompareUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}

	response.Success(c, comparison)
}
