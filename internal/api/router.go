package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/jengzang/commute-backend-go/internal/config"
	"github.com/jengzang/commute-backend-go/internal/handler"
	"github.com/jengzang/commute-backend-go/internal/middleware"
)

// Handlers bundles the HTTP handlers wired into the router.
type Handlers struct {
	Congestion  *handler.CongestionHandler
	Insight     *handler.InsightHandler
	Aggregation *handler.AggregationHandler
}

// SetupRouter builds the gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.RateLimit(120, time.Minute))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Commute Insights API is running",
		})
	})

	auth := middleware.Auth(cfg.JWTSecret)

	api := r.Group("/api/v1")
	{
		congestion := api.Group("/congestion")
		{
			congestion.GET("/segments", h.Congestion.ListSegments)
			congestion.GET("/segments/current", h.Congestion.ListCurrentSegments)
		}

		routes := api.Group("/routes")
		routes.Use(auth)
		{
			routes.GET("/:id/overlay", h.Congestion.RouteOverlay)
		}

		regions := api.Group("/regions")
		{
			regions.GET("", h.Insight.ListRegions)
			regions.GET("/nearby", h.Insight.NearbyRegions)
			regions.GET("/:id", h.Insight.GetRegion)
			regions.GET("/:id/trend", h.Insight.GetRegionTrend)
			regions.GET("/:id/peak-hours", h.Insight.GetRegionPeakHours)
		}

		me := api.Group("/me")
		me.Use(auth)
		{
			me.GET("/comparison", h.Insight.CompareUser)
		}

		aggregationAPI := api.Group("/aggregation")
		{
			aggregationAPI.POST("/congestion/runs", h.Aggregation.RunCongestion)
			aggregationAPI.POST("/congestion/sessions/:id", h.Aggregation.UpdateCongestionSession)
			aggregationAPI.POST("/insights/runs", h.Aggregation.RunInsights)
			aggregationAPI.GET("/congestion/runs/latest", h.Aggregation.GetCongestionStatus)
			aggregationAPI.GET("/insights/runs/latest", h.Aggregation.GetInsightsStatus)
		}
	}

	return r
}
