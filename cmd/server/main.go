package main

import (
	"log"

	"github.com/jengzang/commute-backend-go/internal/aggregation"
	"github.com/jengzang/commute-backend-go/internal/api"
	"github.com/jengzang/commute-backend-go/internal/config"
	"github.com/jengzang/commute-backend-go/internal/database"
	"github.com/jengzang/commute-backend-go/internal/handler"
	"github.com/jengzang/commute-backend-go/internal/repository"
	"github.com/jengzang/commute-backend-go/internal/service"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化数据库
	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	// Repositories
	telemetryRepo := repository.NewTelemetryRepository(db)
	congestionRepo := repository.NewCongestionRepository(db)
	insightRepo := repository.NewInsightRepository(db)
	routeRepo := repository.NewRouteRepository(db)

	// Aggregation pipelines
	congestionPipeline := aggregation.NewCongestionPipeline(telemetryRepo, congestionRepo)
	insightPipeline := aggregation.NewInsightPipeline(telemetryRepo, insightRepo)
	tracker := aggregation.NewRunTracker(db)

	// Services
	aggregationService := service.NewAggregationService(congestionPipeline, insightPipeline, tracker)
	congestionService := service.NewCongestionService(congestionRepo, routeRepo)
	insightService := service.NewInsightService(insightRepo, telemetryRepo)

	// 初始化路由
	router := api.SetupRouter(cfg, api.Handlers{
		Congestion:  handler.NewCongestionHandler(congestionService),
		Insight:     handler.NewInsightHandler(insightService),
		Aggregation: handler.NewAggregationHandler(aggregationService),
	})

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
