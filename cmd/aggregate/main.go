// One-shot aggregation trigger, intended to run from an external
// scheduler (cron, systemd timer). Full runs replace the whole aggregate
// set, so at most one instance should be in flight per job.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jengzang/commute-backend-go/internal/aggregation"
	"github.com/jengzang/commute-backend-go/internal/config"
	"github.com/jengzang/commute-backend-go/internal/database"
	"github.com/jengzang/commute-backend-go/internal/repository"
	"github.com/jengzang/commute-backend-go/internal/service"
)

func main() {
	job := flag.String("job", "all", "which aggregation to run: congestion, insights, or all")
	flag.Parse()

	if *job != "congestion" && *job != "insights" && *job != "all" {
		log.Fatalf("FATAL: unknown job %q", *job)
	}

	cfg := config.Load()

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatalf("FATAL: Database connection failed: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("Received shutdown signal, cancelling run")
		cancel()
	}()

	telemetryRepo := repository.NewTelemetryRepository(db)
	congestionRepo := repository.NewCongestionRepository(db)
	insightRepo := repository.NewInsightRepository(db)

	svc := service.NewAggregationService(
		aggregation.NewCongestionPipeline(telemetryRepo, congestionRepo),
		aggregation.NewInsightPipeline(telemetryRepo, insightRepo),
		aggregation.NewRunTracker(db),
	)

	now := time.Now()
	failed := false

	if *job == "congestion" || *job == "all" {
		if result, err := svc.RunCongestionFull(ctx, now); err != nil {
			log.Printf("ERROR: congestion run failed: %v", err)
			failed = true
		} else {
			log.Printf("Congestion run done: %d segments, %d skipped", result.Processed, result.Skipped)
		}
	}

	if *job == "insights" || *job == "all" {
		if result, err := svc.RunInsightsFull(ctx, now); err != nil {
			log.Printf("ERROR: insights run failed: %v", err)
			failed = true
		} else {
			log.Printf("Insights run done: %d regions, %d filtered, %d skipped",
				result.Processed, result.Filtered, result.Skipped)
		}
	}

	if failed {
		os.Exit(1)
	}
}
