package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jengzang/commute-backend-go/internal/aggregation"
)

// AggregationService triggers aggregation runs and records their
// lifecycle. Callers (HTTP trigger, scheduler command) supply the
// reference time so the pipelines stay clock-free.
type AggregationService struct {
	congestion *aggregation.CongestionPipeline
	insights   *aggregation.InsightPipeline
	tracker    *aggregation.RunTracker
}

// NewAggregationService creates a new aggregation service
func NewAggregationService(
	congestion *aggregation.CongestionPipeline,
	insights *aggregation.InsightPipeline,
	tracker *aggregation.RunTracker,
) *AggregationService {
	return &AggregationService{
		congestion: congestion,
		insights:   insights,
		tracker:    tracker,
	}
}

// RunCongestionFull recomputes all congestion aggregates.
func (s *AggregationService) RunCongestionFull(ctx context.Context, now time.Time) (*aggregation.RunResult, error) {
	return s.tracked(aggregation.RunKindCongestion, aggregation.RunModeFull, func() (*aggregation.RunResult, error) {
		return s.congestion.RunFull(ctx, now)
	})
}

// UpdateCongestionSession refreshes the aggregates touched by one session.
func (s *AggregationService) UpdateCongestionSession(ctx context.Context, sessionID string, now time.Time) (*aggregation.RunResult, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}
	return s.tracked(aggregation.RunKindCongestion, aggregation.RunModeIncremental, func() (*aggregation.RunResult, error) {
		return s.congestion.UpdateSession(ctx, sessionID, now)
	})
}

// RunInsightsFull recomputes all regional insights.
func (s *AggregationService) RunInsightsFull(ctx context.Context, now time.Time) (*aggregation.RunResult, error) {
	return s.tracked(aggregation.RunKindInsights, aggregation.RunModeFull, func() (*aggregation.RunResult, error) {
		return s.insights.RunFull(ctx, now)
	})
}

// LatestRun returns the most recent run of a kind, or nil.
func (s *AggregationService) LatestRun(kind string) (*aggregation.RunRecord, error) {
	return s.tracker.Latest(kind)
}

func (s *AggregationService) tracked(kind, mode string, run func() (*aggregation.RunResult, error)) (*aggregation.RunResult, error) {
	runID, err := s.tracker.Begin(kind, mode)
	if err != nil {
		return nil, err
	}

	result, err := run()
	if err != nil {
		if failErr := s.tracker.Fail(runID, err); failErr != nil {
			return nil, fmt.Errorf("run failed: %v, bookkeeping failed: %w", err, failErr)
		}
		return nil, err
	}

	if err := s.tracker.Complete(runID, result); err != nil {
		return nil, err
	}
	return result, nil
}
