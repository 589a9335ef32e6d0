package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jengzang/commute-backend-go/internal/models"
	"github.com/jengzang/commute-backend-go/internal/segment"
	"github.com/jengzang/commute-backend-go/internal/timeslot"
)

// CongestionReader reads stored segment congestion aggregates.
type CongestionReader interface {
	List(ctx context.Context, filter models.CongestionFilter) ([]models.SegmentCongestion, error)
	BySegmentKeys(ctx context.Context, keys []string, slot string) (map[string]models.SegmentCongestion, error)
}

// RouteReader reads saved routes with their checkpoints.
type RouteReader interface {
	GetByID(ctx context.Context, id int64) (*models.Route, error)
}

// Sentinel errors for the ownership boundary, so handlers can reject with
// a clear not-found vs forbidden distinction before touching aggregates.
var (
	ErrRouteNotFound  = errors.New("route not found")
	ErrRouteForbidden = errors.New("route does not belong to this user")
)

// CongestionService handles read-side queries over segment congestion
// aggregates.
type CongestionService struct {
	congestionRepo CongestionReader
	routeRepo      RouteReader
}

// NewCongestionService creates a new congestion service
func NewCongestionService(congestionRepo CongestionReader, routeRepo RouteReader) *CongestionService {
	return &CongestionService{
		congestionRepo: congestionRepo,
		routeRepo:      routeRepo,
	}
}

// ListSegments lists congestion aggregates for a time slot with an
// optional level filter and result cap.
func (s *CongestionService) ListSegments(ctx context.Context, filter models.CongestionFilter) ([]models.SegmentCongestion, error) {
	if filter.TimeSlot != "" && !timeslot.Valid(filter.TimeSlot) {
		return nil, fmt.Errorf("unknown time slot %q", filter.TimeSlot)
	}
	if filter.Level != "" && !models.ValidCongestionLevel(filter.Level) {
		return nil, fmt.Errorf("unknown congestion level %q", filter.Level)
	}

	segments, err := s.congestionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list segments: %w", err)
	}
	return segments, nil
}

// Overlay maps a user's saved route onto the stored congestion aggregates
// for the time slot containing now. Origin/destination home and work
// checkpoints are skipped; a checkpoint whose aggregate misses the
// minimum-sample predicate reports nil congestion. The overall level is
// the worst level present, low when no checkpoint has data.
func (s *CongestionService) Overlay(ctx context.Context, routeID int64, userID string, now time.Time) (*models.RouteOverlay, error) {
	route, err := s.routeRepo.GetByID(ctx, routeID)
	if err != nil {
		return nil, fmt.Errorf("failed to load route: %w", err)
	}
	if route == nil {
		return nil, ErrRouteNotFound
	}
	if route.UserID != userID {
		return nil, ErrRouteForbidden
	}

	slot := timeslot.Classify(now)

	type overlayEntry struct {
		checkpoint models.RouteCheckpoint
		key        string
	}
	var entries []overlayEntry
	var keys []string
	for _, cp := range route.Checkpoints {
		if cp.CheckpointType == models.PlaceTypeHome || cp.CheckpointType == models.PlaceTypeWork {
			continue
		}
		key := segment.Key(segment.Checkpoint{
			Name:            cp.Name,
			CheckpointType:  cp.CheckpointType,
			LineInfo:        cp.LineInfo,
			LinkedStationID: cp.LinkedStationID,
			LinkedBusStopID: cp.LinkedBusStopID,
		})
		entries = append(entries, overlayEntry{checkpoint: cp, key: key})
		keys = append(keys, key)
	}

	aggregates, err := s.congestionRepo.BySegmentKeys(ctx, keys, string(slot))
	if err != nil {
		return nil, fmt.Errorf("failed to load aggregates: %w", err)
	}

	overlay := &models.RouteOverlay{
		RouteID:      route.ID,
		TimeSlot:     string(slot),
		OverallLevel: models.CongestionLow,
	}

	for _, entry := range entries {
		cc := models.CheckpointCongestion{
			CheckpointID:  entry.checkpoint.ID,
			Name:          entry.checkpoint.Name,
			SequenceOrder: entry.checkpoint.SequenceOrder,
			SegmentKey:    entry.key,
		}

		if agg, ok := aggregates[entry.key]; ok && agg.HasEnoughSamples() {
			a := agg
			cc.Congestion = &a
			if a.Level.Rank() > overlay.OverallLevel.Rank() {
				overlay.OverallLevel = a.Level
			}
		}

		overlay.Checkpoints = append(overlay.Checkpoints, cc)
	}

	return overlay, nil
}
