package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/jengzang/commute-backend-go/internal/geogrid"
	"github.com/jengzang/commute-backend-go/internal/models"
	"github.com/jengzang/commute-backend-go/internal/stats"
	"github.com/jengzang/commute-backend-go/internal/trend"
)

const defaultNearbyRadiusMeters = 3000.0

// InsightReader reads stored regional insight aggregates.
type InsightReader interface {
	List(ctx context.Context, limit int) ([]models.RegionalInsight, error)
	GetByRegionID(ctx context.Context, regionID string) (*models.RegionalInsight, error)
}

// TelemetryReader reads the raw rows the comparison view needs.
type TelemetryReader interface {
	UserSessions(ctx context.Context, userID string) ([]models.SessionRecord, error)
	UserHomePlace(ctx context.Context, userID string) (*models.UserPlace, error)
}

// InsightService handles read-side queries over regional insight
// aggregates. A privacy-filtered region looks identical to one that was
// never computed: no data for that key.
type InsightService struct {
	insightRepo   InsightReader
	telemetryRepo TelemetryReader
}

// NewInsightService creates a new insight service
func NewInsightService(insightRepo InsightReader, telemetryRepo TelemetryReader) *InsightService {
	return &InsightService{
		insightRepo:   insightRepo,
		telemetryRepo: telemetryRepo,
	}
}

// ListRegions lists stored insights, busiest first.
func (s *InsightService) ListRegions(ctx context.Context, filter models.RegionFilter) ([]models.RegionalInsight, error) {
	insights, err := s.insightRepo.List(ctx, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	return insights, nil
}

// GetRegion returns one region's insight, or nil when there is no data
// for that key.
func (s *InsightService) GetRegion(ctx context.Context, regionID string) (*models.RegionalInsight, error) {
	if _, _, ok := geogrid.ParseKey(regionID); !ok {
		return nil, fmt.Errorf("malformed region id %q", regionID)
	}
	return s.insightRepo.GetByRegionID(ctx, regionID)
}

// Nearby lists regions within a radius of a point, nearest first.
func (s *InsightService) Nearby(ctx context.Context, filter models.NearbyFilter) ([]models.NearbyRegion, error) {
	radius := filter.RadiusM
	if radius <= 0 {
		radius = defaultNearbyRadiusMeters
	}

	// Cells are coarse (~1 km), so the whole aggregate set stays small
	// enough to distance-filter in memory.
	insights, err := s.insightRepo.List(ctx, 10000)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}

	var nearby []models.NearbyRegion
	for _, in := range insights {
		d := geogrid.DistanceMeters(filter.Lat, filter.Lng, in.CenterLat, in.CenterLng)
		if d <= radius {
			nearby = append(nearby, models.NearbyRegion{
				Region:         in,
				DistanceMeters: stats.Round2(d),
			})
		}
	}

	sort.Slice(nearby, func(i, j int) bool {
		return nearby[i].DistanceMeters < nearby[j].DistanceMeters
	})

	return nearby, nil
}

// RegionTrend returns the trend view of one region, or nil when there is
// no data.
func (s *InsightService) RegionTrend(ctx context.Context, regionID string) (*models.RegionTrendView, error) {
	insight, err := s.GetRegion(ctx, regionID)
	if err != nil || insight == nil {
		return nil, err
	}

	return &models.RegionTrendView{
		RegionID:          insight.RegionID,
		WeekTrendPercent:  insight.WeekTrendPercent,
		WeekDirection:     string(trend.Classify(insight.WeekTrendPercent)),
		MonthTrendPercent: insight.MonthTrendPercent,
		MonthDirection:    string(trend.Classify(insight.MonthTrendPercent)),
		UpdatedAt:         insight.UpdatedAt,
	}, nil
}

// PeakHours returns the peak-hour view of one region, or nil when there
// is no data.
func (s *InsightService) PeakHours(ctx context.Context, regionID string) (*models.PeakHoursView, error) {
	insight, err := s.GetRegion(ctx, regionID)
	if err != nil || insight == nil {
		return nil, err
	}

	return &models.PeakHoursView{
		RegionID: insight.RegionID,
		Hours:    insight.PeakHours,
		TopHour:  insight.PeakHours.Top(),
	}, nil
}

// CompareUser compares a user's own commute average against their
// region's stored average. The comparison is zeroed out entirely, not
// partially, when the region is privacy-filtered or unknown.
func (s *InsightService) CompareUser(ctx context.Context, userID string) (*models.RegionComparison, error) {
	sessions, err := s.telemetryRepo.UserSessions(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user sessions: %w", err)
	}

	regionID, err := s.resolveUserRegion(ctx, userID, sessions)
	if err != nil {
		return nil, err
	}

	insight, err := s.insightRepo.GetByRegionID(ctx, regionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load region: %w", err)
	}
	if insight == nil || insight.UserCount < models.MinRegionUsers {
		return &models.RegionComparison{}, nil
	}

	durations := make([]float64, 0, len(sessions))
	for _, sess := range sessions {
		durations = append(durations, sess.TotalDurationMinutes)
	}

	userAvg := stats.Round2(stats.Mean(durations))
	diff := stats.Round2(userAvg - insight.AvgDurationMinutes)

	var diffPercent float64
	if insight.AvgDurationMinutes != 0 {
		diffPercent = stats.Round2(diff / insight.AvgDurationMinutes * 100)
	}

	return &models.RegionComparison{
		RegionID:         insight.RegionID,
		UserAvgMinutes:   userAvg,
		RegionAvgMinutes: insight.AvgDurationMinutes,
		DiffMinutes:      diff,
		DiffPercent:      diffPercent,
		UserSessionCount: len(sessions),
		RegionUserCount:  insight.UserCount,
		HasRegionData:    true,
	}, nil
}

// resolveUserRegion maps a user onto the same grid key the insights
// pipeline used at write time: the active home place when known, else
// the name-hash fallback over the user's most common origin checkpoint.
func (s *InsightService) resolveUserRegion(ctx context.Context, userID string, sessions []models.SessionRecord) (string, error) {
	home, err := s.telemetryRepo.UserHomePlace(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load home place: %w", err)
	}
	if home != nil {
		return geogrid.Known(home.Latitude, home.Longitude).CellKey(), nil
	}

	var names []string
	for _, sess := range sessions {
		if sess.StartCheckpointName != "" {
			names = append(names, sess.StartCheckpointName)
		}
	}
	return geogrid.FallbackFromName(geogrid.MostCommonName(names)).CellKey(), nil
}
