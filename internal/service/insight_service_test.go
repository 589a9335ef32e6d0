package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/commute-backend-go/internal/geogrid"
	"github.com/jengzang/commute-backend-go/internal/models"
)

type fakeInsightReader struct {
	byRegion map[string]*models.RegionalInsight
	listed   []models.RegionalInsight
}

func (f *fakeInsightReader) List(ctx context.Context, limit int) ([]models.RegionalInsight, error) {
	return f.listed, nil
}

func (f *fakeInsightReader) GetByRegionID(ctx context.Context, regionID string) (*models.RegionalInsight, error) {
	return f.byRegion[regionID], nil
}

type fakeTelemetryReader struct {
	sessions []models.SessionRecord
	home     *models.UserPlace
}

func (f *fakeTelemetryReader) UserSessions(ctx context.Context, userID string) ([]models.SessionRecord, error) {
	return f.sessions, nil
}

func (f *fakeTelemetryReader) UserHomePlace(ctx context.Context, userID string) (*models.UserPlace, error) {
	return f.home, nil
}

func TestGetRegionRejectsMalformedKey(t *testing.T) {
	svc := NewInsightService(&fakeInsightReader{}, &fakeTelemetryReader{})

	_, err := svc.GetRegion(context.Background(), "seoul")
	require.Error(t, err)

	insight, err := svc.GetRegion(context.Background(), "grid_37.56_126.97")
	require.NoError(t, err)
	assert.Nil(t, insight, "well-formed but unknown key is no data, not an error")
}

func TestNearbySortsByDistance(t *testing.T) {
	reader := &fakeInsightReader{listed: []models.RegionalInsight{
		{RegionID: "grid_37.70_126.97", CenterLat: 37.705, CenterLng: 126.975},
		{RegionID: "grid_37.57_126.97", CenterLat: 37.575, CenterLng: 126.975},
		{RegionID: "grid_37.56_126.97", CenterLat: 37.565, CenterLng: 126.975},
	}}
	svc := NewInsightService(reader, &fakeTelemetryReader{})

	nearby, err := svc.Nearby(context.Background(), models.NearbyFilter{Lat: 37.565, Lng: 126.975})
	require.NoError(t, err)

	// The cell ~15 km north falls outside the default 3 km radius.
	require.Len(t, nearby, 2)
	assert.Equal(t, "grid_37.56_126.97", nearby[0].Region.RegionID)
	assert.Zero(t, nearby[0].DistanceMeters)
	assert.Equal(t, "grid_37.57_126.97", nearby[1].Region.RegionID)
	assert.InDelta(t, 1112, nearby[1].DistanceMeters, 20)
}

func TestNearbyCustomRadius(t *testing.T) {
	reader := &fakeInsightReader{listed: []models.RegionalInsight{
		{RegionID: "grid_37.57_126.97", CenterLat: 37.575, CenterLng: 126.975},
	}}
	svc := NewInsightService(reader, &fakeTelemetryReader{})

	nearby, err := svc.Nearby(context.Background(), models.NearbyFilter{Lat: 37.565, Lng: 126.975, RadiusM: 500})
	require.NoError(t, err)
	assert.Empty(t, nearby)
}

func TestRegionTrendView(t *testing.T) {
	reader := &fakeInsightReader{byRegion: map[string]*models.RegionalInsight{
		"grid_37.56_126.97": {
			RegionID:          "grid_37.56_126.97",
			WeekTrendPercent:  25,
			MonthTrendPercent: -37.5,
			UpdatedAt:         time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC),
		},
	}}
	svc := NewInsightService(reader, &fakeTelemetryReader{})

	view, err := svc.RegionTrend(context.Background(), "grid_37.56_126.97")
	require.NoError(t, err)
	require.NotNil(t, view)

	// Durations rising is worsening, falling is improving.
	assert.Equal(t, "worsening", view.WeekDirection)
	assert.Equal(t, "improving", view.MonthDirection)

	missing, err := svc.RegionTrend(context.Background(), "grid_37.00_127.00")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestPeakHoursView(t *testing.T) {
	var hours models.PeakHours
	hours[8] = 12
	hours[18] = 9

	reader := &fakeInsightReader{byRegion: map[string]*models.RegionalInsight{
		"grid_37.56_126.97": {RegionID: "grid_37.56_126.97", PeakHours: hours},
	}}
	svc := NewInsightService(reader, &fakeTelemetryReader{})

	view, err := svc.PeakHours(context.Background(), "grid_37.56_126.97")
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, 8, view.TopHour)
	assert.Equal(t, 12, view.Hours[8])
}

func TestCompareUserAgainstHomeRegion(t *testing.T) {
	regionID := geogrid.Known(37.5665, 126.9780).CellKey()
	reader := &fakeInsightReader{byRegion: map[string]*models.RegionalInsight{
		regionID: {RegionID: regionID, AvgDurationMinutes: 50, UserCount: 6},
	}}
	telemetry := &fakeTelemetryReader{
		home: &models.UserPlace{UserID: "u1", Latitude: 37.5665, Longitude: 126.9780, PlaceType: models.PlaceTypeHome},
		sessions: []models.SessionRecord{
			{SessionID: "s1", UserID: "u1", TotalDurationMinutes: 35},
			{SessionID: "s2", UserID: "u1", TotalDurationMinutes: 45},
		},
	}
	svc := NewInsightService(reader, telemetry)

	cmp, err := svc.CompareUser(context.Background(), "u1")
	require.NoError(t, err)

	assert.True(t, cmp.HasRegionData)
	assert.Equal(t, regionID, cmp.RegionID)
	assert.InDelta(t, 40, cmp.UserAvgMinutes, 1e-9)
	assert.InDelta(t, 50, cmp.RegionAvgMinutes, 1e-9)
	assert.InDelta(t, -10, cmp.DiffMinutes, 1e-9)
	assert.InDelta(t, -20, cmp.DiffPercent, 1e-9)
	assert.Equal(t, 2, cmp.UserSessionCount)
	assert.Equal(t, 6, cmp.RegionUserCount)
}

func TestCompareUserFallsBackToOriginName(t *testing.T) {
	regionID := geogrid.FallbackFromName("합정역").CellKey()
	reader := &fakeInsightReader{byRegion: map[string]*models.RegionalInsight{
		regionID: {RegionID: regionID, AvgDurationMinutes: 40, UserCount: 5},
	}}
	telemetry := &fakeTelemetryReader{
		sessions: []models.SessionRecord{
			{SessionID: "s1", UserID: "u1", TotalDurationMinutes: 40, StartCheckpointName: "합정역"},
			{SessionID: "s2", UserID: "u1", TotalDurationMinutes: 44, StartCheckpointName: "합정역"},
		},
	}
	svc := NewInsightService(reader, telemetry)

	cmp, err := svc.CompareUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, cmp.HasRegionData)
	assert.Equal(t, regionID, cmp.RegionID)
}

func TestCompareUserZeroedWhenRegionUnknown(t *testing.T) {
	telemetry := &fakeTelemetryReader{
		home: &models.UserPlace{UserID: "u1", Latitude: 37.5665, Longitude: 126.9780},
		sessions: []models.SessionRecord{
			{SessionID: "s1", UserID: "u1", TotalDurationMinutes: 40},
		},
	}
	svc := NewInsightService(&fakeInsightReader{}, telemetry)

	cmp, err := svc.CompareUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, &models.RegionComparison{}, cmp, "no partial fields leak for an unknown region")
}

func TestCompareUserZeroedWhenRegionBelowThreshold(t *testing.T) {
	regionID := geogrid.Known(37.5665, 126.9780).CellKey()
	reader := &fakeInsightReader{byRegion: map[string]*models.RegionalInsight{
		regionID: {RegionID: regionID, AvgDurationMinutes: 50, UserCount: 4},
	}}
	telemetry := &fakeTelemetryReader{
		home: &models.UserPlace{UserID: "u1", Latitude: 37.5665, Longitude: 126.9780},
		sessions: []models.SessionRecord{
			{SessionID: "s1", UserID: "u1", TotalDurationMinutes: 40},
		},
	}
	svc := NewInsightService(reader, telemetry)

	cmp, err := svc.CompareUser(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, &models.RegionComparison{}, cmp)
}
