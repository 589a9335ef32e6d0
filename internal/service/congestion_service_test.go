package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jengzang/commute-backend-go/internal/models"
)

type fakeCongestionReader struct {
	segments []models.SegmentCongestion

	lastFilter models.CongestionFilter
	lastSlot   string
}

func (f *fakeCongestionReader) List(ctx context.Context, filter models.CongestionFilter) ([]models.SegmentCongestion, error) {
	f.lastFilter = filter
	return f.segments, nil
}

func (f *fakeCongestionReader) BySegmentKeys(ctx context.Context, keys []string, slot string) (map[string]models.SegmentCongestion, error) {
	f.lastSlot = slot
	found := make(map[string]models.SegmentCongestion)
	for _, key := range keys {
		for _, seg := range f.segments {
			if seg.SegmentKey == key && seg.TimeSlot == slot {
				found[key] = seg
			}
		}
	}
	return found, nil
}

type fakeRouteReader struct {
	routes map[int64]*models.Route
}

func (f *fakeRouteReader) GetByID(ctx context.Context, id int64) (*models.Route, error) {
	return f.routes[id], nil
}

// eveningRush is 17:30 KST (08:30 UTC).
var eveningRush = time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC)

func commuteRoute() *models.Route {
	return &models.Route{
		ID:     7,
		UserID: "u1",
		Name:   "출근길",
		Checkpoints: []models.RouteCheckpoint{
			{ID: 1, Name: "집", SequenceOrder: 0, CheckpointType: models.PlaceTypeHome},
			{ID: 2, Name: "강남역", SequenceOrder: 1, CheckpointType: "subway", LineInfo: "2호선", LinkedStationID: "S222"},
			{ID: 3, Name: "역삼역", SequenceOrder: 2, CheckpointType: "subway", LineInfo: "2호선", LinkedStationID: "S223"},
			{ID: 4, Name: "회사", SequenceOrder: 3, CheckpointType: models.PlaceTypeWork},
		},
	}
}

func TestListSegmentsValidatesFilter(t *testing.T) {
	svc := NewCongestionService(&fakeCongestionReader{}, &fakeRouteReader{})

	_, err := svc.ListSegments(context.Background(), models.CongestionFilter{TimeSlot: "lunch"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "time slot")

	_, err = svc.ListSegments(context.Background(), models.CongestionFilter{Level: "extreme"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "congestion level")

	_, err = svc.ListSegments(context.Background(), models.CongestionFilter{
		TimeSlot: "morning_rush",
		Level:    "high",
	})
	require.NoError(t, err)
}

func TestOverlayRouteOwnership(t *testing.T) {
	routes := &fakeRouteReader{routes: map[int64]*models.Route{7: commuteRoute()}}
	svc := NewCongestionService(&fakeCongestionReader{}, routes)

	_, err := svc.Overlay(context.Background(), 99, "u1", eveningRush)
	assert.ErrorIs(t, err, ErrRouteNotFound)

	_, err = svc.Overlay(context.Background(), 7, "intruder", eveningRush)
	assert.ErrorIs(t, err, ErrRouteForbidden)
}

func TestOverlaySkipsHomeAndWork(t *testing.T) {
	routes := &fakeRouteReader{routes: map[int64]*models.Route{7: commuteRoute()}}
	svc := NewCongestionService(&fakeCongestionReader{}, routes)

	overlay, err := svc.Overlay(context.Background(), 7, "u1", eveningRush)
	require.NoError(t, err)

	require.Len(t, overlay.Checkpoints, 2)
	assert.Equal(t, "강남역", overlay.Checkpoints[0].Name)
	assert.Equal(t, "역삼역", overlay.Checkpoints[1].Name)
	assert.Equal(t, "evening_rush", overlay.TimeSlot)
	assert.Equal(t, models.CongestionLow, overlay.OverallLevel, "no data defaults to low")
}

func TestOverlayMinimumSamplePredicate(t *testing.T) {
	reader := &fakeCongestionReader{segments: []models.SegmentCongestion{
		{
			SegmentKey:  "station_S222_2호선",
			TimeSlot:    "evening_rush",
			Level:       models.CongestionHigh,
			SampleCount: 3,
		},
		{
			SegmentKey:  "station_S223_2호선",
			TimeSlot:    "evening_rush",
			Level:       models.CongestionSevere,
			SampleCount: 2,
		},
	}}
	routes := &fakeRouteReader{routes: map[int64]*models.Route{7: commuteRoute()}}
	svc := NewCongestionService(reader, routes)

	overlay, err := svc.Overlay(context.Background(), 7, "u1", eveningRush)
	require.NoError(t, err)

	require.Len(t, overlay.Checkpoints, 2)
	require.NotNil(t, overlay.Checkpoints[0].Congestion)
	assert.Equal(t, models.CongestionHigh, overlay.Checkpoints[0].Congestion.Level)

	// Two samples stay below the reliability floor, so the severe
	// aggregate neither appears nor drives the overall level.
	assert.Nil(t, overlay.Checkpoints[1].Congestion)
	assert.Equal(t, models.CongestionHigh, overlay.OverallLevel)
}

func TestOverlayOverallIsWorstLevel(t *testing.T) {
	reader := &fakeCongestionReader{segments: []models.SegmentCongestion{
		{SegmentKey: "station_S222_2호선", TimeSlot: "evening_rush", Level: models.CongestionModerate, SampleCount: 5},
		{SegmentKey: "station_S223_2호선", TimeSlot: "evening_rush", Level: models.CongestionSevere, SampleCount: 4},
	}}
	routes := &fakeRouteReader{routes: map[int64]*models.Route{7: commuteRoute()}}
	svc := NewCongestionService(reader, routes)

	overlay, err := svc.Overlay(context.Background(), 7, "u1", eveningRush)
	require.NoError(t, err)
	assert.Equal(t, models.CongestionSevere, overlay.OverallLevel)
}

func TestOverlayQueriesSlotOfNow(t *testing.T) {
	reader := &fakeCongestionReader{}
	routes := &fakeRouteReader{routes: map[int64]*models.Route{7: commuteRoute()}}
	svc := NewCongestionService(reader, routes)

	offPeak := time.Date(2025, 6, 2, 18, 0, 0, 0, time.UTC) // 03:00 KST
	overlay, err := svc.Overlay(context.Background(), 7, "u1", offPeak)
	require.NoError(t, err)

	assert.Equal(t, "off_peak", overlay.TimeSlot)
	assert.Equal(t, "off_peak", reader.lastSlot)
}
