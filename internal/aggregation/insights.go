package aggregation

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jengzang/commute-backend-go/internal/estimator"
	"github.com/jengzang/commute-backend-go/internal/geogrid"
	"github.com/jengzang/commute-backend-go/internal/models"
	"github.com/jengzang/commute-backend-go/internal/stats"
	"github.com/jengzang/commute-backend-go/internal/timeslot"
	"github.com/jengzang/commute-backend-go/internal/trend"
)

// SessionSource supplies completed trip sessions and the active home
// places used to resolve them onto the grid.
type SessionSource interface {
	// CompletedSessions returns every completed session with its
	// first-checkpoint metadata.
	CompletedSessions(ctx context.Context) ([]models.SessionRecord, error)

	// ActiveHomePlaces returns each user's active home place, keyed by
	// user id.
	ActiveHomePlaces(ctx context.Context) (map[string]models.UserPlace, error)
}

// InsightStore persists regional insight aggregates.
type InsightStore interface {
	// ReplaceAll atomically swaps the entire aggregate set.
	ReplaceAll(ctx context.Context, insights []models.RegionalInsight) error
}

// Trend window lengths, relative to the run's reference time.
const (
	weekWindow  = 7 * 24 * time.Hour
	monthWindow = 30 * 24 * time.Hour
)

// InsightPipeline recomputes per-grid-cell regional commute insights from
// completed sessions. Full runs only; there is no incremental path.
type InsightPipeline struct {
	source SessionSource
	store  InsightStore

	runMu sync.Mutex
}

// NewInsightPipeline creates a new insight pipeline.
func NewInsightPipeline(source SessionSource, store InsightStore) *InsightPipeline {
	return &InsightPipeline{source: source, store: store}
}

// regionGroup accumulates the sessions resolved to one grid cell.
type regionGroup struct {
	regionID  string
	centerLat float64
	centerLng float64

	names     []string
	users     map[string]struct{}
	durations []float64
	hours     models.PeakHours

	weekCur, weekPrev   []float64
	monthCur, monthPrev []float64
}

// RunFull recomputes every regional insight and replaces the persisted
// set. Cells below the distinct-user privacy threshold are omitted from
// output entirely, never stored redacted. now drives the week/month
// window boundaries and is passed explicitly for testability.
func (p *InsightPipeline) RunFull(ctx context.Context, now time.Time) (*RunResult, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	log.Printf("[InsightPipeline] Starting full run")

	sessions, err := p.source.CompletedSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sessions: %w", err)
	}

	homes, err := p.source.ActiveHomePlaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch home places: %w", err)
	}

	groups := buildRegionGroups(sessions, homes, now)

	result := &RunResult{}
	insights := make([]models.RegionalInsight, 0, len(groups))
	for _, g := range groups {
		if len(g.users) < models.MinRegionUsers {
			result.Filtered++
			continue
		}

		insight, err := computeInsight(g, now)
		if err != nil {
			log.Printf("[InsightPipeline] Skipping region %s: %v", g.regionID, err)
			result.Skipped++
			continue
		}
		insights = append(insights, *insight)
		result.Processed++
	}

	if err := p.store.ReplaceAll(ctx, insights); err != nil {
		return nil, fmt.Errorf("failed to replace insights: %w", err)
	}

	log.Printf("[InsightPipeline] Full run completed: %d regions, %d filtered, %d skipped",
		result.Processed, result.Filtered, result.Skipped)
	return result, nil
}

// buildRegionGroups resolves each session onto the grid and accumulates
// per-cell state in first-seen order. A session without a home place
// routes to the deterministic name-hash fallback cell rather than
// failing the run.
func buildRegionGroups(sessions []models.SessionRecord, homes map[string]models.UserPlace, now time.Time) []*regionGroup {
	index := make(map[string]*regionGroup)
	var groups []*regionGroup

	for _, s := range sessions {
		var loc geogrid.ResolvedLocation
		if home, ok := homes[s.UserID]; ok {
			loc = geogrid.Known(home.Latitude, home.Longitude)
		} else {
			loc = geogrid.FallbackFromName(s.StartCheckpointName)
		}

		key := loc.CellKey()
		g, ok := index[key]
		if !ok {
			g = &regionGroup{
				regionID:  key,
				centerLat: geogrid.SnapCenter(loc.Lat),
				centerLng: geogrid.SnapCenter(loc.Lng),
				users:     make(map[string]struct{}),
			}
			index[key] = g
			groups = append(groups, g)
		}

		if s.StartCheckpointName != "" {
			g.names = append(g.names, s.StartCheckpointName)
		}
		g.users[s.UserID] = struct{}{}
		g.durations = append(g.durations, s.TotalDurationMinutes)
		g.hours[timeslot.HourKST(s.StartedAt)]++

		age := now.Sub(s.StartedAt)
		switch {
		case age < 0:
			// Clock skew; count the session but keep it out of the windows.
		case age < weekWindow:
			g.weekCur = append(g.weekCur, s.TotalDurationMinutes)
		case age < 2*weekWindow:
			g.weekPrev = append(g.weekPrev, s.TotalDurationMinutes)
		}
		switch {
		case age < 0:
		case age < monthWindow:
			g.monthCur = append(g.monthCur, s.TotalDurationMinutes)
		case age < 2*monthWindow:
			g.monthPrev = append(g.monthPrev, s.TotalDurationMinutes)
		}
	}

	return groups
}

// computeInsight turns one populated cell into its aggregate record.
func computeInsight(g *regionGroup, now time.Time) (*models.RegionalInsight, error) {
	if _, _, ok := geogrid.ParseKey(g.regionID); !ok {
		return nil, fmt.Errorf("unparseable region key %q", g.regionID)
	}

	posterior := estimator.Update(estimator.RegionDurationPrior, g.durations)

	return &models.RegionalInsight{
		RegionID:              g.regionID,
		DisplayName:           geogrid.MostCommonName(g.names),
		CenterLat:             g.centerLat,
		CenterLng:             g.centerLng,
		AvgDurationMinutes:    stats.Round2(posterior.Mu),
		MedianDurationMinutes: stats.Round2(stats.Median(g.durations)),
		DurationSpread:        stats.Round2(posterior.Sigma),
		UserCount:             len(g.users),
		SessionCount:          len(g.durations),
		Confidence:            stats.Round2(posterior.Confidence),
		PeakHours:             g.hours,
		WeekTrendPercent:      stats.Round2(trend.Compute(g.weekCur, g.weekPrev)),
		MonthTrendPercent:     stats.Round2(trend.Compute(g.monthCur, g.monthPrev)),
		UpdatedAt:             now,
	}, nil
}
