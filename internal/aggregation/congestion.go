package aggregation

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jengzang/commute-backend-go/internal/estimator"
	"github.com/jengzang/commute-backend-go/internal/models"
	"github.com/jengzang/commute-backend-go/internal/segment"
	"github.com/jengzang/commute-backend-go/internal/stats"
	"github.com/jengzang/commute-backend-go/internal/timeslot"
)

// ObservationSource supplies raw checkpoint observations from completed
// trip sessions.
type ObservationSource interface {
	// CompletedObservations returns every observation from completed sessions.
	CompletedObservations(ctx context.Context) ([]models.CheckpointObservation, error)

	// SessionObservations returns the observations of a single session.
	SessionObservations(ctx context.Context, sessionID string) ([]models.CheckpointObservation, error)
}

// CongestionStore persists segment congestion aggregates.
type CongestionStore interface {
	// ReplaceAll atomically swaps the entire aggregate set.
	ReplaceAll(ctx context.Context, aggregates []models.SegmentCongestion) error

	// GetByKey returns the aggregate for a (segment key, time slot), or
	// nil when none exists.
	GetByKey(ctx context.Context, segmentKey, slot string) (*models.SegmentCongestion, error)

	// Upsert inserts or overwrites a single aggregate by its natural key.
	Upsert(ctx context.Context, aggregate *models.SegmentCongestion) error
}

// CongestionPipeline recomputes per-(segment key, time slot) congestion
// aggregates from raw checkpoint observations.
type CongestionPipeline struct {
	source ObservationSource
	store  CongestionStore

	// Full runs replace the whole aggregate set and must not overlap.
	runMu sync.Mutex

	// Incremental updates on the same key are serialized; different keys
	// may proceed concurrently.
	keys *keyedMutex
}

// NewCongestionPipeline creates a new congestion pipeline.
func NewCongestionPipeline(source ObservationSource, store CongestionStore) *CongestionPipeline {
	return &CongestionPipeline{
		source: source,
		store:  store,
		keys:   newKeyedMutex(),
	}
}

// congestionGroup accumulates the observations of one (segment key, time
// slot) group. The first observation seen supplies the display metadata.
type congestionGroup struct {
	key   string
	slot  timeslot.Slot
	first models.CheckpointObservation

	waits  []float64
	delays []float64
}

// RunFull recomputes every congestion aggregate from scratch and replaces
// the persisted set. A run that finds zero observations still clears
// existing data rather than leaving stale rows. now is passed explicitly
// so the run stays a pure function of (observations, reference time).
func (p *CongestionPipeline) RunFull(ctx context.Context, now time.Time) (*RunResult, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	log.Printf("[CongestionPipeline] Starting full run")

	observations, err := p.source.CompletedObservations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch observations: %w", err)
	}

	groups := buildCongestionGroups(observations)

	result := &RunResult{}
	aggregates := make([]models.SegmentCongestion, 0, len(groups))
	for _, g := range groups {
		agg, err := computeCongestion(g, now)
		if err != nil {
			log.Printf("[CongestionPipeline] Skipping group %s/%s: %v", g.key, g.slot, err)
			result.Skipped++
			continue
		}
		aggregates = append(aggregates, *agg)
		result.Processed++
	}

	if err := p.store.ReplaceAll(ctx, aggregates); err != nil {
		return nil, fmt.Errorf("failed to replace aggregates: %w", err)
	}

	log.Printf("[CongestionPipeline] Full run completed: %d segments, %d skipped",
		result.Processed, result.Skipped)
	return result, nil
}

// UpdateSession incrementally refreshes the aggregates touched by one
// session. A touched key with an existing aggregate is fully recomputed
// from all observations currently matching it, preserving the row
// identity; a new key is created from just the session's observations.
// Recompute-from-scratch keeps incremental results bit-identical to a
// full run at the cost of re-reading more data.
func (p *CongestionPipeline) UpdateSession(ctx context.Context, sessionID string, now time.Time) (*RunResult, error) {
	observations, err := p.source.SessionObservations(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch session observations: %w", err)
	}

	groups := buildCongestionGroups(observations)
	if len(groups) == 0 {
		return &RunResult{}, nil
	}

	result := &RunResult{}
	for _, g := range groups {
		if err := p.updateGroup(ctx, g, now); err != nil {
			log.Printf("[CongestionPipeline] Skipping group %s/%s: %v", g.key, g.slot, err)
			result.Skipped++
			continue
		}
		result.Processed++
	}

	return result, nil
}

func (p *CongestionPipeline) updateGroup(ctx context.Context, g *congestionGroup, now time.Time) error {
	unlock := p.keys.lock(g.key + "|" + string(g.slot))
	defer unlock()

	existing, err := p.store.GetByKey(ctx, g.key, string(g.slot))
	if err != nil {
		return fmt.Errorf("failed to load existing aggregate: %w", err)
	}

	target := g
	if existing != nil {
		// Re-derive the group from all observations currently matching the
		// key, not just the new session's.
		all, err := p.source.CompletedObservations(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch observations: %w", err)
		}

		target = nil
		for _, match := range buildCongestionGroups(all) {
			if match.key == g.key && match.slot == g.slot {
				target = match
				break
			}
		}
		if target == nil {
			// The session's rows are not visible yet; fall back to them.
			target = g
		}
	}

	agg, err := computeCongestion(target, now)
	if err != nil {
		return err
	}
	if existing != nil {
		agg.ID = existing.ID
	}

	if err := p.store.Upsert(ctx, agg); err != nil {
		return fmt.Errorf("failed to upsert aggregate: %w", err)
	}
	return nil
}

// buildCongestionGroups groups observations by (segment key, time slot)
// in first-seen order.
func buildCongestionGroups(observations []models.CheckpointObservation) []*congestionGroup {
	index := make(map[string]*congestionGroup)
	var groups []*congestionGroup

	for _, obs := range observations {
		key := segment.Key(segment.Checkpoint{
			Name:            obs.CheckpointName,
			CheckpointType:  obs.CheckpointType,
			LineInfo:        obs.LineInfo,
			LinkedStationID: obs.LinkedStationID,
			LinkedBusStopID: obs.LinkedBusStopID,
		})
		slot := timeslot.Classify(obs.SessionStartedAt)

		mapKey := key + "|" + string(slot)
		g, ok := index[mapKey]
		if !ok {
			g = &congestionGroup{key: key, slot: slot, first: obs}
			index[mapKey] = g
			groups = append(groups, g)
		}

		g.waits = append(g.waits, obs.WaitMinutes)
		g.delays = append(g.delays, obs.DelayMinutes)
	}

	return groups
}

// computeCongestion turns one group into its aggregate record. Delay uses
// the Bayesian estimator; wait is a plain arithmetic mean. All emitted
// numerics are rounded to two decimals.
func computeCongestion(g *congestionGroup, now time.Time) (*models.SegmentCongestion, error) {
	if g.key == "" || g.key == "name_" {
		return nil, fmt.Errorf("unusable segment key for checkpoint %q", g.first.CheckpointName)
	}

	posterior := estimator.Update(estimator.CongestionDelayPrior, g.delays)

	return &models.SegmentCongestion{
		SegmentKey:      g.key,
		DisplayName:     g.first.CheckpointName,
		CheckpointType:  g.first.CheckpointType,
		LineInfo:        g.first.LineInfo,
		LinkedStationID: g.first.LinkedStationID,
		LinkedBusStopID: g.first.LinkedBusStopID,
		TimeSlot:        string(g.slot),
		AvgWaitMinutes:  stats.Round2(stats.Mean(g.waits)),
		AvgDelayMinutes: stats.Round2(posterior.Mu),
		DelaySpread:     stats.Round2(posterior.Sigma),
		SampleCount:     posterior.SampleCount,
		Level:           models.LevelForDelay(posterior.Mu),
		Confidence:      stats.Round2(posterior.Confidence),
		UpdatedAt:       now,
	}, nil
}
