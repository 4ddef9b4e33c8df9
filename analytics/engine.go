package analytics

import (
	"context"
	"runtime"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"dwellmetrics/api/models"
)

// Engine computes reports from event snapshots. It holds no per-query
// state and is safe for concurrent use.
type Engine struct {
	policy  Policy
	workers int
}

// NewEngine creates an engine that reconstructs up to workers sessions in
// parallel. workers <= 0 uses the number of CPUs.
func NewEngine(policy Policy, workers int) *Engine {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Engine{policy: policy, workers: workers}
}

// Policy returns the engine's policy.
func (en *Engine) Policy() Policy { return en.policy }

// WithLocation returns an engine bucketing hours and months in loc.
func (en *Engine) WithLocation(loc *time.Location) *Engine {
	if loc == nil {
		return en
	}
	p := en.policy
	p.Location = loc
	return &Engine{policy: p, workers: en.workers}
}

// Compute groups events into sessions, reconstructs dwell time and folds
// every statistic in one pass. now only selects the canonical year of the
// monthly series. events is never modified.
func (en *Engine) Compute(ctx context.Context, events []models.TrackingEvent, now time.Time) (models.Report, error) {
	part := GroupSessions(events)
	total := newTally()
	recentLimit := en.policy.recentClicks()

	var mu sync.Mutex
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(en.workers)

	for _, id := range part.IDs() {
		session := part.Sessions[id]
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := foldSession(session, en.policy)

			mu.Lock()
			total.merge(t, recentLimit)
			mu.Unlock()
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return models.Report{}, err
	}

	report := total.report(en.policy, now)
	report.Diagnostics.EventsConsidered = int64(len(events))
	report.Diagnostics.DroppedMalformed = part.Dropped
	report.Diagnostics.IgnoredUnknownType = part.Ignored
	return report, nil
}
