package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"dwellmetrics/api/logging"
	"dwellmetrics/api/models"
)

var (
	// ErrDataUnavailable means the event store could not be read. It is
	// never returned for an empty result.
	ErrDataUnavailable = errors.New("analytics data unavailable")
	// ErrInvalidRange means the query's date range could not be resolved.
	ErrInvalidRange = errors.New("invalid date range")
)

// Query outcomes reported to a Recorder.
const (
	OutcomeOK          = "ok"
	OutcomeInvalid     = "invalid"
	OutcomeUnavailable = "unavailable"
)

// DefaultQueryTimeout bounds the event fetch when no timeout is configured.
const DefaultQueryTimeout = 10 * time.Second

// EventSource fetches stored events. Result order is not significant.
type EventSource interface {
	FetchEvents(ctx context.Context, filter models.EventFilter) ([]models.TrackingEvent, error)
}

// Recorder observes query outcomes and filtering counters.
type Recorder interface {
	RecordQuery(outcome string, elapsed time.Duration)
	RecordDiagnostics(d models.Diagnostics)
}

type nopRecorder struct{}

func (nopRecorder) RecordQuery(string, time.Duration)  {}
func (nopRecorder) RecordDiagnostics(models.Diagnostics) {}

// Service resolves queries, fetches events and computes reports.
type Service struct {
	source   EventSource
	engine   *Engine
	timeout  time.Duration
	now      func() time.Time
	recorder Recorder
	logger   logrus.FieldLogger
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each event fetch.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithClock replaces the wall clock used to resolve date ranges.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRecorder reports query outcomes and filtering counters to r.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the service logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a query façade over source.
func NewService(source EventSource, engine *Engine, opts ...Option) *Service {
	s := &Service{
		source:   source,
		engine:   engine,
		timeout:  DefaultQueryTimeout,
		now:      time.Now,
		recorder: nopRecorder{},
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Report computes the composite payload for q. An empty store result is a
// zero report; a failed or timed out fetch is ErrDataUnavailable.
func (s *Service) Report(ctx context.Context, q Query) (*models.Report, error) {
	started := time.Now()

	engine := s.engine.WithLocation(q.Location)
	now := s.now().In(engine.Policy().location())

	window, err := ResolveWindow(q, now)
	if err != nil {
		s.recorder.RecordQuery(OutcomeInvalid, time.Since(started))
		return nil, err
	}

	filter := models.EventFilter{
		UserID: q.UserID,
		Path:   q.PathFilter(),
		Start:  window.Start,
		End:    window.End,
	}
	log := s.logger.WithFields(logrus.Fields{
		"user_id":    filter.UserID,
		"path":       filter.Path,
		"date_range": q.RangeLabel(),
	})

	events, err := s.fetch(ctx, filter)
	if err != nil {
		log.WithError(err).Error("Failed to fetch tracking events")
		s.recorder.RecordQuery(OutcomeUnavailable, time.Since(started))
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}

	report, err := engine.Compute(ctx, events, now)
	if err != nil {
		log.WithError(err).Warn("Report computation cancelled")
		s.recorder.RecordQuery(OutcomeUnavailable, time.Since(started))
		return nil, fmt.Errorf("%w: %w", ErrDataUnavailable, err)
	}

	report.Filters = models.ReportFilters{
		UserID:    filter.UserID,
		Path:      filter.Path,
		DateRange: q.RangeLabel(),
	}
	if !window.Start.IsZero() {
		start := window.Start
		report.Filters.Start = &start
	}
	if !window.End.IsZero() {
		end := window.End
		report.Filters.End = &end
	}

	s.recorder.RecordDiagnostics(report.Diagnostics)
	s.recorder.RecordQuery(OutcomeOK, time.Since(started))
	log.WithFields(logrus.Fields{
		"events":   len(events),
		"sessions": report.Stats.UniqueSessions,
	}).Debug("Computed tracking report")
	return &report, nil
}

func (s *Service) fetch(ctx context.Context, filter models.EventFilter) ([]models.TrackingEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	events, err := s.source.FetchEvents(ctx, filter)
	if err != nil {
		return nil, err
	}
	// A source that ignores its context must not hand back a partial read.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
