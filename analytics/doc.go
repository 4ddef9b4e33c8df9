// Package analytics reconstructs sessions and page dwell time from stored
// client interaction events and folds them into reporting statistics.
//
// # Pipeline
//
// A report is computed in four stages over an immutable event snapshot:
//
//	events -> GroupSessions -> ReconstructDwell / SessionDwell -> fold -> models.Report
//
// GroupSessions partitions events by session id into time-ordered copies,
// dropping events without a session id or timestamp and events whose action
// type is not part of the known tag set.
//
// ReconstructDwell walks the boundary events of one session (page views,
// path changes and visibility changes by default) and attributes the gap
// between each adjacent pair to the page of the earlier event. The last
// boundary event is measured against the last event of any type. Gaps
// outside the page band (1s to 2h) are discarded, never clamped.
//
// SessionDwell measures first-to-last activity and accepts it within the
// session band (1s to 8h).
//
// # Concurrency
//
// Engine reconstructs sessions on a bounded errgroup pool. Each worker folds
// one session into a private tally; tallies are merged with commutative
// sums, minimums and deterministic top-K selection, so the report does not
// depend on event order or on worker scheduling.
//
// # Usage
//
//	svc := analytics.NewService(eventStore, analytics.NewEngine(analytics.DefaultPolicy(), 8))
//	report, err := svc.Report(ctx, analytics.Query{UserID: "42", DateRange: "7d"})
//	if errors.Is(err, analytics.ErrDataUnavailable) {
//		// the store could not be read; do not render "no activity"
//	}
package analytics
