package analytics

import (
	"fmt"
	"time"
)

// Date range presets.
const (
	RangeToday = "today"
	Range24h   = "24h"
	Range7d    = "7d"
	Range30d   = "30d"
	RangeAll   = "all"
	// RangeCustom labels queries carrying an explicit start or end.
	RangeCustom = "custom"
)

// AllPaths is the path filter value meaning "no path filter".
const AllPaths = "all"

// Query selects the events a report covers. Start and End, when set, take
// precedence over DateRange. Location defaults to the engine's policy.
type Query struct {
	UserID    string
	Path      string
	DateRange string
	Start     *time.Time
	End       *time.Time
	Location  *time.Location
}

// Window is a half-open time range; zero bounds are open.
type Window struct {
	Start time.Time
	End   time.Time
}

// RangeLabel names the range the query resolves with.
func (q Query) RangeLabel() string {
	if q.Start != nil || q.End != nil {
		return RangeCustom
	}
	if q.DateRange == "" {
		return RangeToday
	}
	return q.DateRange
}

// PathFilter returns the path to filter by, or "" for every path.
func (q Query) PathFilter() string {
	if q.Path == AllPaths {
		return ""
	}
	return q.Path
}

// ResolveWindow turns the query's range into concrete bounds relative to
// now. "today" is the calendar day of now in now's location.
func ResolveWindow(q Query, now time.Time) (Window, error) {
	if q.Start != nil || q.End != nil {
		var w Window
		if q.Start != nil {
			w.Start = *q.Start
		}
		if q.End != nil {
			w.End = *q.End
		}
		if q.Start != nil && q.End != nil && !w.End.After(w.Start) {
			return Window{}, fmt.Errorf("%w: end %s is not after start %s",
				ErrInvalidRange, w.End.Format(time.RFC3339), w.Start.Format(time.RFC3339))
		}
		return w, nil
	}

	switch q.RangeLabel() {
	case RangeToday:
		y, m, d := now.Date()
		start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
		return Window{Start: start, End: start.AddDate(0, 0, 1)}, nil
	case Range24h:
		return Window{Start: now.Add(-24 * time.Hour), End: now}, nil
	case Range7d:
		return Window{Start: now.Add(-7 * 24 * time.Hour), End: now}, nil
	case Range30d:
		return Window{Start: now.Add(-30 * 24 * time.Hour), End: now}, nil
	case RangeAll:
		return Window{}, nil
	default:
		return Window{}, fmt.Errorf("%w: unknown date range %q", ErrInvalidRange, q.DateRange)
	}
}
