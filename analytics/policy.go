package analytics

import (
	"time"

	"dwellmetrics/api/models"
)

const (
	// Page-level plausibility band.
	DefaultPageMinMs int64 = 1_000
	DefaultPageMaxMs int64 = 2 * 60 * 60 * 1_000

	// Session-level plausibility band.
	DefaultSessionMinMs int64 = 1_000
	DefaultSessionMaxMs int64 = 8 * 60 * 60 * 1_000

	DefaultTopN         = 5
	DefaultRecentClicks = 10
)

// DefaultBoundaryTypes are the action types that mark a page or focus transition.
var DefaultBoundaryTypes = []models.ActionType{
	models.ActionPageView,
	models.ActionPathChange,
	models.ActionVisibilityChange,
}

// Policy holds the tunable constants of reconstruction and aggregation.
type Policy struct {
	BoundaryTypes []models.ActionType

	PageMinMs    int64
	PageMaxMs    int64
	SessionMinMs int64
	SessionMaxMs int64

	// TopN bounds the ranked chart series (pages, users).
	TopN int
	// RecentClicks bounds the recent click activity list.
	RecentClicks int

	// Location is used for hour-of-day and calendar-month buckets.
	Location *time.Location
}

// DefaultPolicy returns the standard policy in the process-local time zone.
func DefaultPolicy() Policy {
	return Policy{
		BoundaryTypes: append([]models.ActionType(nil), DefaultBoundaryTypes...),
		PageMinMs:     DefaultPageMinMs,
		PageMaxMs:     DefaultPageMaxMs,
		SessionMinMs:  DefaultSessionMinMs,
		SessionMaxMs:  DefaultSessionMaxMs,
		TopN:          DefaultTopN,
		RecentClicks:  DefaultRecentClicks,
		Location:      time.Local,
	}
}

func (p Policy) isBoundary(t models.ActionType) bool {
	for _, b := range p.BoundaryTypes {
		if b == t {
			return true
		}
	}
	return false
}

func (p Policy) acceptPage(ms int64) bool {
	return ms >= p.PageMinMs && ms <= p.PageMaxMs
}

func (p Policy) acceptSession(ms int64) bool {
	return ms >= p.SessionMinMs && ms <= p.SessionMaxMs
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}

func (p Policy) topN() int {
	if p.TopN <= 0 {
		return DefaultTopN
	}
	return p.TopN
}

func (p Policy) recentClicks() int {
	if p.RecentClicks <= 0 {
		return DefaultRecentClicks
	}
	return p.RecentClicks
}
