package models

import "time"

// EventFilter narrows an event fetch. Zero values mean "no constraint";
// the time window is half-open: Start <= timestamp < End.
type EventFilter struct {
	UserID string
	Path   string
	Start  time.Time
	End    time.Time
}

// Matches reports whether e satisfies the filter.
func (f EventFilter) Matches(e TrackingEvent) bool {
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.Path != "" && e.URL != f.Path {
		return false
	}
	if !f.Start.IsZero() && e.Timestamp.Before(f.Start) {
		return false
	}
	if !f.End.IsZero() && !e.Timestamp.Before(f.End) {
		return false
	}
	return true
}

// SessionSummary describes one stored session for listing.
type SessionSummary struct {
	SessionID   string    `json:"sessionId"`
	UserID      string    `json:"userId"`
	Start       time.Time `json:"sessionStart"`
	End         time.Time `json:"sessionEnd"`
	ActionCount uint64    `json:"actionCount"`
	ActionTypes []string  `json:"actionTypes"`
}
