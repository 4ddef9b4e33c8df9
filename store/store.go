package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"dwellmetrics/api/models"
)

// Session listing limits.
const (
	DefaultSessionLimit = 100
	MaxSessionLimit     = 1000
)

// EventStore persists tracking events and answers the reads the API needs.
// FetchEvents satisfies analytics.EventSource.
type EventStore interface {
	InsertEvents(ctx context.Context, events []models.TrackingEvent) error
	FetchEvents(ctx context.Context, filter models.EventFilter) ([]models.TrackingEvent, error)
	ListPaths(ctx context.Context, userID string) ([]string, error)
	ListSessions(ctx context.Context, userID string, limit int) ([]models.SessionSummary, error)
}

const trackingTable = "tracking_actions"

// eventColumns is the column order shared by inserts, selects and scans.
var eventColumns = []string{
	"event_id", "user_id", "session_id", "action_type", "url", "timestamp",
	"title", "referrer", "position_x", "position_y",
	"element_tag", "element_id", "element_class", "element_text",
	"scroll_x", "scroll_y", "key_pressed", "key_code",
	"ctrl_key", "shift_key", "alt_key", "meta_key",
	"hidden", "path_from", "path_to",
}

func recordValues(r models.EventRecord) []any {
	return []any{
		r.EventID, r.UserID, r.SessionID, r.ActionType, r.URL, r.Timestamp,
		r.Title, r.Referrer, r.PositionX, r.PositionY,
		r.ElementTag, r.ElementID, r.ElementClass, r.ElementText,
		r.ScrollX, r.ScrollY, r.KeyPressed, r.KeyCode,
		r.CtrlKey, r.ShiftKey, r.AltKey, r.MetaKey,
		r.Hidden, r.PathFrom, r.PathTo,
	}
}

func recordTargets(r *models.EventRecord) []any {
	return []any{
		&r.EventID, &r.UserID, &r.SessionID, &r.ActionType, &r.URL, &r.Timestamp,
		&r.Title, &r.Referrer, &r.PositionX, &r.PositionY,
		&r.ElementTag, &r.ElementID, &r.ElementClass, &r.ElementText,
		&r.ScrollX, &r.ScrollY, &r.KeyPressed, &r.KeyCode,
		&r.CtrlKey, &r.ShiftKey, &r.AltKey, &r.MetaKey,
		&r.Hidden, &r.PathFrom, &r.PathTo,
	}
}

// placeholder renders the n-th (1-based) bind parameter for a dialect.
type placeholder func(n int) string

func questionMark(int) string { return "?" }

func dollar(n int) string { return fmt.Sprintf("$%d", n) }

// whereClause renders filter as a WHERE clause, empty when the filter is
// unconstrained. The time window is half-open.
func whereClause(f models.EventFilter, ph placeholder) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, ph(len(args))))
	}

	if f.UserID != "" {
		add("user_id = %s", f.UserID)
	}
	if f.Path != "" {
		add("url = %s", f.Path)
	}
	if !f.Start.IsZero() {
		add("timestamp >= %s", f.Start)
	}
	if !f.End.IsZero() {
		add("timestamp < %s", f.End)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func selectEventsQuery(f models.EventFilter, ph placeholder) (string, []any) {
	where, args := whereClause(f, ph)
	return fmt.Sprintf("SELECT %s FROM %s%s", strings.Join(eventColumns, ", "), trackingTable, where), args
}

// clampLimit applies the session listing default and cap.
func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultSessionLimit
	case limit > MaxSessionLimit:
		return MaxSessionLimit
	default:
		return limit
	}
}

func sortedTypes(types []string) []string {
	out := append([]string(nil), types...)
	sort.Strings(out)
	return out
}
