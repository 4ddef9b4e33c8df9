package analytics

import (
	"cmp"
	"sort"
	"time"

	"dwellmetrics/api/models"
)

// Session is a time-ordered, read-only view of the events sharing one
// session id. The view owns its slice; callers never see the input array.
type Session struct {
	ID     string
	UserID string
	events []models.TrackingEvent
}

// Len returns the number of events in the session.
func (s *Session) Len() int { return len(s.events) }

// At returns the i-th event in timestamp order.
func (s *Session) At(i int) models.TrackingEvent { return s.events[i] }

// Events returns a copy of the ordered events.
func (s *Session) Events() []models.TrackingEvent {
	return append([]models.TrackingEvent(nil), s.events...)
}

// Start is the timestamp of the earliest event.
func (s *Session) Start() time.Time {
	if len(s.events) == 0 {
		return time.Time{}
	}
	return s.events[0].Timestamp
}

// End is the timestamp of the latest event.
func (s *Session) End() time.Time {
	if len(s.events) == 0 {
		return time.Time{}
	}
	return s.events[len(s.events)-1].Timestamp
}

// DurationMs is End - Start in milliseconds; zero for sessions with fewer
// than two events.
func (s *Session) DurationMs() int64 {
	if len(s.events) < 2 {
		return 0
	}
	return s.End().Sub(s.Start()).Milliseconds()
}

// Partition is the result of grouping an event collection by session.
type Partition struct {
	Sessions map[string]*Session
	// Dropped counts events without a session id or timestamp.
	Dropped int64
	// Ignored counts events with an action type outside the known tag set.
	Ignored int64
}

// IDs returns the session ids in ascending order.
func (p Partition) IDs() []string {
	ids := make([]string, 0, len(p.Sessions))
	for id := range p.Sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// GroupSessions partitions events by session id, each session sorted
// ascending by timestamp. The input slice is not modified.
func GroupSessions(events []models.TrackingEvent) Partition {
	p := Partition{Sessions: make(map[string]*Session)}

	for _, e := range events {
		if !e.Valid() {
			p.Dropped++
			continue
		}
		if !e.Type.Known() {
			p.Ignored++
			continue
		}
		s, ok := p.Sessions[e.SessionID]
		if !ok {
			s = &Session{ID: e.SessionID}
			p.Sessions[e.SessionID] = s
		}
		s.events = append(s.events, e)
	}

	for _, s := range p.Sessions {
		sort.SliceStable(s.events, func(i, j int) bool {
			return eventLess(s.events[i], s.events[j])
		})
		s.UserID = s.events[0].UserID
	}
	return p
}

// eventLess orders by timestamp, then by stable keys so equal timestamps
// sort the same way regardless of input order.
func eventLess(a, b models.TrackingEvent) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	if a.EventID != b.EventID {
		return a.EventID < b.EventID
	}
	if a.Type != b.Type {
		return a.Type < b.Type
	}
	if a.URL != b.URL {
		return a.URL < b.URL
	}
	if a.SessionID != b.SessionID {
		return a.SessionID < b.SessionID
	}
	if a.UserID != b.UserID {
		return a.UserID < b.UserID
	}
	return compareClicks(a, b) < 0
}

// compareClicks orders click details field by field so clicks without ids
// still sort deterministically. Missing positions sort first.
func compareClicks(a, b models.TrackingEvent) int {
	ca, _ := a.Click()
	cb, _ := b.Click()
	if c := comparePosition(ca.Position, cb.Position); c != 0 {
		return c
	}
	return cmp.Or(
		cmp.Compare(ca.Element.Tag, cb.Element.Tag),
		cmp.Compare(ca.Element.ID, cb.Element.ID),
		cmp.Compare(ca.Element.Class, cb.Element.Class),
		cmp.Compare(ca.Element.Text, cb.Element.Text),
	)
}

func comparePosition(a, b *models.Position) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	return cmp.Or(cmp.Compare(a.X, b.X), cmp.Compare(a.Y, b.Y))
}
