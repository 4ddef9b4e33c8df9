package analytics

import (
	"sort"
	"time"

	"dwellmetrics/api/models"
)

const monthLayout = "2006-01"

// firstSeen counts occurrences of a key and remembers when it first appeared.
type firstSeen struct {
	count int64
	first time.Time
}

func bump(m map[string]*firstSeen, key string, at time.Time) {
	c, ok := m[key]
	if !ok {
		m[key] = &firstSeen{count: 1, first: at}
		return
	}
	c.count++
	if at.Before(c.first) {
		c.first = at
	}
}

func mergeSeen(dst, src map[string]*firstSeen) {
	for key, c := range src {
		d, ok := dst[key]
		if !ok {
			dst[key] = &firstSeen{count: c.count, first: c.first}
			continue
		}
		d.count += c.count
		if c.first.Before(d.first) {
			d.first = c.first
		}
	}
}

// tally is the set of accumulators updated in one pass over a session.
// Every field merges with a commutative, associative operation.
type tally struct {
	counts   models.EventStats
	sessions int64
	urls     map[string]struct{}

	visits       map[string]*firstSeen
	clicks       map[string]*firstSeen
	timeline     [24]int64
	heatmap      map[models.Position]int64
	recent       []models.TrackingEvent
	transitions  map[string]int64
	destinations map[string]int64

	pageTotal    map[string]int64
	pageCount    map[string]int64
	pageMsSum    int64
	pageAccepted int64
	pageRejected int64

	sessionMsSum     int64
	sessionsAccepted int64
	sessionsRejected int64
	userTotals       map[string]int64
	userMonths       map[string]map[string]int64
	monthTotals      map[string]int64
	monthUsers       map[string]map[string]struct{}
}

func newTally() *tally {
	return &tally{
		urls:         make(map[string]struct{}),
		visits:       make(map[string]*firstSeen),
		clicks:       make(map[string]*firstSeen),
		heatmap:      make(map[models.Position]int64),
		transitions:  make(map[string]int64),
		destinations: make(map[string]int64),
		pageTotal:    make(map[string]int64),
		pageCount:    make(map[string]int64),
		userTotals:   make(map[string]int64),
		userMonths:   make(map[string]map[string]int64),
		monthTotals:  make(map[string]int64),
		monthUsers:   make(map[string]map[string]struct{}),
	}
}

// foldSession runs every accumulator over one session.
func foldSession(s *Session, p Policy) *tally {
	t := newTally()
	t.sessions = 1
	loc := p.location()

	for i := 0; i < s.Len(); i++ {
		t.observe(s.At(i), loc)
	}
	t.recent = newestClicks(t.recent, p.recentClicks())

	intervals, counts := ReconstructDwell(s, p)
	for _, iv := range intervals {
		t.pageTotal[iv.Page] += iv.DurationMs
		t.pageCount[iv.Page]++
		t.pageMsSum += iv.DurationMs
	}
	t.pageAccepted = counts.Accepted
	t.pageRejected = counts.Rejected

	ms, ok := SessionDwell(s, p)
	if !ok {
		t.sessionsRejected = 1
		return t
	}
	month := s.Start().In(loc).Format(monthLayout)
	t.sessionsAccepted = 1
	t.sessionMsSum = ms
	t.userTotals[s.UserID] = ms
	t.monthTotals[month] = ms
	t.userMonths[s.UserID] = map[string]int64{month: ms}
	return t
}

func (t *tally) observe(e models.TrackingEvent, loc *time.Location) {
	t.counts.TotalActions++
	if e.URL != "" {
		t.urls[e.URL] = struct{}{}
	}

	month := e.Timestamp.In(loc).Format(monthLayout)
	users, ok := t.monthUsers[month]
	if !ok {
		users = make(map[string]struct{})
		t.monthUsers[month] = users
	}
	users[e.UserID] = struct{}{}

	switch e.Type {
	case models.ActionPageView:
		t.counts.PageViews++
		bump(t.visits, e.Page(), e.Timestamp)
	case models.ActionPathChange:
		t.counts.PageViews++
		t.counts.PathChanges++
		bump(t.visits, e.Page(), e.Timestamp)
		from, to := models.UnknownPage, models.UnknownPage
		if d, ok := e.PathChange(); ok {
			if d.From != "" {
				from = d.From
			}
			if d.To != "" {
				to = d.To
			}
		}
		t.transitions[from+" -> "+to]++
		t.destinations[to]++
	case models.ActionClick:
		t.counts.Clicks++
		bump(t.clicks, e.Page(), e.Timestamp)
		t.timeline[e.Timestamp.In(loc).Hour()]++
		if d, ok := e.Click(); ok && d.Position != nil {
			t.heatmap[*d.Position]++
		}
		t.recent = append(t.recent, e)
	case models.ActionMouseMove:
		t.counts.MouseMovements++
	case models.ActionScroll:
		t.counts.Scrolls++
	case models.ActionKeypress:
		t.counts.Keypresses++
	case models.ActionVisibilityChange:
		t.counts.VisibilityChanges++
	}
}

// merge folds o into t. o must not be used afterwards.
func (t *tally) merge(o *tally, recentLimit int) {
	t.counts.TotalActions += o.counts.TotalActions
	t.counts.PageViews += o.counts.PageViews
	t.counts.Clicks += o.counts.Clicks
	t.counts.MouseMovements += o.counts.MouseMovements
	t.counts.Scrolls += o.counts.Scrolls
	t.counts.Keypresses += o.counts.Keypresses
	t.counts.VisibilityChanges += o.counts.VisibilityChanges
	t.counts.PathChanges += o.counts.PathChanges
	t.sessions += o.sessions

	for u := range o.urls {
		t.urls[u] = struct{}{}
	}
	mergeSeen(t.visits, o.visits)
	mergeSeen(t.clicks, o.clicks)
	for h := range t.timeline {
		t.timeline[h] += o.timeline[h]
	}
	for pos, n := range o.heatmap {
		t.heatmap[pos] += n
	}
	t.recent = newestClicks(append(t.recent, o.recent...), recentLimit)
	addCounts(t.transitions, o.transitions)
	addCounts(t.destinations, o.destinations)

	addCounts(t.pageTotal, o.pageTotal)
	addCounts(t.pageCount, o.pageCount)
	t.pageMsSum += o.pageMsSum
	t.pageAccepted += o.pageAccepted
	t.pageRejected += o.pageRejected

	t.sessionMsSum += o.sessionMsSum
	t.sessionsAccepted += o.sessionsAccepted
	t.sessionsRejected += o.sessionsRejected
	addCounts(t.userTotals, o.userTotals)
	addCounts(t.monthTotals, o.monthTotals)
	for user, months := range o.userMonths {
		dst, ok := t.userMonths[user]
		if !ok {
			dst = make(map[string]int64, len(months))
			t.userMonths[user] = dst
		}
		addCounts(dst, months)
	}
	for month, users := range o.monthUsers {
		dst, ok := t.monthUsers[month]
		if !ok {
			dst = make(map[string]struct{}, len(users))
			t.monthUsers[month] = dst
		}
		for u := range users {
			dst[u] = struct{}{}
		}
	}
}

func addCounts(dst, src map[string]int64) {
	for k, v := range src {
		dst[k] += v
	}
}

// newestClicks sorts clicks newest first and keeps at most limit of them.
func newestClicks(clicks []models.TrackingEvent, limit int) []models.TrackingEvent {
	sort.SliceStable(clicks, func(i, j int) bool {
		a, b := clicks[i], clicks[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.After(b.Timestamp)
		}
		return eventLess(a, b)
	})
	if len(clicks) > limit {
		clicks = clicks[:limit]
	}
	return clicks
}
