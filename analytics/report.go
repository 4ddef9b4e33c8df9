package analytics

import (
	"fmt"
	"sort"
	"time"

	"dwellmetrics/api/models"
)

// TimelineKey returns the activity timeline key for an hour of the day.
func TimelineKey(hour int) string {
	return fmt.Sprintf("%d:00", hour)
}

// report shapes the merged accumulators into the composite payload.
func (t *tally) report(p Policy, now time.Time) models.Report {
	topN := p.topN()

	r := models.Report{
		Stats: t.counts,
		Analytics: models.PathAnalytics{
			PathFrequency:   seenCounts(t.visits),
			ClicksByPath:    seenCounts(t.clicks),
			MostVisitedPath: mostSeen(t.visits),
			MostClickedPath: mostSeen(t.clicks),
		},
		ActivityTimeline:    make(map[string]int64, 24),
		RecentClickActivity: make([]models.ClickActivity, 0, len(t.recent)),
		ClickHeatmap:        heatmapCells(t.heatmap),
		PathChangeStats: models.PathChangeStats{
			TotalPathChanges:  t.counts.PathChanges,
			PathTransitions:   copyCounts(t.transitions),
			MostFrequentPaths: rankCounts(t.destinations, 0),
		},
		TimeMetrics: models.TimeMetrics{
			TotalSessions:   t.sessions,
			TotalPageViews:  t.pageAccepted,
			TimeByPage:      make(map[string]float64, len(t.pageTotal)),
			TotalTimeByPage: copyCounts(t.pageTotal),
		},
		Diagnostics: models.Diagnostics{
			PageIntervalsAccepted: t.pageAccepted,
			PageIntervalsRejected: t.pageRejected,
			SessionsAccepted:      t.sessionsAccepted,
			SessionsRejected:      t.sessionsRejected,
		},
	}
	r.Stats.UniqueSessions = t.sessions
	r.Stats.UniqueURLs = int64(len(t.urls))

	for h, n := range t.timeline {
		r.ActivityTimeline[TimelineKey(h)] = n
	}

	for _, e := range t.recent {
		activity := models.ClickActivity{
			Timestamp:  e.Timestamp,
			URL:        e.Page(),
			ElementTag: models.UnknownPage,
		}
		if d, ok := e.Click(); ok {
			if d.Element.Tag != "" {
				activity.ElementTag = d.Element.Tag
			}
			activity.ElementID = d.Element.ID
			if d.Position != nil {
				x, y := d.Position.X, d.Position.Y
				activity.X, activity.Y = &x, &y
			}
		}
		r.RecentClickActivity = append(r.RecentClickActivity, activity)
	}

	if t.pageAccepted > 0 {
		r.TimeMetrics.AverageTimeOnPage = float64(t.pageMsSum) / float64(t.pageAccepted)
	}
	if t.sessionsAccepted > 0 {
		r.TimeMetrics.AverageTimeOnSite = float64(t.sessionMsSum) / float64(t.sessionsAccepted)
	}
	for page, total := range t.pageTotal {
		r.TimeMetrics.TimeByPage[page] = float64(total) / float64(t.pageCount[page])
	}

	months := t.monthLabels(now.In(p.location()).Year())
	r.ChartData = models.ChartData{
		TopPagesByTime: rankDurations(t.pageTotal, topN),
		MonthlyAvgTime: t.monthlyAverages(months),
		TopUsers:       rankDurations(t.userTotals, topN),
		MonthOverMonth: t.monthOverMonth(months, topN),
	}
	return r
}

func seenCounts(m map[string]*firstSeen) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, c := range m {
		out[k] = c.count
	}
	return out
}

// mostSeen picks the key with the highest count. Ties go to the key seen
// earliest, then to the lexically smaller key.
func mostSeen(m map[string]*firstSeen) string {
	best := ""
	var bestSeen *firstSeen
	for key, c := range m {
		switch {
		case bestSeen == nil,
			c.count > bestSeen.count,
			c.count == bestSeen.count && c.first.Before(bestSeen.first),
			c.count == bestSeen.count && c.first.Equal(bestSeen.first) && key < best:
			best, bestSeen = key, c
		}
	}
	return best
}

func copyCounts(m map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// rankCounts sorts counts descending, keys ascending on ties. limit <= 0
// keeps every entry.
func rankCounts(m map[string]int64, limit int) []models.RankedCount {
	out := make([]models.RankedCount, 0, len(m))
	for k, v := range m {
		out = append(out, models.RankedCount{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func rankDurations(m map[string]int64, limit int) []models.RankedDuration {
	ranked := rankCounts(m, limit)
	out := make([]models.RankedDuration, len(ranked))
	for i, rc := range ranked {
		out[i] = models.RankedDuration{Key: rc.Key, TotalMs: rc.Count}
	}
	return out
}

func heatmapCells(m map[models.Position]int64) []models.HeatmapCell {
	cells := make([]models.HeatmapCell, 0, len(m))
	for pos, n := range m {
		cells = append(cells, models.HeatmapCell{X: pos.X, Y: pos.Y, Count: n})
	}
	sort.Slice(cells, func(i, j int) bool {
		a, b := cells[i], cells[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.X != b.X {
			return a.X < b.X
		}
		return a.Y < b.Y
	})
	return cells
}
