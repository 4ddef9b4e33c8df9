package analytics

import (
	"context"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwellmetrics/api/models"
)

var testNow = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func compute(t *testing.T, events []models.TrackingEvent) models.Report {
	t.Helper()
	r, err := NewEngine(testPolicy(), 4).Compute(context.Background(), events, testNow)
	require.NoError(t, err)
	return r
}

func TestCompute_Counts(t *testing.T) {
	r := compute(t, fixtureEvents())

	assert.Equal(t, models.EventStats{
		TotalActions:      11,
		PageViews:         4,
		Clicks:            3,
		MouseMovements:    1,
		Scrolls:           1,
		Keypresses:        1,
		VisibilityChanges: 1,
		PathChanges:       1,
		UniqueSessions:    3,
		UniqueURLs:        2,
	}, r.Stats)
	assert.Equal(t, map[string]int64{"/home": 2, "/docs": 2}, r.Analytics.PathFrequency)
	assert.Equal(t, map[string]int64{"/home": 1, "/docs": 2}, r.Analytics.ClicksByPath)
	assert.Equal(t, "/docs", r.Analytics.MostClickedPath)
}

func TestCompute_MostVisitedTieGoesToEarliestSeen(t *testing.T) {
	r := compute(t, fixtureEvents())

	// /home and /docs both have two visits; /home appears first.
	assert.Equal(t, "/home", r.Analytics.MostVisitedPath)
}

func TestCompute_TimeMetrics(t *testing.T) {
	r := compute(t, fixtureEvents())

	tm := r.TimeMetrics
	assert.Equal(t, int64(3), tm.TotalSessions)
	assert.Equal(t, int64(4), tm.TotalPageViews)
	assert.InDelta(t, 12000.0, tm.AverageTimeOnPage, 1e-9)
	assert.InDelta(t, 24000.0, tm.AverageTimeOnSite, 1e-9)
	assert.Equal(t, map[string]int64{"/home": 10000, "/docs": 38000}, tm.TotalTimeByPage)
	require.Len(t, tm.TimeByPage, 2)
	assert.InDelta(t, 10000.0, tm.TimeByPage["/home"], 1e-9)
	assert.InDelta(t, 38000.0/3, tm.TimeByPage["/docs"], 1e-9)

	assert.Equal(t, models.Diagnostics{
		EventsConsidered:      11,
		PageIntervalsAccepted: 4,
		SessionsAccepted:      2,
		SessionsRejected:      1,
	}, r.Diagnostics)
}

func TestCompute_TotalTimeMatchesAcceptedIntervals(t *testing.T) {
	events := fixtureEvents()
	part := GroupSessions(events)
	var want int64
	for _, s := range part.Sessions {
		intervals, _ := ReconstructDwell(s, testPolicy())
		for _, iv := range intervals {
			want += iv.DurationMs
		}
	}

	r := compute(t, events)

	var got int64
	for _, ms := range r.TimeMetrics.TotalTimeByPage {
		got += ms
	}
	assert.Equal(t, want, got)
}

func TestCompute_ActivityTimeline(t *testing.T) {
	r := compute(t, fixtureEvents())

	require.Len(t, r.ActivityTimeline, 24)
	var sum int64
	for h := 0; h < 24; h++ {
		n, ok := r.ActivityTimeline[TimelineKey(h)]
		require.True(t, ok, "missing hour %d", h)
		sum += n
	}
	assert.Equal(t, r.Stats.Clicks, sum)
	assert.Equal(t, int64(2), r.ActivityTimeline["9:00"])
	assert.Equal(t, int64(1), r.ActivityTimeline["10:00"])
}

func TestCompute_ActivityTimelineUsesPolicyLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	en := NewEngine(testPolicy(), 2).WithLocation(loc)

	r, err := en.Compute(context.Background(), fixtureEvents(), testNow)
	require.NoError(t, err)

	assert.Equal(t, int64(2), r.ActivityTimeline["11:00"])
	assert.Equal(t, int64(1), r.ActivityTimeline["12:00"])
}

func TestCompute_RecentClicksAndHeatmap(t *testing.T) {
	r := compute(t, fixtureEvents())

	require.Len(t, r.RecentClickActivity, 3)
	newest := r.RecentClickActivity[0]
	assert.Equal(t, testBase.Add(time.Hour+time.Second), newest.Timestamp)
	assert.Equal(t, models.UnknownPage, newest.ElementTag)
	oldest := r.RecentClickActivity[2]
	assert.Equal(t, "BUTTON", oldest.ElementTag)
	assert.Equal(t, "cta", oldest.ElementID)
	require.NotNil(t, oldest.X)
	assert.Equal(t, int32(10), *oldest.X)

	assert.Equal(t, []models.HeatmapCell{{X: 10, Y: 20, Count: 3}}, r.ClickHeatmap)
}

func TestCompute_RecentClicksAreBounded(t *testing.T) {
	var events []models.TrackingEvent
	for i := 0; i < 25; i++ {
		events = append(events, click("s", "u", "/a", int64(i)*1000, 1, 1, "A", ""))
	}

	r := compute(t, events)

	require.Len(t, r.RecentClickActivity, DefaultRecentClicks)
	assert.Equal(t, testBase.Add(24*time.Second), r.RecentClickActivity[0].Timestamp)
	for i := 1; i < len(r.RecentClickActivity); i++ {
		assert.True(t, r.RecentClickActivity[i-1].Timestamp.After(r.RecentClickActivity[i].Timestamp))
	}
}

func TestCompute_PathChangeStats(t *testing.T) {
	events := append(fixtureEvents(),
		pathChange("s4", "u3", "/docs", "/home", 3*hour),
		pathChange("s4", "u3", "", "", 3*hour+2000),
	)

	r := compute(t, events)

	pcs := r.PathChangeStats
	assert.Equal(t, int64(3), pcs.TotalPathChanges)
	assert.Equal(t, map[string]int64{
		"/home -> /docs":     1,
		"/docs -> /home":     1,
		"unknown -> unknown": 1,
	}, pcs.PathTransitions)
	assert.Equal(t, []models.RankedCount{
		{Key: "/docs", Count: 1},
		{Key: "/home", Count: 1},
		{Key: "unknown", Count: 1},
	}, pcs.MostFrequentPaths)
}

func TestCompute_ChartData(t *testing.T) {
	r := compute(t, fixtureEvents())

	cd := r.ChartData
	assert.Equal(t, []models.RankedDuration{
		{Key: "/docs", TotalMs: 38000},
		{Key: "/home", TotalMs: 10000},
	}, cd.TopPagesByTime)
	assert.Equal(t, []models.RankedDuration{
		{Key: "u1", TotalMs: 45000},
		{Key: "u2", TotalMs: 3000},
	}, cd.TopUsers)

	require.Len(t, cd.MonthlyAvgTime, 12)
	for _, p := range cd.MonthlyAvgTime {
		if p.Month == "2026-03" {
			// 48s of session time over two active users.
			assert.InDelta(t, 24000.0, p.AvgMs, 1e-9)
		} else {
			assert.Zero(t, p.AvgMs, p.Month)
		}
	}

	mom := cd.MonthOverMonth
	assert.Equal(t, CanonicalMonths(2026), mom.Months)
	require.Len(t, mom.Series, 2)
	assert.Equal(t, "u1", mom.Series[0].UserID)
	assert.Equal(t, int64(45000), mom.Series[0].ValuesMs[2])
	assert.Equal(t, int64(3000), mom.Series[1].ValuesMs[2])
}

func TestCompute_MonthsOutsideCurrentYearAreAppended(t *testing.T) {
	december := time.Date(2025, 12, 5, 10, 0, 0, 0, time.UTC)
	offset := december.Sub(testBase).Milliseconds()
	events := append(fixtureEvents(),
		ev("old", "u9", models.ActionPageView, "/home", offset),
		ev("old", "u9", models.ActionClick, "/home", offset+20000),
	)

	r := compute(t, events)

	months := r.ChartData.MonthOverMonth.Months
	require.Len(t, months, 13)
	assert.Equal(t, "2025-12", months[0])
	assert.Equal(t, "2026-12", months[12])
	assert.Equal(t, models.MonthlyPoint{Month: "2025-12", AvgMs: 20000}, r.ChartData.MonthlyAvgTime[0])
}

func TestCompute_TopNBoundsCharts(t *testing.T) {
	var events []models.TrackingEvent
	for i, user := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		sid := "s-" + user
		events = append(events,
			ev(sid, user, models.ActionPageView, "/p-"+user, 0),
			ev(sid, user, models.ActionClick, "/p-"+user, int64(i+2)*1000),
		)
	}

	r := compute(t, events)

	require.Len(t, r.ChartData.TopUsers, DefaultTopN)
	require.Len(t, r.ChartData.TopPagesByTime, DefaultTopN)
	require.Len(t, r.ChartData.MonthOverMonth.Series, DefaultTopN)
	assert.Equal(t, "g", r.ChartData.TopUsers[0].Key)
	assert.Equal(t, "/p-g", r.ChartData.TopPagesByTime[0].Key)
}

func TestCompute_EmptyInput(t *testing.T) {
	r := compute(t, nil)

	assert.Equal(t, models.EventStats{}, r.Stats)
	assert.Empty(t, r.Analytics.PathFrequency)
	assert.NotNil(t, r.Analytics.PathFrequency)
	assert.Empty(t, r.Analytics.MostVisitedPath)
	assert.Len(t, r.ActivityTimeline, 24)
	assert.NotNil(t, r.RecentClickActivity)
	assert.NotNil(t, r.ClickHeatmap)
	assert.Zero(t, r.TimeMetrics.AverageTimeOnPage)
	assert.Zero(t, r.TimeMetrics.AverageTimeOnSite)
	assert.Len(t, r.ChartData.MonthlyAvgTime, 12)
	assert.Empty(t, r.ChartData.TopUsers)
	assert.Empty(t, r.ChartData.MonthOverMonth.Series)
}

func TestCompute_DiagnosticsCountFilteredEvents(t *testing.T) {
	bad := ev("", "u1", models.ActionClick, "/x", 0)
	odd := ev("s1", "u1", models.ActionType("copy"), "/x", 0)

	r := compute(t, append(fixtureEvents(), bad, odd))

	assert.Equal(t, int64(13), r.Diagnostics.EventsConsidered)
	assert.Equal(t, int64(1), r.Diagnostics.DroppedMalformed)
	assert.Equal(t, int64(1), r.Diagnostics.IgnoredUnknownType)
	assert.Equal(t, int64(11), r.Stats.TotalActions)
}

func TestCompute_OrderIndependent(t *testing.T) {
	events := fixtureEvents()
	events = append(events,
		pathChange("s4", "u3", "/docs", "/home", 3*hour),
		click("s4", "u3", "/home", 3*hour, 5, 5, "DIV", ""),
		click("s4", "u3", "/home", 3*hour+4000, 5, 5, "DIV", ""),
	)
	want := compute(t, events)

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.TrackingEvent(nil), events...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, err := NewEngine(testPolicy(), i%4+1).Compute(context.Background(), shuffled, testNow)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestCompute_RecentClicksIgnoreInputOrderWithoutIDs(t *testing.T) {
	var events []models.TrackingEvent
	for i := int32(0); i < 15; i++ {
		e := click("s9", "u9", "/grid", 0, i, i, "TD", fmt.Sprintf("cell-%02d", i))
		e.EventID = ""
		events = append(events, e)
	}
	want := compute(t, events)
	require.Len(t, want.RecentClickActivity, DefaultRecentClicks)
	require.NotNil(t, want.RecentClickActivity[0].X)
	assert.Equal(t, int32(0), *want.RecentClickActivity[0].X)
	assert.Equal(t, "cell-00", want.RecentClickActivity[0].ElementID)

	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 20; i++ {
		shuffled := append([]models.TrackingEvent(nil), events...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		got, err := NewEngine(testPolicy(), i%4+1).Compute(context.Background(), shuffled, testNow)
		require.NoError(t, err)
		assert.Equal(t, want.RecentClickActivity, got.RecentClickActivity)
		assert.Equal(t, want, got)
	}
}

func TestCompute_DoesNotModifyInput(t *testing.T) {
	events := fixtureEvents()
	before := append([]models.TrackingEvent(nil), events...)

	compute(t, events)

	assert.Equal(t, before, events)
}

func TestCompute_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(testPolicy(), 1).Compute(ctx, fixtureEvents(), testNow)

	assert.ErrorIs(t, err, context.Canceled)
}
