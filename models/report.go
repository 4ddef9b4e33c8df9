package models

import "time"

// Report is the composite analytics payload returned for one query.
// All durations are milliseconds.
type Report struct {
	Stats               EventStats       `json:"stats"`
	Analytics           PathAnalytics    `json:"analytics"`
	ActivityTimeline    map[string]int64 `json:"activityTimeline"`
	RecentClickActivity []ClickActivity  `json:"recentClickActivity"`
	ClickHeatmap        []HeatmapCell    `json:"clickHeatmap"`
	PathChangeStats     PathChangeStats  `json:"pathChangeStats"`
	TimeMetrics         TimeMetrics      `json:"timeMetrics"`
	ChartData           ChartData        `json:"chartData"`
	Diagnostics         Diagnostics      `json:"diagnostics"`
	Filters             ReportFilters    `json:"filters"`
}

type EventStats struct {
	TotalActions      int64 `json:"totalActions"`
	PageViews         int64 `json:"pageViews"`
	Clicks            int64 `json:"clicks"`
	MouseMovements    int64 `json:"mouseMovements"`
	Scrolls           int64 `json:"scrolls"`
	Keypresses        int64 `json:"keypresses"`
	VisibilityChanges int64 `json:"visibilityChanges"`
	PathChanges       int64 `json:"pathChanges"`
	UniqueSessions    int64 `json:"uniqueSessions"`
	UniqueURLs        int64 `json:"uniqueUrls"`
}

type PathAnalytics struct {
	PathFrequency   map[string]int64 `json:"pathFrequency"`
	ClicksByPath    map[string]int64 `json:"clicksByPath"`
	MostVisitedPath string           `json:"mostVisitedPath"`
	MostClickedPath string           `json:"mostClickedPath"`
}

type ClickActivity struct {
	Timestamp  time.Time `json:"timestamp"`
	URL        string    `json:"url"`
	ElementTag string    `json:"elementTag"`
	ElementID  string    `json:"elementId,omitempty"`
	X          *int32    `json:"x,omitempty"`
	Y          *int32    `json:"y,omitempty"`
}

type HeatmapCell struct {
	X     int32 `json:"x"`
	Y     int32 `json:"y"`
	Count int64 `json:"count"`
}

type RankedCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type PathChangeStats struct {
	TotalPathChanges  int64            `json:"totalPathChanges"`
	PathTransitions   map[string]int64 `json:"pathTransitions"`
	MostFrequentPaths []RankedCount    `json:"mostFrequentPaths"`
}

type TimeMetrics struct {
	AverageTimeOnPage float64            `json:"averageTimeOnPage"`
	AverageTimeOnSite float64            `json:"averageTimeOnSite"`
	TotalSessions     int64              `json:"totalSessions"`
	TotalPageViews    int64              `json:"totalPageViews"`
	TimeByPage        map[string]float64 `json:"timeByPage"`
	TotalTimeByPage   map[string]int64   `json:"totalTimeByPage"`
}

type RankedDuration struct {
	Key     string `json:"key"`
	TotalMs int64  `json:"totalMs"`
}

type MonthlyPoint struct {
	Month string  `json:"month"`
	AvgMs float64 `json:"avgMs"`
}

type UserSeries struct {
	UserID   string  `json:"userId"`
	ValuesMs []int64 `json:"valuesMs"`
}

type MonthOverMonth struct {
	Months []string     `json:"months"`
	Series []UserSeries `json:"series"`
}

type ChartData struct {
	TopPagesByTime []RankedDuration `json:"topPagesByTime"`
	MonthlyAvgTime []MonthlyPoint   `json:"monthlyAvgTime"`
	TopUsers       []RankedDuration `json:"topUsers"`
	MonthOverMonth MonthOverMonth   `json:"monthOverMonth"`
}

// Diagnostics exposes how many events and candidate intervals were kept or
// filtered while computing a report.
type Diagnostics struct {
	EventsConsidered      int64 `json:"eventsConsidered"`
	DroppedMalformed      int64 `json:"droppedMalformed"`
	IgnoredUnknownType    int64 `json:"ignoredUnknownType"`
	PageIntervalsAccepted int64 `json:"pageIntervalsAccepted"`
	PageIntervalsRejected int64 `json:"pageIntervalsRejected"`
	SessionsAccepted      int64 `json:"sessionsAccepted"`
	SessionsRejected      int64 `json:"sessionsRejected"`
}

// ReportFilters echoes the resolved query.
type ReportFilters struct {
	UserID    string     `json:"userId,omitempty"`
	Path      string     `json:"path,omitempty"`
	DateRange string     `json:"dateRange"`
	Start     *time.Time `json:"start,omitempty"`
	End       *time.Time `json:"end,omitempty"`
}
