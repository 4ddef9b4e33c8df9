package analytics

import (
	"fmt"
	"sort"

	"dwellmetrics/api/models"
)

// CanonicalMonths returns the YYYY-MM keys for January through December of year.
func CanonicalMonths(year int) []string {
	months := make([]string, 12)
	for m := 1; m <= 12; m++ {
		months[m-1] = fmt.Sprintf("%04d-%02d", year, m)
	}
	return months
}

// monthLabels is the canonical year plus any month carrying session time
// outside it, sorted ascending.
func (t *tally) monthLabels(year int) []string {
	labels := CanonicalMonths(year)
	seen := make(map[string]struct{}, len(labels))
	for _, m := range labels {
		seen[m] = struct{}{}
	}
	for m := range t.monthTotals {
		if _, ok := seen[m]; !ok {
			labels = append(labels, m)
			seen[m] = struct{}{}
		}
	}
	sort.Strings(labels)
	return labels
}

// monthlyAverages divides each month's accepted session time by the number
// of distinct users active in that month.
func (t *tally) monthlyAverages(labels []string) []models.MonthlyPoint {
	points := make([]models.MonthlyPoint, len(labels))
	for i, month := range labels {
		points[i] = models.MonthlyPoint{Month: month}
		total := t.monthTotals[month]
		users := len(t.monthUsers[month])
		if total > 0 && users > 0 {
			points[i].AvgMs = float64(total) / float64(users)
		}
	}
	return points
}

// monthOverMonth charts per-month session time for the top users by total.
func (t *tally) monthOverMonth(labels []string, topN int) models.MonthOverMonth {
	top := rankCounts(t.userTotals, topN)
	mom := models.MonthOverMonth{
		Months: labels,
		Series: make([]models.UserSeries, 0, len(top)),
	}
	for _, u := range top {
		values := make([]int64, len(labels))
		for i, month := range labels {
			values[i] = t.userMonths[u.Key][month]
		}
		mom.Series = append(mom.Series, models.UserSeries{UserID: u.Key, ValuesMs: values})
	}
	return mom
}
