package analytics

import (
	"time"
)

// DwellInterval is time attributed to one page within one session.
type DwellInterval struct {
	Page       string
	Start      time.Time
	End        time.Time
	DurationMs int64
}

// IntervalCounts tallies plausibility filter outcomes.
type IntervalCounts struct {
	Accepted int64
	Rejected int64
}

// ReconstructDwell derives page dwell intervals for one session using the
// boundary-event method. Candidate gaps outside the page band are counted
// as rejected and dropped.
func ReconstructDwell(s *Session, p Policy) ([]DwellInterval, IntervalCounts) {
	var counts IntervalCounts
	if s.Len() < 2 {
		return nil, counts
	}

	boundaries := make([]int, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		if p.isBoundary(s.At(i).Type) {
			boundaries = append(boundaries, i)
		}
	}
	if len(boundaries) == 0 {
		return nil, counts
	}

	var intervals []DwellInterval
	consider := func(from, to int) {
		start, end := s.At(from), s.At(to)
		ms := end.Timestamp.Sub(start.Timestamp).Milliseconds()
		if !p.acceptPage(ms) {
			counts.Rejected++
			return
		}
		counts.Accepted++
		intervals = append(intervals, DwellInterval{
			Page:       start.Page(),
			Start:      start.Timestamp,
			End:        end.Timestamp,
			DurationMs: ms,
		})
	}

	for k := 0; k+1 < len(boundaries); k++ {
		consider(boundaries[k], boundaries[k+1])
	}

	// The last boundary runs until the last observed activity of any kind.
	last := boundaries[len(boundaries)-1]
	if last < s.Len()-1 {
		consider(last, s.Len()-1)
	}

	return intervals, counts
}

// SessionDwell returns the first-to-last duration of s and whether it falls
// inside the session band. Sessions with fewer than two events report 0.
func SessionDwell(s *Session, p Policy) (int64, bool) {
	ms := s.DurationMs()
	if s.Len() < 2 {
		return 0, false
	}
	return ms, p.acceptSession(ms)
}
