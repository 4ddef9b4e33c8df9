package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dwellmetrics/api/models"
)

func TestGroupSessions_SortsEachSession(t *testing.T) {
	events := []models.TrackingEvent{
		ev("a", "u1", models.ActionClick, "/x", 3000),
		ev("b", "u2", models.ActionPageView, "/y", 500),
		ev("a", "u1", models.ActionPageView, "/x", 1000),
		ev("a", "u1", models.ActionScroll, "/x", 2000),
	}

	p := GroupSessions(events)

	require.Len(t, p.Sessions, 2)
	assert.Equal(t, []string{"a", "b"}, p.IDs())

	a := p.Sessions["a"]
	require.Equal(t, 3, a.Len())
	assert.Equal(t, models.ActionPageView, a.At(0).Type)
	assert.Equal(t, models.ActionScroll, a.At(1).Type)
	assert.Equal(t, models.ActionClick, a.At(2).Type)
	assert.Equal(t, int64(2000), a.DurationMs())
	assert.Equal(t, "u1", a.UserID)
}

func TestGroupSessions_DropsMalformedAndIgnoresUnknown(t *testing.T) {
	noSession := ev("", "u1", models.ActionClick, "/x", 0)
	noTimestamp := ev("a", "u1", models.ActionClick, "/x", 0)
	noTimestamp.Timestamp = time.Time{}
	unknown := ev("a", "u1", models.ActionType("page_unload"), "/x", 10)

	p := GroupSessions([]models.TrackingEvent{
		noSession,
		noTimestamp,
		unknown,
		ev("a", "u1", models.ActionPageView, "/x", 20),
	})

	assert.Equal(t, int64(2), p.Dropped)
	assert.Equal(t, int64(1), p.Ignored)
	require.Contains(t, p.Sessions, "a")
	assert.Equal(t, 1, p.Sessions["a"].Len())
}

func TestGroupSessions_DoesNotMutateInput(t *testing.T) {
	events := []models.TrackingEvent{
		ev("a", "u1", models.ActionClick, "/x", 3000),
		ev("a", "u1", models.ActionPageView, "/x", 1000),
	}
	before := append([]models.TrackingEvent(nil), events...)

	p := GroupSessions(events)
	copied := p.Sessions["a"].Events()
	copied[0].URL = "/mutated"

	assert.Equal(t, before, events)
	assert.Equal(t, "/x", p.Sessions["a"].At(0).URL)
}

func TestGroupSessions_EqualTimestampsOrderDeterministically(t *testing.T) {
	first := ev("a", "u1", models.ActionPageView, "/x", 1000)
	second := ev("a", "u1", models.ActionPathChange, "/y", 1000)

	forward := GroupSessions([]models.TrackingEvent{first, second}).Sessions["a"].Events()
	backward := GroupSessions([]models.TrackingEvent{second, first}).Sessions["a"].Events()

	assert.Equal(t, forward, backward)
}

func TestSession_SingleEventHasZeroDuration(t *testing.T) {
	s := sessionOf(ev("a", "u1", models.ActionPageView, "/x", 0))

	assert.Equal(t, int64(0), s.DurationMs())
	assert.Equal(t, s.Start(), s.End())
}

func TestEventLess_BreaksTiesOnClickDetail(t *testing.T) {
	noPos := ev("s1", "u1", models.ActionClick, "/a", 0)
	noPos.EventID = ""
	left := click("s1", "u1", "/a", 0, 1, 9, "A", "")
	left.EventID = ""
	right := click("s1", "u1", "/a", 0, 2, 0, "A", "")
	right.EventID = ""
	button := click("s1", "u1", "/a", 0, 2, 0, "BUTTON", "")
	button.EventID = ""

	assert.True(t, eventLess(noPos, left))
	assert.True(t, eventLess(left, right))
	assert.True(t, eventLess(right, button))
	assert.False(t, eventLess(button, right))
	assert.False(t, eventLess(right, right))
}
