package analytics

import (
	"fmt"
	"time"

	"dwellmetrics/api/models"
)

var testBase = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func testPolicy() Policy {
	p := DefaultPolicy()
	p.Location = time.UTC
	return p
}

var eventSeq int

// ev builds an event offset ms milliseconds from testBase.
func ev(session, user string, typ models.ActionType, url string, ms int64) models.TrackingEvent {
	eventSeq++
	e := models.TrackingEvent{
		EventID:   fmt.Sprintf("evt-%05d", eventSeq),
		UserID:    user,
		SessionID: session,
		Type:      typ,
		URL:       url,
		Timestamp: testBase.Add(time.Duration(ms) * time.Millisecond),
	}
	switch typ {
	case models.ActionClick:
		e.Detail = models.ClickDetail{}
	case models.ActionVisibilityChange:
		e.Detail = models.VisibilityDetail{Hidden: true}
	case models.ActionPageView:
		e.Detail = models.PageViewDetail{}
	}
	return e
}

func click(session, user, url string, ms int64, x, y int32, tag, id string) models.TrackingEvent {
	e := ev(session, user, models.ActionClick, url, ms)
	e.Detail = models.ClickDetail{
		Position: &models.Position{X: x, Y: y},
		Element:  models.Element{Tag: tag, ID: id},
	}
	return e
}

func pathChange(session, user, from, to string, ms int64) models.TrackingEvent {
	e := ev(session, user, models.ActionPathChange, to, ms)
	e.Detail = models.PathChangeDetail{From: from, To: to}
	return e
}

func sessionOf(events ...models.TrackingEvent) *Session {
	p := GroupSessions(events)
	for _, s := range p.Sessions {
		return s
	}
	return &Session{}
}

const hour = int64(60 * 60 * 1000)

// fixtureEvents is a three session dataset:
//
//	s1 (u1): /home 10s, /docs 30s + 5s tail, three boundary events
//	s2 (u2): /docs page view with a 3s tail, events stored out of order
//	s3 (u1): a lone page view
func fixtureEvents() []models.TrackingEvent {
	return []models.TrackingEvent{
		ev("s1", "u1", models.ActionPageView, "/home", 0),
		click("s1", "u1", "/home", 2000, 10, 20, "BUTTON", "cta"),
		pathChange("s1", "u1", "/home", "/docs", 10000),
		click("s1", "u1", "/docs", 12000, 10, 20, "A", ""),
		ev("s1", "u1", models.ActionVisibilityChange, "/docs", 40000),
		ev("s1", "u1", models.ActionMouseMove, "/docs", 45000),

		ev("s2", "u2", models.ActionPageView, "/docs", hour),
		click("s2", "u2", "/docs", hour+1000, 10, 20, "", ""),
		ev("s2", "u2", models.ActionScroll, "/docs", hour+500),
		ev("s2", "u2", models.ActionKeypress, "/docs", hour+3000),

		ev("s3", "u1", models.ActionPageView, "/home", 2*hour),
	}
}
