package models

import "time"

// maxElementText caps stored element text content.
const maxElementText = 1000

// TrackAction is one client action as posted by the browser tracker.
// Timestamp is milliseconds since the Unix epoch.
type TrackAction struct {
	Type      string `json:"type" binding:"required"`
	SessionID string `json:"sessionId"`
	Timestamp int64  `json:"timestamp"`
	URL       string `json:"url"`
	Title     string `json:"title"`
	Referrer  string `json:"referrer"`
	Position  *struct {
		X int32 `json:"x"`
		Y int32 `json:"y"`
	} `json:"position,omitempty"`
	Element *struct {
		TagName     string `json:"tagName"`
		ID          string `json:"id"`
		ClassName   string `json:"className"`
		TextContent string `json:"textContent"`
	} `json:"element,omitempty"`
	ScrollPosition *struct {
		ScrollX int32 `json:"scrollX"`
		ScrollY int32 `json:"scrollY"`
	} `json:"scrollPosition,omitempty"`
	Key       string `json:"key"`
	Code      string `json:"code"`
	Modifiers *struct {
		CtrlKey  bool `json:"ctrlKey"`
		ShiftKey bool `json:"shiftKey"`
		AltKey   bool `json:"altKey"`
		MetaKey  bool `json:"metaKey"`
	} `json:"modifiers,omitempty"`
	Hidden     *bool `json:"hidden,omitempty"`
	PathChange *struct {
		From string `json:"from"`
		To   string `json:"to"`
	} `json:"pathChange,omitempty"`
}

// Event converts the posted action into a TrackingEvent owned by userID.
// Actions without a timestamp are stamped with now.
func (a TrackAction) Event(userID string, now time.Time) TrackingEvent {
	ts := now
	if a.Timestamp > 0 {
		ts = time.UnixMilli(a.Timestamp)
	}

	e := TrackingEvent{
		UserID:    userID,
		SessionID: a.SessionID,
		Type:      ActionType(a.Type),
		URL:       a.URL,
		Timestamp: ts.UTC(),
	}

	switch e.Type {
	case ActionPageView:
		e.Detail = PageViewDetail{Title: a.Title, Referrer: a.Referrer}
	case ActionPathChange:
		var d PathChangeDetail
		if a.PathChange != nil {
			d.From, d.To = a.PathChange.From, a.PathChange.To
		}
		e.Detail = d
	case ActionClick:
		e.Detail = ClickDetail{Position: a.position(), Element: a.element()}
	case ActionMouseMove:
		e.Detail = MouseMoveDetail{Position: a.position()}
	case ActionScroll:
		var d ScrollDetail
		if a.ScrollPosition != nil {
			d.ScrollX, d.ScrollY = a.ScrollPosition.ScrollX, a.ScrollPosition.ScrollY
		}
		e.Detail = d
	case ActionKeypress:
		d := KeypressDetail{Key: a.Key, Code: a.Code, Element: a.element()}
		if a.Modifiers != nil {
			d.Ctrl, d.Shift = a.Modifiers.CtrlKey, a.Modifiers.ShiftKey
			d.Alt, d.Meta = a.Modifiers.AltKey, a.Modifiers.MetaKey
		}
		e.Detail = d
	case ActionVisibilityChange:
		e.Detail = VisibilityDetail{Hidden: a.Hidden != nil && *a.Hidden}
	}
	return e
}

func (a TrackAction) position() *Position {
	if a.Position == nil {
		return nil
	}
	return &Position{X: a.Position.X, Y: a.Position.Y}
}

func (a TrackAction) element() Element {
	if a.Element == nil {
		return Element{}
	}
	text := a.Element.TextContent
	if r := []rune(text); len(r) > maxElementText {
		text = string(r[:maxElementText])
	}
	return Element{
		Tag:   a.Element.TagName,
		ID:    a.Element.ID,
		Class: a.Element.ClassName,
		Text:  text,
	}
}
