package models

import "time"

// EventRecord is the flat storage row for a TrackingEvent. Columns that do
// not apply to the event's action type are nil.
type EventRecord struct {
	EventID      string    `json:"eventId"`
	UserID       string    `json:"userId"`
	SessionID    string    `json:"sessionId"`
	ActionType   string    `json:"actionType"`
	URL          *string   `json:"url,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
	Title        *string   `json:"title,omitempty"`
	Referrer     *string   `json:"referrer,omitempty"`
	PositionX    *int32    `json:"positionX,omitempty"`
	PositionY    *int32    `json:"positionY,omitempty"`
	ElementTag   *string   `json:"elementTag,omitempty"`
	ElementID    *string   `json:"elementId,omitempty"`
	ElementClass *string   `json:"elementClass,omitempty"`
	ElementText  *string   `json:"elementText,omitempty"`
	ScrollX      *int32    `json:"scrollX,omitempty"`
	ScrollY      *int32    `json:"scrollY,omitempty"`
	KeyPressed   *string   `json:"keyPressed,omitempty"`
	KeyCode      *string   `json:"keyCode,omitempty"`
	CtrlKey      bool      `json:"ctrlKey,omitempty"`
	ShiftKey     bool      `json:"shiftKey,omitempty"`
	AltKey       bool      `json:"altKey,omitempty"`
	MetaKey      bool      `json:"metaKey,omitempty"`
	Hidden       *bool     `json:"hidden,omitempty"`
	PathFrom     *string   `json:"pathFrom,omitempty"`
	PathTo       *string   `json:"pathTo,omitempty"`
}

// Event converts the row into its domain form. Unknown action types keep
// their tag and carry no detail.
func (r EventRecord) Event() TrackingEvent {
	e := TrackingEvent{
		EventID:   r.EventID,
		UserID:    r.UserID,
		SessionID: r.SessionID,
		Type:      ActionType(r.ActionType),
		URL:       deref(r.URL),
		Timestamp: r.Timestamp,
	}

	switch e.Type {
	case ActionPageView:
		e.Detail = PageViewDetail{Title: deref(r.Title), Referrer: deref(r.Referrer)}
	case ActionPathChange:
		e.Detail = PathChangeDetail{From: deref(r.PathFrom), To: deref(r.PathTo)}
	case ActionClick:
		e.Detail = ClickDetail{Position: r.position(), Element: r.element()}
	case ActionMouseMove:
		e.Detail = MouseMoveDetail{Position: r.position()}
	case ActionScroll:
		e.Detail = ScrollDetail{ScrollX: derefInt(r.ScrollX), ScrollY: derefInt(r.ScrollY)}
	case ActionKeypress:
		e.Detail = KeypressDetail{
			Key:     deref(r.KeyPressed),
			Code:    deref(r.KeyCode),
			Ctrl:    r.CtrlKey,
			Shift:   r.ShiftKey,
			Alt:     r.AltKey,
			Meta:    r.MetaKey,
			Element: r.element(),
		}
	case ActionVisibilityChange:
		hidden := false
		if r.Hidden != nil {
			hidden = *r.Hidden
		}
		e.Detail = VisibilityDetail{Hidden: hidden}
	}
	return e
}

// RecordFromEvent flattens e into a storage row.
func RecordFromEvent(e TrackingEvent) EventRecord {
	r := EventRecord{
		EventID:    e.EventID,
		UserID:     e.UserID,
		SessionID:  e.SessionID,
		ActionType: string(e.Type),
		URL:        ref(e.URL),
		Timestamp:  e.Timestamp,
	}

	switch d := e.Detail.(type) {
	case PageViewDetail:
		r.Title, r.Referrer = ref(d.Title), ref(d.Referrer)
	case PathChangeDetail:
		r.PathFrom, r.PathTo = ref(d.From), ref(d.To)
	case ClickDetail:
		r.setPosition(d.Position)
		r.setElement(d.Element)
	case MouseMoveDetail:
		r.setPosition(d.Position)
	case ScrollDetail:
		r.ScrollX, r.ScrollY = &d.ScrollX, &d.ScrollY
	case KeypressDetail:
		r.KeyPressed, r.KeyCode = ref(d.Key), ref(d.Code)
		r.CtrlKey, r.ShiftKey, r.AltKey, r.MetaKey = d.Ctrl, d.Shift, d.Alt, d.Meta
		r.setElement(d.Element)
	case VisibilityDetail:
		hidden := d.Hidden
		r.Hidden = &hidden
	}
	return r
}

func (r EventRecord) position() *Position {
	if r.PositionX == nil || r.PositionY == nil {
		return nil
	}
	return &Position{X: *r.PositionX, Y: *r.PositionY}
}

func (r EventRecord) element() Element {
	return Element{
		Tag:   deref(r.ElementTag),
		ID:    deref(r.ElementID),
		Class: deref(r.ElementClass),
		Text:  deref(r.ElementText),
	}
}

func (r *EventRecord) setPosition(p *Position) {
	if p == nil {
		return
	}
	x, y := p.X, p.Y
	r.PositionX, r.PositionY = &x, &y
}

func (r *EventRecord) setElement(el Element) {
	r.ElementTag = ref(el.Tag)
	r.ElementID = ref(el.ID)
	r.ElementClass = ref(el.Class)
	r.ElementText = ref(el.Text)
}

func ref(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(v *int32) int32 {
	if v == nil {
		return 0
	}
	return *v
}
