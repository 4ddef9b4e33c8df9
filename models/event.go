package models

import "time"

// ActionType tags a TrackingEvent with the kind of client interaction it records.
type ActionType string

const (
	ActionPageView         ActionType = "page_view"
	ActionPathChange       ActionType = "path_change"
	ActionClick            ActionType = "click"
	ActionMouseMove        ActionType = "mousemove"
	ActionScroll           ActionType = "scroll"
	ActionKeypress         ActionType = "keypress"
	ActionVisibilityChange ActionType = "visibility_change"
)

// UnknownPage is the page key used for events recorded without a URL.
const UnknownPage = "unknown"

// KnownActionTypes lists every action type the engine understands.
var KnownActionTypes = []ActionType{
	ActionPageView,
	ActionPathChange,
	ActionClick,
	ActionMouseMove,
	ActionScroll,
	ActionKeypress,
	ActionVisibilityChange,
}

// Known reports whether a is part of the fixed tag set.
func (a ActionType) Known() bool {
	switch a {
	case ActionPageView, ActionPathChange, ActionClick, ActionMouseMove,
		ActionScroll, ActionKeypress, ActionVisibilityChange:
		return true
	default:
		return false
	}
}

// Position is a pointer location in CSS pixels.
type Position struct {
	X int32 `json:"x"`
	Y int32 `json:"y"`
}

// Element describes the DOM element an interaction targeted.
type Element struct {
	Tag   string `json:"tag,omitempty"`
	ID    string `json:"id,omitempty"`
	Class string `json:"class,omitempty"`
	Text  string `json:"text,omitempty"`
}

// Detail is the type-specific part of a TrackingEvent. Exactly one variant
// exists per action type; the variant always matches the event's Type.
type Detail interface {
	detailFor() ActionType
}

type PageViewDetail struct {
	Title    string
	Referrer string
}

type PathChangeDetail struct {
	From string
	To   string
}

type ClickDetail struct {
	Position *Position
	Element  Element
}

type MouseMoveDetail struct {
	Position *Position
}

type ScrollDetail struct {
	ScrollX int32
	ScrollY int32
}

type KeypressDetail struct {
	Key     string
	Code    string
	Ctrl    bool
	Shift   bool
	Alt     bool
	Meta    bool
	Element Element
}

type VisibilityDetail struct {
	Hidden bool
}

func (PageViewDetail) detailFor() ActionType   { return ActionPageView }
func (PathChangeDetail) detailFor() ActionType { return ActionPathChange }
func (ClickDetail) detailFor() ActionType      { return ActionClick }
func (MouseMoveDetail) detailFor() ActionType  { return ActionMouseMove }
func (ScrollDetail) detailFor() ActionType     { return ActionScroll }
func (KeypressDetail) detailFor() ActionType   { return ActionKeypress }
func (VisibilityDetail) detailFor() ActionType { return ActionVisibilityChange }

// TrackingEvent is one immutable client interaction record.
type TrackingEvent struct {
	EventID   string
	UserID    string
	SessionID string
	Type      ActionType
	// URL is empty when the client did not report a page.
	URL       string
	Timestamp time.Time
	Detail    Detail
}

// Page returns the page the event is attributed to.
func (e TrackingEvent) Page() string {
	if e.URL == "" {
		return UnknownPage
	}
	return e.URL
}

// Click returns the click detail when e is a click carrying one.
func (e TrackingEvent) Click() (ClickDetail, bool) {
	d, ok := e.Detail.(ClickDetail)
	return d, ok && e.Type == ActionClick
}

// PathChange returns the path change detail when e is a path change carrying one.
func (e TrackingEvent) PathChange() (PathChangeDetail, bool) {
	d, ok := e.Detail.(PathChangeDetail)
	return d, ok && e.Type == ActionPathChange
}

// Valid reports whether e carries the keys reconstruction depends on.
func (e TrackingEvent) Valid() bool {
	return e.SessionID != "" && !e.Timestamp.IsZero()
}
