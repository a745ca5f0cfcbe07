package model

import "time"

// UIEventKind enumerates the interactions the dashboard forwards.
type UIEventKind string

// UI event kinds.
const (
	UIPointerEnter UIEventKind = "pointer_enter"
	UIPointerLeave UIEventKind = "pointer_leave"
	UIClick        UIEventKind = "click"
	UIResize       UIEventKind = "resize"
)

// Valid reports whether k is a known kind.
func (k UIEventKind) Valid() bool {
	switch k {
	case UIPointerEnter, UIPointerLeave, UIClick, UIResize:
		return true
	}
	return false
}

// UIEvent is one interaction posted by a dashboard session.
type UIEvent struct {
	Session string      // session id
	Kind    UIEventKind // what happened
	Target  string      // entity id for pointer events, selection key for clicks
	Width   float64     // viewport width for resize
	Height  float64     // viewport height for resize
	At      time.Time   // when the server accepted it
}
