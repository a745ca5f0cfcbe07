// Package types contains the request and response shapes shared by the
// service and the HTTP layer.
package types

import "time"

// ChartQuery selects what a chart shows. Zero values fall back to the
// session, then to the service defaults.
type ChartQuery struct {
	Session string
	Width   float64
	Height  float64
	// Hover focuses an entity for this request only.
	Hover string
	// Pinned overrides the session selection: a title id or a year.
	Pinned string
}

// ReviewQuery selects reviews for the review browser.
type ReviewQuery struct {
	Session string
	Title   string
	Year    int
	Limit   int
}

// SessionView is the externally visible state of a dashboard session.
type SessionView struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	Anchor    string    `json:"anchor,omitempty"`
	Highlight []string  `json:"highlight"`
	Pinned    string    `json:"pinned,omitempty"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	CreatedAt time.Time `json:"created_at"`
	LastSeen  time.Time `json:"last_seen"`
}

// ReloadResult summarizes one committed dataset reload.
type ReloadResult struct {
	Generation  uint64    `json:"generation"`
	LoadedAt    time.Time `json:"loaded_at"`
	Titles      int       `json:"titles"`
	Reviews     int       `json:"reviews"`
	BoxOffice   int       `json:"box_office"`
	Connections int       `json:"connections"`
	Dropped     []string  `json:"dropped,omitempty"`
	Errors      []string  `json:"errors,omitempty"`
}
