package model

import "time"

// TimelineEvent is one release positioned on the shared time axis.
type TimelineEvent struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Position  time.Time `json:"position"`
	Group     Phase     `json:"group"`
	Kind      Kind      `json:"kind"`
	Important bool      `json:"important"`
}

// Side selects the half of the chart an interval is drawn on.
type Side string

// Sides of the baseline.
const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
)

// Valid reports whether s is a known side.
func (s Side) Valid() bool { return s == SideTop || s == SideBottom }

// Interval is a span on the primary axis in pixels, e.g. a connection arc or
// a phase band.
type Interval struct {
	ID     string  `json:"id"`
	Start  float64 `json:"start"`
	End    float64 `json:"end"`
	Side   Side    `json:"side"`
	Weight float64 `json:"weight,omitempty"`
}

// Span returns End-Start for a normalized interval.
func (iv Interval) Span() float64 { return iv.End - iv.Start }

// Normalized returns the interval with Start <= End and a default side.
func (iv Interval) Normalized() Interval {
	if iv.Start > iv.End {
		iv.Start, iv.End = iv.End, iv.Start
	}
	if !iv.Side.Valid() {
		iv.Side = SideTop
	}
	return iv
}

// LaneAssignment maps an interval to its row.
type LaneAssignment struct {
	ItemID string `json:"item_id"`
	Side   Side   `json:"side"`
	Lane   int    `json:"lane"`
}

// Band is the region a label lives in relative to the baseline.
type Band string

// Label bands.
const (
	BandAbove Band = "above"
	BandBelow Band = "below"
)

// LabelBox is a label rectangle in pixels. Top is the only coordinate the
// placer changes.
type LabelBox struct {
	OwnerID string  `json:"owner_id"`
	AnchorX float64 `json:"anchor_x"`
	Top     float64 `json:"top"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Band    Band    `json:"band"`
}

// Left edge of the box; labels are centred on their anchor.
func (b LabelBox) Left() float64 { return b.AnchorX - b.Width/2 }

// Right edge of the box.
func (b LabelBox) Right() float64 { return b.AnchorX + b.Width/2 }

// Bottom edge of the box.
func (b LabelBox) Bottom() float64 { return b.Top + b.Height }
