package geometry

import (
	"sort"

	"github.com/okian/marquee/internal/domain/model"
)

// Placer defaults.
const (
	defaultPadding       = 4
	defaultDamping       = 0.6
	defaultMaxIterations = 60
	defaultBaseline      = 300
	defaultViewBottom    = 600
)

// Placer moves label boxes vertically, inside their band, until boxes in the
// same band stop overlapping or the per-box retry budget runs out.
type Placer struct {
	baseline      float64
	viewTop       float64
	viewBottom    float64
	padding       float64
	damping       float64
	maxIterations int
}

// PlacerOption configures a Placer.
type PlacerOption func(*Placer)

// WithBaseline sets the y coordinate separating the two bands.
func WithBaseline(y float64) PlacerOption {
	return func(p *Placer) { p.baseline = y }
}

// WithViewport sets the vertical bounds labels must stay within.
func WithViewport(top, bottom float64) PlacerOption {
	return func(p *Placer) {
		if bottom > top {
			p.viewTop, p.viewBottom = top, bottom
		}
	}
}

// WithPadding sets the margin kept between boxes.
func WithPadding(pad float64) PlacerOption {
	return func(p *Placer) {
		if pad >= 0 {
			p.padding = pad
		}
	}
}

// WithDamping sets the fraction of a neighbour's height a box is pushed per
// retry. Values outside (0, 1) are ignored.
func WithDamping(d float64) PlacerOption {
	return func(p *Placer) {
		if d > 0 && d < 1 {
			p.damping = d
		}
	}
}

// WithMaxIterations caps retries per box.
func WithMaxIterations(n int) PlacerOption {
	return func(p *Placer) {
		if n > 0 {
			p.maxIterations = n
		}
	}
}

// NewPlacer creates a placer with the given options.
func NewPlacer(opts ...PlacerOption) *Placer {
	p := &Placer{
		baseline:      defaultBaseline,
		viewTop:       0,
		viewBottom:    defaultViewBottom,
		padding:       defaultPadding,
		damping:       defaultDamping,
		maxIterations: defaultMaxIterations,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Placement is the result of one layout pass.
type Placement struct {
	Boxes      []model.LabelBox `json:"boxes"`
	Iterations int              `json:"iterations"`
	Unresolved int              `json:"unresolved"`
}

// Place resolves collisions for candidates and returns the final boxes in
// input order. Candidates are not modified.
func (p *Placer) Place(candidates []model.LabelBox) Placement {
	res := Placement{Boxes: make([]model.LabelBox, len(candidates))}

	order := make([]int, len(candidates))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return candidates[order[i]].AnchorX < candidates[order[j]].AnchorX
	})

	placed := map[model.Band][]model.LabelBox{}
	for _, idx := range order {
		b := candidates[idx]
		if b.Band != model.BandBelow {
			b.Band = model.BandAbove
		}
		lo, hi := p.limits(b)
		b.Top = clamp(b.Top, lo, hi)

		tries := 0
		for ; tries < p.maxIterations; tries++ {
			hit, ok := firstOverlap(b, placed[b.Band], p.padding)
			if !ok {
				break
			}
			step := p.damping*hit.Height + p.padding
			next := b.Top + step
			if b.Band == model.BandAbove {
				next = b.Top - step
			}
			next = clamp(next, lo, hi)
			if next == b.Top {
				break
			}
			b.Top = next
		}
		if _, ok := firstOverlap(b, placed[b.Band], p.padding); ok {
			res.Unresolved++
		}
		res.Iterations += tries

		placed[b.Band] = append(placed[b.Band], b)
		res.Boxes[idx] = b
	}
	return res
}

// limits returns the allowed range for b.Top inside its band.
func (p *Placer) limits(b model.LabelBox) (lo, hi float64) {
	if b.Band == model.BandBelow {
		lo, hi = p.baseline, p.viewBottom-b.Height
	} else {
		lo, hi = p.viewTop, p.baseline-b.Height
	}
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func firstOverlap(b model.LabelBox, others []model.LabelBox, pad float64) (model.LabelBox, bool) {
	for _, o := range others {
		if Overlap(b, o, pad) {
			return o, true
		}
	}
	return model.LabelBox{}, false
}

// Overlap reports whether two boxes intersect once each is grown by pad.
// Boxes that only touch do not overlap.
func Overlap(a, b model.LabelBox, pad float64) bool {
	return a.Left() < b.Right()+pad && b.Left() < a.Right()+pad &&
		a.Top < b.Bottom()+pad && b.Top < a.Bottom()+pad
}

// CountOverlaps returns the number of overlapping pairs that share a band.
func CountOverlaps(boxes []model.LabelBox, pad float64) int {
	n := 0
	for i := range boxes {
		for j := i + 1; j < len(boxes); j++ {
			if boxes[i].Band == boxes[j].Band && Overlap(boxes[i], boxes[j], pad) {
				n++
			}
		}
	}
	return n
}

// Seed describes a label before banding.
type Seed struct {
	OwnerID string
	AnchorX float64
	Width   float64
	Height  float64
}

// SeedLabels applies the coarse initial rule: seeds alternate above and below
// the baseline in the given order, each resting offset pixels from it.
func SeedLabels(seeds []Seed, baseline, offset float64) []model.LabelBox {
	out := make([]model.LabelBox, len(seeds))
	for i, s := range seeds {
		b := model.LabelBox{OwnerID: s.OwnerID, AnchorX: s.AnchorX, Width: s.Width, Height: s.Height}
		if i%2 == 0 {
			b.Band = model.BandAbove
			b.Top = baseline - offset - s.Height
		} else {
			b.Band = model.BandBelow
			b.Top = baseline + offset
		}
		out[i] = b
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
