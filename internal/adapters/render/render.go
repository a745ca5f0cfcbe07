package render

import (
	"errors"
	"fmt"
	"io"
	"time"

	"gonum.org/v1/plot"

	"github.com/okian/marquee/internal/domain/model"
)

// Layout computes the JSON layout document of a chart.
func (e *Engine) Layout(chart string, req Request) (any, error) {
	switch chart {
	case ChartTimeline:
		return e.LayoutTimeline(req)
	case ChartConnections:
		return e.LayoutConnections(req)
	case ChartDotPlot:
		return e.LayoutDotPlot(req)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownChart, chart)
	}
}

// Render lays out a chart and writes it as SVG. On ErrNothingToRender
// nothing has been written.
func (e *Engine) Render(chart string, req Request, w io.Writer) error {
	switch chart {
	case ChartTimeline:
		l, err := e.LayoutTimeline(req)
		if err != nil {
			return err
		}
		return e.PaintTimeline(w, l)
	case ChartConnections:
		l, err := e.LayoutConnections(req)
		if err != nil {
			return err
		}
		return e.PaintConnections(w, l)
	case ChartDotPlot:
		l, err := e.LayoutDotPlot(req)
		if err != nil {
			return err
		}
		return e.PaintDotPlot(w, l)
	case ChartRevenue:
		return e.renderPlot(chart, req, RevenuePlot, w)
	case ChartRatings:
		return e.renderPlot(chart, req, RatingsPlot, w)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownChart, chart)
	}
}

func (e *Engine) renderPlot(chart string, req Request, build func(model.Dataset) (*plot.Plot, error), w io.Writer) error {
	started := time.Now()
	defer e.observe(chart, started)

	if req.degenerate() {
		return e.nothing(chart)
	}
	p, err := build(req.Dataset)
	if err != nil {
		if errors.Is(err, ErrNothingToRender) {
			return e.nothing(chart)
		}
		return fmt.Errorf("render.%s: %w", chart, err)
	}
	return WritePlot(p, req.Width, req.Height, w)
}
