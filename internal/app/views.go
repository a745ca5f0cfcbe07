package service

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/okian/marquee/internal/adapters/render"
	"github.com/okian/marquee/internal/domain/highlight"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/internal/domain/types"
)

// request assembles the layout input for q from the committed snapshot.
func (s *Service) request(ctx context.Context, q types.ChartQuery) (*render.Engine, render.Request, error) {
	s.mu.RLock()
	engine := s.engine
	s.mu.RUnlock()
	if engine == nil {
		return nil, render.Request{}, ErrNotStarted
	}

	snap, err := s.store.Current(ctx)
	if err != nil {
		return nil, render.Request{}, err
	}

	req := render.Request{Dataset: snap.Dataset, Width: s.width, Height: s.height}

	if q.Session != "" {
		ss, err := s.lookup(q.Session)
		if err != nil {
			return nil, render.Request{}, err
		}
		req.Width, req.Height = ss.viewport()
		if set, ok := ss.machine.Current(); ok {
			req.Highlight = set
		}
		req.Pinned, _ = ss.machine.Pinned()
	}

	if q.Width != 0 {
		req.Width = q.Width
	}
	if q.Height != 0 {
		req.Height = q.Height
	}
	if q.Hover != "" {
		s.sessMu.RLock()
		g := s.graph
		s.sessMu.RUnlock()
		req.Highlight = highlight.New(g).Enter(q.Hover)
	}
	if q.Pinned != "" {
		req.Pinned = q.Pinned
	}
	return engine, req, nil
}

// RenderChart writes chart as SVG. It fails with render.ErrNothingToRender,
// before writing anything, when there is nothing to draw.
func (s *Service) RenderChart(ctx context.Context, chart string, q types.ChartQuery, w io.Writer) error {
	const op = "service.render_chart"

	engine, req, err := s.request(ctx, q)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := engine.Render(chart, req, w); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Layout returns the layout document of chart.
func (s *Service) Layout(ctx context.Context, chart string, q types.ChartQuery) (any, error) {
	const op = "service.layout"

	engine, req, err := s.request(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	doc, err := engine.Layout(chart, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return doc, nil
}

// Reviews returns reviews for an explicit title or year, or for the
// session's pinned selection when neither is given.
func (s *Service) Reviews(ctx context.Context, q types.ReviewQuery) ([]model.Review, error) {
	const op = "service.reviews"

	snap, err := s.store.Current(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	ds := snap.Dataset

	f := render.ReviewFilter{Title: q.Title, Year: q.Year, Limit: q.Limit}
	if f.Title == "" && f.Year == 0 && q.Session != "" {
		ss, err := s.lookup(q.Session)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if pinned, ok := ss.machine.Pinned(); ok {
			if t, found := ds.TitleByID(pinned); found {
				f.Title = t.Name
			} else if year, err := strconv.Atoi(pinned); err == nil {
				f.Year = year
			}
		}
	}
	return render.SelectReviews(ds, f), nil
}
