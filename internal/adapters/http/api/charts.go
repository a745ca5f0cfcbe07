package api

import (
	"bytes"
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/okian/marquee/internal/adapters/render"
	"github.com/okian/marquee/internal/domain/types"
)

// ChartsHandler serves chart SVGs and their layout documents.
type ChartsHandler struct {
	deps Dependencies
}

// NewChartsHandler creates a new charts handler.
func NewChartsHandler(deps Dependencies) *ChartsHandler {
	return &ChartsHandler{deps: deps}
}

func knownChart(chart string) bool { return slices.Contains(render.Charts, chart) }

func chartQuery(r *http.Request) (types.ChartQuery, error) {
	q := r.URL.Query()
	width, err := floatParam(q, "width")
	if err != nil {
		return types.ChartQuery{}, err
	}
	height, err := floatParam(q, "height")
	if err != nil {
		return types.ChartQuery{}, err
	}
	return types.ChartQuery{
		Session: q.Get("session"),
		Width:   width,
		Height:  height,
		Hover:   q.Get("hover"),
		Pinned:  q.Get("year"),
	}, nil
}

// HandleChart handles GET /charts/{chart}.svg. Nothing to draw is a 204.
func (h *ChartsHandler) HandleChart(w http.ResponseWriter, r *http.Request) {
	const op = "api.chart"

	chart, ok := strings.CutSuffix(r.PathValue("file"), ".svg")
	if !ok || !knownChart(chart) {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	q, err := chartQuery(r)
	if err != nil {
		fail(w, err)
		return
	}

	// Buffer so a failure never leaves a half-written document.
	var buf bytes.Buffer
	if err := h.deps.RenderChart(r.Context(), chart, q, &buf); err != nil {
		if errors.Is(err, render.ErrNothingToRender) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		fail(w, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// HandleLayout handles GET /layout/{chart}.
func (h *ChartsHandler) HandleLayout(w http.ResponseWriter, r *http.Request) {
	const op = "api.layout"

	chart := r.PathValue("chart")
	if !slices.Contains(render.LayoutCharts, chart) {
		writeError(w, http.StatusNotFound, "not_found", NewKind(op, ErrNotFound))
		return
	}
	q, err := chartQuery(r)
	if err != nil {
		fail(w, err)
		return
	}
	doc, err := h.deps.Layout(r.Context(), chart, q)
	if err != nil {
		if errors.Is(err, render.ErrNothingToRender) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, doc)
}
