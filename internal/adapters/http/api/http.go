// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/okian/marquee/internal/adapters/mq/queue"
	"github.com/okian/marquee/internal/adapters/render"
	"github.com/okian/marquee/internal/adapters/repository"
	service "github.com/okian/marquee/internal/app"
	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	RenderChart(ctx context.Context, chart string, q types.ChartQuery, w io.Writer) error
	Layout(ctx context.Context, chart string, q types.ChartQuery) (any, error)
	Reviews(ctx context.Context, q types.ReviewQuery) ([]model.Review, error)

	CreateSession(ctx context.Context) (types.SessionView, error)
	Session(ctx context.Context, id string) (types.SessionView, error)
	CloseSession(ctx context.Context, id string) error
	Enqueue(ctx context.Context, e model.UIEvent) error

	Reload(ctx context.Context) (types.ReloadResult, error)
}

// Server wires HTTP routes for the dashboard API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	chartsHandler    *ChartsHandler
	reviewsHandler   *ReviewsHandler
	sessionsHandler  *SessionsHandler
	reloadHandler    *ReloadHandler
	dashboardHandler *dashboardHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		chartsHandler:    NewChartsHandler(deps),
		reviewsHandler:   NewReviewsHandler(deps),
		sessionsHandler:  NewSessionsHandler(deps),
		reloadHandler:    NewReloadHandler(deps),
		dashboardHandler: newDashboardHandler(),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("GET /dashboard/{asset}", s.dashboardHandler.HandleAsset)
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /charts/{file}", MetricsMiddleware(s.chartsHandler.HandleChart, "charts"))
	mux.HandleFunc("GET /layout/{chart}", MetricsMiddleware(s.chartsHandler.HandleLayout, "layout"))
	mux.HandleFunc("GET /reviews", MetricsMiddleware(s.reviewsHandler.HandleReviews, "reviews"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.sessionsHandler.HandleCreate, "sessions"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleGet, "sessions"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(s.sessionsHandler.HandleDelete, "sessions"))
	mux.HandleFunc("POST /sessions/{id}/events", MetricsMiddleware(s.sessionsHandler.HandleEvent, "session_events"))

	mux.HandleFunc("POST /reload", MetricsMiddleware(s.reloadHandler.HandleReload, "reload"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// statusFor maps a service error to a status code and error code.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest), errors.Is(err, service.ErrInvalidEvent):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrUnknownSession), errors.Is(err, render.ErrUnknownChart), errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrSuperseded):
		return http.StatusConflict, "superseded"
	case errors.Is(err, service.ErrTooManySessions), errors.Is(err, queue.ErrFull), errors.Is(err, ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, repository.ErrNoSnapshot),
		errors.Is(err, queue.ErrClosed), errors.Is(err, ErrUnavailable):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

func fail(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeError(w, status, code, err)
}

// floatParam reads an optional numeric query parameter; absent is zero.
func floatParam(q url.Values, name string) (float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, WrapKind("api.param."+name, ErrBadRequest, err)
	}
	return v, nil
}

// intParam reads an optional integer query parameter; absent is zero.
func intParam(q url.Values, name string) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, WrapKind("api.param."+name, ErrBadRequest, err)
	}
	return v, nil
}
