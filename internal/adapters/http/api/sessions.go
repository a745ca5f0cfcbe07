package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/okian/marquee/internal/domain/model"
)

// SessionsHandler manages dashboard sessions and their UI events.
type SessionsHandler struct {
	deps Dependencies
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps}
}

// eventRequest mirrors the OpenAPI schema for POST /sessions/{id}/events.
type eventRequest struct {
	Kind   string  `json:"kind"`
	Target string  `json:"target"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (e eventRequest) toEvent(session string) model.UIEvent {
	return model.UIEvent{
		Session: session,
		Kind:    model.UIEventKind(strings.TrimSpace(e.Kind)),
		Target:  strings.TrimSpace(e.Target),
		Width:   e.Width,
		Height:  e.Height,
	}
}

type ackResponse struct {
	Status string `json:"status"`
}

// HandleCreate handles POST /sessions.
func (h *SessionsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.CreateSession(r.Context())
	if err != nil {
		fail(w, Wrap("api.create_session", err))
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// HandleGet handles GET /sessions/{id}.
func (h *SessionsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	view, err := h.deps.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		fail(w, Wrap("api.get_session", err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// HandleDelete handles DELETE /sessions/{id}.
func (h *SessionsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.deps.CloseSession(r.Context(), r.PathValue("id")); err != nil {
		fail(w, Wrap("api.delete_session", err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleEvent handles POST /sessions/{id}/events. Events are applied
// asynchronously, in order, so the answer is 202.
func (h *SessionsHandler) HandleEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.deps.Enqueue(r.Context(), req.toEvent(r.PathValue("id"))); err != nil {
		fail(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
