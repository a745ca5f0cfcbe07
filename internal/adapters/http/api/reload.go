package api

import (
	"net/http"
)

// ReloadHandler triggers dataset reloads.
type ReloadHandler struct {
	deps Dependencies
}

// NewReloadHandler creates a new reload handler.
func NewReloadHandler(deps Dependencies) *ReloadHandler {
	return &ReloadHandler{deps: deps}
}

// HandleReload handles POST /reload. A reload overtaken by a newer one
// answers 409 and leaves the committed dataset alone.
func (h *ReloadHandler) HandleReload(w http.ResponseWriter, r *http.Request) {
	res, err := h.deps.Reload(r.Context())
	if err != nil {
		fail(w, Wrap("api.reload", err))
		return
	}
	writeJSON(w, http.StatusOK, res)
}
