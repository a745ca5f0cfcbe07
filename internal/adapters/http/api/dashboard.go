package api

import (
	"net/http"
)

// dashboardHandler serves the interactive dashboard page.
type dashboardHandler struct{}

func newDashboardHandler() *dashboardHandler {
	return &dashboardHandler{}
}

// HandleDashboard handles GET /dashboard. The page opens a session, embeds
// the charts and forwards pointer, click and resize events.
func (h *dashboardHandler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, dashboardFS, "dashboard.html")
}

// HandleAsset handles GET /dashboard/{asset}.
func (h *dashboardHandler) HandleAsset(w http.ResponseWriter, r *http.Request) {
	http.ServeFileFS(w, r, dashboardFS, r.PathValue("asset"))
}
