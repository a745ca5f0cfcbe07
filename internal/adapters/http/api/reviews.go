package api

import (
	"net/http"

	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/internal/domain/types"
)

const maxReviewLimit = 200

// ReviewsHandler serves the review browser.
type ReviewsHandler struct {
	deps Dependencies
}

// NewReviewsHandler creates a new reviews handler.
func NewReviewsHandler(deps Dependencies) *ReviewsHandler {
	return &ReviewsHandler{deps: deps}
}

type reviewsResponse struct {
	Count   int            `json:"count"`
	Reviews []model.Review `json:"reviews"`
}

// HandleReviews handles GET /reviews?title=&year=&session=&limit=.
func (h *ReviewsHandler) HandleReviews(w http.ResponseWriter, r *http.Request) {
	const op = "api.reviews"

	q := r.URL.Query()
	year, err := intParam(q, "year")
	if err != nil {
		fail(w, err)
		return
	}
	limit, err := intParam(q, "limit")
	if err != nil {
		fail(w, err)
		return
	}
	if limit < 0 || limit > maxReviewLimit {
		limit = maxReviewLimit
	}

	reviews, err := h.deps.Reviews(r.Context(), types.ReviewQuery{
		Session: q.Get("session"),
		Title:   q.Get("title"),
		Year:    year,
		Limit:   limit,
	})
	if err != nil {
		fail(w, Wrap(op, err))
		return
	}
	if reviews == nil {
		reviews = []model.Review{}
	}
	writeJSON(w, http.StatusOK, reviewsResponse{Count: len(reviews), Reviews: reviews})
}
