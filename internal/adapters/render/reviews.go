package render

import (
	"sort"

	"github.com/okian/marquee/internal/domain/model"
)

// ReviewFilter selects reviews for the review browser. Title wins over
// Year; zero values mean no filter.
type ReviewFilter struct {
	Title string
	Year  int
	Limit int
}

// SelectReviews returns the matching reviews, most liked first, newer first
// on ties. A year matches the release year of the reviewed title, or the
// review date when the title is not in the catalog.
func SelectReviews(ds model.Dataset, f ReviewFilter) []model.Review {
	released := make(map[string]int, len(ds.Titles))
	for _, t := range ds.Titles {
		if _, ok := released[t.Name]; !ok {
			released[t.Name] = t.Released.Year()
		}
	}

	out := make([]model.Review, 0, len(ds.Reviews))
	for _, r := range ds.Reviews {
		switch {
		case f.Title != "":
			if r.Title != f.Title {
				continue
			}
		case f.Year != 0:
			year, ok := released[r.Title]
			if !ok {
				year = r.Date.Year()
			}
			if year != f.Year {
				continue
			}
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Likes != out[j].Likes {
			return out[i].Likes > out[j].Likes
		}
		return out[i].Date.After(out[j].Date)
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out
}
