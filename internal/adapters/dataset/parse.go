package dataset

import (
	"fmt"
	"io"
	"strconv"

	"github.com/okian/marquee/internal/domain/model"
)

var (
	titleColumns     = []string{"id", "title", "phase", "release_date"}
	reviewColumns    = []string{"title", "author", "date", "review_rating", "review_title", "review", "likes", "dislikes"}
	boxOfficeColumns = []string{"id", "title", "release_date", "is_marvel", "budget", "revenue"}
)

// ParseTitles reads a movies or shows file.
func ParseTitles(r io.Reader, file string, kind model.Kind) ([]model.Title, error) {
	var out []model.Title
	err := readTable(r, file, titleColumns, func(rw row) error {
		id, err := rw.required("id")
		if err != nil {
			return err
		}
		name, err := rw.required("title")
		if err != nil {
			return err
		}
		phaseText, err := rw.required("phase")
		if err != nil {
			return err
		}
		n, err := strconv.Atoi(phaseText)
		if err != nil || !model.Phase(n).Valid() {
			return fmt.Errorf("phase: %q is outside %d-%d", phaseText, model.MinPhase, model.MaxPhase)
		}
		released, err := rw.date("release_date")
		if err != nil {
			return err
		}
		out = append(out, model.Title{
			ID:         id,
			Name:       name,
			Phase:      model.Phase(n),
			Released:   released,
			PosterPath: rw.get("poster_path"),
			Kind:       kind,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ParseReviews reads a reviews file.
func ParseReviews(r io.Reader, file string) ([]model.Review, error) {
	var out []model.Review
	err := readTable(r, file, reviewColumns, func(rw row) error {
		title, err := rw.required("title")
		if err != nil {
			return err
		}
		date, err := rw.date("date")
		if err != nil {
			return err
		}
		rating, err := rw.number("review_rating")
		if err != nil {
			return err
		}
		likes, err := rw.integer("likes")
		if err != nil {
			return err
		}
		dislikes, err := rw.integer("dislikes")
		if err != nil {
			return err
		}
		out = append(out, model.Review{
			Title:    title,
			Author:   rw.get("author"),
			Date:     date,
			Rating:   rating,
			Heading:  rw.get("review_title"),
			Body:     rw.get("review"),
			Likes:    likes,
			Dislikes: dislikes,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ParseBoxOffice reads a box office file.
func ParseBoxOffice(r io.Reader, file string) ([]model.BoxOffice, error) {
	var out []model.BoxOffice
	err := readTable(r, file, boxOfficeColumns, func(rw row) error {
		id, err := rw.required("id")
		if err != nil {
			return err
		}
		title, err := rw.required("title")
		if err != nil {
			return err
		}
		released, err := rw.date("release_date")
		if err != nil {
			return err
		}
		marvel, err := rw.boolean("is_marvel")
		if err != nil {
			return err
		}
		budget, err := rw.number("budget")
		if err != nil {
			return err
		}
		revenue, err := rw.number("revenue")
		if err != nil {
			return err
		}
		out = append(out, model.BoxOffice{
			ID:       id,
			Title:    title,
			Released: released,
			IsMarvel: marvel,
			Budget:   budget,
			Revenue:  revenue,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
