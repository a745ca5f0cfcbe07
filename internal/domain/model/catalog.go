// Package model contains domain models passed between layers.
package model

import "time"

// Kind distinguishes catalog entries.
type Kind string

// Catalog kinds.
const (
	KindMovie Kind = "movie"
	KindShow  Kind = "show"
)

// Phase is the franchise phase a title belongs to (1-6).
type Phase int

// Phase bounds accepted by the loader.
const (
	MinPhase Phase = 1
	MaxPhase Phase = 6
)

// Valid reports whether p is inside the known phase range.
func (p Phase) Valid() bool { return p >= MinPhase && p <= MaxPhase }

// Title is one movie or show from the catalog files.
type Title struct {
	ID         string    `json:"id"`
	Name       string    `json:"title"`
	Phase      Phase     `json:"phase"`
	Released   time.Time `json:"release_date"`
	PosterPath string    `json:"poster_path,omitempty"`
	Kind       Kind      `json:"kind"`
}

// Review is one row of the reviews file. Title joins to Title.Name.
type Review struct {
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Date     time.Time `json:"date"`
	Rating   float64   `json:"review_rating"`
	Heading  string    `json:"review_title"`
	Body     string    `json:"review"`
	Likes    int       `json:"likes"`
	Dislikes int       `json:"dislikes"`
}

// BoxOffice holds budget and worldwide revenue for a release.
type BoxOffice struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Released time.Time `json:"release_date"`
	IsMarvel bool      `json:"is_marvel"`
	Budget   float64   `json:"budget"`
	Revenue  float64   `json:"revenue"`
}

// Dataset is an immutable snapshot of everything the charts read.
// A collection that failed to load is empty, never partially filled.
type Dataset struct {
	Titles      []Title
	Reviews     []Review
	BoxOffice   []BoxOffice
	Connections []Connection
	LoadedAt    time.Time
}

// Empty reports whether the dataset carries no catalog entries.
func (d Dataset) Empty() bool { return len(d.Titles) == 0 }

// TitleByID returns the catalog entry with the given id.
func (d Dataset) TitleByID(id string) (Title, bool) {
	for _, t := range d.Titles {
		if t.ID == id {
			return t, true
		}
	}
	return Title{}, false
}
