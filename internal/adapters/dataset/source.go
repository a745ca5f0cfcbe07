package dataset

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// File names the loader reads.
const (
	MoviesFile    = "movies.csv"
	ShowsFile     = "shows.csv"
	ReviewsFile   = "reviews.csv"
	BoxOfficeFile = "box_office.csv"
)

// Files lists every dataset file in load order.
var Files = []string{MoviesFile, ShowsFile, ReviewsFile, BoxOfficeFile}

//go:embed sample/*.csv
var sampleFS embed.FS

// Sample returns the sample datasets compiled into the binary.
func Sample() fs.FS {
	sub, err := fs.Sub(sampleFS, "sample")
	if err != nil {
		panic(err) // the embed pattern guarantees the directory
	}
	return sub
}

// Source opens a named dataset file.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	String() string
}

// SampleLocation is the data_source value that selects the embedded data.
const SampleLocation = "embedded"

// NewSource picks a Source for a location: "embedded" (or empty) for the
// built-in sample, an http(s) URL for HTTPSource, anything else is a
// directory.
func NewSource(location string) Source {
	switch {
	case location == "" || location == SampleLocation:
		return FSSource{FS: Sample(), Name: SampleLocation}
	case strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://"):
		return NewHTTPSource(location)
	default:
		return DirSource{Dir: location}
	}
}

// DirSource reads files from a local directory.
type DirSource struct {
	Dir string
}

// Open implements Source.
func (s DirSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(filepath.Join(s.Dir, filepath.Base(name)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return f, nil
}

func (s DirSource) String() string { return "dir:" + s.Dir }

// FSSource reads files from any fs.FS.
type FSSource struct {
	FS   fs.FS
	Name string
}

// Open implements Source.
func (s FSSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := s.FS.Open(path.Clean(name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	return f, nil
}

func (s FSSource) String() string {
	if s.Name != "" {
		return "fs:" + s.Name
	}
	return "fs"
}

const defaultHTTPTimeout = 10 * time.Second

// HTTPSource fetches files relative to a base URL.
type HTTPSource struct {
	Base   string
	Client *http.Client
}

// NewHTTPSource returns an HTTPSource with a bounded client.
func NewHTTPSource(base string) HTTPSource {
	return HTTPSource{Base: base, Client: &http.Client{Timeout: defaultHTTPTimeout}}
}

// Open implements Source. Any non-2xx status is a fetch failure.
func (s HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	u, err := url.Parse(s.Base)
	if err != nil {
		return nil, fmt.Errorf("%w: base url: %v", ErrFetch, err)
	}
	u = u.JoinPath(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, u)
		}
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetch, u, resp.StatusCode)
	}
	return resp.Body, nil
}

func (s HTTPSource) String() string { return "http:" + s.Base }
