// Package dataset loads the franchise CSV files from a directory, an
// embedded filesystem or an HTTP base URL.
package dataset

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/okian/marquee/internal/domain/model"
	"github.com/okian/marquee/pkg/logger"
	"github.com/okian/marquee/pkg/metrics"
)

// Loader reads every dataset file from a Source.
type Loader struct {
	src Source
	log logger.Logger
	now func() time.Time
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the logger. Defaults to a discarding logger.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// WithClock overrides the time source stamped on datasets.
func WithClock(now func() time.Time) Option {
	return func(ld *Loader) {
		if now != nil {
			ld.now = now
		}
	}
}

// NewLoader returns a Loader reading from src.
func NewLoader(src Source, opts ...Option) *Loader {
	ld := &Loader{src: src, log: logger.Discard(), now: time.Now}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Source returns the configured source.
func (l *Loader) Source() Source { return l.src }

func (l *Loader) open(ctx context.Context, file string, parse func(io.Reader) error) error {
	rc, err := l.src.Open(ctx, file)
	if err != nil {
		return fmt.Errorf("%s: %w", file, err)
	}
	defer func() { _ = rc.Close() }()
	return parse(rc)
}

// Titles loads movies and shows, sorted by release date then id.
func (l *Loader) Titles(ctx context.Context) ([]model.Title, error) {
	var all []model.Title
	var result *multierror.Error
	for _, f := range []struct {
		name string
		kind model.Kind
	}{{MoviesFile, model.KindMovie}, {ShowsFile, model.KindShow}} {
		var rows []model.Title
		err := l.open(ctx, f.name, func(r io.Reader) error {
			var err error
			rows, err = ParseTitles(r, f.name, f.kind)
			return err
		})
		l.record(ctx, f.name, len(rows), err)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}
		all = append(all, rows...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if !all[i].Released.Equal(all[j].Released) {
			return all[i].Released.Before(all[j].Released)
		}
		return all[i].ID < all[j].ID
	})
	return all, result.ErrorOrNil()
}

// Reviews loads the reviews file.
func (l *Loader) Reviews(ctx context.Context) ([]model.Review, error) {
	var rows []model.Review
	err := l.open(ctx, ReviewsFile, func(r io.Reader) error {
		var err error
		rows, err = ParseReviews(r, ReviewsFile)
		return err
	})
	l.record(ctx, ReviewsFile, len(rows), err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// BoxOffice loads the box office file.
func (l *Loader) BoxOffice(ctx context.Context) ([]model.BoxOffice, error) {
	var rows []model.BoxOffice
	err := l.open(ctx, BoxOfficeFile, func(r io.Reader) error {
		var err error
		rows, err = ParseBoxOffice(r, BoxOfficeFile)
		return err
	})
	l.record(ctx, BoxOfficeFile, len(rows), err)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// LoadAll loads every file independently. A file that fails leaves its
// collection empty; the failures are returned together and the dataset is
// still usable. Connections are not resolved here.
func (l *Loader) LoadAll(ctx context.Context) (model.Dataset, error) {
	var result *multierror.Error
	ds := model.Dataset{}

	titles, err := l.Titles(ctx)
	if err != nil {
		result = multierror.Append(result, err)
	}
	ds.Titles = titles

	if ds.Reviews, err = l.Reviews(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	if ds.BoxOffice, err = l.BoxOffice(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	ds.LoadedAt = l.now()

	if ctx.Err() != nil {
		return ds, multierror.Append(result, ctx.Err()).ErrorOrNil()
	}
	return ds, result.ErrorOrNil()
}

func (l *Loader) record(ctx context.Context, file string, rows int, err error) {
	if err != nil {
		metrics.RecordDatasetLoad(file, "error")
		metrics.UpdateDatasetRows(file, 0)
		l.log.Warn(ctx, "dataset file skipped",
			logger.String("file", file),
			logger.String("origin", l.src.String()),
			logger.Error(err))
		return
	}
	metrics.RecordDatasetLoad(file, "ok")
	metrics.UpdateDatasetRows(file, rows)
	l.log.Debug(ctx, "dataset file loaded",
		logger.String("file", file),
		logger.Int("rows", rows))
}
