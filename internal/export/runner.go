package export

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/okian/marquee/internal/adapters/render"
	service "github.com/okian/marquee/internal/app"
	"github.com/okian/marquee/internal/domain/types"
	"github.com/okian/marquee/pkg/logger"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o644
)

// Report lists what an export produced.
type Report struct {
	Written    []string      `json:"written"`
	Skipped    []string      `json:"skipped,omitempty"`
	Titles     int           `json:"titles"`
	Dropped    int           `json:"dropped"`
	LoadErrors []string      `json:"load_errors,omitempty"`
	Duration   time.Duration `json:"duration"`
}

// Run loads the dataset once and writes every requested chart. A chart with
// nothing to draw is skipped; write failures are collected and returned
// together after every chart has been tried.
func Run(ctx context.Context, cfg Config, log logger.Logger) (Report, error) {
	started := time.Now()
	var report Report

	if err := cfg.Validate(); err != nil {
		return report, err
	}
	if err := os.MkdirAll(cfg.OutDir, directoryPermission); err != nil {
		return report, fmt.Errorf("export: create out dir: %w", err)
	}

	svc := service.New(
		service.WithLogger(log),
		service.WithDataSource(cfg.DataSource),
		service.WithAnnotationsFile(cfg.AnnotationsFile),
		service.WithViewport(cfg.Width, cfg.Height),
	)
	defer func() { _ = svc.Stop(context.Background()) }()
	if err := svc.Start(ctx); err != nil {
		return report, fmt.Errorf("export: %w", err)
	}

	snap, err := svc.Snapshot(ctx)
	if err != nil {
		return report, fmt.Errorf("export: %w", err)
	}
	report.Titles = len(snap.Dataset.Titles)
	report.Dropped = len(snap.Dropped)

	log.Info(ctx, "exporting charts",
		logger.String("out", cfg.OutDir),
		logger.Int("titles", report.Titles),
		logger.Float64("width", cfg.Width),
		logger.Float64("height", cfg.Height))

	q := types.ChartQuery{Width: cfg.Width, Height: cfg.Height, Hover: cfg.Hover, Pinned: cfg.Pinned}

	var result *multierror.Error
	for _, chart := range cfg.charts() {
		var buf bytes.Buffer
		err := svc.RenderChart(ctx, chart, q, &buf)
		if errors.Is(err, render.ErrNothingToRender) {
			log.Warn(ctx, "nothing to render", logger.String("chart", chart))
			report.Skipped = append(report.Skipped, chart)
			continue
		}
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", chart, err))
			continue
		}

		name := filepath.Join(cfg.OutDir, chart+".svg")
		if err := writeFile(name, &buf); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		report.Written = append(report.Written, name)

		if cfg.Layouts && slices.Contains(render.LayoutCharts, chart) {
			doc, err := svc.Layout(ctx, chart, q)
			if err != nil {
				result = multierror.Append(result, fmt.Errorf("%s layout: %w", chart, err))
				continue
			}
			name := filepath.Join(cfg.OutDir, chart+".json")
			if err := writeJSON(name, doc); err != nil {
				result = multierror.Append(result, err)
				continue
			}
			report.Written = append(report.Written, name)
		}
	}

	report.Duration = time.Since(started)
	log.Info(ctx, "export finished",
		logger.Int("written", len(report.Written)),
		logger.Int("skipped", len(report.Skipped)),
		logger.Duration("duration", report.Duration))
	return report, result.ErrorOrNil()
}

// writeFile copies r to name; a failed close is reported like a failed write.
func writeFile(name string, r io.Reader) (err error) {
	f, err := os.OpenFile(name, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePermission)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = multierror.Append(err, fmt.Errorf("close %s: %w", name, cerr)).ErrorOrNil()
		}
	}()
	if _, err := io.Copy(f, r); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

func writeJSON(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return writeFile(name, bytes.NewReader(append(data, '\n')))
}
