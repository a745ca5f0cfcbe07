package render

import (
	"image/color"
	"io"
	"math"
	"sort"
	"time"

	"github.com/hashicorp/go-multierror"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/okian/marquee/internal/domain/model"
)

var (
	budgetColor  = color.RGBA{R: 0x4e, G: 0x79, B: 0xa7, A: 0xff}
	revenueColor = color.RGBA{R: 0xe1, G: 0x57, B: 0x59, A: 0xff}
	ratingColor  = color.RGBA{R: 0x59, G: 0xa1, B: 0x4f, A: 0xff}
)

// RevenuePlot builds a grouped bar chart of budget against worldwide
// revenue, in millions, for the franchise releases in release order.
func RevenuePlot(ds model.Dataset) (*plot.Plot, error) {
	rows := make([]model.BoxOffice, 0, len(ds.BoxOffice))
	for _, b := range ds.BoxOffice {
		if b.IsMarvel {
			rows = append(rows, b)
		}
	}
	if len(rows) == 0 {
		return nil, ErrNothingToRender
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Released.Before(rows[j].Released) })

	budget := make(plotter.Values, len(rows))
	revenue := make(plotter.Values, len(rows))
	names := make([]string, len(rows))
	for i, r := range rows {
		budget[i] = r.Budget / 1e6
		revenue[i] = r.Revenue / 1e6
		names[i] = shortName(r.Title)
	}

	p := plot.New()
	p.Title.Text = "Budget vs revenue (USD millions)"
	p.Y.Label.Text = "USD (millions)"
	p.Y.Min = 0

	w := vg.Points(7)
	budgetBars, err := plotter.NewBarChart(budget, w)
	if err != nil {
		return nil, err
	}
	budgetBars.Color = budgetColor
	budgetBars.LineStyle.Width = 0
	budgetBars.Offset = -w / 2

	revenueBars, err := plotter.NewBarChart(revenue, w)
	if err != nil {
		return nil, err
	}
	revenueBars.Color = revenueColor
	revenueBars.LineStyle.Width = 0
	revenueBars.Offset = w / 2

	p.Add(budgetBars, revenueBars, plotter.NewGrid())
	p.Legend.Add("budget", budgetBars)
	p.Legend.Add("revenue", revenueBars)
	p.Legend.Top = true
	p.NominalX(names...)
	p.X.Tick.Label.Rotation = math.Pi / 3
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter
	return p, nil
}

// RatingsPlot builds a line of the average review rating per release year.
// Reviews join their title by name; unknown titles fall back to the review
// date.
func RatingsPlot(ds model.Dataset) (*plot.Plot, error) {
	released := make(map[string]time.Time, len(ds.Titles))
	for _, t := range ds.Titles {
		if _, ok := released[t.Name]; !ok {
			released[t.Name] = t.Released
		}
	}

	sums := map[int]float64{}
	counts := map[int]int{}
	for _, r := range ds.Reviews {
		at, ok := released[r.Title]
		if !ok {
			at = r.Date
		}
		sums[at.Year()] += r.Rating
		counts[at.Year()]++
	}
	if len(counts) == 0 {
		return nil, ErrNothingToRender
	}

	years := make([]int, 0, len(counts))
	for y := range counts {
		years = append(years, y)
	}
	sort.Ints(years)

	pts := make(plotter.XYs, len(years))
	for i, y := range years {
		pts[i].X = float64(y)
		pts[i].Y = sums[y] / float64(counts[y])
	}

	p := plot.New()
	p.Title.Text = "Average review rating by release year"
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Rating"
	p.Y.Min, p.Y.Max = 0, 10

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = ratingColor
	line.Width = vg.Points(2)

	dots, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	dots.Color = ratingColor
	dots.Shape = draw.CircleGlyph{}

	p.Add(plotter.NewGrid(), line, dots)
	return p, nil
}

func shortName(name string) string {
	const limit = 18
	r := []rune(name)
	if len(r) <= limit {
		return name
	}
	return string(r[:limit-1]) + "…"
}

// WritePlot encodes p as SVG at the given pixel size.
func WritePlot(p *plot.Plot, width, height float64, output io.Writer) error {
	w, err := p.WriterTo(vg.Points(width), vg.Points(height), "svg")
	if err != nil {
		return err
	}
	_, err = w.WriteTo(output)
	return err
}

// WriteClosePlot writes p and closes output, reporting both failures.
func WriteClosePlot(p *plot.Plot, width, height float64, output io.WriteCloser) (err error) {
	defer func() {
		err = combineErrors(err, output.Close())
	}()
	return WritePlot(p, width, height, output)
}

func combineErrors(errs ...error) (err error) {
	for _, e := range errs {
		switch {
		case e == nil:
		case err == nil:
			err = e
		default:
			err = multierror.Append(err, e)
		}
	}
	return err
}
