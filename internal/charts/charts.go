// Package charts renders the dashboard's PNG charts with gonum/plot.
package charts

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"district-dashboard/internal/models"
)

const (
	width  = 8 * vg.Inch
	height = 4 * vg.Inch
)

var (
	barColor    = color.RGBA{R: 70, G: 130, B: 180, A: 255}
	closedColor = color.RGBA{R: 150, G: 150, B: 150, A: 255}
	lineColor   = color.RGBA{R: 220, G: 90, B: 60, A: 255}
)

// Trend draws one value per quarter as a line, oldest quarter first.
func Trend(w io.Writer, title, yLabel string, history []models.QuarterRecord, value func(models.QuarterRecord) float64) error {
	if len(history) == 0 {
		return fmt.Errorf("trend chart: no quarters")
	}

	p := newPlot(title, "Quarter", yLabel)
	points := make(plotter.XYs, len(history))
	for i, r := range history {
		points[i] = plotter.XY{X: float64(i), Y: value(r)}
	}
	line, scatter, err := trendLine(points, lineColor)
	if err != nil {
		return fmt.Errorf("trend chart: %w", err)
	}

	p.Add(plotter.NewGrid(), line, scatter)
	p.NominalX(quarterLabels(history)...)
	p.Y.Min = 0

	return write(w, p)
}

// Stores draws the store count per quarter as a line over grouped bars of
// opened and closed stores.
func Stores(w io.Writer, title string, history []models.QuarterRecord) error {
	if len(history) == 0 {
		return fmt.Errorf("store chart: no quarters")
	}

	p := newPlot(title, "Quarter", "Stores")
	var (
		counts = make(plotter.XYs, len(history))
		opened = make(plotter.Values, len(history))
		closed = make(plotter.Values, len(history))
	)
	for i, r := range history {
		counts[i] = plotter.XY{X: float64(i), Y: r.StoreCount}
		opened[i] = r.OpenedStoreCount
		closed[i] = r.ClosedStoreCount
	}

	barWidth := vg.Points(14)
	openedBars, err := plotter.NewBarChart(opened, barWidth)
	if err != nil {
		return fmt.Errorf("store chart: %w", err)
	}
	openedBars.Color = barColor
	openedBars.LineStyle.Width = vg.Length(0)
	openedBars.Offset = -barWidth / 2

	closedBars, err := plotter.NewBarChart(closed, barWidth)
	if err != nil {
		return fmt.Errorf("store chart: %w", err)
	}
	closedBars.Color = closedColor
	closedBars.LineStyle.Width = vg.Length(0)
	closedBars.Offset = barWidth / 2

	line, scatter, err := trendLine(counts, lineColor)
	if err != nil {
		return fmt.Errorf("store chart: %w", err)
	}

	p.Add(plotter.NewGrid(), openedBars, closedBars, line, scatter)
	p.Legend.Add("Stores", line)
	p.Legend.Add("Opened", openedBars)
	p.Legend.Add("Closed", closedBars)
	p.Legend.Top = true
	p.NominalX(quarterLabels(history)...)
	p.Y.Min = 0

	return write(w, p)
}

// Timeslots draws one bar per timeslot.
func Timeslots(w io.Writer, title, yLabel string, values []float64) error {
	if len(values) != len(models.Timeslots) {
		return fmt.Errorf("timeslot chart: %d values, want %d", len(values), len(models.Timeslots))
	}

	p := newPlot(title, "Timeslot", yLabel)

	bars, err := plotter.NewBarChart(plotter.Values(values), vg.Points(36))
	if err != nil {
		return fmt.Errorf("timeslot chart: %w", err)
	}
	bars.Color = barColor
	bars.LineStyle.Width = vg.Length(0)

	labels := make([]string, len(models.Timeslots))
	for i, slot := range models.Timeslots {
		labels[i] = string(slot)
	}

	p.Add(plotter.NewGrid(), bars)
	p.NominalX(labels...)
	p.Y.Min = 0

	return write(w, p)
}

// Estimate draws the predicted sales of each timeslot.
func Estimate(w io.Writer, est *models.Estimate) error {
	values := make([]float64, len(est.Slots))
	for i, s := range est.Slots {
		values[i] = s.Sales
	}
	title := fmt.Sprintf("Predicted sales %s %dQ%d", est.Selection.AreaCode, est.Selection.Year, est.Selection.Quarter)
	return Timeslots(w, title, "Sales (KRW)", values)
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	return p
}

func trendLine(points plotter.XYs, c color.Color) (*plotter.Line, *plotter.Scatter, error) {
	line, scatter, err := plotter.NewLinePoints(points)
	if err != nil {
		return nil, nil, err
	}
	line.Color = c
	line.Width = vg.Points(2)
	scatter.Color = c
	scatter.GlyphStyle.Radius = vg.Points(3)
	return line, scatter, nil
}

func quarterLabels(history []models.QuarterRecord) []string {
	labels := make([]string, len(history))
	for i, r := range history {
		labels[i] = r.Period().String()
	}
	return labels
}

func write(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("render png: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
