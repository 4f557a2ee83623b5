package stats

import (
	"bytes"
	"context"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
)

// ChartImage is one rendered PNG of the graphical report.
type ChartImage struct {
	Title string
	PNG   []byte
}

// Charts renders the graphical statistics as a sequence of PNG
// images, one per series. Empty series are skipped.
func (r *Reporter) Charts(ctx context.Context) ([]ChartImage, error) {
	weekly, err := r.weekdayCounts(ctx)
	if err != nil {
		return nil, err
	}
	hourly, err := r.slotPopularity(ctx, 10)
	if err != nil {
		return nil, err
	}
	fields, err := r.fieldPopularity(ctx)
	if err != nil {
		return nil, err
	}
	revenue, err := r.weeklyRevenue(ctx)
	if err != nil {
		return nil, err
	}
	monthly, err := r.monthlyTrend(ctx)
	if err != nil {
		return nil, err
	}

	var images []ChartImage
	for _, series := range []struct {
		title string
		data  []labelValue
		line  bool
	}{
		{"Hafta kunlari", weekly, false},
		{"TOP vaqtlar", hourly, false},
		{"Maydonlar", fields, false},
		{"Haftalik daromad (ming)", revenue, false},
		{"6 oylik trend", monthly, true},
	} {
		if empty(series.data) {
			continue
		}
		var png []byte
		var err error
		if series.line {
			png, err = renderLine(series.title, series.data)
		} else {
			png, err = renderBars(series.title, series.data)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to render %q: %w", series.title, err)
		}
		images = append(images, ChartImage{Title: series.title, PNG: png})
	}
	return images, nil
}

func empty(data []labelValue) bool {
	for _, lv := range data {
		if lv.Value > 0 {
			return false
		}
	}
	return true
}

func renderBars(title string, data []labelValue) ([]byte, error) {
	bars := make([]chart.Value, 0, len(data))
	for _, lv := range data {
		bars = append(bars, chart.Value{Label: shortLabel(lv.Label), Value: float64(lv.Value)})
	}

	graph := chart.BarChart{
		Title:    title,
		Width:    720,
		Height:   420,
		BarWidth: 40,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderLine(title string, data []labelValue) ([]byte, error) {
	xs := make([]float64, len(data))
	ys := make([]float64, len(data))
	ticks := make([]chart.Tick, len(data))
	for i, lv := range data {
		xs[i] = float64(i)
		ys[i] = float64(lv.Value)
		ticks[i] = chart.Tick{Value: float64(i), Label: shortLabel(lv.Label)}
	}

	graph := chart.Chart{
		Title:  title,
		Width:  720,
		Height: 420,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 10},
		},
		XAxis: chart.XAxis{Ticks: ticks},
		Series: []chart.Series{
			chart.ContinuousSeries{XValues: xs, YValues: ys},
		},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// shortLabel trims long labels so the axis stays readable.
func shortLabel(s string) string {
	if len(s) > 11 {
		return s[:11]
	}
	return s
}
