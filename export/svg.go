package export

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/reformtrack/align/engine"
)

// SVGOptions sets the canvas size.
type SVGOptions struct {
	Width  int
	Height int
}

// Default canvas size.
const (
	DefaultWidth  = 1000
	DefaultHeight = 560
)

// LowReliabilityCaption is printed on charts built from few rows.
const LowReliabilityCaption = "Low sample size: results may be less reliable"

var (
	gridColor    = drawing.ColorFromHex("E5E7EB")
	zeroColor    = drawing.ColorFromHex("888888")
	cautionColor = drawing.ColorFromHex("D9534F")
)

// SVG renders chart as a standalone SVG document.
func SVG(cfg *engine.ChartConfig, opts SVGOptions) ([]byte, error) {
	ch, err := newChart(cfg, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := ch.Render(chart.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render svg: %w", err)
	}
	return buf.Bytes(), nil
}

// ============================================================================
// LAYOUT — ChartConfig → go-chart
// ============================================================================
// Labels become integer slots on the x axis so bars and lines share one
// scale. Reference series are always lines, also on bar charts.
// ============================================================================

func newChart(cfg *engine.ChartConfig, opts SVGOptions) (*chart.Chart, error) {
	if cfg == nil || len(cfg.Series) == 0 {
		return nil, errors.New("no chart to render")
	}
	if opts.Width <= 0 {
		opts.Width = DefaultWidth
	}
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}

	labels := slotLabels(cfg.Series)
	slot := make(map[string]int, len(labels))
	ticks := make([]chart.Tick, len(labels))
	for i, l := range labels {
		slot[l] = i
		ticks[i] = chart.Tick{Value: float64(i), Label: l}
	}
	lo, hi := valueBounds(cfg.Series)

	ch := &chart.Chart{
		Title:  cfg.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 50, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{
			Name:  cfg.XAxis,
			Range: &chart.ContinuousRange{Min: -0.5, Max: float64(len(labels)) - 0.5},
			Ticks: ticks,
		},
		YAxis: chart.YAxis{
			Name:  cfg.YAxis,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
	}
	if cfg.ShowGrid {
		ch.YAxis.GridMajorStyle = chart.Style{StrokeColor: gridColor, StrokeWidth: 1}
	}

	bars := cfg.ChartType != engine.ChartLine
	layout := barLayout(cfg.Series, slot)
	for i, s := range cfg.Series {
		if len(s.Data) == 0 {
			continue
		}
		if bars && !s.Reference {
			ch.Series = append(ch.Series, &barSeries{
				name:   s.Name,
				color:  seriesColor(s.Color),
				bars:   layout[i],
				labels: integral(cfg.Series),
			})
			continue
		}
		ch.Series = append(ch.Series, lineSeries(s, slot))
	}

	if cfg.ShowLegend {
		ch.Elements = append(ch.Elements, chart.Legend(ch))
	}
	if cfg.ZeroLine && lo < 0 {
		ch.Elements = append(ch.Elements, zeroLine(lo, hi))
	}
	if cfg.LowReliability {
		ch.Elements = append(ch.Elements, caption(LowReliabilityCaption))
	}
	return ch, nil
}

// slotLabels lists the point labels in first-seen order. Year labels are
// sorted numerically.
func slotLabels(series []engine.ChartSeries) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, s := range series {
		for _, p := range s.Data {
			if !seen[p.Label] {
				seen[p.Label] = true
				labels = append(labels, p.Label)
			}
		}
	}
	if allNumeric(labels) {
		sort.SliceStable(labels, func(i, j int) bool {
			a, _ := strconv.Atoi(labels[i])
			b, _ := strconv.Atoi(labels[j])
			return a < b
		})
	}
	return labels
}

// valueBounds returns the value axis range: always including zero, padded
// by a tenth of the span on the sides that carry data.
func valueBounds(series []engine.ChartSeries) (float64, float64) {
	lo, hi := 0.0, 0.0
	for _, s := range series {
		for _, p := range s.Data {
			lo = math.Min(lo, p.Value)
			hi = math.Max(hi, p.Value)
		}
	}
	if hi == lo {
		hi = lo + 1
	}
	pad := (hi - lo) * 0.1
	if hi > 0 {
		hi += pad
	}
	if lo < 0 {
		lo -= pad
	}
	return lo, hi
}

func lineSeries(s engine.ChartSeries, slot map[string]int) chart.ContinuousSeries {
	points := append([]engine.ChartPoint(nil), s.Data...)
	sort.SliceStable(points, func(i, j int) bool { return slot[points[i].Label] < slot[points[j].Label] })

	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(slot[p.Label])
		ys[i] = p.Value
	}

	color := seriesColor(s.Color)
	style := chart.Style{
		StrokeColor: color,
		StrokeWidth: 2,
		DotColor:    color,
		DotWidth:    3,
	}
	if s.Dashed {
		style.StrokeWidth = 1.5
		style.StrokeDashArray = []float64{6, 4}
		style.DotWidth = 0
	}
	return chart.ContinuousSeries{Name: s.Name, XValues: xs, YValues: ys, Style: style}
}

// ============================================================================
// BARS
// ============================================================================

// bar is one rectangle: its slot, its position among the bars sharing the
// slot and its value.
type bar struct {
	slot  int
	index int
	of    int
	value float64
}

// barLayout assigns grouped positions to the bars of the non-reference
// series, keyed by series index.
func barLayout(series []engine.ChartSeries, slot map[string]int) map[int][]bar {
	perSlot := make(map[int]int)
	for _, s := range series {
		if s.Reference {
			continue
		}
		for _, p := range s.Data {
			perSlot[slot[p.Label]]++
		}
	}

	next := make(map[int]int)
	out := make(map[int][]bar)
	for i, s := range series {
		if s.Reference {
			continue
		}
		for _, p := range s.Data {
			n := slot[p.Label]
			out[i] = append(out[i], bar{slot: n, index: next[n], of: perSlot[n], value: p.Value})
			next[n]++
		}
	}
	return out
}

// barSeries draws grouped bars. Each slot is 80% filled and split evenly
// between the bars that share it.
type barSeries struct {
	name   string
	color  drawing.Color
	bars   []bar
	labels bool
}

func (b *barSeries) GetName() string           { return b.name }
func (b *barSeries) GetYAxis() chart.YAxisType { return chart.YAxisPrimary }

func (b *barSeries) GetStyle() chart.Style {
	return chart.Style{StrokeColor: b.color, FillColor: b.color, StrokeWidth: 1}
}

func (b *barSeries) Validate() error {
	if len(b.bars) == 0 {
		return fmt.Errorf("bar series %q has no values", b.name)
	}
	return nil
}

func (b *barSeries) Render(r chart.Renderer, box chart.Box, xrange, yrange chart.Range, defaults chart.Style) {
	slotWidth := float64(xrange.Translate(1) - xrange.Translate(0))
	for _, br := range b.bars {
		width := slotWidth * 0.8 / float64(br.of)
		center := float64(box.Left + xrange.Translate(float64(br.slot)))
		left := int(center - slotWidth*0.4 + width*float64(br.index))
		right := int(center - slotWidth*0.4 + width*float64(br.index+1))
		top := box.Bottom - yrange.Translate(math.Max(br.value, 0))
		bottom := box.Bottom - yrange.Translate(math.Min(br.value, 0))
		if bottom == top {
			bottom = top + 1
		}

		r.SetFillColor(b.color)
		r.SetStrokeColor(b.color)
		r.SetStrokeWidth(1)
		r.MoveTo(left, top)
		r.LineTo(right, top)
		r.LineTo(right, bottom)
		r.LineTo(left, bottom)
		r.LineTo(left, top)
		r.Close()
		r.FillStroke()
		r.ResetStyle()

		b.label(r, (left+right)/2, top-4, br.value, defaults)
	}
}

func (b *barSeries) label(r chart.Renderer, x, y int, v float64, defaults chart.Style) {
	text := strconv.FormatFloat(v, 'f', 2, 64)
	if b.labels {
		text = strconv.FormatFloat(v, 'f', 0, 64)
	}
	if defaults.Font != nil {
		r.SetFont(defaults.Font)
	}
	r.SetFontSize(8)
	r.SetFontColor(chart.ColorBlack)
	width := r.MeasureText(text).Width()
	r.Text(text, x-width/2, y)
	r.ResetStyle()
}

// ============================================================================
// OVERLAYS
// ============================================================================

// zeroLine marks the neutral value. lo and hi must match the y axis range.
func zeroLine(lo, hi float64) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, _ chart.Style) {
		yr := &chart.ContinuousRange{Min: lo, Max: hi, Domain: box.Height()}
		y := box.Bottom - yr.Translate(0)
		r.SetStrokeColor(zeroColor)
		r.SetStrokeWidth(0.5)
		r.MoveTo(box.Left, y)
		r.LineTo(box.Right, y)
		r.Stroke()
		r.ResetStyle()
	}
}

func caption(text string) chart.Renderable {
	return func(r chart.Renderer, box chart.Box, defaults chart.Style) {
		if defaults.Font != nil {
			r.SetFont(defaults.Font)
		}
		r.SetFontSize(10)
		r.SetFontColor(cautionColor)
		r.Text(text, box.Left+8, box.Bottom-8)
		r.ResetStyle()
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func seriesColor(hex string) drawing.Color {
	if hex == "" {
		return chart.ColorBlue
	}
	return drawing.ColorFromHex(strings.TrimPrefix(hex, "#"))
}

// integral reports whether every value is a whole number (counts).
func integral(series []engine.ChartSeries) bool {
	for _, s := range series {
		for _, p := range s.Data {
			if p.Value != math.Trunc(p.Value) {
				return false
			}
		}
	}
	return true
}

func allNumeric(labels []string) bool {
	if len(labels) == 0 {
		return false
	}
	for _, l := range labels {
		if _, err := strconv.Atoi(l); err != nil {
			return false
		}
	}
	return true
}
