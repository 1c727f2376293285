package export

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/reformtrack/align/engine"
)

var dims = []string{engine.DimYear, engine.DimInstitution, engine.DimChapter, engine.DimTopic, engine.DimParagraphTopic}

func record(year, topic string, value float64) engine.Record {
	return engine.Record{
		Dimensions: map[string]string{
			engine.DimYear:           year,
			engine.DimInstitution:    "EC",
			engine.DimChapter:        "democracy_section",
			engine.DimTopic:          topic,
			engine.DimParagraphTopic: "voting, turnout",
		},
		Measures: map[string]float64{engine.MeasureValue: value},
	}
}

func TestCSV(t *testing.T) {
	view := engine.NewSliceView([]engine.Record{
		record("2019", "elections", 1),
		record("2020", "parliament", -0.5),
	}, dims, []string{engine.MeasureValue})

	out, err := CSV(view)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "year,institution,chapter,topic,paragraph_topic,value", lines[0])
	assert.Equal(t, `2019,EC,democracy_section,elections,"voting, turnout",1`, lines[1])
	assert.Equal(t, `2020,EC,democracy_section,parliament,"voting, turnout",-0.5`, lines[2])
}

func TestCSV_EmptyViewWritesHeader(t *testing.T) {
	view := engine.NewSliceView(nil, dims, []string{engine.MeasureValue})
	out, err := CSV(view)
	require.NoError(t, err)
	assert.Equal(t, "year,institution,chapter,topic,paragraph_topic,value\n", string(out))
}

func sampleChart(kind engine.ChartType) *engine.ChartConfig {
	return &engine.ChartConfig{
		ChartType:  kind,
		Title:      "Average Evaluation by Topic and Year",
		XAxis:      "Year",
		YAxis:      "Avg Score",
		ShowLegend: true,
		ShowGrid:   true,
		ZeroLine:   true,
		Series: []engine.ChartSeries{
			{Name: "elections", Color: "#4285F4", Data: []engine.ChartPoint{
				{Label: "2019", Value: 0.5}, {Label: "2018", Value: -1.25},
			}},
			{Name: "democracy_section avg", Color: "#888888", Dashed: true, Reference: true, Data: []engine.ChartPoint{
				{Label: "2018", Value: -0.5}, {Label: "2019", Value: 0.25},
			}},
		},
	}
}

func TestSVG_Line(t *testing.T) {
	out, err := SVG(sampleChart(engine.ChartLine), SVGOptions{})
	require.NoError(t, err)
	svg := string(out)

	assert.Contains(t, svg, "<svg")
	assert.Contains(t, svg, "</svg>")
	assert.Contains(t, svg, "Average Evaluation by Topic and Year")
	assert.Contains(t, svg, "democracy_section avg", "legend lists the reference")
	assert.Contains(t, svg, "stroke-dasharray", "reference series is dashed")
	require.Contains(t, svg, ">2018<")
	assert.Less(t, strings.Index(svg, ">2018<"), strings.Index(svg, ">2019<"), "year ticks sorted")
}

func TestNewChart_Bar(t *testing.T) {
	cfg := sampleChart(engine.ChartBar)
	cfg.LowReliability = true

	ch, err := newChart(cfg, SVGOptions{Width: 640, Height: 400})
	require.NoError(t, err)
	assert.Equal(t, 640, ch.Width)
	assert.Equal(t, 400, ch.Height)
	assert.Equal(t, []chart.Tick{{Value: 0, Label: "2018"}, {Value: 1, Label: "2019"}}, ch.XAxis.Ticks)

	require.Len(t, ch.Series, 2)
	bars, ok := ch.Series[0].(*barSeries)
	require.True(t, ok)
	assert.Equal(t, "elections", bars.GetName())
	assert.NoError(t, bars.Validate())

	ref, ok := ch.Series[1].(chart.ContinuousSeries)
	require.True(t, ok, "reference stays a line on bar charts")
	assert.Equal(t, []float64{0, 1}, ref.XValues)
	assert.Equal(t, []float64{-0.5, 0.25}, ref.YValues)
	assert.Equal(t, []float64{6, 4}, ref.Style.StrokeDashArray)
	assert.Len(t, ch.Elements, 3, "legend, zero line and caption")

	out, err := SVG(cfg, SVGOptions{Width: 640, Height: 400})
	require.NoError(t, err)
	assert.Contains(t, string(out), LowReliabilityCaption)
}

func TestNewChart_LineSeriesFollowSlots(t *testing.T) {
	ch, err := newChart(sampleChart(engine.ChartLine), SVGOptions{})
	require.NoError(t, err)
	require.Len(t, ch.Series, 2)

	line, ok := ch.Series[0].(chart.ContinuousSeries)
	require.True(t, ok)
	assert.Equal(t, []float64{0, 1}, line.XValues)
	assert.Equal(t, []float64{-1.25, 0.5}, line.YValues, "points reordered by year")
	assert.Empty(t, line.Style.StrokeDashArray)
	assert.Equal(t, DefaultWidth, ch.Width)
}

func TestSlotLabels(t *testing.T) {
	years := []engine.ChartSeries{
		{Data: []engine.ChartPoint{{Label: "2020"}, {Label: "2018"}}},
		{Data: []engine.ChartPoint{{Label: "2019"}, {Label: "2018"}}},
	}
	assert.Equal(t, []string{"2018", "2019", "2020"}, slotLabels(years))

	categories := []engine.ChartSeries{
		{Data: []engine.ChartPoint{{Label: "judiciary"}}},
		{Data: []engine.ChartPoint{{Label: "democracy"}}},
	}
	assert.Equal(t, []string{"judiciary", "democracy"}, slotLabels(categories), "categories keep their order")
}

func TestValueBounds(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		lo, hi float64
	}{
		{"mixed signs", []float64{-1.25, 0.5}, -1.425, 0.675},
		{"counts", []float64{2, 4}, 0, 4.4},
		{"all zero", []float64{0}, 0, 1.1},
		{"all negative", []float64{-2, -1}, -2.2, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var points []engine.ChartPoint
			for _, v := range tt.values {
				points = append(points, engine.ChartPoint{Value: v})
			}
			lo, hi := valueBounds([]engine.ChartSeries{{Data: points}})
			assert.InDelta(t, tt.lo, lo, 1e-9)
			assert.InDelta(t, tt.hi, hi, 1e-9)
		})
	}
}

func TestBarLayout(t *testing.T) {
	series := []engine.ChartSeries{
		{Name: "a", Data: []engine.ChartPoint{{Label: "2018", Value: 1}, {Label: "2019", Value: 2}}},
		{Name: "b", Data: []engine.ChartPoint{{Label: "2019", Value: -1}}},
		{Name: "avg", Reference: true, Data: []engine.ChartPoint{{Label: "2018"}, {Label: "2019"}}},
	}
	slot := map[string]int{"2018": 0, "2019": 1}

	got := barLayout(series, slot)
	want := map[int][]bar{
		0: {{slot: 0, index: 0, of: 1, value: 1}, {slot: 1, index: 0, of: 2, value: 2}},
		1: {{slot: 1, index: 1, of: 2, value: -1}},
	}
	assert.Equal(t, want, got)
}

func TestSVG_NoChart(t *testing.T) {
	_, err := SVG(nil, SVGOptions{})
	assert.Error(t, err)
	_, err = SVG(&engine.ChartConfig{}, SVGOptions{})
	assert.Error(t, err)
}

func TestDetectRenderer_Disabled(t *testing.T) {
	c := DetectRenderer(RendererOptions{Disabled: true})
	assert.False(t, c.Available())

	_, err := c.PNG(context.Background(), sampleChart(engine.ChartBar))
	require.ErrorIs(t, err, ErrExportUnavailable)

	var ue *UnavailableError
	require.True(t, errors.As(err, &ue))
	assert.NotEmpty(t, ue.Hint)
	assert.NoError(t, c.Close())
}

func TestDetectRenderer_MissingBinary(t *testing.T) {
	c := DetectRenderer(RendererOptions{BrowserBin: filepath.Join(t.TempDir(), "chromium")})
	st := c.Status()
	assert.False(t, st.Available)
	assert.Contains(t, st.Reason, "not found")
	assert.Equal(t, InstallHint, st.Hint)
}

type stubRenderer struct {
	calls  int
	closed int
}

func (s *stubRenderer) Render(_ context.Context, cfg *engine.ChartConfig) ([]byte, error) {
	s.calls++
	return []byte("png:" + cfg.Title), nil
}

func (s *stubRenderer) Close() error {
	s.closed++
	return nil
}

func TestCapability_Render(t *testing.T) {
	stub := &stubRenderer{}
	c := NewCapability(stub)
	require.True(t, c.Status().Available)

	out, err := c.PNG(context.Background(), &engine.ChartConfig{Title: "t"})
	require.NoError(t, err)
	assert.Equal(t, "png:t", string(out))

	_, err = c.PNG(context.Background(), nil)
	assert.Error(t, err)
	assert.Equal(t, 1, stub.calls)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, 1, stub.closed)
}
