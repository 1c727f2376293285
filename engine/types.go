package engine

// ============================================================================
// ALIGN ENGINE TYPES
// ============================================================================
// Dimension keys, selection enums, render-ready output.
// The engine reads rows through RecordView and never owns the dataset.
// ============================================================================

// Dimension and measure keys exposed by every dataset view.
const (
	DimYear           = "year"
	DimInstitution    = "institution"
	DimChapter        = "chapter"
	DimTopic          = "topic"
	DimParagraphTopic = "paragraph_topic"

	MeasureValue = "value"
)

// ============================================================================
// RECORD — Generic data row
// ============================================================================

// Record is a single data row with string dimensions and numeric measures.
// Datasets usually bind typed rows through DomainAdapter instead.
type Record struct {
	Dimensions map[string]string  `json:"dimensions"`
	Measures   map[string]float64 `json:"measures"`
}

// ============================================================================
// SELECTION ENUMS
// ============================================================================

// ViewMode selects between a per-year breakdown and one aggregate per category.
type ViewMode string

const (
	ViewYearByYear ViewMode = "year_by_year"
	ViewAggregated ViewMode = "aggregated"
)

// Label returns the sidebar label.
func (m ViewMode) Label() string {
	if m == ViewAggregated {
		return "Aggregated"
	}
	return "Year-by-Year"
}

// DisplayMode selects the plotted quantity.
type DisplayMode string

const (
	DisplayAverage DisplayMode = "average_evaluation"
	DisplayCount   DisplayMode = "count_of_sentences"
)

// Label returns the sidebar label.
func (d DisplayMode) Label() string {
	if d == DisplayCount {
		return "Count of Evaluated Sentences"
	}
	return "Average Evaluation"
}

// ChartType is the chart family.
type ChartType string

const (
	ChartBar  ChartType = "bar"
	ChartLine ChartType = "line"
)

// Label returns the sidebar label.
func (c ChartType) Label() string {
	if c == ChartLine {
		return "Line chart"
	}
	return "Bar chart"
}

// ============================================================================
// RESULT — Render-ready output of one cycle
// ============================================================================

// Result types.
const (
	ResultChart = "chart"
	ResultEmpty = "empty"
)

// Result is the engine's render-ready output for one render cycle.
type Result struct {
	Success bool   `json:"success"`
	Type    string `json:"type"` // "chart" or "empty"
	Reply   string `json:"reply,omitempty"`

	// Selection carries the effective display mode and chart type.
	Selection   Selection    `json:"selection"`
	Policy      *ViewPolicy  `json:"policy,omitempty"`
	ChartConfig *ChartConfig `json:"chartConfig,omitempty"`
	Description *Description `json:"description,omitempty"`
	RowCount    int          `json:"rowCount"`

	// Rows is the filtered view the chart was built from (CSV export source).
	Rows RecordView `json:"-"`
}

// ============================================================================
// GROUP — Intermediate computation result
// ============================================================================

// Group represents a grouped/aggregated result.
type Group struct {
	Key       string     `json:"key"`
	Label     string     `json:"label"`
	Value     float64    `json:"value"`
	Count     int        `json:"count"`
	SubGroups []Group    `json:"subGroups,omitempty"`
	View      RecordView `json:"-"`
}

// ============================================================================
// CHART TYPES
// ============================================================================

// ChartConfig defines how to render a chart.
type ChartConfig struct {
	ChartType  ChartType     `json:"chartType"`
	Title      string        `json:"title"`
	XAxis      string        `json:"xAxis,omitempty"`
	YAxis      string        `json:"yAxis,omitempty"`
	Series     []ChartSeries `json:"series"`
	Colors     []string      `json:"colors,omitempty"`
	ShowLegend bool          `json:"showLegend"`
	ShowGrid   bool          `json:"showGrid"`

	// ZeroLine draws a neutral baseline at value 0.
	ZeroLine bool `json:"zeroLine"`

	// LowReliability is advisory: fewer underlying rows than the threshold.
	LowReliability bool `json:"lowReliability"`
	RowCount       int  `json:"rowCount"`
}

// ChartSeries represents a data series in a chart.
type ChartSeries struct {
	Name   string       `json:"name"`
	Data   []ChartPoint `json:"data"`
	Color  string       `json:"color,omitempty"`
	Dashed bool         `json:"dashed,omitempty"`

	// Reference marks an overlay that is always drawn as a line.
	Reference bool `json:"reference,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Count int     `json:"count"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Title   string     `json:"title"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
	Summary *Summary   `json:"summary,omitempty"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}

// Summary is a footer line for a table.
type Summary struct {
	Label  string            `json:"label"`
	Values map[string]string `json:"values,omitempty"`
}

// ============================================================================
// DESCRIPTION — Graph description block
// ============================================================================

// Description is the text block shown under the chart.
type Description struct {
	TimeRange          string `json:"timeRange"`
	DataType           string `json:"dataType"`
	SelectedFilters    string `json:"selectedFilters"`
	ZeroValue          string `json:"zeroValue"`
	GraphType          string `json:"graphType"`
	Caution            string `json:"caution"`
	LowReliability     bool   `json:"lowReliability"`
	Source             string `json:"source"`
	InterpretationNote string `json:"interpretationNote"`
	Attribution        string `json:"attribution"`
}
