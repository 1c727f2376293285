package engine

import "slices"

// ============================================================================
// VIEW POLICY — Which chart families and display modes a selection offers
// ============================================================================

// lineDefaultSpan is the year span from which a line chart becomes the default.
const lineDefaultSpan = 5

// ViewPolicy is the decision table outcome for one selection.
type ViewPolicy struct {
	EligibleChartTypes []ChartType `json:"eligibleChartTypes"`
	DefaultChart       ChartType   `json:"defaultChart"`
	// ChartType is the requested chart if eligible, else DefaultChart.
	ChartType   ChartType `json:"chartType"`
	ChartLocked bool      `json:"chartLocked"`

	DisplayModes []DisplayMode `json:"displayModes"`
	DisplayMode  DisplayMode   `json:"displayMode"`

	// Axis is the dimension rows are grouped by.
	Axis string `json:"axis"`

	// ReferenceOverlay adds the dashed yearly mean of the single selected chapter.
	ReferenceOverlay bool `json:"referenceOverlay"`
}

// Decide evaluates the view policy for a selection.
func Decide(sel Selection) ViewPolicy {
	var p ViewPolicy

	switch span := sel.YearRange.Span(); {
	case len(sel.Institutions) > 0:
		p.EligibleChartTypes = []ChartType{ChartBar}
		p.ChartLocked = true
	case sel.ViewMode == ViewAggregated || span <= 1:
		p.EligibleChartTypes = []ChartType{ChartBar}
	case span < lineDefaultSpan:
		p.EligibleChartTypes = []ChartType{ChartBar, ChartLine}
	default:
		p.EligibleChartTypes = []ChartType{ChartLine, ChartBar}
	}
	p.DefaultChart = p.EligibleChartTypes[0]
	p.ChartType = p.DefaultChart
	if p.Eligible(sel.ChartType) {
		p.ChartType = sel.ChartType
	}

	p.DisplayModes = []DisplayMode{sel.EffectiveDisplayMode()}
	p.DisplayMode = p.DisplayModes[0]

	p.Axis = decideAxis(sel, p.DisplayMode)
	p.ReferenceOverlay = len(sel.Topics) == 0 &&
		len(sel.Chapters) == 1 &&
		sel.ViewMode == ViewYearByYear &&
		p.DisplayMode == DisplayAverage
	return p
}

// Eligible reports whether c may be selected.
func (p ViewPolicy) Eligible(c ChartType) bool {
	return slices.Contains(p.EligibleChartTypes, c)
}

// OffersDisplay reports whether d may be selected.
func (p ViewPolicy) OffersDisplay(d DisplayMode) bool {
	return slices.Contains(p.DisplayModes, d)
}

func decideAxis(sel Selection, display DisplayMode) string {
	switch {
	case display == DisplayAverage:
		if len(sel.Topics) > 0 {
			return DimTopic
		}
		return DimChapter
	case len(sel.Institutions) > 0:
		return DimInstitution
	case sel.ViewMode == ViewAggregated:
		return DimTopic
	default:
		return DimParagraphTopic
	}
}
