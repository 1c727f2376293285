package engine

import (
	"fmt"
	"strings"
)

// ============================================================================
// TEXT BUILDER — Graph description block
// ============================================================================

const (
	cautionTemplate    = "Results based on less than %d sentences may be less reliable."
	sourceNote         = "European Commission country reports for selected country and time span."
	interpretationNote = "These results reflect the EC's framing, not an objective measure of progress."
	attributionNote    = "ALIGN Prototype (2025), built on fake dataset for presentation purposes."
)

// BuildDescription summarises what the chart shows.
func BuildDescription(sel Selection, policy ViewPolicy, rowCount, threshold int) *Description {
	zero := "Excluded"
	if sel.IncludeZero {
		zero = "Included"
	}

	return &Description{
		TimeRange:          sel.YearRange.String(),
		DataType:           policy.DisplayMode.Label(),
		SelectedFilters:    describeFilters(sel),
		ZeroValue:          zero,
		GraphType:          fmt.Sprintf("%s (%s)", policy.ChartType.Label(), sel.ViewMode.Label()),
		Caution:            fmt.Sprintf(cautionTemplate, threshold),
		LowReliability:     rowCount < threshold,
		Source:             sourceNote,
		InterpretationNote: interpretationNote,
		Attribution:        attributionNote,
	}
}

func describeFilters(sel Selection) string {
	switch {
	case len(sel.Topics) > 0:
		return "Topics: " + strings.Join(sel.Topics, ", ")
	case len(sel.Institutions) > 0:
		return "Institutions: " + strings.Join(sel.Institutions, ", ")
	case len(sel.ParagraphTopics) > 0:
		return "Paragraph topics: " + strings.Join(sel.ParagraphTopics, ", ")
	case len(sel.Chapters) > 0:
		return "Chapters: " + strings.Join(sel.Chapters, ", ")
	default:
		return "None (all rows)"
	}
}

// Lines renders the description as label/value lines in display order.
func (d *Description) Lines() [][2]string {
	return [][2]string{
		{"Time Range", d.TimeRange},
		{"Data Type", d.DataType},
		{"Selected Filters", d.SelectedFilters},
		{"Zero-Value", d.ZeroValue},
		{"Graph Type", d.GraphType},
		{"Caution", d.Caution},
		{"Source", d.Source},
		{"Interpretation Note", d.InterpretationNote},
		{"Attribution", d.Attribution},
	}
}
