package engine

import (
	"fmt"
	"sort"
)

// ============================================================================
// CHART BUILDER — Produces ChartConfig from ViewPolicy + Groups
// ============================================================================

// Default color palette for chart series.
var defaultColors = []string{
	"#4F46E5", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#EC4899", "#84CC16", "#F97316", "#6366F1",
}

// referenceColor is used for the dashed chapter average overlay.
const referenceColor = "#888888"

// BuildChart produces a ChartConfig from aggregated groups.
// reference holds the yearly mean groups for the overlay and may be nil.
func BuildChart(policy ViewPolicy, sel Selection, groups []Group, reference []Group) *ChartConfig {
	if len(groups) == 0 {
		return nil
	}

	agg := aggregationFor(policy.DisplayMode)
	config := &ChartConfig{
		ChartType:  policy.ChartType,
		Title:      chartTitle(policy, sel),
		YAxis:      LabelForAggregation(agg),
		ShowLegend: true,
		ShowGrid:   true,
	}

	if len(sel.Institutions) == 0 && sel.ViewMode == ViewYearByYear {
		config.XAxis = LabelForDimension(DimYear)
		config.Series = buildMultiSeries(groups)
		config.ZeroLine = agg == AggAvg
	} else {
		config.XAxis = LabelForDimension(policy.Axis)
		config.Series = buildCategorySeries(groups)
	}

	if policy.ReferenceOverlay && len(reference) > 0 && len(sel.Chapters) == 1 {
		config.Series = append(config.Series, buildReferenceSeries(reference, sel.Chapters[0]+" avg"))
	}

	config.Colors = make([]string, len(config.Series))
	for i, s := range config.Series {
		config.Colors[i] = s.Color
	}
	return config
}

func chartTitle(policy ViewPolicy, sel Selection) string {
	title := fmt.Sprintf("%s by %s", policy.DisplayMode.Label(), LabelForDimension(policy.Axis))
	if len(sel.Institutions) > 0 {
		title = fmt.Sprintf("%s by %s", DisplayCount.Label(), LabelForDimension(DimInstitution))
	}
	return fmt.Sprintf("%s, %s", title, sel.YearRange)
}

// ============================================================================
// SERIES BUILDERS
// ============================================================================

// buildMultiSeries turns year groups with axis sub-groups into one series per
// axis value. A series only has points for the years it has rows in.
func buildMultiSeries(groups []Group) []ChartSeries {
	var subKeys []string
	seen := make(map[string]bool)
	for _, g := range groups {
		for _, sg := range g.SubGroups {
			if !seen[sg.Key] {
				seen[sg.Key] = true
				subKeys = append(subKeys, sg.Key)
			}
		}
	}
	sort.Strings(subKeys)

	points := make(map[string][]ChartPoint, len(subKeys))
	for _, g := range groups {
		for _, sg := range g.SubGroups {
			points[sg.Key] = append(points[sg.Key], ChartPoint{
				Label: g.Label,
				Value: RoundTo2(sg.Value),
				Count: sg.Count,
			})
		}
	}

	series := make([]ChartSeries, 0, len(subKeys))
	for i, key := range subKeys {
		series = append(series, ChartSeries{
			Name:  key,
			Data:  points[key],
			Color: defaultColors[i%len(defaultColors)],
		})
	}
	return series
}

// buildCategorySeries gives every category its own series and color.
func buildCategorySeries(groups []Group) []ChartSeries {
	series := make([]ChartSeries, 0, len(groups))
	for i, g := range groups {
		series = append(series, ChartSeries{
			Name: g.Label,
			Data: []ChartPoint{{
				Label: g.Label,
				Value: RoundTo2(g.Value),
				Count: g.Count,
			}},
			Color: defaultColors[i%len(defaultColors)],
		})
	}
	return series
}

func buildReferenceSeries(groups []Group, name string) ChartSeries {
	points := make([]ChartPoint, 0, len(groups))
	for _, g := range groups {
		points = append(points, ChartPoint{
			Label: g.Label,
			Value: RoundTo2(g.Value),
			Count: g.Count,
		})
	}
	return ChartSeries{
		Name:      name,
		Data:      points,
		Color:     referenceColor,
		Dashed:    true,
		Reference: true,
	}
}
