package engine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// AGGREGATION + CHART BUILDING
// ============================================================================

var ignoreViews = cmpopts.IgnoreFields(Group{}, "View")

func build(t *testing.T, in SelectionInput) (Selection, ViewPolicy, []Group, *ChartConfig) {
	t.Helper()
	sel := mustSelection(in)
	filtered, err := Resolve(scenarioView(), sel)
	require.NoError(t, err)

	policy := Decide(sel)
	groups := Aggregate(filtered, policy, sel)
	var reference []Group
	if policy.ReferenceOverlay {
		reference = YearlyMean(filtered)
	}
	return sel, policy, groups, BuildChart(policy, sel, groups, reference)
}

func TestScenario_SingleChapterOverlay(t *testing.T) {
	_, policy, _, chart := build(t, SelectionInput{
		YearStart: 2018,
		YearEnd:   2021,
		Chapters:  []string{democracy},
		ViewMode:  string(ViewYearByYear),
	})

	assert.Equal(t, DimChapter, policy.Axis)
	assert.True(t, policy.ReferenceOverlay)

	want := &ChartConfig{
		ChartType: ChartBar,
		Title:     "Average Evaluation by Chapter, 2018–2021",
		XAxis:     "Year",
		YAxis:     "Avg Score",
		Series: []ChartSeries{
			{
				Name:  democracy,
				Color: defaultColors[0],
				// 2018 averages 1 and -1; the neutral sentence is excluded.
				Data: []ChartPoint{
					{Label: "2018", Value: 0, Count: 2},
					{Label: "2019", Value: 2, Count: 1},
					{Label: "2020", Value: -2, Count: 1},
					{Label: "2021", Value: 1, Count: 1},
				},
			},
			{
				Name:      "democracy_section avg",
				Color:     referenceColor,
				Dashed:    true,
				Reference: true,
				Data: []ChartPoint{
					{Label: "2018", Value: 0, Count: 2},
					{Label: "2019", Value: 2, Count: 1},
					{Label: "2020", Value: -2, Count: 1},
					{Label: "2021", Value: 1, Count: 1},
				},
			},
		},
		Colors:     []string{defaultColors[0], referenceColor},
		ShowLegend: true,
		ShowGrid:   true,
		ZeroLine:   true,
	}
	if diff := cmp.Diff(want, chart); diff != "" {
		t.Errorf("chart mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_YearByYearTopics(t *testing.T) {
	_, _, _, chart := build(t, SelectionInput{
		YearStart:    2018,
		YearEnd:      2019,
		ManualTopics: []string{"parliament", "elections"},
		IncludeZero:  true,
	})

	want := []ChartSeries{
		{Name: "elections", Color: defaultColors[0], Data: []ChartPoint{
			{Label: "2018", Value: 1, Count: 1},
			{Label: "2019", Value: 0, Count: 1},
		}},
		{Name: "parliament", Color: defaultColors[1], Data: []ChartPoint{
			{Label: "2018", Value: -0.5, Count: 2},
		}},
	}
	if diff := cmp.Diff(want, chart.Series); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, ChartBar, chart.ChartType)
}

func TestAggregate_AggregatedAverageSortedDescending(t *testing.T) {
	_, policy, groups, chart := build(t, SelectionInput{ViewMode: string(ViewAggregated)})

	want := []Group{
		{Key: judiciary, Label: judiciary, Value: 1, Count: 1},
		{Key: democracy, Label: democracy, Value: 4.0 / 7.0, Count: 7},
		{Key: justice, Label: justice, Value: -1, Count: 1},
	}
	if diff := cmp.Diff(want, groups, ignoreViews); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, DimChapter, policy.Axis)
	assert.Equal(t, "Chapter", chart.XAxis)
	require.Len(t, chart.Series, 3)
	assert.Equal(t, 0.57, chart.Series[1].Data[0].Value)
	assert.False(t, chart.ZeroLine)
}

func TestAggregate_AggregatedCountByTopic(t *testing.T) {
	_, policy, groups, _ := build(t, SelectionInput{
		ParagraphTopics: []string{"voting"},
		ViewMode:        string(ViewAggregated),
	})

	assert.Equal(t, DimTopic, policy.Axis)
	want := []Group{
		{Key: "civil_societies", Label: "civil_societies", Value: 1, Count: 1},
		{Key: "elections", Label: "elections", Value: 5, Count: 5},
	}
	if diff := cmp.Diff(want, groups, ignoreViews); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_YearByYearCountByParagraphTopic(t *testing.T) {
	_, policy, _, chart := build(t, SelectionInput{
		YearStart:       2018,
		YearEnd:         2020,
		ParagraphTopics: []string{"voting", "oversight"},
	})

	assert.Equal(t, DimParagraphTopic, policy.Axis)
	assert.Equal(t, "Sentence Count", chart.YAxis)
	assert.False(t, chart.ZeroLine)

	want := []ChartSeries{
		{Name: "oversight", Color: defaultColors[0], Data: []ChartPoint{
			{Label: "2018", Value: 2, Count: 2},
		}},
		{Name: "voting", Color: defaultColors[1], Data: []ChartPoint{
			{Label: "2018", Value: 1, Count: 1},
			{Label: "2019", Value: 1, Count: 1},
			{Label: "2020", Value: 1, Count: 1},
		}},
	}
	if diff := cmp.Diff(want, chart.Series); diff != "" {
		t.Errorf("series mismatch (-want +got):\n%s", diff)
	}
}

func TestAggregate_Institutions(t *testing.T) {
	_, _, groups, chart := build(t, SelectionInput{Institutions: []string{"EC"}})

	want := []Group{
		{Key: "EC", Label: "EC", Value: 8, Count: 8},
		{Key: "EP", Label: "EP", Value: 3, Count: 3},
	}
	if diff := cmp.Diff(want, groups, ignoreViews); diff != "" {
		t.Errorf("groups mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, "Count of Evaluated Sentences by Institution, 2016–2021", chart.Title)
	assert.Equal(t, "Institution", chart.XAxis)
	assert.Equal(t, ChartBar, chart.ChartType)
	require.Len(t, chart.Series, 2)
	assert.NotEqual(t, chart.Series[0].Color, chart.Series[1].Color, "one color per institution")
}

func TestAggregate_Idempotent(t *testing.T) {
	inputs := []SelectionInput{
		{},
		{Chapters: []string{democracy}},
		{ViewMode: string(ViewAggregated)},
		{Institutions: []string{"EC", "EP"}},
		{ParagraphTopics: []string{"voting"}, IncludeZero: true},
	}
	for _, in := range inputs {
		sel := mustSelection(in)
		filtered, err := Resolve(scenarioView(), sel)
		require.NoError(t, err)
		policy := Decide(sel)

		first := BuildChart(policy, sel, Aggregate(filtered, policy, sel), YearlyMean(filtered))
		second := BuildChart(policy, sel, Aggregate(filtered, policy, sel), YearlyMean(filtered))
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("aggregation not idempotent for %+v:\n%s", in, diff)
		}
	}
}

func TestBuildChart_NoGroups(t *testing.T) {
	assert.Nil(t, BuildChart(ViewPolicy{}, Selection{}, nil, nil))
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "Paragraph topic", LabelForDimension(DimParagraphTopic))
	assert.Equal(t, "Avg Score", LabelForAggregation(AggAvg))
	assert.Equal(t, "1,234,567", FormatInt(1234567))
	assert.Equal(t, "2.5", FormatNumber(2.5))
	assert.Equal(t, "-3", FormatNumber(-3))
}
