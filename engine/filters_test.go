package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// FILTER RESOLVER
// ============================================================================

func TestResolve_YearRange(t *testing.T) {
	sel := mustSelection(SelectionInput{YearStart: 2018, YearEnd: 2019, IncludeZero: true})
	got, err := Resolve(scenarioView(), sel)
	require.NoError(t, err)
	assert.Equal(t, []string{"2018", "2018", "2018", "2019", "2019"}, dimColumn(got, DimYear))
}

func TestResolve_TopicsWinOverChapters(t *testing.T) {
	view := scenarioView()
	base := SelectionInput{ManualTopics: []string{"elections"}, IncludeZero: true}

	withChapters := base
	withChapters.Chapters = []string{justice}

	a, err := Resolve(view, mustSelection(base))
	require.NoError(t, err)
	b, err := Resolve(view, mustSelection(withChapters))
	require.NoError(t, err)

	assert.Equal(t, dimColumn(a, DimTopic), dimColumn(b, DimTopic))
	assert.Equal(t, 5, a.Len())
	for _, topic := range dimColumn(a, DimTopic) {
		assert.Equal(t, "elections", topic)
	}
}

func TestResolve_ParagraphTopicsBeforeChapters(t *testing.T) {
	sel := Selection{
		YearRange:       YearRange{Start: 2016, End: 2021},
		ParagraphTopics: []string{"borders"},
		Chapters:        []string{democracy},
		ViewMode:        ViewYearByYear,
	}
	got, err := Resolve(scenarioView(), sel)
	require.NoError(t, err)
	assert.Equal(t, []string{justice}, dimColumn(got, DimChapter))
}

func TestResolve_Chapters(t *testing.T) {
	sel := mustSelection(SelectionInput{Chapters: []string{judiciary, justice}})
	got, err := Resolve(scenarioView(), sel)
	require.NoError(t, err)
	assert.Equal(t, []string{"fundamental_rights", "asylum"}, dimColumn(got, DimTopic))
}

func TestResolve_ExcludesZeroForAverage(t *testing.T) {
	sel := mustSelection(SelectionInput{})
	got, err := Resolve(scenarioView(), sel)
	require.NoError(t, err)
	assert.Equal(t, 9, got.Len())
	for i := 0; i < got.Len(); i++ {
		assert.NotZero(t, got.Measure(i, MeasureValue))
	}

	sel.IncludeZero = true
	got, err = Resolve(scenarioView(), sel)
	require.NoError(t, err)
	assert.Equal(t, 11, got.Len())
}

func TestResolve_KeepsZeroForCount(t *testing.T) {
	sel := mustSelection(SelectionInput{Institutions: []string{"EP"}})
	require.Equal(t, DisplayCount, sel.DisplayMode)

	got, err := Resolve(scenarioView(), sel)
	require.NoError(t, err)
	assert.Equal(t, 11, got.Len(), "institutions do not filter rows, only the grouping")
}

func TestResolve_Empty(t *testing.T) {
	sel := mustSelection(SelectionInput{ManualTopics: []string{"visa_policy"}})
	got, err := Resolve(scenarioView(), sel)
	assert.ErrorIs(t, err, ErrEmptyResult)
	require.NotNil(t, got)
	assert.Zero(t, got.Len())
}

func TestApplyFilters_CaseInsensitive(t *testing.T) {
	got := ApplyFilters(scenarioView(), Filters{Dimensions: map[string][]string{DimInstitution: {"ep"}}})
	assert.Equal(t, 3, got.Len())

	all := scenarioView()
	assert.Same(t, all, ApplyFilters(all, Filters{}))
}
