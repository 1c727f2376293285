package engine

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// SELECTION — Immutable per-cycle state built from sidebar widget values
// ============================================================================

// ErrInvalidSelection reports widget input outside the offered options.
var ErrInvalidSelection = errors.New("invalid selection")

// MergedYear is folded into the following year upstream and is never a
// selectable boundary.
const MergedYear = 2017

// YearRange is an inclusive range of years.
type YearRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Span counts the years in the range.
func (r YearRange) Span() int { return r.End - r.Start + 1 }

// Contains reports whether year falls inside the range.
func (r YearRange) Contains(year int) bool { return year >= r.Start && year <= r.End }

// String renders "2018–2021".
func (r YearRange) String() string { return fmt.Sprintf("%d–%d", r.Start, r.End) }

// SelectionInput holds raw widget values. Zero values mean widget defaults.
type SelectionInput struct {
	YearStart       int      `json:"yearStart,omitempty"`
	YearEnd         int      `json:"yearEnd,omitempty"`
	ManualTopics    []string `json:"manualTopics,omitempty"`
	ChapterToggles  []string `json:"chapterToggles,omitempty"`
	Chapters        []string `json:"chapters,omitempty"`
	Institutions    []string `json:"institutions,omitempty"`
	ParagraphTopics []string `json:"paragraphTopics,omitempty"`
	ViewMode        string   `json:"viewMode,omitempty"`
	DisplayMode     string   `json:"displayMode,omitempty"`
	IncludeZero     bool     `json:"includeZero"`
	ChartType       string   `json:"chartType,omitempty"`
}

// Selection is the resolved selection state for one render cycle.
// It is passed by value; builders never mutate it.
type Selection struct {
	YearRange       YearRange   `json:"yearRange"`
	Topics          []string    `json:"topics,omitempty"`
	Chapters        []string    `json:"chapters,omitempty"`
	Institutions    []string    `json:"institutions,omitempty"`
	ParagraphTopics []string    `json:"paragraphTopics,omitempty"`
	ViewMode        ViewMode    `json:"viewMode"`
	DisplayMode     DisplayMode `json:"displayMode"`
	IncludeZero     bool        `json:"includeZero"`
	ChartType       ChartType   `json:"chartType"`
}

// countForced reports whether average evaluation is unavailable.
func (s Selection) countForced() bool {
	return len(s.Institutions) > 0 || len(s.ParagraphTopics) > 0
}

// EffectiveDisplayMode is count of sentences whenever institutions or
// paragraph topics are selected, and average evaluation otherwise.
func (s Selection) EffectiveDisplayMode() DisplayMode {
	if s.countForced() {
		return DisplayCount
	}
	return DisplayAverage
}

// NewSelection validates widget input against the offered options and
// builds the selection for one render cycle.
func NewSelection(in SelectionInput, chapters ChapterMap, years []int) (Selection, error) {
	if len(years) == 0 {
		return Selection{}, fmt.Errorf("%w: no selectable years", ErrInvalidSelection)
	}

	yr := YearRange{Start: in.YearStart, End: in.YearEnd}
	if yr.Start == 0 {
		yr.Start = years[0]
	}
	if yr.End == 0 {
		yr.End = years[len(years)-1]
	}
	for _, y := range []int{yr.Start, yr.End} {
		if !slices.Contains(years, y) {
			return Selection{}, fmt.Errorf("%w: year %d is not a selectable boundary", ErrInvalidSelection, y)
		}
	}
	if yr.Start > yr.End {
		return Selection{}, fmt.Errorf("%w: year range %d > %d", ErrInvalidSelection, yr.Start, yr.End)
	}

	for _, name := range in.ChapterToggles {
		if _, ok := chapters.Lookup(name); !ok {
			return Selection{}, fmt.Errorf("%w: unknown chapter %q", ErrInvalidSelection, name)
		}
	}
	chapterSet := make(map[string]bool, len(in.Chapters))
	for _, name := range in.Chapters {
		if _, ok := chapters.Lookup(name); !ok {
			return Selection{}, fmt.Errorf("%w: unknown chapter %q", ErrInvalidSelection, name)
		}
		chapterSet[name] = true
	}
	offered := toLowerSet(chapters.AllTopics())
	for _, topic := range in.ManualTopics {
		if t := strings.ToLower(strings.TrimSpace(topic)); t != "" && !offered[t] {
			return Selection{}, fmt.Errorf("%w: unknown topic %q", ErrInvalidSelection, topic)
		}
	}

	viewMode, err := ParseViewMode(in.ViewMode)
	if err != nil {
		return Selection{}, err
	}
	chartType, err := ParseChartType(in.ChartType)
	if err != nil {
		return Selection{}, err
	}
	if _, err := ParseDisplayMode(in.DisplayMode); err != nil {
		return Selection{}, err
	}

	sel := Selection{
		YearRange:   yr,
		Topics:      ResolveTopics(in.ManualTopics, chapters, in.ChapterToggles),
		ViewMode:    viewMode,
		IncludeZero: in.IncludeZero,
		ChartType:   chartType,
	}
	// Chapter order follows the chapter map.
	for _, name := range chapters.Names() {
		if chapterSet[name] {
			sel.Chapters = append(sel.Chapters, name)
		}
	}
	// Institution and paragraph-topic widgets are disabled while topics or
	// chapters are selected.
	if len(sel.Topics) == 0 && len(sel.Chapters) == 0 {
		sel.Institutions = sortedUnique(in.Institutions, false)
		sel.ParagraphTopics = sortedUnique(in.ParagraphTopics, false)
	}
	sel.DisplayMode = sel.EffectiveDisplayMode()
	return sel, nil
}

// ResolveTopics unions manually chosen topics with the topics of every
// chapter whose quick toggle is on. The result is sorted and lowercased.
func ResolveTopics(manual []string, chapters ChapterMap, toggles []string) []string {
	all := slices.Clone(manual)
	for _, name := range toggles {
		if c, ok := chapters.Lookup(name); ok {
			all = append(all, c.Topics...)
		}
	}
	return sortedUnique(all, true)
}

// DefaultSelectionInput is the widget state on first load: full year span,
// every chapter selected, year-by-year average evaluation, zeros excluded.
func DefaultSelectionInput(years []int, chapters ChapterMap) SelectionInput {
	in := SelectionInput{
		Chapters:    chapters.Names(),
		ViewMode:    string(ViewYearByYear),
		DisplayMode: string(DisplayAverage),
	}
	if len(years) > 0 {
		in.YearStart = years[0]
		in.YearEnd = years[len(years)-1]
	}
	return in
}

// YearOptions returns the distinct years present in view, ascending,
// without MergedYear.
func YearOptions(view RecordView) []int {
	seen := make(map[int]bool)
	var years []int
	for i := 0; i < view.Len(); i++ {
		y, err := strconv.Atoi(view.Dimension(i, DimYear))
		if err != nil || y == MergedYear || seen[y] {
			continue
		}
		seen[y] = true
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// ParseViewMode accepts the canonical value or the sidebar label.
func ParseViewMode(s string) (ViewMode, error) {
	switch {
	case s == "":
		return ViewYearByYear, nil
	case matchesMode(s, string(ViewYearByYear), ViewYearByYear.Label()):
		return ViewYearByYear, nil
	case matchesMode(s, string(ViewAggregated), ViewAggregated.Label()):
		return ViewAggregated, nil
	}
	return "", fmt.Errorf("%w: unknown view mode %q", ErrInvalidSelection, s)
}

// ParseDisplayMode accepts the canonical value or the sidebar label.
func ParseDisplayMode(s string) (DisplayMode, error) {
	switch {
	case s == "":
		return DisplayAverage, nil
	case matchesMode(s, string(DisplayAverage), DisplayAverage.Label()):
		return DisplayAverage, nil
	case matchesMode(s, string(DisplayCount), DisplayCount.Label()):
		return DisplayCount, nil
	}
	return "", fmt.Errorf("%w: unknown display mode %q", ErrInvalidSelection, s)
}

// ParseChartType accepts the canonical value or the sidebar label.
// Empty means "let the policy pick the default".
func ParseChartType(s string) (ChartType, error) {
	switch {
	case s == "":
		return "", nil
	case matchesMode(s, string(ChartBar), ChartBar.Label()):
		return ChartBar, nil
	case matchesMode(s, string(ChartLine), ChartLine.Label()):
		return ChartLine, nil
	}
	return "", fmt.Errorf("%w: unknown chart type %q", ErrInvalidSelection, s)
}

func matchesMode(s, canonical, label string) bool {
	s = strings.TrimSpace(s)
	return strings.EqualFold(s, canonical) || strings.EqualFold(s, label)
}

func sortedUnique(items []string, lower bool) []string {
	seen := make(map[string]bool, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if lower {
			item = strings.ToLower(item)
		}
		if item == "" || seen[item] {
			continue
		}
		seen[item] = true
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}
