package engine

import (
	"errors"
	"strconv"
	"strings"
)

// ============================================================================
// FILTER RESOLVER — Selection → one row predicate
// ============================================================================
// Year range first, then the first non-empty of topics, paragraph topics,
// chapters. Neutral rows are dropped for average evaluation unless included.
// Every step returns a SubView into the parent.
// ============================================================================

// ErrEmptyResult is returned when no row survives the filters.
var ErrEmptyResult = errors.New("no rows match the current selection")

// Filters define which records to include.
// Keys are dimension names. OR within a dimension, AND across dimensions.
type Filters struct {
	Dimensions map[string][]string `json:"dimensions"`
}

// IsEmpty returns true if no filters are set.
func (f Filters) IsEmpty() bool {
	for _, vals := range f.Dimensions {
		if len(vals) > 0 {
			return false
		}
	}
	return true
}

// Resolve applies the selection to view. The returned view is never nil.
func Resolve(view RecordView, sel Selection) (RecordView, error) {
	filtered := ApplyYearRange(view, sel.YearRange)

	switch {
	case len(sel.Topics) > 0:
		filtered = ApplyFilters(filtered, Filters{Dimensions: map[string][]string{DimTopic: sel.Topics}})
	case len(sel.ParagraphTopics) > 0:
		filtered = ApplyFilters(filtered, Filters{Dimensions: map[string][]string{DimParagraphTopic: sel.ParagraphTopics}})
	case len(sel.Chapters) > 0:
		filtered = ApplyFilters(filtered, Filters{Dimensions: map[string][]string{DimChapter: sel.Chapters}})
	}

	if sel.EffectiveDisplayMode() == DisplayAverage && !sel.IncludeZero {
		filtered = ExcludeZero(filtered, MeasureValue)
	}

	if filtered.Len() == 0 {
		return filtered, ErrEmptyResult
	}
	return filtered, nil
}

// ApplyYearRange keeps rows whose year lies in r. Rows with an unparsable
// year never match.
func ApplyYearRange(view RecordView, r YearRange) RecordView {
	return filterView(view, func(i int) bool {
		y, err := strconv.Atoi(view.Dimension(i, DimYear))
		return err == nil && r.Contains(y)
	})
}

// ExcludeZero drops rows whose measure is exactly zero.
func ExcludeZero(view RecordView, measure string) RecordView {
	return filterView(view, func(i int) bool {
		return view.Measure(i, measure) != 0
	})
}

// ApplyFilters returns a view of records matching all dimension filters.
// Matching is case-insensitive. Empty filter = no restriction.
func ApplyFilters(view RecordView, filters Filters) RecordView {
	if filters.IsEmpty() {
		return view
	}

	sets := make(map[string]map[string]bool)
	for dim, allowed := range filters.Dimensions {
		if len(allowed) > 0 {
			sets[dim] = toLowerSet(allowed)
		}
	}

	return filterView(view, func(i int) bool {
		for dim, set := range sets {
			if !set[strings.ToLower(view.Dimension(i, dim))] {
				return false
			}
		}
		return true
	})
}

// toLowerSet converts a string slice to a lowercase lookup set.
func toLowerSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, item := range items {
		set[strings.ToLower(item)] = true
	}
	return set
}
