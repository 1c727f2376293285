package engine

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// ============================================================================
// AGGREGATORS — Grouping, Aggregation, and Sorting via RecordView
// ============================================================================
// Grouping produces SubViews (index lists into the filtered view).
// Output order is fully determined by the input rows.
// ============================================================================

// Aggregations.
const (
	AggAvg   = "avg"
	AggCount = "count"
	AggSum   = "sum"
)

// Sort modes.
const (
	SortValueDesc     = "value_desc"
	SortLabelAsc      = "label_asc"
	SortChronological = "chronological"
)

// Aggregate groups the filtered rows along the policy's axis.
// Year-by-year views produce one group per year with one sub-group per axis
// value; the other views produce one group per category.
func Aggregate(view RecordView, policy ViewPolicy, sel Selection) []Group {
	agg := aggregationFor(policy.DisplayMode)

	switch {
	case len(sel.Institutions) > 0:
		return GroupAndAggregate(view, []string{DimInstitution}, MeasureValue, AggCount, SortLabelAsc)
	case sel.ViewMode == ViewYearByYear:
		return GroupAndAggregate(view, []string{DimYear, policy.Axis}, MeasureValue, agg, SortChronological)
	case agg == AggAvg:
		return GroupAndAggregate(view, []string{policy.Axis}, MeasureValue, AggAvg, SortValueDesc)
	default:
		return GroupAndAggregate(view, []string{policy.Axis}, MeasureValue, AggCount, SortLabelAsc)
	}
}

// YearlyMean averages the measure per year across every row in view.
func YearlyMean(view RecordView) []Group {
	return GroupAndAggregate(view, []string{DimYear}, MeasureValue, AggAvg, SortChronological)
}

// GroupAndAggregate runs group → aggregate → sort.
// Sub-groups are always sorted by label.
func GroupAndAggregate(view RecordView, groupBy []string, measure, aggregation, sortBy string) []Group {
	if view.Len() == 0 {
		return nil
	}

	var groups []Group
	switch len(groupBy) {
	case 0:
		groups = []Group{{Key: "all", Label: "Total", View: view}}
	case 1:
		groups = groupBySingle(view, groupBy[0])
	default:
		groups = groupByMulti(view, groupBy)
	}

	for i := range groups {
		aggregateGroup(&groups[i], measure, aggregation)
		for j := range groups[i].SubGroups {
			aggregateGroup(&groups[i].SubGroups[j], measure, aggregation)
		}
		SortGroups(groups[i].SubGroups, SortLabelAsc)
	}

	SortGroups(groups, sortBy)
	return groups
}

// ============================================================================
// GROUPING
// ============================================================================

func groupBySingle(view RecordView, dimension string) []Group {
	grouped := make(map[string][]int)
	order := make([]string, 0)

	for i := 0; i < view.Len(); i++ {
		key := view.Dimension(i, dimension)
		if _, exists := grouped[key]; !exists {
			order = append(order, key)
		}
		grouped[key] = append(grouped[key], i)
	}

	groups := make([]Group, 0, len(order))
	for _, key := range order {
		groups = append(groups, Group{
			Key:   key,
			Label: key,
			View:  newSubView(view, grouped[key]),
		})
	}
	return groups
}

func groupByMulti(view RecordView, dimensions []string) []Group {
	primary := groupBySingle(view, dimensions[0])
	for i := range primary {
		primary[i].SubGroups = groupBySingle(primary[i].View, dimensions[1])
	}
	return primary
}

// ============================================================================
// AGGREGATION
// ============================================================================

func aggregationFor(d DisplayMode) string {
	if d == DisplayCount {
		return AggCount
	}
	return AggAvg
}

func aggregateGroup(group *Group, measure string, aggregation string) {
	group.Count = group.View.Len()
	if group.Count == 0 {
		return
	}

	switch aggregation {
	case AggCount:
		group.Value = float64(group.Count)
	case AggAvg:
		group.Value = AvgMeasure(group.View, measure)
	default:
		group.Value = SumMeasure(group.View, measure)
	}
}

// SumMeasure sums a named measure across a view.
func SumMeasure(view RecordView, measure string) float64 {
	var total float64
	for i := 0; i < view.Len(); i++ {
		total += view.Measure(i, measure)
	}
	return total
}

// AvgMeasure computes the mean of a named measure.
func AvgMeasure(view RecordView, measure string) float64 {
	n := view.Len()
	if n == 0 {
		return 0
	}
	return SumMeasure(view, measure) / float64(n)
}

// ============================================================================
// SORTING
// ============================================================================

// SortGroups sorts groups in place. Ties fall back to the label so the
// order never depends on map iteration.
func SortGroups(groups []Group, sortBy string) {
	switch sortBy {
	case SortValueDesc:
		sort.SliceStable(groups, func(i, j int) bool {
			if groups[i].Value != groups[j].Value {
				return groups[i].Value > groups[j].Value
			}
			return groups[i].Key < groups[j].Key
		})
	case SortChronological:
		sort.SliceStable(groups, func(i, j int) bool {
			yi, yj := yearOrder(groups[i].Key), yearOrder(groups[j].Key)
			if yi != yj {
				return yi < yj
			}
			return groups[i].Key < groups[j].Key
		})
	case SortLabelAsc:
		sort.SliceStable(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	}
}

func yearOrder(key string) int {
	y, err := strconv.Atoi(key)
	if err != nil {
		return math.MaxInt
	}
	return y
}

// ============================================================================
// FORMATTING UTILITIES
// ============================================================================

// RoundTo2 rounds to 2 decimal places.
func RoundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FormatInt formats an integer with comma separators.
func FormatInt(n int) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s,%03d", FormatInt(n/1000), n%1000)
}

// UniqueValues returns the distinct non-empty values of a dimension, sorted.
func UniqueValues(view RecordView, dimension string) []string {
	seen := make(map[string]bool)
	var result []string
	for i := 0; i < view.Len(); i++ {
		val := view.Dimension(i, dimension)
		if val != "" && !seen[val] {
			seen[val] = true
			result = append(result, val)
		}
	}
	sort.Strings(result)
	return result
}

// LabelForDimension returns "Paragraph topic" for "paragraph_topic".
func LabelForDimension(dimension string) string {
	if len(dimension) == 0 {
		return ""
	}
	s := strings.ReplaceAll(dimension, "_", " ")
	return strings.ToUpper(s[:1]) + s[1:]
}

// LabelForAggregation returns the value-axis label for an aggregation.
func LabelForAggregation(aggregation string) string {
	switch aggregation {
	case AggAvg:
		return "Avg Score"
	case AggCount:
		return "Sentence Count"
	default:
		return "Value"
	}
}
