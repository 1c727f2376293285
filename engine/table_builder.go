package engine

import (
	"fmt"
	"strconv"
)

// ============================================================================
// TABLE BUILDER — Raw row preview
// ============================================================================
// Column discovery uses view.DimensionKeys() and view.MeasureKeys().
// ============================================================================

// DefaultPreviewRows matches the size of a dataframe head.
const DefaultPreviewRows = 5

// BuildPreviewTable returns the first limit rows of view.
func BuildPreviewTable(view RecordView, limit int) *TableData {
	if limit <= 0 {
		limit = DefaultPreviewRows
	}
	dimKeys := view.DimensionKeys()
	mesKeys := view.MeasureKeys()

	columns := make([]Column, 0, len(dimKeys)+len(mesKeys))
	for _, key := range dimKeys {
		columns = append(columns, Column{Key: key, Label: LabelForDimension(key), Type: "text", Align: "left"})
	}
	for _, key := range mesKeys {
		columns = append(columns, Column{Key: key, Label: LabelForDimension(key), Type: "number", Align: "right"})
	}

	n := min(limit, view.Len())
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, 0, len(columns))
		for _, key := range dimKeys {
			row = append(row, view.Dimension(i, key))
		}
		for _, key := range mesKeys {
			row = append(row, FormatNumber(view.Measure(i, key)))
		}
		rows = append(rows, row)
	}

	return &TableData{
		Title:   "Raw data preview",
		Columns: columns,
		Rows:    rows,
		Summary: &Summary{
			Label: fmt.Sprintf("Showing %d of %s rows", n, FormatInt(view.Len())),
		},
	}
}

// FormatNumber writes whole numbers without decimals and others with
// the shortest exact representation.
func FormatNumber(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
