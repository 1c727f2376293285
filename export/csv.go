// Package export serialises filtered rows and rendered charts into
// downloadable artifacts.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/reformtrack/align/engine"
)

// File names offered for downloads.
const (
	CSVFileName = "align_data.csv"
	PNGFileName = "align_chart.png"
	SVGFileName = "align_chart.svg"
)

// CSV writes the rows of view as UTF-8 CSV: dimension columns, then measures.
func CSV(view engine.RecordView) ([]byte, error) {
	dimKeys := view.DimensionKeys()
	mesKeys := view.MeasureKeys()

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	header := make([]string, 0, len(dimKeys)+len(mesKeys))
	header = append(header, dimKeys...)
	header = append(header, mesKeys...)
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(header))
	for i := 0; i < view.Len(); i++ {
		for j, key := range dimKeys {
			row[j] = view.Dimension(i, key)
		}
		for j, key := range mesKeys {
			row[len(dimKeys)+j] = engine.FormatNumber(view.Measure(i, key))
		}
		if err := cw.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
