package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// ============================================================================
// CSV SOURCE — Parses the sentence table from CSV
// ============================================================================
// Header names are matched after snake-casing, so "Paragraph Topic" maps to
// paragraph_topic. Extra columns are ignored.
// ============================================================================

// ParseCSV reads rows from r. Rows with an unparsable year or a missing,
// unparsable or non-finite value are skipped and counted.
func ParseCSV(r io.Reader) ([]Row, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: read csv header: %v", ErrDataUnavailable, err)
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		key := toSnakeCase(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, 0, fmt.Errorf("%w: missing columns %s", ErrDataUnavailable, strings.Join(missing, ", "))
	}

	field := func(rec []string, col string) string {
		i := index[col]
		if i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []Row
	skipped := 0
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			skipped++
			continue
		}

		year, err := parseYear(field(rec, "year"))
		if err != nil {
			skipped++
			continue
		}
		value, err := strconv.ParseFloat(field(rec, "value"), 64)
		if err != nil || !finite(value) {
			skipped++
			continue
		}

		rows = append(rows, Row{
			Year:           year,
			Institution:    field(rec, "institution"),
			Chapter:        field(rec, "chapter"),
			Topic:          normalizeTopic(field(rec, "topic")),
			ParagraphTopic: field(rec, "paragraph_topic"),
			Value:          value,
		})
	}
	return rows, skipped, nil
}

// parseYear accepts "2019" and "2019.0".
func parseYear(s string) (int, error) {
	if y, err := strconv.Atoi(s); err == nil {
		return y, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("invalid year %q", s)
	}
	return int(f), nil
}

// finite rejects NaN and ±Inf, which ParseFloat accepts.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func normalizeTopic(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// toSnakeCase converts "Column Name" → "column_name".
func toSnakeCase(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
