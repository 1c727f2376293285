package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/reformtrack/align/engine"
	"github.com/reformtrack/align/export"
)

func writeResult(w io.Writer, result *engine.Result, format string) error {
	switch format {
	case "json", "pretty":
		return writeJSON(w, result, format)
	case "text":
		_, err := fmt.Fprintln(w, renderText(result))
		return err
	case "csv":
		if result.Type == engine.ResultEmpty {
			_, err := fmt.Fprintln(w, result.Reply)
			return err
		}
		data, err := export.CSV(result.Rows)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "series":
		return writeSeriesCSV(w, result)
	default:
		return fmt.Errorf("unknown format %q (valid: json, pretty, text, csv, series)", format)
	}
}

// ============================================================================
// CSV OUTPUT — Chart series, one column per series
// ============================================================================

func writeSeriesCSV(w io.Writer, result *engine.Result) error {
	cw := csv.NewWriter(w)

	chart := result.ChartConfig
	if chart == nil || len(chart.Series) == 0 {
		cw.Write([]string{"Result"})
		cw.Write([]string{result.Reply})
		cw.Flush()
		return cw.Error()
	}

	xLabel := chart.XAxis
	if xLabel == "" {
		xLabel = "Label"
	}

	// Series may cover different labels (year-by-year skips missing years),
	// so rows are keyed by label rather than by index.
	var labels []string
	seen := make(map[string]bool)
	headers := []string{xLabel}
	for _, s := range chart.Series {
		headers = append(headers, s.Name)
		for _, d := range s.Data {
			if !seen[d.Label] {
				seen[d.Label] = true
				labels = append(labels, d.Label)
			}
		}
	}
	cw.Write(headers)

	for _, label := range labels {
		row := []string{label}
		for _, s := range chart.Series {
			cell := ""
			for _, d := range s.Data {
				if d.Label == label {
					cell = fmtNum(d.Value)
					break
				}
			}
			row = append(row, cell)
		}
		cw.Write(row)
	}
	cw.Flush()
	return cw.Error()
}

// ============================================================================
// JSON OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v interface{}, format string) error {
	var out []byte
	var err error

	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}

// ============================================================================
// TEXT OUTPUT
// ============================================================================

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#4285F4"))

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Width(22)

	cautionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#D9534F"))

	emptyStyle = lipgloss.NewStyle().
			Italic(true).
			Foreground(lipgloss.Color("#9CA3AF"))
)

func renderText(result *engine.Result) string {
	if result.Type == engine.ResultEmpty {
		return emptyStyle.Render(result.Reply)
	}

	var b strings.Builder
	if result.ChartConfig != nil {
		b.WriteString(titleStyle.Render(result.ChartConfig.Title))
		b.WriteString("\n\n")
	}
	if d := result.Description; d != nil {
		for _, line := range d.Lines() {
			value := line[1]
			if line[0] == "Caution" && d.LowReliability {
				value = cautionStyle.Render(value)
			}
			b.WriteString(labelStyle.Render(line[0]+":") + value + "\n")
		}
	}
	fmt.Fprintf(&b, "\n%s rows", engine.FormatInt(result.RowCount))
	return b.String()
}

// ============================================================================
// HELPERS
// ============================================================================

func fmtNum(v float64) string {
	// Whole numbers → no decimals, fractional → 2 decimals
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.2f", v)
}
