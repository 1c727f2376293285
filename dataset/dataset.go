// Package dataset loads the evaluated-sentence table and exposes it to the
// engine as a read-only RecordView.
package dataset

import (
	"errors"
	"strconv"
	"time"

	"github.com/reformtrack/align/engine"
)

// ErrDataUnavailable is returned when the source table is missing,
// unreadable or lacks a required column.
var ErrDataUnavailable = errors.New("dataset unavailable")

// RequiredColumns lists the source columns in export order.
var RequiredColumns = []string{
	engine.DimYear,
	engine.DimInstitution,
	engine.DimChapter,
	engine.DimTopic,
	engine.DimParagraphTopic,
	engine.MeasureValue,
}

// Row is one evaluated sentence.
type Row struct {
	Year           int     `json:"year"`
	Institution    string  `json:"institution"`
	Chapter        string  `json:"chapter"`
	Topic          string  `json:"topic"`
	ParagraphTopic string  `json:"paragraph_topic"`
	Value          float64 `json:"value"`
}

// Dataset is the loaded table. It is never mutated after Load returns.
type Dataset struct {
	Rows     []Row
	Source   string
	LoadedAt time.Time
	// Skipped counts rows dropped for an unparsable year or value.
	// Non-finite values count as unparsable.
	Skipped int

	view engine.RecordView
}

var rowAdapter = engine.NewDomainAdapter[Row]().
	Dimension(engine.DimYear, func(r Row) string { return strconv.Itoa(r.Year) }).
	Dimension(engine.DimInstitution, func(r Row) string { return r.Institution }).
	Dimension(engine.DimChapter, func(r Row) string { return r.Chapter }).
	Dimension(engine.DimTopic, func(r Row) string { return r.Topic }).
	Dimension(engine.DimParagraphTopic, func(r Row) string { return r.ParagraphTopic }).
	Measure(engine.MeasureValue, func(r Row) float64 { return r.Value })

// New wraps rows as a Dataset.
func New(rows []Row, source string) *Dataset {
	return &Dataset{
		Rows:     rows,
		Source:   source,
		LoadedAt: time.Now(),
		view:     rowAdapter.Bind(rows),
	}
}

// View exposes the rows to the engine.
func (d *Dataset) View() engine.RecordView {
	return d.view
}

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.Rows) }
