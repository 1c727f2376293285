package engine

import "strconv"

// ── Test Data ─────────────────────────────────────────────────────────────────

var sentenceDims = []string{DimYear, DimInstitution, DimChapter, DimTopic, DimParagraphTopic}

func sentence(year int, institution, chapter, topic, paragraphTopic string, value float64) Record {
	return Record{
		Dimensions: map[string]string{
			DimYear:           strconv.Itoa(year),
			DimInstitution:    institution,
			DimChapter:        chapter,
			DimTopic:          topic,
			DimParagraphTopic: paragraphTopic,
		},
		Measures: map[string]float64{MeasureValue: value},
	}
}

func sentenceView(records ...Record) RecordView {
	return NewSliceView(records, sentenceDims, []string{MeasureValue})
}

const (
	democracy = "democracy_section"
	judiciary = "23_Judiciary_and_fundamental_rights"
	justice   = "24_Justice_freedom_and_security"
)

// scenarioView covers the years {2016, 2018, 2019, 2020, 2021} plus one
// merged 2017 row.
func scenarioView() RecordView {
	return sentenceView(
		sentence(2016, "EC", democracy, "elections", "voting", 1),
		sentence(2017, "EC", democracy, "elections", "voting", 2),
		sentence(2018, "EC", democracy, "elections", "voting", 1),
		sentence(2018, "EP", democracy, "parliament", "oversight", 0),
		sentence(2018, "EC", democracy, "parliament", "oversight", -1),
		sentence(2019, "EC", democracy, "governance", "budget", 2),
		sentence(2019, "EC", democracy, "elections", "voting", 0),
		sentence(2020, "EP", democracy, "elections", "voting", -2),
		sentence(2020, "EC", judiciary, "fundamental_rights", "rights", 1),
		sentence(2021, "EC", democracy, "civil_societies", "voting", 1),
		sentence(2021, "EP", justice, "asylum", "borders", -1),
	)
}

// mustSelection builds a selection against the scenario years and the
// default chapter map.
func mustSelection(in SelectionInput) Selection {
	sel, err := NewSelection(in, DefaultChapterMap(), YearOptions(scenarioView()))
	if err != nil {
		panic(err)
	}
	return sel
}

func dimColumn(view RecordView, key string) []string {
	out := make([]string, view.Len())
	for i := range out {
		out[i] = view.Dimension(i, key)
	}
	return out
}
