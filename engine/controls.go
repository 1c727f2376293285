package engine

// Controls describes what the sidebar may offer for a selection.
type Controls struct {
	Years           []int         `json:"years"`
	Topics          []string      `json:"topics"`
	Chapters        ChapterMap    `json:"chapters"`
	Institutions    []string      `json:"institutions"`
	ParagraphTopics []string      `json:"paragraphTopics"`
	ViewModes       []ViewMode    `json:"viewModes"`
	ChartTypes      []ChartType   `json:"chartTypes"`
	DefaultChart    ChartType     `json:"defaultChart"`
	ChartLocked     bool          `json:"chartLocked"`
	DisplayModes    []DisplayMode `json:"displayModes"`

	ChaptersEnabled        bool `json:"chaptersEnabled"`
	InstitutionsEnabled    bool `json:"institutionsEnabled"`
	ParagraphTopicsEnabled bool `json:"paragraphTopicsEnabled"`
}

// BuildControls computes the widget options and enablement for sel.
// Institution and paragraph-topic options come from rows inside the year range.
func BuildControls(view RecordView, sel Selection, chapters ChapterMap) *Controls {
	inRange := ApplyYearRange(view, sel.YearRange)
	policy := Decide(sel)
	free := len(sel.Topics) == 0 && len(sel.Chapters) == 0

	return &Controls{
		Years:                  YearOptions(view),
		Topics:                 chapters.AllTopics(),
		Chapters:               chapters,
		Institutions:           UniqueValues(inRange, DimInstitution),
		ParagraphTopics:        UniqueValues(inRange, DimParagraphTopic),
		ViewModes:              []ViewMode{ViewYearByYear, ViewAggregated},
		ChartTypes:             policy.EligibleChartTypes,
		DefaultChart:           policy.DefaultChart,
		ChartLocked:            policy.ChartLocked,
		DisplayModes:           policy.DisplayModes,
		ChaptersEnabled:        len(sel.Topics) == 0,
		InstitutionsEnabled:    free,
		ParagraphTopicsEnabled: free,
	}
}
