package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/reformtrack/align/dataset"
	"github.com/reformtrack/align/engine"
	"github.com/reformtrack/align/export"
)

// selectionFlags mirrors the sidebar widgets.
type selectionFlags struct {
	from, to        int
	topics          []string
	toggles         []string
	chapters        []string
	institutions    []string
	paragraphTopics []string
	view            string
	display         string
	chart           string
	includeZero     bool
	allChapters     bool
}

func (f *selectionFlags) register(fs *pflag.FlagSet) {
	fs.IntVar(&f.from, "from", 0, "First year (default: earliest)")
	fs.IntVar(&f.to, "to", 0, "Last year (default: latest)")
	fs.StringSliceVar(&f.topics, "topic", nil, "Topic to include (repeatable)")
	fs.StringSliceVar(&f.toggles, "toggle", nil, "Add all topics of a chapter (repeatable)")
	fs.StringSliceVar(&f.chapters, "chapter", nil, "Chapter to include (repeatable)")
	fs.BoolVar(&f.allChapters, "all-chapters", false, "Select every chapter (the first-load default)")
	fs.StringSliceVar(&f.institutions, "institution", nil, "Institution to include (repeatable)")
	fs.StringSliceVar(&f.paragraphTopics, "paragraph-topic", nil, "Paragraph topic to include (repeatable)")
	fs.StringVar(&f.view, "view", "", "View mode: year_by_year or aggregated")
	fs.StringVar(&f.display, "display", "", "Display mode: average_evaluation or count_of_sentences")
	fs.StringVar(&f.chart, "chart", "", "Chart type: bar or line (default: policy default)")
	fs.BoolVar(&f.includeZero, "include-zero", false, "Keep zero-valued sentences")
}

func (f *selectionFlags) input() engine.SelectionInput {
	chapters := f.chapters
	if f.allChapters {
		chapters = cfg.Chapters.Names()
	}
	return engine.SelectionInput{
		YearStart:       f.from,
		YearEnd:         f.to,
		ManualTopics:    f.topics,
		ChapterToggles:  f.toggles,
		Chapters:        chapters,
		Institutions:    f.institutions,
		ParagraphTopics: f.paragraphTopics,
		ViewMode:        f.view,
		DisplayMode:     f.display,
		IncludeZero:     f.includeZero,
		ChartType:       f.chart,
	}
}

// loadSelection loads the dataset and validates the flag selection against it.
func loadSelection(ctx context.Context, f *selectionFlags) (*dataset.Dataset, engine.Selection, error) {
	ds, err := newLoader().Load(ctx)
	if err != nil {
		return nil, engine.Selection{}, err
	}
	sel, err := engine.NewSelection(f.input(), cfg.Chapters, engine.YearOptions(ds.View()))
	if err != nil {
		return nil, engine.Selection{}, err
	}
	return ds, sel, nil
}

var (
	renderSel    selectionFlags
	renderFormat string
	renderOut    string
	renderPNG    string
	renderSVG    string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Run one render cycle",
	Long: `Filters the dataset with the given selection and prints the result.

Formats:
  json      Full JSON result (default)
  pretty    Pretty-printed JSON
  text      Graph description block
  csv       Filtered rows as CSV
  series    Chart series as CSV (ready for Sheets/Excel)`,
	RunE: runRender,
}

var (
	controlsSel    selectionFlags
	controlsFormat string
)

var controlsCmd = &cobra.Command{
	Use:   "controls",
	Short: "Print the widget options for a selection",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, sel, err := loadSelection(cmd.Context(), &controlsSel)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), engine.BuildControls(ds.View(), sel, cfg.Chapters), controlsFormat)
	},
}

func init() {
	renderSel.register(renderCmd.Flags())
	renderCmd.Flags().StringVar(&renderFormat, "format", "json", "Output format: json, pretty, text, csv, series")
	renderCmd.Flags().StringVar(&renderOut, "out", "", "Write output to file instead of stdout")
	renderCmd.Flags().StringVar(&renderPNG, "png", "", "Also write the chart as PNG")
	renderCmd.Flags().StringVar(&renderSVG, "svg", "", "Also write the chart as SVG")

	controlsSel.register(controlsCmd.Flags())
	controlsCmd.Flags().StringVar(&controlsFormat, "format", "pretty", "Output format: json, pretty")
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	ds, sel, err := loadSelection(ctx, &renderSel)
	if err != nil {
		return err
	}

	result, err := engine.Execute(sel, ds.View(),
		engine.WithLogger(logger),
		engine.WithReliabilityThreshold(cfg.ReliabilityThreshold),
	)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	var w io.Writer = cmd.OutOrStdout()
	if renderOut != "" {
		f, err := os.Create(renderOut)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := writeResult(w, result, renderFormat); err != nil {
		return err
	}
	if renderOut != "" {
		logger.Info("output written", zap.String("path", renderOut), zap.String("format", renderFormat))
	}

	if result.Type == engine.ResultEmpty {
		return nil
	}
	if renderSVG != "" {
		data, err := export.SVG(result.ChartConfig, export.SVGOptions{Width: cfg.Export.Width, Height: cfg.Export.Height})
		if err != nil {
			return err
		}
		if err := os.WriteFile(renderSVG, data, 0644); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
	}
	if renderPNG != "" {
		return writePNG(ctx, result.ChartConfig, renderPNG)
	}
	return nil
}

func writePNG(ctx context.Context, chart *engine.ChartConfig, path string) error {
	png := export.DetectRenderer(export.RendererOptions{
		BrowserBin: cfg.Export.BrowserBin,
		Disabled:   !cfg.Export.PNG,
		Width:      cfg.Export.Width,
		Height:     cfg.Export.Height,
		Logger:     logger,
	})
	defer png.Close()

	data, err := png.PNG(ctx, chart)
	var unavailable *export.UnavailableError
	if errors.As(err, &unavailable) {
		return fmt.Errorf("%w\n%s", err, unavailable.Hint)
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}
