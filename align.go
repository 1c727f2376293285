// Package align charts how European Commission country reports evaluate
// reform progress.
//
// Usage:
//
//	import "github.com/reformtrack/align/engine"
//
//	sel, err := engine.NewSelection(input, engine.DefaultChapterMap(), years)
//	result, err := engine.Execute(sel, ds.View(),
//	    engine.WithReliabilityThreshold(15),
//	)
//
// The dataset package loads and caches the sentence table, the engine turns
// a selection into render-ready output (chart config and description), and
// the export package writes CSV, SVG and PNG downloads.
//
// The engine never touches the filesystem or the network; all computation
// is local over the in-memory rows.
package align
