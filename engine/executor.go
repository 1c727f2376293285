package engine

import (
	"errors"

	"go.uber.org/zap"
)

// ============================================================================
// EXECUTOR — One render cycle
// ============================================================================
// Entry point: Execute(sel, view, opts...)
//
// Pipeline:
//   1. Resolve filters → SubView
//   2. Decide the view policy
//   3. Group and aggregate along the policy axis
//   4. Build chart config (+ reference overlay) and description
//
// Nothing here mutates the view or the selection.
// ============================================================================

// Execute runs one render cycle over view and returns a render-ready Result.
// An empty filter result is not an error: the Result has Type "empty".
func Execute(sel Selection, view RecordView, opts ...Option) (*Result, error) {
	cfg := applyOptions(opts)
	log := cfg.Logger

	filtered, err := Resolve(view, sel)
	if errors.Is(err, ErrEmptyResult) {
		log.Debug("empty result", zap.Stringer("years", sel.YearRange), zap.Int("rows", view.Len()))
		return &Result{
			Success:   true,
			Type:      ResultEmpty,
			Reply:     cfg.EmptyMessage,
			Selection: sel,
			Rows:      filtered,
		}, nil
	}
	if err != nil {
		return nil, err
	}

	policy := Decide(sel)
	sel.DisplayMode = policy.DisplayMode
	sel.ChartType = policy.ChartType

	log.Debug("resolved selection",
		zap.Int("rows", filtered.Len()),
		zap.Int("total", view.Len()),
		zap.String("axis", policy.Axis),
		zap.String("display", string(policy.DisplayMode)),
		zap.String("chart", string(policy.ChartType)),
	)

	groups := Aggregate(filtered, policy, sel)
	var reference []Group
	if policy.ReferenceOverlay {
		reference = YearlyMean(filtered)
	}

	chart := BuildChart(policy, sel, groups, reference)
	chart.RowCount = filtered.Len()
	chart.LowReliability = filtered.Len() < cfg.ReliabilityThreshold

	return &Result{
		Success:     true,
		Type:        ResultChart,
		Selection:   sel,
		Policy:      &policy,
		ChartConfig: chart,
		Description: BuildDescription(sel, policy, filtered.Len(), cfg.ReliabilityThreshold),
		RowCount:    filtered.Len(),
		Rows:        filtered,
	}, nil
}
