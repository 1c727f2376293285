package engine

import "sort"

// ============================================================================
// RECORD VIEW — Row access without copying the dataset
// ============================================================================
// The engine reads rows only through RecordView, so the loader can keep its
// typed rows and filters can hand out index lists instead of copies.
//
// Implementations:
//   SliceView      — []Record (fixtures, ad-hoc data)
//   DomainView[T]  — typed rows read through registered accessors
//   SubView        — index list into a parent view
// ============================================================================

// RecordView provides indexed access to a table of rows.
// Dimension and Measure sit in every inner loop; keep them cheap.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64
	DimensionKeys() []string
	MeasureKeys() []string
}

// ============================================================================
// SLICE VIEW
// ============================================================================

// SliceView serves a []Record.
type SliceView struct {
	records []Record
	dimKeys []string
	mesKeys []string
}

// NewSliceView wraps records. Pass dimension and measure keys to fix the
// column order; otherwise keys are collected from the records and sorted.
func NewSliceView(records []Record, keys ...[]string) RecordView {
	v := &SliceView{records: records}
	if len(keys) == 2 {
		v.dimKeys, v.mesKeys = keys[0], keys[1]
		return v
	}

	dims := make(map[string]bool)
	measures := make(map[string]bool)
	for _, r := range records {
		for k := range r.Dimensions {
			dims[k] = true
		}
		for k := range r.Measures {
			measures[k] = true
		}
	}
	v.dimKeys, v.mesKeys = sortedKeys(dims), sortedKeys(measures)
	return v
}

func (v *SliceView) Len() int { return len(v.records) }

func (v *SliceView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.records) {
		return ""
	}
	return v.records[i].Dimensions[key]
}

func (v *SliceView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.records) {
		return 0
	}
	return v.records[i].Measures[key]
}

func (v *SliceView) DimensionKeys() []string { return v.dimKeys }
func (v *SliceView) MeasureKeys() []string   { return v.mesKeys }

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ============================================================================
// SUB VIEW
// ============================================================================

// SubView exposes the parent rows listed in indices, in that order.
type SubView struct {
	parent  RecordView
	indices []int
}

// newSubView never nests: a SubView of a SubView points at the root view.
func newSubView(parent RecordView, indices []int) RecordView {
	sv, ok := parent.(*SubView)
	if !ok {
		return &SubView{parent: parent, indices: indices}
	}
	flat := make([]int, len(indices))
	for i, idx := range indices {
		flat[i] = sv.indices[idx]
	}
	return &SubView{parent: sv.parent, indices: flat}
}

func (v *SubView) Len() int { return len(v.indices) }

func (v *SubView) Dimension(i int, key string) string {
	if i < 0 || i >= len(v.indices) {
		return ""
	}
	return v.parent.Dimension(v.indices[i], key)
}

func (v *SubView) Measure(i int, key string) float64 {
	if i < 0 || i >= len(v.indices) {
		return 0
	}
	return v.parent.Measure(v.indices[i], key)
}

func (v *SubView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *SubView) MeasureKeys() []string   { return v.parent.MeasureKeys() }

// filterView keeps the rows for which keep is true. When every row is kept
// the input view itself is returned.
func filterView(view RecordView, keep func(i int) bool) RecordView {
	n := view.Len()
	indices := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if keep(i) {
			indices = append(indices, i)
		}
	}
	if len(indices) == n {
		return view
	}
	return newSubView(view, indices)
}

// ============================================================================
// DOMAIN ADAPTER — typed rows
// ============================================================================
//
//	adapter := engine.NewDomainAdapter[Row]().
//	    Dimension(engine.DimTopic, func(r Row) string { return r.Topic }).
//	    Measure(engine.MeasureValue, func(r Row) float64 { return r.Value })
//
//	view := adapter.Bind(rows)
//
// ============================================================================

type column[T, V any] struct {
	key string
	get func(T) V
}

// DomainAdapter declares how a row type maps onto dimensions and measures.
// Declare once, bind many times.
type DomainAdapter[T any] struct {
	dims     []column[T, string]
	measures []column[T, float64]
}

// NewDomainAdapter creates an empty adapter for T.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{}
}

// Dimension registers a dimension accessor. Registering a key again
// replaces the accessor and keeps its position.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	a.dims = register(a.dims, key, fn)
	return a
}

// Measure registers a measure accessor.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) float64) *DomainAdapter[T] {
	a.measures = register(a.measures, key, fn)
	return a
}

func register[T, V any](cols []column[T, V], key string, fn func(T) V) []column[T, V] {
	for i := range cols {
		if cols[i].key == key {
			cols[i].get = fn
			return cols
		}
	}
	return append(cols, column[T, V]{key: key, get: fn})
}

// Bind returns a view over data. The slice is referenced, not copied.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	v := &DomainView[T]{
		data:     data,
		dims:     make(map[string]func(T) string, len(a.dims)),
		measures: make(map[string]func(T) float64, len(a.measures)),
	}
	for _, c := range a.dims {
		v.dims[c.key] = c.get
		v.dimKeys = append(v.dimKeys, c.key)
	}
	for _, c := range a.measures {
		v.measures[c.key] = c.get
		v.mesKeys = append(v.mesKeys, c.key)
	}
	return v
}

// DomainView reads typed rows through the accessors captured at Bind.
type DomainView[T any] struct {
	data     []T
	dims     map[string]func(T) string
	measures map[string]func(T) float64
	dimKeys  []string
	mesKeys  []string
}

func (v *DomainView[T]) Len() int { return len(v.data) }

func (v *DomainView[T]) Dimension(i int, key string) string {
	fn, ok := v.dims[key]
	if !ok || i < 0 || i >= len(v.data) {
		return ""
	}
	return fn(v.data[i])
}

func (v *DomainView[T]) Measure(i int, key string) float64 {
	fn, ok := v.measures[key]
	if !ok || i < 0 || i >= len(v.data) {
		return 0
	}
	return fn(v.data[i])
}

func (v *DomainView[T]) DimensionKeys() []string { return v.dimKeys }
func (v *DomainView[T]) MeasureKeys() []string   { return v.mesKeys }
