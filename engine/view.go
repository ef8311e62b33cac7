package engine

// ============================================================================
// RECORD VIEW: Read-only row access for the builders
// ============================================================================
// Builders read rows through RecordView and never hold the dataset itself.
// Filtering and ranking yield index views over the same rows, so a chart
// rebuild after a control event allocates indices, not records.
//
//   NewSliceView        : []Record fixtures
//   DomainAdapter.Bind  : typed rows read through accessors
//   index view          : a filtered or ranked selection of a parent view
// ============================================================================

// RecordView provides indexed access to a dataset. Out-of-range indices and
// unknown keys read as the zero value.
type RecordView interface {
	Len() int
	Dimension(index int, key string) string
	Measure(index int, key string) float64
	DimensionKeys() []string
	MeasureKeys() []string
}

// keyset carries the column order shared by every view implementation.
type keyset struct {
	dims []string
	meas []string
}

func (k keyset) DimensionKeys() []string { return k.dims }
func (k keyset) MeasureKeys() []string   { return k.meas }

// SliceView serves []Record rows. Used by tests and ad-hoc callers.
type SliceView struct {
	keyset
	records []Record
}

// NewSliceView wraps records. dimKeys and mesKeys fix the column order
// reported to builders, since map iteration has none.
func NewSliceView(records []Record, dimKeys, mesKeys []string) RecordView {
	return &SliceView{keyset: keyset{dims: dimKeys, meas: mesKeys}, records: records}
}

func (v *SliceView) Len() int { return len(v.records) }

func (v *SliceView) Dimension(i int, key string) string {
	if !inRange(i, len(v.records)) {
		return ""
	}
	return v.records[i].Dimensions[key]
}

func (v *SliceView) Measure(i int, key string) float64 {
	if !inRange(i, len(v.records)) {
		return 0
	}
	return v.records[i].Measures[key]
}

// indexView selects rows of parent by position, in the order given.
type indexView struct {
	parent RecordView
	rows   []int
}

func newIndexView(parent RecordView, rows []int) RecordView {
	return &indexView{parent: parent, rows: rows}
}

func (v *indexView) Len() int { return len(v.rows) }

func (v *indexView) Dimension(i int, key string) string {
	if !inRange(i, len(v.rows)) {
		return ""
	}
	return v.parent.Dimension(v.rows[i], key)
}

func (v *indexView) Measure(i int, key string) float64 {
	if !inRange(i, len(v.rows)) {
		return 0
	}
	return v.parent.Measure(v.rows[i], key)
}

func (v *indexView) DimensionKeys() []string { return v.parent.DimensionKeys() }
func (v *indexView) MeasureKeys() []string   { return v.parent.MeasureKeys() }

func inRange(i, n int) bool { return i >= 0 && i < n }

// ============================================================================
// DOMAIN ADAPTER: Typed rows as a RecordView
// ============================================================================
//
//	rows := engine.NewDomainAdapter[dataset.Row]().
//	    Dimension("country", func(r dataset.Row) string { return r.Country }).
//	    Measure("pop", func(r dataset.Row) float64 { return float64(r.Population) })
//	view := rows.Bind(data)
//
// ============================================================================

// DomainAdapter maps the columns of T to accessor funcs. Build it once at
// package init and Bind it to each loaded table.
type DomainAdapter[T any] struct {
	keyset
	dims map[string]func(T) string
	meas map[string]func(T) float64
}

// NewDomainAdapter returns an adapter with no columns.
func NewDomainAdapter[T any]() *DomainAdapter[T] {
	return &DomainAdapter[T]{
		dims: make(map[string]func(T) string),
		meas: make(map[string]func(T) float64),
	}
}

// Dimension adds or replaces a categorical column.
func (a *DomainAdapter[T]) Dimension(key string, fn func(T) string) *DomainAdapter[T] {
	if _, ok := a.dims[key]; !ok {
		a.keyset.dims = append(a.keyset.dims, key)
	}
	a.dims[key] = fn
	return a
}

// Measure adds or replaces a numeric column.
func (a *DomainAdapter[T]) Measure(key string, fn func(T) float64) *DomainAdapter[T] {
	if _, ok := a.meas[key]; !ok {
		a.keyset.meas = append(a.keyset.meas, key)
	}
	a.meas[key] = fn
	return a
}

// Bind views data through the adapter. The slice is shared, not copied;
// datasets never mutate rows after load.
func (a *DomainAdapter[T]) Bind(data []T) RecordView {
	return &typedView[T]{adapter: a, data: data}
}

type typedView[T any] struct {
	adapter *DomainAdapter[T]
	data    []T
}

func (v *typedView[T]) Len() int { return len(v.data) }

func (v *typedView[T]) Dimension(i int, key string) string {
	fn, ok := v.adapter.dims[key]
	if !ok || !inRange(i, len(v.data)) {
		return ""
	}
	return fn(v.data[i])
}

func (v *typedView[T]) Measure(i int, key string) float64 {
	fn, ok := v.adapter.meas[key]
	if !ok || !inRange(i, len(v.data)) {
		return 0
	}
	return fn(v.data[i])
}

func (v *typedView[T]) DimensionKeys() []string { return v.adapter.keyset.dims }
func (v *typedView[T]) MeasureKeys() []string   { return v.adapter.keyset.meas }

// Materialize copies a view into Records, in view order, so a ChartSpec
// stays valid after the dataset it came from is gone.
func Materialize(view RecordView) []Record {
	dims, meas := view.DimensionKeys(), view.MeasureKeys()
	out := make([]Record, view.Len())
	for i := range out {
		rec := Record{
			Dimensions: make(map[string]string, len(dims)),
			Measures:   make(map[string]float64, len(meas)),
		}
		for _, k := range dims {
			rec.Dimensions[k] = view.Dimension(i, k)
		}
		for _, k := range meas {
			rec.Measures[k] = view.Measure(i, k)
		}
		out[i] = rec
	}
	return out
}
