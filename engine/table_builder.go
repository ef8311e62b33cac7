package engine

import (
	"strconv"
)

// ============================================================================
// TABLE BUILDER: Row per record, schema column order
// ============================================================================

// Table renders every row of view, in view order, with the schema's table
// columns. Callers hand it the full dataset view: the raw table ignores all
// filter state.
func Table(view RecordView, title string, opts ...Option) ChartSpec {
	cfg := applyOptions(opts)

	keys := cfg.Schema.TableColumns()
	columns := make([]Column, 0, len(keys))
	for _, key := range keys {
		col := Column{Key: key, Label: cfg.Schema.DisplayName(key), Type: "text", Align: "left"}
		if _, ok := cfg.Schema.Measure(key); ok {
			col.Type = "number"
			col.Align = "right"
		}
		columns = append(columns, col)
	}

	n := view.Len()
	rows := make([][]string, 0, n)
	for i := 0; i < n; i++ {
		row := make([]string, 0, len(keys))
		for _, key := range keys {
			row = append(row, cellValue(view, i, key, cfg))
		}
		rows = append(rows, row)
	}

	spec := ChartSpec{
		Kind:  KindTable,
		Title: title,
		Rows:  Materialize(view),
		Table: &TableData{Columns: columns, Rows: rows},
	}
	if n == 0 {
		spec.Warning = EmptyResultWarning
	}
	return spec
}

func cellValue(view RecordView, i int, key string, cfg *config) string {
	m, ok := cfg.Schema.Measure(key)
	if !ok {
		return view.Dimension(i, key)
	}
	v := view.Measure(i, key)
	if m.Integer {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
