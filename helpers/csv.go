// Package helpers converts chart specs into spreadsheet-ready output.
package helpers

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/spektr-org/gapminder/engine"
	"github.com/spektr-org/gapminder/schema"
)

// ============================================================================
// CSV EXPORT: ChartSpec → Sheets-ready CSV
// ============================================================================
// Each kind writes the data its marks carry, not the rendering details:
// ranked bars as label/value pairs, scatters as one marker per row,
// choropleths as one region per row, tables as displayed.
// ============================================================================

// WriteCSV writes spec as CSV. A spec with no marks writes a single
// "Result" row carrying its warning.
func WriteCSV(w io.Writer, spec engine.ChartSpec) error {
	cw := csv.NewWriter(w)

	var rows [][]string
	switch spec.Kind {
	case engine.KindRankedBar:
		rows = rankedRows(spec)
	case engine.KindScatter:
		rows = scatterRows(spec)
	case engine.KindChoropleth:
		rows = choroplethRows(spec)
	case engine.KindTable:
		rows = tableRows(spec)
	}
	if len(rows) <= 1 {
		msg := spec.Warning
		if msg == "" {
			msg = "No data"
		}
		rows = [][]string{{"Result", msg}}
	}

	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	return cw.Error()
}

func rankedRows(spec engine.ChartSpec) [][]string {
	rows := [][]string{{header(spec.Encoding.X, "Label"), header(spec.Encoding.Y, "Value")}}
	for _, s := range spec.Series {
		for _, d := range s.Data {
			rows = append(rows, []string{d.Label, fmtNum(d.Value)})
		}
	}
	return rows
}

func scatterRows(spec engine.ChartSpec) [][]string {
	rows := [][]string{{
		"Label",
		header(spec.Encoding.Color, "Group"),
		header(spec.Encoding.X, "X"),
		header(spec.Encoding.Y, "Y"),
		header(spec.Encoding.Size, "Size"),
	}}
	for _, p := range spec.Points {
		rows = append(rows, []string{p.Label, p.Group, fmtNum(p.X), fmtNum(p.Y), fmtNum(p.Size)})
	}
	return rows
}

func choroplethRows(spec engine.ChartSpec) [][]string {
	rows := [][]string{{header(spec.Encoding.Location, "Location"), "Label", header(spec.Encoding.Color, "Value")}}
	for _, r := range spec.Regions {
		rows = append(rows, []string{r.Location, r.Label, fmtNum(r.Value)})
	}
	return rows
}

func tableRows(spec engine.ChartSpec) [][]string {
	if spec.Table == nil {
		return nil
	}
	head := make([]string, len(spec.Table.Columns))
	for i, c := range spec.Table.Columns {
		head[i] = c.Label
	}
	return append([][]string{head}, spec.Table.Rows...)
}

// header maps an encoded attribute key to its display name.
func header(key, fallback string) string {
	if key == "" {
		return fallback
	}
	return schema.Gapminder().DisplayName(key)
}

// fmtNum writes whole numbers without decimals and fractions with two.
func fmtNum(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}
