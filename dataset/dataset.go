// Package dataset holds the immutable country × year table the dashboard
// explores. A Dataset is built once by one of the Load functions and is
// safe for concurrent readers: nothing mutates it after load.
package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/spektr-org/gapminder/engine"
	"github.com/spektr-org/gapminder/schema"
)

// Row is one (country, continent, year) observation.
type Row struct {
	Country        string  `json:"country"`
	Continent      string  `json:"continent"`
	Year           int     `json:"year"`
	Population     int64   `json:"population"`
	GDPPerCapita   float64 `json:"gdpPerCapita"`
	LifeExpectancy float64 `json:"lifeExpectancy"`
	CountryCode    string  `json:"countryCode"` // ISO alpha-3; may be empty
}

// Dataset is an ordered, read-only sequence of rows.
type Dataset struct {
	source  string
	rows    []Row
	view    engine.RecordView
	domains map[string][]string
}

var rowAdapter = engine.NewDomainAdapter[Row]().
	Dimension(schema.Country, func(r Row) string { return r.Country }).
	Dimension(schema.Continent, func(r Row) string { return r.Continent }).
	Dimension(schema.Year, func(r Row) string { return strconv.Itoa(r.Year) }).
	Dimension(schema.CountryCode, func(r Row) string { return r.CountryCode }).
	Measure(schema.Population, func(r Row) float64 { return float64(r.Population) }).
	Measure(schema.GDPPerCapita, func(r Row) float64 { return r.GDPPerCapita }).
	Measure(schema.LifeExpectancy, func(r Row) float64 { return r.LifeExpectancy })

// New validates rows and builds a Dataset. Row order is kept as given.
func New(source string, rows []Row) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, &DataLoadError{Source: source, Err: ErrEmptyTable}
	}
	owned := append([]Row(nil), rows...)
	if err := validate(source, owned, nil); err != nil {
		return nil, err
	}
	return newDataset(source, owned), nil
}

func newDataset(source string, rows []Row) *Dataset {
	ds := &Dataset{source: source, rows: rows, view: rowAdapter.Bind(rows)}
	ds.domains = map[string][]string{
		schema.Country:     stringDomain(rows, func(r Row) string { return r.Country }),
		schema.Continent:   stringDomain(rows, func(r Row) string { return r.Continent }),
		schema.CountryCode: stringDomain(rows, func(r Row) string { return r.CountryCode }),
		schema.Year:        yearDomain(rows),
	}
	return ds
}

// Source describes where the rows came from (path, table, "sample").
func (d *Dataset) Source() string { return d.source }

// Len returns the number of rows.
func (d *Dataset) Len() int { return len(d.rows) }

// Row returns row i.
func (d *Dataset) Row(i int) Row { return d.rows[i] }

// Rows returns a copy of all rows in dataset order.
func (d *Dataset) Rows() []Row { return append([]Row(nil), d.rows...) }

// View returns the zero-copy RecordView over the rows.
func (d *Dataset) View() engine.RecordView { return d.view }

// ColumnDomain returns the distinct values of a filterable column sorted
// ascending: lexicographic for strings, numeric for years. The returned
// slice is a copy.
func (d *Dataset) ColumnDomain(name string) ([]string, error) {
	dom, ok := d.domains[name]
	if !ok {
		return nil, fmt.Errorf("column %q has no domain", name)
	}
	return append([]string(nil), dom...), nil
}

// Continents returns the continent domain.
func (d *Dataset) Continents() []string { return append([]string(nil), d.domains[schema.Continent]...) }

// Years returns the year domain as integers, ascending.
func (d *Dataset) Years() []int {
	years := make([]int, 0, len(d.domains[schema.Year]))
	for _, y := range d.domains[schema.Year] {
		v, _ := strconv.Atoi(y)
		years = append(years, v)
	}
	return years
}

// ============================================================================
// VALIDATION
// ============================================================================

// validate checks the row invariants. lines maps row index → source line
// for error reporting; nil means line = index + 1.
func validate(source string, rows []Row, lines []int) error {
	lineOf := func(i int) int {
		if lines != nil && i < len(lines) {
			return lines[i]
		}
		return i + 1
	}
	fail := func(i int, column string, err error, detail string) error {
		return &DataLoadError{Source: source, Line: lineOf(i), Column: column, Err: err, Detail: detail}
	}

	type key struct {
		country string
		year    int
	}
	seen := make(map[key]bool, len(rows))
	codeOf := make(map[string]string)
	countryOf := make(map[string]string)

	for i, r := range rows {
		switch {
		case strings.TrimSpace(r.Country) == "":
			return fail(i, "Country", ErrMalformedValue, "empty country")
		case strings.TrimSpace(r.Continent) == "":
			return fail(i, "Continent", ErrMalformedValue, "empty continent")
		case r.Population < 0:
			return fail(i, "Population", ErrOutOfRange, "must be >= 0")
		case math.IsNaN(r.GDPPerCapita) || math.IsInf(r.GDPPerCapita, 0) || r.GDPPerCapita < 0:
			return fail(i, "GDP per Capita", ErrOutOfRange, "must be a finite value >= 0")
		case math.IsNaN(r.LifeExpectancy) || math.IsInf(r.LifeExpectancy, 0) || r.LifeExpectancy <= 0:
			return fail(i, "Life Expectancy", ErrOutOfRange, "must be a finite value > 0")
		}

		k := key{r.Country, r.Year}
		if seen[k] {
			return fail(i, "", ErrDuplicateRow, fmt.Sprintf("%s %d", r.Country, r.Year))
		}
		seen[k] = true

		if r.CountryCode == "" {
			continue
		}
		if prev, ok := codeOf[r.Country]; ok && prev != r.CountryCode {
			return fail(i, "ISO Alpha Country Code", ErrInconsistentCode,
				fmt.Sprintf("%s has %s and %s", r.Country, prev, r.CountryCode))
		}
		if other, ok := countryOf[r.CountryCode]; ok && other != r.Country {
			return fail(i, "ISO Alpha Country Code", ErrInconsistentCode,
				fmt.Sprintf("%s shared by %s and %s", r.CountryCode, other, r.Country))
		}
		codeOf[r.Country] = r.CountryCode
		countryOf[r.CountryCode] = r.Country
	}
	return nil
}

func stringDomain(rows []Row, get func(Row) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range rows {
		v := get(r)
		if v != "" && !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func yearDomain(rows []Row) []string {
	seen := make(map[int]bool)
	var years []int
	for _, r := range rows {
		if !seen[r.Year] {
			seen[r.Year] = true
			years = append(years, r.Year)
		}
	}
	sort.Ints(years)
	out := make([]string, len(years))
	for i, y := range years {
		out[i] = strconv.Itoa(y)
	}
	return out
}
