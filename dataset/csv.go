package dataset

import (
	"bytes"
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/spektr-org/gapminder/schema"
)

// ============================================================================
// CSV LOADER: Parses a source table into validated Rows
// ============================================================================
// Headers resolve through the schema, so both the display names
// ("GDP per Capita") and the raw gapminder names ("gdpPercap") load.
// Unmapped columns (iso_num, ...) are skipped. Unlike an ad-hoc parser,
// a malformed row is fatal: the dataset is all-or-nothing.
// ============================================================================

//go:embed sample.csv
var sampleCSV []byte

// SampleSource names the embedded excerpt: fifteen countries, two to four
// per continent, in 1952, 1957 and 2007. The full table has 142 countries
// over twelve years and is loaded from a file or SQLite.
const SampleSource = "sample"

// LoadSample loads the embedded excerpt of the gapminder table.
func LoadSample() (*Dataset, error) {
	return LoadCSV(bytes.NewReader(sampleCSV), SampleSource)
}

// LoadCSVFile loads a CSV table from path.
func LoadCSVFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: ErrSourceUnreadable, Detail: err.Error()}
	}
	defer f.Close()
	return LoadCSV(f, path)
}

// LoadCSV reads a CSV table with a header row from r.
func LoadCSV(r io.Reader, source string) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &DataLoadError{Source: source, Err: ErrEmptyTable, Detail: "no header row"}
	}
	if err != nil {
		return nil, &DataLoadError{Source: source, Line: 1, Err: ErrMalformedValue, Detail: err.Error()}
	}

	var records [][]string
	var lines []int
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var line int
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				line = pe.StartLine
			}
			return nil, &DataLoadError{Source: source, Line: line, Err: ErrMalformedValue, Detail: err.Error()}
		}
		line, _ := reader.FieldPos(0)
		records = append(records, rec)
		lines = append(lines, line)
	}

	return fromTable(source, headers, records, lines)
}

// fromTable converts string cells to Rows and validates them.
func fromTable(source string, headers []string, records [][]string, lines []int) (*Dataset, error) {
	sch := schema.Gapminder()
	index, missing := sch.ResolveHeaders(headers)
	if len(missing) > 0 {
		return nil, &DataLoadError{Source: source, Err: ErrMissingColumn, Detail: strings.Join(missing, ", ")}
	}
	if len(records) == 0 {
		return nil, &DataLoadError{Source: source, Err: ErrEmptyTable}
	}

	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		cell := func(key string) string {
			col, ok := index[key]
			if !ok || col >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[col])
		}
		fail := func(key string, detail string) error {
			return &DataLoadError{Source: source, Line: lines[i], Column: sch.DisplayName(key), Err: ErrMalformedValue, Detail: detail}
		}

		year, err := strconv.Atoi(cell(schema.Year))
		if err != nil {
			return nil, fail(schema.Year, fmt.Sprintf("%q is not an integer", cell(schema.Year)))
		}
		pop, err := parseCount(cell(schema.Population))
		if err != nil {
			return nil, fail(schema.Population, err.Error())
		}
		gdp, err := strconv.ParseFloat(cell(schema.GDPPerCapita), 64)
		if err != nil {
			return nil, fail(schema.GDPPerCapita, fmt.Sprintf("%q is not a number", cell(schema.GDPPerCapita)))
		}
		life, err := strconv.ParseFloat(cell(schema.LifeExpectancy), 64)
		if err != nil {
			return nil, fail(schema.LifeExpectancy, fmt.Sprintf("%q is not a number", cell(schema.LifeExpectancy)))
		}

		rows = append(rows, Row{
			Country:        cell(schema.Country),
			Continent:      cell(schema.Continent),
			Year:           year,
			Population:     pop,
			GDPPerCapita:   gdp,
			LifeExpectancy: life,
			CountryCode:    cell(schema.CountryCode),
		})
	}

	if err := validate(source, rows, lines); err != nil {
		return nil, err
	}
	return newDataset(source, rows), nil
}

// parseCount accepts "8425333" and integral floats such as "8.425333e+06".
func parseCount(s string) (int64, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt64 {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int64(f), nil
}
