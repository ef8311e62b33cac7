package dataset

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"regexp"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DefaultTable is the table LoadSQLite reads when none is given.
const DefaultTable = "gapminder"

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadSQLite reads every row of table from the SQLite database at path.
// Column names resolve exactly like CSV headers. The database must already
// exist; it is closed before returning.
func LoadSQLite(ctx context.Context, path, table string) (*Dataset, error) {
	if table == "" {
		table = DefaultTable
	}
	source := fmt.Sprintf("%s:%s", path, table)
	if !identifierPattern.MatchString(table) {
		return nil, &DataLoadError{Source: source, Err: ErrSourceUnreadable, Detail: "invalid table name"}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &DataLoadError{Source: source, Err: ErrSourceUnreadable, Detail: err.Error()}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &DataLoadError{Source: source, Err: ErrSourceUnreadable, Detail: err.Error()}
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT * FROM "%s"`, table))
	if err != nil {
		return nil, &DataLoadError{Source: source, Err: ErrSourceUnreadable, Detail: err.Error()}
	}
	defer func() { _ = rows.Close() }()

	headers, err := rows.Columns()
	if err != nil {
		return nil, &DataLoadError{Source: source, Err: ErrSourceUnreadable, Detail: err.Error()}
	}

	var records [][]string
	var lines []int
	for rows.Next() {
		cells := make([]sql.NullString, len(headers))
		dest := make([]any, len(headers))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, &DataLoadError{Source: source, Line: len(records) + 1, Err: ErrMalformedValue, Detail: err.Error()}
		}
		rec := make([]string, len(headers))
		for i, c := range cells {
			if c.Valid {
				rec[i] = c.String
			}
		}
		records = append(records, rec)
		lines = append(lines, len(records))
	}
	if err := rows.Err(); err != nil {
		return nil, &DataLoadError{Source: source, Err: ErrSourceUnreadable, Detail: err.Error()}
	}

	return fromTable(source, headers, records, lines)
}
