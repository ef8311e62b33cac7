package schema

import (
	"fmt"
	"strings"
)

// ============================================================================
// SCHEMA: Describes the shape of the country × year source table
// ============================================================================
// The dataset loader resolves source headers through this schema.
// The engine and the dashboard use it for display names and for the
// set of metrics a "variable" control may select.
// ============================================================================

// Column keys used across dataset, engine and dashboard.
const (
	Country        = "country"
	Continent      = "continent"
	Year           = "year"
	CountryCode    = "iso_alpha"
	Population     = "population"
	GDPPerCapita   = "gdp_per_capita"
	LifeExpectancy = "life_expectancy"
)

// Config describes the complete shape of a dataset.
type Config struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`

	Dimensions []DimensionMeta `json:"dimensions"`
	Measures   []MeasureMeta   `json:"measures"`
}

// DimensionMeta describes a string field used for filtering.
type DimensionMeta struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"displayName"`
	Aliases     []string `json:"aliases,omitempty"` // alternate source header names
	Filterable  bool     `json:"filterable"`
	Numeric     bool     `json:"numeric,omitempty"` // domain sorts numerically (years)
	Optional    bool     `json:"optional,omitempty"`
}

// MeasureMeta describes a numeric field used for ranking and encoding.
type MeasureMeta struct {
	Key         string   `json:"key"`
	DisplayName string   `json:"displayName"`
	Aliases     []string `json:"aliases,omitempty"`
	Integer     bool     `json:"integer,omitempty"`
}

// Gapminder returns the schema of the gapminder table. Column order is the
// order the raw table view renders them in.
func Gapminder() Config {
	return Config{
		Name:        "Gapminder",
		Description: "Population, GDP per capita and life expectancy by country and year",
		Dimensions: []DimensionMeta{
			{Key: Country, DisplayName: "Country", Filterable: true},
			{Key: Continent, DisplayName: "Continent", Filterable: true},
			{Key: Year, DisplayName: "Year", Filterable: true, Numeric: true},
			{Key: CountryCode, DisplayName: "ISO Alpha Country Code", Aliases: []string{"iso_alpha", "iso_alpha3", "code"}, Filterable: true, Optional: true},
		},
		Measures: []MeasureMeta{
			{Key: LifeExpectancy, DisplayName: "Life Expectancy", Aliases: []string{"lifeExp", "life_exp"}},
			{Key: Population, DisplayName: "Population", Aliases: []string{"pop"}, Integer: true},
			{Key: GDPPerCapita, DisplayName: "GDP per Capita", Aliases: []string{"gdpPercap", "gdp_percap"}},
		},
	}
}

// TableColumns returns the column keys in display order:
// Country, Continent, Year, Life Expectancy, Population, GDP per Capita, code.
func (c Config) TableColumns() []string {
	return []string{Country, Continent, Year, LifeExpectancy, Population, GDPPerCapita, CountryCode}
}

// DimensionKeys returns all dimension keys.
func (c Config) DimensionKeys() []string {
	keys := make([]string, len(c.Dimensions))
	for i, d := range c.Dimensions {
		keys[i] = d.Key
	}
	return keys
}

// MeasureKeys returns all measure keys.
func (c Config) MeasureKeys() []string {
	keys := make([]string, len(c.Measures))
	for i, m := range c.Measures {
		keys[i] = m.Key
	}
	return keys
}

// Dimension looks up a dimension by key.
func (c Config) Dimension(key string) (DimensionMeta, bool) {
	for _, d := range c.Dimensions {
		if d.Key == key {
			return d, true
		}
	}
	return DimensionMeta{}, false
}

// Measure looks up a measure by key.
func (c Config) Measure(key string) (MeasureMeta, bool) {
	for _, m := range c.Measures {
		if m.Key == key {
			return m, true
		}
	}
	return MeasureMeta{}, false
}

// MeasureByDisplayName resolves "GDP per Capita" → gdp_per_capita.
func (c Config) MeasureByDisplayName(name string) (MeasureMeta, bool) {
	for _, m := range c.Measures {
		if m.DisplayName == name {
			return m, true
		}
	}
	return MeasureMeta{}, false
}

// DisplayName returns the display name of any column key, or the key itself.
func (c Config) DisplayName(key string) string {
	if d, ok := c.Dimension(key); ok {
		return d.DisplayName
	}
	if m, ok := c.Measure(key); ok {
		return m.DisplayName
	}
	return key
}

// VariableNames lists the metric display names selectable by a variable
// control, in the order the dashboard offers them.
func (c Config) VariableNames() []string {
	return []string{"Population", "GDP per Capita", "Life Expectancy"}
}

// ResolveHeaders maps each schema key to its column index in headers.
// A header matches a column by key, display name or alias, ignoring case,
// surrounding space and the difference between spaces and underscores.
// Required columns that are absent are returned in missing.
func (c Config) ResolveHeaders(headers []string) (index map[string]int, missing []string) {
	normalized := make(map[string]int, len(headers))
	for i, h := range headers {
		n := normalizeHeader(h)
		if _, dup := normalized[n]; !dup {
			normalized[n] = i
		}
	}

	index = make(map[string]int)
	lookup := func(key string, names []string) bool {
		for _, name := range names {
			if i, ok := normalized[normalizeHeader(name)]; ok {
				index[key] = i
				return true
			}
		}
		return false
	}

	for _, d := range c.Dimensions {
		names := append([]string{d.Key, d.DisplayName}, d.Aliases...)
		if !lookup(d.Key, names) && !d.Optional {
			missing = append(missing, d.DisplayName)
		}
	}
	for _, m := range c.Measures {
		names := append([]string{m.Key, m.DisplayName}, m.Aliases...)
		if !lookup(m.Key, names) {
			missing = append(missing, m.DisplayName)
		}
	}
	return index, missing
}

// ValidateKey returns an error when key names neither a dimension nor a measure.
func (c Config) ValidateKey(key string) error {
	if _, ok := c.Dimension(key); ok {
		return nil
	}
	if _, ok := c.Measure(key); ok {
		return nil
	}
	return fmt.Errorf("unknown column %q", key)
}

// normalizeHeader converts "GDP per Capita" → "gdp_per_capita".
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}
