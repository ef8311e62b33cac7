package engine

import (
	"errors"
	"reflect"
	"testing"
)

// ============================================================================
// ENGINE TESTS
// ============================================================================
// Tests cover:
//   1. Filter: order preservation, constraint replacement, empty results
//   2. Rank: direction, stable ties, default limit
//   3. Builders: ranked bar, scatter radius, choropleth regions, table cells
//   4. Execute: dispatch, unknown kinds and measures, determinism
// ============================================================================

// --- Test Fixtures ---

var (
	fixtureDims = []string{"country", "continent", "year", "iso_alpha"}
	fixtureMeas = []string{"life_expectancy", "population", "gdp_per_capita"}
)

func rec(country, continent, year, code string, life, pop, gdp float64) Record {
	return Record{
		Dimensions: map[string]string{"country": country, "continent": continent, "year": year, "iso_alpha": code},
		Measures:   map[string]float64{"life_expectancy": life, "population": pop, "gdp_per_capita": gdp},
	}
}

func fixtureView() RecordView {
	return NewSliceView([]Record{
		rec("Afghanistan", "Asia", "1952", "AFG", 28.801, 8425333, 779.4453145),
		rec("Japan", "Asia", "1952", "JPN", 63.03, 86459025, 3216.956347),
		rec("Chad", "Africa", "1952", "TCD", 38.092, 2682462, 1178.665927),
		rec("Japan", "Asia", "1957", "JPN", 65.5, 91563009, 4317.694365),
		rec("Kosovo", "Europe", "1952", "", 53.82, 1000000, 1000),
		rec("India", "Asia", "1952", "IND", 37.373, 372000000, 546.5657493),
	}, fixtureDims, fixtureMeas)
}

func countries(view RecordView) []string {
	out := make([]string, view.Len())
	for i := range out {
		out[i] = view.Dimension(i, "country")
	}
	return out
}

// ============================================================================
// 1. FILTER
// ============================================================================

func TestFilterKeepsDatasetOrder(t *testing.T) {
	got := Filter(fixtureView(), Where("continent", "Asia").And("year", "1952"))
	assertStrings(t, countries(got), []string{"Afghanistan", "Japan", "India"}, "filtered countries")
}

func TestFilterEmptyPredicateMatchesAll(t *testing.T) {
	if got := Filter(fixtureView(), Predicate{}); got.Len() != 6 {
		t.Errorf("expected 6 rows, got %d", got.Len())
	}
}

func TestFilterNoMatch(t *testing.T) {
	if got := Filter(fixtureView(), Where("continent", "Atlantis")); got.Len() != 0 {
		t.Errorf("expected empty view, got %d rows", got.Len())
	}
}

func TestPredicateAndReplacesDimension(t *testing.T) {
	p := Where("year", "1952").And("continent", "Asia").And("year", "1957")
	if len(p.Constraints) != 2 {
		t.Fatalf("expected 2 constraints, got %+v", p.Constraints)
	}
	if got := p.String(); got != "continent=Asia, year=1957" {
		t.Errorf("String() = %q", got)
	}
	if got := (Predicate{}).String(); got != "all" {
		t.Errorf("empty String() = %q", got)
	}
}

// ============================================================================
// 2. RANK
// ============================================================================

func TestRankDescending(t *testing.T) {
	asia52 := Filter(fixtureView(), Where("continent", "Asia").And("year", "1952"))
	got := Rank(asia52, "life_expectancy", Descending, 0)
	assertStrings(t, countries(got), []string{"Japan", "India", "Afghanistan"}, "ranked")
}

func TestRankTwoCountryPopulation(t *testing.T) {
	view := NewSliceView([]Record{
		rec("Afghanistan", "Asia", "1952", "AFG", 28.801, 8425333, 779.4453145),
		rec("Japan", "Asia", "1952", "JPN", 63.03, 86459025, 3216.956347),
	}, fixtureDims, fixtureMeas)

	asia52 := Filter(view, Where("continent", "Asia").And("year", "1952"))
	got := Rank(asia52, "population", Descending, 15)
	assertStrings(t, countries(got), []string{"Japan", "Afghanistan"}, "ranked by population")
}

func TestRankAscending(t *testing.T) {
	got := Rank(fixtureView(), "population", Ascending, 2)
	assertStrings(t, countries(got), []string{"Kosovo", "Chad"}, "ascending")
}

func TestRankStableTies(t *testing.T) {
	view := NewSliceView([]Record{
		rec("B", "X", "1", "BBB", 50, 1, 1),
		rec("A", "X", "1", "AAA", 60, 1, 1),
		rec("C", "X", "1", "CCC", 50, 1, 1),
		rec("D", "X", "1", "DDD", 50, 1, 1),
	}, fixtureDims, fixtureMeas)

	got := Rank(view, "life_expectancy", Descending, 0)
	assertStrings(t, countries(got), []string{"A", "B", "C", "D"}, "tied rows keep input order")
}

func TestRankDefaultLimit(t *testing.T) {
	var records []Record
	for i := 0; i < 40; i++ {
		records = append(records, rec(string(rune('A'+i%26))+string(rune('a'+i/26)), "X", "1", "", float64(i+1), 1, 1))
	}
	view := NewSliceView(records, fixtureDims, fixtureMeas)

	got := Rank(view, "life_expectancy", Descending, 0)
	if got.Len() != DefaultLimit {
		t.Fatalf("expected %d rows, got %d", DefaultLimit, got.Len())
	}
	for i := 1; i < got.Len(); i++ {
		if got.Measure(i-1, "life_expectancy") < got.Measure(i, "life_expectancy") {
			t.Errorf("row %d out of order", i)
		}
	}
	if got.Measure(0, "life_expectancy") != 40 {
		t.Errorf("top value = %v, want 40", got.Measure(0, "life_expectancy"))
	}
}

// ============================================================================
// 3. BUILDERS
// ============================================================================

func TestRankedBarSeries(t *testing.T) {
	ranked := Top(Filter(fixtureView(), Where("year", "1952")), "population")
	spec := RankedBar(ranked, "population", "Population — 1952")

	if spec.Kind != KindRankedBar {
		t.Errorf("kind = %s", spec.Kind)
	}
	if len(spec.Series) != ranked.Len() || len(spec.Rows) != ranked.Len() {
		t.Fatalf("series=%d rows=%d, want %d", len(spec.Series), len(spec.Rows), ranked.Len())
	}
	first := spec.Series[0]
	if first.Name != "India" || first.Data[0].Text != "372,000,000" {
		t.Errorf("first bar = %+v", first)
	}
	if first.Color != defaultColors[0] || spec.Series[1].Color != defaultColors[1] {
		t.Error("bars should take consecutive palette colors")
	}
	enc := spec.Encoding
	if enc.X != "country" || enc.Y != "population" || enc.Color != "country" || !enc.Labels {
		t.Errorf("encoding = %+v", enc)
	}
	if spec.Warning != "" {
		t.Errorf("unexpected warning %q", spec.Warning)
	}
}

func TestRankedBarEmpty(t *testing.T) {
	empty := Filter(fixtureView(), Where("continent", "Atlantis"))
	spec := RankedBar(empty, "population", "Population")
	if len(spec.Series) != 0 || len(spec.Rows) != 0 {
		t.Errorf("expected zero bars, got %d series", len(spec.Series))
	}
	if spec.Warning != EmptyResultWarning {
		t.Errorf("warning = %q", spec.Warning)
	}
}

func TestScatterPoints(t *testing.T) {
	spec := Scatter(Filter(fixtureView(), Where("year", "1952")), "gdp_per_capita", "life_expectancy", "population", "Wealth")
	if len(spec.Points) != 5 {
		t.Fatalf("expected 5 points, got %d", len(spec.Points))
	}

	// Groups are colored in sorted order: Africa, Asia, Europe.
	colors := map[string]string{}
	for _, p := range spec.Points {
		colors[p.Group] = p.Color
		if p.Radius < 2 || p.Radius > 40 {
			t.Errorf("%s radius %v outside [2, 40]", p.Label, p.Radius)
		}
	}
	if colors["Africa"] != defaultColors[0] || colors["Asia"] != defaultColors[1] || colors["Europe"] != defaultColors[2] {
		t.Errorf("group colors = %v", colors)
	}

	// India has the largest population, so the largest marker.
	var india, chad ScatterPoint
	for _, p := range spec.Points {
		switch p.Label {
		case "India":
			india = p
		case "Chad":
			chad = p
		}
	}
	if india.Radius <= chad.Radius {
		t.Errorf("India radius %v should exceed Chad radius %v", india.Radius, chad.Radius)
	}
}

func TestMarkerRadiusClippedAndMonotonic(t *testing.T) {
	cfg := applyOptions(nil)
	if got := markerRadius(1e12, 1, cfg); got != 40 {
		t.Errorf("huge value radius = %v, want 40", got)
	}
	if got := markerRadius(1e-9, 1, cfg); got != 2 {
		t.Errorf("tiny value radius = %v, want 2", got)
	}
	if got := markerRadius(0, 1, cfg); got != 2 {
		t.Errorf("zero value radius = %v, want 2", got)
	}
	if got := markerRadius(5, 5, cfg); got != 8 {
		t.Errorf("mean value radius = %v, want 8", got)
	}

	prev := 0.0
	for _, v := range []float64{0, 0.01, 0.5, 1, 2, 10, 25, 100, 1000, 1e6} {
		r := markerRadius(v, 10, cfg)
		if r < prev {
			t.Errorf("radius decreased at %v: %v < %v", v, r, prev)
		}
		prev = r
	}

	capped := applyOptions([]Option{WithMaxRadius(12)})
	if got := markerRadius(1e12, 1, capped); got != 12 {
		t.Errorf("WithMaxRadius(12) radius = %v", got)
	}
}

func TestChoroplethDropsUnmappedCodes(t *testing.T) {
	view := NewSliceView([]Record{
		rec("Afghanistan", "Asia", "1952", "AFG", 28.801, 1, 1),
		rec("Kosovo", "Europe", "1952", "", 53.82, 1, 1),
		rec("Nowhere", "Europe", "1952", "xx", 40, 1, 1),
		rec("Neverland", "Europe", "1952", "XYZ", 45, 1, 1),
		rec("Japan", "Asia", "1952", "JPN", 63.03, 1, 1),
	}, fixtureDims, fixtureMeas)

	spec := Choropleth(view, "life_expectancy", "Life Expectancy Choropleth Map [1952]")
	if len(spec.Rows) != 5 {
		t.Errorf("rows should keep the full subset, got %d", len(spec.Rows))
	}
	if len(spec.Regions) != 2 {
		t.Fatalf("expected 2 regions, got %+v", spec.Regions)
	}
	if spec.ColorScale == nil || spec.ColorScale.Min != 28.801 || spec.ColorScale.Max != 63.03 {
		t.Errorf("color scale = %+v", spec.ColorScale)
	}
	afg, jpn := spec.Regions[0], spec.Regions[1]
	if afg.Location != "AFG" || afg.Intensity != 0 || afg.Color != rdYlBu[0] {
		t.Errorf("AFG region = %+v", afg)
	}
	if jpn.Location != "JPN" || jpn.Intensity != 1 || jpn.Color != rdYlBu[len(rdYlBu)-1] {
		t.Errorf("JPN region = %+v", jpn)
	}
}

func TestIsCountryCode(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"AFG", true},
		{"CIV", true},
		{"HKG", true},
		{"PSE", true},
		{"REU", true},
		{"TWN", true},
		{"XYZ", false},
		{"afg", false},
		{"AF", false},
		{"004", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsCountryCode(tt.code); got != tt.want {
			t.Errorf("IsCountryCode(%q) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestChoroplethFlatDomain(t *testing.T) {
	view := NewSliceView([]Record{rec("Japan", "Asia", "1952", "JPN", 63.03, 1, 1)}, fixtureDims, fixtureMeas)
	spec := Choropleth(view, "life_expectancy", "map")
	if len(spec.Regions) != 1 || spec.Regions[0].Intensity != 0.5 {
		t.Fatalf("regions = %+v", spec.Regions)
	}
	if spec.Regions[0].Color != "#ffffbf" {
		t.Errorf("midpoint color = %s, want #ffffbf", spec.Regions[0].Color)
	}
}

func TestChoroplethEmpty(t *testing.T) {
	spec := Choropleth(Filter(fixtureView(), Where("year", "2099")), "population", "map")
	if spec.Warning != EmptyResultWarning || len(spec.Regions) != 0 {
		t.Errorf("spec = %+v", spec)
	}
	if spec.ColorScale == nil || spec.ColorScale.Name != "RdYlBu" {
		t.Error("empty map should still carry its color scale")
	}
}

func TestInterpolateColor(t *testing.T) {
	stops := []string{"#000000", "#ffffff"}
	tests := []struct {
		t    float64
		want string
	}{
		{-1, "#000000"},
		{0, "#000000"},
		{0.5, "#808080"},
		{1, "#ffffff"},
		{2, "#ffffff"},
	}
	for _, tt := range tests {
		if got := interpolateColor(stops, tt.t); got != tt.want {
			t.Errorf("interpolateColor(%v) = %s, want %s", tt.t, got, tt.want)
		}
	}
}

func TestTableCells(t *testing.T) {
	spec := Table(fixtureView(), "Gapminder Dataset")
	if spec.Table == nil {
		t.Fatal("missing table data")
	}
	labels := make([]string, len(spec.Table.Columns))
	for i, c := range spec.Table.Columns {
		labels[i] = c.Label
	}
	assertStrings(t, labels, []string{
		"Country", "Continent", "Year", "Life Expectancy", "Population", "GDP per Capita", "ISO Alpha Country Code",
	}, "column labels")

	if c := spec.Table.Columns[4]; c.Type != "number" || c.Align != "right" {
		t.Errorf("population column = %+v", c)
	}
	assertStrings(t, spec.Table.Rows[0], []string{
		"Afghanistan", "Asia", "1952", "28.801", "8425333", "779.4453145", "AFG",
	}, "first row")
	if len(spec.Table.Rows) != 6 {
		t.Errorf("expected 6 rows, got %d", len(spec.Table.Rows))
	}
}

// ============================================================================
// 4. EXECUTE
// ============================================================================

func TestExecuteDispatch(t *testing.T) {
	view := fixtureView()
	tests := []struct {
		query ViewQuery
		kind  ChartKind
	}{
		{ViewQuery{Kind: KindRankedBar, Metric: "population", Predicate: Where("year", "1952")}, KindRankedBar},
		{ViewQuery{Kind: KindScatter, X: "gdp_per_capita", Y: "life_expectancy", Size: "population"}, KindScatter},
		{ViewQuery{Kind: KindChoropleth, Metric: "life_expectancy"}, KindChoropleth},
		{ViewQuery{Kind: KindTable, Predicate: Where("year", "2099")}, KindTable},
	}
	for _, tt := range tests {
		spec, err := Execute(tt.query, view)
		if err != nil {
			t.Errorf("%s: %v", tt.kind, err)
			continue
		}
		if spec.Kind != tt.kind {
			t.Errorf("kind = %s, want %s", spec.Kind, tt.kind)
		}
	}

	table, _ := Execute(ViewQuery{Kind: KindTable, Predicate: Where("year", "2099")}, view)
	if len(table.Table.Rows) != 6 {
		t.Errorf("table should ignore the predicate, got %d rows", len(table.Table.Rows))
	}
}

func TestExecuteErrors(t *testing.T) {
	view := fixtureView()
	if _, err := Execute(ViewQuery{Kind: "pie"}, view); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("expected ErrUnknownKind, got %v", err)
	}
	if _, err := Execute(ViewQuery{Kind: KindRankedBar, Metric: "happiness"}, view); !errors.Is(err, ErrUnknownMeasure) {
		t.Errorf("expected ErrUnknownMeasure, got %v", err)
	}
	if _, err := Execute(ViewQuery{Kind: KindScatter, X: "gdp_per_capita", Y: "life_expectancy"}, view); !errors.Is(err, ErrUnknownMeasure) {
		t.Errorf("scatter without size: expected ErrUnknownMeasure, got %v", err)
	}
}

func TestExecuteDeterministic(t *testing.T) {
	query := ViewQuery{Kind: KindRankedBar, Metric: "life_expectancy", Predicate: Where("continent", "Asia"), Title: "t"}
	a, err := Execute(query, fixtureView())
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	b, _ := Execute(query, fixtureView())
	if !reflect.DeepEqual(a, b) {
		t.Error("same query and view should produce equal specs")
	}
}

// ============================================================================
// FORMATTING
// ============================================================================

func TestFormatValue(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{8425333, "8,425,333"},
		{-1234567, "-1,234,567"},
		{28.801, "28.80"},
		{779.4453145, "779.45"},
	}
	for _, tt := range tests {
		if got := FormatValue(tt.input); got != tt.expected {
			t.Errorf("FormatValue(%v) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestLabelForKey(t *testing.T) {
	if got := LabelForKey("gdp_per_capita"); got != "Gdp per capita" {
		t.Errorf("LabelForKey = %q", got)
	}
}

// --- Helpers ---

func assertStrings(t *testing.T, got, want []string, msg string) {
	t.Helper()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}
