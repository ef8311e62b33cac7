package engine

// ============================================================================
// ENGINE TYPES: Query inputs and render-agnostic chart specifications
// ============================================================================
// A ChartSpec is a structured description of one chart: what rows it was
// built from, how attributes map onto visual channels, and the kind-specific
// payload a renderer needs. Specs are values; every recompute produces a
// fresh one.
// ============================================================================

// Record is a single data row with string dimensions and numeric measures.
type Record struct {
	Dimensions map[string]string  `json:"dimensions"`
	Measures   map[string]float64 `json:"measures"`
}

// ChartKind names the four spec kinds a render surface must support.
type ChartKind string

const (
	KindRankedBar  ChartKind = "ranked-bar"
	KindScatter    ChartKind = "scatter"
	KindChoropleth ChartKind = "choropleth"
	KindTable      ChartKind = "table"
)

// EmptyResultWarning is attached to a spec whose subset has no rows.
// It is a warning, not an error: the spec is still well-formed.
const EmptyResultWarning = "no rows match the current selection"

// ============================================================================
// QUERY: What a slot asks the engine to compute
// ============================================================================

// ViewQuery describes one chart computation: filter, optional rank, build.
type ViewQuery struct {
	Kind      ChartKind `json:"kind"`
	Predicate Predicate `json:"predicate"`
	Metric    string    `json:"metric,omitempty"` // ranked-bar, choropleth
	X         string    `json:"x,omitempty"`      // scatter
	Y         string    `json:"y,omitempty"`      // scatter
	Size      string    `json:"size,omitempty"`   // scatter
	Direction Direction `json:"direction,omitempty"`
	Limit     int       `json:"limit,omitempty"` // 0 = DefaultLimit
	Title     string    `json:"title"`
}

// ============================================================================
// CHART SPEC
// ============================================================================

// ChartSpec is the render-agnostic output of every view builder.
// Exactly one of Series/Points/Regions/Table is meaningful, per Kind.
type ChartSpec struct {
	Kind     ChartKind `json:"kind"`
	Title    string    `json:"title"`
	Encoding Encoding  `json:"encoding"`
	Rows     []Record  `json:"rows"`
	Warning  string    `json:"warning,omitempty"`

	Series     []ChartSeries  `json:"series,omitempty"`
	Points     []ScatterPoint `json:"points,omitempty"`
	Regions    []Region       `json:"regions,omitempty"`
	ColorScale *ColorScale    `json:"colorScale,omitempty"`
	Table      *TableData     `json:"table,omitempty"`
}

// Encoding maps attribute keys onto visual channels. Empty = unused channel.
type Encoding struct {
	X        string `json:"x,omitempty"`
	Y        string `json:"y,omitempty"`
	Size     string `json:"size,omitempty"`
	Color    string `json:"color,omitempty"`
	Location string `json:"location,omitempty"`
	Labels   bool   `json:"labels,omitempty"` // per-mark numeric text labels
}

// ============================================================================
// RANKED BAR TYPES
// ============================================================================

// ChartSeries is one colored trace. Ranked bars carry one series per bar.
type ChartSeries struct {
	Name  string       `json:"name"`
	Data  []ChartPoint `json:"data"`
	Color string       `json:"color,omitempty"`
}

// ChartPoint represents a single data point.
type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
	Text  string  `json:"text,omitempty"`
}

// ============================================================================
// SCATTER TYPES
// ============================================================================

// ScatterPoint is one marker; Radius is already clipped to the maximum.
type ScatterPoint struct {
	Label  string  `json:"label"`
	Group  string  `json:"group"` // color category
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Size   float64 `json:"size"`
	Radius float64 `json:"radius"`
	Color  string  `json:"color"`
}

// ============================================================================
// CHOROPLETH TYPES
// ============================================================================

// Region is one shaded country keyed by its ISO alpha-3 code.
type Region struct {
	Location  string  `json:"location"`
	Label     string  `json:"label"`
	Value     float64 `json:"value"`
	Intensity float64 `json:"intensity"` // 0..1 position on the color scale
	Color     string  `json:"color"`
}

// ColorScale describes the fixed diverging scale and its value domain.
type ColorScale struct {
	Name  string   `json:"name"`
	Stops []string `json:"stops"`
	Min   float64  `json:"min"`
	Max   float64  `json:"max"`
}

// ============================================================================
// TABLE TYPES
// ============================================================================

// TableData defines how to render a table.
type TableData struct {
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Column defines a table column.
type Column struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Type  string `json:"type"`  // "text", "number"
	Align string `json:"align"` // "left", "right"
}
