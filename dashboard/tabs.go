// Package dashboard wires the gapminder tabs as reactive view-groups over
// a loaded Dataset. Every session gets its own groups; the Dataset is the
// only thing sessions share.
package dashboard

import (
	"fmt"

	"github.com/spektr-org/gapminder/dataset"
	"github.com/spektr-org/gapminder/engine"
	"github.com/spektr-org/gapminder/reactive"
	"github.com/spektr-org/gapminder/schema"
)

// Signal names shared by every tab.
const (
	SignalContinent = "continent"
	SignalYear      = "year"
	SignalVariable  = "variable"
)

// DefaultVariable is the metric a variable control starts on.
const DefaultVariable = "Life Expectancy"

// SlotDef is a slot's dependency set plus the query it runs.
type SlotDef struct {
	Name  string
	Deps  []string
	Query func(reactive.FilterState) engine.ViewQuery
}

// TabDef is one view-group layout.
type TabDef struct {
	Name    string
	Label   string
	Signals []string
	Slots   []SlotDef
}

// Dashboard binds tab definitions to one Dataset.
type Dashboard struct {
	data    *dataset.Dataset
	schema  schema.Config
	signals map[string]reactive.Signal
	tabs    []TabDef
}

// New builds the dashboard's signal domains from ds and declares its tabs.
func New(ds *dataset.Dataset) *Dashboard {
	sch := schema.Gapminder()
	continents := ds.Continents()
	years, _ := ds.ColumnDomain(schema.Year)

	d := &Dashboard{
		data:   ds,
		schema: sch,
		signals: map[string]reactive.Signal{
			SignalContinent: {Name: SignalContinent, Label: "Continent", Domain: continents, Default: first(continents)},
			SignalYear:      {Name: SignalYear, Label: "Year", Domain: years, Default: first(years)},
			SignalVariable:  {Name: SignalVariable, Label: "Variable", Domain: sch.VariableNames(), Default: DefaultVariable},
		},
	}
	d.tabs = d.declareTabs()
	return d
}

// Dataset returns the bound dataset.
func (d *Dashboard) Dataset() *dataset.Dataset { return d.data }

// Tabs returns the tab definitions in display order.
func (d *Dashboard) Tabs() []TabDef { return append([]TabDef(nil), d.tabs...) }

// Signal returns a signal declaration with its dataset-derived domain.
func (d *Dashboard) Signal(name string) (reactive.Signal, bool) {
	s, ok := d.signals[name]
	return s, ok
}

// NewGroup instantiates one tab as a live view-group: all slots computed
// from the default FilterState.
func (d *Dashboard) NewGroup(tab TabDef, opts ...reactive.Option) (*reactive.Group, error) {
	signals := make([]reactive.Signal, 0, len(tab.Signals))
	for _, name := range tab.Signals {
		s, ok := d.signals[name]
		if !ok {
			return nil, fmt.Errorf("tab %s: %w: %s", tab.Name, reactive.ErrUnknownSignal, name)
		}
		signals = append(signals, s)
	}
	g, err := reactive.NewGroup(tab.Name, signals, opts...)
	if err != nil {
		return nil, err
	}
	view := d.data.View()
	for _, sd := range tab.Slots {
		query := sd.Query
		fn := func(st reactive.FilterState) (engine.ChartSpec, error) {
			return engine.Execute(query(st), view, engine.WithSchema(d.schema))
		}
		if err := g.Register(sd.Name, sd.Deps, fn); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// ============================================================================
// TAB DECLARATIONS
// ============================================================================

func (d *Dashboard) declareTabs() []TabDef {
	return []TabDef{
		{
			Name:  "dataset",
			Label: "Dataset",
			Slots: []SlotDef{{
				Name: "table",
				Query: func(reactive.FilterState) engine.ViewQuery {
					return engine.ViewQuery{Kind: engine.KindTable, Title: "Gapminder Dataset"}
				},
			}},
		},
		d.rankedTab("population", "Population", schema.Population),
		d.rankedTab("gdp", "GDP Per Capita", schema.GDPPerCapita),
		d.rankedTab("life_expectancy", "Life Expectancy", schema.LifeExpectancy),
		{
			Name:    "map",
			Label:   "Choropleth Map",
			Signals: []string{SignalVariable, SignalYear},
			Slots: []SlotDef{{
				Name: "map",
				Deps: []string{SignalVariable, SignalYear},
				Query: func(st reactive.FilterState) engine.ViewQuery {
					variable := st.Value(SignalVariable)
					return engine.ViewQuery{
						Kind:      engine.KindChoropleth,
						Predicate: engine.Where(schema.Year, st.Value(SignalYear)),
						Metric:    d.metricKey(variable),
						Title:     fmt.Sprintf("%s Choropleth Map [%s]", variable, st.Value(SignalYear)),
					}
				},
			}},
		},
		{
			Name:    "explorer",
			Label:   "Wealth & Health",
			Signals: []string{SignalContinent, SignalYear, SignalVariable},
			Slots: []SlotDef{
				{
					Name: "scatter",
					Deps: []string{SignalContinent, SignalYear},
					Query: func(st reactive.FilterState) engine.ViewQuery {
						return engine.ViewQuery{
							Kind:      engine.KindScatter,
							Predicate: continentYear(st),
							X:         schema.GDPPerCapita,
							Y:         schema.LifeExpectancy,
							Size:      schema.Population,
							Title:     fmt.Sprintf("GDP per Capita vs Life Expectancy — %s, %s", st.Value(SignalContinent), st.Value(SignalYear)),
						}
					},
				},
				{
					Name: "ranking",
					Deps: []string{SignalContinent, SignalYear, SignalVariable},
					Query: func(st reactive.FilterState) engine.ViewQuery {
						variable := st.Value(SignalVariable)
						return engine.ViewQuery{
							Kind:      engine.KindRankedBar,
							Predicate: continentYear(st),
							Metric:    d.metricKey(variable),
							Direction: engine.Descending,
							Limit:     engine.DefaultLimit,
							Title:     fmt.Sprintf("Top %d by %s — %s, %s", engine.DefaultLimit, variable, st.Value(SignalContinent), st.Value(SignalYear)),
						}
					},
				},
			},
		},
	}
}

// rankedTab is the continent × year top-15 bar chart of one metric.
func (d *Dashboard) rankedTab(name, label, metric string) TabDef {
	display := d.schema.DisplayName(metric)
	return TabDef{
		Name:    name,
		Label:   label,
		Signals: []string{SignalContinent, SignalYear},
		Slots: []SlotDef{{
			Name: "chart",
			Deps: []string{SignalContinent, SignalYear},
			Query: func(st reactive.FilterState) engine.ViewQuery {
				return engine.ViewQuery{
					Kind:      engine.KindRankedBar,
					Predicate: continentYear(st),
					Metric:    metric,
					Direction: engine.Descending,
					Limit:     engine.DefaultLimit,
					Title:     fmt.Sprintf("%s — %s, %s", display, st.Value(SignalContinent), st.Value(SignalYear)),
				}
			},
		}},
	}
}

func (d *Dashboard) metricKey(variable string) string {
	if m, ok := d.schema.MeasureByDisplayName(variable); ok {
		return m.Key
	}
	return variable
}

func continentYear(st reactive.FilterState) engine.Predicate {
	return engine.Where(schema.Continent, st.Value(SignalContinent)).And(schema.Year, st.Value(SignalYear))
}

func first(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
