// Package gapminder is an interactive dashboard over the Gapminder
// country/year table.
//
// Usage:
//
//	ds, _ := dataset.LoadSample()
//	d := dashboard.New(ds)
//	sess, _ := d.NewSession()
//	upd, err := sess.Set("population", "year", "2007")
//
// The dataset package loads and validates the table. The engine package
// filters, ranks and turns subsets into render-agnostic chart specs. The
// reactive package maps control signals to the chart slots that depend
// on them, and the dashboard package declares the tabs. The server
// package serves sessions over HTTP.
package gapminder
