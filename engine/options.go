package engine

import "github.com/spektr-org/gapminder/schema"

// ============================================================================
// ENGINE OPTIONS: Functional options for builders and Execute()
// ============================================================================

// Option configures builder behavior via functional options pattern.
type Option func(*config)

type config struct {
	Schema        schema.Config
	LabelKey      string // dimension naming each mark (country)
	ColorKey      string // scatter color category (continent)
	LocationKey   string // choropleth location code
	MinRadius     float64
	BaseRadius    float64 // radius of a point whose size equals the subset mean
	MaxRadius     float64
	ColorScale    []string
	ColorScaleKey string
}

// WithSchema sets the schema used for display names and column order.
func WithSchema(s schema.Config) Option {
	return func(c *config) { c.Schema = s }
}

// WithMaxRadius caps the rendered scatter radius.
func WithMaxRadius(r float64) Option {
	return func(c *config) {
		if r > 0 {
			c.MaxRadius = r
		}
	}
}

// WithDimensions overrides the label, color and location dimension keys.
// Empty arguments keep the defaults.
func WithDimensions(label, color, location string) Option {
	return func(c *config) {
		if label != "" {
			c.LabelKey = label
		}
		if color != "" {
			c.ColorKey = color
		}
		if location != "" {
			c.LocationKey = location
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Schema:        schema.Gapminder(),
		LabelKey:      schema.Country,
		ColorKey:      schema.Continent,
		LocationKey:   schema.CountryCode,
		MinRadius:     2,
		BaseRadius:    8,
		MaxRadius:     40,
		ColorScale:    rdYlBu,
		ColorScaleKey: "RdYlBu",
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.MinRadius > cfg.MaxRadius {
		cfg.MinRadius = cfg.MaxRadius
	}
	return cfg
}
