package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spektr-org/gapminder/config"
	"github.com/spektr-org/gapminder/dashboard"
	"github.com/spektr-org/gapminder/dataset"
	"github.com/spektr-org/gapminder/engine"
	"github.com/spektr-org/gapminder/helpers"
	"github.com/spektr-org/gapminder/reactive"
	"github.com/spektr-org/gapminder/schema"
	"github.com/spektr-org/gapminder/server"
)

// ============================================================================
// GAPMINDER CLI: Serve the dashboard or render one tab offline
// ============================================================================

var version = "0.3.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "gapminder",
		Short: "Interactive Gapminder dataset dashboard",
		Long: `Gapminder serves a tabbed dashboard over the Gapminder table:
ranked bars for population, GDP per capita and life expectancy,
a choropleth map, a wealth and health scatter, and the raw table.

Data comes from the embedded sample, a CSV file or a SQLite table.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(serveCmd())
	root.AddCommand(domainsCmd())
	root.AddCommand(renderCmd())
	return root
}

// dataFlags are the source flags shared by every subcommand.
type dataFlags struct {
	csv         string
	sqlite      string
	sqliteTable string
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.csv, "csv", "", "Path to a gapminder CSV file")
	cmd.Flags().StringVar(&f.sqlite, "sqlite", "", "Path to a SQLite database holding the table")
	cmd.Flags().StringVar(&f.sqliteTable, "sqlite-table", dataset.DefaultTable, "Table to read with --sqlite")
}

func (f *dataFlags) apply(cfg *config.DataConfig) {
	if f.csv != "" {
		cfg.CSV = f.csv
	}
	if f.sqlite != "" {
		cfg.SQLite = f.sqlite
	}
	if f.sqliteTable != "" {
		cfg.SQLiteTable = f.sqliteTable
	}
}

// loadDataset opens the configured source. Any load error is fatal to the
// caller: no dashboard is built over a partial table.
func loadDataset(ctx context.Context, cfg config.DataConfig) (*dataset.Dataset, error) {
	var (
		ds  *dataset.Dataset
		err error
	)
	switch {
	case cfg.CSV != "":
		ds, err = dataset.LoadCSVFile(cfg.CSV)
	case cfg.SQLite != "":
		ds, err = dataset.LoadSQLite(ctx, cfg.SQLite, cfg.SQLiteTable)
	default:
		ds, err = dataset.LoadSample()
		log.Printf("⚠️ Using the embedded %s excerpt; pass --csv, --sqlite or GAPMINDER_DATA for the full gapminder table", dataset.SampleSource)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("📊 Loaded %d rows from %s (%d continents, %d years)",
		ds.Len(), ds.Source(), len(ds.Continents()), len(ds.Years()))
	return ds, nil
}

// ============================================================================
// SERVE
// ============================================================================

func serveCmd() *cobra.Command {
	var (
		configPath string
		host       string
		port       int
		data       dataFlags
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, os.Getenv)
			if err != nil {
				return err
			}
			data.apply(&cfg.Data)
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ds, err := loadDataset(ctx, cfg.Data)
			if err != nil {
				return err
			}
			srv := server.New(dashboard.New(ds), server.Options{
				SessionTTL:  cfg.SessionTTL,
				MaxSessions: cfg.MaxSessions,
			})
			return srv.ListenAndServe(ctx, cfg.Addr())
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "Path to a YAML config file")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "Interface to bind")
	cmd.Flags().IntVar(&port, "port", config.DefaultPort, "Port to listen on (overrides PORT)")
	data.register(cmd)
	return cmd
}

// ============================================================================
// DOMAINS
// ============================================================================

func domainsCmd() *cobra.Command {
	var data dataFlags
	cmd := &cobra.Command{
		Use:   "domains",
		Short: "Print the distinct values of every categorical column",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.DataConfig
			data.apply(&cfg)
			ds, err := loadDataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			out := make(map[string][]string)
			for _, col := range []string{schema.Continent, schema.Year, schema.Country, schema.CountryCode} {
				values, err := ds.ColumnDomain(col)
				if err != nil {
					return err
				}
				out[col] = values
			}
			return writeJSON(cmd.OutOrStdout(), out, "pretty")
		},
	}
	data.register(cmd)
	return cmd
}

// ============================================================================
// RENDER: One tab's slots with an optional sequence of control events
// ============================================================================

func renderCmd() *cobra.Command {
	var (
		tab     string
		sets    []string
		format  string
		verbose bool
		data    dataFlags
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render one tab's chart specs without serving",
		Example: `  gapminder render --tab population --set continent=Europe --set year=2007 --format pretty
  gapminder render --tab map --set variable=Population --format csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg config.DataConfig
			data.apply(&cfg)
			ds, err := loadDataset(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			d := dashboard.New(ds)

			var def *dashboard.TabDef
			for _, t := range d.Tabs() {
				if t.Name == tab {
					def = &t
					break
				}
			}
			if def == nil {
				return fmt.Errorf("%w: %s", dashboard.ErrUnknownTab, tab)
			}

			var opts []reactive.Option
			if verbose {
				opts = append(opts, reactive.WithRenderer(logRenderer{}))
			}
			g, err := d.NewGroup(*def, opts...)
			if err != nil {
				return err
			}
			for _, kv := range sets {
				name, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("--set %q: want signal=value", kv)
				}
				if _, err := g.Set(name, value); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			snap := g.Snapshot()
			if format != "csv" {
				return writeJSON(out, snap, format)
			}
			for _, s := range snap.Slots {
				if err := helpers.WriteCSV(out, s.Spec); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tab, "tab", "population", "Tab to render")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "Control event signal=value, applied in order")
	cmd.Flags().StringVar(&format, "format", "json", "Output format: json, pretty, csv")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log every committed slot")
	data.register(cmd)
	return cmd
}

type logRenderer struct{}

func (logRenderer) Render(group, slot string, spec engine.ChartSpec) {
	log.Printf("🎨 %s/%s: %s (%d rows)", group, slot, spec.Title, len(spec.Rows))
}

// ============================================================================
// OUTPUT
// ============================================================================

func writeJSON(w io.Writer, v any, format string) error {
	var (
		out []byte
		err error
	)
	if format == "pretty" {
		out, err = json.MarshalIndent(v, "", "  ")
	} else {
		out, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
