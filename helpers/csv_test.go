package helpers

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spektr-org/gapminder/engine"
)

func TestWriteCSV(t *testing.T) {
	tests := []struct {
		name string
		spec engine.ChartSpec
		want string
	}{
		{
			name: "ranked bar",
			spec: engine.ChartSpec{
				Kind:     engine.KindRankedBar,
				Encoding: engine.Encoding{X: "country", Y: "population"},
				Series: []engine.ChartSeries{
					{Name: "China", Data: []engine.ChartPoint{{Label: "China", Value: 556263527}}},
					{Name: "Japan", Data: []engine.ChartPoint{{Label: "Japan", Value: 86459025}}},
				},
			},
			want: "Country,Population\nChina,556263527\nJapan,86459025\n",
		},
		{
			name: "scatter",
			spec: engine.ChartSpec{
				Kind:     engine.KindScatter,
				Encoding: engine.Encoding{X: "gdp_per_capita", Y: "life_expectancy", Size: "population", Color: "continent"},
				Points:   []engine.ScatterPoint{{Label: "Japan", Group: "Asia", X: 3216.956347, Y: 63.03, Size: 86459025}},
			},
			want: "Label,Continent,GDP per Capita,Life Expectancy,Population\nJapan,Asia,3216.96,63.03,86459025\n",
		},
		{
			name: "choropleth",
			spec: engine.ChartSpec{
				Kind:     engine.KindChoropleth,
				Encoding: engine.Encoding{Location: "iso_alpha", Color: "life_expectancy"},
				Regions:  []engine.Region{{Location: "JPN", Label: "Japan", Value: 82.603}},
			},
			want: "ISO Alpha Country Code,Label,Life Expectancy\nJPN,Japan,82.60\n",
		},
		{
			name: "table",
			spec: engine.ChartSpec{
				Kind: engine.KindTable,
				Table: &engine.TableData{
					Columns: []engine.Column{{Label: "Country"}, {Label: "Year"}},
					Rows:    [][]string{{"United States", "2007"}},
				},
			},
			want: "Country,Year\nUnited States,2007\n",
		},
		{
			name: "empty",
			spec: engine.ChartSpec{Kind: engine.KindRankedBar, Warning: engine.EmptyResultWarning},
			want: "Result,no rows match the current selection\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := WriteCSV(&buf, tt.spec); err != nil {
				t.Fatalf("WriteCSV failed: %v", err)
			}
			if got := buf.String(); got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestWriteCSVQuotesCommas(t *testing.T) {
	var buf bytes.Buffer
	spec := engine.ChartSpec{
		Kind:   engine.KindRankedBar,
		Series: []engine.ChartSeries{{Data: []engine.ChartPoint{{Label: "Korea, Rep.", Value: 1}}}},
	}
	if err := WriteCSV(&buf, spec); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if !strings.Contains(buf.String(), `"Korea, Rep.",1`) {
		t.Errorf("label not quoted: %q", buf.String())
	}
}
