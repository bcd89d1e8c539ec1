// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package render

import (
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/grailbio/manhattan/animate"
	"github.com/grailbio/manhattan/category"
	"github.com/grailbio/manhattan/genome"
	"github.com/grailbio/manhattan/overlap"
)

// ManhattanChart returns an interactive scatter chart of frame f with one
// series per category: the two background series first, then the
// highlights in palette order.
func ManhattanChart(reg *genome.Registry, palette *Palette, f animate.Frame) *charts.Scatter {
	series := map[string][]opts.ScatterData{}
	for _, pt := range f.Points {
		c := pt.Base
		if pt.Highlight != "" && pt.Alpha >= 0.5 {
			c = pt.Highlight
		}
		series[c] = append(series[c], opts.ScatterData{
			Name:       pt.ID,
			Value:      []interface{}{pt.Coord, pt.Value},
			SymbolSize: 5,
		})
	}
	chart := charts.NewScatter()
	chart.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: f.Label, Subtitle: reg.String()}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Position", Type: "value", Min: 0, Max: reg.TotalLength()}),
		charts.WithYAxisOpts(opts.YAxis{Name: "-log10(p)", Type: "value"}),
	)
	for _, c := range append([]string{category.Even, category.Odd}, palette.Categories()...) {
		data, ok := series[c]
		if !ok {
			continue
		}
		chart.AddSeries(c, data, charts.WithItemStyleOpts(opts.ItemStyle{Color: Hex(palette.Color(c))}))
	}
	return chart
}

// HeatmapChart returns an interactive heatmap of m in its own order.
func HeatmapChart(m *overlap.Matrix, title string) *charts.HeatMap {
	var data []opts.HeatMapData
	for i := 0; i < m.Len(); i++ {
		for j := 0; j < m.Len(); j++ {
			data = append(data, opts.HeatMapData{Value: [3]interface{}{j, i, m.At(i, j)}})
		}
	}
	chart := charts.NewHeatMap()
	chart.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: m.Names}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: m.Names}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Min: 0,
			Max: 1,
			InRange: &opts.VisualMapInRange{
				Color: []string{"#fff5eb", "#fd8d3c", "#7f2704"},
			},
		}),
	)
	chart.SetXAxis(m.Names).AddSeries("overlap", data)
	return chart
}

// WriteHTML renders the charts as one HTML page.
func WriteHTML(w io.Writer, title string, c ...components.Charter) error {
	page := components.NewPage()
	page.PageTitle = title
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(c...)
	return page.Render(w)
}
