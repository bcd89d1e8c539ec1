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
	"math"

	"github.com/grailbio/manhattan/overlap"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
)

// matrixGrid adapts an overlap matrix to plotter.GridXYZ.  Row 0 is drawn at
// the top.
type matrixGrid struct{ m *overlap.Matrix }

func (g matrixGrid) Dims() (c, r int)   { return g.m.Len(), g.m.Len() }
func (g matrixGrid) Z(c, r int) float64 { return g.m.At(r, c) }
func (g matrixGrid) X(c int) float64    { return float64(c) }
func (g matrixGrid) Y(r int) float64    { return float64(g.m.Len() - 1 - r) }

// HeatmapPlot builds a heatmap of m, which is drawn in its own row order; use
// overlap.Matrix.Reorder to show a clustered order.
func HeatmapPlot(m *overlap.Matrix, title string) (*plot.Plot, error) {
	n := m.Len()
	if n < 2 {
		return nil, errors.Errorf("render.Heatmap: need at least 2 categories, got %d", n)
	}
	h := plotter.NewHeatMap(matrixGrid{m}, palette.Heat(16, 1))
	h.Min, h.Max = 0, 1
	p := plot.New()
	p.Title.Text = title
	p.Add(h)
	xticks := make([]plot.Tick, n)
	yticks := make([]plot.Tick, n)
	for i, name := range m.Names {
		xticks[i] = plot.Tick{Value: float64(i), Label: name}
		yticks[i] = plot.Tick{Value: float64(n - 1 - i), Label: name}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xticks)
	p.Y.Tick.Marker = plot.ConstantTicks(yticks)
	p.X.Tick.Label.Rotation = math.Pi / 2
	p.X.Tick.Label.XAlign = -1
	return p, nil
}

// Heatmap writes a heatmap image of m to w.
func Heatmap(m *overlap.Matrix, title string, w io.Writer, opts Opts) error {
	p, err := HeatmapPlot(m, title)
	if err != nil {
		return err
	}
	return writePlot(p, w, opts)
}
