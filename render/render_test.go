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
package render_test

import (
	"bytes"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/grailbio/manhattan/animate"
	"github.com/grailbio/manhattan/category"
	"github.com/grailbio/manhattan/genome"
	"github.com/grailbio/manhattan/overlap"
	"github.com/grailbio/manhattan/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reg = genome.MustNewRegistry([]genome.Chromosome{{Name: "1", Length: 100}, {Name: "2", Length: 50}})

func testFrame() animate.Frame {
	return animate.Frame{
		Index:      3,
		Label:      "Metabolism",
		LabelAlpha: 0.5,
		Points: []animate.Point{
			{ID: "m1", Chrom: "1", Coord: 40, Value: 2, Base: "even", Alpha: 1},
			{ID: "m2", Chrom: "2", Coord: 110, Value: 9, Base: "odd", Highlight: "Metabolism", Alpha: 1},
			{ID: "m3", Chrom: "2", Coord: 120, Value: 4, Base: "odd", Highlight: "Signal", Alpha: 0.25},
		},
	}
}

func TestPalette(t *testing.T) {
	p := render.NewPalette("A", "B", "A", "even")
	assert.Equal(t, []string{"A", "B"}, p.Categories())
	assert.NotEqual(t, p.Color("A"), p.Color("B"))
	assert.Equal(t, p.Even, p.Color(category.Even))
	assert.Equal(t, p.Odd, p.Color(category.Odd))
	assert.Equal(t, color.Color(color.Black), p.Color("unknown"))

	faded := color.NRGBAModel.Convert(render.Fade(color.NRGBA{R: 10, G: 20, B: 30, A: 255}, 0.5)).(color.NRGBA)
	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 128}, faded)
	assert.Equal(t, "#0a141e", render.Hex(color.NRGBA{R: 10, G: 20, B: 30, A: 255}))
}

func TestManhattanPNG(t *testing.T) {
	opts := render.DefaultOpts
	opts.Width, opts.Height = 400, 200
	r := render.NewManhattan(reg, render.NewPalette("Metabolism", "Signal"), opts)
	var buf bytes.Buffer
	require.NoError(t, r.Render(testFrame(), &buf))
	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 200, cfg.Height)

	p, err := r.Plot(testFrame())
	require.NoError(t, err)
	assert.Equal(t, 150.0, p.X.Max)
	assert.True(t, p.Y.Max >= 9)
	assert.Equal(t, "Metabolism", p.Title.Text)

	// An empty frame still renders axes.
	buf.Reset()
	require.NoError(t, r.Render(animate.Frame{Label: "empty"}, &buf))
	assert.True(t, buf.Len() > 0)
}

func TestHeatmap(t *testing.T) {
	m := overlap.Jaccard([]category.Set{
		category.NewSet("A", "m1"),
		category.NewSet("B", "m1", "m2"),
		category.NewSet("C", "m3"),
	})
	opts := render.DefaultOpts
	opts.Width, opts.Height = 300, 300
	var buf bytes.Buffer
	require.NoError(t, render.Heatmap(m, "overlap", &buf, opts))
	cfg, err := png.DecodeConfig(&buf)
	require.NoError(t, err)
	assert.Equal(t, 300, cfg.Width)

	one := overlap.Jaccard([]category.Set{category.NewSet("A", "m1")})
	assert.Error(t, render.Heatmap(one, "overlap", &buf, opts))
}

func TestHTML(t *testing.T) {
	palette := render.NewPalette("Metabolism", "Signal")
	m := overlap.Jaccard([]category.Set{
		category.NewSet("A", "m1"),
		category.NewSet("B", "m1", "m2"),
	})
	var buf bytes.Buffer
	require.NoError(t, render.WriteHTML(&buf, "test page",
		render.ManhattanChart(reg, palette, testFrame()),
		render.HeatmapChart(m, "overlap")))
	html := buf.String()
	for _, want := range []string{"test page", "Metabolism", "even", "odd", "overlap"} {
		assert.True(t, strings.Contains(html, want), want)
	}
}
