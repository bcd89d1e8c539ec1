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
	"image/color"
	"io"
	"math"

	"github.com/grailbio/manhattan/animate"
	"github.com/grailbio/manhattan/genome"
	"github.com/grailbio/manhattan/gwas"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Opts controls the size and decoration of rendered plots.
type Opts struct {
	// Width and Height are the image size in pixels.
	Width, Height int
	// Format is a gonum/plot image format: "png", "svg", "pdf", ...
	Format string
	// PointRadius is the marker radius in points.
	PointRadius float64
	// YMax fixes the upper bound of the y axis so that it doesn't jump between
	// frames.  0 means fit to the data of each frame.
	YMax float64
	// Thresholds draws the genome-wide and suggestive significance lines.
	Thresholds bool
	// XLabel and YLabel are the axis titles.
	XLabel, YLabel string
}

// DefaultOpts holds the default rendering options.
var DefaultOpts = Opts{
	Width:       1200,
	Height:      600,
	Format:      "png",
	PointRadius: 1.5,
	Thresholds:  true,
	XLabel:      "Chromosome",
	YLabel:      "-log10(p)",
}

// pixels converts a pixel count to a vg length at the vgimg default of 96
// dpi.
func pixels(n int) vg.Length { return vg.Length(n) * vg.Inch / 96 }

// Manhattan renders frames as Manhattan plots.  It implements
// animate.Renderer and is safe for concurrent use.
type Manhattan struct {
	reg     *genome.Registry
	palette *Palette
	opts    Opts
	ticks   []plot.Tick
}

// NewManhattan returns a renderer for markers placed on reg.
func NewManhattan(reg *genome.Registry, palette *Palette, opts Opts) *Manhattan {
	ticks := make([]plot.Tick, reg.Len())
	for i := range ticks {
		ticks[i] = plot.Tick{Value: float64(reg.Midpoint(i)), Label: reg.Chromosome(i).Name}
	}
	return &Manhattan{reg: reg, palette: palette, opts: opts, ticks: ticks}
}

type glyphPoint struct {
	x, y float64
	c    color.Color
}

// scatter returns a scatter plot of pts, each drawn in its own color.
func (r *Manhattan) scatter(pts []glyphPoint) (*plotter.Scatter, error) {
	xys := make(plotter.XYs, len(pts))
	for i, p := range pts {
		xys[i].X, xys[i].Y = p.x, p.y
	}
	s, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, err
	}
	radius := vg.Points(r.opts.PointRadius)
	s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: pts[i].c, Radius: radius, Shape: draw.CircleGlyph{}}
	}
	return s, nil
}

// swatch is the legend thumbnail of a category.
type swatch struct{ c color.Color }

func (s swatch) Thumbnail(c *draw.Canvas) {
	c.DrawGlyph(draw.GlyphStyle{Color: s.c, Radius: vg.Points(4), Shape: draw.CircleGlyph{}}, c.Center())
}

// Plot builds the plot of frame f.
func (r *Manhattan) Plot(f animate.Frame) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = f.Label
	p.Title.TextStyle.Color = Fade(color.Black, f.LabelAlpha)
	p.X.Label.Text = r.opts.XLabel
	p.Y.Label.Text = r.opts.YLabel
	p.X.Tick.Marker = plot.ConstantTicks(r.ticks)

	// Highlights are drawn after, and so over, the background.
	var (
		base, high []glyphPoint
		yMax       = r.opts.YMax
		fit        = yMax == 0
		present    = map[string]bool{}
	)
	for _, pt := range f.Points {
		if fit && pt.Value > yMax {
			yMax = pt.Value
		}
		if pt.Highlight != "" && pt.Alpha > 0 {
			high = append(high, glyphPoint{float64(pt.Coord), pt.Value, Fade(r.palette.Color(pt.Highlight), pt.Alpha)})
			present[pt.Highlight] = true
			if pt.Alpha >= 1 {
				continue
			}
		}
		base = append(base, glyphPoint{float64(pt.Coord), pt.Value, r.palette.Color(pt.Base)})
	}
	for _, pts := range [][]glyphPoint{base, high} {
		if len(pts) == 0 {
			continue
		}
		s, err := r.scatter(pts)
		if err != nil {
			return nil, errors.Wrapf(err, "render: frame %d", f.Index)
		}
		p.Add(s)
	}
	for _, c := range r.palette.Categories() {
		if present[c] {
			p.Legend.Add(c, swatch{r.palette.Color(c)})
		}
	}
	total := float64(r.reg.TotalLength())
	if r.opts.Thresholds {
		for _, t := range []struct {
			score float64
			c     color.Color
		}{
			{gwas.SuggestiveScore(), color.NRGBA{B: 0xc0, A: 0xff}},
			{gwas.GenomeWideScore(), color.NRGBA{R: 0xc0, A: 0xff}},
		} {
			l, err := plotter.NewLine(plotter.XYs{{X: 0, Y: t.score}, {X: total, Y: t.score}})
			if err != nil {
				return nil, err
			}
			l.LineStyle.Color = t.c
			l.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
			p.Add(l)
		}
		if yMax < gwas.GenomeWideScore() {
			yMax = gwas.GenomeWideScore()
		}
	}
	p.X.Min, p.X.Max = 0, total
	p.Y.Min, p.Y.Max = 0, math.Ceil(yMax*1.05)
	if p.Y.Max == 0 {
		p.Y.Max = 1
	}
	return p, nil
}

// Render implements animate.Renderer.
func (r *Manhattan) Render(f animate.Frame, w io.Writer) error {
	p, err := r.Plot(f)
	if err != nil {
		return err
	}
	return writePlot(p, w, r.opts)
}

func writePlot(p *plot.Plot, w io.Writer, opts Opts) error {
	format := opts.Format
	if format == "" {
		format = "png"
	}
	wt, err := p.WriterTo(pixels(opts.Width), pixels(opts.Height), format)
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}
