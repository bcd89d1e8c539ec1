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
	"fmt"
	"image/color"

	"github.com/grailbio/manhattan/category"
	"gonum.org/v1/plot/plotutil"
)

// Palette assigns colors to the categories of a plot.
type Palette struct {
	Even, Odd color.Color
	colors    map[string]color.Color
	order     []string
}

// NewPalette assigns the plotutil default colors to categories in order,
// cycling if there are more categories than colors.  The background
// categories are gray and dark gray.
func NewPalette(categories ...string) *Palette {
	p := &Palette{
		Even:   color.NRGBA{R: 0x9e, G: 0x9e, B: 0x9e, A: 0xff},
		Odd:    color.NRGBA{R: 0x42, G: 0x42, B: 0x42, A: 0xff},
		colors: make(map[string]color.Color, len(categories)),
	}
	for _, c := range categories {
		p.Add(c)
	}
	return p
}

// Add assigns the next color to c unless it already has one.
func (p *Palette) Add(c string) {
	if _, ok := p.colors[c]; ok || category.IsBackground(c) {
		return
	}
	p.colors[c] = plotutil.Color(len(p.order))
	p.order = append(p.order, c)
}

// Categories returns the highlight categories in the order they were added.
func (p *Palette) Categories() []string { return p.order }

// Color returns the color of category c.  Unknown categories are black.
func (p *Palette) Color(c string) color.Color {
	switch c {
	case category.Even:
		return p.Even
	case category.Odd:
		return p.Odd
	}
	if col, ok := p.colors[c]; ok {
		return col
	}
	return color.Black
}

// Fade returns c with its opacity scaled by alpha in [0, 1].
func Fade(c color.Color, alpha float64) color.Color {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = uint8(float64(n.A)*alpha + 0.5)
	return n
}

// Hex returns the "#rrggbb" form of c, for HTML output.
func Hex(c color.Color) string {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return fmt.Sprintf("#%02x%02x%02x", n.R, n.G, n.B)
}
