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
package animate

import (
	"github.com/grailbio/manhattan/category"
	"github.com/grailbio/manhattan/genome"
	"github.com/grailbio/manhattan/gwas"
	"github.com/pkg/errors"
)

// Point is one marker of a frame.
type Point struct {
	ID    string
	Chrom string
	// Coord is the genome-wide x coordinate.
	Coord int64
	// Value is the y coordinate.
	Value float64
	// Base is the background category ("even" or "odd").
	Base string
	// Highlight is the highlighted category, or "" to draw the marker in its
	// background color.
	Highlight string
	// Alpha is the opacity of the highlight color, in [0, 1].
	Alpha float64
}

// Frame is one renderable snapshot.  Frames are created on demand and never
// mutated.
type Frame struct {
	// Index is the position of the frame in the animation.
	Index int
	// Label is the title: the source state's label during the first half of a
	// transition, the destination's afterwards.
	Label string
	// LabelAlpha is the title opacity, |1-2x| for transition fraction x.
	LabelAlpha float64
	// Fraction is the transition fraction x, 0 for genuine frames.
	Fraction float64
	// Genuine is true for frames that show a state rather than a transition.
	Genuine bool
	Points  []Point
}

// Layout is the fixed placement of the markers of an animation: genome
// coordinates, background categories and static highlights, computed once.
type Layout struct {
	reg     *genome.Registry
	markers []gwas.Marker
	coords  []int64
	base    []string
	// static[i] is the classifier label of marker i, or "" if it is a
	// background label.
	static []string
	index  gwas.Lookup
}

// NewLayout places markers on reg.  labels, if non-nil, must hold one
// category.Classify label per marker; non-background labels become the static
// highlight of scalar animations.  Marker ids must be unique.  It fails with
// the genome error of the first marker that cannot be placed.
func NewLayout(reg *genome.Registry, markers []gwas.Marker, labels []string) (*Layout, error) {
	if labels != nil && len(labels) != len(markers) {
		return nil, errors.Errorf("animate.NewLayout: %d labels for %d markers", len(labels), len(markers))
	}
	l := &Layout{
		reg:     reg,
		markers: markers,
		coords:  make([]int64, len(markers)),
		base:    make([]string, len(markers)),
		static:  make([]string, len(markers)),
		index:   gwas.NewLookup(markers),
	}
	if len(l.index) != len(markers) {
		for i, m := range markers {
			if j := l.index[m.ID]; j != i {
				return nil, errors.Errorf("animate.NewLayout: duplicate marker id %q at %s:%d and %s:%d",
					m.ID, m.Chrom, m.Pos, markers[j].Chrom, markers[j].Pos)
			}
		}
	}
	for i, m := range markers {
		coord, err := reg.Coord(m.Chrom, m.Pos)
		if err != nil {
			return nil, errors.Wrapf(err, "marker %s", m.ID)
		}
		ci, _ := reg.Index(m.Chrom)
		l.coords[i] = coord
		l.base[i] = category.BackgroundLabel(ci)
		if labels != nil && !category.IsBackground(labels[i]) {
			l.static[i] = labels[i]
		}
	}
	return l, nil
}

// Len returns the number of markers.
func (l *Layout) Len() int { return len(l.markers) }

// Registry returns the registry the layout was built on.
func (l *Layout) Registry() *genome.Registry { return l.reg }

// Markers returns the placed markers.
func (l *Layout) Markers() []gwas.Marker { return l.markers }

// Lookup returns the index of the marker with the given id.
func (l *Layout) Lookup(id string) (int, bool) {
	i, ok := l.index[id]
	return i, ok
}

// point returns marker i with value v and no highlight.
func (l *Layout) point(i int, v float64) Point {
	m := l.markers[i]
	return Point{
		ID:    m.ID,
		Chrom: m.Chrom,
		Coord: l.coords[i],
		Value: v,
		Base:  l.base[i],
		Alpha: 1,
	}
}
