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
	"github.com/pkg/errors"
)

// CategoricalState highlights some markers of a layout.  Highlights[i] is the
// category of marker i, or "" for a marker drawn in its background color.
type CategoricalState struct {
	Label      string
	Highlights []string
}

// NewCategoricalState classifies the markers of layout against sets (later
// sets win) and keeps the non-background labels as highlights.
func NewCategoricalState(label string, layout *Layout, sets ...category.Set) (CategoricalState, error) {
	labels, err := category.Classify(layout.reg, layout.markers, sets...)
	if err != nil {
		return CategoricalState{}, err
	}
	st := CategoricalState{Label: label, Highlights: make([]string, len(labels))}
	for i, l := range labels {
		if !category.IsBackground(l) {
			st.Highlights[i] = l
		}
	}
	return st, nil
}

// CategoricalSequencer fades highlights between consecutive states.  During a
// transition at fraction x, a marker whose highlight changes shows its source
// highlight at opacity 1-2x while x < 0.5, and its destination highlight at
// opacity 2x-1 afterwards.  Markers whose highlight doesn't change stay
// opaque.  Every marker is drawn at its score in every frame.
type CategoricalSequencer struct {
	layout *Layout
	states []CategoricalState
	plan   Plan
}

// NewCategoricalSequencer builds a sequencer over states with transitions
// frames per gap.
func NewCategoricalSequencer(layout *Layout, states []CategoricalState, transitions int) (*CategoricalSequencer, error) {
	plan := Plan{States: len(states), Transitions: transitions}
	if err := plan.validate(); err != nil {
		return nil, err
	}
	for _, st := range states {
		if len(st.Highlights) != layout.Len() {
			return nil, errors.Errorf("animate.NewCategoricalSequencer: state %q has %d highlights for %d markers",
				st.Label, len(st.Highlights), layout.Len())
		}
	}
	return &CategoricalSequencer{layout: layout, states: states, plan: plan}, nil
}

// Len implements Sequencer.
func (s *CategoricalSequencer) Len() int { return s.plan.Len() }

// Plan returns the frame layout.
func (s *CategoricalSequencer) Plan() Plan { return s.plan }

// Frame implements Sequencer.
func (s *CategoricalSequencer) Frame(n int) (Frame, error) {
	i, k, x, err := s.plan.Locate(n)
	if err != nil {
		return Frame{}, err
	}
	src := s.states[i]
	f := Frame{Index: n, Points: make([]Point, s.layout.Len())}
	if k == 0 {
		f.Label, f.LabelAlpha, f.Genuine = src.Label, 1, true
		for mi, m := range s.layout.markers {
			f.Points[mi] = s.layout.point(mi, m.Score)
			f.Points[mi].Highlight = src.Highlights[mi]
		}
		return f, nil
	}
	dst := s.states[i+1]
	f.Fraction = x
	f.Label, f.LabelAlpha = label(src.Label, dst.Label, x)
	for mi, m := range s.layout.markers {
		p := s.layout.point(mi, m.Score)
		h0, h1 := src.Highlights[mi], dst.Highlights[mi]
		switch {
		case h0 == h1:
			p.Highlight = h0
		case x < 0.5:
			p.Highlight, p.Alpha = h0, 1-2*x
		default:
			p.Highlight, p.Alpha = h1, 2*x-1
		}
		f.Points[mi] = p
	}
	return f, nil
}
