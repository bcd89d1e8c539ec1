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
	"math"

	"github.com/pkg/errors"
)

// Sequencer produces the frames of an animation.  Frame must be safe for
// concurrent use and must return the same frame for the same n.
type Sequencer interface {
	Len() int
	Frame(n int) (Frame, error)
}

// ScalarState assigns a value to a subset of the markers of a layout.
type ScalarState struct {
	Label  string
	Values map[string]float64
}

// ScalarSequencer interpolates marker values between consecutive states.
// Markers present in only one of two consecutive states are not drawn during
// the transition between them.
type ScalarSequencer struct {
	layout *Layout
	states []ScalarState
	plan   Plan
	ease   Ease
	// members[s] lists the layout indices of the markers of state s, in layout
	// order.
	members [][]int
	max     float64
}

// NewScalarSequencer builds a sequencer over states with transitions frames
// per gap.  Every id in every state must be in layout, and every value must
// be finite.
func NewScalarSequencer(layout *Layout, states []ScalarState, transitions int, ease Ease) (*ScalarSequencer, error) {
	plan := Plan{States: len(states), Transitions: transitions}
	if err := plan.validate(); err != nil {
		return nil, err
	}
	if ease == nil {
		ease = Linear
	}
	s := &ScalarSequencer{
		layout:  layout,
		states:  states,
		plan:    plan,
		ease:    ease,
		members: make([][]int, len(states)),
	}
	for si, st := range states {
		in := make([]bool, layout.Len())
		for id, v := range st.Values {
			i, ok := layout.Lookup(id)
			if !ok {
				return nil, errors.Errorf("animate.NewScalarSequencer: state %q: marker %s is not in the layout", st.Label, id)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.Errorf("animate.NewScalarSequencer: state %q: marker %s has value %v", st.Label, id, v)
			}
			if v > s.max {
				s.max = v
			}
			in[i] = true
		}
		for i, ok := range in {
			if ok {
				s.members[si] = append(s.members[si], i)
			}
		}
	}
	return s, nil
}

// Len implements Sequencer.
func (s *ScalarSequencer) Len() int { return s.plan.Len() }

// Plan returns the frame layout.
func (s *ScalarSequencer) Plan() Plan { return s.plan }

// MaxValue returns the largest value of any state.  Interpolated values never
// exceed it for an ease bounded by [0, 1].
func (s *ScalarSequencer) MaxValue() float64 { return s.max }

// Frame implements Sequencer.
func (s *ScalarSequencer) Frame(n int) (Frame, error) {
	i, k, x, err := s.plan.Locate(n)
	if err != nil {
		return Frame{}, err
	}
	src := s.states[i]
	if k == 0 {
		f := Frame{Index: n, Label: src.Label, LabelAlpha: 1, Genuine: true}
		f.Points = make([]Point, 0, len(s.members[i]))
		for _, mi := range s.members[i] {
			f.Points = append(f.Points, s.point(mi, src.Values[s.layout.markers[mi].ID]))
		}
		return f, nil
	}
	dst := s.states[i+1]
	f := Frame{Index: n, Fraction: x}
	f.Label, f.LabelAlpha = label(src.Label, dst.Label, x)
	w := s.ease(x)
	for _, mi := range s.members[i] {
		id := s.layout.markers[mi].ID
		p1, ok := dst.Values[id]
		if !ok {
			continue
		}
		p0 := src.Values[id]
		f.Points = append(f.Points, s.point(mi, p0+w*(p1-p0)))
	}
	return f, nil
}

func (s *ScalarSequencer) point(i int, v float64) Point {
	p := s.layout.point(i, v)
	p.Highlight = s.layout.static[i]
	return p
}
