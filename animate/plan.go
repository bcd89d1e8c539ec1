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

// Plan is the frame layout of an animation with States genuine states and
// Transitions synthetic frames between consecutive states.
type Plan struct {
	States      int
	Transitions int
}

// Len returns States + (States-1)*Transitions, or 0 without states.
func (p Plan) Len() int {
	if p.States <= 0 {
		return 0
	}
	return p.States + (p.States-1)*p.Transitions
}

// Locate returns the state i and step k of frame n, and the transition
// fraction x = k/(Transitions+1).  k == 0 denotes the genuine frame of state
// i.
func (p Plan) Locate(n int) (i, k int, x float64, err error) {
	if n < 0 || n >= p.Len() {
		return 0, 0, 0, errors.Errorf("animate: frame %d out of range [0, %d)", n, p.Len())
	}
	span := p.Transitions + 1
	i, k = n/span, n%span
	return i, k, float64(k) / float64(span), nil
}

// label returns the title and its opacity at fraction x of the transition
// from a to b.  The title switches to b at the midpoint and fades out and
// back in around it.
func label(a, b string, x float64) (string, float64) {
	alpha := math.Abs(1 - 2*x)
	if x >= 0.5 {
		return b, alpha
	}
	return a, alpha
}

func (p Plan) validate() error {
	if p.States <= 0 {
		return errors.New("animate: no states")
	}
	if p.Transitions < 0 {
		return errors.Errorf("animate: negative transition count %d", p.Transitions)
	}
	return nil
}
