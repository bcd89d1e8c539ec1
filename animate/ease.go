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
	"strings"

	"github.com/pkg/errors"
)

// Ease maps a transition fraction x in [0, 1] to an interpolation weight.  It
// must be monotonic with Ease(0) == 0 and Ease(1) close to 1.
type Ease func(x float64) float64

// Linear is the identity ease.
func Linear(x float64) float64 { return x }

// Tanh returns the ease tanh(steepness*x).  It moves quickly at first and
// settles towards the destination; Ease(1) = tanh(steepness), which is within
// 1e-3 of 1 for steepness >= 4.
func Tanh(steepness float64) Ease {
	return func(x float64) float64 { return math.Tanh(steepness * x) }
}

// ParseEase returns the named ease: "linear" or "tanh".  steepness is only
// used by "tanh" and must be positive.
func ParseEase(name string, steepness float64) (Ease, error) {
	switch strings.ToLower(name) {
	case "", "linear":
		return Linear, nil
	case "tanh":
		if !(steepness > 0) {
			return nil, errors.Errorf("animate.ParseEase: tanh steepness must be positive, got %v", steepness)
		}
		return Tanh(steepness), nil
	}
	return nil, errors.Errorf("animate.ParseEase: unknown ease %q", name)
}
