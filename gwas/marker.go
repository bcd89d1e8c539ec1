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
package gwas

import (
	"math"
)

const (
	// GenomeWideP is the conventional genome-wide significance threshold.
	GenomeWideP = 5e-8
	// SuggestiveP is the conventional suggestive-association threshold.
	SuggestiveP = 1e-5
)

// Marker is one association result: a variant at (Chrom, Pos) and the
// p-value of its association test.
type Marker struct {
	ID    string
	Chrom string
	Pos   int64
	P     float64
	// Score is NegLog10(P), the value plotted on the y axis.
	Score float64
}

// NegLog10 returns -log10(p).  p == 0 (underflow in the upstream tool) is
// clamped to the smallest positive float64 so the score stays finite.
func NegLog10(p float64) float64 {
	if p <= 0 {
		p = math.SmallestNonzeroFloat64
	}
	s := -math.Log10(p)
	if s < 0 {
		// p > 1 only happens through rounding in the input.
		return 0
	}
	return s
}

// GenomeWideScore is NegLog10(GenomeWideP).
func GenomeWideScore() float64 { return NegLog10(GenomeWideP) }

// SuggestiveScore is NegLog10(SuggestiveP).
func SuggestiveScore() float64 { return NegLog10(SuggestiveP) }

// Lookup maps marker ids to their index in a marker slice.
type Lookup map[string]int

// NewLookup indexes markers by ID.  If an id occurs more than once, the last
// occurrence wins.
func NewLookup(markers []Marker) Lookup {
	l := make(Lookup, len(markers))
	for i, m := range markers {
		l[m.ID] = i
	}
	return l
}

// Scores returns the id -> score map of markers.  It is the value set of one
// time point in a scalar animation.
func Scores(markers []Marker) map[string]float64 {
	s := make(map[string]float64, len(markers))
	for _, m := range markers {
		s[m.ID] = m.Score
	}
	return s
}

// MaxScore returns the largest score in markers, or 0 if markers is empty.
func MaxScore(markers []Marker) float64 {
	max := 0.0
	for _, m := range markers {
		if m.Score > max {
			max = m.Score
		}
	}
	return max
}
