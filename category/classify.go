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
package category

import (
	"github.com/grailbio/manhattan/genome"
	"github.com/grailbio/manhattan/gwas"
	"github.com/pkg/errors"
)

const (
	// Even is the background category of chromosomes 0, 2, 4, ... in registry
	// order.
	Even = "even"
	// Odd is the background category of chromosomes 1, 3, 5, ...
	Odd = "odd"
)

// BackgroundLabel returns the background category of the chromosome at
// registry index chromIndex.
func BackgroundLabel(chromIndex int) string {
	if chromIndex%2 == 0 {
		return Even
	}
	return Odd
}

// IsBackground returns whether label is one of the background categories.
func IsBackground(label string) bool { return label == Even || label == Odd }

// Classify returns one category label per marker, in input order.  Each
// marker starts in the background category of its chromosome, and then every
// set containing its id overwrites the label in turn, so the last such set in
// sets wins.
//
// Every marker must be placeable in reg: an unknown chromosome or an
// out-of-range position fails the whole call with the genome error.  Set
// names must not be background labels.
func Classify(reg *genome.Registry, markers []gwas.Marker, sets ...Set) ([]string, error) {
	for _, s := range sets {
		if IsBackground(s.Name) {
			return nil, errors.Errorf("category.Classify: set name %q is reserved for the background", s.Name)
		}
	}
	labels := make([]string, len(markers))
	for i, m := range markers {
		if _, err := reg.Coord(m.Chrom, m.Pos); err != nil {
			return nil, err
		}
		ci, _ := reg.Index(m.Chrom)
		labels[i] = BackgroundLabel(ci)
	}
	for _, s := range sets {
		if s.Len() == 0 {
			continue
		}
		for i, m := range markers {
			if s.Contains(m.ID) {
				labels[i] = s.Name
			}
		}
	}
	return labels, nil
}

// Counts returns the number of markers per label.
func Counts(labels []string) map[string]int {
	counts := map[string]int{}
	for _, l := range labels {
		counts[l]++
	}
	return counts
}
