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
package genome

import (
	"fmt"

	"github.com/antzucaro/matchr"
	"github.com/pkg/errors"
)

var (
	// ErrInvalidChromosome is the cause of every error returned for a
	// chromosome name that isn't in the registry.
	ErrInvalidChromosome = errors.New("invalid chromosome")
	// ErrInvalidPosition is the cause of every error returned for a position
	// outside [0, chromosome length].
	ErrInvalidPosition = errors.New("invalid position")
)

// Chromosome is one (name, length-in-bases) registry entry.
type Chromosome struct {
	Name   string
	Length int64
}

// Registry is an immutable, ordered chromosome table.  The order defines the
// axis layout and must match the assembly the input coordinates were called
// against.  A Registry is safe for concurrent use.
type Registry struct {
	chroms []Chromosome
	// start[i] is the sum of the lengths of chroms[0..i-1]; start[len(chroms)]
	// is the total genome length.
	start []int64
	index map[string]int
}

// NewRegistry validates chroms and precomputes the prefix sums.  Names must be
// unique and lengths positive.  chroms is copied.
func NewRegistry(chroms []Chromosome) (*Registry, error) {
	if len(chroms) == 0 {
		return nil, errors.New("genome.NewRegistry: empty chromosome list")
	}
	r := &Registry{
		chroms: make([]Chromosome, len(chroms)),
		start:  make([]int64, len(chroms)+1),
		index:  make(map[string]int, len(chroms)),
	}
	copy(r.chroms, chroms)
	for i, c := range r.chroms {
		if c.Name == "" {
			return nil, errors.Errorf("genome.NewRegistry: chromosome #%d has an empty name", i)
		}
		if c.Length <= 0 {
			return nil, errors.Errorf("genome.NewRegistry: chromosome %s has non-positive length %d", c.Name, c.Length)
		}
		if _, found := r.index[c.Name]; found {
			return nil, errors.Errorf("genome.NewRegistry: duplicate chromosome %s", c.Name)
		}
		r.index[c.Name] = i
		r.start[i+1] = r.start[i] + c.Length
	}
	return r, nil
}

// MustNewRegistry is NewRegistry for tables known to be valid at compile time.
func MustNewRegistry(chroms []Chromosome) *Registry {
	r, err := NewRegistry(chroms)
	if err != nil {
		panic(err)
	}
	return r
}

// Len returns the number of chromosomes.
func (r *Registry) Len() int { return len(r.chroms) }

// Chromosome returns the i'th chromosome.
func (r *Registry) Chromosome(i int) Chromosome { return r.chroms[i] }

// Names returns the chromosome names in registry order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.chroms))
	for i, c := range r.chroms {
		names[i] = c.Name
	}
	return names
}

// Index returns the registry position of the named chromosome.
func (r *Registry) Index(name string) (int, bool) {
	i, ok := r.index[name]
	return i, ok
}

// Start returns the genome coordinate of position 0 on the i'th chromosome.
func (r *Registry) Start(i int) int64 { return r.start[i] }

// Midpoint returns the genome coordinate of the middle of the i'th
// chromosome's span.  Used to place axis labels.
func (r *Registry) Midpoint(i int) int64 { return r.start[i] + r.chroms[i].Length/2 }

// Midpoints returns Midpoint(i) for every chromosome, in registry order.
func (r *Registry) Midpoints() []int64 {
	mids := make([]int64, len(r.chroms))
	for i := range r.chroms {
		mids[i] = r.Midpoint(i)
	}
	return mids
}

// TotalLength returns the sum of all chromosome lengths, i.e. the upper bound
// of the genome axis.
func (r *Registry) TotalLength() int64 { return r.start[len(r.chroms)] }

// Coord maps (chrom, pos) to the genome-wide coordinate start[chrom] + pos.
// It fails with ErrInvalidChromosome if chrom isn't registered, and with
// ErrInvalidPosition if pos is negative or past the end of the chromosome.
func (r *Registry) Coord(chrom string, pos int64) (int64, error) {
	i, ok := r.index[chrom]
	if !ok {
		return 0, r.chromError(chrom)
	}
	if pos < 0 || pos > r.chroms[i].Length {
		return 0, errors.Wrapf(ErrInvalidPosition, "%s:%d (length %d)", chrom, pos, r.chroms[i].Length)
	}
	return r.start[i] + pos, nil
}

// chromError builds an ErrInvalidChromosome error, suggesting the closest
// registered name when one is near.  The common case is a "chr" prefix
// mismatch between the registry and the association table.
func (r *Registry) chromError(chrom string) error {
	best, bestDist := "", -1
	for _, c := range r.chroms {
		d := matchr.Levenshtein(chrom, c.Name)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c.Name, d
		}
	}
	if bestDist >= 0 && bestDist <= 3 {
		return errors.Wrapf(ErrInvalidChromosome, "%q (did you mean %q?)", chrom, best)
	}
	return errors.Wrapf(ErrInvalidChromosome, "%q", chrom)
}

// Subset returns a registry holding only the named chromosomes, in this
// registry's order.
func (r *Registry) Subset(names ...string) (*Registry, error) {
	keep := make([]bool, len(r.chroms))
	for _, name := range names {
		i, ok := r.index[name]
		if !ok {
			return nil, r.chromError(name)
		}
		keep[i] = true
	}
	var chroms []Chromosome
	for i, c := range r.chroms {
		if keep[i] {
			chroms = append(chroms, c)
		}
	}
	return NewRegistry(chroms)
}

// String implements fmt.Stringer.
func (r *Registry) String() string {
	return fmt.Sprintf("registry{%d chromosomes, %d bases}", len(r.chroms), r.TotalLength())
}
