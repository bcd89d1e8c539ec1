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
package overlap

import (
	"io"
	"strconv"

	"github.com/grailbio/base/tsv"
	"github.com/grailbio/manhattan/category"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Matrix is a square, symmetric matrix whose rows and columns are named by
// category.
type Matrix struct {
	Names []string
	Sym   *mat.SymDense
}

// Len returns the number of categories.
func (m *Matrix) Len() int { return len(m.Names) }

// At returns the (i, j) entry.
func (m *Matrix) At(i, j int) float64 { return m.Sym.At(i, j) }

// jaccard returns |a ∩ b| / |a ∪ b|, or 0 when both are empty.
func jaccard(a, b category.Set) float64 {
	if a.Len() > b.Len() {
		a, b = b, a
	}
	inter := 0
	for id := range a.IDs {
		if b.Contains(id) {
			inter++
		}
	}
	union := a.Len() + b.Len() - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// Jaccard returns the overlap matrix of sets.  Entry (i, j) is the Jaccard
// index of sets i and j for i != j, and 1 on the diagonal.
func Jaccard(sets []category.Set) *Matrix {
	n := len(sets)
	m := &Matrix{Names: make([]string, n)}
	if n == 0 {
		return m
	}
	m.Sym = mat.NewSymDense(n, nil)
	for i := range sets {
		m.Names[i] = sets[i].Name
		m.Sym.SetSym(i, i, 1)
		for j := i + 1; j < n; j++ {
			m.Sym.SetSym(i, j, jaccard(sets[i], sets[j]))
		}
	}
	return m
}

// Distance returns the dissimilarity matrix 1 - m.  The diagonal is 0.
func (m *Matrix) Distance() *Matrix {
	n := m.Len()
	d := &Matrix{Names: append([]string(nil), m.Names...)}
	if n == 0 {
		return d
	}
	d.Sym = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d.Sym.SetSym(i, j, 1-m.Sym.At(i, j))
		}
	}
	return d
}

// Reorder returns a copy of m with rows and columns permuted to follow names,
// which must be a permutation of m.Names.
func (m *Matrix) Reorder(names []string) (*Matrix, error) {
	n := m.Len()
	if len(names) != n {
		return nil, errors.Errorf("overlap.Reorder: got %d names, want %d", len(names), n)
	}
	index := make(map[string]int, n)
	for i, name := range m.Names {
		index[name] = i
	}
	perm := make([]int, n)
	seen := make(map[string]bool, n)
	for i, name := range names {
		j, ok := index[name]
		if !ok || seen[name] {
			return nil, errors.Errorf("overlap.Reorder: %q is not a category or is repeated", name)
		}
		seen[name] = true
		perm[i] = j
	}
	r := &Matrix{Names: append([]string(nil), names...)}
	if n == 0 {
		return r, nil
	}
	r.Sym = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			r.Sym.SetSym(i, j, m.Sym.At(perm[i], perm[j]))
		}
	}
	return r, nil
}

// WriteTSV writes m as a tab-separated table with a header row of names and
// one row per category led by its name.
func (m *Matrix) WriteTSV(w io.Writer) error {
	out := tsv.NewWriter(w)
	out.WriteString("category")
	for _, name := range m.Names {
		out.WriteString(name)
	}
	if err := out.EndLine(); err != nil {
		return err
	}
	for i, name := range m.Names {
		out.WriteString(name)
		for j := range m.Names {
			out.WriteString(strconv.FormatFloat(m.Sym.At(i, j), 'g', 6, 64))
		}
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}
