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
	"math"

	"github.com/grailbio/manhattan/category"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Merge is one agglomeration step.  Leaves are clusters 0..n-1; the k'th
// merge creates cluster n+k.
type Merge struct {
	Left, Right int
	// Height is the average distance between the members of Left and Right.
	Height float64
	// Size is the number of leaves under the new cluster.
	Size int
}

// Dendrogram is the result of Cluster.
type Dendrogram struct {
	Names  []string
	Merges []Merge
}

// Cluster runs average-linkage agglomerative clustering over the distance
// matrix dist.  Entries must be finite and non-negative.
func Cluster(dist *Matrix) (*Dendrogram, error) {
	n := dist.Len()
	d := &Dendrogram{Names: append([]string(nil), dist.Names...)}
	if n == 0 {
		return d, nil
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			v := dist.Sym.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return nil, errors.Errorf("overlap.Cluster: invalid distance %v between %s and %s", v, dist.Names[i], dist.Names[j])
			}
		}
	}
	// Slot i holds cluster ids[i] with sizes[i] leaves, or is inactive.
	// work holds the current inter-cluster distances between active slots.
	var (
		work   = mat.NewSymDense(n, nil)
		ids    = make([]int, n)
		sizes  = make([]int, n)
		active = make([]bool, n)
	)
	work.CopySym(dist.Sym)
	for i := range ids {
		ids[i], sizes[i], active[i] = i, 1, true
	}
	for step := 0; step < n-1; step++ {
		bi, bj, best := -1, -1, math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if v := work.At(i, j); v < best {
					bi, bj, best = i, j, v
				}
			}
		}
		ni, nj := float64(sizes[bi]), float64(sizes[bj])
		for k := 0; k < n; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			work.SetSym(bi, k, (ni*work.At(bi, k)+nj*work.At(bj, k))/(ni+nj))
		}
		d.Merges = append(d.Merges, Merge{
			Left:   ids[bi],
			Right:  ids[bj],
			Height: best,
			Size:   sizes[bi] + sizes[bj],
		})
		ids[bi] = n + step
		sizes[bi] += sizes[bj]
		active[bj] = false
	}
	return d, nil
}

// Order returns the leaf indices in dendrogram order: the left subtree of
// every merge before its right subtree.
func (d *Dendrogram) Order() []int {
	n := len(d.Names)
	if n == 0 {
		return nil
	}
	if len(d.Merges) == 0 {
		return []int{0}
	}
	order := make([]int, 0, n)
	var walk func(id int)
	walk = func(id int) {
		if id < n {
			order = append(order, id)
			return
		}
		m := d.Merges[id-n]
		walk(m.Left)
		walk(m.Right)
	}
	walk(n + len(d.Merges) - 1)
	return order
}

// Leaves returns the category names in dendrogram order.
func (d *Dendrogram) Leaves() []string {
	order := d.Order()
	names := make([]string, len(order))
	for i, idx := range order {
		names[i] = d.Names[idx]
	}
	return names
}

// Order returns the names of sets ordered so that categories with high marker
// overlap are adjacent.
func Order(sets []category.Set) ([]string, error) {
	d, err := Cluster(Jaccard(sets).Distance())
	if err != nil {
		return nil, err
	}
	return d.Leaves(), nil
}
