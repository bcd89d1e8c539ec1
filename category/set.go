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
	"sort"

	"github.com/grailbio/manhattan/gwas"
)

// Set is a named set of marker ids.  It is built once and queried by exact
// match.
type Set struct {
	Name string
	IDs  map[string]struct{}
}

// NewSet builds a set from a list of ids.  Duplicates are ignored.
func NewSet(name string, ids ...string) Set {
	s := Set{Name: name, IDs: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.IDs[id] = struct{}{}
	}
	return s
}

// Contains returns whether id is in the set.
func (s Set) Contains(id string) bool {
	_, ok := s.IDs[id]
	return ok
}

// Len returns the number of ids in the set.
func (s Set) Len() int { return len(s.IDs) }

// Sorted returns the ids in lexicographic order.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s.IDs))
	for id := range s.IDs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Level selects the PathwayRow column that names a set.
type Level int

const (
	// Pathway groups markers by their (leaf) pathway.
	Pathway Level = iota
	// TopLevel groups markers by their top-level pathway.
	TopLevel
)

// FromPathways groups the marker column of rows into sets named by the
// pathway or top-level pathway column.  Sets are returned in order of first
// appearance in rows.  Rows with an empty name at the chosen level are
// skipped.
func FromPathways(rows []gwas.PathwayRow, level Level) []Set {
	var (
		sets  []Set
		index = map[string]int{}
	)
	for _, row := range rows {
		name := row.Pathway
		if level == TopLevel {
			name = row.TopLevel
		}
		if name == "" {
			continue
		}
		i, ok := index[name]
		if !ok {
			i = len(sets)
			index[name] = i
			sets = append(sets, Set{Name: name, IDs: map[string]struct{}{}})
		}
		sets[i].IDs[row.Marker] = struct{}{}
	}
	return sets
}

// Select returns the sets whose names are listed, in the order of names.
// Unknown names are returned separately.
func Select(sets []Set, names ...string) (selected []Set, missing []string) {
	index := make(map[string]int, len(sets))
	for i, s := range sets {
		index[s.Name] = i
	}
	for _, name := range names {
		if i, ok := index[name]; ok {
			selected = append(selected, sets[i])
		} else {
			missing = append(missing, name)
		}
	}
	return
}
