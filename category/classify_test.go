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
package category_test

import (
	"testing"

	"github.com/grailbio/manhattan/category"
	"github.com/grailbio/manhattan/genome"
	"github.com/grailbio/manhattan/gwas"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reg = genome.MustNewRegistry([]genome.Chromosome{{Name: "1", Length: 100}, {Name: "2", Length: 50}, {Name: "3", Length: 70}})

func TestClassify(t *testing.T) {
	markers := []gwas.Marker{
		{ID: "m1", Chrom: "1", Pos: 40},
		{ID: "m2", Chrom: "2", Pos: 10},
		{ID: "m3", Chrom: "3", Pos: 1},
		{ID: "m4", Chrom: "2", Pos: 50},
	}
	tests := []struct {
		name string
		sets []category.Set
		want []string
	}{
		{"background", nil, []string{"even", "odd", "even", "odd"}},
		{"single", []category.Set{category.NewSet("A", "m2")}, []string{"even", "A", "even", "odd"}},
		{
			"later wins",
			[]category.Set{category.NewSet("A", "m1", "m2"), category.NewSet("B", "m2", "m3")},
			[]string{"A", "B", "B", "odd"},
		},
		{
			"order reversed",
			[]category.Set{category.NewSet("B", "m2", "m3"), category.NewSet("A", "m1", "m2")},
			[]string{"A", "A", "B", "odd"},
		},
		{"empty set", []category.Set{category.NewSet("E")}, []string{"even", "odd", "even", "odd"}},
		{"unknown id", []category.Set{category.NewSet("A", "zzz")}, []string{"even", "odd", "even", "odd"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := category.Classify(reg, markers, tt.sets...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyRejectsBadMarkers(t *testing.T) {
	_, err := category.Classify(reg, []gwas.Marker{{ID: "x", Chrom: "chr1", Pos: 1}})
	assert.Equal(t, genome.ErrInvalidChromosome, errors.Cause(err))
	_, err = category.Classify(reg, []gwas.Marker{{ID: "x", Chrom: "2", Pos: 51}})
	assert.Equal(t, genome.ErrInvalidPosition, errors.Cause(err))
}

func TestClassifyRejectsBackgroundNames(t *testing.T) {
	markers := []gwas.Marker{{ID: "m1", Chrom: "2", Pos: 10}}
	for _, name := range []string{category.Even, category.Odd} {
		_, err := category.Classify(reg, markers, category.NewSet("A", "m1"), category.NewSet(name, "m1"))
		assert.Error(t, err, name)
	}
	labels, err := category.Classify(reg, markers, category.NewSet("Even", "m1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"Even"}, labels)
	assert.False(t, category.IsBackground(labels[0]))
}

func TestFromPathways(t *testing.T) {
	rows := []gwas.PathwayRow{
		{Marker: "m1", Pathway: "Glycolysis", TopLevel: "Metabolism"},
		{Marker: "m2", Pathway: "Apoptosis", TopLevel: "Programmed Cell Death"},
		{Marker: "m3", Pathway: "TCA cycle", TopLevel: "Metabolism"},
		{Marker: "m1", Pathway: "TCA cycle", TopLevel: "Metabolism"},
		{Marker: "m4", Pathway: "", TopLevel: ""},
	}
	top := category.FromPathways(rows, category.TopLevel)
	require.Len(t, top, 2)
	assert.Equal(t, "Metabolism", top[0].Name)
	assert.Equal(t, []string{"m1", "m3"}, top[0].Sorted())
	assert.Equal(t, "Programmed Cell Death", top[1].Name)

	leaf := category.FromPathways(rows, category.Pathway)
	var names []string
	for _, s := range leaf {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"Glycolysis", "Apoptosis", "TCA cycle"}, names)
	assert.True(t, leaf[2].Contains("m1"))
	assert.Equal(t, 2, leaf[2].Len())

	sel, missing := category.Select(leaf, "TCA cycle", "Nope", "Glycolysis")
	require.Len(t, sel, 2)
	assert.Equal(t, "TCA cycle", sel[0].Name)
	assert.Equal(t, []string{"Nope"}, missing)
}

func TestBackground(t *testing.T) {
	assert.Equal(t, "even", category.BackgroundLabel(0))
	assert.Equal(t, "odd", category.BackgroundLabel(21))
	assert.True(t, category.IsBackground("odd"))
	assert.False(t, category.IsBackground("Metabolism"))
	assert.Equal(t, map[string]int{"even": 2, "A": 1}, category.Counts([]string{"even", "A", "even"}))
}
