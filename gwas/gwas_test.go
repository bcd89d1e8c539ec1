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
package gwas_test

import (
	"context"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/manhattan/gwas"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"github.com/klauspost/compress/gzip"
)

func writeFile(ctx context.Context, t *testing.T, path, data string) {
	out, err := file.Create(ctx, path)
	assert.NoError(t, err)
	w := out.Writer(ctx)
	if filepath.Ext(path) == ".gz" {
		gz := gzip.NewWriter(w)
		_, err = gz.Write([]byte(data))
		assert.NoError(t, err)
		assert.NoError(t, gz.Close())
	} else {
		_, err = w.Write([]byte(data))
		assert.NoError(t, err)
	}
	assert.NoError(t, out.Close(ctx))
}

func TestNegLog10(t *testing.T) {
	tests := []struct {
		p    float64
		want float64
	}{
		{1, 0},
		{0.1, 1},
		{1e-8, 8},
	}
	for _, tt := range tests {
		expect.True(t, math.Abs(gwas.NegLog10(tt.p)-tt.want) < 1e-12, "p=%v", tt.p)
	}
	zero := gwas.NegLog10(0)
	expect.False(t, math.IsInf(zero, 0))
	expect.True(t, zero > 300)
	expect.True(t, gwas.GenomeWideScore() > gwas.SuggestiveScore())
}

func TestReadAssociations(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	data := "chromosome\tposition\tmarker\tp\n" +
		"1\t40\tm1\t0.01\n" +
		"2\t10\tm2\t1e-9\n" +
		"2\t20\t\t0.5\n" +
		"2\t30\tm4\tNA\n" +
		"2\t40\tm5\t\n"
	for _, name := range []string{"assoc.tsv", "assoc.tsv.gz"} {
		path := filepath.Join(tmpdir, name)
		writeFile(ctx, t, path, data)
		markers, err := gwas.ReadAssociations(ctx, path)
		assert.NoError(t, err)
		expect.EQ(t, len(markers), 2)
		expect.EQ(t, markers[0].ID, "m1")
		expect.EQ(t, markers[0].Chrom, "1")
		expect.EQ(t, markers[0].Pos, int64(40))
		expect.EQ(t, markers[1].ID, "m2")
		expect.True(t, math.Abs(markers[1].Score-9) < 1e-9)
	}

	bad := filepath.Join(tmpdir, "bad.tsv")
	writeFile(ctx, t, bad, "chromosome\tposition\tmarker\tp\n1\t40\tm1\t2.5\n")
	_, err := gwas.ReadAssociations(ctx, bad)
	expect.NotNil(t, err)
}

func TestReadAssociationsDuplicateID(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	path := filepath.Join(tmpdir, "dup.tsv")
	writeFile(ctx, t, path, "chromosome\tposition\tmarker\tp\n"+
		"1\t40\t.\t0.01\n"+
		"2\t10\tm2\t0.5\n"+
		"2\t20\t.\t1e-6\n")
	_, err := gwas.ReadAssociations(ctx, path)
	expect.NotNil(t, err)
	expect.True(t, strings.Contains(err.Error(), "line 4"), err.Error())
	expect.True(t, strings.Contains(err.Error(), "first seen on line 2"), err.Error())

	// Rows dropped for a missing p-value don't claim their id.
	writeFile(ctx, t, path, "chromosome\tposition\tmarker\tp\n"+
		"1\t40\tm1\tNA\n"+
		"2\t10\tm1\t0.5\n")
	markers, err := gwas.ReadAssociations(ctx, path)
	assert.NoError(t, err)
	expect.EQ(t, len(markers), 1)
}

func TestReadPathways(t *testing.T) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	defer testutil.NoCleanupOnError(t, cleanup, tmpdir)
	ctx := vcontext.Background()

	path := filepath.Join(tmpdir, "pathways.tsv")
	writeFile(ctx, t, path, "marker\tpathway\ttoplevel\n"+
		"m1\tGlycolysis\tMetabolism\n"+
		"\tOrphan\tNone\n"+
		"m2\tTCA cycle\tMetabolism\n")
	rows, err := gwas.ReadPathways(ctx, path)
	assert.NoError(t, err)
	expect.EQ(t, rows, []gwas.PathwayRow{
		{"m1", "Glycolysis", "Metabolism"},
		{"m2", "TCA cycle", "Metabolism"},
	})
}

func TestLookupAndScores(t *testing.T) {
	markers := []gwas.Marker{
		{ID: "a", Score: 1},
		{ID: "b", Score: 4},
	}
	l := gwas.NewLookup(markers)
	expect.EQ(t, l["b"], 1)
	expect.EQ(t, gwas.Scores(markers), map[string]float64{"a": 1, "b": 4})
	expect.EQ(t, gwas.MaxScore(markers), 4.0)
	expect.EQ(t, gwas.MaxScore(nil), 0.0)
}
