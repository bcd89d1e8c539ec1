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
package main

import (
	"context"
	"flag"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/manhattan/animate"
	"github.com/grailbio/manhattan/gwas"
	"github.com/grailbio/manhattan/render"
	"github.com/grailbio/testutil"
	"github.com/grailbio/testutil/assert"
	"github.com/grailbio/testutil/expect"
	"v.io/x/lib/gosh"
	"v.io/x/lib/lookpath"
)

const (
	testRegistry = "1\t100\n2\t50\n"
	testAssoc1   = "chromosome\tposition\tmarker\tp\n" +
		"1\t10\tm1\t0.5\n" +
		"1\t40\tm2\t1e-9\n" +
		"2\t10\tm3\t1e-4\n" +
		"2\t30\tm4\t0.01\n"
	testAssoc2 = "chromosome\tposition\tmarker\tp\n" +
		"1\t40\tm2\t1e-3\n" +
		"2\t10\tm3\t1e-10\n" +
		"2\t45\tm5\t0.2\n"
	testPathways = "marker\tpathway\ttoplevel\n" +
		"m1\tGlycolysis\tMetabolism\n" +
		"m2\tTCA cycle\tMetabolism\n" +
		"m2\tMAPK\tSignaling\n" +
		"m3\tWnt\tSignaling\n" +
		"m4\tApoptosis\tCell death\n"
)

type testEnv struct {
	ctx  context.Context
	dir  string
	opts Opts
}

func newTestEnv(t *testing.T) (*testEnv, func()) {
	tmpdir, cleanup := testutil.TempDir(t, "", "")
	e := &testEnv{ctx: vcontext.Background(), dir: tmpdir, opts: DefaultOpts}
	e.opts.Registry = e.write(t, "registry.tsv", testRegistry)
	e.opts.Width, e.opts.Height = 320, 160
	e.opts.Transitions = 2
	e.opts.FramesDir = filepath.Join(tmpdir, "frames")
	return e, func() { testutil.NoCleanupOnError(t, cleanup, tmpdir) }
}

func (e *testEnv) write(t *testing.T, name, data string) string {
	path := filepath.Join(e.dir, name)
	assert.NoError(t, os.WriteFile(path, []byte(data), 0644))
	return path
}

func (e *testEnv) path(name string) string { return filepath.Join(e.dir, name) }

func readString(t *testing.T, path string) string {
	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	return string(data)
}

func TestStatic(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	assoc := e.write(t, "assoc.tsv", testAssoc1)
	e.opts.Pathways = e.write(t, "pathways.tsv", testPathways)
	e.opts.HTML = e.path("static.html")

	out := e.path("static.png")
	assert.NoError(t, runStatic(e.ctx, e.opts, assoc, out))
	in, err := os.Open(out)
	assert.NoError(t, err)
	defer in.Close()
	cfg, err := png.DecodeConfig(in)
	assert.NoError(t, err)
	expect.EQ(t, cfg.Width, 320)
	expect.EQ(t, cfg.Height, 160)

	html := readString(t, e.opts.HTML)
	expect.True(t, strings.Contains(html, "Metabolism"))
	expect.True(t, strings.Contains(html, "Signaling"))
}

func TestStaticRegionAndBED(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	assoc := e.write(t, "assoc.tsv", testAssoc1)
	e.opts.BED = e.write(t, "peaks.bed", "1\t30\t50\n")
	e.opts.Region = "1:1-60"
	e.opts.HTML = e.path("zoom.html")
	assert.NoError(t, runStatic(e.ctx, e.opts, assoc, e.path("zoom.svg")))
	expect.True(t, strings.Contains(readString(t, e.opts.HTML), "peaks"))
	expect.True(t, strings.Contains(readString(t, e.path("zoom.svg")), "<svg"))

	e.opts.Region = "chr9"
	expect.NotNil(t, runStatic(e.ctx, e.opts, assoc, e.path("bad.png")))
}

func TestStaticUnknownHighlight(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	assoc := e.write(t, "assoc.tsv", testAssoc1)
	e.opts.Pathways = e.write(t, "pathways.tsv", testPathways)
	e.opts.Highlight = "Metabolism, Immunity"
	err := runStatic(e.ctx, e.opts, assoc, e.path("out.png"))
	expect.True(t, errors.Is(errors.NotExist, err), "%v", err)
}

func TestHeatmap(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	pathways := e.write(t, "pathways.tsv", testPathways)
	e.opts.Level = "pathway"
	e.opts.TSV = e.path("overlap.tsv")
	e.opts.HTML = e.path("overlap.html")
	assert.NoError(t, runHeatmap(e.ctx, e.opts, pathways, e.path("overlap.png")))

	lines := strings.Split(strings.TrimSpace(readString(t, e.opts.TSV)), "\n")
	expect.EQ(t, len(lines), 6)
	expect.True(t, strings.HasPrefix(lines[0], "category\t"))
	// TCA cycle and MAPK share m2 and are the only overlapping pair.
	header := strings.Split(lines[0], "\t")[1:]
	var tca, mapk int
	for i, name := range header {
		switch name {
		case "TCA cycle":
			tca = i
		case "MAPK":
			mapk = i
		}
	}
	expect.EQ(t, tca-mapk == 1 || mapk-tca == 1, true)
	expect.True(t, strings.Contains(readString(t, e.opts.HTML), "Wnt"))
}

// checkAnimation checks the outcome of an animation run: the frames and the
// manifest are always written; the GIF only if ImageMagick is installed.
func checkAnimation(t *testing.T, e *testEnv, err error, out string, frames int) {
	sh := gosh.NewShell(nil)
	defer sh.Cleanup()
	if _, lerr := lookpath.Look(sh.Vars, "convert"); lerr != nil {
		expect.True(t, errors.Is(errors.NotExist, err), "%v", err)
	} else {
		assert.NoError(t, err)
		_, serr := os.Stat(out)
		expect.NoError(t, serr)
	}
	m, merr := animate.ReadManifest(e.ctx, file.Join(e.opts.FramesDir, manifestName))
	assert.NoError(t, merr)
	expect.EQ(t, len(m.Entries), frames)
	expect.NoError(t, m.Verify(e.ctx))
}

func TestAnimatePathways(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	assoc := e.write(t, "assoc.tsv", testAssoc1)
	pathways := e.write(t, "pathways.tsv", testPathways)
	out := e.path("pathways.gif")
	err := runAnimatePathways(e.ctx, e.opts, assoc, pathways, out)
	// Three top-level pathways, two transition frames per gap.
	checkAnimation(t, e, err, out, 3+2*2)
}

func TestAnimatePathwaysRegion(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	assoc := e.write(t, "assoc.tsv", testAssoc1)
	pathways := e.write(t, "pathways.tsv", testPathways)
	out := e.path("zoom.gif")
	e.opts.Region = "1"
	err := runAnimatePathways(e.ctx, e.opts, assoc, pathways, out)
	checkAnimation(t, e, err, out, 3+2*2)

	e.opts.Region = "chr9"
	expect.NotNil(t, runAnimatePathways(e.ctx, e.opts, assoc, pathways, out))
}

func TestAnimateTimepoints(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	assoc := []string{
		e.write(t, "t1.tsv", testAssoc1),
		e.write(t, "t2.tsv", testAssoc2),
	}
	e.opts.Ease = "tanh"
	e.opts.Pathways = e.write(t, "pathways.tsv", testPathways)
	out := e.path("timepoints.gif")
	err := runAnimateTimepoints(e.ctx, e.opts, out, assoc)
	checkAnimation(t, e, err, out, 2+2)

	if err == nil {
		assert.NoError(t, os.Remove(out))
		assert.NoError(t, runGIF(e.ctx, e.opts, file.Join(e.opts.FramesDir, manifestName), out))
		_, serr := os.Stat(out)
		expect.NoError(t, serr)
	}

	e.opts.Ease = "bounce"
	expect.NotNil(t, runAnimateTimepoints(e.ctx, e.opts, out, assoc))
}

func TestGIFRejectsCorruptFrames(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	frame := e.write(t, "frame00000.png", "not a png")
	m := &animate.Manifest{Entries: []animate.Entry{{Index: 0, Path: frame, Delay: 100, Checksum: 1}}}
	manifest := e.path(manifestName)
	assert.NoError(t, m.Write(e.ctx, manifest))
	expect.NotNil(t, runGIF(e.ctx, e.opts, manifest, e.path("out.gif")))
}

func TestMergeMarkers(t *testing.T) {
	merged := mergeMarkers([][]gwas.Marker{
		{{ID: "a", Chrom: "1", Pos: 1}, {ID: "b", Chrom: "1", Pos: 2}},
		{{ID: "c", Chrom: "2", Pos: 3}, {ID: "a", Chrom: "2", Pos: 9}},
	})
	var ids []string
	for _, m := range merged {
		ids = append(ids, m.ID)
	}
	expect.EQ(t, ids, []string{"a", "b", "c"})
	expect.EQ(t, merged[0].Chrom, "1")
}

func TestConfigOverrides(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	config := e.write(t, "config.yaml", "width: 300\ntransitions: 3\nease: tanh\n")

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	f := newFlags(fs)
	f.plot()
	f.animation()
	assert.NoError(t, fs.Parse([]string{"-config", config, "-width", "500"}))
	opts, err := f.resolve()
	assert.NoError(t, err)
	expect.EQ(t, opts.Width, 500)
	expect.EQ(t, opts.Transitions, 3)
	expect.EQ(t, opts.Ease, "tanh")
	expect.EQ(t, opts.Height, DefaultOpts.Height)

	fs = flag.NewFlagSet("test", flag.ContinueOnError)
	f = newFlags(fs)
	assert.NoError(t, fs.Parse([]string{"-config", e.path("missing.yaml")}))
	_, err = f.resolve()
	expect.NotNil(t, err)
}

func TestOptsHelpers(t *testing.T) {
	o := DefaultOpts
	o.Highlight = " a, ,b "
	expect.EQ(t, o.highlights(), []string{"a", "b"})
	o.Level = "bogus"
	_, err := o.level()
	expect.NotNil(t, err)
	expect.EQ(t, formatOf("x/plot.SVG", "png"), "svg")
	expect.EQ(t, formatOf("x/plot", "png"), "png")
	expect.EQ(t, baseName("dir/peaks.bed.gz"), "peaks")
	expect.EQ(t, o.exportOpts().Ext, ".png")
}

func TestCommandTree(t *testing.T) {
	var names []string
	for _, c := range newCmdRoot().Children {
		names = append(names, c.Name)
	}
	expect.EQ(t, names, []string{"static", "heatmap", "animate-pathways", "animate-timepoints", "gif"})
}

// cancelingRenderer cancels the run after rendering its after'th frame.
type cancelingRenderer struct {
	animate.Renderer
	after  int
	cancel func()
	n      int
}

func (r *cancelingRenderer) Render(f animate.Frame, w io.Writer) error {
	r.n++
	if r.n == r.after {
		r.cancel()
	}
	return r.Renderer.Render(f, w)
}

func TestExportInterrupted(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	assoc := []string{e.write(t, "t1.tsv", testAssoc1), e.write(t, "t2.tsv", testAssoc2)}
	e.opts.Parallelism = 1
	in, err := loadInputs(e.ctx, e.opts, assoc)
	assert.NoError(t, err)
	markers := mergeMarkers(in.markers)
	layout, err := animate.NewLayout(in.reg, markers, nil)
	assert.NoError(t, err)
	seq, err := animate.NewScalarSequencer(layout, []animate.ScalarState{
		{Label: "t1", Values: gwas.Scores(in.markers[0])},
		{Label: "t2", Values: gwas.Scores(in.markers[1])},
	}, 4, nil)
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(e.ctx)
	defer cancel()
	r := &cancelingRenderer{
		Renderer: render.NewManhattan(in.reg, render.NewPalette(), e.opts.renderOpts()),
		after:    2,
		cancel:   cancel,
	}
	out := e.path("interrupted.gif")
	err = export(ctx, e.opts, seq, r, out)
	expect.EQ(t, err, context.Canceled)
	expect.EQ(t, r.n, 2)
	_, serr := os.Stat(out)
	expect.True(t, os.IsNotExist(serr))

	// The frames rendered before the interruption stay, and the manifest lists
	// a prefix of them.
	eo := e.opts.exportOpts()
	for n := 0; n < 2; n++ {
		_, serr := os.Stat(eo.FramePath(n))
		expect.NoError(t, serr)
	}
	m, err := animate.ReadManifest(e.ctx, file.Join(eo.Dir, manifestName))
	assert.NoError(t, err)
	expect.True(t, len(m.Entries) <= 2, "%d entries", len(m.Entries))
	expect.NoError(t, m.Verify(e.ctx))
}

func TestCanceledBeforeLoading(t *testing.T) {
	e, cleanup := newTestEnv(t)
	defer cleanup()
	assoc := []string{e.write(t, "t1.tsv", testAssoc1)}
	ctx, cancel := context.WithCancel(e.ctx)
	cancel()
	err := runAnimateTimepoints(ctx, e.opts, e.path("out.gif"), assoc)
	expect.EQ(t, err, context.Canceled)
	_, serr := os.Stat(e.opts.FramesDir)
	expect.True(t, os.IsNotExist(serr))
}

func TestRunContextCanceledBySignal(t *testing.T) {
	ctx, cancel := runContext()
	defer cancel()
	assert.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGTERM))
	select {
	case <-ctx.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("context not canceled by SIGTERM")
	}
}
