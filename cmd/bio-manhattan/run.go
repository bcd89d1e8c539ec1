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
	"bufio"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/grailbio/manhattan/animate"
	"github.com/grailbio/manhattan/category"
	"github.com/grailbio/manhattan/genome"
	"github.com/grailbio/manhattan/gwas"
	"github.com/grailbio/manhattan/interval"
	"github.com/grailbio/manhattan/overlap"
	"github.com/grailbio/manhattan/render"
	"golang.org/x/sync/errgroup"
)

// manifestName is the name of the frame manifest inside the frames directory.
const manifestName = "manifest.tsv"

// inputs holds the tables of one invocation.
type inputs struct {
	reg *genome.Registry
	// markers[i] holds the rows of the i'th association table.
	markers  [][]gwas.Marker
	pathways []gwas.PathwayRow
	bed      *interval.Union
}

// loadInputs reads the registry, the association tables and the optional
// pathway and BED tables concurrently.
func loadInputs(ctx context.Context, o Opts, assoc []string) (*inputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	in := &inputs{markers: make([][]gwas.Marker, len(assoc))}
	g, ctx := errgroup.WithContext(ctx)
	if o.Registry != "" {
		g.Go(func() (err error) {
			in.reg, err = genome.Load(ctx, o.Registry)
			return
		})
	}
	for i, path := range assoc {
		i, path := i, path
		g.Go(func() (err error) {
			in.markers[i], err = gwas.ReadAssociations(ctx, path)
			return
		})
	}
	if o.Pathways != "" {
		g.Go(func() (err error) {
			in.pathways, err = gwas.ReadPathways(ctx, o.Pathways)
			return
		})
	}
	if o.BED != "" {
		g.Go(func() (err error) {
			in.bed, err = interval.ReadBED(ctx, o.BED, interval.BEDOpts{OneBasedInput: o.OneBased})
			return
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return in, nil
}

// zoom restricts the registry to the chromosome of region, and the markers to
// the region.
func (in *inputs) zoom(region string) error {
	e, err := interval.ParseRegionString(region)
	if err != nil {
		return errors.E(errors.Invalid, err, "region", region)
	}
	if in.reg, err = in.reg.Subset(e.ChrName); err != nil {
		return err
	}
	for i, markers := range in.markers {
		var kept []gwas.Marker
		for _, m := range markers {
			if e.Contains(m.Chrom, m.Pos) {
				kept = append(kept, m)
			}
		}
		log.Printf("region %v: kept %d of %d markers", e, len(kept), len(markers))
		in.markers[i] = kept
	}
	return nil
}

// categories returns the highlight sets: the pathway sets at the configured
// level, optionally narrowed to -highlight, followed by the BED set.
func (in *inputs) categories(o Opts, markers []gwas.Marker) ([]category.Set, error) {
	var sets []category.Set
	if in.pathways != nil {
		level, err := o.level()
		if err != nil {
			return nil, err
		}
		sets = category.FromPathways(in.pathways, level)
		if names := o.highlights(); len(names) > 0 {
			var missing []string
			if sets, missing = category.Select(sets, names...); len(missing) > 0 {
				return nil, errors.E(errors.NotExist, "unknown categories:", strings.Join(missing, ","))
			}
		}
	}
	if in.bed != nil {
		sets = append(sets, category.NewSet(baseName(o.BED), in.bed.Select(markers)...))
	}
	return sets, nil
}

func setNames(sets []category.Set) []string {
	names := make([]string, len(sets))
	for i, s := range sets {
		names[i] = s.Name
	}
	return names
}

// baseName returns the file name of path without directory or extensions.
func baseName(path string) string {
	name := filepath.Base(path)
	if i := strings.IndexByte(name, '.'); i > 0 {
		name = name[:i]
	}
	return name
}

// mergeMarkers returns the union of tables by marker ID, in order of first
// appearance.  The first placement of an ID wins.
func mergeMarkers(tables [][]gwas.Marker) []gwas.Marker {
	var (
		merged []gwas.Marker
		seen   = gwas.Lookup{}
	)
	for _, markers := range tables {
		for _, m := range markers {
			if i, ok := seen[m.ID]; ok {
				if prev := merged[i]; prev.Chrom != m.Chrom || prev.Pos != m.Pos {
					log.Printf("marker %s: placed at both %s:%d and %s:%d, keeping the first",
						m.ID, prev.Chrom, prev.Pos, m.Chrom, m.Pos)
				}
				continue
			}
			seen[m.ID] = len(merged)
			merged = append(merged, m)
		}
	}
	return merged
}

// writeFile creates path and streams fn's output into it.
func writeFile(ctx context.Context, path string, fn func(w io.Writer) error) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	w := bufio.NewWriter(out.Writer(ctx))
	if err = fn(w); err != nil {
		return errors.E(err, "write", path)
	}
	return w.Flush()
}

// formatOf returns the image format implied by the extension of path, or def.
func formatOf(path, def string) string {
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext != "" {
		return strings.ToLower(ext)
	}
	return def
}

func titleOr(o Opts, def string) string {
	if o.Title != "" {
		return o.Title
	}
	return def
}

// runStatic draws one Manhattan plot of assocPath to out.
func runStatic(ctx context.Context, o Opts, assocPath, out string) error {
	in, err := loadInputs(ctx, o, []string{assocPath})
	if err != nil {
		return err
	}
	if o.Region != "" {
		if err = in.zoom(o.Region); err != nil {
			return err
		}
	}
	markers := in.markers[0]
	sets, err := in.categories(o, markers)
	if err != nil {
		return err
	}
	labels, err := category.Classify(in.reg, markers, sets...)
	if err != nil {
		return err
	}
	log.Printf("%s: %d markers, %v", assocPath, len(markers), category.Counts(labels))
	layout, err := animate.NewLayout(in.reg, markers, labels)
	if err != nil {
		return err
	}
	title := titleOr(o, baseName(assocPath))
	seq, err := animate.NewScalarSequencer(layout,
		[]animate.ScalarState{{Label: title, Values: gwas.Scores(markers)}}, 0, nil)
	if err != nil {
		return err
	}
	frame, err := seq.Frame(0)
	if err != nil {
		return err
	}
	palette := render.NewPalette(setNames(sets)...)
	ropts := o.renderOpts()
	ropts.Format = formatOf(out, ropts.Format)
	r := render.NewManhattan(in.reg, palette, ropts)
	if err := writeFile(ctx, out, func(w io.Writer) error { return r.Render(frame, w) }); err != nil {
		return err
	}
	if o.HTML != "" {
		return writeFile(ctx, o.HTML, func(w io.Writer) error {
			return render.WriteHTML(w, title, render.ManhattanChart(in.reg, palette, frame))
		})
	}
	return nil
}

// runHeatmap draws the clustered Jaccard matrix of the pathway sets of
// pathwaysPath to out.
func runHeatmap(ctx context.Context, o Opts, pathwaysPath, out string) error {
	o.Registry, o.Pathways = "", pathwaysPath
	in, err := loadInputs(ctx, o, nil)
	if err != nil {
		return err
	}
	sets, err := in.categories(o, nil)
	if err != nil {
		return err
	}
	order, err := overlap.Order(sets)
	if err != nil {
		return err
	}
	m, err := overlap.Jaccard(sets).Reorder(order)
	if err != nil {
		return err
	}
	title := titleOr(o, "Pathway overlap (Jaccard)")
	ropts := o.renderOpts()
	ropts.Format = formatOf(out, ropts.Format)
	if err := writeFile(ctx, out, func(w io.Writer) error { return render.Heatmap(m, title, w, ropts) }); err != nil {
		return err
	}
	if o.TSV != "" {
		if err := writeFile(ctx, o.TSV, m.WriteTSV); err != nil {
			return err
		}
	}
	if o.HTML != "" {
		return writeFile(ctx, o.HTML, func(w io.Writer) error {
			return render.WriteHTML(w, title, render.HeatmapChart(m, title))
		})
	}
	return nil
}

// runAnimatePathways animates the highlight of one pathway set at a time, in
// clustered order.
func runAnimatePathways(ctx context.Context, o Opts, assocPath, pathwaysPath, out string) error {
	o.Pathways = pathwaysPath
	in, err := loadInputs(ctx, o, []string{assocPath})
	if err != nil {
		return err
	}
	if o.Region != "" {
		if err = in.zoom(o.Region); err != nil {
			return err
		}
	}
	markers := in.markers[0]
	sets, err := in.categories(o, markers)
	if err != nil {
		return err
	}
	if len(sets) == 0 {
		return errors.E(errors.Invalid, pathwaysPath, "defines no categories")
	}
	order, err := overlap.Order(sets)
	if err != nil {
		return err
	}
	sets, _ = category.Select(sets, order...)
	log.Printf("pathway order: %v", order)
	layout, err := animate.NewLayout(in.reg, markers, nil)
	if err != nil {
		return err
	}
	states := make([]animate.CategoricalState, len(sets))
	for i, s := range sets {
		if states[i], err = animate.NewCategoricalState(s.Name, layout, s); err != nil {
			return err
		}
	}
	seq, err := animate.NewCategoricalSequencer(layout, states, o.Transitions)
	if err != nil {
		return err
	}
	ropts := o.renderOpts()
	ropts.YMax = gwas.MaxScore(markers)
	return export(ctx, o, seq, render.NewManhattan(in.reg, render.NewPalette(order...), ropts), out)
}

// runAnimateTimepoints animates the scores of assoc, one state per table.
func runAnimateTimepoints(ctx context.Context, o Opts, out string, assoc []string) error {
	in, err := loadInputs(ctx, o, assoc)
	if err != nil {
		return err
	}
	if o.Region != "" {
		if err = in.zoom(o.Region); err != nil {
			return err
		}
	}
	markers := mergeMarkers(in.markers)
	var (
		labels  []string
		palette = render.NewPalette()
	)
	if in.pathways != nil || in.bed != nil {
		sets, err := in.categories(o, markers)
		if err != nil {
			return err
		}
		if labels, err = category.Classify(in.reg, markers, sets...); err != nil {
			return err
		}
		palette = render.NewPalette(setNames(sets)...)
	}
	layout, err := animate.NewLayout(in.reg, markers, labels)
	if err != nil {
		return err
	}
	states := make([]animate.ScalarState, len(assoc))
	for i, path := range assoc {
		states[i] = animate.ScalarState{Label: baseName(path), Values: gwas.Scores(in.markers[i])}
	}
	ease, err := animate.ParseEase(o.Ease, o.Steepness)
	if err != nil {
		return err
	}
	seq, err := animate.NewScalarSequencer(layout, states, o.Transitions, ease)
	if err != nil {
		return err
	}
	ropts := o.renderOpts()
	ropts.YMax = seq.MaxValue()
	return export(ctx, o, seq, render.NewManhattan(in.reg, palette, ropts), out)
}

// export renders the frames of seq, records them in the frames directory's
// manifest, and assembles them into out.
func export(ctx context.Context, o Opts, seq animate.Sequencer, r animate.Renderer, out string) error {
	eo := o.exportOpts()
	if err := os.MkdirAll(eo.Dir, 0755); err != nil {
		return errors.E(err, "frames directory", eo.Dir)
	}
	m, err := animate.Export(ctx, seq, r, eo)
	if err != nil {
		if ctx.Err() == nil || m == nil {
			return err
		}
		// Interrupted: keep what was rendered so that "gif" can assemble it.
		path := file.Join(eo.Dir, manifestName)
		if werr := m.Write(vcontext.Background(), path); werr != nil {
			log.Printf("writing partial manifest %s: %v", path, werr)
		} else {
			log.Printf("interrupted: %d frame(s) listed in %s", len(m.Entries), path)
		}
		return err
	}
	if err := m.Write(ctx, file.Join(eo.Dir, manifestName)); err != nil {
		return err
	}
	return animate.AssembleGIF(ctx, m, out, o.gifOpts())
}

// runGIF reassembles the frames listed in manifestPath, after checking them
// against their checksums.
func runGIF(ctx context.Context, o Opts, manifestPath, out string) error {
	m, err := animate.ReadManifest(ctx, manifestPath)
	if err != nil {
		return err
	}
	if err := m.Verify(ctx); err != nil {
		return err
	}
	return animate.AssembleGIF(ctx, m, out, o.gifOpts())
}
