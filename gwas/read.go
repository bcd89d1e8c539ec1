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
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// associationRow is one line of an association table.  P is kept as a string
// since missing values are written as "" or "NA".
type associationRow struct {
	Chrom string `tsv:"chromosome"`
	Pos   int64  `tsv:"position"`
	ID    string `tsv:"marker"`
	P     string `tsv:"p"`
}

// PathwayRow is one line of a marker -> pathway mapping table.  A marker
// usually appears on several rows, one per pathway it was annotated with.
type PathwayRow struct {
	Marker   string `tsv:"marker"`
	Pathway  string `tsv:"pathway"`
	TopLevel string `tsv:"toplevel"`
}

func openTable(ctx context.Context, path string, fn func(r *tsv.Reader) error) (err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, in, &err)
	reader := io.Reader(in.Reader(ctx))
	if fileio.DetermineType(path) == fileio.Gzip {
		if reader, err = gzip.NewReader(reader); err != nil {
			return
		}
	}
	r := tsv.NewReader(reader)
	r.HasHeaderRow = true
	r.UseHeaderNames = true
	return fn(r)
}

// parseP parses a p-value column.  ok is false for a missing value.
func parseP(s string) (p float64, ok bool, err error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "NA") || strings.EqualFold(s, "NaN") {
		return 0, false, nil
	}
	if p, err = strconv.ParseFloat(s, 64); err != nil {
		return 0, false, err
	}
	if p < 0 || p > 1 {
		return 0, false, errors.Errorf("p-value %s outside [0, 1]", s)
	}
	return p, true, nil
}

// ReadAssociations reads a tab-separated association table with (at least)
// the header columns "chromosome", "position", "marker" and "p".  Rows without
// a marker id or a p-value are dropped.  Marker ids must be unique within the
// table.  Markers are returned in file order.
func ReadAssociations(ctx context.Context, path string) ([]Marker, error) {
	var (
		markers []Marker
		dropped int
		// seen maps a marker id to the line it was read from.
		seen = map[string]int{}
	)
	err := openTable(ctx, path, func(r *tsv.Reader) error {
		for line := 2; ; line++ {
			var row associationRow
			if err := r.Read(&row); err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			p, ok, err := parseP(row.P)
			if err != nil {
				return errors.Wrapf(err, "line %d", line)
			}
			if !ok || row.ID == "" {
				dropped++
				continue
			}
			if first, dup := seen[row.ID]; dup {
				return errors.Errorf("line %d: duplicate marker id %q, first seen on line %d", line, row.ID, first)
			}
			seen[row.ID] = line
			markers = append(markers, Marker{
				ID:    row.ID,
				Chrom: row.Chrom,
				Pos:   row.Pos,
				P:     p,
				Score: NegLog10(p),
			})
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "gwas.ReadAssociations %s", path)
	}
	if dropped > 0 {
		log.Printf("gwas.ReadAssociations %s: dropped %d row(s) without a marker id or p-value", path, dropped)
	}
	log.Debug.Printf("gwas.ReadAssociations %s: %d marker(s)", path, len(markers))
	return markers, nil
}

// ReadPathways reads a tab-separated marker -> pathway table with the header
// columns "marker", "pathway" and "toplevel".  Rows without a marker id are
// dropped.
func ReadPathways(ctx context.Context, path string) ([]PathwayRow, error) {
	var rows []PathwayRow
	err := openTable(ctx, path, func(r *tsv.Reader) error {
		for {
			var row PathwayRow
			if err := r.Read(&row); err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			if row.Marker == "" {
				continue
			}
			rows = append(rows, row)
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "gwas.ReadPathways %s", path)
	}
	log.Debug.Printf("gwas.ReadPathways %s: %d row(s)", path, len(rows))
	return rows, nil
}
