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
	"context"
	"io"
	"strings"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/fileio"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/tsv"
	"github.com/grailbio/hts/bam"
	"github.com/grailbio/hts/sam"
	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

// faiRow is one line of a samtools FASTA index.  The format is: "<sequence
// name>\t<length>\t<byte offset>\t<bases per line>\t<bytes per line>".
// Only the first two columns matter here.
type faiRow struct {
	Name      string
	Length    int64
	Offset    int64
	LineBases int64
	LineWidth int64
}

// tableRow is one line of a plain chromosome table.
type tableRow struct {
	Name   string
	Length int64
}

// ReadFAI builds a registry from a samtools .fai index, in index order.
func ReadFAI(ctx context.Context, path string) (*Registry, error) {
	var chroms []Chromosome
	err := readRows(ctx, path, func(r *tsv.Reader) error {
		var row faiRow
		for {
			if err := r.Read(&row); err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			chroms = append(chroms, Chromosome{Name: row.Name, Length: row.Length})
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "genome.ReadFAI %s", path)
	}
	return NewRegistry(chroms)
}

// ReadTable builds a registry from a headerless two-column (name, length) TSV.
// This is the simplest way to describe a nonstandard assembly.
func ReadTable(ctx context.Context, path string) (*Registry, error) {
	var chroms []Chromosome
	err := readRows(ctx, path, func(r *tsv.Reader) error {
		var row tableRow
		for {
			if err := r.Read(&row); err != nil {
				if err == io.EOF {
					return nil
				}
				return err
			}
			chroms = append(chroms, Chromosome{Name: row.Name, Length: row.Length})
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "genome.ReadTable %s", path)
	}
	return NewRegistry(chroms)
}

func readRows(ctx context.Context, path string, fn func(r *tsv.Reader) error) (err error) {
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
	return fn(tsv.NewReader(reader))
}

// FromSAMHeader builds a registry from the reference dictionary of a SAM/BAM
// header.
func FromSAMHeader(header *sam.Header) (*Registry, error) {
	refs := header.Refs()
	chroms := make([]Chromosome, len(refs))
	for i, ref := range refs {
		chroms[i] = Chromosome{Name: ref.Name(), Length: int64(ref.Len())}
	}
	return NewRegistry(chroms)
}

// ReadBAMHeader builds a registry from the header of a BAM file.
func ReadBAMHeader(ctx context.Context, path string) (r *Registry, err error) {
	var in file.File
	if in, err = file.Open(ctx, path); err != nil {
		return
	}
	defer file.CloseAndReport(ctx, in, &err)
	var br *bam.Reader
	if br, err = bam.NewReader(in.Reader(ctx), 1); err != nil {
		return nil, errors.Wrapf(err, "genome.ReadBAMHeader %s", path)
	}
	defer func() {
		if e := br.Close(); e != nil && err == nil {
			err = e
		}
	}()
	return FromSAMHeader(br.Header())
}

// Load resolves a registry spec: either a builtin assembly name (see Builtin,
// optionally suffixed with ":chr" to prefix names), or a path to a .fai index,
// a .bam file, or a name/length TSV.
func Load(ctx context.Context, spec string) (*Registry, error) {
	name, prefix := spec, ""
	if i := strings.IndexByte(spec, ':'); i > 0 && !strings.Contains(spec, "/") {
		name, prefix = spec[:i], spec[i+1:]
	}
	if r, err := Builtin(name); err == nil {
		if prefix != "" {
			r = WithPrefix(r, prefix)
		}
		log.Debug.Printf("genome.Load: builtin %s: %v", spec, r)
		return r, nil
	}
	var (
		r   *Registry
		err error
	)
	switch {
	case strings.HasSuffix(spec, ".fai"):
		r, err = ReadFAI(ctx, spec)
	case strings.HasSuffix(spec, ".bam"):
		r, err = ReadBAMHeader(ctx, spec)
	default:
		r, err = ReadTable(ctx, spec)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("genome.Load: %s: %v", spec, r)
	return r, nil
}
