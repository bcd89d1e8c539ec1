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
package animate

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/tsv"
)

// Entry is one exported frame.
type Entry struct {
	Index int
	Path  string
	// Delay is the display time of the frame in hundredths of a second.
	Delay int
	// Checksum is the seahash of the image bytes.
	Checksum uint64
}

// Manifest lists exported frames in display order.  It is the interface to
// the GIF assembler.
type Manifest struct {
	Entries []Entry
}

// Duration returns the total display time in hundredths of a second.
func (m *Manifest) Duration() int {
	d := 0
	for _, e := range m.Entries {
		d += e.Delay
	}
	return d
}

// WriteTSV writes m as a tab-separated table with the header
// "index path delay checksum".  Checksums are hex.
func (m *Manifest) WriteTSV(w io.Writer) error {
	out := tsv.NewWriter(w)
	out.WriteString("index\tpath\tdelay\tchecksum")
	if err := out.EndLine(); err != nil {
		return err
	}
	for _, e := range m.Entries {
		out.WriteString(strconv.Itoa(e.Index))
		out.WriteString(e.Path)
		out.WriteString(strconv.Itoa(e.Delay))
		out.WriteString(strconv.FormatUint(e.Checksum, 16))
		if err := out.EndLine(); err != nil {
			return err
		}
	}
	return out.Flush()
}

// Write writes m to path.
func (m *Manifest) Write(ctx context.Context, path string) (err error) {
	out, err := file.Create(ctx, path)
	if err != nil {
		return errors.E(err, "create manifest", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	return m.WriteTSV(out.Writer(ctx))
}

type manifestRow struct {
	Index    int    `tsv:"index"`
	Path     string `tsv:"path"`
	Delay    int    `tsv:"delay"`
	Checksum string `tsv:"checksum"`
}

// ReadManifest reads a manifest written by Manifest.Write.  Entries must be
// numbered 0, 1, 2, ... in file order.
func ReadManifest(ctx context.Context, path string) (m *Manifest, err error) {
	in, err := file.Open(ctx, path)
	if err != nil {
		return nil, errors.E(err, "open manifest", path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	r := tsv.NewReader(in.Reader(ctx))
	r.HasHeaderRow = true
	r.UseHeaderNames = true
	m = &Manifest{}
	for {
		var row manifestRow
		if err = r.Read(&row); err != nil {
			if err == io.EOF {
				err = nil
				break
			}
			return nil, errors.E(err, "read manifest", path)
		}
		if row.Index != len(m.Entries) {
			return nil, errors.E(errors.Invalid, "manifest", path, fmt.Sprintf("entry %d out of order", row.Index))
		}
		sum, perr := strconv.ParseUint(row.Checksum, 16, 64)
		if perr != nil {
			return nil, errors.E(perr, "manifest", path, "bad checksum", row.Checksum)
		}
		m.Entries = append(m.Entries, Entry{Index: row.Index, Path: row.Path, Delay: row.Delay, Checksum: sum})
	}
	return m, nil
}

// Verify re-reads every frame and compares it to its checksum.
func (m *Manifest) Verify(ctx context.Context) error {
	for _, e := range m.Entries {
		if err := verifyEntry(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func verifyEntry(ctx context.Context, e Entry) (err error) {
	in, err := file.Open(ctx, e.Path)
	if err != nil {
		return errors.E(err, "open frame", e.Path)
	}
	defer file.CloseAndReport(ctx, in, &err)
	h := seahash.New()
	if _, err = io.Copy(h, in.Reader(ctx)); err != nil {
		return errors.E(err, "read frame", e.Path)
	}
	if got := h.Sum64(); got != e.Checksum {
		return errors.E(errors.Integrity, "frame", e.Path, "checksum", strconv.FormatUint(got, 16),
			"want", strconv.FormatUint(e.Checksum, 16))
	}
	return nil
}
