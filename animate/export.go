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
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"blainsmith.com/go/seahash"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/syncqueue"
	"github.com/grailbio/base/traverse"
)

// Renderer rasterizes one frame.
type Renderer interface {
	Render(f Frame, w io.Writer) error
}

// ExportOpts controls Export.
type ExportOpts struct {
	// Dir is the directory the frame images are written to.  It may be any
	// path grailbio/base/file understands.
	Dir string
	// Prefix is prepended to the zero-padded frame number.
	Prefix string
	// Ext is the image file extension, including the dot.
	Ext string
	// Parallelism is the number of frames rendered concurrently.  Each worker
	// holds at most one frame in memory.
	Parallelism int
	// GenuineDelay is the display time of a genuine frame, in hundredths of a
	// second.
	GenuineDelay int
	// TransitionDelay is the display time of a transition frame, in hundredths
	// of a second.
	TransitionDelay int
	// ProgressInterval logs progress every this many frames; 0 disables it.
	ProgressInterval int
}

// DefaultExportOpts holds the default export options.
var DefaultExportOpts = ExportOpts{
	Dir:              ".",
	Prefix:           "frame",
	Ext:              ".png",
	Parallelism:      1,
	GenuineDelay:     100,
	TransitionDelay:  10,
	ProgressInterval: 100,
}

// FramePath returns the path of frame n.
func (o ExportOpts) FramePath(n int) string {
	return file.Join(o.Dir, fmt.Sprintf("%s%05d%s", o.Prefix, n, o.Ext))
}

// Export renders every frame of seq with r and writes it to its own file.
// Frames are numbered in sequence order regardless of Parallelism, and the
// returned manifest lists them in that order.
//
// Once ctx is done, no new frame is started, and Export returns ctx.Err()
// together with a manifest of the leading frames that were completed.
// Frames already written are left on disk, as they are after a rendering or
// I/O error.
func Export(ctx context.Context, seq Sequencer, r Renderer, opts ExportOpts) (*Manifest, error) {
	total := seq.Len()
	if total == 0 {
		return &Manifest{}, nil
	}
	parallelism := opts.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}
	if parallelism > total {
		parallelism = total
	}
	log.Printf("animate.Export: %d frame(s) to %s, parallelism %d", total, opts.Dir, parallelism)
	var (
		m     = &Manifest{Entries: make([]Entry, 0, total)}
		q     = syncqueue.NewOrderedQueue(2 * parallelism)
		e     errors.Once
		drain sync.WaitGroup
	)
	drain.Add(1)
	go func() {
		defer drain.Done()
		for {
			v, ok, err := q.Next()
			if err != nil {
				e.Set(err)
				return
			}
			if !ok {
				return
			}
			m.Entries = append(m.Entries, v.(Entry))
			if n := len(m.Entries); opts.ProgressInterval > 0 && n%opts.ProgressInterval == 0 {
				log.Printf("animate.Export: %d/%d frame(s) written", n, total)
			}
		}
	}()
	err := traverse.Each(parallelism, func(jobIdx int) error {
		for n := jobIdx; n < total; n += parallelism {
			if err := ctx.Err(); err != nil {
				q.Close(err)
				return err
			}
			entry, err := exportFrame(ctx, seq, r, opts, n)
			if err != nil {
				q.Close(err)
				return err
			}
			if err := q.Insert(n, entry); err != nil {
				return err
			}
		}
		return nil
	})
	e.Set(err)
	if err == nil {
		q.Close(nil)
	}
	drain.Wait()
	if err := ctx.Err(); err != nil {
		log.Printf("animate.Export: canceled after %d/%d frame(s): %v", len(m.Entries), total, err)
		return m, err
	}
	if err := e.Err(); err != nil {
		return nil, err
	}
	log.Printf("animate.Export: wrote %d frame(s)", len(m.Entries))
	return m, nil
}

// exportFrame renders frame n into its own file.  The file is closed before
// exportFrame returns.
func exportFrame(ctx context.Context, seq Sequencer, r Renderer, opts ExportOpts, n int) (entry Entry, err error) {
	frame, err := seq.Frame(n)
	if err != nil {
		return entry, err
	}
	path := opts.FramePath(n)
	out, err := file.Create(ctx, path)
	if err != nil {
		return entry, errors.E(err, "create frame", path)
	}
	defer file.CloseAndReport(ctx, out, &err)
	h := seahash.New()
	w := bufio.NewWriter(io.MultiWriter(out.Writer(ctx), h))
	if err = r.Render(frame, w); err != nil {
		return entry, errors.E(err, "render frame", path)
	}
	if err = w.Flush(); err != nil {
		return entry, errors.E(err, "write frame", path)
	}
	entry = Entry{Index: n, Path: path, Delay: opts.TransitionDelay, Checksum: h.Sum64()}
	if frame.Genuine {
		entry.Delay = opts.GenuineDelay
	}
	log.Debug.Printf("animate.Export: frame %d (%q, x=%.3f) -> %s", n, frame.Label, frame.Fraction, path)
	return entry, nil
}
