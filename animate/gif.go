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
	"strconv"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"v.io/x/lib/gosh"
	"v.io/x/lib/lookpath"
)

// GIFOpts controls AssembleGIF.
type GIFOpts struct {
	// Tool is the ImageMagick binary, looked up in $PATH.
	Tool string
	// Loop is the GIF loop count; 0 loops forever.
	Loop int
	// ExtraArgs are passed to Tool before the output path, e.g.
	// {"-layers", "Optimize"}.
	ExtraArgs []string
}

// DefaultGIFOpts holds the default GIF options.
var DefaultGIFOpts = GIFOpts{Tool: "convert"}

// gifArgs returns the ImageMagick arguments that assemble m into out.  A
// "-delay" option is emitted only where the delay changes.
func gifArgs(m *Manifest, out string, opts GIFOpts) []string {
	args := make([]string, 0, len(m.Entries)+8)
	delay := -1
	for _, e := range m.Entries {
		if e.Delay != delay {
			delay = e.Delay
			args = append(args, "-delay", strconv.Itoa(delay))
		}
		args = append(args, e.Path)
	}
	args = append(args, "-loop", strconv.Itoa(opts.Loop))
	args = append(args, opts.ExtraArgs...)
	return append(args, out)
}

// AssembleGIF runs ImageMagick over the frames of m, in manifest order, to
// produce the animated GIF out.  Frame paths must be local files.  A failure
// is returned as an error; the frames are left in place either way.
func AssembleGIF(ctx context.Context, m *Manifest, out string, opts GIFOpts) error {
	if len(m.Entries) == 0 {
		return errors.E(errors.Invalid, "animate.AssembleGIF: empty manifest")
	}
	if opts.Tool == "" {
		opts.Tool = DefaultGIFOpts.Tool
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	sh := gosh.NewShell(nil)
	sh.ContinueOnError = true
	defer sh.Cleanup()
	tool, err := lookpath.Look(sh.Vars, opts.Tool)
	if err != nil {
		return errors.E(errors.NotExist, err, "animate.AssembleGIF: ImageMagick", opts.Tool, "not found in $PATH")
	}
	log.Printf("animate.AssembleGIF: %s: %d frame(s), %.2fs", out, len(m.Entries), float64(m.Duration())/100)
	cmd := sh.Cmd(tool, gifArgs(m, out, opts)...)
	output := cmd.CombinedOutput()
	if cmd.Err != nil {
		return errors.E(cmd.Err, "animate.AssembleGIF", out, output)
	}
	return nil
}
