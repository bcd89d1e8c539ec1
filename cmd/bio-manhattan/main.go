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
// bio-manhattan draws Manhattan plots of GWAS association tables, heatmaps of
// pathway overlap, and animated GIFs that step through pathway highlights or
// through the association tables of successive time points.
//
// Association tables are TSVs with the columns "chromosome", "position",
// "marker" and "p".  Pathway tables have the columns "marker", "pathway" and
// "toplevel".  Animation frames are written to -frames-dir together with
// manifest.tsv, and assembled with ImageMagick's convert.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/grailbio/base/cmdutil"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"v.io/x/lib/cmdline"
)

// runContext returns a context that is canceled by SIGINT or SIGTERM.  A
// canceled animation stops after the frames being rendered and keeps them.
func runContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(vcontext.Background(), os.Interrupt, syscall.SIGTERM)
}

func newCmdStatic() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "static",
		Short:    "Draw a Manhattan plot of one association table",
		ArgsName: "assoc.tsv out.png",
	}
	f := newFlags(&cmd.Flags)
	f.plot()
	f.categories()
	cmd.Flags.StringVar(&f.opts.Pathways, "pathways", "", "Pathway table; its categories are highlighted")
	cmd.Flags.StringVar(&f.opts.BED, "bed", "", "BED file; markers inside its intervals are highlighted")
	cmd.Flags.BoolVar(&f.opts.OneBased, "one-based", false, "The BED file uses 1-based closed intervals")
	cmd.Flags.StringVar(&f.opts.Region, "region", "", `Restrict the plot to a region, "chr", "chr:pos" or "chr:start-end"`)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("static takes assoc.tsv out.png, but got %v", argv)
		}
		opts, err := f.resolve()
		if err != nil {
			return err
		}
		ctx, cancel := runContext()
		defer cancel()
		return runStatic(ctx, opts, argv[0], argv[1])
	})
	return cmd
}

func newCmdHeatmap() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "heatmap",
		Short:    "Draw the clustered Jaccard overlap of the pathways of a pathway table",
		ArgsName: "pathways.tsv out.png",
	}
	f := newFlags(&cmd.Flags)
	f.plot()
	f.categories()
	cmd.Flags.StringVar(&f.opts.TSV, "tsv", "", "Also write the reordered matrix as TSV to this path")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("heatmap takes pathways.tsv out.png, but got %v", argv)
		}
		opts, err := f.resolve()
		if err != nil {
			return err
		}
		ctx, cancel := runContext()
		defer cancel()
		return runHeatmap(ctx, opts, argv[0], argv[1])
	})
	return cmd
}

func newCmdAnimatePathways() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "animate-pathways",
		Short:    "Animate one pathway highlight after another, in clustered order",
		ArgsName: "assoc.tsv pathways.tsv out.gif",
	}
	f := newFlags(&cmd.Flags)
	f.plot()
	f.categories()
	f.animation()
	cmd.Flags.StringVar(&f.opts.Region, "region", "", `Restrict the plot to a region, "chr", "chr:pos" or "chr:start-end"`)
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 3 {
			return fmt.Errorf("animate-pathways takes assoc.tsv pathways.tsv out.gif, but got %v", argv)
		}
		opts, err := f.resolve()
		if err != nil {
			return err
		}
		ctx, cancel := runContext()
		defer cancel()
		return runAnimatePathways(ctx, opts, argv[0], argv[1], argv[2])
	})
	return cmd
}

func newCmdAnimateTimepoints() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "animate-timepoints",
		Short:    "Animate the scores of association tables of successive time points",
		ArgsName: "out.gif assoc.tsv...",
	}
	f := newFlags(&cmd.Flags)
	f.plot()
	f.categories()
	f.animation()
	cmd.Flags.StringVar(&f.opts.Pathways, "pathways", "", "Pathway table; its categories are highlighted in every frame")
	cmd.Flags.StringVar(&f.opts.BED, "bed", "", "BED file; markers inside its intervals are highlighted in every frame")
	cmd.Flags.BoolVar(&f.opts.OneBased, "one-based", false, "The BED file uses 1-based closed intervals")
	cmd.Flags.StringVar(&f.opts.Region, "region", "", `Restrict the plot to a region, "chr", "chr:pos" or "chr:start-end"`)
	cmd.Flags.StringVar(&f.opts.Ease, "ease", f.opts.Ease, `Interpolation: "linear" or "tanh"`)
	cmd.Flags.Float64Var(&f.opts.Steepness, "steepness", f.opts.Steepness, "Steepness of the tanh interpolation")
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) < 2 {
			return fmt.Errorf("animate-timepoints takes out.gif and at least one assoc.tsv, but got %v", argv)
		}
		opts, err := f.resolve()
		if err != nil {
			return err
		}
		ctx, cancel := runContext()
		defer cancel()
		return runAnimateTimepoints(ctx, opts, argv[0], argv[1:])
	})
	return cmd
}

func newCmdGIF() *cmdline.Command {
	cmd := &cmdline.Command{
		Name:     "gif",
		Short:    "Assemble a GIF from the frames listed in a manifest",
		ArgsName: "manifest.tsv out.gif",
	}
	f := newFlags(&cmd.Flags)
	f.gif()
	cmd.Runner = cmdutil.RunnerFunc(func(env *cmdline.Env, argv []string) error {
		if len(argv) != 2 {
			return fmt.Errorf("gif takes manifest.tsv out.gif, but got %v", argv)
		}
		opts, err := f.resolve()
		if err != nil {
			return err
		}
		ctx, cancel := runContext()
		defer cancel()
		return runGIF(ctx, opts, argv[0], argv[1])
	})
	return cmd
}

func newCmdRoot() *cmdline.Command {
	return &cmdline.Command{
		Name:     "bio-manhattan",
		Short:    "Manhattan plots, pathway heatmaps and animations of GWAS results",
		LookPath: false,
		Children: []*cmdline.Command{
			newCmdStatic(),
			newCmdHeatmap(),
			newCmdAnimatePathways(),
			newCmdAnimateTimepoints(),
			newCmdGIF(),
		},
	}
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	shutdown := grail.Init()
	cmdline.HideGlobalFlagsExcept()
	env := cmdline.EnvFromOS()
	err := cmdline.ParseAndRun(newCmdRoot(), env, os.Args[1:])
	shutdown()
	os.Exit(cmdline.ExitCode(err, env.Stderr))
}
