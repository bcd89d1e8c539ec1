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
	"flag"
	"strings"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/manhattan/animate"
	"github.com/grailbio/manhattan/category"
	"github.com/grailbio/manhattan/render"
	"github.com/spf13/viper"
)

// Opts holds the settings shared by the subcommands.  A config file (-config)
// is decoded over DefaultOpts, and flags given on the command line override
// both.
type Opts struct {
	// Registry is a builtin assembly name or a .fai, .bam or name/length TSV.
	Registry string `mapstructure:"registry"`
	// Pathways is the marker/pathway/toplevel table used for highlights.
	Pathways string `mapstructure:"pathways"`
	// Level is "pathway" or "toplevel".
	Level string `mapstructure:"level"`
	// Highlight is a comma-separated list of category names to keep.
	Highlight string `mapstructure:"highlight"`
	BED       string `mapstructure:"bed"`
	OneBased  bool   `mapstructure:"one-based"`
	Region    string `mapstructure:"region"`
	HTML      string `mapstructure:"html"`
	TSV       string `mapstructure:"tsv"`
	Title     string `mapstructure:"title"`

	Width  int    `mapstructure:"width"`
	Height int    `mapstructure:"height"`
	Format string `mapstructure:"format"`

	Transitions     int     `mapstructure:"transitions"`
	Delay           int     `mapstructure:"delay"`
	TransitionDelay int     `mapstructure:"transition-delay"`
	Ease            string  `mapstructure:"ease"`
	Steepness       float64 `mapstructure:"steepness"`
	FramesDir       string  `mapstructure:"frames-dir"`
	Parallelism     int     `mapstructure:"parallelism"`
	Tool            string  `mapstructure:"tool"`
	Loop            int     `mapstructure:"loop"`
}

// DefaultOpts holds the default settings.
var DefaultOpts = Opts{
	Registry:        "GRCh38",
	Level:           "toplevel",
	Width:           render.DefaultOpts.Width,
	Height:          render.DefaultOpts.Height,
	Format:          render.DefaultOpts.Format,
	Transitions:     10,
	Delay:           animate.DefaultExportOpts.GenuineDelay,
	TransitionDelay: animate.DefaultExportOpts.TransitionDelay,
	Ease:            "linear",
	Steepness:       4,
	FramesDir:       "frames",
	Parallelism:     4,
	Tool:            animate.DefaultGIFOpts.Tool,
}

// flags binds the flags of one subcommand to an Opts.
type flags struct {
	fs     *flag.FlagSet
	opts   *Opts
	config *string
}

func newFlags(fs *flag.FlagSet) *flags {
	opts := DefaultOpts
	f := &flags{fs: fs, opts: &opts}
	f.config = fs.String("config", "", "YAML, JSON or TOML file of settings, keyed by flag name. Flags override it.")
	fs.StringVar(&opts.Registry, "registry", opts.Registry, `Chromosome registry: "GRCh37", "GRCh38" (optionally ":chr" to prefix names),
or the path of a .fai index, a .bam file, or a headerless name/length TSV.`)
	return f
}

func (f *flags) plot() {
	o := f.opts
	f.fs.IntVar(&o.Width, "width", o.Width, "Image width in pixels")
	f.fs.IntVar(&o.Height, "height", o.Height, "Image height in pixels")
	f.fs.StringVar(&o.Format, "format", o.Format, "Image format of animation frames: png, jpg, tiff, svg")
	f.fs.StringVar(&o.Title, "title", o.Title, "Plot title")
	f.fs.StringVar(&o.HTML, "html", o.HTML, "Also write an interactive HTML page to this path")
}

func (f *flags) categories() {
	o := f.opts
	f.fs.StringVar(&o.Level, "level", o.Level, `Pathway column naming the categories: "pathway" or "toplevel"`)
	f.fs.StringVar(&o.Highlight, "highlight", o.Highlight, "Comma-separated categories to keep; empty keeps all")
}

func (f *flags) animation() {
	o := f.opts
	f.fs.IntVar(&o.Transitions, "transitions", o.Transitions, "Number of interpolated frames between two states")
	f.fs.IntVar(&o.Delay, "delay", o.Delay, "Display time of a state frame, in 1/100 s")
	f.fs.IntVar(&o.TransitionDelay, "transition-delay", o.TransitionDelay, "Display time of a transition frame, in 1/100 s")
	f.fs.StringVar(&o.FramesDir, "frames-dir", o.FramesDir, "Directory of the frame images and manifest.tsv")
	f.fs.IntVar(&o.Parallelism, "parallelism", o.Parallelism, "Number of frames rendered concurrently")
	f.gif()
}

func (f *flags) gif() {
	o := f.opts
	f.fs.StringVar(&o.Tool, "tool", o.Tool, "ImageMagick binary used to assemble the GIF")
	f.fs.IntVar(&o.Loop, "loop", o.Loop, "GIF loop count; 0 loops forever")
}

// resolve returns the effective settings: defaults, then the config file, then
// the flags set on the command line.
func (f *flags) resolve() (Opts, error) {
	if *f.config == "" {
		return *f.opts, nil
	}
	set := map[string]string{}
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = fl.Value.String() })
	if err := loadConfig(*f.config, f.opts); err != nil {
		return Opts{}, err
	}
	for name, value := range set {
		if err := f.fs.Set(name, value); err != nil {
			return Opts{}, err
		}
	}
	return *f.opts, nil
}

func loadConfig(path string, opts *Opts) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return errors.E(errors.Invalid, err, "reading config", path)
	}
	if err := v.Unmarshal(opts); err != nil {
		return errors.E(errors.Invalid, err, "decoding config", path)
	}
	return nil
}

func (o Opts) level() (category.Level, error) {
	switch strings.ToLower(o.Level) {
	case "pathway":
		return category.Pathway, nil
	case "toplevel", "top-level", "":
		return category.TopLevel, nil
	}
	return 0, errors.E(errors.Invalid, "unknown level", o.Level)
}

func (o Opts) highlights() []string {
	if o.Highlight == "" {
		return nil
	}
	var names []string
	for _, name := range strings.Split(o.Highlight, ",") {
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

func (o Opts) renderOpts() render.Opts {
	r := render.DefaultOpts
	r.Width, r.Height, r.Format = o.Width, o.Height, o.Format
	return r
}

func (o Opts) exportOpts() animate.ExportOpts {
	e := animate.DefaultExportOpts
	e.Dir = o.FramesDir
	e.Ext = "." + o.Format
	e.Parallelism = o.Parallelism
	e.GenuineDelay = o.Delay
	e.TransitionDelay = o.TransitionDelay
	return e
}

func (o Opts) gifOpts() animate.GIFOpts {
	g := animate.DefaultGIFOpts
	g.Tool, g.Loop = o.Tool, o.Loop
	return g
}
