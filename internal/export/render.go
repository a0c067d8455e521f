/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"prairiedraw/internal/anim"
	"prairiedraw/internal/draw"
	"prairiedraw/internal/interact"
	applog "prairiedraw/internal/log"
	"prairiedraw/internal/vector"
)

var ErrUnknownFormat = errors.New("unknown format")

// Scene is an animated drawing. Setup runs once per output, after the
// animator exists and before the first frame; it may add options or
// register callbacks. Interact, when set, builds the pointer handler used by
// interactive hosts; offline renders ignore it.
type Scene struct {
	Name     string
	Draw     anim.DrawFunc
	Setup    func(a *anim.Animator)
	Interact func(a *anim.Animator) interact.Handler
}

// RenderOptions controls offline rendering.
//
// Path semantics: per-frame formats (png, svg) write <Name>-<n>.<ext>
// into OutDir, or <Name>.<ext> for a single frame. pdf writes one page per
// frame into <Name>.pdf and zip packs PNG frames into <Name>.zip.
type RenderOptions struct {
	Width, Height int
	FPS           int // default 30
	Frames        int // default 1: a still at t = 0
	Formats       []string
	OutDir        string
	Background    vector.Color
	Images        draw.ImageSource
	TextDir       string
}

func (o RenderOptions) withDefaults() RenderOptions {
	if o.FPS <= 0 {
		o.FPS = 30
	}
	if o.Frames <= 0 {
		o.Frames = 1
	}
	if o.Width <= 0 {
		o.Width = 600
	}
	if o.Height <= 0 {
		o.Height = 400
	}
	if len(o.Formats) == 0 {
		o.Formats = []string{"png"}
	}
	if o.Background == (vector.Color{}) {
		o.Background = vector.White
	}
	return o
}

// output is one render target: a surface plus what happens around frames.
type output struct {
	surface draw.Surface
	begin   func(i int)
	end     func(i int) error
	close   func() error
}

// Render draws sc for the configured frames into every format. Frame i is
// drawn at t = i/FPS. A scene name set with log.ContextWithScene is
// attached to its log records, defaulting to sc.Name.
func Render(ctx context.Context, sc Scene, opt RenderOptions) ([]string, error) {
	opt = opt.withDefaults()
	log := applog.WithOperation(applog.WithComponent("export"), "render")
	if _, ok := applog.SceneFrom(ctx); !ok && sc.Name != "" {
		ctx = applog.ContextWithScene(ctx, sc.Name)
	}
	var written []string
	for _, f := range opt.Formats {
		f = strings.ToLower(strings.TrimSpace(f))
		out, files, err := newOutput(f, sc, opt)
		if err != nil {
			return written, err
		}
		if err := run(ctx, sc, opt, out); err != nil {
			return written, fmt.Errorf("%s: %w", f, err)
		}
		written = append(written, files...)
		log.DebugContext(ctx, "rendered", slog.String("format", f), slog.Int("frames", opt.Frames))
	}
	return written, nil
}

func frameName(opt RenderOptions, name, ext string, i int) string {
	if opt.Frames == 1 {
		return filepath.Join(opt.OutDir, name+"."+ext)
	}
	return filepath.Join(opt.OutDir, fmt.Sprintf("%s-%0*d.%s", name, padWidth(opt.Frames), i+1, ext))
}

func newOutput(format string, sc Scene, opt RenderOptions) (*output, []string, error) {
	name := sc.Name
	if name == "" {
		name = "frame"
	}
	w, h := float64(opt.Width), float64(opt.Height)
	var files []string
	switch format {
	case "png":
		r := NewRaster(opt.Width, opt.Height)
		for i := 0; i < opt.Frames; i++ {
			files = append(files, frameName(opt, name, "png", i))
		}
		return &output{
			surface: r,
			begin:   func(int) { r.Clear(opt.Background) },
			end:     func(i int) error { return r.SavePNG(files[i]) },
		}, files, nil
	case "svg":
		s := NewSVG(w, h)
		for i := 0; i < opt.Frames; i++ {
			files = append(files, frameName(opt, name, "svg", i))
		}
		return &output{
			surface: s,
			begin:   func(int) { s.Clear(opt.Background) },
			end:     func(i int) error { return s.SaveFile(files[i]) },
		}, files, nil
	case "pdf":
		p := NewPDF(w, h, name)
		path := filepath.Join(opt.OutDir, name+".pdf")
		return &output{
			surface: p,
			begin: func(i int) {
				if i > 0 {
					p.NewPage()
				}
				p.Clear(opt.Background)
			},
			close: func() error { return p.SaveFile(path) },
		}, []string{path}, nil
	case "zip":
		r := NewRaster(opt.Width, opt.Height)
		path := filepath.Join(opt.OutDir, name+".zip")
		arc, err := CreateFrameArchive(path, opt.Frames, Manifest{Scene: name, Width: opt.Width, Height: opt.Height, FPS: opt.FPS})
		if err != nil {
			return nil, nil, err
		}
		return &output{
			surface: r,
			begin:   func(int) { r.Clear(opt.Background) },
			end:     func(int) error { return arc.Add(r.Image()) },
			close:   arc.Close,
		}, []string{path}, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
}

func run(ctx context.Context, sc Scene, opt RenderOptions, out *output) (err error) {
	if out.close != nil {
		defer func() {
			if cerr := out.close(); err == nil {
				err = cerr
			}
		}()
	}
	var dopts []draw.Option
	if opt.Images != nil {
		dopts = append(dopts, draw.WithImages(opt.Images))
	}
	if opt.TextDir != "" {
		dopts = append(dopts, draw.WithTextDir(opt.TextDir))
	}
	frames := &anim.ManualFrames{}
	frame := 0
	// nothing reaches the surface before the first frame
	live := false
	fn := func(d *draw.Drawer, t float64) {
		if live && sc.Draw != nil {
			sc.Draw(d, t)
		}
	}
	a := anim.New(out.surface, fn, frames, dopts...)
	if sc.Setup != nil {
		sc.Setup(a)
	}
	a.RegisterStepCallback(func(float64) {
		if live {
			out.begin(frame)
		}
	})
	live = true
	a.Start()
	for ; frame < opt.Frames; frame++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frames.Advance(float64(frame) * 1000 / float64(opt.FPS))
		if out.end != nil {
			if err := out.end(frame); err != nil {
				return err
			}
		}
	}
	a.Stop()
	return nil
}
