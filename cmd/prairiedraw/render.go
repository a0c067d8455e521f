/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"prairiedraw/internal/anim"
	"prairiedraw/internal/assets"
	"prairiedraw/internal/config"
	"prairiedraw/internal/crash"
	"prairiedraw/internal/demo"
	"prairiedraw/internal/draw"
	"prairiedraw/internal/export"
	applog "prairiedraw/internal/log"
	"prairiedraw/internal/props"
	"prairiedraw/internal/storage"
	"prairiedraw/internal/telemetry"
)

func parseRunID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad run id %q", errUsage, s)
	}
	return id, nil
}

// withRenderConfig applies the settings that are not per-surface.
func withRenderConfig(sc export.Scene, rc config.RenderConfig) export.Scene {
	if rc.HiddenLines || sc.Draw == nil {
		return sc
	}
	inner := sc.Draw
	sc.Draw = func(d *draw.Drawer, t float64) {
		d.MustSetProp("hiddenLineDraw", false)
		inner(d, t)
	}
	return sc
}

// withStyle starts every frame from the properties of a YAML or JSON
// preset file.
func withStyle(sc export.Scene, path string) (export.Scene, error) {
	if path == "" || sc.Draw == nil {
		return sc, nil
	}
	style := props.Defaults()
	if err := style.LoadPresetFile(path); err != nil {
		return sc, err
	}
	inner := sc.Draw
	sc.Draw = func(d *draw.Drawer, t float64) {
		*d.Props() = style
		inner(d, t)
	}
	return sc, nil
}

// drawOptions wires the TeX label directory through an async image cache.
func drawOptions(ctx context.Context, rc config.RenderConfig) []draw.Option {
	if rc.TextDir == "" {
		return nil
	}
	return []draw.Option{draw.WithImages(assets.NewCache(ctx, assets.FileLoader{Root: "."})), draw.WithTextDir(rc.TextDir)}
}

// warm draws one throwaway frame so the cache starts loading every image
// the scene asks for, then waits for the loads to settle.
func warm(ctx context.Context, name string, rc config.RenderConfig, cache *assets.Cache) error {
	sc, err := demo.Lookup(name)
	if err != nil {
		return err
	}
	a := anim.New(export.NewRecorder(float64(rc.Width), float64(rc.Height)), sc.Draw, &anim.ManualFrames{},
		draw.WithImages(cache), draw.WithTextDir(rc.TextDir))
	if sc.Setup != nil {
		sc.Setup(a)
	}
	a.Redraw()
	return cache.Wait(ctx)
}

func cmdRender(ctx context.Context, cfg config.AppConfig, cc *crash.Context, args []string) error {
	rc := cfg.Render
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	fs.IntVar(&rc.Width, "w", rc.Width, "width in pixels")
	fs.IntVar(&rc.Height, "h", rc.Height, "height in pixels")
	fs.IntVar(&rc.FPS, "fps", rc.FPS, "frames per second")
	fs.IntVar(&rc.Frames, "frames", rc.Frames, "number of frames")
	fs.StringVar(&rc.Format, "format", rc.Format, "comma separated formats: png,svg,pdf,zip")
	fs.StringVar(&rc.OutDir, "out", rc.OutDir, "output directory")
	fs.StringVar(&rc.TextDir, "text", rc.TextDir, "directory of prerendered TeX labels")
	note := fs.String("note", "", "note stored with the archived traces")
	style := fs.String("style", "", "drawing property preset (YAML or JSON)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	name, err := sceneArg(fs)
	if err != nil {
		return err
	}
	sc, err := demo.Lookup(name)
	if err != nil {
		return err
	}
	cc.Scene, cc.OutDir = name, rc.OutDir
	ctx = applog.ContextWithScene(ctx, name)
	l := applog.WithComponent("cli")

	opt := export.RenderOptions{
		Width: rc.Width, Height: rc.Height, FPS: rc.FPS, Frames: rc.Frames,
		Formats: rc.Formats(), OutDir: rc.OutDir, TextDir: rc.TextDir,
	}
	missing := 0
	if rc.TextDir != "" {
		cache := assets.NewCache(ctx, assets.FileLoader{Root: "."})
		if err := warm(ctx, name, rc, cache); err != nil {
			return err
		}
		if failed := cache.Failed(); len(failed) > 0 {
			l.WarnContext(ctx, "images missing", slog.Any("keys", failed))
			missing = len(failed)
		}
		opt.Images = cache
	}

	var last *anim.Animator
	if sc, err = withStyle(sc, *style); err != nil {
		return err
	}
	sc = withRenderConfig(sc, rc)
	setup := sc.Setup
	sc.Setup = func(a *anim.Animator) {
		if setup != nil {
			setup(a)
		}
		last = a
	}

	began := time.Now()
	files, err := export.Render(ctx, sc, opt)
	if err != nil {
		return err
	}
	took := time.Since(began)
	telemetry.Render(telemetry.RenderStats{
		Scene: name, Frames: opt.Frames, FPS: opt.FPS, Width: opt.Width, Height: opt.Height,
		Formats: opt.Formats, Took: took, MissingImages: missing,
	})
	for _, f := range files {
		fmt.Println(f)
	}
	l.InfoContext(ctx, "rendered", slog.Int("files", len(files)), slog.Duration("took", took))

	if cfg.Traces.Driver == "" || last == nil {
		return nil
	}
	return archiveTraces(ctx, cfg.Traces, name, *note, last)
}

func archiveTraces(ctx context.Context, tc config.TracesConfig, scene, note string, a *anim.Animator) error {
	arc, err := storage.Open(ctx, tc.Driver, tc.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = arc.Close() }()
	id, err := arc.BeginRun(ctx, scene, note)
	if err != nil {
		return err
	}
	if err := arc.SaveStore(ctx, id, a.HistoryStore()); err != nil {
		return err
	}
	fmt.Println("traces archived as run", id)
	return nil
}
