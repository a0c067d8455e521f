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
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"prairiedraw/internal/config"
	"prairiedraw/internal/crash"
	"prairiedraw/internal/demo"
	applog "prairiedraw/internal/log"
	"prairiedraw/internal/preview"
	"prairiedraw/internal/storage"
	"prairiedraw/internal/telemetry"
	"prairiedraw/internal/texgen"
	"prairiedraw/internal/ui"
	"prairiedraw/internal/version"
)

func usage() {
	fmt.Println("PrairieDraw: vector drawings and animations for mechanics")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  prairiedraw version|-v|--version           Show version")
	fmt.Println("  prairiedraw scenes                         List demo scenes")
	fmt.Println("  prairiedraw render [flags] <scene>         Render frames to png, svg, pdf or zip")
	fmt.Println("  prairiedraw preview [flags] <scene>        Serve a live scene over HTTP and WebSocket")
	fmt.Println("  prairiedraw token [-ttl 12h] [subject]     Issue a preview viewer token")
	fmt.Println("  prairiedraw texgen [-dir d] [files...]     Prerender TeX labels found in Go sources")
	fmt.Println("  prairiedraw traces [-scene s]              List archived trace runs")
	fmt.Println("  prairiedraw ui [<scene>]                   Launch desktop viewer (build with -tags fyne)")
}

func main() {
	cfg, secret, cfgErr := config.Load()
	applog.Init(applog.Options{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		AddSource:  cfg.Logging.Source,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
	})
	l := applog.WithComponent("cli")
	if cfgErr != nil {
		l.Warn("config", slog.Any("err", cfgErr))
	}
	if tc := telemetry.FromEnv(); tc.OptIn || cfg.General.TelemetryOptIn {
		tc.OptIn = true
		tel := telemetry.New(tc)
		telemetry.SetDefault(tel)
		defer tel.Close()
	}
	cc := &crash.Context{OutDir: cfg.Render.OutDir}
	defer crash.Recover(cc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	var err error
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println(version.String())
		return
	case "scenes":
		for _, n := range demo.Names() {
			fmt.Println(n)
		}
		return
	case "render":
		err = cmdRender(ctx, cfg, cc, args[2:])
	case "preview":
		err = cmdPreview(ctx, cfg, secret, cc, args[2:])
	case "token":
		err = cmdToken(secret, args[2:])
	case "texgen":
		err = cmdTexgen(ctx, cfg, args[2:])
	case "traces":
		err = cmdTraces(ctx, cfg, args[2:])
	case "ui":
		var scene string
		if len(args) >= 3 {
			scene = args[2]
		}
		cc.Scene = scene
		err = ui.Run(scene, cfg.Render.TextDir)
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		l.Error(args[1]+" failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		if errors.Is(err, flag.ErrHelp) || errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

func sceneArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("%w: expected one scene name, have %v", errUsage, demo.Names())
	}
	return fs.Arg(0), nil
}

func cmdPreview(ctx context.Context, cfg config.AppConfig, secret string, cc *crash.Context, args []string) error {
	pcfg, err := preview.LoadConfig()
	if err != nil {
		return err
	}
	pcfg.Addr = cfg.Preview.Addr
	pcfg.Auth = pcfg.Auth || cfg.Preview.Auth
	pcfg.Width, pcfg.Height = cfg.Render.Width, cfg.Render.Height
	fs := flag.NewFlagSet("preview", flag.ContinueOnError)
	fs.StringVar(&pcfg.Addr, "addr", pcfg.Addr, "listen address")
	fs.IntVar(&pcfg.FPS, "fps", pcfg.FPS, "frames per second")
	fs.BoolVar(&pcfg.Auth, "auth", pcfg.Auth, "require a bearer token")
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
	cc.Scene = name
	if sc, err = withStyle(sc, *style); err != nil {
		return err
	}
	srv, err := preview.New(pcfg, withRenderConfig(sc, cfg.Render), secret, drawOptions(ctx, cfg.Render)...)
	if err != nil {
		return err
	}
	fmt.Printf("Serving %s on http://%s\n", name, pcfg.Addr)
	return srv.Run(ctx)
}

func cmdToken(secret string, args []string) error {
	fs := flag.NewFlagSet("token", flag.ContinueOnError)
	ttl := fs.Duration("ttl", 12*time.Hour, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}
	subject := "viewer"
	if fs.NArg() > 0 {
		subject = fs.Arg(0)
	}
	tok, err := preview.IssueToken(secret, subject, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(tok)
	return nil
}

func cmdTexgen(ctx context.Context, cfg config.AppConfig, args []string) error {
	fs := flag.NewFlagSet("texgen", flag.ContinueOnError)
	dir := fs.String("dir", cfg.Render.TextDir, "output directory")
	jobs := fs.Int("j", 4, "concurrent pdflatex runs")
	if err := fs.Parse(args); err != nil {
		return err
	}
	files := fs.Args()
	if len(files) == 0 {
		var err error
		files, err = filepath.Glob(filepath.Join("internal", "demo", "*.go"))
		if err != nil {
			return err
		}
	}
	texts, err := texgen.ScanFiles(files...)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return err
	}
	g := &texgen.Generator{Dir: *dir, Runner: texgen.ExecRunner{}, Jobs: *jobs}
	res, err := g.Generate(ctx, texts)
	fmt.Printf("TeX labels: %d rendered, %d up to date\n", len(res.Rendered), len(res.Skipped))
	return err
}

func cmdTraces(ctx context.Context, cfg config.AppConfig, args []string) error {
	fs := flag.NewFlagSet("traces", flag.ContinueOnError)
	scene := fs.String("scene", "", "only runs of this scene")
	del := fs.String("delete", "", "delete the run with this id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if cfg.Traces.Driver == "" {
		return fmt.Errorf("%w: set traces.driver in the config or PD_TRACES_DRIVER", errUsage)
	}
	arc, err := storage.Open(ctx, cfg.Traces.Driver, cfg.Traces.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = arc.Close() }()
	if *del != "" {
		id, err := parseRunID(*del)
		if err != nil {
			return err
		}
		return arc.DeleteRun(ctx, id)
	}
	runs, err := arc.Runs(ctx, *scene)
	if err != nil {
		return err
	}
	for _, r := range runs {
		names, err := arc.TraceNames(ctx, r.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%s  %-10s %s  %s  %s\n", r.ID, r.Scene, r.StartedAt.Format(time.RFC3339), strings.Join(names, ","), r.Note)
	}
	return nil
}
