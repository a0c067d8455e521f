//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"prairiedraw/internal/assets"
	"prairiedraw/internal/crash"
	"prairiedraw/internal/demo"
	"prairiedraw/internal/draw"
	"prairiedraw/internal/interact"
	applog "prairiedraw/internal/log"
	"prairiedraw/internal/telemetry"
	"prairiedraw/internal/undo"
	"prairiedraw/internal/version"
)

const (
	lastScenePrefsKey = "scene.last"
	viewW, viewH      = 600, 400
	uiFPS             = 60
)

// Run opens the viewer on sceneName, or on the last viewed scene when
// empty. textDir holds prerendered TeX labels.
func Run(sceneName, textDir string) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI")

	fyneApp := app.NewWithID("prairiedraw")
	prefs := fyneApp.Preferences()
	if sceneName == "" {
		sceneName = prefs.StringWithFallback(lastScenePrefsKey, "fourbar")
	}
	defer crash.Recover(&crash.Context{Scene: sceneName})

	w := fyneApp.NewWindow("PrairieDraw " + version.Version)
	winW := prefs.IntWithFallback("window.width", 900)
	winH := prefs.IntWithFallback("window.height", 560)
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	view := NewSceneCanvas()
	optionsBox := container.NewVBox()
	startBtn := widget.NewButton("Start", nil)

	var v *Viewer
	edits := undo.NewManager(undo.Config{MaxBytes: 4 << 20, MaxPerScene: 50, MinInterval: 300 * time.Millisecond})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	refreshControls := func() {
		if v.Running() {
			startBtn.SetText("Stop")
		} else {
			startBtn.SetText("Start")
		}
	}
	var rebuildOptions func()
	rebuildOptions = func() {
		optionsBox.RemoveAll()
		for _, f := range v.Options() {
			name := f.Name
			switch f.Kind {
			case OptionBool:
				c := widget.NewCheck(name, func(on bool) {
					if err := v.SetOption(name, fmt.Sprint(on)); err != nil {
						status.SetText(err.Error())
					}
					view.Refresh()
				})
				c.SetChecked(f.Value == "true")
				optionsBox.Add(c)
			default:
				e := widget.NewEntry()
				e.SetText(f.Value)
				e.OnSubmitted = func(text string) {
					if err := v.SetOption(name, text); err != nil {
						status.SetText(err.Error())
						return
					}
					view.Refresh()
				}
				optionsBox.Add(container.NewBorder(nil, nil, widget.NewLabel(name), nil, e))
			}
		}
		optionsBox.Refresh()
	}

	load := func(name string) {
		sc, err := demo.Lookup(name)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		// the ticker's Tick picks up images that land after the first paint
		images := assets.NewCache(ctx, assets.FileLoader{Root: "."})
		v = NewViewer(sc, viewW, viewH, edits, draw.WithImages(images), draw.WithTextDir(textDir))
		v.Animator().RegisterAnimCallback(func(bool) { refreshControls() })
		view.SetViewer(v)
		prefs.SetString(lastScenePrefsKey, name)
		rebuildOptions()
		status.SetText("Scene " + name)
		l.Info("scene loaded", slog.String("scene", name))
	}

	picker := widget.NewSelect(demo.Names(), func(name string) { load(name) })
	startBtn.OnTapped = func() {
		v.Toggle()
		refreshControls()
	}
	resetBtn := widget.NewButton("Reset", func() {
		v.Reset()
		rebuildOptions()
		view.Refresh()
	})
	undoBtn := widget.NewButton("Undo", func() {
		if ok, err := v.Undo(); err != nil {
			status.SetText(err.Error())
		} else if ok {
			rebuildOptions()
			view.Refresh()
		}
	})
	redoBtn := widget.NewButton("Redo", func() {
		if ok, err := v.Redo(); err != nil {
			status.SetText(err.Error())
		} else if ok {
			rebuildOptions()
			view.Refresh()
		}
	})
	picker.SetSelected(sceneName)
	if v == nil {
		load("fourbar")
	}

	toolbar := container.NewHBox(picker, startBtn, resetBtn, undoBtn, redoBtn)
	w.SetContent(container.NewBorder(toolbar, status, nil, container.NewVScroll(optionsBox), view))

	go func() {
		tk := time.NewTicker(time.Second / uiFPS)
		defer tk.Stop()
		start := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-tk.C:
				ms := float64(now.Sub(start)) / float64(time.Millisecond)
				fyne.Do(func() {
					if v != nil && v.Tick(ms) {
						view.Refresh()
						status.SetText(fmt.Sprintf("t = %.2f s", v.Animator().LastDrawTime()))
					}
				})
			}
		}
	}()

	opened := time.Now()
	w.SetOnClosed(func() {
		if v != nil {
			telemetry.Session(telemetry.SessionStats{
				Host: "ui", Scene: v.Scene().Name, Frames: uint64(v.Painted()), Duration: time.Since(opened),
			})
		}
		s := w.Canvas().Size()
		prefs.SetInt("window.width", int(s.Width))
		prefs.SetInt("window.height", int(s.Height))
		cancel()
	})
	w.ShowAndRun()
	return nil
}

// SceneCanvas shows a viewer's raster and turns mouse input into pointer
// events in raster pixels.
type SceneCanvas struct {
	widget.BaseWidget
	img  *canvas.Image
	v    *Viewer
	down bool
}

var (
	_ desktop.Mouseable = (*SceneCanvas)(nil)
	_ desktop.Hoverable = (*SceneCanvas)(nil)
	_ fyne.Tappable     = (*SceneCanvas)(nil)
)

func NewSceneCanvas() *SceneCanvas {
	c := &SceneCanvas{img: canvas.NewImageFromResource(nil)}
	c.img.FillMode = canvas.ImageFillContain
	c.img.ScaleMode = canvas.ImageScaleFastest
	c.ExtendBaseWidget(c)
	return c
}

func (c *SceneCanvas) SetViewer(v *Viewer) {
	c.v = v
	c.img.Image = v.Image()
	c.Refresh()
}

func (c *SceneCanvas) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(c.img)
}

func (c *SceneCanvas) MinSize() fyne.Size { return fyne.NewSize(viewW/2, viewH/2) }

func (c *SceneCanvas) Refresh() { c.img.Refresh() }

// toRaster maps a widget position to raster pixels, undoing the contain
// fit.
func (c *SceneCanvas) toRaster(p fyne.Position) (float64, float64) {
	rw, rh := c.v.Size()
	return fitToRaster(float64(p.X), float64(p.Y), float64(c.Size().Width), float64(c.Size().Height), float64(rw), float64(rh))
}

func (c *SceneCanvas) send(kind interact.Kind, p fyne.Position) {
	if c.v == nil {
		return
	}
	x, y := c.toRaster(p)
	c.v.Pointer(kind, x, y)
}

func (c *SceneCanvas) MouseDown(e *desktop.MouseEvent) {
	c.down = true
	c.send(interact.Press, e.Position)
}

func (c *SceneCanvas) MouseUp(e *desktop.MouseEvent) {
	c.down = false
	c.send(interact.Release, e.Position)
}

func (c *SceneCanvas) MouseIn(*desktop.MouseEvent) {}

func (c *SceneCanvas) MouseMoved(e *desktop.MouseEvent) { c.send(interact.Move, e.Position) }

func (c *SceneCanvas) MouseOut() {
	if c.v != nil {
		c.v.Pointer(interact.Leave, 0, 0)
	}
	c.down = false
}

func (c *SceneCanvas) Tapped(e *fyne.PointEvent) { c.send(interact.Click, e.Position) }
