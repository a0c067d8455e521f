/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ui is the desktop viewer. The fyne shell is only compiled with
// -tags fyne; Viewer holds everything that does not need a window.
package ui

import (
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"prairiedraw/internal/anim"
	"prairiedraw/internal/draw"
	"prairiedraw/internal/export"
	"prairiedraw/internal/interact"
	applog "prairiedraw/internal/log"
	"prairiedraw/internal/undo"
	"prairiedraw/internal/vector"
)

// Viewer drives one scene onto an offscreen raster. It is not safe for
// concurrent use; the shell calls it from the UI goroutine only.
type Viewer struct {
	scene   export.Scene
	raster  *export.Raster
	frames  *anim.ManualFrames
	anim    *anim.Animator
	handler interact.Handler
	log     *slog.Logger
	painted int
	edits   *undo.Manager
	now     func() time.Time
}

// NewViewer builds the scene animator. edits may be shared between viewers
// so option history survives switching scenes; nil gives the viewer its
// own.
func NewViewer(sc export.Scene, w, h int, edits *undo.Manager, opts ...draw.Option) *Viewer {
	if edits == nil {
		edits = undo.NewManager(undo.Config{MaxPerScene: 50, MinInterval: 300 * time.Millisecond})
	}
	v := &Viewer{
		scene:  sc,
		raster: export.NewRaster(w, h),
		frames: &anim.ManualFrames{},
		log:    applog.WithScene(applog.WithComponent("ui"), sc.Name),
		edits:  edits,
		now:    time.Now,
	}
	v.anim = anim.New(v.raster, v.paint, v.frames, opts...)
	if sc.Setup != nil {
		sc.Setup(v.anim)
	}
	if sc.Interact != nil {
		v.handler = sc.Interact(v.anim)
	}
	v.anim.Redraw()
	return v
}

func (v *Viewer) paint(d *draw.Drawer, t float64) {
	v.raster.Clear(vector.White)
	if v.scene.Draw != nil {
		v.scene.Draw(d, t)
	}
	v.painted++
}

func (v *Viewer) Scene() export.Scene { return v.scene }
func (v *Viewer) Animator() *anim.Animator { return v.anim }
func (v *Viewer) Image() *image.RGBA { return v.raster.Image() }
func (v *Viewer) Painted() int { return v.painted }
func (v *Viewer) Running() bool { return v.anim.Running() }
func (v *Viewer) Toggle() { v.anim.Toggle() }
func (v *Viewer) Size() (w, h int) { b := v.raster.Image().Bounds(); return b.Dx(), b.Dy() }

// Reset stops the animation and rewinds it to t = 0.
func (v *Viewer) Reset() { v.anim.Reset() }

// Tick delivers a display refresh at ms milliseconds of wall time. It
// reports whether a frame was drawn.
func (v *Viewer) Tick(ms float64) bool {
	n := v.painted
	v.anim.FlushImages()
	if v.frames.Pending() > 0 {
		v.frames.Advance(ms)
	}
	return v.painted != n
}

// Pointer forwards a pointer event in raster pixels.
func (v *Viewer) Pointer(kind interact.Kind, x, y float64) {
	if v.handler == nil {
		return
	}
	v.handler.Handle(interact.Event{Kind: kind, X: x, Y: y})
}

// OptionKind tells the shell which widget edits an option.
type OptionKind int

const (
	OptionText OptionKind = iota
	OptionBool
	OptionNumber
)

// OptionField is one row of the options panel.
type OptionField struct {
	Name  string
	Kind  OptionKind
	Value string
}

// Options lists the scene's options by name.
func (v *Viewer) Options() []OptionField {
	st := v.anim.Options()
	names := st.Names()
	out := make([]OptionField, 0, len(names))
	for _, n := range names {
		val, err := st.Get(n)
		if err != nil {
			continue
		}
		f := OptionField{Name: n, Value: fmt.Sprint(val)}
		switch x := val.(type) {
		case bool:
			f.Kind = OptionBool
		case float64:
			f.Kind = OptionNumber
			f.Value = strconv.FormatFloat(x, 'g', -1, 64)
		case int:
			f.Kind = OptionNumber
		}
		out = append(out, f)
	}
	return out
}

// SetOption parses text into the option's current type and sets it. The
// previous values are recorded for Undo.
func (v *Viewer) SetOption(name, text string) error {
	st := v.anim.Options()
	cur, err := st.Get(name)
	if err != nil {
		return err
	}
	val, err := parseAs(cur, text)
	if err != nil {
		return fmt.Errorf("option %s: %w", name, err)
	}
	if before, err := v.snapshot(); err == nil {
		v.edits.Push(undo.Snapshot{Scene: v.scene.Name, Blob: before, TS: v.now()})
	}
	v.log.Debug("option", slog.String("name", name), slog.Any("value", val))
	return st.Set(name, val, st.TriggersRedraw(name), "ui", false)
}

func parseAs(cur any, text string) (any, error) {
	text = strings.TrimSpace(text)
	switch cur.(type) {
	case bool:
		return strconv.ParseBool(text)
	case float64:
		return strconv.ParseFloat(text, 64)
	case int:
		return strconv.Atoi(text)
	}
	return text, nil
}

// snapshot encodes every option value that is set.
func (v *Viewer) snapshot() ([]byte, error) {
	st := v.anim.Options()
	vals := make(map[string]any)
	for _, n := range st.Names() {
		if val, err := st.Get(n); err == nil {
			vals[n] = val
		}
	}
	return json.Marshal(vals)
}

// restore sets the options from a snapshot, keeping each option's type,
// then redraws once.
func (v *Viewer) restore(blob []byte) error {
	var vals map[string]any
	if err := json.Unmarshal(blob, &vals); err != nil {
		return err
	}
	st := v.anim.Options()
	for _, n := range st.Names() {
		val, ok := vals[n]
		if !ok {
			continue
		}
		cur, _ := st.Get(n)
		if f, isNum := val.(float64); isNum {
			if _, isInt := cur.(int); isInt {
				val = int(f)
			}
		}
		if err := st.Set(n, val, false, "undo", false); err != nil {
			return err
		}
	}
	v.anim.Redraw()
	return nil
}

// Undo reverts the last option change. It reports false when there is
// nothing to undo.
func (v *Viewer) Undo() (bool, error) {
	cur, err := v.snapshot()
	if err != nil {
		return false, err
	}
	s, ok := v.edits.Undo(v.scene.Name, cur)
	if !ok {
		return false, nil
	}
	return true, v.restore(s.Blob)
}

// Redo reapplies the last undone change.
func (v *Viewer) Redo() (bool, error) {
	cur, err := v.snapshot()
	if err != nil {
		return false, err
	}
	s, ok := v.edits.Redo(v.scene.Name, cur)
	if !ok {
		return false, nil
	}
	return true, v.restore(s.Blob)
}
