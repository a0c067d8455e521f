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
	"image"
	"testing"
	"time"

	"prairiedraw/internal/anim"
	"prairiedraw/internal/assets"
	"prairiedraw/internal/draw"
	"prairiedraw/internal/export"
	"prairiedraw/internal/interact"
	"prairiedraw/internal/vector"
)

type spy struct {
	times  []float64
	events []interact.Event
}

func (p *spy) Handle(e interact.Event) { p.events = append(p.events, e) }

func spyScene(p *spy) export.Scene {
	return export.Scene{
		Name: "spy",
		Setup: func(a *anim.Animator) {
			a.AddOption("show", true, true)
			a.AddOption("rate", 1.5, true)
			a.AddOption("count", 3, false)
			a.AddOption("label", "x", false)
		},
		Draw: func(d *draw.Drawer, t float64) {
			p.times = append(p.times, t)
			if d.OptionBool("show") {
				d.SetUnits(10, 10)
				d.FilledCircle(vector.V2(0, 0), 2)
			}
		},
		Interact: func(a *anim.Animator) interact.Handler { return p },
	}
}

func TestViewer_PaintsOnCreate(t *testing.T) {
	p := &spy{}
	v := NewViewer(spyScene(p), 40, 30, nil)
	if v.Painted() == 0 {
		t.Fatalf("expected a first paint")
	}
	if w, h := v.Size(); w != 40 || h != 30 {
		t.Fatalf("size = %dx%d", w, h)
	}
	// centre pixel covered by the filled circle
	if c := v.Image().RGBAAt(20, 15); c.R == 255 && c.G == 255 && c.B == 255 {
		t.Fatalf("centre still white")
	}
}

func TestViewer_TickOnlyWhileRunning(t *testing.T) {
	p := &spy{}
	v := NewViewer(spyScene(p), 20, 20, nil)
	if v.Tick(10) {
		t.Fatalf("stopped viewer drew on tick")
	}
	v.Toggle()
	if !v.Running() {
		t.Fatalf("not running after toggle")
	}
	v.Tick(1000)
	if !v.Tick(1500) {
		t.Fatalf("running viewer did not draw")
	}
	if last := p.times[len(p.times)-1]; last < 0.49 || last > 0.51 {
		t.Fatalf("t = %v, want 0.5", last)
	}
	v.Reset()
	if v.Running() || p.times[len(p.times)-1] != 0 {
		t.Fatalf("reset: running=%v t=%v", v.Running(), p.times[len(p.times)-1])
	}
}

func TestViewer_Options(t *testing.T) {
	v := NewViewer(spyScene(&spy{}), 20, 20, nil)
	fields := v.Options()
	want := map[string]OptionKind{"show": OptionBool, "rate": OptionNumber, "count": OptionNumber, "label": OptionText}
	if len(fields) != len(want) {
		t.Fatalf("fields = %+v", fields)
	}
	for _, f := range fields {
		if want[f.Name] != f.Kind {
			t.Fatalf("%s kind = %v", f.Name, f.Kind)
		}
	}
	if err := v.SetOption("rate", " 2.5 "); err != nil {
		t.Fatalf("set rate: %v", err)
	}
	if err := v.SetOption("count", "7"); err != nil {
		t.Fatalf("set count: %v", err)
	}
	if err := v.SetOption("show", "maybe"); err == nil {
		t.Fatalf("expected parse error")
	}
	if err := v.SetOption("nope", "1"); err == nil {
		t.Fatalf("expected unknown option error")
	}
	got, _ := v.Animator().GetOption("count")
	if got != 7 {
		t.Fatalf("count = %v (%T)", got, got)
	}
	got, _ = v.Animator().GetOption("rate")
	if got != 2.5 {
		t.Fatalf("rate = %v", got)
	}
}

func TestViewer_UndoRedoOptions(t *testing.T) {
	v := NewViewer(spyScene(&spy{}), 20, 20, nil)
	clock := time.Unix(0, 0)
	v.now = func() time.Time { clock = clock.Add(time.Second); return clock }
	_ = v.SetOption("count", "5")
	_ = v.SetOption("show", "false")
	if ok, err := v.Undo(); !ok || err != nil {
		t.Fatalf("undo: %v %v", ok, err)
	}
	if got, _ := v.Animator().GetOption("show"); got != true {
		t.Fatalf("show after undo = %v", got)
	}
	if ok, _ := v.Undo(); !ok {
		t.Fatalf("second undo failed")
	}
	if got, _ := v.Animator().GetOption("count"); got != 3 {
		t.Fatalf("count after undo = %v (%T)", got, got)
	}
	if ok, _ := v.Undo(); ok {
		t.Fatalf("nothing left to undo")
	}
	if ok, _ := v.Redo(); !ok {
		t.Fatalf("redo failed")
	}
	if got, _ := v.Animator().GetOption("count"); got != 5 {
		t.Fatalf("count after redo = %v (%T)", got, got)
	}
}

func TestViewer_PointerForwarded(t *testing.T) {
	p := &spy{}
	v := NewViewer(spyScene(p), 20, 20, nil)
	v.Pointer(interact.Click, 3, 4)
	if len(p.events) != 1 || p.events[0].X != 3 || p.events[0].Kind != interact.Click {
		t.Fatalf("events = %+v", p.events)
	}
}

func TestFitToRaster(t *testing.T) {
	x, y := fitToRaster(200, 200, 400, 400, 200, 100)
	if x != 100 || y != 50 {
		t.Fatalf("centre = %v, %v", x, y)
	}
	x, y = fitToRaster(5, 6, 0, 0, 10, 10)
	if x != 5 || y != 6 {
		t.Fatalf("empty view = %v, %v", x, y)
	}
}

type gateLoader struct{ gate chan struct{} }

func (g gateLoader) Load(ctx context.Context, key string) (image.Image, error) {
	<-g.gate
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func TestViewer_TickRepaintsWhenImageLands(t *testing.T) {
	gate := make(chan struct{})
	cache := assets.NewCache(context.Background(), gateLoader{gate})
	drawn := 0
	sc := export.Scene{
		Name: "label",
		Draw: func(d *draw.Drawer, t float64) {
			d.SetUnits(10, 10)
			if img, ok := cache.Image("label.png"); ok && img != nil {
				drawn++
			}
			d.DrawImage("label.png", vector.Vec2{}, vector.Vec2{}, 0)
		},
	}
	v := NewViewer(sc, 20, 20, nil, draw.WithImages(cache))
	if v.Tick(5) {
		t.Fatalf("stopped viewer drew before the image landed")
	}
	close(gate)
	if err := cache.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	n := v.Painted()
	if !v.Tick(10) || v.Painted() != n+1 || drawn != 1 {
		t.Fatalf("tick after load: painted %d -> %d, drawn %d", n, v.Painted(), drawn)
	}
	if v.Tick(20) {
		t.Fatalf("repainted twice for one image")
	}
}
