/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"prairiedraw/internal/draw"
	"prairiedraw/internal/vector"
)

var red = vector.Color{R: 255, A: 255}

func square(x, y, s float64) vector.Path {
	var p vector.Path
	p.MoveTo(x, y)
	p.LineTo(x+s, y)
	p.LineTo(x+s, y+s)
	p.LineTo(x, y+s)
	p.Close()
	return p
}

func TestRaster_FillAndClip(t *testing.T) {
	r := NewRaster(40, 40)
	r.Clear(vector.White)
	r.Save()
	r.ClipRect(0, 0, 20, 40)
	r.FillPath(square(5, 5, 30), vector.Fill{Color: red, Enabled: true})
	r.Restore()
	if got := r.Image().RGBAAt(10, 20); got != (color.RGBA{255, 0, 0, 255}) {
		t.Fatalf("inside fill %v", got)
	}
	if got := r.Image().RGBAAt(30, 20); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("clipped pixel painted: %v", got)
	}
	if got := r.Image().RGBAAt(2, 2); got != (color.RGBA{255, 255, 255, 255}) {
		t.Fatalf("outside pixel painted: %v", got)
	}
}

func TestRaster_EvenOddHole(t *testing.T) {
	r := NewRaster(40, 40)
	p := square(0, 0, 40)
	hole := square(10, 10, 20)
	p.Cmds = append(p.Cmds, hole.Cmds...)
	r.FillPath(p, vector.Fill{Color: red, Rule: vector.EvenOdd, Enabled: true})
	if r.Image().RGBAAt(20, 20).A != 0 {
		t.Fatalf("hole filled")
	}
	if r.Image().RGBAAt(5, 5).A == 0 {
		t.Fatalf("ring not filled")
	}
}

func TestRaster_EvenOddCurvedHole(t *testing.T) {
	r := NewRaster(40, 40)
	p := square(0, 0, 40)
	p.MoveTo(28, 20)
	p.Arc(20, 20, 8, 0, 2*math.Pi, false)
	p.Close()
	r.FillPath(p, vector.Fill{Color: red, Rule: vector.EvenOdd, Enabled: true})
	if r.Image().RGBAAt(20, 20).A != 0 {
		t.Fatalf("circular hole filled")
	}
	if r.Image().RGBAAt(3, 3).A == 0 || r.Image().RGBAAt(20, 35).A == 0 {
		t.Fatalf("ring not filled")
	}
}

func TestRaster_StrokeAndText(t *testing.T) {
	r := NewRaster(60, 30)
	var p vector.Path
	p.MoveTo(0, 15)
	p.LineTo(60, 15)
	r.StrokePath(p, vector.Stroke{Color: red, Width: 4, Enabled: true})
	if r.Image().RGBAAt(30, 15).R != 255 {
		t.Fatalf("stroke missing")
	}
	if r.Image().RGBAAt(30, 2).A != 0 {
		t.Fatalf("stroke too wide")
	}
	before := r.MeasureText("Hi", 12)
	if before <= 0 {
		t.Fatalf("measure %v", before)
	}
	r.Clear(vector.Transparent)
	r.FillText("Hi", 30, 15, vector.TextStyle{Color: vector.Black, Size: 14, Align: vector.AlignCenter, Baseline: vector.BaselineMiddle})
	ink := 0
	for y := 0; y < 30; y++ {
		for x := 0; x < 60; x++ {
			if r.Image().RGBAAt(x, y).A > 0 {
				ink++
			}
		}
	}
	if ink == 0 {
		t.Fatalf("no text drawn")
	}
}

func TestRaster_ImageAndPNG(t *testing.T) {
	r := NewRaster(20, 20)
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for i := range src.Pix {
		src.Pix[i] = 255
	}
	r.DrawImage(src, 5, 5, 10, 10)
	if r.Image().RGBAAt(10, 10).A != 255 {
		t.Fatalf("image not drawn")
	}
	path := filepath.Join(t.TempDir(), "out", "a.png")
	if err := r.SavePNG(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	if st, err := os.Stat(path); err != nil || st.Size() == 0 {
		t.Fatalf("png missing: %v", err)
	}
	r.Resize(8, 4)
	if w, h := r.Size(); w != 8 || h != 4 {
		t.Fatalf("size %v %v", w, h)
	}
}

func TestSVG_Document(t *testing.T) {
	s := NewSVG(100, 50)
	s.Save()
	s.ClipRect(0, 0, 50, 50)
	s.FillPath(square(1, 2, 3), vector.Fill{Color: red, Enabled: true})
	s.StrokePath(square(1, 2, 3), vector.Stroke{Color: vector.Black, Width: 2, Dash: []float64{6, 6}, Enabled: true})
	s.FillText("a<b", 10, 10, vector.TextStyle{Size: 12, Align: vector.AlignRight})
	s.ClipRect(0, 0, 10, 10) // left open on purpose
	data, err := s.Bytes()
	if err != nil {
		t.Fatal(err)
	}
	doc := string(data)
	for _, want := range []string{`d="M1 2 L4 2 L4 5 L1 5 Z"`, `fill="#ff0000"`, `stroke-dasharray="6,6"`, `a&lt;b`, `text-anchor="end"`} {
		if !strings.Contains(doc, want) {
			t.Fatalf("missing %s in\n%s", want, doc)
		}
	}
	if strings.Count(doc, "<g ") != strings.Count(doc, "</g>") {
		t.Fatalf("unbalanced groups")
	}
	s.Restore()
	data, _ = s.Bytes()
	if strings.Count(string(data), "<g ") != strings.Count(string(data), "</g>") {
		t.Fatalf("unbalanced groups after restore")
	}
}

func TestPDF_Pages(t *testing.T) {
	p := NewPDF(200, 100, "test")
	p.Save()
	p.ClipRect(0, 0, 100, 100)
	p.FillPath(square(10, 10, 20), vector.Fill{Color: red, Rule: vector.EvenOdd, Enabled: true})
	p.StrokePath(square(10, 10, 20), vector.Stroke{Color: vector.Black, Width: 1, Enabled: true})
	p.FillText("label", 50, 50, vector.TextStyle{Size: 12})
	p.Restore()
	p.Clear(vector.Transparent)
	if p.Pages() != 2 {
		t.Fatalf("pages %d", p.Pages())
	}
	if p.MeasureText("abc", 12) <= 0 {
		t.Fatalf("no text width")
	}
	var buf bytes.Buffer
	if _, err := p.WriteTo(&buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Fatalf("not a pdf")
	}
}

func TestRecorder_String(t *testing.T) {
	r := NewRecorder(10, 10)
	r.StrokePath(square(0, 0, 1), vector.Stroke{Color: red, Width: 2})
	r.FillText("x", 1, 2, vector.TextStyle{})
	if got := r.String(); got != "stroke #ff0000 2 M0 0 L1 0 L1 1 L0 1 Z\ntext \"x\" 1 2\n" {
		t.Fatalf("log %q", got)
	}
	if r.Count("text") != 1 || r.Texts()[0] != "x" {
		t.Fatalf("texts %v", r.Texts())
	}
	if w := r.MeasureText("ab", 13); w != 14 {
		t.Fatalf("measure %v", w)
	}
}

func scene() Scene {
	return Scene{
		Name: "dot",
		Draw: func(d *draw.Drawer, t float64) {
			d.SetUnits(10, 10)
			d.Point(vector.V2(t, 0))
		},
	}
}

func TestRender_Formats(t *testing.T) {
	dir := t.TempDir()
	files, err := Render(context.Background(), scene(), RenderOptions{
		Width: 40, Height: 40, Frames: 3, FPS: 10, Formats: []string{"png", "svg", "pdf", "zip"}, OutDir: dir,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(files) != 3+3+1+1 {
		t.Fatalf("files %v", files)
	}
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			t.Fatalf("missing %s: %v", f, err)
		}
	}
	if filepath.Base(files[0]) != "dot-1.png" {
		t.Fatalf("first frame %s", files[0])
	}
	man, err := ReadManifest(filepath.Join(dir, "dot.zip"))
	if err != nil {
		t.Fatalf("manifest: %v", err)
	}
	if len(man.Frames) != 3 || man.FPS != 10 || man.Scene != "dot" {
		t.Fatalf("manifest %+v", man)
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	_, err := Render(context.Background(), scene(), RenderOptions{Formats: []string{"gif"}, OutDir: t.TempDir()})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("err %v", err)
	}
}

func TestRender_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Render(ctx, scene(), RenderOptions{Frames: 2, OutDir: t.TempDir()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err %v", err)
	}
}

func TestRaster_CullsOffscreenPaths(t *testing.T) {
	r := NewRaster(40, 40)
	if !r.culled(square(100, 100, 5), 0) {
		t.Fatalf("offscreen square not culled")
	}
	if r.culled(square(42, 10, 5), 3) {
		t.Fatalf("stroke reaching into the image was culled")
	}
	if r.culled(square(5, 5, 30), 0) || !r.culled(vector.Path{}, 0) {
		t.Fatalf("visible or empty path misjudged")
	}
}
