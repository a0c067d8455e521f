/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"strings"

	"prairiedraw/internal/textlayout"
	"prairiedraw/internal/vector"
)

// Op is one recorded surface call.
type Op struct {
	Kind   string // clip, fill, stroke, text, image, clear, save, restore
	Path   vector.Path
	Fill   vector.Fill
	Stroke vector.Stroke
	Text   string
	Style  vector.TextStyle
	X, Y   float64
	W, H   float64
}

// Recorder is a Surface that keeps a log of calls instead of drawing.
// Text is measured with the basic 7x13 font metrics scaled to size.
type Recorder struct {
	W, H float64
	Ops  []Op
}

func NewRecorder(w, h float64) *Recorder { return &Recorder{W: w, H: h} }

func (r *Recorder) add(o Op) { r.Ops = append(r.Ops, o) }

func (r *Recorder) Size() (float64, float64) { return r.W, r.H }
func (r *Recorder) Resize(w, h float64)       { r.W, r.H = w, h }
func (r *Recorder) Save()                     { r.add(Op{Kind: "save"}) }
func (r *Recorder) Restore()                  { r.add(Op{Kind: "restore"}) }

func (r *Recorder) ClipRect(x, y, w, h float64) {
	r.add(Op{Kind: "clip", X: x, Y: y, W: w, H: h})
}

func (r *Recorder) FillPath(p vector.Path, f vector.Fill) {
	r.add(Op{Kind: "fill", Path: p, Fill: f})
}

func (r *Recorder) StrokePath(p vector.Path, s vector.Stroke) {
	r.add(Op{Kind: "stroke", Path: p, Stroke: s})
}

func (r *Recorder) FillText(text string, x, y float64, st vector.TextStyle) {
	r.add(Op{Kind: "text", Text: text, X: x, Y: y, Style: st})
}

func (r *Recorder) MeasureText(text string, size float64) float64 {
	w, _ := textlayout.Measure(textlayout.BasicProvider{}, textlayout.FontSpec{}, text)
	return w * size / 13
}

func (r *Recorder) DrawImage(img image.Image, x, y, w, h float64) {
	r.add(Op{Kind: "image", X: x, Y: y, W: w, H: h})
}

func (r *Recorder) Clear(vector.Color) { r.Ops = r.Ops[:0]; r.add(Op{Kind: "clear"}) }

// Count reports how many ops of kind were recorded.
func (r *Recorder) Count(kind string) int {
	n := 0
	for _, o := range r.Ops {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// Texts lists drawn strings in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, o := range r.Ops {
		if o.Kind == "text" {
			out = append(out, o.Text)
		}
	}
	return out
}

// String renders the log one op per line, paths in SVG syntax.
func (r *Recorder) String() string {
	var b strings.Builder
	for _, o := range r.Ops {
		switch o.Kind {
		case "fill":
			fmt.Fprintf(&b, "fill %s %s\n", paint(o.Fill.Color), pathData(o.Path))
		case "stroke":
			fmt.Fprintf(&b, "stroke %s %g %s\n", paint(o.Stroke.Color), o.Stroke.Width, pathData(o.Path))
		case "text":
			fmt.Fprintf(&b, "text %q %g %g\n", o.Text, o.X, o.Y)
		case "clip", "image":
			fmt.Fprintf(&b, "%s %g %g %g %g\n", o.Kind, o.X, o.Y, o.W, o.H)
		default:
			fmt.Fprintf(&b, "%s\n", o.Kind)
		}
	}
	return b.String()
}
