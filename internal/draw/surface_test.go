/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package draw

import (
	"image"

	"prairiedraw/internal/vector"
)

type op struct {
	kind   string
	path   vector.Path
	fill   vector.Fill
	stroke vector.Stroke
	text   string
	x, y   float64
	w, h   float64
	style  vector.TextStyle
}

// recorder is a Surface that remembers what was drawn.
type recorder struct {
	w, h  float64
	ops   []op
	depth int
}

func newRecorder(w, h float64) *recorder { return &recorder{w: w, h: h} }

func (r *recorder) Size() (float64, float64) { return r.w, r.h }
func (r *recorder) Resize(w, h float64)       { r.w, r.h = w, h }
func (r *recorder) Save()                     { r.depth++ }
func (r *recorder) Restore()                  { r.depth-- }
func (r *recorder) ClipRect(x, y, w, h float64) {
	r.ops = append(r.ops, op{kind: "clip", x: x, y: y, w: w, h: h})
}
func (r *recorder) FillPath(p vector.Path, f vector.Fill) {
	r.ops = append(r.ops, op{kind: "fill", path: p, fill: f})
}
func (r *recorder) StrokePath(p vector.Path, s vector.Stroke) {
	r.ops = append(r.ops, op{kind: "stroke", path: p, stroke: s})
}
func (r *recorder) FillText(text string, x, y float64, st vector.TextStyle) {
	r.ops = append(r.ops, op{kind: "text", text: text, x: x, y: y, style: st})
}
func (r *recorder) MeasureText(text string, size float64) float64 {
	return float64(len(text)) * size / 2
}
func (r *recorder) DrawImage(img image.Image, x, y, w, h float64) {
	r.ops = append(r.ops, op{kind: "image", x: x, y: y, w: w, h: h})
}
func (r *recorder) Clear(vector.Color) { r.ops = r.ops[:0] }

func (r *recorder) kinds() []string {
	out := make([]string, len(r.ops))
	for i, o := range r.ops {
		out[i] = o.kind
	}
	return out
}

func (r *recorder) count(kind string) int {
	n := 0
	for _, o := range r.ops {
		if o.kind == kind {
			n++
		}
	}
	return n
}

type mapImages map[string]image.Image

func (m mapImages) Image(key string) (image.Image, bool) {
	img, ok := m[key]
	return img, ok
}

// points lists the end points of every move and line command in p.
func points(p vector.Path) []vector.Vec2 {
	var out []vector.Vec2
	for _, c := range p.Cmds {
		if c.Op == vector.MoveTo || c.Op == vector.LineTo {
			out = append(out, vector.V2(c.Data[0], c.Data[1]))
		}
	}
	return out
}
