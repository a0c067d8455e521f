/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export provides the Surfaces a Drawer paints on: an antialiased
// raster, PDF and SVG documents and a recorder, plus frame sequence
// rendering.
package export

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/srwiley/rasterx"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"prairiedraw/internal/textlayout"
	"prairiedraw/internal/vector"
)

// Raster paints into an RGBA image with rasterx.
type Raster struct {
	img     *image.RGBA
	scanner *rasterx.ScannerGV
	dasher  *rasterx.Dasher
	fonts   textlayout.Provider
	family  string

	clip  image.Rectangle
	clips []image.Rectangle
}

// RasterOption configures a Raster.
type RasterOption func(*Raster)

// WithFonts replaces the default Go font provider.
func WithFonts(p textlayout.Provider, family string) RasterOption {
	return func(r *Raster) { r.fonts, r.family = p, family }
}

// NewRaster returns a transparent w×h raster.
func NewRaster(w, h int, opts ...RasterOption) *Raster {
	r := &Raster{
		fonts:  textlayout.NewOTProvider(textlayout.DefaultLibrary()),
		family: textlayout.DefaultFamily,
	}
	for _, o := range opts {
		o(r)
	}
	r.alloc(w, h)
	return r
}

func (r *Raster) alloc(w, h int) {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	r.img = image.NewRGBA(image.Rect(0, 0, w, h))
	r.scanner = rasterx.NewScannerGV(w, h, r.img, r.img.Bounds())
	r.dasher = rasterx.NewDasher(w, h, r.scanner)
	r.clip = r.img.Bounds()
	r.clips = r.clips[:0]
}

// Image is the backing image. It is replaced by Resize.
func (r *Raster) Image() *image.RGBA { return r.img }

func (r *Raster) Size() (float64, float64) {
	b := r.img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

// Resize reallocates the image, dropping its content and clip stack.
func (r *Raster) Resize(w, h float64) {
	r.alloc(int(math.Round(w)), int(math.Round(h)))
}

func (r *Raster) Save() { r.clips = append(r.clips, r.clip) }

func (r *Raster) Restore() {
	if n := len(r.clips); n > 0 {
		r.clip = r.clips[n-1]
		r.clips = r.clips[:n-1]
	}
}

func (r *Raster) ClipRect(x, y, w, h float64) {
	rc := image.Rect(int(math.Floor(x)), int(math.Floor(y)), int(math.Ceil(x+w)), int(math.Ceil(y+h)))
	r.clip = r.clip.Intersect(rc)
}

func toFixed(v float64) fixed.Int26_6 { return fixed.Int26_6(math.Round(v * 64)) }

func pt(x, y float64) fixed.Point26_6 { return fixed.Point26_6{X: toFixed(x), Y: toFixed(y)} }

// addPath feeds p into a rasterx adder. Sub-paths left open are not
// closed, so strokes get end caps.
func addPath(a rasterx.Adder, p vector.Path) {
	open := false
	for _, c := range p.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			if open {
				a.Stop(false)
			}
			a.Start(pt(d[0], d[1]))
			open = true
		case vector.LineTo:
			a.Line(pt(d[0], d[1]))
		case vector.QuadTo:
			a.QuadBezier(pt(d[0], d[1]), pt(d[2], d[3]))
		case vector.CubicTo:
			a.CubeBezier(pt(d[0], d[1]), pt(d[2], d[3]), pt(d[4], d[5]))
		case vector.Close:
			if open {
				a.Stop(true)
				open = false
			}
		}
	}
	if open {
		a.Stop(false)
	}
}

func rgba(c vector.Color) color.NRGBA { return color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// culled reports whether p, grown by pad on every side, misses the clip.
func (r *Raster) culled(p vector.Path, pad float64) bool {
	if r.clip.Empty() || len(p.Cmds) == 0 {
		return true
	}
	b := p.Bounds()
	c := r.clip
	return b.X-pad > float64(c.Max.X) || b.Y-pad > float64(c.Max.Y) ||
		b.X+b.W+pad < float64(c.Min.X) || b.Y+b.H+pad < float64(c.Min.Y)
}

func (r *Raster) FillPath(p vector.Path, f vector.Fill) {
	if !f.Enabled || f.Color.A == 0 || r.culled(p, 0) {
		return
	}
	if f.Rule == vector.EvenOdd {
		// the GV scanner only does nonzero winding
		p = holesReversed(p)
	}
	fl := &r.dasher.Filler
	fl.Clear()
	fl.SetWinding(true)
	r.scanner.SetClip(r.clip)
	addPath(fl, p)
	fl.SetColor(rgba(f.Color))
	fl.Draw()
	fl.Clear()
}

// holesReversed winds every sub-path against the largest one, so nonzero
// filling leaves the holes empty. Curves are flattened first when there
// is more than one sub-path.
func holesReversed(p vector.Path) vector.Path {
	moves, curved := 0, false
	for _, c := range p.Cmds {
		switch c.Op {
		case vector.MoveTo:
			moves++
		case vector.QuadTo, vector.CubicTo:
			curved = true
		}
	}
	if moves < 2 {
		return p
	}
	if curved {
		p = p.Flatten(24)
	}
	var subs [][]vector.Vec2
	for _, c := range p.Cmds {
		switch c.Op {
		case vector.MoveTo:
			subs = append(subs, []vector.Vec2{{X: c.Data[0], Y: c.Data[1]}})
		case vector.LineTo:
			if len(subs) == 0 {
				return p
			}
			subs[len(subs)-1] = append(subs[len(subs)-1], vector.Vec2{X: c.Data[0], Y: c.Data[1]})
		case vector.Close:
		default:
			return p
		}
	}
	if len(subs) < 2 {
		return p
	}
	areas := make([]float64, len(subs))
	outer := 0
	for i, s := range subs {
		areas[i] = signedArea(s)
		if math.Abs(areas[i]) > math.Abs(areas[outer]) {
			outer = i
		}
	}
	var out vector.Path
	for i, s := range subs {
		if i != outer && areas[i]*areas[outer] > 0 {
			for l, r := 0, len(s)-1; l < r; l, r = l+1, r-1 {
				s[l], s[r] = s[r], s[l]
			}
		}
		out.MoveTo(s[0].X, s[0].Y)
		for _, q := range s[1:] {
			out.LineTo(q.X, q.Y)
		}
		out.Close()
	}
	return out
}

func signedArea(pts []vector.Vec2) float64 {
	a := 0.0
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return a / 2
}

var capFuncs = map[vector.LineCap]rasterx.CapFunc{
	vector.CapButt:   rasterx.ButtCap,
	vector.CapRound:  rasterx.RoundCap,
	vector.CapSquare: rasterx.SquareCap,
}

var joinModes = map[vector.LineJoin]rasterx.JoinMode{
	vector.JoinMiter: rasterx.Miter,
	vector.JoinRound: rasterx.Round,
	vector.JoinBevel: rasterx.Bevel,
}

func (r *Raster) StrokePath(p vector.Path, s vector.Stroke) {
	if !s.Enabled || s.Color.A == 0 || s.Width <= 0 || r.culled(p, s.Width) {
		return
	}
	miter := s.MiterLim
	if miter <= 0 {
		miter = 10
	}
	cp := capFuncs[s.Cap]
	r.dasher.Clear()
	r.dasher.SetStroke(toFixed(s.Width), toFixed(miter), cp, cp, rasterx.FlatGap, joinModes[s.Join], s.Dash, 0)
	r.scanner.SetClip(r.clip)
	addPath(r.dasher, p)
	r.dasher.SetColor(rgba(s.Color))
	r.dasher.Draw()
	r.dasher.Clear()
}

func (r *Raster) face(size float64) (font.Face, textlayout.Metrics) {
	return r.fonts.Resolve(textlayout.FontSpec{Family: r.family, SizePx: size})
}

func (r *Raster) MeasureText(text string, size float64) float64 {
	w, _ := textlayout.Measure(r.fonts, textlayout.FontSpec{Family: r.family, SizePx: size}, text)
	return w
}

// textOrigin returns the baseline start for text placed at (x, y).
func textOrigin(x, y, w float64, m textlayout.Metrics, st vector.TextStyle) (float64, float64) {
	switch st.Align {
	case vector.AlignCenter:
		x -= w / 2
	case vector.AlignRight:
		x -= w
	}
	switch st.Baseline {
	case vector.BaselineTop:
		y += m.Ascent
	case vector.BaselineMiddle:
		y += (m.Ascent - m.Descent) / 2
	case vector.BaselineBottom:
		y -= m.Descent
	}
	return x, y
}

func (r *Raster) clipped() *image.RGBA {
	sub, _ := r.img.SubImage(r.clip).(*image.RGBA)
	return sub
}

func (r *Raster) FillText(text string, x, y float64, st vector.TextStyle) {
	if r.clip.Empty() || text == "" {
		return
	}
	face, m := r.face(st.Size)
	w := textlayout.Advance(face, text)
	ox, oy := textOrigin(x, y, w, m, st)
	d := font.Drawer{
		Dst:  r.clipped(),
		Src:  image.NewUniform(rgba(st.Color)),
		Face: face,
		Dot:  pt(ox, oy),
	}
	d.DrawString(text)
}

func (r *Raster) DrawImage(img image.Image, x, y, w, h float64) {
	if img == nil || r.clip.Empty() {
		return
	}
	dr := image.Rect(int(math.Round(x)), int(math.Round(y)), int(math.Round(x+w)), int(math.Round(y+h)))
	xdraw.CatmullRom.Scale(r.clipped(), dr, img, img.Bounds(), xdraw.Over, nil)
}

// Clear fills the whole image with c, ignoring the clip.
func (r *Raster) Clear(c vector.Color) {
	xdraw.Draw(r.img, r.img.Bounds(), image.NewUniform(rgba(c)), image.Point{}, xdraw.Src)
}

// WritePNG encodes the current image.
func (r *Raster) WritePNG(w io.Writer) error {
	if err := png.Encode(w, r.img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// SavePNG writes the image to path, creating its directory.
func (r *Raster) SavePNG(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := r.WritePNG(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}
