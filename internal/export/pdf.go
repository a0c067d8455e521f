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
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"prairiedraw/internal/textlayout"
	"prairiedraw/internal/vector"
)

// PDF paints into a gofpdf document, one page per frame. One pixel is one
// point, so a 400×300 drawing makes a 400×300 pt page.
//
// Text uses the built-in Helvetica, which keeps it vector without font
// embedding.
type PDF struct {
	pdf  *gofpdf.Fpdf
	w, h float64

	// clip groups opened per save level
	clipDepth []int
	images    int
}

// NewPDF starts a document with a first page of w×h points.
func NewPDF(w, h float64, title string) *PDF {
	doc := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: w, Ht: h},
	})
	doc.SetTitle(title, true)
	doc.SetCreator("prairiedraw", true)
	doc.SetFont("Helvetica", "", 12)
	doc.SetAutoPageBreak(false, 0)
	p := &PDF{pdf: doc, w: w, h: h, clipDepth: []int{0}}
	p.NewPage()
	return p
}

// NewPage starts a fresh page at the current size.
func (p *PDF) NewPage() {
	for len(p.clipDepth) > 1 {
		p.Restore()
	}
	p.closeClips()
	p.pdf.AddPageFormat("", gofpdf.SizeType{Wd: p.w, Ht: p.h})
}

// Pages is the number of pages so far.
func (p *PDF) Pages() int { return p.pdf.PageCount() }

func (p *PDF) Size() (float64, float64) { return p.w, p.h }

// Resize applies from the next page on.
func (p *PDF) Resize(w, h float64) { p.w, p.h = w, h }

func (p *PDF) Save() {
	p.pdf.TransformBegin()
	p.clipDepth = append(p.clipDepth, 0)
}

func (p *PDF) closeClips() {
	n := len(p.clipDepth) - 1
	for ; p.clipDepth[n] > 0; p.clipDepth[n]-- {
		p.pdf.ClipEnd()
	}
}

func (p *PDF) Restore() {
	if len(p.clipDepth) <= 1 {
		return
	}
	p.closeClips()
	p.clipDepth = p.clipDepth[:len(p.clipDepth)-1]
	p.pdf.TransformEnd()
}

func (p *PDF) ClipRect(x, y, w, h float64) {
	p.pdf.ClipRect(x, y, w, h, false)
	p.clipDepth[len(p.clipDepth)-1]++
}

func (p *PDF) path(path vector.Path) {
	for _, c := range path.Cmds {
		d := c.Data
		switch c.Op {
		case vector.MoveTo:
			p.pdf.MoveTo(d[0], d[1])
		case vector.LineTo:
			p.pdf.LineTo(d[0], d[1])
		case vector.QuadTo:
			p.pdf.CurveTo(d[0], d[1], d[2], d[3])
		case vector.CubicTo:
			p.pdf.CurveBezierCubicTo(d[0], d[1], d[2], d[3], d[4], d[5])
		case vector.Close:
			p.pdf.ClosePath()
		}
	}
}

func (p *PDF) alpha(c vector.Color) {
	p.pdf.SetAlpha(float64(c.A)/255, "Normal")
}

func (p *PDF) FillPath(path vector.Path, f vector.Fill) {
	if !f.Enabled || f.Color.A == 0 || len(path.Cmds) == 0 {
		return
	}
	p.pdf.SetFillColor(int(f.Color.R), int(f.Color.G), int(f.Color.B))
	p.alpha(f.Color)
	p.path(path)
	style := "F"
	if f.Rule == vector.EvenOdd {
		style = "F*"
	}
	p.pdf.DrawPath(style)
}

var pdfCaps = map[vector.LineCap]string{vector.CapButt: "butt", vector.CapRound: "round", vector.CapSquare: "square"}

var pdfJoins = map[vector.LineJoin]string{vector.JoinMiter: "miter", vector.JoinRound: "round", vector.JoinBevel: "bevel"}

func (p *PDF) StrokePath(path vector.Path, s vector.Stroke) {
	if !s.Enabled || s.Color.A == 0 || s.Width <= 0 || len(path.Cmds) == 0 {
		return
	}
	p.pdf.SetDrawColor(int(s.Color.R), int(s.Color.G), int(s.Color.B))
	p.alpha(s.Color)
	p.pdf.SetLineWidth(s.Width)
	p.pdf.SetLineCapStyle(pdfCaps[s.Cap])
	p.pdf.SetLineJoinStyle(pdfJoins[s.Join])
	p.pdf.SetDashPattern(s.Dash, 0)
	p.path(path)
	p.pdf.DrawPath("D")
}

func (p *PDF) MeasureText(text string, size float64) float64 {
	p.pdf.SetFontSize(size)
	return p.pdf.GetStringWidth(text)
}

func (p *PDF) FillText(text string, x, y float64, st vector.TextStyle) {
	if text == "" {
		return
	}
	p.pdf.SetFontSize(st.Size)
	p.pdf.SetTextColor(int(st.Color.R), int(st.Color.G), int(st.Color.B))
	p.alpha(st.Color)
	w := p.pdf.GetStringWidth(text)
	m := helveticaMetrics(st.Size)
	x, y = textOrigin(x, y, w, m, st)
	p.pdf.Text(x, y, text)
}

// helveticaMetrics scales the Helvetica AFM ascender and descender.
func helveticaMetrics(size float64) textlayout.Metrics {
	return textlayout.Metrics{Ascent: 0.718 * size, Descent: 0.207 * size, LineGap: 0.075 * size}
}

func (p *PDF) DrawImage(img image.Image, x, y, w, h float64) {
	if img == nil {
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		p.pdf.SetError(fmt.Errorf("encode image: %w", err))
		return
	}
	p.images++
	name := "img" + strconv.Itoa(p.images)
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	p.pdf.RegisterImageOptionsReader(name, opt, &buf)
	p.pdf.ImageOptions(name, x, y, w, h, false, opt, 0, "")
}

// Clear paints the page with c. A transparent c starts a new page, the
// document equivalent of blanking a canvas.
func (p *PDF) Clear(c vector.Color) {
	if c.A == 0 {
		p.NewPage()
		return
	}
	p.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	p.alpha(c)
	p.pdf.Rect(0, 0, p.w, p.h, "F")
}

// WriteTo closes the document and writes it to w.
func (p *PDF) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: w}
	if err := p.pdf.Output(cw); err != nil {
		return cw.n, fmt.Errorf("write pdf: %w", err)
	}
	return cw.n, nil
}

// SaveFile closes the document and writes it to path.
func (p *PDF) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := p.pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(b []byte) (int, error) {
	n, err := c.w.Write(b)
	c.n += int64(n)
	return n, err
}
