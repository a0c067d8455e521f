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
	"encoding/base64"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"prairiedraw/internal/textlayout"
	"prairiedraw/internal/vector"
)

// SVG writes drawing operations as SVG elements. Clip regions become
// nested groups.
type SVG struct {
	w, h  float64
	body  bytes.Buffer
	werr  error
	depth []int // groups opened per save level
	clips int
}

func NewSVG(w, h float64) *SVG { return &SVG{w: w, h: h, depth: []int{0}} }

func (s *SVG) wf(format string, args ...any) {
	if s.werr != nil {
		return
	}
	_, s.werr = fmt.Fprintf(&s.body, format, args...)
}

func (s *SVG) Size() (float64, float64) { return s.w, s.h }
func (s *SVG) Resize(w, h float64)       { s.w, s.h = w, h }

func (s *SVG) Save() { s.depth = append(s.depth, 0) }

func (s *SVG) Restore() {
	n := len(s.depth)
	if n <= 1 {
		return
	}
	for i := 0; i < s.depth[n-1]; i++ {
		s.wf("</g>\n")
	}
	s.depth = s.depth[:n-1]
}

func (s *SVG) ClipRect(x, y, w, h float64) {
	s.clips++
	id := "c" + strconv.Itoa(s.clips)
	s.wf("<clipPath id=\"%s\"><rect x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\"/></clipPath>\n", id, num(x), num(y), num(w), num(h))
	s.wf("<g clip-path=\"url(#%s)\">\n", id)
	s.depth[len(s.depth)-1]++
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// pathData renders p as an SVG path string.
func pathData(p vector.Path) string {
	var b strings.Builder
	for _, c := range p.Cmds {
		d := c.Data
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		switch c.Op {
		case vector.MoveTo:
			fmt.Fprintf(&b, "M%s %s", num(d[0]), num(d[1]))
		case vector.LineTo:
			fmt.Fprintf(&b, "L%s %s", num(d[0]), num(d[1]))
		case vector.QuadTo:
			fmt.Fprintf(&b, "Q%s %s %s %s", num(d[0]), num(d[1]), num(d[2]), num(d[3]))
		case vector.CubicTo:
			fmt.Fprintf(&b, "C%s %s %s %s %s %s", num(d[0]), num(d[1]), num(d[2]), num(d[3]), num(d[4]), num(d[5]))
		case vector.Close:
			b.WriteByte('Z')
		}
	}
	return b.String()
}

func paint(c vector.Color) string {
	if c.A == 255 {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, num(float64(c.A)/255))
}

func (s *SVG) FillPath(p vector.Path, f vector.Fill) {
	if !f.Enabled || f.Color.A == 0 || len(p.Cmds) == 0 {
		return
	}
	rule := "nonzero"
	if f.Rule == vector.EvenOdd {
		rule = "evenodd"
	}
	s.wf("<path d=\"%s\" fill=\"%s\" fill-rule=\"%s\"/>\n", pathData(p), paint(f.Color), rule)
}

var svgCaps = map[vector.LineCap]string{vector.CapButt: "butt", vector.CapRound: "round", vector.CapSquare: "square"}

var svgJoins = map[vector.LineJoin]string{vector.JoinMiter: "miter", vector.JoinRound: "round", vector.JoinBevel: "bevel"}

func (s *SVG) StrokePath(p vector.Path, st vector.Stroke) {
	if !st.Enabled || st.Color.A == 0 || st.Width <= 0 || len(p.Cmds) == 0 {
		return
	}
	dash := ""
	if len(st.Dash) > 0 {
		parts := make([]string, len(st.Dash))
		for i, v := range st.Dash {
			parts[i] = num(v)
		}
		dash = fmt.Sprintf(" stroke-dasharray=\"%s\"", strings.Join(parts, ","))
	}
	s.wf("<path d=\"%s\" fill=\"none\" stroke=\"%s\" stroke-width=\"%s\" stroke-linecap=\"%s\" stroke-linejoin=\"%s\"%s/>\n",
		pathData(p), paint(st.Color), num(st.Width), svgCaps[st.Cap], svgJoins[st.Join], dash)
}

func (s *SVG) MeasureText(text string, size float64) float64 {
	return textlayout.EstimateWidth(text, size)
}

var svgAnchors = map[vector.HAlign]string{vector.AlignLeft: "start", vector.AlignCenter: "middle", vector.AlignRight: "end"}

var svgBaselines = map[vector.VAlign]string{
	vector.BaselineTop:    "text-before-edge",
	vector.BaselineMiddle: "central",
	vector.BaselineBottom: "text-after-edge",
}

func (s *SVG) FillText(text string, x, y float64, st vector.TextStyle) {
	if text == "" {
		return
	}
	s.wf("<text x=\"%s\" y=\"%s\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"%s\" fill=\"%s\" text-anchor=\"%s\" dominant-baseline=\"%s\">%s</text>\n",
		num(x), num(y), num(st.Size), paint(st.Color), svgAnchors[st.Align], svgBaselines[st.Baseline], escText(text))
}

func (s *SVG) DrawImage(img image.Image, x, y, w, h float64) {
	if img == nil {
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		if s.werr == nil {
			s.werr = fmt.Errorf("encode image: %w", err)
		}
		return
	}
	s.wf("<image x=\"%s\" y=\"%s\" width=\"%s\" height=\"%s\" preserveAspectRatio=\"none\" href=\"data:image/png;base64,%s\"/>\n",
		num(x), num(y), num(w), num(h), base64.StdEncoding.EncodeToString(buf.Bytes()))
}

// Clear drops everything drawn so far and, for a visible c, paints the
// background.
func (s *SVG) Clear(c vector.Color) {
	s.body.Reset()
	s.depth = []int{0}
	if c.A > 0 {
		s.wf("<rect x=\"0\" y=\"0\" width=\"%s\" height=\"%s\" fill=\"%s\"/>\n", num(s.w), num(s.h), paint(c))
	}
}

// Bytes returns the complete document, closing any open groups.
func (s *SVG) Bytes() ([]byte, error) {
	if s.werr != nil {
		return nil, fmt.Errorf("build svg: %w", s.werr)
	}
	var out bytes.Buffer
	fmt.Fprintf(&out, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(&out, "<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%s\" height=\"%s\" viewBox=\"0 0 %s %s\">\n",
		num(s.w), num(s.h), num(s.w), num(s.h))
	out.Write(s.body.Bytes())
	open := 0
	for _, n := range s.depth {
		open += n
	}
	for ; open > 0; open-- {
		out.WriteString("</g>\n")
	}
	out.WriteString("</svg>\n")
	return out.Bytes(), nil
}

func (s *SVG) SaveFile(path string) error {
	data, err := s.Bytes()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch ch := s[i]; ch {
		case '&':
			out = append(out, "&amp;"...)
		case '<':
			out = append(out, "&lt;"...)
		case '>':
			out = append(out, "&gt;"...)
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
