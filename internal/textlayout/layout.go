/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package textlayout resolves fonts and measures label text for the
// raster and vector surfaces.
package textlayout

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// FontSpec describes a requested font. SizePx is the em size in pixels.
type FontSpec struct {
	Family string
	SizePx float64
	Weight int // 100..900
	Italic bool
}

// Metrics are vertical font metrics in pixels.
type Metrics struct {
	Ascent, Descent, LineGap float64
}

func (m Metrics) LineHeight() float64 { return m.Ascent + m.Descent + m.LineGap }

// Provider maps a FontSpec to a concrete font.Face.
type Provider interface {
	Resolve(FontSpec) (font.Face, Metrics)
}

// BasicProvider always returns basicfont Face7x13, whatever the size. It
// keeps tests independent of font files.
type BasicProvider struct{}

func (BasicProvider) Resolve(FontSpec) (font.Face, Metrics) {
	f := basicfont.Face7x13
	return f, metricsOf(f)
}

func metricsOf(f font.Face) Metrics {
	m := f.Metrics()
	return Metrics{
		Ascent:  fixedToPx(m.Ascent),
		Descent: fixedToPx(m.Descent),
		LineGap: fixedToPx(m.Height - m.Ascent - m.Descent),
	}
}

func fixedToPx(v fixed.Int26_6) float64 { return float64(v) / 64 }

// Advance is the width of s drawn with face, kerning included.
func Advance(face font.Face, s string) float64 {
	return fixedToPx(font.MeasureString(face, s))
}

// Measure returns the widest line of text and the metrics of the resolved
// face. Lines are separated by '\n'.
func Measure(p Provider, spec FontSpec, text string) (float64, Metrics) {
	if p == nil {
		p = BasicProvider{}
	}
	face, met := p.Resolve(spec)
	w := 0.0
	for _, ln := range Lines(text) {
		if a := Advance(face, ln); a > w {
			w = a
		}
	}
	return w, met
}

// Lines splits text into display lines.
func Lines(text string) []string { return strings.Split(text, "\n") }

// EstimateWidth approximates the advance of text at size px without a
// font, using the average glyph width of a sans face. Vector outputs that
// leave font choice to the viewer use it.
func EstimateWidth(text string, size float64) float64 {
	w := 0.0
	for _, r := range text {
		switch {
		case r == ' ' || r == '.' || r == ',' || r == 'i' || r == 'l':
			w += 0.3
		case r >= 'A' && r <= 'Z':
			w += 0.65
		default:
			w += 0.55
		}
	}
	return w * size
}
