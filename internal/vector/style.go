/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// Styles and paint definitions.

type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}
)

// RGBA implements color.Color.
func (c Color) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R) * uint32(c.A) / 255
	g = uint32(c.G) * uint32(c.A) / 255
	b = uint32(c.B) * uint32(c.A) / 255
	r |= r << 8
	g |= g << 8
	b |= b << 8
	a = uint32(c.A)
	a |= a << 8
	return
}

// String formats the color the way props store it.
func (c Color) String() string {
	if c.A == 255 {
		return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d, %d, %d, %.3g)", c.R, c.G, c.B, float64(c.A)/255)
}

var ErrBadColor = errors.New("vector: bad color")

// ParseColor accepts rgb(r, g, b), rgba(r, g, b, a), #rgb, #rrggbb, "none"
// and the CSS/SVG color names.
func ParseColor(s string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	switch {
	case v == "none" || v == "transparent":
		return Transparent, nil
	case strings.HasPrefix(v, "#"):
		return parseHex(v[1:], s)
	case strings.HasPrefix(v, "rgb(") || strings.HasPrefix(v, "rgba("):
		return parseFunc(v, s)
	}
	if c, ok := colornames.Map[v]; ok {
		return Color{c.R, c.G, c.B, c.A}, nil
	}
	return Color{}, fmt.Errorf("%w: %q", ErrBadColor, s)
}

func parseHex(h, orig string) (Color, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, orig)
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, orig)
	}
	return Color{uint8(n >> 16), uint8(n >> 8), uint8(n), 255}, nil
}

func parseFunc(v, orig string) (Color, error) {
	open, closeIdx := strings.IndexByte(v, '('), strings.LastIndexByte(v, ')')
	if open < 0 || closeIdx < open {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, orig)
	}
	parts := strings.Split(v[open+1:closeIdx], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return Color{}, fmt.Errorf("%w: %q", ErrBadColor, orig)
	}
	var ch [4]uint8
	ch[3] = 255
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Color{}, fmt.Errorf("%w: %q", ErrBadColor, orig)
		}
		if i == 3 {
			f *= 255
		}
		ch[i] = uint8(Clip(f+0.5, 0, 255))
	}
	return Color{ch[0], ch[1], ch[2], ch[3]}, nil
}

// MustColor parses s and panics on failure. Meant for literals.
func MustColor(s string) Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

type FillRule uint8

const (
	NonZero FillRule = iota
	EvenOdd
)

type Fill struct {
	Color   Color
	Rule    FillRule
	Enabled bool
}

type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

type LineJoin uint8

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

type Stroke struct {
	Color    Color
	Width    float64
	Dash     []float64 // on/off lengths in px; empty means solid
	Cap      LineCap
	Join     LineJoin
	MiterLim float64
	Enabled  bool
}

var ErrBadPattern = errors.New("vector: unknown line pattern")

// DashPattern maps a named line pattern to on/off lengths.
func DashPattern(name string) ([]float64, error) {
	switch name {
	case "solid":
		return nil, nil
	case "dashed":
		return []float64{6, 6}, nil
	case "dotted":
		return []float64{2, 2}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrBadPattern, name)
}

type HAlign uint8

const (
	AlignLeft HAlign = iota
	AlignCenter
	AlignRight
)

type VAlign uint8

const (
	BaselineTop VAlign = iota
	BaselineMiddle
	BaselineBottom
)

// TextStyle describes how FillText places a string relative to its point.
type TextStyle struct {
	Color    Color
	Size     float64
	Align    HAlign
	Baseline VAlign
}
