/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package props holds the drawing property table: stroke widths, line
// patterns, colors and geometric ratios consulted by every primitive.
// Fields are typed for direct access; Set/Get add by-name access checked
// against the fixed schema.
package props

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"prairiedraw/internal/vector"
)

var (
	ErrUnknownProp = errors.New("props: unknown property")
	ErrBadValue    = errors.New("props: bad value")
)

type Props struct {
	ViewAngleXMin, ViewAngleXMax float64
	ViewAngleYMin, ViewAngleYMax float64
	ViewAngleZMin, ViewAngleZMax float64

	ArrowLineWidthPx           float64
	ArrowLinePattern           string
	ArrowheadLengthRatio       float64
	ArrowheadWidthRatio        float64
	ArrowheadOffsetRatio       float64
	CircleArrowWrapOffsetRatio float64
	ArrowOutOfPageRadiusPx     float64

	TextOffsetPx  float64
	TextFontSize  float64
	PointRadiusPx float64

	ShapeStrokeWidthPx float64
	ShapeStrokePattern string
	ShapeOutlineColor  string
	ShapeInsideColor   string

	HiddenLineDraw    bool
	HiddenLineWidthPx float64
	HiddenLinePattern string
	HiddenLineColor   string

	CenterOfMassStrokeWidthPx float64
	CenterOfMassColor         string
	CenterOfMassRadiusPx      float64

	RightAngleSizePx        float64
	RightAngleStrokeWidthPx float64
	RightAngleColor         string

	MeasurementStrokeWidthPx float64
	MeasurementStrokePattern string
	MeasurementEndLengthPx   float64
	MeasurementOffsetPx      float64
	MeasurementColor         string

	GroundDepthPx      float64
	GroundWidthPx      float64
	GroundSpacingPx    float64
	GroundOutlineColor string
	GroundInsideColor  string

	GridColor         string
	PositionColor     string
	AngleColor        string
	VelocityColor     string
	AngVelColor       string
	AccelerationColor string
	RotationColor     string
	AngAccColor       string
	AngMomColor       string
	ForceColor        string
	MomentColor       string
}

// Defaults returns the initial property table.
func Defaults() Props {
	return Props{
		ViewAngleXMin: -math.Pi/2 + 1e-6, ViewAngleXMax: -1e-6,
		ViewAngleYMin: math.Inf(-1), ViewAngleYMax: math.Inf(1),
		ViewAngleZMin: math.Inf(-1), ViewAngleZMax: math.Inf(1),

		ArrowLineWidthPx:           2,
		ArrowLinePattern:           "solid",
		ArrowheadLengthRatio:       7,
		ArrowheadWidthRatio:        0.3,
		ArrowheadOffsetRatio:       0.3,
		CircleArrowWrapOffsetRatio: 1.5,
		ArrowOutOfPageRadiusPx:     5,

		TextOffsetPx:  4,
		TextFontSize:  12,
		PointRadiusPx: 2,

		ShapeStrokeWidthPx: 2,
		ShapeStrokePattern: "solid",
		ShapeOutlineColor:  "rgb(0, 0, 0)",
		ShapeInsideColor:   "rgb(255, 255, 255)",

		HiddenLineDraw:    true,
		HiddenLineWidthPx: 2,
		HiddenLinePattern: "dashed",
		HiddenLineColor:   "rgb(0, 0, 0)",

		CenterOfMassStrokeWidthPx: 2,
		CenterOfMassColor:         "rgb(180, 49, 4)",
		CenterOfMassRadiusPx:      5,

		RightAngleSizePx:        10,
		RightAngleStrokeWidthPx: 1,
		RightAngleColor:         "rgb(0, 0, 0)",

		MeasurementStrokeWidthPx: 1,
		MeasurementStrokePattern: "solid",
		MeasurementEndLengthPx:   10,
		MeasurementOffsetPx:      3,
		MeasurementColor:         "rgb(0, 0, 0)",

		GroundDepthPx:      10,
		GroundWidthPx:      10,
		GroundSpacingPx:    10,
		GroundOutlineColor: "rgb(0, 0, 0)",
		GroundInsideColor:  "rgb(220, 220, 220)",

		GridColor:         "rgb(200, 200, 200)",
		PositionColor:     "rgb(0, 0, 255)",
		AngleColor:        "rgb(0, 100, 180)",
		VelocityColor:     "rgb(0, 200, 0)",
		AngVelColor:       "rgb(100, 180, 0)",
		AccelerationColor: "rgb(255, 0, 255)",
		RotationColor:     "rgb(150, 0, 150)",
		AngAccColor:       "rgb(100, 0, 180)",
		AngMomColor:       "rgb(255, 0, 0)",
		ForceColor:        "rgb(210, 105, 30)",
		MomentColor:       "rgb(255, 102, 80)",
	}
}

type kind uint8

const (
	kindNumber kind = iota
	kindColor
	kindPattern
	kindBool
)

type field struct {
	kind kind
	num  func(*Props) *float64
	str  func(*Props) *string
	flag func(*Props) *bool
}

func num(f func(*Props) *float64) field { return field{kind: kindNumber, num: f} }
func col(f func(*Props) *string) field  { return field{kind: kindColor, str: f} }
func pat(f func(*Props) *string) field  { return field{kind: kindPattern, str: f} }
func flag(f func(*Props) *bool) field   { return field{kind: kindBool, flag: f} }

var schema = map[string]field{
	"viewAngleXMin": num(func(p *Props) *float64 { return &p.ViewAngleXMin }),
	"viewAngleXMax": num(func(p *Props) *float64 { return &p.ViewAngleXMax }),
	"viewAngleYMin": num(func(p *Props) *float64 { return &p.ViewAngleYMin }),
	"viewAngleYMax": num(func(p *Props) *float64 { return &p.ViewAngleYMax }),
	"viewAngleZMin": num(func(p *Props) *float64 { return &p.ViewAngleZMin }),
	"viewAngleZMax": num(func(p *Props) *float64 { return &p.ViewAngleZMax }),

	"arrowLineWidthPx":           num(func(p *Props) *float64 { return &p.ArrowLineWidthPx }),
	"arrowLinePattern":           pat(func(p *Props) *string { return &p.ArrowLinePattern }),
	"arrowheadLengthRatio":       num(func(p *Props) *float64 { return &p.ArrowheadLengthRatio }),
	"arrowheadWidthRatio":        num(func(p *Props) *float64 { return &p.ArrowheadWidthRatio }),
	"arrowheadOffsetRatio":       num(func(p *Props) *float64 { return &p.ArrowheadOffsetRatio }),
	"circleArrowWrapOffsetRatio": num(func(p *Props) *float64 { return &p.CircleArrowWrapOffsetRatio }),
	"arrowOutOfPageRadiusPx":     num(func(p *Props) *float64 { return &p.ArrowOutOfPageRadiusPx }),

	"textOffsetPx":  num(func(p *Props) *float64 { return &p.TextOffsetPx }),
	"textFontSize":  num(func(p *Props) *float64 { return &p.TextFontSize }),
	"pointRadiusPx": num(func(p *Props) *float64 { return &p.PointRadiusPx }),

	"shapeStrokeWidthPx": num(func(p *Props) *float64 { return &p.ShapeStrokeWidthPx }),
	"shapeStrokePattern": pat(func(p *Props) *string { return &p.ShapeStrokePattern }),
	"shapeOutlineColor":  col(func(p *Props) *string { return &p.ShapeOutlineColor }),
	"shapeInsideColor":   col(func(p *Props) *string { return &p.ShapeInsideColor }),

	"hiddenLineDraw":    flag(func(p *Props) *bool { return &p.HiddenLineDraw }),
	"hiddenLineWidthPx": num(func(p *Props) *float64 { return &p.HiddenLineWidthPx }),
	"hiddenLinePattern": pat(func(p *Props) *string { return &p.HiddenLinePattern }),
	"hiddenLineColor":   col(func(p *Props) *string { return &p.HiddenLineColor }),

	"centerOfMassStrokeWidthPx": num(func(p *Props) *float64 { return &p.CenterOfMassStrokeWidthPx }),
	"centerOfMassColor":         col(func(p *Props) *string { return &p.CenterOfMassColor }),
	"centerOfMassRadiusPx":      num(func(p *Props) *float64 { return &p.CenterOfMassRadiusPx }),

	"rightAngleSizePx":        num(func(p *Props) *float64 { return &p.RightAngleSizePx }),
	"rightAngleStrokeWidthPx": num(func(p *Props) *float64 { return &p.RightAngleStrokeWidthPx }),
	"rightAngleColor":         col(func(p *Props) *string { return &p.RightAngleColor }),

	"measurementStrokeWidthPx": num(func(p *Props) *float64 { return &p.MeasurementStrokeWidthPx }),
	"measurementStrokePattern": pat(func(p *Props) *string { return &p.MeasurementStrokePattern }),
	"measurementEndLengthPx":   num(func(p *Props) *float64 { return &p.MeasurementEndLengthPx }),
	"measurementOffsetPx":      num(func(p *Props) *float64 { return &p.MeasurementOffsetPx }),
	"measurementColor":         col(func(p *Props) *string { return &p.MeasurementColor }),

	"groundDepthPx":      num(func(p *Props) *float64 { return &p.GroundDepthPx }),
	"groundWidthPx":      num(func(p *Props) *float64 { return &p.GroundWidthPx }),
	"groundSpacingPx":    num(func(p *Props) *float64 { return &p.GroundSpacingPx }),
	"groundOutlineColor": col(func(p *Props) *string { return &p.GroundOutlineColor }),
	"groundInsideColor":  col(func(p *Props) *string { return &p.GroundInsideColor }),

	"gridColor":         col(func(p *Props) *string { return &p.GridColor }),
	"positionColor":     col(func(p *Props) *string { return &p.PositionColor }),
	"angleColor":        col(func(p *Props) *string { return &p.AngleColor }),
	"velocityColor":     col(func(p *Props) *string { return &p.VelocityColor }),
	"angVelColor":       col(func(p *Props) *string { return &p.AngVelColor }),
	"accelerationColor": col(func(p *Props) *string { return &p.AccelerationColor }),
	"rotationColor":     col(func(p *Props) *string { return &p.RotationColor }),
	"angAccColor":       col(func(p *Props) *string { return &p.AngAccColor }),
	"angMomColor":       col(func(p *Props) *string { return &p.AngMomColor }),
	"forceColor":        col(func(p *Props) *string { return &p.ForceColor }),
	"momentColor":       col(func(p *Props) *string { return &p.MomentColor }),
}

// Names lists every property name in sorted order.
func Names() []string {
	out := make([]string, 0, len(schema))
	for n := range schema {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Has reports whether name is part of the schema.
func Has(name string) bool {
	_, ok := schema[name]
	return ok
}

// Set assigns a property by name. Numbers may be given as strings ("4"),
// colors and patterns are validated.
func (p *Props) Set(name string, value any) error {
	f, ok := schema[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownProp, name)
	}
	switch f.kind {
	case kindNumber:
		v, err := toFloat(value)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrBadValue, name, err)
		}
		*f.num(p) = v
	case kindBool:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: %s: want bool, got %T", ErrBadValue, name, value)
		}
		*f.flag(p) = b
	default:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%w: %s: want string, got %T", ErrBadValue, name, value)
		}
		if f.kind == kindColor {
			if _, err := vector.ParseColor(s); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrBadValue, name, err)
			}
		}
		if f.kind == kindPattern {
			if _, err := vector.DashPattern(s); err != nil {
				return fmt.Errorf("%w: %s: %v", ErrBadValue, name, err)
			}
		}
		*f.str(p) = s
	}
	return nil
}

// Get reads a property by name.
func (p *Props) Get(name string) (any, error) {
	f, ok := schema[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProp, name)
	}
	switch f.kind {
	case kindNumber:
		return *f.num(p), nil
	case kindBool:
		return *f.flag(p), nil
	}
	return *f.str(p), nil
}

// StringProp returns a string-valued property (color or pattern) by name.
func (p *Props) StringProp(name string) (string, bool) {
	f, ok := schema[name]
	if !ok || f.str == nil {
		return "", false
	}
	return *f.str(p), true
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case string:
		return strconv.ParseFloat(x, 64)
	}
	return 0, fmt.Errorf("want number, got %T", v)
}

// Color resolves the color for a line type the way primitives do: an empty
// type means the shape outline color; "velocity" uses velocityColor if such
// a property exists; otherwise the string is parsed as a color itself.
func (p *Props) Color(typ string) (vector.Color, error) {
	if typ == "" {
		return vector.ParseColor(p.ShapeOutlineColor)
	}
	if s, ok := p.StringProp(typ + "Color"); ok {
		return vector.ParseColor(s)
	}
	return vector.ParseColor(typ)
}

// UseHiddenLineStyle copies the hidden line style into the shape stroke
// properties so later shapes draw as hidden lines.
func (p *Props) UseHiddenLineStyle() {
	p.ShapeStrokeWidthPx = p.HiddenLineWidthPx
	p.ShapeStrokePattern = p.HiddenLinePattern
	p.ShapeOutlineColor = p.HiddenLineColor
}
