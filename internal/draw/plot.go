/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package draw

import (
	"math"

	"prairiedraw/internal/history"
	"prairiedraw/internal/vector"
)

// AxisSide places a plot axis.
type AxisSide int

const (
	AxisNear AxisSide = iota // bottom or left edge
	AxisFar                  // top or right edge
	AxisAt                   // at a data value
)

// AxisPos locates one plot axis; At is a data coordinate used with AxisAt.
type AxisPos struct {
	Side AxisSide
	At   float64
}

// PlotOpts holds the optional parts of Plot.
type PlotOpts struct {
	NoAxes      bool
	NoPoint     bool
	PointLabel  string
	PointAnchor *vector.Vec2 // (0, -1) when nil
	HorizAxis   AxisPos
	VertAxis    AxisPos
}

func axisOffset(a AxisPos, dataOrigin, dataSize, size float64) float64 {
	switch a.Side {
	case AxisFar:
		return size
	case AxisAt:
		return vector.LinearMap(dataOrigin, dataOrigin+dataSize, 0, size, a.At)
	}
	return 0
}

// plotAxes draws thin axis arrows with their labels.
func (d *Drawer) plotAxes(size vector.Vec2, axisX, axisY float64, xLabel, yLabel string) {
	d.Save()
	d.props.ArrowLineWidthPx = 1
	d.props.ArrowheadLengthRatio = 11
	d.Arrow(vector.V2(0, axisY), vector.V2(size.X, axisY), "")
	d.Arrow(vector.V2(axisX, 0), vector.V2(axisX, size.Y), "")
	d.Text(vector.V2(size.X, axisY), vector.V2(1, 1.5), xLabel, false)
	d.Text(vector.V2(axisX, size.Y), vector.V2(1.5, 1), yLabel, false)
	d.Restore()
}

// clipPlotColumn clips to the plot's horizontal extent over the full
// surface height, so the trace may overshoot vertically.
func (d *Drawer) clipPlotColumn(size vector.Vec2) {
	bl := d.Pos2Px(vector.Vec2{})
	tr := d.Pos2Px(size)
	_, h := d.s.Size()
	d.s.ClipRect(bl.X, 0, tr.X-bl.X, h)
}

func (d *Drawer) setTraceStyle(typ string) {
	d.props.ShapeOutlineColor = d.color(typ).String()
	d.props.PointRadiusPx = 4
}

// Plot draws data, given in data coordinates, into the box of size sizeDw
// at originDw. originData and sizeData give the data range mapped to the
// box. The latest point is marked unless opts.NoPoint.
func (d *Drawer) Plot(data []vector.Vec2, originDw, sizeDw, originData, sizeData vector.Vec2, xLabel, yLabel, typ string, opts PlotOpts) {
	d.Save()
	d.Translate(originDw)
	axisX := axisOffset(opts.VertAxis, originData.X, sizeData.X, sizeDw.X)
	axisY := axisOffset(opts.HorizAxis, originData.Y, sizeData.Y, sizeDw.Y)
	if !opts.NoAxes {
		d.plotAxes(sizeDw, axisX, axisY, xLabel, yLabel)
	}
	d.setTraceStyle(typ)
	bl := d.Pos2Px(vector.Vec2{})
	tr := d.Pos2Px(sizeDw)
	_, h := d.s.Size()

	d.Save()
	d.Scale(sizeDw)
	d.Scale(vector.V2(1/sizeData.X, 1/sizeData.Y))
	d.Translate(originData.Neg())
	d.Save()
	d.s.ClipRect(bl.X, 0, tr.X-bl.X, h)
	d.PolyLine(data, false, true, true)
	d.Restore()
	if !opts.NoPoint && len(data) > 0 {
		last := data[len(data)-1]
		d.Point(last)
		if opts.PointLabel != "" {
			anchor := vector.V2(0, -1)
			if opts.PointAnchor != nil {
				anchor = *opts.PointAnchor
			}
			d.Text(last, anchor, opts.PointLabel, false)
		}
	}
	d.Restore()
	d.Restore()
}

// PlotHistory draws a scrolling strip chart of the first component of
// data. The newest sample sits at timeOffset along the time axis and older
// samples scroll off to the left.
func (d *Drawer) PlotHistory(origin, size, sizeData vector.Vec2, timeOffset float64, yLabel string, data []history.Sample, typ string) {
	if len(data) == 0 {
		return
	}
	scale := vector.V2(size.X/sizeData.X, size.Y/sizeData.Y)
	shift := timeOffset - data[len(data)-1].T
	pts := history.Series(data, 0)
	if len(pts) == 0 {
		return
	}
	for i, p := range pts {
		pts[i] = vector.V2((p.X+shift)*scale.X, p.Y*scale.Y)
	}
	d.Save()
	d.Translate(origin)
	d.plotAxes(size, 0, 0, "t", yLabel)
	d.setTraceStyle(typ)
	d.Save()
	d.clipPlotColumn(size)
	d.PolyLine(pts, false, true, true)
	d.Restore()
	d.Point(pts[len(pts)-1])
	d.Restore()
}

// FadeHistoryLine draws a trail through the positions in h, fading from
// current at time t to old at maxT seconds back. Segments are drawn from
// newest to oldest.
func (d *Drawer) FadeHistoryLine(h []history.Sample, t, maxT float64, current, old vector.Color) {
	if len(h) < 2 {
		return
	}
	pts := history.Trace(h)
	for i := len(h) - 2; i >= 0; i-- {
		alpha := (t - h[i].T) / maxT
		c := lerpColor(current, old, alpha)
		d.Line(pts[i], pts[i+1], c.String())
	}
}

func lerpColor(a, b vector.Color, alpha float64) vector.Color {
	ch := func(x, y uint8) uint8 {
		v := math.Round(vector.LinearInterp(float64(x), float64(y), alpha))
		return uint8(vector.Clip(v, 0, 255))
	}
	return vector.Color{R: ch(a.R, b.R), G: ch(a.G, b.G), B: ch(a.B, b.B), A: 255}
}
