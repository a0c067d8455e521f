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

	"prairiedraw/internal/vector"
)

// Initial 3D view angles.
const (
	InitViewAngleX = -math.Pi / 2 * 0.75
	InitViewAngleY = 0.0
	InitViewAngleZ = -math.Pi / 2 * 1.25
)

// Transform returns the current drawing-to-pixel transform.
func (d *Drawer) Transform() vector.Affine2D { return d.trans }

func (d *Drawer) Scale(factor vector.Vec2) {
	d.trans = d.trans.Mul(vector.Scale(factor.X, factor.Y))
}

func (d *Drawer) Translate(offset vector.Vec2) {
	d.trans = d.trans.Mul(vector.Translate(offset.X, offset.Y))
}

func (d *Drawer) Rotate(angle float64) {
	d.trans = d.trans.Mul(vector.Rotate(angle))
}

// TransformByPoints moves the coordinate system so that drawing at old1 and
// old2 lands on new1 and new2.
func (d *Drawer) TransformByPoints(old1, old2, new1, new2 vector.Vec2) {
	d.trans = d.trans.Mul(vector.ByPoints(old1, old2, new1, new2))
}

// SetUnits maps a xSize by ySize drawing area, centered on the origin with
// y up, onto the surface. The canvas is shrunk along the looser axis so the
// aspect ratio matches.
func (d *Drawer) SetUnits(xSize, ySize float64) {
	d.SetUnitsCanvas(xSize, ySize, 0, false)
}

// SetUnitsCanvas is SetUnits with an explicit canvas width in pixels
// (ignored when <= 0) and control over whether the surface keeps its size.
// A given canvas width implies the size is kept.
func (d *Drawer) SetUnitsCanvas(xSize, ySize, canvasWidth float64, preserveCanvasSize bool) {
	d.ClearDrawing()
	d.trans = vector.Identity
	w, h := d.s.Size()
	if canvasWidth > 0 {
		ch := math.Floor(ySize / xSize * canvasWidth)
		if w != canvasWidth || h != ch {
			d.s.Resize(canvasWidth, ch)
		}
		w, h = canvasWidth, ch
		preserveCanvasSize = true
	}
	xScale := w / xSize
	yScale := h / ySize
	if xScale < yScale {
		if !preserveCanvasSize && xScale != yScale {
			h = xScale * ySize
			d.s.Resize(w, h)
		}
		d.Translate(vector.V2(w/2, h/2))
		d.Scale(vector.V2(1, -1))
		d.Scale(vector.V2(xScale, xScale))
	} else {
		if !preserveCanvasSize && xScale != yScale {
			w = yScale * xSize
			d.s.Resize(w, h)
		}
		d.Translate(vector.V2(w/2, h/2))
		d.Scale(vector.V2(1, -1))
		d.Scale(vector.V2(yScale, yScale))
	}
	d.saveTrans = d.trans
	d.hasSaveTrans = true
}

func (d *Drawer) Vec2Px(v vector.Vec2) vector.Vec2 { return d.trans.ApplyVec(v) }
func (d *Drawer) Pos2Px(p vector.Vec2) vector.Vec2 { return d.trans.Apply(p) }
func (d *Drawer) Vec2Dw(v vector.Vec2) vector.Vec2 { return d.trans.Inverse().ApplyVec(v) }
func (d *Drawer) Pos2Dw(p vector.Vec2) vector.Vec2 { return d.trans.Inverse().Apply(p) }

// PosNm2Px maps normalized viewport coordinates, origin bottom-left, to
// pixels.
func (d *Drawer) PosNm2Px(p vector.Vec2) vector.Vec2 {
	w, h := d.s.Size()
	return vector.V2(p.X*w, (1-p.Y)*h)
}

func (d *Drawer) PosNm2Dw(p vector.Vec2) vector.Vec2 { return d.Pos2Dw(d.PosNm2Px(p)) }

func (d *Drawer) isReflection() bool { return d.trans.IsReflection() }

// View3D returns the current view angles.
func (d *Drawer) View3D() (ax, ay, az float64) { return d.viewX, d.viewY, d.viewZ }

// SetView3D replaces the 3D transform with a pure view rotation. With clip
// the angles are first clamped to the viewAngle*Min/Max properties.
func (d *Drawer) SetView3D(ax, ay, az float64, clip, redraw bool) {
	if clip {
		ax = vector.Clip(ax, d.props.ViewAngleXMin, d.props.ViewAngleXMax)
		ay = vector.Clip(ay, d.props.ViewAngleYMin, d.props.ViewAngleYMax)
		az = vector.Clip(az, d.props.ViewAngleZMin, d.props.ViewAngleZMax)
	}
	d.viewX, d.viewY, d.viewZ = ax, ay, az
	d.trans3D = vector.Rotate3D(ax, ay, az)
	if redraw {
		d.Redraw()
	}
}

func (d *Drawer) ResetView3D(redraw bool) {
	d.SetView3D(InitViewAngleX, InitViewAngleY, InitViewAngleZ, true, redraw)
}

// IncrementView3D rotates the view by the given deltas, clipped, and
// redraws.
func (d *Drawer) IncrementView3D(dx, dy, dz float64) {
	d.SetView3D(d.viewX+dx, d.viewY+dy, d.viewZ+dz, true, true)
}

func (d *Drawer) Scale3D(k float64) { d.trans3D = d.trans3D.Mul(vector.Scale3D(k)) }

func (d *Drawer) Translate3D(offset vector.Vec3) {
	d.trans3D = d.trans3D.Mul(vector.Translate3D(offset))
}

func (d *Drawer) Rotate3D(ax, ay, az float64) {
	d.trans3D = d.trans3D.Mul(vector.Rotate3D(ax, ay, az))
}

func (d *Drawer) PosDwToVw(p vector.Vec3) vector.Vec3 { return d.trans3D.Apply(p) }
func (d *Drawer) PosVwToDw(p vector.Vec3) vector.Vec3 { return d.trans3D.Inverse().Apply(p) }
func (d *Drawer) VecDwToVw(v vector.Vec3) vector.Vec3 { return d.trans3D.ApplyVec(v) }
func (d *Drawer) VecVwToDw(v vector.Vec3) vector.Vec3 { return d.trans3D.Inverse().ApplyVec(v) }

// Pos3To2 projects a 3D drawing position orthographically onto the view
// plane.
func (d *Drawer) Pos3To2(p vector.Vec3) vector.Vec2 { return d.PosDwToVw(p).XY() }

// Vec3To2 projects v based at p.
func (d *Drawer) Vec3To2(v, p vector.Vec3) vector.Vec2 {
	return d.Pos3To2(p.Add(v)).Sub(d.Pos3To2(p))
}

func Pos2To3(p vector.Vec2) vector.Vec3 { return p.To3() }
func Vec2To3(v vector.Vec2) vector.Vec3 { return v.To3() }
