/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package draw

import (
	"crypto/sha1"
	"encoding/hex"
	"image"
	"log/slog"
	"math"
	"path"
	"slices"
	"strings"

	"prairiedraw/internal/vector"
)

// TeXPrefix marks label text that is drawn from a pre-rendered image.
const TeXPrefix = "TEX:"

const texBorderPx = 5

// TeXKey returns the image file name, relative to the text directory, for
// a TeX source string. The same naming is used by the texgen tool.
func TeXKey(tex string) string {
	sum := sha1.Sum([]byte(tex))
	return hex.EncodeToString(sum[:]) + ".png"
}

// Text draws a label at pos. anchor says which point of the label box sits
// at pos: (-1, 0) is the middle of its left edge, (1, 1) its top right
// corner. The label is pushed away from pos by textOffsetPx times the
// anchor size. Text starting with "TEX:" is drawn from its rendered image
// once that has loaded.
func (d *Drawer) Text(pos, anchor vector.Vec2, text string, boxed bool) {
	if text == "" {
		return
	}
	p := d.Pos2Px(pos)
	if tex, ok := strings.CutPrefix(text, TeXPrefix); ok {
		d.texText(p, anchor, tex, boxed)
		return
	}
	st := vector.TextStyle{Color: vector.Black, Size: d.props.TextFontSize}
	rel := 0.5
	switch vector.Sign(anchor.X) {
	case -1:
		st.Align, rel = vector.AlignLeft, 0
	case 0:
		st.Align = vector.AlignCenter
	case 1:
		st.Align, rel = vector.AlignRight, 1
	}
	top := 0.0
	h := d.props.TextFontSize
	switch vector.Sign(anchor.Y) {
	case -1:
		st.Baseline, top = vector.BaselineBottom, -h
	case 0:
		st.Baseline, top = vector.BaselineMiddle, -h/2
	case 1:
		st.Baseline = vector.BaselineTop
	}
	off := anchor.Unit().Mul(anchor.SupNorm() * d.props.TextOffsetPx)
	at := p.Add(vector.V2(-off.X, off.Y))
	if boxed {
		w := d.s.MeasureText(text, st.Size)
		pad := d.props.TextOffsetPx
		var box vector.Path
		box.Rect(at.X-rel*w-pad, at.Y+top-pad, w+2*pad, h+2*pad)
		d.s.FillPath(box, fill(vector.White))
	}
	d.s.FillText(text, at.X, at.Y, st)
}

func (d *Drawer) texText(p, anchor vector.Vec2, tex string, boxed bool) {
	key := path.Join(d.textDir, TeXKey(tex))
	img, ok := d.image(key)
	if !ok {
		return
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	off := anchor.Mul(d.props.TextOffsetPx)
	x := p.X - (anchor.X+1)/2*w - off.X
	y := p.Y + (anchor.Y-1)/2*h + off.Y
	if boxed {
		var box vector.Path
		box.Rect(x-texBorderPx, y-texBorderPx, w+2*texBorderPx, h+2*texBorderPx)
		d.s.FillPath(box, fill(vector.White))
	}
	d.s.DrawImage(img, x, y, w, h)
}

func (d *Drawer) Text3D(pos vector.Vec3, anchor vector.Vec2, text string, boxed bool) {
	d.Text(d.Pos3To2(pos), anchor, text, boxed)
}

// LabelLine labels the segment start-end. at.X in [-1, 1] runs from start
// to end; at.Y moves the label to the left (positive) or right of the
// segment. An explicit anchor overrides the computed one.
func (d *Drawer) LabelLine(start, end, at vector.Vec2, text string, anchor ...vector.Vec2) {
	if text == "" {
		return
	}
	mid := start.Add(end).Mul(0.5)
	half := end.Sub(start).Mul(0.5)
	p := mid.Add(half.Mul(at.X))
	u1 := half.Unit()
	u2 := u1.Rotate(math.Pi / 2)
	o := u1.Mul(at.X).Add(u2.Mul(at.Y))
	a := o.Neg().Unit().Mul(at.SupNorm())
	if len(anchor) > 0 {
		a = anchor[0]
	}
	d.Text(p, a, text, false)
}

func (d *Drawer) LabelLine3D(start, end vector.Vec3, at vector.Vec2, text string, anchor ...vector.Vec2) {
	d.LabelLine(d.Pos3To2(start), d.Pos3To2(end), at, text, anchor...)
}

// LabelCircleLine labels a circle arrow drawn with the same arguments.
// at.X in [-1, 1] runs from start to end; at.Y moves outwards (positive)
// or inwards.
func (d *Drawer) LabelCircleLine(pos vector.Vec2, rad, start, end float64, at vector.Vec2, text string, fixedRad bool) {
	posPx := d.Pos2Px(pos)
	startOff := d.Vec2Px(vector.Vec2AtAngle(start).Mul(rad))
	radiusPx := startOff.Len()
	startPx := vector.AngleOf(startOff)
	delta := end - start
	if d.isReflection() {
		delta = -delta
	}
	endPx := startPx + delta
	angle := (1-at.X)/2*startPx + (1+at.X)/2*endPx
	u1Px := vector.Vec2AtAngle(angle)
	u2Px := u1Px.Rotate(-math.Pi / 2)
	u1 := d.Vec2Dw(u1Px).Unit()
	u2 := d.Vec2Dw(u2Px).Unit()
	o := u1.Mul(at.Y).Add(u2.Mul(at.X))
	a := scaleAnchor(o.Neg().Unit(), at)
	rPx := d.circleArrowRadius(radiusPx, angle, startPx, endPx, fixedRad)
	d.Text(d.Pos2Dw(posPx.Add(u1Px.Mul(rPx))), a, text, false)
}

// LabelAngle places label inside the angle p1-pos-p2.
func (d *Drawer) LabelAngle(pos, p1, p2 vector.Vec2, label string) {
	mid := p1.Sub(pos).Add(p2.Sub(pos)).Mul(0.5)
	var a vector.Vec2
	if m := mid.SupNorm(); m > 0 {
		a = mid.Mul(-1.8 / m)
	}
	d.Text(pos, a, label, false)
}

// FindAnchorForIntersection picks a label anchor at label that points into
// the widest gap between the lines running to points. Ties go to the gap
// first reached counterclockwise from the first line.
func (d *Drawer) FindAnchorForIntersection(label vector.Vec2, points []vector.Vec2) vector.Vec2 {
	lp := d.Pos2Px(label)
	angles := make([]float64, 0, len(points))
	for _, pt := range points {
		v := d.Pos2Px(pt).Sub(lp)
		v.Y = -v.Y
		if v.Len() > 1e-6 {
			angles = append(angles, vector.AngleOf(v))
		}
	}
	if len(angles) == 0 {
		return vector.V2(1, 0)
	}
	tie := angles[0]
	slices.Sort(angles)
	maxDiff := angles[0] - angles[len(angles)-1] + 2*math.Pi
	maxIs := []int{0}
	for i := 1; i < len(angles); i++ {
		diff := angles[i] - angles[i-1]
		if diff > maxDiff-1e-6 {
			if diff > maxDiff+1e-6 {
				maxDiff = diff
				maxIs = []int{i}
			} else {
				maxIs = append(maxIs, i)
			}
		}
	}
	minCCW := 2 * math.Pi
	best := angles[maxIs[0]] - maxDiff/2
	for _, i := range maxIs {
		a := angles[i] - maxDiff/2
		diff := a - tie
		if diff < 0 {
			diff += 2 * math.Pi
		}
		if diff < minCCW {
			minCCW = diff
			best = a
		}
	}
	dir := vector.Vec2AtAngle(best)
	return dir.Mul(-1 / dir.SupNorm())
}

func (d *Drawer) LabelIntersection(label vector.Vec2, points []vector.Vec2, text string) {
	d.Text(label, d.FindAnchorForIntersection(label, points), text, false)
}

func (d *Drawer) image(key string) (image.Image, bool) {
	if d.images == nil {
		return nil, false
	}
	img, ok := d.images.Image(key)
	if !ok {
		d.log.Debug("image pending", slog.String("key", key))
	}
	return img, ok
}

// DrawImage draws the image src with its anchor point at pos, anchors as
// for Text. A positive width scales the image to that many drawing units
// wide. Images still loading are skipped; the owner redraws once they
// arrive.
func (d *Drawer) DrawImage(src string, pos, anchor vector.Vec2, width float64) {
	img, ok := d.image(src)
	if !ok {
		return
	}
	b := img.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	scale := 1.0
	if width > 0 && w > 0 {
		scale = d.Vec2Px(vector.V2(width, 0)).Len() / w
	}
	p := d.Pos2Px(pos)
	x := p.X + scale*(-(anchor.X+1)/2*w)
	y := p.Y + scale*((anchor.Y-1)/2*h)
	d.s.DrawImage(img, x, y, scale*w, scale*h)
}
