/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package demo

import (
	"fmt"
	"math"

	"prairiedraw/internal/anim"
	"prairiedraw/internal/draw"
	"prairiedraw/internal/export"
	"prairiedraw/internal/interact"
	"prairiedraw/internal/vector"
)

// Wiper is the windshield wiper mechanism: a motor crank drives a rocker
// whose extension carries the blade through a parallelogram. The rocker
// pivot O4 is the drawing origin.
type Wiper struct {
	Linkage
	Motor     vector.Vec2 // crank pivot O2
	RockerExt float64     // O4C
	Dead      float64     // DC, also the spacing O6O4
	BladeLen  float64
	Delta     float64 // blade offset angle, radians
	Omega     float64 // crank speed, rad/s
}

func DefaultWiper() Wiper {
	motor := vector.V2(3, -2)
	return Wiper{
		Linkage:   Linkage{Crank: 0.6, Coupler: 2.8, Rocker: 1.6, Base: motor.Len()},
		Motor:     motor,
		RockerExt: 4,
		Dead:      1,
		BladeLen:  2,
		Delta:     10 * vector.DegToRad,
		Omega:     2,
	}
}

// RefAngle is the direction from O4 to O2 measured so that the crank
// angle 0 points along the ground link.
func (w Wiper) RefAngle() float64 { return math.Pi - math.Acos(w.Motor.X/w.Base) }

// ArmAngle is the blade arm direction for a rocker angle.
func (w Wiper) ArmAngle(o4 float64) float64 { return w.RefAngle() - o4 + w.Delta }

// Tip is the blade arm end C relative to O4 at crank angle theta.
func (w Wiper) Tip(theta float64) (vector.Vec2, bool) {
	p, ok := w.Solve(theta)
	if !ok {
		return vector.Vec2{}, false
	}
	return vector.Vec2AtAngle(w.ArmAngle(p.O4)).Mul(w.RockerExt), true
}

// Readout holds the values a host shows next to the drawing.
type Readout struct {
	Speed, Acc              float64
	Centripetal, Tangential float64
	Area                    float64
	FullRotation, Reversing bool
}

const (
	maxTraceFrames = 400
	historyWindow  = 10.0
	arrowScale     = 1.0 / 3
)

// WiperScene keeps the integrated crank state between frames.
type WiperScene struct {
	a *anim.Animator
	p Wiper

	theta    float64 // integrated crank angle
	omega    float64 // signed crank speed
	lastT    float64
	reversed bool
	minO4    float64
	maxO4    float64
	speedMax float64
	accMax   float64
	blade    [][2]vector.Vec2
	frames   int
	last     Readout
}

func NewWiperScene() *WiperScene { return &WiperScene{p: DefaultWiper()} }

// Readout returns the values computed for the last drawn frame.
func (s *WiperScene) Readout() Readout { return s.last }

// Params returns the mechanism as configured by the options.
func (s *WiperScene) Params() Wiper { return s.p }

func (s *WiperScene) Scene() export.Scene {
	return export.Scene{Name: "fourbar", Draw: s.draw, Setup: s.setup, Interact: s.interact}
}

var lengthOptions = []string{"motor_bar", "coupler_bar", "output_bar", "wiper_bar", "delta"}

func (s *WiperScene) setup(a *anim.Animator) {
	s.a = a
	def := DefaultWiper()
	s.p = def
	s.restart()
	a.AddOption("velocity", false, true)
	a.AddOption("acceleration", false, true)
	a.AddOption("delta_label", true, true)
	a.AddOption("omega", def.Omega, true)
	a.AddOption("delta", def.Delta*vector.RadToDeg, true)
	a.AddOption("motor_bar", def.Crank, true)
	a.AddOption("coupler_bar", def.Coupler, true)
	a.AddOption("output_bar", def.Rocker, true)
	a.AddOption("wiper_bar", def.RockerExt, true)
	for _, name := range lengthOptions {
		_, _ = a.RegisterOptionCallback(name, func(any, any) { s.clearTraces() }, "")
	}
	_, _ = a.RegisterOptionCallback("omega", func(v, _ any) {
		if f, ok := v.(float64); ok {
			s.p.Omega = f
			s.omega = f
			if s.reversed {
				s.omega = -f
			}
		}
		s.clearTraces()
	}, "")
}

func (s *WiperScene) interact(a *anim.Animator) interact.Handler {
	start := interact.NewStartOnPress(a)
	start.Activate()
	sample := interact.NewSampler(a)
	sample.Activate()
	m := &interact.Mux{}
	m.Add(start)
	m.Add(sample)
	return m
}

func (s *WiperScene) restart() {
	s.theta, s.lastT, s.reversed = 0, 0, false
	s.omega = s.p.Omega
	s.clearTraces()
	s.minO4, s.maxO4 = 0, 0
}

func (s *WiperScene) clearTraces() {
	s.frames = 0
	s.speedMax, s.accMax = 0, 0
	s.blade = nil
	s.minO4, s.maxO4 = 0, 0
}

func optFloat(d *draw.Drawer, name string, def float64) float64 {
	if v, err := d.Options().Float(name); err == nil {
		return v
	}
	return def
}

func (s *WiperScene) readParams(d *draw.Drawer) {
	def := DefaultWiper()
	s.p.Crank = optFloat(d, "motor_bar", def.Crank)
	s.p.Coupler = optFloat(d, "coupler_bar", def.Coupler)
	s.p.Rocker = optFloat(d, "output_bar", def.Rocker)
	s.p.RockerExt = optFloat(d, "wiper_bar", def.RockerExt)
	s.p.Delta = optFloat(d, "delta", def.Delta*vector.RadToDeg) * vector.DegToRad
}

// step advances the crank to t and reverses it at the dead points when the
// linkage cannot rotate fully.
func (s *WiperScene) step(t float64) {
	if t < s.lastT {
		s.restart()
	}
	s.theta += s.omega * (t - s.lastT)
	s.lastT = t
	lo, hi := s.p.Limits()
	diag := s.p.Diagonal(s.theta)
	switch {
	case (diag >= hi || diag <= lo) && !s.reversed:
		s.reversed = true
		s.omega = -s.omega
	case diag < hi && diag > lo:
		s.reversed = false
	}
}

func (s *WiperScene) draw(d *draw.Drawer, t float64) {
	s.readParams(d)
	s.step(t)
	p := s.p
	ref := p.RefAngle()

	d.SetUnits(10, 15)
	d.Translate(vector.V2(0, 1.5))
	d.MustSetProp("arrowLineWidthPx", 3.0)

	// ground and pivots
	d.Ground(vector.V2(0, -0.3), vector.V2(0, 1), 15)
	d.Ground(vector.V2(p.Motor.X, p.Motor.Y-0.3), vector.V2(0, 1), 0.8)
	d.Text(vector.V2(p.Motor.X, p.Motor.Y-1), vector.V2(0, 1), "Motor", false)
	o6 := vector.V2(-p.Dead, 0)
	d.Pivot(vector.V2(0, -0.3), vector.V2(0, 0), 0.4)
	d.Pivot(vector.V2(o6.X, -0.3), o6, 0.4)
	d.Pivot(vector.V2(p.Motor.X, p.Motor.Y-0.3), p.Motor, 0.4)

	d.Save()
	d.MustSetProp("shapeOutlineColor", "grey")
	d.MustSetProp("shapeStrokePattern", "dashed")
	d.Line(vector.V2(0, 0), p.Motor, "")
	d.Restore()

	pose, ok := p.Solve(s.theta)
	s.last.FullRotation = p.FullRotation()
	s.last.Reversing = s.reversed
	if !s.last.FullRotation {
		d.Text(vector.V2(0, 4.5), vector.V2(0, 0), "Motor can't rotate completely! Change bar lengths.", true)
	}
	if !ok {
		return
	}
	s.maxO4 = math.Max(s.maxO4, pose.O4)
	s.minO4 = math.Min(s.minO4, pose.O4)
	if t > 2 {
		s.last.Area = (s.maxO4 - s.minO4) * p.RockerExt * p.BladeLen
	} else {
		s.last.Area = 0
	}

	// crank, coupler and rocker as a chain of local frames
	d.Save()
	d.Translate(p.Motor)
	d.Rotate(ref + s.theta)
	d.Rod(vector.V2(0, 0), vector.V2(p.Crank, 0), 0.2)
	d.Point(vector.V2(0, 0))
	d.Translate(vector.V2(p.Crank, 0))
	d.Rotate(-(math.Pi - pose.A))
	d.Rod(vector.V2(0, 0), vector.V2(p.Coupler, 0), 0.2)
	d.Point(vector.V2(0, 0))
	d.Translate(vector.V2(p.Coupler, 0))
	d.Rotate(-(math.Pi - pose.B))
	d.Rod(vector.V2(0, 0), vector.V2(p.Rocker, 0), 0.2)
	d.Point(vector.V2(0, 0))
	d.Restore()

	// swept blade trace
	arm := p.ArmAngle(pose.O4)
	tip := vector.Vec2AtAngle(arm).Mul(p.RockerExt)
	if s.frames < maxTraceFrames {
		half := p.BladeLen / 2
		s.blade = append(s.blade, [2]vector.Vec2{
			vector.V2(tip.X+0.075, tip.Y+half),
			vector.V2(tip.X+0.075, tip.Y-half),
		})
	}
	s.frames++
	d.Save()
	d.MustSetProp("shapeOutlineColor", "#a8beff")
	for _, seg := range s.blade {
		d.Line(seg[0], seg[1], "")
	}
	d.Restore()

	// parallelogram carrying the blade
	d.Save()
	d.Translate(o6)
	d.Rotate(arm)
	d.Translate(vector.V2(p.RockerExt, 0))
	d.Rotate(-arm)
	d.Wiper(vector.V2(0, 0), vector.V2(p.Dead, 0), 0.15, p.BladeLen)
	d.Restore()

	d.Save()
	d.Rotate(arm)
	d.CustomRod(vector.V2(0, 0), vector.V2(p.RockerExt, 0), 0.2)
	d.Point(vector.V2(0, 0))
	d.Point(vector.V2(p.RockerExt, 0))
	d.Restore()

	d.Save()
	d.Translate(o6)
	d.Rotate(arm)
	d.Rod(vector.V2(0, 0), vector.V2(p.RockerExt, 0), 0.2)
	d.Point(vector.V2(0, 0))
	d.Point(vector.V2(p.RockerExt, 0))
	d.Restore()

	if d.OptionBool("delta_label") {
		d.Save()
		d.Rotate(ref - pose.O4)
		d.MustSetProp("arrowLineWidthPx", 2.0)
		d.MustSetProp("shapeOutlineColor", "red")
		d.MustSetProp("shapeStrokePattern", "dashed")
		d.Line(vector.V2(-p.Rocker+1, 0), vector.V2(1.5, 0), "")
		d.Rotate(p.Delta)
		d.Line(vector.V2(0, 0), vector.V2(1.5, 0), "")
		d.Rotate(-p.Delta)
		d.CircleArrow(vector.V2(0, 0), 1.4, 0, p.Delta, "", false, 0)
		label := fmt.Sprintf("δ = %d°", int(math.Round(p.Delta*vector.RadToDeg)))
		d.LabelCircleLine(vector.V2(0, 0), 1.4, 0, p.Delta, vector.V2(1, 3), label, true)
		d.Restore()
	}

	s.kinematics(d, t, ref)
}

// kinematics differentiates the crank end and blade arm tip numerically
// and draws their vectors and history plots.
func (s *WiperScene) kinematics(d *draw.Drawer, t, ref float64) {
	p := s.p
	theta := func(tau float64) float64 { return s.theta + s.omega*(tau-t) }
	motor := vector.NumDiff(func(tau float64) []float64 {
		a := vector.Vec2AtAngle(ref + theta(tau)).Mul(p.Crank)
		return []float64{a.X, a.Y}
	}, t)
	wiper := vector.NumDiff(func(tau float64) []float64 {
		c, _ := p.Tip(theta(tau))
		return []float64{c.X, c.Y}
	}, t)
	vec := func(v []float64) vector.Vec2 { return vector.V2(v[0], v[1]) }

	mA, mV := vec(motor.X), vec(motor.DX)
	c, vC, aC := vec(wiper.X), vec(wiper.DX), vec(wiper.DDX)
	unit := c.Mul(1 / p.RockerExt)
	radial := aC.Dot(unit)
	tangential := aC.Sub(unit.Mul(radial))
	s.last.Speed = vC.Len()
	s.last.Acc = aC.Len()
	s.last.Centripetal = math.Abs(radial)
	s.last.Tangential = tangential.Len()

	d.Save()
	d.Translate(p.Motor)
	d.Arrow(mA, mA.Add(mV.Mul(arrowScale)), "velocity")
	d.Text(mA.Mul(1.6), vector.V2(-1, 0), "TEX:$\\omega_2$", false)
	d.Restore()

	if d.OptionBool("velocity") {
		d.Arrow(c, c.Add(vC.Mul(arrowScale)), "velocity")
	}
	if d.OptionBool("acceleration") {
		a := aC.Mul(arrowScale)
		d.Arrow(c, c.Add(a), "rotation")
		d.Save()
		d.MustSetProp("arrowLineWidthPx", 1.5)
		d.Arrow(c, c.Mul((p.RockerExt+a.Dot(unit))/p.RockerExt), "acceleration")
		d.Arrow(c, c.Add(a.Sub(unit.Mul(a.Dot(unit)))), "acceleration")
		d.Restore()
	}

	s.speedMax = math.Max(s.speedMax, math.Round(s.last.Speed))
	s.accMax = math.Max(s.accMax, math.Round(s.last.Acc))
	if s.a == nil {
		return
	}
	speed := s.a.History("speed", 0.04, historyWindow, t, s.last.Speed)
	acc := s.a.History("acc", 0.04, historyWindow, t, s.last.Acc)
	now := math.Min(t, 0.95*historyWindow)
	d.PlotHistory(vector.V2(-4.6, -5.5), vector.V2(9.5, 2), vector.V2(historyWindow, math.Max(1.5*s.speedMax, 1)), now, "|v|", speed, "velocity")
	d.PlotHistory(vector.V2(-4.6, -8.2), vector.V2(9.5, 2), vector.V2(historyWindow, math.Max(1.5*s.accMax, 1)), now, "|a|", acc, "rotation")
	d.Text(vector.V2(5.2, -4.5), vector.V2(-1, 0), fmt.Sprintf("|v| = %.2f m/s", s.last.Speed), false)
	d.Text(vector.V2(5.2, -7.2), vector.V2(-1, 0), fmt.Sprintf("|a| = %.1f m/s²", s.last.Acc), false)
	d.Text(vector.V2(-4.6, 6), vector.V2(-1, 0), fmt.Sprintf("area = %.2f m²", s.last.Area), false)
}
