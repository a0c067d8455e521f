/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interact turns host pointer events into view rotation and simple
// drawing-space tools. Every handler ignores events until activated.
package interact

import (
	"fmt"
	"log/slog"

	applog "prairiedraw/internal/log"
	"prairiedraw/internal/vector"
)

// Kind of pointer event.
type Kind int

const (
	Press Kind = iota
	Move
	Release
	// Leave is the pointer leaving the surface while a button is held.
	Leave
	Click
)

func (k Kind) String() string {
	switch k {
	case Press:
		return "press"
	case Move:
		return "move"
	case Release:
		return "release"
	case Leave:
		return "leave"
	case Click:
		return "click"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := Press; k <= Click; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("interact: unknown event kind %q", s)
}

// Event is a pointer event in surface pixels.
type Event struct {
	Kind Kind
	X, Y float64
}

func (e Event) Px() vector.Vec2 { return vector.V2(e.X, e.Y) }

// Handler consumes pointer events.
type Handler interface {
	Handle(Event)
}

// Canvas is what the handlers need from a drawer or animator.
type Canvas interface {
	Pos2Dw(p vector.Vec2) vector.Vec2
	IncrementView3D(dx, dy, dz float64)
	Redraw()
}

// Mux fans every event out to its handlers in order.
type Mux struct {
	hs []Handler
}

func (m *Mux) Add(h Handler) { m.hs = append(m.hs, h) }

func (m *Mux) Handle(e Event) {
	for _, h := range m.hs {
		h.Handle(e)
	}
}

// viewRate is radians of rotation per dragged pixel.
const viewRate = 0.01

// Rotator rotates the 3D view while the pointer is dragged.
type Rotator struct {
	c            Canvas
	active, down bool
	last         vector.Vec2
}

func NewRotator(c Canvas) *Rotator { return &Rotator{c: c} }

func (r *Rotator) Activate() { r.active = true }

func (r *Rotator) Handle(e Event) {
	if !r.active {
		return
	}
	switch e.Kind {
	case Press:
		r.down = true
		r.last = e.Px()
	case Release:
		r.down = false
	case Move:
		if !r.down {
			return
		}
		d := e.Px().Sub(r.last)
		r.last = e.Px()
		r.c.IncrementView3D(d.Y*viewRate, 0, d.X*viewRate)
	}
}

// Tracker remembers whether a button is down and where the pointer was
// last seen while it was.
type Tracker struct {
	c            Canvas
	active, down bool
	last         vector.Vec2
}

func NewTracker(c Canvas) *Tracker { return &Tracker{c: c} }

func (t *Tracker) Activate() { t.active = true }

func (t *Tracker) Handle(e Event) {
	if !t.active {
		return
	}
	switch e.Kind {
	case Press:
		t.down = true
		t.last = e.Px()
	case Release:
		t.down = false
	case Move:
		if t.down {
			t.last = e.Px()
		}
	}
}

// Down reports whether a button is held. False before activation.
func (t *Tracker) Down() bool { return t.down }

// PositionDw is the last tracked position in drawing coordinates.
func (t *Tracker) PositionDw() vector.Vec2 { return t.c.Pos2Dw(t.last) }

// LineDraw lets the user drag out a line segment in drawing coordinates.
// Callbacks run and the canvas redraws on every change.
type LineDraw struct {
	c         Canvas
	active    bool
	drawn     bool
	drawing   bool
	start     vector.Vec2
	end       vector.Vec2
	callbacks []func()
}

func NewLineDraw(c Canvas) *LineDraw { return &LineDraw{c: c} }

func (l *LineDraw) RegisterCallback(fn func()) { l.callbacks = append(l.callbacks, fn) }

func (l *LineDraw) changed() {
	for _, cb := range l.callbacks {
		cb()
	}
	l.c.Redraw()
}

func (l *LineDraw) Activate() {
	if l.active {
		return
	}
	l.active = true
	l.drawn, l.drawing = false, false
	l.changed()
}

func (l *LineDraw) Deactivate() {
	l.active = false
	l.drawn, l.drawing = false, false
	l.c.Redraw()
}

func (l *LineDraw) Active() bool { return l.active }

// Drawn reports whether a line exists; Drawing whether it is being dragged.
func (l *LineDraw) Drawn() bool   { return l.drawn }
func (l *LineDraw) Drawing() bool { return l.drawing }

// Line returns the segment end points in drawing coordinates.
func (l *LineDraw) Line() (start, end vector.Vec2) { return l.start, l.end }

func (l *LineDraw) Handle(e Event) {
	if !l.active {
		return
	}
	switch e.Kind {
	case Press:
		p := l.c.Pos2Dw(e.Px())
		l.start, l.end = p, p
		l.drawing, l.drawn = true, true
	case Move:
		if !l.drawing {
			return
		}
		l.end = l.c.Pos2Dw(e.Px())
	case Release:
		if !l.drawing {
			return
		}
		l.drawing = false
	case Leave:
		if !l.drawing {
			return
		}
		l.end = l.c.Pos2Dw(e.Px())
		l.drawing = false
	default:
		return
	}
	l.changed()
}

// Sampler logs the drawing position of each click, for digitizing points
// off a background image.
type Sampler struct {
	c       Canvas
	log     *slog.Logger
	active  bool
	samples []vector.Vec2
}

func NewSampler(c Canvas) *Sampler {
	return &Sampler{c: c, log: applog.WithComponent("interact")}
}

func (s *Sampler) Activate() { s.active = true }

func (s *Sampler) Handle(e Event) {
	if !s.active || e.Kind != Click {
		return
	}
	p := s.c.Pos2Dw(e.Px())
	s.samples = append(s.samples, p)
	s.log.Info("sample", slog.String("pos", FormatSample(p)))
}

// Samples returns the clicked positions so far.
func (s *Sampler) Samples() []vector.Vec2 { return s.samples }

// FormatSample prints p with two decimals, ready to paste into a point
// list.
func FormatSample(p vector.Vec2) string { return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y) }

// Starter is anything with a Start method, such as an animator.
type Starter interface{ Start() }

// StartOnPress starts an animation on the first press after activation.
type StartOnPress struct {
	s      Starter
	active bool
}

func NewStartOnPress(s Starter) *StartOnPress { return &StartOnPress{s: s} }

func (p *StartOnPress) Activate() { p.active = true }

func (p *StartOnPress) Handle(e Event) {
	if p.active && e.Kind == Press {
		p.s.Start()
	}
}
