/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package draw renders diagrams described in drawing coordinates onto a
// pixel Surface. A Drawer owns a 2D transform, a 3D view transform and
// the property table, all saved and restored together.
package draw

import (
	"log/slog"
	"math"

	applog "prairiedraw/internal/log"
	"prairiedraw/internal/options"
	"prairiedraw/internal/props"
	"prairiedraw/internal/vector"
)

// DrawFunc paints one static frame.
type DrawFunc func(d *Drawer)

// Drawer is not safe for concurrent use; it belongs to the goroutine that
// drives its surface.
type Drawer struct {
	s    Surface
	log  *slog.Logger
	draw DrawFunc

	props   props.Props
	trans   vector.Affine2D
	trans3D vector.Affine3D

	saveTrans    vector.Affine2D
	hasSaveTrans bool

	propStack    []props.Props
	transStack   []vector.Affine2D
	trans3DStack []vector.Affine3D

	viewX, viewY, viewZ float64

	opts    *options.Store
	images  ImageSource
	textDir string

	redrawHook func()
}

// Option configures a Drawer at construction.
type Option func(*Drawer)

// WithImages sets the source for DrawImage and TeX text.
func WithImages(src ImageSource) Option { return func(d *Drawer) { d.images = src } }

// Images returns the source set by WithImages, or nil.
func (d *Drawer) Images() ImageSource { return d.images }

// WithTextDir sets the directory holding pre-rendered TeX images,
// "text" by default.
func WithTextDir(dir string) Option { return func(d *Drawer) { d.textDir = dir } }

// New builds a Drawer on s and, when fn is non-nil, draws it once.
func New(s Surface, fn DrawFunc, opts ...Option) *Drawer {
	d := &Drawer{
		s:       s,
		log:     applog.WithComponent("draw"),
		draw:    fn,
		props:   props.Defaults(),
		trans:   vector.Identity,
		textDir: "text",
	}
	d.opts = options.New(d.Redraw)
	for _, o := range opts {
		o(d)
	}
	d.ResetView3D(false)
	if fn != nil {
		d.Redraw()
	}
	return d
}

// Surface returns the target surface.
func (d *Drawer) Surface() Surface { return d.s }

// SetRedrawHook replaces what Redraw does. Used by owners that wrap the
// Drawer, such as the animator.
func (d *Drawer) SetRedrawHook(fn func()) { d.redrawHook = fn }

// Redraw repaints the whole drawing.
func (d *Drawer) Redraw() {
	if d.redrawHook != nil {
		d.redrawHook()
		return
	}
	if d.draw == nil {
		return
	}
	d.Save()
	d.draw(d)
	d.RestoreAll()
}

// Reset restores every option to its baseline and the default 3D view,
// then redraws.
func (d *Drawer) Reset() {
	d.opts.ResetAll()
	d.ResetView3D(false)
	d.Redraw()
}

// ClearDrawing blanks the surface.
func (d *Drawer) ClearDrawing() { d.s.Clear(vector.Transparent) }

// Props gives typed access to the current property table.
func (d *Drawer) Props() *props.Props { return &d.props }

func (d *Drawer) SetProp(name string, value any) error { return d.props.Set(name, value) }

func (d *Drawer) GetProp(name string) (any, error) { return d.props.Get(name) }

// MustSetProp is SetProp for literal names inside draw callbacks; a bad
// name or value panics with a *UsageError.
func (d *Drawer) MustSetProp(name string, value any) {
	if err := d.props.Set(name, value); err != nil {
		panic(&UsageError{Op: "setProp", Detail: name, Err: err})
	}
}

// SetShapeDrawHidden switches shape strokes to the hidden line style.
func (d *Drawer) SetShapeDrawHidden() { d.props.UseHiddenLineStyle() }

// Options returns the option store; its redraw hook is this Drawer.
func (d *Drawer) Options() *options.Store { return d.opts }

func (d *Drawer) AddOption(name string, value any, triggerRedraw bool) {
	d.opts.Add(name, value, triggerRedraw)
}

func (d *Drawer) SetOption(name string, value any, redraw bool, trigger any, setReset bool) error {
	return d.opts.Set(name, value, redraw, trigger, setReset)
}

func (d *Drawer) GetOption(name string) (any, error) { return d.opts.Get(name) }

func (d *Drawer) ToggleOption(name string) error { return d.opts.Toggle(name) }

func (d *Drawer) RegisterOptionCallback(name string, cb options.Callback, id string) (string, error) {
	return d.opts.RegisterCallback(name, cb, id)
}

func (d *Drawer) ClearOptionValue(name string) error { return d.opts.Clear(name) }

func (d *Drawer) ResetOptionValue(name string) error { return d.opts.ResetValue(name) }

// OptionBool reads a boolean option, treating unknown or cleared options
// as false. Handy inside draw callbacks.
func (d *Drawer) OptionBool(name string) bool {
	b, err := d.opts.Bool(name)
	if err != nil {
		d.log.Debug("option read", slog.String("name", name), slog.Any("err", err))
		return false
	}
	return b
}

// Save pushes the transforms and the property table, and the surface state.
func (d *Drawer) Save() {
	d.s.Save()
	d.propStack = append(d.propStack, d.props)
	d.transStack = append(d.transStack, d.trans)
	d.trans3DStack = append(d.trans3DStack, d.trans3D)
}

// Restore pops what the matching Save pushed. Restoring with nothing saved
// panics with a *UsageError.
func (d *Drawer) Restore() {
	n := len(d.propStack)
	if n == 0 {
		panic(&UsageError{Op: "restore", Detail: "empty stack"})
	}
	if len(d.transStack) != n || len(d.trans3DStack) != n {
		panic(&UsageError{Op: "restore", Detail: "stack lengths differ"})
	}
	d.s.Restore()
	d.props = d.propStack[n-1]
	d.trans = d.transStack[n-1]
	d.trans3D = d.trans3DStack[n-1]
	d.propStack = d.propStack[:n-1]
	d.transStack = d.transStack[:n-1]
	d.trans3DStack = d.trans3DStack[:n-1]
}

// RestoreAll unwinds every open Save and reinstalls the transform set by
// the last SetUnits.
func (d *Drawer) RestoreAll() {
	for len(d.propStack) > 0 {
		d.Restore()
	}
	if d.hasSaveTrans {
		d.trans = d.saveTrans
	}
}

// Depth is the number of open Save calls.
func (d *Drawer) Depth() int { return len(d.propStack) }

func (d *Drawer) color(typ string) vector.Color {
	c, err := d.props.Color(typ)
	if err != nil {
		panic(&UsageError{Op: "color", Detail: typ, Err: err})
	}
	return c
}

func (d *Drawer) parseColor(s string) vector.Color {
	c, err := vector.ParseColor(s)
	if err != nil {
		panic(&UsageError{Op: "color", Detail: s, Err: err})
	}
	return c
}

func (d *Drawer) dash(pattern string) []float64 {
	p, err := vector.DashPattern(pattern)
	if err != nil {
		panic(&UsageError{Op: "dash", Detail: pattern, Err: err})
	}
	return p
}

func stroke(c vector.Color, width float64, dash []float64) vector.Stroke {
	return vector.Stroke{Color: c, Width: width, Dash: dash, MiterLim: 10, Enabled: true}
}

func fill(c vector.Color) vector.Fill {
	return vector.Fill{Color: c, Enabled: true}
}

func (d *Drawer) shapeStroke(c vector.Color) vector.Stroke {
	return stroke(c, d.props.ShapeStrokeWidthPx, d.dash(d.props.ShapeStrokePattern))
}

func (d *Drawer) arrowStroke(c vector.Color) vector.Stroke {
	return stroke(c, d.props.ArrowLineWidthPx, d.dash(d.props.ArrowLinePattern))
}

func (d *Drawer) outline() vector.Color { return d.parseColor(d.props.ShapeOutlineColor) }
func (d *Drawer) inside() vector.Color  { return d.parseColor(d.props.ShapeInsideColor) }

func circlePath(c vector.Vec2, r float64) vector.Path {
	var p vector.Path
	p.Arc(c.X, c.Y, r, 0, 2*math.Pi, false)
	p.Close()
	return p
}

func segment(a, b vector.Vec2) vector.Path {
	var p vector.Path
	p.MoveTo(a.X, a.Y)
	p.LineTo(b.X, b.Y)
	return p
}
