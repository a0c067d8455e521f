/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package anim adds a frame-driven clock, state sequences and signal
// history on top of a draw.Drawer.
package anim

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"prairiedraw/internal/draw"
	"prairiedraw/internal/history"
	applog "prairiedraw/internal/log"
)

// DrawFunc paints the scene at animation time t in seconds.
type DrawFunc func(d *draw.Drawer, t float64)

// Animator owns a Drawer and redraws it every frame while running. Like
// the Drawer it is confined to one goroutine.
type Animator struct {
	*draw.Drawer

	log    *slog.Logger
	frames FrameProvider
	draw   DrawFunc

	drawTime   float64 // ms of animation time at the last frame
	timeOffset float64 // host clock minus animation time, in ms
	deltaTime  float64 // s, only non-zero inside a frame
	running    bool
	startFrame bool
	gen        int

	stateCallbacks []func(running bool)
	stepCallbacks  []func(t float64)

	sequences map[string]*sequence
	history   *history.Store

	imagesLanded atomic.Bool
	wakeMu       sync.Mutex
	wake         func()
}

// New builds an Animator on s, stopped at t = 0, and draws the first frame.
func New(s draw.Surface, fn DrawFunc, frames FrameProvider, opts ...draw.Option) *Animator {
	a := &Animator{
		log:       applog.WithComponent("anim"),
		frames:    frames,
		draw:      fn,
		sequences: make(map[string]*sequence),
		history:   history.NewStore(history.Config{}),
	}
	a.Drawer = draw.New(s, nil, opts...)
	a.Drawer.SetRedrawHook(a.Redraw)
	if n, ok := a.Images().(draw.ImageNotifier); ok {
		n.Subscribe(a.imageLoaded)
	}
	a.paint(0)
	return a
}

// imageLoaded runs on the loading goroutine. It only flags the repaint;
// the owner applies it with FlushImages. Failed loads are not retried.
func (a *Animator) imageLoaded(key string, err error) {
	if err != nil {
		return
	}
	a.imagesLanded.Store(true)
	a.wakeMu.Lock()
	wake := a.wake
	a.wakeMu.Unlock()
	if wake != nil {
		wake()
	}
}

// OnImagesLoaded sets a function called from the loading goroutine after
// an image lands. It must not touch the animator; it should wake the
// owning goroutine, which then calls FlushImages.
func (a *Animator) OnImagesLoaded(wake func()) {
	a.wakeMu.Lock()
	a.wake = wake
	a.wakeMu.Unlock()
}

// FlushImages redraws if an image landed since the last call and reports
// whether one had. While running the next frame picks the image up.
func (a *Animator) FlushImages() bool {
	if !a.imagesLanded.Swap(false) {
		return false
	}
	a.log.Debug("images landed", slog.Bool("running", a.running))
	a.Redraw()
	return true
}

func (a *Animator) paint(t float64) {
	if a.draw == nil {
		return
	}
	a.Save()
	a.draw(a.Drawer, t)
	a.deltaTime = 0
	a.RestoreAll()
}

// Start begins requesting frames. Time resumes from the last drawn time.
func (a *Animator) Start() {
	if a.running {
		return
	}
	a.running = true
	a.startFrame = true
	a.gen++
	a.request()
	a.log.Debug("animation started", slog.Float64("t", a.drawTime/1000))
	for _, cb := range a.stateCallbacks {
		cb(true)
	}
}

// Stop ends the frame loop. A frame already queued with the host does
// nothing when it fires.
func (a *Animator) Stop() {
	a.running = false
	a.log.Debug("animation stopped", slog.Float64("t", a.drawTime/1000))
	for _, cb := range a.stateCallbacks {
		cb(false)
	}
}

func (a *Animator) Toggle() {
	if a.running {
		a.Stop()
	} else {
		a.Start()
	}
}

func (a *Animator) Running() bool { return a.running }

// RegisterAnimCallback adds a listener for start/stop and calls it at once
// with the current state.
func (a *Animator) RegisterAnimCallback(cb func(running bool)) {
	a.stateCallbacks = append(a.stateCallbacks, cb)
	cb(a.running)
}

// RegisterStepCallback adds a function run with the new time before each
// frame is drawn and when the clock is reset.
func (a *Animator) RegisterStepCallback(cb func(t float64)) {
	a.stepCallbacks = append(a.stepCallbacks, cb)
}

func (a *Animator) request() {
	g := a.gen
	a.frames.RequestFrame(func(ms float64) { a.frame(g, ms) })
}

func (a *Animator) frame(g int, ms float64) {
	if !a.running || g != a.gen {
		return
	}
	if a.startFrame {
		a.startFrame = false
		a.timeOffset = ms - a.drawTime
	}
	animTime := ms - a.timeOffset
	a.deltaTime = (animTime - a.drawTime) / 1000
	a.drawTime = animTime
	t := animTime / 1000
	for _, cb := range a.stepCallbacks {
		cb(t)
	}
	a.paint(t)
	if a.running && g == a.gen {
		a.request()
	}
}

// DeltaTime is the time in seconds since the previous frame. It is zero
// outside of a running frame.
func (a *Animator) DeltaTime() float64 { return a.deltaTime }

// LastDrawTime is the animation time in seconds of the last frame.
func (a *Animator) LastDrawTime() float64 { return a.drawTime / 1000 }

// Redraw repaints at the last drawn time. While running the next frame
// will repaint anyway, so it does nothing.
func (a *Animator) Redraw() {
	if !a.running {
		a.paint(a.drawTime / 1000)
	}
}

// ResetTime rewinds the clock to zero.
func (a *Animator) ResetTime(redraw bool) {
	a.drawTime = 0
	for _, cb := range a.stepCallbacks {
		cb(0)
	}
	a.startFrame = true
	if redraw {
		a.Redraw()
	}
}

// Reset puts everything back to its initial state: options, sequences,
// history, clock and 3D view. The animation is stopped.
func (a *Animator) Reset() {
	a.Options().ResetAll()
	a.ResetAllSequences()
	a.ClearAllHistory()
	a.Stop()
	a.ResetView3D(false)
	a.ResetTime(false)
	a.Redraw()
}

// History records a sample for name and returns the live buffer; see
// history.Store.Record.
func (a *Animator) History(name string, minDt, maxAge, t float64, v ...float64) []history.Sample {
	return a.history.Record(name, minDt, maxAge, t, v...)
}

func (a *Animator) ClearHistory(name string) { a.history.Clear(name) }

func (a *Animator) ClearAllHistory() { a.history.ClearAll() }

// HistoryStore exposes the buffers, e.g. for archiving.
func (a *Animator) HistoryStore() *history.Store { return a.history }
