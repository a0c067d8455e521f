/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package demo

import (
	"context"
	"math"
	"os"
	"strings"
	"testing"

	"prairiedraw/internal/anim"
	"prairiedraw/internal/export"
	"prairiedraw/internal/vector"
)

func near(a, b, eps float64) bool { return math.Abs(a-b) < eps }

func TestSolveFourBar_ClosesLoop(t *testing.T) {
	g, f, a, b := 3.0, 3.0, 1.0, 2.0
	for _, flipped := range []bool{false, true} {
		for alpha := 0.05; alpha < 2*math.Pi; alpha += 0.3 {
			beta := SolveFourBar(g, f, a, b, alpha, flipped)
			pa := vector.Vec2AtAngle(alpha).Mul(a)
			pb := vector.V2(g, 0).Add(vector.Vec2AtAngle(beta).Mul(b))
			if got := pb.Sub(pa).Len(); !near(got, f, 1e-9) {
				t.Fatalf("alpha=%.2f flipped=%v: coupler %.6f, want %.1f", alpha, flipped, got, f)
			}
		}
	}
}

func TestLinkageSolve_CouplerLength(t *testing.T) {
	l := DefaultWiper().Linkage
	for theta := 0.1; theta < 2*math.Pi; theta += 0.25 {
		p, ok := l.Solve(theta)
		if !ok {
			t.Fatalf("theta=%.2f: no solution", theta)
		}
		if !near(p.A+p.B+p.O4+p.Theta, 2*math.Pi, 1e-12) {
			t.Fatalf("theta=%.2f: angles sum to %v", theta, p.A+p.B+p.O4+p.Theta)
		}
		pa := vector.Vec2AtAngle(theta).Mul(l.Crank)
		pb := vector.V2(l.Base, 0).Add(vector.Vec2AtAngle(math.Pi - p.O4).Mul(l.Rocker))
		if got := pb.Sub(pa).Len(); !near(got, l.Coupler, 1e-9) {
			t.Fatalf("theta=%.2f: coupler %.6f, want %.2f", theta, got, l.Coupler)
		}
	}
}

func TestLinkageSolve_Unreachable(t *testing.T) {
	l := Linkage{Crank: 1, Coupler: 0.5, Rocker: 0.5, Base: 4}
	if _, ok := l.Solve(0.3); ok {
		t.Fatalf("expected no solution when the coupler cannot reach")
	}
}

func TestFullRotation(t *testing.T) {
	l := DefaultWiper().Linkage
	if !l.FullRotation() {
		t.Fatalf("default wiper should rotate fully")
	}
	l.Rocker = 1
	if l.FullRotation() {
		t.Fatalf("short rocker should not rotate fully")
	}
	lo, hi := l.Limits()
	if !near(lo, 1.82, 1e-12) || !near(hi, 3.78, 1e-12) {
		t.Fatalf("limits = %v, %v", lo, hi)
	}
}

func TestWiperStep_ReversesAtLimit(t *testing.T) {
	s := NewWiperScene()
	s.p.Rocker = 1
	_, hi := s.p.Limits()
	omega := s.omega
	var reversed bool
	for i := 1; i <= 400 && !reversed; i++ {
		s.step(float64(i) * 0.01)
		if s.p.Diagonal(s.theta) >= hi {
			reversed = s.omega == -omega
		}
	}
	if !reversed {
		t.Fatalf("crank never reversed")
	}
	// clock going backwards restarts
	s.step(0)
	if s.theta != 0 || s.omega != omega || s.reversed {
		t.Fatalf("restart: theta=%v omega=%v reversed=%v", s.theta, s.omega, s.reversed)
	}
}

func TestWiperScene_RendersSVG(t *testing.T) {
	dir := t.TempDir()
	s := NewWiperScene()
	files, err := export.Render(context.Background(), s.Scene(), export.RenderOptions{
		Width: 300, Height: 200, FPS: 10, Frames: 4, Formats: []string{"svg"}, OutDir: dir,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(files) != 4 {
		t.Fatalf("files = %v", files)
	}
	b, err := os.ReadFile(files[3])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "Motor") || !strings.Contains(string(b), "|v| =") {
		t.Fatalf("last frame missing labels")
	}
	r := s.Readout()
	if !r.FullRotation || r.Speed <= 0 {
		t.Fatalf("readout = %+v", r)
	}
}

func TestWiperScene_OptionsClearTraces(t *testing.T) {
	dir := t.TempDir()
	s := NewWiperScene()
	sc := s.Scene()
	setup := sc.Setup
	sc.Setup = func(a *anim.Animator) {
		setup(a)
		a.RegisterStepCallback(func(tm float64) {
			if tm > 0.25 && s.frames > 0 {
				_ = a.SetOption("motor_bar", 0.5, false, nil, false)
			}
		})
	}
	if _, err := export.Render(context.Background(), sc, export.RenderOptions{
		Width: 100, Height: 80, FPS: 10, Frames: 5, Formats: []string{"svg"}, OutDir: dir,
	}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if s.p.Crank != 0.5 {
		t.Fatalf("crank = %v", s.p.Crank)
	}
	if len(s.blade) != 1 {
		t.Fatalf("blade trace = %d segments, want 1 after the last clear", len(s.blade))
	}
}

func TestLookup(t *testing.T) {
	if got := Names(); len(got) != 2 || got[0] != "fourbar" || got[1] != "gallery" {
		t.Fatalf("names = %v", got)
	}
	sc, err := Lookup("gallery")
	if err != nil || sc.Name != "gallery" {
		t.Fatalf("lookup: %v %v", sc.Name, err)
	}
	if _, err := Lookup("nope"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestGallery_Renders(t *testing.T) {
	dir := t.TempDir()
	files, err := export.Render(context.Background(), Gallery(), export.RenderOptions{
		Width: 200, Height: 150, FPS: 2, Frames: 3, Formats: []string{"svg"}, OutDir: dir,
	})
	if err != nil || len(files) != 3 {
		t.Fatalf("render: %v %v", files, err)
	}
	b, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "cylinder") {
		t.Fatalf("missing cylinder label")
	}
}
