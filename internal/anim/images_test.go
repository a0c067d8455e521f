/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package anim

import (
	"context"
	"errors"
	"image"
	"sync/atomic"
	"testing"

	"prairiedraw/internal/assets"
	"prairiedraw/internal/draw"
	"prairiedraw/internal/vector"
)

type imageSurface struct {
	nopSurface
	images int
}

func (s *imageSurface) DrawImage(image.Image, float64, float64, float64, float64) { s.images++ }

type memLoader map[string]image.Image

func (m memLoader) Load(_ context.Context, key string) (image.Image, error) {
	if img, ok := m[key]; ok {
		return img, nil
	}
	return nil, errors.New("no such image")
}

func TestImagesLanded_RepaintOnFlush(t *testing.T) {
	cache := assets.NewCache(context.Background(), memLoader{"label.png": image.NewRGBA(image.Rect(0, 0, 8, 4))})
	s := &imageSurface{}
	paints := 0
	a := New(s, func(d *draw.Drawer, tt float64) {
		paints++
		d.DrawImage("label.png", vector.Vec2{}, vector.Vec2{}, 0)
	}, &ManualFrames{}, draw.WithImages(cache))
	var woken atomic.Int32
	a.OnImagesLoaded(func() { woken.Add(1) })

	if err := cache.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if paints != 1 || s.images != 0 {
		t.Fatalf("before flush paints=%d images=%d", paints, s.images)
	}
	// New subscribes before its first paint, so the wake may race the
	// OnImagesLoaded call; the landed flag never does.
	if !a.FlushImages() {
		t.Fatalf("FlushImages reported nothing landed (woken %d)", woken.Load())
	}
	if paints != 2 || s.images != 1 {
		t.Fatalf("after flush paints=%d images=%d", paints, s.images)
	}
	if a.FlushImages() || paints != 2 {
		t.Fatalf("second flush repainted")
	}
}

func TestImagesLanded_FailedLoadDoesNotRepaint(t *testing.T) {
	cache := assets.NewCache(context.Background(), memLoader{})
	paints := 0
	a := New(&imageSurface{}, func(d *draw.Drawer, tt float64) {
		paints++
		d.DrawImage("missing.png", vector.Vec2{}, vector.Vec2{}, 0)
	}, &ManualFrames{}, draw.WithImages(cache))
	if err := cache.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}
	if a.FlushImages() || paints != 1 {
		t.Fatalf("failed load triggered a repaint (paints=%d)", paints)
	}
	if cache.State("missing.png") != assets.Failed {
		t.Fatalf("state = %v", cache.State("missing.png"))
	}
}

func TestImagesLanded_WakesOwner(t *testing.T) {
	gate := make(chan struct{})
	cache := assets.NewCache(context.Background(), gatedLoader{gate})
	a := New(&imageSurface{}, nil, &ManualFrames{}, draw.WithImages(cache))
	woke := make(chan struct{}, 1)
	a.OnImagesLoaded(func() { woke <- struct{}{} })
	cache.Image("x.png")
	close(gate)
	<-woke
	if !a.FlushImages() {
		t.Fatalf("wake without landed flag")
	}
}

type gatedLoader struct{ gate chan struct{} }

func (g gatedLoader) Load(ctx context.Context, key string) (image.Image, error) {
	<-g.gate
	return image.NewRGBA(image.Rect(0, 0, 1, 1)), nil
}
