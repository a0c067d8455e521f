/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package draw

import (
	"errors"
	"image"

	"prairiedraw/internal/vector"
)

// Surface is the raster target a Drawer paints on. All coordinates are in
// pixels with y pointing down. Save/Restore scope the clip region.
type Surface interface {
	Size() (w, h float64)
	Resize(w, h float64)
	Save()
	Restore()
	// ClipRect intersects the current clip with the rectangle.
	ClipRect(x, y, w, h float64)
	FillPath(p vector.Path, f vector.Fill)
	StrokePath(p vector.Path, s vector.Stroke)
	// FillText draws text anchored at (x, y) according to st.Align/Baseline.
	FillText(text string, x, y float64, st vector.TextStyle)
	// MeasureText returns the advance width of text at the given size.
	MeasureText(text string, size float64) float64
	DrawImage(img image.Image, x, y, w, h float64)
	// Clear resets every pixel to c.
	Clear(c vector.Color)
}

// ImageSource serves decoded images by key without blocking. A miss may
// start a background load; the owner is told to redraw once it lands.
type ImageSource interface {
	Image(key string) (image.Image, bool)
}

// ImageNotifier is implemented by image sources that report finished
// loads. fn runs on the loading goroutine with a nil err on success.
type ImageNotifier interface {
	Subscribe(fn func(key string, err error))
}

// UsageError reports a scope-management or naming bug in the caller, such
// as restoring more often than saving. It is raised with panic.
type UsageError struct {
	Op     string
	Detail string
	Err    error
}

func (e *UsageError) Error() string {
	msg := "draw: " + e.Op + ": " + e.Detail
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *UsageError) Unwrap() error { return e.Err }

// IsUsageError reports whether err is or wraps a *UsageError.
func IsUsageError(err error) bool {
	var ue *UsageError
	return errors.As(err, &ue)
}
