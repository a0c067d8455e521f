/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import "math"

// fitToRaster converts a point in a view of size (vw, vh) showing a
// (rw, rh) raster scaled to fit and centred, into raster pixels.
func fitToRaster(x, y, vw, vh, rw, rh float64) (float64, float64) {
	if vw <= 0 || vh <= 0 {
		return x, y
	}
	k := math.Min(vw/rw, vh/rh)
	ox := (vw - rw*k) / 2
	oy := (vh - rh*k) / 2
	return (x - ox) / k, (y - oy) / k
}
