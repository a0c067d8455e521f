/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package props

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestApplyPresetYAML(t *testing.T) {
	p := Defaults()
	err := p.ApplyPreset([]byte("arrowLineWidthPx: 3\nshapeInsideColor: \"#eeeeee\"\nhiddenLineDraw: false\n"))
	if err != nil {
		t.Fatalf("ApplyPreset: %v", err)
	}
	if p.ArrowLineWidthPx != 3 || p.ShapeInsideColor != "#eeeeee" || p.HiddenLineDraw {
		t.Fatalf("preset not applied: %+v", p)
	}
}

func TestApplyPresetRejectsUnknownKeys(t *testing.T) {
	p := Defaults()
	err := p.ApplyPreset([]byte(`{"arrowLineWidthPx": 5, "bogus": 1}`))
	if !errors.Is(err, ErrInvalidPreset) {
		t.Fatalf("expected ErrInvalidPreset, got %v", err)
	}
	if p.ArrowLineWidthPx != 2 {
		t.Fatalf("failed preset must not change props")
	}
	if err := p.ApplyPreset([]byte("arrowLinePattern: wavy\n")); !errors.Is(err, ErrInvalidPreset) {
		t.Fatalf("expected schema error for pattern, got %v", err)
	}
}

func TestPresetRoundTripFile(t *testing.T) {
	src := Defaults()
	src.GroundSpacingPx = 14
	data, err := src.MarshalPreset()
	if err != nil {
		t.Fatalf("MarshalPreset: %v", err)
	}
	path := filepath.Join(t.TempDir(), "preset.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	dst := Defaults()
	if err := dst.LoadPresetFile(path); err != nil {
		t.Fatalf("LoadPresetFile: %v", err)
	}
	if dst.GroundSpacingPx != 14 || !math.IsInf(dst.ViewAngleYMin, -1) {
		t.Fatalf("round trip mismatch: %+v", dst)
	}
}
