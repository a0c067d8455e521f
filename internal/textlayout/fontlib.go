/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package textlayout

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FontLibrary stores parsed OpenType fonts by family, weight and style.
type FontLibrary struct {
	mu    sync.RWMutex
	fonts map[fontKey]*opentype.Font
}

type fontKey struct {
	family string
	weight int
	italic bool
}

func NewFontLibrary() *FontLibrary { return &FontLibrary{fonts: make(map[fontKey]*opentype.Font)} }

// DefaultFamily is the family DefaultLibrary registers.
const DefaultFamily = "Go"

// DefaultLibrary holds the Go fonts, which ship with x/image, so labels
// render the same on every machine.
func DefaultLibrary() *FontLibrary {
	fl := NewFontLibrary()
	for _, f := range []struct {
		data   []byte
		weight int
		italic bool
	}{
		{goregular.TTF, 400, false},
		{gobold.TTF, 700, false},
		{goitalic.TTF, 400, true},
	} {
		// the embedded fonts always parse
		_ = fl.LoadBytes(DefaultFamily, f.weight, f.italic, f.data)
	}
	return fl
}

// LoadTTF loads a font file into the library.
func (fl *FontLibrary) LoadTTF(family string, weight int, italic bool, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read font %s: %w", path, err)
	}
	return fl.LoadBytes(family, weight, italic, data)
}

func (fl *FontLibrary) LoadBytes(family string, weight int, italic bool, data []byte) error {
	f, err := opentype.Parse(data)
	if err != nil {
		return fmt.Errorf("parse font %s: %w", family, err)
	}
	fl.mu.Lock()
	defer fl.mu.Unlock()
	if fl.fonts == nil {
		fl.fonts = make(map[fontKey]*opentype.Font)
	}
	fl.fonts[fontKey{family: family, weight: weight, italic: italic}] = f
	return nil
}

func (fl *FontLibrary) find(spec FontSpec) *opentype.Font {
	if fl == nil {
		return nil
	}
	fl.mu.RLock()
	defer fl.mu.RUnlock()
	if f, ok := fl.fonts[fontKey{family: spec.Family, weight: spec.Weight, italic: spec.Italic}]; ok {
		return f
	}
	// any face of the family before giving up
	var best *opentype.Font
	for k, f := range fl.fonts {
		if k.family != spec.Family {
			continue
		}
		if k.italic == spec.Italic {
			return f
		}
		best = f
	}
	return best
}

// OTProvider resolves specs from a FontLibrary and caches faces per
// spec. Unknown families fall back to DefaultFamily, then to Fallback.
type OTProvider struct {
	Lib      *FontLibrary
	Fallback Provider

	mu    sync.Mutex
	faces map[FontSpec]cachedFace
}

type cachedFace struct {
	face font.Face
	met  Metrics
}

func NewOTProvider(lib *FontLibrary) *OTProvider { return &OTProvider{Lib: lib} }

func (p *OTProvider) Resolve(spec FontSpec) (font.Face, Metrics) {
	if spec.SizePx <= 0 {
		spec.SizePx = 12
	}
	if spec.Weight == 0 {
		spec.Weight = 400
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.faces[spec]; ok {
		return c.face, c.met
	}
	f := p.Lib.find(spec)
	if f == nil {
		alt := spec
		alt.Family = DefaultFamily
		f = p.Lib.find(alt)
	}
	if f != nil {
		// 72 DPI makes points equal pixels
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: spec.SizePx, DPI: 72, Hinting: font.HintingFull})
		if err == nil {
			if p.faces == nil {
				p.faces = make(map[FontSpec]cachedFace)
			}
			c := cachedFace{face: face, met: metricsOf(face)}
			p.faces[spec] = c
			return c.face, c.met
		}
	}
	fb := p.Fallback
	if fb == nil {
		fb = BasicProvider{}
	}
	return fb.Resolve(spec)
}
