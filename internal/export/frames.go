/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Manifest describes a frame archive. It is stored as frames.yaml next to
// the images.
type Manifest struct {
	Scene  string   `yaml:"scene"`
	Width  int      `yaml:"width"`
	Height int      `yaml:"height"`
	FPS    int      `yaml:"fps"`
	Frames []string `yaml:"frames"`
}

// FrameArchive packs PNG frames into a ZIP file.
type FrameArchive struct {
	zw  *zip.Writer
	f   *os.File
	buf bytes.Buffer
	pad int
	man Manifest
}

// CreateFrameArchive opens path (".zip" is appended when missing). total
// sizes the zero padding of frame names.
func CreateFrameArchive(path string, total int, man Manifest) (*FrameArchive, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".zip") {
		path += ".zip"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create archive: %w", err)
	}
	man.Frames = nil
	return &FrameArchive{zw: zip.NewWriter(f), f: f, pad: padWidth(total), man: man}, nil
}

func padWidth(n int) int {
	switch {
	case n >= 1000:
		return 4
	case n >= 100:
		return 3
	case n >= 10:
		return 2
	}
	return 1
}

// Add encodes img as the next frame.
func (a *FrameArchive) Add(img image.Image) error {
	a.buf.Reset()
	if err := png.Encode(&a.buf, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	name := fmt.Sprintf("%0*d.png", a.pad, len(a.man.Frames)+1)
	if err := addZipFile(a.zw, name, a.buf.Bytes()); err != nil {
		return fmt.Errorf("zip add frame: %w", err)
	}
	a.man.Frames = append(a.man.Frames, name)
	return nil
}

// Close writes the manifest and finishes the file.
func (a *FrameArchive) Close() error {
	defer func() { _ = a.f.Close() }()
	data, err := yaml.Marshal(a.man)
	if err != nil {
		return fmt.Errorf("build manifest: %w", err)
	}
	if err := addZipFile(a.zw, "frames.yaml", data); err != nil {
		return fmt.Errorf("zip add manifest: %w", err)
	}
	if err := a.zw.Close(); err != nil {
		return fmt.Errorf("close zip: %w", err)
	}
	return nil
}

func addZipFile(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// ReadManifest loads frames.yaml from an archive.
func ReadManifest(path string) (Manifest, error) {
	var man Manifest
	zr, err := zip.OpenReader(path)
	if err != nil {
		return man, fmt.Errorf("open archive: %w", err)
	}
	defer func() { _ = zr.Close() }()
	for _, f := range zr.File {
		if f.Name != "frames.yaml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return man, fmt.Errorf("open manifest: %w", err)
		}
		defer func() { _ = rc.Close() }()
		if err := yaml.NewDecoder(rc).Decode(&man); err != nil {
			return man, fmt.Errorf("decode manifest: %w", err)
		}
		return man, nil
	}
	return man, fmt.Errorf("archive %s has no manifest", path)
}
