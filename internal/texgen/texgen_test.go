/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package texgen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"prairiedraw/internal/draw"
)

func TestUnescape(t *testing.T) {
	cases := map[string]string{
		`$\\theta$`:  `$\theta$`,
		`a\"b\'c`:    `a"b'c`,
		`x\ny`:       "x\ny",
		`bad\qend`:   "badend",
		`trailing\\`: `trailing\`,
		`cut\`:       "cut",
	}
	for in, want := range cases {
		if got := Unescape(in); got != want {
			t.Fatalf("Unescape(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScanFindsOneLabelPerLine(t *testing.T) {
	src := `d.Text(p, a, "TEX:$\\omega$", false)
d.Text(p, a, "plain", false)
label := "TEX:$x_1$" // keep
`
	got, err := Scan(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(got) != 2 || got[0] != `$\omega$` || got[1] != `$x_1$` {
		t.Fatalf("Scan = %q", got)
	}
}

type fakeRunner struct {
	mu    sync.Mutex
	calls []string
	fail  string
}

func (f *fakeRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
	if name == f.fail {
		return errors.New(name + " failed")
	}
	if name == "convert" {
		return os.WriteFile(filepath.Join(dir, args[len(args)-1]), []byte("png"), 0o644)
	}
	return nil
}

func TestGenerateRendersOncePerLabel(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{}
	g := &Generator{Dir: dir, Runner: r, Jobs: 2}
	res, err := g.Generate(context.Background(), []string{"$a$", "$b$", "$a$"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(res.Rendered) != 2 || len(res.Skipped) != 0 || len(r.calls) != 4 {
		t.Fatalf("res = %+v calls = %v", res, r.calls)
	}
	tex, err := os.ReadFile(filepath.Join(dir, Base("$a$")+".tex"))
	if err != nil || !strings.Contains(string(tex), "\\thispagestyle{empty}\n$a$\n\\end{document}") {
		t.Fatalf("tex source = %q (%v)", tex, err)
	}
	// the drawer looks up the same name
	if _, err := os.Stat(filepath.Join(dir, draw.TeXKey("$b$"))); err != nil {
		t.Fatalf("png missing under drawer key: %v", err)
	}

	// second run finds the images and skips them
	r2 := &fakeRunner{}
	g.Runner = r2
	res, err = g.Generate(context.Background(), []string{"$a$", "$b$"})
	if err != nil || len(res.Skipped) != 2 || len(r2.calls) != 0 {
		t.Fatalf("rerun res = %+v calls = %v err = %v", res, r2.calls, err)
	}
}

func TestGenerateReportsToolFailure(t *testing.T) {
	g := &Generator{Dir: t.TempDir(), Runner: &fakeRunner{fail: "pdflatex"}}
	res, err := g.Generate(context.Background(), []string{"$z$"})
	if err == nil || !strings.Contains(err.Error(), "pdflatex") {
		t.Fatalf("expected pdflatex failure, got %v", err)
	}
	if len(res.Rendered) != 0 {
		t.Fatalf("nothing should be rendered: %+v", res)
	}
}

func TestScanFiles(t *testing.T) {
	p := filepath.Join(t.TempDir(), "scene.go")
	if err := os.WriteFile(p, []byte(`x := "TEX:$\\alpha$"`+"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := ScanFiles(p)
	if err != nil || len(got) != 1 || got[0] != `$\alpha$` {
		t.Fatalf("ScanFiles = %q, %v", got, err)
	}
	if _, err := ScanFiles(filepath.Join(t.TempDir(), "missing.go")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
