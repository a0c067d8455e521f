/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package texgen pre-renders the "TEX:" labels found in scene sources into
// PNG images named by the drawer's TeX key, using pdflatex and ImageMagick.
package texgen

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"prairiedraw/internal/draw"
	applog "prairiedraw/internal/log"
)

// texLiteral is greedy on purpose: a line holds at most one label.
var texLiteral = regexp.MustCompile(`"` + draw.TeXPrefix + `(.*)"`)

// Unescape resolves backslash escapes as written in a Go or JS string
// literal. Unknown escapes are dropped and a trailing backslash ends the text.
func Unescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' {
			b.WriteByte(s[i])
			continue
		}
		if i == len(s)-1 {
			break
		}
		i++
		switch s[i] {
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '\'', '"', '\\':
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// Scan returns the unescaped TeX sources found in r, in order.
func Scan(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if m := texLiteral.FindStringSubmatch(sc.Text()); m != nil {
			out = append(out, Unescape(m[1]))
		}
	}
	return out, sc.Err()
}

// ScanFiles scans every file and concatenates the results.
func ScanFiles(paths ...string) ([]string, error) {
	var out []string
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			return nil, err
		}
		texts, err := Scan(f)
		_ = f.Close()
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
		out = append(out, texts...)
	}
	return out, nil
}

// Runner executes an external tool inside dir.
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) error
}

// ExecRunner runs tools with os/exec, capturing their output into the error.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w\n%s", name, err, tail(out, 800))
	}
	return nil
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}

// Generator renders TeX labels into Dir.
type Generator struct {
	Dir    string
	Runner Runner
	// Jobs bounds concurrent pdflatex runs; 0 means 4.
	Jobs int
	// Density is the convert resolution in dpi; 0 means 96.
	Density int
}

// Result lists keys by outcome.
type Result struct {
	Rendered []string
	Skipped  []string
}

// Base returns the file stem used for tex: the hex SHA-1 of the source.
func Base(tex string) string { return strings.TrimSuffix(draw.TeXKey(tex), ".png") }

// Source is the LaTeX document wrapped around a label.
func Source(tex string) string {
	return "\\documentclass[12pt]{article}\n" +
		"\\usepackage{amsmath,amsthm,amssymb}\n" +
		"\\begin{document}\n" +
		"\\thispagestyle{empty}\n" +
		tex + "\n" +
		"\\end{document}\n"
}

// Generate renders every distinct label whose PNG does not exist yet.
func (g *Generator) Generate(ctx context.Context, texts []string) (Result, error) {
	l := applog.WithOperation(applog.WithComponent("texgen"), "generate")
	var res Result
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return res, fmt.Errorf("create text dir: %w", err)
	}
	runner := g.Runner
	if runner == nil {
		runner = ExecRunner{}
	}
	jobs := g.Jobs
	if jobs <= 0 {
		jobs = 4
	}
	density := g.Density
	if density <= 0 {
		density = 96
	}

	seen := map[string]bool{}
	var todo []string
	for _, t := range texts {
		base := Base(t)
		if seen[base] {
			continue
		}
		seen[base] = true
		if _, err := os.Stat(filepath.Join(g.Dir, base+".png")); err == nil {
			res.Skipped = append(res.Skipped, base)
			continue
		}
		todo = append(todo, t)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(jobs)
	done := make([]bool, len(todo))
	for i, t := range todo {
		eg.Go(func() error {
			base := Base(t)
			l.Info("rendering", slog.String("key", base), slog.String("tex", t))
			if err := os.WriteFile(filepath.Join(g.Dir, base+".tex"), []byte(Source(t)), 0o644); err != nil {
				return fmt.Errorf("write tex: %w", err)
			}
			if err := runner.Run(ctx, g.Dir, "pdflatex", "-interaction=nonstopmode", base+".tex"); err != nil {
				return err
			}
			if err := runner.Run(ctx, g.Dir, "convert", "-density", fmt.Sprint(density),
				base+".pdf", "-trim", "+repage", base+".png"); err != nil {
				return err
			}
			done[i] = true
			return nil
		})
	}
	err := eg.Wait()
	for i, ok := range done {
		if ok {
			res.Rendered = append(res.Rendered, Base(todo[i]))
		}
	}
	return res, err
}
