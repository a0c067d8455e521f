/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log sets up the process-wide slog logger. Console records are
// one compact line tagged with their component; the optional file sink
// writes JSON and is rotated by lumberjack. The scene being drawn can
// travel on a context and is attached to every record logged with it.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"prairiedraw/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Rotation defaults for the file sink.
const (
	DefaultMaxSizeMB  = 10
	DefaultMaxBackups = 3
)

// Options controls logger initialization. FromEnv fills it from the
// PD_LOG_* variables.
type Options struct {
	Level     string // debug, info, warn or error; slog offsets like "warn+2" work too
	Format    string // "console" or "json"
	AddSource bool
	File      string // enables the rotated JSON sink
	// MaxSizeMB and MaxBackups tune rotation of File; zero picks the defaults.
	MaxSizeMB  int
	MaxBackups int
	// Out receives console records. Nil means stderr.
	Out io.Writer
}

var (
	rootMu sync.RWMutex
	root   *slog.Logger
)

// L returns the application logger, initializing it from the environment
// on first use.
func L() *slog.Logger {
	rootMu.RLock()
	l := root
	rootMu.RUnlock()
	if l != nil {
		return l
	}
	Init(FromEnv())
	rootMu.RLock()
	defer rootMu.RUnlock()
	return root
}

// Init installs a logger built from opts as both L() and slog.Default.
func Init(opts Options) {
	l := New(opts)
	rootMu.Lock()
	root = l
	rootMu.Unlock()
	slog.SetDefault(l)
}

// New builds a logger from opts without installing it.
func New(opts Options) *slog.Logger {
	lvl := ParseLevel(opts.Level)
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}

	var sinks fanout
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		sinks = append(sinks, slog.NewJSONHandler(out, ho))
	} else {
		sinks = append(sinks, &console{w: out, mu: &sync.Mutex{}, level: lvl, source: opts.AddSource})
	}
	if w := rotator(opts); w != nil {
		sinks = append(sinks, slog.NewJSONHandler(w, ho))
	}

	var h slog.Handler = sinks
	if len(sinks) == 1 {
		h = sinks[0]
	}
	return slog.New(sceneHandler{next: h}).With(
		slog.String("app", "prairiedraw"),
		slog.String("ver", version.Version),
	)
}

// rotator returns the file writer for opts, or nil when no file is set.
func rotator(opts Options) *lj.Logger {
	path := strings.TrimSpace(opts.File)
	if path == "" {
		return nil
	}
	size, keep := opts.MaxSizeMB, opts.MaxBackups
	if size <= 0 {
		size = DefaultMaxSizeMB
	}
	if keep <= 0 {
		keep = DefaultMaxBackups
	}
	return &lj.Logger{Filename: path, MaxSize: size, MaxBackups: keep, MaxAge: 28, Compress: true}
}

// FromEnv builds Options from PD_LOG_LEVEL, PD_LOG_FORMAT, PD_LOG_SOURCE,
// PD_LOG_FILE, PD_LOG_MAX_SIZE_MB and PD_LOG_MAX_BACKUPS.
func FromEnv() Options {
	o := Options{
		Level:     os.Getenv("PD_LOG_LEVEL"),
		Format:    os.Getenv("PD_LOG_FORMAT"),
		AddSource: strings.EqualFold(os.Getenv("PD_LOG_SOURCE"), "true"),
		File:      os.Getenv("PD_LOG_FILE"),
	}
	if n, err := strconv.Atoi(os.Getenv("PD_LOG_MAX_SIZE_MB")); err == nil {
		o.MaxSizeMB = n
	}
	if n, err := strconv.Atoi(os.Getenv("PD_LOG_MAX_BACKUPS")); err == nil {
		o.MaxBackups = n
	}
	return o
}

// ParseLevel maps a level name to a slog.Level. Unknown names mean info.
func ParseLevel(s string) slog.Level {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "warning") {
		return slog.LevelWarn
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// WithComponent returns a logger tagged with the subsystem name.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

// WithScene tags records with the scene being drawn.
func WithScene(l *slog.Logger, scene string) *slog.Logger { return l.With(slog.String("scene", scene)) }

type sceneKey struct{}

// ContextWithScene returns ctx carrying scene. Records logged through the
// *Context methods with it get a scene attribute.
func ContextWithScene(ctx context.Context, scene string) context.Context {
	return context.WithValue(ctx, sceneKey{}, scene)
}

// SceneFrom reports the scene stored by ContextWithScene.
func SceneFrom(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	s, ok := ctx.Value(sceneKey{}).(string)
	return s, ok && s != ""
}

// sceneHandler copies the context scene onto each record.
type sceneHandler struct {
	next  slog.Handler
	fixed bool // a scene attr was already bound with With
}

func (h sceneHandler) Enabled(ctx context.Context, l slog.Level) bool {
	return h.next.Enabled(ctx, l)
}

func (h sceneHandler) Handle(ctx context.Context, r slog.Record) error {
	if s, ok := SceneFrom(ctx); ok && !h.fixed {
		r = r.Clone()
		r.AddAttrs(slog.String("scene", s))
	}
	return h.next.Handle(ctx, r)
}

func (h sceneHandler) WithAttrs(as []slog.Attr) slog.Handler {
	fixed := h.fixed
	for _, a := range as {
		fixed = fixed || a.Key == "scene"
	}
	return sceneHandler{next: h.next.WithAttrs(as), fixed: fixed}
}

func (h sceneHandler) WithGroup(name string) slog.Handler {
	return sceneHandler{next: h.next.WithGroup(name), fixed: h.fixed}
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var first error
	for _, h := range f {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func (f fanout) WithAttrs(as []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(as)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// console writes "15:04:05.000 INF [component] msg key=val ..." lines.
type console struct {
	w      io.Writer
	mu     *sync.Mutex
	level  slog.Level
	source bool

	component string
	prefix    string // open groups joined with dots
	attrs     []byte // preformatted " key=val" pairs
}

func (c *console) Enabled(_ context.Context, l slog.Level) bool { return l >= c.level }

func (c *console) Handle(_ context.Context, r slog.Record) error {
	b := make([]byte, 0, 160)
	if !r.Time.IsZero() {
		b = r.Time.AppendFormat(b, "15:04:05.000")
		b = append(b, ' ')
	}
	b = append(b, levelTag(r.Level)...)
	comp := c.component
	tail := append([]byte(nil), c.attrs...)
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "component" && c.prefix == "" {
			comp = a.Value.String()
			return true
		}
		tail = appendAttr(tail, c.prefix, a)
		return true
	})
	if comp != "" {
		b = append(b, " ["...)
		b = append(b, comp...)
		b = append(b, ']')
	}
	if r.Message != "" {
		b = append(b, ' ')
		b = append(b, r.Message...)
	}
	b = append(b, tail...)
	if c.source && r.PC != 0 {
		f, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		b = append(b, " src="...)
		b = append(b, filepath.Base(f.File)...)
		b = append(b, ':')
		b = strconv.AppendInt(b, int64(f.Line), 10)
	}
	b = append(b, '\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := c.w.Write(b)
	return err
}

func (c *console) WithAttrs(as []slog.Attr) slog.Handler {
	n := *c
	n.attrs = append([]byte(nil), c.attrs...)
	for _, a := range as {
		if a.Key == "component" && c.prefix == "" {
			n.component = a.Value.String()
			continue
		}
		n.attrs = appendAttr(n.attrs, c.prefix, a)
	}
	return &n
}

func (c *console) WithGroup(name string) slog.Handler {
	if name == "" {
		return c
	}
	n := *c
	n.prefix = c.prefix + name + "."
	return &n
}

func appendAttr(b []byte, prefix string, a slog.Attr) []byte {
	v := a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return b
	}
	if v.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p += a.Key + "."
		}
		for _, g := range v.Group() {
			b = appendAttr(b, p, g)
		}
		return b
	}
	b = append(b, ' ')
	b = append(b, prefix...)
	b = append(b, a.Key...)
	b = append(b, '=')
	s := v.String()
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return strconv.AppendQuote(b, s)
	}
	return append(b, s...)
}

func levelTag(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DBG"
	case l < slog.LevelWarn:
		return "INF"
	case l < slog.LevelError:
		return "WRN"
	default:
		return "ERR"
	}
}
