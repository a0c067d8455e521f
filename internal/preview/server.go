/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package preview

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"prairiedraw/internal/anim"
	"prairiedraw/internal/crash"
	"prairiedraw/internal/draw"
	"prairiedraw/internal/export"
	"prairiedraw/internal/interact"
	applog "prairiedraw/internal/log"
	"prairiedraw/internal/options"
	"prairiedraw/internal/telemetry"
	"prairiedraw/internal/vector"
	"prairiedraw/internal/version"
)

// ErrStopped is returned by requests that arrive after the loop exited.
var ErrStopped = errors.New("preview: loop stopped")

// Server owns one animated scene drawn to a raster.
type Server struct {
	cfg    Config
	scene  export.Scene
	secret []byte
	log    *slog.Logger

	// loop goroutine only
	raster  *export.Raster
	anim    *anim.Animator
	frames  *anim.ManualFrames
	handler interact.Handler
	lastT   float64

	calls   chan func()
	images  chan struct{}
	stopped chan struct{}
	started atomic.Bool
	seq     atomic.Uint64
	hub     *hub
}

// New builds the scene animator. secret signs viewer tokens and must be set
// when cfg.Auth is on.
func New(cfg Config, sc export.Scene, secret string, opts ...draw.Option) (*Server, error) {
	cfg = cfg.withDefaults()
	if cfg.Auth && secret == "" {
		return nil, ErrNoSecret
	}
	l := applog.WithScene(applog.WithComponent("preview"), sc.Name)
	s := &Server{
		cfg:     cfg,
		scene:   sc,
		secret:  []byte(secret),
		log:     l,
		raster:  export.NewRaster(cfg.Width, cfg.Height),
		frames:  &anim.ManualFrames{},
		calls:   make(chan func()),
		images:  make(chan struct{}, 1),
		stopped: make(chan struct{}),
		hub:     newHub(l),
	}
	s.anim = anim.New(s.raster, s.paint, s.frames, opts...)
	s.anim.OnImagesLoaded(func() {
		select {
		case s.images <- struct{}{}:
		default:
		}
	})
	if sc.Setup != nil {
		sc.Setup(s.anim)
	}
	if sc.Interact != nil {
		s.handler = sc.Interact(s.anim)
	}
	s.anim.Redraw()
	return s, nil
}

func (s *Server) paint(d *draw.Drawer, t float64) {
	s.raster.Clear(vector.White)
	if s.scene.Draw != nil {
		s.scene.Draw(d, t)
	}
	s.lastT = t
	s.hub.broadcast(&Message{Type: "frame", Seq: s.seq.Add(1), T: t})
}

// Start runs the loop goroutine until ctx is done. It is a no-op when
// already started.
func (s *Server) Start(ctx context.Context) {
	if s.started.Swap(true) {
		return
	}
	go s.loop(ctx)
}

func (s *Server) loop(ctx context.Context) {
	defer close(s.stopped)
	defer crash.Recover(&crash.Context{Scene: s.scene.Name})
	tk := time.NewTicker(time.Second / time.Duration(s.cfg.FPS))
	defer tk.Stop()
	start := time.Now()
	s.log.Debug("loop started", slog.Int("fps", s.cfg.FPS))
	for {
		select {
		case <-ctx.Done():
			s.anim.Stop()
			telemetry.Session(telemetry.SessionStats{
				Host: "preview", Scene: s.scene.Name, Frames: s.seq.Load(), Duration: time.Since(start),
			})
			return
		case fn := <-s.calls:
			fn()
		case <-s.images:
			s.anim.FlushImages()
		case now := <-tk.C:
			if s.frames.Pending() > 0 {
				s.frames.Advance(float64(now.Sub(start)) / float64(time.Millisecond))
			}
		}
	}
}

// do runs fn on the loop goroutine and waits for it.
func (s *Server) do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	select {
	case s.calls <- func() { fn(); close(done) }:
	case <-ctx.Done():
		return ctx.Err()
	case <-s.stopped:
		return ErrStopped
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	r.HandleFunc("/frame.png", s.withAuth(s.framePNG)).Methods(http.MethodGet)
	r.HandleFunc("/options", s.withAuth(s.getOptions)).Methods(http.MethodGet)
	r.HandleFunc("/options", s.withAuth(s.setOptions)).Methods(http.MethodPost)
	r.HandleFunc("/control/{action}", s.withAuth(s.control)).Methods(http.MethodPost)
	r.HandleFunc("/ws", s.withAuth(s.websocket))
	return r
}

// Run starts the loop and serves HTTP on cfg.Addr until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	s.Start(ctx)
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	s.log.Info("preview listening", slog.String("addr", s.cfg.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("preview server: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"scene":   s.scene.Name,
		"version": version.Version,
		"clients": s.hub.count(),
	})
}

func (s *Server) framePNG(w http.ResponseWriter, r *http.Request) {
	var (
		buf bytes.Buffer
		err error
	)
	if derr := s.do(r.Context(), func() { err = s.raster.WritePNG(&buf) }); derr != nil {
		writeError(w, http.StatusServiceUnavailable, derr)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// optionValues snapshots every option that has a value. Loop goroutine only.
func (s *Server) optionValues() map[string]any {
	st := s.anim.Options()
	out := map[string]any{}
	for _, name := range st.Names() {
		if v, err := st.Get(name); err == nil {
			out[name] = v
		}
	}
	return out
}

func (s *Server) getOptions(w http.ResponseWriter, r *http.Request) {
	var vals map[string]any
	if err := s.do(r.Context(), func() { vals = s.optionValues() }); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, vals)
}

// coerce converts a JSON value to the type of the current option value.
func coerce(cur, v any) any {
	f, isNum := v.(float64)
	switch cur.(type) {
	case int:
		if isNum {
			return int(f)
		}
	case float64:
		if isNum {
			return f
		}
	}
	return v
}

// applyOptions sets each named option, in name order. Loop goroutine only.
func (s *Server) applyOptions(in map[string]any) error {
	st := s.anim.Options()
	names := make([]string, 0, len(in))
	for n := range in {
		names = append(names, n)
	}
	sort.Strings(names)
	var errs []error
	for _, n := range names {
		cur, _ := st.Get(n)
		if err := st.Set(n, coerce(cur, in[n]), st.TriggersRedraw(n), "preview", false); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Server) setOptions(w http.ResponseWriter, r *http.Request) {
	var in map[string]any
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode options: %w", err))
		return
	}
	var (
		vals   map[string]any
		setErr error
	)
	if err := s.do(r.Context(), func() {
		setErr = s.applyOptions(in)
		vals = s.optionValues()
	}); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if setErr != nil {
		status := http.StatusBadRequest
		if errors.Is(setErr, options.ErrUnknownOption) {
			status = http.StatusNotFound
		}
		writeError(w, status, setErr)
		return
	}
	s.hub.broadcast(&Message{Type: "options", Values: vals})
	writeJSON(w, http.StatusOK, vals)
}

var errUnknownAction = errors.New("unknown action")

// runControl performs a start/stop/toggle/reset. Loop goroutine only.
func (s *Server) runControl(action string) error {
	switch action {
	case "start":
		s.anim.Start()
	case "stop":
		s.anim.Stop()
	case "toggle":
		s.anim.Toggle()
	case "reset":
		s.anim.Reset()
	default:
		return fmt.Errorf("%w: %q", errUnknownAction, action)
	}
	return nil
}

func (s *Server) control(w http.ResponseWriter, r *http.Request) {
	action := mux.Vars(r)["action"]
	var (
		running bool
		cerr    error
	)
	if err := s.do(r.Context(), func() {
		cerr = s.runControl(action)
		running = s.anim.Running()
	}); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	if cerr != nil {
		writeError(w, http.StatusBadRequest, cerr)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"running": running})
}

// dispatch handles one client message on the loop goroutine.
func (s *Server) dispatch(c *client, m *Message) {
	var err error
	switch m.Type {
	case "pointer":
		var k interact.Kind
		if k, err = interact.ParseKind(m.Kind); err == nil && s.handler != nil {
			s.handler.Handle(interact.Event{Kind: k, X: m.X, Y: m.Y})
		}
	case "option":
		err = s.applyOptions(map[string]any{m.Name: m.Value})
	case "control":
		err = s.runControl(m.Action)
	default:
		err = fmt.Errorf("unknown message type %q", m.Type)
	}
	if err != nil {
		c.push(&Message{Type: "error", Error: err.Error()})
	}
}

func (s *Server) websocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: s.cfg.Origins})
	if err != nil {
		s.log.Warn("websocket accept", slog.Any("err", err))
		return
	}
	c := &client{id: uuid.New().String(), conn: conn, send: make(chan []byte, 64), hub: s.hub}
	c.log = s.log.With(slog.String("client", c.id))
	s.hub.add(c)
	defer func() {
		s.hub.remove(c)
		conn.Close(websocket.StatusNormalClosure, "")
	}()
	c.push(&Message{Type: "hello", Client: c.id, Width: s.cfg.Width, Height: s.cfg.Height})

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	go c.writePump(ctx)
	c.readPump(ctx, func(m *Message) {
		if err := s.do(ctx, func() { s.dispatch(c, m) }); err != nil {
			cancel()
		}
	})
	c.log.Debug("client left")
}
