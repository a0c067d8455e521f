/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package telemetry reports opt-in usage of the drawing tools: finished
// renders, interactive sessions and images that failed to load. Events are
// queued, batched and posted as JSON; nothing is sent unless the user opted
// in and an endpoint is configured.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	applog "prairiedraw/internal/log"
	"prairiedraw/internal/version"
)

// Config selects endpoints and batching. FromEnv reads
// PD_TELEMETRY_OPT_IN, PD_TELEMETRY_URL, PD_CRASH_UPLOAD_URL,
// PD_TELEMETRY_TIMEOUT_MS, PD_TELEMETRY_BATCH and PD_TELEMETRY_DEBUG.
type Config struct {
	OptIn     bool
	EventsURL string
	CrashURL  string
	Timeout   time.Duration
	// BatchSize events are posted together; 1 posts each event at once.
	BatchSize int
	// Interval bounds how long a partial batch waits.
	Interval time.Duration
	Debug    bool
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = 1500 * time.Millisecond
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 8
	}
	if c.Interval <= 0 {
		c.Interval = 2 * time.Second
	}
	return c
}

func FromEnv() Config {
	env := func(k string) string { return strings.TrimSpace(os.Getenv(k)) }
	cfg := Config{
		OptIn:     truthy(env("PD_TELEMETRY_OPT_IN")),
		EventsURL: env("PD_TELEMETRY_URL"),
		CrashURL:  env("PD_CRASH_UPLOAD_URL"),
		Debug:     env("PD_TELEMETRY_DEBUG") != "",
	}
	if ms, err := strconv.Atoi(env("PD_TELEMETRY_TIMEOUT_MS")); err == nil && ms > 0 {
		cfg.Timeout = time.Duration(ms) * time.Millisecond
	}
	if n, err := strconv.Atoi(env("PD_TELEMETRY_BATCH")); err == nil {
		cfg.BatchSize = n
	}
	return cfg.withDefaults()
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Event is one usage record. Attrs must not carry paths or user text.
type Event struct {
	Name  string         `json:"name"`
	TS    time.Time      `json:"ts"`
	Scene string         `json:"scene,omitempty"`
	Attrs map[string]any `json:"attrs,omitempty"`
}

// Batch is the body of one events POST.
type Batch struct {
	App     string  `json:"app"`
	Version string  `json:"version"`
	OS      string  `json:"os"`
	Arch    string  `json:"arch"`
	Events  []Event `json:"events"`
}

// RenderStats describes a finished headless render.
type RenderStats struct {
	Scene         string
	Frames        int
	FPS           int
	Width, Height int
	Formats       []string
	Took          time.Duration
	MissingImages int
}

// SessionStats describes an interactive session that ended: host is
// "preview" or "ui".
type SessionStats struct {
	Host     string
	Scene    string
	Frames   uint64
	Duration time.Duration
}

// Client queues events and posts them from one goroutine. A nil or
// disabled client drops everything.
type Client struct {
	cfg  Config
	log  *slog.Logger
	http *http.Client
	now  func() time.Time

	q       chan Event
	flushes chan chan struct{}
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
}

// New starts a client. The sender goroutine runs until Close.
func New(cfg Config) *Client {
	cfg = cfg.withDefaults()
	c := &Client{
		cfg:     cfg,
		log:     applog.WithComponent("telemetry"),
		http:    &http.Client{Timeout: cfg.Timeout},
		now:     time.Now,
		q:       make(chan Event, 128),
		flushes: make(chan chan struct{}),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Emit queues an event. It never blocks; a full queue drops the event.
func (c *Client) Emit(name, scene string, attrs map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	e := Event{Name: name, TS: c.now().UTC(), Scene: scene, Attrs: attrs}
	select {
	case c.q <- e:
	default:
		c.debug("queue full, event dropped", slog.String("event", name))
	}
}

func (c *Client) Render(s RenderStats) {
	c.Emit("render", s.Scene, map[string]any{
		"frames":  s.Frames,
		"fps":     s.FPS,
		"size":    fmt.Sprintf("%dx%d", s.Width, s.Height),
		"formats": strings.Join(s.Formats, ","),
		"ms":      s.Took.Milliseconds(),
	})
	if s.MissingImages > 0 {
		c.AssetFailures(s.Scene, s.MissingImages)
	}
}

func (c *Client) Session(s SessionStats) {
	attrs := map[string]any{"host": s.Host, "frames": s.Frames, "seconds": s.Duration.Round(time.Second).Seconds()}
	if secs := s.Duration.Seconds(); secs > 0 {
		attrs["fps"] = float64(s.Frames) / secs
	}
	c.Emit("session", s.Scene, attrs)
}

// AssetFailures reports how many images a scene could not load.
func (c *Client) AssetFailures(scene string, n int) {
	if n > 0 {
		c.Emit("asset_failed", scene, map[string]any{"count": n})
	}
}

// Flush posts whatever is queued and waits for it, or for ctx.
func (c *Client) Flush(ctx context.Context) {
	if !c.Enabled() {
		return
	}
	ack := make(chan struct{})
	select {
	case c.flushes <- ack:
	case <-c.done:
		return
	case <-ctx.Done():
		return
	}
	select {
	case <-ack:
	case <-ctx.Done():
	}
}

// Close sends what is left and stops the sender.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.once.Do(func() { close(c.quit) })
	<-c.done
}

func (c *Client) run() {
	defer close(c.done)
	tk := time.NewTicker(c.cfg.Interval)
	defer tk.Stop()
	var pending []Event
	drain := func() {
		for {
			select {
			case e := <-c.q:
				pending = append(pending, e)
			default:
				return
			}
		}
	}
	send := func() {
		if len(pending) > 0 {
			c.post(pending)
			pending = nil
		}
	}
	for {
		select {
		case e := <-c.q:
			pending = append(pending, e)
			if len(pending) >= c.cfg.BatchSize {
				send()
			}
		case <-tk.C:
			send()
		case ack := <-c.flushes:
			drain()
			send()
			close(ack)
		case <-c.quit:
			drain()
			send()
			return
		}
	}
}

func (c *Client) post(events []Event) {
	body, err := json.Marshal(Batch{
		App:     "prairiedraw",
		Version: version.String(),
		OS:      runtime.GOOS,
		Arch:    runtime.GOARCH,
		Events:  events,
	})
	if err != nil {
		c.debug("encode batch", slog.Any("err", err))
		return
	}
	c.postTo(c.cfg.EventsURL, "application/json", body, len(events))
}

func (c *Client) postTo(url, contentType string, body []byte, n int) {
	resp, err := c.http.Post(url, contentType, bytes.NewReader(body))
	if err != nil {
		c.debug("post failed", slog.Int("events", n), slog.Any("err", err))
		return
	}
	_ = resp.Body.Close()
	if resp.StatusCode >= 300 {
		c.debug("post rejected", slog.Int("status", resp.StatusCode))
		return
	}
	c.debug("posted", slog.Int("events", n))
}

func (c *Client) debug(msg string, attrs ...any) {
	if c.cfg.Debug {
		c.log.Debug(msg, attrs...)
	}
}

// UploadCrash posts a crash report in the background when crash uploads
// are opted into.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	b := append([]byte(nil), report...)
	go c.postTo(c.cfg.CrashURL, "text/plain; charset=utf-8", b, 0)
}

var (
	defMu  sync.Mutex
	defCli *Client
)

// SetDefault installs c for the package functions and returns the client
// it replaced.
func SetDefault(c *Client) *Client {
	defMu.Lock()
	defer defMu.Unlock()
	old := defCli
	defCli = c
	return old
}

// Default returns the installed client, nil when telemetry is off.
func Default() *Client {
	defMu.Lock()
	defer defMu.Unlock()
	return defCli
}

func Enabled() bool { return Default().Enabled() }
func Render(s RenderStats) { Default().Render(s) }
func Session(s SessionStats) { Default().Session(s) }
func AssetFailures(scene string, n int) { Default().AssetFailures(scene, n) }
func UploadCrash(report []byte) { Default().UploadCrash(report) }
