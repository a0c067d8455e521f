/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package assets loads images in the background and serves them without
// blocking: a miss starts a load and reports false, and subscribers hear
// when the image lands.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	applog "prairiedraw/internal/log"
)

// State of a cache entry.
type State int

const (
	Missing State = iota
	Pending
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "missing"
}

// ErrOutsideRoot is returned for keys that escape the loader directory.
var ErrOutsideRoot = errors.New("asset path outside root")

// Loader fetches and decodes one image.
type Loader interface {
	Load(ctx context.Context, key string) (image.Image, error)
}

// FileLoader reads PNG or JPEG files below Root.
type FileLoader struct {
	Root string
}

func (l FileLoader) Load(ctx context.Context, key string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return nil, fmt.Errorf("%w: %s", ErrOutsideRoot, key)
	}
	f, err := os.Open(filepath.Join(l.Root, clean))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", key, err)
	}
	defer func() { _ = f.Close() }()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return img, nil
}

type entry struct {
	state State
	img   image.Image
	err   error
}

// Cache is safe for concurrent use. Subscribers run on the loading
// goroutine; hosts hand the notification over to their draw loop.
type Cache struct {
	loader Loader
	log    *slog.Logger
	ctx    context.Context

	mu      sync.Mutex
	entries map[string]*entry
	subs    []func(key string, err error)

	group    singleflight.Group
	inflight sync.WaitGroup
}

// NewCache loads through l. Loads started by the cache use ctx.
func NewCache(ctx context.Context, l Loader) *Cache {
	return &Cache{
		loader:  l,
		log:     applog.WithComponent("assets"),
		ctx:     ctx,
		entries: make(map[string]*entry),
	}
}

// Subscribe adds a completion listener; err is nil on success.
func (c *Cache) Subscribe(fn func(key string, err error)) {
	c.mu.Lock()
	c.subs = append(c.subs, fn)
	c.mu.Unlock()
}

// Image returns the image for key if it is loaded. Otherwise it starts a
// load unless one is pending or has failed, and returns false.
func (c *Cache) Image(key string) (image.Image, bool) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if ok {
		c.mu.Unlock()
		return e.img, e.state == Ready
	}
	c.entries[key] = &entry{state: Pending}
	c.inflight.Add(1)
	c.mu.Unlock()
	go c.load(key)
	return nil, false
}

func (c *Cache) load(key string) {
	defer c.inflight.Done()
	v, err, _ := c.group.Do(key, func() (any, error) {
		return c.loader.Load(c.ctx, key)
	})
	c.mu.Lock()
	e := c.entries[key]
	if err != nil {
		e.state, e.err = Failed, err
	} else {
		e.state, e.img = Ready, v.(image.Image)
	}
	subs := append([]func(string, error){}, c.subs...)
	c.mu.Unlock()
	if err != nil {
		c.log.Warn("asset load failed", slog.String("key", key), slog.Any("err", err))
	} else {
		c.log.Debug("asset loaded", slog.String("key", key))
	}
	for _, fn := range subs {
		fn(key, err)
	}
}

// State reports the entry state for key.
func (c *Cache) State(key string) State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.state
	}
	return Missing
}

// Err returns the load error of a failed entry.
func (c *Cache) Err(key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.err
	}
	return nil
}

// Retry forgets a failed entry so the next Image call loads it again.
func (c *Cache) Retry(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && e.state == Failed {
		delete(c.entries, key)
	}
}

// Preload starts loads for keys.
func (c *Cache) Preload(keys ...string) {
	for _, k := range keys {
		c.Image(k)
	}
}

// Wait blocks until no load is pending or ctx ends.
func (c *Cache) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		c.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Failed lists keys whose load failed.
func (c *Cache) Failed() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for k, e := range c.entries {
		if e.state == Failed {
			out = append(out, k)
		}
	}
	return out
}
