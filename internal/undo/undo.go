/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package undo keeps bounded undo and redo stacks of option snapshots,
// one pair of stacks per scene.
package undo

import (
	"sync"
	"time"
)

// Snapshot is an opaque encoded state. Its size is taken as len(Blob).
type Snapshot struct {
	Scene string
	Blob  []byte
	TS    time.Time
}

// Config caps memory and depth and sets the coalescing window.
type Config struct {
	// MaxBytes is a soft cap over every scene; the oldest entries go first.
	MaxBytes int
	// MaxPerScene limits the undo depth of one scene (0 means unlimited).
	MaxPerScene int
	// MinInterval merges pushes for a scene closer together than this, so
	// dragging a value records one step.
	MinInterval time.Duration
}

// Manager is safe for concurrent use.
type Manager struct {
	cfg        Config
	mu         sync.Mutex
	undo       map[string][]Snapshot
	redo       map[string][]Snapshot
	totalBytes int
}

func NewManager(cfg Config) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 1 << 20
	}
	if cfg.MinInterval < 0 {
		cfg.MinInterval = 0
	}
	return &Manager{cfg: cfg, undo: make(map[string][]Snapshot), redo: make(map[string][]Snapshot)}
}

// Push records the state before a change. A push inside MinInterval of
// the previous one keeps the older state, since that is where undo should
// return to. Any push clears the scene's redo stack.
func (m *Manager) Push(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dropRedoLocked(s.Scene)
	stack := m.undo[s.Scene]
	if n := len(stack); n > 0 && s.TS.Sub(stack[n-1].TS) < m.cfg.MinInterval {
		stack[n-1].TS = s.TS
		return
	}
	m.undo[s.Scene] = append(stack, s)
	m.totalBytes += len(s.Blob)
	m.enforceCapsLocked(s.Scene)
}

// Undo returns the state to go back to and saves current for Redo.
func (m *Manager) Undo(scene string, current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stack := m.undo[scene]
	if len(stack) == 0 {
		return Snapshot{}, false
	}
	s := stack[len(stack)-1]
	m.undo[scene] = stack[:len(stack)-1]
	m.totalBytes -= len(s.Blob)
	m.redo[scene] = append(m.redo[scene], Snapshot{Scene: scene, Blob: current, TS: time.Now()})
	m.totalBytes += len(current)
	return s, true
}

// Redo reverses the last Undo, saving current back onto the undo stack.
func (m *Manager) Redo(scene string, current []byte) (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := m.redo[scene]
	if len(r) == 0 {
		return Snapshot{}, false
	}
	s := r[len(r)-1]
	m.redo[scene] = r[:len(r)-1]
	m.totalBytes -= len(s.Blob)
	// zero TS so the next Push never merges into it
	m.undo[scene] = append(m.undo[scene], Snapshot{Scene: scene, Blob: current})
	m.totalBytes += len(current)
	m.enforceCapsLocked(scene)
	return s, true
}

// CanUndo and CanRedo report whether the stacks are non-empty.
func (m *Manager) CanUndo(scene string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo[scene]) > 0
}

func (m *Manager) CanRedo(scene string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redo[scene]) > 0
}

// Clear forgets both stacks of a scene.
func (m *Manager) Clear(scene string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.undo[scene] {
		m.totalBytes -= len(s.Blob)
	}
	m.dropRedoLocked(scene)
	delete(m.undo, scene)
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes, scenes, snapshots int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, v := range m.undo {
		if len(v) > 0 {
			scenes++
		}
		snapshots += len(v)
	}
	for _, v := range m.redo {
		snapshots += len(v)
	}
	return m.totalBytes, scenes, snapshots
}

func (m *Manager) dropRedoLocked(scene string) {
	for _, s := range m.redo[scene] {
		m.totalBytes -= len(s.Blob)
	}
	delete(m.redo, scene)
}

func (m *Manager) enforceCapsLocked(scene string) {
	if m.cfg.MaxPerScene > 0 {
		stack := m.undo[scene]
		if extra := len(stack) - m.cfg.MaxPerScene; extra > 0 {
			for _, s := range stack[:extra] {
				m.totalBytes -= len(s.Blob)
			}
			m.undo[scene] = append([]Snapshot(nil), stack[extra:]...)
		}
	}
	// prune oldest undo entries across scenes
	for m.totalBytes > m.cfg.MaxBytes {
		oldest := ""
		found := false
		var oldestTS time.Time
		for sc, stack := range m.undo {
			if len(stack) == 0 {
				continue
			}
			if !found || stack[0].TS.Before(oldestTS) {
				oldest, oldestTS, found = sc, stack[0].TS, true
			}
		}
		if !found {
			break
		}
		stack := m.undo[oldest]
		m.totalBytes -= len(stack[0].Blob)
		m.undo[oldest] = stack[1:]
		if len(m.undo[oldest]) == 0 {
			delete(m.undo, oldest)
		}
	}
}
