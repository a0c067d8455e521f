/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package preview

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 16 * 1024
)

// Message is the websocket envelope in both directions.
//
//	server → client: hello, frame, options, error
//	client → server: pointer, option, control
type Message struct {
	Type   string         `json:"type"`
	Client string         `json:"client,omitempty"`
	Seq    uint64         `json:"seq,omitempty"`
	T      float64        `json:"t,omitempty"`
	Width  int            `json:"width,omitempty"`
	Height int            `json:"height,omitempty"`
	Kind   string         `json:"kind,omitempty"`
	X      float64        `json:"x,omitempty"`
	Y      float64        `json:"y,omitempty"`
	Name   string         `json:"name,omitempty"`
	Value  any            `json:"value,omitempty"`
	Values map[string]any `json:"values,omitempty"`
	Action string         `json:"action,omitempty"`
	Error  string         `json:"error,omitempty"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *hub
	log  *slog.Logger
}

type hub struct {
	mu      sync.Mutex
	clients map[string]*client
	log     *slog.Logger
}

func newHub(l *slog.Logger) *hub { return &hub{clients: map[string]*client{}, log: l} }

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// broadcast never blocks; slow clients miss messages.
func (h *hub) broadcast(m *Message) {
	data, err := json.Marshal(m)
	if err != nil {
		h.log.Error("marshal message", slog.Any("err", err))
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

func (c *client) push(m *Message) {
	data, err := json.Marshal(m)
	if err != nil {
		c.log.Error("marshal message", slog.Any("err", err))
		return
	}
	// send is closed on removal, so check membership under the lock
	c.hub.mu.Lock()
	defer c.hub.mu.Unlock()
	if c.hub.clients[c.id] != c {
		return
	}
	select {
	case c.send <- data:
	default:
		c.log.Warn("client send buffer full, dropping message")
	}
}

func (c *client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				return
			}
			wctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(wctx, websocket.MessageText, data)
			cancel()
			if err != nil {
				c.log.Debug("write error", slog.Any("err", err))
				return
			}
		case <-ticker.C:
			pctx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pctx)
			cancel()
			if err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// readPump hands every decoded message to fn until the connection closes.
func (c *client) readPump(ctx context.Context, fn func(*Message)) {
	c.conn.SetReadLimit(maxMsgSize)
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			st := websocket.CloseStatus(err)
			if st != websocket.StatusNormalClosure && st != websocket.StatusGoingAway {
				c.log.Debug("read error", slog.Any("err", err))
			}
			return
		}
		var m Message
		if err := json.Unmarshal(data, &m); err != nil {
			c.log.Warn("invalid message", slog.Any("err", err))
			c.push(&Message{Type: "error", Error: "invalid message"})
			continue
		}
		fn(&m)
	}
}
