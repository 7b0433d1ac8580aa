/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package faker

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/carverauto/visionradar/pkg/logger"
)

const (
	wsReadBufferSize  = 1024
	wsWriteBufferSize = 1024
	wsWriteTimeout    = 5 * time.Second
)

// hub fans published frames out to connected websocket clients.
type hub struct {
	logger   logger.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}
}

func newHub(log logger.Logger) *hub {
	return &hub{
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  wsReadBufferSize,
			WriteBufferSize: wsWriteBufferSize,
			// Local development tool; any origin may subscribe.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		conns: make(map[*websocket.Conn]struct{}),
	}
}

// serve upgrades the request and keeps the connection registered until
// the client disconnects or done closes.
func (h *hub) serve(w http.ResponseWriter, r *http.Request, done <-chan struct{}) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Failed to upgrade to websocket")
		return
	}

	h.logger.Info().Str("remote_addr", r.RemoteAddr).Msg("Websocket subscriber connected")

	h.add(conn)
	defer h.remove(conn)

	// The reader only detects disconnects; client frames carry nothing.
	readDone := make(chan struct{})

	go func() {
		defer close(readDone)

		for {
			if _, _, readErr := conn.ReadMessage(); readErr != nil {
				return
			}
		}
	}()

	select {
	case <-done:
	case <-readDone:
		h.logger.Info().Str("remote_addr", r.RemoteAddr).Msg("Websocket subscriber disconnected")
	}
}

func (h *hub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.conns[conn] = struct{}{}
}

func (h *hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.conns[conn]; ok {
		delete(h.conns, conn)
		_ = conn.Close()
	}
}

func (h *hub) broadcast(payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.conns {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))

		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Debug().Err(err).Msg("Dropping stalled websocket subscriber")
			_ = conn.Close()
			delete(h.conns, conn)
		}
	}
}

func (h *hub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.conns)
}

// backlog is the shared event buffer behind the long-poll transport.
// Every frame gets a monotonically increasing sequence number; clients
// track their position with a cursor and fetch everything after it. A
// cursor older than the retained window yields the window's remainder.
type backlog struct {
	mu       sync.Mutex
	seq      int64
	events   []backlogEntry
	wake     chan struct{}
	capacity int
}

type backlogEntry struct {
	seq     int64
	payload json.RawMessage
}

func newBacklog(capacity int) *backlog {
	return &backlog{
		wake:     make(chan struct{}),
		capacity: capacity,
	}
}

func (b *backlog) append(payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++

	b.events = append(b.events, backlogEntry{seq: b.seq, payload: payload})
	if len(b.events) > b.capacity {
		b.events = b.events[len(b.events)-b.capacity:]
	}

	close(b.wake)
	b.wake = make(chan struct{})
}

func (b *backlog) current() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.seq
}

func (b *backlog) since(cursor int64) ([]json.RawMessage, int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []json.RawMessage

	for _, entry := range b.events {
		if entry.seq > cursor {
			out = append(out, entry.payload)
		}
	}

	return out, b.seq
}

// wait returns a channel closed on the next append. Grab it before
// calling since, or an append between the two calls is missed.
func (b *backlog) wait() <-chan struct{} {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.wake
}
