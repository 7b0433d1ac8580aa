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

package push

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/carverauto/visionradar/pkg/logger"
)

const dispatchQueueSize = 256

// dispatcher owns handler registration and the single-consumer event
// queue shared by every channel implementation. All producers feed the
// same queue; one goroutine drains it, so handlers observe events in
// arrival order.
type dispatcher struct {
	logger logger.Logger

	mu              sync.RWMutex
	handlers        map[string][]func([]byte)
	connectHandlers []func(ConnectInfo)
	state           ChannelState

	dispatch chan Envelope
	done     chan struct{}

	dropped atomic.Uint64
}

func newDispatcher(log logger.Logger) *dispatcher {
	return &dispatcher{
		logger:   log,
		handlers: make(map[string][]func([]byte)),
		dispatch: make(chan Envelope, dispatchQueueSize),
		done:     make(chan struct{}),
	}
}

// OnConnect registers a callback fired after each successful
// connection, including reconnects.
func (d *dispatcher) OnConnect(fn func(ConnectInfo)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.connectHandlers = append(d.connectHandlers, fn)
}

// Subscribe registers a handler for one event name.
func (d *dispatcher) Subscribe(topic string, fn func(data []byte)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.handlers[topic] = append(d.handlers[topic], fn)
}

// State reports the current connection.
func (d *dispatcher) State() ChannelState {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return d.state
}

// Dropped counts events discarded because they could not be decoded.
func (d *dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

func (d *dispatcher) topics() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.handlers))
	for topic := range d.handlers {
		names = append(names, topic)
	}

	return names
}

// enqueueRaw decodes one frame and queues it for dispatch. A frame
// that will not decode is dropped and counted; the connection stays
// up.
func (d *dispatcher) enqueueRaw(raw []byte) {
	env, err := decodeEnvelope(raw)
	if err != nil {
		d.dropped.Add(1)
		d.logger.Warn().Err(err).Int("bytes", len(raw)).Msg("Dropping undecodable push event")

		return
	}

	d.enqueue(env)
}

func (d *dispatcher) enqueue(env Envelope) {
	select {
	case d.dispatch <- env:
	case <-d.done:
	}
}

func (d *dispatcher) dispatchLoop() {
	for {
		select {
		case env := <-d.dispatch:
			d.deliver(env)
		case <-d.done:
			return
		}
	}
}

func (d *dispatcher) deliver(env Envelope) {
	d.mu.RLock()
	handlers := append(([]func([]byte))(nil), d.handlers[env.Event]...)
	d.mu.RUnlock()

	for _, fn := range handlers {
		fn(env.Data)
	}
}

// fireConnect issues a fresh connection ID, updates the published
// state, and invokes connect callbacks outside the lock.
func (d *dispatcher) fireConnect(transport string) ConnectInfo {
	info := ConnectInfo{ID: uuid.New().String(), Transport: transport}

	d.setState(ChannelState{Connected: true, Transport: transport})
	d.logger.Info().Str("connection_id", info.ID).Str("transport", transport).Msg("Push channel connected")

	d.mu.RLock()
	handlers := append(([]func(ConnectInfo))(nil), d.connectHandlers...)
	d.mu.RUnlock()

	for _, fn := range handlers {
		fn(info)
	}

	return info
}

func (d *dispatcher) setState(state ChannelState) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.state = state
}

func (d *dispatcher) stopping() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}
