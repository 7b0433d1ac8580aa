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

// Package push receives server-initiated events over a long-lived
// connection. The default source dials the backend's socket endpoint,
// preferring websocket and falling back to HTTP long-polling; an
// alternative source subscribes to NATS subjects. All sources feed one
// dispatch goroutine, so handlers observe events in arrival order.
package push

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/visionradar/pkg/logger"
)

const (
	// DefaultTopic is the event name the backend publishes sensor
	// predictions under.
	DefaultTopic = "send_sensor_data"

	SourceChannel = "channel"
	SourceNats    = "nats"

	TransportWebsocket = "websocket"
	TransportPolling   = "polling"

	defaultOrigin = "http://localhost:9003"
	defaultPath   = "/socket.io/"
)

// Channel delivers push events to subscribed handlers. Handlers for a
// topic run sequentially in arrival order; registration is expected
// before Start.
type Channel interface {
	Start(ctx context.Context) error
	Stop() error
	OnConnect(fn func(ConnectInfo))
	Subscribe(topic string, fn func(data []byte))
	State() ChannelState
}

// ConnectInfo describes one established connection. A new ID is issued
// per session, so reconnects are observable.
type ConnectInfo struct {
	ID        string
	Transport string
}

// ChannelState reports the current connection for display surfaces.
type ChannelState struct {
	Connected bool
	Transport string
}

// Config controls how the push channel reaches the backend.
type Config struct {
	Origin       string   `json:"origin"`
	Path         string   `json:"path"`
	Transports   []string `json:"transports"`
	Reconnection *bool    `json:"reconnection"`
	Source       string   `json:"source"`
	NatsURL      string   `json:"nats_url"`
}

// Validate applies defaults and rejects unknown sources or transports.
func (c *Config) Validate() error {
	if c.Origin == "" {
		c.Origin = defaultOrigin
	}

	if c.Path == "" {
		c.Path = defaultPath
	}

	if len(c.Transports) == 0 {
		c.Transports = []string{TransportWebsocket, TransportPolling}
	}

	for _, transport := range c.Transports {
		if transport != TransportWebsocket && transport != TransportPolling {
			return fmt.Errorf("%w: %s", errUnknownTransport, transport)
		}
	}

	if c.Reconnection == nil {
		enabled := true
		c.Reconnection = &enabled
	}

	switch c.Source {
	case "":
		c.Source = SourceChannel
	case SourceChannel:
	case SourceNats:
		if c.NatsURL == "" {
			c.NatsURL = nats.DefaultURL
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnknownSource, c.Source)
	}

	return nil
}

func (c *Config) reconnectEnabled() bool {
	return c.Reconnection == nil || *c.Reconnection
}

// New builds a channel for the configured source.
func New(config *Config, log logger.Logger) (Channel, error) {
	if config == nil {
		config = &Config{}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if config.Source == SourceNats {
		return newNatsChannel(*config, log), nil
	}

	return newSocketChannel(*config, log), nil
}
