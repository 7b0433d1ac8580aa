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
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/go-resty/resty/v2"
	"github.com/gorilla/websocket"

	"github.com/carverauto/visionradar/pkg/logger"
)

const (
	initialReconnectDelay = 500 * time.Millisecond
	maxReconnectDelay     = 30 * time.Second

	// Long-poll requests must outlive the server's hold window.
	pollClientTimeout = 35 * time.Second
)

// SocketChannel receives events from the backend's socket endpoint.
// Transports are tried in configured order on every connection
// attempt; a dropped connection reconnects with exponential backoff.
type SocketChannel struct {
	*dispatcher

	config Config
	cancel context.CancelFunc

	closeOnce sync.Once
	wg        sync.WaitGroup

	initialDelay time.Duration
	maxDelay     time.Duration
}

type session struct {
	transport string
	serve     func(ctx context.Context) error
}

func newSocketChannel(config Config, log logger.Logger) *SocketChannel {
	return &SocketChannel{
		dispatcher:   newDispatcher(log),
		config:       config,
		initialDelay: initialReconnectDelay,
		maxDelay:     maxReconnectDelay,
	}
}

// Start launches the connection and dispatch loops and returns.
func (c *SocketChannel) Start(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(2)

	go func() {
		defer c.wg.Done()
		c.dispatchLoop()
	}()

	go func() {
		defer c.wg.Done()
		c.run(runCtx)
	}()

	return nil
}

// Stop tears the connection down and waits for both loops to exit.
// Queued but undelivered events are discarded.
func (c *SocketChannel) Stop() error {
	c.closeOnce.Do(func() {
		close(c.done)

		if c.cancel != nil {
			c.cancel()
		}
	})

	c.wg.Wait()

	return nil
}

func (c *SocketChannel) run(ctx context.Context) {
	defer c.setState(ChannelState{})

	for {
		sess, err := c.connect(ctx)
		if err != nil {
			if !c.stopping() && ctx.Err() == nil {
				c.logger.Error().Err(err).Msg("Push channel gave up connecting")
			}

			return
		}

		c.fireConnect(sess.transport)

		err = sess.serve(ctx)
		c.setState(ChannelState{})

		if c.stopping() || ctx.Err() != nil {
			return
		}

		c.logger.Warn().Err(err).Str("transport", sess.transport).Msg("Push connection lost")

		if !c.config.reconnectEnabled() {
			return
		}
	}
}

// connect retries until a transport accepts, the context ends, or the
// channel stops. The backoff series is fresh per call, so a session
// that connected successfully resets the delay.
func (c *SocketChannel) connect(ctx context.Context) (session, error) {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialDelay
	bo.MaxInterval = c.maxDelay

	operation := func() (session, error) {
		if c.stopping() {
			return session{}, backoff.Permanent(errChannelClosed)
		}

		return c.dialAny(ctx)
	}

	opts := []backoff.RetryOption{backoff.WithBackOff(bo)}
	if !c.config.reconnectEnabled() {
		opts = append(opts, backoff.WithMaxTries(1))
	}

	return backoff.Retry(ctx, operation, opts...)
}

func (c *SocketChannel) dialAny(ctx context.Context) (session, error) {
	var lastErr error

	for _, transport := range c.config.Transports {
		var (
			sess session
			err  error
		)

		switch transport {
		case TransportWebsocket:
			sess, err = c.dialWebsocket(ctx)
		case TransportPolling:
			sess, err = c.openPolling(ctx)
		default:
			return session{}, backoff.Permanent(fmt.Errorf("%w: %s", errUnknownTransport, transport))
		}

		if err == nil {
			return sess, nil
		}

		lastErr = err

		c.logger.Debug().Err(err).Str("transport", transport).Msg("Transport unavailable")
	}

	return session{}, fmt.Errorf("no transport accepted: %w", lastErr)
}

func (c *SocketChannel) dialWebsocket(ctx context.Context) (session, error) {
	endpoint, err := websocketURL(c.config.Origin, c.config.Path)
	if err != nil {
		return session{}, backoff.Permanent(err)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
		}

		return session{}, fmt.Errorf("websocket dial failed: %w", err)
	}

	serve := func(ctx context.Context) error {
		return c.readWebsocket(ctx, conn)
	}

	return session{transport: TransportWebsocket, serve: serve}, nil
}

func (c *SocketChannel) readWebsocket(ctx context.Context, conn *websocket.Conn) error {
	defer func() {
		_ = conn.Close()
	}()

	// Closing the conn is the only way to unblock ReadMessage when the
	// channel shuts down.
	readDone := make(chan struct{})
	defer close(readDone)

	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-c.done:
			_ = conn.Close()
		case <-readDone:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("websocket read failed: %w", err)
		}

		c.enqueueRaw(message)
	}
}

type pollResponse struct {
	Cursor int64             `json:"cursor"`
	Events []json.RawMessage `json:"events"`
}

// openPolling performs the handshake request so a dead endpoint fails
// the transport before a session is announced.
func (c *SocketChannel) openPolling(ctx context.Context) (session, error) {
	client := resty.New().
		SetBaseURL(c.config.Origin).
		SetTimeout(pollClientTimeout).
		SetHeader("Accept", "application/json")

	var handshake pollResponse

	resp, err := client.R().
		SetContext(ctx).
		SetResult(&handshake).
		SetQueryParam("transport", TransportPolling).
		Get(c.config.Path)
	if err != nil {
		return session{}, fmt.Errorf("polling handshake failed: %w", err)
	}

	if resp.IsError() {
		return session{}, fmt.Errorf("polling handshake failed: %w: %d", errUnexpectedStatus, resp.StatusCode())
	}

	cursor := handshake.Cursor

	serve := func(ctx context.Context) error {
		return c.pollLoop(ctx, client, cursor)
	}

	return session{transport: TransportPolling, serve: serve}, nil
}

func (c *SocketChannel) pollLoop(ctx context.Context, client *resty.Client, cursor int64) error {
	for {
		if c.stopping() {
			return errChannelClosed
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		var page pollResponse

		resp, err := client.R().
			SetContext(ctx).
			SetResult(&page).
			SetQueryParams(map[string]string{
				"transport": TransportPolling,
				"cursor":    strconv.FormatInt(cursor, 10),
			}).
			Get(c.config.Path)
		if err != nil {
			return fmt.Errorf("poll request failed: %w", err)
		}

		if resp.IsError() {
			return fmt.Errorf("poll request failed: %w: %d", errUnexpectedStatus, resp.StatusCode())
		}

		cursor = page.Cursor

		for _, raw := range page.Events {
			c.enqueueRaw(raw)
		}
	}
}

func websocketURL(origin, path string) (string, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return "", fmt.Errorf("invalid origin: %w", err)
	}

	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("%w: %s", errUnsupportedScheme, u.Scheme)
	}

	u.Path = path
	u.RawQuery = "transport=" + TransportWebsocket

	return u.String(), nil
}
