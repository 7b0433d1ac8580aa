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

// Package faker is a self-contained demo backend. It serves the camera,
// prediction, status, and error endpoints, pushes each simulated
// prediction over websocket, long-poll, and optionally NATS, and keeps
// all state in memory.
package faker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/nats-io/nats.go"

	"github.com/carverauto/visionradar/pkg/logger"
	"github.com/carverauto/visionradar/pkg/push"
)

const (
	natsClientName = "visionradar-faker"

	backlogCapacity = 256

	serverReadTimeout = 10 * time.Second
	serverIdleTimeout = 60 * time.Second

	// serverWriteTimeout must outlast the long-poll hold or parked
	// requests get cut off mid-response.
	serverWriteTimeout = 35 * time.Second
)

var errNilLogger = errors.New("logger must not be nil")

// Server hosts the demo backend.
type Server struct {
	config  *Config
	logger  logger.Logger
	world   *world
	hub     *hub
	backlog *backlog

	mu      sync.Mutex
	addr    string
	httpSrv *http.Server
	nats    *nats.Conn

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// New builds a Server from config. A nil config uses the defaults.
func New(config *Config, log logger.Logger) (*Server, error) {
	if config == nil {
		config = &Config{}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if log == nil {
		return nil, errNilLogger
	}

	return &Server{
		config:  config,
		logger:  log,
		world:   newWorld(config.Cameras),
		hub:     newHub(log),
		backlog: newBacklog(backlogCapacity),
		done:    make(chan struct{}),
	}, nil
}

// Start binds the listener and blocks until the context ends, Stop is
// called, or the HTTP server fails.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen failed: %w", err)
	}

	srv := &http.Server{
		Handler:      s.routes(),
		ReadTimeout:  serverReadTimeout,
		WriteTimeout: serverWriteTimeout,
		IdleTimeout:  serverIdleTimeout,
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.httpSrv = srv
	s.mu.Unlock()

	if s.config.NatsURL != "" {
		if err := s.connectNats(); err != nil {
			_ = ln.Close()
			return err
		}
	}

	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		s.simulate(ctx)
	}()

	s.logger.Info().
		Str("addr", s.addr).
		Int("cameras", s.config.Cameras).
		Str("topic", s.config.Topic).
		Msg("Demo backend listening")

	serveErr := make(chan error, 1)

	go func() {
		serveErr <- srv.Serve(ln)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return fmt.Errorf("http server failed: %w", err)
	}
}

// Stop shuts the server down. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var err error

	s.closeOnce.Do(func() {
		close(s.done)

		s.mu.Lock()
		srv := s.httpSrv
		nc := s.nats
		s.mu.Unlock()

		if srv != nil {
			if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
				err = fmt.Errorf("http shutdown failed: %w", shutdownErr)
			}
		}

		if nc != nil {
			nc.Close()
		}
	})

	s.wg.Wait()

	return err
}

// Addr reports the bound listen address, empty before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.addr
}

func (s *Server) connectNats() error {
	opts := []nats.Option{
		nats.Name(natsClientName),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			s.logger.Error().Err(err).Msg("NATS async error")
		}),
		nats.ConnectHandler(func(nc *nats.Conn) {
			s.logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS connected")
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			s.logger.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			s.logger.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
	}

	nc, err := nats.Connect(s.config.NatsURL, opts...)
	if err != nil {
		return fmt.Errorf("nats connect failed: %w", err)
	}

	s.mu.Lock()
	s.nats = nc
	s.mu.Unlock()

	return nil
}

func (s *Server) routes() *mux.Router {
	router := mux.NewRouter()
	router.Use(requestLogging(s.logger), corsHeaders())

	api := router.PathPrefix(s.config.APIPrefix).Subrouter()
	if s.config.APIKey != "" {
		api.Use(requireAPIKey(s.config.APIKey))
	}

	// OPTIONS is listed so preflight requests reach the CORS middleware.
	api.HandleFunc("/cameras", s.handleCameras).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/predictions", s.handlePredictions).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/errors", s.handleErrors).Methods(http.MethodGet, http.MethodOptions)

	router.PathPrefix(s.config.PushPath).HandlerFunc(s.handlePush)

	return router
}

func (s *Server) handleCameras(w http.ResponseWriter, _ *http.Request) {
	s.encodeJSON(w, s.world.Cameras())
}

func (s *Server) handlePredictions(w http.ResponseWriter, _ *http.Request) {
	s.encodeJSON(w, s.world.Predictions())
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.encodeJSON(w, s.world.Status())
}

func (s *Server) handleErrors(w http.ResponseWriter, _ *http.Request) {
	s.encodeJSON(w, s.world.Errors())
}

// handlePush serves the push channel path for both transports.
func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		s.hub.serve(w, r, s.done)
		return
	}

	if r.URL.Query().Get("transport") == push.TransportPolling {
		s.handlePoll(w, r)
		return
	}

	writeError(w, "unsupported transport", http.StatusBadRequest)
}

type pollPage struct {
	Cursor int64             `json:"cursor"`
	Events []json.RawMessage `json:"events"`
}

// handlePoll serves the long-poll transport. A request without a cursor
// is a handshake and returns the current position immediately; with a
// cursor it parks until new frames arrive or the hold elapses.
func (s *Server) handlePoll(w http.ResponseWriter, r *http.Request) {
	cursorParam := r.URL.Query().Get("cursor")
	if cursorParam == "" {
		s.encodeJSON(w, pollPage{Cursor: s.backlog.current(), Events: []json.RawMessage{}})
		return
	}

	cursor, err := strconv.ParseInt(cursorParam, 10, 64)
	if err != nil {
		writeError(w, "invalid cursor", http.StatusBadRequest)
		return
	}

	hold := time.NewTimer(time.Duration(s.config.PollHold))
	defer hold.Stop()

	for {
		wake := s.backlog.wait()

		events, latest := s.backlog.since(cursor)
		if len(events) > 0 {
			s.encodeJSON(w, pollPage{Cursor: latest, Events: events})
			return
		}

		select {
		case <-wake:
		case <-hold.C:
			s.encodeJSON(w, pollPage{Cursor: cursor, Events: []json.RawMessage{}})
			return
		case <-s.done:
			s.encodeJSON(w, pollPage{Cursor: cursor, Events: []json.RawMessage{}})
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (s *Server) encodeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error().Err(err).Msg("Failed to encode response")
	}
}

type errorResponse struct {
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(errorResponse{Message: message, Status: statusCode}); err != nil {
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
