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

// Package dashboard wires the poller, the push channel, and the state
// store into one runnable service. Polled resources replace state
// wholesale; pushed predictions prepend. Whichever write reaches the
// store last wins, and the two streams are never merged.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/carverauto/visionradar/pkg/api"
	"github.com/carverauto/visionradar/pkg/logger"
	"github.com/carverauto/visionradar/pkg/models"
	"github.com/carverauto/visionradar/pkg/poller"
	"github.com/carverauto/visionradar/pkg/push"
	"github.com/carverauto/visionradar/pkg/state"
)

var errShutdown = errors.New("error during shutdown")

// App owns every dashboard component and exposes the read surface the
// UI renders from.
type App struct {
	config  Config
	logger  logger.Logger
	store   *state.Store
	client  *api.Client
	channel push.Channel
	poller  *poller.Poller

	decodeFailures atomic.Uint64
}

// New builds a fully wired but not yet started app.
func New(config *Config, log logger.Logger) (*App, error) {
	if config == nil {
		config = &Config{}
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	store := state.New(&config.Predictions, log)
	client := api.NewClient(&config.API, log)

	channel, err := push.New(&config.Push, log)
	if err != nil {
		return nil, err
	}

	p, err := poller.New(&config.Poller, client, store, nil, log)
	if err != nil {
		return nil, err
	}

	app := &App{
		config:  *config,
		logger:  log,
		store:   store,
		client:  client,
		channel: channel,
		poller:  p,
	}

	channel.Subscribe(config.Topic, app.handlePrediction)
	channel.OnConnect(func(info push.ConnectInfo) {
		log.Info().Str("connection_id", info.ID).Str("transport", info.Transport).Msg("Live updates connected")
	})

	return app, nil
}

// Start implements the lifecycle.Service interface. It blocks in the
// poll loop until Stop or context cancellation. The push channel is
// best-effort: the dashboard still refreshes from polling when it
// cannot connect.
func (a *App) Start(ctx context.Context) error {
	if err := a.store.Start(ctx); err != nil {
		return err
	}

	if err := a.channel.Start(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Push channel failed to start")
	}

	return a.poller.Start(ctx)
}

// Stop implements the lifecycle.Service interface. Producers stop
// before the store, so no write races teardown.
func (a *App) Stop(ctx context.Context) error {
	var errs []error

	if err := a.poller.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	if err := a.channel.Stop(); err != nil {
		errs = append(errs, err)
	}

	if err := a.store.Stop(ctx); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", errShutdown, errs)
	}

	return nil
}

// Snapshot returns the current canonical state.
func (a *App) Snapshot() models.Snapshot {
	return a.store.Snapshot()
}

// ChannelState reports the push connection for display.
func (a *App) ChannelState() push.ChannelState {
	return a.channel.State()
}

// SetPollInterval adjusts the refresh rate of the running poller.
func (a *App) SetPollInterval(d time.Duration) error {
	return a.poller.SetInterval(d)
}

// DecodeFailures counts pushed predictions dropped because their
// payload would not unmarshal.
func (a *App) DecodeFailures() uint64 {
	return a.decodeFailures.Load()
}

// handlePrediction ingests one pushed prediction. A payload that will
// not decode is dropped and counted; the subscription stays live.
func (a *App) handlePrediction(data []byte) {
	var p models.Prediction
	if err := json.Unmarshal(data, &p); err != nil {
		a.decodeFailures.Add(1)
		a.logger.Warn().Err(err).Int("bytes", len(data)).Msg("Dropping undecodable prediction")

		return
	}

	a.store.AppendPrediction(p)
}
