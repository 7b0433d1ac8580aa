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

// Package poller drives the periodic refresh of dashboard resources.
// Each cycle fetches all four backend resources concurrently and hands
// every successful response to the sink; one resource failing never
// blocks the others.
package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/carverauto/visionradar/pkg/logger"
)

// Poller owns the tick loop. Cycles run in their own goroutines, so a
// slow backend cannot stall the ticker.
type Poller struct {
	config    Config
	fetcher   Fetcher
	sink      Sink
	clock     Clock
	ticker    Ticker
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	startWg   sync.WaitGroup
	reloadCh  chan time.Duration
	logger    logger.Logger

	PollFunc func(ctx context.Context) error // Optional override
}

// New creates a new poller instance.
func New(config *Config, fetcher Fetcher, sink Sink, clock Clock, log logger.Logger) (*Poller, error) {
	if config == nil {
		return nil, errNilConfig
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	if fetcher == nil {
		return nil, errNilFetcher
	}

	if sink == nil {
		return nil, errNilSink
	}

	if clock == nil {
		clock = realClock{}
	}

	return &Poller{
		config:   *config,
		fetcher:  fetcher,
		sink:     sink,
		clock:    clock,
		done:     make(chan struct{}),
		reloadCh: make(chan time.Duration, 1),
		logger:   log,
	}, nil
}

// Start implements the lifecycle.Service interface. It runs the first
// cycle immediately, then one per tick, and blocks until Stop or
// context cancellation.
func (p *Poller) Start(ctx context.Context) error {
	interval := time.Duration(p.config.PollInterval)
	p.ticker = p.clock.Ticker(interval)

	defer func() {
		if p.ticker != nil {
			p.ticker.Stop()
		}
	}()

	p.logger.Info().Dur("interval", interval).Msg("Starting poller")

	p.startWg.Add(1)
	defer p.startWg.Done()

	p.wg.Add(1)
	defer p.wg.Done()

	if err := p.poll(ctx); err != nil {
		p.logger.Error().Err(err).Msg("Error during initial poll")
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return nil
		case <-p.ticker.Chan():
			p.wg.Add(1)

			go func() {
				defer p.wg.Done()

				if err := p.poll(ctx); err != nil {
					p.logger.Error().Err(err).Msg("Error during poll")
				}
			}()
		case newInterval := <-p.reloadCh:
			if p.ticker != nil {
				p.ticker.Stop()
			}

			p.ticker = p.clock.Ticker(newInterval)
			p.logger.Info().Dur("interval", newInterval).Msg("Poll interval updated")
		}
	}
}

// Stop implements the lifecycle.Service interface.
func (p *Poller) Stop(_ context.Context) error {
	p.closeOnce.Do(func() {
		close(p.done)
	})

	p.startWg.Wait()
	p.wg.Wait()

	return nil
}

// SetInterval changes the tick rate of a running poller. A pending
// unapplied change is replaced.
func (p *Poller) SetInterval(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidDuration)
	}

	select {
	case p.reloadCh <- d:
	default:
		select {
		case <-p.reloadCh:
		default:
		}

		p.reloadCh <- d
	}

	return nil
}

type fetchResult struct {
	resource string
	err      error
}

// poll runs one refresh cycle. The four resources are fetched
// concurrently; failures are logged per resource and summarized in the
// returned error.
func (p *Poller) poll(ctx context.Context) error {
	if p.PollFunc != nil {
		return p.PollFunc(ctx)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(p.config.PollTimeout))
	defer cancel()

	tasks := []struct {
		resource string
		run      func(context.Context) error
	}{
		{"cameras", p.fetchCameras},
		{"predictions", p.fetchPredictions},
		{"status", p.fetchStatus},
		{"errors", p.fetchErrors},
	}

	results := make(chan fetchResult, len(tasks))

	var wg sync.WaitGroup

	for _, task := range tasks {
		wg.Add(1)

		go func(resource string, run func(context.Context) error) {
			defer wg.Done()

			results <- fetchResult{resource: resource, err: run(fetchCtx)}
		}(task.resource, task.run)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	failed := 0

	for result := range results {
		if result.err != nil {
			failed++

			p.logger.Warn().Err(result.err).Str("resource", result.resource).Msg("Resource refresh failed")
		}
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d resources", errPartialPoll, failed, len(tasks))
	}

	return nil
}

func (p *Poller) fetchCameras(ctx context.Context) error {
	cameras, err := p.fetcher.Cameras(ctx)
	if err != nil {
		return err
	}

	p.sink.SetCameras(cameras)

	return nil
}

func (p *Poller) fetchPredictions(ctx context.Context) error {
	predictions, err := p.fetcher.Predictions(ctx)
	if err != nil {
		return err
	}

	p.sink.SetPredictions(predictions)

	return nil
}

func (p *Poller) fetchStatus(ctx context.Context) error {
	status, err := p.fetcher.Status(ctx)
	if err != nil {
		return err
	}

	p.sink.SetStatus(status)

	return nil
}

func (p *Poller) fetchErrors(ctx context.Context) error {
	errs, err := p.fetcher.SystemErrors(ctx)
	if err != nil {
		return err
	}

	p.sink.SetErrors(errs)

	return nil
}
