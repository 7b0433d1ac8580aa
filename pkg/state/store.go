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

// Package state owns the dashboard's canonical snapshot. Every write
// and read travels through one op queue consumed by a single
// goroutine, so application order is exactly arrival order. When the
// poll path and the push path both touch predictions, whichever op
// lands later simply wins; the two are never merged.
package state

import (
	"context"
	"sync"

	"github.com/carverauto/visionradar/pkg/logger"
	"github.com/carverauto/visionradar/pkg/models"
)

const (
	defaultPredictionCapacity = 500
	opQueueSize               = 256
)

// Config holds snapshot retention settings.
type Config struct {
	Capacity int `json:"capacity"`
}

// Validate implements config.Validator interface.
func (c *Config) Validate() error {
	if c.Capacity <= 0 {
		c.Capacity = defaultPredictionCapacity
	}

	return nil
}

// Store is the single owner of the dashboard snapshot.
//
// Setters enqueue and return; they do not wait for the write to apply.
// Snapshot blocks until its read op runs, so a snapshot taken after a
// setter returned from the same goroutine always observes that write.
// After Stop, writes are dropped silently and Snapshot returns the
// zero snapshot.
type Store struct {
	ops       chan func()
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	// Owned by the consumer goroutine.
	cameras     []models.Camera
	status      *models.Status
	errs        []models.SystemError
	predictions *predictionBuffer

	logger logger.Logger
}

// New creates a stopped store; call Start before use.
func New(cfg *Config, log logger.Logger) *Store {
	capacity := defaultPredictionCapacity
	if cfg != nil && cfg.Capacity > 0 {
		capacity = cfg.Capacity
	}

	return &Store{
		ops:         make(chan func(), opQueueSize),
		done:        make(chan struct{}),
		predictions: newPredictionBuffer(capacity),
		logger:      log,
	}
}

// Start launches the op consumer. It returns immediately.
func (s *Store) Start(_ context.Context) error {
	s.wg.Add(1)

	go s.run()

	return nil
}

// Stop shuts the queue down. Ops enqueued before Stop are still
// applied; later ones are dropped.
func (s *Store) Stop(_ context.Context) error {
	s.closeOnce.Do(func() {
		close(s.done)
	})

	s.wg.Wait()

	return nil
}

func (s *Store) run() {
	defer s.wg.Done()

	for {
		select {
		case op := <-s.ops:
			op()
		case <-s.done:
			// Apply everything already queued, then exit.
			for {
				select {
				case op := <-s.ops:
					op()
				default:
					return
				}
			}
		}
	}
}

// enqueue submits an op unless the store has stopped.
func (s *Store) enqueue(name string, op func()) bool {
	select {
	case <-s.done:
		s.logger.Debug().Str("op", name).Msg("Store stopped, dropping op")
		return false
	default:
	}

	select {
	case s.ops <- op:
		return true
	case <-s.done:
		s.logger.Debug().Str("op", name).Msg("Store stopped, dropping op")
		return false
	}
}

// SetCameras replaces the camera list. The store takes ownership of
// the slice.
func (s *Store) SetCameras(cameras []models.Camera) {
	s.enqueue("set_cameras", func() {
		s.cameras = cameras
	})
}

// SetStatus replaces the status record wholesale.
func (s *Store) SetStatus(status *models.Status) {
	s.enqueue("set_status", func() {
		s.status = status
	})
}

// SetErrors replaces the error list. The store takes ownership of the
// slice.
func (s *Store) SetErrors(errs []models.SystemError) {
	s.enqueue("set_errors", func() {
		s.errs = errs
	})
}

// SetPredictions replaces the whole prediction sequence (the poll
// path). Entries beyond the configured capacity are dropped from the
// tail.
func (s *Store) SetPredictions(predictions []models.Prediction) {
	s.enqueue("set_predictions", func() {
		s.predictions.replace(predictions)
	})
}

// AppendPrediction prepends one prediction (the push path), evicting
// the oldest entry when the buffer is full.
func (s *Store) AppendPrediction(p models.Prediction) {
	s.enqueue("append_prediction", func() {
		s.predictions.prepend(p)
	})
}

// Snapshot reads the current aggregate through the op queue. The
// returned value aliases nothing the store will mutate.
func (s *Store) Snapshot() models.Snapshot {
	reply := make(chan models.Snapshot, 1)

	if !s.enqueue("snapshot", func() {
		snap := models.Snapshot{
			Predictions: s.predictions.snapshot(),
			Status:      s.status,
		}

		if s.cameras != nil {
			snap.Cameras = append([]models.Camera(nil), s.cameras...)
		}

		if s.errs != nil {
			snap.Errors = append([]models.SystemError(nil), s.errs...)
		}

		reply <- snap
	}) {
		return models.Snapshot{}
	}

	select {
	case snap := <-reply:
		return snap
	case <-s.done:
		// Stop raced the read. The consumer drains queued ops before
		// exiting, so wait for it and collect the reply if it ran.
		s.wg.Wait()

		select {
		case snap := <-reply:
			return snap
		default:
			return models.Snapshot{}
		}
	}
}
