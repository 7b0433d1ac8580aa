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
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/visionradar/pkg/models"
	"github.com/carverauto/visionradar/pkg/push"
)

const (
	// errorChance emits a system error on roughly one cycle in eight.
	errorChance = 8

	maxDetections    = 3
	frameWidth       = 1920
	frameHeight      = 1080
	minBoxSize       = 64
	maxBoxSize       = 320
	minConfidencePct = 55
	maxConfidencePct = 99
	minInferenceMS   = 8
	maxInferenceMS   = 42
)

type detection struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Box        [4]int  `json:"box"`
}

type detectionResult struct {
	Detections  []detection `json:"detections"`
	InferenceMS int         `json:"inference_ms"`
}

// simulate drives the world forward until the context ends or the
// server stops.
func (s *Server) simulate(ctx context.Context) {
	emit := time.NewTicker(time.Duration(s.config.EmitInterval))
	defer emit.Stop()

	rotate := time.NewTicker(time.Duration(s.config.ModelRotate))
	defer rotate.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.done:
			return
		case <-emit.C:
			s.emitPrediction()
		case <-rotate.C:
			name := s.world.RotateModel()
			s.logger.Info().Str("model", name).Msg("Active model rotated")
		}
	}
}

// emitPrediction records one inference cycle and publishes it to every
// push transport.
func (s *Server) emitPrediction() {
	camera := s.world.PickCamera()
	now := time.Now().UTC().Format(time.RFC3339)

	prediction := models.Prediction{
		CameraID:  camera.ID,
		Model:     s.world.ActiveModel(),
		Timestamp: now,
		Result:    detectionPayload(),
	}

	s.world.RecordPrediction(prediction)
	s.publish(prediction)

	if randInt(1, errorChance) == 1 {
		s.world.RecordError(models.SystemError{
			CameraID:  camera.ID,
			Error:     errorMessages[randInt(0, len(errorMessages)-1)],
			Timestamp: now,
		})
	}
}

func (s *Server) publish(prediction models.Prediction) {
	data, err := json.Marshal(prediction)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to marshal prediction")
		return
	}

	frame, err := json.Marshal(push.Envelope{Event: s.config.Topic, Data: data})
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to marshal push frame")
		return
	}

	s.backlog.append(frame)
	s.hub.broadcast(frame)

	s.mu.Lock()
	nc := s.nats
	s.mu.Unlock()

	// NATS carries the bare prediction; the subject is the event name.
	if nc != nil {
		if err := nc.Publish(s.config.Topic, data); err != nil {
			s.logger.Warn().Err(err).Msg("NATS publish failed")
		}
	}
}

func detectionPayload() json.RawMessage {
	detections := make([]detection, randInt(1, maxDetections))

	for i := range detections {
		width := randInt(minBoxSize, maxBoxSize)
		height := randInt(minBoxSize, maxBoxSize)

		detections[i] = detection{
			ID:         uuid.New().String(),
			Label:      detectionLabels[randInt(0, len(detectionLabels)-1)],
			Confidence: float64(randInt(minConfidencePct, maxConfidencePct)) / 100,
			Box: [4]int{
				randInt(0, frameWidth-width),
				randInt(0, frameHeight-height),
				width,
				height,
			},
		}
	}

	payload, err := json.Marshal(detectionResult{
		Detections:  detections,
		InferenceMS: randInt(minInferenceMS, maxInferenceMS),
	})
	if err != nil {
		return json.RawMessage(`{}`)
	}

	return payload
}
