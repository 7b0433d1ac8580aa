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
	cryptoRand "crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/carverauto/visionradar/pkg/models"
)

const (
	predictionBacklog = 100
	errorBacklog      = 50

	streamPortBase = 8000
)

var (
	cameraNames = []string{
		"front door", "driveway", "garage", "back yard",
		"loading dock", "workshop", "side gate", "roof line",
	}
	modelNames      = []string{"yolov8n", "yolov8s", "mobilenet-ssd"}
	detectionLabels = []string{"person", "car", "truck", "bicycle", "dog", "cat", "package"}
	errorMessages   = []string{
		"frame capture timed out",
		"device busy",
		"inference queue overflow",
		"stream decoder reset",
	}
)

// world is the simulated backend state behind the REST endpoints.
// Predictions are kept newest-first and errors oldest-first, matching
// the ordering the real backend reports.
type world struct {
	mu          sync.RWMutex
	start       time.Time
	cameras     []models.Camera
	predictions []models.Prediction
	errors      []models.SystemError
	models      []string
	activeIdx   int
	processed   int
}

func newWorld(cameraCount int) *world {
	cameras := make([]models.Camera, cameraCount)

	for i := range cameras {
		id := i + 1
		port := streamPortBase + id

		cameras[i] = models.Camera{
			ID:         id,
			Name:       cameraNames[i%len(cameraNames)],
			Device:     fmt.Sprintf("/dev/video%d", i*2),
			StreamPort: port,
			StreamURL:  fmt.Sprintf("http://localhost:%d/stream", port),
		}
	}

	return &world{
		start:   time.Now(),
		cameras: cameras,
		models:  append([]string(nil), modelNames...),
	}
}

func (w *world) Cameras() []models.Camera {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return append([]models.Camera(nil), w.cameras...)
}

func (w *world) Predictions() []models.Prediction {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return append([]models.Prediction(nil), w.predictions...)
}

func (w *world) Errors() []models.SystemError {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return append([]models.SystemError(nil), w.errors...)
}

func (w *world) Status() models.Status {
	w.mu.RLock()
	defer w.mu.RUnlock()

	active := w.models[w.activeIdx]

	return models.Status{
		CameraCount:          len(w.cameras),
		AvailableModels:      append([]string(nil), w.models...),
		ActiveModel:          &active,
		PredictionsProcessed: w.processed,
		UptimeSeconds:        int(time.Since(w.start).Seconds()),
	}
}

func (w *world) RecordPrediction(p models.Prediction) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.predictions = append([]models.Prediction{p}, w.predictions...)
	if len(w.predictions) > predictionBacklog {
		w.predictions = w.predictions[:predictionBacklog]
	}

	w.processed++
}

func (w *world) RecordError(e models.SystemError) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.errors = append(w.errors, e)
	if len(w.errors) > errorBacklog {
		w.errors = w.errors[len(w.errors)-errorBacklog:]
	}
}

func (w *world) RotateModel() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.activeIdx = (w.activeIdx + 1) % len(w.models)

	return w.models[w.activeIdx]
}

func (w *world) ActiveModel() string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.models[w.activeIdx]
}

func (w *world) PickCamera() models.Camera {
	w.mu.RLock()
	defer w.mu.RUnlock()

	return w.cameras[randInt(0, len(w.cameras)-1)]
}

// randInt generates a random integer between minVal and maxVal (inclusive).
func randInt(minVal, maxVal int) int {
	if minVal >= maxVal {
		return minVal
	}

	n, _ := cryptoRand.Int(cryptoRand.Reader, big.NewInt(int64(maxVal-minVal+1)))

	return int(n.Int64()) + minVal
}
