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
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/visionradar/pkg/models"
	"github.com/carverauto/visionradar/pkg/push"
)

func TestWorldCameras(t *testing.T) {
	w := newWorld(4)

	cameras := w.Cameras()
	require.Len(t, cameras, 4)

	assert.Equal(t, 1, cameras[0].ID)
	assert.Equal(t, "front door", cameras[0].Name)
	assert.Equal(t, "/dev/video0", cameras[0].Device)
	assert.Equal(t, 8001, cameras[0].StreamPort)
	assert.Equal(t, "http://localhost:8001/stream", cameras[0].StreamURL)

	assert.Equal(t, 4, cameras[3].ID)
	assert.Equal(t, "/dev/video6", cameras[3].Device)
}

func TestWorldPredictionsNewestFirstAndCapped(t *testing.T) {
	w := newWorld(1)

	for i := 0; i < predictionBacklog+10; i++ {
		w.RecordPrediction(models.Prediction{CameraID: 1, Model: fmt.Sprintf("m%d", i)})
	}

	predictions := w.Predictions()
	require.Len(t, predictions, predictionBacklog)

	assert.Equal(t, fmt.Sprintf("m%d", predictionBacklog+9), predictions[0].Model, "latest prediction leads")
	assert.Equal(t, predictionBacklog+10, w.Status().PredictionsProcessed, "processed counts past the cap")
}

func TestWorldErrorsOldestFirstAndCapped(t *testing.T) {
	w := newWorld(1)

	for i := 0; i < errorBacklog+5; i++ {
		w.RecordError(models.SystemError{CameraID: 1, Error: fmt.Sprintf("e%d", i)})
	}

	errs := w.Errors()
	require.Len(t, errs, errorBacklog)

	assert.Equal(t, "e5", errs[0].Error, "oldest surviving entry leads")
	assert.Equal(t, fmt.Sprintf("e%d", errorBacklog+4), errs[len(errs)-1].Error, "newest entry is last")
}

func TestWorldModelRotationWraps(t *testing.T) {
	w := newWorld(1)

	require.Equal(t, "yolov8n", w.ActiveModel())

	assert.Equal(t, "yolov8s", w.RotateModel())
	assert.Equal(t, "mobilenet-ssd", w.RotateModel())
	assert.Equal(t, "yolov8n", w.RotateModel())
}

func TestWorldStatus(t *testing.T) {
	w := newWorld(3)
	w.RecordPrediction(models.Prediction{CameraID: 1})

	status := w.Status()

	assert.Equal(t, 3, status.CameraCount)
	assert.Equal(t, modelNames, status.AvailableModels)
	require.NotNil(t, status.ActiveModel)
	assert.Equal(t, "yolov8n", *status.ActiveModel)
	assert.Equal(t, 1, status.PredictionsProcessed)
	assert.GreaterOrEqual(t, status.UptimeSeconds, 0)
}

func TestDetectionPayloadShape(t *testing.T) {
	var result detectionResult

	require.NoError(t, json.Unmarshal(detectionPayload(), &result))
	require.NotEmpty(t, result.Detections)

	for _, d := range result.Detections {
		assert.NotEmpty(t, d.ID)
		assert.Contains(t, detectionLabels, d.Label)
		assert.GreaterOrEqual(t, d.Confidence, 0.55)
		assert.LessOrEqual(t, d.Confidence, 0.99)
		assert.GreaterOrEqual(t, d.Box[2], minBoxSize)
		assert.LessOrEqual(t, d.Box[0]+d.Box[2], frameWidth)
	}

	assert.GreaterOrEqual(t, result.InferenceMS, minInferenceMS)
	assert.LessOrEqual(t, result.InferenceMS, maxInferenceMS)
}

func TestBacklogCursorFlow(t *testing.T) {
	b := newBacklog(4)

	require.Equal(t, int64(0), b.current())

	events, latest := b.since(0)
	assert.Empty(t, events)
	assert.Equal(t, int64(0), latest)

	b.append([]byte(`{"n":1}`))
	b.append([]byte(`{"n":2}`))

	events, latest = b.since(0)
	require.Len(t, events, 2)
	assert.Equal(t, int64(2), latest)
	assert.JSONEq(t, `{"n":1}`, string(events[0]))
	assert.JSONEq(t, `{"n":2}`, string(events[1]))

	events, _ = b.since(latest)
	assert.Empty(t, events)
}

func TestBacklogEvictsOldest(t *testing.T) {
	b := newBacklog(2)

	b.append([]byte(`1`))
	b.append([]byte(`2`))
	b.append([]byte(`3`))

	events, latest := b.since(0)
	require.Len(t, events, 2, "capacity bounds the window")
	assert.Equal(t, int64(3), latest)
	assert.Equal(t, "2", string(events[0]))
	assert.Equal(t, "3", string(events[1]))
}

func TestBacklogWakeOnAppend(t *testing.T) {
	b := newBacklog(4)

	wake := b.wait()

	select {
	case <-wake:
		t.Fatal("wake fired before any append")
	default:
	}

	b.append([]byte(`1`))

	select {
	case <-wake:
	case <-time.After(time.Second):
		t.Fatal("append did not wake waiters")
	}
}

func TestConfigValidateDefaults(t *testing.T) {
	cfg := &Config{}

	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":9003", cfg.ListenAddr)
	assert.Equal(t, "/api", cfg.APIPrefix)
	assert.Equal(t, "/socket.io/", cfg.PushPath)
	assert.Equal(t, push.DefaultTopic, cfg.Topic)
	assert.Equal(t, 4, cfg.Cameras)
	assert.Equal(t, 2*time.Second, time.Duration(cfg.EmitInterval))
	assert.Equal(t, 30*time.Second, time.Duration(cfg.ModelRotate))
	assert.Equal(t, 25*time.Second, time.Duration(cfg.PollHold))
}

func TestConfigValidateRejectsNegativeInterval(t *testing.T) {
	cfg := &Config{EmitInterval: models.Duration(-time.Second)}

	err := cfg.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, errInvalidInterval)
}
