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

package view

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/visionradar/pkg/models"
)

func prediction(cameraID int, model string) models.Prediction {
	return models.Prediction{
		CameraID:  cameraID,
		Model:     model,
		Timestamp: "2025-06-01T12:00:00Z",
		Result:    json.RawMessage(fmt.Sprintf(`{"model":%q}`, model)),
	}
}

func TestPredictionsForPreservesOrder(t *testing.T) {
	predictions := []models.Prediction{
		prediction(1, "a"),
		prediction(2, "b"),
		prediction(1, "c"),
		prediction(3, "d"),
		prediction(1, "e"),
	}

	matched := PredictionsFor(predictions, 1)

	require.Len(t, matched, 3)
	assert.Equal(t, "a", matched[0].Model)
	assert.Equal(t, "c", matched[1].Model)
	assert.Equal(t, "e", matched[2].Model)
}

func TestPredictionsForNoMatches(t *testing.T) {
	predictions := []models.Prediction{prediction(1, "a"), prediction(2, "b")}

	assert.Empty(t, PredictionsFor(predictions, 99))
	assert.Empty(t, PredictionsFor(nil, 1))
}

func TestPredictionsForDoesNotMutateInput(t *testing.T) {
	predictions := []models.Prediction{
		prediction(1, "a"),
		prediction(2, "b"),
		prediction(1, "c"),
	}

	matched := PredictionsFor(predictions, 1)
	matched[0].Model = "changed"

	assert.Equal(t, "a", predictions[0].Model)
}

func TestErrorsForPreservesOrder(t *testing.T) {
	errs := []models.SystemError{
		{CameraID: 2, Error: "first"},
		{CameraID: 1, Error: "second"},
		{CameraID: 2, Error: "third"},
	}

	matched := ErrorsFor(errs, 2)

	require.Len(t, matched, 2)
	assert.Equal(t, "first", matched[0].Error)
	assert.Equal(t, "third", matched[1].Error)
}

func TestComposeWithoutStatus(t *testing.T) {
	board := Compose(models.Snapshot{})

	assert.False(t, board.Header.HasStatus)
	assert.Empty(t, board.Cards)
	assert.Empty(t, board.Log)
}

func TestComposeHeader(t *testing.T) {
	active := "yolov8n"
	board := Compose(models.Snapshot{
		Status: &models.Status{
			CameraCount:          4,
			AvailableModels:      []string{"yolov8n", "yolov8s"},
			ActiveModel:          &active,
			PredictionsProcessed: 128,
			UptimeSeconds:        3661,
		},
	})

	assert.True(t, board.Header.HasStatus)
	assert.Equal(t, "1h 1m", board.Header.Uptime)
	assert.Equal(t, "yolov8n", board.Header.ActiveModel)
	assert.Equal(t, []string{"yolov8n", "yolov8s"}, board.Header.AvailableModels)
	assert.Equal(t, 128, board.Header.PredictionsProcessed)
	assert.Equal(t, 4, board.Header.CameraCount)
}

func TestComposeHeaderNoActiveModel(t *testing.T) {
	board := Compose(models.Snapshot{Status: &models.Status{UptimeSeconds: 59}})

	assert.True(t, board.Header.HasStatus)
	assert.Equal(t, "none", board.Header.ActiveModel)
	assert.Equal(t, "0h 0m", board.Header.Uptime)
}

func TestComposeCards(t *testing.T) {
	snap := models.Snapshot{
		Cameras: []models.Camera{
			{ID: 1, Name: "front door", Device: "/dev/video0"},
			{ID: 2, Device: "/dev/video1"},
		},
		// Newest first, matching store ordering.
		Predictions: []models.Prediction{
			prediction(1, "newest"),
			prediction(2, "only"),
			prediction(1, "older"),
		},
		Errors: []models.SystemError{
			{CameraID: 1, Error: "stream stalled"},
			{CameraID: 1, Error: "stream recovered"},
		},
	}

	board := Compose(snap)
	require.Len(t, board.Cards, 2)

	first := board.Cards[0]
	assert.Equal(t, 1, first.Camera.ID)
	assert.Equal(t, 2, first.PredictionCount)
	require.NotNil(t, first.Latest)
	assert.Equal(t, "newest", first.Latest.Model)
	assert.Equal(t, 2, first.ErrorCount)
	require.NotNil(t, first.LastError)
	assert.Equal(t, "stream recovered", first.LastError.Error)

	second := board.Cards[1]
	assert.Equal(t, 2, second.Camera.ID)
	assert.Equal(t, 1, second.PredictionCount)
	require.NotNil(t, second.Latest)
	assert.Equal(t, "only", second.Latest.Model)
	assert.Zero(t, second.ErrorCount)
	assert.Nil(t, second.LastError)
}

func TestComposeLog(t *testing.T) {
	snap := models.Snapshot{
		Cameras: []models.Camera{{ID: 1, Name: "front door"}},
		Predictions: []models.Prediction{
			{CameraID: 1, Model: "yolov8n", Timestamp: "2025-06-01T12:00:05Z", Result: json.RawMessage(`{"n":1}`)},
			{CameraID: 7, Model: "yolov8s", Timestamp: "not a time"},
		},
	}

	board := Compose(snap)
	require.Len(t, board.Log, 2)

	assert.Equal(t, "12:00:05", board.Log[0].Time)
	assert.Equal(t, "front door", board.Log[0].Camera)
	assert.Equal(t, "yolov8n", board.Log[0].Model)
	assert.Equal(t, `{"n":1}`, board.Log[0].Preview)

	// Unknown camera falls back to a numeric label; bad timestamps pass
	// through untouched.
	assert.Equal(t, "camera 7", board.Log[1].Camera)
	assert.Equal(t, "not a time", board.Log[1].Time)
	assert.Empty(t, board.Log[1].Preview)
}
