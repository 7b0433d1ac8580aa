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

package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/visionradar/pkg/logger"
	"github.com/carverauto/visionradar/pkg/models"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &Config{BaseURL: srv.URL, Timeout: models.Duration(2 * time.Second)}

	return NewClient(cfg, logger.NewTestLogger())
}

func TestCameras(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/cameras", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":1,"name":"front","device":"/dev/video0","streamPort":8081,"streamUrl":"http://localhost:8081/stream"}]`))
	}))

	cameras, err := client.Cameras(context.Background())

	require.NoError(t, err)
	require.Len(t, cameras, 1)
	assert.Equal(t, 1, cameras[0].ID)
	assert.Equal(t, "front", cameras[0].Name)
}

func TestPredictions(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"cameraId":2,"model":"yolov8n","timestamp":"2025-06-01T12:00:00Z","result":{"score":0.92}}]`))
	}))

	predictions, err := client.Predictions(context.Background())

	require.NoError(t, err)
	require.Len(t, predictions, 1)
	assert.Equal(t, 2, predictions[0].CameraID)
	assert.JSONEq(t, `{"score":0.92}`, string(predictions[0].Result))
}

func TestStatus(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cameraCount":2,"availableModels":["yolov8n","mobilenet"],"activeModel":"yolov8n","predictionsProcessed":41,"uptimeSeconds":3661}`))
	}))

	status, err := client.Status(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, status.CameraCount)
	require.NotNil(t, status.ActiveModel)
	assert.Equal(t, "yolov8n", *status.ActiveModel)
	assert.Equal(t, 3661, status.UptimeSeconds)
}

func TestSystemErrors(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/errors", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"cameraId":1,"error":"stream stalled","timestamp":"2025-06-01T12:00:00Z"}]`))
	}))

	systemErrors, err := client.SystemErrors(context.Background())

	require.NoError(t, err)
	require.Len(t, systemErrors, 1)
	assert.Equal(t, "stream stalled", systemErrors[0].Error)
}

func TestNon2xxIsError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "backend down", http.StatusInternalServerError)
	}))

	_, err := client.Cameras(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, errUnexpectedStatusCode)
}

func TestMalformedBodyIsError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"this is": not json`))
	}))

	_, err := client.Predictions(context.Background())

	require.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "http://localhost:9003/api", cfg.BaseURL)
	assert.Equal(t, models.Duration(5*time.Second), cfg.Timeout)
}
