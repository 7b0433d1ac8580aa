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
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/visionradar/pkg/logger"
	"github.com/carverauto/visionradar/pkg/models"
	"github.com/carverauto/visionradar/pkg/push"
)

// startTestServer runs a server on a random port with the simulation
// effectively paused so tests emit predictions themselves.
func startTestServer(t *testing.T, mutate func(*Config)) *Server {
	t.Helper()

	cfg := &Config{
		ListenAddr:   "127.0.0.1:0",
		EmitInterval: models.Duration(time.Hour),
		ModelRotate:  models.Duration(time.Hour),
		PollHold:     models.Duration(200 * time.Millisecond),
	}
	if mutate != nil {
		mutate(cfg)
	}

	srv, err := New(cfg, logger.NewTestLogger())
	require.NoError(t, err)

	go func() {
		_ = srv.Start(context.Background())
	}()

	require.Eventually(t, func() bool { return srv.Addr() != "" }, 5*time.Second, 10*time.Millisecond)

	t.Cleanup(func() {
		require.NoError(t, srv.Stop(context.Background()))
	})

	return srv
}

func baseURL(srv *Server) string {
	return "http://" + srv.Addr()
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	if out != nil && resp.StatusCode == http.StatusOK {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}

	return resp
}

func TestRestEndpoints(t *testing.T) {
	srv := startTestServer(t, nil)

	var cameras []models.Camera

	resp := getJSON(t, baseURL(srv)+"/api/cameras", &cameras)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Len(t, cameras, 4)
	assert.Equal(t, "front door", cameras[0].Name)

	var status models.Status

	getJSON(t, baseURL(srv)+"/api/status", &status)
	assert.Equal(t, 4, status.CameraCount)
	require.NotNil(t, status.ActiveModel)
	assert.Equal(t, "yolov8n", *status.ActiveModel)
	assert.Zero(t, status.PredictionsProcessed)

	var predictions []models.Prediction

	getJSON(t, baseURL(srv)+"/api/predictions", &predictions)
	assert.Empty(t, predictions)

	var systemErrors []models.SystemError

	getJSON(t, baseURL(srv)+"/api/errors", &systemErrors)
	assert.Empty(t, systemErrors)
}

func TestEmittedPredictionsServedNewestFirst(t *testing.T) {
	srv := startTestServer(t, nil)

	srv.emitPrediction()
	srv.emitPrediction()

	var predictions []models.Prediction

	getJSON(t, baseURL(srv)+"/api/predictions", &predictions)
	require.Len(t, predictions, 2)
	assert.Equal(t, "yolov8n", predictions[0].Model)
	assert.NotEmpty(t, predictions[0].Result)

	var status models.Status

	getJSON(t, baseURL(srv)+"/api/status", &status)
	assert.Equal(t, 2, status.PredictionsProcessed)
}

func TestWebsocketBroadcast(t *testing.T) {
	srv := startTestServer(t, nil)

	wsURL := "ws://" + srv.Addr() + "/socket.io/?transport=websocket"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil) //nolint:bodyclose // handshake response is drained by the dialer
	require.NoError(t, err)

	defer func() {
		_ = conn.Close()
	}()

	require.Eventually(t, func() bool { return srv.hub.count() == 1 }, 5*time.Second, 10*time.Millisecond)

	srv.emitPrediction()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var envelope push.Envelope

	require.NoError(t, json.Unmarshal(frame, &envelope))
	assert.Equal(t, push.DefaultTopic, envelope.Event)

	var prediction models.Prediction

	require.NoError(t, json.Unmarshal(envelope.Data, &prediction))
	assert.NotZero(t, prediction.CameraID)
	assert.Equal(t, "yolov8n", prediction.Model)
}

func TestLongPollHandshakeAndFetch(t *testing.T) {
	srv := startTestServer(t, nil)
	pushURL := baseURL(srv) + "/socket.io/"

	var handshake pollPage

	resp := getJSON(t, pushURL+"?transport=polling", &handshake)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(0), handshake.Cursor)
	assert.Empty(t, handshake.Events)

	srv.emitPrediction()
	srv.emitPrediction()

	var page pollPage

	getJSON(t, fmt.Sprintf("%s?transport=polling&cursor=%d", pushURL, handshake.Cursor), &page)
	require.Len(t, page.Events, 2)
	assert.Equal(t, int64(2), page.Cursor)

	var envelope push.Envelope

	require.NoError(t, json.Unmarshal(page.Events[0], &envelope))
	assert.Equal(t, push.DefaultTopic, envelope.Event)

	// Caught-up cursor parks until the hold elapses, then returns empty.
	start := time.Now()

	var empty pollPage

	getJSON(t, fmt.Sprintf("%s?transport=polling&cursor=%d", pushURL, page.Cursor), &empty)
	assert.Empty(t, empty.Events)
	assert.Equal(t, page.Cursor, empty.Cursor)
	assert.GreaterOrEqual(t, time.Since(start), 150*time.Millisecond)
}

func TestLongPollWakesOnPublish(t *testing.T) {
	srv := startTestServer(t, func(cfg *Config) {
		cfg.PollHold = models.Duration(time.Minute)
	})
	pushURL := baseURL(srv) + "/socket.io/"

	pages := make(chan pollPage, 1)

	go func() {
		var page pollPage

		resp, err := http.Get(pushURL + "?transport=polling&cursor=0")
		if err != nil {
			return
		}

		defer func() {
			_ = resp.Body.Close()
		}()

		if json.NewDecoder(resp.Body).Decode(&page) == nil {
			pages <- page
		}
	}()

	// Let the request park before publishing.
	time.Sleep(100 * time.Millisecond)
	srv.emitPrediction()

	select {
	case page := <-pages:
		require.Len(t, page.Events, 1)
		assert.Equal(t, int64(1), page.Cursor)
	case <-time.After(5 * time.Second):
		t.Fatal("parked poll never woke up")
	}
}

func TestLongPollRejectsBadCursor(t *testing.T) {
	srv := startTestServer(t, nil)

	resp := getJSON(t, baseURL(srv)+"/socket.io/?transport=polling&cursor=banana", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestUnsupportedTransportRejected(t *testing.T) {
	srv := startTestServer(t, nil)

	resp := getJSON(t, baseURL(srv)+"/socket.io/?transport=carrier-pigeon", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPIKeyGuardsRestOnly(t *testing.T) {
	srv := startTestServer(t, func(cfg *Config) {
		cfg.APIKey = "sekrit"
	})

	resp := getJSON(t, baseURL(srv)+"/api/status", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req, err := http.NewRequest(http.MethodGet, baseURL(srv)+"/api/status", http.NoBody)
	require.NoError(t, err)
	req.Header.Set("X-API-Key", "sekrit")

	keyed, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	_ = keyed.Body.Close()
	assert.Equal(t, http.StatusOK, keyed.StatusCode)

	query := getJSON(t, baseURL(srv)+"/api/status?api_key=sekrit", nil)
	assert.Equal(t, http.StatusOK, query.StatusCode)

	// The push channel stays open; browsers cannot attach headers to it.
	handshake := getJSON(t, baseURL(srv)+"/socket.io/?transport=polling", nil)
	assert.Equal(t, http.StatusOK, handshake.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := startTestServer(t, nil)

	req, err := http.NewRequest(http.MethodOptions, baseURL(srv)+"/api/cameras", http.NoBody)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	_ = resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "X-API-Key")
}

func TestSimulationLoopEmits(t *testing.T) {
	srv := startTestServer(t, func(cfg *Config) {
		cfg.EmitInterval = models.Duration(20 * time.Millisecond)
	})

	require.Eventually(t, func() bool {
		return srv.world.Status().PredictionsProcessed >= 3
	}, 5*time.Second, 10*time.Millisecond)

	assert.NotEmpty(t, srv.world.Predictions())
}

func TestPushClientReceivesFromServer(t *testing.T) {
	for _, transport := range []string{push.TransportWebsocket, push.TransportPolling} {
		t.Run(transport, func(t *testing.T) {
			srv := startTestServer(t, nil)

			channel, err := push.New(&push.Config{
				Origin:     baseURL(srv),
				Transports: []string{transport},
			}, logger.NewTestLogger())
			require.NoError(t, err)

			connected := make(chan push.ConnectInfo, 1)
			channel.OnConnect(func(info push.ConnectInfo) { connected <- info })

			payloads := make(chan []byte, 1)
			channel.Subscribe(push.DefaultTopic, func(data []byte) { payloads <- data })

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			require.NoError(t, channel.Start(ctx))

			t.Cleanup(func() {
				require.NoError(t, channel.Stop())
			})

			select {
			case info := <-connected:
				assert.Equal(t, transport, info.Transport)
			case <-time.After(5 * time.Second):
				t.Fatal("client never connected")
			}

			// Websocket delivery is broadcast-only, so let the server
			// finish registering the subscriber before emitting.
			if transport == push.TransportWebsocket {
				require.Eventually(t, func() bool { return srv.hub.count() == 1 }, 5*time.Second, 10*time.Millisecond)
			}

			srv.emitPrediction()

			select {
			case data := <-payloads:
				var prediction models.Prediction

				require.NoError(t, json.Unmarshal(data, &prediction))
				assert.Equal(t, "yolov8n", prediction.Model)
			case <-time.After(5 * time.Second):
				t.Fatal("client never received the prediction")
			}
		})
	}
}

func TestStopIsIdempotent(t *testing.T) {
	srv := startTestServer(t, nil)

	require.NoError(t, srv.Stop(context.Background()))
	require.NoError(t, srv.Stop(context.Background()))
}
