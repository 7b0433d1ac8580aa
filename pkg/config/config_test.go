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

package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/visionradar/pkg/logger"
	"github.com/carverauto/visionradar/pkg/models"
)

type testConfig struct {
	BaseURL  string          `json:"base_url"`
	Interval models.Duration `json:"interval"`
	Nested   nestedConfig    `json:"nested"`
	Tags     []string        `json:"tags"`
	Workers  int             `json:"workers"`
}

type nestedConfig struct {
	Enabled bool   `json:"enabled"`
	Topic   string `json:"topic"`
}

// Validate implements config.Validator interface.
func (c *testConfig) Validate() error {
	if c.Workers == 0 {
		c.Workers = 4
	}

	return nil
}

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadAndValidateFromFile(t *testing.T) {
	path := writeTempConfig(t, `{"base_url":"http://localhost:9003/api","interval":"2s","nested":{"enabled":true,"topic":"send_sensor_data"}}`)

	var cfg testConfig

	loader := NewConfig(logger.NewTestLogger())
	require.NoError(t, loader.LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, "http://localhost:9003/api", cfg.BaseURL)
	assert.Equal(t, models.Duration(2*time.Second), cfg.Interval)
	assert.True(t, cfg.Nested.Enabled)
	assert.Equal(t, "send_sensor_data", cfg.Nested.Topic)
}

func TestLoadAndValidateAppliesDefaults(t *testing.T) {
	var cfg testConfig

	loader := NewConfig(logger.NewTestLogger())
	require.NoError(t, loader.LoadAndValidate(context.Background(), "", &cfg))

	// Validate() fills in what neither file nor environment set.
	assert.Equal(t, 4, cfg.Workers)
}

func TestLoadAndValidateMissingFile(t *testing.T) {
	var cfg testConfig

	loader := NewConfig(logger.NewTestLogger())
	err := loader.LoadAndValidate(context.Background(), "/nonexistent/config.json", &cfg)

	require.Error(t, err)
}

func TestEnvOverlaysFile(t *testing.T) {
	t.Setenv("VISIONRADAR_BASE_URL", "http://cameras.internal:9003/api")
	t.Setenv("VISIONRADAR_NESTED_TOPIC", "other_topic")

	path := writeTempConfig(t, `{"base_url":"http://localhost:9003/api","nested":{"enabled":true,"topic":"send_sensor_data"},"workers":2}`)

	var cfg testConfig

	loader := NewConfig(logger.NewTestLogger())
	require.NoError(t, loader.LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, "http://cameras.internal:9003/api", cfg.BaseURL)
	assert.Equal(t, "other_topic", cfg.Nested.Topic)
	// Untouched fields keep the file's values.
	assert.True(t, cfg.Nested.Enabled)
	assert.Equal(t, 2, cfg.Workers)
}

func TestEnvOnlySource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("VISIONRADAR_BASE_URL", "http://env-only:9003/api")
	t.Setenv("VISIONRADAR_INTERVAL", "500ms")
	t.Setenv("VISIONRADAR_TAGS", "a, b, c")

	var cfg testConfig

	loader := NewConfig(logger.NewTestLogger())
	require.NoError(t, loader.LoadAndValidate(context.Background(), "", &cfg))

	assert.Equal(t, "http://env-only:9003/api", cfg.BaseURL)
	assert.Equal(t, models.Duration(500*time.Millisecond), cfg.Interval)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Tags)
}

func TestConfigJSONEnvWins(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("VISIONRADAR_CONFIG_JSON", `{"base_url":"http://json-blob:9003/api","workers":8}`)

	var cfg testConfig

	loader := NewConfig(logger.NewTestLogger())
	require.NoError(t, loader.LoadAndValidate(context.Background(), "", &cfg))

	assert.Equal(t, "http://json-blob:9003/api", cfg.BaseURL)
	assert.Equal(t, 8, cfg.Workers)
}

func TestInvalidConfigSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "carrier-pigeon")

	var cfg testConfig

	loader := NewConfig(logger.NewTestLogger())
	err := loader.LoadAndValidate(context.Background(), "", &cfg)

	require.Error(t, err)
	assert.ErrorIs(t, err, errInvalidConfigSource)
}

func TestNewConfigNilLogger(t *testing.T) {
	loader := NewConfig(nil)
	require.NotNil(t, loader)

	var cfg testConfig

	require.NoError(t, loader.LoadAndValidate(context.Background(), "", &cfg))
}
