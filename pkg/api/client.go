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

// Package api is the typed REST client for the inference backend's
// read endpoints.
package api

import (
	"errors"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/carverauto/visionradar/pkg/logger"
	"github.com/carverauto/visionradar/pkg/models"
)

var errUnexpectedStatusCode = errors.New("unexpected status code")

const (
	defaultBaseURL = "http://localhost:9003/api"
	defaultTimeout = 5 * time.Second
)

// Config holds backend connection settings.
type Config struct {
	BaseURL string          `json:"base_url"`
	Timeout models.Duration `json:"timeout"`
}

// Validate implements config.Validator interface.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		c.BaseURL = defaultBaseURL
	}

	if time.Duration(c.Timeout) == 0 {
		c.Timeout = models.Duration(defaultTimeout)
	}

	return nil
}

// Client wraps a resty client configured for the backend API. All
// calls are plain GETs; decoding failures and non-2xx responses both
// surface as errors so a caller can treat "no usable data" uniformly.
type Client struct {
	http   *resty.Client
	logger logger.Logger
}

// NewClient creates a backend API client.
func NewClient(cfg *Config, log logger.Logger) *Client {
	r := resty.New()
	r.SetBaseURL(cfg.BaseURL)
	r.SetTimeout(time.Duration(cfg.Timeout))
	r.SetHeader("Accept", "application/json")

	return &Client{
		http:   r,
		logger: log,
	}
}
