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
	"fmt"

	"github.com/carverauto/visionradar/pkg/models"
)

// Cameras fetches the full camera list.
func (c *Client) Cameras(ctx context.Context) ([]models.Camera, error) {
	var cameras []models.Camera

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&cameras).
		Get("/cameras")
	if err != nil {
		return nil, fmt.Errorf("failed to get cameras: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: %d from /cameras", errUnexpectedStatusCode, resp.StatusCode())
	}

	return cameras, nil
}
