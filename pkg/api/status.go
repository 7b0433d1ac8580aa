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

// Status fetches the backend's singleton status record.
func (c *Client) Status(ctx context.Context) (*models.Status, error) {
	var status models.Status

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&status).
		Get("/status")
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: %d from /status", errUnexpectedStatusCode, resp.StatusCode())
	}

	return &status, nil
}
