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

// SystemErrors fetches the backend's current error list. The backend
// replaces this list itself; the client never accumulates across
// calls.
func (c *Client) SystemErrors(ctx context.Context) ([]models.SystemError, error) {
	var systemErrors []models.SystemError

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&systemErrors).
		Get("/errors")
	if err != nil {
		return nil, fmt.Errorf("failed to get errors: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: %d from /errors", errUnexpectedStatusCode, resp.StatusCode())
	}

	return systemErrors, nil
}
