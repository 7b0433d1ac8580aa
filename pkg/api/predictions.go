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

// Predictions fetches the backend's recent prediction list, newest
// first.
func (c *Client) Predictions(ctx context.Context) ([]models.Prediction, error) {
	var predictions []models.Prediction

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&predictions).
		Get("/predictions")
	if err != nil {
		return nil, fmt.Errorf("failed to get predictions: %w", err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: %d from /predictions", errUnexpectedStatusCode, resp.StatusCode())
	}

	return predictions, nil
}
