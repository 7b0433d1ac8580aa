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

package dashboard

import (
	"github.com/carverauto/visionradar/pkg/api"
	"github.com/carverauto/visionradar/pkg/logger"
	"github.com/carverauto/visionradar/pkg/poller"
	"github.com/carverauto/visionradar/pkg/push"
	"github.com/carverauto/visionradar/pkg/state"
)

// Config represents dashboard configuration.
type Config struct {
	API         api.Config     `json:"api"`
	Poller      poller.Config  `json:"poller"`
	Push        push.Config    `json:"push"`
	Predictions state.Config   `json:"predictions"`
	Topic       string         `json:"topic"`
	Logging     *logger.Config `json:"logging,omitempty"`
}

// Validate implements config.Validator interface.
func (c *Config) Validate() error {
	if c.Topic == "" {
		c.Topic = push.DefaultTopic
	}

	if err := c.API.Validate(); err != nil {
		return err
	}

	if err := c.Poller.Validate(); err != nil {
		return err
	}

	if err := c.Push.Validate(); err != nil {
		return err
	}

	return c.Predictions.Validate()
}
