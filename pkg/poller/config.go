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

package poller

import (
	"fmt"
	"time"

	"github.com/carverauto/visionradar/pkg/models"
)

const (
	defaultPollInterval = 1 * time.Second
	defaultPollTimeout  = 5 * time.Second
)

// Config represents poller configuration.
type Config struct {
	PollInterval models.Duration `json:"poll_interval"`
	PollTimeout  models.Duration `json:"poll_timeout"`
}

// Validate implements config.Validator interface.
func (c *Config) Validate() error {
	if time.Duration(c.PollInterval) < 0 {
		return fmt.Errorf("%w: poll_interval must not be negative", ErrInvalidDuration)
	}

	if time.Duration(c.PollInterval) == 0 {
		c.PollInterval = models.Duration(defaultPollInterval)
	}

	if time.Duration(c.PollTimeout) < 0 {
		return fmt.Errorf("%w: poll_timeout must not be negative", ErrInvalidDuration)
	}

	if time.Duration(c.PollTimeout) == 0 {
		c.PollTimeout = models.Duration(defaultPollTimeout)
	}

	return nil
}
