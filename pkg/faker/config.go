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
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/visionradar/pkg/logger"
	"github.com/carverauto/visionradar/pkg/models"
	"github.com/carverauto/visionradar/pkg/push"
)

const (
	defaultListenAddr   = ":9003"
	defaultAPIPrefix    = "/api"
	defaultPushPath     = "/socket.io/"
	defaultCameraCount  = 4
	defaultEmitInterval = 2 * time.Second
	defaultModelRotate  = 30 * time.Second

	// defaultPollHold bounds how long an empty long-poll request parks
	// before returning; it must stay under the client's request timeout.
	defaultPollHold = 25 * time.Second
)

var errInvalidInterval = errors.New("interval must be positive")

// Config controls the demo backend.
type Config struct {
	ListenAddr   string          `json:"listen_addr"`
	APIPrefix    string          `json:"api_prefix"`
	PushPath     string          `json:"push_path"`
	Topic        string          `json:"topic"`
	APIKey       string          `json:"api_key,omitempty"`
	NatsURL      string          `json:"nats_url,omitempty"`
	Cameras      int             `json:"cameras"`
	EmitInterval models.Duration `json:"emit_interval"`
	ModelRotate  models.Duration `json:"model_rotate"`
	PollHold     models.Duration `json:"poll_hold"`
	Logging      *logger.Config  `json:"logging,omitempty"`
}

// Validate applies defaults for unset fields and rejects negative
// intervals.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.APIPrefix == "" {
		c.APIPrefix = defaultAPIPrefix
	}

	if c.PushPath == "" {
		c.PushPath = defaultPushPath
	}

	if c.Topic == "" {
		c.Topic = push.DefaultTopic
	}

	if c.Cameras <= 0 {
		c.Cameras = defaultCameraCount
	}

	intervals := []struct {
		name  string
		value *models.Duration
		def   time.Duration
	}{
		{"emit_interval", &c.EmitInterval, defaultEmitInterval},
		{"model_rotate", &c.ModelRotate, defaultModelRotate},
		{"poll_hold", &c.PollHold, defaultPollHold},
	}

	for _, iv := range intervals {
		if *iv.value < 0 {
			return fmt.Errorf("%w: %s", errInvalidInterval, iv.name)
		}

		if *iv.value == 0 {
			*iv.value = models.Duration(iv.def)
		}
	}

	return nil
}
