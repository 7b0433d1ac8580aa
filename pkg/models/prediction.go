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

package models

import "encoding/json"

// Prediction is a single inference result. CameraID references a Camera
// by convention only; nothing enforces the association. Result is
// model-specific and carried opaquely so new model output shapes never
// require a client change.
type Prediction struct {
	CameraID  int             `json:"cameraId"`
	Model     string          `json:"model"`
	Timestamp string          `json:"timestamp"`
	Result    json.RawMessage `json:"result"`
}
