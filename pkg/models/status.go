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

// Status is the backend's singleton health record. ActiveModel is nil
// when no model is loaded. A refresh replaces the whole record; fields
// are never merged across refreshes.
type Status struct {
	CameraCount          int      `json:"cameraCount"`
	AvailableModels      []string `json:"availableModels"`
	ActiveModel          *string  `json:"activeModel"`
	PredictionsProcessed int      `json:"predictionsProcessed"`
	UptimeSeconds        int      `json:"uptimeSeconds"`
}
