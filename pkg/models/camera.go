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

// Package models defines the wire-level entities exchanged with the
// inference backend. Field names match the backend's JSON exactly.
package models

// Camera represents a single registered capture device as reported by
// the backend. The list is replaced wholesale on every refresh; cameras
// are never mutated client-side.
type Camera struct {
	ID         int    `json:"id"`
	Name       string `json:"name,omitempty"`
	Device     string `json:"device"`
	StreamPort int    `json:"streamPort"`
	StreamURL  string `json:"streamUrl"`
}

// DisplayName returns the camera name, falling back to the device path
// when the backend did not assign one.
func (c Camera) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}

	return c.Device
}
