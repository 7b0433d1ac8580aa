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

// Snapshot aggregates the four entity groups at a single instant.
// The groups refresh independently, so a snapshot carries no
// cross-entity consistency guarantee: a fresh camera list can sit next
// to a stale status when the status fetch failed that cycle.
//
// Predictions are ordered newest first.
type Snapshot struct {
	Cameras     []Camera
	Predictions []Prediction
	Status      *Status
	Errors      []SystemError
}

// Clone returns a copy whose slices do not alias the receiver's, so a
// handed-out snapshot stays stable while the owner keeps mutating.
// Status is shared: it is replaced wholesale, never written in place.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{Status: s.Status}

	if s.Cameras != nil {
		out.Cameras = make([]Camera, len(s.Cameras))
		copy(out.Cameras, s.Cameras)
	}

	if s.Predictions != nil {
		out.Predictions = make([]Prediction, len(s.Predictions))
		copy(out.Predictions, s.Predictions)
	}

	if s.Errors != nil {
		out.Errors = make([]SystemError, len(s.Errors))
		copy(out.Errors, s.Errors)
	}

	return out
}
