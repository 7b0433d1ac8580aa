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

package state

import "github.com/carverauto/visionradar/pkg/models"

// predictionBuffer holds the prediction sequence newest-first with a
// hard capacity. Beyond capacity the oldest entries are dropped; there
// is no dedup, an entry present via poll and again via push appears
// twice.
type predictionBuffer struct {
	items    []models.Prediction
	capacity int
}

func newPredictionBuffer(capacity int) *predictionBuffer {
	return &predictionBuffer{
		items:    make([]models.Prediction, 0, capacity),
		capacity: capacity,
	}
}

// replace swaps the whole sequence for the given one, keeping the
// newest (leading) entries when the input exceeds capacity.
func (b *predictionBuffer) replace(list []models.Prediction) {
	n := len(list)
	if n > b.capacity {
		n = b.capacity
	}

	b.items = b.items[:0]
	b.items = append(b.items, list[:n]...)
}

// prepend inserts one prediction at the front, evicting the oldest
// entry when full.
func (b *predictionBuffer) prepend(p models.Prediction) {
	if len(b.items) < b.capacity {
		b.items = append(b.items, models.Prediction{})
	}

	copy(b.items[1:], b.items)
	b.items[0] = p
}

// snapshot returns a copy of the sequence.
func (b *predictionBuffer) snapshot() []models.Prediction {
	out := make([]models.Prediction, len(b.items))
	copy(out, b.items)

	return out
}
