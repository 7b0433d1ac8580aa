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

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/visionradar/pkg/models"
)

func pred(camera int, model string) models.Prediction {
	return models.Prediction{CameraID: camera, Model: model}
}

func TestBufferPrependOrder(t *testing.T) {
	t.Parallel()

	b := newPredictionBuffer(10)
	b.replace([]models.Prediction{pred(1, "p1"), pred(1, "p2")})
	b.prepend(pred(2, "p0"))

	got := b.snapshot()
	require.Len(t, got, 3)
	assert.Equal(t, "p0", got[0].Model)
	assert.Equal(t, "p1", got[1].Model)
	assert.Equal(t, "p2", got[2].Model)
}

func TestBufferPrependEvictsOldest(t *testing.T) {
	t.Parallel()

	b := newPredictionBuffer(3)

	for i := 0; i < 5; i++ {
		b.prepend(pred(1, fmt.Sprintf("p%d", i)))
	}

	got := b.snapshot()
	require.Len(t, got, 3)
	// Newest first; p0 and p1 were evicted.
	assert.Equal(t, "p4", got[0].Model)
	assert.Equal(t, "p3", got[1].Model)
	assert.Equal(t, "p2", got[2].Model)
}

func TestBufferReplaceTruncates(t *testing.T) {
	t.Parallel()

	b := newPredictionBuffer(2)
	b.replace([]models.Prediction{pred(1, "p0"), pred(1, "p1"), pred(1, "p2")})

	got := b.snapshot()
	require.Len(t, got, 2)
	assert.Equal(t, "p0", got[0].Model)
	assert.Equal(t, "p1", got[1].Model)
}

func TestBufferReplaceClearsPrevious(t *testing.T) {
	t.Parallel()

	b := newPredictionBuffer(5)
	b.replace([]models.Prediction{pred(1, "old1"), pred(1, "old2"), pred(1, "old3")})
	b.replace([]models.Prediction{pred(2, "new1")})

	got := b.snapshot()
	require.Len(t, got, 1)
	assert.Equal(t, "new1", got[0].Model)
}

func TestBufferSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	b := newPredictionBuffer(5)
	b.replace([]models.Prediction{pred(1, "p0")})

	got := b.snapshot()
	got[0].Model = "mutated"

	assert.Equal(t, "p0", b.snapshot()[0].Model)
}
