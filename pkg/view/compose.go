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

// Package view derives render-ready values from a state snapshot.
// Everything here is a pure function of its inputs; no view code reads
// or writes shared state.
package view

import (
	"fmt"

	"github.com/carverauto/visionradar/pkg/models"
)

// Board is the fully derived model a frontend renders from. It is
// rebuilt from scratch on every snapshot; nothing is cached between
// frames.
type Board struct {
	Header Header
	Cards  []CameraCard
	Log    []LogLine
}

// Header summarizes system status. HasStatus is false until the first
// successful status poll; renderers show a placeholder until then.
type Header struct {
	HasStatus            bool
	Uptime               string
	ActiveModel          string
	AvailableModels      []string
	PredictionsProcessed int
	CameraCount          int
}

// CameraCard pairs a camera with its slice of the prediction and error
// streams. Latest and LastError are nil when that camera has no
// activity yet.
type CameraCard struct {
	Camera          models.Camera
	Latest          *models.Prediction
	LastError       *models.SystemError
	PredictionCount int
	ErrorCount      int
}

// LogLine is one prediction rendered for the activity log.
type LogLine struct {
	Time    string
	Camera  string
	Model   string
	Preview string
}

// PredictionsFor filters predictions down to one camera, preserving
// the order of the input slice.
func PredictionsFor(predictions []models.Prediction, cameraID int) []models.Prediction {
	var matched []models.Prediction

	for _, p := range predictions {
		if p.CameraID == cameraID {
			matched = append(matched, p)
		}
	}

	return matched
}

// ErrorsFor filters system errors down to one camera, preserving the
// order of the input slice.
func ErrorsFor(errs []models.SystemError, cameraID int) []models.SystemError {
	var matched []models.SystemError

	for _, e := range errs {
		if e.CameraID == cameraID {
			matched = append(matched, e)
		}
	}

	return matched
}

// Compose derives a Board from a snapshot. Predictions arrive
// newest-first, so the first per-camera match is that camera's latest.
func Compose(snap models.Snapshot) Board {
	board := Board{
		Header: composeHeader(snap),
		Cards:  make([]CameraCard, 0, len(snap.Cameras)),
		Log:    make([]LogLine, 0, len(snap.Predictions)),
	}

	for _, cam := range snap.Cameras {
		board.Cards = append(board.Cards, composeCard(cam, snap))
	}

	names := cameraNames(snap.Cameras)

	for _, p := range snap.Predictions {
		board.Log = append(board.Log, LogLine{
			Time:    FormatTimestamp(p.Timestamp),
			Camera:  cameraLabel(names, p.CameraID),
			Model:   p.Model,
			Preview: ResultPreview(p.Result),
		})
	}

	return board
}

func composeHeader(snap models.Snapshot) Header {
	if snap.Status == nil {
		return Header{}
	}

	header := Header{
		HasStatus:            true,
		Uptime:               FormatUptime(snap.Status.UptimeSeconds),
		ActiveModel:          "none",
		AvailableModels:      snap.Status.AvailableModels,
		PredictionsProcessed: snap.Status.PredictionsProcessed,
		CameraCount:          snap.Status.CameraCount,
	}

	if snap.Status.ActiveModel != nil {
		header.ActiveModel = *snap.Status.ActiveModel
	}

	return header
}

func composeCard(cam models.Camera, snap models.Snapshot) CameraCard {
	card := CameraCard{Camera: cam}

	predictions := PredictionsFor(snap.Predictions, cam.ID)
	card.PredictionCount = len(predictions)

	if len(predictions) > 0 {
		card.Latest = &predictions[0]
	}

	errs := ErrorsFor(snap.Errors, cam.ID)
	card.ErrorCount = len(errs)

	if len(errs) > 0 {
		// Poll responses list errors oldest-first; the last entry is
		// the most recent.
		card.LastError = &errs[len(errs)-1]
	}

	return card
}

func cameraNames(cameras []models.Camera) map[int]string {
	names := make(map[int]string, len(cameras))
	for _, cam := range cameras {
		names[cam.ID] = cam.DisplayName()
	}

	return names
}

func cameraLabel(names map[int]string, cameraID int) string {
	if name, ok := names[cameraID]; ok {
		return name
	}

	return fmt.Sprintf("camera %d", cameraID)
}
