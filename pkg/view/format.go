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

package view

import (
	"fmt"
	"time"
	"unicode/utf8"
)

const resultPreviewLength = 48

// FormatUptime renders whole seconds as "{H}h {M}m". Seconds truncate;
// 3661 renders as "1h 1m". Negative input clamps to zero.
func FormatUptime(totalSeconds int) string {
	if totalSeconds < 0 {
		totalSeconds = 0
	}

	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60

	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatTimestamp shortens an RFC 3339 timestamp to wall-clock time.
// Anything unparseable passes through untouched; timestamps are
// backend-owned and never validated here.
func FormatTimestamp(ts string) string {
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}

	return parsed.Format("15:04:05")
}

// ResultPreview compacts an opaque result payload into one short
// line for the prediction log. The payload is never interpreted, only
// clipped.
func ResultPreview(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}

	s := string(raw)
	if len(s) <= resultPreviewLength {
		return s
	}

	truncated := s[:resultPreviewLength-3]
	for len(truncated) > 0 && !utf8.ValidString(truncated) {
		truncated = truncated[:len(truncated)-1]
	}

	return truncated + "..."
}
