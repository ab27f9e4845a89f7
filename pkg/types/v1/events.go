/*
Copyright © 2024 - 2026 The ykprov Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package v1

import "time"

// ProgressPhase names a coarse stage of a provisioning workflow. Phases are
// ordered; a workflow may skip phases its device state does not need but
// never revisits one.
type ProgressPhase string

const (
	PhaseStarting            ProgressPhase = "starting"
	PhaseChangingCredentials ProgressPhase = "changing-credentials"
	PhaseGeneratingIdentity  ProgressPhase = "generating-identity"
	PhaseWaitingForTouch     ProgressPhase = "waiting-for-touch"
	PhaseCompleted           ProgressPhase = "completed"
	PhaseFailed              ProgressPhase = "failed"
)

// ProgressEvent is one observable step of a running operation. Percent is a
// monotonic estimate in [0,100]; Message is human-readable and safe to show
// verbatim, in particular the touch phase carries the instruction the user
// must act on.
type ProgressEvent struct {
	OperationID string        `json:"operation_id"`
	Serial      string        `json:"serial"`
	Phase       ProgressPhase `json:"phase"`
	Percent     int           `json:"percent"`
	Message     string        `json:"message"`
	Timestamp   time.Time     `json:"timestamp"`
}

// ProgressSink receives events as an operation advances. Implementations
// must not block: emission happens inline on the workflow path.
type ProgressSink interface {
	Emit(event ProgressEvent)
}

// SinkFunc adapts a plain function to a ProgressSink.
type SinkFunc func(event ProgressEvent)

func (f SinkFunc) Emit(event ProgressEvent) { f(event) }

// NullSink discards all events.
type NullSink struct{}

func (NullSink) Emit(_ ProgressEvent) {}
