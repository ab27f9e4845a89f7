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

package mocks

import (
	"sync"

	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

// ProgressRecorder captures every emitted event for assertions.
type ProgressRecorder struct {
	mu     sync.Mutex
	events []v1.ProgressEvent
}

func NewProgressRecorder() *ProgressRecorder {
	return &ProgressRecorder{}
}

func (r *ProgressRecorder) Emit(event v1.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns the recorded events in emission order.
func (r *ProgressRecorder) Events() []v1.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]v1.ProgressEvent, len(r.events))
	copy(out, r.events)
	return out
}

// Phases returns just the phase sequence, the usual assertion target.
func (r *ProgressRecorder) Phases() []v1.ProgressPhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]v1.ProgressPhase, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Phase
	}
	return out
}

// Last returns the most recent event.
func (r *ProgressRecorder) Last() (v1.ProgressEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return v1.ProgressEvent{}, false
	}
	return r.events[len(r.events)-1], true
}

// Reset clears the recording.
func (r *ProgressRecorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
