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

// Package action holds the provisioning workflows. Each action runs one
// sequential step chain against a single device, publishing a progress
// event per phase transition and aborting on the first failing step, never
// retrying on its own.
package action

import (
	"time"

	"github.com/google/uuid"

	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

const (
	percentStarting   = 0
	percentPinChange  = 15
	percentPukChange  = 30
	percentHardenKey  = 45
	percentGenerating = 60
	percentTouch      = 70
	percentCompleted  = 100

	touchMessage = "Touch your YubiKey when it blinks"
)

// progress publishes the ordered event stream of one operation. All events
// of an operation share one minted id so consumers can split interleaved
// streams; the touch phase is latched so a repeated prompt line never
// produces a second event.
type progress struct {
	sink      v1.ProgressSink
	operation string
	serial    string
	percent   int
	touched   bool
}

func newProgress(sink v1.ProgressSink, serial string) *progress {
	return &progress{
		sink:      sink,
		operation: uuid.NewString(),
		serial:    serial,
	}
}

func (p *progress) emit(phase v1.ProgressPhase, percent int, message string) {
	p.percent = percent
	p.sink.Emit(v1.ProgressEvent{
		OperationID: p.operation,
		Serial:      p.serial,
		Phase:       phase,
		Percent:     percent,
		Message:     message,
		Timestamp:   time.Now(),
	})
}

// touch reports the waiting-for-touch transition, at most once.
func (p *progress) touch() {
	if p.touched {
		return
	}
	p.touched = true
	p.emit(v1.PhaseWaitingForTouch, percentTouch, touchMessage)
}

// fail reports the aborting step. The percent of the last successful phase
// is kept so a consumer's bar does not jump on failure.
func (p *progress) fail(message string) {
	p.sink.Emit(v1.ProgressEvent{
		OperationID: p.operation,
		Serial:      p.serial,
		Phase:       v1.PhaseFailed,
		Percent:     p.percent,
		Message:     message,
		Timestamp:   time.Now(),
	})
}
