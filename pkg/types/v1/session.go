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

// SessionMode selects how a utility process is attached.
type SessionMode int

const (
	// DirectMode attaches plain pipes. The utility sees no terminal, prints
	// no prompts and its full output is interpreted after exit.
	DirectMode SessionMode = iota
	// InteractiveMode attaches a pseudo-terminal so the utility believes a
	// human is present and emits its prompt sequence incrementally.
	InteractiveMode
)

func (m SessionMode) String() string {
	if m == InteractiveMode {
		return "interactive"
	}
	return "direct"
}

// Session is one running utility process. Output accumulates internally in
// arrival order regardless of mode; PollOutput drains whatever arrived since
// the previous call.
type Session interface {
	Mode() SessionMode
	// Write sends raw bytes to the process stdin (or the terminal input in
	// interactive mode).
	Write(p []byte) error
	// WriteLine sends text followed by the platform line terminator.
	WriteLine(text string) error
	// PollOutput returns output accumulated since the last poll, never
	// blocking. It keeps returning buffered data after process exit until
	// the buffer drains.
	PollOutput() []byte
	// Output returns everything the process wrote since the session started.
	Output() []byte
	// Done is closed once the process has exited and all output has been
	// collected.
	Done() <-chan struct{}
	// ExitStatus reports the process exit code. ok is false while the
	// process still runs.
	ExitStatus() (code int, ok bool)
	// TimedOut reports whether the session deadline killed the process.
	TimedOut() bool
	// Kill terminates the process immediately. Safe to call more than once.
	Kill() error
}

// SessionController spawns utility processes with a hard wall-clock
// deadline. Sessions are not cancelled by callers mid-flight; expiry of the
// deadline is the only external interruption.
type SessionController interface {
	Spawn(name string, args []string, mode SessionMode, timeout time.Duration) (Session, error)
}
