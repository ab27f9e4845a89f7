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
	"fmt"
	"sync"
	"time"

	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

// FakeSession is a scripted stand-in for a running utility process. Tests
// queue output chunks with Emit and finish it with Exit or TimeoutNow;
// hooks observe what the workflow writes back.
type FakeSession struct {
	SessionMode v1.SessionMode
	// OnWriteLine fires synchronously on every WriteLine, letting a script
	// emit the utility's reaction to input.
	OnWriteLine func(text string)
	WriteErr    error

	mu       sync.Mutex
	written  [][]byte
	lines    []string
	pending  [][]byte
	output   []byte
	done     chan struct{}
	exitCode int
	exited   bool
	timedOut bool
	killed   int
}

func NewFakeSession(mode v1.SessionMode) *FakeSession {
	return &FakeSession{
		SessionMode: mode,
		done:        make(chan struct{}),
	}
}

func (s *FakeSession) Mode() v1.SessionMode {
	return s.SessionMode
}

func (s *FakeSession) Write(p []byte) error {
	s.mu.Lock()
	cp := make([]byte, len(p))
	copy(cp, p)
	s.written = append(s.written, cp)
	s.mu.Unlock()
	return s.WriteErr
}

func (s *FakeSession) WriteLine(text string) error {
	s.mu.Lock()
	s.lines = append(s.lines, text)
	hook := s.OnWriteLine
	s.mu.Unlock()
	if hook != nil {
		hook(text)
	}
	return s.WriteErr
}

func (s *FakeSession) PollOutput() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.pending) == 0 {
		return nil
	}
	var out []byte
	for _, chunk := range s.pending {
		out = append(out, chunk...)
	}
	s.pending = nil
	return out
}

func (s *FakeSession) Output() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]byte, len(s.output))
	copy(out, s.output)
	return out
}

func (s *FakeSession) Done() <-chan struct{} {
	return s.done
}

func (s *FakeSession) ExitStatus() (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exitCode, s.exited
}

func (s *FakeSession) TimedOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timedOut
}

func (s *FakeSession) Kill() error {
	s.mu.Lock()
	s.killed++
	s.mu.Unlock()
	s.Exit(-1)
	return nil
}

// Emit queues a chunk for the next PollOutput and appends it to the full
// output.
func (s *FakeSession) Emit(chunk string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = append(s.pending, []byte(chunk))
	s.output = append(s.output, chunk...)
}

// Exit marks the process finished. Safe to call more than once.
func (s *FakeSession) Exit(code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.exited {
		return
	}
	s.exited = true
	s.exitCode = code
	close(s.done)
}

// TimeoutNow simulates the session deadline firing.
func (s *FakeSession) TimeoutNow() {
	s.mu.Lock()
	s.timedOut = true
	s.mu.Unlock()
	s.Exit(-1)
}

// WrittenLines returns every WriteLine payload in order.
func (s *FakeSession) WrittenLines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// WrittenBytes returns every raw Write payload in order.
func (s *FakeSession) WrittenBytes() [][]byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([][]byte, len(s.written))
	copy(out, s.written)
	return out
}

// KillCount reports how many times Kill ran.
func (s *FakeSession) KillCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.killed
}

// SpawnCall records one Spawn invocation on the fake controller.
type SpawnCall struct {
	Name    string
	Args    []string
	Mode    v1.SessionMode
	Timeout time.Duration
}

// FakeController hands out scripted sessions in queue order.
type FakeController struct {
	SpawnErr error
	// OnSpawn fires after a session is handed out, so scripts can start
	// feeding it.
	OnSpawn func(call SpawnCall, s *FakeSession)

	mu       sync.Mutex
	queue    []*FakeSession
	spawned  []SpawnCall
	sessions []*FakeSession
}

func NewFakeController() *FakeController {
	return &FakeController{}
}

// Queue appends a session to hand out on the next Spawn.
func (c *FakeController) Queue(s *FakeSession) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, s)
}

func (c *FakeController) Spawn(name string, args []string, mode v1.SessionMode, timeout time.Duration) (v1.Session, error) {
	call := SpawnCall{Name: name, Args: args, Mode: mode, Timeout: timeout}
	c.mu.Lock()
	c.spawned = append(c.spawned, call)
	if c.SpawnErr != nil {
		err := c.SpawnErr
		c.mu.Unlock()
		return nil, err
	}
	if len(c.queue) == 0 {
		c.mu.Unlock()
		return nil, fmt.Errorf("no scripted session for '%s'", name)
	}
	s := c.queue[0]
	c.queue = c.queue[1:]
	s.SessionMode = mode
	c.sessions = append(c.sessions, s)
	hook := c.OnSpawn
	c.mu.Unlock()
	if hook != nil {
		hook(call, s)
	}
	return s, nil
}

// Spawned returns the recorded Spawn calls.
func (c *FakeController) Spawned() []SpawnCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]SpawnCall, len(c.spawned))
	copy(out, c.spawned)
	return out
}

// Sessions returns the sessions handed out so far.
func (c *FakeController) Sessions() []*FakeSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*FakeSession, len(c.sessions))
	copy(out, c.sessions)
	return out
}
