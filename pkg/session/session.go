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

// Package session runs the external utilities as supervised child
// processes. Direct sessions attach plain pipes for utilities that behave
// when no terminal is present; interactive sessions attach a
// pseudo-terminal so prompt driven utilities play their full dialogue. Every
// session carries a hard wall-clock deadline, the only way one is ever
// interrupted from outside.
package session

import (
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

// process is the shared supervision state of both session flavors.
type process struct {
	log   v1.Logger
	proto v1.TermProtocol
	mode  v1.SessionMode
	cmd   *exec.Cmd
	buf   *outputBuffer
	input io.Writer
	done  chan struct{}
	timer *time.Timer

	mu       sync.RWMutex
	exited   bool
	exitCode int
	timedOut bool
	killed   bool
}

func (p *process) Mode() v1.SessionMode {
	return p.mode
}

func (p *process) Write(data []byte) error {
	_, err := p.input.Write(data)
	return err
}

func (p *process) WriteLine(text string) error {
	return p.proto.WriteLine(p.input, text)
}

func (p *process) PollOutput() []byte {
	return p.buf.Drain()
}

func (p *process) Output() []byte {
	return p.buf.Bytes()
}

func (p *process) Done() <-chan struct{} {
	return p.done
}

func (p *process) ExitStatus() (int, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.exitCode, p.exited
}

func (p *process) TimedOut() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.timedOut
}

// Kill terminates the child immediately. Calling it again, or after exit,
// does nothing.
func (p *process) Kill() error {
	p.mu.Lock()
	if p.exited || p.killed {
		p.mu.Unlock()
		return nil
	}
	p.killed = true
	p.mu.Unlock()
	return p.cmd.Process.Kill()
}

// arm starts the deadline clock. The timer only acts when the child is
// still alive at expiry.
func (p *process) arm(timeout time.Duration) {
	p.timer = time.AfterFunc(timeout, func() {
		p.mu.Lock()
		if p.exited {
			p.mu.Unlock()
			return
		}
		p.timedOut = true
		p.mu.Unlock()
		p.log.Warnf("Session deadline of %v expired, killing %s", timeout, p.cmd.Path)
		_ = p.Kill()
	})
}

// recordExit stores the child's exit result and releases Done waiters.
func (p *process) recordExit(err error) {
	if p.timer != nil {
		p.timer.Stop()
	}
	code := 0
	if err != nil {
		code = -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
	}
	p.mu.Lock()
	p.exited = true
	p.exitCode = code
	p.mu.Unlock()
	p.log.Debugf("Session %s exited with code %d", p.cmd.Path, code)
	close(p.done)
}

func commandLine(name string, args []string) string {
	if len(args) == 0 {
		return name
	}
	return fmt.Sprintf("%s %s", name, strings.Join(args, " "))
}
