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

package session

import (
	"os/exec"
	"time"

	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

// directSession runs a child over plain pipes. The child detects it has no
// terminal and prints no prompts; callers interpret the full output once
// Done closes.
type directSession struct {
	process
}

func newDirect(log v1.Logger, proto v1.TermProtocol, name string, args []string, timeout time.Duration) (*directSession, error) {
	cmd := exec.Command(name, args...)
	buf := &outputBuffer{}
	cmd.Stdout = buf
	cmd.Stderr = buf

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}

	s := &directSession{process{
		log:   log,
		proto: proto,
		mode:  v1.DirectMode,
		cmd:   cmd,
		buf:   buf,
		input: stdin,
		done:  make(chan struct{}),
	}}

	if err = cmd.Start(); err != nil {
		return nil, err
	}
	s.arm(timeout)

	go func() {
		// Wait also collects both output copiers, so the buffer is
		// complete when Done closes.
		werr := cmd.Wait()
		_ = stdin.Close()
		s.recordExit(werr)
	}()

	return s, nil
}
