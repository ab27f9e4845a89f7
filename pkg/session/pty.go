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
	"os"
	"os/exec"
	"time"

	"github.com/creack/pty"

	"github.com/ykprov/ykprov-cli/pkg/constants"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

// ptySession runs a child behind a pseudo-terminal. The child believes a
// human is attached and plays its interactive dialogue: prompts, spinners,
// terminal queries.
type ptySession struct {
	process
	ptmx *os.File
}

func newInteractive(log v1.Logger, proto v1.TermProtocol, name string, args []string, timeout time.Duration) (*ptySession, error) {
	cmd := exec.Command(name, args...)
	cmd.Env = append(os.Environ(), constants.TermEnv)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: constants.PtyRows,
		Cols: constants.DefaultPtyCols(),
	})
	if err != nil {
		return nil, err
	}

	s := &ptySession{
		process: process{
			log:   log,
			proto: proto,
			mode:  v1.InteractiveMode,
			cmd:   cmd,
			buf:   &outputBuffer{},
			input: ptmx,
			done:  make(chan struct{}),
		},
		ptmx: ptmx,
	}
	s.arm(timeout)

	readerDone := make(chan struct{})
	go s.readLoop(readerDone)
	go s.waitLoop(readerDone)

	return s, nil
}

// readLoop pulls raw chunks off the terminal. Queries get answered before
// the chunk lands in the buffer, so the child never stalls waiting for a
// reply the caller cannot know to send.
func (s *ptySession) readLoop(readerDone chan struct{}) {
	defer close(readerDone)
	buf := make([]byte, constants.SessionReadChunk)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			if _, qerr := s.proto.RespondToQuery(s.ptmx, buf[:n]); qerr != nil {
				s.log.Debugf("Terminal query reply failed: %v", qerr)
			}
			_, _ = s.buf.Write(buf[:n])
		}
		if err != nil {
			// EIO is the normal read result once the child side hangs up
			return
		}
	}
}

// waitLoop reaps the child, gives the reader a moment to drain what the
// kernel still buffers, then forces it off the closed terminal.
func (s *ptySession) waitLoop(readerDone chan struct{}) {
	werr := s.cmd.Wait()
	time.Sleep(constants.PtyDrainPause)
	_ = s.ptmx.Close()
	<-readerDone
	s.recordExit(werr)
}
