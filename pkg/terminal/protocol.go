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

// Package terminal implements the platform specific line discipline used by
// interactive sessions. Unix terminals take LF terminated input and never
// query the attached terminal; Windows pseudo consoles take CRLF and probe
// cursor position before rendering prompts, stalling until someone answers.
package terminal

import (
	"bytes"
	"io"
	"runtime"
	"sync"

	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

var (
	// dsrQuery is the Device Status Report the Windows console host emits
	// to locate the cursor.
	dsrQuery = []byte("\x1b[6n")
	// dsrReply claims the cursor sits at row 1 column 1, which is all a
	// full screen redraw needs to proceed.
	dsrReply = []byte("\x1b[1;1R")
)

// NewProtocol returns the line discipline for the platform the binary runs
// on.
func NewProtocol() v1.TermProtocol {
	return NewProtocolFor(runtime.GOOS)
}

// NewProtocolFor returns the line discipline for the given GOOS value. Split
// out so both flavors stay testable from any platform.
func NewProtocolFor(goos string) v1.TermProtocol {
	if goos == "windows" {
		return &windowsProtocol{}
	}
	return &unixProtocol{}
}

type unixProtocol struct{}

func (p *unixProtocol) WriteLine(w io.Writer, text string) error {
	_, err := io.WriteString(w, text+"\n")
	return err
}

// RespondToQuery never replies: Unix utilities in this subsystem do not
// interrogate the terminal.
func (p *unixProtocol) RespondToQuery(_ io.Writer, _ []byte) (bool, error) {
	return false, nil
}

type windowsProtocol struct {
	mu sync.Mutex
	// tail holds a trailing fragment of the previous chunk that could be
	// the start of a query split across reads.
	tail []byte
}

func (p *windowsProtocol) WriteLine(w io.Writer, text string) error {
	_, err := io.WriteString(w, text+"\r\n")
	return err
}

// RespondToQuery answers every cursor position query found in the chunk. It
// must see all output chunks in arrival order, otherwise a query spanning a
// chunk boundary goes unanswered and the utility hangs.
func (p *windowsProtocol) RespondToQuery(w io.Writer, chunk []byte) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	data := make([]byte, 0, len(p.tail)+len(chunk))
	data = append(data, p.tail...)
	data = append(data, chunk...)

	responded := false
	for {
		idx := bytes.Index(data, dsrQuery)
		if idx < 0 {
			break
		}
		if _, err := w.Write(dsrReply); err != nil {
			p.tail = nil
			return responded, err
		}
		responded = true
		data = data[idx+len(dsrQuery):]
	}
	p.tail = pendingPrefix(data, dsrQuery)
	return responded, nil
}

// pendingPrefix returns the longest suffix of data that is a proper prefix
// of pattern, copied so it survives the caller reusing the chunk buffer.
func pendingPrefix(data, pattern []byte) []byte {
	max := len(pattern) - 1
	if len(data) < max {
		max = len(data)
	}
	for n := max; n > 0; n-- {
		if bytes.Equal(data[len(data)-n:], pattern[:n]) {
			keep := make([]byte, n)
			copy(keep, data[len(data)-n:])
			return keep
		}
	}
	return nil
}
