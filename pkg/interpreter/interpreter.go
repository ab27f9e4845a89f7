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

// Package interpreter turns raw utility output into domain events. It owns
// all knowledge about what the external utilities print: prompt wording,
// identity file layout, escape sequence noise. Session code feeds it chunks
// in arrival order and reacts to the events it returns.
package interpreter

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ykprov/ykprov-cli/pkg/constants"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

type EventKind int

const (
	// EventGenerating marks the start of key generation. It precedes the
	// PIN prompt, some versions skip the prompt entirely, so it doubles as
	// a PIN injection trigger.
	EventGenerating EventKind = iota
	// EventPinPrompt means the utility waits for a PIN line on stdin.
	EventPinPrompt
	// EventTouchPrompt means the device waits for physical touch.
	EventTouchPrompt
	// EventIdentity carries the identity tag line.
	EventIdentity
	// EventRecipient carries the public recipient.
	EventRecipient
	// EventError carries an error line the utility printed.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventGenerating:
		return "generating"
	case EventPinPrompt:
		return "pin-prompt"
	case EventTouchPrompt:
		return "touch-prompt"
	case EventIdentity:
		return "identity"
	case EventRecipient:
		return "recipient"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is one recognized occurrence in the output stream. Line holds the
// cleaned text that triggered it, Value the extracted payload when the kind
// carries one.
type Event struct {
	Kind  EventKind
	Line  string
	Value string
}

// Interpreter consumes an output stream incrementally. Prompts are
// recognized on unterminated lines too, since utilities leave the cursor
// after the prompt text; payload lines (identity, recipient, errors) are
// only trusted once complete, or at Flush when the stream is over.
type Interpreter struct {
	pending []byte
	seen    map[EventKind]bool
}

func New() *Interpreter {
	return &Interpreter{seen: map[EventKind]bool{}}
}

// Feed appends a raw chunk and returns the events newly recognized. Chunks
// must arrive in stream order; escape sequences and lines may split at any
// byte boundary.
func (i *Interpreter) Feed(chunk []byte) []Event {
	i.pending = append(i.pending, chunk...)
	var events []Event
	for {
		idx := bytes.IndexByte(i.pending, '\n')
		if idx < 0 {
			break
		}
		line := cleanLine(i.pending[:idx])
		i.pending = i.pending[idx+1:]
		if ev, ok := i.classifyLine(line); ok {
			events = append(events, ev)
		}
	}
	if len(i.pending) > 0 {
		line := cleanLine(i.pending)
		if kind, ok := promptKind(line); ok {
			// a recognized prompt is complete even without its terminator;
			// consume it, or the next line concatenates onto it and is
			// misread as a repeat of this prompt
			i.pending = nil
			if ev, emitted := i.emit(kind, strings.TrimSpace(line), ""); emitted {
				events = append(events, ev)
			}
		}
	}
	return events
}

// Flush classifies whatever remains as a final complete line. Utilities do
// not always terminate their last output line before exiting.
func (i *Interpreter) Flush() []Event {
	if len(i.pending) == 0 {
		return nil
	}
	line := cleanLine(i.pending)
	i.pending = nil
	if ev, ok := i.classifyLine(line); ok {
		return []Event{ev}
	}
	return nil
}

func (i *Interpreter) classifyLine(line string) (Event, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Event{}, false
	}
	if strings.HasPrefix(trimmed, "#") {
		// identity file header block; the recipient hides in there on
		// retrieval output
		if v := recipientFromComment(trimmed); v != "" {
			return i.emit(EventRecipient, trimmed, v)
		}
		return Event{}, false
	}
	switch {
	case isGenerating(trimmed):
		return i.emit(EventGenerating, trimmed, "")
	case isPinPrompt(trimmed):
		return i.emit(EventPinPrompt, trimmed, "")
	case isTouchPrompt(trimmed):
		return i.emit(EventTouchPrompt, trimmed, "")
	case strings.HasPrefix(trimmed, constants.IdentityPrefix):
		return i.emit(EventIdentity, trimmed, trimmed)
	case strings.HasPrefix(trimmed, constants.RecipientPrefix):
		return i.emit(EventRecipient, trimmed, strings.Fields(trimmed)[0])
	case isErrorOutput(trimmed):
		return i.emit(EventError, trimmed, trimmed)
	}
	return Event{}, false
}

// promptKind only recognizes the kinds that legitimately appear without a
// line terminator.
func promptKind(line string) (EventKind, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return 0, false
	}
	switch {
	case isGenerating(trimmed):
		return EventGenerating, true
	case isPinPrompt(trimmed):
		return EventPinPrompt, true
	case isTouchPrompt(trimmed):
		return EventTouchPrompt, true
	}
	return 0, false
}

// emit suppresses repeats: prompts reappear on every repaint but must only
// trigger once per session. Errors pass through unfiltered.
func (i *Interpreter) emit(kind EventKind, line, value string) (Event, bool) {
	if kind != EventError && i.seen[kind] {
		return Event{}, false
	}
	i.seen[kind] = true
	return Event{Kind: kind, Line: line, Value: value}, true
}

// cleanLine strips escapes, drops the CR of CRLF endings and keeps only the
// text after the last carriage return, which is what a terminal would show
// after in-place repaints.
func cleanLine(raw []byte) string {
	clean := StripEscapes(raw)
	clean = bytes.TrimRight(clean, "\r")
	if idx := bytes.LastIndexByte(clean, '\r'); idx >= 0 {
		clean = clean[idx+1:]
	}
	return string(clean)
}

func recipientFromComment(line string) string {
	idx := strings.Index(line, "Recipient:")
	if idx < 0 {
		return ""
	}
	v := strings.TrimSpace(line[idx+len("Recipient:"):])
	if strings.HasPrefix(v, constants.RecipientPrefix) {
		return v
	}
	return ""
}

// ParseIdentity interprets a complete identity file as written by the
// identity utility on generation or retrieval. The identity tag is
// mandatory; the recipient may be absent on odd utility versions.
func ParseIdentity(output []byte) (identity string, recipient string, err error) {
	in := New()
	events := append(in.Feed(output), in.Flush()...)
	for _, ev := range events {
		switch ev.Kind {
		case EventIdentity:
			identity = ev.Value
		case EventRecipient:
			recipient = ev.Value
		}
	}
	if identity == "" {
		return "", "", fmt.Errorf("no identity tag in utility output")
	}
	return identity, recipient, nil
}

// ParseRecipients interprets a recipients listing. Each entry is a comment
// header block followed by the bare recipient line.
func ParseRecipients(output []byte) []v1.Recipient {
	var out []v1.Recipient
	var cur v1.Recipient
	for _, raw := range strings.Split(string(StripEscapes(output)), "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			meta := strings.TrimSpace(strings.TrimPrefix(line, "#"))
			switch {
			case strings.HasPrefix(meta, "Serial:"):
				rest := strings.TrimSpace(strings.TrimPrefix(meta, "Serial:"))
				parts := strings.SplitN(rest, ",", 2)
				cur.Serial = strings.TrimSpace(parts[0])
				if len(parts) == 2 {
					slot := strings.TrimSpace(parts[1])
					cur.Slot = strings.TrimSpace(strings.TrimPrefix(slot, "Slot:"))
				}
			case strings.HasPrefix(meta, "Name:"):
				cur.Name = strings.TrimSpace(strings.TrimPrefix(meta, "Name:"))
			}
			continue
		}
		if strings.HasPrefix(line, constants.RecipientPrefix) {
			cur.Recipient = strings.Fields(line)[0]
			out = append(out, cur)
			cur = v1.Recipient{}
		}
	}
	return out
}
