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

import "sync"

// outputBuffer accumulates everything a child process wrote, in arrival
// order, and hands out the unread part on demand. Both output streams of a
// direct session write into it concurrently.
type outputBuffer struct {
	mu   sync.Mutex
	data []byte
	off  int
}

func (b *outputBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, p...)
	return len(p), nil
}

// Drain returns the bytes arrived since the previous Drain, or nil when
// nothing new arrived.
func (b *outputBuffer) Drain() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.off >= len(b.data) {
		return nil
	}
	out := make([]byte, len(b.data)-b.off)
	copy(out, b.data[b.off:])
	b.off = len(b.data)
	return out
}

// Bytes returns a copy of the full output seen so far, independent of the
// drain position.
func (b *outputBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}
