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

// SerialLocks serializes operations per device serial within this process.
// A token can only service one session at a time; a second concurrent
// operation must wait for the first to finish, not interleave with it.
type SerialLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewSerialLocks() *SerialLocks {
	return &SerialLocks{locks: map[string]*sync.Mutex{}}
}

func (s *SerialLocks) get(serial string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[serial]
	if !ok {
		l = &sync.Mutex{}
		s.locks[serial] = l
	}
	return l
}

// Lock blocks until the serial is free.
func (s *SerialLocks) Lock(serial string) {
	s.get(serial).Lock()
}

// TryLock acquires the serial without blocking, reporting success. Callers
// use a failed try to log that they are about to wait.
func (s *SerialLocks) TryLock(serial string) bool {
	return s.get(serial).TryLock()
}

// Unlock releases the serial. Unlocking a serial that is not held panics,
// same as a bare mutex.
func (s *SerialLocks) Unlock(serial string) {
	s.get(serial).Unlock()
}
