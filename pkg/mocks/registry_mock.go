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
	"sync"

	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

// FakeRegistry is an in-memory registry boundary with scriptable failures.
type FakeRegistry struct {
	CheckErr error
	AddErr   error
	ListErr  error

	mu      sync.Mutex
	entries []v1.RegistryEntry
}

func NewFakeRegistry(entries ...v1.RegistryEntry) *FakeRegistry {
	return &FakeRegistry{entries: entries}
}

func (f *FakeRegistry) IsRegistered(serial string) (bool, error) {
	if f.CheckErr != nil {
		return false, f.CheckErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.entries {
		if e.Serial == serial {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeRegistry) Add(entry v1.RegistryEntry) error {
	if f.AddErr != nil {
		return f.AddErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *FakeRegistry) List() ([]v1.RegistryEntry, error) {
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]v1.RegistryEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}
