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

package action

import (
	"github.com/ykprov/ykprov-cli/pkg/ageplugin"
	"github.com/ykprov/ykprov-cli/pkg/classifier"
	ykprovError "github.com/ykprov/ykprov-cli/pkg/error"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
	"github.com/ykprov/ykprov-cli/pkg/ykman"
)

// StatusAction classifies a device without changing it.
type StatusAction struct {
	cfg  *v1.RunConfig
	spec *v1.StatusSpec
}

func NewStatusAction(cfg *v1.RunConfig, spec *v1.StatusSpec) *StatusAction {
	return &StatusAction{cfg: cfg, spec: spec}
}

// Run probes and resolves the device state. The returned device carries the
// registry label when the device is registered.
func (s *StatusAction) Run() (device *v1.Device, state v1.DeviceState, err error) {
	if serr := s.spec.Sanitize(); serr != nil {
		return nil, v1.StateUnknown, ykprovError.NewFromError(serr, ykprovError.InvalidSpec)
	}

	yk := ykman.New(s.cfg)
	serial := s.spec.Serial
	if serial == "" {
		serial, err = yk.FindSerial()
		if err != nil {
			return nil, v1.StateUnknown, err
		}
	}

	s.cfg.Locks.Lock(serial)
	defer s.cfg.Locks.Unlock(serial)

	device, state, err = classifier.New(s.cfg.Logger, yk, ageplugin.New(s.cfg), s.cfg.Registry).Classify(serial)
	if err != nil {
		return device, state, err
	}

	if state == v1.StateRegistered {
		entries, lerr := s.cfg.Registry.List()
		if lerr != nil {
			return device, state, lerr
		}
		for _, entry := range entries {
			if entry.Serial == serial {
				device.Name = entry.Label
				if device.IdentityTag == "" {
					device.IdentityTag = entry.IdentityTag
				}
				break
			}
		}
	}
	return device, state, nil
}
