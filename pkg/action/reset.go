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
	ykprovError "github.com/ykprov/ykprov-cli/pkg/error"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
	"github.com/ykprov/ykprov-cli/pkg/utils"
	"github.com/ykprov/ykprov-cli/pkg/ykman"
)

// ResetAction wipes the PIV application of a device: all keys, certificates
// and credentials return to factory values. The identity on the token is
// destroyed beyond recovery, hence the confirmation gate in ResetSpec.
type ResetAction struct {
	cfg   *v1.RunConfig
	spec  *v1.ResetSpec
	ykman *ykman.Ykman
}

func NewResetAction(cfg *v1.RunConfig, spec *v1.ResetSpec) *ResetAction {
	return &ResetAction{
		cfg:   cfg,
		spec:  spec,
		ykman: ykman.New(cfg),
	}
}

func (r *ResetAction) Run() (err error) {
	if serr := r.spec.Sanitize(); serr != nil {
		return ykprovError.NewFromError(serr, ykprovError.ConfirmationMissing)
	}

	r.cfg.Locks.Lock(r.spec.Serial)
	cleanup := utils.NewCleanStack()
	defer func() { err = cleanup.Cleanup(err) }()
	cleanup.Push(func() error {
		r.cfg.Locks.Unlock(r.spec.Serial)
		return nil
	})

	r.cfg.Logger.Warnf("Resetting PIV application on device %s, all keys will be destroyed", r.spec.Serial)
	return r.ykman.ResetPIV(r.spec.Serial)
}
