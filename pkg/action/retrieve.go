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
	"fmt"

	"github.com/ykprov/ykprov-cli/pkg/ageplugin"
	ykprovError "github.com/ykprov/ykprov-cli/pkg/error"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
	"github.com/ykprov/ykprov-cli/pkg/utils"
)

// RetrieveAction reads the identity already stored on a device. Only public
// material leaves the token, so the whole operation runs over a direct
// session with no PIN and no touch. Asking the user for credentials here
// would be requesting more privilege than the read needs.
type RetrieveAction struct {
	cfg    *v1.RunConfig
	spec   *v1.RetrieveSpec
	plugin *ageplugin.AgePlugin
}

func NewRetrieveAction(cfg *v1.RunConfig, spec *v1.RetrieveSpec) *RetrieveAction {
	return &RetrieveAction{
		cfg:    cfg,
		spec:   spec,
		plugin: ageplugin.New(cfg),
	}
}

func (r *RetrieveAction) Run() (result *v1.ProvisionResult, err error) {
	if serr := r.spec.Sanitize(); serr != nil {
		return nil, ykprovError.NewFromError(serr, ykprovError.InvalidSpec)
	}
	serial := r.spec.Serial

	r.cfg.Locks.Lock(serial)
	cleanup := utils.NewCleanStack()
	defer func() { err = cleanup.Cleanup(err) }()
	cleanup.Push(func() error {
		r.cfg.Locks.Unlock(serial)
		return nil
	})

	prog := newProgress(r.cfg.Progress, serial)
	prog.emit(v1.PhaseStarting, percentStarting, fmt.Sprintf("Reading identity from device %s", serial))

	identity, recipient, err := r.plugin.RetrieveIdentity(serial)
	if err != nil {
		r.cfg.Logger.Errorf("Identity retrieval failed: %s", err.Error())
		prog.fail(fmt.Sprintf("retrieve-identity: %s", err.Error()))
		return nil, err
	}

	prog.emit(v1.PhaseCompleted, percentCompleted, fmt.Sprintf("Identity read from device %s", serial))
	return &v1.ProvisionResult{
		Serial:      serial,
		Recipient:   recipient,
		IdentityTag: identity,
	}, nil
}
