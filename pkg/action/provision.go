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
	"time"

	"github.com/ykprov/ykprov-cli/pkg/ageplugin"
	"github.com/ykprov/ykprov-cli/pkg/classifier"
	"github.com/ykprov/ykprov-cli/pkg/constants"
	ykprovError "github.com/ykprov/ykprov-cli/pkg/error"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
	"github.com/ykprov/ykprov-cli/pkg/utils"
	"github.com/ykprov/ykprov-cli/pkg/ykman"
)

// ProvisionAction classifies a device and runs the step chain its state
// requires, ending with a registered identity. The chain per state:
//
//	new:             change PIN, change PUK, harden key, generate
//	reused:          harden key, generate
//	reused-hardened: generate
//	orphaned:        retrieve only, no credentials, no touch
//
// A registered device is refused.
type ProvisionAction struct {
	cfg    *v1.RunConfig
	spec   *v1.ProvisionSpec
	ykman  *ykman.Ykman
	plugin *ageplugin.AgePlugin
}

func NewProvisionAction(cfg *v1.RunConfig, spec *v1.ProvisionSpec) *ProvisionAction {
	return &ProvisionAction{
		cfg:    cfg,
		spec:   spec,
		ykman:  ykman.New(cfg),
		plugin: ageplugin.New(cfg),
	}
}

func (p *ProvisionAction) Run() (result *v1.ProvisionResult, err error) {
	if serr := p.spec.Sanitize(); serr != nil {
		return nil, ykprovError.NewFromError(serr, ykprovError.InvalidSpec)
	}

	serial := p.spec.Serial
	if serial == "" {
		serial, err = p.ykman.FindSerial()
		if err != nil {
			return nil, err
		}
		p.cfg.Logger.Infof("Using connected device %s", serial)
	}

	// The serial lock spans the whole chain: classification probes and the
	// credential steps must not interleave with another operation's
	// sessions against the same token.
	p.cfg.Locks.Lock(serial)
	cleanup := utils.NewCleanStack()
	defer func() { err = cleanup.Cleanup(err) }()
	cleanup.Push(func() error {
		p.cfg.Locks.Unlock(serial)
		return nil
	})

	prog := newProgress(p.cfg.Progress, serial)
	prog.emit(v1.PhaseStarting, percentStarting, fmt.Sprintf("Inspecting device %s", serial))

	device, state, err := classifier.New(p.cfg.Logger, p.ykman, p.plugin, p.cfg.Registry).Classify(serial)
	if err != nil {
		return p.fail(prog, "classify", err)
	}
	p.cfg.Logger.Infof("Device %s is in state '%s'", serial, state)

	switch state {
	case v1.StateRegistered:
		return p.fail(prog, "classify", ykprovError.NewKind(ykprovError.KindInvalidState,
			fmt.Sprintf("device %s is already registered as '%s'", serial, device.Name),
			ykprovError.DeviceAlreadyRegistered))
	case v1.StateOrphaned:
		return p.recover(prog, device)
	}

	// Only now is it known which credentials the chain uses, so this is the
	// earliest point secrets may be requested. The orphaned and registered
	// paths above never ask for any.
	if err = p.resolveCredentials(state); err != nil {
		return p.fail(prog, "credentials", err)
	}

	switch state {
	case v1.StateNew:
		prog.emit(v1.PhaseChangingCredentials, percentPinChange, "Changing PIN")
		if err = p.ykman.ChangePIN(serial, constants.DefaultPIN, p.spec.Pin); err != nil {
			return p.fail(prog, "change-pin", err)
		}
		prog.emit(v1.PhaseChangingCredentials, percentPukChange, "Changing PUK")
		if err = p.ykman.ChangePUK(serial, constants.DefaultPUK, p.spec.Puk); err != nil {
			return p.fail(prog, "change-puk", err)
		}
		fallthrough
	case v1.StateReusedNoHardening:
		prog.emit(v1.PhaseChangingCredentials, percentHardenKey, "Hardening management key")
		if err = p.ykman.ProtectManagementKey(serial, p.spec.Pin); err != nil {
			return p.fail(prog, "harden-key", err)
		}
	case v1.StateReusedHardened:
		// straight to generation
	default:
		return p.fail(prog, "classify", ykprovError.NewKind(ykprovError.KindInvalidState,
			fmt.Sprintf("device %s has no supported provisioning path from state '%s'", serial, state),
			ykprovError.InvalidDeviceState))
	}

	prog.emit(v1.PhaseGeneratingIdentity, percentGenerating, "Generating identity")
	identity, recipient, err := p.plugin.Generate(serial, p.spec.Pin, p.spec.TouchPolicy, p.spec.Label, prog.touch)
	if err != nil {
		return p.fail(prog, "generate-identity", err)
	}

	if err = p.register(serial, recipient, identity); err != nil {
		return p.fail(prog, "register", err)
	}

	prog.emit(v1.PhaseCompleted, percentCompleted, fmt.Sprintf("Device %s provisioned", serial))
	return &v1.ProvisionResult{
		Serial:      serial,
		Recipient:   recipient,
		IdentityTag: identity,
		Label:       p.spec.Label,
	}, nil
}

// resolveCredentials fills the credentials the state's chain needs: the PUK
// is only ever set on a factory device, reused chains need the current PIN
// alone. Missing values go through the spec's prompt.
func (p *ProvisionAction) resolveCredentials(state v1.DeviceState) error {
	type cred struct {
		name  string
		value *string
	}
	needed := []cred{{"PIN", &p.spec.Pin}}
	if state == v1.StateNew {
		needed = append(needed, cred{"PUK", &p.spec.Puk})
	}
	for _, cred := range needed {
		if *cred.value == "" {
			if p.spec.Prompt == nil {
				return ykprovError.New(fmt.Sprintf("undefined %s", cred.name), ykprovError.InvalidSpec)
			}
			value, err := p.spec.Prompt(cred.name)
			if err != nil {
				return err
			}
			*cred.value = value
		}
		if err := v1.CheckCredential(cred.name, *cred.value); err != nil {
			return ykprovError.NewFromError(err, ykprovError.InvalidSpec)
		}
	}
	return nil
}

// recover adopts an orphaned device: its identity already exists, so it is
// read back over a direct session and registered. No credential is changed,
// no PIN is sent and no touch is required on this path.
func (p *ProvisionAction) recover(prog *progress, device *v1.Device) (*v1.ProvisionResult, error) {
	p.cfg.Logger.Infof("Recovering orphaned identity on device %s", device.Serial)
	identity, recipient, err := p.plugin.RetrieveIdentity(device.Serial)
	if err != nil {
		return p.fail(prog, "retrieve-identity", err)
	}
	if err = p.register(device.Serial, recipient, identity); err != nil {
		return p.fail(prog, "register", err)
	}
	prog.emit(v1.PhaseCompleted, percentCompleted, fmt.Sprintf("Device %s recovered", device.Serial))
	return &v1.ProvisionResult{
		Serial:      device.Serial,
		Recipient:   recipient,
		IdentityTag: identity,
		Label:       p.spec.Label,
	}, nil
}

func (p *ProvisionAction) register(serial, recipient, identity string) error {
	return p.cfg.Registry.Add(v1.RegistryEntry{
		Serial:      serial,
		Label:       p.spec.Label,
		Recipient:   recipient,
		IdentityTag: identity,
		CreatedAt:   time.Now(),
	})
}

// fail aborts the chain, naming the causing step in the failure event.
func (p *ProvisionAction) fail(prog *progress, step string, err error) (*v1.ProvisionResult, error) {
	p.cfg.Logger.Errorf("Provisioning step '%s' failed: %s", step, err.Error())
	prog.fail(fmt.Sprintf("%s: %s", step, err.Error()))
	return nil, err
}
