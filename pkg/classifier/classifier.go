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

// Package classifier derives the provisioning state of a token from three
// read-only probes: the PIV credential status, the identity listing and the
// registry. Classification never burns a PIN attempt and never waits on a
// touch, so it is safe to run on every insertion.
package classifier

import (
	"fmt"

	ykprovError "github.com/ykprov/ykprov-cli/pkg/error"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

// DeviceProber reports the credential status of a token.
type DeviceProber interface {
	Probe(serial string) (*v1.Device, error)
}

// IdentityLister reports the identities of all connected tokens.
type IdentityLister interface {
	ListRecipients() ([]v1.Recipient, error)
}

type Classifier struct {
	log      v1.Logger
	prober   DeviceProber
	lister   IdentityLister
	registry v1.RegistryChecker
}

func New(log v1.Logger, prober DeviceProber, lister IdentityLister, registry v1.RegistryChecker) *Classifier {
	return &Classifier{
		log:      log,
		prober:   prober,
		lister:   lister,
		registry: registry,
	}
}

// Classify probes the token and resolves its provisioning state. The
// returned device carries everything the probes found, including the
// recipient when an identity is present.
func (c *Classifier) Classify(serial string) (*v1.Device, v1.DeviceState, error) {
	device, err := c.prober.Probe(serial)
	if err != nil {
		return nil, v1.StateUnknown, err
	}

	recipients, err := c.lister.ListRecipients()
	if err != nil {
		return nil, v1.StateUnknown, err
	}
	for _, recipient := range recipients {
		if recipient.Serial == serial {
			device.HasIdentity = true
			device.Recipient = recipient.Recipient
			if device.Name == "" {
				device.Name = recipient.Name
			}
			break
		}
	}

	state, err := c.resolve(device)
	if err != nil {
		return device, v1.StateUnknown, err
	}
	c.log.Debugf("Device %s classified as %s", serial, state.String())
	return device, state, nil
}

func (c *Classifier) resolve(device *v1.Device) (v1.DeviceState, error) {
	if device.HasIdentity {
		if device.PinIsDefault {
			return v1.StateUnknown, ykprovError.NewKind(ykprovError.KindInvalidState,
				fmt.Sprintf("device %s holds an identity but still uses the factory PIN", device.Serial),
				ykprovError.InvalidDeviceState)
		}
		registered, err := c.registry.IsRegistered(device.Serial)
		if err != nil {
			return v1.StateUnknown, err
		}
		if registered {
			return v1.StateRegistered, nil
		}
		return v1.StateOrphaned, nil
	}

	if device.PinIsDefault {
		if device.PukIsDefault {
			return v1.StateNew, nil
		}
		// No supported step chain changes the PUK before the PIN
		return v1.StateUnknown, ykprovError.NewKind(ykprovError.KindInvalidState,
			fmt.Sprintf("device %s mixes a factory PIN with a custom PUK", device.Serial),
			ykprovError.InvalidDeviceState)
	}

	if device.PukIsDefault {
		c.log.Warnf("Device %s still uses the factory PUK, an interrupted provisioning will be resumed", device.Serial)
	}
	if device.HasHardenedKey {
		return v1.StateReusedHardened, nil
	}
	return v1.StateReusedNoHardening, nil
}
