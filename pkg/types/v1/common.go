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

package v1

import "time"

// DeviceState is the provisioning classification of a connected token,
// derived fresh from probes on every inspection and never cached across
// physical re-insertion.
type DeviceState int

const (
	StateUnknown DeviceState = iota
	// StateNew is a factory token: default PIN and PUK, no identity.
	StateNew
	// StateReusedNoHardening has custom credentials, no identity and a
	// management key still derivable from the default.
	StateReusedNoHardening
	// StateReusedHardened has custom credentials, no identity and a
	// PIN-protected random management key.
	StateReusedHardened
	// StateOrphaned holds an identity that is not in the caller's registry.
	StateOrphaned
	// StateRegistered holds an identity known to the registry. Owned by the
	// registry; reported for display, refused for provisioning.
	StateRegistered
)

func (s DeviceState) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateReusedNoHardening:
		return "reused"
	case StateReusedHardened:
		return "reused-hardened"
	case StateOrphaned:
		return "orphaned"
	case StateRegistered:
		return "registered"
	default:
		return "unknown"
	}
}

// Device captures what the probes observed about one connected token.
type Device struct {
	Serial          string `yaml:"serial,omitempty"`
	Name            string `yaml:"name,omitempty"`
	FirmwareVersion string `yaml:"firmware-version,omitempty"`
	PinIsDefault    bool   `yaml:"pin-is-default,omitempty"`
	PukIsDefault    bool   `yaml:"puk-is-default,omitempty"`
	HasIdentity     bool   `yaml:"has-identity,omitempty"`
	HasHardenedKey  bool   `yaml:"has-hardened-key,omitempty"`
	Recipient       string `yaml:"recipient,omitempty"`
	IdentityTag     string `yaml:"identity-tag,omitempty"`
}

// Recipient is one provisioned identity as reported by the identity
// utility's listing output.
type Recipient struct {
	Serial    string
	Slot      string
	Name      string
	Recipient string
}

// ProvisionResult is returned to the caller once a workflow completes.
type ProvisionResult struct {
	Serial      string `yaml:"serial" json:"serial"`
	Recipient   string `yaml:"recipient" json:"recipient"`
	IdentityTag string `yaml:"identity-tag" json:"identity_tag"`
	Label       string `yaml:"label,omitempty" json:"label,omitempty"`
}

// RegistryEntry is one device the calling store already owns.
type RegistryEntry struct {
	Serial      string    `yaml:"serial"`
	Label       string    `yaml:"label,omitempty"`
	Recipient   string    `yaml:"recipient,omitempty"`
	IdentityTag string    `yaml:"identity-tag,omitempty"`
	CreatedAt   time.Time `yaml:"created-at,omitempty"`
}

// RegistryChecker is the read side of the external registry collaborator,
// the only part classification depends on.
type RegistryChecker interface {
	IsRegistered(serial string) (bool, error)
}

// Registry is the full boundary to the caller's store of provisioned
// devices.
type Registry interface {
	RegistryChecker
	Add(entry RegistryEntry) error
	List() ([]RegistryEntry, error)
}

// DeviceLock serializes operations per device serial. Only one session may
// exist for a serial at any time; a second operation blocks on Lock until
// the first releases.
type DeviceLock interface {
	Lock(serial string)
	TryLock(serial string) bool
	Unlock(serial string)
}
