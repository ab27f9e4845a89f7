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

import (
	"fmt"
	"time"

	"github.com/ykprov/ykprov-cli/pkg/constants"
)

// Config holds the runtime collaborators every operation needs. It is
// assembled by the config package and never unmarshaled from file.
type Config struct {
	Logger   Logger            `yaml:"-" mapstructure:"-"`
	Fs       FS                `yaml:"-" mapstructure:"-"`
	Runner   Runner            `yaml:"-" mapstructure:"-"`
	Sessions SessionController `yaml:"-" mapstructure:"-"`
	Registry Registry          `yaml:"-" mapstructure:"-"`
	Progress ProgressSink      `yaml:"-" mapstructure:"-"`
	Locks    DeviceLock        `yaml:"-" mapstructure:"-"`
}

// RunConfig adds the file- and flag-tunable settings on top of Config.
type RunConfig struct {
	// Ykman is the credential utility binary, resolved through PATH unless
	// absolute.
	Ykman string `yaml:"ykman,omitempty" mapstructure:"ykman"`
	// AgePlugin is the identity utility binary.
	AgePlugin string `yaml:"age-plugin,omitempty" mapstructure:"age-plugin"`
	// RegistryPath is the YAML file of already provisioned devices.
	RegistryPath string `yaml:"registry-path,omitempty" mapstructure:"registry-path"`
	// CommandTimeout bounds every spawned utility process.
	CommandTimeout time.Duration `yaml:"command-timeout,omitempty" mapstructure:"command-timeout"`
	// TouchTimeout bounds the wait between the touch prompt and the touch.
	TouchTimeout time.Duration `yaml:"touch-timeout,omitempty" mapstructure:"touch-timeout"`
	// PinInjectDelay is how long to wait after spawning the identity utility
	// before writing the PIN, so the write lands after the prompt exists.
	PinInjectDelay time.Duration `yaml:"pin-inject-delay,omitempty" mapstructure:"pin-inject-delay"`

	Config `yaml:",inline" mapstructure:",squash"`
}

// Sanitize checks the tunables hold usable values.
func (r *RunConfig) Sanitize() error {
	if r.Ykman == "" {
		return fmt.Errorf("undefined credential utility binary")
	}
	if r.AgePlugin == "" {
		return fmt.Errorf("undefined identity utility binary")
	}
	if r.CommandTimeout <= 0 {
		return fmt.Errorf("command timeout must be positive, got %v", r.CommandTimeout)
	}
	if r.TouchTimeout <= 0 {
		return fmt.Errorf("touch timeout must be positive, got %v", r.TouchTimeout)
	}
	if r.PinInjectDelay < 0 {
		return fmt.Errorf("pin inject delay must not be negative, got %v", r.PinInjectDelay)
	}
	return nil
}

// CredentialFunc supplies a credential by name ("PIN", "PUK") when the
// workflow reaches a step that needs it and the spec left it unset.
type CredentialFunc func(name string) (string, error)

// ProvisionSpec drives a full provisioning workflow. Pin and Puk are the
// values to set on a factory device, or the current custom PIN for devices
// already holding one. Secrets never serialize. Either may stay empty when
// Prompt is set: credentials are requested only once classification proves
// the chain actually uses them.
type ProvisionSpec struct {
	Serial      string         `yaml:"serial,omitempty" mapstructure:"serial"`
	Label       string         `yaml:"label,omitempty" mapstructure:"label"`
	Pin         string         `yaml:"-" mapstructure:"pin"`
	Puk         string         `yaml:"-" mapstructure:"puk"`
	TouchPolicy string         `yaml:"touch-policy,omitempty" mapstructure:"touch-policy"`
	Prompt      CredentialFunc `yaml:"-" mapstructure:"-"`
}

// Sanitize validates the shape of whatever credentials are already set
// before any utility runs, so a typo never burns a retry counter on the
// device. Unset credentials pass: they are resolved after classification.
func (p *ProvisionSpec) Sanitize() error {
	if p.Label == "" {
		return fmt.Errorf("undefined identity label")
	}
	if p.Pin != "" {
		if err := CheckCredential("PIN", p.Pin); err != nil {
			return err
		}
	}
	if p.Puk != "" {
		if err := CheckCredential("PUK", p.Puk); err != nil {
			return err
		}
	}
	if !validTouchPolicy(p.TouchPolicy) {
		return fmt.Errorf("invalid touch policy '%s', must be one of %v", p.TouchPolicy, constants.TouchPolicies())
	}
	return nil
}

// RetrieveSpec recovers the identity of an orphaned device.
type RetrieveSpec struct {
	Serial string `yaml:"serial,omitempty" mapstructure:"serial"`
}

func (r *RetrieveSpec) Sanitize() error {
	if r.Serial == "" {
		return fmt.Errorf("undefined device serial")
	}
	return nil
}

// StatusSpec inspects and classifies a device without changing it.
type StatusSpec struct {
	Serial string `yaml:"serial,omitempty" mapstructure:"serial"`
}

func (s *StatusSpec) Sanitize() error {
	return nil
}

// ResetSpec wipes the PIV application of a device. Destructive, gated on
// explicit confirmation.
type ResetSpec struct {
	Serial string `yaml:"serial,omitempty" mapstructure:"serial"`
	Force  bool   `yaml:"force,omitempty" mapstructure:"force"`
}

func (r *ResetSpec) Sanitize() error {
	if r.Serial == "" {
		return fmt.Errorf("undefined device serial")
	}
	if !r.Force {
		return fmt.Errorf("reset wipes all keys on the device, confirm with force")
	}
	return nil
}

// CheckCredential validates the shape the PIV application accepts for PINs
// and PUKs.
func CheckCredential(name, value string) error {
	if len(value) < constants.PinMinLen || len(value) > constants.PinMaxLen {
		return fmt.Errorf("%s must be %d to %d digits", name, constants.PinMinLen, constants.PinMaxLen)
	}
	for _, c := range value {
		if c < '0' || c > '9' {
			return fmt.Errorf("%s must contain digits only", name)
		}
	}
	return nil
}

func validTouchPolicy(policy string) bool {
	for _, p := range constants.TouchPolicies() {
		if policy == p {
			return true
		}
	}
	return false
}
