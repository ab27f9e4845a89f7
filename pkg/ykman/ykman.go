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

// Package ykman drives the credential management utility. All its
// invocations run in direct mode: the utility takes everything on argv and
// prompts for nothing, so there is no dialogue to interpret, only output to
// parse and exit codes to classify.
package ykman

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ykprov/ykprov-cli/pkg/constants"
	ykprovError "github.com/ykprov/ykprov-cli/pkg/error"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
	"github.com/ykprov/ykprov-cli/pkg/utils"
)

const (
	defaultPinWarning = "Using default PIN!"
	defaultPukWarning = "Using default PUK!"
	mgmtKeyTDES       = "Management key algorithm: TDES"
	mgmtKeyProtected  = "Management key is stored on the YubiKey, protected by PIN"
	pivVersionPrefix  = "PIV version:"
	serialPrefix      = "Serial:"
)

// Ykman shells out to the credential utility over the runner.
type Ykman struct {
	log    v1.Logger
	runner v1.Runner
	bin    string
	config *v1.RunConfig
}

func New(cfg *v1.RunConfig) *Ykman {
	return &Ykman{
		log:    cfg.Logger,
		runner: cfg.Runner,
		bin:    cfg.Ykman,
		config: cfg,
	}
}

// run executes one utility call bounded by the command timeout. The command
// line is logged with the given secrets masked.
func (y *Ykman) run(args []string, secrets ...string) ([]byte, error) {
	y.log.Debugf("Running cmd: '%s %s'", y.bin, utils.RedactArgs(args, secrets...))
	ctx, cancel := context.WithTimeout(context.Background(), y.config.CommandTimeout)
	defer cancel()
	out, err := y.runner.RunContext(ctx, y.bin, args...)
	if errors.Is(err, context.DeadlineExceeded) {
		return out, ykprovError.NewKind(ykprovError.KindProtocolTimeout,
			fmt.Sprintf("credential utility gave no result within %v", y.config.CommandTimeout),
			ykprovError.ProtocolTimeout)
	}
	return out, err
}

// FindSerial discovers the serial of the connected token. Any way the
// `info` call can fail, short of a timeout, means there is no usable token.
func (y *Ykman) FindSerial() (string, error) {
	out, err := y.run([]string{"info"})
	if err != nil {
		if ykprovError.IsKind(err, ykprovError.KindProtocolTimeout) {
			return "", err
		}
		return "", ykprovError.NewKind(ykprovError.KindDeviceNotFound,
			fmt.Sprintf("no token detected: %s", firstLine(out, err)),
			ykprovError.DeviceNotFound)
	}
	for _, line := range strings.Split(string(out), "\n") {
		if idx := strings.Index(line, serialPrefix); idx >= 0 {
			return strings.TrimSpace(line[idx+len(serialPrefix):]), nil
		}
	}
	return "", ykprovError.NewKind(ykprovError.KindDeviceNotFound,
		"connected token reports no serial", ykprovError.DeviceNotFound)
}

// ListDevices reports every connected token the utility can see.
func (y *Ykman) ListDevices() ([]v1.Device, error) {
	out, err := y.run([]string{"list"})
	if err != nil {
		return nil, classify(out, err)
	}
	var devices []v1.Device
	for _, line := range strings.Split(string(out), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		d := v1.Device{Name: trimmed}
		if idx := strings.Index(trimmed, serialPrefix); idx >= 0 {
			d.Serial = strings.TrimSpace(trimmed[idx+len(serialPrefix):])
			d.Name = strings.TrimSpace(strings.TrimSuffix(trimmed[:idx], " "))
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// Probe inspects the PIV application without authenticating, so it never
// burns a PIN attempt. The returned device carries the credential and
// management key findings; identity presence is someone else's probe.
func (y *Ykman) Probe(serial string) (*v1.Device, error) {
	out, err := y.run([]string{"--device", serial, "piv", "info"})
	if err != nil {
		return nil, classify(out, err)
	}
	info := string(out)
	device := &v1.Device{
		Serial:          serial,
		PinIsDefault:    strings.Contains(info, defaultPinWarning),
		PukIsDefault:    strings.Contains(info, defaultPukWarning),
		HasHardenedKey:  strings.Contains(info, mgmtKeyTDES) && strings.Contains(info, mgmtKeyProtected),
		FirmwareVersion: valueAfter(info, pivVersionPrefix),
	}
	y.log.Debugf("Probed device %s: pin-default=%v puk-default=%v hardened=%v",
		serial, device.PinIsDefault, device.PukIsDefault, device.HasHardenedKey)
	return device, nil
}

// ChangePIN replaces the PIN, authenticating with the current one.
func (y *Ykman) ChangePIN(serial, oldPin, newPin string) error {
	args := []string{"--device", serial, "piv", "access", "change-pin", "-P", oldPin, "-n", newPin}
	out, err := y.run(args, oldPin, newPin)
	if err != nil {
		return classify(out, err)
	}
	y.log.Infof("PIN changed on device %s", serial)
	return nil
}

// ChangePUK replaces the PUK, authenticating with the current one.
func (y *Ykman) ChangePUK(serial, oldPuk, newPuk string) error {
	args := []string{"--device", serial, "piv", "access", "change-puk", "-p", oldPuk, "-n", newPuk}
	out, err := y.run(args, oldPuk, newPuk)
	if err != nil {
		return classify(out, err)
	}
	y.log.Infof("PUK changed on device %s", serial)
	return nil
}

// ProtectManagementKey rotates the management key off the well-known
// default: a fresh random TDES key, stored on the token behind the PIN. The
// identity utility refuses tokens without this hardening.
func (y *Ykman) ProtectManagementKey(serial, pin string) error {
	args := []string{
		"--device", serial, "piv", "access", "change-management-key",
		"-a", "tdes", "-p", "-g",
		"-m", constants.DefaultManagementKey,
		"-P", pin,
	}
	out, err := y.run(args, constants.DefaultManagementKey, pin)
	if err != nil {
		return classify(out, err)
	}
	y.log.Infof("Management key hardened on device %s", serial)
	return nil
}

// ResetPIV wipes the PIV application: all keys, certificates and
// credentials. Destructive and unrecoverable.
func (y *Ykman) ResetPIV(serial string) error {
	out, err := y.run([]string{"--device", serial, "piv", "reset", "-f"})
	if err != nil {
		return classify(out, err)
	}
	y.log.Infof("PIV application reset on device %s", serial)
	return nil
}

// classify turns a failed utility call into a kinded error. Already kinded
// errors (timeouts) pass through.
func classify(out []byte, err error) error {
	if ykprovError.KindOf(err) != ykprovError.KindUnknown {
		return err
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return ykprovError.NewKind(ykprovError.KindProcessSpawnFailed,
			execErr.Error(), ykprovError.ProcessSpawnFailed)
	}
	msg := strings.TrimSpace(string(out))
	if msg == "" {
		msg = err.Error()
	}
	switch {
	case isDeviceMissing(msg):
		return ykprovError.NewKind(ykprovError.KindDeviceNotFound, msg, ykprovError.DeviceNotFound)
	case isCredentialRejection(msg):
		return ykprovError.NewCredentialRejected(msg, ParseAttempts(msg))
	default:
		return ykprovError.NewKind(ykprovError.KindUnexpectedOutput, msg, ykprovError.UnexpectedOutput)
	}
}

func isDeviceMissing(msg string) bool {
	return strings.Contains(msg, "Failed connecting to") ||
		strings.Contains(msg, "No YubiKey detected") ||
		strings.Contains(msg, "no YubiKey") ||
		strings.Contains(msg, "not found")
}

func isCredentialRejection(msg string) bool {
	return strings.Contains(msg, "Wrong PIN") ||
		strings.Contains(msg, "Wrong PUK") ||
		strings.Contains(msg, "wrong PIN") ||
		strings.Contains(msg, "wrong PUK") ||
		strings.Contains(msg, "is blocked") ||
		ParseAttempts(msg) >= 0
}

func firstLine(out []byte, err error) string {
	msg := strings.TrimSpace(string(out))
	if msg == "" {
		return err.Error()
	}
	if idx := strings.IndexByte(msg, '\n'); idx > 0 {
		return msg[:idx]
	}
	return msg
}

func valueAfter(text, prefix string) string {
	for _, line := range strings.Split(text, "\n") {
		if idx := strings.Index(line, prefix); idx >= 0 {
			return strings.TrimSpace(line[idx+len(prefix):])
		}
	}
	return ""
}
