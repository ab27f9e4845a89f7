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

package constants

import (
	"os"
	"runtime"
	"time"
)

const (
	YkmanBinary     = "ykman"
	AgePluginBinary = "age-plugin-yubikey"

	// Factory credentials every token ships with
	DefaultPIN           = "123456"
	DefaultPUK           = "12345678"
	DefaultManagementKey = "010203040506070801020304050607080102030405060708"

	PinMinLen = 6
	PinMaxLen = 8
	PukMinLen = 6
	PukMaxLen = 8

	// PIV retired slot used for age identities
	IdentitySlot = "1"

	TouchPolicyCached = "cached"
	TouchPolicyAlways = "always"
	TouchPolicyNever  = "never"

	// Markers emitted by the identity utility
	IdentityPrefix  = "AGE-PLUGIN-YUBIKEY-"
	RecipientPrefix = "age1yubikey1"

	// CommandTimeout bounds any single utility invocation, including the
	// interactive generation step that may wait on a touch.
	CommandTimeout = 60 * time.Second
	// TouchTimeout bounds the wait between the touch prompt appearing and
	// the user actually touching the token.
	TouchTimeout = 30 * time.Second
	// PinInjectDelay is how long to wait after the generation prompt before
	// writing the PIN; injecting immediately races the utility's reader.
	PinInjectDelay = 300 * time.Millisecond

	PtyRows        uint16 = 24
	PtyCols        uint16 = 80
	PtyColsWindows uint16 = 240
	TermEnv               = "TERM=xterm-256color"

	SessionReadChunk = 4096
	// PtyDrainPause is granted to the output reader after the child exits,
	// before the terminal is torn down under it.
	PtyDrainPause = 100 * time.Millisecond
	// SessionPollInterval paces the dialogue loop draining session output.
	SessionPollInterval = 100 * time.Millisecond

	ConfigDir        = "/etc/ykprov"
	RunConfigFile    = "config.yaml"
	RegistryPath     = "/var/lib/ykprov/registry.yaml"
	RegistryFilePerm = os.FileMode(0600)

	DirPerm  = os.FileMode(0755)
	FilePerm = os.FileMode(0644)
)

// DefaultPtyCols returns the pseudo-terminal width for the host platform.
// The Windows terminal driver rewraps output at the column boundary, which
// splits the identity line in half, so a wide window is used there.
func DefaultPtyCols() uint16 {
	if runtime.GOOS == "windows" {
		return PtyColsWindows
	}
	return PtyCols
}

// TouchPolicies lists the accepted touch policy names.
func TouchPolicies() []string {
	return []string{TouchPolicyCached, TouchPolicyAlways, TouchPolicyNever}
}
