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

// Package ageplugin drives the identity utility. Identity generation is a
// dialogue: the utility owns a terminal, prompts for the PIN and waits for a
// touch, so it runs in an interactive session and its output is interpreted
// as it arrives. Listing and retrieval take no input and run in plain direct
// sessions.
package ageplugin

import (
	"fmt"
	"strings"
	"time"

	"github.com/ykprov/ykprov-cli/pkg/constants"
	ykprovError "github.com/ykprov/ykprov-cli/pkg/error"
	"github.com/ykprov/ykprov-cli/pkg/interpreter"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

// TouchFunc is called once when the utility starts waiting for a touch.
type TouchFunc func()

// AgePlugin spawns the identity utility through the session controller.
type AgePlugin struct {
	log      v1.Logger
	sessions v1.SessionController
	bin      string
	config   *v1.RunConfig
}

func New(cfg *v1.RunConfig) *AgePlugin {
	return &AgePlugin{
		log:      cfg.Logger,
		sessions: cfg.Sessions,
		bin:      cfg.AgePlugin,
		config:   cfg,
	}
}

// Generate creates a fresh identity in the retired slot and returns the
// identity tag and, when printed, the recipient. The PIN is written to the
// utility's terminal once it asks for it and never appears on the command
// line. onTouch fires when the utility starts waiting for the user's touch.
func (a *AgePlugin) Generate(serial, pin, touchPolicy, name string, onTouch TouchFunc) (string, string, error) {
	args := []string{
		"-g",
		"--serial", serial,
		"--slot", constants.IdentitySlot,
		"--touch-policy", touchPolicy,
		"--name", name,
	}
	a.log.Infof("Generating identity on device %s (touch policy %s)", serial, touchPolicy)

	session, err := a.sessions.Spawn(a.bin, args, v1.InteractiveMode, a.config.CommandTimeout)
	if err != nil {
		return "", "", ykprovError.NewKind(ykprovError.KindProcessSpawnFailed,
			fmt.Sprintf("spawning identity utility: %v", err), ykprovError.ProcessSpawnFailed)
	}
	defer func() { _ = session.Kill() }()

	var (
		interp    = interpreter.New()
		pinSent   bool
		promptAt  time.Time
		identity  string
		recipient string
	)

	handle := func(ev interpreter.Event) error {
		switch ev.Kind {
		case interpreter.EventGenerating, interpreter.EventPinPrompt:
			if pinSent || pin == "" {
				return nil
			}
			// The utility swallows input written before its reader is up
			time.Sleep(a.config.PinInjectDelay)
			a.log.Debug("PIN prompt detected, injecting PIN")
			if werr := session.WriteLine(pin); werr != nil {
				return ykprovError.NewKind(ykprovError.KindUnexpectedOutput,
					fmt.Sprintf("sending PIN to the identity utility: %v", werr),
					ykprovError.UnexpectedOutput)
			}
			pinSent = true
		case interpreter.EventTouchPrompt:
			// the touch window opens now, not at spawn: generation time
			// before the prompt must not eat into it
			promptAt = time.Now()
			a.log.Info("Touch the token to confirm key generation")
			if onTouch != nil {
				onTouch()
			}
		case interpreter.EventIdentity:
			identity = ev.Value
		case interpreter.EventRecipient:
			recipient = ev.Value
		case interpreter.EventError:
			return ykprovError.NewKind(ykprovError.KindUnexpectedOutput,
				ev.Line, ykprovError.UnexpectedOutput)
		}
		return nil
	}

	feed := func(events []interpreter.Event) error {
		for _, ev := range events {
			if herr := handle(ev); herr != nil {
				return herr
			}
		}
		return nil
	}

	ticker := time.NewTicker(constants.SessionPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if herr := feed(interp.Feed(session.PollOutput())); herr != nil {
				return "", "", herr
			}
			if !promptAt.IsZero() && time.Since(promptAt) > a.config.TouchTimeout {
				_ = session.Kill()
				return "", "", ykprovError.NewKind(ykprovError.KindProtocolTimeout,
					fmt.Sprintf("no touch confirmation within %v", a.config.TouchTimeout),
					ykprovError.ProtocolTimeout)
			}
		case <-session.Done():
			if herr := feed(interp.Feed(session.PollOutput())); herr != nil {
				return "", "", herr
			}
			if herr := feed(interp.Flush()); herr != nil {
				return "", "", herr
			}
			if session.TimedOut() {
				return "", "", ykprovError.NewKind(ykprovError.KindProtocolTimeout,
					fmt.Sprintf("identity utility gave no result within %v, the token may still be waiting for a touch",
						a.config.CommandTimeout),
					ykprovError.ProtocolTimeout)
			}
			if code, _ := session.ExitStatus(); code != 0 {
				return "", "", ykprovError.NewKind(ykprovError.KindUnexpectedOutput,
					fmt.Sprintf("identity utility exited with status %d: %s", code, summary(session.Output())),
					ykprovError.UnexpectedOutput)
			}
			if identity == "" {
				return "", "", ykprovError.NewKind(ykprovError.KindUnexpectedOutput,
					"identity utility reported success but printed no identity tag",
					ykprovError.UnexpectedOutput)
			}
			a.log.Infof("Identity generated on device %s", serial)
			return identity, recipient, nil
		}
	}
}

// RetrieveIdentity reads back the identity stored on the given token. The
// utility needs no input for this, not even the PIN.
func (a *AgePlugin) RetrieveIdentity(serial string) (string, string, error) {
	a.log.Debugf("Retrieving identity for device %s", serial)
	session, err := a.sessions.Spawn(a.bin,
		[]string{"--identity", "--serial", serial},
		v1.DirectMode, a.config.CommandTimeout)
	if err != nil {
		return "", "", ykprovError.NewKind(ykprovError.KindProcessSpawnFailed,
			fmt.Sprintf("spawning identity utility: %v", err), ykprovError.ProcessSpawnFailed)
	}
	defer func() { _ = session.Kill() }()

	<-session.Done()
	if session.TimedOut() {
		return "", "", ykprovError.NewKind(ykprovError.KindProtocolTimeout,
			fmt.Sprintf("identity utility gave no result within %v", a.config.CommandTimeout),
			ykprovError.ProtocolTimeout)
	}
	if code, _ := session.ExitStatus(); code != 0 {
		return "", "", ykprovError.NewKind(ykprovError.KindInvalidState,
			fmt.Sprintf("device %s holds no retrievable identity: %s", serial, summary(session.Output())),
			ykprovError.InvalidDeviceState)
	}
	identity, recipient, perr := interpreter.ParseIdentity(session.Output())
	if perr != nil {
		return "", "", ykprovError.NewKind(ykprovError.KindUnexpectedOutput,
			perr.Error(), ykprovError.UnexpectedOutput)
	}
	return identity, recipient, nil
}

// HasIdentity reports whether the token already carries an identity. A
// non-zero exit from the utility means it found none for that serial.
func (a *AgePlugin) HasIdentity(serial string) (bool, error) {
	session, err := a.sessions.Spawn(a.bin,
		[]string{"--identity", "--serial", serial},
		v1.DirectMode, a.config.CommandTimeout)
	if err != nil {
		return false, ykprovError.NewKind(ykprovError.KindProcessSpawnFailed,
			fmt.Sprintf("spawning identity utility: %v", err), ykprovError.ProcessSpawnFailed)
	}
	defer func() { _ = session.Kill() }()

	<-session.Done()
	if session.TimedOut() {
		return false, ykprovError.NewKind(ykprovError.KindProtocolTimeout,
			fmt.Sprintf("identity utility gave no result within %v", a.config.CommandTimeout),
			ykprovError.ProtocolTimeout)
	}
	if code, _ := session.ExitStatus(); code != 0 {
		return false, nil
	}
	identity, _, perr := interpreter.ParseIdentity(session.Output())
	if perr != nil {
		return false, nil
	}
	return identity != "", nil
}

// ListRecipients reports the recipients of all connected tokens. The exit
// status is ignored: the utility grumbles over missing tokens yet still
// prints what it found.
func (a *AgePlugin) ListRecipients() ([]v1.Recipient, error) {
	session, err := a.sessions.Spawn(a.bin, []string{"--list"},
		v1.DirectMode, a.config.CommandTimeout)
	if err != nil {
		return nil, ykprovError.NewKind(ykprovError.KindProcessSpawnFailed,
			fmt.Sprintf("spawning identity utility: %v", err), ykprovError.ProcessSpawnFailed)
	}
	defer func() { _ = session.Kill() }()

	<-session.Done()
	if session.TimedOut() {
		return nil, ykprovError.NewKind(ykprovError.KindProtocolTimeout,
			fmt.Sprintf("identity utility gave no result within %v", a.config.CommandTimeout),
			ykprovError.ProtocolTimeout)
	}
	if code, _ := session.ExitStatus(); code != 0 {
		a.log.Debugf("identity utility list exited with status %d", code)
	}
	return interpreter.ParseRecipients(session.Output()), nil
}

// summary reduces utility output to its first meaningful line for error
// messages.
func summary(out []byte) string {
	for _, line := range strings.Split(string(out), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" {
			return trimmed
		}
	}
	return "no output"
}
