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

package cmd

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	ykprovError "github.com/ykprov/ykprov-cli/pkg/error"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

// promptHidden reads a secret from the terminal without echo. Piped stdin
// falls back to a plain line read so scripted runs keep working.
func promptHidden(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	if term.IsTerminal(int(os.Stdin.Fd())) {
		b, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", ykprovError.NewFromError(err, ykprovError.CredentialPrompt)
		}
		return strings.TrimSpace(string(b)), nil
	}
	var s string
	_, err := fmt.Fscanln(os.Stdin, &s)
	if err != nil {
		return "", ykprovError.NewFromError(err, ykprovError.CredentialPrompt)
	}
	return strings.TrimSpace(s), nil
}

// promptCredential asks for a credential twice and insists on a match, so a
// typo cannot end up burned into the token.
func promptCredential(name string) (string, error) {
	value, err := promptHidden(fmt.Sprintf("Enter %s: ", name))
	if err != nil {
		return "", err
	}
	confirm, err := promptHidden(fmt.Sprintf("Confirm %s: ", name))
	if err != nil {
		return "", err
	}
	if value != confirm {
		return "", ykprovError.New(fmt.Sprintf("%s values do not match", name), ykprovError.CredentialPrompt)
	}
	return value, nil
}

// progressPrinter renders the operation's event stream as it arrives.
func progressPrinter() v1.ProgressSink {
	return v1.SinkFunc(func(ev v1.ProgressEvent) {
		fmt.Printf("[%3d%%] %s\n", ev.Percent, ev.Message)
	})
}
