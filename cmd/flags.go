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
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ykprov/ykprov-cli/pkg/constants"
	v1 "github.com/ykprov/ykprov-cli/pkg/types/v1"
)

// addSerialFlag adds the device selector shared by all device commands
func addSerialFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("serial", "s", "", "Serial number of the token to operate on (defaults to the only connected token)")
}

// addProvisionFlags adds the credential and identity flags of the provision command
func addProvisionFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("label", "l", "", "Name for the generated identity")
	cmd.Flags().String("pin", "", "PIN to set on a factory token, or the current PIN of a reused one (prompted when omitted)")
	cmd.Flags().String("puk", "", "PUK to set on a factory token (prompted when omitted)")
	cmd.Flags().Var(newEnumFlag(constants.TouchPolicies(), constants.TouchPolicyCached),
		"touch-policy", fmt.Sprintf("Touch policy for the identity (%s)", strings.Join(constants.TouchPolicies(), ", ")))
}

// warnCredentialFlags flags credentials given on the command line, where
// they end up in the shell history
func warnCredentialFlags(log v1.Logger, flags *pflag.FlagSet) {
	for _, name := range []string{"pin", "puk"} {
		if flags.Changed(name) {
			log.Warnf("--%s was given on the command line, prefer the interactive prompt", name)
		}
	}
}

type enum struct {
	Allowed []string
	Value   string
}

// newEnumFlag give a list of allowed flag parameters, where the second argument is the default
func newEnumFlag(allowed []string, d string) *enum {
	return &enum{
		Allowed: allowed,
		Value:   d,
	}
}

func (a enum) String() string {
	return a.Value
}

func (a *enum) Set(p string) error {
	isIncluded := func(opts []string, val string) bool {
		for _, opt := range opts {
			if val == opt {
				return true
			}
		}
		return false
	}
	if !isIncluded(a.Allowed, p) {
		return fmt.Errorf("'%s' is not included in: %s", p, strings.Join(a.Allowed, ","))
	}
	a.Value = p
	return nil
}

func (a *enum) Type() string {
	return "string"
}
