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

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdConfig "github.com/ykprov/ykprov-cli/cmd/config"
	"github.com/ykprov/ykprov-cli/pkg/action"
	conf "github.com/ykprov/ykprov-cli/pkg/config"
	ykprovError "github.com/ykprov/ykprov-cli/pkg/error"
)

func NewStatusCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "status",
		Short: "Show the provisioning state of a token",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdConfig.ReadConfigRun(viper.GetString("config-dir"))
			if err != nil {
				return ykprovError.NewFromError(err, ykprovError.ReadingRunConfig)
			}
			cmd.SilenceUsage = true

			spec := conf.NewStatusSpec()
			spec.Serial, _ = cmd.Flags().GetString("serial")

			device, state, err := action.NewStatusAction(cfg, spec).Run()
			if err != nil {
				return err
			}
			fmt.Printf("Serial:       %s\n", device.Serial)
			fmt.Printf("State:        %s\n", state)
			if device.FirmwareVersion != "" {
				fmt.Printf("PIV version:  %s\n", device.FirmwareVersion)
			}
			fmt.Printf("Hardened key: %v\n", device.HasHardenedKey)
			if device.Name != "" {
				fmt.Printf("Label:        %s\n", device.Name)
			}
			if device.Recipient != "" {
				fmt.Printf("Recipient:    %s\n", device.Recipient)
			}
			return nil
		},
	}
	root.AddCommand(c)
	addSerialFlag(c)
	return c
}

// register the subcommand into rootCmd
var _ = NewStatusCmd(rootCmd)
