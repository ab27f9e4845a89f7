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

func NewResetCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "reset",
		Short: "Wipe the PIV application of a token",
		Long: "Destroys all keys, certificates and credentials on the token's PIV " +
			"application and restores factory values. The identity on the token is lost " +
			"beyond recovery.",
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdConfig.ReadConfigRun(viper.GetString("config-dir"))
			if err != nil {
				return ykprovError.NewFromError(err, ykprovError.ReadingRunConfig)
			}
			cmd.SilenceUsage = true

			spec := conf.NewResetSpec()
			spec.Serial, _ = cmd.Flags().GetString("serial")
			spec.Force, _ = cmd.Flags().GetBool("force")

			if err := action.NewResetAction(cfg, spec).Run(); err != nil {
				return err
			}
			fmt.Printf("Device %s reset to factory state\n", spec.Serial)
			return nil
		},
	}
	root.AddCommand(c)
	addSerialFlag(c)
	c.Flags().Bool("force", false, "Confirm the destructive reset")
	_ = c.MarkFlagRequired("serial")
	return c
}

// register the subcommand into rootCmd
var _ = NewResetCmd(rootCmd)
