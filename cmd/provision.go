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

func NewProvisionCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "provision",
		Short: "Provision a token and generate its encryption identity",
		Long: "Classifies the token, sets custom credentials where needed, hardens the " +
			"management key and generates an age identity on it. Generation requires a " +
			"physical touch on the token.",
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdConfig.ReadConfigRun(viper.GetString("config-dir"),
				conf.WithProgress(progressPrinter()))
			if err != nil {
				return ykprovError.NewFromError(err, ykprovError.ReadingRunConfig)
			}
			cmd.SilenceUsage = true
			warnCredentialFlags(cfg.Logger, cmd.Flags())

			spec := conf.NewProvisionSpec()
			spec.Serial, _ = cmd.Flags().GetString("serial")
			spec.Label, _ = cmd.Flags().GetString("label")
			spec.Pin, _ = cmd.Flags().GetString("pin")
			spec.Puk, _ = cmd.Flags().GetString("puk")
			spec.TouchPolicy = cmd.Flags().Lookup("touch-policy").Value.String()
			// prompted lazily: only the chains that use a credential ask
			// for it, an orphaned device is recovered without any
			spec.Prompt = promptCredential

			result, err := action.NewProvisionAction(cfg, spec).Run()
			if err != nil {
				return err
			}
			fmt.Printf("Device:    %s\n", result.Serial)
			fmt.Printf("Label:     %s\n", result.Label)
			fmt.Printf("Recipient: %s\n", result.Recipient)
			return nil
		},
	}
	root.AddCommand(c)
	addSerialFlag(c)
	addProvisionFlags(c)
	_ = c.MarkFlagRequired("label")
	return c
}

// register the subcommand into rootCmd
var _ = NewProvisionCmd(rootCmd)
