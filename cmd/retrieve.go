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

func NewRetrieveCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "retrieve",
		Short: "Read the identity already stored on a token",
		Long: "Reads back the public identity of a token, for example one provisioned on " +
			"another machine. No PIN and no touch is needed, only public material leaves " +
			"the token.",
		Args: cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdConfig.ReadConfigRun(viper.GetString("config-dir"))
			if err != nil {
				return ykprovError.NewFromError(err, ykprovError.ReadingRunConfig)
			}
			cmd.SilenceUsage = true

			spec := conf.NewRetrieveSpec()
			spec.Serial, _ = cmd.Flags().GetString("serial")

			result, err := action.NewRetrieveAction(cfg, spec).Run()
			if err != nil {
				return err
			}
			fmt.Printf("Recipient: %s\n", result.Recipient)
			fmt.Println(result.IdentityTag)
			return nil
		},
	}
	root.AddCommand(c)
	addSerialFlag(c)
	_ = c.MarkFlagRequired("serial")
	return c
}

// register the subcommand into rootCmd
var _ = NewRetrieveCmd(rootCmd)
