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
	"text/tabwriter"
	"time"

	"github.com/docker/go-units"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	cmdConfig "github.com/ykprov/ykprov-cli/cmd/config"
	"github.com/ykprov/ykprov-cli/pkg/action"
	ykprovError "github.com/ykprov/ykprov-cli/pkg/error"
)

func NewListCmd(root *cobra.Command) *cobra.Command {
	c := &cobra.Command{
		Use:   "list",
		Short: "List connected tokens and provisioned identities",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := cmdConfig.ReadConfigRun(viper.GetString("config-dir"))
			if err != nil {
				return ykprovError.NewFromError(err, ykprovError.ReadingRunConfig)
			}
			cmd.SilenceUsage = true

			list := action.NewListAction(cfg)
			w := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)

			if recipients, _ := cmd.Flags().GetBool("recipients"); recipients {
				found, err := list.Recipients()
				if err != nil {
					return err
				}
				fmt.Fprintln(w, "SERIAL\tSLOT\tNAME\tRECIPIENT")
				for _, r := range found {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Serial, r.Slot, r.Name, r.Recipient)
				}
				return w.Flush()
			}

			devices, err := list.Devices()
			if err != nil {
				return err
			}
			entries, err := list.Registered()
			if err != nil {
				return err
			}
			bySerial := map[string]int{}
			for i, entry := range entries {
				bySerial[entry.Serial] = i
			}

			fmt.Fprintln(w, "SERIAL\tDEVICE\tLABEL\tAGE")
			for _, d := range devices {
				label, age := "-", "-"
				if i, ok := bySerial[d.Serial]; ok {
					label = entries[i].Label
					if !entries[i].CreatedAt.IsZero() {
						age = units.HumanDuration(time.Since(entries[i].CreatedAt))
					}
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.Serial, d.Name, label, age)
			}
			return w.Flush()
		},
	}
	root.AddCommand(c)
	c.Flags().Bool("recipients", false, "List provisioned recipients instead of connected devices")
	return c
}

// register the subcommand into rootCmd
var _ = NewListCmd(rootCmd)
