// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/natpack/natpack/pkg/defaults"

	"github.com/spf13/cobra"
)

// newProfileCommand creates the `natpack profile` command tree.
func newProfileCommand(app *App) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Inspect defaults profiles",
		Long: `Inspect defaults profiles.

Profiles are looked up by name in the configured profile_paths, then in
<config dir>/profiles, then among the profiles built into natpack. A
profile is a <name>.defaults properties file, or a <name>.yaml or
<name>.toml tree.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	profileCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the available profiles",
		Args:  cobra.NoArgs,
		RunE: app.runE(func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			names, err := app.registry(cfg).Names()
			if err != nil {
				return err
			}
			for _, name := range names {
				marker := " "
				if name == cfg.DefaultProfile {
					marker = "*"
				}
				fmt.Fprintf(app.stdout, "%s %s\n", marker, name)
			}
			return nil
		}),
	})

	var format string
	showCmd := &cobra.Command{
		Use:   "show <name>",
		Short: "Print a profile",
		Args:  cobra.ExactArgs(1),
		RunE: app.runE(func(cmd *cobra.Command, args []string) error {
			f, err := defaults.ParseFormat(format)
			if err != nil {
				return err
			}
			cfg, err := app.loadConfig(cmd.Context())
			if err != nil {
				return err
			}
			doc, err := app.lookupProfile(cfg, args[0])
			if err != nil {
				return err
			}
			if doc.Identifier == defaults.NoneIdentifier && args[0] != defaults.NoneIdentifier {
				fmt.Fprintln(app.stderr, WarningStyle.Render("Warning: ")+"no profile named "+args[0]+", showing the empty profile")
			}
			return defaults.Encode(app.stdout, doc, f)
		}),
	}
	showCmd.Flags().StringVarP(&format, "format", "f", string(defaults.FormatProperties), "output format: properties, yaml or toml")
	profileCmd.AddCommand(showCmd)

	return profileCmd
}
